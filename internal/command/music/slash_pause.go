package music

import (
	"github.com/bwmarrin/discordgo"

	"github.com/keshon/melody/internal/command"
)

type PauseCommand struct {
	Voice command.Voice
}

func (c *PauseCommand) Name() string        { return "pause" }
func (c *PauseCommand) Description() string { return "Pause the current song" }
func (c *PauseCommand) Aliases() []string   { return []string{} }
func (c *PauseCommand) Group() string       { return "music" }
func (c *PauseCommand) Category() string    { return "🎵 Music" }

func (c *PauseCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *PauseCommand) Run(ctx interface{}) error {
	sc, ok := ctx.(*command.SlashInteractionContext)
	if !ok {
		return nil
	}

	if err := c.Voice.Sessions().Pause(sc.Event.GuildID); err != nil {
		return err
	}
	return command.Respond(sc.Session, sc.Event, "Paused.")
}
