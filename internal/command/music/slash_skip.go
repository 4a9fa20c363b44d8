package music

import (
	"github.com/bwmarrin/discordgo"

	"github.com/keshon/melody/internal/command"
)

type SkipCommand struct {
	Voice command.Voice
}

func (c *SkipCommand) Name() string        { return "skip" }
func (c *SkipCommand) Description() string { return "Skip the current song" }
func (c *SkipCommand) Aliases() []string   { return []string{} }
func (c *SkipCommand) Group() string       { return "music" }
func (c *SkipCommand) Category() string    { return "🎵 Music" }

func (c *SkipCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *SkipCommand) Run(ctx interface{}) error {
	sc, ok := ctx.(*command.SlashInteractionContext)
	if !ok {
		return nil
	}

	if err := c.Voice.Sessions().Skip(sc.Event.GuildID); err != nil {
		return err
	}
	return command.Respond(sc.Session, sc.Event, "Skipped.")
}
