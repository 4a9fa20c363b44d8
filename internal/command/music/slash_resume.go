package music

import (
	"github.com/bwmarrin/discordgo"

	"github.com/keshon/melody/internal/command"
)

type ResumeCommand struct {
	Voice command.Voice
}

func (c *ResumeCommand) Name() string        { return "resume" }
func (c *ResumeCommand) Description() string { return "Resume the paused song" }
func (c *ResumeCommand) Aliases() []string   { return []string{} }
func (c *ResumeCommand) Group() string       { return "music" }
func (c *ResumeCommand) Category() string    { return "🎵 Music" }

func (c *ResumeCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *ResumeCommand) Run(ctx interface{}) error {
	sc, ok := ctx.(*command.SlashInteractionContext)
	if !ok {
		return nil
	}

	if err := c.Voice.Sessions().Resume(sc.Event.GuildID); err != nil {
		return err
	}
	return command.Respond(sc.Session, sc.Event, "Resumed.")
}
