package music

import (
	"github.com/bwmarrin/discordgo"

	"github.com/keshon/melody/internal/command"
	"github.com/keshon/melody/internal/session"
)

type QueueCommand struct {
	Voice command.Voice
}

func (c *QueueCommand) Name() string        { return "queue" }
func (c *QueueCommand) Description() string { return "Show the current song and what's next" }
func (c *QueueCommand) Aliases() []string   { return []string{} }
func (c *QueueCommand) Group() string       { return "music" }
func (c *QueueCommand) Category() string    { return "🎵 Music" }

func (c *QueueCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *QueueCommand) Run(ctx interface{}) error {
	sc, ok := ctx.(*command.SlashInteractionContext)
	if !ok {
		return nil
	}

	view, ok := c.Voice.Sessions().Snapshot(sc.Event.GuildID)
	if !ok || view.Empty() {
		return session.NewUserError("The queue is empty!")
	}
	return command.Respond(sc.Session, sc.Event, view.Describe())
}
