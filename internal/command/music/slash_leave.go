package music

import (
	"github.com/bwmarrin/discordgo"

	"github.com/keshon/melody/internal/command"
)

type LeaveCommand struct {
	Voice command.Voice
}

func (c *LeaveCommand) Name() string        { return "leave" }
func (c *LeaveCommand) Description() string { return "Leave the voice channel and clear the queue" }
func (c *LeaveCommand) Aliases() []string   { return []string{} }
func (c *LeaveCommand) Group() string       { return "music" }
func (c *LeaveCommand) Category() string    { return "🎵 Music" }

func (c *LeaveCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *LeaveCommand) Run(ctx interface{}) error {
	sc, ok := ctx.(*command.SlashInteractionContext)
	if !ok {
		return nil
	}

	if removed := c.Voice.Sessions().Leave(sc.Event.GuildID); !removed {
		return command.RespondEphemeral(sc.Session, sc.Event, "I am not in a voice channel.")
	}
	return command.Respond(sc.Session, sc.Event, "Disconnected from voice channel.")
}
