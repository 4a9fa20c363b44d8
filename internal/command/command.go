package command

import (
	"github.com/bwmarrin/discordgo"

	"github.com/keshon/melody/internal/session"
	"github.com/keshon/melody/internal/storage"
)

// Command is anything the interaction dispatcher can run.
type Command interface {
	Name() string
	Description() string
	Aliases() []string
	Group() string
	Category() string
	Run(ctx interface{}) error
}

// SlashProvider - how this command should be registered with Discord.
type SlashProvider interface {
	SlashDefinition() *discordgo.ApplicationCommand
}

// SlashInteractionContext is what the runtime hands a command on execution.
type SlashInteractionContext struct {
	Session *discordgo.Session
	Event   *discordgo.InteractionCreate
	Storage *storage.Storage
}

// Voice is the surface the bot exposes to voice/music commands.
type Voice interface {
	Sessions() *session.Coordinator
	FindUserVoiceState(guildID, userID string) (*VoiceState, error)
}

// VoiceState holds minimal voice channel state for a user.
type VoiceState struct {
	ChannelID string
	UserID    string
}
