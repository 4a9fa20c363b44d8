package command

import (
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/keshon/melody/internal/storage"
)

type Middleware func(Command) Command

var ownerCheck = func(string) bool { return false }

// SetOwnerCheck installs the predicate that lets bot owners bypass channel
// and role restrictions.
func SetOwnerCheck(fn func(userID string) bool) {
	if fn != nil {
		ownerCheck = fn
	}
}

type wrappedCommand struct {
	Command
	wrap func(ctx interface{}) error
}

func (w *wrappedCommand) Run(ctx interface{}) error {
	if w.wrap != nil {
		return w.wrap(ctx)
	}
	return w.Command.Run(ctx)
}

func (w *wrappedCommand) SlashDefinition() *discordgo.ApplicationCommand {
	if sp, ok := w.Command.(SlashProvider); ok {
		return sp.SlashDefinition()
	}
	return nil
}

func Apply(cmd Command, mws ...Middleware) Command {
	for _, mw := range mws {
		cmd = mw(cmd)
	}
	return cmd
}

// WithGuildOnly silently drops invocations from outside a guild.
func WithGuildOnly() Middleware {
	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx interface{}) error {
				if v, ok := ctx.(*SlashInteractionContext); ok && v.Event.GuildID == "" {
					return RespondEphemeral(v.Session, v.Event, "This command can only be used inside servers.")
				}
				return cmd.Run(ctx)
			},
		}
	}
}

// WithChannelAllowlist rejects the command when the guild restricts music
// commands to specific channels and this is not one of them. An empty
// allow list allows every channel.
func WithChannelAllowlist() Middleware {
	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx interface{}) error {
				v, ok := ctx.(*SlashInteractionContext)
				if !ok {
					return cmd.Run(ctx)
				}
				if v.Event.Member != nil && ownerCheck(v.Event.Member.User.ID) {
					return cmd.Run(ctx)
				}

				allowed, err := v.Storage.AllowedChannels(v.Event.GuildID)
				if err != nil || len(allowed) == 0 {
					return cmd.Run(ctx)
				}
				for _, ch := range allowed {
					if ch == v.Event.ChannelID {
						return cmd.Run(ctx)
					}
				}
				return RespondEphemeral(v.Session, v.Event, "Music commands are not allowed in this channel.")
			},
		}
	}
}

// WithRoleBlacklist rejects members holding a blacklisted role.
func WithRoleBlacklist() Middleware {
	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx interface{}) error {
				v, ok := ctx.(*SlashInteractionContext)
				if !ok || v.Event.Member == nil {
					return cmd.Run(ctx)
				}
				if ownerCheck(v.Event.Member.User.ID) {
					return cmd.Run(ctx)
				}

				blacklisted, err := v.Storage.BlacklistedRoles(v.Event.GuildID)
				if err != nil || len(blacklisted) == 0 {
					return cmd.Run(ctx)
				}
				for _, role := range v.Event.Member.Roles {
					for _, banned := range blacklisted {
						if role == banned {
							return RespondEphemeral(v.Session, v.Event, "You're not allowed to use music commands.")
						}
					}
				}
				return cmd.Run(ctx)
			},
		}
	}
}

// WithVoiceMatch requires the invoking user to be in a voice channel and,
// when the bot is already connected, in the same one. It also precleans a
// stale session before the command observes it.
func WithVoiceMatch(v Voice) Middleware {
	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx interface{}) error {
				c, ok := ctx.(*SlashInteractionContext)
				if !ok || c.Event.GuildID == "" || c.Event.Member == nil {
					return cmd.Run(ctx)
				}

				guildID := c.Event.GuildID
				v.Sessions().Verify(guildID)

				vs, err := v.FindUserVoiceState(guildID, c.Event.Member.User.ID)
				if err != nil || vs.ChannelID == "" {
					return RespondEphemeral(c.Session, c.Event, "You're not in a voice channel.")
				}
				if botChannel, connected := v.Sessions().Connected(guildID); connected && botChannel != vs.ChannelID {
					return RespondEphemeral(c.Session, c.Event, "You're not in the same voice channel as me.")
				}
				return cmd.Run(ctx)
			},
		}
	}
}

// WithCommandLogger appends the invocation to the guild's command history.
func WithCommandLogger() Middleware {
	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx interface{}) error {
				if v, ok := ctx.(*SlashInteractionContext); ok && v.Event.Member != nil {
					rec := storage.CommandHistoryRecord{
						ChannelID: v.Event.ChannelID,
						UserID:    v.Event.Member.User.ID,
						Username:  v.Event.Member.User.Username,
						Command:   cmd.Name(),
						Datetime:  time.Now(),
					}
					if guild, err := v.Session.State.Guild(v.Event.GuildID); err == nil {
						rec.GuildName = guild.Name
					}
					if channel, err := v.Session.State.Channel(v.Event.ChannelID); err == nil {
						rec.ChannelName = channel.Name
					}
					if err := v.Storage.AddCommandToHistory(v.Event.GuildID, rec); err != nil {
						log.Warn().Err(err).Str("command", cmd.Name()).Msg("failed to log command")
					}
				}
				return cmd.Run(ctx)
			},
		}
	}
}
