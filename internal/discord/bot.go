package discord

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/keshon/melody/internal/command"
	"github.com/keshon/melody/internal/command/core"
	"github.com/keshon/melody/internal/command/music"
	"github.com/keshon/melody/internal/command/settings"
	"github.com/keshon/melody/internal/config"
	"github.com/keshon/melody/internal/music/resolver"
	"github.com/keshon/melody/internal/session"
	"github.com/keshon/melody/internal/storage"
)

// Bot is the Discord frontend: it owns the gateway session, the voice
// session coordinator, and the slash command dispatch.
type Bot struct {
	dg      *discordgo.Session
	cfg     *config.Config
	storage *storage.Storage
	coord   *session.Coordinator
}

// StartBot runs the Discord bot until the context is cancelled.
func StartBot(ctx context.Context, cfg *config.Config, store *storage.Storage) error {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildVoiceStates

	yt := resolver.NewYouTube()
	engine := newPlaybackEngine(yt, cfg.FFmpegPath, log.Logger)
	coord := session.New(newGatewayAdapter(dg, engine), yt, session.Config{
		StepInterval: cfg.VerifyStepInterval,
		PassInterval: cfg.VerifyPassInterval,
	}, log.Logger)

	b := &Bot{
		dg:      dg,
		cfg:     cfg,
		storage: store,
		coord:   coord,
	}
	b.registerCommands()

	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onGuildCreate)
	dg.AddHandler(b.onInteractionCreate)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer dg.Close()

	go coord.Run(ctx)

	<-ctx.Done()
	log.Info().Msg("shutdown signal received, leaving voice channels")
	coord.Shutdown()
	return nil
}

// Sessions exposes the voice session coordinator to commands.
func (b *Bot) Sessions() *session.Coordinator {
	return b.coord
}

// FindUserVoiceState locates the voice channel a user currently sits in.
func (b *Bot) FindUserVoiceState(guildID, userID string) (*command.VoiceState, error) {
	guild, err := b.dg.State.Guild(guildID)
	if err != nil {
		return nil, fmt.Errorf("guild not in state cache: %w", err)
	}

	for _, vs := range guild.VoiceStates {
		if vs.UserID == userID {
			return &command.VoiceState{ChannelID: vs.ChannelID, UserID: userID}, nil
		}
	}
	return nil, fmt.Errorf("user %s is not in a voice channel", userID)
}

func (b *Bot) registerCommands() {
	command.SetEmbedColor(b.cfg.EmbedColor)
	command.SetOwnerCheck(b.cfg.IsOwner)

	musicMiddleware := []command.Middleware{
		command.WithGuildOnly(),
		command.WithChannelAllowlist(),
		command.WithRoleBlacklist(),
		command.WithVoiceMatch(b),
		command.WithCommandLogger(),
	}
	for _, cmd := range []command.Command{
		&music.PlayCommand{Voice: b},
		&music.LeaveCommand{Voice: b},
		&music.PauseCommand{Voice: b},
		&music.ResumeCommand{Voice: b},
		&music.SkipCommand{Voice: b},
		&music.SeekCommand{Voice: b},
		&music.VolumeCommand{Voice: b},
	} {
		command.Register(command.Apply(cmd, musicMiddleware...))
	}

	// Queue is read-only: anyone may look regardless of voice channel.
	command.Register(command.Apply(
		&music.QueueCommand{Voice: b},
		command.WithGuildOnly(),
		command.WithChannelAllowlist(),
		command.WithRoleBlacklist(),
		command.WithCommandLogger(),
	))

	command.Register(command.Apply(
		&settings.SettingsCommand{},
		command.WithGuildOnly(),
		command.WithCommandLogger(),
	))

	command.Register(command.Apply(
		&core.HelpCommand{},
		command.WithCommandLogger(),
	))
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	if !b.cfg.InitSlashCommands {
		log.Info().Msg("slash command registration skipped")
		return
	}
	for _, g := range r.Guilds {
		if err := b.registerSlashCommands(g.ID); err != nil {
			log.Error().Err(err).Str("guild", g.ID).Msg("failed to register slash commands")
		}
	}
	log.Info().Str("user", s.State.User.Username).Msg("discord bot is running")
}

func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	log.Info().Str("guild", g.ID).Str("name", g.Name).Msg("guild available")
	if b.cfg.InitSlashCommands {
		if err := b.registerSlashCommands(g.ID); err != nil {
			log.Error().Err(err).Str("guild", g.ID).Msg("failed to register slash commands")
		}
	}
}

// registerSlashCommands overwrites the guild's slash command set with the
// definitions of every registered command.
func (b *Bot) registerSlashCommands(guildID string) error {
	appID := b.dg.State.User.ID
	if appID == "" {
		user, err := b.dg.User("@me")
		if err != nil {
			return err
		}
		appID = user.ID
	}

	var defs []*discordgo.ApplicationCommand
	for _, cmd := range command.All() {
		if sp, ok := cmd.(command.SlashProvider); ok {
			if def := sp.SlashDefinition(); def != nil {
				defs = append(defs, def)
			}
		}
	}

	_, err := b.dg.ApplicationCommandBulkOverwrite(appID, guildID, defs)
	return err
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	name := i.ApplicationCommandData().Name
	cmd, ok := command.Get(name)
	if !ok {
		log.Warn().Str("command", name).Msg("unknown command")
		return
	}

	ctx := &command.SlashInteractionContext{
		Session: s,
		Event:   i,
		Storage: b.storage,
	}
	if err := cmd.Run(ctx); err != nil {
		var uerr *session.UserError
		if errors.As(err, &uerr) {
			if rerr := command.RespondEphemeral(s, i, uerr.Error()); rerr != nil {
				log.Warn().Err(rerr).Str("command", name).Msg("failed to deliver user error")
			}
			return
		}
		log.Error().Err(err).Str("command", name).Msg("command failed")
		if rerr := command.RespondEphemeral(s, i, "Something went wrong running that command."); rerr != nil {
			log.Warn().Err(rerr).Str("command", name).Msg("failed to deliver error response")
		}
	}
}
