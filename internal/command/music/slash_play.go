package music

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/keshon/melody/internal/command"
	"github.com/keshon/melody/internal/session"
	"github.com/keshon/melody/internal/storage"
)

type PlayCommand struct {
	Voice command.Voice
}

func (c *PlayCommand) Name() string        { return "play" }
func (c *PlayCommand) Description() string { return "Play a song or playlist in your voice channel" }
func (c *PlayCommand) Aliases() []string   { return []string{} }
func (c *PlayCommand) Group() string       { return "music" }
func (c *PlayCommand) Category() string    { return "🎵 Music" }

func (c *PlayCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "url",
				Description: "The URL of the song or playlist to play",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionBoolean,
				Name:        "playlist",
				Description: "Treat the URL as a playlist",
				Required:    false,
			},
		},
	}
}

func (c *PlayCommand) Run(ctx interface{}) error {
	sc, ok := ctx.(*command.SlashInteractionContext)
	if !ok {
		return nil
	}

	s := sc.Session
	ev := sc.Event
	guildID := ev.GuildID
	member := ev.Member

	var url string
	var isPlaylist bool
	for _, opt := range ev.ApplicationCommandData().Options {
		switch opt.Name {
		case "url":
			url = opt.StringValue()
		case "playlist":
			isPlaylist = opt.BoolValue()
		}
	}

	vs, err := c.Voice.FindUserVoiceState(guildID, member.User.ID)
	if err != nil || vs.ChannelID == "" {
		return command.RespondEphemeral(s, ev, "You're not in a voice channel.")
	}

	coord := c.Voice.Sessions()
	already, err := coord.Join(guildID, vs.ChannelID)
	if err != nil {
		log.Error().Err(err).Str("guild", guildID).Msg("voice join failed")
		return command.RespondEphemeral(s, ev, "Couldn't join your voice channel.")
	}

	// Resolution can be slow; acknowledge before resolving. A fresh join
	// doubles as the acknowledgement.
	if already {
		if err := command.Defer(s, ev); err != nil {
			return fmt.Errorf("failed to send deferred response: %w", err)
		}
	} else {
		if err := command.Respond(s, ev, fmt.Sprintf("Connected to <#%s>.", vs.ChannelID)); err != nil {
			return fmt.Errorf("failed to respond: %w", err)
		}
	}

	reqCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	added, err := coord.Enqueue(reqCtx, guildID, url, isPlaylist)
	if err != nil {
		var uerr *session.UserError
		if errors.As(err, &uerr) {
			return command.FollowupEphemeral(s, ev, uerr.Error())
		}
		log.Error().Err(err).Str("guild", guildID).Msg("enqueue failed")
		return command.FollowupEphemeral(s, ev, "Failed to add that to the queue.")
	}

	for _, t := range added.Tracks {
		if err := sc.Storage.AddTrackToHistory(guildID, storage.TrackHistoryRecord{
			URL:      t.URL,
			Title:    t.Title,
			Duration: t.Duration,
			UserID:   member.User.ID,
			PlayedAt: time.Now(),
		}); err != nil {
			log.Warn().Err(err).Str("guild", guildID).Msg("failed to record track history")
		}
	}

	if added.Playlist {
		return command.Followup(s, ev, fmt.Sprintf("Added %d songs to the queue.", len(added.Tracks)))
	}
	return command.Followup(s, ev, fmt.Sprintf("Added **%s** to the queue.", added.Tracks[0].Title))
}
