package session

import (
	"time"

	"github.com/keshon/melody/internal/music/resolver"
)

// Gateway is the chat-platform client the Coordinator drives. It hides the
// network handshake and the platform-side voice-state cache.
type Gateway interface {
	// Connect joins the voice channel and returns a live connection.
	Connect(guildID, channelID string) (Connection, error)

	// ActiveConnection reports the transport-level connection object the
	// gateway currently holds for the guild, if any.
	ActiveConnection(guildID string) (Connection, bool)

	// CloseConnection tears down the transport-level connection object.
	CloseConnection(guildID string) error

	// BotVoiceChannel returns the channel the bot itself is seen in by the
	// platform, if any.
	BotVoiceChannel(guildID string) (string, bool)

	// ChannelExists reports whether the channel still resolves.
	ChannelExists(channelID string) bool

	// ChannelOccupancy counts members currently in the voice channel,
	// including the bot.
	ChannelOccupancy(guildID, channelID string) int
}

// Connection is one live voice connection, exclusively owned by a Session.
type Connection interface {
	ChannelID() string
	IsAlive() bool
	Disconnect() error

	// Play starts playback of a track on this connection's playback engine
	// and returns its control handle.
	Play(track resolver.Track) (TrackHandle, error)
}

// TrackHandle is the control surface of the currently playing track. The
// queue holds it only while the track plays; it is owned by the playback
// engine, not by the queue.
type TrackHandle interface {
	Track() resolver.Track
	Pause() error
	Resume() error
	Seek(pos time.Duration) error
	SetVolume(percent int) error
	Stop() error
	Seekable() bool

	// Done is closed when playback of the track ends for any reason.
	Done() <-chan struct{}
}
