package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/keshon/melody/internal/music/resolver"
)

// Session is the live voice state for one guild: the connection it owns and
// its play queue. At most one Session exists per guild at any time, and a
// Session is never touched outside its guild's lock.
type Session struct {
	GuildID   string
	ChannelID string
	Conn      Connection
	Queue     *Queue
}

// Config tunes the reconciliation loop cadence. Zero values fall back to
// the defaults (500ms between guilds, 60s between passes).
type Config struct {
	StepInterval time.Duration
	PassInterval time.Duration
}

// Coordinator owns one mutable session per guild and serializes all
// state-changing operations on a session with a per-guild lock. The guild
// locks are created lazily and never evicted; they live for the process
// lifetime, which is fine at realistic guild counts.
//
// The registry mutex guards only map membership; session state is mutated
// exclusively under the guild's own lock.
type Coordinator struct {
	gw       Gateway
	resolver resolver.Resolver
	log      zerolog.Logger

	mu       sync.Mutex
	locks    map[string]*sync.Mutex
	sessions map[string]*Session

	pace         *rate.Limiter
	passInterval time.Duration
}

func New(gw Gateway, res resolver.Resolver, cfg Config, log zerolog.Logger) *Coordinator {
	step := cfg.StepInterval
	if step <= 0 {
		step = 500 * time.Millisecond
	}
	pass := cfg.PassInterval
	if pass <= 0 {
		pass = time.Minute
	}

	return &Coordinator{
		gw:           gw,
		resolver:     res,
		log:          log,
		locks:        make(map[string]*sync.Mutex),
		sessions:     make(map[string]*Session),
		pace:         rate.NewLimiter(rate.Every(step), 1),
		passInterval: pass,
	}
}

// lockFor returns the guild's lock, creating it on first use.
func (c *Coordinator) lockFor(guildID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()

	mu, ok := c.locks[guildID]
	if !ok {
		mu = &sync.Mutex{}
		c.locks[guildID] = mu
	}
	return mu
}

func (c *Coordinator) session(guildID string) (*Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[guildID]
	return s, ok
}

func (c *Coordinator) put(s *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[s.GuildID] = s
}

func (c *Coordinator) take(guildID string) *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.sessions[guildID]
	delete(c.sessions, guildID)
	return s
}

func (c *Coordinator) guilds() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.sessions))
	for g := range c.sessions {
		out = append(out, g)
	}
	return out
}

// Connected reports the channel the guild's session is bound to, if one
// exists. It is a snapshot read and takes no guild lock.
func (c *Coordinator) Connected(guildID string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[guildID]
	if !ok {
		return "", false
	}
	return s.ChannelID, true
}

// Join connects to the voice channel and creates a session for the guild.
// It returns already=true (and does nothing) when a session exists, so a
// second join racing the first can never create a duplicate connection.
func (c *Coordinator) Join(guildID, channelID string) (already bool, err error) {
	// Best-effort preclean of a stale session before taking the lock; the
	// locked existence check below is the actual guard.
	c.Verify(guildID)

	mu := c.lockFor(guildID)
	mu.Lock()
	defer mu.Unlock()

	if _, ok := c.session(guildID); ok {
		return true, nil
	}

	conn, err := c.gw.Connect(guildID, channelID)
	if err != nil {
		return false, fmt.Errorf("voice connect: %w", err)
	}

	s := &Session{
		GuildID:   guildID,
		ChannelID: channelID,
		Conn:      conn,
		Queue:     NewQueue(conn, c.log),
	}
	c.put(s)

	c.log.Info().Str("guild", guildID).Str("channel", channelID).Msg("session created")
	return false, nil
}

// Leave destroys the guild's session. Teardown is best-effort: disconnect
// and transport-close failures are logged and swallowed so a half-dead
// connection can never block cleanup. Returns false when no session existed.
func (c *Coordinator) Leave(guildID string) bool {
	mu := c.lockFor(guildID)
	mu.Lock()
	defer mu.Unlock()

	return c.leaveLocked(guildID)
}

// leaveLocked removes and tears down the session. Callers must hold the
// guild lock; it is safe to call redundantly from any cleanup path.
func (c *Coordinator) leaveLocked(guildID string) bool {
	s := c.take(guildID)
	if s == nil {
		return false
	}

	s.Queue.Close()

	if err := s.Conn.Disconnect(); err != nil {
		c.log.Warn().Err(err).Str("guild", guildID).Msg("voice disconnect failed, session removed anyway")
	}
	if err := c.gw.CloseConnection(guildID); err != nil {
		c.log.Warn().Err(err).Str("guild", guildID).Msg("transport close failed, session removed anyway")
	}

	c.log.Info().Str("guild", guildID).Msg("session destroyed")
	return true
}

// Shutdown tears down every active session. Used on process exit so the
// bot leaves voice channels cleanly.
func (c *Coordinator) Shutdown() {
	for _, guildID := range c.guilds() {
		c.Leave(guildID)
	}
}

// Added describes what an Enqueue call resolved and appended.
type Added struct {
	Tracks   []resolver.Track
	Playlist bool
}

// Enqueue resolves the URL and appends the result to the guild's queue.
// A playlist-looking URL (or an explicit flag) is tried as a playlist
// first; when auto-detection was wrong the failure falls back to
// single-track resolution, but an explicit playlist flag fails hard.
func (c *Coordinator) Enqueue(ctx context.Context, guildID, url string, isPlaylist bool) (*Added, error) {
	mu := c.lockFor(guildID)
	mu.Lock()
	defer mu.Unlock()

	s, ok := c.session(guildID)
	if !ok {
		return nil, ErrNotInVoice
	}

	if isPlaylist || resolver.IsPlaylistURL(url) {
		tracks, err := c.resolver.ResolvePlaylist(ctx, url)
		if err == nil {
			s.Queue.Append(tracks...)
			c.log.Info().Str("guild", guildID).Int("tracks", len(tracks)).Msg("playlist enqueued")
			return &Added{Tracks: tracks, Playlist: true}, nil
		}
		if isPlaylist {
			return nil, ErrNotPlaylist
		}
		c.log.Debug().Err(err).Str("url", url).Msg("playlist resolution failed, retrying as single track")
	}

	track, err := c.resolver.ResolveSingle(ctx, url)
	if err != nil {
		c.log.Debug().Err(err).Str("url", url).Msg("track resolution failed")
		return nil, ErrBadSource
	}

	s.Queue.Append(track)
	c.log.Info().Str("guild", guildID).Str("title", track.Title).Msg("track enqueued")
	return &Added{Tracks: []resolver.Track{track}}, nil
}

// withCurrent runs fn against the currently playing track's handle under
// the guild lock.
func (c *Coordinator) withCurrent(guildID string, fn func(TrackHandle) error) error {
	mu := c.lockFor(guildID)
	mu.Lock()
	defer mu.Unlock()

	s, ok := c.session(guildID)
	if !ok {
		return ErrNothingPlaying
	}
	h := s.Queue.Current()
	if h == nil {
		return ErrNothingPlaying
	}
	return fn(h)
}

func (c *Coordinator) Pause(guildID string) error {
	return c.withCurrent(guildID, TrackHandle.Pause)
}

func (c *Coordinator) Resume(guildID string) error {
	return c.withCurrent(guildID, TrackHandle.Resume)
}

func (c *Coordinator) Skip(guildID string) error {
	mu := c.lockFor(guildID)
	mu.Lock()
	defer mu.Unlock()

	s, ok := c.session(guildID)
	if !ok {
		return ErrNothingPlaying
	}
	return s.Queue.Skip()
}

func (c *Coordinator) Seek(guildID string, pos time.Duration) error {
	return c.withCurrent(guildID, func(h TrackHandle) error {
		if !h.Seekable() {
			return ErrNotSeekable
		}
		return h.Seek(pos)
	})
}

func (c *Coordinator) SetVolume(guildID string, percent int) error {
	return c.withCurrent(guildID, func(h TrackHandle) error {
		return h.SetVolume(percent)
	})
}
