package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/melody/internal/music/resolver"
)

type fakeHandle struct {
	track resolver.Track

	mu     sync.Mutex
	paused bool
	volume int
	seeked time.Duration

	stopOnce sync.Once
	done     chan struct{}
}

func newFakeHandle(track resolver.Track) *fakeHandle {
	return &fakeHandle{track: track, volume: 100, done: make(chan struct{})}
}

func (h *fakeHandle) Track() resolver.Track { return h.track }

func (h *fakeHandle) Pause() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.paused = true
	return nil
}

func (h *fakeHandle) Resume() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.paused = false
	return nil
}

func (h *fakeHandle) Seek(pos time.Duration) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seeked = pos
	return nil
}

func (h *fakeHandle) SetVolume(percent int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.volume = percent
	return nil
}

func (h *fakeHandle) Stop() error {
	h.stopOnce.Do(func() { close(h.done) })
	return nil
}

func (h *fakeHandle) Seekable() bool { return h.track.Seekable() }

func (h *fakeHandle) Done() <-chan struct{} { return h.done }

// finish simulates the track playing out naturally.
func (h *fakeHandle) finish() { h.stopOnce.Do(func() { close(h.done) }) }

func (h *fakeHandle) isPaused() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.paused
}

type fakeConn struct {
	channelID string

	mu            sync.Mutex
	alive         bool
	disconnects   int
	disconnectErr error
	failTitles    map[string]bool
	handles       []*fakeHandle
}

func (c *fakeConn) ChannelID() string { return c.channelID }

func (c *fakeConn) IsAlive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.alive
}

func (c *fakeConn) setAlive(alive bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alive = alive
}

func (c *fakeConn) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disconnects++
	return c.disconnectErr
}

func (c *fakeConn) Play(track resolver.Track) (TrackHandle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failTitles[track.Title] {
		return nil, errors.New("stream unavailable")
	}
	h := newFakeHandle(track)
	c.handles = append(c.handles, h)
	return h, nil
}

func (c *fakeConn) playCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.handles)
}

func (c *fakeConn) handle(i int) *fakeHandle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handles[i]
}

type fakeGateway struct {
	mu          sync.Mutex
	connects    int
	connectErr  error
	conns       map[string]*fakeConn
	closeCalls  int
	closeErr    error
	noGateway   map[string]bool
	botGone     map[string]bool
	channelGone map[string]bool
	occupancy   map[string]int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		conns:       make(map[string]*fakeConn),
		noGateway:   make(map[string]bool),
		botGone:     make(map[string]bool),
		channelGone: make(map[string]bool),
		occupancy:   make(map[string]int),
	}
}

func (g *fakeGateway) Connect(guildID, channelID string) (Connection, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.connectErr != nil {
		return nil, g.connectErr
	}
	g.connects++
	conn := &fakeConn{channelID: channelID, alive: true}
	g.conns[guildID] = conn
	return conn, nil
}

func (g *fakeGateway) ActiveConnection(guildID string) (Connection, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.noGateway[guildID] {
		return nil, false
	}
	conn, ok := g.conns[guildID]
	return conn, ok
}

func (g *fakeGateway) CloseConnection(guildID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closeCalls++
	return g.closeErr
}

func (g *fakeGateway) BotVoiceChannel(guildID string) (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.botGone[guildID] {
		return "", false
	}
	conn, ok := g.conns[guildID]
	if !ok {
		return "", false
	}
	return conn.channelID, true
}

func (g *fakeGateway) ChannelExists(channelID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return !g.channelGone[channelID]
}

func (g *fakeGateway) ChannelOccupancy(guildID, channelID string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	if n, ok := g.occupancy[guildID]; ok {
		return n
	}
	return 2
}

func (g *fakeGateway) conn(guildID string) *fakeConn {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.conns[guildID]
}

func (g *fakeGateway) connectCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.connects
}

func (g *fakeGateway) closeCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.closeCalls
}

type fakeResolver struct {
	single      map[string]resolver.Track
	singleErr   error
	playlists   map[string][]resolver.Track
	playlistErr error
}

func (r *fakeResolver) ResolveSingle(ctx context.Context, url string) (resolver.Track, error) {
	if r.singleErr != nil {
		return resolver.Track{}, r.singleErr
	}
	t, ok := r.single[url]
	if !ok {
		return resolver.Track{}, errors.New("unknown video")
	}
	return t, nil
}

func (r *fakeResolver) ResolvePlaylist(ctx context.Context, url string) ([]resolver.Track, error) {
	if r.playlistErr != nil {
		return nil, r.playlistErr
	}
	tracks, ok := r.playlists[url]
	if !ok {
		return nil, errors.New("unknown playlist")
	}
	return tracks, nil
}

func testTrack(title string) resolver.Track {
	return resolver.Track{ID: title, URL: "https://www.youtube.com/watch?v=" + title, Title: title, Duration: 3 * time.Minute}
}

func newTestCoordinator(gw Gateway, res resolver.Resolver) *Coordinator {
	return New(gw, res, Config{StepInterval: time.Millisecond, PassInterval: 5 * time.Millisecond}, zerolog.Nop())
}

func TestJoinCreatesSession(t *testing.T) {
	gw := newFakeGateway()
	c := newTestCoordinator(gw, &fakeResolver{})

	already, err := c.Join("42", "7")
	require.NoError(t, err)
	assert.False(t, already)
	assert.Equal(t, 1, gw.connectCount())

	channel, ok := c.Connected("42")
	require.True(t, ok)
	assert.Equal(t, "7", channel)
}

func TestJoinIsIdempotent(t *testing.T) {
	gw := newFakeGateway()
	c := newTestCoordinator(gw, &fakeResolver{})

	_, err := c.Join("42", "7")
	require.NoError(t, err)

	already, err := c.Join("42", "7")
	require.NoError(t, err)
	assert.True(t, already)
	assert.Equal(t, 1, gw.connectCount())
}

func TestJoinConcurrentCreatesOneConnection(t *testing.T) {
	gw := newFakeGateway()
	c := newTestCoordinator(gw, &fakeResolver{})

	const racers = 8
	var wg sync.WaitGroup
	fresh := make(chan bool, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			already, err := c.Join("42", "7")
			assert.NoError(t, err)
			fresh <- !already
		}()
	}
	wg.Wait()
	close(fresh)

	freshJoins := 0
	for f := range fresh {
		if f {
			freshJoins++
		}
	}
	assert.Equal(t, 1, freshJoins)
	assert.Equal(t, 1, gw.connectCount())
}

func TestJoinConnectFailureLeavesNoSession(t *testing.T) {
	gw := newFakeGateway()
	gw.connectErr = errors.New("handshake timeout")
	c := newTestCoordinator(gw, &fakeResolver{})

	_, err := c.Join("42", "7")
	require.Error(t, err)

	_, ok := c.Connected("42")
	assert.False(t, ok)

	// The guild is not poisoned: a later join succeeds.
	gw.connectErr = nil
	already, err := c.Join("42", "7")
	require.NoError(t, err)
	assert.False(t, already)
}

func TestLeaveWithoutSession(t *testing.T) {
	gw := newFakeGateway()
	c := newTestCoordinator(gw, &fakeResolver{})

	assert.False(t, c.Leave("42"))
	assert.Equal(t, 0, gw.closeCount())
}

func TestLeaveTearsDownSession(t *testing.T) {
	gw := newFakeGateway()
	c := newTestCoordinator(gw, &fakeResolver{})

	_, err := c.Join("42", "7")
	require.NoError(t, err)

	assert.True(t, c.Leave("42"))
	assert.Equal(t, 1, gw.conn("42").disconnects)
	assert.Equal(t, 1, gw.closeCount())

	_, ok := c.Connected("42")
	assert.False(t, ok)

	// Second leave finds nothing.
	assert.False(t, c.Leave("42"))
}

func TestLeaveSwallowsTeardownErrors(t *testing.T) {
	gw := newFakeGateway()
	gw.closeErr = errors.New("transport already closed")
	c := newTestCoordinator(gw, &fakeResolver{})

	_, err := c.Join("42", "7")
	require.NoError(t, err)
	gw.conn("42").disconnectErr = errors.New("socket gone")

	assert.True(t, c.Leave("42"))
	_, ok := c.Connected("42")
	assert.False(t, ok)
}

func TestEnqueueWithoutSession(t *testing.T) {
	c := newTestCoordinator(newFakeGateway(), &fakeResolver{})

	_, err := c.Enqueue(context.Background(), "42", "https://www.youtube.com/watch?v=abc", false)
	assert.ErrorIs(t, err, ErrNotInVoice)
}

func TestEnqueueSingleTrack(t *testing.T) {
	gw := newFakeGateway()
	url := "https://www.youtube.com/watch?v=abc"
	res := &fakeResolver{single: map[string]resolver.Track{url: testTrack("abc")}}
	c := newTestCoordinator(gw, res)

	_, err := c.Join("42", "7")
	require.NoError(t, err)

	added, err := c.Enqueue(context.Background(), "42", url, false)
	require.NoError(t, err)
	assert.False(t, added.Playlist)
	require.Len(t, added.Tracks, 1)
	assert.Equal(t, "abc", added.Tracks[0].Title)

	// Playback starts immediately on an idle queue.
	assert.Equal(t, 1, gw.conn("42").playCount())
}

func TestEnqueuePlaylist(t *testing.T) {
	gw := newFakeGateway()
	url := "https://www.youtube.com/playlist?list=PL123"
	res := &fakeResolver{playlists: map[string][]resolver.Track{
		url: {testTrack("one"), testTrack("two"), testTrack("three")},
	}}
	c := newTestCoordinator(gw, res)

	_, err := c.Join("42", "7")
	require.NoError(t, err)

	added, err := c.Enqueue(context.Background(), "42", url, false)
	require.NoError(t, err)
	assert.True(t, added.Playlist)
	assert.Len(t, added.Tracks, 3)

	view, ok := c.Snapshot("42")
	require.True(t, ok)
	require.NotNil(t, view.NowPlaying)
	assert.Equal(t, "one", view.NowPlaying.Title)
	require.Len(t, view.Upcoming, 2)
	assert.Equal(t, "two", view.Upcoming[0].Title)
	assert.Equal(t, "three", view.Upcoming[1].Title)
}

func TestEnqueueExplicitPlaylistFailsHard(t *testing.T) {
	gw := newFakeGateway()
	url := "https://www.youtube.com/watch?v=abc"
	res := &fakeResolver{
		single:      map[string]resolver.Track{url: testTrack("abc")},
		playlistErr: errors.New("not a playlist"),
	}
	c := newTestCoordinator(gw, res)

	_, err := c.Join("42", "7")
	require.NoError(t, err)

	_, err = c.Enqueue(context.Background(), "42", url, true)
	assert.ErrorIs(t, err, ErrNotPlaylist)
	assert.Equal(t, 0, gw.conn("42").playCount())
}

func TestEnqueueAutoPlaylistFallsBackToSingle(t *testing.T) {
	gw := newFakeGateway()
	url := "https://www.youtube.com/watch?v=abc&list=RDabc"
	res := &fakeResolver{
		single:      map[string]resolver.Track{url: testTrack("abc")},
		playlistErr: errors.New("mix playlists are not viewable"),
	}
	c := newTestCoordinator(gw, res)

	_, err := c.Join("42", "7")
	require.NoError(t, err)

	added, err := c.Enqueue(context.Background(), "42", url, false)
	require.NoError(t, err)
	assert.False(t, added.Playlist)
	require.Len(t, added.Tracks, 1)
	assert.Equal(t, "abc", added.Tracks[0].Title)
}

func TestEnqueueBadSource(t *testing.T) {
	gw := newFakeGateway()
	res := &fakeResolver{singleErr: errors.New("video unavailable")}
	c := newTestCoordinator(gw, res)

	_, err := c.Join("42", "7")
	require.NoError(t, err)

	_, err = c.Enqueue(context.Background(), "42", "https://www.youtube.com/watch?v=gone", false)
	assert.ErrorIs(t, err, ErrBadSource)
}

func TestPlaybackControls(t *testing.T) {
	gw := newFakeGateway()
	url := "https://www.youtube.com/watch?v=abc"
	res := &fakeResolver{single: map[string]resolver.Track{url: testTrack("abc")}}
	c := newTestCoordinator(gw, res)

	_, err := c.Join("42", "7")
	require.NoError(t, err)
	_, err = c.Enqueue(context.Background(), "42", url, false)
	require.NoError(t, err)

	h := gw.conn("42").handle(0)

	require.NoError(t, c.Pause("42"))
	assert.True(t, h.isPaused())
	require.NoError(t, c.Resume("42"))
	assert.False(t, h.isPaused())

	require.NoError(t, c.Seek("42", 90*time.Second))
	require.NoError(t, c.SetVolume("42", 50))
	h.mu.Lock()
	assert.Equal(t, 90*time.Second, h.seeked)
	assert.Equal(t, 50, h.volume)
	h.mu.Unlock()
}

func TestControlsWithoutPlayback(t *testing.T) {
	c := newTestCoordinator(newFakeGateway(), &fakeResolver{})

	assert.ErrorIs(t, c.Pause("42"), ErrNothingPlaying)
	assert.ErrorIs(t, c.Resume("42"), ErrNothingPlaying)
	assert.ErrorIs(t, c.Skip("42"), ErrNothingPlaying)
	assert.ErrorIs(t, c.Seek("42", time.Second), ErrNothingPlaying)
	assert.ErrorIs(t, c.SetVolume("42", 50), ErrNothingPlaying)
}

func TestSeekLiveStream(t *testing.T) {
	gw := newFakeGateway()
	url := "https://www.youtube.com/watch?v=live"
	live := testTrack("live")
	live.Duration = 0
	res := &fakeResolver{single: map[string]resolver.Track{url: live}}
	c := newTestCoordinator(gw, res)

	_, err := c.Join("42", "7")
	require.NoError(t, err)
	_, err = c.Enqueue(context.Background(), "42", url, false)
	require.NoError(t, err)

	assert.ErrorIs(t, c.Seek("42", time.Minute), ErrNotSeekable)
}

func TestSessionLifecycle(t *testing.T) {
	gw := newFakeGateway()
	url := "https://www.youtube.com/watch?v=abc"
	res := &fakeResolver{single: map[string]resolver.Track{url: testTrack("abc")}}
	c := newTestCoordinator(gw, res)

	already, err := c.Join("42", "7")
	require.NoError(t, err)
	require.False(t, already)

	added, err := c.Enqueue(context.Background(), "42", url, false)
	require.NoError(t, err)
	require.Len(t, added.Tracks, 1)

	// A repeated join is a no-op and leaves the queue alone.
	already, err = c.Join("42", "7")
	require.NoError(t, err)
	assert.True(t, already)

	view, ok := c.Snapshot("42")
	require.True(t, ok)
	require.NotNil(t, view.NowPlaying)
	assert.Equal(t, "abc", view.NowPlaying.Title)

	assert.True(t, c.Leave("42"))
	_, ok = c.Connected("42")
	assert.False(t, ok)
}

func TestShutdownLeavesAllGuilds(t *testing.T) {
	gw := newFakeGateway()
	c := newTestCoordinator(gw, &fakeResolver{})

	_, err := c.Join("1", "10")
	require.NoError(t, err)
	_, err = c.Join("2", "20")
	require.NoError(t, err)

	c.Shutdown()

	_, ok := c.Connected("1")
	assert.False(t, ok)
	_, ok = c.Connected("2")
	assert.False(t, ok)
	assert.Equal(t, 2, gw.closeCount())
}
