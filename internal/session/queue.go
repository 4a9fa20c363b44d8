package session

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/keshon/melody/internal/music/resolver"
)

// Queue is the ordered list of pending tracks for one session plus the
// handle of the currently playing track. Tracks play in insertion order;
// the playing track is never a member of the pending list.
//
// The queue observes playback completion through the handle's Done channel
// and advances itself; the Coordinator never drives advancement.
type Queue struct {
	mu       sync.Mutex
	conn     Connection
	pending  []resolver.Track
	current  TrackHandle
	starting bool
	gen      int
	log      zerolog.Logger
}

func NewQueue(conn Connection, log zerolog.Logger) *Queue {
	return &Queue{conn: conn, log: log}
}

// Append adds tracks in order and starts playback if nothing is playing.
func (q *Queue) Append(tracks ...resolver.Track) {
	q.mu.Lock()
	q.pending = append(q.pending, tracks...)
	q.mu.Unlock()

	q.maybeAdvance()
}

// Current returns the playing track's handle, or nil.
func (q *Queue) Current() TrackHandle {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.current
}

// Pending returns a copy of the pending tracks.
func (q *Queue) Pending() []resolver.Track {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]resolver.Track, len(q.pending))
	copy(out, q.pending)
	return out
}

// Skip stops the current track; advancement happens when its Done channel
// fires, same as a natural end of playback.
func (q *Queue) Skip() error {
	q.mu.Lock()
	h := q.current
	q.mu.Unlock()

	if h == nil {
		return ErrNothingPlaying
	}
	return h.Stop()
}

// Close stops playback and drops all pending tracks. Watchers started under
// the old generation become no-ops.
func (q *Queue) Close() {
	q.mu.Lock()
	h := q.current
	q.current = nil
	q.pending = nil
	q.gen++
	q.mu.Unlock()

	if h != nil {
		if err := h.Stop(); err != nil {
			q.log.Warn().Err(err).Msg("queue: stopping current track on close")
		}
	}
}

// maybeAdvance pops the next pending track and starts it, skipping tracks
// that fail to start. No-op while a track is playing or already starting.
func (q *Queue) maybeAdvance() {
	for {
		q.mu.Lock()
		if q.current != nil || q.starting || len(q.pending) == 0 {
			q.mu.Unlock()
			return
		}
		next := q.pending[0]
		q.pending = q.pending[1:]
		q.starting = true
		conn := q.conn
		gen := q.gen
		q.mu.Unlock()

		handle, err := conn.Play(next)

		q.mu.Lock()
		q.starting = false
		if err != nil {
			q.mu.Unlock()
			q.log.Warn().Err(err).Str("title", next.Title).Msg("queue: skipping unplayable track")
			continue
		}
		if gen != q.gen {
			// Queue was closed while the track was starting.
			q.mu.Unlock()
			_ = handle.Stop()
			return
		}
		q.current = handle
		q.mu.Unlock()

		go q.watch(handle, gen)
		return
	}
}

func (q *Queue) watch(h TrackHandle, gen int) {
	<-h.Done()

	q.mu.Lock()
	if q.gen != gen || q.current != h {
		q.mu.Unlock()
		return
	}
	q.current = nil
	q.mu.Unlock()

	q.maybeAdvance()
}
