package resolver

import (
	"context"
	"strings"
	"time"
)

// Track is one resolved audio source.
type Track struct {
	ID       string
	URL      string
	Title    string
	Duration time.Duration
}

// Seekable reports whether the track supports seeking. Live streams report
// a zero duration and cannot be seeked.
func (t Track) Seekable() bool {
	return t.Duration > 0
}

// Resolver turns a user-supplied URL into playable tracks.
type Resolver interface {
	ResolveSingle(ctx context.Context, url string) (Track, error)
	ResolvePlaylist(ctx context.Context, url string) ([]Track, error)
}

// StreamSource produces a direct audio stream URL for a resolved track.
type StreamSource interface {
	StreamURL(ctx context.Context, track Track) (string, error)
}

// IsPlaylistURL is the heuristic used when no explicit playlist flag is
// given. It is allowed to be wrong; callers fall back to single-track
// resolution when playlist resolution fails.
func IsPlaylistURL(raw string) bool {
	return strings.Contains(raw, "playlist") ||
		strings.Contains(raw, "?list=") ||
		strings.Contains(raw, "&list=")
}
