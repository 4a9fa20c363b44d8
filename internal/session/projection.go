package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/keshon/melody/internal/music/resolver"
)

// QueueView is a read-only projection of one session's queue for display.
type QueueView struct {
	NowPlaying *resolver.Track
	Upcoming   []resolver.Track
}

// Empty reports whether there is neither a playing track nor pending ones.
func (v QueueView) Empty() bool {
	return v.NowPlaying == nil && len(v.Upcoming) == 0
}

// Describe renders the queue as a short message body.
func (v QueueView) Describe() string {
	var b strings.Builder

	if v.NowPlaying != nil {
		fmt.Fprintf(&b, "Now playing: **%s** (%s)\n", v.NowPlaying.Title, FormatDuration(v.NowPlaying.Duration))
	} else {
		b.WriteString("Nothing playing right now.\n")
	}

	if len(v.Upcoming) == 0 {
		b.WriteString("Nothing upcoming.")
		return b.String()
	}

	b.WriteString("Upcoming:\n")
	for _, t := range v.Upcoming {
		fmt.Fprintf(&b, "- %s (%s)\n", t.Title, FormatDuration(t.Duration))
	}
	return strings.TrimRight(b.String(), "\n")
}

// Snapshot returns the queue projection for a guild. The second return is
// false when the guild has no session.
func (c *Coordinator) Snapshot(guildID string) (QueueView, bool) {
	s, ok := c.session(guildID)
	if !ok {
		return QueueView{}, false
	}

	view := QueueView{Upcoming: s.Queue.Pending()}
	if h := s.Queue.Current(); h != nil {
		t := h.Track()
		view.NowPlaying = &t
	}
	return view, true
}

// FormatDuration renders a track duration as m:ss or h:mm:ss. Zero means a
// live stream.
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return "live"
	}

	total := int(d.Seconds())
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
