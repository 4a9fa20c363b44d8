package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/melody/internal/music/resolver"
)

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{0, "live"},
		{-time.Second, "live"},
		{42 * time.Second, "0:42"},
		{90 * time.Second, "1:30"},
		{10 * time.Minute, "10:00"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1:02:03"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatDuration(tc.in), "duration %v", tc.in)
	}
}

func TestQueueViewEmpty(t *testing.T) {
	assert.True(t, QueueView{}.Empty())
	assert.False(t, QueueView{NowPlaying: &resolver.Track{Title: "x"}}.Empty())
	assert.False(t, QueueView{Upcoming: []resolver.Track{{Title: "x"}}}.Empty())
}

func TestQueueViewDescribe(t *testing.T) {
	view := QueueView{
		NowPlaying: &resolver.Track{Title: "First", Duration: 3 * time.Minute},
		Upcoming: []resolver.Track{
			{Title: "Second", Duration: 90 * time.Second},
		},
	}

	got := view.Describe()
	assert.Contains(t, got, "Now playing: **First** (3:00)")
	assert.Contains(t, got, "- Second (1:30)")
}

func TestSnapshotWithoutSession(t *testing.T) {
	c := newTestCoordinator(newFakeGateway(), &fakeResolver{})

	_, ok := c.Snapshot("42")
	require.False(t, ok)
}
