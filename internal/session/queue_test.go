package session

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueuePlaysInOrder(t *testing.T) {
	conn := &fakeConn{channelID: "7", alive: true}
	q := NewQueue(conn, zerolog.Nop())

	q.Append(testTrack("one"), testTrack("two"), testTrack("three"))

	require.NotNil(t, q.Current())
	assert.Equal(t, "one", q.Current().Track().Title)

	// The playing track is not a member of the pending list.
	pending := q.Pending()
	require.Len(t, pending, 2)
	assert.Equal(t, "two", pending[0].Title)
	assert.Equal(t, "three", pending[1].Title)
}

func TestQueueAdvancesWhenTrackEnds(t *testing.T) {
	conn := &fakeConn{channelID: "7", alive: true}
	q := NewQueue(conn, zerolog.Nop())

	q.Append(testTrack("one"), testTrack("two"))
	conn.handle(0).finish()

	require.Eventually(t, func() bool {
		h := q.Current()
		return h != nil && h.Track().Title == "two"
	}, time.Second, time.Millisecond)
	assert.Empty(t, q.Pending())

	// Last track ends: the queue goes idle.
	conn.handle(1).finish()
	require.Eventually(t, func() bool {
		return q.Current() == nil
	}, time.Second, time.Millisecond)
}

func TestQueueSkip(t *testing.T) {
	conn := &fakeConn{channelID: "7", alive: true}
	q := NewQueue(conn, zerolog.Nop())

	q.Append(testTrack("one"), testTrack("two"))
	require.NoError(t, q.Skip())

	require.Eventually(t, func() bool {
		h := q.Current()
		return h != nil && h.Track().Title == "two"
	}, time.Second, time.Millisecond)
}

func TestQueueSkipWhenIdle(t *testing.T) {
	q := NewQueue(&fakeConn{channelID: "7", alive: true}, zerolog.Nop())
	assert.ErrorIs(t, q.Skip(), ErrNothingPlaying)
}

func TestQueueSkipsUnplayableTracks(t *testing.T) {
	conn := &fakeConn{
		channelID:  "7",
		alive:      true,
		failTitles: map[string]bool{"broken": true},
	}
	q := NewQueue(conn, zerolog.Nop())

	q.Append(testTrack("broken"), testTrack("good"))

	require.NotNil(t, q.Current())
	assert.Equal(t, "good", q.Current().Track().Title)
	assert.Empty(t, q.Pending())
}

func TestQueueCloseDropsEverything(t *testing.T) {
	conn := &fakeConn{channelID: "7", alive: true}
	q := NewQueue(conn, zerolog.Nop())

	q.Append(testTrack("one"), testTrack("two"), testTrack("three"))
	h := conn.handle(0)

	q.Close()

	assert.Nil(t, q.Current())
	assert.Empty(t, q.Pending())

	select {
	case <-h.Done():
	default:
		t.Fatal("expected the playing track to be stopped")
	}

	// The stale watcher must not restart playback.
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, conn.playCount())
}

func TestQueueAppendAfterClose(t *testing.T) {
	conn := &fakeConn{channelID: "7", alive: true}
	q := NewQueue(conn, zerolog.Nop())

	q.Append(testTrack("one"))
	q.Close()

	q.Append(testTrack("two"))
	require.NotNil(t, q.Current())
	assert.Equal(t, "two", q.Current().Track().Title)
}
