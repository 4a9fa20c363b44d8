package music

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePosition(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"90", 90 * time.Second},
		{"0", 0},
		{"1:30", 90 * time.Second},
		{"10:00", 10 * time.Minute},
		{"1:02:03", time.Hour + 2*time.Minute + 3*time.Second},
		{" 45 ", 45 * time.Second},
	}
	for _, tc := range cases {
		got, err := parsePosition(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestParsePositionRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "abc", "1:2:3:4", "-5", "1:-30", "1m30s"} {
		_, err := parsePosition(in)
		assert.Error(t, err, "input %q", in)
	}
}
