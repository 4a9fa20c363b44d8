package resolver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	youtube "github.com/kkdai/youtube/v2"
)

var ErrEmptyPlaylist = errors.New("no videos found in the playlist")

// YouTube resolves tracks and playlists through the YouTube data endpoints.
type YouTube struct {
	client *youtube.Client
}

func NewYouTube() *YouTube {
	return &YouTube{
		client: &youtube.Client{
			HTTPClient: &http.Client{
				Timeout: 15 * time.Second,
			},
		},
	}
}

func (y *YouTube) ResolveSingle(ctx context.Context, url string) (Track, error) {
	video, err := y.client.GetVideoContext(ctx, url)
	if err != nil {
		return Track{}, fmt.Errorf("youtube video lookup: %w", err)
	}

	return Track{
		ID:       video.ID,
		URL:      watchURL(video.ID),
		Title:    video.Title,
		Duration: video.Duration,
	}, nil
}

func (y *YouTube) ResolvePlaylist(ctx context.Context, url string) ([]Track, error) {
	playlist, err := y.client.GetPlaylistContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("youtube playlist lookup: %w", err)
	}
	if len(playlist.Videos) == 0 {
		return nil, ErrEmptyPlaylist
	}

	tracks := make([]Track, 0, len(playlist.Videos))
	for _, entry := range playlist.Videos {
		tracks = append(tracks, Track{
			ID:       entry.ID,
			URL:      watchURL(entry.ID),
			Title:    entry.Title,
			Duration: entry.Duration,
		})
	}
	return tracks, nil
}

// StreamURL returns a direct link to the best audio format of the track.
func (y *YouTube) StreamURL(ctx context.Context, track Track) (string, error) {
	video, err := y.client.GetVideoContext(ctx, track.URL)
	if err != nil {
		return "", fmt.Errorf("youtube video lookup: %w", err)
	}

	formats := video.Formats.WithAudioChannels()
	if len(formats) == 0 {
		return "", errors.New("no audio formats found for video")
	}

	link, err := y.client.GetStreamURLContext(ctx, video, &formats[0])
	if err != nil {
		return "", fmt.Errorf("get stream URL: %w", err)
	}
	return link, nil
}

func watchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}
