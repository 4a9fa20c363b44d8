package discord

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"layeh.com/gopus"

	"github.com/keshon/melody/internal/music/resolver"
	"github.com/keshon/melody/internal/session"
)

const (
	channels   = 2
	sampleRate = 48000
	frameSize  = 960 // 20ms at 48kHz
)

const frameDuration = 20 * time.Millisecond

// playbackEngine turns a resolved track into opus frames on a voice
// connection: ffmpeg transcodes the stream URL to s16le PCM, gopus encodes
// it, and the send loop applies pause/volume/seek.
type playbackEngine struct {
	streams resolver.StreamSource
	ffmpeg  string
	log     zerolog.Logger
}

func newPlaybackEngine(streams resolver.StreamSource, ffmpegPath string, log zerolog.Logger) *playbackEngine {
	return &playbackEngine{streams: streams, ffmpeg: ffmpegPath, log: log}
}

func (e *playbackEngine) play(vc *discordgo.VoiceConnection, track resolver.Track) (session.TrackHandle, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	url, err := e.streams.StreamURL(ctx, track)
	if err != nil {
		return nil, fmt.Errorf("resolve stream URL: %w", err)
	}

	h := &trackHandle{
		eng:    e,
		vc:     vc,
		track:  track,
		volume: 1.0,
		seekTo: make(chan time.Duration, 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}

	go h.run(url)
	return h, nil
}

type trackHandle struct {
	eng   *playbackEngine
	vc    *discordgo.VoiceConnection
	track resolver.Track

	mu     sync.Mutex
	paused bool
	volume float64
	pos    time.Duration

	seekTo   chan time.Duration
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func (h *trackHandle) Track() resolver.Track { return h.track }

func (h *trackHandle) Pause() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.paused = true
	return nil
}

func (h *trackHandle) Resume() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.paused = false
	return nil
}

func (h *trackHandle) Seekable() bool { return h.track.Seekable() }

func (h *trackHandle) Seek(pos time.Duration) error {
	if pos < 0 {
		pos = 0
	}
	select {
	case h.seekTo <- pos:
		return nil
	case <-h.done:
		return session.ErrNothingPlaying
	}
}

func (h *trackHandle) SetVolume(percent int) error {
	if percent < 0 {
		percent = 0
	}
	if percent > 200 {
		percent = 200
	}
	h.mu.Lock()
	h.volume = float64(percent) / 100
	h.mu.Unlock()
	return nil
}

func (h *trackHandle) Stop() error {
	h.stopOnce.Do(func() { close(h.stop) })
	return nil
}

func (h *trackHandle) Done() <-chan struct{} { return h.done }

func (h *trackHandle) state() (paused bool, volume float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.paused, h.volume
}

func (h *trackHandle) setPos(pos time.Duration) {
	h.mu.Lock()
	h.pos = pos
	h.mu.Unlock()
}

// run streams the track, restarting ffmpeg at a new offset on every seek.
func (h *trackHandle) run(url string) {
	defer close(h.done)

	offset := time.Duration(0)
	for {
		next, err := h.stream(url, offset)
		if err != nil {
			h.eng.log.Warn().Err(err).Str("title", h.track.Title).Msg("playback ended with error")
			return
		}
		if next < 0 {
			return
		}
		offset = next
	}
}

// stream runs one ffmpeg process from the given offset and pushes opus
// frames until the track ends, a stop is requested, or a seek asks for a
// restart. Returns the seek target, or -1 when playback is over.
func (h *trackHandle) stream(url string, offset time.Duration) (time.Duration, error) {
	cmd := exec.Command(h.eng.ffmpeg,
		"-ss", fmt.Sprintf("%.3f", offset.Seconds()),
		"-reconnect", "1",
		"-reconnect_streamed", "1",
		"-reconnect_delay_max", "5",
		"-i", url,
		"-f", "s16le",
		"-ar", fmt.Sprintf("%d", sampleRate),
		"-ac", fmt.Sprintf("%d", channels),
		"-loglevel", "warning",
		"pipe:1",
	)

	out, err := cmd.StdoutPipe()
	if err != nil {
		return 0, fmt.Errorf("ffmpeg stdout pipe error: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("ffmpeg start error: %w", err)
	}
	defer func() {
		cmd.Process.Kill()
		cmd.Wait()
	}()

	encoder, err := gopus.NewEncoder(sampleRate, channels, gopus.Audio)
	if err != nil {
		return 0, fmt.Errorf("encoder error: %w", err)
	}

	_ = h.vc.Speaking(true)
	defer h.vc.Speaking(false)

	pcmBuf := make([]byte, frameSize*channels*2)
	intBuf := make([]int16, frameSize*channels)
	pos := offset

	for {
		select {
		case <-h.stop:
			return -1, nil
		case target := <-h.seekTo:
			return target, nil
		default:
		}

		paused, volume := h.state()
		if paused {
			time.Sleep(frameDuration)
			continue
		}

		if _, err := io.ReadFull(out, pcmBuf); err != nil {
			// EOF: the track played out.
			return -1, nil
		}

		for i := range intBuf {
			s := int16(binary.LittleEndian.Uint16(pcmBuf[i*2 : i*2+2]))
			if volume != 1 {
				scaled := float64(s) * volume
				switch {
				case scaled > 32767:
					scaled = 32767
				case scaled < -32768:
					scaled = -32768
				}
				s = int16(scaled)
			}
			intBuf[i] = s
		}

		frame, err := encoder.Encode(intBuf, frameSize, len(pcmBuf))
		if err != nil {
			return 0, fmt.Errorf("encode error: %w", err)
		}

		select {
		case h.vc.OpusSend <- frame:
		case <-h.stop:
			return -1, nil
		}

		pos += frameDuration
		h.setPos(pos)
	}
}
