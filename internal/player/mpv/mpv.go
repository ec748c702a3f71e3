// Package mpv is the libmpv-backed playback backend. The orchestrator only
// sees the narrow player.Backend surface; decode and output stay inside mpv.
package mpv

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/wildeyedskies/go-mpv/mpv"

	"github.com/sonroyaalmerol/hibiki/internal/player"
)

// watchURL builds the stream location mpv (with yt-dlp hook) can open from a
// bare playable identifier.
func watchURL(playableID string) string {
	return "https://www.youtube.com/watch?v=" + playableID
}

type Backend struct {
	instance *mpv.Mpv
	events   chan player.Event
	cancel   context.CancelFunc

	// loadfile over a playing file makes mpv end the old one first; that
	// end-of-file must not surface or the orchestrator would auto-advance
	// past the track it just chose. The binding does not expose the end
	// reason, so replacements are counted here instead.
	mu        sync.Mutex
	loaded    bool
	replacing int
}

// markLoad is called per load command; reports bookkeeping for pump.
func (b *Backend) markLoad() {
	b.mu.Lock()
	if b.loaded {
		b.replacing++
	}
	b.mu.Unlock()
}

func (b *Backend) markLoaded() {
	b.mu.Lock()
	b.loaded = true
	b.mu.Unlock()
}

// consumeEnd reports whether an end-of-file belongs to a replaced load and
// should be swallowed.
func (b *Backend) consumeEnd() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.replacing > 0 {
		b.replacing--
		return true
	}
	b.loaded = false
	return false
}

func New(audioDevice string) (*Backend, error) {
	instance := mpv.Create()
	_ = instance.SetOptionString("audio-display", "no")
	_ = instance.SetOptionString("video", "no")
	_ = instance.SetOptionString("terminal", "no")
	if audioDevice != "" {
		_ = instance.SetOptionString("audio-device", audioDevice)
	}
	if err := instance.Initialize(); err != nil {
		instance.TerminateDestroy()
		return nil, fmt.Errorf("mpv init: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	b := &Backend{
		instance: instance,
		events:   make(chan player.Event, 8),
		cancel:   cancel,
	}
	go b.pump(ctx)
	return b, nil
}

// pump translates raw mpv events into backend lifecycle events.
func (b *Backend) pump(ctx context.Context) {
	defer close(b.events)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		e := b.instance.WaitEvent(1)
		if e == nil {
			time.Sleep(10 * time.Millisecond)
			continue
		}
		var out player.Event
		switch e.Event_Id {
		case mpv.EVENT_FILE_LOADED:
			b.markLoaded()
			duration := 0.0
			if d, err := b.instance.GetProperty("duration", mpv.FORMAT_DOUBLE); err == nil {
				duration = d.(float64)
			}
			out = player.Event{Kind: player.EventReady, Seconds: duration}
		case mpv.EVENT_UNPAUSE:
			out = player.Event{Kind: player.EventPlaying}
		case mpv.EVENT_PAUSE:
			out = player.Event{Kind: player.EventPaused}
		case mpv.EVENT_END_FILE:
			if b.consumeEnd() {
				continue
			}
			out = player.Event{Kind: player.EventEnded}
		case mpv.EVENT_SHUTDOWN:
			return
		default:
			continue
		}
		select {
		case b.events <- out:
		case <-ctx.Done():
			return
		}
	}
}

func (b *Backend) Load(playableID string) error {
	b.markLoad()
	return b.instance.Command([]string{"loadfile", watchURL(playableID)})
}

func (b *Backend) Play() error {
	return b.instance.SetPropertyString("pause", "no")
}

func (b *Backend) Pause() error {
	return b.instance.SetPropertyString("pause", "yes")
}

func (b *Backend) Seek(seconds float64) error {
	return b.instance.Command([]string{
		"seek", strconv.FormatFloat(seconds, 'f', 3, 64), "absolute",
	})
}

// SetVolume maps the orchestrator's [0,1] scale onto mpv's 0-100.
func (b *Backend) SetVolume(v float64) error {
	return b.instance.SetPropertyString("volume",
		strconv.FormatFloat(v*100, 'f', 0, 64))
}

func (b *Backend) Position() (float64, error) {
	pos, err := b.instance.GetProperty("time-pos", mpv.FORMAT_DOUBLE)
	if err != nil {
		return 0, err
	}
	return pos.(float64), nil
}

func (b *Backend) Events() <-chan player.Event { return b.events }

func (b *Backend) Close() error {
	b.cancel()
	_ = b.instance.Command([]string{"quit"})
	b.instance.TerminateDestroy()
	return nil
}
