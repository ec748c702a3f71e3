// Package queue holds the ordered play queue and the bounded recently-played
// history.
package queue

import (
	"errors"
	"math/rand"
	"sync"

	"github.com/sonroyaalmerol/hibiki/internal/media"
)

const defaultHistoryLimit = 20

type Manager struct {
	mu           sync.Mutex
	tracks       []media.Track
	history      []media.Track // most recent first
	context      media.PlaybackContext
	historyLimit int
}

func NewManager(historyLimit int) *Manager {
	if historyLimit <= 0 {
		historyLimit = defaultHistoryLimit
	}
	return &Manager{historyLimit: historyLimit}
}

// Advance pops and returns the queue head, or false when empty.
func (m *Manager) Advance() (media.Track, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.tracks) == 0 {
		return media.Track{}, false
	}
	head := m.tracks[0]
	m.tracks = m.tracks[1:]
	return head, true
}

// Seed replaces the queue wholesale and records the context that produced it.
func (m *Manager) Seed(tracks []media.Track, ctx media.PlaybackContext) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tracks = append([]media.Track(nil), tracks...)
	m.context = ctx
}

// Append adds tracks without touching the context; used by the continuity
// engine to refill a queue it already owns.
func (m *Manager) Append(tracks ...media.Track) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tracks = append(m.tracks, tracks...)
}

// Splice sets the queue to the sub-sequence of items strictly after played.
// When played is not found the queue is cleared; guessing a position would be
// worse than stopping at the end of the track.
func (m *Manager) Splice(items []media.Track, played media.Track, ctx media.PlaybackContext) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.context = ctx
	for i, t := range items {
		if t.Identity == played.Identity {
			m.tracks = append([]media.Track(nil), items[i+1:]...)
			return
		}
	}
	m.tracks = nil
}

func (m *Manager) Context() media.PlaybackContext {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.context
}

func (m *Manager) SetContext(ctx media.PlaybackContext) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.context = ctx
}

func (m *Manager) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tracks)
}

// RecordPlayed pushes the track to the history front, deduplicating by
// identity and truncating at the cap.
func (m *Manager) RecordPlayed(t media.Track) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]media.Track, 0, len(m.history)+1)
	out = append(out, t)
	for _, h := range m.history {
		if h.Identity == t.Identity {
			continue
		}
		out = append(out, h)
	}
	if len(out) > m.historyLimit {
		out = out[:m.historyLimit]
	}
	m.history = out
}

// History returns the recently-played log, most recent first.
func (m *Manager) History() []media.Track {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]media.Track, len(m.history))
	copy(cp, m.history)
	return cp
}

// UpNext returns a page of the upcoming queue plus the total count.
func (m *Manager) UpNext(page, pageSize int) ([]media.Track, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	total := len(m.tracks)
	start := (page - 1) * pageSize
	if start >= total {
		return []media.Track{}, total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	out := make([]media.Track, end-start)
	copy(out, m.tracks[start:end])
	return out, total
}

// Move moves an item within the queue (1-based positions).
func (m *Manager) Move(from, to int) (media.Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if from < 1 || to < 1 {
		return media.Track{}, errors.New("position must be at least 1")
	}
	if from > len(m.tracks) || to > len(m.tracks) {
		return media.Track{}, errors.New("move index is outside the range of the queue")
	}
	srcIdx := from - 1
	dstIdx := to - 1
	item := m.tracks[srcIdx]
	m.tracks = append(m.tracks[:srcIdx], m.tracks[srcIdx+1:]...)
	// dstIdx indexes the shortened slice, so the item lands at position to
	m.tracks = append(m.tracks[:dstIdx], append([]media.Track{item}, m.tracks[dstIdx:]...)...)
	return item, nil
}

// Remove drops count items starting at pos (1-based).
func (m *Manager) Remove(pos, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if pos < 1 {
		return errors.New("position must be at least 1")
	}
	if count < 1 {
		return errors.New("range must be at least 1")
	}
	if len(m.tracks) == 0 {
		return errors.New("queue is empty")
	}
	begin := pos - 1
	if begin >= len(m.tracks) {
		return errors.New("position out of range")
	}
	end := begin + count
	if end > len(m.tracks) {
		end = len(m.tracks)
	}
	m.tracks = append(m.tracks[:begin], m.tracks[end:]...)
	return nil
}

func (m *Manager) Shuffle() {
	m.mu.Lock()
	defer m.mu.Unlock()
	rand.Shuffle(len(m.tracks), func(i, j int) {
		m.tracks[i], m.tracks[j] = m.tracks[j], m.tracks[i]
	})
}
