// Package radio is the recommendation continuity engine: when the queue
// empties under an autoplay context it refills it from a chain of strategies
// so playback never silently stops.
package radio

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sonroyaalmerol/hibiki/internal/media"
)

// recentWindow is how many history entries a suggestion must avoid.
const recentWindow = 5

type State int

const (
	StateIdle State = iota
	StateFetching
	StateSuccess
	StateExhausted
)

type Engine struct {
	mu         sync.Mutex
	state      State
	strategies []Strategy
	seeder     Strategy // similar-track only, for autoplay queue synthesis
}

// NewEngine wires the standard strategy chain, tried strictly in order.
func NewEngine(related RelatedProvider, similar SimilarProvider, chart ChartProvider) *Engine {
	sim := similarTrack{provider: similar}
	return &Engine{
		strategies: []Strategy{
			relatedMedia{provider: related},
			sim,
			sameArtist{provider: chart},
			chartFallback{provider: chart},
		},
		seeder: sim,
	}
}

// NewEngineWithStrategies exists for tests and custom chains.
func NewEngineWithStrategies(strategies ...Strategy) *Engine {
	return &Engine{strategies: strategies}
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

// Refill walks the strategy chain and returns the first non-empty candidate
// set, filtered against the most recent history. Strategy failures are
// swallowed; only total exhaustion is an error.
func (e *Engine) Refill(ctx context.Context, seed Seed) ([]media.Track, error) {
	e.setState(StateFetching)

	for _, s := range e.strategies {
		tracks, err := s.Fill(ctx, seed)
		if err != nil {
			slog.Warn("radio strategy failed", "strategy", s.Name(), "err", err)
			continue
		}
		if len(tracks) == 0 {
			continue
		}
		slog.Info("radio strategy produced candidates",
			"strategy", s.Name(), "count", len(tracks))
		e.setState(StateSuccess)
		return filterRecent(tracks, seed.History), nil
	}

	e.setState(StateExhausted)
	return nil, fmt.Errorf("%w: all strategies empty", media.ErrRecommendationExhausted)
}

// AutoplaySeed synthesizes a queue for a track played with no explicit
// context, using the similar-track strategy alone. Best effort; an empty
// result just means the queue stays empty until playback ends.
func (e *Engine) AutoplaySeed(ctx context.Context, current media.Track) ([]media.Track, error) {
	if e.seeder == nil {
		return nil, nil
	}
	tracks, err := e.seeder.Fill(ctx, Seed{Current: current})
	if err != nil {
		return nil, err
	}
	// never immediately re-suggest the seed itself
	out := tracks[:0]
	for _, t := range tracks {
		if t.Identity == current.Identity {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// filterRecent drops candidates whose identity sits in the recent history
// window. If that would empty the set, the unfiltered set wins: repeating a
// track beats stopping the music.
func filterRecent(tracks, history []media.Track) []media.Track {
	n := recentWindow
	if n > len(history) {
		n = len(history)
	}
	recent := make(map[string]struct{}, n)
	for _, h := range history[:n] {
		recent[h.Identity] = struct{}{}
	}

	out := make([]media.Track, 0, len(tracks))
	for _, t := range tracks {
		if _, ok := recent[t.Identity]; ok {
			continue
		}
		out = append(out, t)
	}
	if len(out) == 0 {
		return tracks
	}
	return out
}
