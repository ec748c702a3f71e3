// Package resolver turns canonical tracks into playable identifiers: cache
// first, then the primary resolution provider under quota policy, then the
// alternate open frontends.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/sonroyaalmerol/hibiki/internal/media"
	"github.com/sonroyaalmerol/hibiki/internal/providers/frontend"
	"github.com/sonroyaalmerol/hibiki/internal/providers/youtube"
)

// maxFallbackAttempts bounds worst-case resolution latency: two frontends,
// each under its own timeout, tried sequentially.
const maxFallbackAttempts = 2

// Primary is the video-resolution provider surface the resolver drives.
type Primary interface {
	Resolve(ctx context.Context, query string) (youtube.Result, error)
}

// Resolution is a resolved playable identifier. Degraded is set when the
// identifier came from a fallback frontend under quota cooldown; such
// resolutions are provisional and never persisted.
type Resolution struct {
	PlayableID string
	IsFallback bool
	Degraded   bool
}

type Resolver struct {
	primary         Primary
	picker          *frontend.Picker
	cache           *Cache
	gate            *CooldownGate
	limiter         *rate.Limiter
	frontendTimeout time.Duration
}

type Options struct {
	Primary         Primary
	Picker          *frontend.Picker
	Cache           *Cache
	Gate            *CooldownGate
	RPS             float64
	FrontendTimeout time.Duration
}

func New(opts Options) *Resolver {
	if opts.RPS <= 0 {
		opts.RPS = 2
	}
	if opts.FrontendTimeout <= 0 {
		opts.FrontendTimeout = 8 * time.Second
	}
	return &Resolver{
		primary:         opts.Primary,
		picker:          opts.Picker,
		cache:           opts.Cache,
		gate:            opts.Gate,
		limiter:         rate.NewLimiter(rate.Limit(opts.RPS), 1),
		frontendTimeout: opts.FrontendTimeout,
	}
}

// Resolve produces a playable identifier for the track, or ErrNotResolvable
// when no source can. Callers skip unresolvable tracks rather than block.
func (r *Resolver) Resolve(ctx context.Context, track media.Track) (Resolution, error) {
	// Fast path: pre-resolved tracks cost zero network calls.
	if media.ValidPlayableID(track.PlayableID) {
		return Resolution{PlayableID: track.PlayableID}, nil
	}

	if e, ok := r.cache.Get(track.Identity); ok {
		return Resolution{PlayableID: e.PlayableID, IsFallback: e.IsFallback}, nil
	}

	reqID := uuid.NewString()
	query := track.Title
	if track.Artist != "" {
		query = track.Artist + " " + track.Title
	}

	if !r.gate.Active() {
		res, err := r.resolvePrimary(ctx, track, query, reqID)
		switch {
		case err == nil:
			return res, nil
		case errors.Is(err, media.ErrQuotaExceeded):
			// The provider may know when its quota resets; absent a hint the
			// gate falls back to its default wait.
			var hint time.Time
			var qe *youtube.QuotaError
			if errors.As(err, &qe) {
				hint = qe.ResetAt
			}
			r.gate.Trip(ctx, hint)
			// fall through to the frontends
		case errors.Is(err, media.ErrNetwork):
			slog.Warn("primary resolution failed", "req", reqID, "err", err)
			// transient; eligible for the fallback chain
		default:
			return Resolution{}, err
		}
	} else {
		slog.Debug("primary in cooldown, skipping", "req", reqID, "identity", track.Identity)
	}

	if res, ok := r.resolveFallback(ctx, track, query, reqID); ok {
		return res, nil
	}
	return Resolution{}, fmt.Errorf("%w: %s", media.ErrNotResolvable, track.Identity)
}

func (r *Resolver) resolvePrimary(ctx context.Context, track media.Track, query, reqID string) (Resolution, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return Resolution{}, fmt.Errorf("%w: %v", media.ErrNetwork, err)
	}
	result, err := r.primary.Resolve(ctx, query)
	if err != nil {
		if errors.Is(err, media.ErrNotFound) {
			return Resolution{}, fmt.Errorf("%w: %s", media.ErrNotResolvable, track.Identity)
		}
		return Resolution{}, err
	}
	if !media.ValidPlayableID(result.PlayableID) {
		slog.Warn("primary returned malformed identifier",
			"req", reqID, "identity", track.Identity, "got", result.PlayableID)
		return Resolution{}, fmt.Errorf("%w: %q", media.ErrInvalidIdentifier, result.PlayableID)
	}
	r.cache.Put(ctx, media.CacheEntry{
		Identity:   track.Identity,
		PlayableID: result.PlayableID,
	})
	return Resolution{PlayableID: result.PlayableID}, nil
}

// resolveFallback walks up to two frontends sequentially, each under its own
// timeout. Frontend failures are logged and treated as empty results.
func (r *Resolver) resolveFallback(ctx context.Context, track media.Track, query, reqID string) (Resolution, bool) {
	for _, f := range r.picker.Pick(maxFallbackAttempts) {
		attemptCtx, cancel := context.WithTimeout(ctx, r.frontendTimeout)
		result, err := f.Search(attemptCtx, query)
		cancel()
		if err != nil {
			slog.Warn("frontend failed", "req", reqID, "frontend", f.Name(), "err", err)
			continue
		}
		if !media.ValidPlayableID(result.PlayableID) {
			slog.Warn("frontend returned malformed identifier",
				"req", reqID, "frontend", f.Name(), "got", result.PlayableID)
			continue
		}
		r.cache.Put(ctx, media.CacheEntry{
			Identity:   track.Identity,
			PlayableID: result.PlayableID,
			IsFallback: true,
		})
		slog.Info("resolved via fallback frontend",
			"req", reqID, "frontend", f.Name(), "identity", track.Identity)
		return Resolution{PlayableID: result.PlayableID, IsFallback: true, Degraded: true}, true
	}
	return Resolution{}, false
}
