package media

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds surfaced by providers, the resolver and the continuity engine.
var (
	// ErrNotResolvable means no provider could produce a playable
	// identifier; callers skip the track rather than block playback.
	ErrNotResolvable = errors.New("track not resolvable")

	// ErrQuotaExceeded means the primary resolution provider is out of
	// quota; the resolver enters cooldown and falls back.
	ErrQuotaExceeded = errors.New("resolution quota exceeded")

	// ErrInvalidIdentifier means a resolved identifier failed format
	// validation. Treated as not resolvable by callers.
	ErrInvalidIdentifier = errors.New("invalid playable identifier")

	// ErrRecommendationExhausted means every continuity strategy failed.
	// Fatal to the current playback session.
	ErrRecommendationExhausted = errors.New("recommendations exhausted")

	ErrNetwork      = errors.New("network error")
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrRateLimited  = errors.New("rate limited")
	ErrServer       = errors.New("server error")
)

// ClassifyStatus maps an HTTP response status to the error taxonomy.
// Returns nil for 2xx.
func ClassifyStatus(status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusBadRequest:
		return fmt.Errorf("%w: status %d", ErrBadRequest, status)
	case status == http.StatusUnauthorized:
		return fmt.Errorf("%w: status %d", ErrUnauthorized, status)
	case status == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrForbidden, status)
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: status %d", ErrNotFound, status)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d", ErrRateLimited, status)
	case status >= 500:
		return fmt.Errorf("%w: status %d", ErrServer, status)
	}
	return fmt.Errorf("%w: status %d", ErrNetwork, status)
}
