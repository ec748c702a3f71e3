package media

import "time"

// SourceProvider identifies which adapter produced a Track.
type SourceProvider int

const (
	SourceChart SourceProvider = iota
	SourceSearch
	SourceResolved
)

func (s SourceProvider) String() string {
	switch s {
	case SourceChart:
		return "chart"
	case SourceSearch:
		return "search"
	case SourceResolved:
		return "resolved"
	}
	return "unknown"
}

// Track is the canonical, provider-agnostic track record. Identity is stable
// per source record and carries the provider prefix (e.g. "deezer:123").
type Track struct {
	Identity        string
	Title           string
	Artist          string
	Album           string
	ArtworkURL      string
	DurationSeconds int
	Source          SourceProvider
	PlayableID      string
	Raw             any
}

// Playable reports whether the track already carries an identifier the
// playback backend can load.
func (t Track) Playable() bool {
	return ValidPlayableID(t.PlayableID)
}

// CacheEntry maps a track identity to a previously resolved playable
// identifier. Fallback-origin entries never outlive the process.
type CacheEntry struct {
	Identity   string
	PlayableID string
	ResolvedAt time.Time
	IsFallback bool
}

// ContextType tags the queue semantics active for the current playback.
type ContextType int

const (
	// ContextNone means no queue semantics are active.
	ContextNone ContextType = iota
	// ContextCollection means the queue was sliced from an explicit list.
	ContextCollection
	// ContextAutoplay means the queue was synthesized.
	ContextAutoplay
	// ContextKeep preserves the existing queue untouched.
	ContextKeep
)

// PlaybackContext governs what happens when the queue runs out: radio mode
// may only activate under an autoplay context.
type PlaybackContext struct {
	Type         ContextType
	CollectionID string
	Source       string // "radio" when synthesized by the continuity engine
}

func CollectionContext(id string) PlaybackContext {
	return PlaybackContext{Type: ContextCollection, CollectionID: id}
}

func AutoplayContext(source string) PlaybackContext {
	return PlaybackContext{Type: ContextAutoplay, Source: source}
}

func KeepContext() PlaybackContext {
	return PlaybackContext{Type: ContextKeep}
}
