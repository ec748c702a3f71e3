package player

import "github.com/sonroyaalmerol/hibiki/internal/media"

type Status int

const (
	StatusIdle Status = iota
	StatusResolving
	StatusReady
	StatusPlaying
	StatusPaused
	StatusEnded
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusResolving:
		return "resolving"
	case StatusReady:
		return "ready"
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	case StatusEnded:
		return "ended"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// State is the orchestrator's runtime state. Never persisted; rebuilt each
// session from explicit user action. Mutated exclusively on the run loop.
type State struct {
	Status                  Status
	CurrentTrack            *media.Track
	IsPlaying               bool
	Volume                  float64 // [0,1]
	CurrentTime             float64 // seconds
	Duration                float64 // seconds
	RadioModeActive         bool
	FetchingRecommendations bool
	LastError               error
}

// NoticeLevel tags user-visible notices.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeDegraded
	NoticeError
)

// Notice is a transient, auto-dismissing message for the UI layer.
type Notice struct {
	Level   NoticeLevel
	Message string
}
