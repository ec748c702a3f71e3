package player

// EventKind enumerates the lifecycle events a playback backend emits.
type EventKind int

const (
	EventReady EventKind = iota
	EventPlaying
	EventPaused
	EventEnded
)

type Event struct {
	Kind    EventKind
	Seconds float64 // duration for EventReady
}

// Backend is the external playback surface. Commands are fire-and-forget;
// the orchestrator trusts the backend's subsequent events to confirm.
type Backend interface {
	Load(playableID string) error
	Play() error
	Pause() error
	Seek(seconds float64) error
	SetVolume(v float64) error
	// Position is polled by the orchestrator's progress ticker.
	Position() (float64, error)
	Events() <-chan Event
	Close() error
}
