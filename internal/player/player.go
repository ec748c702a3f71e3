// Package player is the playback orchestrator: a single-goroutine state
// machine that owns playback state, drives the external backend, and keeps
// the queue fed through the continuity engine.
package player

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sonroyaalmerol/hibiki/internal/media"
	"github.com/sonroyaalmerol/hibiki/internal/queue"
	"github.com/sonroyaalmerol/hibiki/internal/radio"
	"github.com/sonroyaalmerol/hibiki/internal/repository"
	"github.com/sonroyaalmerol/hibiki/internal/resolver"
)

const (
	DefaultVolume = 1.0
	// defaultLowWater is the queue size at or below which an autoplay queue
	// is topped up in the background.
	defaultLowWater = 2
	// maxContinuityFailures bounds back-to-back unresolvable continuity
	// candidates before the session is declared exhausted.
	maxContinuityFailures = 5

	tickInterval = time.Second
)

type playRequest struct {
	track          media.Track
	pctx           media.PlaybackContext
	items          []media.Track // collection slice source, when applicable
	fromContinuity bool
}

// Resolver produces playable identifiers; satisfied by resolver.Resolver.
type Resolver interface {
	Resolve(ctx context.Context, track media.Track) (resolver.Resolution, error)
}

// Continuity refills emptied autoplay queues; satisfied by radio.Engine.
type Continuity interface {
	Refill(ctx context.Context, seed radio.Seed) ([]media.Track, error)
	AutoplaySeed(ctx context.Context, current media.Track) ([]media.Track, error)
}

// SettingsStore persists user-tunable playback settings across sessions;
// satisfied by repository.Repo.
type SettingsStore interface {
	GetSettings(ctx context.Context) (*repository.Settings, error)
	UpdateSettings(ctx context.Context, s *repository.Settings) error
}

type Orchestrator struct {
	res      Resolver
	queue    *queue.Manager
	engine   Continuity
	settings SettingsStore
	lowWater int

	mailbox chan func()
	notices chan Notice

	// Everything below is owned by the run loop.
	ctx          context.Context
	backend      Backend
	events       <-chan Event
	state        State
	pendingLoad  string // playable id to re-issue until the backend is ready
	token        uint64 // latest issued resolution token
	ticker       *time.Ticker
	refilling    bool
	radioEnabled bool
	contFailures int
}

type Options struct {
	Resolver Resolver
	Queue    *queue.Manager
	Engine   Continuity
	Backend  Backend       // may be nil; attach later via AttachBackend
	Settings SettingsStore // may be nil; settings then live for the session only
	Volume   float64
	LowWater int
	// DisableRadio turns continuity refills off; autoplay queues then end
	// like collections do.
	DisableRadio bool
}

func New(opts Options) *Orchestrator {
	if opts.LowWater <= 0 {
		opts.LowWater = defaultLowWater
	}
	if opts.Volume <= 0 || opts.Volume > 1 {
		opts.Volume = DefaultVolume
	}
	o := &Orchestrator{
		res:          opts.Resolver,
		queue:        opts.Queue,
		engine:       opts.Engine,
		settings:     opts.Settings,
		lowWater:     opts.LowWater,
		mailbox:      make(chan func(), 64),
		notices:      make(chan Notice, 16),
		backend:      opts.Backend,
		radioEnabled: !opts.DisableRadio,
		state:        State{Status: StatusIdle, Volume: opts.Volume},
	}
	if opts.Backend != nil {
		o.events = opts.Backend.Events()
	}
	return o
}

// Run drives the orchestrator until ctx is cancelled. All state transitions
// happen here; completions of asynchronous work are serialized back onto
// this loop, so no two mutations race.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.ctx = ctx
	defer o.stopTicker()
	for {
		var tickC <-chan time.Time
		if o.ticker != nil {
			tickC = o.ticker.C
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-o.mailbox:
			fn()
		case ev, ok := <-o.events:
			if !ok {
				o.events = nil
				continue
			}
			o.handleEvent(ev)
		case <-tickC:
			o.pollPosition()
		}
	}
}

func (o *Orchestrator) post(fn func()) {
	select {
	case o.mailbox <- fn:
	case <-time.After(5 * time.Second):
		slog.Warn("orchestrator mailbox stalled, dropping command")
	}
}

// Notices delivers transient user-visible messages (degraded mode,
// resolution failures). The channel is lossy; slow consumers miss notices
// rather than block playback.
func (o *Orchestrator) Notices() <-chan Notice { return o.notices }

func (o *Orchestrator) notify(level NoticeLevel, format string, args ...any) {
	select {
	case o.notices <- Notice{Level: level, Message: fmt.Sprintf(format, args...)}:
	default:
	}
}

// Snapshot returns a copy of the current state. Requires Run to be active.
func (o *Orchestrator) Snapshot() State {
	reply := make(chan State, 1)
	o.post(func() {
		s := o.state
		if o.state.CurrentTrack != nil {
			t := *o.state.CurrentTrack
			s.CurrentTrack = &t
		}
		reply <- s
	})
	return <-reply
}

// Queue exposes the queue manager for UI surfaces: up-next pages, history,
// and direct edits (move/remove/shuffle). The manager carries its own lock;
// only the playback cursor stays on the orchestrator loop.
func (o *Orchestrator) Queue() *queue.Manager { return o.queue }

// AttachBackend wires a backend after construction. A pending load is
// re-issued so a track chosen before the backend existed still plays.
func (o *Orchestrator) AttachBackend(b Backend) {
	o.post(func() {
		o.backend = b
		o.events = b.Events()
		if o.pendingLoad != "" {
			o.issueLoad(o.pendingLoad)
		}
	})
}

// PlayTrack starts playback of a single track under the given context.
func (o *Orchestrator) PlayTrack(t media.Track, pctx media.PlaybackContext) {
	o.post(func() {
		o.playItem(playRequest{track: t, pctx: pctx})
	})
}

// PlayCollection plays one item of an explicit list; the queue becomes the
// sub-sequence strictly after it.
func (o *Orchestrator) PlayCollection(items []media.Track, played media.Track, collectionID string) {
	o.post(func() {
		o.playItem(playRequest{
			track: played,
			pctx:  media.CollectionContext(collectionID),
			items: items,
		})
	})
}

func (o *Orchestrator) TogglePlayPause() {
	o.post(func() {
		if o.state.CurrentTrack == nil {
			return
		}
		if o.state.IsPlaying {
			o.state.IsPlaying = false
			o.command("pause", func(b Backend) error { return b.Pause() })
		} else {
			o.state.IsPlaying = true
			o.command("play", func(b Backend) error { return b.Play() })
		}
	})
}

// SeekTo clamps to [0, duration] and optimistically updates the position.
func (o *Orchestrator) SeekTo(seconds float64) {
	o.post(func() {
		if seconds < 0 {
			seconds = 0
		}
		if o.state.Duration > 0 && seconds > o.state.Duration {
			seconds = o.state.Duration
		}
		o.state.CurrentTime = seconds
		s := seconds
		o.command("seek", func(b Backend) error { return b.Seek(s) })
	})
}

// SetVolume clamps to [0,1], pushes to the backend on every change and
// persists the result as the next session's default.
func (o *Orchestrator) SetVolume(v float64) {
	o.post(func() {
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		o.state.Volume = v
		vol := v
		o.command("volume", func(b Backend) error { return b.SetVolume(vol) })
		o.saveSettings()
	})
}

// SetRadioEnabled turns continuity refills on or off, persisted.
func (o *Orchestrator) SetRadioEnabled(on bool) {
	o.post(func() {
		o.radioEnabled = on
		if !on {
			o.state.RadioModeActive = false
		}
		o.saveSettings()
	})
}

// saveSettings writes the volume and radio flag through the store.
// Read-modify-write so fields owned elsewhere (the cooldown window) survive.
func (o *Orchestrator) saveSettings() {
	if o.settings == nil {
		return
	}
	vol := int(o.state.Volume*100 + 0.5)
	on := o.radioEnabled
	ctx := o.ctx
	go func() {
		s, err := o.settings.GetSettings(ctx)
		if err != nil {
			slog.Warn("loading settings for update failed", "err", err)
			return
		}
		s.DefaultVolume = vol
		s.RadioEnabled = on
		if err := o.settings.UpdateSettings(ctx, s); err != nil {
			slog.Warn("persisting settings failed", "err", err)
		}
	}()
}

// Next skips the rest of the current track; queue advance and continuity
// behave exactly as a natural end would.
func (o *Orchestrator) Next() {
	o.post(func() {
		if o.state.CurrentTrack == nil {
			return
		}
		o.token++ // a skip also supersedes any in-flight resolution
		o.handleEnded()
		if o.state.Status == StatusEnded {
			// nothing next: unlike a natural end, the backend is still going
			o.command("pause", func(b Backend) error { return b.Pause() })
		}
	})
}

func (o *Orchestrator) Stop() {
	o.post(func() {
		o.token++ // invalidate any in-flight resolution
		o.stopTicker()
		o.pendingLoad = ""
		o.state = State{Status: StatusIdle, Volume: o.state.Volume}
		o.queue.Seed(nil, media.PlaybackContext{})
		o.command("pause", func(b Backend) error { return b.Pause() })
	})
}

// --- run-loop internals ---

// command issues a fire-and-forget backend command; the orchestrator trusts
// the backend's subsequent events rather than waiting for acknowledgment.
func (o *Orchestrator) command(name string, fn func(Backend) error) {
	if o.backend == nil {
		return
	}
	if err := fn(o.backend); err != nil {
		slog.Warn("backend command failed", "command", name, "err", err)
	}
}

func (o *Orchestrator) playItem(req playRequest) {
	// A new request supersedes any in-flight resolution: bump the token so
	// the stale completion is discarded when it lands.
	o.token++
	tok := o.token
	o.state.Status = StatusResolving
	o.state.LastError = nil

	track := req.track
	go func() {
		res, err := o.res.Resolve(o.ctx, track)
		o.post(func() { o.completeResolution(tok, req, res, err) })
	}()
}

func (o *Orchestrator) completeResolution(tok uint64, req playRequest, res resolver.Resolution, err error) {
	if tok != o.token {
		slog.Debug("discarding stale resolution", "identity", req.track.Identity)
		return
	}
	if err != nil {
		if errors.Is(err, media.ErrInvalidIdentifier) {
			err = fmt.Errorf("%w: %v", media.ErrNotResolvable, err)
		}
		if req.fromContinuity {
			// A dead continuity candidate is a failed strategy attempt,
			// not a user-facing error.
			slog.Info("skipping unresolvable continuity track",
				"identity", req.track.Identity, "err", err)
			o.continueAfterFailure()
			return
		}
		o.state.Status = StatusError
		o.state.LastError = err
		o.notify(NoticeError, "could not play %q: track is unavailable", req.track.Title)
		return
	}

	o.contFailures = 0
	played := req.track
	played.PlayableID = res.PlayableID
	if res.Degraded {
		o.notify(NoticeDegraded, "playing %q via a fallback source", played.Title)
	}

	o.queue.RecordPlayed(played)
	switch req.pctx.Type {
	case media.ContextKeep:
		// preserve the existing queue
	case media.ContextCollection:
		o.queue.Splice(req.items, played, req.pctx)
	case media.ContextAutoplay:
		o.queue.SetContext(req.pctx)
	case media.ContextNone:
		// No explicit queue: synthesize one from similar tracks.
		o.queue.Seed(nil, media.AutoplayContext(""))
		o.seedAutoplay(played)
	}

	o.state.CurrentTrack = &played
	o.state.Status = StatusReady
	o.state.CurrentTime = 0
	o.state.Duration = float64(played.DurationSeconds)
	o.stopTicker()
	o.issueLoad(res.PlayableID)
}

// issueLoad commands load+play. The id stays pending until the backend
// reports ready, so it can be re-issued idempotently after deferred init.
func (o *Orchestrator) issueLoad(playableID string) {
	o.pendingLoad = playableID
	if o.backend == nil {
		slog.Debug("no backend attached, load deferred", "id", playableID)
		return
	}
	o.command("load", func(b Backend) error { return b.Load(playableID) })
	o.command("volume", func(b Backend) error { return b.SetVolume(o.state.Volume) })
	o.command("play", func(b Backend) error { return b.Play() })
}

func (o *Orchestrator) seedAutoplay(current media.Track) {
	go func() {
		tracks, err := o.engine.AutoplaySeed(o.ctx, current)
		if err != nil {
			slog.Warn("autoplay seeding failed", "err", err)
			return
		}
		o.post(func() {
			// Only applies while the same autoplay session is live.
			if o.queue.Context().Type != media.ContextAutoplay {
				return
			}
			o.queue.Append(tracks...)
		})
	}()
}

func (o *Orchestrator) handleEvent(ev Event) {
	switch ev.Kind {
	case EventReady:
		o.pendingLoad = ""
		if ev.Seconds > 0 {
			o.state.Duration = ev.Seconds
		}
		if o.state.Status == StatusResolving || o.state.Status == StatusReady {
			o.state.Status = StatusReady
			o.startTicker()
		}
	case EventPlaying:
		o.state.IsPlaying = true
		if o.state.Status == StatusReady || o.state.Status == StatusPaused {
			o.state.Status = StatusPlaying
		}
	case EventPaused:
		o.state.IsPlaying = false
		if o.state.Status == StatusPlaying {
			o.state.Status = StatusPaused
		}
	case EventEnded:
		o.handleEnded()
	}
}

func (o *Orchestrator) handleEnded() {
	o.state.IsPlaying = false
	o.stopTicker()

	next, ok := o.queue.Advance()
	if ok {
		auto := o.queue.Context().Type == media.ContextAutoplay
		o.playItem(playRequest{track: next, pctx: media.KeepContext(), fromContinuity: auto})
		if auto && o.queue.Size() <= o.lowWater {
			o.refill(false)
		}
		return
	}

	if o.queue.Context().Type == media.ContextAutoplay {
		o.refill(true)
		return
	}

	// Exhausting an explicit collection stops cleanly; diverging into radio
	// here would be surprising.
	o.state.Status = StatusEnded
	o.state.RadioModeActive = false
}

func (o *Orchestrator) continueAfterFailure() {
	o.contFailures++
	if o.contFailures >= maxContinuityFailures {
		o.exhaust(fmt.Errorf("%w: candidates kept failing to resolve", media.ErrRecommendationExhausted))
		return
	}
	if next, ok := o.queue.Advance(); ok {
		o.playItem(playRequest{track: next, pctx: media.KeepContext(), fromContinuity: true})
		return
	}
	o.refill(true)
}

// refill asks the continuity engine for more tracks. When playHead is set the
// queue ran completely dry and the first candidate starts playing on arrival;
// otherwise this is a background top-up.
func (o *Orchestrator) refill(playHead bool) {
	if !o.radioEnabled {
		// with radio off an exhausted autoplay queue ends like a collection
		if playHead {
			o.state.Status = StatusEnded
			o.state.RadioModeActive = false
		}
		return
	}
	if o.refilling {
		return
	}
	o.refilling = true
	o.state.RadioModeActive = true
	o.state.FetchingRecommendations = true

	seed := radio.Seed{History: o.queue.History()}
	if o.state.CurrentTrack != nil {
		seed.Current = *o.state.CurrentTrack
	}
	go func() {
		tracks, err := o.engine.Refill(o.ctx, seed)
		o.post(func() { o.completeRefill(tracks, err, playHead) })
	}()
}

func (o *Orchestrator) completeRefill(tracks []media.Track, err error, playHead bool) {
	o.refilling = false
	o.state.FetchingRecommendations = false
	if err != nil {
		if playHead {
			o.exhaust(err)
		}
		return
	}
	if len(tracks) == 0 {
		if playHead {
			o.exhaust(fmt.Errorf("%w: empty candidate set", media.ErrRecommendationExhausted))
		}
		return
	}

	if playHead {
		head := tracks[0]
		o.queue.Seed(tracks[1:], media.AutoplayContext("radio"))
		o.playItem(playRequest{track: head, pctx: media.KeepContext(), fromContinuity: true})
		return
	}
	o.queue.Append(tracks...)
}

// exhaust is the one place the engine is allowed to let the music stop.
func (o *Orchestrator) exhaust(err error) {
	o.state.Status = StatusError
	o.state.LastError = err
	o.state.RadioModeActive = false
	o.state.IsPlaying = false
	o.stopTicker()
	o.command("pause", func(b Backend) error { return b.Pause() })
	o.notify(NoticeError, "radio ran out of recommendations")
}

func (o *Orchestrator) startTicker() {
	if o.ticker != nil {
		o.ticker.Stop()
	}
	o.ticker = time.NewTicker(tickInterval)
}

func (o *Orchestrator) stopTicker() {
	if o.ticker != nil {
		o.ticker.Stop()
		o.ticker = nil
	}
}

// pollPosition updates CurrentTime only; progress display is the sole
// consumer and no other state depends on it.
func (o *Orchestrator) pollPosition() {
	if o.backend == nil {
		return
	}
	pos, err := o.backend.Position()
	if err != nil {
		return
	}
	o.state.CurrentTime = pos
}
