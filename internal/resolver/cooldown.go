package resolver

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sonroyaalmerol/hibiki/internal/repository"
)

// CooldownGate is the quota-cooldown window for the primary resolution
// provider. While active, the resolver skips straight to the fallback
// frontends. State is written through to settings so a restart inside the
// window does not re-burn quota.
type CooldownGate struct {
	mu      sync.Mutex
	until   time.Time
	defWait time.Duration
	repo    *repository.Repo
	now     func() time.Time
}

func NewCooldownGate(repo *repository.Repo, defWait time.Duration) *CooldownGate {
	g := &CooldownGate{defWait: defWait, repo: repo, now: time.Now}
	if repo != nil {
		if s, err := repo.GetSettings(context.Background()); err == nil && s.CooldownUntil > 0 {
			g.until = time.Unix(s.CooldownUntil, 0)
		}
	}
	return g
}

func (g *CooldownGate) Active() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.now().Before(g.until)
}

// Trip opens the cooldown window. A non-zero until (a provider hint, e.g.
// "until local midnight") wins over the default wait.
func (g *CooldownGate) Trip(ctx context.Context, until time.Time) {
	g.mu.Lock()
	if until.IsZero() {
		until = g.now().Add(g.defWait)
	}
	g.until = until
	g.mu.Unlock()

	slog.Warn("resolution quota cooldown entered", "until", until)
	if g.repo != nil {
		if err := g.repo.SetCooldownUntil(ctx, until); err != nil {
			slog.Warn("failed to persist cooldown", "err", err)
		}
	}
}

func (g *CooldownGate) Reset(ctx context.Context) {
	g.mu.Lock()
	g.until = time.Time{}
	g.mu.Unlock()
	if g.repo != nil {
		_ = g.repo.SetCooldownUntil(ctx, time.Time{})
	}
}
