// Package frontend holds the alternate open-frontend services the resolver
// falls back to when the primary resolution provider is exhausted. Frontends
// are lower-confidence sources: their failures are logged and treated as
// empty results, never propagated as fatal.
package frontend

import (
	"context"
	"sync"
)

// Result is a frontend's answer to a free-text search.
type Result struct {
	PlayableID      string
	Title           string
	Author          string
	DurationSeconds int
}

type Frontend interface {
	Name() string
	Search(ctx context.Context, query string) (Result, error)
}

// Picker hands out frontends in round-robin order so no single instance
// absorbs every fallback call.
type Picker struct {
	mu        sync.Mutex
	frontends []Frontend
	next      int
}

func NewPicker(frontends ...Frontend) *Picker {
	return &Picker{frontends: frontends}
}

func (p *Picker) Len() int { return len(p.frontends) }

// Pick returns up to n frontends starting at the rotating cursor and
// advances the cursor by one.
func (p *Picker) Pick(n int) []Frontend {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.frontends) == 0 {
		return nil
	}
	if n > len(p.frontends) {
		n = len(p.frontends)
	}
	out := make([]Frontend, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, p.frontends[(p.next+i)%len(p.frontends)])
	}
	p.next = (p.next + 1) % len(p.frontends)
	return out
}
