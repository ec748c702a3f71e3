package main

import (
	"context"
	"strings"
	"testing"

	"github.com/sonroyaalmerol/hibiki/internal/media"
	"github.com/sonroyaalmerol/hibiki/internal/player"
	"github.com/sonroyaalmerol/hibiki/internal/providers/deezer"
	"github.com/sonroyaalmerol/hibiki/internal/queue"
	"github.com/sonroyaalmerol/hibiki/internal/radio"
	"github.com/sonroyaalmerol/hibiki/internal/resolver"
)

type nopResolver struct{}

func (nopResolver) Resolve(ctx context.Context, t media.Track) (resolver.Resolution, error) {
	return resolver.Resolution{}, media.ErrNotResolvable
}

type nopEngine struct{}

func (nopEngine) Refill(ctx context.Context, seed radio.Seed) ([]media.Track, error) {
	return nil, nil
}

func (nopEngine) AutoplaySeed(ctx context.Context, current media.Track) ([]media.Track, error) {
	return nil, nil
}

func TestDispatchQueueVerbs(t *testing.T) {
	orch := player.New(player.Options{
		Resolver: nopResolver{},
		Queue:    queue.NewManager(20),
		Engine:   nopEngine{},
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	dz := deezer.New("")

	orch.Queue().Seed([]media.Track{
		{Identity: "deezer:1", Title: "one"},
		{Identity: "deezer:2", Title: "two"},
		{Identity: "deezer:3", Title: "three"},
	}, media.PlaybackContext{})

	run := func(line string) bool {
		t.Helper()
		return dispatch(ctx, cancel, orch, dz, strings.Fields(line))
	}

	run("move 3 1")
	up, _ := orch.Queue().UpNext(1, 10)
	if up[0].Identity != "deezer:3" || up[1].Identity != "deezer:1" {
		t.Fatalf("queue after move: %v", up)
	}

	run("rm 2 1")
	up, total := orch.Queue().UpNext(1, 10)
	if total != 2 || up[0].Identity != "deezer:3" || up[1].Identity != "deezer:2" {
		t.Fatalf("queue after rm: %v (total %d)", up, total)
	}

	run("shuffle")
	if _, total := orch.Queue().UpNext(1, 10); total != 2 {
		t.Fatalf("shuffle changed the queue size to %d", total)
	}

	if run("quit") {
		t.Fatal("quit should end the loop")
	}
	if ctx.Err() == nil {
		t.Fatal("quit should cancel the run context")
	}
}
