package radio

import (
	"context"
	"errors"
	"testing"

	"github.com/sonroyaalmerol/hibiki/internal/media"
)

type fakeStrategy struct {
	name   string
	tracks []media.Track
	err    error
	calls  int
}

func (f *fakeStrategy) Name() string { return f.name }

func (f *fakeStrategy) Fill(ctx context.Context, seed Seed) ([]media.Track, error) {
	f.calls++
	return f.tracks, f.err
}

func track(id string) media.Track {
	return media.Track{Identity: id}
}

func TestRefillFirstNonEmptyWins(t *testing.T) {
	s1 := &fakeStrategy{name: "one"}
	s2 := &fakeStrategy{name: "two", tracks: []media.Track{track("b"), track("c")}}
	s3 := &fakeStrategy{name: "three", tracks: []media.Track{track("x")}}
	e := NewEngineWithStrategies(s1, s2, s3)

	got, err := e.Refill(context.Background(), Seed{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Identity != "b" {
		t.Fatalf("unexpected result: %v", got)
	}
	if s3.calls != 0 {
		t.Error("later strategy should not run once one succeeds")
	}
	if e.State() != StateSuccess {
		t.Errorf("state = %v, want success", e.State())
	}
}

func TestRefillStrategyErrorsAreSwallowed(t *testing.T) {
	s1 := &fakeStrategy{name: "one", err: errors.New("provider down")}
	s2 := &fakeStrategy{name: "two", tracks: []media.Track{track("b")}}
	e := NewEngineWithStrategies(s1, s2)

	got, err := e.Refill(context.Background(), Seed{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Identity != "b" {
		t.Fatalf("unexpected result: %v", got)
	}
}

func TestRefillExhaustion(t *testing.T) {
	strategies := []*fakeStrategy{
		{name: "one"}, {name: "two"}, {name: "three"}, {name: "four"},
	}
	e := NewEngineWithStrategies(strategies[0], strategies[1], strategies[2], strategies[3])

	_, err := e.Refill(context.Background(), Seed{})
	if !errors.Is(err, media.ErrRecommendationExhausted) {
		t.Fatalf("err = %v, want ErrRecommendationExhausted", err)
	}
	if e.State() != StateExhausted {
		t.Errorf("state = %v, want exhausted", e.State())
	}
	for _, s := range strategies {
		if s.calls != 1 {
			t.Errorf("strategy %s called %d times, want exactly 1", s.name, s.calls)
		}
	}
}

func TestRefillFiltersRecentHistory(t *testing.T) {
	s := &fakeStrategy{name: "one", tracks: []media.Track{track("a"), track("b"), track("c")}}
	e := NewEngineWithStrategies(s)

	history := []media.Track{track("a"), track("b")}
	got, err := e.Refill(context.Background(), Seed{History: history})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Identity != "c" {
		t.Fatalf("got %v, want only c", got)
	}
}

func TestRefillFilterOnlyCoversRecentWindow(t *testing.T) {
	// "a" sits outside the 5-entry window and stays suggestible.
	s := &fakeStrategy{name: "one", tracks: []media.Track{track("a")}}
	e := NewEngineWithStrategies(s)

	history := []media.Track{
		track("f"), track("e"), track("d"), track("c"), track("b"), track("a"),
	}
	got, err := e.Refill(context.Background(), Seed{History: history})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Identity != "a" {
		t.Fatalf("got %v, want [a]", got)
	}
}

func TestRefillKeepsUnfilteredSetWhenFilterEmpties(t *testing.T) {
	s := &fakeStrategy{name: "one", tracks: []media.Track{track("a"), track("b")}}
	e := NewEngineWithStrategies(s)

	history := []media.Track{track("a"), track("b")}
	got, err := e.Refill(context.Background(), Seed{History: history})
	if err != nil {
		t.Fatal(err)
	}
	// repeating beats stopping the music
	if len(got) != 2 {
		t.Fatalf("got %v, want the unfiltered pair", got)
	}
}

func TestAutoplaySeedDropsTheSeedItself(t *testing.T) {
	sim := &fakeStrategy{name: "similar", tracks: []media.Track{track("cur"), track("b")}}
	e := &Engine{seeder: sim}

	got, err := e.AutoplaySeed(context.Background(), track("cur"))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Identity != "b" {
		t.Fatalf("got %v, want [b]", got)
	}
}
