package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/sonroyaalmerol/hibiki/internal/media"
)

func openTestRepo(t *testing.T) *Repo {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	if err := RunMigrations(db); err != nil {
		t.Fatal(err)
	}
	return NewRepo(db)
}

func TestSettingsSeededByMigration(t *testing.T) {
	r := openTestRepo(t)
	s, err := r.GetSettings(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if s.DefaultVolume != 100 {
		t.Errorf("default volume = %d, want 100", s.DefaultVolume)
	}
	if !s.RadioEnabled {
		t.Error("radio should default on")
	}
	if s.CooldownUntil != 0 {
		t.Errorf("cooldown_until = %d, want 0", s.CooldownUntil)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	r := openTestRepo(t)
	ctx := context.Background()

	err := r.UpdateSettings(ctx, &Settings{DefaultVolume: 40, RadioEnabled: false, CooldownUntil: 1234})
	if err != nil {
		t.Fatal(err)
	}
	s, err := r.GetSettings(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if s.DefaultVolume != 40 || s.RadioEnabled || s.CooldownUntil != 1234 {
		t.Fatalf("unexpected settings: %+v", s)
	}
}

func TestSetCooldownUntil(t *testing.T) {
	r := openTestRepo(t)
	ctx := context.Background()
	until := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)

	if err := r.SetCooldownUntil(ctx, until); err != nil {
		t.Fatal(err)
	}
	s, err := r.GetSettings(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if s.CooldownUntil != until.Unix() {
		t.Fatalf("cooldown_until = %d, want %d", s.CooldownUntil, until.Unix())
	}

	if err := r.SetCooldownUntil(ctx, time.Time{}); err != nil {
		t.Fatal(err)
	}
	s, err = r.GetSettings(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if s.CooldownUntil != 0 {
		t.Fatalf("zero time should clear the window, got %d", s.CooldownUntil)
	}
}

func TestCachePutGetReplace(t *testing.T) {
	r := openTestRepo(t)
	ctx := context.Background()
	at := time.Unix(1700000000, 0)

	err := r.CachePut(ctx, media.CacheEntry{Identity: "deezer:1", PlayableID: "AAAAAAAAAAA", ResolvedAt: at})
	if err != nil {
		t.Fatal(err)
	}
	got, err := r.CacheGet(ctx, "deezer:1")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.PlayableID != "AAAAAAAAAAA" || !got.ResolvedAt.Equal(at) {
		t.Fatalf("unexpected entry: %+v", got)
	}

	// same identity re-resolved later replaces the row
	err = r.CachePut(ctx, media.CacheEntry{Identity: "deezer:1", PlayableID: "BBBBBBBBBBB", ResolvedAt: at.Add(time.Hour)})
	if err != nil {
		t.Fatal(err)
	}
	got, err = r.CacheGet(ctx, "deezer:1")
	if err != nil {
		t.Fatal(err)
	}
	if got.PlayableID != "BBBBBBBBBBB" {
		t.Fatalf("replace did not take: %+v", got)
	}
}

func TestCacheGetMissing(t *testing.T) {
	r := openTestRepo(t)
	got, err := r.CacheGet(context.Background(), "deezer:absent")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatalf("got %+v, want nil", got)
	}
}

func TestCachePrune(t *testing.T) {
	r := openTestRepo(t)
	ctx := context.Background()
	old := time.Unix(1000, 0)
	fresh := time.Unix(9000, 0)

	_ = r.CachePut(ctx, media.CacheEntry{Identity: "deezer:old", PlayableID: "AAAAAAAAAAA", ResolvedAt: old})
	_ = r.CachePut(ctx, media.CacheEntry{Identity: "deezer:new", PlayableID: "BBBBBBBBBBB", ResolvedAt: fresh})

	n, err := r.CachePrune(ctx, time.Unix(5000, 0))
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("pruned %d rows, want 1", n)
	}
	all, err := r.CacheAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || all[0].Identity != "deezer:new" {
		t.Fatalf("unexpected survivors: %+v", all)
	}
}
