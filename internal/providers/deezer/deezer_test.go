package deezer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sonroyaalmerol/hibiki/internal/media"
)

const sampleTracks = `{"data":[
  {"id":3135556,"title":"Harder, Better, Faster, Stronger","duration":224,
   "artist":{"id":27,"name":"Daft Punk"},
   "album":{"title":"Discovery","cover_big":"https://cdn.example/discovery.jpg"}},
  {"id":916424,"title":"One More Time","duration":320,
   "artist":{"id":27,"name":"Daft Punk"},
   "album":{"title":"Discovery","cover_big":""}}
]}`

func TestSearchNormalization(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("q"); got != "daft punk" {
			t.Errorf("q = %q", got)
		}
		w.Write([]byte(sampleTracks))
	}))
	defer srv.Close()

	c := New(srv.URL)
	tracks, err := c.Search(context.Background(), "daft punk", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(tracks) != 2 {
		t.Fatalf("got %d tracks", len(tracks))
	}
	first := tracks[0]
	if first.Identity != "deezer:3135556" {
		t.Errorf("identity = %q", first.Identity)
	}
	if first.Artist != "Daft Punk" || first.Album != "Discovery" {
		t.Errorf("bad metadata: %+v", first)
	}
	if first.DurationSeconds != 224 {
		t.Errorf("duration = %d", first.DurationSeconds)
	}
	if first.Source != media.SourceSearch {
		t.Errorf("source = %v", first.Source)
	}
	if first.Playable() {
		t.Error("chart/search tracks carry no playable identifier yet")
	}
}

func TestChart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chart" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"tracks":` + sampleTracks + `}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	tracks, err := c.Chart(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(tracks) != 1 {
		t.Fatalf("limit not honored: %d tracks", len(tracks))
	}
	if tracks[0].Source != media.SourceChart {
		t.Errorf("source = %v", tracks[0].Source)
	}
}

func TestArtistTopTracks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/artist/27/top" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(sampleTracks))
	}))
	defer srv.Close()

	c := New(srv.URL)
	tracks, err := c.ArtistTopTracks(context.Background(), "27", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(tracks) != 2 {
		t.Fatalf("got %d tracks", len(tracks))
	}
}

func TestErrorClassification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Search(context.Background(), "x", 1)
	if !errors.Is(err, media.ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}
}
