package frontend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sonroyaalmerol/hibiki/internal/media"
)

func TestInvidiousSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`[
		  {"videoId":"FGBhQbmPwH8","title":"One More Time","author":"Daft Punk","lengthSeconds":320},
		  {"videoId":"AAAAAAAAAAA","title":"other","author":"x","lengthSeconds":1}
		]`))
	}))
	defer srv.Close()

	f := NewInvidious(srv.URL)
	got, err := f.Search(context.Background(), "one more time")
	if err != nil {
		t.Fatal(err)
	}
	if got.PlayableID != "FGBhQbmPwH8" || got.DurationSeconds != 320 {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestInvidiousEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := NewInvidious(srv.URL).Search(context.Background(), "x")
	if !errors.Is(err, media.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestPipedSearchExtractsWatchID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"items":[
		  {"url":"/channel/UCx","title":"a channel","uploaderName":"","duration":0},
		  {"url":"/watch?v=FGBhQbmPwH8&list=PL1","title":"One More Time","uploaderName":"Daft Punk","duration":320}
		]}`))
	}))
	defer srv.Close()

	got, err := NewPiped(srv.URL).Search(context.Background(), "one more time")
	if err != nil {
		t.Fatal(err)
	}
	if got.PlayableID != "FGBhQbmPwH8" {
		t.Fatalf("playable id = %q", got.PlayableID)
	}
	if got.Author != "Daft Punk" {
		t.Fatalf("author = %q", got.Author)
	}
}

func TestWatchID(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"/watch?v=FGBhQbmPwH8", "FGBhQbmPwH8"},
		{"/watch?v=FGBhQbmPwH8&t=10", "FGBhQbmPwH8"},
		{"/channel/UCx", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := watchID(c.in); got != c.want {
			t.Errorf("watchID(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestPickerEmpty(t *testing.T) {
	p := NewPicker()
	if got := p.Pick(2); got != nil {
		t.Fatalf("got %v, want nil", got)
	}
}
