package frontend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sonroyaalmerol/hibiki/internal/media"
)

// Invidious searches an Invidious instance's JSON API.
type Invidious struct {
	baseURL string
	http    *http.Client
}

func NewInvidious(baseURL string) *Invidious {
	return &Invidious{baseURL: baseURL, http: http.DefaultClient}
}

func (f *Invidious) Name() string { return "invidious:" + f.baseURL }

func (f *Invidious) Search(ctx context.Context, query string) (Result, error) {
	endpoint := f.baseURL + "/api/v1/search?type=video&q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Result{}, fmt.Errorf("build request: %w", err)
	}
	resp, err := f.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", media.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if err := media.ClassifyStatus(resp.StatusCode); err != nil {
		return Result{}, fmt.Errorf("invidious: %w", err)
	}

	var items []struct {
		VideoID       string `json:"videoId"`
		Title         string `json:"title"`
		Author        string `json:"author"`
		LengthSeconds int    `json:"lengthSeconds"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return Result{}, fmt.Errorf("decode response: %w", err)
	}
	if len(items) == 0 {
		return Result{}, fmt.Errorf("%w: no results for %q", media.ErrNotFound, query)
	}
	it := items[0]
	return Result{
		PlayableID:      it.VideoID,
		Title:           it.Title,
		Author:          it.Author,
		DurationSeconds: it.LengthSeconds,
	}, nil
}
