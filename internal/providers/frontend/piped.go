package frontend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sonroyaalmerol/hibiki/internal/media"
)

// Piped searches a Piped API instance. Piped returns stream URLs of the form
// "/watch?v=ID"; only the identifier is kept.
type Piped struct {
	baseURL string
	http    *http.Client
}

func NewPiped(baseURL string) *Piped {
	return &Piped{baseURL: baseURL, http: http.DefaultClient}
}

func (f *Piped) Name() string { return "piped:" + f.baseURL }

func (f *Piped) Search(ctx context.Context, query string) (Result, error) {
	endpoint := f.baseURL + "/search?filter=videos&q=" + url.QueryEscape(query)
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
		return Result{}, fmt.Errorf("piped: %w", err)
	}

	var body struct {
		Items []struct {
			URL        string `json:"url"`
			Title      string `json:"title"`
			UploaderName string `json:"uploaderName"`
			Duration   int    `json:"duration"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Result{}, fmt.Errorf("decode response: %w", err)
	}
	for _, it := range body.Items {
		id := watchID(it.URL)
		if id == "" {
			continue
		}
		return Result{
			PlayableID:      id,
			Title:           it.Title,
			Author:          it.UploaderName,
			DurationSeconds: it.Duration,
		}, nil
	}
	return Result{}, fmt.Errorf("%w: no results for %q", media.ErrNotFound, query)
}

func watchID(u string) string {
	i := strings.Index(u, "v=")
	if i < 0 {
		return ""
	}
	id := u[i+2:]
	if j := strings.IndexByte(id, '&'); j >= 0 {
		id = id[:j]
	}
	return id
}
