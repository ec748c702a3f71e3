// Package youtube implements the video-resolution provider against the Data
// API v3 search surface. Quota exhaustion (403 with a quota reason) is
// signalled distinctly from a plain empty result so the resolver can choose
// cooldown over plain failure.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sonroyaalmerol/hibiki/internal/media"
)

const DefaultBaseURL = "https://www.googleapis.com/youtube/v3"

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func New(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{baseURL: baseURL, apiKey: apiKey, http: http.DefaultClient}
}

// Result is a resolved playable identifier plus the metadata the provider
// returned alongside it.
type Result struct {
	PlayableID string
	Title      string
	Channel    string
}

// QuotaError reports quota exhaustion together with the provider's reset
// time. Data API quota resets daily, so the hint is the next local midnight;
// the resolver holds its cooldown window open until then.
type QuotaError struct {
	ResetAt time.Time
}

func (e *QuotaError) Error() string {
	return "youtube data api quota exceeded until " + e.ResetAt.Format(time.RFC3339)
}

func (e *QuotaError) Unwrap() error { return media.ErrQuotaExceeded }

// nextQuotaReset returns the next local midnight after now.
func nextQuotaReset(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, now.Location())
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			ChannelTitle string `json:"channelTitle"`
		} `json:"snippet"`
	} `json:"items"`
}

type errorResponse struct {
	Error struct {
		Code   int `json:"code"`
		Errors []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

func (c *Client) search(ctx context.Context, params url.Values, limit int) ([]Result, error) {
	params.Set("part", "snippet")
	params.Set("type", "video")
	params.Set("maxResults", strconv.Itoa(limit))
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", media.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		if resp.StatusCode == http.StatusForbidden && isQuotaReason(body) {
			return nil, &QuotaError{ResetAt: nextQuotaReset(time.Now())}
		}
		return nil, fmt.Errorf("youtube: %w", media.ClassifyStatus(resp.StatusCode))
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	out := make([]Result, 0, len(sr.Items))
	for _, it := range sr.Items {
		if it.ID.VideoID == "" {
			continue
		}
		out = append(out, Result{
			PlayableID: it.ID.VideoID,
			Title:      it.Snippet.Title,
			Channel:    it.Snippet.ChannelTitle,
		})
	}
	return out, nil
}

// Resolve finds the best playable identifier for a free-text query.
func (c *Client) Resolve(ctx context.Context, query string) (Result, error) {
	params := url.Values{}
	params.Set("q", query)
	results, err := c.search(ctx, params, 1)
	if err != nil {
		return Result{}, err
	}
	if len(results) == 0 {
		return Result{}, fmt.Errorf("%w: no results for %q", media.ErrNotFound, query)
	}
	return results[0], nil
}

// Related returns videos adjacent to the given one; used by the continuity
// engine's related-media strategy.
func (c *Client) Related(ctx context.Context, videoID string, limit int) ([]Result, error) {
	params := url.Values{}
	params.Set("relatedToVideoId", videoID)
	return c.search(ctx, params, limit)
}

func isQuotaReason(body []byte) bool {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err != nil {
		// some quota rejections come back as plain text
		return strings.Contains(strings.ToLower(string(body)), "quota")
	}
	for _, e := range er.Error.Errors {
		switch e.Reason {
		case "quotaExceeded", "dailyLimitExceeded", "rateLimitExceeded":
			return true
		}
	}
	return false
}
