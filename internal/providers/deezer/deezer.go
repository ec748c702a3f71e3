// Package deezer implements the chart/search metadata provider.
//
// Responses are normalized into the canonical media.Track shape; track
// identities carry the "deezer:" prefix.
package deezer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sonroyaalmerol/hibiki/internal/media"
)

const DefaultBaseURL = "https://api.deezer.com"

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{baseURL: baseURL, http: http.DefaultClient}
}

type apiArtist struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type apiAlbum struct {
	Title string `json:"title"`
	Cover string `json:"cover_big"`
}

type apiTrack struct {
	ID       int64     `json:"id"`
	Title    string    `json:"title"`
	Duration int       `json:"duration"`
	Artist   apiArtist `json:"artist"`
	Album    apiAlbum  `json:"album"`
}

type trackList struct {
	Data []apiTrack `json:"data"`
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", media.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if err := media.ClassifyStatus(resp.StatusCode); err != nil {
		return fmt.Errorf("deezer: %w", err)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) Search(ctx context.Context, query string, limit int) ([]media.Track, error) {
	var list trackList
	endpoint := "/search?q=" + url.QueryEscape(query) + "&limit=" + strconv.Itoa(limit)
	if err := c.get(ctx, endpoint, &list); err != nil {
		return nil, err
	}
	return toTracks(list.Data, limit, media.SourceSearch), nil
}

func (c *Client) Chart(ctx context.Context, limit int) ([]media.Track, error) {
	var chart struct {
		Tracks trackList `json:"tracks"`
	}
	if err := c.get(ctx, "/chart?limit="+strconv.Itoa(limit), &chart); err != nil {
		return nil, err
	}
	return toTracks(chart.Tracks.Data, limit, media.SourceChart), nil
}

func (c *Client) ArtistTopTracks(ctx context.Context, artistID string, limit int) ([]media.Track, error) {
	var list trackList
	endpoint := "/artist/" + url.PathEscape(artistID) + "/top?limit=" + strconv.Itoa(limit)
	if err := c.get(ctx, endpoint, &list); err != nil {
		return nil, err
	}
	return toTracks(list.Data, limit, media.SourceSearch), nil
}

func toTracks(in []apiTrack, limit int, src media.SourceProvider) []media.Track {
	out := make([]media.Track, 0, len(in))
	for _, t := range in {
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, media.Track{
			Identity:        "deezer:" + strconv.FormatInt(t.ID, 10),
			Title:           t.Title,
			Artist:          t.Artist.Name,
			Album:           t.Album.Title,
			ArtworkURL:      t.Album.Cover,
			DurationSeconds: t.Duration,
			Source:          src,
			Raw:             t,
		})
	}
	return out
}
