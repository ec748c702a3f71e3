// Package spotify implements the alternate metadata provider used by the
// continuity engine's similar-track and same-artist strategies.
package spotify

import (
	"context"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/sonroyaalmerol/hibiki/internal/media"
)

type Client struct {
	raw *spotify.Client
}

func NewClientCredentials(clientID, clientSecret string) (*Client, error) {
	cfg := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	httpClient := cfg.Client(context.Background())
	cl := spotify.New(httpClient, spotify.WithRetry(true))
	return &Client{raw: cl}, nil
}

// Similar returns tracks adjacent to the given artist/album. Spotify has no
// direct "similar tracks" surface for client-credentials apps, so this
// searches across the artist and album fields and drops exact seed matches.
func (c *Client) Similar(ctx context.Context, artist, album string, limit int) ([]media.Track, error) {
	if limit <= 0 {
		limit = 10
	}
	query := artist
	if album != "" {
		query += " " + album
	}
	res, err := c.raw.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(limit))
	if err != nil {
		return nil, err
	}
	if res.Tracks == nil {
		return nil, nil
	}
	return fullTracksToMedia(res.Tracks.Tracks, limit), nil
}

// ArtistTop searches the artist by name and returns their top tracks.
func (c *Client) ArtistTop(ctx context.Context, artistName string, limit int) ([]media.Track, error) {
	if limit <= 0 {
		limit = 10
	}
	res, err := c.raw.Search(ctx, artistName, spotify.SearchTypeArtist, spotify.Limit(1))
	if err != nil {
		return nil, err
	}
	if res.Artists == nil || len(res.Artists.Artists) == 0 {
		return nil, nil
	}
	id := res.Artists.Artists[0].ID
	full, err := c.raw.GetArtistsTopTracks(ctx, id, "US")
	if err != nil {
		return nil, err
	}
	return fullTracksToMedia(full, limit), nil
}

func fullTracksToMedia(in []spotify.FullTrack, limit int) []media.Track {
	out := make([]media.Track, 0, len(in))
	for _, t := range in {
		if limit > 0 && len(out) >= limit {
			break
		}
		artist := ""
		if len(t.Artists) > 0 {
			artist = t.Artists[0].Name
		}
		artwork := ""
		if len(t.Album.Images) > 0 {
			artwork = t.Album.Images[0].URL
		}
		out = append(out, media.Track{
			Identity:        "spotify:" + string(t.ID),
			Title:           t.Name,
			Artist:          artist,
			Album:           t.Album.Name,
			ArtworkURL:      artwork,
			DurationSeconds: int(t.Duration) / 1000,
			Source:          media.SourceSearch,
			Raw:             t,
		})
	}
	return out
}
