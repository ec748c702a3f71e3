package radio

import (
	"context"

	"github.com/sonroyaalmerol/hibiki/internal/media"
	"github.com/sonroyaalmerol/hibiki/internal/providers/youtube"
)

// Seed is what the engine knows when the queue runs dry.
type Seed struct {
	Current media.Track
	History []media.Track // most recent first
}

// Strategy produces candidate tracks from a seed. Returning an empty slice
// (or an error) hands over to the next strategy in the chain.
type Strategy interface {
	Name() string
	Fill(ctx context.Context, seed Seed) ([]media.Track, error)
}

// RelatedProvider is the resolution provider's related-items surface.
type RelatedProvider interface {
	Related(ctx context.Context, videoID string, limit int) ([]youtube.Result, error)
}

// SimilarProvider is the alternate metadata provider.
type SimilarProvider interface {
	Similar(ctx context.Context, artist, album string, limit int) ([]media.Track, error)
}

// ChartProvider is the chart/search metadata provider.
type ChartProvider interface {
	Search(ctx context.Context, query string, limit int) ([]media.Track, error)
	Chart(ctx context.Context, limit int) ([]media.Track, error)
}

const strategyLimit = 10

// relatedMedia queries the resolution provider's related-items surface,
// seeded by the current track. Only applicable once something has actually
// played: it needs a resolved identifier and a non-empty history.
type relatedMedia struct {
	provider RelatedProvider
}

func (s relatedMedia) Name() string { return "related-media" }

func (s relatedMedia) Fill(ctx context.Context, seed Seed) ([]media.Track, error) {
	if !media.ValidPlayableID(seed.Current.PlayableID) || len(seed.History) == 0 {
		return nil, nil
	}
	results, err := s.provider.Related(ctx, seed.Current.PlayableID, strategyLimit)
	if err != nil {
		return nil, err
	}
	out := make([]media.Track, 0, len(results))
	for _, r := range results {
		artist, title := media.SplitArtistTitle(r.Title)
		if artist == "" {
			artist = r.Channel
		}
		out = append(out, media.Track{
			Identity:   "youtube:" + r.PlayableID,
			Title:      title,
			Artist:     artist,
			Source:     media.SourceResolved,
			PlayableID: r.PlayableID,
		})
	}
	return out, nil
}

// similarTrack asks the alternate metadata provider for tracks adjacent to
// the current artist/album.
type similarTrack struct {
	provider SimilarProvider
}

func (s similarTrack) Name() string { return "similar-track" }

func (s similarTrack) Fill(ctx context.Context, seed Seed) ([]media.Track, error) {
	artist := seedArtist(seed.Current)
	if artist == "" {
		return nil, nil
	}
	return s.provider.Similar(ctx, artist, seed.Current.Album, strategyLimit)
}

// sameArtist searches the chart/search provider by the current artist name.
type sameArtist struct {
	provider ChartProvider
}

func (s sameArtist) Name() string { return "same-artist" }

func (s sameArtist) Fill(ctx context.Context, seed Seed) ([]media.Track, error) {
	artist := seedArtist(seed.Current)
	if artist == "" {
		return nil, nil
	}
	return s.provider.Search(ctx, artist, strategyLimit)
}

// chartFallback is the last resort: generic top-chart tracks.
type chartFallback struct {
	provider ChartProvider
}

func (s chartFallback) Name() string { return "chart" }

func (s chartFallback) Fill(ctx context.Context, seed Seed) ([]media.Track, error) {
	return s.provider.Chart(ctx, strategyLimit)
}

func seedArtist(t media.Track) string {
	if t.Artist != "" {
		return t.Artist
	}
	// best-effort extraction from free-text titles
	artist, _ := media.SplitArtistTitle(t.Title)
	return artist
}
