package frontend

import (
	"context"
	"fmt"
	"sync"

	ytdlp "github.com/lrstanley/go-ytdlp"

	"github.com/sonroyaalmerol/hibiki/internal/media"
)

var installOnce sync.Once

// Ytdlp shells out to yt-dlp as a last-resort frontend. Slowest of the
// frontends but immune to instance outages.
type Ytdlp struct{}

func NewYtdlp() *Ytdlp { return &Ytdlp{} }

func (f *Ytdlp) Name() string { return "yt-dlp" }

func (f *Ytdlp) Search(ctx context.Context, query string) (Result, error) {
	installOnce.Do(func() {
		ytdlp.MustInstall(ctx, nil)
	})

	cmd := ytdlp.New().
		SkipDownload().
		NoCheckCertificates().
		DumpJSON()

	res, err := cmd.Run(ctx, "ytsearch1:"+query)
	if err != nil {
		return Result{}, fmt.Errorf("yt-dlp run: %w", err)
	}
	infos, err := res.GetExtractedInfo()
	if err != nil {
		return Result{}, fmt.Errorf("parse yt-dlp json: %w", err)
	}
	for _, info := range infos {
		if info == nil {
			continue
		}
		entries := info.Entries
		if len(entries) == 0 {
			entries = []*ytdlp.ExtractedInfo{info}
		}
		for _, e := range entries {
			if e == nil || e.ID == "" {
				continue
			}
			return Result{
				PlayableID:      e.ID,
				Title:           strOrEmpty(e.Title),
				Author:          strOrEmpty(e.Uploader),
				DurationSeconds: int(floatOrZero(e.Duration)),
			}, nil
		}
	}
	return Result{}, fmt.Errorf("%w: no results for %q", media.ErrNotFound, query)
}

func strOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func floatOrZero(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
