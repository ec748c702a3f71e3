package config

import "time"

type Config struct {
	DataDir string

	DeezerBaseURL       string
	YouTubeAPIKey       string
	YouTubeBaseURL      string
	SpotifyClientID     string
	SpotifyClientSecret string

	FrontendURLs    []string // alternate open frontends, tried round-robin
	FrontendTimeout time.Duration

	CacheTTL      time.Duration
	QuotaCooldown time.Duration
	ResolveRPS    float64 // primary resolution provider rate limit
	RadioLowWater int     // queue size at or below which radio refills
	HistoryLimit  int
	EnableYtdlp   bool // use yt-dlp as a last-resort frontend

	MpvAudioDevice string
}
