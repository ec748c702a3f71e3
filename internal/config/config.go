package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

func getenv(key, def string) string {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	return val
}

func getenvDuration(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return def
	}
	return d
}

func getenvFloat(key string, def float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func LoadConfig() (*Config, error) {
	dataDir := getenv("DATA_DIR", "./data")

	frontends := strings.Split(getenv("FRONTEND_URLS",
		"https://yewtu.be,https://pipedapi.kavin.rocks"), ",")
	for i := range frontends {
		frontends[i] = strings.TrimSpace(frontends[i])
	}

	cfg := &Config{
		DataDir:             dataDir,
		DeezerBaseURL:       getenv("DEEZER_BASE_URL", "https://api.deezer.com"),
		YouTubeAPIKey:       os.Getenv("YOUTUBE_API_KEY"),
		YouTubeBaseURL:      getenv("YOUTUBE_BASE_URL", "https://www.googleapis.com/youtube/v3"),
		SpotifyClientID:     os.Getenv("SPOTIFY_CLIENT_ID"),
		SpotifyClientSecret: os.Getenv("SPOTIFY_CLIENT_SECRET"),
		FrontendURLs:        frontends,
		FrontendTimeout:     getenvDuration("FRONTEND_TIMEOUT", 8*time.Second),
		CacheTTL:            getenvDuration("CACHE_TTL", 24*time.Hour),
		QuotaCooldown:       getenvDuration("QUOTA_COOLDOWN", time.Hour),
		ResolveRPS:          getenvFloat("RESOLVE_RPS", 2),
		RadioLowWater:       getenvInt("RADIO_LOW_WATER", 2),
		HistoryLimit:        getenvInt("HISTORY_LIMIT", 20),
		EnableYtdlp:         getenv("ENABLE_YTDLP", "false") == "true",
		MpvAudioDevice:      os.Getenv("MPV_AUDIO_DEVICE"),
	}

	if cfg.YouTubeAPIKey == "" {
		return nil, ErrConfig("YOUTUBE_API_KEY required")
	}
	_ = os.MkdirAll(cfg.DataDir, 0o755)
	return cfg, nil
}

type ErrConfig string

func (e ErrConfig) Error() string { return string(e) }
