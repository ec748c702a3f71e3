package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"

	"github.com/sonroyaalmerol/hibiki/internal/config"
	"github.com/sonroyaalmerol/hibiki/internal/media"
	"github.com/sonroyaalmerol/hibiki/internal/player"
	"github.com/sonroyaalmerol/hibiki/internal/player/mpv"
	"github.com/sonroyaalmerol/hibiki/internal/providers/deezer"
	"github.com/sonroyaalmerol/hibiki/internal/providers/frontend"
	"github.com/sonroyaalmerol/hibiki/internal/providers/spotify"
	"github.com/sonroyaalmerol/hibiki/internal/providers/youtube"
	"github.com/sonroyaalmerol/hibiki/internal/queue"
	"github.com/sonroyaalmerol/hibiki/internal/radio"
	"github.com/sonroyaalmerol/hibiki/internal/repository"
	"github.com/sonroyaalmerol/hibiki/internal/resolver"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	db, err := repository.OpenDB(cfg)
	if err != nil {
		log.Fatal(err)
	}
	repo := repository.NewRepo(db)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cache := resolver.NewCache(repo, cfg.CacheTTL)
	if err := cache.Warm(ctx); err != nil {
		slog.Warn("cache warm failed", "err", err)
	}

	var frontends []frontend.Frontend
	for _, u := range cfg.FrontendURLs {
		if strings.Contains(u, "piped") {
			frontends = append(frontends, frontend.NewPiped(u))
		} else {
			frontends = append(frontends, frontend.NewInvidious(u))
		}
	}
	if cfg.EnableYtdlp {
		frontends = append(frontends, frontend.NewYtdlp())
	}

	yt := youtube.New(cfg.YouTubeBaseURL, cfg.YouTubeAPIKey)
	res := resolver.New(resolver.Options{
		Primary:         yt,
		Picker:          frontend.NewPicker(frontends...),
		Cache:           cache,
		Gate:            resolver.NewCooldownGate(repo, cfg.QuotaCooldown),
		RPS:             cfg.ResolveRPS,
		FrontendTimeout: cfg.FrontendTimeout,
	})

	dz := deezer.New(cfg.DeezerBaseURL)
	var similar radio.SimilarProvider = noSimilar{}
	if cfg.SpotifyClientID != "" && cfg.SpotifyClientSecret != "" {
		sp, err := spotify.NewClientCredentials(cfg.SpotifyClientID, cfg.SpotifyClientSecret)
		if err != nil {
			log.Fatal(err)
		}
		similar = sp
	}
	engine := radio.NewEngine(yt, similar, dz)

	volume := player.DefaultVolume
	disableRadio := false
	if s, err := repo.GetSettings(ctx); err == nil {
		volume = float64(s.DefaultVolume) / 100
		disableRadio = !s.RadioEnabled
	}

	backend, err := mpv.New(cfg.MpvAudioDevice)
	if err != nil {
		log.Fatal(err)
	}
	defer backend.Close()

	orch := player.New(player.Options{
		Resolver:     res,
		Queue:        queue.NewManager(cfg.HistoryLimit),
		Engine:       engine,
		Backend:      backend,
		Settings:     repo,
		Volume:       volume,
		LowWater:     cfg.RadioLowWater,
		DisableRadio: disableRadio,
	})

	go func() {
		for n := range orch.Notices() {
			fmt.Println("!", n.Message)
		}
	}()
	go repl(ctx, cancel, orch, dz)

	if err := orch.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal(err)
	}
}

// repl reads line commands from stdin; the real client UI is an external
// surface, this is just enough to drive the engine.
func repl(ctx context.Context, cancel context.CancelFunc, orch *player.Orchestrator, dz *deezer.Client) {
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		if !dispatch(ctx, cancel, orch, dz, strings.Fields(sc.Text())) {
			return
		}
	}
}

// dispatch runs one REPL command; returns false on quit.
func dispatch(ctx context.Context, cancel context.CancelFunc, orch *player.Orchestrator, dz *deezer.Client, fields []string) bool {
	if len(fields) == 0 {
		return true
	}
	switch fields[0] {
	case "play":
		query := strings.Join(fields[1:], " ")
		tracks, err := dz.Search(ctx, query, 1)
		if err != nil || len(tracks) == 0 {
			fmt.Println("nothing found")
			return true
		}
		orch.PlayTrack(tracks[0], media.PlaybackContext{})
	case "pause", "p":
		orch.TogglePlayPause()
	case "next", "n":
		orch.Next()
	case "seek":
		if len(fields) > 1 {
			if s, err := strconv.ParseFloat(fields[1], 64); err == nil {
				orch.SeekTo(s)
			}
		}
	case "vol":
		if len(fields) > 1 {
			if v, err := strconv.ParseFloat(fields[1], 64); err == nil {
				orch.SetVolume(v)
			}
		}
	case "radio":
		if len(fields) > 1 {
			orch.SetRadioEnabled(fields[1] == "on")
		}
	case "status":
		st := orch.Snapshot()
		if st.CurrentTrack != nil {
			fmt.Printf("%s - %s [%s] %.0f/%.0fs\n",
				st.CurrentTrack.Artist, st.CurrentTrack.Title,
				st.Status, st.CurrentTime, st.Duration)
		} else {
			fmt.Println(st.Status)
		}
	case "queue":
		up, total := orch.Queue().UpNext(1, 10)
		fmt.Printf("%d queued\n", total)
		for i, t := range up {
			fmt.Printf("%2d. %s - %s\n", i+1, t.Artist, t.Title)
		}
	case "move":
		if len(fields) > 2 {
			from, err1 := strconv.Atoi(fields[1])
			to, err2 := strconv.Atoi(fields[2])
			if err1 != nil || err2 != nil {
				fmt.Println("usage: move <from> <to>")
				return true
			}
			if moved, err := orch.Queue().Move(from, to); err != nil {
				fmt.Println(err)
			} else {
				fmt.Printf("moved %s - %s to %d\n", moved.Artist, moved.Title, to)
			}
		}
	case "rm":
		if len(fields) > 1 {
			pos, err := strconv.Atoi(fields[1])
			if err != nil {
				fmt.Println("usage: rm <pos> [count]")
				return true
			}
			count := 1
			if len(fields) > 2 {
				if c, err := strconv.Atoi(fields[2]); err == nil {
					count = c
				}
			}
			if err := orch.Queue().Remove(pos, count); err != nil {
				fmt.Println(err)
			}
		}
	case "shuffle":
		orch.Queue().Shuffle()
	case "stop":
		orch.Stop()
	case "quit", "q":
		cancel()
		return false
	}
	return true
}

// noSimilar keeps the chain shape when spotify credentials are absent.
type noSimilar struct{}

func (noSimilar) Similar(ctx context.Context, artist, album string, limit int) ([]media.Track, error) {
	return nil, nil
}
