// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/cardparty/internal/auth"
	"github.com/jason-s-yu/cardparty/internal/cache"
	"github.com/jason-s-yu/cardparty/internal/config"
	"github.com/jason-s-yu/cardparty/internal/deck"
	"github.com/jason-s-yu/cardparty/internal/game"
	"github.com/jason-s-yu/cardparty/internal/handlers"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	logger := cfg.NewLogger()

	cards, err := deck.Load(cfg.DeckPath)
	if err != nil {
		logger.Fatalf("deck: %v", err)
	}
	logger.Infof("loaded %d response and %d prompt cards", cards.ResponseCount(), cards.PromptCount())
	if err := cfg.ValidateHandSize(cards.MaxPick()); err != nil {
		logger.Fatalf("config: %v", err)
	}

	tokens, err := newIssuer(cfg)
	if err != nil {
		logger.Fatalf("auth: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := handlers.NewHub(logger)
	opts := []game.Option{
		game.WithSettings(game.Settings{
			RoundDuration: cfg.RoundDuration,
			JudgeDuration: cfg.JudgeDuration,
			ResultDelay:   cfg.ResultDelay,
			HandSize:      cfg.HandSize,
			MinPlayers:    cfg.MinPlayers,
		}),
		game.WithLogger(logger),
	}
	if cfg.RedisAddr != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			logger.Fatalf("redis: %v", err)
		}
		defer rdb.Close()
		opts = append(opts, game.WithHistory(cache.NewRoundQueue(rdb, cfg.HistoryQueue)))
		logger.Infof("recording rounds to redis list %q", cfg.HistoryQueue)
	}
	coord := game.NewCoordinator(cards, hub, opts...)

	gs := handlers.NewGameServer(coord, hub, tokens, logger)
	gs.RateLimit = rate.Limit(cfg.WSRatePerSec)
	gs.RateBurst = cfg.WSRateBurst

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.NewRouter(gs),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warnf("shutdown: %v", err)
		}
	}()

	logger.Infof("Running on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("server exited: %v", err)
	}
}

func newIssuer(cfg config.Config) (*auth.Issuer, error) {
	if cfg.JWTPrivateKeyPath != "" {
		return auth.NewIssuerFromPath(cfg.JWTPrivateKeyPath, cfg.JWTPublicKeyPath, cfg.TokenExpire)
	}
	return auth.NewIssuer(cfg.TokenExpire)
}
