package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/driftapp/callrelay/internal/adapters/http"
	wssignal "github.com/driftapp/callrelay/internal/adapters/signal"
	"github.com/driftapp/callrelay/internal/app"
	"github.com/driftapp/callrelay/internal/auth"
	"github.com/driftapp/callrelay/internal/config"
	"github.com/driftapp/callrelay/internal/storage"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	store, err := storage.Open(cfg.MembershipDB)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.MembershipDB).Msg("failed to open membership store")
	}
	defer store.Close()

	var tokens *auth.TokenVerifier
	if cfg.JWTSecret != "" {
		tokens = auth.NewTokenVerifier(cfg.JWTSecret)
	} else {
		log.Warn().Msg("no jwt_secret configured; transport credentials will be rejected")
	}

	registry := app.NewRegistry(app.DropPolicy{})
	limiter := wssignal.NewJoinRateLimiter(cfg.JoinLimit, cfg.JoinWindow)
	ctrl := wssignal.NewController(registry, auth.NewGate(store), tokens, limiter, wssignal.Options{
		ReadLimit:     cfg.ReadLimit,
		PingPeriod:    cfg.PingPeriod,
		PongWait:      cfg.PongWait,
		WriteWait:     cfg.WriteWait,
		SendQueueSize: cfg.SendQueueSize,
	})

	// Keep the limiter's identity map from growing unbounded.
	if limiter != nil {
		go func() {
			ticker := time.NewTicker(cfg.JoinWindow * 6)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					limiter.Prune()
				}
			}
		}()
	}

	r := router.SetupRouter(cfg, registry, ctrl)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("call relay started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
