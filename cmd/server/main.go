package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/AkanshuAich/video-based-social-app/internal/adapters/http"
	"github.com/AkanshuAich/video-based-social-app/internal/adapters/presence"
	"github.com/AkanshuAich/video-based-social-app/internal/config"
	"github.com/AkanshuAich/video-based-social-app/internal/registry"
	"github.com/AkanshuAich/video-based-social-app/internal/seed"
	"github.com/AkanshuAich/video-based-social-app/internal/storage"
	"github.com/AkanshuAich/video-based-social-app/internal/storage/memory"
	"github.com/AkanshuAich/video-based-social-app/internal/storage/postgres"
	"github.com/AkanshuAich/video-based-social-app/internal/storage/redisstore"
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
	if cfg.Mode == "debug" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.Store).Msg("failed to open store")
	}

	reg := registry.New(store)
	if cfg.SeedDemo && cfg.Store == "memory" {
		if err := seed.Demo(ctx, reg); err != nil {
			log.Error().Err(err).Msg("demo seed failed")
		}
	}

	ctl := presence.NewController(reg, cfg.PingPeriod, cfg.ReadLimit)

	r := router.SetupRouter(ctx, cfg, reg, ctl)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Str("store", cfg.Store).Msg("room server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	ctl.Shutdown()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}

func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.Store {
	case "", "memory":
		return memory.NewStore(), nil
	case "postgres":
		return postgres.Open(cfg.DatabaseURL)
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, err
		}
		return redisstore.NewStore(rdb, cfg.RoomTTL), nil
	}
	return nil, fmt.Errorf("unknown store %q", cfg.Store)
}
