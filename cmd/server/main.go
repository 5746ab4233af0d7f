package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/muandane/special-stack/memes/internal/cache"
	"github.com/muandane/special-stack/memes/internal/catalog"
	"github.com/muandane/special-stack/memes/internal/config"
	"github.com/muandane/special-stack/memes/internal/handlers"
	"github.com/muandane/special-stack/memes/internal/memes"
	"github.com/muandane/special-stack/memes/internal/router"
	"github.com/muandane/special-stack/memes/internal/storage"
	"github.com/muandane/special-stack/memes/internal/transform"
	"github.com/muandane/special-stack/memes/internal/watch"
)

const shutdownTimeout = 5 * time.Second

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	} else {
		logger.Warn().Str("level", cfg.LogLevel).Msg("Unknown log level, using info")
		logger = logger.Level(zerolog.InfoLevel)
	}
	if logger.GetLevel() > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	imagesDir, err := cfg.ImagesPath()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to resolve images directory")
	}
	publicDir, err := cfg.PublicPath()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to resolve public directory")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tr := transform.New()
	store := cache.New[*memes.Result](config.CacheMaxEntries, cfg.CacheTTL())
	images := memes.NewImageCache(store, tr, cfg.CacheTTL(), logger)
	indexer := catalog.NewIndexer(imagesDir, tr, cfg.IndexConcurrency, logger)
	svc := memes.NewService(indexer, images, config.PreloadCount, logger)

	// An unreadable directory at startup leaves the catalog empty; the
	// watcher or the next sync can still fill it.
	_ = svc.Reload(ctx)

	var background sync.WaitGroup
	spawn := func(run func(context.Context)) {
		background.Add(1)
		go func() {
			defer background.Done()
			run(ctx)
		}()
	}

	spawn(func(ctx context.Context) { store.Run(ctx, cache.CleanupInterval) })

	debouncer := watch.NewDebouncer(imagesDir, config.DebounceWindow, svc.Settled)
	if watcher, err := watch.NewWatcher(imagesDir, debouncer, logger); err != nil {
		logger.Error().Err(err).Msg("Failed to watch images directory, changes require a restart")
	} else {
		spawn(debouncer.Run)
		spawn(watcher.Run)
		logger.Info().Str("dir", imagesDir).Msg("Watching images directory for changes")
	}

	if cfg.Storage.Enabled() {
		client, err := storage.NewMinioClient(cfg.Storage)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to create storage client")
		}
		syncer := storage.NewSyncer(client, cfg.Storage, imagesDir, logger)
		spawn(func(ctx context.Context) { syncer.Run(ctx, cfg.Storage.SyncInterval) })
	}

	handler := router.NewRouter(logger).Setup(
		handlers.NewMemeHandler(svc, logger),
		handlers.NewStatsHandler(store, svc),
		publicDir,
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Int("memes", svc.Count()).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	stop()

	logger.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Failed to shutdown server")
	}
	background.Wait()
	svc.WaitPreload()

	logger.Info().Msg("Server stopped")
}
