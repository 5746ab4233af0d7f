// Package memes serves random images from an indexed directory through a
// cache of processed (optionally resized) outputs.
package memes

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/muandane/special-stack/memes/internal/catalog"
	"github.com/muandane/special-stack/memes/internal/transform"
)

// Rebuilder produces a fresh catalog of the image directory.
type Rebuilder interface {
	Rebuild(ctx context.Context) (*catalog.Catalog, error)
	Dir() string
}

// Service owns the current catalog. Rebuilds are serialized and swap the
// catalog in a single step; requests never wait for them.
type Service struct {
	indexer   Rebuilder
	snapshot  *catalog.Snapshot
	selector  *catalog.Selector
	images    *ImageCache
	preloader *Preloader

	rebuildMu sync.Mutex
	preloads  sync.WaitGroup
	log       zerolog.Logger
}

func NewService(indexer Rebuilder, images *ImageCache, preloadCount int, log zerolog.Logger) *Service {
	return &Service{
		indexer:   indexer,
		snapshot:  catalog.NewSnapshot(),
		selector:  catalog.NewSelector(),
		images:    images,
		preloader: NewPreloader(images, preloadCount, log),
		log:       log.With().Str("component", "memes").Logger(),
	}
}

// Reload rebuilds the catalog and installs it, then preloads in the
// background. On failure the previous catalog stays installed and the
// *catalog.IndexError is returned.
func (s *Service) Reload(ctx context.Context) error {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()

	start := time.Now()
	c, err := s.indexer.Rebuild(ctx)
	rebuildDuration.UpdateDuration(start)
	if err != nil {
		rebuildErrorCounter.Inc()
		s.log.Error().Err(err).Msg("failed to load meme files")
		return err
	}

	s.snapshot.Swap(c)
	rebuildCounter.Inc()
	catalogSizeGauge.Set(float64(c.Len()))
	s.log.Info().
		Int("count", c.Len()).
		Uint64("generation", c.Generation()).
		Dur("duration", time.Since(start)).
		Msg("loaded meme files")

	s.preloads.Add(1)
	go func() {
		defer s.preloads.Done()
		s.preloader.Preload(c)
	}()
	return nil
}

// Settled is the debouncer callback for directory changes.
func (s *Service) Settled(dir string) {
	if err := s.Reload(context.Background()); err == nil {
		s.log.Info().Str("dir", dir).Int("count", s.Count()).Msg("reloaded meme files due to directory changes")
	}
}

// Catalog returns the installed catalog. Callers keep the value for the
// whole request.
func (s *Service) Catalog() *catalog.Catalog {
	return s.snapshot.Load()
}

// Random picks an entry from the installed catalog, or returns catalog.ErrEmpty.
func (s *Service) Random() (catalog.Entry, error) {
	return s.selector.Pick(s.snapshot.Load())
}

// Processed returns the processed bytes for entry.
func (s *Service) Processed(entry catalog.Entry, opts transform.Options) (*Result, error) {
	return s.images.Get(entry, opts)
}

func (s *Service) Count() int {
	return s.snapshot.Load().Len()
}

func (s *Service) Dir() string {
	return s.indexer.Dir()
}

// WaitPreload blocks until every background preload started so far finishes.
func (s *Service) WaitPreload() {
	s.preloads.Wait()
}
