package catalog

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Prober reads image dimensions and format without decoding pixel data.
// The signature mirrors image.DecodeConfig.
type Prober interface {
	Probe(data []byte) (image.Config, string, error)
}

// Indexer scans a single directory and builds catalogs from its image files.
type Indexer struct {
	dir         string
	prober      Prober
	concurrency int
	log         zerolog.Logger
}

func NewIndexer(dir string, prober Prober, concurrency int, log zerolog.Logger) *Indexer {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Indexer{
		dir:         dir,
		prober:      prober,
		concurrency: concurrency,
		log:         log.With().Str("component", "indexer").Str("dir", dir).Logger(),
	}
}

func (ix *Indexer) Dir() string {
	return ix.dir
}

// Rebuild creates the directory if needed and indexes every supported file in
// it. Per-file failures drop or degrade that file only; the returned error is
// always an *IndexError.
func (ix *Indexer) Rebuild(ctx context.Context) (*Catalog, error) {
	if err := os.MkdirAll(ix.dir, 0o755); err != nil {
		return nil, &IndexError{Dir: ix.dir, Err: err}
	}
	dirEntries, err := os.ReadDir(ix.dir)
	if err != nil {
		return nil, &IndexError{Dir: ix.dir, Err: err}
	}

	var names []string
	for _, de := range dirEntries {
		if de.IsDir() || !IsSupported(de.Name()) {
			continue
		}
		names = append(names, de.Name())
	}

	results := make([]*Entry, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.concurrency)
	for i, name := range names {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			entry, err := ix.indexFile(filepath.Join(ix.dir, name))
			if err != nil {
				ix.log.Warn().Err(err).Str("file", name).Msg("skipping invalid file")
				return nil
			}
			results[i] = entry
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, &IndexError{Dir: ix.dir, Err: err}
	}

	entries := make([]Entry, 0, len(results))
	for _, e := range results {
		if e != nil {
			entries = append(entries, *e)
		}
	}
	return New(entries), nil
}

func (ix *Indexer) indexFile(path string) (*Entry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &FileSkipError{Path: path, Err: err}
	}
	if !info.Mode().IsRegular() {
		return nil, &FileSkipError{Path: path, Err: errors.New("not a regular file")}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileSkipError{Path: path, Err: err}
	}

	ext := strings.ToLower(filepath.Ext(path))
	entry := &Entry{
		Path:   path,
		Size:   info.Size(),
		Format: strings.TrimPrefix(ext, "."),
		Hash:   ContentHash(data),
	}

	if entry.IsAnimated() {
		return entry, nil
	}

	cfg, format, err := ix.prober.Probe(data)
	if err != nil {
		ix.log.Warn().Err(&MetadataError{Path: path, Err: err}).Msg("could not get metadata")
		return entry, nil
	}
	entry.Width = cfg.Width
	entry.Height = cfg.Height
	if format != "" {
		entry.Format = format
	}
	return entry, nil
}
