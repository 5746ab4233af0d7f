package memes

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/muandane/special-stack/memes/internal/cache"
	"github.com/muandane/special-stack/memes/internal/catalog"
	"github.com/muandane/special-stack/memes/internal/transform"
)

// Result is a processed image as stored in the cache. It is shared between
// requests and must not be modified.
type Result struct {
	Data     []byte
	MimeType string
	Filename string
	Size     int
}

// Transformer produces the bytes served for a resize request.
type Transformer interface {
	Transform(data []byte, opts transform.Options) (transform.Output, error)
}

// ProcessingError wraps a read or transform failure while serving an entry.
// Nothing is cached when it is returned.
type ProcessingError struct {
	Path string
	Err  error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("process %s: %v", e.Path, e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }

// ImageCache returns processed images keyed by content hash and resize bounds,
// computing and storing them on a miss. Concurrent misses for the same key
// share one computation.
type ImageCache struct {
	store       *cache.Store[*Result]
	transformer Transformer
	ttl         time.Duration
	readFile    func(string) ([]byte, error)
	flights     singleflight.Group
	log         zerolog.Logger
}

func NewImageCache(store *cache.Store[*Result], transformer Transformer, ttl time.Duration, log zerolog.Logger) *ImageCache {
	return &ImageCache{
		store:       store,
		transformer: transformer,
		ttl:         ttl,
		readFile:    os.ReadFile,
		log:         log.With().Str("component", "image_cache").Logger(),
	}
}

// Cached reports whether a result for entry and opts is already stored.
func (c *ImageCache) Cached(entry catalog.Entry, opts transform.Options) bool {
	return c.store.Has(DeriveKey(entry.Hash, opts))
}

// Get returns the stored result for entry and opts, or builds it. A hit is
// returned as stored, even if the file changed on disk since indexing.
func (c *ImageCache) Get(entry catalog.Entry, opts transform.Options) (*Result, error) {
	opts = normalize(opts)
	key := DeriveKey(entry.Hash, opts)

	if r, ok := c.store.Get(key); ok {
		cacheHitCounter.Inc()
		return r, nil
	}
	cacheMissCounter.Inc()

	v, err, _ := c.flights.Do(key, func() (any, error) {
		// another flight may have stored it since our lookup
		if r, ok := c.store.Peek(key); ok {
			return r, nil
		}
		r, err := c.process(entry, opts)
		if err != nil {
			return nil, err
		}
		c.store.Set(key, r, c.ttl)
		return r, nil
	})
	if err != nil {
		processingErrorCounter.Inc()
		return nil, err
	}
	return v.(*Result), nil
}

func (c *ImageCache) process(entry catalog.Entry, opts transform.Options) (*Result, error) {
	data, err := c.readFile(entry.Path)
	if err != nil {
		return nil, &ProcessingError{Path: entry.Path, Err: err}
	}

	mimeType := entry.MimeType()
	filename := entry.Filename()

	// animation would be lost by a decode/encode round trip
	if entry.IsAnimated() {
		return &Result{Data: data, MimeType: mimeType, Filename: filename, Size: len(data)}, nil
	}

	start := time.Now()
	out, err := c.transformer.Transform(data, opts)
	transformDuration.UpdateDuration(start)
	transformCounter.Inc()
	if err != nil {
		return nil, &ProcessingError{Path: entry.Path, Err: err}
	}

	ext := "." + out.Format
	if mt := catalog.MimeTypeForExt(ext); out.Format != "" && catalog.IsSupported(ext) && mt != mimeType {
		mimeType = mt
		filename = strings.TrimSuffix(filename, filepath.Ext(filename)) + ext
	}

	c.log.Debug().
		Str("file", filename).
		Int("width", opts.Width).
		Int("height", opts.Height).
		Int("size", len(out.Data)).
		Dur("duration", time.Since(start)).
		Msg("processed meme")

	return &Result{Data: out.Data, MimeType: mimeType, Filename: filename, Size: len(out.Data)}, nil
}
