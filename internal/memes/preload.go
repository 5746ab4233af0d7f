package memes

import (
	"github.com/rs/zerolog"

	"github.com/muandane/special-stack/memes/internal/catalog"
	"github.com/muandane/special-stack/memes/internal/transform"
)

// Preloader warms the unresized variant of the first entries of a catalog.
type Preloader struct {
	images *ImageCache
	count  int
	log    zerolog.Logger
}

func NewPreloader(images *ImageCache, count int, log zerolog.Logger) *Preloader {
	return &Preloader{
		images: images,
		count:  count,
		log:    log.With().Str("component", "preloader").Logger(),
	}
}

// Preload processes up to count entries in catalog order, skipping ones
// already stored. Failures are logged and do not stop the rest. It returns
// the number of entries newly stored.
func (p *Preloader) Preload(c *catalog.Catalog) int {
	head := c.Head(p.count)
	if len(head) == 0 {
		return 0
	}

	warmed := 0
	for _, entry := range head {
		if p.images.Cached(entry, transform.Options{}) {
			continue
		}
		if _, err := p.images.Get(entry, transform.Options{}); err != nil {
			preloadErrorCounter.Inc()
			p.log.Warn().Err(err).Str("file", entry.Filename()).Msg("meme preloading failed")
			continue
		}
		warmed++
	}
	preloadCounter.Add(warmed)

	p.log.Info().Int("candidates", len(head)).Int("warmed", warmed).Msg("preloaded memes into cache")
	return warmed
}
