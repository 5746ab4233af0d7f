package memes

import "github.com/VictoriaMetrics/metrics"

var (
	cacheHitCounter        = metrics.NewCounter("memes_cache_hits_total")
	cacheMissCounter       = metrics.NewCounter("memes_cache_misses_total")
	transformCounter       = metrics.NewCounter("memes_transforms_total")
	processingErrorCounter = metrics.NewCounter("memes_processing_errors_total")
	transformDuration      = metrics.NewHistogram("memes_transform_duration_seconds")

	rebuildCounter      = metrics.NewCounter("memes_catalog_rebuilds_total")
	rebuildErrorCounter = metrics.NewCounter("memes_catalog_rebuild_errors_total")
	rebuildDuration     = metrics.NewHistogram("memes_catalog_rebuild_duration_seconds")
	catalogSizeGauge    = metrics.NewGauge("memes_catalog_size", nil)

	preloadCounter      = metrics.NewCounter("memes_preloaded_total")
	preloadErrorCounter = metrics.NewCounter("memes_preload_errors_total")
)
