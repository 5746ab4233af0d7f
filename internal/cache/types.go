package cache

import "time"

// Store configuration
const (
	DefaultMaxEntries = 100
	DefaultTTL        = time.Hour
	CleanupInterval   = 1 * time.Minute
)

// Stats is a point-in-time view of a Store
type Stats struct {
	EntryCount      int       `json:"entry_count"`
	MaxEntries      int       `json:"max_entries"`
	Hits            uint64    `json:"hits"`
	Misses          uint64    `json:"misses"`
	Evictions       uint64    `json:"evictions"`
	Expirations     uint64    `json:"expirations"`
	HitRatio        float64   `json:"cache_hit_ratio"`
	LastCleanupTime time.Time `json:"last_cleanup_time"`
}
