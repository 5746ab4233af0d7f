// Package catalog discovers image files in a directory and keeps an immutable,
// atomically replaceable list of them.
package catalog

import (
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"
)

// AnimatedFormat is served verbatim and never probed or transformed.
const AnimatedFormat = "gif"

var mimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// IsSupported reports whether name has one of the indexed image extensions.
func IsSupported(name string) bool {
	_, ok := mimeTypes[strings.ToLower(filepath.Ext(name))]
	return ok
}

// MimeTypeForExt maps a file extension (with the dot) to its mime type.
func MimeTypeForExt(ext string) string {
	if mt, ok := mimeTypes[strings.ToLower(ext)]; ok {
		return mt
	}
	return "application/octet-stream"
}

// Entry describes one discovered image file. Entries are values and never
// change after indexing.
type Entry struct {
	Path   string `json:"path"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Size   int64  `json:"size"`
	Format string `json:"format"`
	Hash   string `json:"hash"`
}

// Ext is the lowercase file extension including the dot.
func (e Entry) Ext() string {
	return strings.ToLower(filepath.Ext(e.Path))
}

func (e Entry) Filename() string {
	return filepath.Base(e.Path)
}

func (e Entry) MimeType() string {
	return MimeTypeForExt(e.Ext())
}

// IsAnimated reports whether the entry must bypass transformation.
func (e Entry) IsAnimated() bool {
	return e.Ext() == "."+AnimatedFormat
}

// Catalog is an ordered, read-only list of entries produced by one rebuild.
type Catalog struct {
	entries    []Entry
	generation uint64
	builtAt    time.Time
}

// New wraps entries in a Catalog. The slice must not be modified afterwards.
func New(entries []Entry) *Catalog {
	return &Catalog{entries: entries, builtAt: time.Now()}
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

func (c *Catalog) At(i int) Entry {
	return c.entries[i]
}

// Head returns up to n entries from the front of the catalog.
func (c *Catalog) Head(n int) []Entry {
	if c == nil || n <= 0 {
		return nil
	}
	if n > len(c.entries) {
		n = len(c.entries)
	}
	return c.entries[:n:n]
}

// Generation increases by one each time a catalog is installed in a Snapshot.
func (c *Catalog) Generation() uint64 {
	if c == nil {
		return 0
	}
	return c.generation
}

func (c *Catalog) BuiltAt() time.Time {
	if c == nil {
		return time.Time{}
	}
	return c.builtAt
}

// Snapshot is the process-wide "current catalog" slot. Readers call Load once
// per request and keep using that value; Swap never blocks them.
type Snapshot struct {
	current    atomic.Pointer[Catalog]
	generation atomic.Uint64
}

func NewSnapshot() *Snapshot {
	s := &Snapshot{}
	s.current.Store(New(nil))
	return s
}

// Load returns the installed catalog, never nil.
func (s *Snapshot) Load() *Catalog {
	return s.current.Load()
}

// Swap installs c, stamping it with the next generation, and returns the
// previous catalog.
func (s *Snapshot) Swap(c *Catalog) *Catalog {
	if c == nil {
		c = New(nil)
	}
	c.generation = s.generation.Add(1)
	return s.current.Swap(c)
}
