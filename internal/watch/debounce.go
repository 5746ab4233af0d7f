// Package watch turns raw directory change notifications into rate-limited
// rebuild callbacks.
package watch

import (
	"context"
	"sync"
	"time"
)

// DefaultQuietPeriod is the minimum spacing between two callbacks.
const DefaultQuietPeriod = 5 * time.Second

// Debouncer fires onSettled for the first notification after a quiet period
// and drops every notification that arrives before the period has elapsed
// again. Callbacks run one at a time on the Run goroutine, so a slow
// callback delays, but never overlaps, the next one.
type Debouncer struct {
	dir       string
	quiet     time.Duration
	onSettled func(dir string)
	now       func() time.Time

	events chan struct{}

	mu       sync.Mutex
	last     time.Time
	hasFired bool
}

func NewDebouncer(dir string, quiet time.Duration, onSettled func(dir string)) *Debouncer {
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	return &Debouncer{
		dir:       dir,
		quiet:     quiet,
		onSettled: onSettled,
		now:       time.Now,
		events:    make(chan struct{}, 1),
	}
}

// Notify records a change. It never blocks; a pending notification already
// covers this one.
func (d *Debouncer) Notify() {
	select {
	case d.events <- struct{}{}:
	default:
	}
}

// Run delivers callbacks until ctx is done.
func (d *Debouncer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-d.events:
			if d.admit(d.now()) {
				d.onSettled(d.dir)
			}
		}
	}
}

// admit reports whether a notification at t opens a new window, and if so
// starts it.
func (d *Debouncer) admit(t time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.hasFired && t.Sub(d.last) <= d.quiet {
		return false
	}
	d.last = t
	d.hasFired = true
	return true
}
