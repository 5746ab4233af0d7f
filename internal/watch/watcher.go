package watch

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// WatchError reports a failure of the underlying filesystem watch. Serving
// continues from the last catalog; only automatic reloads are affected.
type WatchError struct {
	Dir string
	Err error
}

func (e *WatchError) Error() string {
	return fmt.Sprintf("watch %s: %v", e.Dir, e.Err)
}

func (e *WatchError) Unwrap() error { return e.Err }

// Watcher forwards fsnotify events for one directory to a Debouncer.
type Watcher struct {
	dir       string
	fsw       *fsnotify.Watcher
	debouncer *Debouncer
	log       zerolog.Logger
	errLog    rate.Sometimes
}

// NewWatcher starts watching dir. The directory must exist.
func NewWatcher(dir string, debouncer *Debouncer, log zerolog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, &WatchError{Dir: dir, Err: err}
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, &WatchError{Dir: dir, Err: err}
	}
	return &Watcher{
		dir:       dir,
		fsw:       fsw,
		debouncer: debouncer,
		log:       log.With().Str("component", "watcher").Str("dir", dir).Logger(),
		errLog:    rate.Sometimes{First: 3, Interval: time.Minute},
	}, nil
}

// Run pumps events until ctx is done or the watcher is closed, then releases
// the underlying watch.
func (w *Watcher) Run(ctx context.Context) {
	defer w.fsw.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op == fsnotify.Chmod {
				continue
			}
			w.log.Debug().Str("event", ev.Op.String()).Str("name", ev.Name).Msg("directory changed")
			w.debouncer.Notify()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.errLog.Do(func() {
				w.log.Error().Err(&WatchError{Dir: w.dir, Err: err}).Msg("error watching meme directory")
			})
		}
	}
}
