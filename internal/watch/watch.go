// Package watch re-validates a session file whenever it changes on disk.
package watch

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/singleflight"
)

const defaultDebounce = 250 * time.Millisecond

// Recompile is the work performed after each change: load and validate the
// session file and print the current plan, or return the first diagnostic.
type Recompile func(path string) error

// Watcher follows one session file and reruns Recompile after each burst
// of changes. Overlapping triggers are coalesced into a single run.
type Watcher struct {
	Path      string
	Debounce  time.Duration
	Out       io.Writer
	Logger    *log.Logger
	Recompile Recompile

	group singleflight.Group
}

// Run blocks until the context is cancelled. The file's parent directory
// is watched rather than the file itself: editors replace files by
// rename, which would silently drop a direct watch.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	dir := filepath.Dir(w.Path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	debounce := w.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	w.rebuild()

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.Path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.log("change_detected op=%s", ev.Op)
			pending = time.After(debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log("watch_error error=%v", err)
		case <-pending:
			pending = nil
			w.rebuild()
		}
	}
}

// rebuild runs the recompile off the event loop so the loop keeps
// draining filesystem events while a slow recompile is in flight.
// Triggers arriving during that window join the in-flight run instead of
// queueing another one.
func (w *Watcher) rebuild() {
	go func() {
		_, err, shared := w.group.Do(w.Path, func() (any, error) {
			return nil, w.Recompile(w.Path)
		})
		if shared {
			w.log("rebuild_coalesced")
			return
		}
		if err != nil {
			fmt.Fprintf(w.Out, "Not ready: %v\n", err)
			w.log("rebuild_failed error=%v", err)
			return
		}
		w.log("rebuild_ok")
	}()
}

func (w *Watcher) log(format string, args ...any) {
	if w.Logger == nil {
		return
	}
	w.Logger.Printf("%s watch: %s",
		time.Now().Format(time.RFC3339), fmt.Sprintf(format, args...))
}
