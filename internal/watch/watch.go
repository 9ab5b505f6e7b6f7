// Package watch reloads a model when any file it was built from changes on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/meshweld/internal/logger"
	"github.com/Faultbox/meshweld/internal/mesh"
)

// ErrClosed is returned when using a closed watcher.
var ErrClosed = errors.New("watcher already closed")

// ReloadFunc rebuilds the watched artifact and returns the files it now depends on.
type ReloadFunc func() ([]string, error)

// Watcher tracks a set of files through their parent directories, so files
// that are missing or get replaced by editors are still observed.
type Watcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration
	log      *zap.Logger

	mu       sync.Mutex
	files    map[string]struct{}
	dirs     map[string]struct{}
	isClosed bool
}

// New creates a watcher that coalesces bursts of events arriving within debounce.
func New(debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	return &Watcher{
		fsw:      fsw,
		debounce: debounce,
		log:      logger.Named("watch"),
		files:    make(map[string]struct{}),
		dirs:     make(map[string]struct{}),
	}, nil
}

// Track replaces the set of watched files.
func (w *Watcher) Track(paths ...string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isClosed {
		return ErrClosed
	}

	files := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", p, err)
		}
		files[abs] = struct{}{}

		dir := filepath.Dir(abs)
		if _, ok := w.dirs[dir]; ok {
			continue
		}
		if err := w.fsw.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
		w.dirs[dir] = struct{}{}
		w.log.Debug("watching directory", zap.String("dir", dir))
	}
	w.files = files
	return nil
}

// Tracked reports whether path is currently watched.
func (w *Watcher) Tracked(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.files[abs]
	return ok
}

// Run calls reload after tracked files settle, until ctx is cancelled.
// Reload failures are logged and the watcher keeps running so a broken edit can be fixed.
func (w *Watcher) Run(ctx context.Context, reload ReloadFunc) error {
	var (
		timer   *time.Timer
		fire    <-chan time.Time
		pending []string
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case e, ok := <-w.fsw.Events:
			if !ok {
				return ErrClosed
			}
			if e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 || !w.Tracked(e.Name) {
				continue
			}
			w.log.Debug("file changed", zap.String("path", e.Name), zap.Stringer("op", e.Op))
			pending = append(pending, e.Name)

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.log.Info("reloading", zap.Strings("changed", pending))
			pending = nil

			sources, err := reload()
			if err != nil {
				w.log.Warn("reload failed", zap.Error(err))
				continue
			}
			if err := w.Track(sources...); err != nil {
				return err
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return ErrClosed
			}
			w.log.Error("file watcher error", zap.Error(err))

		case <-ctx.Done():
			return nil
		}
	}
}

// Close stops watching. Run returns ErrClosed if it is still active.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isClosed {
		return nil
	}
	w.isClosed = true
	return w.fsw.Close()
}

// Sources lists the files m was built from: the model, its material library
// and texture, and any file that was missing during the load.
func Sources(m *mesh.Mesh) []string {
	if m == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	add := func(p string) {
		if p == "" {
			return
		}
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}

	add(m.Path)
	if m.Material != nil {
		add(m.Material.Path)
		add(m.Material.TexturePath)
	}
	for _, p := range m.Missing {
		add(p)
	}
	return out
}
