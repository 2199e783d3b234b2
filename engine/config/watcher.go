package config

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-rig/engine/rig"
	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a rig profile whenever its file changes on disk.
type Watcher interface {
	// Reloads delivers each successfully reloaded profile. Only the newest profile is
	// buffered; a reader that falls behind skips straight to it.
	//
	// Returns:
	//   - <-chan rig.Settings: the reload channel, closed by Close
	Reloads() <-chan rig.Settings

	// Errors delivers reload failures. The previous settings stay in effect.
	//
	// Returns:
	//   - <-chan error: the error channel, closed by Close
	Errors() <-chan error

	// Path returns the watched profile path.
	Path() string

	// Close stops watching. Safe to call more than once.
	//
	// Returns:
	//   - error: an error from the underlying file watcher
	Close() error
}

type watcherImpl struct {
	path     string
	debounce time.Duration
	loader   func(string) (rig.Settings, error)

	fs      *fsnotify.Watcher
	reloads chan rig.Settings
	errs    chan error
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

var _ Watcher = &watcherImpl{}

// NewWatcher starts watching the profile at path. The containing directory is watched so
// editors that replace the file on save are still observed.
//
// Parameters:
//   - path: the profile to watch
//   - options: functional options to configure the watcher
//
// Returns:
//   - Watcher: the running watcher
//   - error: an error if the file watcher cannot be created
func NewWatcher(path string, options ...WatcherBuilderOption) (Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to resolve %s: %w", path, err)
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: failed to create file watcher: %w", err)
	}
	if err := fs.Add(filepath.Dir(abs)); err != nil {
		_ = fs.Close()
		return nil, fmt.Errorf("config: failed to watch %s: %w", filepath.Dir(abs), err)
	}

	w := &watcherImpl{
		path:     abs,
		debounce: 100 * time.Millisecond,
		loader:   Load,
		fs:       fs,
		reloads:  make(chan rig.Settings, 1),
		errs:     make(chan error, 1),
		closeCh:  make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, option := range options {
		option(w)
	}

	go w.run()
	return w, nil
}

func (w *watcherImpl) Reloads() <-chan rig.Settings {
	return w.reloads
}

func (w *watcherImpl) Errors() <-chan error {
	return w.errs
}

func (w *watcherImpl) Path() string {
	return w.path
}

func (w *watcherImpl) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.fs.Close()
		<-w.done
		close(w.reloads)
		close(w.errs)
	})
	return err
}

func (w *watcherImpl) run() {
	defer close(w.done)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(w.debounce)
		case <-timer.C:
			w.reload()
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.sendErr(fmt.Errorf("config: watch %s: %w", w.path, err))
		case <-w.closeCh:
			return
		}
	}
}

func (w *watcherImpl) reload() {
	s, err := w.loader(w.path)
	if err != nil {
		log.Printf("[Config] reload of %s failed: %v", w.path, err)
		w.sendErr(err)
		return
	}
	log.Printf("[Config] reloaded %s (mode %s)", w.path, s.Mode)

	// Drop a stale profile nobody has read yet.
	select {
	case <-w.reloads:
	default:
	}
	w.reloads <- s
}

func (w *watcherImpl) sendErr(err error) {
	select {
	case w.errs <- err:
	default:
	}
}
