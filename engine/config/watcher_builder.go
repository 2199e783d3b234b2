package config

import (
	"time"

	"github.com/Carmen-Shannon/oxy-rig/engine/rig"
)

// WatcherBuilderOption is a functional option for configuring a Watcher.
type WatcherBuilderOption func(*watcherImpl)

// WithDebounce sets how long the file must stay quiet before it is reloaded.
//
// Parameters:
//   - d: the quiet period; non-positive values keep the 100ms default
//
// Returns:
//   - WatcherBuilderOption: a function that sets the debounce interval
func WithDebounce(d time.Duration) WatcherBuilderOption {
	return func(w *watcherImpl) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLoader replaces the function used to read the profile on change.
//
// Parameters:
//   - loader: reads and validates the profile at the given path
//
// Returns:
//   - WatcherBuilderOption: a function that sets the loader
func WithLoader(loader func(path string) (rig.Settings, error)) WatcherBuilderOption {
	return func(w *watcherImpl) {
		if loader != nil {
			w.loader = loader
		}
	}
}
