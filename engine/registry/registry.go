// Package registry holds the process-wide active camera rig so input handlers, debug tools
// and the frame loop can reach it without threading it through every call.
package registry

import (
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-rig/engine/rig"
)

type entry struct {
	rig rig.Rig
}

var active atomic.Pointer[entry]

// Set makes r the active rig, replacing any previous one. Passing nil clears the registry.
//
// Parameters:
//   - r: the rig to publish
//
// Returns:
//   - rig.Rig: the previously active rig, or nil
func Set(r rig.Rig) rig.Rig {
	var next *entry
	if r != nil {
		next = &entry{rig: r}
	}
	if prev := active.Swap(next); prev != nil {
		return prev.rig
	}
	return nil
}

// Active returns the active rig, or nil when none is registered.
func Active() rig.Rig {
	if e := active.Load(); e != nil {
		return e.rig
	}
	return nil
}

// Clear removes r if it is still the active rig. A rig that was already replaced is left
// alone, so a closing rig cannot unregister its successor.
//
// Parameters:
//   - r: the rig that is going away
//
// Returns:
//   - bool: true if r was active and has been removed
func Clear(r rig.Rig) bool {
	for {
		cur := active.Load()
		if cur == nil || cur.rig != r {
			return false
		}
		if active.CompareAndSwap(cur, nil) {
			return true
		}
	}
}
