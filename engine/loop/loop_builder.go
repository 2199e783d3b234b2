package loop

import (
	"time"

	"github.com/Carmen-Shannon/oxy-rig/engine/profiler"
	"github.com/Carmen-Shannon/oxy-rig/engine/rig"
	"github.com/Carmen-Shannon/oxy-rig/engine/window"
)

// LoopBuilderOption is a functional option for configuring a Loop.
// Use the With* functions to create options that are applied directly to the loop instance.
type LoopBuilderOption func(*loopImpl)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - LoopBuilderOption: option function to apply
func WithProfiling(enabled bool) LoopBuilderOption {
	return func(l *loopImpl) {
		l.profilingEnabled = enabled
	}
}

// WithProfiler replaces the default profiler.
//
// Parameters:
//   - p: the profiler to tick each frame
//
// Returns:
//   - LoopBuilderOption: option function to apply
func WithProfiler(p *profiler.Profiler) LoopBuilderOption {
	return func(l *loopImpl) {
		if p != nil {
			l.profiler = p
		}
	}
}

// WithFixedRate sets the physics rate in steps per second.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - hz: target physics steps per second (default 60)
//
// Returns:
//   - LoopBuilderOption: option function to apply
func WithFixedRate(hz float64) LoopBuilderOption {
	return func(l *loopImpl) {
		if hz <= 0 {
			hz = 60.0
		}
		l.fixedStep = time.Duration(float64(time.Second) / hz)
	}
}

// WithMaxSubsteps caps how many physics steps a single frame may run.
//
// Parameters:
//   - n: the cap; values < 1 are ignored
//
// Returns:
//   - LoopBuilderOption: option function to apply
func WithMaxSubsteps(n int) LoopBuilderOption {
	return func(l *loopImpl) {
		if n >= 1 {
			l.maxSubsteps = n
		}
	}
}

// WithFrameLimit sets an optional render frame rate cap in frames per second.
// Pass 0 to uncap the render loop (default).
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - LoopBuilderOption: option function to apply
func WithFrameLimit(fps float64) LoopBuilderOption {
	return func(l *loopImpl) {
		if fps <= 0 {
			l.frameLimit = 0
			return
		}
		l.frameLimit = time.Duration(float64(time.Second) / fps)
	}
}

// WithWindow sets the window whose messages Run pumps. Resizes update the viewer's aspect.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - LoopBuilderOption: option function to apply
func WithWindow(w window.Window) LoopBuilderOption {
	return func(l *loopImpl) {
		l.window = w
	}
}

// WithRig sets the rig whose update phases the loop drives.
//
// Parameters:
//   - r: the rig
//
// Returns:
//   - LoopBuilderOption: option function to apply
func WithRig(r rig.Rig) LoopBuilderOption {
	return func(l *loopImpl) {
		l.rig = r
	}
}

// WithInput sets the input source sampled at the start of every frame.
//
// Parameters:
//   - s: the sampler
//
// Returns:
//   - LoopBuilderOption: option function to apply
func WithInput(s Sampler) LoopBuilderOption {
	return func(l *loopImpl) {
		l.input = s
	}
}

// WithViewer sets the camera refreshed after the rig's late update.
//
// Parameters:
//   - v: the viewer
//
// Returns:
//   - LoopBuilderOption: option function to apply
func WithViewer(v Viewer) LoopBuilderOption {
	return func(l *loopImpl) {
		l.viewer = v
	}
}

// WithSettings sets a channel of reloaded settings. The newest pending value is applied
// to the rig at the start of each frame.
//
// Parameters:
//   - ch: the settings channel, e.g. config.Watcher.Reloads()
//
// Returns:
//   - LoopBuilderOption: option function to apply
func WithSettings(ch <-chan rig.Settings) LoopBuilderOption {
	return func(l *loopImpl) {
		l.settings = ch
	}
}

// WithPhysicsCallback registers the function called at the fixed physics rate, before
// the rig's physics update.
//
// Parameters:
//   - callback: receives the fixed step in seconds
//
// Returns:
//   - LoopBuilderOption: option function to apply
func WithPhysicsCallback(callback func(dt float32)) LoopBuilderOption {
	return func(l *loopImpl) {
		l.physicsCallback = callback
	}
}

// WithMotionCallback registers the function called between the rig's early and late
// updates, where targets move.
//
// Parameters:
//   - callback: receives the frame delta in seconds
//
// Returns:
//   - LoopBuilderOption: option function to apply
func WithMotionCallback(callback func(dt float32)) LoopBuilderOption {
	return func(l *loopImpl) {
		l.motionCallback = callback
	}
}

// WithFrameCallback registers the function called at the end of every frame, after the
// viewer update. Use this for GPU uploads and drawing.
//
// Parameters:
//   - callback: receives the frame delta in seconds
//
// Returns:
//   - LoopBuilderOption: option function to apply
func WithFrameCallback(callback func(dt float32)) LoopBuilderOption {
	return func(l *loopImpl) {
		l.frameCallback = callback
	}
}

// WithResizeCallback registers an extra handler for window resizes.
//
// Parameters:
//   - callback: receives the new client size in pixels
//
// Returns:
//   - LoopBuilderOption: option function to apply
func WithResizeCallback(callback func(width, height int)) LoopBuilderOption {
	return func(l *loopImpl) {
		l.resizeCallback = callback
	}
}
