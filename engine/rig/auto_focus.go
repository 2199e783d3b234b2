package rig

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-rig/common"
)

const (
	// FocusDistanceFactor scales the focus extent into the chase distance.
	FocusDistanceFactor float32 = 2.9
	// FocusHeightFactor scales the focus extent into the chase height.
	FocusHeightFactor float32 = 0.65
)

// ErrFocusTargets is returned when auto-focus is asked for an unsupported number of targets.
var ErrFocusTargets = errors.New("auto-focus takes 1 to 3 targets")

// ErrFocusDisabled is returned when auto-focus is turned off in the settings.
var ErrFocusDisabled = errors.New("auto-focus disabled")

// TaskStatus is the result of resuming a per-frame task.
type TaskStatus int

const (
	TaskContinue TaskStatus = iota
	TaskDone
)

var focusDurations = map[int]float32{
	1: 2,
	2: 2.5,
	3: 3,
}

// FocusExtent sums, over every target, the largest bounding half extent among its renderers.
// Particle and trail renderers are skipped.
//
// Parameters:
//   - targets: the objects to frame
//
// Returns:
//   - float32: the combined extent
func FocusExtent(targets ...Bounded) float32 {
	var total float32
	for _, t := range targets {
		if t == nil {
			continue
		}
		var largest float32
		for _, r := range t.Renderers() {
			if r.Kind.Effect() {
				continue
			}
			if e := r.Bounds.MaxExtent(); e > largest {
				largest = e
			}
		}
		total += largest
	}
	return total
}

// AutoFocusTask eases the chase distance and height toward values derived from an extent
// over a fixed duration, then snaps to them exactly. It is resumed once per late frame.
type AutoFocusTask struct {
	distance float32
	height   float32
	duration float32
	elapsed  float32
	speed    float32

	valid     func() bool
	cancelled bool
	done      bool
}

// NewAutoFocusTask creates a task for the given number of targets.
//
// Parameters:
//   - extent: combined extent from FocusExtent
//   - targets: how many targets contributed to the extent (1 to 3)
//   - speed: maximum change in distance or height per second
//   - valid: re-checked on every resume; returning false cancels the task without applying
//
// Returns:
//   - *AutoFocusTask: the newly created task
//   - error: ErrFocusTargets if targets is outside 1..3
func NewAutoFocusTask(extent float32, targets int, speed float32, valid func() bool) (*AutoFocusTask, error) {
	d, ok := focusDurations[targets]
	if !ok {
		return nil, fmt.Errorf("rig: %w, got %d", ErrFocusTargets, targets)
	}
	return &AutoFocusTask{
		distance: extent * FocusDistanceFactor,
		height:   extent * FocusHeightFactor,
		duration: d,
		speed:    speed,
		valid:    valid,
	}, nil
}

// Targets returns the distance and height the task converges on.
func (a *AutoFocusTask) Targets() (distance, height float32) {
	return a.distance, a.height
}

// Duration returns the task length in seconds.
func (a *AutoFocusTask) Duration() float32 {
	return a.duration
}

// Cancelled reports whether the task ended because the rig became invalid.
func (a *AutoFocusTask) Cancelled() bool {
	return a.cancelled
}

// Resume advances the task by one frame.
//
// Parameters:
//   - dt: frame time in seconds
//   - distance: the current chase distance
//   - height: the current chase height
//
// Returns:
//   - float32: the new distance
//   - float32: the new height
//   - TaskStatus: TaskDone once elapsed or cancelled
func (a *AutoFocusTask) Resume(dt, distance, height float32) (float32, float32, TaskStatus) {
	if a.done {
		return distance, height, TaskDone
	}
	if a.valid != nil && !a.valid() {
		a.cancelled = true
		a.done = true
		return distance, height, TaskDone
	}

	a.elapsed += dt
	if a.elapsed >= a.duration {
		a.done = true
		return a.distance, a.height, TaskDone
	}

	step := a.speed * dt
	return common.MoveTowards(distance, a.distance, step), common.MoveTowards(height, a.height, step), TaskContinue
}
