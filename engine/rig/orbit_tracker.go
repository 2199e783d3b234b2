package rig

import (
	"github.com/Carmen-Shannon/oxy-rig/common"
)

// OrbitTracker accumulates orbit input into raw angles, smooths them, and returns them to
// zero after a period without input while the target is moving fast enough.
// Angles are in degrees: X is horizontal and unbounded, Y is vertical and clamped.
type OrbitTracker struct {
	settings OrbitSettings

	rawX, rawY       float32
	smoothX, smoothY float32
	prevX, prevY     float32
	idle             float32
}

// NewOrbitTracker creates a tracker at rest with a full idle countdown.
//
// Parameters:
//   - s: orbit limits, rates and idle-reset configuration
//
// Returns:
//   - *OrbitTracker: the newly created tracker
func NewOrbitTracker(s OrbitSettings) *OrbitTracker {
	o := &OrbitTracker{settings: s, idle: s.IdleReset}
	o.rawY = o.clampY(0)
	o.smoothY = o.rawY
	o.prevY = o.rawY
	return o
}

// SetSettings replaces the configuration and re-clamps the vertical angles.
func (o *OrbitTracker) SetSettings(s OrbitSettings) {
	o.settings = s
	o.rawY = o.clampY(o.rawY)
	o.smoothY = o.clampY(o.smoothY)
}

// Accumulate adds a per-frame input delta scaled by the input sensitivity.
func (o *OrbitTracker) Accumulate(dx, dy float32) {
	o.add(dx*o.settings.Sensitivity, dy*o.settings.Sensitivity)
}

// AddDrag adds a UI drag delta scaled by the drag sensitivity.
func (o *OrbitTracker) AddDrag(dx, dy float32) {
	o.add(dx*o.settings.DragSensitivity, dy*o.settings.DragSensitivity)
}

func (o *OrbitTracker) add(dx, dy float32) {
	if !common.IsFinite(dx) || !common.IsFinite(dy) {
		return
	}
	o.rawX += dx
	o.rawY = o.clampY(o.rawY + dy)
}

// Update advances the idle countdown and the smoothing by one frame.
//
// Parameters:
//   - dt: frame time in seconds
//   - speed: absolute forward speed of the target
//
// Returns:
//   - bool: false if smoothing produced a non-finite value; the previous smoothed angles are kept
func (o *OrbitTracker) Update(dt, speed float32) bool {
	if o.rawX != o.prevX || o.rawY != o.prevY {
		o.idle = o.settings.IdleReset
	}

	if o.idle > 0 {
		o.idle -= dt
	}
	if o.idle <= 0 {
		o.idle = 0
		if speed >= o.settings.SpeedThreshold {
			o.rawX = 0
			o.rawY = o.clampY(0)
		}
	}
	o.prevX, o.prevY = o.rawX, o.rawY

	sx := common.Damp(o.smoothX, o.rawX, o.settings.SmoothRate, dt)
	sy := o.clampY(common.Damp(o.smoothY, o.rawY, o.settings.SmoothRate, dt))
	if !common.IsFinite(sx) || !common.IsFinite(sy) {
		return false
	}
	o.smoothX, o.smoothY = sx, sy
	return true
}

// Reset places both raw and smoothed angles at (x, y) and restarts the idle countdown.
func (o *OrbitTracker) Reset(x, y float32) {
	o.rawX, o.rawY = x, o.clampY(y)
	o.smoothX, o.smoothY = o.rawX, o.rawY
	o.prevX, o.prevY = o.rawX, o.rawY
	o.idle = o.settings.IdleReset
}

// Angles returns the smoothed orbit angles in degrees.
func (o *OrbitTracker) Angles() (x, y float32) {
	return o.smoothX, o.smoothY
}

// Raw returns the unsmoothed orbit angles in degrees.
func (o *OrbitTracker) Raw() (x, y float32) {
	return o.rawX, o.rawY
}

// IdleRemaining returns the seconds left before the idle reset may fire.
func (o *OrbitTracker) IdleRemaining() float32 {
	return o.idle
}

func (o *OrbitTracker) clampY(y float32) float32 {
	return common.Clamp(y, o.settings.MinY, o.settings.MaxY)
}
