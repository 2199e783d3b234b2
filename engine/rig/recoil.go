package rig

import (
	"github.com/Carmen-Shannon/oxy-rig/common"
	"github.com/go-gl/mathgl/mgl32"
)

// RecoilBuffer holds a collision displacement that decays back to neutral while a second
// stage eases the applied offset toward it.
type RecoilBuffer struct {
	decayRate  float32
	followRate float32

	position mgl32.Vec3
	rotation mgl32.Quat

	offset         mgl32.Vec3
	offsetRotation mgl32.Quat
}

// NewRecoilBuffer creates a neutral buffer.
//
// Parameters:
//   - decayRate: per-second rate at which the displacement returns to neutral
//   - followRate: per-second rate at which the applied offset follows the displacement
//
// Returns:
//   - *RecoilBuffer: the newly created buffer
func NewRecoilBuffer(decayRate, followRate float32) *RecoilBuffer {
	return &RecoilBuffer{
		decayRate:      decayRate,
		followRate:     followRate,
		rotation:       mgl32.QuatIdent(),
		offsetRotation: mgl32.QuatIdent(),
	}
}

// SetRates replaces both smoothing rates.
func (r *RecoilBuffer) SetRates(decayRate, followRate float32) {
	r.decayRate = decayRate
	r.followRate = followRate
}

// Kick replaces the displacement with a new impulse.
func (r *RecoilBuffer) Kick(pos mgl32.Vec3, rot mgl32.Quat) {
	if !common.Vec3Finite(pos) || !common.QuatFinite(rot) {
		return
	}
	r.position = pos
	r.rotation = rot.Normalize()
}

// Update decays the displacement and eases the offset toward it.
func (r *RecoilBuffer) Update(dt float32) {
	r.position = common.DampVec3(r.position, mgl32.Vec3{}, r.decayRate, dt)
	r.rotation = common.Slerp(r.rotation, mgl32.QuatIdent(), common.DampFactor(r.decayRate, dt))

	r.offset = common.DampVec3(r.offset, r.position, r.followRate, dt)
	r.offsetRotation = common.Slerp(r.offsetRotation, r.rotation, common.DampFactor(r.followRate, dt))
}

// Offset returns the smoothed offset applied to the pivot.
func (r *RecoilBuffer) Offset() (mgl32.Vec3, mgl32.Quat) {
	return r.offset, r.offsetRotation
}

// Displacement returns the raw decaying displacement.
func (r *RecoilBuffer) Displacement() (mgl32.Vec3, mgl32.Quat) {
	return r.position, r.rotation
}

// Clear drops any displacement and offset immediately.
func (r *RecoilBuffer) Clear() {
	r.position = mgl32.Vec3{}
	r.rotation = mgl32.QuatIdent()
	r.offset = mgl32.Vec3{}
	r.offsetRotation = mgl32.QuatIdent()
}
