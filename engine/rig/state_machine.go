package rig

import (
	"log"

	"github.com/Carmen-Shannon/oxy-rig/common"
	"github.com/go-gl/mathgl/mgl32"
)

func (r *rigImpl) Mode() Mode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mode
}

func (r *rigImpl) SetMode(m Mode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setMode(m)
}

// setMode assigns the mode and keeps the FOV inside its range; the reset happens at the
// start of the next late phase.
// Caller must hold the mutex.
func (r *rigImpl) setMode(m Mode) {
	if !m.Valid() {
		log.Printf("[Rig] ignoring %v", m)
		return
	}
	r.mode = m
	fr := r.settings.FovRange(m)
	r.fov = fr.Clamp(r.fov)
	r.targetFov = fr.Clamp(r.targetFov)
}

func (r *rigImpl) CycleMode() Mode {
	r.mu.Lock()
	defer r.mu.Unlock()
	ctx := r.poseContext(0)
	next := r.mode
	for range modeCount {
		next = next.Next()
		if r.calculators[next].Available(ctx) {
			r.setMode(next)
			return r.mode
		}
	}
	r.setMode(ModeChase)
	return r.mode
}

func (r *rigImpl) ModeAvailable(m Mode) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !m.Valid() {
		return false
	}
	return r.calculators[m].Available(r.poseContext(0))
}

// resetRig re-anchors the render node for the active mode and clears per-mode smoothing.
// Caller must hold the mutex.
func (r *rigImpl) resetRig() {
	ctx := r.poseContext(0)
	calc := r.calculators[r.mode]

	anchor := calc.Anchor(ctx)
	if anchor == nil {
		anchor = r.pivot
	}
	r.render.SetParent(anchor)
	r.render.ResetLocal()
	r.pivot.ResetLocal()

	fr := r.settings.FovRange(r.mode)
	r.targetFov = fr.Default
	r.fov = fr.Clamp(r.fov)
	r.orthoSize = r.settings.Top.OrthoMin
	r.tilt = 0
	r.recoil.Clear()
	r.occluded = false

	if r.mode == ModeChase {
		start := r.settings.Chase.StartOrbit
		r.orbit.Reset(start.X(), start.Y())
	}
	if r.target != nil {
		calc.Enter(ctx)
	}
}

// transition runs the reset for a pending mode change.
// Caller must hold the mutex.
func (r *rigImpl) transition() (changed bool, from, to Mode) {
	from, to = r.previousMode, r.mode
	if from != to {
		r.calculators[from].Exit(r.poseContext(0))
		r.resetRig()
		log.Printf("[Rig] mode %s -> %s", from, to)
		changed = true
	}
	r.previousMode = r.mode
	return changed, from, to
}

// poseContext gathers the per-frame calculator input.
// Caller must hold the mutex.
func (r *rigImpl) poseContext(dt float32) *PoseContext {
	ctx := &PoseContext{
		Target:    r.target,
		Dt:        dt,
		Settings:  &r.settings,
		Orbit:     r.orbit,
		Occlusion: r.occlusion,
		Occluded:  r.occluded,
		LookBack:  r.lookBack,
		Accel:     r.accel,
		Tilt:      r.tilt,
		Distance:  r.distance,
		Height:    r.height,
		Anchor:    r.anchor,
		Pivot:     r.pivot,
		Render:    r.render,
		Fixed:     r.fixed,
		Cinematic: r.cinematic,
	}
	if r.target != nil {
		ctx.TargetPose = r.target.Node().WorldPose()
		ctx.Follow = r.followPoint(ctx.TargetPose)
		ctx.Speed = forwardSpeed(r.target)
	}
	return ctx
}

// followPoint is the point on the target the camera keeps in view.
func (r *rigImpl) followPoint(target common.Pose) mgl32.Vec3 {
	return target.Position.Add(common.Up.Mul(r.settings.Chase.LookHeight))
}
