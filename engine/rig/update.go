package rig

import (
	"log"

	"github.com/Carmen-Shannon/oxy-rig/common"
	"github.com/go-gl/mathgl/mgl32"
)

func (r *rigImpl) EarlyUpdate(dt float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.enabled || r.target == nil || dt <= 0 {
		return
	}

	if r.input != nil && (!r.settings.Orbit.HoldToOrbit || r.orbitHeld) {
		d := r.input.OrbitDelta()
		r.orbit.Accumulate(d.X(), d.Y())
	}
	r.orbitValid = r.orbit.Update(dt, forwardSpeed(r.target))

	accel := common.DampVec3(r.accel, r.accelRaw, r.settings.Chase.AccelRate, dt)
	if common.Vec3Finite(accel) {
		r.accel = accel
	}

	fr := r.settings.FovRange(r.mode)
	fov := fr.Clamp(common.Damp(r.fov, r.targetFov, r.settings.FovRate, dt))
	if common.IsFinite(fov) {
		r.fov = fov
	}
}

func (r *rigImpl) PhysicsUpdate(dt float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.enabled || r.target == nil || dt <= 0 {
		return
	}

	vel := r.target.Velocity()
	if r.hasVelocity {
		raw := vel.Sub(r.lastVelocity).Mul(1 / dt)
		if common.Vec3Finite(raw) {
			r.accelRaw = raw
		}
	}
	r.lastVelocity = vel
	r.hasVelocity = true

	s := &r.settings.Chase
	if s.TiltEnabled {
		lateral := r.target.LocalVelocity().X()
		want := mgl32.DegToRad(common.Clamp(-lateral*s.TiltSensitivity, -s.MaxTilt, s.MaxTilt))
		tilt := common.Damp(r.tilt, want, s.TiltRate, dt)
		if common.IsFinite(tilt) {
			r.tilt = tilt
		}
	} else {
		r.tilt = 0
	}

	follow := r.followPoint(r.target.Node().WorldPose())
	r.occluded = r.occlusion.TestOcclusion(r.target, follow, r.render.WorldPosition())
}

// LateUpdate resets the rig for a pending mode change before computing the pose, so a
// new mode's first pose is always computed from its reset state. A fallback raised by the
// pose computation is reset before returning.
func (r *rigImpl) LateUpdate(dt float32) {
	r.mu.Lock()
	var changes [][2]Mode
	if changed, from, to := r.transition(); changed {
		changes = append(changes, [2]Mode{from, to})
	}
	r.resumeFocus(dt)
	if r.enabled && r.target != nil {
		r.recoil.Update(dt)
		off, offRot := r.recoil.Offset()
		r.pivot.SetLocalPosition(off)
		r.pivot.SetLocalRotation(offRot)
		r.computePose(dt)
	}
	if changed, from, to := r.transition(); changed {
		changes = append(changes, [2]Mode{from, to})
	}
	var observers []ModeObserver
	if len(changes) > 0 {
		observers = r.observerList()
	}
	r.mu.Unlock()

	for _, c := range changes {
		notify(observers, c[0], c[1])
	}
}

// computePose runs the active mode's calculator and applies its result.
// Caller must hold the mutex.
func (r *rigImpl) computePose(dt float32) {
	if !r.orbitValid {
		log.Printf("[Rig] non-finite orbit smoothing, keeping last pose")
		return
	}
	ctx := r.poseContext(dt)
	res, ok := r.calculators[r.mode].ComputePose(ctx)
	if !ok {
		return
	}
	if res.Fallback {
		log.Printf("[Rig] %s unavailable, falling back to %s", r.mode, ModeChase)
		r.setMode(ModeChase)
		return
	}
	if !res.Finite() {
		log.Printf("[Rig] non-finite %s pose, keeping last pose", r.mode)
		return
	}

	if res.Node != nil {
		if res.Local {
			res.Node.SetLocalPosition(res.Pose.Position)
			res.Node.SetLocalRotation(res.Pose.Rotation)
		} else {
			res.Node.SetWorldPose(res.Pose)
		}
	}
	if res.Repositioned {
		r.occluded = false
	}
	r.targetFov = r.settings.FovRange(r.mode).Clamp(res.Fov)
	if res.OrthoSize > 0 {
		r.orthoSize = res.OrthoSize
	}
}

// resumeFocus advances the auto-focus task by one frame.
// Caller must hold the mutex.
func (r *rigImpl) resumeFocus(dt float32) {
	if r.focus == nil {
		return
	}
	d, h, status := r.focus.Resume(dt, r.distance, r.height)
	if status == TaskDone {
		if r.focus.Cancelled() {
			log.Printf("[Rig] auto-focus cancelled")
		} else {
			log.Printf("[Rig] auto-focus finished: distance %.2f height %.2f", d, h)
		}
		r.focus = nil
	}
	r.distance, r.height = d, h
}
