package rig

import (
	"math"

	"github.com/Carmen-Shannon/oxy-rig/common"
	"github.com/Carmen-Shannon/oxy-rig/engine/node"
	"github.com/go-gl/mathgl/mgl32"
)

type chaseCalculator struct {
	euler       mgl32.Vec3 // pitch, yaw, roll in radians (ChaseEuler)
	rotation    mgl32.Quat // ChaseLookAt
	initialized bool
}

var _ PoseCalculator = &chaseCalculator{}

func (c *chaseCalculator) Available(ctx *PoseContext) bool {
	return true
}

func (c *chaseCalculator) Anchor(ctx *PoseContext) *node.Node {
	return ctx.Pivot
}

func (c *chaseCalculator) Enter(ctx *PoseContext) {
	c.snap(ctx)
}

func (c *chaseCalculator) Exit(ctx *PoseContext) {}

func (c *chaseCalculator) ComputePose(ctx *PoseContext) (PoseResult, bool) {
	if ctx.Target == nil {
		return PoseResult{}, false
	}
	s := &ctx.Settings.Chase
	if !c.initialized {
		c.snap(ctx)
	}

	var base mgl32.Quat
	if s.Variant == ChaseEuler {
		base = c.stepEuler(ctx)
	} else {
		base = c.stepLookAt(ctx)
	}

	view := base
	if s.OrbitEnabled {
		view = view.Mul(orbitRotation(ctx.Orbit))
	}

	target := ctx.TargetPose.Position
	pos := target.Add(common.Up.Mul(ctx.Height)).Sub(view.Rotate(common.Forward).Mul(ctx.Distance))

	if s.AccelEnabled {
		bias := ctx.Accel.Mul(-s.AccelScale)
		if l := bias.Len(); l > s.MaxAccelOffset && l > 0 {
			bias = bias.Mul(s.MaxAccelOffset / l)
		}
		pos = pos.Add(bias)
	}

	if s.OcclusionEnabled {
		pos, _ = ctx.Occlusion.ResolveOcclusion(ctx.Target, ctx.Follow, pos)
	}

	rot := view
	if s.TiltEnabled && ctx.Tilt != 0 {
		rot = rot.Mul(mgl32.QuatRotate(ctx.Tilt, common.Forward))
	}

	return PoseResult{
		Node: ctx.Anchor,
		Pose: common.Pose{Position: pos, Rotation: rot.Normalize()},
		Fov:  speedFov(s.Fov, ctx.Speed, s.FovSpeed),
	}, true
}

// snap jumps the smoothed rotation straight to the desired rotation.
func (c *chaseCalculator) snap(ctx *PoseContext) {
	if ctx.Target == nil {
		return
	}
	c.initialized = true
	if ctx.Settings.Chase.Variant == ChaseEuler {
		p, y, r := common.EulerFromQuat(ctx.TargetPose.Rotation)
		c.euler = mgl32.Vec3{0, y, 0}
		c.euler = c.desiredEuler(ctx, p, y, r)
		return
	}
	c.rotation = mgl32.QuatIdent()
	c.rotation = c.desiredLookAt(ctx)
}

func (c *chaseCalculator) reversing(ctx *PoseContext) bool {
	return ctx.LookBack || (ctx.Target.Direction() < 0 && ctx.Speed > ctx.Settings.Chase.ReverseSpeed)
}

// desiredEuler returns the target angles after applying locks and the reverse override.
// Unlocked pitch and roll settle level; unlocked yaw holds its current value.
func (c *chaseCalculator) desiredEuler(ctx *PoseContext, pitch, yaw, roll float32) mgl32.Vec3 {
	s := &ctx.Settings.Chase
	want := mgl32.Vec3{0, c.euler[1], 0}
	if s.LockX {
		want[0] = pitch
	}
	if s.LockY {
		want[1] = yaw
	}
	if s.LockZ {
		want[2] = roll
	}
	if c.reversing(ctx) {
		want[1] += math.Pi
	}
	return want
}

func (c *chaseCalculator) stepEuler(ctx *PoseContext) mgl32.Quat {
	s := &ctx.Settings.Chase
	p, y, r := common.EulerFromQuat(ctx.TargetPose.Rotation)
	want := c.desiredEuler(ctx, p, y, r)

	rates := s.RotationDamping
	if !ctx.Target.Grounded() {
		rates = mgl32.Vec3{s.FreeFallDamping, s.FreeFallDamping, s.FreeFallDamping}
	}
	next := mgl32.Vec3{
		common.DampAngle(c.euler[0], want[0], rates[0], ctx.Dt),
		common.DampAngle(c.euler[1], want[1], rates[1], ctx.Dt),
		common.DampAngle(c.euler[2], want[2], rates[2], ctx.Dt),
	}
	if common.Vec3Finite(next) {
		c.euler = next
	}
	return common.QuatFromEuler(c.euler[0], c.euler[1], c.euler[2])
}

// desiredLookAt builds a look rotation along the target's forward, then drops every axis
// that is not locked in favour of the current rotation (yaw) or level (pitch, roll).
func (c *chaseCalculator) desiredLookAt(ctx *PoseContext) mgl32.Quat {
	s := &ctx.Settings.Chase
	fwd := ctx.TargetPose.Rotation.Rotate(common.Forward)
	if c.reversing(ctx) {
		fwd = fwd.Mul(-1)
	}
	up := common.Up
	if s.LockZ {
		up = ctx.TargetPose.Rotation.Rotate(common.Up)
	}
	p, y, r := common.EulerFromQuat(common.LookRotation(fwd, up))
	_, cy, _ := common.EulerFromQuat(c.rotation)
	if !s.LockX {
		p = 0
	}
	if !s.LockY {
		y = cy
	}
	if !s.LockZ {
		r = 0
	}
	return common.QuatFromEuler(p, y, r)
}

func (c *chaseCalculator) stepLookAt(ctx *PoseContext) mgl32.Quat {
	s := &ctx.Settings.Chase
	want := c.desiredLookAt(ctx)
	rate := s.RotationSmoothing
	if !ctx.Target.Grounded() {
		rate = s.FreeFallDamping
	}
	next := common.Slerp(c.rotation, want, common.DampFactor(rate, ctx.Dt))
	if common.QuatFinite(next) {
		c.rotation = next
	}
	return c.rotation
}
