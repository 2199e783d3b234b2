package rig

import (
	"github.com/Carmen-Shannon/oxy-rig/common"
	"github.com/Carmen-Shannon/oxy-rig/engine/node"
	"github.com/go-gl/mathgl/mgl32"
)

type topCalculator struct{}

var _ PoseCalculator = &topCalculator{}

func (t *topCalculator) Available(ctx *PoseContext) bool {
	return true
}

func (t *topCalculator) Anchor(ctx *PoseContext) *node.Node {
	return ctx.Pivot
}

func (t *topCalculator) Enter(ctx *PoseContext) {}

func (t *topCalculator) Exit(ctx *PoseContext) {}

// ComputePose looks down at a point ahead of the target; the lead grows with the target's
// horizontal velocity up to MaxLead.
func (t *topCalculator) ComputePose(ctx *PoseContext) (PoseResult, bool) {
	if ctx.Target == nil {
		return PoseResult{}, false
	}
	s := &ctx.Settings.Top
	rot := common.QuatFromEuler(mgl32.DegToRad(s.Angle), mgl32.DegToRad(s.Yaw), 0)

	vel := ctx.Target.Velocity()
	lead := mgl32.Vec3{vel.X(), 0, vel.Z()}.Mul(s.LeadTime)
	if l := lead.Len(); l > s.MaxLead && l > 0 {
		lead = lead.Mul(s.MaxLead / l)
	}

	focus := ctx.TargetPose.Position.Add(lead)
	pos := focus.Sub(rot.Rotate(common.Forward).Mul(s.Distance))

	k := common.InverseLerp(0, s.FovSpeed, ctx.Speed)
	res := PoseResult{
		Node: ctx.Anchor,
		Pose: common.Pose{Position: pos, Rotation: rot},
		Fov:  common.Lerp(s.Fov.Min, s.Fov.Max, k),
	}
	if s.Orthographic {
		res.OrthoSize = common.Lerp(s.OrthoMin, s.OrthoMax, k)
	}
	return res, true
}
