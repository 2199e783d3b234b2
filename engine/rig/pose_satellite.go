package rig

import (
	"github.com/Carmen-Shannon/oxy-rig/common"
	"github.com/Carmen-Shannon/oxy-rig/engine/node"
)

type fixedCalculator struct{}

var _ PoseCalculator = &fixedCalculator{}

func (f *fixedCalculator) Available(ctx *PoseContext) bool {
	return ctx.Settings.Fixed.Enabled && ctx.Fixed != nil && ctx.Fixed.CanTrack()
}

func (f *fixedCalculator) Anchor(ctx *PoseContext) *node.Node {
	if ctx.Fixed == nil {
		return nil
	}
	return ctx.Fixed.Node()
}

func (f *fixedCalculator) Enter(ctx *PoseContext) {
	if ctx.Fixed != nil && ctx.Target != nil {
		ctx.Fixed.Activate(ctx.Target)
	}
}

func (f *fixedCalculator) Exit(ctx *PoseContext) {
	if ctx.Fixed != nil {
		ctx.Fixed.Deactivate()
	}
}

// ComputePose narrows the FOV from near to far as the target drifts toward the satellite's
// max distance.
func (f *fixedCalculator) ComputePose(ctx *PoseContext) (PoseResult, bool) {
	if !f.Available(ctx) {
		return PoseResult{Fallback: true}, true
	}
	s := &ctx.Settings.Fixed
	pose, dist := ctx.Fixed.Track(ctx.Target, ctx.Occluded, ctx.Dt)
	t := common.InverseLerp(0, ctx.Fixed.MaxDistance(), dist)
	return PoseResult{
		Node:         ctx.Fixed.Node(),
		Pose:         pose,
		Fov:          common.Lerp(s.NearFov, s.FarFov, t),
		Repositioned: ctx.Occluded,
	}, true
}

type cinematicCalculator struct{}

var _ PoseCalculator = &cinematicCalculator{}

func (c *cinematicCalculator) Available(ctx *PoseContext) bool {
	return ctx.Settings.Cinematic.Enabled && ctx.Cinematic != nil && ctx.Cinematic.CanTrack()
}

func (c *cinematicCalculator) Anchor(ctx *PoseContext) *node.Node {
	if ctx.Cinematic == nil {
		return nil
	}
	return ctx.Cinematic.Node()
}

func (c *cinematicCalculator) Enter(ctx *PoseContext) {
	if ctx.Cinematic != nil && ctx.Target != nil {
		ctx.Cinematic.Activate(ctx.Target)
	}
}

func (c *cinematicCalculator) Exit(ctx *PoseContext) {
	if ctx.Cinematic != nil {
		ctx.Cinematic.Deactivate()
	}
}

func (c *cinematicCalculator) ComputePose(ctx *PoseContext) (PoseResult, bool) {
	if !c.Available(ctx) || ctx.Occluded {
		return PoseResult{Fallback: true}, true
	}
	return PoseResult{
		Node: ctx.Cinematic.Node(),
		Pose: ctx.Cinematic.Track(ctx.Target, ctx.Dt),
		Fov:  ctx.Cinematic.TargetFov(),
	}, true
}
