package rig

import (
	"github.com/Carmen-Shannon/oxy-rig/common"
	"github.com/Carmen-Shannon/oxy-rig/engine/node"
	"github.com/go-gl/mathgl/mgl32"
)

type hoodCalculator struct{}

var _ PoseCalculator = &hoodCalculator{}

func (h *hoodCalculator) Available(ctx *PoseContext) bool {
	return ctx.Target != nil && ctx.Target.HoodAnchor() != nil
}

func (h *hoodCalculator) Anchor(ctx *PoseContext) *node.Node {
	if ctx.Target == nil {
		return nil
	}
	return ctx.Target.HoodAnchor()
}

func (h *hoodCalculator) Enter(ctx *PoseContext) {}

func (h *hoodCalculator) Exit(ctx *PoseContext) {}

// ComputePose writes only the render node's local rotation; the hood anchor supplies
// the target's position and rotation.
func (h *hoodCalculator) ComputePose(ctx *PoseContext) (PoseResult, bool) {
	if !h.Available(ctx) {
		return PoseResult{Fallback: true}, true
	}
	rot := mgl32.QuatIdent()
	if ctx.Settings.Hood.OrbitEnabled {
		rot = orbitRotation(ctx.Orbit)
	}
	return PoseResult{
		Node:  ctx.Render,
		Pose:  common.Pose{Rotation: rot},
		Local: true,
		Fov:   ctx.Settings.Hood.Fov.Default,
	}, true
}

type wheelCalculator struct{}

var _ PoseCalculator = &wheelCalculator{}

func (w *wheelCalculator) Available(ctx *PoseContext) bool {
	return ctx.Target != nil && ctx.Target.WheelAnchor() != nil
}

func (w *wheelCalculator) Anchor(ctx *PoseContext) *node.Node {
	if ctx.Target == nil {
		return nil
	}
	return ctx.Target.WheelAnchor()
}

func (w *wheelCalculator) Enter(ctx *PoseContext) {}

func (w *wheelCalculator) Exit(ctx *PoseContext) {}

func (w *wheelCalculator) ComputePose(ctx *PoseContext) (PoseResult, bool) {
	if !w.Available(ctx) || ctx.Occluded {
		return PoseResult{Fallback: true}, true
	}
	return PoseResult{Fov: ctx.Settings.Wheel.Fov.Default}, true
}
