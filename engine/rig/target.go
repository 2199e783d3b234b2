package rig

import (
	"github.com/Carmen-Shannon/oxy-rig/common"
	"github.com/Carmen-Shannon/oxy-rig/engine/node"
	"github.com/go-gl/mathgl/mgl32"
)

// Target is the vehicle the rig follows. The rig never owns a target; the host must call
// RemoveTarget before the target goes away.
type Target interface {
	// ID identifies the target. Re-targeting compares IDs.
	ID() uint64

	// Node is the target's root transform.
	Node() *node.Node

	// Velocity is the world-space velocity.
	Velocity() mgl32.Vec3

	// LocalVelocity is the velocity in the target's own frame; Z is forward, X is right.
	LocalVelocity() mgl32.Vec3

	// Grounded reports whether the target is touching the ground.
	Grounded() bool

	// Direction is +1 when driving forward, -1 when reversing and 0 at rest.
	Direction() int

	// HoodAnchor returns the hood camera attachment, or nil if the target has none.
	HoodAnchor() *node.Node

	// WheelAnchor returns the wheel camera attachment, or nil if the target has none.
	WheelAnchor() *node.Node

	// Owns reports whether the collision owner id belongs to this target's hierarchy.
	Owns(owner uint64) bool
}

// Bounded exposes renderer bounds for auto-focus extent calculation.
type Bounded interface {
	Renderers() []common.RendererBounds
}

// Raycaster answers line-of-sight queries for occlusion and satellite probes.
type Raycaster interface {
	// Linecast returns every surface crossed by the segment from -> to whose layer is in mask,
	// ordered by distance from `from`.
	Linecast(from, to mgl32.Vec3, mask common.Layer) []common.RayHit
}

// forwardSpeed is the magnitude of the target's forward velocity component.
func forwardSpeed(t Target) float32 {
	z := t.LocalVelocity().Z()
	if z < 0 {
		return -z
	}
	return z
}
