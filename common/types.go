// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import "github.com/go-gl/mathgl/mgl32"

// Pose is a world or local transform without scale.
type Pose struct {
	// Position is the translation component.
	Position mgl32.Vec3
	// Rotation is the orientation component. The zero value is not a valid rotation; use IdentityPose.
	Rotation mgl32.Quat
}

// IdentityPose returns a pose at the origin with no rotation.
func IdentityPose() Pose {
	return Pose{Rotation: mgl32.QuatIdent()}
}

// Forward returns the pose's +Z axis in the pose's parent space.
func (p Pose) Forward() mgl32.Vec3 {
	return p.Rotation.Rotate(Forward)
}

// Finite reports whether every component of the pose is a finite number.
func (p Pose) Finite() bool {
	return Vec3Finite(p.Position) && QuatFinite(p.Rotation)
}

// Layer is a bit in a collision layer mask.
type Layer uint32

// Collision layers understood by the occlusion and probe queries.
const (
	LayerGround  Layer = 1 << 0
	LayerStatic  Layer = 1 << 1
	LayerVehicle Layer = 1 << 2
	LayerProp    Layer = 1 << 3
	LayerTrigger Layer = 1 << 4
	LayerAll     Layer = 0xFFFFFFFF
)

// RayHit describes a single intersection reported by a line cast.
type RayHit struct {
	// Point is the world-space intersection point.
	Point mgl32.Vec3
	// Normal is the surface normal at Point, facing the ray origin.
	Normal mgl32.Vec3
	// Distance is the distance from the ray origin to Point.
	Distance float32
	// Layer is the collision layer of the surface that was hit.
	Layer Layer
	// Trigger marks volumes that report overlaps but do not block.
	Trigger bool
	// Owner identifies the entity hierarchy the surface belongs to (0 = world).
	Owner uint64
}

// Bounds is an axis-aligned box described by its center and half-extents.
type Bounds struct {
	Center  mgl32.Vec3
	Extents mgl32.Vec3
}

// MaxExtent returns the largest half-extent of the box.
func (b Bounds) MaxExtent() float32 {
	m := b.Extents[0]
	if b.Extents[1] > m {
		m = b.Extents[1]
	}
	if b.Extents[2] > m {
		m = b.Extents[2]
	}
	return m
}

// RendererKind classifies render geometry for bounds queries.
type RendererKind int

const (
	// RendererMesh is solid mesh geometry.
	RendererMesh RendererKind = iota
	// RendererSkinned is skinned mesh geometry.
	RendererSkinned
	// RendererParticle is a particle system; excluded from framing.
	RendererParticle
	// RendererTrail is a trail or ribbon effect; excluded from framing.
	RendererTrail
)

// Effect reports whether the renderer is a transient effect rather than solid geometry.
func (k RendererKind) Effect() bool {
	return k == RendererParticle || k == RendererTrail
}

// RendererBounds pairs a renderer classification with its world-space bounds.
type RendererBounds struct {
	Kind   RendererKind
	Bounds Bounds
}
