package rig

import (
	"math"

	"github.com/Carmen-Shannon/oxy-rig/common"
	"github.com/Carmen-Shannon/oxy-rig/engine/node"
	"github.com/go-gl/mathgl/mgl32"
)

const epsilon = 1e-3

const frame float32 = 1.0 / 60

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) <= epsilon
}

func vecNear(a, b mgl32.Vec3, tol float32) bool {
	return a.Sub(b).Len() <= tol
}

// quatNear treats q and -q as the same rotation.
func quatNear(a, b mgl32.Quat, tol float32) bool {
	return min(a.Sub(b).Len(), a.Add(b).Len()) <= tol
}

type fakeTarget struct {
	id        uint64
	root      *node.Node
	hood      *node.Node
	wheel     *node.Node
	velocity  mgl32.Vec3
	grounded  bool
	direction int
}

func newFakeTarget(id uint64, withAnchors bool) *fakeTarget {
	t := &fakeTarget{
		id:        id,
		root:      node.NewNode("target"),
		grounded:  true,
		direction: 1,
	}
	if withAnchors {
		t.hood = node.NewNode("hood", node.WithParent(t.root), node.WithLocalPosition(mgl32.Vec3{0, 1.2, 0.5}))
		t.wheel = node.NewNode("wheel", node.WithParent(t.root), node.WithLocalPosition(mgl32.Vec3{-0.4, 1.0, -0.2}))
	}
	return t
}

func (t *fakeTarget) ID() uint64              { return t.id }
func (t *fakeTarget) Node() *node.Node        { return t.root }
func (t *fakeTarget) Velocity() mgl32.Vec3    { return t.velocity }
func (t *fakeTarget) Grounded() bool          { return t.grounded }
func (t *fakeTarget) Direction() int          { return t.direction }
func (t *fakeTarget) HoodAnchor() *node.Node  { return t.hood }
func (t *fakeTarget) WheelAnchor() *node.Node { return t.wheel }
func (t *fakeTarget) Owns(owner uint64) bool  { return owner == t.id }

func (t *fakeTarget) LocalVelocity() mgl32.Vec3 {
	return t.root.WorldRotation().Inverse().Rotate(t.velocity)
}

// fakeCaster returns the same hits for every query.
type fakeCaster struct {
	hits  []common.RayHit
	calls int
}

func (c *fakeCaster) Linecast(from, to mgl32.Vec3, mask common.Layer) []common.RayHit {
	c.calls++
	return c.hits
}

type fakeBounded struct {
	renderers []common.RendererBounds
}

func (b fakeBounded) Renderers() []common.RendererBounds { return b.renderers }

type fakeFixed struct {
	node        *node.Node
	canTrack    bool
	distance    float32
	maxDistance float32
	activations int
	occludedHit int
}

func newFakeFixed() *fakeFixed {
	return &fakeFixed{
		node:        node.NewNode("fixed"),
		canTrack:    true,
		maxDistance: 40,
	}
}

func (f *fakeFixed) Node() *node.Node     { return f.node }
func (f *fakeFixed) CanTrack() bool       { return f.canTrack }
func (f *fakeFixed) Activate(t Target)    { f.activations++ }
func (f *fakeFixed) Deactivate()          {}
func (f *fakeFixed) MaxDistance() float32 { return f.maxDistance }

func (f *fakeFixed) Track(t Target, occluded bool, dt float32) (common.Pose, float32) {
	if occluded {
		f.occludedHit++
	}
	return common.Pose{Position: mgl32.Vec3{0, 5, 20}, Rotation: mgl32.QuatIdent()}, f.distance
}

type fakeCinematic struct {
	node     *node.Node
	canTrack bool
	fov      float32
}

func newFakeCinematic() *fakeCinematic {
	return &fakeCinematic{node: node.NewNode("cinematic"), canTrack: true, fov: 30}
}

func (c *fakeCinematic) Node() *node.Node   { return c.node }
func (c *fakeCinematic) CanTrack() bool     { return c.canTrack }
func (c *fakeCinematic) Activate(t Target)  {}
func (c *fakeCinematic) Deactivate()        {}
func (c *fakeCinematic) TargetFov() float32 { return c.fov }

func (c *fakeCinematic) Track(t Target, dt float32) common.Pose {
	return common.Pose{Position: t.Node().WorldPosition().Sub(mgl32.Vec3{0, 0, 10}), Rotation: mgl32.QuatIdent()}
}

// unavailable is a calculator whose mode can never be entered.
type unavailable struct{ topCalculator }

func (unavailable) Available(ctx *PoseContext) bool { return false }

// step runs one full frame in phase order.
func step(r Rig, n int) {
	for range n {
		r.EarlyUpdate(frame)
		r.PhysicsUpdate(frame)
		r.LateUpdate(frame)
	}
}
