package node

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-rig/common"
	"github.com/go-gl/mathgl/mgl32"
)

const epsilon = 1e-4

func vecNear(a, b mgl32.Vec3, tol float32) bool {
	return a.Sub(b).Len() <= tol
}

// quatNear treats q and -q as the same rotation.
func quatNear(a, b mgl32.Quat, tol float32) bool {
	return min(a.Sub(b).Len(), a.Add(b).Len()) <= tol
}

func TestNodeWorldPose(t *testing.T) {
	root := NewNode("root",
		WithLocalPosition(mgl32.Vec3{10, 0, 0}),
		WithLocalRotation(mgl32.QuatRotate(math.Pi/2, common.Up)),
	)
	child := NewNode("child", WithParent(root), WithLocalPosition(mgl32.Vec3{0, 1, 2}))

	got := child.WorldPosition()
	// A quarter turn around Y maps +Z to +X.
	want := mgl32.Vec3{12, 1, 0}
	if !vecNear(got, want, epsilon) {
		t.Fatalf("world position = %v, want %v", got, want)
	}
}

func TestNodeSetWorldPoseRoundTrip(t *testing.T) {
	root := NewNode("root", WithLocalRotation(mgl32.QuatRotate(0.7, common.Up)))
	child := NewNode("child", WithParent(root))

	target := common.Pose{Position: mgl32.Vec3{3, 2, -5}, Rotation: mgl32.QuatRotate(-1.1, common.Up)}
	child.SetWorldPose(target)

	got := child.WorldPose()
	if !vecNear(got.Position, target.Position, epsilon) {
		t.Fatalf("position = %v, want %v", got.Position, target.Position)
	}
	if !quatNear(got.Rotation, target.Rotation, epsilon) {
		t.Fatalf("rotation = %v, want %v", got.Rotation, target.Rotation)
	}
}

func TestNodeSingleParent(t *testing.T) {
	a := NewNode("a")
	b := NewNode("b")
	c := NewNode("c")

	c.SetParent(a)
	c.SetParent(b)

	if len(a.Children()) != 0 {
		t.Fatalf("old parent still lists child")
	}
	if len(b.Children()) != 1 || c.Parent() != b {
		t.Fatalf("child not attached to new parent")
	}

	if b.SetParent(c) {
		t.Fatalf("cycle should be rejected")
	}
	if c.SetParent(c) {
		t.Fatalf("self-parenting should be rejected")
	}
	if !c.IsDescendantOf(b) {
		t.Fatalf("c should be a descendant of b")
	}
}
