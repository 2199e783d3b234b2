package node

import (
	"slices"

	"github.com/Carmen-Shannon/oxy-rig/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Node is a transform in a parent/child hierarchy. A node has at most one parent,
// and its world transform is its local transform composed onto its parent's world transform.
// Nodes carry no scale.
type Node struct {
	name     string
	parent   *Node
	children []*Node
	active   bool

	localPosition mgl32.Vec3
	localRotation mgl32.Quat
}

// NewNode creates an active, unparented node with an identity local transform.
//
// Parameters:
//   - name: a debug name for the node
//   - options: functional options to configure the node
//
// Returns:
//   - *Node: the newly created node
func NewNode(name string, options ...NodeBuilderOption) *Node {
	n := &Node{
		name:          name,
		active:        true,
		localRotation: mgl32.QuatIdent(),
	}
	for _, option := range options {
		option(n)
	}
	return n
}

// Name returns the node's debug name.
func (n *Node) Name() string {
	return n.name
}

// Parent returns the node's parent, or nil for a root node.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns a copy of the node's direct children.
func (n *Node) Children() []*Node {
	return slices.Clone(n.children)
}

// Active reports whether the node is active.
func (n *Node) Active() bool {
	return n.active
}

// SetActive sets whether the node is active. Activity does not affect transforms.
func (n *Node) SetActive(active bool) {
	n.active = active
}

// SetParent moves the node under parent, detaching it from any previous parent first.
// The local transform is kept, so the world transform follows the new parent.
// Passing nil detaches the node. Attaching a node to itself or to one of its own
// descendants is rejected.
//
// Parameters:
//   - parent: the new parent, or nil to detach
//
// Returns:
//   - bool: false if the attachment would create a cycle
func (n *Node) SetParent(parent *Node) bool {
	for p := parent; p != nil; p = p.parent {
		if p == n {
			return false
		}
	}
	if n.parent == parent {
		return true
	}
	if n.parent != nil {
		n.parent.children = slices.DeleteFunc(n.parent.children, func(c *Node) bool { return c == n })
	}
	n.parent = parent
	if parent != nil {
		parent.children = append(parent.children, n)
	}
	return true
}

// IsDescendantOf reports whether n sits anywhere below ancestor.
func (n *Node) IsDescendantOf(ancestor *Node) bool {
	for p := n.parent; p != nil; p = p.parent {
		if p == ancestor {
			return true
		}
	}
	return false
}

// LocalPosition returns the position relative to the parent.
func (n *Node) LocalPosition() mgl32.Vec3 {
	return n.localPosition
}

// LocalRotation returns the rotation relative to the parent.
func (n *Node) LocalRotation() mgl32.Quat {
	return n.localRotation
}

// SetLocalPosition sets the position relative to the parent.
func (n *Node) SetLocalPosition(p mgl32.Vec3) {
	n.localPosition = p
}

// SetLocalRotation sets the rotation relative to the parent.
func (n *Node) SetLocalRotation(q mgl32.Quat) {
	n.localRotation = q.Normalize()
}

// ResetLocal zeroes the local position and rotation.
func (n *Node) ResetLocal() {
	n.localPosition = mgl32.Vec3{}
	n.localRotation = mgl32.QuatIdent()
}

// LocalPose returns the local transform as a Pose.
func (n *Node) LocalPose() common.Pose {
	return common.Pose{Position: n.localPosition, Rotation: n.localRotation}
}

// WorldPose composes the local transform with every ancestor's transform.
//
// Returns:
//   - common.Pose: the world-space position and rotation
func (n *Node) WorldPose() common.Pose {
	if n.parent == nil {
		return n.LocalPose()
	}
	pw := n.parent.WorldPose()
	return common.Pose{
		Position: pw.Position.Add(pw.Rotation.Rotate(n.localPosition)),
		Rotation: pw.Rotation.Mul(n.localRotation).Normalize(),
	}
}

// WorldPosition returns the world-space position.
func (n *Node) WorldPosition() mgl32.Vec3 {
	return n.WorldPose().Position
}

// WorldRotation returns the world-space rotation.
func (n *Node) WorldRotation() mgl32.Quat {
	return n.WorldPose().Rotation
}

// SetWorldPose sets the local transform so that the node lands on the given world pose
// under its current parent.
//
// Parameters:
//   - p: the desired world-space pose
func (n *Node) SetWorldPose(p common.Pose) {
	if n.parent == nil {
		n.localPosition = p.Position
		n.localRotation = p.Rotation.Normalize()
		return
	}
	pw := n.parent.WorldPose()
	inv := pw.Rotation.Inverse()
	n.localPosition = inv.Rotate(p.Position.Sub(pw.Position))
	n.localRotation = inv.Mul(p.Rotation).Normalize()
}
