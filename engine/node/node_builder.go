package node

import "github.com/go-gl/mathgl/mgl32"

// NodeBuilderOption is a functional option for configuring a Node.
type NodeBuilderOption func(*Node)

// WithParent attaches the node to a parent at creation.
//
// Parameters:
//   - parent: the parent node
//
// Returns:
//   - NodeBuilderOption: a function that parents the node
func WithParent(parent *Node) NodeBuilderOption {
	return func(n *Node) {
		n.SetParent(parent)
	}
}

// WithLocalPosition sets the initial local position.
//
// Parameters:
//   - p: position relative to the parent
//
// Returns:
//   - NodeBuilderOption: a function that sets the local position
func WithLocalPosition(p mgl32.Vec3) NodeBuilderOption {
	return func(n *Node) {
		n.localPosition = p
	}
}

// WithLocalRotation sets the initial local rotation.
//
// Parameters:
//   - q: rotation relative to the parent
//
// Returns:
//   - NodeBuilderOption: a function that sets the local rotation
func WithLocalRotation(q mgl32.Quat) NodeBuilderOption {
	return func(n *Node) {
		n.localRotation = q.Normalize()
	}
}
