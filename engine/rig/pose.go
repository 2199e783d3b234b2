package rig

import (
	"github.com/Carmen-Shannon/oxy-rig/common"
	"github.com/Carmen-Shannon/oxy-rig/engine/node"
	"github.com/go-gl/mathgl/mgl32"
)

// FixedTracker is a stationary satellite camera that repositions itself around the target.
type FixedTracker interface {
	// Node is the satellite's detached transform; the render node is parented to it in Fixed mode.
	Node() *node.Node
	// CanTrack reports whether the satellite is usable.
	CanTrack() bool
	// Activate is called when Fixed mode is entered.
	Activate(t Target)
	// Deactivate is called when Fixed mode is left.
	Deactivate()
	// Track returns the satellite pose for this frame and its distance to the target.
	// The satellite repositions when occluded is true or the target is beyond MaxDistance.
	Track(t Target, occluded bool, dt float32) (common.Pose, float32)
	// MaxDistance is the distance at which the satellite gives up and repositions.
	MaxDistance() float32
}

// CinematicTracker is a smoothed satellite camera that trails the target.
type CinematicTracker interface {
	Node() *node.Node
	CanTrack() bool
	Activate(t Target)
	Deactivate()
	// Track returns the satellite pose for this frame.
	Track(t Target, dt float32) common.Pose
	// TargetFov is the externally driven field of view in degrees.
	TargetFov() float32
}

// PoseContext is the per-frame input shared by every pose calculator.
type PoseContext struct {
	Target     Target
	TargetPose common.Pose
	Follow     mgl32.Vec3
	Speed      float32
	Dt         float32

	Settings  *Settings
	Orbit     *OrbitTracker
	Occlusion *OcclusionResolver
	Occluded  bool
	LookBack  bool

	Accel    mgl32.Vec3
	Tilt     float32
	Distance float32
	Height   float32

	Anchor *node.Node
	Pivot  *node.Node
	Render *node.Node

	Fixed     FixedTracker
	Cinematic CinematicTracker
}

// PoseResult is a calculator's output for one frame. A nil Node means the calculator writes
// no transform and only the FOV is applied. Local selects whether Pose is applied as the
// node's local or world transform.
type PoseResult struct {
	Node      *node.Node
	Pose      common.Pose
	Local     bool
	Fov       float32
	OrthoSize float32

	// Fallback asks the rig to switch to Chase instead of applying the result.
	Fallback bool

	// Repositioned reports that the pose already moved clear of the last occlusion test,
	// so the rig drops its occluded flag until the next physics update.
	Repositioned bool
}

// Finite reports whether every value the rig would apply is finite.
func (r PoseResult) Finite() bool {
	if !common.IsFinite(r.Fov) || !common.IsFinite(r.OrthoSize) {
		return false
	}
	return r.Node == nil || r.Pose.Finite()
}

// PoseCalculator computes the camera pose for one mode.
type PoseCalculator interface {
	// Available reports whether the mode's prerequisites are met for the current target.
	Available(ctx *PoseContext) bool

	// Anchor returns the node the render node is parented to in this mode.
	Anchor(ctx *PoseContext) *node.Node

	// Enter runs once when the mode becomes active, during the rig reset.
	Enter(ctx *PoseContext)

	// Exit runs once when the mode is left.
	Exit(ctx *PoseContext)

	// ComputePose produces this frame's pose.
	//
	// Parameters:
	//   - ctx: the per-frame context
	//
	// Returns:
	//   - PoseResult: the pose and FOV to apply
	//   - bool: false to skip this frame
	ComputePose(ctx *PoseContext) (PoseResult, bool)
}

// orbitRotation converts the tracker's smoothed angles into a rotation (yaw from X, pitch from Y).
func orbitRotation(o *OrbitTracker) mgl32.Quat {
	if o == nil {
		return mgl32.QuatIdent()
	}
	x, y := o.Angles()
	return common.QuatFromEuler(mgl32.DegToRad(y), mgl32.DegToRad(x), 0)
}

// speedFov interpolates a FOV range from Min at rest to Max at fullSpeed.
func speedFov(r FovRange, speed, fullSpeed float32) float32 {
	return common.Lerp(r.Min, r.Max, common.InverseLerp(0, fullSpeed, speed))
}
