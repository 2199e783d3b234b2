package satellite

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-rig/common"
	"github.com/Carmen-Shannon/oxy-rig/engine/node"
	"github.com/Carmen-Shannon/oxy-rig/engine/rig"
	"github.com/go-gl/mathgl/mgl32"
)

// CinematicRig faces the target head-on from a fixed offset in front of it, turning
// smoothly as the target turns. Its field of view is written by an external sampler.
type CinematicRig interface {
	rig.CinematicTracker

	// SetTargetFov sets the FOV the rig reports, in degrees.
	//
	// Parameters:
	//   - fov: field of view in degrees
	SetTargetFov(fov float32)

	// SetEnabled turns the satellite on or off. A disabled satellite cannot be tracked.
	//
	// Parameters:
	//   - enabled: whether the satellite is usable
	SetEnabled(enabled bool)

	// Active reports whether the rig is currently in Cinematic mode.
	//
	// Returns:
	//   - bool: true between Activate and Deactivate
	Active() bool
}

type cinematicRigImpl struct {
	mu *sync.Mutex

	node    *node.Node
	enabled bool
	active  bool

	rotation  mgl32.Quat
	trackRate float32
	offset    float32
	height    float32
	targetFov float32
}

var _ CinematicRig = &cinematicRigImpl{}

// NewCinematicRig creates an enabled Cinematic satellite.
//
// Parameters:
//   - options: functional options to configure the satellite
//
// Returns:
//   - CinematicRig: the newly created satellite
func NewCinematicRig(options ...CinematicRigBuilderOption) CinematicRig {
	c := &cinematicRigImpl{
		mu:        &sync.Mutex{},
		node:      node.NewNode("cinematic_satellite"),
		enabled:   true,
		rotation:  mgl32.QuatIdent(),
		trackRate: 3,
		offset:    10,
		height:    1.2,
		targetFov: 35,
	}
	for _, option := range options {
		option(c)
	}
	c.node.SetActive(false)
	return c
}

func (c *cinematicRigImpl) Node() *node.Node {
	return c.node
}

func (c *cinematicRigImpl) CanTrack() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

func (c *cinematicRigImpl) SetEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = enabled
}

func (c *cinematicRigImpl) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func (c *cinematicRigImpl) TargetFov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.targetFov
}

func (c *cinematicRigImpl) SetTargetFov(fov float32) {
	if !common.IsFinite(fov) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.targetFov = fov
}

func (c *cinematicRigImpl) Activate(t rig.Target) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = true
	c.node.SetActive(true)
	c.rotation = facing(t)
}

func (c *cinematicRigImpl) Deactivate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = false
	c.node.SetActive(false)
}

func (c *cinematicRigImpl) Track(t rig.Target, dt float32) common.Pose {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rotation = common.Slerp(c.rotation, facing(t), common.DampFactor(c.trackRate, dt))
	pos := t.Node().WorldPosition().
		Add(common.Up.Mul(c.height)).
		Sub(c.rotation.Rotate(common.Forward).Mul(c.offset))
	return common.Pose{Position: pos, Rotation: c.rotation}
}

// facing is the yaw-only rotation looking back along the target's heading.
func facing(t rig.Target) mgl32.Quat {
	yaw := common.Yaw(t.Node().WorldRotation()) + math.Pi
	return mgl32.QuatRotate(yaw, common.Up)
}
