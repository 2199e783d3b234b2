package physics

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-rig/common"
	"github.com/Carmen-Shannon/oxy-rig/engine/node"
	"github.com/Carmen-Shannon/oxy-rig/engine/rig"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/jakecoffman/cp"
)

// Vehicle is a simple arcade car driven on the ground plane. It is the rig's follow target.
type Vehicle interface {
	rig.Target
	rig.Bounded

	// SetControls sets the driver input for the following physics steps.
	//
	// Parameters:
	//   - throttle: -1 (full reverse) to 1 (full forward)
	//   - steer: -1 (left) to 1 (right)
	SetControls(throttle, steer float32)

	// Jump launches the vehicle upward. Ignored while airborne.
	//
	// Parameters:
	//   - speed: vertical launch speed
	Jump(speed float32)

	// Speed returns the signed forward speed.
	//
	// Returns:
	//   - float32: speed along the vehicle's heading
	Speed() float32

	// Heading returns the yaw in radians, 0 facing +Z.
	//
	// Returns:
	//   - float32: yaw
	Heading() float32

	// Teleport moves the vehicle and stops it.
	//
	// Parameters:
	//   - pos: new position on the ground plane (Y is the ride height)
	//   - yaw: new heading in radians
	Teleport(pos mgl32.Vec3, yaw float32)
}

type vehicleImpl struct {
	mu *sync.Mutex

	id    uint64
	root  *node.Node
	hood  *node.Node
	wheel *node.Node

	body    *cp.Body
	shape   *cp.Shape
	inWorld bool
	ground  float32

	width  float32
	height float32
	length float32

	maxSpeed   float32
	maxReverse float32
	accel      float32
	drag       float32
	turnRate   float32

	throttle float32
	steer    float32

	startPos mgl32.Vec3

	yaw      float32
	speed    float32
	y        float32
	vy       float32
	velocity mgl32.Vec3

	hoodOffset  *mgl32.Vec3
	wheelOffset *mgl32.Vec3
}

var _ Vehicle = &vehicleImpl{}

// NewVehicle creates a vehicle at the origin facing +Z. Add it to a World to simulate it.
//
// Parameters:
//   - id: collision owner id; must be non-zero
//   - options: functional options to configure the vehicle
//
// Returns:
//   - Vehicle: the newly created vehicle
func NewVehicle(id uint64, options ...VehicleBuilderOption) Vehicle {
	hood := mgl32.Vec3{0, 1.3, 0.9}
	wheel := mgl32.Vec3{-0.35, 1.1, -0.1}
	v := &vehicleImpl{
		mu:          &sync.Mutex{},
		id:          id,
		width:       1.8,
		height:      1.4,
		length:      4.2,
		maxSpeed:    40,
		maxReverse:  8,
		accel:       12,
		drag:        4,
		turnRate:    1.6,
		hoodOffset:  &hood,
		wheelOffset: &wheel,
	}
	for _, option := range options {
		option(v)
	}

	v.root = node.NewNode("vehicle")
	if v.hoodOffset != nil {
		v.hood = node.NewNode("hood_anchor", node.WithParent(v.root), node.WithLocalPosition(*v.hoodOffset))
	}
	if v.wheelOffset != nil {
		v.wheel = node.NewNode("wheel_anchor", node.WithParent(v.root), node.WithLocalPosition(*v.wheelOffset))
	}

	mass := 1200.0
	v.body = cp.NewBody(mass, cp.MomentForBox(mass, float64(v.width), float64(v.length)))
	v.shape = cp.NewBox(v.body, float64(v.width), float64(v.length), 0.05)
	v.shape.SetFriction(0.4)
	v.shape.SetElasticity(0.1)

	v.place(v.startPos, v.yaw)
	return v
}

func (v *vehicleImpl) ID() uint64 {
	return v.id
}

func (v *vehicleImpl) Node() *node.Node {
	return v.root
}

func (v *vehicleImpl) HoodAnchor() *node.Node {
	return v.hood
}

func (v *vehicleImpl) WheelAnchor() *node.Node {
	return v.wheel
}

func (v *vehicleImpl) Owns(owner uint64) bool {
	return owner != 0 && owner == v.id
}

func (v *vehicleImpl) Velocity() mgl32.Vec3 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.velocity
}

func (v *vehicleImpl) LocalVelocity() mgl32.Vec3 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return mgl32.QuatRotate(-v.yaw, common.Up).Rotate(v.velocity)
}

func (v *vehicleImpl) Grounded() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.grounded()
}

// grounded reports ground contact. Caller must hold the mutex.
func (v *vehicleImpl) grounded() bool {
	return v.y <= v.ground+1e-4 && v.vy <= 0
}

func (v *vehicleImpl) Direction() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	switch {
	case v.speed > 0.1:
		return 1
	case v.speed < -0.1:
		return -1
	}
	return 0
}

func (v *vehicleImpl) Speed() float32 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.speed
}

func (v *vehicleImpl) Heading() float32 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.yaw
}

func (v *vehicleImpl) SetControls(throttle, steer float32) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if common.IsFinite(throttle) {
		v.throttle = common.Clamp(throttle, -1, 1)
	}
	if common.IsFinite(steer) {
		v.steer = common.Clamp(steer, -1, 1)
	}
}

func (v *vehicleImpl) Jump(speed float32) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.grounded() || speed <= 0 || !common.IsFinite(speed) {
		return
	}
	v.vy = speed
}

func (v *vehicleImpl) Teleport(pos mgl32.Vec3, yaw float32) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.speed = 0
	v.vy = 0
	v.velocity = mgl32.Vec3{}
	v.place(pos, yaw)
}

// place moves the body and the root node. Caller must hold the mutex.
func (v *vehicleImpl) place(pos mgl32.Vec3, yaw float32) {
	v.yaw = yaw
	v.y = pos.Y()
	v.body.SetPosition(cp.Vector{X: float64(pos.X()), Y: float64(pos.Z())})
	v.body.SetAngle(float64(-yaw))
	v.body.SetVelocityVector(cp.Vector{})
	v.body.SetAngularVelocity(0)
	v.root.SetLocalPosition(pos)
	v.root.SetLocalRotation(mgl32.QuatRotate(yaw, common.Up))
}

func (v *vehicleImpl) Renderers() []common.RendererBounds {
	v.mu.Lock()
	defer v.mu.Unlock()
	pos := v.root.LocalPosition()
	fwd := mgl32.Vec3{float32(math.Sin(float64(v.yaw))), 0, float32(math.Cos(float64(v.yaw)))}
	return []common.RendererBounds{
		{
			Kind: common.RendererMesh,
			Bounds: common.Bounds{
				Center:  pos.Add(common.Up.Mul(v.height / 2)),
				Extents: mgl32.Vec3{v.width / 2, v.height / 2, v.length / 2},
			},
		},
		{
			// exhaust plume
			Kind: common.RendererParticle,
			Bounds: common.Bounds{
				Center:  pos.Sub(fwd.Mul(v.length)),
				Extents: mgl32.Vec3{1, 1, v.length},
			},
		},
	}
}

// aabb returns the world bounds of the body for line casts.
func (v *vehicleImpl) aabb() (mgl32.Vec3, mgl32.Vec3) {
	v.mu.Lock()
	defer v.mu.Unlock()
	pos := v.root.LocalPosition()
	s, c := math.Sincos(float64(v.yaw))
	hw, hl := float64(v.width/2), float64(v.length/2)
	ex := float32(math.Abs(c)*hw + math.Abs(s)*hl)
	ez := float32(math.Abs(s)*hw + math.Abs(c)*hl)
	lo := mgl32.Vec3{pos.X() - ex, pos.Y(), pos.Z() - ez}
	hi := mgl32.Vec3{pos.X() + ex, pos.Y() + v.height, pos.Z() + ez}
	return lo, hi
}

// applyControls integrates driver input into the body's velocity before a space step.
func (v *vehicleImpl) applyControls(dt float32) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.grounded() {
		if v.throttle != 0 {
			v.speed += v.throttle * v.accel * dt
		} else {
			v.speed = common.MoveTowards(v.speed, 0, v.drag*dt)
		}
		v.speed = common.Clamp(v.speed, -v.maxReverse, v.maxSpeed)
		grip := common.Clamp(v.speed/5, -1, 1)
		v.yaw += v.steer * v.turnRate * grip * dt
	}

	s, c := math.Sincos(float64(v.yaw))
	v.body.SetAngle(float64(-v.yaw))
	v.body.SetAngularVelocity(0)
	v.body.SetVelocity(s*float64(v.speed), c*float64(v.speed))
}

// sync copies the stepped body state back into the vehicle and integrates the vertical axis.
func (v *vehicleImpl) sync(dt, gravity float32) {
	v.mu.Lock()
	defer v.mu.Unlock()

	p := v.body.Position()
	vel := v.body.Velocity()
	v.yaw = float32(-v.body.Angle())
	s, c := math.Sincos(float64(v.yaw))
	v.speed = float32(vel.X*s + vel.Y*c)

	if v.y > v.ground || v.vy > 0 {
		v.vy -= gravity * dt
		v.y += v.vy * dt
		if v.y <= v.ground {
			v.y = v.ground
			v.vy = 0
		}
	}

	v.velocity = mgl32.Vec3{float32(vel.X), v.vy, float32(vel.Y)}
	v.root.SetLocalPosition(mgl32.Vec3{float32(p.X), v.y, float32(p.Y)})
	v.root.SetLocalRotation(mgl32.QuatRotate(v.yaw, common.Up))
}
