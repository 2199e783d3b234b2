package physics

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/Carmen-Shannon/oxy-rig/common"
	"github.com/Carmen-Shannon/oxy-rig/engine/rig"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/jakecoffman/cp"
)

const (
	collisionTypeVehicle cp.CollisionType = iota + 1
	collisionTypeSolid
	collisionTypeSensor
)

// Shape filter categories. Overhead obstacles sit above vehicle roofs, so vehicles do not
// collide with them even though line casts still hit them.
const (
	categorySolid    uint = 1 << 0
	categoryOverhead uint = 1 << 1
	categoryVehicle  uint = 1 << 2
)

// Obstacle is an axis-aligned box in the world. The chipmunk space holds its X/Z footprint;
// Min.Y and Max.Y bound it vertically.
type Obstacle struct {
	Min     mgl32.Vec3
	Max     mgl32.Vec3
	Layer   common.Layer
	Trigger bool
	Owner   uint64
}

// Impact is reported when a vehicle first touches a solid obstacle.
type Impact struct {
	Vehicle Vehicle
	// Normal points from the vehicle into the obstacle.
	Normal mgl32.Vec3
	// Strength is the closing speed along Normal.
	Strength float32
}

// ImpactFunc receives impacts after the physics step that produced them.
type ImpactFunc func(i Impact)

// World is a 2.5D collision world: chipmunk resolves vehicle motion on the ground plane and
// answers broadphase queries, and line casts are resolved in 3D against each shape's
// vertical extent plus an infinite ground plane.
type World interface {
	rig.Raycaster

	// AddObstacle adds a static box.
	//
	// Parameters:
	//   - o: the obstacle to add
	//
	// Returns:
	//   - error: an error if the box is empty or not finite
	AddObstacle(o Obstacle) error

	// Obstacles returns the number of static boxes.
	//
	// Returns:
	//   - int: obstacle count
	Obstacles() int

	// AddVehicle inserts a vehicle's body into the space. A vehicle belongs to one world.
	//
	// Parameters:
	//   - v: the vehicle to add
	//
	// Returns:
	//   - error: an error if the vehicle was not created by NewVehicle or is already in a world
	AddVehicle(v Vehicle) error

	// Vehicles returns the vehicles in insertion order.
	//
	// Returns:
	//   - []Vehicle: the vehicles
	Vehicles() []Vehicle

	// Step advances the simulation by dt seconds and then delivers impacts.
	//
	// Parameters:
	//   - dt: fixed step in seconds
	Step(dt float32)

	// OnImpact registers the impact callback, replacing any previous one.
	//
	// Parameters:
	//   - fn: the callback, or nil to stop reporting
	OnImpact(fn ImpactFunc)

	// GroundLevel returns the height of the ground plane.
	//
	// Returns:
	//   - float32: ground height
	GroundLevel() float32
}

// collider is stored as a chipmunk shape's user data.
type collider struct {
	obstacle Obstacle
	vehicle  *vehicleImpl
}

type worldImpl struct {
	mu *sync.Mutex

	space     *cp.Space
	obstacles int
	vehicles  []*vehicleImpl

	ground        float32
	gravity       float32
	overheadClear float32

	onImpact ImpactFunc
	pending  []Impact
}

var _ World = &worldImpl{}

// NewWorld creates an empty world with a ground plane at y = 0.
//
// Parameters:
//   - options: functional options to configure the world
//
// Returns:
//   - World: the newly created world
func NewWorld(options ...WorldBuilderOption) World {
	w := &worldImpl{
		mu:            &sync.Mutex{},
		space:         cp.NewSpace(),
		gravity:       9.81,
		overheadClear: 2.5,
	}
	for _, option := range options {
		option(w)
	}

	w.space.SetGravity(cp.Vector{})
	w.space.Iterations = 10

	handler := w.space.NewCollisionHandler(collisionTypeVehicle, collisionTypeSolid)
	handler.UserData = w
	handler.PreSolveFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		if !arb.IsFirstContact() {
			return true
		}
		a, _ := arb.Shapes()
		c, ok := a.UserData.(*collider)
		if !ok || c.vehicle == nil {
			return true
		}
		n := arb.Normal()
		normal := mgl32.Vec3{float32(n.X), 0, float32(n.Y)}
		v := c.vehicle.body.Velocity()
		closing := float32(v.X)*normal.X() + float32(v.Y)*normal.Z()
		if closing <= 0 {
			return true
		}
		w.pending = append(w.pending, Impact{Vehicle: c.vehicle, Normal: normal, Strength: closing})
		return true
	}

	return w
}

func (w *worldImpl) GroundLevel() float32 {
	return w.ground
}

func (w *worldImpl) AddObstacle(o Obstacle) error {
	if !common.Vec3Finite(o.Min) || !common.Vec3Finite(o.Max) {
		return fmt.Errorf("physics: obstacle bounds are not finite")
	}
	if o.Min.X() >= o.Max.X() || o.Min.Y() >= o.Max.Y() || o.Min.Z() >= o.Max.Z() {
		return fmt.Errorf("physics: empty obstacle %v..%v", o.Min, o.Max)
	}
	if o.Layer == 0 {
		o.Layer = common.LayerStatic
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	bb := cp.BB{L: float64(o.Min.X()), B: float64(o.Min.Z()), R: float64(o.Max.X()), T: float64(o.Max.Z())}
	shape := cp.NewBox2(w.space.StaticBody, bb, 0)
	shape.UserData = &collider{obstacle: o}
	shape.SetFriction(0.8)

	category := categorySolid
	if o.Min.Y()-w.ground >= w.overheadClear {
		category = categoryOverhead
	}
	shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, category, cp.ALL_CATEGORIES))

	switch {
	case o.Trigger || o.Layer&common.LayerTrigger != 0:
		shape.SetSensor(true)
		shape.SetCollisionType(collisionTypeSensor)
	default:
		shape.SetCollisionType(collisionTypeSolid)
	}

	w.space.AddShape(shape)
	w.obstacles++
	return nil
}

func (w *worldImpl) Obstacles() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.obstacles
}

func (w *worldImpl) AddVehicle(v Vehicle) error {
	impl, ok := v.(*vehicleImpl)
	if !ok {
		return fmt.Errorf("physics: vehicle %d was not created by NewVehicle", v.ID())
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if impl.inWorld {
		return fmt.Errorf("physics: vehicle %d is already in a world", v.ID())
	}

	impl.shape.UserData = &collider{vehicle: impl}
	impl.shape.SetCollisionType(collisionTypeVehicle)
	impl.shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, categoryVehicle, cp.ALL_CATEGORIES&^categoryOverhead))
	w.space.AddBody(impl.body)
	w.space.AddShape(impl.shape)
	impl.inWorld = true
	impl.ground = w.ground
	w.vehicles = append(w.vehicles, impl)
	return nil
}

func (w *worldImpl) Vehicles() []Vehicle {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Vehicle, len(w.vehicles))
	for i, v := range w.vehicles {
		out[i] = v
	}
	return out
}

func (w *worldImpl) OnImpact(fn ImpactFunc) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onImpact = fn
}

func (w *worldImpl) Step(dt float32) {
	if dt <= 0 || !common.IsFinite(dt) {
		return
	}

	w.mu.Lock()
	for _, v := range w.vehicles {
		v.applyControls(dt)
	}
	w.space.Step(float64(dt))
	for _, v := range w.vehicles {
		v.sync(dt, w.gravity)
	}
	impacts := w.pending
	w.pending = nil
	fn := w.onImpact
	w.mu.Unlock()

	if fn == nil {
		return
	}
	for _, i := range impacts {
		fn(i)
	}
}

func (w *worldImpl) Linecast(from, to mgl32.Vec3, mask common.Layer) []common.RayHit {
	if !common.Vec3Finite(from) || !common.Vec3Finite(to) {
		return nil
	}
	dir := to.Sub(from)
	length := dir.Len()

	w.mu.Lock()
	defer w.mu.Unlock()

	var hits []common.RayHit
	if mask&common.LayerGround != 0 {
		if hit, ok := w.groundHit(from, to); ok {
			hits = append(hits, hit)
		}
	}

	bb := cp.NewBBForExtents(
		cp.Vector{X: float64(from.X()+to.X()) / 2, Y: float64(from.Z()+to.Z()) / 2},
		math.Abs(float64(to.X()-from.X()))/2+1e-3,
		math.Abs(float64(to.Z()-from.Z()))/2+1e-3,
	)
	filter := cp.NewShapeFilter(cp.NO_GROUP, cp.ALL_CATEGORIES, categorySolid|categoryOverhead)
	w.space.BBQuery(bb, filter, func(shape *cp.Shape, data interface{}) {
		c, ok := shape.UserData.(*collider)
		if !ok || c.vehicle != nil {
			return
		}
		o := c.obstacle
		if o.Layer&mask == 0 {
			return
		}
		t, normal, ok := segmentBox(from, dir, o.Min, o.Max)
		if !ok {
			return
		}
		hits = append(hits, common.RayHit{
			Point:    from.Add(dir.Mul(t)),
			Normal:   normal,
			Distance: t * length,
			Layer:    o.Layer,
			Trigger:  o.Trigger || o.Layer&common.LayerTrigger != 0,
			Owner:    o.Owner,
		})
	}, nil)

	if mask&common.LayerVehicle != 0 {
		for _, v := range w.vehicles {
			lo, hi := v.aabb()
			t, normal, ok := segmentBox(from, dir, lo, hi)
			if !ok {
				continue
			}
			hits = append(hits, common.RayHit{
				Point:    from.Add(dir.Mul(t)),
				Normal:   normal,
				Distance: t * length,
				Layer:    common.LayerVehicle,
				Owner:    v.id,
			})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	return hits
}

// groundHit intersects the segment with the ground plane. Caller must hold the mutex.
func (w *worldImpl) groundHit(from, to mgl32.Vec3) (common.RayHit, bool) {
	a := from.Y() - w.ground
	b := to.Y() - w.ground
	if a == b || (a > 0 && b > 0) || (a < 0 && b < 0) {
		return common.RayHit{}, false
	}
	t := a / (a - b)
	normal := common.Up
	if a < 0 {
		normal = common.Up.Mul(-1)
	}
	return common.RayHit{
		Point:    from.Add(to.Sub(from).Mul(t)),
		Normal:   normal,
		Distance: to.Sub(from).Len() * t,
		Layer:    common.LayerGround,
	}, true
}

// segmentBox clips the segment from + dir*t, t in [0, 1], against the box and returns the
// entry parameter and the face normal. A segment starting inside the box hits at t = 0 with
// a normal facing back along the segment.
func segmentBox(from, dir, lo, hi mgl32.Vec3) (float32, mgl32.Vec3, bool) {
	tMin, tMax := float32(0), float32(1)
	var normal mgl32.Vec3
	for axis := range 3 {
		d := dir[axis]
		if d > -1e-8 && d < 1e-8 {
			if from[axis] < lo[axis] || from[axis] > hi[axis] {
				return 0, mgl32.Vec3{}, false
			}
			continue
		}
		t1 := (lo[axis] - from[axis]) / d
		t2 := (hi[axis] - from[axis]) / d
		sign := float32(-1)
		if t1 > t2 {
			t1, t2 = t2, t1
			sign = 1
		}
		if t1 > tMin {
			tMin = t1
			normal = mgl32.Vec3{}
			normal[axis] = sign
		}
		if t2 < tMax {
			tMax = t2
		}
		if tMin > tMax {
			return 0, mgl32.Vec3{}, false
		}
	}
	if normal == (mgl32.Vec3{}) {
		if dir.Len() == 0 {
			return 0, common.Up, true
		}
		normal = dir.Normalize().Mul(-1)
	}
	return tMin, normal, true
}

// ImpactKick converts an impact into a recoil displacement for rig.Kick: the camera is
// shoved back from the obstacle and pitched by an amount proportional to the hit.
//
// Parameters:
//   - i: the impact
//   - scale: metres of displacement per unit of closing speed
//   - limit: maximum displacement in metres
//
// Returns:
//   - mgl32.Vec3: positional kick
//   - mgl32.Quat: rotational kick
func ImpactKick(i Impact, scale, limit float32) (mgl32.Vec3, mgl32.Quat) {
	amount := common.Clamp(i.Strength*scale, 0, limit)
	pos := i.Normal.Mul(-amount)
	rot := mgl32.QuatRotate(amount*0.1, common.Right)
	return pos, rot
}
