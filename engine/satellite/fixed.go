package satellite

import (
	"log"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-rig/common"
	"github.com/Carmen-Shannon/oxy-rig/engine/node"
	"github.com/Carmen-Shannon/oxy-rig/engine/rig"
	"github.com/go-gl/mathgl/mgl32"
)

// FixedRig is a stationary camera that stays put while the target drives past and jumps
// to a new vantage point when the target is hidden or too far away.
type FixedRig interface {
	rig.FixedTracker

	// SetEnabled turns the satellite on or off. A disabled satellite cannot be tracked.
	//
	// Parameters:
	//   - enabled: whether the satellite is usable
	SetEnabled(enabled bool)

	// Active reports whether the rig is currently in Fixed mode.
	//
	// Returns:
	//   - bool: true between Activate and Deactivate
	Active() bool

	// Position returns the current vantage point.
	//
	// Returns:
	//   - mgl32.Vec3: world-space camera position
	Position() mgl32.Vec3

	// Repositions returns how many times the satellite has moved.
	//
	// Returns:
	//   - int: reposition count
	Repositions() int

	// Reposition picks a new vantage point around t immediately.
	//
	// Parameters:
	//   - t: the target to watch
	Reposition(t rig.Target)
}

type fixedRigImpl struct {
	mu *sync.Mutex

	node    *node.Node
	caster  rig.Raycaster
	enabled bool
	active  bool

	rng     *rand.Rand
	seed    int64
	pool    worker.DynamicWorkerPool
	workers int

	probes      int
	minRadius   float32
	maxRadius   float32
	spread      float32
	probeHeight float32
	eyeHeight   float32
	lookHeight  float32
	maxDistance float32

	fallbackHeight float32
	fallbackBack   float32

	groundMask common.Layer
	blockMask  common.Layer

	position    mgl32.Vec3
	repositions int
}

var _ FixedRig = &fixedRigImpl{}

// NewFixedRig creates an enabled Fixed satellite.
//
// The raycaster is queried from pool workers during a reposition, so it must be safe for
// concurrent use.
//
// Parameters:
//   - options: functional options to configure the satellite
//
// Returns:
//   - FixedRig: the newly created satellite
func NewFixedRig(options ...FixedRigBuilderOption) FixedRig {
	f := &fixedRigImpl{
		mu:             &sync.Mutex{},
		node:           node.NewNode("fixed_satellite"),
		enabled:        true,
		seed:           time.Now().UnixNano(),
		workers:        4,
		probes:         8,
		minRadius:      12,
		maxRadius:      25,
		spread:         mgl32.DegToRad(60),
		probeHeight:    20,
		eyeHeight:      1.6,
		lookHeight:     0.8,
		maxDistance:    40,
		fallbackHeight: 4,
		fallbackBack:   10,
		groundMask:     common.LayerGround | common.LayerStatic,
		blockMask:      common.LayerStatic | common.LayerProp | common.LayerVehicle,
	}

	for _, option := range options {
		option(f)
	}

	f.rng = rand.New(rand.NewSource(f.seed))
	f.node.SetActive(false)
	f.pool = worker.NewDynamicWorkerPool(f.workers, 256, 1*time.Second)
	return f
}

func (f *fixedRigImpl) Node() *node.Node {
	return f.node
}

func (f *fixedRigImpl) CanTrack() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enabled
}

func (f *fixedRigImpl) SetEnabled(enabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enabled = enabled
}

func (f *fixedRigImpl) Active() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

func (f *fixedRigImpl) MaxDistance() float32 {
	return f.maxDistance
}

func (f *fixedRigImpl) Position() mgl32.Vec3 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.position
}

func (f *fixedRigImpl) Repositions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.repositions
}

func (f *fixedRigImpl) Activate(t rig.Target) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active = true
	f.node.SetActive(true)
	f.reposition(t)
}

func (f *fixedRigImpl) Deactivate() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active = false
	f.node.SetActive(false)
}

func (f *fixedRigImpl) Reposition(t rig.Target) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reposition(t)
}

func (f *fixedRigImpl) Track(t rig.Target, occluded bool, dt float32) (common.Pose, float32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.active {
		f.active = true
		f.node.SetActive(true)
		f.reposition(t)
	}

	targetPos := t.Node().WorldPosition()
	dist := targetPos.Sub(f.position).Len()
	if occluded || dist > f.maxDistance {
		f.reposition(t)
		dist = targetPos.Sub(f.position).Len()
	}

	look := targetPos.Add(common.Up.Mul(f.lookHeight)).Sub(f.position)
	return common.Pose{Position: f.position, Rotation: common.LookRotation(look, common.Up)}, dist
}

type probe struct {
	origin mgl32.Vec3
}

// reposition probes random points ahead of the target in parallel and keeps the first
// valid one in probe order, so the choice does not depend on worker scheduling.
// Caller must hold the mutex.
func (f *fixedRigImpl) reposition(t rig.Target) {
	f.repositions++
	pose := t.Node().WorldPose()
	follow := pose.Position.Add(common.Up.Mul(f.lookHeight))

	if f.caster == nil || f.probes <= 0 {
		f.position = f.fallback(pose)
		return
	}

	heading := common.Yaw(pose.Rotation)
	if dir := common.FlatDirection(t.Velocity()); dir.Len() > 0 {
		heading = float32(math.Atan2(float64(dir.X()), float64(dir.Z())))
	}

	probes := make([]probe, f.probes)
	for i := range probes {
		angle := heading + (f.rng.Float32()*2-1)*f.spread
		radius := f.minRadius + f.rng.Float32()*(f.maxRadius-f.minRadius)
		offset := mgl32.Vec3{float32(math.Sin(float64(angle))), 0, float32(math.Cos(float64(angle)))}.Mul(radius)
		probes[i].origin = pose.Position.Add(offset).Add(common.Up.Mul(f.probeHeight))
	}

	results := make([]mgl32.Vec3, len(probes))
	valid := make([]bool, len(probes))
	var wg sync.WaitGroup
	for i := range probes {
		wg.Add(1)
		id := i
		f.pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				results[id], valid[id] = f.evaluate(t, probes[id], follow)
				return nil, nil
			},
		})
	}
	wg.Wait()

	for i := range probes {
		if valid[i] {
			f.position = results[i]
			return
		}
	}
	log.Printf("[Satellite] no valid fixed vantage among %d probes, using fallback", len(probes))
	f.position = f.fallback(pose)
}

// evaluate drops a probe onto the ground and checks that the target is visible from it.
func (f *fixedRigImpl) evaluate(t rig.Target, p probe, follow mgl32.Vec3) (mgl32.Vec3, bool) {
	down := p.origin.Sub(common.Up.Mul(f.probeHeight * 2))
	var ground *common.RayHit
	for _, h := range f.caster.Linecast(p.origin, down, f.groundMask) {
		if h.Trigger {
			continue
		}
		hit := h
		ground = &hit
		break
	}
	if ground == nil {
		return mgl32.Vec3{}, false
	}

	eye := ground.Point.Add(common.Up.Mul(f.eyeHeight))
	for _, h := range f.caster.Linecast(eye, follow, f.blockMask) {
		if h.Trigger || (h.Owner != 0 && t.Owns(h.Owner)) {
			continue
		}
		return mgl32.Vec3{}, false
	}
	return eye, true
}

func (f *fixedRigImpl) fallback(pose common.Pose) mgl32.Vec3 {
	back := common.FlatDirection(pose.Forward()).Mul(f.fallbackBack)
	return pose.Position.Add(common.Up.Mul(f.fallbackHeight)).Sub(back)
}
