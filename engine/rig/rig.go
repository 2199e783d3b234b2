package rig

import (
	"fmt"
	"log"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-rig/common"
	"github.com/Carmen-Shannon/oxy-rig/engine/input"
	"github.com/Carmen-Shannon/oxy-rig/engine/node"
	"github.com/go-gl/mathgl/mgl32"
)

// ModeObserver is notified after every completed mode transition.
type ModeObserver func(from, to Mode)

// Rig is the vehicle follow-camera controller. It is driven by three per-frame phases
// that the host calls in order: EarlyUpdate, PhysicsUpdate (on physics ticks), then the
// target's own motion, then LateUpdate.
type Rig interface {
	// SetTarget starts following t. The current mode is re-anchored to the new target and
	// any running auto-focus is cancelled. Passing nil is the same as RemoveTarget.
	//
	// Parameters:
	//   - t: the vehicle to follow
	SetTarget(t Target)

	// RemoveTarget stops following the current target. Pose updates become no-ops.
	RemoveTarget()

	// Target returns the followed target, or nil.
	//
	// Returns:
	//   - Target: the current target
	Target() Target

	// Mode returns the active camera mode.
	//
	// Returns:
	//   - Mode: the active mode
	Mode() Mode

	// SetMode assigns the active mode. The transition reset runs at the end of the next LateUpdate.
	//
	// Parameters:
	//   - m: the mode to switch to
	SetMode(m Mode)

	// CycleMode advances to the next available mode, trying at most six candidates and
	// falling back to Chase if none is available.
	//
	// Returns:
	//   - Mode: the newly selected mode
	CycleMode() Mode

	// ModeAvailable reports whether m's prerequisites are met for the current target.
	//
	// Parameters:
	//   - m: the mode to check
	//
	// Returns:
	//   - bool: true if the mode can be entered
	ModeAvailable(m Mode) bool

	// ToggleRendering shows or hides the camera output. Pose computation is unaffected.
	//
	// Parameters:
	//   - enabled: whether the render node is active
	ToggleRendering(enabled bool)

	// RenderingEnabled reports the rendering flag.
	//
	// Returns:
	//   - bool: true if the render node is active
	RenderingEnabled() bool

	// SetEnabled turns the whole rig on or off. Disabling cancels auto-focus.
	//
	// Parameters:
	//   - enabled: whether the rig updates
	SetEnabled(enabled bool)

	// Enabled reports whether the rig updates.
	//
	// Returns:
	//   - bool: the enabled flag
	Enabled() bool

	// AddDragDelta injects a UI drag into the orbit, bypassing hold-to-orbit.
	//
	// Parameters:
	//   - dx, dy: drag delta in pointer units
	AddDragDelta(dx, dy float32)

	// SetLookBack sets whether the look-back control is held.
	//
	// Parameters:
	//   - held: true while looking back
	SetLookBack(held bool)

	// SetOrbitHeld sets whether the hold-to-orbit control is held.
	//
	// Parameters:
	//   - held: true while orbit input is allowed
	SetOrbitHeld(held bool)

	// Kick injects a collision displacement into the recoil buffer.
	//
	// Parameters:
	//   - pos: positional displacement
	//   - rot: rotational displacement
	Kick(pos mgl32.Vec3, rot mgl32.Quat)

	// AutoFocus starts easing the chase distance and height to frame 1 to 3 targets.
	//
	// Parameters:
	//   - targets: the objects to frame
	//
	// Returns:
	//   - error: ErrFocusTargets for an unsupported count, ErrFocusDisabled when turned off
	AutoFocus(targets ...Bounded) error

	// Focusing reports whether an auto-focus task is running.
	//
	// Returns:
	//   - bool: true while the task runs
	Focusing() bool

	// Fov returns the current field of view in degrees.
	//
	// Returns:
	//   - float32: the smoothed FOV
	Fov() float32

	// TargetFov returns the FOV the rig is easing toward.
	//
	// Returns:
	//   - float32: the target FOV in degrees
	TargetFov() float32

	// Projection returns the projection the active mode uses.
	//
	// Returns:
	//   - Projection: perspective or orthographic
	Projection() Projection

	// OrthoSize returns the orthographic half height when Projection is orthographic.
	//
	// Returns:
	//   - float32: half height in world units
	OrthoSize() float32

	// Pose returns the render node's world pose.
	//
	// Returns:
	//   - common.Pose: the camera pose
	Pose() common.Pose

	// RenderNode returns the node the camera renders from.
	//
	// Returns:
	//   - *node.Node: the render node
	RenderNode() *node.Node

	// ChaseOffset returns the current chase distance and height.
	//
	// Returns:
	//   - distance, height: chase offsets in world units
	ChaseOffset() (distance, height float32)

	// Orbit returns the smoothed orbit angles in degrees.
	//
	// Returns:
	//   - x, y: horizontal and vertical orbit
	Orbit() (x, y float32)

	// Settings returns a copy of the active configuration.
	//
	// Returns:
	//   - Settings: the configuration
	Settings() Settings

	// ApplySettings validates and installs a new configuration. Chase offsets are reset
	// to the new values and the active mode is reset.
	//
	// Parameters:
	//   - s: the new configuration
	//
	// Returns:
	//   - error: the validation error, in which case nothing changes
	ApplySettings(s Settings) error

	// OnModeChange registers an observer for completed transitions.
	//
	// Parameters:
	//   - fn: the observer
	//
	// Returns:
	//   - func(): removes the observer
	OnModeChange(fn ModeObserver) func()

	// EarlyUpdate samples input and smooths FOV and acceleration.
	//
	// Parameters:
	//   - dt: frame time in seconds
	EarlyUpdate(dt float32)

	// PhysicsUpdate samples the target's velocity and runs the occlusion pre-check.
	//
	// Parameters:
	//   - dt: physics step in seconds
	PhysicsUpdate(dt float32)

	// LateUpdate runs any pending transition reset and then computes the pose for the active
	// mode. A fallback to Chase raised by the pose computation is reset in the same call.
	//
	// Parameters:
	//   - dt: frame time in seconds
	LateUpdate(dt float32)

	// Close unsubscribes from input and detaches the render node.
	Close()
}

type rigImpl struct {
	mu *sync.Mutex

	settings     Settings
	mode         Mode
	previousMode Mode

	target     Target
	generation uint64
	enabled    bool
	rendering  bool

	anchor *node.Node
	pivot  *node.Node
	render *node.Node

	orbit     *OrbitTracker
	occlusion *OcclusionResolver
	recoil    *RecoilBuffer
	focus     *AutoFocusTask

	calculators [modeCount]PoseCalculator
	fixed       FixedTracker
	cinematic   CinematicTracker

	distance  float32
	height    float32
	fov       float32
	targetFov float32
	orthoSize float32
	tilt      float32

	lastVelocity mgl32.Vec3
	hasVelocity  bool
	accelRaw     mgl32.Vec3
	accel        mgl32.Vec3

	occluded   bool
	orbitValid bool
	lookBack   bool
	orbitHeld  bool

	caster       Raycaster
	input        input.Dispatcher
	subscription input.Subscription

	observers  map[uint64]ModeObserver
	observerID uint64
}

var _ Rig = &rigImpl{}

// NewRig creates a rig in its configured initial mode with no target.
//
// Parameters:
//   - options: functional options to configure the rig
//
// Returns:
//   - Rig: the newly created rig
func NewRig(options ...RigBuilderOption) Rig {
	r := &rigImpl{
		mu:         &sync.Mutex{},
		settings:   DefaultSettings(),
		enabled:    true,
		rendering:  true,
		anchor:     node.NewNode("rig_anchor"),
		orbitValid: true,
		observers:  make(map[uint64]ModeObserver),
	}
	r.pivot = node.NewNode("rig_pivot", node.WithParent(r.anchor))
	r.render = node.NewNode("rig_render", node.WithParent(r.pivot))
	r.calculators = [modeCount]PoseCalculator{
		ModeChase:     &chaseCalculator{},
		ModeHood:      &hoodCalculator{},
		ModeWheel:     &wheelCalculator{},
		ModeFixed:     &fixedCalculator{},
		ModeCinematic: &cinematicCalculator{},
		ModeTop:       &topCalculator{},
	}

	for _, option := range options {
		option(r)
	}

	if err := r.settings.Validate(); err != nil {
		log.Printf("[Rig] invalid settings, using defaults: %v", err)
		r.settings = DefaultSettings()
	}
	r.mode = r.settings.Mode
	r.previousMode = r.mode
	r.orbit = NewOrbitTracker(r.settings.Orbit)
	r.orbit.Reset(r.settings.Chase.StartOrbit.X(), r.settings.Chase.StartOrbit.Y())
	r.occlusion = NewOcclusionResolver(r.caster, r.settings.OcclusionMask)
	r.recoil = NewRecoilBuffer(r.settings.Recoil.DecayRate, r.settings.Recoil.FollowRate)
	r.distance = r.settings.Chase.Distance
	r.height = r.settings.Chase.Height
	fr := r.settings.FovRange(r.mode)
	r.fov = fr.Default
	r.targetFov = fr.Default
	r.orthoSize = r.settings.Top.OrthoMin

	if r.input != nil {
		r.subscription = r.input.Subscribe(r.handleInput)
	}
	return r
}

func (r *rigImpl) SetTarget(t Target) {
	if t == nil {
		r.RemoveTarget()
		return
	}
	r.mu.Lock()
	from := r.previousMode
	r.generation++
	r.focus = nil
	r.target = t
	r.hasVelocity = false
	r.accelRaw = mgl32.Vec3{}
	r.accel = mgl32.Vec3{}
	r.anchor.SetWorldPose(common.Pose{Position: t.Node().WorldPosition(), Rotation: mgl32.QuatIdent()})
	ctx := r.poseContext(0)
	if !r.calculators[r.mode].Available(ctx) {
		r.mode = ModeChase
	}
	r.calculators[from].Exit(ctx)
	r.resetRig()
	changed := r.mode != r.previousMode
	r.previousMode = r.mode
	to := r.mode
	observers := r.observerList()
	r.mu.Unlock()

	if changed {
		notify(observers, from, to)
	}
}

func (r *rigImpl) RemoveTarget() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.target == nil {
		return
	}
	r.calculators[r.mode].Exit(r.poseContext(0))
	r.generation++
	r.focus = nil
	r.target = nil
	r.hasVelocity = false
	r.occluded = false
	r.render.SetParent(r.pivot)
	r.render.ResetLocal()
}

func (r *rigImpl) Target() Target {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.target
}

func (r *rigImpl) ToggleRendering(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rendering = enabled
	r.render.SetActive(enabled)
}

func (r *rigImpl) RenderingEnabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rendering
}

func (r *rigImpl) SetEnabled(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.enabled == enabled {
		return
	}
	r.enabled = enabled
	if !enabled {
		r.generation++
	}
}

func (r *rigImpl) Enabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enabled
}

func (r *rigImpl) AddDragDelta(dx, dy float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orbit.AddDrag(dx, dy)
}

func (r *rigImpl) SetLookBack(held bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookBack = held
}

func (r *rigImpl) SetOrbitHeld(held bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orbitHeld = held
}

func (r *rigImpl) Kick(pos mgl32.Vec3, rot mgl32.Quat) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recoil.Kick(pos, rot)
}

func (r *rigImpl) AutoFocus(targets ...Bounded) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.settings.Focus.Enabled {
		return fmt.Errorf("rig: %w", ErrFocusDisabled)
	}
	extent := FocusExtent(targets...)
	gen := r.generation
	task, err := NewAutoFocusTask(extent, len(targets), r.settings.Focus.Speed, func() bool {
		return r.enabled && r.target != nil && r.generation == gen
	})
	if err != nil {
		return err
	}
	r.focus = task
	d, h := task.Targets()
	log.Printf("[Rig] auto-focus started: extent %.2f -> distance %.2f height %.2f over %.1fs", extent, d, h, task.Duration())
	return nil
}

func (r *rigImpl) Focusing() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.focus != nil
}

func (r *rigImpl) Fov() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fov
}

func (r *rigImpl) TargetFov() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.targetFov
}

func (r *rigImpl) Projection() Projection {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mode == ModeTop && r.settings.Top.Orthographic {
		return ProjectionOrthographic
	}
	return ProjectionPerspective
}

func (r *rigImpl) OrthoSize() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.orthoSize
}

func (r *rigImpl) Pose() common.Pose {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.render.WorldPose()
}

func (r *rigImpl) RenderNode() *node.Node {
	return r.render
}

func (r *rigImpl) ChaseOffset() (float32, float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.distance, r.height
}

func (r *rigImpl) Orbit() (float32, float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.orbit.Angles()
}

func (r *rigImpl) Settings() Settings {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.settings
}

func (r *rigImpl) ApplySettings(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings = s
	r.orbit.SetSettings(s.Orbit)
	r.occlusion.SetMask(s.OcclusionMask)
	r.recoil.SetRates(s.Recoil.DecayRate, s.Recoil.FollowRate)
	r.focus = nil
	r.distance = s.Chase.Distance
	r.height = s.Chase.Height
	// a pending mode change is reset by the next late phase
	if r.target != nil && r.mode == r.previousMode {
		r.resetRig()
	} else {
		r.fov = s.FovRange(r.mode).Clamp(r.fov)
		r.targetFov = s.FovRange(r.mode).Default
	}
	return nil
}

func (r *rigImpl) OnModeChange(fn ModeObserver) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observerID++
	id := r.observerID
	r.observers[id] = fn
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.observers, id)
	}
}

func (r *rigImpl) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.input != nil {
		r.input.Unsubscribe(r.subscription)
		r.input = nil
	}
	r.generation++
	r.focus = nil
	r.target = nil
	r.observers = make(map[uint64]ModeObserver)
	r.render.SetParent(r.pivot)
	r.render.ResetLocal()
}

func (r *rigImpl) handleInput(e input.Event) {
	switch e.Kind {
	case input.EventCycleCamera:
		r.CycleMode()
	case input.EventSetMode:
		r.SetMode(Mode(e.Mode))
	case input.EventLookBack:
		r.SetLookBack(e.Held)
	case input.EventHoldOrbit:
		r.SetOrbitHeld(e.Held)
	case input.EventDrag:
		r.AddDragDelta(e.Delta.X(), e.Delta.Y())
	}
}

// observerList snapshots the registered observers in registration order.
// Caller must hold the mutex.
func (r *rigImpl) observerList() []ModeObserver {
	ids := make([]uint64, 0, len(r.observers))
	for id := range r.observers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]ModeObserver, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.observers[id])
	}
	return out
}

func notify(observers []ModeObserver, from, to Mode) {
	for _, fn := range observers {
		fn(from, to)
	}
}
