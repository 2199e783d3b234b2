// Package sim assembles a complete follow-camera scenario: a physics course, an
// autopilot-driven vehicle, the camera rig with both satellites, the cinematic FOV curve
// and the collision recoil wiring. The rigsim and rigview commands both run on it.
package sim

import (
	"fmt"
	"log"
	"sync"

	"github.com/Carmen-Shannon/oxy-rig/engine/curve"
	"github.com/Carmen-Shannon/oxy-rig/engine/input"
	"github.com/Carmen-Shannon/oxy-rig/engine/physics"
	"github.com/Carmen-Shannon/oxy-rig/engine/registry"
	"github.com/Carmen-Shannon/oxy-rig/engine/rig"
	"github.com/Carmen-Shannon/oxy-rig/engine/satellite"
)

const vehicleID = 1

// Scenario owns every simulated component. Physics and Motion are meant to be passed to
// loop.WithPhysicsCallback and loop.WithMotionCallback.
type Scenario struct {
	mu *sync.Mutex

	Dispatcher input.Dispatcher
	World      physics.World
	Vehicle    physics.Vehicle
	Rig        rig.Rig
	Fixed      satellite.FixedRig
	Cinematic  satellite.CinematicRig
	Course     Course

	curve     *curve.Driver
	autopilot *Autopilot

	settings  rig.Settings
	seed      int64
	sampler   curve.Sampler
	kickScale float32
	kickLimit float32
	cruise    float32
	register  bool

	impacts     int
	transitions int
	unsubscribe func()
	closeOnce   sync.Once
}

// NewScenario builds and wires a scenario. The rig starts following the vehicle and, unless
// disabled, is published to the registry.
//
// Parameters:
//   - options: functional options to configure the scenario
//
// Returns:
//   - *Scenario: the assembled scenario
//   - error: an error if the course or FOV curve cannot be built
func NewScenario(options ...ScenarioBuilderOption) (*Scenario, error) {
	s := &Scenario{
		mu:        &sync.Mutex{},
		Course:    DefaultCourse(),
		settings:  rig.DefaultSettings(),
		seed:      1,
		kickScale: 0.05,
		kickLimit: 0.6,
		cruise:    18,
		register:  true,
	}
	for _, option := range options {
		option(s)
	}

	s.World = physics.NewWorld()
	for i, o := range s.Course.Obstacles {
		if err := s.World.AddObstacle(o); err != nil {
			return nil, fmt.Errorf("sim: course obstacle %d: %w", i, err)
		}
	}

	s.Vehicle = physics.NewVehicle(vehicleID, physics.WithStart(s.Course.Start, s.Course.StartYaw))
	if err := s.World.AddVehicle(s.Vehicle); err != nil {
		return nil, fmt.Errorf("sim: %w", err)
	}

	s.Fixed = satellite.NewFixedRig(
		satellite.WithRaycaster(s.World),
		satellite.WithSeed(s.seed),
	)
	s.Cinematic = satellite.NewCinematicRig(
		satellite.WithInitialFov(s.settings.Cinematic.Fov.Default),
	)
	s.Fixed.SetEnabled(s.settings.Fixed.Enabled)
	s.Cinematic.SetEnabled(s.settings.Cinematic.Enabled)

	s.Dispatcher = input.NewDispatcher()
	s.Rig = rig.NewRig(
		rig.WithSettings(s.settings),
		rig.WithRaycaster(s.World),
		rig.WithFixedRig(s.Fixed),
		rig.WithCinematicRig(s.Cinematic),
		rig.WithInput(s.Dispatcher),
	)
	s.Rig.SetTarget(s.Vehicle)

	if s.sampler == nil {
		sampler, err := curve.NewSampler([]byte(curve.DefaultScript))
		if err != nil {
			return nil, fmt.Errorf("sim: default fov curve: %w", err)
		}
		s.sampler = sampler
	}
	s.curve = curve.NewDriver(s.sampler, s.Cinematic)
	s.autopilot = NewAutopilot(s.Course.Waypoints, s.cruise)

	s.World.OnImpact(s.handleImpact)
	s.unsubscribe = s.Rig.OnModeChange(s.handleModeChange)

	if s.register {
		registry.Set(s.Rig)
	}
	return s, nil
}

// Physics advances the world by one fixed step.
func (s *Scenario) Physics(dt float32) {
	s.World.Step(dt)
}

// Motion runs the per-frame target logic: the autopilot and, in Cinematic mode, the FOV
// curve.
func (s *Scenario) Motion(dt float32) {
	s.mu.Lock()
	auto := s.autopilot
	s.mu.Unlock()
	if auto != nil {
		auto.Drive(s.Vehicle)
	}

	if s.Rig.Mode() == rig.ModeCinematic {
		distance := s.Vehicle.Node().WorldPosition().Sub(s.Cinematic.Node().WorldPosition()).Len()
		s.curve.Update(dt, distance, s.Vehicle.Speed())
	}
}

// SetAutopilot turns the autopilot on or off. With it off the vehicle keeps whatever
// controls were last set, so a human driver can take over through Vehicle.SetControls.
func (s *Scenario) SetAutopilot(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !enabled {
		s.autopilot = nil
		return
	}
	if s.autopilot == nil {
		s.autopilot = NewAutopilot(s.Course.Waypoints, s.cruise)
	}
}

// Autopilot returns the active autopilot, or nil when a human is driving.
func (s *Scenario) Autopilot() *Autopilot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.autopilot
}

// Impacts returns the number of collisions that kicked the camera.
func (s *Scenario) Impacts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.impacts
}

// Transitions returns the number of completed mode changes.
func (s *Scenario) Transitions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transitions
}

// Close detaches the rig from its input and the registry.
func (s *Scenario) Close() {
	s.closeOnce.Do(func() {
		s.unsubscribe()
		s.Rig.Close()
		registry.Clear(s.Rig)
	})
}

func (s *Scenario) handleImpact(i physics.Impact) {
	pos, rot := physics.ImpactKick(i, s.kickScale, s.kickLimit)
	s.Rig.Kick(pos, rot)

	s.mu.Lock()
	s.impacts++
	s.mu.Unlock()
	log.Printf("[Sim] impact strength %.1f, camera kicked %.2f", i.Strength, pos.Len())
}

func (s *Scenario) handleModeChange(from, to rig.Mode) {
	if to == rig.ModeCinematic {
		s.curve.Reset()
	}
	s.mu.Lock()
	s.transitions++
	s.mu.Unlock()
}
