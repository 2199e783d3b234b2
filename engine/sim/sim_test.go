package sim

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-rig/common"
	"github.com/Carmen-Shannon/oxy-rig/engine/curve"
	"github.com/Carmen-Shannon/oxy-rig/engine/input"
	"github.com/Carmen-Shannon/oxy-rig/engine/loop"
	"github.com/Carmen-Shannon/oxy-rig/engine/physics"
	"github.com/Carmen-Shannon/oxy-rig/engine/registry"
	"github.com/Carmen-Shannon/oxy-rig/engine/rig"
	"github.com/go-gl/mathgl/mgl32"
)

const frame = float32(1.0 / 60)

func newLoop(s *Scenario) loop.Loop {
	return loop.NewLoop(
		loop.WithRig(s.Rig),
		loop.WithPhysicsCallback(s.Physics),
		loop.WithMotionCallback(s.Motion),
	)
}

func run(l loop.Loop, seconds float32) {
	for range int(seconds / frame) {
		l.Step(frame)
	}
}

func TestScenarioDrivesAndFollows(t *testing.T) {
	s, err := NewScenario()
	if err != nil {
		t.Fatalf("scenario: %v", err)
	}
	defer s.Close()

	if registry.Active() != s.Rig {
		t.Fatalf("scenario rig not published to the registry")
	}

	start := s.Vehicle.Node().WorldPosition()
	l := newLoop(s)
	run(l, 3)

	moved := s.Vehicle.Node().WorldPosition().Sub(start).Len()
	if moved < 10 {
		t.Fatalf("vehicle moved %v m in 3s, want the autopilot to drive it", moved)
	}
	pose := s.Rig.Pose()
	if !pose.Finite() {
		t.Fatalf("rig pose is not finite: %+v", pose)
	}
	if d := pose.Position.Sub(s.Vehicle.Node().WorldPosition()).Len(); d > 15 {
		t.Fatalf("chase camera is %v m from the vehicle", d)
	}

	s.Close()
	if registry.Active() != nil {
		t.Fatalf("Close should clear the registry")
	}
}

func TestScenarioCyclesModesFromInput(t *testing.T) {
	s, err := NewScenario(WithRegistry(false))
	if err != nil {
		t.Fatalf("scenario: %v", err)
	}
	defer s.Close()

	l := newLoop(s)
	run(l, 0.5)

	seen := map[rig.Mode]bool{s.Rig.Mode(): true}
	for range 6 {
		s.Dispatcher.Publish(input.Event{Kind: input.EventCycleCamera})
		run(l, 0.25)
		seen[s.Rig.Mode()] = true
		if !s.Rig.Pose().Finite() {
			t.Fatalf("pose not finite in %v", s.Rig.Mode())
		}
	}
	if len(seen) < 4 {
		t.Fatalf("cycled through %d modes, want most of them", len(seen))
	}
	if s.Transitions() < 6 {
		t.Fatalf("transitions = %d, want one per cycle", s.Transitions())
	}
}

func TestScenarioCurveDrivesCinematicFov(t *testing.T) {
	sampler, err := curve.NewSampler([]byte("fov := 42"))
	if err != nil {
		t.Fatal(err)
	}
	s, err := NewScenario(WithRegistry(false), WithCurve(sampler))
	if err != nil {
		t.Fatalf("scenario: %v", err)
	}
	defer s.Close()

	l := newLoop(s)
	run(l, 0.2)
	if s.Cinematic.TargetFov() == 42 {
		t.Fatalf("curve ran outside Cinematic mode")
	}

	s.Dispatcher.Publish(input.Event{Kind: input.EventSetMode, Mode: int(rig.ModeCinematic)})
	run(l, 0.2)
	if s.Rig.Mode() != rig.ModeCinematic {
		t.Fatalf("mode = %v, want cinematic", s.Rig.Mode())
	}
	if s.Cinematic.TargetFov() != 42 {
		t.Fatalf("cinematic target fov = %v, want the curve's 42", s.Cinematic.TargetFov())
	}
}

func TestScenarioImpactKicksCamera(t *testing.T) {
	course := Course{
		Obstacles: []physics.Obstacle{
			{Min: mgl32.Vec3{-10, 0, 15}, Max: mgl32.Vec3{10, 3, 17}, Layer: common.LayerStatic},
		},
		Waypoints: []mgl32.Vec3{{0, 0, 100}},
	}
	s, err := NewScenario(WithRegistry(false), WithCourse(course), WithCruise(30))
	if err != nil {
		t.Fatalf("scenario: %v", err)
	}
	defer s.Close()

	l := newLoop(s)
	run(l, 4)
	if s.Impacts() == 0 {
		t.Fatalf("driving into the wall produced no camera kick")
	}
	if z := s.Vehicle.Node().WorldPosition().Z(); z > 15 {
		t.Fatalf("vehicle at z = %v passed through the wall", z)
	}
}

func TestAutopilotFollowsWaypoints(t *testing.T) {
	w := physics.NewWorld()
	v := physics.NewVehicle(1)
	_ = w.AddVehicle(v)

	a := NewAutopilot([]mgl32.Vec3{{0, 0, 20}, {30, 0, 20}}, 10)
	for range 60 * 12 {
		a.Drive(v)
		w.Step(frame)
		if a.Next() == 1 {
			break
		}
	}
	if a.Next() != 1 {
		t.Fatalf("autopilot never reached the first waypoint, at %v", v.Node().WorldPosition())
	}
	for range 60 * 3 {
		a.Drive(v)
		w.Step(frame)
	}
	if v.Heading() <= 0.3 {
		t.Fatalf("heading = %v, want the car turned toward +X", v.Heading())
	}
}

func TestScenarioRejectsBadCourse(t *testing.T) {
	course := Course{Obstacles: []physics.Obstacle{{Min: mgl32.Vec3{1, 1, 1}, Max: mgl32.Vec3{0, 0, 0}}}}
	if _, err := NewScenario(WithRegistry(false), WithCourse(course)); err == nil {
		t.Fatalf("expected an error for an inverted obstacle")
	}
}
