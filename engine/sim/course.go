package sim

import (
	"math"

	"github.com/Carmen-Shannon/oxy-rig/common"
	"github.com/Carmen-Shannon/oxy-rig/engine/physics"
	"github.com/go-gl/mathgl/mgl32"
)

// Course is a closed circuit: the obstacles that line it and the waypoints the autopilot
// drives through, in order.
type Course struct {
	Obstacles []physics.Obstacle
	Waypoints []mgl32.Vec3
	Start     mgl32.Vec3
	StartYaw  float32
}

// DefaultCourse returns a rectangular circuit around a tall infield block, with an overhead
// bridge across the east straight, a trigger gate and an outer wall.
func DefaultCourse() Course {
	const (
		laneX = 40
		laneZ = 60
	)
	return Course{
		Obstacles: []physics.Obstacle{
			// infield block, tall enough to hide the car from satellites across it
			{Min: mgl32.Vec3{-30, 0, -50}, Max: mgl32.Vec3{30, 8, 50}, Layer: common.LayerStatic},
			// bridge over the east straight
			{Min: mgl32.Vec3{33, 4, -4}, Max: mgl32.Vec3{47, 5, 4}, Layer: common.LayerStatic},
			// lap gate
			{Min: mgl32.Vec3{33, 0, 20}, Max: mgl32.Vec3{47, 3, 21}, Layer: common.LayerTrigger, Trigger: true},
			// outer walls
			{Min: mgl32.Vec3{-54, 0, -74}, Max: mgl32.Vec3{54, 3, -72}, Layer: common.LayerStatic},
			{Min: mgl32.Vec3{-54, 0, 72}, Max: mgl32.Vec3{54, 3, 74}, Layer: common.LayerStatic},
			{Min: mgl32.Vec3{-54, 0, -72}, Max: mgl32.Vec3{-52, 3, 72}, Layer: common.LayerStatic},
			{Min: mgl32.Vec3{52, 0, -72}, Max: mgl32.Vec3{54, 3, 72}, Layer: common.LayerStatic},
			// props at the corners
			{Min: mgl32.Vec3{47, 0, 64}, Max: mgl32.Vec3{49, 1.2, 66}, Layer: common.LayerProp, Owner: 100},
			{Min: mgl32.Vec3{-49, 0, -66}, Max: mgl32.Vec3{-47, 1.2, -64}, Layer: common.LayerProp, Owner: 101},
		},
		Waypoints: []mgl32.Vec3{
			{laneX, 0, laneZ},
			{-laneX, 0, laneZ},
			{-laneX, 0, -laneZ},
			{laneX, 0, -laneZ},
		},
		Start:    mgl32.Vec3{laneX, 0, -laneZ + 10},
		StartYaw: 0,
	}
}

// Autopilot steers a vehicle through a course's waypoints.
type Autopilot struct {
	waypoints []mgl32.Vec3
	next      int
	reach     float32
	cruise    float32
	laps      int
}

// NewAutopilot creates an autopilot heading for the first waypoint.
//
// Parameters:
//   - waypoints: the circuit, visited in order and repeated
//   - cruise: speed held on the straights; corners are taken at half of it
//
// Returns:
//   - *Autopilot: the autopilot
func NewAutopilot(waypoints []mgl32.Vec3, cruise float32) *Autopilot {
	return &Autopilot{
		waypoints: waypoints,
		reach:     12,
		cruise:    max(cruise, 1),
	}
}

// Laps returns the number of completed circuits.
func (a *Autopilot) Laps() int {
	return a.laps
}

// Next returns the index of the waypoint being driven to.
func (a *Autopilot) Next() int {
	return a.next
}

// Drive sets the vehicle's controls toward the current waypoint, advancing it once the
// vehicle is within reach.
//
// Parameters:
//   - v: the vehicle to steer
func (a *Autopilot) Drive(v physics.Vehicle) {
	if len(a.waypoints) == 0 {
		v.SetControls(0, 0)
		return
	}

	pos := v.Node().WorldPosition()
	to := a.waypoints[a.next].Sub(pos)
	to[1] = 0
	if to.Len() < a.reach {
		a.next = (a.next + 1) % len(a.waypoints)
		if a.next == 0 {
			a.laps++
		}
		to = a.waypoints[a.next].Sub(pos)
		to[1] = 0
	}

	want := float32(math.Atan2(float64(to.X()), float64(to.Z())))
	diff := common.DeltaAngle(v.Heading(), want)
	steer := common.Clamp(diff*2, -1, 1)

	target := a.cruise
	if math.Abs(float64(diff)) > 0.6 {
		target *= 0.5
	}
	var throttle float32
	switch speed := v.Speed(); {
	case speed < target:
		throttle = 1
	case speed > target+3:
		throttle = -0.5
	}
	v.SetControls(throttle, steer)
}
