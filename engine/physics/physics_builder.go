package physics

import "github.com/go-gl/mathgl/mgl32"

// WorldBuilderOption is a functional option for configuring a World.
type WorldBuilderOption func(*worldImpl)

// WithGroundLevel sets the height of the ground plane.
//
// Parameters:
//   - y: ground height
//
// Returns:
//   - WorldBuilderOption: a function that sets the ground level
func WithGroundLevel(y float32) WorldBuilderOption {
	return func(w *worldImpl) {
		w.ground = y
	}
}

// WithGravity sets the downward acceleration applied to airborne vehicles.
//
// Parameters:
//   - g: gravity in m/s², positive pulls down
//
// Returns:
//   - WorldBuilderOption: a function that sets gravity
func WithGravity(g float32) WorldBuilderOption {
	return func(w *worldImpl) {
		w.gravity = g
	}
}

// WithOverheadClearance sets the height above ground from which obstacles no longer block
// vehicles.
//
// Parameters:
//   - h: clearance height
//
// Returns:
//   - WorldBuilderOption: a function that sets the clearance
func WithOverheadClearance(h float32) WorldBuilderOption {
	return func(w *worldImpl) {
		w.overheadClear = h
	}
}

// VehicleBuilderOption is a functional option for configuring a Vehicle.
type VehicleBuilderOption func(*vehicleImpl)

// WithSize sets the body dimensions.
//
// Parameters:
//   - width: X extent
//   - height: Y extent
//   - length: Z extent
//
// Returns:
//   - VehicleBuilderOption: a function that sets the size
func WithSize(width, height, length float32) VehicleBuilderOption {
	return func(v *vehicleImpl) {
		v.width = width
		v.height = height
		v.length = length
	}
}

// WithTopSpeed sets the forward and reverse speed limits.
//
// Parameters:
//   - forward: maximum forward speed
//   - reverse: maximum reverse speed (positive)
//
// Returns:
//   - VehicleBuilderOption: a function that sets the limits
func WithTopSpeed(forward, reverse float32) VehicleBuilderOption {
	return func(v *vehicleImpl) {
		v.maxSpeed = forward
		v.maxReverse = reverse
	}
}

// WithHandling sets acceleration, coasting drag and turn rate.
//
// Parameters:
//   - accel: acceleration at full throttle
//   - drag: deceleration with no throttle
//   - turnRate: yaw rate at full steer, radians per second
//
// Returns:
//   - VehicleBuilderOption: a function that sets handling
func WithHandling(accel, drag, turnRate float32) VehicleBuilderOption {
	return func(v *vehicleImpl) {
		v.accel = accel
		v.drag = drag
		v.turnRate = turnRate
	}
}

// WithStart places the vehicle.
//
// Parameters:
//   - pos: start position
//   - yaw: start heading in radians
//
// Returns:
//   - VehicleBuilderOption: a function that sets the start pose
func WithStart(pos mgl32.Vec3, yaw float32) VehicleBuilderOption {
	return func(v *vehicleImpl) {
		v.yaw = yaw
		v.y = pos.Y()
		v.startPos = pos
	}
}

// WithHoodAnchor sets the hood camera attachment offset, or removes it when offset is nil.
//
// Parameters:
//   - offset: local offset from the vehicle root
//
// Returns:
//   - VehicleBuilderOption: a function that sets the hood anchor
func WithHoodAnchor(offset *mgl32.Vec3) VehicleBuilderOption {
	return func(v *vehicleImpl) {
		v.hoodOffset = offset
	}
}

// WithWheelAnchor sets the steering wheel camera attachment offset, or removes it when
// offset is nil.
//
// Parameters:
//   - offset: local offset from the vehicle root
//
// Returns:
//   - VehicleBuilderOption: a function that sets the wheel anchor
func WithWheelAnchor(offset *mgl32.Vec3) VehicleBuilderOption {
	return func(v *vehicleImpl) {
		v.wheelOffset = offset
	}
}
