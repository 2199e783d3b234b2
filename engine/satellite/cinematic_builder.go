package satellite

// CinematicRigBuilderOption is a functional option for configuring a CinematicRig.
type CinematicRigBuilderOption func(*cinematicRigImpl)

// WithTrackRate sets how quickly the satellite turns to follow the target's heading.
//
// Parameters:
//   - rate: per-second smoothing rate
//
// Returns:
//   - CinematicRigBuilderOption: a function that sets the rate
func WithTrackRate(rate float32) CinematicRigBuilderOption {
	return func(c *cinematicRigImpl) {
		c.trackRate = rate
	}
}

// WithOffset sets the distance and height of the satellite relative to the target.
//
// Parameters:
//   - distance: distance along the satellite's view direction
//   - height: height above the target
//
// Returns:
//   - CinematicRigBuilderOption: a function that sets the offset
func WithOffset(distance, height float32) CinematicRigBuilderOption {
	return func(c *cinematicRigImpl) {
		c.offset = distance
		c.height = height
	}
}

// WithInitialFov sets the FOV reported before any sampler writes one.
//
// Parameters:
//   - fov: field of view in degrees
//
// Returns:
//   - CinematicRigBuilderOption: a function that sets the FOV
func WithInitialFov(fov float32) CinematicRigBuilderOption {
	return func(c *cinematicRigImpl) {
		c.targetFov = fov
	}
}
