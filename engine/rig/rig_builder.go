package rig

import (
	"github.com/Carmen-Shannon/oxy-rig/engine/input"
)

// RigBuilderOption is a functional option for configuring a Rig.
type RigBuilderOption func(*rigImpl)

// WithSettings sets the rig configuration. Invalid settings are replaced by the defaults.
//
// Parameters:
//   - s: the configuration
//
// Returns:
//   - RigBuilderOption: a function that applies the settings
func WithSettings(s Settings) RigBuilderOption {
	return func(r *rigImpl) {
		r.settings = s
	}
}

// WithRaycaster sets the scene query used for occlusion.
//
// Parameters:
//   - caster: the line query provider
//
// Returns:
//   - RigBuilderOption: a function that sets the raycaster
func WithRaycaster(caster Raycaster) RigBuilderOption {
	return func(r *rigImpl) {
		r.caster = caster
	}
}

// WithFixedRig injects the Fixed mode satellite.
//
// Parameters:
//   - f: the satellite, shared across targets
//
// Returns:
//   - RigBuilderOption: a function that sets the satellite
func WithFixedRig(f FixedTracker) RigBuilderOption {
	return func(r *rigImpl) {
		r.fixed = f
	}
}

// WithCinematicRig injects the Cinematic mode satellite.
//
// Parameters:
//   - c: the satellite, shared across targets
//
// Returns:
//   - RigBuilderOption: a function that sets the satellite
func WithCinematicRig(c CinematicTracker) RigBuilderOption {
	return func(r *rigImpl) {
		r.cinematic = c
	}
}

// WithInput subscribes the rig to an input dispatcher. The subscription is dropped by Close.
//
// Parameters:
//   - d: the dispatcher to sample and observe
//
// Returns:
//   - RigBuilderOption: a function that sets the dispatcher
func WithInput(d input.Dispatcher) RigBuilderOption {
	return func(r *rigImpl) {
		r.input = d
	}
}

// WithCalculator replaces the pose calculator for a mode.
//
// Parameters:
//   - m: the mode
//   - c: the calculator
//
// Returns:
//   - RigBuilderOption: a function that installs the calculator
func WithCalculator(m Mode, c PoseCalculator) RigBuilderOption {
	return func(r *rigImpl) {
		if m.Valid() && c != nil {
			r.calculators[m] = c
		}
	}
}
