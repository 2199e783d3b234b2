package sim

import (
	"github.com/Carmen-Shannon/oxy-rig/engine/curve"
	"github.com/Carmen-Shannon/oxy-rig/engine/rig"
)

// ScenarioBuilderOption is a functional option for configuring a Scenario.
type ScenarioBuilderOption func(*Scenario)

// WithSettings sets the rig profile. The satellites' enabled flags follow it.
//
// Parameters:
//   - settings: the rig settings
//
// Returns:
//   - ScenarioBuilderOption: a function that sets the settings
func WithSettings(settings rig.Settings) ScenarioBuilderOption {
	return func(s *Scenario) {
		s.settings = settings
	}
}

// WithCourse replaces the default circuit.
//
// Parameters:
//   - c: the course
//
// Returns:
//   - ScenarioBuilderOption: a function that sets the course
func WithCourse(c Course) ScenarioBuilderOption {
	return func(s *Scenario) {
		s.Course = c
	}
}

// WithSeed seeds the Fixed satellite's reposition probes.
//
// Parameters:
//   - seed: the random seed
//
// Returns:
//   - ScenarioBuilderOption: a function that sets the seed
func WithSeed(seed int64) ScenarioBuilderOption {
	return func(s *Scenario) {
		s.seed = seed
	}
}

// WithCurve drives the Cinematic FOV from the given sampler instead of curve.DefaultScript.
//
// Parameters:
//   - sampler: the FOV curve
//
// Returns:
//   - ScenarioBuilderOption: a function that sets the curve
func WithCurve(sampler curve.Sampler) ScenarioBuilderOption {
	return func(s *Scenario) {
		s.sampler = sampler
	}
}

// WithKick scales collision impulses into camera recoil.
//
// Parameters:
//   - scale: metres of recoil per unit of impact strength
//   - limit: maximum recoil distance
//
// Returns:
//   - ScenarioBuilderOption: a function that sets the kick response
func WithKick(scale, limit float32) ScenarioBuilderOption {
	return func(s *Scenario) {
		s.kickScale = scale
		s.kickLimit = limit
	}
}

// WithCruise sets the autopilot's straight-line speed.
//
// Parameters:
//   - speed: cruise speed in m/s
//
// Returns:
//   - ScenarioBuilderOption: a function that sets the cruise speed
func WithCruise(speed float32) ScenarioBuilderOption {
	return func(s *Scenario) {
		s.cruise = speed
	}
}

// WithRegistry controls whether the rig is published as the active rig.
//
// Parameters:
//   - enabled: publish to the registry when true (default)
//
// Returns:
//   - ScenarioBuilderOption: a function that sets the flag
func WithRegistry(enabled bool) ScenarioBuilderOption {
	return func(s *Scenario) {
		s.register = enabled
	}
}
