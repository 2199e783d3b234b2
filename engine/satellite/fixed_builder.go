package satellite

import (
	"github.com/Carmen-Shannon/oxy-rig/common"
	"github.com/Carmen-Shannon/oxy-rig/engine/rig"
	"github.com/go-gl/mathgl/mgl32"
)

// FixedRigBuilderOption is a functional option for configuring a FixedRig.
type FixedRigBuilderOption func(*fixedRigImpl)

// WithRaycaster sets the scene query used to probe vantage points.
//
// Parameters:
//   - caster: a concurrency-safe line query provider
//
// Returns:
//   - FixedRigBuilderOption: a function that sets the raycaster
func WithRaycaster(caster rig.Raycaster) FixedRigBuilderOption {
	return func(f *fixedRigImpl) {
		f.caster = caster
	}
}

// WithSeed fixes the probe random source so repositions are reproducible.
//
// Parameters:
//   - seed: the random seed
//
// Returns:
//   - FixedRigBuilderOption: a function that sets the seed
func WithSeed(seed int64) FixedRigBuilderOption {
	return func(f *fixedRigImpl) {
		f.seed = seed
	}
}

// WithProbes sets how many candidate points are tested per reposition.
//
// Parameters:
//   - n: probe count
//
// Returns:
//   - FixedRigBuilderOption: a function that sets the probe count
func WithProbes(n int) FixedRigBuilderOption {
	return func(f *fixedRigImpl) {
		f.probes = n
	}
}

// WithWorkers sets the worker pool size used for probing.
//
// Parameters:
//   - n: number of workers
//
// Returns:
//   - FixedRigBuilderOption: a function that sets the worker count
func WithWorkers(n int) FixedRigBuilderOption {
	return func(f *fixedRigImpl) {
		f.workers = common.Coalesce(n, f.workers)
	}
}

// WithProbeRing sets the distance band around the target in which probes land and the
// half angle, in degrees, of the arc ahead of the target they are spread across.
//
// Parameters:
//   - minRadius: nearest probe distance
//   - maxRadius: farthest probe distance
//   - spreadDeg: half angle of the probe arc
//
// Returns:
//   - FixedRigBuilderOption: a function that sets the probe ring
func WithProbeRing(minRadius, maxRadius, spreadDeg float32) FixedRigBuilderOption {
	return func(f *fixedRigImpl) {
		f.minRadius = minRadius
		f.maxRadius = maxRadius
		f.spread = mgl32.DegToRad(spreadDeg)
	}
}

// WithMaxDistance sets the distance past which the satellite repositions.
//
// Parameters:
//   - d: maximum watch distance
//
// Returns:
//   - FixedRigBuilderOption: a function that sets the max distance
func WithMaxDistance(d float32) FixedRigBuilderOption {
	return func(f *fixedRigImpl) {
		f.maxDistance = d
	}
}

// WithEyeHeight sets how high above the probed ground the camera sits.
//
// Parameters:
//   - h: height above ground
//
// Returns:
//   - FixedRigBuilderOption: a function that sets the eye height
func WithEyeHeight(h float32) FixedRigBuilderOption {
	return func(f *fixedRigImpl) {
		f.eyeHeight = h
	}
}

// WithFallback sets the offset used when no probe is valid: height above the target and
// distance behind it.
//
// Parameters:
//   - height: vertical offset
//   - back: distance behind the target
//
// Returns:
//   - FixedRigBuilderOption: a function that sets the fallback offset
func WithFallback(height, back float32) FixedRigBuilderOption {
	return func(f *fixedRigImpl) {
		f.fallbackHeight = height
		f.fallbackBack = back
	}
}

// WithMasks sets the layers probes land on and the layers that block the view.
//
// Parameters:
//   - ground: layers a probe can land on
//   - block: layers that hide the target
//
// Returns:
//   - FixedRigBuilderOption: a function that sets the masks
func WithMasks(ground, block common.Layer) FixedRigBuilderOption {
	return func(f *fixedRigImpl) {
		f.groundMask = ground
		f.blockMask = block
	}
}
