package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Clamp limits v to the closed range [lo, hi].
//
// Parameters:
//   - v: the value to clamp
//   - lo: lower bound
//   - hi: upper bound
//
// Returns:
//   - float32: v limited to [lo, hi]
func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 limits v to [0, 1].
func Clamp01(v float32) float32 {
	return Clamp(v, 0, 1)
}

// Lerp linearly interpolates between a and b. The factor t is clamped to [0, 1].
//
// Parameters:
//   - a: value at t = 0
//   - b: value at t = 1
//   - t: interpolation factor
//
// Returns:
//   - float32: the interpolated value
func Lerp(a, b, t float32) float32 {
	return a + (b-a)*Clamp01(t)
}

// InverseLerp returns where v lies between a and b as a factor clamped to [0, 1].
// Returns 0 when a and b coincide.
//
// Parameters:
//   - a: value mapped to 0
//   - b: value mapped to 1
//   - v: the value to locate
//
// Returns:
//   - float32: the clamped factor
func InverseLerp(a, b, v float32) float32 {
	if a == b {
		return 0
	}
	return Clamp01((v - a) / (b - a))
}

// DampFactor converts a per-second rate into a frame-rate independent interpolation factor.
// A rate of zero or less yields 0 (no movement).
//
// Parameters:
//   - rate: convergence rate per second
//   - dt: frame delta time in seconds
//
// Returns:
//   - float32: factor in [0, 1)
func DampFactor(rate, dt float32) float32 {
	if rate <= 0 || dt <= 0 {
		return 0
	}
	return 1 - float32(math.Exp(float64(-rate*dt)))
}

// Damp exponentially smooths current toward target at the given rate.
//
// Parameters:
//   - current: the current value
//   - target: the value to approach
//   - rate: convergence rate per second
//   - dt: frame delta time in seconds
//
// Returns:
//   - float32: the smoothed value
func Damp(current, target, rate, dt float32) float32 {
	return current + (target-current)*DampFactor(rate, dt)
}

// DampVec3 is the vector form of Damp.
func DampVec3(current, target mgl32.Vec3, rate, dt float32) mgl32.Vec3 {
	return current.Add(target.Sub(current).Mul(DampFactor(rate, dt)))
}

// MoveTowards moves current toward target by at most maxDelta without overshooting.
//
// Parameters:
//   - current: the current value
//   - target: the value to approach
//   - maxDelta: maximum step size (non-negative)
//
// Returns:
//   - float32: the stepped value
func MoveTowards(current, target, maxDelta float32) float32 {
	d := target - current
	if float32(math.Abs(float64(d))) <= maxDelta {
		return target
	}
	if d > 0 {
		return current + maxDelta
	}
	return current - maxDelta
}

// DeltaAngle returns the shortest signed difference from a to b in radians, in (-Pi, Pi].
func DeltaAngle(a, b float32) float32 {
	d := float32(math.Mod(float64(b-a), 2*math.Pi))
	if d > math.Pi {
		d -= 2 * math.Pi
	} else if d <= -math.Pi {
		d += 2 * math.Pi
	}
	return d
}

// DampAngle smooths an angle in radians toward target along the shortest arc.
func DampAngle(current, target, rate, dt float32) float32 {
	return current + DeltaAngle(current, target)*DampFactor(rate, dt)
}

// IsFinite reports whether f is neither NaN nor infinite.
func IsFinite(f float32) bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}

// Vec3Finite reports whether every component of v is finite.
func Vec3Finite(v mgl32.Vec3) bool {
	return IsFinite(v[0]) && IsFinite(v[1]) && IsFinite(v[2])
}

// QuatFinite reports whether every component of q is finite.
func QuatFinite(q mgl32.Quat) bool {
	return IsFinite(q.W) && Vec3Finite(q.V)
}
