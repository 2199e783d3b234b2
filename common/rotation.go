package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// World axes. The engine is Y-up with +Z as the forward direction of an unrotated object
// and +X as its right.
var (
	Up      = mgl32.Vec3{0, 1, 0}
	Forward = mgl32.Vec3{0, 0, 1}
	Right   = mgl32.Vec3{1, 0, 0}
)

// QuatFromEuler builds a rotation from pitch (X), yaw (Y) and roll (Z) angles in radians,
// applied in Y * X * Z order (the same order as a yaw-pitch-roll model matrix).
//
// Parameters:
//   - pitch: rotation around the X axis in radians
//   - yaw: rotation around the Y axis in radians
//   - roll: rotation around the Z axis in radians
//
// Returns:
//   - mgl32.Quat: the combined rotation
func QuatFromEuler(pitch, yaw, roll float32) mgl32.Quat {
	qy := mgl32.QuatRotate(yaw, Up)
	qx := mgl32.QuatRotate(pitch, Right)
	qz := mgl32.QuatRotate(roll, Forward)
	return qy.Mul(qx).Mul(qz)
}

// EulerFromQuat decomposes a rotation into pitch (X), yaw (Y) and roll (Z) angles in radians
// using the Y * X * Z order of QuatFromEuler. Pitch is limited to [-Pi/2, Pi/2].
//
// Parameters:
//   - q: the rotation to decompose (need not be normalized)
//
// Returns:
//   - pitch, yaw, roll: angles in radians
func EulerFromQuat(q mgl32.Quat) (pitch, yaw, roll float32) {
	q = q.Normalize()
	w, x, y, z := float64(q.W), float64(q.V[0]), float64(q.V[1]), float64(q.V[2])

	// Rotation matrix entries R[row][col] needed for the Y*X*Z decomposition.
	r02 := 2 * (x*z + w*y)
	r12 := 2 * (y*z - w*x)
	r22 := 1 - 2*(x*x+y*y)
	r10 := 2 * (x*y + w*z)
	r11 := 1 - 2*(x*x+z*z)

	sp := -r12
	if sp > 1 {
		sp = 1
	} else if sp < -1 {
		sp = -1
	}
	pitch = float32(math.Asin(sp))
	yaw = float32(math.Atan2(r02, r22))
	roll = float32(math.Atan2(r10, r11))
	return
}

// Yaw returns the heading of q around the world Y axis in radians, measured from +Z toward +X.
func Yaw(q mgl32.Quat) float32 {
	f := q.Rotate(Forward)
	return float32(math.Atan2(float64(f[0]), float64(f[2])))
}

// LookRotation builds the rotation whose +Z axis points along forward and whose +Y axis
// lies in the plane of forward and up. When forward is zero or parallel to up, the
// identity (for zero) or a rotation using Forward as the secondary axis is returned.
//
// Parameters:
//   - forward: desired facing direction
//   - up: approximate up direction
//
// Returns:
//   - mgl32.Quat: the look rotation
func LookRotation(forward, up mgl32.Vec3) mgl32.Quat {
	if forward.Len() < 1e-6 {
		return mgl32.QuatIdent()
	}
	f := forward.Normalize()
	r := up.Cross(f)
	if r.Len() < 1e-6 {
		r = Forward.Cross(f)
		if r.Len() < 1e-6 {
			r = Right
		}
	}
	r = r.Normalize()
	u := f.Cross(r)

	// Columns of the rotation matrix are (r, u, f).
	m00, m01, m02 := float64(r[0]), float64(u[0]), float64(f[0])
	m10, m11, m12 := float64(r[1]), float64(u[1]), float64(f[1])
	m20, m21, m22 := float64(r[2]), float64(u[2]), float64(f[2])

	var w, x, y, z float64
	trace := m00 + m11 + m22
	switch {
	case trace > 0:
		s := 0.5 / math.Sqrt(trace+1)
		w = 0.25 / s
		x = (m21 - m12) * s
		y = (m02 - m20) * s
		z = (m10 - m01) * s
	case m00 > m11 && m00 > m22:
		s := 2 * math.Sqrt(1+m00-m11-m22)
		w = (m21 - m12) / s
		x = 0.25 * s
		y = (m01 + m10) / s
		z = (m02 + m20) / s
	case m11 > m22:
		s := 2 * math.Sqrt(1+m11-m00-m22)
		w = (m02 - m20) / s
		x = (m01 + m10) / s
		y = 0.25 * s
		z = (m12 + m21) / s
	default:
		s := 2 * math.Sqrt(1+m22-m00-m11)
		w = (m10 - m01) / s
		x = (m02 + m20) / s
		y = (m12 + m21) / s
		z = 0.25 * s
	}
	return mgl32.Quat{W: float32(w), V: mgl32.Vec3{float32(x), float32(y), float32(z)}}.Normalize()
}

// Slerp spherically interpolates from a to b by t clamped to [0, 1], taking the shortest path.
func Slerp(a, b mgl32.Quat, t float32) mgl32.Quat {
	t = Clamp01(t)
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}
	return mgl32.QuatSlerp(a, b, t).Normalize()
}

// FlatDirection projects v onto the ground plane and normalizes it.
// Returns the zero vector when the projection is degenerate.
func FlatDirection(v mgl32.Vec3) mgl32.Vec3 {
	flat := mgl32.Vec3{v[0], 0, v[2]}
	if flat.Len() < 1e-6 {
		return mgl32.Vec3{}
	}
	return flat.Normalize()
}
