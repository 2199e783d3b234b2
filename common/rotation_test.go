package common

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

const epsilon = 1e-4

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) <= epsilon
}

func vecNear(a, b mgl32.Vec3, tol float32) bool {
	return a.Sub(b).Len() <= tol
}

func TestEulerRoundTrip(t *testing.T) {
	cases := []struct {
		name             string
		pitch, yaw, roll float32
	}{
		{"identity", 0, 0, 0},
		{"yaw_only", 0, 1.2, 0},
		{"pitch_down", 0.4, 0, 0},
		{"mixed", -0.3, 2.5, 0.2},
		{"reverse_yaw", 0.1, -2.9, -0.15},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			q := QuatFromEuler(c.pitch, c.yaw, c.roll)
			p, y, r := EulerFromQuat(q)
			if !approx(p, c.pitch) || !approx(y, c.yaw) || !approx(r, c.roll) {
				t.Fatalf("got (%v, %v, %v), want (%v, %v, %v)", p, y, r, c.pitch, c.yaw, c.roll)
			}
		})
	}
}

func TestLookRotation(t *testing.T) {
	cases := []struct {
		name    string
		forward mgl32.Vec3
	}{
		{"forward", Forward},
		{"backward", mgl32.Vec3{0, 0, -1}},
		{"right", Right},
		{"diagonal_down", mgl32.Vec3{1, -1, 2}},
		{"straight_down", mgl32.Vec3{0, -1, 0}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			q := LookRotation(c.forward, Up)
			got := q.Rotate(Forward)
			want := c.forward.Normalize()
			if !vecNear(got, want, epsilon) {
				t.Fatalf("rotated forward = %v, want %v", got, want)
			}
		})
	}
}

func TestYaw(t *testing.T) {
	q := mgl32.QuatRotate(0.8, Up)
	if got := Yaw(q); !approx(got, 0.8) {
		t.Fatalf("Yaw = %v, want 0.8", got)
	}
}

func TestDeltaAngle(t *testing.T) {
	cases := []struct {
		a, b, want float32
	}{
		{0, 1, 1},
		{3, -3, float32(2*math.Pi - 6)},
		{-3, 3, float32(6 - 2*math.Pi)},
		{0, 0, 0},
	}
	for _, c := range cases {
		if got := DeltaAngle(c.a, c.b); !approx(got, c.want) {
			t.Errorf("DeltaAngle(%v, %v) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestMoveTowardsAndDamp(t *testing.T) {
	if got := MoveTowards(0, 10, 3); got != 3 {
		t.Fatalf("MoveTowards step = %v, want 3", got)
	}
	if got := MoveTowards(9, 10, 3); got != 10 {
		t.Fatalf("MoveTowards should not overshoot, got %v", got)
	}
	if got := MoveTowards(0, -10, 4); got != -4 {
		t.Fatalf("MoveTowards negative = %v, want -4", got)
	}

	v := float32(0)
	for range 600 {
		v = Damp(v, 5, 10, 1.0/60)
	}
	if !approx(v, 5) {
		t.Fatalf("Damp did not converge, got %v", v)
	}
	if got := Damp(1, 5, 0, 1); got != 1 {
		t.Fatalf("zero rate should not move, got %v", got)
	}
}

func TestLerpClamps(t *testing.T) {
	if got := Lerp(55, 70, 2); got != 70 {
		t.Fatalf("Lerp beyond 1 = %v, want 70", got)
	}
	if got := InverseLerp(0, 150, 150); got != 1 {
		t.Fatalf("InverseLerp = %v, want 1", got)
	}
	if got := InverseLerp(2, 2, 5); got != 0 {
		t.Fatalf("degenerate InverseLerp = %v, want 0", got)
	}
}

func TestFinite(t *testing.T) {
	nan := float32(math.NaN())
	if IsFinite(nan) || IsFinite(float32(math.Inf(1))) {
		t.Fatalf("non-finite values reported finite")
	}
	p := IdentityPose()
	if !p.Finite() {
		t.Fatalf("identity pose should be finite")
	}
	p.Position[1] = nan
	if p.Finite() {
		t.Fatalf("NaN pose reported finite")
	}
}
