package rig

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-rig/common"
	"github.com/go-gl/mathgl/mgl32"
)

func TestRecoilDecays(t *testing.T) {
	r := NewRecoilBuffer(5, 10)
	r.Kick(mgl32.Vec3{0, 0.5, -1}, mgl32.QuatRotate(0.2, common.Forward))

	r.Update(frame)
	off, _ := r.Offset()
	disp, _ := r.Displacement()
	if off.Len() == 0 {
		t.Fatalf("offset did not start following the displacement")
	}
	if off.Len() >= disp.Len() {
		t.Fatalf("offset %v should lag displacement %v", off, disp)
	}

	for range 300 {
		r.Update(frame)
	}
	off, rot := r.Offset()
	if off.Len() > epsilon {
		t.Fatalf("offset did not decay: %v", off)
	}
	if !quatNear(rot, mgl32.QuatIdent(), epsilon) {
		t.Fatalf("rotation did not decay: %v", rot)
	}
}

func TestRecoilClearAndReject(t *testing.T) {
	r := NewRecoilBuffer(5, 10)
	r.Kick(mgl32.Vec3{1, 0, 0}, mgl32.QuatIdent())
	r.Update(frame)
	r.Clear()
	if off, _ := r.Offset(); off != (mgl32.Vec3{}) {
		t.Fatalf("offset after clear = %v", off)
	}

	var zero float32
	r.Kick(mgl32.Vec3{1 / zero, 0, 0}, mgl32.QuatIdent())
	if disp, _ := r.Displacement(); disp != (mgl32.Vec3{}) {
		t.Fatalf("non-finite kick accepted: %v", disp)
	}
}
