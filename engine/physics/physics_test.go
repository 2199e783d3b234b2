package physics

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-rig/common"
	"github.com/Carmen-Shannon/oxy-rig/engine/rig"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	epsilon = 1e-3
	frame   = float32(1.0 / 60)
)

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) < epsilon
}

func vecNear(a, b mgl32.Vec3, tol float32) bool {
	return a.Sub(b).Len() <= tol
}

func mustAdd(t *testing.T, w World, o Obstacle) {
	t.Helper()
	if err := w.AddObstacle(o); err != nil {
		t.Fatalf("add obstacle: %v", err)
	}
}

func TestLinecastGroundAndBoxes(t *testing.T) {
	w := NewWorld()
	mustAdd(t, w, Obstacle{Min: mgl32.Vec3{-1, 0, -1}, Max: mgl32.Vec3{1, 2, 1}, Layer: common.LayerStatic})
	mustAdd(t, w, Obstacle{Min: mgl32.Vec3{-1, 0, 4}, Max: mgl32.Vec3{1, 2, 5}, Layer: common.LayerProp, Owner: 9})
	mustAdd(t, w, Obstacle{Min: mgl32.Vec3{-3, 0, -3}, Max: mgl32.Vec3{3, 3, 3}, Layer: common.LayerTrigger, Trigger: true})

	cases := []struct {
		name     string
		from, to mgl32.Vec3
		mask     common.Layer
		want     []common.RayHit
	}{
		{
			name: "ground_only",
			from: mgl32.Vec3{10, 10, 10},
			to:   mgl32.Vec3{10, -10, 10},
			mask: common.LayerAll,
			want: []common.RayHit{{Point: mgl32.Vec3{10, 0, 10}, Normal: common.Up, Distance: 10, Layer: common.LayerGround}},
		},
		{
			name: "through_both_boxes",
			from: mgl32.Vec3{0, 1, -10},
			to:   mgl32.Vec3{0, 1, 10},
			mask: common.LayerStatic | common.LayerProp,
			want: []common.RayHit{
				{Point: mgl32.Vec3{0, 1, -1}, Normal: mgl32.Vec3{0, 0, -1}, Distance: 9, Layer: common.LayerStatic},
				{Point: mgl32.Vec3{0, 1, 4}, Normal: mgl32.Vec3{0, 0, -1}, Distance: 14, Layer: common.LayerProp, Owner: 9},
			},
		},
		{
			name: "masked_out",
			from: mgl32.Vec3{0, 1, -10},
			to:   mgl32.Vec3{0, 1, 10},
			mask: common.LayerProp,
			want: []common.RayHit{
				{Point: mgl32.Vec3{0, 1, 4}, Normal: mgl32.Vec3{0, 0, -1}, Distance: 14, Layer: common.LayerProp, Owner: 9},
			},
		},
		{
			name: "passes_over_the_top",
			from: mgl32.Vec3{0, 3.5, -10},
			to:   mgl32.Vec3{0, 3.5, 10},
			mask: common.LayerAll,
		},
		{
			name: "trigger_reported",
			from: mgl32.Vec3{-10, 2.5, 0},
			to:   mgl32.Vec3{10, 2.5, 0},
			mask: common.LayerTrigger,
			want: []common.RayHit{
				{Point: mgl32.Vec3{-3, 2.5, 0}, Normal: mgl32.Vec3{-1, 0, 0}, Distance: 7, Layer: common.LayerTrigger, Trigger: true},
			},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := w.Linecast(c.from, c.to, c.mask)
			if len(got) != len(c.want) {
				t.Fatalf("hits = %+v, want %+v", got, c.want)
			}
			for i, want := range c.want {
				h := got[i]
				if !vecNear(h.Point, want.Point, epsilon) ||
					!vecNear(h.Normal, want.Normal, epsilon) ||
					!approx(h.Distance, want.Distance) ||
					h.Layer != want.Layer || h.Trigger != want.Trigger || h.Owner != want.Owner {
					t.Fatalf("hit %d = %+v, want %+v", i, h, want)
				}
			}
		})
	}
}

func TestLinecastStartsInside(t *testing.T) {
	w := NewWorld()
	mustAdd(t, w, Obstacle{Min: mgl32.Vec3{-1, 0, -1}, Max: mgl32.Vec3{1, 2, 1}})
	hits := w.Linecast(mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 1, 10}, common.LayerStatic)
	if len(hits) != 1 || hits[0].Distance != 0 {
		t.Fatalf("hits = %+v, want one hit at distance 0", hits)
	}
	if !vecNear(hits[0].Normal, mgl32.Vec3{0, 0, -1}, epsilon) {
		t.Fatalf("normal = %v, want facing back along the segment", hits[0].Normal)
	}
}

func TestAddObstacleRejectsEmpty(t *testing.T) {
	w := NewWorld()
	cases := []Obstacle{
		{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{0, 1, 1}},
		{Min: mgl32.Vec3{0, 2, 0}, Max: mgl32.Vec3{1, 1, 1}},
		{Min: mgl32.Vec3{float32(math.NaN()), 0, 0}, Max: mgl32.Vec3{1, 1, 1}},
	}
	for _, o := range cases {
		if err := w.AddObstacle(o); err == nil {
			t.Fatalf("AddObstacle(%+v) succeeded, want error", o)
		}
	}
	if w.Obstacles() != 0 {
		t.Fatalf("obstacles = %d, want 0", w.Obstacles())
	}
}

func TestVehicleDrives(t *testing.T) {
	w := NewWorld()
	v := NewVehicle(7)
	if err := w.AddVehicle(v); err != nil {
		t.Fatal(err)
	}
	if err := w.AddVehicle(v); err == nil {
		t.Fatalf("adding a vehicle twice should fail")
	}

	v.SetControls(1, 0)
	for range 120 {
		w.Step(frame)
	}

	pos := v.Node().WorldPosition()
	if pos.Z() < 10 || !approx(pos.X(), 0) {
		t.Fatalf("position after 2s = %v, want well ahead on +Z", pos)
	}
	if !approx(v.Speed(), 24) {
		t.Fatalf("speed = %v, want 24", v.Speed())
	}
	if v.Direction() != 1 || !v.Grounded() {
		t.Fatalf("direction = %d grounded = %v", v.Direction(), v.Grounded())
	}
	if lv := v.LocalVelocity(); !approx(lv.Z(), v.Speed()) || !approx(lv.X(), 0) {
		t.Fatalf("local velocity = %v", lv)
	}

	v.SetControls(1, 1)
	for range 30 {
		w.Step(frame)
	}
	if v.Heading() <= 0 {
		t.Fatalf("heading = %v, want a right turn", v.Heading())
	}
	if v.Velocity().X() <= 0 {
		t.Fatalf("velocity = %v, want drifting to +X", v.Velocity())
	}
}

func TestVehicleReverse(t *testing.T) {
	w := NewWorld()
	v := NewVehicle(1, WithTopSpeed(40, 5))
	_ = w.AddVehicle(v)
	v.SetControls(-1, 0)
	for range 120 {
		w.Step(frame)
	}
	if v.Direction() != -1 || !approx(v.Speed(), -5) {
		t.Fatalf("speed = %v direction = %d, want -5 reversing", v.Speed(), v.Direction())
	}
	if lv := v.LocalVelocity(); lv.Z() >= 0 {
		t.Fatalf("local velocity = %v, want negative Z", lv)
	}
}

func TestVehicleJump(t *testing.T) {
	w := NewWorld(WithGravity(10))
	v := NewVehicle(1)
	_ = w.AddVehicle(v)

	v.Jump(5)
	w.Step(frame)
	if v.Grounded() || v.Node().WorldPosition().Y() <= 0 {
		t.Fatalf("vehicle should be airborne after a jump")
	}
	v.Jump(50)
	for range 120 {
		w.Step(frame)
	}
	if !v.Grounded() || v.Node().WorldPosition().Y() != 0 {
		t.Fatalf("vehicle should have landed, y = %v", v.Node().WorldPosition().Y())
	}
}

func TestVehicleAnchorsAndOwnership(t *testing.T) {
	v := NewVehicle(3, WithWheelAnchor(nil))
	if v.HoodAnchor() == nil || v.WheelAnchor() != nil {
		t.Fatalf("anchors = %v, %v; want hood only", v.HoodAnchor(), v.WheelAnchor())
	}
	if v.HoodAnchor().Parent() != v.Node() {
		t.Fatalf("hood anchor not parented to the vehicle")
	}
	if !v.Owns(3) || v.Owns(0) || v.Owns(4) {
		t.Fatalf("ownership check failed")
	}
}

func TestVehicleFocusExtentSkipsExhaust(t *testing.T) {
	v := NewVehicle(1, WithSize(2, 1.5, 5))
	if got := rig.FocusExtent(v); !approx(got, 2.5) {
		t.Fatalf("focus extent = %v, want 2.5 (mesh only)", got)
	}
}

func TestLinecastHitsVehicle(t *testing.T) {
	w := NewWorld()
	v := NewVehicle(5, WithStart(mgl32.Vec3{0, 0, 10}, 0))
	_ = w.AddVehicle(v)

	hits := w.Linecast(mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 1, 20}, common.LayerVehicle)
	if len(hits) != 1 || hits[0].Owner != 5 || !approx(hits[0].Distance, 7.9) {
		t.Fatalf("hits = %+v, want the vehicle body at 7.9", hits)
	}

	occ := rig.NewOcclusionResolver(w, common.LayerVehicle|common.LayerStatic)
	if occ.TestOcclusion(v, mgl32.Vec3{0, 1, 10}, mgl32.Vec3{0, 1, 0}) {
		t.Fatalf("the followed vehicle must not occlude itself")
	}
}

func TestImpactReported(t *testing.T) {
	w := NewWorld()
	mustAdd(t, w, Obstacle{Min: mgl32.Vec3{-5, 0, 6}, Max: mgl32.Vec3{5, 3, 7}})
	mustAdd(t, w, Obstacle{Min: mgl32.Vec3{-5, 3, 2}, Max: mgl32.Vec3{5, 4, 3}, Layer: common.LayerProp})

	v := NewVehicle(2)
	_ = w.AddVehicle(v)

	var impacts []Impact
	w.OnImpact(func(i Impact) { impacts = append(impacts, i) })

	v.SetControls(1, 0)
	for range 120 {
		w.Step(frame)
	}

	if len(impacts) == 0 {
		t.Fatalf("no impact reported")
	}
	first := impacts[0]
	if first.Vehicle.ID() != 2 || first.Normal.Z() < 0.5 || first.Strength <= 0 {
		t.Fatalf("impact = %+v, want the wall ahead", first)
	}
	if z := v.Node().WorldPosition().Z(); z > 6 {
		t.Fatalf("vehicle at z = %v passed through the wall", z)
	}

	pos, rot := ImpactKick(first, 0.1, 0.5)
	if pos.Z() >= 0 || pos.Len() > 0.5+epsilon || !common.QuatFinite(rot) {
		t.Fatalf("kick = %v %v", pos, rot)
	}
}
