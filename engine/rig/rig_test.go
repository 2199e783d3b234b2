package rig

import (
	"errors"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-rig/common"
	"github.com/Carmen-Shannon/oxy-rig/engine/input"
	"github.com/go-gl/mathgl/mgl32"
)

func TestResetRunsOncePerModeChange(t *testing.T) {
	target := newFakeTarget(1, true)
	r := NewRig()
	r.SetTarget(target)

	var transitions [][2]Mode
	r.OnModeChange(func(from, to Mode) {
		transitions = append(transitions, [2]Mode{from, to})
	})

	step(r, 1)
	if len(transitions) != 0 {
		t.Fatalf("no change should not reset, got %v", transitions)
	}

	r.SetMode(ModeTop)
	r.SetMode(ModeTop)
	step(r, 1)
	if len(transitions) != 1 || transitions[0] != [2]Mode{ModeChase, ModeTop} {
		t.Fatalf("transitions = %v, want one chase->top", transitions)
	}
	step(r, 5)
	if len(transitions) != 1 {
		t.Fatalf("reset repeated without a change: %v", transitions)
	}

	r.SetMode(ModeHood)
	step(r, 1)
	if len(transitions) != 2 {
		t.Fatalf("transitions = %v, want two", transitions)
	}
	if r.RenderNode().Parent() != target.HoodAnchor() {
		t.Fatalf("render node not parented to the hood anchor")
	}
}

func TestResetReparentsAndClears(t *testing.T) {
	target := newFakeTarget(1, true)
	r := NewRig()
	r.SetTarget(target)
	step(r, 10)

	r.Kick(mgl32.Vec3{1, 0, 0}, mgl32.QuatIdent())
	r.SetMode(ModeWheel)
	step(r, 1)

	render := r.RenderNode()
	if render.Parent() != target.WheelAnchor() {
		t.Fatalf("render parent = %v, want wheel anchor", render.Parent().Name())
	}
	if render.LocalPosition() != (mgl32.Vec3{}) {
		t.Fatalf("local offset not cleared: %v", render.LocalPosition())
	}
	if got := r.TargetFov(); got != DefaultSettings().Wheel.Fov.Default {
		t.Fatalf("target fov = %v, want wheel default", got)
	}

	want := target.WheelAnchor().WorldPosition()
	if got := r.Pose().Position; !vecNear(got, want, epsilon) {
		t.Fatalf("pose = %v, want wheel anchor %v", got, want)
	}
}

func TestCycleMode(t *testing.T) {
	cases := []struct {
		name    string
		anchors bool
		options []RigBuilderOption
		want    []Mode
	}{
		{
			name:    "all_available",
			anchors: true,
			options: []RigBuilderOption{WithFixedRig(newFakeFixed()), WithCinematicRig(newFakeCinematic())},
			want:    []Mode{ModeHood, ModeWheel, ModeFixed, ModeCinematic, ModeTop, ModeChase},
		},
		{
			name:    "no_anchors_no_satellites",
			anchors: false,
			want:    []Mode{ModeTop, ModeChase, ModeTop, ModeChase, ModeTop, ModeChase},
		},
		{
			name:    "satellite_cannot_track",
			anchors: true,
			options: []RigBuilderOption{WithFixedRig(&fakeFixed{node: newFakeFixed().node})},
			want:    []Mode{ModeHood, ModeWheel, ModeTop, ModeChase, ModeHood, ModeWheel},
		},
		{
			name:    "nothing_available",
			anchors: true,
			options: func() []RigBuilderOption {
				var opts []RigBuilderOption
				for _, m := range Modes() {
					opts = append(opts, WithCalculator(m, &unavailable{}))
				}
				return opts
			}(),
			want: []Mode{ModeChase, ModeChase},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := NewRig(c.options...)
			r.SetTarget(newFakeTarget(1, c.anchors))
			for i, want := range c.want {
				if got := r.CycleMode(); got != want {
					t.Fatalf("cycle %d = %v, want %v", i, got, want)
				}
				step(r, 1)
			}
		})
	}
}

func TestCycleModeWithoutTarget(t *testing.T) {
	r := NewRig()
	if got := r.CycleMode(); got != ModeTop {
		t.Fatalf("cycle without target = %v, want top", got)
	}
}

func TestChaseDefaults(t *testing.T) {
	target := newFakeTarget(1, false)
	target.velocity = mgl32.Vec3{0, 0, 150}
	r := NewRig()
	r.SetTarget(target)

	step(r, 600)

	d, h := r.ChaseOffset()
	if d != 6.5 || h != 1.5 {
		t.Fatalf("chase offset = %v/%v, want 6.5/1.5", d, h)
	}
	if got, want := r.Fov(), DefaultSettings().Chase.Fov.Max; !approx(got, want) {
		t.Fatalf("fov at speed 150 = %v, want %v", got, want)
	}
	want := mgl32.Vec3{0, 1.5, -6.5}
	if got := r.Pose().Position; !vecNear(got, want, epsilon) {
		t.Fatalf("chase position = %v, want %v", got, want)
	}
}

func TestChaseVariants(t *testing.T) {
	for _, variant := range []ChaseVariant{ChaseEuler, ChaseLookAt} {
		t.Run(map[ChaseVariant]string{ChaseEuler: "euler", ChaseLookAt: "look_at"}[variant], func(t *testing.T) {
			s := DefaultSettings()
			s.Chase.Variant = variant
			s.Chase.AccelEnabled = false
			target := newFakeTarget(1, false)
			target.root.SetLocalRotation(mgl32.QuatRotate(math.Pi/2, common.Up))
			r := NewRig(WithSettings(s))
			r.SetTarget(target)
			step(r, 300)

			// Facing +X, so the camera sits on -X.
			want := mgl32.Vec3{-6.5, 1.5, 0}
			if got := r.Pose().Position; !vecNear(got, want, epsilon) {
				t.Fatalf("position = %v, want %v", got, want)
			}

			target.direction = -1
			target.velocity = mgl32.Vec3{-10, 0, 0}
			step(r, 600)
			want = mgl32.Vec3{6.5, 1.5, 0}
			if got := r.Pose().Position; !vecNear(got, want, 1e-2) {
				t.Fatalf("reverse position = %v, want %v", got, want)
			}
		})
	}
}

func TestFovStaysInRange(t *testing.T) {
	target := newFakeTarget(1, true)
	fixed := newFakeFixed()
	cinematic := newFakeCinematic()
	cinematic.fov = 90
	r := NewRig(WithFixedRig(fixed), WithCinematicRig(cinematic))
	r.SetTarget(target)
	s := r.Settings()

	for _, m := range Modes() {
		r.SetMode(m)
		if fr, got := s.FovRange(m), r.Fov(); got < fr.Min || got > fr.Max {
			t.Fatalf("fov %v outside %v range [%v, %v] right after SetMode", got, m, fr.Min, fr.Max)
		}
		for i := range 240 {
			target.velocity = mgl32.Vec3{0, 0, float32(i)}
			fixed.distance = float32(i)
			step(r, 1)
			if r.Mode() != m {
				t.Fatalf("mode %v left unexpectedly for %v", m, r.Mode())
			}
			fr := s.FovRange(m)
			if got := r.Fov(); got < fr.Min-epsilon || got > fr.Max+epsilon {
				t.Fatalf("%v fov %v outside [%v, %v]", m, got, fr.Min, fr.Max)
			}
		}
	}
}

func TestNoTargetIsNoop(t *testing.T) {
	r := NewRig()
	before := r.Pose()
	step(r, 10)
	if r.Pose() != before {
		t.Fatalf("pose moved without a target")
	}
	if err := r.AutoFocus(fakeBounded{}); err != nil {
		t.Fatalf("auto-focus: %v", err)
	}
	step(r, 1)
	if r.Focusing() {
		t.Fatalf("auto-focus should cancel without a target")
	}
}

func TestNonFiniteFrameKeepsLastPose(t *testing.T) {
	cases := []struct {
		name    string
		corrupt func(*fakeTarget)
	}{
		{"nan_velocity", func(ft *fakeTarget) { ft.velocity = mgl32.Vec3{float32(math.NaN()), 0, float32(math.NaN())} }},
		{"inf_position", func(ft *fakeTarget) { ft.root.SetLocalPosition(mgl32.Vec3{float32(math.Inf(1)), 0, 0}) }},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			target := newFakeTarget(1, false)
			target.velocity = mgl32.Vec3{0, 0, 20}
			r := NewRig()
			r.SetTarget(target)
			step(r, 30)

			before := r.Pose()
			targetFov := r.TargetFov()
			c.corrupt(target)
			step(r, 1)

			if got := r.Pose(); !got.Finite() || got != before {
				t.Fatalf("pose changed to %v after a non-finite frame", got)
			}
			if r.TargetFov() != targetFov || !common.IsFinite(r.Fov()) {
				t.Fatalf("fov corrupted: %v / %v", r.Fov(), r.TargetFov())
			}
		})
	}
}

func TestChaseOcclusionPush(t *testing.T) {
	caster := &fakeCaster{hits: []common.RayHit{
		{Point: mgl32.Vec3{0, 1, -1}, Normal: mgl32.Vec3{0, 0, 1}, Distance: 0.5, Layer: common.LayerTrigger, Trigger: true},
		{Point: mgl32.Vec3{0, 1, -2}, Normal: mgl32.Vec3{0, 0, 1}, Distance: 1, Layer: common.LayerVehicle, Owner: 1},
		{Point: mgl32.Vec3{0, 1, -3}, Normal: mgl32.Vec3{0, 0, 1}, Distance: 2, Layer: common.LayerStatic},
	}}
	s := DefaultSettings()
	s.Chase.AccelEnabled = false
	r := NewRig(WithSettings(s), WithRaycaster(caster))
	r.SetTarget(newFakeTarget(1, false))
	step(r, 1)

	want := mgl32.Vec3{0, 1, -3}.Add(mgl32.Vec3{0, 0, 1}.Mul(OcclusionMargin))
	if got := r.Pose().Position; !vecNear(got, want, epsilon) {
		t.Fatalf("pushed position = %v, want %v", got, want)
	}
}

func TestOcclusionFallsBackToChase(t *testing.T) {
	cases := []struct {
		name string
		mode Mode
	}{
		{"wheel", ModeWheel},
		{"cinematic", ModeCinematic},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			caster := &fakeCaster{}
			r := NewRig(WithRaycaster(caster), WithCinematicRig(newFakeCinematic()))
			r.SetTarget(newFakeTarget(1, true))
			r.SetMode(c.mode)
			step(r, 3)
			if r.Mode() != c.mode {
				t.Fatalf("mode = %v before occlusion, want %v", r.Mode(), c.mode)
			}

			caster.hits = []common.RayHit{{Point: mgl32.Vec3{0, 1, 1}, Distance: 1, Layer: common.LayerStatic}}
			step(r, 1)
			if r.Mode() != ModeChase {
				t.Fatalf("mode = %v after occlusion, want chase", r.Mode())
			}
			if r.RenderNode().Parent().Name() != "rig_pivot" {
				t.Fatalf("render node not back on the chase pivot")
			}
		})
	}
}

func TestFixedMode(t *testing.T) {
	fixed := newFakeFixed()
	fixed.distance = 20
	caster := &fakeCaster{}
	r := NewRig(WithFixedRig(fixed), WithRaycaster(caster))
	r.SetTarget(newFakeTarget(1, false))
	r.SetMode(ModeFixed)
	step(r, 1)

	if fixed.activations != 1 {
		t.Fatalf("activations = %d, want 1", fixed.activations)
	}
	if r.RenderNode().Parent() != fixed.Node() {
		t.Fatalf("render node not parented to the fixed satellite")
	}

	step(r, 1)
	if got, want := r.TargetFov(), float32(35); !approx(got, want) {
		t.Fatalf("fixed target fov = %v, want %v", got, want)
	}
	if got := r.Pose().Position; !vecNear(got, mgl32.Vec3{0, 5, 20}, epsilon) {
		t.Fatalf("fixed pose = %v", got)
	}

	caster.hits = []common.RayHit{{Distance: 1, Layer: common.LayerStatic}}
	step(r, 1)
	if fixed.occludedHit == 0 {
		t.Fatalf("occlusion not forwarded to the satellite")
	}
	if r.Mode() != ModeFixed {
		t.Fatalf("fixed mode should reposition, not fall back")
	}
}

func TestFixedOcclusionHandledOnce(t *testing.T) {
	fixed := newFakeFixed()
	fixed.distance = 20
	caster := &fakeCaster{}
	r := NewRig(WithFixedRig(fixed), WithRaycaster(caster))
	r.SetTarget(newFakeTarget(1, false))
	r.SetMode(ModeFixed)
	step(r, 1)

	caster.hits = []common.RayHit{{Distance: 1, Layer: common.LayerStatic}}
	r.PhysicsUpdate(frame)
	caster.hits = nil

	// render frames outpace the physics rate
	for range 3 {
		r.EarlyUpdate(frame)
		r.LateUpdate(frame)
	}
	if fixed.occludedHit != 1 {
		t.Fatalf("one occluded physics tick repositioned %d times", fixed.occludedHit)
	}
}

func TestApplySettingsLeavesPendingResetToLateUpdate(t *testing.T) {
	fixed := newFakeFixed()
	r := NewRig(WithFixedRig(fixed))
	r.SetTarget(newFakeTarget(1, false))
	var changes int
	r.OnModeChange(func(from, to Mode) { changes++ })

	r.SetMode(ModeFixed)
	if err := r.ApplySettings(DefaultSettings()); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if fixed.activations != 0 {
		t.Fatalf("settings reload entered the pending mode early")
	}
	step(r, 1)
	if fixed.activations != 1 || changes != 1 {
		t.Fatalf("activations = %d, changes = %d; want one reset", fixed.activations, changes)
	}

	if err := r.ApplySettings(DefaultSettings()); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if fixed.activations != 2 {
		t.Fatalf("settings reload in a settled mode should reset it, activations = %d", fixed.activations)
	}
}

func TestHoodFollowsTargetRotation(t *testing.T) {
	target := newFakeTarget(1, true)
	target.root.SetLocalRotation(mgl32.QuatRotate(0.6, common.Up))
	r := NewRig()
	r.SetTarget(target)
	r.SetMode(ModeHood)
	step(r, 2)

	got := r.Pose()
	if !vecNear(got.Position, target.HoodAnchor().WorldPosition(), epsilon) {
		t.Fatalf("hood position = %v", got.Position)
	}
	if !quatNear(got.Rotation, target.root.WorldRotation(), epsilon) {
		t.Fatalf("hood rotation = %v, want target rotation", got.Rotation)
	}
}

func TestTopModeLeads(t *testing.T) {
	s := DefaultSettings()
	s.Top.Orthographic = true
	target := newFakeTarget(1, false)
	target.velocity = mgl32.Vec3{0, 0, 100}
	r := NewRig(WithSettings(s))
	r.SetTarget(target)
	r.SetMode(ModeTop)
	step(r, 3)

	if r.Projection() != ProjectionOrthographic {
		t.Fatalf("projection = %v, want orthographic", r.Projection())
	}
	if got := r.OrthoSize(); !approx(got, s.Top.OrthoMax) {
		t.Fatalf("ortho size = %v, want %v", got, s.Top.OrthoMax)
	}

	pose := r.Pose()
	focus := mgl32.Vec3{0, 0, s.Top.MaxLead}
	back := pose.Position.Add(pose.Forward().Mul(s.Top.Distance))
	if !vecNear(back, focus, epsilon) {
		t.Fatalf("top camera looks at %v, want %v", back, focus)
	}
}

func TestAutoFocus(t *testing.T) {
	target := newFakeTarget(1, false)
	r := NewRig()
	r.SetTarget(target)

	car := fakeBounded{renderers: []common.RendererBounds{
		{Kind: common.RendererMesh, Bounds: common.Bounds{Extents: mgl32.Vec3{2, 1, 0.5}}},
		{Kind: common.RendererParticle, Bounds: common.Bounds{Extents: mgl32.Vec3{10, 10, 10}}},
	}}
	if err := r.AutoFocus(car); err != nil {
		t.Fatalf("auto-focus: %v", err)
	}

	frames := 0
	for r.Focusing() && frames < 1000 {
		step(r, 1)
		frames++
	}
	if frames < 119 || frames > 122 {
		t.Fatalf("auto-focus took %d frames, want about 120", frames)
	}
	d, h := r.ChaseOffset()
	if d != 2*FocusDistanceFactor || h != 2*FocusHeightFactor {
		t.Fatalf("chase offset = %v/%v, want 5.8/1.3", d, h)
	}
}

func TestAutoFocusCancel(t *testing.T) {
	car := fakeBounded{renderers: []common.RendererBounds{
		{Kind: common.RendererMesh, Bounds: common.Bounds{Extents: mgl32.Vec3{2, 1, 1}}},
	}}

	cases := []struct {
		name   string
		cancel func(Rig)
	}{
		{"retarget", func(r Rig) { r.SetTarget(newFakeTarget(2, false)) }},
		{"disable", func(r Rig) { r.SetEnabled(false); r.SetEnabled(true) }},
		{"remove_target", func(r Rig) { r.RemoveTarget(); r.SetTarget(newFakeTarget(1, false)) }},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := NewRig()
			r.SetTarget(newFakeTarget(1, false))
			if err := r.AutoFocus(car); err != nil {
				t.Fatalf("auto-focus: %v", err)
			}
			step(r, 10)
			d, h := r.ChaseOffset()

			c.cancel(r)
			step(r, 1)
			if r.Focusing() {
				t.Fatalf("task still running after cancel")
			}
			gd, gh := r.ChaseOffset()
			if gd != d || gh != h {
				t.Fatalf("cancelled task applied values: %v/%v -> %v/%v", d, h, gd, gh)
			}
		})
	}
}

func TestAutoFocusTargetCount(t *testing.T) {
	r := NewRig()
	r.SetTarget(newFakeTarget(1, false))
	b := fakeBounded{}
	if err := r.AutoFocus(); !errors.Is(err, ErrFocusTargets) {
		t.Fatalf("zero targets err = %v", err)
	}
	if err := r.AutoFocus(b, b, b, b); !errors.Is(err, ErrFocusTargets) {
		t.Fatalf("four targets err = %v", err)
	}

	s := DefaultSettings()
	s.Focus.Enabled = false
	if err := r.ApplySettings(s); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := r.AutoFocus(b); !errors.Is(err, ErrFocusDisabled) {
		t.Fatalf("disabled err = %v", err)
	}
}

func TestRenderingToggleKeepsPose(t *testing.T) {
	target := newFakeTarget(1, false)
	target.velocity = mgl32.Vec3{0, 0, 10}
	r := NewRig()
	r.SetTarget(target)
	r.ToggleRendering(false)
	step(r, 5)

	if r.RenderingEnabled() || r.RenderNode().Active() {
		t.Fatalf("rendering still enabled")
	}
	target.root.SetLocalPosition(mgl32.Vec3{0, 0, 50})
	step(r, 1)
	if r.Pose().Position.Z() < 40 {
		t.Fatalf("pose not updated while rendering disabled: %v", r.Pose().Position)
	}
}

func TestInputEvents(t *testing.T) {
	d := input.NewDispatcher()
	r := NewRig(WithInput(d))
	r.SetTarget(newFakeTarget(1, true))

	d.Publish(input.Event{Kind: input.EventCycleCamera})
	if r.Mode() != ModeHood {
		t.Fatalf("mode = %v after cycle event, want hood", r.Mode())
	}
	d.Publish(input.Event{Kind: input.EventSetMode, Mode: int(ModeTop)})
	if r.Mode() != ModeTop {
		t.Fatalf("mode = %v after set event, want top", r.Mode())
	}

	r.SetMode(ModeChase)
	step(r, 1)
	d.SetOrbitDelta(mgl32.Vec2{100, 50})
	step(r, 1)
	d.SetOrbitDelta(mgl32.Vec2{})
	step(r, 120)
	if x, y := r.Orbit(); !approx(x, 30) || !approx(y, 15) {
		t.Fatalf("orbit = %v/%v, want 30/15", x, y)
	}

	r.Close()
	if d.SubscriberCount() != 0 {
		t.Fatalf("rig still subscribed after close")
	}
}

func TestApplySettingsRejectsInvalid(t *testing.T) {
	r := NewRig()
	s := DefaultSettings()
	s.Chase.Fov.Min = 90
	if err := r.ApplySettings(s); err == nil {
		t.Fatalf("invalid settings accepted")
	}
	if r.Settings().Chase.Fov.Min != DefaultSettings().Chase.Fov.Min {
		t.Fatalf("invalid settings partially applied")
	}
}
