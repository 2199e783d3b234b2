package main

import (
	"log"

	"github.com/Carmen-Shannon/oxy-rig/engine/input"
	"github.com/Carmen-Shannon/oxy-rig/engine/sim"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

var modeKeys = []ebiten.Key{
	ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3,
	ebiten.KeyDigit4, ebiten.KeyDigit5, ebiten.KeyDigit6,
}

// ebitenSource polls ebiten's keyboard and mouse once per frame and turns them into rig
// input events and vehicle controls. It satisfies loop.Sampler.
type ebitenSource struct {
	scenario    *sim.Scenario
	dispatcher  input.Dispatcher
	sensitivity float32

	lastX, lastY int
	hasCursor    bool
}

func newEbitenSource(s *sim.Scenario) *ebitenSource {
	return &ebitenSource{
		scenario:    s,
		dispatcher:  s.Dispatcher,
		sensitivity: 0.2,
	}
}

func (e *ebitenSource) Sample() {
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		e.dispatcher.Publish(input.Event{Kind: input.EventCycleCamera})
	}
	for i, k := range modeKeys {
		if inpututil.IsKeyJustPressed(k) {
			e.dispatcher.Publish(input.Event{Kind: input.EventSetMode, Mode: i})
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyB) {
		e.dispatcher.Publish(input.Event{Kind: input.EventLookBack, Held: true})
	}
	if inpututil.IsKeyJustReleased(ebiten.KeyB) {
		e.dispatcher.Publish(input.Event{Kind: input.EventLookBack, Held: false})
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		e.dispatcher.Publish(input.Event{Kind: input.EventHoldOrbit, Held: true})
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonRight) {
		e.dispatcher.Publish(input.Event{Kind: input.EventHoldOrbit, Held: false})
	}

	x, y := ebiten.CursorPosition()
	var delta mgl32.Vec2
	if e.hasCursor {
		delta = mgl32.Vec2{float32(x-e.lastX) * e.sensitivity, float32(y-e.lastY) * e.sensitivity}
	}
	e.lastX, e.lastY, e.hasCursor = x, y, true
	e.dispatcher.SetOrbitDelta(delta)

	e.vehicleKeys()
}

func (e *ebitenSource) vehicleKeys() {
	s := e.scenario
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		s.SetAutopilot(true)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		s.Vehicle.Jump(6)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF) {
		if err := s.Rig.AutoFocus(s.Vehicle); err != nil {
			log.Printf("[RigView] auto-focus: %v", err)
		}
	}

	var throttle, steer float32
	if ebiten.IsKeyPressed(ebiten.KeyW) {
		throttle++
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) {
		throttle--
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) {
		steer++
	}
	if ebiten.IsKeyPressed(ebiten.KeyA) {
		steer--
	}
	if throttle != 0 || steer != 0 {
		s.SetAutopilot(false)
	}
	if s.Autopilot() == nil {
		s.Vehicle.SetControls(throttle, steer)
	}
}
