package input

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-rig/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Bindings maps raw device codes to rig controls.
type Bindings struct {
	Cycle       uint32
	LookBack    uint32
	Modes       map[uint32]int
	OrbitButton int

	// Sensitivity scales cursor pixels into orbit axis units.
	Sensitivity float32
}

// DefaultBindings returns C to cycle, B to look back, 1-6 to pick a mode and the right
// mouse button to orbit.
func DefaultBindings() Bindings {
	return Bindings{
		Cycle:    common.KeyC,
		LookBack: common.KeyB,
		Modes: map[uint32]int{
			common.Key1: 0,
			common.Key2: 1,
			common.Key3: 2,
			common.Key4: 3,
			common.Key5: 4,
			common.Key6: 5,
		},
		OrbitButton: common.MouseButtonRight,
		Sensitivity: 0.1,
	}
}

// DeviceSource turns raw window callbacks into Dispatcher events and a per-frame orbit axis.
// It is platform neutral; a window implementation forwards its key, button and cursor
// callbacks here.
type DeviceSource interface {
	// KeyDown handles a key press. Repeats of a held key are ignored.
	//
	// Parameters:
	//   - code: the virtual key code
	KeyDown(code uint32)

	// KeyUp handles a key release.
	//
	// Parameters:
	//   - code: the virtual key code
	KeyUp(code uint32)

	// ButtonDown handles a mouse button press.
	//
	// Parameters:
	//   - button: the mouse button index
	ButtonDown(button int)

	// ButtonUp handles a mouse button release.
	//
	// Parameters:
	//   - button: the mouse button index
	ButtonUp(button int)

	// CursorMoved accumulates pointer motion since the previous callback.
	//
	// Parameters:
	//   - x, y: cursor position in window pixels
	CursorMoved(x, y int32)

	// Sample publishes the motion accumulated since the last Sample as the dispatcher's
	// orbit axis and clears it. Call once per render frame before the early phase.
	Sample()

	// Held reports whether a key is currently pressed.
	//
	// Parameters:
	//   - code: the virtual key code
	//
	// Returns:
	//   - bool: true while the key is down
	Held(code uint32) bool
}

type deviceSource struct {
	mu *sync.Mutex

	dispatcher Dispatcher
	bindings   Bindings

	held      map[uint32]bool
	hasCursor bool
	lastX     int32
	lastY     int32
	pending   mgl32.Vec2
}

var _ DeviceSource = &deviceSource{}

// NewDeviceSource creates a DeviceSource publishing to d.
//
// Parameters:
//   - d: the dispatcher receiving events
//   - b: the control bindings
//
// Returns:
//   - DeviceSource: the newly created source
func NewDeviceSource(d Dispatcher, b Bindings) DeviceSource {
	return &deviceSource{
		mu:         &sync.Mutex{},
		dispatcher: d,
		bindings:   b,
		held:       make(map[uint32]bool),
	}
}

func (s *deviceSource) KeyDown(code uint32) {
	s.mu.Lock()
	if s.held[code] {
		s.mu.Unlock()
		return
	}
	s.held[code] = true
	b := s.bindings
	s.mu.Unlock()

	switch {
	case code == b.Cycle:
		s.dispatcher.Publish(Event{Kind: EventCycleCamera})
	case code == b.LookBack:
		s.dispatcher.Publish(Event{Kind: EventLookBack, Held: true})
	default:
		if m, ok := b.Modes[code]; ok {
			s.dispatcher.Publish(Event{Kind: EventSetMode, Mode: m})
		}
	}
}

func (s *deviceSource) KeyUp(code uint32) {
	s.mu.Lock()
	wasHeld := s.held[code]
	delete(s.held, code)
	lookBack := s.bindings.LookBack
	s.mu.Unlock()

	if wasHeld && code == lookBack {
		s.dispatcher.Publish(Event{Kind: EventLookBack, Held: false})
	}
}

func (s *deviceSource) ButtonDown(button int) {
	if button == s.bindings.OrbitButton {
		s.dispatcher.Publish(Event{Kind: EventHoldOrbit, Held: true})
	}
}

func (s *deviceSource) ButtonUp(button int) {
	if button == s.bindings.OrbitButton {
		s.dispatcher.Publish(Event{Kind: EventHoldOrbit, Held: false})
	}
}

func (s *deviceSource) CursorMoved(x, y int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hasCursor {
		dx := float32(x-s.lastX) * s.bindings.Sensitivity
		dy := float32(y-s.lastY) * s.bindings.Sensitivity
		s.pending = s.pending.Add(mgl32.Vec2{dx, dy})
	}
	s.hasCursor = true
	s.lastX, s.lastY = x, y
}

func (s *deviceSource) Sample() {
	s.mu.Lock()
	delta := s.pending
	s.pending = mgl32.Vec2{}
	s.mu.Unlock()
	s.dispatcher.SetOrbitDelta(delta)
}

func (s *deviceSource) Held(code uint32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.held[code]
}
