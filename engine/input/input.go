package input

import (
	"slices"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// EventKind identifies a discrete input event.
type EventKind int

const (
	// EventCycleCamera requests advancing to the next available camera mode.
	EventCycleCamera EventKind = iota
	// EventSetMode requests a specific camera mode (Event.Mode).
	EventSetMode
	// EventLookBack reports the look-back control being pressed or released (Event.Held).
	EventLookBack
	// EventHoldOrbit reports the hold-to-orbit control being pressed or released (Event.Held).
	EventHoldOrbit
	// EventDrag carries a UI drag delta (Event.Delta) that bypasses hold-to-orbit.
	EventDrag
)

// String returns a readable name for the event kind.
func (k EventKind) String() string {
	switch k {
	case EventCycleCamera:
		return "cycle_camera"
	case EventSetMode:
		return "set_mode"
	case EventLookBack:
		return "look_back"
	case EventHoldOrbit:
		return "hold_orbit"
	case EventDrag:
		return "drag"
	}
	return "unknown"
}

// Event is a single input notification broadcast to subscribers.
type Event struct {
	Kind  EventKind
	Held  bool
	Mode  int
	Delta mgl32.Vec2
}

// Handler receives broadcast events. Handlers run synchronously on the publishing goroutine.
type Handler func(Event)

// Subscription identifies a registered handler for Unsubscribe.
type Subscription uint64

type dispatcher struct {
	mu *sync.Mutex

	next     Subscription
	order    []Subscription
	handlers map[Subscription]Handler

	orbitDelta mgl32.Vec2
}

// Dispatcher is the input collaborator shared by camera rigs. It owns an ordered observer
// list for discrete events and holds the per-frame orbit axis sampled during the early phase.
type Dispatcher interface {
	// Subscribe registers a handler. Handlers are invoked in subscription order.
	//
	// Parameters:
	//   - h: the handler to register
	//
	// Returns:
	//   - Subscription: token for Unsubscribe
	Subscribe(h Handler) Subscription

	// Unsubscribe removes a handler. Unknown tokens are ignored.
	//
	// Parameters:
	//   - s: the token returned by Subscribe
	Unsubscribe(s Subscription)

	// Publish delivers an event to every current subscriber. The handler list is
	// snapshotted first, so handlers may subscribe or unsubscribe while being called.
	//
	// Parameters:
	//   - e: the event to broadcast
	Publish(e Event)

	// SubscriberCount returns the number of registered handlers.
	//
	// Returns:
	//   - int: handler count
	SubscriberCount() int

	// SetOrbitDelta stores the normalized orbit axis for the current frame.
	//
	// Parameters:
	//   - delta: per-frame 2D pointer/stick delta
	SetOrbitDelta(delta mgl32.Vec2)

	// OrbitDelta returns the orbit axis stored for the current frame.
	//
	// Returns:
	//   - mgl32.Vec2: per-frame 2D delta
	OrbitDelta() mgl32.Vec2
}

var _ Dispatcher = &dispatcher{}

// NewDispatcher creates an empty Dispatcher.
//
// Returns:
//   - Dispatcher: the newly created dispatcher
func NewDispatcher() Dispatcher {
	return &dispatcher{
		mu:       &sync.Mutex{},
		handlers: make(map[Subscription]Handler),
	}
}

func (d *dispatcher) Subscribe(h Handler) Subscription {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.next++
	d.handlers[d.next] = h
	d.order = append(d.order, d.next)
	return d.next
}

func (d *dispatcher) Unsubscribe(s Subscription) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.handlers[s]; !ok {
		return
	}
	delete(d.handlers, s)
	d.order = slices.DeleteFunc(d.order, func(o Subscription) bool { return o == s })
}

func (d *dispatcher) Publish(e Event) {
	d.mu.Lock()
	handlers := make([]Handler, 0, len(d.order))
	for _, s := range d.order {
		handlers = append(handlers, d.handlers[s])
	}
	d.mu.Unlock()

	for _, h := range handlers {
		h(e)
	}
}

func (d *dispatcher) SubscriberCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.order)
}

func (d *dispatcher) SetOrbitDelta(delta mgl32.Vec2) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.orbitDelta = delta
}

func (d *dispatcher) OrbitDelta() mgl32.Vec2 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.orbitDelta
}
