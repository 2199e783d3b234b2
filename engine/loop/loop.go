package loop

import (
	"log"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-rig/common"
	"github.com/Carmen-Shannon/oxy-rig/engine/profiler"
	"github.com/Carmen-Shannon/oxy-rig/engine/rig"
	"github.com/Carmen-Shannon/oxy-rig/engine/window"
)

// Sampler is polled once at the start of every render frame. input.DeviceSource satisfies it.
type Sampler interface {
	Sample()
}

// Viewer is refreshed after the rig's late update. camera.Camera satisfies it.
type Viewer interface {
	Update()
	SetAspect(aspect float32)
}

// Loop drives a camera rig and its world with a fixed physics rate and a variable render
// rate. Each call to Step runs, in order: the fixed-rate physics callback followed by
// rig.PhysicsUpdate (zero or more times), input sampling, pending settings, rig.EarlyUpdate,
// the motion callback, rig.LateUpdate, the viewer update and the frame callback.
type Loop interface {
	// Window returns the window the loop pumps in Run, or nil when headless.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Rig returns the driven rig.
	//
	// Returns:
	//   - rig.Rig: the rig, or nil
	Rig() rig.Rig

	// SetRig swaps the driven rig. Takes effect on the next frame.
	//
	// Parameters:
	//   - r: the rig to drive
	SetRig(r rig.Rig)

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetFixedRate sets the physics rate in steps per second.
	//
	// Parameters:
	//   - hz: target steps per second (defaults to 60 if <= 0)
	SetFixedRate(hz float64)

	// SetFrameLimit sets an optional render frame rate cap for Run.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetFrameLimit(fps float64)

	// Step advances the simulation by one render frame of dt seconds. Non-finite or
	// negative dt skips the frame.
	//
	// Parameters:
	//   - dt: elapsed time since the previous frame in seconds
	Step(dt float32)

	// Frames returns the number of render frames stepped so far.
	//
	// Returns:
	//   - uint64: frame count
	Frames() uint64

	// PhysicsSteps returns the number of fixed physics steps run so far.
	//
	// Returns:
	//   - uint64: step count
	PhysicsSteps() uint64

	// Run steps the loop from its own goroutine using wall-clock time. With a window it
	// pumps window messages on the calling goroutine and returns when the window closes.
	// Headless, it blocks until Quit.
	Run()

	// Quit signals the frame goroutine to stop. Safe to call multiple times.
	Quit()
}

type loopImpl struct {
	mu     *sync.Mutex
	stepMu *sync.Mutex

	running bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once

	window window.Window

	profiler         *profiler.Profiler
	profilingEnabled bool

	rig      rig.Rig
	input    Sampler
	viewer   Viewer
	settings <-chan rig.Settings

	physicsCallback func(dt float32)
	motionCallback  func(dt float32)
	frameCallback   func(dt float32)
	resizeCallback  func(width, height int)

	fixedStep   time.Duration
	maxSubsteps int
	accumulator time.Duration
	frameLimit  time.Duration

	frames       uint64
	physicsSteps uint64
}

var _ Loop = &loopImpl{}

// NewLoop creates a Loop with the provided options.
//
// Parameters:
//   - options: functional options for loop configuration (rig, callbacks, rates, etc.)
//
// Returns:
//   - Loop: the newly created loop
func NewLoop(options ...LoopBuilderOption) Loop {
	l := &loopImpl{
		mu:          &sync.Mutex{},
		stepMu:      &sync.Mutex{},
		quitChannel: make(chan struct{}),
		profiler:    profiler.NewProfiler(),
		fixedStep:   time.Second / 60,
		maxSubsteps: 5,
	}

	for _, opt := range options {
		opt(l)
	}

	if l.rig != nil {
		l.profiler.SetRig(l.rig)
	}

	if l.window != nil {
		l.window.SetResizeCallback(func(width, height int) {
			if height > 0 && l.viewer != nil {
				l.viewer.SetAspect(float32(width) / float32(height))
			}
			if l.resizeCallback != nil {
				l.resizeCallback(width, height)
			}
		})
	}

	return l
}

func (l *loopImpl) Window() window.Window {
	return l.window
}

func (l *loopImpl) Rig() rig.Rig {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rig
}

func (l *loopImpl) SetRig(r rig.Rig) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rig = r
	l.profiler.SetRig(r)
}

func (l *loopImpl) EnableProfiler() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.profilingEnabled = true
}

func (l *loopImpl) DisableProfiler() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.profilingEnabled = false
}

func (l *loopImpl) SetFixedRate(hz float64) {
	if hz <= 0 {
		hz = 60
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fixedStep = time.Duration(float64(time.Second) / hz)
}

func (l *loopImpl) SetFrameLimit(fps float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if fps <= 0 {
		l.frameLimit = 0
		return
	}
	l.frameLimit = time.Duration(float64(time.Second) / fps)
}

func (l *loopImpl) Frames() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frames
}

func (l *loopImpl) PhysicsSteps() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.physicsSteps
}

func (l *loopImpl) Step(dt float32) {
	if !common.IsFinite(dt) || dt < 0 {
		log.Printf("[Loop] skipping frame with invalid delta %v", dt)
		return
	}

	l.stepMu.Lock()
	defer l.stepMu.Unlock()

	l.mu.Lock()
	r := l.rig
	fixed := l.fixedStep
	l.accumulator += time.Duration(float64(dt) * float64(time.Second))
	substeps := 0
	for l.accumulator >= fixed && substeps < l.maxSubsteps {
		l.accumulator -= fixed
		substeps++
	}
	// Drop time the physics cannot catch up on rather than spiralling.
	if substeps == l.maxSubsteps && l.accumulator >= fixed {
		l.accumulator = 0
	}
	profiling := l.profilingEnabled
	l.mu.Unlock()

	fixedDt := float32(fixed.Seconds())
	for range substeps {
		if l.physicsCallback != nil {
			l.physicsCallback(fixedDt)
		}
		if r != nil {
			r.PhysicsUpdate(fixedDt)
		}
	}

	if l.input != nil {
		l.input.Sample()
	}
	l.applyPendingSettings(r)

	if r != nil {
		r.EarlyUpdate(dt)
	}
	if l.motionCallback != nil {
		l.motionCallback(dt)
	}
	if r != nil {
		r.LateUpdate(dt)
	}
	if l.viewer != nil {
		l.viewer.Update()
	}
	if l.frameCallback != nil {
		l.frameCallback(dt)
	}

	l.mu.Lock()
	l.frames++
	l.physicsSteps += uint64(substeps)
	l.mu.Unlock()

	if profiling {
		l.profiler.Tick()
	}
}

// applyPendingSettings applies the newest reloaded profile, if any, to r.
func (l *loopImpl) applyPendingSettings(r rig.Rig) {
	if l.settings == nil {
		return
	}
	var (
		latest rig.Settings
		have   bool
	)
drain:
	for {
		select {
		case s, ok := <-l.settings:
			if !ok {
				l.settings = nil
				break drain
			}
			latest, have = s, true
		default:
			break drain
		}
	}
	if !have || r == nil {
		return
	}
	if err := r.ApplySettings(latest); err != nil {
		log.Printf("[Loop] rejected reloaded settings: %v", err)
		return
	}
	log.Printf("[Loop] applied reloaded settings (mode %s)", latest.Mode)
}

func (l *loopImpl) Run() {
	l.mu.Lock()
	l.running = true
	l.mu.Unlock()

	l.handle()

	if l.window != nil {
		l.window.ProcessMessages()
		l.Quit()
	} else {
		<-l.quitChannel
	}
	l.wg.Wait()
}

func (l *loopImpl) Quit() {
	l.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (l *loopImpl) signalQuit() {
	l.quitOnce.Do(func() {
		l.mu.Lock()
		l.running = false
		l.mu.Unlock()
		close(l.quitChannel)
	})
}

// handle launches the frame and quit goroutines.
func (l *loopImpl) handle() {
	l.wg.Add(2)
	go l.handleFrames()
	go l.handleQuit()
}

// handleFrames steps the loop with wall-clock deltas until the quit channel is closed.
// Recovers from panics to avoid crashing the process and signals quit on recovery.
func (l *loopImpl) handleFrames() {
	defer l.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Loop] frame goroutine recovered from panic: %v", r)
			l.signalQuit()
		}
	}()

	lastFrame := time.Now()

	for {
		select {
		case <-l.quitChannel:
			return
		default:
			now := time.Now()
			dt := float32(now.Sub(lastFrame).Seconds())
			lastFrame = now

			l.Step(dt)

			l.mu.Lock()
			limit := l.frameLimit
			l.mu.Unlock()
			if limit > 0 {
				if remaining := limit - time.Since(now); remaining > 0 {
					time.Sleep(remaining)
				}
			}
		}
	}
}

// handleQuit blocks until the quit channel is closed, then decrements the WaitGroup.
func (l *loopImpl) handleQuit() {
	defer l.wg.Done()
	<-l.quitChannel
}
