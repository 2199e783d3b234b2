package curve

import (
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"sync"

	"github.com/Carmen-Shannon/oxy-rig/common"
	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

// ErrNoFov is returned when a curve script finishes without a numeric `fov` global.
var ErrNoFov = errors.New("curve: script did not set fov")

// DefaultScript slowly breathes the Cinematic FOV between 25 and 45 degrees and widens it
// while the target is close.
const DefaultScript = `
math := import("math")
near := 1 - math.min(distance / 20.0, 1.0)
fov := 35 + 10 * math.sin(t * 0.4) + 10 * near
`

// Sampler evaluates a FOV curve script. Scripts read the globals `t` (seconds since the
// curve started), `distance` (camera to target) and `speed` (target speed), and must
// define a numeric `fov` in degrees.
type Sampler interface {
	// Sample runs the script once.
	//
	// Parameters:
	//   - t: seconds since the curve started
	//   - distance: camera to target distance
	//   - speed: target speed
	//
	// Returns:
	//   - float32: the FOV in degrees
	//   - error: ErrNoFov if the script did not produce a finite number, or the script's runtime error
	Sample(t, distance, speed float32) (float32, error)

	// Source returns the script text.
	//
	// Returns:
	//   - string: the tengo source
	Source() string
}

type sampler struct {
	mu       *sync.Mutex
	source   string
	compiled *tengo.Compiled
}

var _ Sampler = &sampler{}

// NewSampler compiles a curve script.
//
// Parameters:
//   - src: tengo source
//
// Returns:
//   - Sampler: the compiled sampler
//   - error: a compile error
func NewSampler(src []byte) (Sampler, error) {
	script := tengo.NewScript(src)
	_ = script.Add("t", 0.0)
	_ = script.Add("distance", 0.0)
	_ = script.Add("speed", 0.0)
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("curve: compile: %w", err)
	}
	return &sampler{
		mu:       &sync.Mutex{},
		source:   string(src),
		compiled: compiled,
	}, nil
}

// LoadSampler reads and compiles a curve script from disk.
//
// Parameters:
//   - path: script file path
//
// Returns:
//   - Sampler: the compiled sampler
//   - error: a read or compile error
func LoadSampler(path string) (Sampler, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("curve: read %s: %w", path, err)
	}
	return NewSampler(src)
}

func (s *sampler) Source() string {
	return s.source
}

func (s *sampler) Sample(t, distance, speed float32) (fov float32, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// the tengo VM panics on some runtime faults, e.g. integer division by zero
	defer func() {
		if r := recover(); r != nil {
			fov, err = 0, fmt.Errorf("curve: run: %v", r)
		}
	}()

	if err := s.compiled.Set("t", float64(t)); err != nil {
		return 0, err
	}
	if err := s.compiled.Set("distance", float64(distance)); err != nil {
		return 0, err
	}
	if err := s.compiled.Set("speed", float64(speed)); err != nil {
		return 0, err
	}
	if err := s.compiled.Run(); err != nil {
		return 0, fmt.Errorf("curve: run: %w", err)
	}

	if !s.compiled.IsDefined("fov") {
		return 0, ErrNoFov
	}
	var v float64
	switch g := s.compiled.Get("fov").Value().(type) {
	case float64:
		v = g
	case int64:
		v = float64(g)
	default:
		return 0, ErrNoFov
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrNoFov
	}
	return float32(v), nil
}

// FovTarget receives sampled FOVs. satellite.CinematicRig satisfies it.
type FovTarget interface {
	SetTargetFov(fov float32)
}

// Driver advances a curve's clock and pushes each sample to a FovTarget.
type Driver struct {
	mu *sync.Mutex

	sampler Sampler
	target  FovTarget
	elapsed float32
	failed  bool
}

// NewDriver creates a Driver feeding target from s.
//
// Parameters:
//   - s: the curve sampler
//   - target: the FOV consumer
//
// Returns:
//   - *Driver: the newly created driver
func NewDriver(s Sampler, target FovTarget) *Driver {
	return &Driver{
		mu:      &sync.Mutex{},
		sampler: s,
		target:  target,
	}
}

// Update advances the clock by dt and samples the curve. A failing sample leaves the
// target's FOV unchanged; the first failure in a run of failures is logged.
//
// Parameters:
//   - dt: frame delta in seconds
//   - distance: camera to target distance
//   - speed: target speed
func (d *Driver) Update(dt, distance, speed float32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if dt > 0 && common.IsFinite(dt) {
		d.elapsed += dt
	}

	fov, err := d.sampler.Sample(d.elapsed, distance, speed)
	if err != nil {
		if !d.failed {
			log.Printf("[Curve] sample failed at t=%.2f: %v", d.elapsed, err)
		}
		d.failed = true
		return
	}
	d.failed = false
	d.target.SetTargetFov(fov)
}

// Reset rewinds the curve clock.
func (d *Driver) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.elapsed = 0
}

// Elapsed returns the curve clock.
func (d *Driver) Elapsed() float32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.elapsed
}
