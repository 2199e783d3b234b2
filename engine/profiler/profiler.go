package profiler

import (
	"fmt"
	"log"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-rig/engine/rig"
)

// RigStats is the slice of a camera rig the profiler reports on. rig.Rig satisfies it.
type RigStats interface {
	Mode() rig.Mode
	Fov() float32
	Projection() rig.Projection
	OrthoSize() float32
	Focusing() bool
}

// Profiler tracks frame rate, rig state and memory statistics for performance monitoring.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	rig      RigStats
	logf     func(format string, args ...any)
	lastLine string
}

// NewProfiler creates a new Profiler.
// Update interval defaults to 1 second.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		frameCount:     0,
		lastTime:       time.Now(),
		updateInterval: time.Second,
		memStats:       runtime.MemStats{},
		logf:           log.Printf,
	}
	for _, option := range options {
		option(p)
	}
	return p
}

// SetRig changes the rig reported in the telemetry line. Pass nil to stop reporting one.
func (p *Profiler) SetRig(r RigStats) {
	p.rig = r
}

// LastLine returns the most recent telemetry line, without the log prefix.
func (p *Profiler) LastLine() string {
	return p.lastLine
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
// Statistics include: FPS, rig mode and lens, heap usage, allocation rate, GC count/pause times, total memory.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)

	if elapsed < p.updateInterval {
		return false
	}

	fps := float64(p.frameCount) / elapsed.Seconds()

	runtime.ReadMemStats(&p.memStats)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024

	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	// PauseNs is a circular buffer of the last 256 GC pauses
	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			pause := p.memStats.PauseNs[i%256] / 1000
			if pause > maxPauseUs {
				maxPauseUs = pause
			}
		}
	}

	p.lastLine = fmt.Sprintf("FPS: %.2f | %s | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs) | Sys: %.2f MB",
		fps, p.rigSummary(), allocMB, allocRateMB, gcCount, lastPauseUs, maxPauseUs, sysMB)
	p.logf("[Profiler] %s", p.lastLine)

	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

func (p *Profiler) rigSummary() string {
	if p.rig == nil {
		return "Mode: none"
	}
	lens := fmt.Sprintf("FOV: %.1f", p.rig.Fov())
	if p.rig.Projection() == rig.ProjectionOrthographic {
		lens = fmt.Sprintf("Ortho: %.1f", p.rig.OrthoSize())
	}
	s := fmt.Sprintf("Mode: %s | %s", p.rig.Mode(), lens)
	if p.rig.Focusing() {
		s += " (focusing)"
	}
	return s
}
