package profiler

import "time"

// ProfilerBuilderOption is a functional option for configuring a Profiler.
type ProfilerBuilderOption func(*Profiler)

// WithInterval sets how often statistics are logged.
//
// Parameters:
//   - d: the reporting interval; non-positive values keep the 1s default
//
// Returns:
//   - ProfilerBuilderOption: a function that sets the interval
func WithInterval(d time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		if d > 0 {
			p.updateInterval = d
		}
	}
}

// WithRig reports the given rig's mode and lens in each telemetry line.
//
// Parameters:
//   - r: the rig to report on
//
// Returns:
//   - ProfilerBuilderOption: a function that sets the rig
func WithRig(r RigStats) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.rig = r
	}
}

// WithLogf redirects telemetry output. Defaults to log.Printf.
//
// Parameters:
//   - logf: printf-style sink
//
// Returns:
//   - ProfilerBuilderOption: a function that sets the sink
func WithLogf(logf func(format string, args ...any)) ProfilerBuilderOption {
	return func(p *Profiler) {
		if logf != nil {
			p.logf = logf
		}
	}
}
