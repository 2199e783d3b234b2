package rig

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownMode is returned when a mode name or value does not name a camera mode.
var ErrUnknownMode = errors.New("unknown camera mode")

// Mode is one of the camera rig's viewpoints.
type Mode int

const (
	// ModeChase follows behind the target at a configurable distance and height.
	ModeChase Mode = iota
	// ModeHood rides the target's hood anchor.
	ModeHood
	// ModeWheel rides the target's wheel anchor.
	ModeWheel
	// ModeFixed watches the target from a stationary satellite that repositions when needed.
	ModeFixed
	// ModeCinematic tracks the target from a smoothed satellite behind it.
	ModeCinematic
	// ModeTop looks down on the target from above.
	ModeTop

	modeCount
)

var modeNames = [modeCount]string{
	ModeChase:     "chase",
	ModeHood:      "hood",
	ModeWheel:     "wheel",
	ModeFixed:     "fixed",
	ModeCinematic: "cinematic",
	ModeTop:       "top",
}

// Modes returns every mode in cycle order.
func Modes() []Mode {
	out := make([]Mode, 0, modeCount)
	for m := ModeChase; m < modeCount; m++ {
		out = append(out, m)
	}
	return out
}

// Valid reports whether m names a mode.
func (m Mode) Valid() bool {
	return m >= ModeChase && m < modeCount
}

// Next returns the following mode in cycle order, wrapping after ModeTop.
func (m Mode) Next() Mode {
	return (m + 1) % modeCount
}

func (m Mode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("mode(%d)", int(m))
	}
	return modeNames[m]
}

// ParseMode converts a case-insensitive mode name into a Mode.
//
// Parameters:
//   - s: the mode name, e.g. "chase" or "Top"
//
// Returns:
//   - Mode: the parsed mode
//   - error: ErrUnknownMode wrapped with the offending name
func ParseMode(s string) (Mode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for m, n := range modeNames {
		if n == name {
			return Mode(m), nil
		}
	}
	return ModeChase, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// MarshalText implements encoding.TextMarshaler so modes appear by name in config files.
func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(b []byte) error {
	parsed, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Projection selects how the camera maps view space to clip space.
type Projection int

const (
	ProjectionPerspective Projection = iota
	ProjectionOrthographic
)

func (p Projection) String() string {
	if p == ProjectionOrthographic {
		return "orthographic"
	}
	return "perspective"
}

// ChaseVariant selects the chase rotation algorithm.
type ChaseVariant int

const (
	// ChaseEuler damps each Euler axis toward the target independently.
	ChaseEuler ChaseVariant = 1
	// ChaseLookAt builds a look rotation along the target's forward and slerps toward it.
	ChaseLookAt ChaseVariant = 2
)
