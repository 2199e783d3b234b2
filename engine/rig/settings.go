package rig

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-rig/common"
	"github.com/go-gl/mathgl/mgl32"
)

// FovRange is a mode's field-of-view range in degrees. Default is the value the rig
// eases toward right after entering the mode.
type FovRange struct {
	Min     float32
	Max     float32
	Default float32
}

// Clamp limits fov to the range.
func (r FovRange) Clamp(fov float32) float32 {
	return common.Clamp(fov, r.Min, r.Max)
}

func (r FovRange) validate(name string) error {
	if r.Min <= 0 || r.Max >= 180 {
		return fmt.Errorf("%s fov range [%v, %v] must lie within (0, 180)", name, r.Min, r.Max)
	}
	if r.Min > r.Max {
		return fmt.Errorf("%s fov min %v exceeds max %v", name, r.Min, r.Max)
	}
	if r.Default < r.Min || r.Default > r.Max {
		return fmt.Errorf("%s default fov %v outside [%v, %v]", name, r.Default, r.Min, r.Max)
	}
	return nil
}

// ChaseSettings configures the chase pose.
type ChaseSettings struct {
	Variant ChaseVariant

	Distance   float32
	Height     float32
	LookHeight float32

	// Lock flags make the matching rotation axis follow the target.
	LockX bool
	LockY bool
	LockZ bool

	RotationDamping   mgl32.Vec3
	RotationSmoothing float32
	FreeFallDamping   float32
	ReverseSpeed      float32

	Fov      FovRange
	FovSpeed float32

	TiltEnabled     bool
	TiltSensitivity float32
	MaxTilt         float32
	TiltRate        float32

	AccelEnabled   bool
	AccelScale     float32
	MaxAccelOffset float32
	AccelRate      float32

	OcclusionEnabled bool
	OrbitEnabled     bool
	StartOrbit       mgl32.Vec2
}

// HoodSettings configures the hood pose.
type HoodSettings struct {
	Fov          FovRange
	OrbitEnabled bool
}

// WheelSettings configures the wheel pose.
type WheelSettings struct {
	Fov FovRange
}

// FixedSettings configures the fixed satellite pose. FOV moves from NearFov to FarFov as
// the target approaches the satellite's max distance.
type FixedSettings struct {
	Enabled bool
	Fov     FovRange
	NearFov float32
	FarFov  float32
}

// CinematicSettings configures the cinematic satellite pose.
type CinematicSettings struct {
	Enabled bool
	Fov     FovRange
}

// TopSettings configures the top-down pose. Angle and Yaw are in degrees. OrthoMin and
// OrthoMax are the orthographic half heights at rest and at FovSpeed.
type TopSettings struct {
	Angle    float32
	Yaw      float32
	Distance float32
	LeadTime float32
	MaxLead  float32

	Fov      FovRange
	FovSpeed float32

	Orthographic bool
	OrthoMin     float32
	OrthoMax     float32
}

// OrbitSettings configures orbit input, smoothing and the idle reset. Angles are in degrees.
type OrbitSettings struct {
	MinY            float32
	MaxY            float32
	Sensitivity     float32
	DragSensitivity float32
	SmoothRate      float32
	IdleReset       float32
	SpeedThreshold  float32
	HoldToOrbit     bool
}

// RecoilSettings configures the collision displacement buffer.
type RecoilSettings struct {
	DecayRate  float32
	FollowRate float32
}

// FocusSettings configures the auto-focus task.
type FocusSettings struct {
	Enabled bool
	Speed   float32
}

// Settings is the full rig configuration.
type Settings struct {
	Mode          Mode
	Chase         ChaseSettings
	Hood          HoodSettings
	Wheel         WheelSettings
	Fixed         FixedSettings
	Cinematic     CinematicSettings
	Top           TopSettings
	Orbit         OrbitSettings
	Recoil        RecoilSettings
	Focus         FocusSettings
	OcclusionMask common.Layer
	FovRate       float32
}

// DefaultSettings returns the stock rig profile.
//
// Returns:
//   - Settings: the default configuration
func DefaultSettings() Settings {
	return Settings{
		Mode: ModeChase,
		Chase: ChaseSettings{
			Variant:           ChaseLookAt,
			Distance:          6.5,
			Height:            1.5,
			LookHeight:        0.8,
			LockY:             true,
			RotationDamping:   mgl32.Vec3{3, 5, 3},
			RotationSmoothing: 5,
			FreeFallDamping:   0.05,
			ReverseSpeed:      2,
			Fov:               FovRange{Min: 55, Max: 70, Default: 55},
			FovSpeed:          150,
			TiltEnabled:       true,
			TiltSensitivity:   0.5,
			MaxTilt:           6,
			TiltRate:          3,
			AccelEnabled:      true,
			AccelScale:        0.02,
			MaxAccelOffset:    0.6,
			AccelRate:         4,
			OcclusionEnabled:  true,
			OrbitEnabled:      true,
		},
		Hood: HoodSettings{
			Fov:          FovRange{Min: 60, Max: 60, Default: 60},
			OrbitEnabled: true,
		},
		Wheel: WheelSettings{
			Fov: FovRange{Min: 60, Max: 60, Default: 60},
		},
		Fixed: FixedSettings{
			Enabled: true,
			Fov:     FovRange{Min: 20, Max: 50, Default: 50},
			NearFov: 50,
			FarFov:  20,
		},
		Cinematic: CinematicSettings{
			Enabled: true,
			Fov:     FovRange{Min: 20, Max: 60, Default: 35},
		},
		Top: TopSettings{
			Angle:    70,
			Distance: 25,
			LeadTime: 0.25,
			MaxLead:  10,
			Fov:      FovRange{Min: 40, Max: 60, Default: 40},
			FovSpeed: 100,
			OrthoMin: 10,
			OrthoMax: 18,
		},
		Orbit: OrbitSettings{
			MinY:            -10,
			MaxY:            60,
			Sensitivity:     0.3,
			DragSensitivity: 0.2,
			SmoothRate:      10,
			IdleReset:       2,
			SpeedThreshold:  25,
		},
		Recoil: RecoilSettings{
			DecayRate:  5,
			FollowRate: 10,
		},
		Focus: FocusSettings{
			Enabled: true,
			Speed:   4,
		},
		OcclusionMask: common.LayerGround | common.LayerStatic | common.LayerVehicle | common.LayerProp,
		FovRate:       3,
	}
}

// FovRange returns the FOV range configured for mode m.
func (s *Settings) FovRange(m Mode) FovRange {
	switch m {
	case ModeHood:
		return s.Hood.Fov
	case ModeWheel:
		return s.Wheel.Fov
	case ModeFixed:
		return s.Fixed.Fov
	case ModeCinematic:
		return s.Cinematic.Fov
	case ModeTop:
		return s.Top.Fov
	}
	return s.Chase.Fov
}

// Validate reports every inconsistency in the settings.
//
// Returns:
//   - error: nil when valid, otherwise the joined list of problems
func (s *Settings) Validate() error {
	var errs []error
	if !s.Mode.Valid() {
		errs = append(errs, fmt.Errorf("%w: %d", ErrUnknownMode, int(s.Mode)))
	}
	if s.Chase.Variant != ChaseEuler && s.Chase.Variant != ChaseLookAt {
		errs = append(errs, fmt.Errorf("chase variant %d must be 1 or 2", s.Chase.Variant))
	}
	if s.Chase.Distance <= 0 {
		errs = append(errs, fmt.Errorf("chase distance %v must be positive", s.Chase.Distance))
	}
	if s.Chase.FovSpeed <= 0 {
		errs = append(errs, fmt.Errorf("chase fov speed %v must be positive", s.Chase.FovSpeed))
	}
	if s.Top.Distance <= 0 {
		errs = append(errs, fmt.Errorf("top distance %v must be positive", s.Top.Distance))
	}
	if s.Top.Orthographic && (s.Top.OrthoMin <= 0 || s.Top.OrthoMin > s.Top.OrthoMax) {
		errs = append(errs, fmt.Errorf("top ortho size range [%v, %v] is invalid", s.Top.OrthoMin, s.Top.OrthoMax))
	}
	if s.Orbit.MinY > s.Orbit.MaxY {
		errs = append(errs, fmt.Errorf("orbit min y %v exceeds max y %v", s.Orbit.MinY, s.Orbit.MaxY))
	}
	if s.Orbit.IdleReset < 0 {
		errs = append(errs, fmt.Errorf("orbit idle reset %v must not be negative", s.Orbit.IdleReset))
	}
	if s.Fixed.NearFov < s.Fixed.Fov.Min || s.Fixed.NearFov > s.Fixed.Fov.Max ||
		s.Fixed.FarFov < s.Fixed.Fov.Min || s.Fixed.FarFov > s.Fixed.Fov.Max {
		errs = append(errs, fmt.Errorf("fixed near/far fov %v/%v outside [%v, %v]",
			s.Fixed.NearFov, s.Fixed.FarFov, s.Fixed.Fov.Min, s.Fixed.Fov.Max))
	}
	for m := ModeChase; m < modeCount; m++ {
		if err := s.FovRange(m).validate(m.String()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
