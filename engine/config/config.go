package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/Carmen-Shannon/oxy-rig/common"
	"github.com/Carmen-Shannon/oxy-rig/engine/rig"
	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

// ErrUnknownMode is returned when a profile names a camera mode that does not exist.
var ErrUnknownMode = rig.ErrUnknownMode

// ErrUnknownLayer is returned when the occlusion mask names a layer that does not exist.
var ErrUnknownLayer = errors.New("unknown collision layer")

var layerNames = map[string]common.Layer{
	"ground":  common.LayerGround,
	"static":  common.LayerStatic,
	"vehicle": common.LayerVehicle,
	"prop":    common.LayerProp,
	"trigger": common.LayerTrigger,
	"all":     common.LayerAll,
}

var variantNames = map[string]rig.ChaseVariant{
	"euler":  rig.ChaseEuler,
	"lookat": rig.ChaseLookAt,
}

type fovProfile struct {
	Min     float32 `yaml:"min,omitempty"`
	Max     float32 `yaml:"max,omitempty"`
	Default float32 `yaml:"default,omitempty"`
}

type lockProfile struct {
	X *bool `yaml:"x,omitempty"`
	Y *bool `yaml:"y,omitempty"`
	Z *bool `yaml:"z,omitempty"`
}

type tiltProfile struct {
	Enabled     *bool   `yaml:"enabled,omitempty"`
	Sensitivity float32 `yaml:"sensitivity,omitempty"`
	Max         float32 `yaml:"max,omitempty"`
	Rate        float32 `yaml:"rate,omitempty"`
}

type accelProfile struct {
	Enabled   *bool   `yaml:"enabled,omitempty"`
	Scale     float32 `yaml:"scale,omitempty"`
	MaxOffset float32 `yaml:"max_offset,omitempty"`
	Rate      float32 `yaml:"rate,omitempty"`
}

type chaseProfile struct {
	Variant           string       `yaml:"variant,omitempty"`
	Distance          float32      `yaml:"distance,omitempty"`
	Height            *float32     `yaml:"height,omitempty"`
	LookHeight        *float32     `yaml:"look_height,omitempty"`
	Lock              lockProfile  `yaml:"lock,omitempty"`
	RotationDamping   []float32    `yaml:"rotation_damping,omitempty,flow"`
	RotationSmoothing float32      `yaml:"rotation_smoothing,omitempty"`
	FreeFallDamping   *float32     `yaml:"free_fall_damping,omitempty"`
	ReverseSpeed      float32      `yaml:"reverse_speed,omitempty"`
	Fov               fovProfile   `yaml:"fov,omitempty"`
	FovSpeed          float32      `yaml:"fov_speed,omitempty"`
	Tilt              tiltProfile  `yaml:"tilt,omitempty"`
	Accel             accelProfile `yaml:"accel,omitempty"`
	Occlusion         *bool        `yaml:"occlusion,omitempty"`
	Orbit             *bool        `yaml:"orbit,omitempty"`
	StartOrbit        []float32    `yaml:"start_orbit,omitempty,flow"`
}

type hoodProfile struct {
	Fov   fovProfile `yaml:"fov,omitempty"`
	Orbit *bool      `yaml:"orbit,omitempty"`
}

type wheelProfile struct {
	Fov fovProfile `yaml:"fov,omitempty"`
}

type fixedProfile struct {
	Enabled *bool      `yaml:"enabled,omitempty"`
	Fov     fovProfile `yaml:"fov,omitempty"`
	NearFov float32    `yaml:"near_fov,omitempty"`
	FarFov  float32    `yaml:"far_fov,omitempty"`
}

type cinematicProfile struct {
	Enabled *bool      `yaml:"enabled,omitempty"`
	Fov     fovProfile `yaml:"fov,omitempty"`
}

type topProfile struct {
	Angle        *float32   `yaml:"angle,omitempty"`
	Yaw          *float32   `yaml:"yaw,omitempty"`
	Distance     float32    `yaml:"distance,omitempty"`
	LeadTime     *float32   `yaml:"lead_time,omitempty"`
	MaxLead      *float32   `yaml:"max_lead,omitempty"`
	Fov          fovProfile `yaml:"fov,omitempty"`
	FovSpeed     float32    `yaml:"fov_speed,omitempty"`
	Orthographic *bool      `yaml:"orthographic,omitempty"`
	OrthoMin     float32    `yaml:"ortho_min,omitempty"`
	OrthoMax     float32    `yaml:"ortho_max,omitempty"`
}

type orbitProfile struct {
	MinY            *float32 `yaml:"min_y,omitempty"`
	MaxY            *float32 `yaml:"max_y,omitempty"`
	Sensitivity     float32  `yaml:"sensitivity,omitempty"`
	DragSensitivity float32  `yaml:"drag_sensitivity,omitempty"`
	SmoothRate      float32  `yaml:"smooth_rate,omitempty"`
	IdleReset       *float32 `yaml:"idle_reset,omitempty"`
	SpeedThreshold  float32  `yaml:"speed_threshold,omitempty"`
	HoldToOrbit     *bool    `yaml:"hold_to_orbit,omitempty"`
}

type recoilProfile struct {
	DecayRate  float32 `yaml:"decay_rate,omitempty"`
	FollowRate float32 `yaml:"follow_rate,omitempty"`
}

type focusProfile struct {
	Enabled *bool   `yaml:"enabled,omitempty"`
	Speed   float32 `yaml:"speed,omitempty"`
}

// profile is the on-disk shape of a rig profile. Every field is optional.
type profile struct {
	Mode          string           `yaml:"mode,omitempty"`
	FovRate       float32          `yaml:"fov_rate,omitempty"`
	OcclusionMask []string         `yaml:"occlusion_mask,omitempty,flow"`
	Chase         chaseProfile     `yaml:"chase,omitempty"`
	Hood          hoodProfile      `yaml:"hood,omitempty"`
	Wheel         wheelProfile     `yaml:"wheel,omitempty"`
	Fixed         fixedProfile     `yaml:"fixed,omitempty"`
	Cinematic     cinematicProfile `yaml:"cinematic,omitempty"`
	Top           topProfile       `yaml:"top,omitempty"`
	Orbit         orbitProfile     `yaml:"orbit,omitempty"`
	Recoil        recoilProfile    `yaml:"recoil,omitempty"`
	Focus         focusProfile     `yaml:"focus,omitempty"`
}

// Load reads and validates the rig profile at path.
//
// Parameters:
//   - path: location of the YAML profile
//
// Returns:
//   - rig.Settings: the profile merged over rig.DefaultSettings
//   - error: an error if the file cannot be read, decoded or validated
func Load(path string) (rig.Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return rig.Settings{}, fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return rig.Settings{}, fmt.Errorf("%w (%s)", err, path)
	}
	return s, nil
}

// Parse decodes a YAML rig profile. Fields missing from the document keep their
// rig.DefaultSettings values. Unknown keys are rejected.
//
// Parameters:
//   - data: the YAML document; empty input yields the defaults
//
// Returns:
//   - rig.Settings: the merged settings
//   - error: an error if decoding or validation fails
func Parse(data []byte) (rig.Settings, error) {
	var p profile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return rig.Settings{}, fmt.Errorf("config: failed to decode profile: %w", err)
	}

	s, err := p.settings(rig.DefaultSettings())
	if err != nil {
		return rig.Settings{}, fmt.Errorf("config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return rig.Settings{}, fmt.Errorf("config: invalid profile: %w", err)
	}
	return s, nil
}

// Encode writes settings as a complete YAML profile.
//
// Parameters:
//   - s: the settings to encode
//
// Returns:
//   - []byte: the YAML document
//   - error: an error if the settings hold an unknown mode or cannot be marshaled
func Encode(s rig.Settings) ([]byte, error) {
	if !s.Mode.Valid() {
		return nil, fmt.Errorf("config: %w: %d", ErrUnknownMode, int(s.Mode))
	}
	p := fromSettings(s)
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&p); err != nil {
		return nil, fmt.Errorf("config: failed to encode profile: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("config: failed to encode profile: %w", err)
	}
	return buf.Bytes(), nil
}

func (p *profile) settings(def rig.Settings) (rig.Settings, error) {
	s := def

	if p.Mode != "" {
		m, err := rig.ParseMode(p.Mode)
		if err != nil {
			return s, err
		}
		s.Mode = m
	}
	s.FovRate = common.Coalesce(p.FovRate, def.FovRate)
	if len(p.OcclusionMask) > 0 {
		mask, err := parseMask(p.OcclusionMask)
		if err != nil {
			return s, err
		}
		s.OcclusionMask = mask
	}

	c := p.Chase
	if c.Variant != "" {
		v, ok := variantNames[strings.ToLower(c.Variant)]
		if !ok {
			return s, fmt.Errorf("unknown chase variant %q", c.Variant)
		}
		s.Chase.Variant = v
	}
	s.Chase.Distance = common.Coalesce(c.Distance, def.Chase.Distance)
	s.Chase.Height = orDefault(c.Height, def.Chase.Height)
	s.Chase.LookHeight = orDefault(c.LookHeight, def.Chase.LookHeight)
	s.Chase.LockX = orDefault(c.Lock.X, def.Chase.LockX)
	s.Chase.LockY = orDefault(c.Lock.Y, def.Chase.LockY)
	s.Chase.LockZ = orDefault(c.Lock.Z, def.Chase.LockZ)
	if c.RotationDamping != nil {
		if len(c.RotationDamping) != 3 {
			return s, fmt.Errorf("chase rotation_damping needs 3 values, got %d", len(c.RotationDamping))
		}
		s.Chase.RotationDamping = mgl32.Vec3{c.RotationDamping[0], c.RotationDamping[1], c.RotationDamping[2]}
	}
	s.Chase.RotationSmoothing = common.Coalesce(c.RotationSmoothing, def.Chase.RotationSmoothing)
	s.Chase.FreeFallDamping = orDefault(c.FreeFallDamping, def.Chase.FreeFallDamping)
	s.Chase.ReverseSpeed = common.Coalesce(c.ReverseSpeed, def.Chase.ReverseSpeed)
	s.Chase.Fov = c.Fov.merge(def.Chase.Fov)
	s.Chase.FovSpeed = common.Coalesce(c.FovSpeed, def.Chase.FovSpeed)
	s.Chase.TiltEnabled = orDefault(c.Tilt.Enabled, def.Chase.TiltEnabled)
	s.Chase.TiltSensitivity = common.Coalesce(c.Tilt.Sensitivity, def.Chase.TiltSensitivity)
	s.Chase.MaxTilt = common.Coalesce(c.Tilt.Max, def.Chase.MaxTilt)
	s.Chase.TiltRate = common.Coalesce(c.Tilt.Rate, def.Chase.TiltRate)
	s.Chase.AccelEnabled = orDefault(c.Accel.Enabled, def.Chase.AccelEnabled)
	s.Chase.AccelScale = common.Coalesce(c.Accel.Scale, def.Chase.AccelScale)
	s.Chase.MaxAccelOffset = common.Coalesce(c.Accel.MaxOffset, def.Chase.MaxAccelOffset)
	s.Chase.AccelRate = common.Coalesce(c.Accel.Rate, def.Chase.AccelRate)
	s.Chase.OcclusionEnabled = orDefault(c.Occlusion, def.Chase.OcclusionEnabled)
	s.Chase.OrbitEnabled = orDefault(c.Orbit, def.Chase.OrbitEnabled)
	if c.StartOrbit != nil {
		if len(c.StartOrbit) != 2 {
			return s, fmt.Errorf("chase start_orbit needs 2 values, got %d", len(c.StartOrbit))
		}
		s.Chase.StartOrbit = mgl32.Vec2{c.StartOrbit[0], c.StartOrbit[1]}
	}

	s.Hood.Fov = p.Hood.Fov.merge(def.Hood.Fov)
	s.Hood.OrbitEnabled = orDefault(p.Hood.Orbit, def.Hood.OrbitEnabled)
	s.Wheel.Fov = p.Wheel.Fov.merge(def.Wheel.Fov)

	s.Fixed.Enabled = orDefault(p.Fixed.Enabled, def.Fixed.Enabled)
	s.Fixed.Fov = p.Fixed.Fov.merge(def.Fixed.Fov)
	s.Fixed.NearFov = common.Coalesce(p.Fixed.NearFov, def.Fixed.NearFov)
	s.Fixed.FarFov = common.Coalesce(p.Fixed.FarFov, def.Fixed.FarFov)

	s.Cinematic.Enabled = orDefault(p.Cinematic.Enabled, def.Cinematic.Enabled)
	s.Cinematic.Fov = p.Cinematic.Fov.merge(def.Cinematic.Fov)

	t := p.Top
	s.Top.Angle = orDefault(t.Angle, def.Top.Angle)
	s.Top.Yaw = orDefault(t.Yaw, def.Top.Yaw)
	s.Top.Distance = common.Coalesce(t.Distance, def.Top.Distance)
	s.Top.LeadTime = orDefault(t.LeadTime, def.Top.LeadTime)
	s.Top.MaxLead = orDefault(t.MaxLead, def.Top.MaxLead)
	s.Top.Fov = t.Fov.merge(def.Top.Fov)
	s.Top.FovSpeed = common.Coalesce(t.FovSpeed, def.Top.FovSpeed)
	s.Top.Orthographic = orDefault(t.Orthographic, def.Top.Orthographic)
	s.Top.OrthoMin = common.Coalesce(t.OrthoMin, def.Top.OrthoMin)
	s.Top.OrthoMax = common.Coalesce(t.OrthoMax, def.Top.OrthoMax)

	o := p.Orbit
	s.Orbit.MinY = orDefault(o.MinY, def.Orbit.MinY)
	s.Orbit.MaxY = orDefault(o.MaxY, def.Orbit.MaxY)
	s.Orbit.Sensitivity = common.Coalesce(o.Sensitivity, def.Orbit.Sensitivity)
	s.Orbit.DragSensitivity = common.Coalesce(o.DragSensitivity, def.Orbit.DragSensitivity)
	s.Orbit.SmoothRate = common.Coalesce(o.SmoothRate, def.Orbit.SmoothRate)
	s.Orbit.IdleReset = orDefault(o.IdleReset, def.Orbit.IdleReset)
	s.Orbit.SpeedThreshold = common.Coalesce(o.SpeedThreshold, def.Orbit.SpeedThreshold)
	s.Orbit.HoldToOrbit = orDefault(o.HoldToOrbit, def.Orbit.HoldToOrbit)

	s.Recoil.DecayRate = common.Coalesce(p.Recoil.DecayRate, def.Recoil.DecayRate)
	s.Recoil.FollowRate = common.Coalesce(p.Recoil.FollowRate, def.Recoil.FollowRate)

	s.Focus.Enabled = orDefault(p.Focus.Enabled, def.Focus.Enabled)
	s.Focus.Speed = common.Coalesce(p.Focus.Speed, def.Focus.Speed)

	return s, nil
}

func fromSettings(s rig.Settings) profile {
	c := s.Chase
	variant := "lookat"
	if c.Variant == rig.ChaseEuler {
		variant = "euler"
	}
	return profile{
		Mode:          s.Mode.String(),
		FovRate:       s.FovRate,
		OcclusionMask: maskNames(s.OcclusionMask),
		Chase: chaseProfile{
			Variant:           variant,
			Distance:          c.Distance,
			Height:            ptr(c.Height),
			LookHeight:        ptr(c.LookHeight),
			Lock:              lockProfile{X: ptr(c.LockX), Y: ptr(c.LockY), Z: ptr(c.LockZ)},
			RotationDamping:   c.RotationDamping[:],
			RotationSmoothing: c.RotationSmoothing,
			FreeFallDamping:   ptr(c.FreeFallDamping),
			ReverseSpeed:      c.ReverseSpeed,
			Fov:               fovFrom(c.Fov),
			FovSpeed:          c.FovSpeed,
			Tilt:              tiltProfile{Enabled: ptr(c.TiltEnabled), Sensitivity: c.TiltSensitivity, Max: c.MaxTilt, Rate: c.TiltRate},
			Accel:             accelProfile{Enabled: ptr(c.AccelEnabled), Scale: c.AccelScale, MaxOffset: c.MaxAccelOffset, Rate: c.AccelRate},
			Occlusion:         ptr(c.OcclusionEnabled),
			Orbit:             ptr(c.OrbitEnabled),
			StartOrbit:        c.StartOrbit[:],
		},
		Hood:      hoodProfile{Fov: fovFrom(s.Hood.Fov), Orbit: ptr(s.Hood.OrbitEnabled)},
		Wheel:     wheelProfile{Fov: fovFrom(s.Wheel.Fov)},
		Fixed:     fixedProfile{Enabled: ptr(s.Fixed.Enabled), Fov: fovFrom(s.Fixed.Fov), NearFov: s.Fixed.NearFov, FarFov: s.Fixed.FarFov},
		Cinematic: cinematicProfile{Enabled: ptr(s.Cinematic.Enabled), Fov: fovFrom(s.Cinematic.Fov)},
		Top: topProfile{
			Angle:        ptr(s.Top.Angle),
			Yaw:          ptr(s.Top.Yaw),
			Distance:     s.Top.Distance,
			LeadTime:     ptr(s.Top.LeadTime),
			MaxLead:      ptr(s.Top.MaxLead),
			Fov:          fovFrom(s.Top.Fov),
			FovSpeed:     s.Top.FovSpeed,
			Orthographic: ptr(s.Top.Orthographic),
			OrthoMin:     s.Top.OrthoMin,
			OrthoMax:     s.Top.OrthoMax,
		},
		Orbit: orbitProfile{
			MinY:            ptr(s.Orbit.MinY),
			MaxY:            ptr(s.Orbit.MaxY),
			Sensitivity:     s.Orbit.Sensitivity,
			DragSensitivity: s.Orbit.DragSensitivity,
			SmoothRate:      s.Orbit.SmoothRate,
			IdleReset:       ptr(s.Orbit.IdleReset),
			SpeedThreshold:  s.Orbit.SpeedThreshold,
			HoldToOrbit:     ptr(s.Orbit.HoldToOrbit),
		},
		Recoil: recoilProfile{DecayRate: s.Recoil.DecayRate, FollowRate: s.Recoil.FollowRate},
		Focus:  focusProfile{Enabled: ptr(s.Focus.Enabled), Speed: s.Focus.Speed},
	}
}

func (f fovProfile) merge(def rig.FovRange) rig.FovRange {
	return rig.FovRange{
		Min:     common.Coalesce(f.Min, def.Min),
		Max:     common.Coalesce(f.Max, def.Max),
		Default: common.Coalesce(f.Default, def.Default),
	}
}

func fovFrom(r rig.FovRange) fovProfile {
	return fovProfile{Min: r.Min, Max: r.Max, Default: r.Default}
}

func parseMask(names []string) (common.Layer, error) {
	var mask common.Layer
	for _, n := range names {
		l, ok := layerNames[strings.ToLower(strings.TrimSpace(n))]
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrUnknownLayer, n)
		}
		mask |= l
	}
	return mask, nil
}

func maskNames(mask common.Layer) []string {
	if mask == common.LayerAll {
		return []string{"all"}
	}
	var names []string
	for n, l := range layerNames {
		if l != common.LayerAll && mask&l != 0 {
			names = append(names, n)
		}
	}
	sort.Slice(names, func(i, j int) bool { return layerNames[names[i]] < layerNames[names[j]] })
	return names
}

func orDefault[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

func ptr[T any](v T) *T {
	return &v
}
