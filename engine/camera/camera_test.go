package camera

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-rig/common"
	"github.com/Carmen-Shannon/oxy-rig/engine/rig"
	"github.com/go-gl/mathgl/mgl32"
)

const epsilon = 1e-4

type lens struct {
	pose       common.Pose
	fov        float32
	projection rig.Projection
	ortho      float32
}

func (l *lens) Pose() common.Pose          { return l.pose }
func (l *lens) Fov() float32               { return l.fov }
func (l *lens) Projection() rig.Projection { return l.projection }
func (l *lens) OrthoSize() float32         { return l.ortho }

type recorder struct {
	writes [][]byte
}

func (r *recorder) WriteUniform(data []byte) {
	r.writes = append(r.writes, data)
}

func transform(m [16]float32, p mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Mat4(m).Mul4x1(p.Vec4(1)).Vec3()
}

func vecNear(a, b mgl32.Vec3, tol float32) bool {
	return a.Sub(b).Len() <= tol
}

func chaseLens() *lens {
	return &lens{
		pose: common.Pose{Position: mgl32.Vec3{0, 1.5, -6.5}, Rotation: mgl32.QuatIdent()},
		fov:  70,
	}
}

func TestViewMatrixFollowsPose(t *testing.T) {
	l := chaseLens()
	c := NewCamera(WithLens(l))
	view := c.ViewMatrix()

	cases := []struct {
		name  string
		world mgl32.Vec3
		want  mgl32.Vec3
	}{
		{"eye", mgl32.Vec3{0, 1.5, -6.5}, mgl32.Vec3{0, 0, 0}},
		{"ahead", mgl32.Vec3{0, 1.5, -1.5}, mgl32.Vec3{0, 0, -5}},
		{"right", mgl32.Vec3{1, 1.5, -6.5}, mgl32.Vec3{1, 0, 0}},
		{"up", mgl32.Vec3{0, 2.5, -6.5}, mgl32.Vec3{0, 1, 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := transform(view, tc.world); !vecNear(got, tc.want, epsilon) {
				t.Fatalf("view * %v = %v, want %v", tc.world, got, tc.want)
			}
		})
	}

	if c.Position() != l.pose.Position {
		t.Fatalf("position = %v, want %v", c.Position(), l.pose.Position)
	}
}

func TestProjectionSwitch(t *testing.T) {
	l := chaseLens()
	c := NewCamera(WithLens(l), WithAspect(2))

	proj := c.ProjectionMatrix()
	wantY := float32(1 / math.Tan(float64(mgl32.DegToRad(35))))
	if math.Abs(float64(proj[5]-wantY)) > epsilon || math.Abs(float64(proj[0]-wantY/2)) > epsilon {
		t.Fatalf("perspective scale = (%v, %v), want (%v, %v)", proj[0], proj[5], wantY/2, wantY)
	}

	l.projection = rig.ProjectionOrthographic
	l.ortho = 10
	c.Update()
	proj = c.ProjectionMatrix()
	if math.Abs(float64(proj[5]-0.1)) > epsilon || math.Abs(float64(proj[0]-0.05)) > epsilon {
		t.Fatalf("orthographic scale = (%v, %v), want (0.05, 0.1)", proj[0], proj[5])
	}
	if proj[11] != 0 || proj[15] != 1 {
		t.Fatalf("orthographic matrix has a perspective row: %v", proj)
	}
}

func TestDepthRangeZeroToOne(t *testing.T) {
	l := chaseLens()
	c := NewCamera(WithLens(l), WithNear(0.1), WithFar(500))
	vp := mgl32.Mat4(c.ViewProjectionMatrix())

	cases := []struct {
		name  string
		ahead float32
		want  float32
	}{
		{"near", 0.1, 0},
		{"far", 500, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clip := vp.Mul4x1(l.pose.Position.Add(mgl32.Vec3{0, 0, tc.ahead}).Vec4(1))
			if got := clip.Z() / clip.W(); math.Abs(float64(got-tc.want)) > 1e-3 {
				t.Fatalf("depth at %v = %v, want %v", tc.ahead, got, tc.want)
			}
		})
	}
}

func TestNonFinitePoseKeepsMatrices(t *testing.T) {
	l := chaseLens()
	c := NewCamera(WithLens(l))
	before := c.ViewProjectionMatrix()

	l.pose.Position = mgl32.Vec3{float32(math.NaN()), 0, 0}
	c.Update()
	if c.ViewProjectionMatrix() != before {
		t.Fatalf("non-finite pose changed the view-projection matrix")
	}
}

func TestNoLensIsIdentity(t *testing.T) {
	c := NewCamera()
	c.Update()
	if c.ViewMatrix() != [16]float32(mgl32.Ident4()) || c.Lens() != nil {
		t.Fatalf("camera without a lens should keep identity matrices")
	}
}

func TestAspectRejectsInvalid(t *testing.T) {
	c := NewCamera(WithAspect(1.5))
	c.SetAspect(0)
	c.SetAspect(float32(math.Inf(1)))
	if c.Aspect() != 1.5 {
		t.Fatalf("aspect = %v, want 1.5", c.Aspect())
	}
}

func TestUploadMarshalsUniform(t *testing.T) {
	c := NewCamera(WithLens(chaseLens()))
	r := &recorder{}
	Upload(c, r)

	if len(r.writes) != 1 {
		t.Fatalf("writes = %d, want 1", len(r.writes))
	}
	data := r.writes[0]
	if len(data) != 80 {
		t.Fatalf("uniform size = %d, want 80", len(data))
	}
	vp := c.ViewProjectionMatrix()
	if got := math.Float32frombits(binary.LittleEndian.Uint32(data[20:])); got != vp[5] {
		t.Fatalf("view_proj[5] = %v, want %v", got, vp[5])
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(data[68:])); got != 1.5 {
		t.Fatalf("camera_position.y = %v, want 1.5", got)
	}
}
