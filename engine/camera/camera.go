package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-rig/common"
	"github.com/Carmen-Shannon/oxy-rig/engine/rig"
	"github.com/go-gl/mathgl/mgl32"
)

// Lens supplies the pose and projection the camera renders with. rig.Rig satisfies it.
type Lens interface {
	Pose() common.Pose
	Fov() float32
	Projection() rig.Projection
	OrthoSize() float32
}

type cameraImpl struct {
	mu *sync.Mutex

	aspect float32
	near   float32
	far    float32

	position mgl32.Vec3

	viewMatrix              mgl32.Mat4
	projectionMatrix        mgl32.Mat4
	viewProjectionMatrix    mgl32.Mat4
	inverseProjectionMatrix mgl32.Mat4

	lens Lens
}

// Camera turns a Lens into view and projection matrices each frame via Update().
type Camera interface {
	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// Near returns the near clipping plane distance.
	//
	// Returns:
	//   - float32: near plane distance
	Near() float32

	// Far returns the far clipping plane distance.
	//
	// Returns:
	//   - float32: far plane distance
	Far() float32

	// Position returns the world-space eye position used by the last Update.
	//
	// Returns:
	//   - mgl32.Vec3: eye position
	Position() mgl32.Vec3

	// ViewMatrix returns the current 4x4 view matrix as 16 floats (column-major).
	//
	// Returns:
	//   - [16]float32: the view matrix
	ViewMatrix() [16]float32

	// ProjectionMatrix returns the current 4x4 projection matrix as 16 floats (column-major).
	//
	// Returns:
	//   - [16]float32: the projection matrix
	ProjectionMatrix() [16]float32

	// ViewProjectionMatrix returns the current combined view-projection matrix as 16 floats (column-major).
	//
	// Returns:
	//   - [16]float32: the combined view-projection matrix
	ViewProjectionMatrix() [16]float32

	// InverseProjectionMatrix returns the inverse of the current projection matrix
	// as 16 floats (column-major).
	//
	// Returns:
	//   - [16]float32: the inverse projection matrix
	InverseProjectionMatrix() [16]float32

	// Lens returns the attached Lens, or nil.
	//
	// Returns:
	//   - Lens: the attached lens or nil
	Lens() Lens

	// Update reads the lens and recomputes matrices. Call once per frame after the rig's
	// late update. Without a lens this does nothing.
	Update()

	// Uniform returns the GPU representation of the current matrices.
	//
	// Returns:
	//   - GPUCameraUniform: view-projection and eye position
	Uniform() GPUCameraUniform

	// SetAspect sets the aspect ratio (width / height) and recomputes matrices.
	//
	// Parameters:
	//   - aspect: the aspect ratio
	SetAspect(aspect float32)

	// SetNear sets the near clipping plane distance and recomputes matrices.
	//
	// Parameters:
	//   - near: near plane distance
	SetNear(near float32)

	// SetFar sets the far clipping plane distance and recomputes matrices.
	//
	// Parameters:
	//   - far: far plane distance
	SetFar(far float32)

	// SetLens attaches a Lens to the camera.
	//
	// Parameters:
	//   - l: the lens to attach
	SetLens(l Lens)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera. A lens must be attached via SetLens or WithLens before
// Update produces anything but identity matrices.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:                      &sync.Mutex{},
		aspect:                  16.0 / 9.0,
		near:                    0.1,
		far:                     500.0,
		viewMatrix:              mgl32.Ident4(),
		projectionMatrix:        mgl32.Ident4(),
		viewProjectionMatrix:    mgl32.Ident4(),
		inverseProjectionMatrix: mgl32.Ident4(),
	}
	for _, option := range options {
		option(c)
	}
	c.updateMatrices()
	return c
}

// zeroToOneDepth remaps OpenGL clip depth [-1, 1] to the [0, 1] range WebGPU expects.
var zeroToOneDepth = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// flipZ turns the pose's +Z-forward local frame into a view space that looks down -Z.
var flipZ = mgl32.Scale3D(1, 1, -1)

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) Position() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) ViewMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return [16]float32(c.viewMatrix)
}

func (c *cameraImpl) ProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return [16]float32(c.projectionMatrix)
}

func (c *cameraImpl) ViewProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return [16]float32(c.viewProjectionMatrix)
}

func (c *cameraImpl) InverseProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return [16]float32(c.inverseProjectionMatrix)
}

func (c *cameraImpl) Lens() Lens {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lens
}

func (c *cameraImpl) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updateMatrices()
}

func (c *cameraImpl) Uniform() GPUCameraUniform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return GPUCameraUniform{
		ViewProj:       [16]float32(c.viewProjectionMatrix),
		CameraPosition: c.position,
	}
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if aspect <= 0 || !common.IsFinite(aspect) {
		return
	}
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) SetNear(near float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.near = near
	c.updateMatrices()
}

func (c *cameraImpl) SetFar(far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.far = far
	c.updateMatrices()
}

func (c *cameraImpl) SetLens(l Lens) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lens = l
	c.updateMatrices()
}

// updateMatrices recalculates the view, projection, view-projection, and inverse projection
// matrices from the lens. A non-finite lens pose leaves the previous matrices in place.
// Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	if c.lens == nil {
		return
	}
	pose := c.lens.Pose()
	if !pose.Finite() {
		return
	}

	eye := pose.Position
	// Pose space is X right, Y up, Z forward.
	toLocal := pose.Rotation.Inverse().Mat4().Mul4(mgl32.Translate3D(-eye.X(), -eye.Y(), -eye.Z()))
	c.viewMatrix = flipZ.Mul4(toLocal)

	switch c.lens.Projection() {
	case rig.ProjectionOrthographic:
		h := c.lens.OrthoSize()
		w := h * c.aspect
		c.projectionMatrix = zeroToOneDepth.Mul4(mgl32.Ortho(-w, w, -h, h, c.near, c.far))
	default:
		c.projectionMatrix = zeroToOneDepth.Mul4(mgl32.Perspective(mgl32.DegToRad(c.lens.Fov()), c.aspect, c.near, c.far))
	}

	c.viewProjectionMatrix = c.projectionMatrix.Mul4(c.viewMatrix)
	c.inverseProjectionMatrix = c.projectionMatrix.Inv()
	c.position = eye
}
