package renderer

import (
	"image/color"
	"sync"

	"github.com/Carmen-Shannon/oxy-rig/engine/window"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backendType RendererBackendType
	backend     RendererBackend

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingClear         color.Color
}

// Renderer presents the interactive rig view. Each frame it uploads the camera uniform and
// clears the surface to a color the host picks (typically keyed to the active camera mode).
type Renderer interface {
	// Resize configures the underlying backend to handle a new surface size.
	// This should be called when re-sizing the window or when the surface size should change.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// SetPresentMode changes how frames are delivered to the display.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// SetClearColor sets the background color used by the next frame.
	//
	// Parameters:
	//   - c: the clear color
	SetClearColor(c color.Color)

	// WriteUniform writes the camera uniform bytes to the GPU camera buffer.
	//
	// Parameters:
	//   - data: the marshalled uniform
	WriteUniform(data []byte)

	// BeginFrame acquires the next surface texture and begins the main render pass.
	//
	// Returns:
	//   - error: an error if the surface texture could not be acquired
	BeginFrame() error

	// EndFrame ends the render pass and submits the frame's commands.
	// Does not present the surface; call Present() after EndFrame to display the frame.
	EndFrame()

	// Present displays the frame submitted by EndFrame.
	Present()

	// Release frees the GPU resources owned by the renderer.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer for the given window and configures its surface.
//
// Parameters:
//   - backendType: the GPU backend to use
//   - window: the window providing the surface
//   - options: functional options applied before the backend is created
//
// Returns:
//   - Renderer: the newly created renderer
//   - error: an error if the GPU could not be initialized
func NewRenderer(backendType RendererBackendType, window window.Window, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:          &sync.Mutex{},
		backendType: backendType,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		b, err := newWGPURendererBackend(window.SurfaceDescriptor(), r.forceFallbackAdapter)
		if err != nil {
			return nil, err
		}
		r.backend = b
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}
	if r.pendingClear != nil {
		r.backend.SetClearColor(r.pendingClear)
	}

	r.backend.ConfigureSurface(window.Width(), window.Height())
	return r, nil
}

func (r *renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) SetClearColor(c color.Color) {
	r.backend.SetClearColor(c)
}

func (r *renderer) WriteUniform(data []byte) {
	r.backend.WriteCameraUniform(data)
}

func (r *renderer) BeginFrame() error {
	return r.backend.BeginFrame()
}

func (r *renderer) EndFrame() {
	r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.Release()
}
