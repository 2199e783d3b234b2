package main

import (
	"fmt"
	"log"

	"github.com/Carmen-Shannon/oxy-rig/common"
	"github.com/Carmen-Shannon/oxy-rig/engine/camera"
	"github.com/Carmen-Shannon/oxy-rig/engine/input"
	"github.com/Carmen-Shannon/oxy-rig/engine/loop"
	"github.com/Carmen-Shannon/oxy-rig/engine/renderer"
	"github.com/Carmen-Shannon/oxy-rig/engine/sim"
	"github.com/Carmen-Shannon/oxy-rig/engine/window"
	"golang.org/x/image/colornames"
)

// runInteractive opens a window, feeds GLFW input to the rig and clears the swapchain each
// frame after uploading the camera uniform.
func runInteractive(s *sim.Scenario, loopOpts []loop.LoopBuilderOption) error {
	win := window.NewWindow(
		window.WithTitle("Rig Sim"),
		window.WithWidth(1280),
		window.WithHeight(720),
	)

	rend, err := renderer.NewRenderer(
		renderer.BackendTypeWGPU,
		win,
		renderer.WithPresentMode(renderer.PresentModeVSync),
		renderer.WithClearColor(colornames.Lightsteelblue),
	)
	if err != nil {
		return fmt.Errorf("rigsim: %w", err)
	}
	defer rend.Release()

	cam := camera.NewCamera(
		camera.WithLens(s.Rig),
		camera.WithAspect(float32(win.Width())/float32(max(win.Height(), 1))),
	)

	devices := input.NewDeviceSource(s.Dispatcher, input.DefaultBindings())
	setupInput(win, devices, s)

	l := loop.NewLoop(append(loopOpts,
		loop.WithWindow(win),
		loop.WithInput(devices),
		loop.WithViewer(cam),
		loop.WithMotionCallback(func(dt float32) {
			if s.Autopilot() == nil {
				drive(devices, s)
			}
			s.Motion(dt)
		}),
		loop.WithResizeCallback(rend.Resize),
		loop.WithFrameCallback(func(float32) {
			camera.Upload(cam, rend)
			if err := rend.BeginFrame(); err != nil {
				return
			}
			rend.EndFrame()
			rend.Present()
		}),
	)...)

	fmt.Println("Rig Sim")
	fmt.Println("  C = cycle camera   1-6 = pick mode   B = look back   right mouse = orbit")
	fmt.Println("  WASD = drive (disables autopilot)   R = autopilot   Space = jump   F = auto-focus")

	l.Run()
	return nil
}

// setupInput routes window events into the device source and handles the driving keys.
func setupInput(win window.Window, devices input.DeviceSource, s *sim.Scenario) {
	win.SetKeyDownCallback(func(code uint32) {
		repeat := devices.Held(code)
		devices.KeyDown(code)
		if repeat {
			return
		}
		switch code {
		case common.KeyW, common.KeyA, common.KeyS, common.KeyD:
			s.SetAutopilot(false)
		case common.KeyR:
			s.SetAutopilot(true)
		case common.KeySpace:
			s.Vehicle.Jump(6)
		case common.KeyF:
			if err := s.Rig.AutoFocus(s.Vehicle); err != nil {
				log.Printf("[RigSim] auto-focus: %v", err)
			}
		}
	})
	win.SetKeyUpCallback(devices.KeyUp)
	win.SetMouseButtonCallback(func(button int, pressed bool) {
		if pressed {
			devices.ButtonDown(button)
		} else {
			devices.ButtonUp(button)
		}
	})
	win.SetMouseMoveCallback(devices.CursorMoved)
}

// drive maps the held WASD keys onto the vehicle controls.
func drive(devices input.DeviceSource, s *sim.Scenario) {
	var throttle, steer float32
	if devices.Held(common.KeyW) {
		throttle++
	}
	if devices.Held(common.KeyS) {
		throttle--
	}
	if devices.Held(common.KeyD) {
		steer++
	}
	if devices.Held(common.KeyA) {
		steer--
	}
	s.Vehicle.SetControls(throttle, steer)
}
