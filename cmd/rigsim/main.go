package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/Carmen-Shannon/oxy-rig/engine/camera"
	"github.com/Carmen-Shannon/oxy-rig/engine/config"
	"github.com/Carmen-Shannon/oxy-rig/engine/curve"
	"github.com/Carmen-Shannon/oxy-rig/engine/input"
	"github.com/Carmen-Shannon/oxy-rig/engine/loop"
	"github.com/Carmen-Shannon/oxy-rig/engine/profiler"
	"github.com/Carmen-Shannon/oxy-rig/engine/rig"
	"github.com/Carmen-Shannon/oxy-rig/engine/sim"
)

type options struct {
	configPath  string
	watch       bool
	curvePath   string
	writeConfig string
	seconds     float64
	tour        time.Duration
	seed        int64
	profile     bool
	interactive bool
}

func main() {
	var o options
	flag.StringVar(&o.configPath, "config", "", "rig profile (yaml); defaults are used when empty")
	flag.BoolVar(&o.watch, "watch", true, "reload the rig profile when it changes on disk")
	flag.StringVar(&o.curvePath, "curve", "", "tengo script driving the cinematic fov")
	flag.StringVar(&o.writeConfig, "write-config", "", "write the default rig profile to this path and exit")
	flag.Float64Var(&o.seconds, "seconds", 30, "headless run length in simulated seconds")
	flag.DurationVar(&o.tour, "tour", 4*time.Second, "headless: cycle the camera mode this often (0 disables)")
	flag.Int64Var(&o.seed, "seed", 1, "fixed satellite probe seed")
	flag.BoolVar(&o.profile, "profile", true, "log frame and rig telemetry")
	flag.BoolVar(&o.interactive, "interactive", false, "open a window and drive with the keyboard")
	flag.Parse()

	if o.writeConfig != "" {
		if err := writeDefaultConfig(o.writeConfig); err != nil {
			log.Fatal(err)
		}
		log.Printf("[RigSim] wrote default profile to %s", o.writeConfig)
		return
	}

	settings := rig.DefaultSettings()
	if o.configPath != "" {
		s, err := config.Load(o.configPath)
		if err != nil {
			log.Fatal(err)
		}
		settings = s
	}

	scenarioOpts := []sim.ScenarioBuilderOption{
		sim.WithSettings(settings),
		sim.WithSeed(o.seed),
	}
	if o.curvePath != "" {
		sampler, err := curve.LoadSampler(o.curvePath)
		if err != nil {
			log.Fatal(err)
		}
		scenarioOpts = append(scenarioOpts, sim.WithCurve(sampler))
	}

	scenario, err := sim.NewScenario(scenarioOpts...)
	if err != nil {
		log.Fatal(err)
	}
	defer scenario.Close()

	loopOpts := []loop.LoopBuilderOption{
		loop.WithRig(scenario.Rig),
		loop.WithPhysicsCallback(scenario.Physics),
		loop.WithProfiling(o.profile),
		loop.WithProfiler(profiler.NewProfiler(profiler.WithRig(scenario.Rig))),
	}

	if o.configPath != "" && o.watch {
		w, err := config.NewWatcher(o.configPath)
		if err != nil {
			log.Fatal(err)
		}
		defer w.Close()
		loopOpts = append(loopOpts, loop.WithSettings(w.Reloads()))
	}

	if err := scenario.Rig.AutoFocus(scenario.Vehicle); err != nil {
		log.Printf("[RigSim] auto-focus unavailable: %v", err)
	}

	if o.interactive {
		if err := runInteractive(scenario, loopOpts); err != nil {
			log.Fatal(err)
		}
		return
	}
	runHeadless(scenario, loopOpts, o)
}

func runHeadless(s *sim.Scenario, loopOpts []loop.LoopBuilderOption, o options) {
	cam := camera.NewCamera(camera.WithLens(s.Rig))
	l := loop.NewLoop(append(loopOpts,
		loop.WithViewer(cam),
		loop.WithMotionCallback(s.Motion),
	)...)

	const dt = float32(1.0 / 60)
	frames := int(o.seconds / float64(dt))
	tourFrames := int(o.tour.Seconds() / float64(dt))

	log.Printf("[RigSim] headless run: %.0fs, mode %s", o.seconds, s.Rig.Mode())
	for i := 1; i <= frames; i++ {
		if tourFrames > 0 && i%tourFrames == 0 {
			s.Dispatcher.Publish(input.Event{Kind: input.EventCycleCamera})
		}
		l.Step(dt)
	}

	laps := 0
	if a := s.Autopilot(); a != nil {
		laps = a.Laps()
	}
	log.Printf("[RigSim] done: %d frames, %d physics steps, %d impacts, %d mode changes, %d laps, camera at %v",
		l.Frames(), l.PhysicsSteps(), s.Impacts(), s.Transitions(), laps, cam.Position())
}

func writeDefaultConfig(path string) error {
	data, err := config.Encode(rig.DefaultSettings())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
