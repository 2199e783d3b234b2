package main

import (
	"flag"
	"log"

	"github.com/Carmen-Shannon/oxy-rig/engine/config"
	"github.com/Carmen-Shannon/oxy-rig/engine/curve"
	"github.com/Carmen-Shannon/oxy-rig/engine/rig"
	"github.com/Carmen-Shannon/oxy-rig/engine/sim"
	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	configPath := flag.String("config", "", "rig profile (yaml); defaults are used when empty")
	curvePath := flag.String("curve", "", "tengo script driving the cinematic fov")
	seed := flag.Int64("seed", 1, "fixed satellite probe seed")
	scale := flag.Float64("scale", 5, "pixels per metre")
	flag.Parse()

	settings := rig.DefaultSettings()
	if *configPath != "" {
		s, err := config.Load(*configPath)
		if err != nil {
			log.Fatal(err)
		}
		settings = s
	}

	opts := []sim.ScenarioBuilderOption{sim.WithSettings(settings), sim.WithSeed(*seed)}
	if *curvePath != "" {
		sampler, err := curve.LoadSampler(*curvePath)
		if err != nil {
			log.Fatal(err)
		}
		opts = append(opts, sim.WithCurve(sampler))
	}

	scenario, err := sim.NewScenario(opts...)
	if err != nil {
		log.Fatal(err)
	}
	defer scenario.Close()

	var watcher config.Watcher
	if *configPath != "" {
		if watcher, err = config.NewWatcher(*configPath); err != nil {
			log.Fatal(err)
		}
		defer watcher.Close()
	}

	game := NewGame(scenario, watcher, float32(*scale))

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("rigview")

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
