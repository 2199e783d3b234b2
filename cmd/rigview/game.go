package main

import (
	"fmt"
	"image/color"
	"math"

	"github.com/Carmen-Shannon/oxy-rig/common"
	"github.com/Carmen-Shannon/oxy-rig/engine/config"
	"github.com/Carmen-Shannon/oxy-rig/engine/loop"
	"github.com/Carmen-Shannon/oxy-rig/engine/physics"
	"github.com/Carmen-Shannon/oxy-rig/engine/profiler"
	"github.com/Carmen-Shannon/oxy-rig/engine/rig"
	"github.com/Carmen-Shannon/oxy-rig/engine/sim"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/colornames"
)

const (
	screenWidth  = 720
	screenHeight = 860
	viewAspect   = 16.0 / 9.0
)

// Game draws the scenario from above: the course, the vehicle, both satellites and the
// rig's camera frustum. It steps the simulation once per ebiten tick.
type Game struct {
	scenario  *sim.Scenario
	loop      loop.Loop
	occlusion *rig.OcclusionResolver
	scale     float32
}

// NewGame wires the scenario into a loop driven by ebiten's update tick.
func NewGame(s *sim.Scenario, watcher config.Watcher, scale float32) *Game {
	opts := []loop.LoopBuilderOption{
		loop.WithRig(s.Rig),
		loop.WithInput(newEbitenSource(s)),
		loop.WithPhysicsCallback(s.Physics),
		loop.WithMotionCallback(s.Motion),
		loop.WithProfiling(true),
		loop.WithProfiler(profiler.NewProfiler(profiler.WithRig(s.Rig))),
	}
	if watcher != nil {
		opts = append(opts, loop.WithSettings(watcher.Reloads()))
	}
	return &Game{
		scenario:  s,
		loop:      loop.NewLoop(opts...),
		occlusion: rig.NewOcclusionResolver(s.World, s.Rig.Settings().OcclusionMask),
		scale:     scale,
	}
}

func (g *Game) Update() error {
	g.loop.Step(float32(1 / float64(ebiten.TPS())))
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Darkolivegreen)

	for _, o := range g.scenario.Course.Obstacles {
		g.drawObstacle(screen, o)
	}
	for _, wp := range g.scenario.Course.Waypoints {
		x, y := g.toScreen(wp)
		vector.StrokeRect(screen, x-2, y-2, 4, 4, 1, colornames.Khaki, false)
	}

	g.drawVehicle(screen)
	g.drawSatellites(screen)
	g.drawCamera(screen)
	g.drawHUD(screen)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

// toScreen maps world XZ onto the screen with +Z pointing up.
func (g *Game) toScreen(p mgl32.Vec3) (float32, float32) {
	return screenWidth/2 + p.X()*g.scale, screenHeight/2 - p.Z()*g.scale
}

func (g *Game) drawObstacle(screen *ebiten.Image, o physics.Obstacle) {
	x0, y0 := g.toScreen(mgl32.Vec3{o.Min.X(), 0, o.Max.Z()})
	x1, y1 := g.toScreen(mgl32.Vec3{o.Max.X(), 0, o.Min.Z()})
	w, h := x1-x0, y1-y0

	switch {
	case o.Trigger:
		vector.StrokeRect(screen, x0, y0, w, h, 1, colornames.Lightgreen, false)
	case o.Min.Y() > 0:
		// overhead: cars pass under, cameras do not
		vector.FillRect(screen, x0, y0, w, h, color.RGBA{R: 112, G: 128, B: 144, A: 120}, false)
		vector.StrokeRect(screen, x0, y0, w, h, 1, colornames.Slategray, false)
	case o.Layer == common.LayerProp:
		vector.FillRect(screen, x0, y0, w, h, colornames.Orange, false)
	default:
		vector.FillRect(screen, x0, y0, w, h, colornames.Dimgray, false)
	}
}

func (g *Game) drawVehicle(screen *ebiten.Image) {
	v := g.scenario.Vehicle
	pos := v.Node().WorldPosition()
	x, y := g.toScreen(pos)
	heading := v.Heading()
	nose := pos.Add(mgl32.Vec3{float32(math.Sin(float64(heading))), 0, float32(math.Cos(float64(heading)))}.Mul(3))
	nx, ny := g.toScreen(nose)

	body := colornames.Crimson
	if !v.Grounded() {
		body = colornames.Lightcoral
	}
	vector.DrawFilledCircle(screen, x, y, 1.2*g.scale, body, true)
	vector.StrokeLine(screen, x, y, nx, ny, 2, colornames.White, true)
}

func (g *Game) drawSatellites(screen *ebiten.Image) {
	fx, fy := g.toScreen(g.scenario.Fixed.Position())
	vector.StrokeLine(screen, fx-5, fy, fx+5, fy, 1, colornames.Gold, false)
	vector.StrokeLine(screen, fx, fy-5, fx, fy+5, 1, colornames.Gold, false)

	cx, cy := g.toScreen(g.scenario.Cinematic.Node().WorldPosition())
	vector.StrokeRect(screen, cx-4, cy-4, 8, 8, 1, colornames.Plum, false)
}

func (g *Game) drawCamera(screen *ebiten.Image) {
	r := g.scenario.Rig
	pose := r.Pose()
	if !pose.Finite() {
		return
	}
	x, y := g.toScreen(pose.Position)

	v := g.scenario.Vehicle
	follow := v.Node().WorldPosition().Add(common.Up)
	tx, ty := g.toScreen(follow)
	sight := colornames.Lightskyblue
	if g.occlusion.TestOcclusion(v, follow, pose.Position) {
		sight = colornames.Red
	}
	vector.StrokeLine(screen, x, y, tx, ty, 1, sight, false)

	// Horizontal half-angle of the frustum, or the ortho half width.
	fwd := common.FlatDirection(pose.Forward())
	right := mgl32.Vec3{fwd.Z(), 0, -fwd.X()}
	const reach = 20
	var a, b mgl32.Vec3
	if r.Projection() == rig.ProjectionOrthographic {
		half := r.OrthoSize() * viewAspect
		a = pose.Position.Add(right.Mul(-half))
		b = pose.Position.Add(right.Mul(half))
		a2, b2 := a.Add(fwd.Mul(reach)), b.Add(fwd.Mul(reach))
		g.strokeSegment(screen, a, a2)
		g.strokeSegment(screen, b, b2)
		g.strokeSegment(screen, a, b)
	} else {
		halfV := float64(mgl32.DegToRad(r.Fov())) / 2
		halfH := float32(math.Atan(math.Tan(halfV) * viewAspect))
		for _, side := range []float32{-1, 1} {
			dir := mgl32.QuatRotate(side*halfH, common.Up).Rotate(fwd)
			g.strokeSegment(screen, pose.Position, pose.Position.Add(dir.Mul(reach)))
		}
	}
	vector.DrawFilledCircle(screen, x, y, 4, colornames.Deepskyblue, true)
}

func (g *Game) strokeSegment(screen *ebiten.Image, a, b mgl32.Vec3) {
	x0, y0 := g.toScreen(a)
	x1, y1 := g.toScreen(b)
	vector.StrokeLine(screen, x0, y0, x1, y1, 1, colornames.Deepskyblue, true)
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	s := g.scenario
	r := s.Rig
	lens := fmt.Sprintf("fov %.1f", r.Fov())
	if r.Projection() == rig.ProjectionOrthographic {
		lens = fmt.Sprintf("ortho %.1f", r.OrthoSize())
	}
	driver := "manual"
	if a := s.Autopilot(); a != nil {
		driver = fmt.Sprintf("autopilot (lap %d)", a.Laps())
	}
	focus := ""
	if r.Focusing() {
		focus = "  focusing"
	}
	hud := fmt.Sprintf("mode %s  %s%s\nspeed %.1f m/s  %s\nimpacts %d  fixed repositions %d  FPS %.0f\n"+
		"C cycle  1-6 mode  B look back  RMB orbit  WASD drive  R autopilot  F focus  Space jump",
		r.Mode(), lens, focus, s.Vehicle.Speed(), driver, s.Impacts(), s.Fixed.Repositions(), ebiten.ActualFPS())
	ebitenutil.DebugPrintAt(screen, hud, 8, 8)
}
