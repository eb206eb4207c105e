package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/milk9111/overworld/defs"
	"github.com/milk9111/overworld/ecs"
	"github.com/milk9111/overworld/ecs/component"
	"github.com/milk9111/overworld/ecs/entity"
	"github.com/milk9111/overworld/ecs/render"
	"github.com/milk9111/overworld/ecs/system"
	"github.com/milk9111/overworld/physics"
	"github.com/milk9111/overworld/viewer"
)

const (
	baseWidth  = 1280
	baseHeight = 720
)

// Game owns the world, the system schedule, and the two side surfaces: the
// websocket pose viewer and the def file watcher.
type Game struct {
	world     *ecs.World
	scheduler *ecs.Scheduler
	phys      *system.PhysicsSystem
	chars     *system.Characters
	scripts   *system.ScriptSystem

	hub   *viewer.Hub
	watch *defs.Watcher

	// character name -> spec file, for live tuning reload.
	specsByChar map[string]string
}

func NewGame(levelName, addr string) (*Game, error) {
	spec, err := defs.LoadLevelSpec(levelName)
	if err != nil {
		return nil, err
	}

	world := ecs.NewWorld()
	phys := system.NewPhysicsSystem(physics.NewSpace(spec.Gravity.Vec3()))
	chars := system.NewCharacters()
	scripts := system.NewScriptSystem(chars, defs.LoadScript)

	g := &Game{
		world:       world,
		phys:        phys,
		chars:       chars,
		scripts:     scripts,
		specsByChar: make(map[string]string),
	}
	g.scheduler = ecs.NewScheduler(
		system.NewInputSystem(chars),
		scripts,
		system.NewPlatformSystem(),
		phys,
		system.NewCameraSystem(),
	)

	if err := g.spawn(spec); err != nil {
		return nil, err
	}

	if addr != "" {
		g.hub = viewer.NewHub()
		go func() {
			if err := http.ListenAndServe(addr, g.hub.Handler()); err != nil {
				log.Printf("viewer: %v", err)
			}
		}()
		log.Printf("viewer listening on %s", addr)
	}

	if watch, err := defs.NewWatcher("defs", "defs/scripts"); err == nil {
		g.watch = watch
	} else {
		log.Printf("defs: watch disabled: %v", err)
	}

	return g, nil
}

func (g *Game) spawn(spec defs.LevelSpec) error {
	cam := spec.Camera
	if _, err := entity.NewCameraRig(g.world, "", cam.Offset.Vec3(), cam.Smoothness, cam.Zoom); err != nil {
		return err
	}
	for _, b := range spec.Boxes {
		if _, err := entity.NewStaticBox(g.world, g.phys, b.Name, b.Position.Vec3(), b.Rotation(), b.Size.Vec3(), b.Friction); err != nil {
			return fmt.Errorf("spawn box %s: %w", b.Name, err)
		}
	}
	for _, s := range spec.Stairs {
		if _, err := entity.NewStairs(g.world, g.phys, entity.StairsParams{
			Name:     s.Name,
			Position: s.Position.Vec3(),
			Steps:    s.Steps,
			Rise:     s.Rise,
			Run:      s.Run,
			Width:    s.Width,
			Friction: s.Friction,
		}); err != nil {
			return fmt.Errorf("spawn stairs %s: %w", s.Name, err)
		}
	}
	for _, p := range spec.Platforms {
		waypoints := make([]component.Waypoint, 0, len(p.Waypoints))
		for _, ws := range p.Waypoints {
			waypoints = append(waypoints, ws.Waypoint())
		}
		if _, err := entity.NewMovingPlatform(g.world, g.phys, entity.PlatformParams{
			Name:      p.Name,
			Position:  p.Position.Vec3(),
			Size:      p.Size.Vec3(),
			Friction:  p.Friction,
			Waypoints: waypoints,
		}); err != nil {
			return fmt.Errorf("spawn platform %s: %w", p.Name, err)
		}
	}
	for _, c := range spec.Characters {
		if err := g.spawnCharacter(c); err != nil {
			return fmt.Errorf("spawn character %s: %w", c.Name, err)
		}
	}
	return nil
}

func (g *Game) spawnCharacter(c defs.CharacterPlacementSpec) error {
	specName := c.Spec
	if specName == "" {
		specName = "character.yaml"
	}
	cs, err := defs.LoadCharacterSpec(specName)
	if err != nil {
		return err
	}

	params := entity.CharacterParams{
		Name:         c.Name,
		Position:     c.Position.Vec3(),
		Tuning:       cs.Tuning(),
		Script:       c.Script,
		CameraTarget: c.CameraTarget,
	}
	if c.Controlled {
		bs, err := defs.LoadBindingsSpec("bindings.yaml")
		if err != nil {
			return err
		}
		bindings, err := bs.Bindings()
		if err != nil {
			return err
		}
		params.Bindings = &bindings
	}

	if _, err := entity.NewCharacter(g.world, g.phys, g.chars, params); err != nil {
		return err
	}
	g.specsByChar[c.Name] = specName
	return nil
}

// reloadTunings re-reads every spawned character's spec and swaps the tuning
// block in place. Edits to geometry fields only take effect on respawn; the
// live body keeps its colliders.
func (g *Game) reloadTunings() {
	for name, specName := range g.specsByChar {
		cs, err := defs.LoadCharacterSpec(specName)
		if err != nil {
			log.Printf("defs: reload %s: %v", specName, err)
			continue
		}
		if ctrl, ok := g.chars.Get(name); ok {
			ctrl.State().Tuning = cs.Tuning()
		}
	}
}

func (g *Game) Update() error {
	g.drainWatcher()
	g.scheduler.Update(g.world)

	for _, evt := range g.world.Events().Drain() {
		name := "?"
		if ctrl, ok := g.chars.ByEntity(evt.Entity); ok {
			name = ctrl.Name()
		}
		log.Printf("event: %s %s", evt.Kind, name)
	}

	if g.hub != nil {
		if err := g.hub.BroadcastSnapshot(g.world); err != nil {
			log.Printf("viewer: broadcast: %v", err)
		}
	}
	return nil
}

func (g *Game) drainWatcher() {
	if g.watch == nil {
		return
	}
	for {
		select {
		case path, ok := <-g.watch.Events:
			if !ok {
				g.watch = nil
				return
			}
			log.Printf("defs: %s changed, reloading", path)
			g.scripts.Invalidate()
			g.reloadTunings()
		case err, ok := <-g.watch.Errors:
			if !ok {
				g.watch = nil
				return
			}
			log.Printf("defs: watch: %v", err)
		default:
			return
		}
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	render.DrawDebug(g.world, screen)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("TPS: %.0f", ebiten.ActualTPS()), 10, baseHeight-20)
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}

func (g *Game) Close() {
	if g.watch != nil {
		_ = g.watch.Close()
	}
}
