package system_test

import (
	"fmt"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/overworld/ecs"
	"github.com/milk9111/overworld/ecs/component"
	"github.com/milk9111/overworld/ecs/system"
)

const walkScript = `
update := func(engine, state, dt) {
	engine.move(1.0)
}
`

func attachScript(t *testing.T, r *rig, path string) {
	t.Helper()
	if err := ecs.Add(r.world, r.char.Entity, component.ScriptComponent.Kind(), &component.Script{Path: path}); err != nil {
		t.Fatalf("attach script: %v", err)
	}
}

func scriptLoader(sources map[string]string) func(string) ([]byte, error) {
	return func(path string) ([]byte, error) {
		src, ok := sources[path]
		if !ok {
			return nil, fmt.Errorf("no script %q", path)
		}
		return []byte(src), nil
	}
}

func TestScriptDrivesCharacter(t *testing.T) {
	r := newRig(t, earthGravity, mgl64.Vec3{0, 1.5, 0}, standardTuning())
	r.addFloor()
	r.step(90)
	attachScript(t, r, "walk.tengo")

	scripts := system.NewScriptSystem(r.chars, scriptLoader(map[string]string{
		"walk.tengo": walkScript,
	}))
	scripts.Update(r.world)

	approxEqual(t, r.ctrl.Body().Linvel().Z(), 40*r.world.Dt(), 1e-9, "scripted move velocity")
}

func TestScriptStatePersistsAcrossTicks(t *testing.T) {
	r := newRig(t, earthGravity, mgl64.Vec3{0, 1.5, 0}, standardTuning())
	r.addFloor()
	r.step(90)
	attachScript(t, r, "counter.tengo")

	scripts := system.NewScriptSystem(r.chars, scriptLoader(map[string]string{
		"counter.tengo": `
update := func(engine, state, dt) {
	if is_undefined(state.ticks) {
		state.ticks = 0
	}
	state.ticks += 1
	if state.ticks >= 2 {
		engine.move(1.0)
	}
}
`,
	}))

	scripts.Update(r.world)
	if v := r.ctrl.Body().Linvel().Z(); v != 0 {
		t.Fatalf("script moved on first tick: %v", v)
	}
	scripts.Update(r.world)
	if v := r.ctrl.Body().Linvel().Z(); v <= 0 {
		t.Fatalf("script state lost between ticks: velocity %v", v)
	}
}

func TestBrokenScriptQuarantinedUntilReload(t *testing.T) {
	r := newRig(t, earthGravity, mgl64.Vec3{0, 1.5, 0}, standardTuning())
	r.addFloor()
	r.step(90)
	attachScript(t, r, "brain.tengo")

	sources := map[string]string{
		"brain.tengo": `
update := func(engine, state, dt) {
	engine.missing()
}
`,
	}
	scripts := system.NewScriptSystem(r.chars, scriptLoader(sources))

	scripts.Update(r.world)
	scripts.Update(r.world)
	if v := r.ctrl.Body().Linvel().Z(); v != 0 {
		t.Fatalf("broken script moved the character: %v", v)
	}

	// An edit plus invalidation brings the runtime back.
	sources["brain.tengo"] = walkScript
	scripts.Invalidate()
	scripts.Update(r.world)
	if v := r.ctrl.Body().Linvel().Z(); v <= 0 {
		t.Fatalf("reloaded script did not run: velocity %v", v)
	}
}

func TestScriptCompileErrorIsSafe(t *testing.T) {
	r := newRig(t, earthGravity, mgl64.Vec3{0, 1.5, 0}, standardTuning())
	r.addFloor()
	r.step(90)
	attachScript(t, r, "garbage.tengo")

	scripts := system.NewScriptSystem(r.chars, scriptLoader(map[string]string{
		"garbage.tengo": `update := func(`,
	}))

	scripts.Update(r.world)
	scripts.Update(r.world)
	if v := r.ctrl.Body().Linvel().Z(); v != 0 {
		t.Fatalf("garbage script moved the character: %v", v)
	}
}
