package system

import (
	"log"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"github.com/milk9111/overworld/ecs"
	"github.com/milk9111/overworld/ecs/component"
)

// ScriptSystem runs tengo behaviour scripts against character controllers.
// A script declares an update function and receives an engine surface with
// the same commands a player has, plus read access to the character state.
type ScriptSystem struct {
	chars   *Characters
	runtime map[ecs.Entity]*scriptRuntime
	load    func(string) ([]byte, error)
}

type scriptRuntime struct {
	path     string
	compiled *tengo.Compiled
	state    *tengo.Map
	broken   bool
}

const scriptDispatchSource = `
if __phase == "update" {
	update(__engine, __state, __dt)
}
`

func NewScriptSystem(chars *Characters, load func(string) ([]byte, error)) *ScriptSystem {
	return &ScriptSystem{
		chars:   chars,
		runtime: make(map[ecs.Entity]*scriptRuntime),
		load:    load,
	}
}

func (s *ScriptSystem) Update(w *ecs.World) {
	ecs.ForEach(w, component.ScriptComponent.Kind(), func(e ecs.Entity, sc *component.Script) {
		ctrl, ok := s.chars.ByEntity(e)
		if !ok {
			return
		}
		rt, err := s.runtimeFor(e, sc.Path)
		if err != nil {
			log.Printf("script: entity %d load %q: %v", e, sc.Path, err)
			return
		}
		if rt.broken {
			return
		}
		if err := rt.run(buildScriptEngine(w, ctrl), w.Dt()); err != nil {
			// One report per break; the runtime stays dead until the
			// script is edited and reloaded.
			rt.broken = true
			log.Printf("script: entity %d update %q: %v", e, sc.Path, err)
		}
	})
}

// Invalidate drops every compiled runtime so edited scripts reload on the
// next tick. The watcher calls this.
func (s *ScriptSystem) Invalidate() {
	s.runtime = make(map[ecs.Entity]*scriptRuntime)
}

func (s *ScriptSystem) runtimeFor(e ecs.Entity, path string) (*scriptRuntime, error) {
	if rt, ok := s.runtime[e]; ok && rt.path == path {
		return rt, nil
	}

	src, err := s.load(path)
	if err != nil {
		return nil, err
	}

	script := tengo.NewScript(append(src, []byte("\n"+scriptDispatchSource)...))
	_ = script.Add("__phase", "")
	_ = script.Add("__engine", map[string]any{})
	_ = script.Add("__state", map[string]any{})
	_ = script.Add("__dt", 0.0)
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, err
	}

	rt := &scriptRuntime{
		path:     path,
		compiled: compiled,
		state:    &tengo.Map{Value: map[string]tengo.Object{}},
	}
	s.runtime[e] = rt
	return rt, nil
}

func (rt *scriptRuntime) run(engine *tengo.ImmutableMap, dt float64) error {
	if err := rt.compiled.Set("__phase", "update"); err != nil {
		return err
	}
	if err := rt.compiled.Set("__engine", engine); err != nil {
		return err
	}
	if err := rt.compiled.Set("__state", rt.state); err != nil {
		return err
	}
	if err := rt.compiled.Set("__dt", dt); err != nil {
		return err
	}
	return rt.compiled.Run()
}

func buildScriptEngine(w *ecs.World, ctrl *CharacterController) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	values["move"] = &tengo.UserFunction{Name: "move", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		ctrl.Move(w, objectAsFloat(args[0]))
		return tengo.TrueValue, nil
	}}

	values["rotate"] = &tengo.UserFunction{Name: "rotate", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		ctrl.Rotate(w, objectAsFloat(args[0]))
		return tengo.TrueValue, nil
	}}

	values["jump"] = &tengo.UserFunction{Name: "jump", Value: func(args ...tengo.Object) (tengo.Object, error) {
		ctrl.Jump(w)
		return tengo.TrueValue, nil
	}}

	values["run"] = &tengo.UserFunction{Name: "run", Value: func(args ...tengo.Object) (tengo.Object, error) {
		ctrl.Run()
		return tengo.TrueValue, nil
	}}

	values["crouch"] = &tengo.UserFunction{Name: "crouch", Value: func(args ...tengo.Object) (tengo.Object, error) {
		ctrl.Crouch()
		return tengo.TrueValue, nil
	}}

	values["position"] = &tengo.UserFunction{Name: "position", Value: func(args ...tengo.Object) (tengo.Object, error) {
		p := ctrl.State().Position
		return &tengo.Array{Value: []tengo.Object{
			&tengo.Float{Value: p.X()},
			&tengo.Float{Value: p.Y()},
			&tengo.Float{Value: p.Z()},
		}}, nil
	}}

	values["yaw"] = &tengo.UserFunction{Name: "yaw", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Float{Value: ctrl.State().Yaw}, nil
	}}

	values["grounded"] = &tengo.UserFunction{Name: "grounded", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return boolObject(ctrl.State().IsGrounded), nil
	}}

	values["tumbling"] = &tengo.UserFunction{Name: "tumbling", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return boolObject(ctrl.State().IsTumbling), nil
	}}

	values["sliding"] = &tengo.UserFunction{Name: "sliding", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return boolObject(ctrl.State().IsSliding), nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func objectAsFloat(obj tengo.Object) float64 {
	switch v := obj.(type) {
	case *tengo.Float:
		return v.Value
	case *tengo.Int:
		return float64(v.Value)
	default:
		return 0
	}
}

func boolObject(v bool) tengo.Object {
	if v {
		return tengo.TrueValue
	}
	return tengo.FalseValue
}
