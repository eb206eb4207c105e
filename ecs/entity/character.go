package entity

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/overworld/ecs"
	"github.com/milk9111/overworld/ecs/component"
	"github.com/milk9111/overworld/ecs/system"
	"github.com/milk9111/overworld/physics"
)

// Collider slots on a character body, matching the controller's switch
// indices: the standing capsule, the crouch capsule, then the two sensors.
const (
	wallSensorIndex   = 2
	groundSensorIndex = 3
)

// CharacterParams is everything a character spawn needs. Bindings attach
// keyboard control, Script attaches a tengo brain; either, both or neither
// may be set.
type CharacterParams struct {
	Name     string
	Position mgl64.Vec3
	Tuning   component.CharacterTuning
	Bindings *component.Bindings
	Script   string

	// CameraTarget points the camera rig at this character.
	CameraTarget bool
}

// Character is a spawned character: the entity, its controller, and the
// teardown that undoes the whole spawn.
type Character struct {
	Entity     ecs.Entity
	Controller *system.CharacterController

	world  *ecs.World
	phys   *system.PhysicsSystem
	chars  *system.Characters
	body   *physics.Body
	looper string
}

// NewCharacter spawns a dynamic character: a locked-rotation body with four
// colliders, a controller hooked to the sensor pair, a state component, and
// a named looper that ticks the controller after every physics step.
func NewCharacter(w *ecs.World, phys *system.PhysicsSystem, chars *system.Characters, p CharacterParams) (*Character, error) {
	if p.Name == "" {
		return nil, fmt.Errorf("entity: character needs a name")
	}
	t := p.Tuning

	half := t.Height/2 - t.Radius
	if half < 0 {
		half = 0
	}

	body := phys.Space().AddBody(physics.BodyDef{
		Type:            physics.Dynamic,
		Position:        p.Position,
		RotationsLocked: true,
		Colliders: []physics.ColliderDef{
			{Shape: physics.Capsule{HalfHeight: half, Radius: t.Radius}},
			{Shape: physics.Capsule{HalfHeight: half / 2, Radius: t.Radius}, Disabled: true},
			{
				// Wall sensor: a fatter capsule raised off the feet so
				// floor contact never reads as a wall.
				Shape:  physics.Capsule{HalfHeight: half, Radius: t.Radius + t.WallSensorPadding},
				Offset: mgl64.Vec3{0, t.SkinWidth + t.WallSensorPadding, 0},
				Sensor: true,
			},
			{
				// Ground sensor: a thin box straddling the foot plane,
				// narrower than the capsule so walls stay out of it.
				Shape:  physics.Box{HalfExtents: mgl64.Vec3{t.Radius * 0.9, t.GroundSensorHeight, t.Radius * 0.9}},
				Offset: mgl64.Vec3{0, -t.Height / 2, 0},
				Sensor: true,
			},
		},
	})

	e := ecs.CreateEntity(w)
	fail := func(err error) (*Character, error) {
		phys.Space().RemoveBody(body)
		ecs.DestroyEntity(w, e)
		return nil, fmt.Errorf("entity: character %q: %w", p.Name, err)
	}

	st := component.NewCharacterState(t)
	st.Position = p.Position
	state := &st

	tr := component.NewTransform(p.Position)
	if err := ecs.Add(w, e, component.TransformComponent.Kind(), &tr); err != nil {
		return fail(err)
	}
	if err := ecs.Add(w, e, component.BodyComponent.Kind(), &component.Body{Ref: body}); err != nil {
		return fail(err)
	}
	if err := ecs.Add(w, e, component.CharacterComponent.Kind(), state); err != nil {
		return fail(err)
	}
	if err := ecs.Add(w, e, component.LabelComponent.Kind(), &component.Label{Value: p.Name}); err != nil {
		return fail(err)
	}
	if p.Bindings != nil {
		if err := ecs.Add(w, e, component.InputComponent.Kind(), &component.Input{Bindings: *p.Bindings}); err != nil {
			return fail(err)
		}
	}
	if p.Script != "" {
		if err := ecs.Add(w, e, component.ScriptComponent.Kind(), &component.Script{Path: p.Script}); err != nil {
			return fail(err)
		}
	}

	cols := body.Colliders()
	ctrl := system.NewCharacterController(p.Name, e, phys, body, state, cols[groundSensorIndex], cols[wallSensorIndex])

	phys.Register(body, e)
	chars.Add(ctrl)

	looper := "character/" + p.Name
	w.AddLooper(looper, func(w *ecs.World) {
		ctrl.Tick(w)
	})

	if p.CameraTarget {
		claimCamera(w, p.Name)
	}

	return &Character{
		Entity:     e,
		Controller: ctrl,
		world:      w,
		phys:       phys,
		chars:      chars,
		body:       body,
		looper:     looper,
	}, nil
}

// Delete tears the character down: looper, registry entry, body and entity.
// Sensors watching the body see exit events on the next step.
func (c *Character) Delete() {
	c.world.RemoveLooper(c.looper)
	c.chars.Remove(c.Controller.Name())
	c.phys.RemoveBody(c.body)
	ecs.DestroyEntity(c.world, c.Entity)
}

func claimCamera(w *ecs.World, target string) {
	rigEntity, ok := ecs.First(w, component.CameraRigComponent.Kind())
	if !ok {
		return
	}
	if rig, ok := ecs.Get(w, rigEntity, component.CameraRigComponent.Kind()); ok {
		rig.TargetName = target
	}
}
