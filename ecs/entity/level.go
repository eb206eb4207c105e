package entity

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/overworld/ecs"
	"github.com/milk9111/overworld/ecs/component"
	"github.com/milk9111/overworld/ecs/system"
	"github.com/milk9111/overworld/physics"
)

// NewStaticBox spawns a static box body: floors, walls and, with a rotation,
// ramps. Size is the full extents.
func NewStaticBox(w *ecs.World, phys *system.PhysicsSystem, name string, position mgl64.Vec3, rotation mgl64.Quat, size mgl64.Vec3, friction float64) (ecs.Entity, error) {
	body := phys.Space().AddBody(physics.BodyDef{
		Type:     physics.Static,
		Position: position,
		Rotation: rotation,
		Colliders: []physics.ColliderDef{
			{Shape: physics.Box{HalfExtents: size.Mul(0.5)}, Friction: friction},
		},
	})

	e := ecs.CreateEntity(w)
	fail := func(err error) (ecs.Entity, error) {
		phys.Space().RemoveBody(body)
		ecs.DestroyEntity(w, e)
		return 0, fmt.Errorf("entity: static box %q: %w", name, err)
	}

	tr := component.Transform{Position: position, Rotation: rotation, Scale: mgl64.Vec3{1, 1, 1}}
	if err := ecs.Add(w, e, component.TransformComponent.Kind(), &tr); err != nil {
		return fail(err)
	}
	if err := ecs.Add(w, e, component.BodyComponent.Kind(), &component.Body{Ref: body}); err != nil {
		return fail(err)
	}
	if name != "" {
		if err := ecs.Add(w, e, component.LabelComponent.Kind(), &component.Label{Value: name}); err != nil {
			return fail(err)
		}
	}

	phys.Register(body, e)
	return e, nil
}

// StairsParams describes a static staircase rising toward +Z in local space.
type StairsParams struct {
	Name     string
	Position mgl64.Vec3
	Steps    int
	Rise     float64
	Run      float64
	Width    float64
	Friction float64
}

// NewStairs spawns a single static body compounding one box collider per
// step, and tags the entity so characters standing on any step read as on
// stairs.
func NewStairs(w *ecs.World, phys *system.PhysicsSystem, p StairsParams) (ecs.Entity, error) {
	if p.Steps <= 0 {
		return 0, fmt.Errorf("entity: stairs %q: need at least one step", p.Name)
	}

	cols := make([]physics.ColliderDef, 0, p.Steps)
	for i := 0; i < p.Steps; i++ {
		cols = append(cols, physics.ColliderDef{
			Shape: physics.Box{HalfExtents: mgl64.Vec3{p.Width / 2, p.Rise / 2, p.Run / 2}},
			Offset: mgl64.Vec3{
				0,
				p.Rise/2 + float64(i)*p.Rise,
				p.Run/2 + float64(i)*p.Run,
			},
			Friction: p.Friction,
		})
	}

	body := phys.Space().AddBody(physics.BodyDef{
		Type:      physics.Static,
		Position:  p.Position,
		Colliders: cols,
	})

	e := ecs.CreateEntity(w)
	fail := func(err error) (ecs.Entity, error) {
		phys.Space().RemoveBody(body)
		ecs.DestroyEntity(w, e)
		return 0, fmt.Errorf("entity: stairs %q: %w", p.Name, err)
	}

	tr := component.NewTransform(p.Position)
	if err := ecs.Add(w, e, component.TransformComponent.Kind(), &tr); err != nil {
		return fail(err)
	}
	if err := ecs.Add(w, e, component.BodyComponent.Kind(), &component.Body{Ref: body}); err != nil {
		return fail(err)
	}
	if err := ecs.Add(w, e, component.StairsComponent.Kind(), &component.Stairs{}); err != nil {
		return fail(err)
	}
	if p.Name != "" {
		if err := ecs.Add(w, e, component.LabelComponent.Kind(), &component.Label{Value: p.Name}); err != nil {
			return fail(err)
		}
	}

	phys.Register(body, e)
	return e, nil
}
