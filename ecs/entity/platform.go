package entity

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/overworld/ecs"
	"github.com/milk9111/overworld/ecs/component"
	"github.com/milk9111/overworld/ecs/system"
	"github.com/milk9111/overworld/physics"
)

// PlatformParams describes a kinematic platform. With two or more waypoints
// the platform system drives it around the route; with none it sits still
// and only its friction matters to riders.
type PlatformParams struct {
	Name      string
	Position  mgl64.Vec3
	Size      mgl64.Vec3
	Friction  float64
	Waypoints []component.Waypoint
}

// NewMovingPlatform spawns a kinematic box platform carrying the kinematics
// side table that riders couple against.
func NewMovingPlatform(w *ecs.World, phys *system.PhysicsSystem, p PlatformParams) (ecs.Entity, error) {
	body := phys.Space().AddBody(physics.BodyDef{
		Type:     physics.Kinematic,
		Position: p.Position,
		Colliders: []physics.ColliderDef{
			{Shape: physics.Box{HalfExtents: p.Size.Mul(0.5)}, Friction: p.Friction},
		},
	})

	e := ecs.CreateEntity(w)
	fail := func(err error) (ecs.Entity, error) {
		phys.Space().RemoveBody(body)
		ecs.DestroyEntity(w, e)
		return 0, fmt.Errorf("entity: platform %q: %w", p.Name, err)
	}

	tr := component.NewTransform(p.Position)
	if err := ecs.Add(w, e, component.TransformComponent.Kind(), &tr); err != nil {
		return fail(err)
	}
	if err := ecs.Add(w, e, component.BodyComponent.Kind(), &component.Body{Ref: body}); err != nil {
		return fail(err)
	}
	if err := ecs.Add(w, e, component.PlatformKinematicsComponent.Kind(), &component.PlatformKinematics{Friction: p.Friction}); err != nil {
		return fail(err)
	}
	if p.Name != "" {
		if err := ecs.Add(w, e, component.LabelComponent.Kind(), &component.Label{Value: p.Name}); err != nil {
			return fail(err)
		}
	}
	if len(p.Waypoints) >= 2 {
		if err := ecs.Add(w, e, component.PlatformRouteComponent.Kind(), &component.PlatformRoute{Waypoints: p.Waypoints}); err != nil {
			return fail(err)
		}
	}

	phys.Register(body, e)
	return e, nil
}
