package system

import (
	"github.com/milk9111/overworld/ecs"
	"github.com/milk9111/overworld/ecs/component"
	"github.com/milk9111/overworld/physics"
)

// PhysicsSystem owns the simulation space and keeps the entity world and the
// physics world in sync. Its update is the spine of a tick: step the space
// (sensor callbacks fire inside), advance the clock, run the registered
// loopers, then copy body poses back onto transforms.
type PhysicsSystem struct {
	space  *physics.Space
	byBody map[physics.BodyID]ecs.Entity

	// world is non-nil only while Update runs. Sensor handlers fire inside
	// Step and reach the world through here.
	world *ecs.World
}

func NewPhysicsSystem(space *physics.Space) *PhysicsSystem {
	return &PhysicsSystem{
		space:  space,
		byBody: make(map[physics.BodyID]ecs.Entity),
	}
}

func (s *PhysicsSystem) Space() *physics.Space { return s.space }

// Register binds a body to the entity that owns it so contact handlers can
// walk from a collider back to components.
func (s *PhysicsSystem) Register(b *physics.Body, e ecs.Entity) {
	if b == nil {
		return
	}
	s.byBody[b.ID()] = e
}

func (s *PhysicsSystem) Unregister(b *physics.Body) {
	if b == nil {
		return
	}
	delete(s.byBody, b.ID())
}

func (s *PhysicsSystem) Lookup(id physics.BodyID) (ecs.Entity, bool) {
	e, ok := s.byBody[id]
	return e, ok
}

// World returns the world currently being stepped, or nil outside Update.
func (s *PhysicsSystem) World() *ecs.World { return s.world }

// RemoveBody tears a body out of the space and the index in one motion.
// Exit events for sensors watching the body fire on the next step.
func (s *PhysicsSystem) RemoveBody(b *physics.Body) {
	if b == nil {
		return
	}
	s.Unregister(b)
	s.space.RemoveBody(b)
}

func (s *PhysicsSystem) Update(w *ecs.World) {
	s.world = w
	s.space.Step(w.Dt())
	w.StepClock()
	w.RunLoopers()
	s.syncTransforms(w)
	s.world = nil
}

func (s *PhysicsSystem) syncTransforms(w *ecs.World) {
	ecs.ForEach2(w, component.BodyComponent.Kind(), component.TransformComponent.Kind(),
		func(_ ecs.Entity, b *component.Body, tr *component.Transform) {
			if b.Ref == nil {
				return
			}
			tr.Position = b.Ref.Translation()
			tr.Rotation = b.Ref.Rotation()
		})
}
