package physics

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// Space owns bodies and advances the simulation with a fixed timestep. All
// methods must be called from the tick goroutine; sensor handlers run
// synchronously inside Step.
type Space struct {
	gravity mgl64.Vec3

	bodies         []*Body
	nextBodyID     BodyID
	nextColliderID ColliderID

	// sensorPrev holds last step's overlap set per sensor collider, used to
	// diff enter/exit events.
	sensorPrev map[ColliderID]map[ColliderID]*Collider
}

// NewSpace creates an empty space with the given gravity.
func NewSpace(gravity mgl64.Vec3) *Space {
	return &Space{
		gravity:    gravity,
		sensorPrev: make(map[ColliderID]map[ColliderID]*Collider),
	}
}

func (s *Space) Gravity() mgl64.Vec3 { return s.gravity }

// AddBody builds a body from def and inserts it into the space.
func (s *Space) AddBody(def BodyDef) *Body {
	s.nextBodyID++
	b := &Body{
		id:              s.nextBodyID,
		typ:             def.Type,
		position:        def.Position,
		rotation:        def.Rotation,
		mass:            def.Mass,
		linearDamping:   def.LinearDamping,
		angularDamping:  def.AngularDamping,
		rotationsLocked: def.RotationsLocked,
	}
	if b.rotation.W == 0 && b.rotation.V.Len() == 0 {
		b.rotation = mgl64.QuatIdent()
	}
	b.rotation = b.rotation.Normalize()
	if b.typ == Dynamic {
		if b.mass <= 0 {
			b.mass = 1
		}
		b.invMass = 1 / b.mass
	}

	for _, cd := range def.Colliders {
		s.nextColliderID++
		c := &Collider{
			id:       s.nextColliderID,
			body:     b,
			shape:    cd.Shape,
			offset:   cd.Offset,
			sensor:   cd.Sensor,
			enabled:  !cd.Disabled,
			friction: cd.Friction,
		}
		b.colliders = append(b.colliders, c)
	}

	// Scalar inertia from the bounding sphere of the first solid collider.
	if b.typ == Dynamic {
		r := 0.5
		for _, c := range b.colliders {
			if !c.sensor {
				r = c.shape.boundingRadius()
				break
			}
		}
		inertia := 0.4 * b.mass * r * r
		if inertia > 0 {
			b.invInertia = 1 / inertia
		}
	}

	s.bodies = append(s.bodies, b)
	return b
}

// RemoveBody deletes a body and its colliders from the space. Other sensors
// still overlapping the removed colliders report exits on the next step.
func (s *Space) RemoveBody(b *Body) {
	if b == nil {
		return
	}
	for i, other := range s.bodies {
		if other == b {
			s.bodies = append(s.bodies[:i], s.bodies[i+1:]...)
			break
		}
	}
	for _, c := range b.colliders {
		delete(s.sensorPrev, c.id)
	}
}

// Step advances the simulation by dt seconds: integrate velocities, resolve
// solid contacts, then diff and dispatch sensor overlap events. A NaN or
// non-positive dt is ignored.
func (s *Space) Step(dt float64) {
	if math.IsNaN(dt) || dt <= 0 {
		return
	}
	s.integrate(dt)
	s.resolveContacts()
	s.dispatchSensorEvents()
}

func (s *Space) integrate(dt float64) {
	for _, b := range s.bodies {
		switch b.typ {
		case Static:
		case Kinematic:
			b.position = b.position.Add(b.linvel.Mul(dt))
			b.rotation = integrateRotation(b.rotation, b.angvel, dt)
		case Dynamic:
			b.linvel = b.linvel.Add(s.gravity.Mul(dt))
			if b.linearDamping > 0 {
				b.linvel = b.linvel.Mul(1 / (1 + dt*b.linearDamping))
			}
			b.position = b.position.Add(b.linvel.Mul(dt))
			if b.rotationsLocked {
				b.angvel = mgl64.Vec3{}
			} else {
				if b.angularDamping > 0 {
					b.angvel = b.angvel.Mul(1 / (1 + dt*b.angularDamping))
				}
				b.rotation = integrateRotation(b.rotation, b.angvel, dt)
			}
		}
	}
}

func integrateRotation(q mgl64.Quat, angvel mgl64.Vec3, dt float64) mgl64.Quat {
	if angvel.Len() < 1e-9 {
		return q
	}
	dq := mgl64.Quat{W: 0, V: angvel.Mul(0.5 * dt)}.Mul(q)
	return q.Add(dq).Normalize()
}

// resolveContacts pushes dynamic bodies out of overlapping solids and cancels
// the penetrating component of relative velocity. Contacts impart spin only
// to bodies with unlocked rotations.
func (s *Space) resolveContacts() {
	for _, b := range s.bodies {
		if b.typ != Dynamic {
			continue
		}
		for _, c := range b.activeSolid() {
			for _, other := range s.bodies {
				if other == b {
					continue
				}
				for _, oc := range other.activeSolid() {
					s.resolvePair(b, c, other, oc)
				}
			}
		}
	}
}

func (s *Space) resolvePair(b *Body, c *Collider, other *Body, oc *Collider) {
	ba := c.worldAABB()
	oa := oc.worldAABB()
	if !ba.Intersects(oa) {
		return
	}
	ov := ba.overlap(oa)
	axis := 0
	if ov.Y() < ov[axis] {
		axis = 1
	}
	if ov.Z() < ov[axis] {
		axis = 2
	}
	if ov[axis] <= 0 {
		return
	}

	var n mgl64.Vec3
	if ba.Center()[axis] >= oa.Center()[axis] {
		n[axis] = 1
	} else {
		n[axis] = -1
	}
	push := n.Mul(ov[axis])
	contact := ba.overlapCenter(oa)

	if other.typ == Dynamic {
		b.position = b.position.Add(push.Mul(0.5))
		other.position = other.position.Sub(push.Mul(0.5))
		relVn := b.linvel.Sub(other.linvel).Dot(n)
		if relVn < 0 {
			b.linvel = b.linvel.Sub(n.Mul(relVn * 0.5))
			other.linvel = other.linvel.Add(n.Mul(relVn * 0.5))
		}
		return
	}

	b.position = b.position.Add(push)
	relVn := b.linvel.Sub(other.pointVelocity(contact)).Dot(n)
	if relVn >= 0 {
		return
	}
	b.linvel = b.linvel.Sub(n.Mul(relVn))
	if !b.rotationsLocked && b.invInertia > 0 {
		impulse := n.Mul(-relVn * b.mass)
		r := contact.Sub(b.position)
		b.angvel = b.angvel.Add(r.Cross(impulse).Mul(b.invInertia))
	}
}

// dispatchSensorEvents recomputes every enabled sensor's overlap set, diffs
// it against the previous step, and invokes handlers: exits first, then
// enters, in collider id order.
func (s *Space) dispatchSensorEvents() {
	var events []SensorEvent
	for _, b := range s.bodies {
		for _, c := range b.colliders {
			if !c.sensor || !c.enabled {
				continue
			}
			sensorBox := c.worldAABB()
			cur := make(map[ColliderID]*Collider)
			for _, other := range s.bodies {
				if other == b {
					continue
				}
				for _, oc := range other.activeSolid() {
					if sensorBox.Intersects(oc.worldAABB()) {
						cur[oc.id] = oc
					}
				}
			}
			prev := s.sensorPrev[c.id]

			var exited, entered []ColliderID
			for id := range prev {
				if _, ok := cur[id]; !ok {
					exited = append(exited, id)
				}
			}
			for id := range cur {
				if _, ok := prev[id]; !ok {
					entered = append(entered, id)
				}
			}
			sort.Slice(exited, func(i, j int) bool { return exited[i] < exited[j] })
			sort.Slice(entered, func(i, j int) bool { return entered[i] < entered[j] })

			for _, id := range exited {
				events = append(events, SensorEvent{Sensor: c, Other: prev[id], Started: false})
			}
			for _, id := range entered {
				events = append(events, SensorEvent{Sensor: c, Other: cur[id], Started: true})
			}
			s.sensorPrev[c.id] = cur
		}
	}
	for _, ev := range events {
		if ev.Sensor.onSensor != nil {
			ev.Sensor.onSensor(ev)
		}
	}
}
