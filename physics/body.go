package physics

import (
	"github.com/go-gl/mathgl/mgl64"
)

// BodyType selects how a body participates in the simulation.
type BodyType int

const (
	// Static bodies never move.
	Static BodyType = iota
	// Kinematic bodies move by explicit velocities and ignore forces.
	Kinematic
	// Dynamic bodies integrate gravity, damping, and impulses.
	Dynamic
)

// BodyID identifies a body within a Space.
type BodyID uint32

// BodyDef describes a body under construction. A zero Rotation is treated as
// identity. Mass defaults to 1 for dynamic bodies.
type BodyDef struct {
	Type            BodyType
	Position        mgl64.Vec3
	Rotation        mgl64.Quat
	Mass            float64
	LinearDamping   float64
	AngularDamping  float64
	RotationsLocked bool
	Colliders       []ColliderDef
}

// Body is a rigid body owned by a Space. All mutation happens on the tick
// goroutine; bodies carry no locks.
type Body struct {
	id  BodyID
	typ BodyType

	position mgl64.Vec3
	rotation mgl64.Quat
	linvel   mgl64.Vec3
	angvel   mgl64.Vec3

	mass       float64
	invMass    float64
	invInertia float64

	linearDamping   float64
	angularDamping  float64
	rotationsLocked bool

	colliders []*Collider
}

func (b *Body) ID() BodyID             { return b.id }
func (b *Body) Type() BodyType         { return b.typ }
func (b *Body) Colliders() []*Collider { return b.colliders }
func (b *Body) Mass() float64          { return b.mass }

func (b *Body) Linvel() mgl64.Vec3     { return b.linvel }
func (b *Body) SetLinvel(v mgl64.Vec3) { b.linvel = v }

func (b *Body) Angvel() mgl64.Vec3     { return b.angvel }
func (b *Body) SetAngvel(v mgl64.Vec3) { b.angvel = v }

func (b *Body) Translation() mgl64.Vec3     { return b.position }
func (b *Body) SetTranslation(p mgl64.Vec3) { b.position = p }

func (b *Body) Rotation() mgl64.Quat { return b.rotation }

// SetRotation sets the orientation directly. Explicit sets are allowed even
// while rotations are locked; the lock gates integration only.
func (b *Body) SetRotation(q mgl64.Quat) { b.rotation = q.Normalize() }

func (b *Body) AngularDamping() float64     { return b.angularDamping }
func (b *Body) SetAngularDamping(d float64) { b.angularDamping = d }

func (b *Body) RotationsLocked() bool { return b.rotationsLocked }

// SetRotationsLocked locks or unlocks angular integration. Locking zeroes
// the current angular velocity.
func (b *Body) SetRotationsLocked(locked bool) {
	b.rotationsLocked = locked
	if locked {
		b.angvel = mgl64.Vec3{}
	}
}

// ApplyImpulse adds an instantaneous change in momentum. No-op on non-dynamic
// bodies.
func (b *Body) ApplyImpulse(impulse mgl64.Vec3) {
	if b.typ != Dynamic {
		return
	}
	b.linvel = b.linvel.Add(impulse.Mul(b.invMass))
}

// ApplyTorqueImpulse adds an instantaneous change in angular momentum. No-op
// on non-dynamic bodies and while rotations are locked.
func (b *Body) ApplyTorqueImpulse(torque mgl64.Vec3) {
	if b.typ != Dynamic || b.rotationsLocked {
		return
	}
	b.angvel = b.angvel.Add(torque.Mul(b.invInertia))
}

// IsMoving reports whether the body has meaningful linear or angular
// velocity. Mirrored into the character's awake flag each tick.
func (b *Body) IsMoving() bool {
	const eps = 1e-3
	return b.linvel.Len() > eps || b.angvel.Len() > eps
}

// SwitchCollider enables exactly one of the body's solid colliders by index
// and disables the others. Sensor colliders are unaffected. Out-of-range
// indices are ignored.
func (b *Body) SwitchCollider(index int) {
	solid := 0
	found := false
	for _, c := range b.colliders {
		if c.sensor {
			continue
		}
		if solid == index {
			found = true
			break
		}
		solid++
	}
	if !found {
		return
	}
	solid = 0
	for _, c := range b.colliders {
		if c.sensor {
			continue
		}
		c.enabled = solid == index
		solid++
	}
}

// activeSolid returns the enabled solid colliders of the body.
func (b *Body) activeSolid() []*Collider {
	out := make([]*Collider, 0, len(b.colliders))
	for _, c := range b.colliders {
		if !c.sensor && c.enabled {
			out = append(out, c)
		}
	}
	return out
}

// pointVelocity is the velocity of a world-space point riding this body.
func (b *Body) pointVelocity(point mgl64.Vec3) mgl64.Vec3 {
	r := point.Sub(b.position)
	return b.linvel.Add(b.angvel.Cross(r))
}
