package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Shape is the geometry of a single collider.
type Shape interface {
	// aabb computes the world-space bounding box of the shape at the given
	// placement.
	aabb(pos mgl64.Vec3, rot mgl64.Quat) AABB
	// boundingRadius is the radius of the smallest sphere enclosing the
	// shape, used for the scalar inertia approximation.
	boundingRadius() float64
}

// Box is a rectangular shape described by its half extents.
type Box struct {
	HalfExtents mgl64.Vec3
}

func (b Box) aabb(pos mgl64.Vec3, rot mgl64.Quat) AABB {
	// Extents of a rotated box projected back onto the world axes: the
	// absolute value of the rotation matrix times the half extents.
	m := rot.Mat4()
	h := b.HalfExtents
	var ext mgl64.Vec3
	for row := 0; row < 3; row++ {
		ext[row] = math.Abs(m.At(row, 0))*h.X() +
			math.Abs(m.At(row, 1))*h.Y() +
			math.Abs(m.At(row, 2))*h.Z()
	}
	return AABB{Min: pos.Sub(ext), Max: pos.Add(ext)}
}

func (b Box) boundingRadius() float64 {
	return b.HalfExtents.Len()
}

// Capsule is a vertical capsule: a segment of half-length HalfHeight along
// the local Y axis, inflated by Radius.
type Capsule struct {
	HalfHeight float64
	Radius     float64
}

func (c Capsule) aabb(pos mgl64.Vec3, rot mgl64.Quat) AABB {
	tip := rot.Rotate(mgl64.Vec3{0, c.HalfHeight, 0})
	r := mgl64.Vec3{c.Radius, c.Radius, c.Radius}
	a := pos.Add(tip)
	b := pos.Sub(tip)
	lo := mgl64.Vec3{min(a.X(), b.X()), min(a.Y(), b.Y()), min(a.Z(), b.Z())}.Sub(r)
	hi := mgl64.Vec3{max(a.X(), b.X()), max(a.Y(), b.Y()), max(a.Z(), b.Z())}.Add(r)
	return AABB{Min: lo, Max: hi}
}

func (c Capsule) boundingRadius() float64 {
	return c.HalfHeight + c.Radius
}

// ColliderID identifies a collider within a Space.
type ColliderID uint32

// SensorEvent is delivered to a sensor collider's handler when a solid
// collider of another body starts or stops overlapping it.
type SensorEvent struct {
	Sensor  *Collider
	Other   *Collider
	Started bool
}

// ColliderDef describes one collider of a body under construction.
type ColliderDef struct {
	Shape    Shape
	Offset   mgl64.Vec3
	Sensor   bool
	Friction float64
	// Disabled creates the collider in the disabled state. Used for the
	// inactive entries of a switchable collider group.
	Disabled bool
}

// Collider is a single shape attached to a body. Sensors detect overlap
// without producing a collision response.
type Collider struct {
	id       ColliderID
	body     *Body
	shape    Shape
	offset   mgl64.Vec3
	sensor   bool
	enabled  bool
	friction float64
	onSensor func(SensorEvent)
}

func (c *Collider) ID() ColliderID  { return c.id }
func (c *Collider) Body() *Body     { return c.body }
func (c *Collider) Shape() Shape    { return c.shape }
func (c *Collider) IsSensor() bool  { return c.sensor }
func (c *Collider) Enabled() bool   { return c.enabled }
func (c *Collider) Offset() mgl64.Vec3 { return c.offset }

func (c *Collider) SetEnabled(enabled bool) { c.enabled = enabled }

// SetSensorHandler installs the overlap callback for a sensor collider. The
// handler runs synchronously inside Step, before any per-tick loopers.
func (c *Collider) SetSensorHandler(fn func(SensorEvent)) { c.onSensor = fn }

// worldAABB is the collider's bounding box at the body's current placement.
func (c *Collider) worldAABB() AABB {
	pos := c.body.position.Add(c.body.rotation.Rotate(c.offset))
	return c.shape.aabb(pos, c.body.rotation)
}
