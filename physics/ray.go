package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// RayHit describes the nearest collider intersected by a ray.
type RayHit struct {
	Collider *Collider
	Body     *Body
	Point    mgl64.Vec3
	Normal   mgl64.Vec3
	Distance float64
}

// RayCast traces a ray against every enabled solid collider, skipping the
// excluded body, and returns the nearest hit within maxDist. Sensors are
// never ray targets. A zero direction reports no hit.
func (s *Space) RayCast(origin, dir mgl64.Vec3, maxDist float64, exclude *Body) (RayHit, bool) {
	if maxDist <= 0 || dir.Len() < 1e-12 {
		return RayHit{}, false
	}
	d := dir.Normalize()

	best := RayHit{Distance: maxDist}
	found := false
	for _, b := range s.bodies {
		if b == exclude {
			continue
		}
		for _, c := range b.activeSolid() {
			t, n, ok := rayCollider(c, origin, d)
			if !ok || t > best.Distance {
				continue
			}
			best = RayHit{
				Collider: c,
				Body:     b,
				Point:    origin.Add(d.Mul(t)),
				Normal:   n,
				Distance: t,
			}
			found = true
		}
	}
	return best, found
}

func rayCollider(c *Collider, origin, d mgl64.Vec3) (float64, mgl64.Vec3, bool) {
	switch shape := c.shape.(type) {
	case Box:
		center := c.body.position.Add(c.body.rotation.Rotate(c.offset))
		inv := c.body.rotation.Inverse()
		lo := inv.Rotate(origin.Sub(center))
		ld := inv.Rotate(d)
		t, localN, ok := raySlabs(lo, ld, shape.HalfExtents)
		if !ok {
			return 0, mgl64.Vec3{}, false
		}
		return t, c.body.rotation.Rotate(localN), true
	case Capsule:
		center := c.body.position.Add(c.body.rotation.Rotate(c.offset))
		inv := c.body.rotation.Inverse()
		lo := inv.Rotate(origin.Sub(center))
		ld := inv.Rotate(d)
		t, localN, ok := rayCapsule(lo, ld, shape.HalfHeight, shape.Radius)
		if !ok {
			return 0, mgl64.Vec3{}, false
		}
		return t, c.body.rotation.Rotate(localN), true
	default:
		// Unknown shapes fall back to their world bounding box.
		box := c.worldAABB()
		center := box.Center()
		half := box.Max.Sub(center)
		t, n, ok := raySlabs(origin.Sub(center), d, half)
		return t, n, ok
	}
}

// rayCapsule intersects a ray in capsule-local coordinates against a vertical
// capsule: a segment of half-length h along Y, inflated by radius r. The ray
// direction must be unit length. Returns the entry distance and the surface
// normal at the entry point. Rays starting inside report no hit.
func rayCapsule(o, d mgl64.Vec3, h, r float64) (float64, mgl64.Vec3, bool) {
	best := math.Inf(1)
	var bestN mgl64.Vec3

	// Infinite cylinder about the Y axis, clipped to the segment band.
	a := d.X()*d.X() + d.Z()*d.Z()
	if a > 1e-12 {
		b := o.X()*d.X() + o.Z()*d.Z()
		cc := o.X()*o.X() + o.Z()*o.Z() - r*r
		if disc := b*b - a*cc; disc >= 0 {
			t := (-b - math.Sqrt(disc)) / a
			if t >= 0 {
				if y := o.Y() + t*d.Y(); y >= -h && y <= h {
					p := o.Add(d.Mul(t))
					best = t
					bestN = mgl64.Vec3{p.X(), 0, p.Z()}.Normalize()
				}
			}
		}
	}

	// Spherical caps. Each cap only owns the region past its segment end.
	for _, cy := range []float64{h, -h} {
		co := o.Sub(mgl64.Vec3{0, cy, 0})
		b := co.Dot(d)
		cc := co.Dot(co) - r*r
		disc := b*b - cc
		if disc < 0 {
			continue
		}
		t := -b - math.Sqrt(disc)
		if t < 0 || t >= best {
			continue
		}
		y := o.Y() + t*d.Y()
		if (cy > 0 && y < cy) || (cy < 0 && y > cy) {
			continue
		}
		best = t
		bestN = o.Add(d.Mul(t)).Sub(mgl64.Vec3{0, cy, 0}).Mul(1 / r)
	}

	if math.IsInf(best, 1) {
		return 0, mgl64.Vec3{}, false
	}
	return best, bestN, true
}

// raySlabs intersects a ray in box-local coordinates against the box
// [-half, half]. Returns the entry distance and the entry face normal. Rays
// starting inside the box report no hit.
func raySlabs(o, d, half mgl64.Vec3) (float64, mgl64.Vec3, bool) {
	tmin := math.Inf(-1)
	tmax := math.Inf(1)
	axis := -1
	for i := 0; i < 3; i++ {
		if math.Abs(d[i]) < 1e-12 {
			if o[i] < -half[i] || o[i] > half[i] {
				return 0, mgl64.Vec3{}, false
			}
			continue
		}
		t1 := (-half[i] - o[i]) / d[i]
		t2 := (half[i] - o[i]) / d[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
			axis = i
		}
		if t2 < tmax {
			tmax = t2
		}
	}
	if axis < 0 || tmin > tmax || tmin < 0 {
		return 0, mgl64.Vec3{}, false
	}
	var n mgl64.Vec3
	if d[axis] > 0 {
		n[axis] = -1
	} else {
		n[axis] = 1
	}
	return tmin, n, true
}
