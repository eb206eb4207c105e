package physics

import "github.com/go-gl/mathgl/mgl64"

// AABB is an axis-aligned bounding box in world space.
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

func (a AABB) Intersects(b AABB) bool {
	return a.Min.X() <= b.Max.X() && a.Max.X() >= b.Min.X() &&
		a.Min.Y() <= b.Max.Y() && a.Max.Y() >= b.Min.Y() &&
		a.Min.Z() <= b.Max.Z() && a.Max.Z() >= b.Min.Z()
}

func (a AABB) Center() mgl64.Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}

// overlap returns the per-axis overlap extents of two intersecting boxes.
// Values are negative when the boxes are separated on that axis.
func (a AABB) overlap(b AABB) mgl64.Vec3 {
	return mgl64.Vec3{
		min(a.Max.X(), b.Max.X()) - max(a.Min.X(), b.Min.X()),
		min(a.Max.Y(), b.Max.Y()) - max(a.Min.Y(), b.Min.Y()),
		min(a.Max.Z(), b.Max.Z()) - max(a.Min.Z(), b.Min.Z()),
	}
}

// overlapCenter returns the center of the intersection region. Only valid
// when the boxes intersect.
func (a AABB) overlapCenter(b AABB) mgl64.Vec3 {
	lo := mgl64.Vec3{
		max(a.Min.X(), b.Min.X()),
		max(a.Min.Y(), b.Min.Y()),
		max(a.Min.Z(), b.Min.Z()),
	}
	hi := mgl64.Vec3{
		min(a.Max.X(), b.Max.X()),
		min(a.Max.Y(), b.Max.Y()),
		min(a.Max.Z(), b.Max.Z()),
	}
	return lo.Add(hi).Mul(0.5)
}
