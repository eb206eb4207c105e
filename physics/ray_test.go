package physics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestRayCastHitsFloorFromAbove(t *testing.T) {
	s := newTestSpace()
	floor := addFloor(s)

	hit, ok := s.RayCast(mgl64.Vec3{0, 3, 0}, mgl64.Vec3{0, -1, 0}, 10, nil)
	if !ok {
		t.Fatal("expected a hit")
	}
	if hit.Body != floor {
		t.Fatalf("hit body %v, want floor", hit.Body.ID())
	}
	approxEqual(t, hit.Distance, 2.5, 1e-9, "distance to floor top")
	approxEqual(t, hit.Normal.Y(), 1, 1e-9, "floor normal.y")
}

func TestRayCastRotatedBoxNormal(t *testing.T) {
	s := newTestSpace()
	angle := 30 * math.Pi / 180
	s.AddBody(BodyDef{
		Type:     Static,
		Position: mgl64.Vec3{0, 0, 0},
		Rotation: mgl64.QuatRotate(angle, mgl64.Vec3{0, 0, 1}),
		Colliders: []ColliderDef{
			{Shape: Box{HalfExtents: mgl64.Vec3{2, 0.5, 2}}},
		},
	})

	hit, ok := s.RayCast(mgl64.Vec3{0, 5, 0}, mgl64.Vec3{0, -1, 0}, 10, nil)
	if !ok {
		t.Fatal("expected a hit")
	}
	approxEqual(t, hit.Normal.X(), -math.Sin(angle), 1e-9, "ramp normal.x")
	approxEqual(t, hit.Normal.Y(), math.Cos(angle), 1e-9, "ramp normal.y")
	approxEqual(t, hit.Distance, 5-0.5/math.Cos(angle), 1e-9, "distance to ramp surface")
}

func TestRayCastExcludesBody(t *testing.T) {
	s := newTestSpace()
	floor := addFloor(s)
	self := s.AddBody(BodyDef{
		Type:     Dynamic,
		Position: mgl64.Vec3{0, 2, 0},
		Colliders: []ColliderDef{
			{Shape: Box{HalfExtents: mgl64.Vec3{0.5, 0.5, 0.5}}},
		},
	})

	hit, ok := s.RayCast(mgl64.Vec3{0, 4, 0}, mgl64.Vec3{0, -1, 0}, 10, self)
	if !ok {
		t.Fatal("expected a hit")
	}
	if hit.Body != floor {
		t.Fatalf("hit body %v, want floor with self excluded", hit.Body.ID())
	}

	hit, ok = s.RayCast(mgl64.Vec3{0, 4, 0}, mgl64.Vec3{0, -1, 0}, 10, nil)
	if !ok || hit.Body != self {
		t.Fatal("expected nearest hit on the unexcluded body")
	}
}

func TestRayCastSkipsSensorsAndDisabled(t *testing.T) {
	s := newTestSpace()
	b := s.AddBody(BodyDef{
		Type:     Static,
		Position: mgl64.Vec3{0, 0, 0},
		Colliders: []ColliderDef{
			{Shape: Box{HalfExtents: mgl64.Vec3{1, 1, 1}}, Sensor: true},
			{Shape: Box{HalfExtents: mgl64.Vec3{1, 1, 1}}, Disabled: true},
		},
	})
	_ = b

	if _, ok := s.RayCast(mgl64.Vec3{0, 5, 0}, mgl64.Vec3{0, -1, 0}, 10, nil); ok {
		t.Fatal("ray hit a sensor or disabled collider")
	}
}

func TestRayCastZeroDirection(t *testing.T) {
	s := newTestSpace()
	addFloor(s)

	if _, ok := s.RayCast(mgl64.Vec3{0, 5, 0}, mgl64.Vec3{}, 10, nil); ok {
		t.Fatal("zero direction reported a hit")
	}
}

func TestRayCastCapsuleSurface(t *testing.T) {
	s := newTestSpace()
	s.AddBody(BodyDef{
		Type:     Static,
		Position: mgl64.Vec3{0, 0, 0},
		Colliders: []ColliderDef{
			{Shape: Capsule{HalfHeight: 0.5, Radius: 0.35}},
		},
	})

	// Cylinder side.
	hit, ok := s.RayCast(mgl64.Vec3{5, 0, 0}, mgl64.Vec3{-1, 0, 0}, 10, nil)
	if !ok {
		t.Fatal("expected a side hit")
	}
	approxEqual(t, hit.Distance, 5-0.35, 1e-9, "distance to cylinder wall")
	approxEqual(t, hit.Normal.X(), 1, 1e-9, "side normal.x")
	approxEqual(t, hit.Normal.Y(), 0, 1e-9, "side normal.y")

	// Top cap, on axis.
	hit, ok = s.RayCast(mgl64.Vec3{0, 3, 0}, mgl64.Vec3{0, -1, 0}, 10, nil)
	if !ok {
		t.Fatal("expected a cap hit")
	}
	approxEqual(t, hit.Distance, 3-0.85, 1e-9, "distance to cap apex")
	approxEqual(t, hit.Normal.Y(), 1, 1e-9, "apex normal.y")

	// Top cap, off axis: the normal follows the sphere, not an axis face.
	hit, ok = s.RayCast(mgl64.Vec3{0.2, 3, 0}, mgl64.Vec3{0, -1, 0}, 10, nil)
	if !ok {
		t.Fatal("expected an off-axis cap hit")
	}
	capY := math.Sqrt(0.35*0.35 - 0.2*0.2)
	approxEqual(t, hit.Distance, 3-(0.5+capY), 1e-9, "distance to cap surface")
	approxEqual(t, hit.Normal.X(), 0.2/0.35, 1e-9, "cap normal.x")
	approxEqual(t, hit.Normal.Y(), capY/0.35, 1e-9, "cap normal.y")
}

func TestRayCastCapsuleMissesBoundingBoxCorner(t *testing.T) {
	s := newTestSpace()
	s.AddBody(BodyDef{
		Type:     Static,
		Position: mgl64.Vec3{0, 0, 0},
		Colliders: []ColliderDef{
			{Shape: Capsule{HalfHeight: 0.5, Radius: 0.35}},
		},
	})

	// This ray pierces the capsule's bounding box near a top corner but stays
	// clear of the cap sphere: closest approach to (0, 0.5, 0) is
	// sqrt(0.3^2 + 0.3^2) > 0.35.
	if _, ok := s.RayCast(mgl64.Vec3{2, 0.8, 0.3}, mgl64.Vec3{-1, 0, 0}, 10, nil); ok {
		t.Fatal("ray through the bounding-box corner reported a capsule hit")
	}
}

func TestRayCastRespectsMaxDistance(t *testing.T) {
	s := newTestSpace()
	addFloor(s)

	if _, ok := s.RayCast(mgl64.Vec3{0, 5, 0}, mgl64.Vec3{0, -1, 0}, 2, nil); ok {
		t.Fatal("hit beyond max distance")
	}
	if _, ok := s.RayCast(mgl64.Vec3{0, 5, 0}, mgl64.Vec3{0, -1, 0}, 5, nil); !ok {
		t.Fatal("missed hit within max distance")
	}
}
