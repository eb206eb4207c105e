package component

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// PlatformKinematics is the typed side channel between a moving platform and
// the characters riding it. Kinematic bodies report zero velocities from the
// integrator, so the drive system publishes the authored values here each
// tick.
type PlatformKinematics struct {
	Velocity        mgl64.Vec3
	AngularVelocity mgl64.Vec3
	// Friction decays a rider's horizontal relative velocity while it has
	// no move input. 0..1 per tick fraction retained is derived from this
	// per-second coefficient.
	Friction float64
}

var PlatformKinematicsComponent = NewComponent[PlatformKinematics]()

// Waypoint is one stop on a platform route.
type Waypoint struct {
	Position mgl64.Vec3
	Yaw      float64 // radians, absolute
	Duration time.Duration
}

// PlatformRoute loops a kinematic platform through waypoints. Segment i runs
// from Waypoints[i] to Waypoints[(i+1) % len].
type PlatformRoute struct {
	Waypoints []Waypoint
	Segment   int
	Elapsed   time.Duration
}

var PlatformRouteComponent = NewComponent[PlatformRoute]()

// Stairs marks a body as authored stair geometry. Characters standing on it
// report IsOnStairs and suppress slide behavior.
type Stairs struct{}

var StairsComponent = NewComponent[Stairs]()
