package system

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/overworld/ecs"
	"github.com/milk9111/overworld/ecs/component"
	"github.com/milk9111/overworld/physics"
)

// PlatformSystem drives kinematic platform bodies along their authored
// waypoint routes and publishes the velocities riders read back. It runs
// before the physics step so the step integrates the velocities it wrote.
type PlatformSystem struct{}

func NewPlatformSystem() *PlatformSystem {
	return &PlatformSystem{}
}

func (s *PlatformSystem) Update(w *ecs.World) {
	ecs.ForEach3(w,
		component.BodyComponent.Kind(),
		component.PlatformKinematicsComponent.Kind(),
		component.PlatformRouteComponent.Kind(),
		func(_ ecs.Entity, b *component.Body, kin *component.PlatformKinematics, route *component.PlatformRoute) {
			s.drive(w, b.Ref, kin, route)
		})
}

func (s *PlatformSystem) drive(w *ecs.World, body *physics.Body, kin *component.PlatformKinematics, route *component.PlatformRoute) {
	if body == nil || len(route.Waypoints) < 2 {
		return
	}

	target := route.Waypoints[(route.Segment+1)%len(route.Waypoints)]
	duration := target.Duration
	if duration <= 0 {
		duration = time.Second
	}

	remaining := duration - route.Elapsed
	if remaining <= 0 {
		// Arrived: snap onto the waypoint so float drift never
		// accumulates across laps, rest for this tick, move on.
		body.SetTranslation(target.Position)
		body.SetRotation(mgl64.QuatRotate(target.Yaw, worldUp))
		body.SetLinvel(mgl64.Vec3{})
		body.SetAngvel(mgl64.Vec3{})
		kin.Velocity = mgl64.Vec3{}
		kin.AngularVelocity = mgl64.Vec3{}
		route.Segment = (route.Segment + 1) % len(route.Waypoints)
		route.Elapsed = 0
		return
	}

	// Aim at the target over the remaining time; recomputing every tick
	// keeps the arrival exact no matter what the integrator did.
	secs := remaining.Seconds()
	vel := target.Position.Sub(body.Translation()).Mul(1 / secs)
	yawRate := wrapAngle(target.Yaw-yawFromQuat(body.Rotation())) / secs

	body.SetLinvel(vel)
	body.SetAngvel(mgl64.Vec3{0, yawRate, 0})
	kin.Velocity = vel
	kin.AngularVelocity = mgl64.Vec3{0, yawRate, 0}

	route.Elapsed += w.FixedStep()
}

// wrapAngle maps an angle into (-π, π].
func wrapAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
