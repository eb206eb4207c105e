package system

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/overworld/ecs"
	"github.com/milk9111/overworld/ecs/component"
	"github.com/milk9111/overworld/physics"
)

// Sensor handlers run synchronously inside the physics step, before the
// character's looper runs for that tick, so the tick always sees current
// contact sets.

func (c *CharacterController) onGroundSensor(ev physics.SensorEvent) {
	st := c.state
	t := &st.Tuning
	w := c.phys.World()

	if !ev.Started {
		delete(st.TouchingGround, ev.Other.ID())
		if len(st.TouchingGround) == 0 {
			st.IsGrounded = false
		} else {
			c.refreshGroundNormal()
		}
		c.retagContacts(w)
		return
	}

	landed := !st.IsGrounded && !st.WasGrounded
	st.TouchingGround[ev.Other.ID()] = ev.Other
	st.IsGrounded = true
	c.refreshGroundNormal()
	c.retagContacts(w)

	if !landed {
		return
	}

	impact := c.body.Linvel().Sub(st.LastPlatformVelocity)
	switch {
	case impact.Len() > t.TumblingGroundSpeed:
		c.startTumbling(w)
	case st.HasMoveInput && math.Abs(impact.Y()) > t.LandingKeepMoveSpeed:
		// Landing with move input held keeps the run going: only the
		// vertical component is zeroed so the touchdown doesn't bounce.
		v := c.body.Linvel()
		v[1] = 0
		c.body.SetLinvel(v)
	}
	w.Events().Push(ecs.Event{Kind: EventCharacterLanded, Entity: c.entity})
}

func (c *CharacterController) onWallSensor(ev physics.SensorEvent) {
	st := c.state

	if !ev.Started {
		delete(st.TouchingWalls, ev.Other.ID())
		st.IsNearWall = len(st.TouchingWalls) > 0
		return
	}

	// Dynamic bodies shove the character around on their own; only static
	// and kinematic geometry counts as a wall.
	if ev.Other.Body().Type() == physics.Dynamic {
		return
	}
	st.TouchingWalls[ev.Other.ID()] = ev.Other
	st.IsNearWall = true

	rel := c.body.Linvel().Sub(st.LastPlatformVelocity)
	if rel.Len() > st.Tuning.TumblingWallSpeed {
		c.startTumbling(c.phys.World())
	}
}

// startTumbling unlocks rotations so the body ragdolls, swaps in the
// tumbling angular damping and remembers what to restore afterwards.
func (c *CharacterController) startTumbling(w *ecs.World) {
	st := c.state
	if st.IsTumbling {
		return
	}
	st.IsTumbling = true
	st.IsGettingUp = false
	st.TumblingSince = w.Now()
	st.SavedAngularDamping = c.body.AngularDamping()
	c.body.SetAngularDamping(st.Tuning.TumblingAngularDamping)
	c.body.SetRotationsLocked(false)
	w.Events().Push(ecs.Event{Kind: EventCharacterTumbled, Entity: c.entity})
}

// refreshGroundNormal measures the surface under the body with a single
// downward ray and updates walkability. Contact changes call this; the ray
// fallback in Tick does not.
func (c *CharacterController) refreshGroundNormal() {
	st := c.state
	t := &st.Tuning
	hit, ok := c.phys.Space().RayCast(c.body.Translation(), worldDown, t.GroundRayDistance, c.body)
	if !ok {
		return
	}
	st.GroundNormal = hit.Normal
	st.GroundIsWalkable = groundWalkable(hit.Normal, t.CosMaxWalkableAngle)
}

// groundWalkable classifies a ground normal against the walkable-angle
// cosine. The boundary is inclusive: a surface at exactly the limit angle is
// still walkable.
func groundWalkable(normal mgl64.Vec3, cosMaxAngle float64) bool {
	return normal.Dot(worldUp) >= cosMaxAngle
}

// retagContacts rebuilds the stairs and platform flags from every collider
// currently under the ground sensor.
func (c *CharacterController) retagContacts(w *ecs.World) {
	st := c.state
	st.IsOnStairs = false
	st.IsOnMovingPlatform = false
	for _, col := range st.TouchingGround {
		e, ok := c.phys.Lookup(col.Body().ID())
		if !ok {
			continue
		}
		if ecs.Has(w, e, component.StairsComponent.Kind()) {
			st.IsOnStairs = true
		}
		if ecs.Has(w, e, component.PlatformKinematicsComponent.Kind()) {
			st.IsOnMovingPlatform = true
		}
	}
}

// wallHitFromRaycasts probes along the horizontal travel direction from the
// body center and a spread of points around the capsule hull, returning the
// first hit that belongs to a touched, non-dynamic wall collider. With no
// horizontal velocity the probes follow the facing direction instead.
func (c *CharacterController) wallHitFromRaycasts() (physics.RayHit, bool) {
	st := c.state
	t := &st.Tuning

	dir := flatten(c.body.Linvel())
	if dir.Len() < 1e-9 {
		dir = c.facing()
	}
	dir = dir.Normalize()

	origin := c.body.Translation()
	reach := t.Radius + t.SkinWidth + t.WallSensorPadding

	for _, off := range c.wallProbeOffsets() {
		hit, ok := c.phys.Space().RayCast(origin.Add(off), dir, reach, c.body)
		if !ok {
			continue
		}
		if _, touching := st.TouchingWalls[hit.Collider.ID()]; !touching {
			continue
		}
		if hit.Body.Type() == physics.Dynamic {
			continue
		}
		return hit, true
	}
	return physics.RayHit{}, false
}

// wallProbeOffsets spreads twenty probe origins over the capsule: the body
// center, three rings of six around the hull, and one at the top.
func (c *CharacterController) wallProbeOffsets() []mgl64.Vec3 {
	t := &c.state.Tuning
	ring := t.Radius * 0.9
	half := t.Height/2 - t.Radius

	offsets := make([]mgl64.Vec3, 0, 20)
	offsets = append(offsets, mgl64.Vec3{})
	for _, h := range [3]float64{-half, 0, half} {
		for i := 0; i < 6; i++ {
			a := float64(i) * math.Pi / 3
			offsets = append(offsets, mgl64.Vec3{math.Cos(a) * ring, h, math.Sin(a) * ring})
		}
	}
	offsets = append(offsets, mgl64.Vec3{0, t.Height / 2, 0})
	return offsets
}
