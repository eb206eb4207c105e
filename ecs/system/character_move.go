package system

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/overworld/common"
	"github.com/milk9111/overworld/ecs"
)

// Movement commands. Input and scripts call these before the physics step;
// the body changes are observed by the sensors and the tick inside it.

// Rotate turns the character about the world Y axis. Direction is a signed
// analog value, positive counterclockwise seen from above.
func (c *CharacterController) Rotate(w *ecs.World, dir float64) {
	st := c.state
	if st.IsTumbling || dir == 0 {
		return
	}
	spin := mgl64.QuatRotate(dir*w.PerTick(st.Tuning.RotateSpeed), worldUp)
	c.body.SetRotation(spin.Mul(c.body.Rotation()))
	st.Yaw = yawFromQuat(c.body.Rotation())
}

// Move accelerates the character along its facing. Direction is a signed
// analog value, positive forward.
func (c *CharacterController) Move(w *ecs.World, dir float64) {
	st := c.state
	t := &st.Tuning
	if st.IsTumbling || dir == 0 {
		return
	}
	st.HasMoveInput = true

	accel := w.PerTick(t.MoveAcceleration)
	limit := t.MaxVelocity
	if st.IsGrounded {
		switch {
		case st.IsCrouching:
			limit *= t.CrouchMultiplier
			accel *= t.CrouchAccelBoost
		case st.IsRunning:
			limit *= t.RunMultiplier
		}
	}
	if !st.IsGrounded || st.IsFalling {
		accel *= t.AirDampening
	}

	// Accumulate in the platform frame so riding a platform doesn't eat
	// the move budget.
	platformVel := st.Velocity.Sub(st.RelativeVelocity)
	vel := c.body.Linvel()
	relH := flatten(vel.Sub(platformVel))

	if !st.IsGrounded {
		// Airborne the cap never shrinks speed already above it, it only
		// stops the input from adding more.
		if cur := relH.Len(); cur > limit {
			limit = cur
		}
	}

	desired := relH.Add(c.facing().Mul(dir * accel))
	if l := desired.Len(); l > limit {
		desired = desired.Mul(limit / l)
	}

	if st.IsNearWall {
		if hit, ok := c.wallHitFromRaycasts(); ok {
			desired = cancelIntoWall(desired, hit.Normal)
		}
	}

	if st.IsGrounded && !st.GroundIsWalkable {
		desired = c.steerOnImpossibleSlope(desired)
	}

	next := desired.Add(flatten(platformVel))
	c.body.SetLinvel(mgl64.Vec3{next.X(), vel.Y(), next.Z()})
}

// cancelIntoWall removes the velocity component pointing into the wall,
// keeping slide along it. Movement away from the wall passes untouched.
func cancelIntoWall(desired, normal mgl64.Vec3) mgl64.Vec3 {
	n := flatten(normal)
	l := n.Len()
	if l < 1e-9 {
		return desired
	}
	n = n.Mul(1 / l)
	into := desired.Dot(n)
	if into >= 0 {
		return desired
	}
	return desired.Sub(n.Mul(into))
}

const (
	impossibleSlopeBandMin = 50 * math.Pi / 180
	impossibleSlopeBandMax = 110 * math.Pi / 180
)

// steerOnImpossibleSlope redirects movement on ground too steep to walk.
// Input pointing down the fall line or up against it is replaced by a slide
// straight downhill; input across the slope, inside the angular band between
// the two limits, passes through.
func (c *CharacterController) steerOnImpossibleSlope(desired mgl64.Vec3) mgl64.Vec3 {
	st := c.state

	n := st.GroundNormal
	g := c.phys.Space().Gravity()
	downhill := flatten(g.Sub(n.Mul(g.Dot(n))))
	if downhill.Len() < 1e-9 || desired.Len() < 1e-9 {
		return desired
	}
	downhill = downhill.Normalize()

	angle := math.Acos(common.Clamp(desired.Normalize().Dot(downhill), -1, 1))
	st.IsMovingTowardsImpossibleSlope = angle > impossibleSlopeBandMax

	if angle > impossibleSlopeBandMin && angle < impossibleSlopeBandMax {
		return desired
	}
	return downhill.Mul(desired.Len())
}

// Jump applies the tuned upward impulse. Refused while tumbling or crouched,
// and rate-limited by the jump cooldown.
func (c *CharacterController) Jump(w *ecs.World) {
	st := c.state
	t := &st.Tuning
	if st.IsTumbling || st.IsCrouching {
		return
	}
	now := w.Now()
	if now-st.LastJumpAt < t.JumpCooldown {
		return
	}
	st.LastJumpAt = now
	c.body.ApplyImpulse(mgl64.Vec3{0, t.JumpImpulse, 0})
}

// Run toggles the run multiplier. The flag survives airborne frames; Move
// only applies it while grounded.
func (c *CharacterController) Run() {
	c.state.IsRunning = !c.state.IsRunning
}

// Crouch toggles crouching and swaps the active solid collider between the
// standing and crouch slots.
func (c *CharacterController) Crouch() {
	st := c.state
	st.IsCrouching = !st.IsCrouching
	if st.IsCrouching {
		c.body.SwitchCollider(CrouchColliderIndex)
	} else {
		c.body.SwitchCollider(MovementColliderIndex)
	}
}
