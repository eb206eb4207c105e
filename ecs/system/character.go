package system

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/overworld/common"
	"github.com/milk9111/overworld/ecs"
	"github.com/milk9111/overworld/ecs/component"
	"github.com/milk9111/overworld/physics"
)

// Collider slots every character body is built with, in order.
const (
	MovementColliderIndex = 0
	CrouchColliderIndex   = 1
)

var (
	worldUp   = mgl64.Vec3{0, 1, 0}
	worldDown = mgl64.Vec3{0, -1, 0}
)

// CharacterController binds a dynamic body to its state block and drives
// both: sensor handlers fire inside the physics step, commands arrive from
// input or scripts before it, and Tick settles the state once per step.
type CharacterController struct {
	name   string
	entity ecs.Entity
	phys   *PhysicsSystem
	body   *physics.Body
	state  *component.CharacterState
}

// NewCharacterController wires a spawned body to its state and hooks the two
// sensor colliders. The caller registers the controller with the Characters
// index and adds a world looper that calls Tick.
func NewCharacterController(name string, entity ecs.Entity, phys *PhysicsSystem, body *physics.Body, state *component.CharacterState, ground, wall *physics.Collider) *CharacterController {
	c := &CharacterController{
		name:   name,
		entity: entity,
		phys:   phys,
		body:   body,
		state:  state,
	}
	ground.SetSensorHandler(c.onGroundSensor)
	wall.SetSensorHandler(c.onWallSensor)
	return c
}

func (c *CharacterController) Name() string                     { return c.name }
func (c *CharacterController) Entity() ecs.Entity               { return c.entity }
func (c *CharacterController) Body() *physics.Body              { return c.body }
func (c *CharacterController) State() *component.CharacterState { return c.state }

// Tick advances the character one fixed step, after the space has stepped
// and the sensors have fired. Order matters: recovery first, then sensing
// fallbacks, then velocity bookkeeping, then platform coupling, so every
// field a later stage reads was settled earlier in the same tick.
func (c *CharacterController) Tick(w *ecs.World) {
	st := c.state
	t := &st.Tuning
	now := w.Now()

	if st.IsTumbling && !st.IsGettingUp {
		if c.shouldGetUp(now) {
			st.IsGettingUp = true
			st.GettingUpSince = now
			c.body.SetAngularDamping(t.GettingUpAngularDamping)
		} else {
			c.clampSpin()
		}
	}
	if st.IsGettingUp {
		c.stepGettingUp(w, now)
	}

	st.IsAwake = c.body.IsMoving()

	if len(st.TouchingGround) == 0 {
		st.IsGrounded = c.groundedByRays()
	}

	c.updateFalling(now)

	st.Velocity = roundVec(c.body.Linvel(), t.VelocityRoundDecimals)
	st.AngularVelocity = roundVec(c.body.Angvel(), t.VelocityRoundDecimals)
	st.RelativeVelocity = st.Velocity

	if st.IsOnMovingPlatform {
		c.applyPlatformCoupling(w)
	} else {
		st.LastPlatformVelocity = mgl64.Vec3{}
		st.PlatformVelocity = mgl64.Vec3{}
	}

	relSpeed := flatten(st.RelativeVelocity).Len()
	st.IsSliding = st.IsGrounded && relSpeed > t.MinSlidingSpeed &&
		(!st.GroundIsWalkable || !st.HasMoveInput) && !st.IsOnStairs

	st.Position = c.body.Translation()

	st.WasGrounded = st.IsGrounded
	st.HasMoveInput = false
	st.IsMovingTowardsImpossibleSlope = false
}

func (c *CharacterController) shouldGetUp(now time.Duration) bool {
	st := c.state
	t := &st.Tuning
	if now-st.TumblingSince < t.TumblingMinDuration {
		return false
	}
	rel := c.body.Linvel().Sub(st.LastPlatformVelocity)
	return rel.Len() <= t.TumblingEndSpeed && c.body.Angvel().Len() <= t.TumblingEndAngularSpeed
}

func (c *CharacterController) stepGettingUp(w *ecs.World, now time.Duration) {
	st := c.state
	t := &st.Tuning

	ratio := 1.0
	if t.GettingUpDuration > 0 {
		ratio = float64(now-st.GettingUpSince) / float64(t.GettingUpDuration)
	}
	if ratio >= 1 {
		c.finishGettingUp(w)
		return
	}

	c.clampSpin()

	up := c.body.Rotation().Rotate(worldUp)
	axis := up.Cross(worldUp)
	angle := math.Acos(common.Clamp(up.Dot(worldUp), -1, 1))
	if axis.Len() < 1e-9 || angle < 1e-6 {
		return
	}
	// Ease-out cubic.
	ease := 1 - math.Pow(1-ratio, 3)
	c.body.ApplyTorqueImpulse(axis.Normalize().Mul(w.PerTick(t.GettingUpTorque) * angle * ease))
}

// finishGettingUp snaps the body upright keeping only its yaw, restores the
// saved damping and relocks rotations.
func (c *CharacterController) finishGettingUp(w *ecs.World) {
	st := c.state
	yaw := yawFromQuat(c.body.Rotation())
	c.body.SetRotation(mgl64.QuatRotate(yaw, worldUp))
	c.body.SetAngularDamping(st.SavedAngularDamping)
	c.body.SetRotationsLocked(true)
	st.Yaw = yaw
	st.IsTumbling = false
	st.IsGettingUp = false
	w.Events().Push(ecs.Event{Kind: EventCharacterRecovered, Entity: c.entity})
}

func (c *CharacterController) clampSpin() {
	max := c.state.Tuning.MaxTumblingAngularSpeed
	if max <= 0 {
		return
	}
	av := c.body.Angvel()
	if l := av.Len(); l > max {
		c.body.SetAngvel(av.Mul(max / l))
	}
}

// groundedByRays is the fallback for ticks where the ground sensor reports
// no contact: a short downward ray from the body center and four more at
// quarter-radius offsets. Any hit counts as grounded. The ground normal is
// not refreshed here.
func (c *CharacterController) groundedByRays() bool {
	t := &c.state.Tuning
	origin := c.body.Translation()
	q := t.Radius * 0.25
	offsets := [5]mgl64.Vec3{{}, {q, 0, 0}, {-q, 0, 0}, {0, 0, q}, {0, 0, -q}}
	for _, off := range offsets {
		if _, ok := c.phys.Space().RayCast(origin.Add(off), worldDown, t.GroundRayDistance, c.body); ok {
			return true
		}
	}
	return false
}

// updateFalling debounces the falling flag: it only flips on after the
// character has been continuously airborne for the whole falling threshold,
// and any ground contact resets the countdown.
func (c *CharacterController) updateFalling(now time.Duration) {
	st := c.state
	if st.IsGrounded {
		st.IsFalling = false
		st.FallingCandidate = false
		st.FallingSince = 0
		return
	}
	if !st.FallingCandidate {
		st.FallingCandidate = true
		st.FallingSince = now
		return
	}
	if !st.IsFalling && now-st.FallingSince >= st.Tuning.FallingThreshold {
		st.IsFalling = true
	}
}

func (c *CharacterController) facing() mgl64.Vec3 {
	return mgl64.Vec3{math.Sin(c.state.Yaw), 0, math.Cos(c.state.Yaw)}
}

func flatten(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v.X(), 0, v.Z()}
}

func roundVec(v mgl64.Vec3, decimals int) mgl64.Vec3 {
	return mgl64.Vec3{
		common.RoundTo(v.X(), decimals),
		common.RoundTo(v.Y(), decimals),
		common.RoundTo(v.Z(), decimals),
	}
}

// yawFromQuat extracts the heading about the world Y axis using an X-Z-Y
// Euler decomposition. Near gimbal lock the heading is reported as zero.
func yawFromQuat(q mgl64.Quat) float64 {
	m := q.Mat4()
	if math.Abs(m.At(0, 1)) < 0.9999999 {
		return math.Atan2(m.At(0, 2), m.At(0, 0))
	}
	return 0
}
