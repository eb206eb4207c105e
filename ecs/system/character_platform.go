package system

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/overworld/common"
	"github.com/milk9111/overworld/ecs"
	"github.com/milk9111/overworld/ecs/component"
	"github.com/milk9111/overworld/physics"
)

// Relative velocities below this snap to zero instead of decaying forever.
const platformSnapEpsilon = 0.01

// applyPlatformCoupling makes the character ride the first touched platform:
// spin it with the platform's yaw, reconstruct its own velocity relative to
// the surface, decay that toward zero while it isn't driving, then recompose
// the world velocity from the platform's current motion.
func (c *CharacterController) applyPlatformCoupling(w *ecs.World) {
	st := c.state
	t := &st.Tuning

	kin, pbody, ok := c.firstPlatformContact(w)
	if !ok {
		st.LastPlatformVelocity = mgl64.Vec3{}
		st.PlatformVelocity = mgl64.Vec3{}
		return
	}

	// The authored kinematics win; fall back to whatever the body is
	// actually doing when the side table carries nothing.
	angVel := kin.AngularVelocity
	if angVel.Len() == 0 {
		angVel = pbody.Angvel()
	}
	linVel := kin.Velocity
	if linVel.Len() == 0 {
		linVel = pbody.Linvel()
	}

	// Lever arm from the platform center, flattened so spin only produces
	// horizontal carry.
	r := c.body.Translation().Sub(pbody.Translation())
	r[1] = 0
	platformVel := linVel.Add(angVel.Cross(r))

	// Spin the rider with the platform so facing tracks the surface.
	yawDelta := angVel.Y() * w.Dt()
	turning := math.Abs(angVel.Y()) > 1e-4
	if turning {
		spin := mgl64.QuatRotate(yawDelta, worldUp)
		c.body.SetRotation(spin.Mul(c.body.Rotation()))
		st.Yaw = yawFromQuat(c.body.Rotation())
	}

	// Reconstruct the rider's own velocity: subtract what the platform
	// contributed last tick, not what it moves at now.
	rel := c.body.Linvel().Sub(st.LastPlatformVelocity)
	if turning {
		rel = mgl64.QuatRotate(yawDelta, worldUp).Rotate(rel)
	}

	if !st.HasMoveInput && !st.IsTumbling {
		keep := 1 - common.Clamp(w.PerTick(kin.Friction), 0, 1)
		rel[0] *= keep
		rel[2] *= keep
		if math.Abs(rel[0]) < platformSnapEpsilon {
			rel[0] = 0
		}
		if math.Abs(rel[2]) < platformSnapEpsilon {
			rel[2] = 0
		}
	}

	next := rel.Add(platformVel)
	c.body.SetLinvel(next)

	st.LastPlatformVelocity = platformVel
	st.PlatformVelocity = platformVel
	st.PlatformYaw = yawFromQuat(pbody.Rotation())
	st.Velocity = roundVec(next, t.VelocityRoundDecimals)
	st.RelativeVelocity = roundVec(rel, t.VelocityRoundDecimals)
	st.AngularVelocity = roundVec(c.body.Angvel(), t.VelocityRoundDecimals)
}

// firstPlatformContact returns the first touched ground collider whose owner
// carries platform kinematics. Contacts iterate in collider id order so the
// choice is stable while standing across two platforms.
func (c *CharacterController) firstPlatformContact(w *ecs.World) (*component.PlatformKinematics, *physics.Body, bool) {
	st := c.state
	ids := make([]physics.ColliderID, 0, len(st.TouchingGround))
	for id := range st.TouchingGround {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		pbody := st.TouchingGround[id].Body()
		e, ok := c.phys.Lookup(pbody.ID())
		if !ok {
			continue
		}
		kin, ok := ecs.Get(w, e, component.PlatformKinematicsComponent.Kind())
		if !ok {
			continue
		}
		return kin, pbody, true
	}
	return nil, nil, false
}
