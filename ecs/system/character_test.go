package system_test

import (
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/overworld/ecs"
	"github.com/milk9111/overworld/ecs/component"
	"github.com/milk9111/overworld/ecs/entity"
	"github.com/milk9111/overworld/ecs/system"
	"github.com/milk9111/overworld/physics"
)

var earthGravity = mgl64.Vec3{0, -9.81, 0}

func standardTuning() component.CharacterTuning {
	return component.CharacterTuning{
		Height:    1.8,
		Radius:    0.35,
		SkinWidth: 0.02,

		GroundSensorHeight: 0.08,
		WallSensorPadding:  0.06,
		GroundRayDistance:  1.05,

		MaxVelocity:      6,
		MoveAcceleration: 40,
		AirDampening:     0.25,
		RotateSpeed:      3.5,
		RunMultiplier:    1.8,
		CrouchMultiplier: 0.5,
		CrouchAccelBoost: 1.4,

		JumpImpulse:          7.5,
		JumpCooldown:         100 * time.Millisecond,
		LandingKeepMoveSpeed: 2,

		CosMaxWalkableAngle: math.Cos(45 * math.Pi / 180),
		MinSlidingSpeed:     0.4,

		FallingThreshold: 1200 * time.Millisecond,

		TumblingGroundSpeed:     9,
		TumblingWallSpeed:       11,
		TumblingMinDuration:     450 * time.Millisecond,
		TumblingEndSpeed:        1.2,
		TumblingEndAngularSpeed: 0.9,
		MaxTumblingAngularSpeed: 12,
		TumblingAngularDamping:  0.6,
		GettingUpDuration:       700 * time.Millisecond,
		GettingUpAngularDamping: 4,
		GettingUpTorque:         28,

		VelocityRoundDecimals: 3,
	}
}

// rig is a minimal world with one spawned character, stepped through the
// physics system exactly like the game loop does.
type rig struct {
	world *ecs.World
	phys  *system.PhysicsSystem
	chars *system.Characters
	char  *entity.Character
	ctrl  *system.CharacterController
	st    *component.CharacterState
}

func newRig(t *testing.T, gravity, spawn mgl64.Vec3, tuning component.CharacterTuning) *rig {
	t.Helper()
	w := ecs.NewWorld()
	phys := system.NewPhysicsSystem(physics.NewSpace(gravity))
	chars := system.NewCharacters()
	char, err := entity.NewCharacter(w, phys, chars, entity.CharacterParams{
		Name:     "probe",
		Position: spawn,
		Tuning:   tuning,
	})
	if err != nil {
		t.Fatalf("spawn character: %v", err)
	}
	return &rig{
		world: w,
		phys:  phys,
		chars: chars,
		char:  char,
		ctrl:  char.Controller,
		st:    char.Controller.State(),
	}
}

// addFloor puts a wide static slab with its top face at y=0.
func (r *rig) addFloor() *physics.Body {
	return r.phys.Space().AddBody(physics.BodyDef{
		Type:     physics.Static,
		Position: mgl64.Vec3{0, -0.5, 0},
		Colliders: []physics.ColliderDef{
			{Shape: physics.Box{HalfExtents: mgl64.Vec3{30, 0.5, 30}}},
		},
	})
}

func (r *rig) addWall(faceZ float64) *physics.Body {
	return r.phys.Space().AddBody(physics.BodyDef{
		Type:     physics.Static,
		Position: mgl64.Vec3{0, 1.5, faceZ + 0.5},
		Colliders: []physics.ColliderDef{
			{Shape: physics.Box{HalfExtents: mgl64.Vec3{2, 1.5, 0.5}}},
		},
	})
}

func (r *rig) step(n int) {
	for i := 0; i < n; i++ {
		r.phys.Update(r.world)
	}
}

func (r *rig) drainKinds() map[ecs.EventKind]int {
	kinds := make(map[ecs.EventKind]int)
	for _, evt := range r.world.Events().Drain() {
		kinds[evt.Kind]++
	}
	return kinds
}

func approxEqual(t *testing.T, got, want, tol float64, field string) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Fatalf("%s = %v, want %v (tolerance %v)", field, got, want, tol)
	}
}

func TestCharacterSettlesOnFloor(t *testing.T) {
	r := newRig(t, earthGravity, mgl64.Vec3{0, 1.5, 0}, standardTuning())
	r.addFloor()

	r.step(90)

	st := r.st
	if !st.IsGrounded {
		t.Fatal("character not grounded after settling")
	}
	if st.IsFalling || st.IsSliding || st.IsTumbling || st.IsAwake {
		t.Fatalf("character not calm: falling=%v sliding=%v tumbling=%v awake=%v",
			st.IsFalling, st.IsSliding, st.IsTumbling, st.IsAwake)
	}
	approxEqual(t, st.Position.Y(), 0.9, 1e-9, "resting height")
	if st.Velocity != (mgl64.Vec3{}) {
		t.Fatalf("resting velocity = %v, want zero", st.Velocity)
	}
	if !st.GroundIsWalkable {
		t.Fatal("flat floor should be walkable")
	}
	if st.GroundNormal != (mgl64.Vec3{0, 1, 0}) {
		t.Fatalf("ground normal = %v, want straight up", st.GroundNormal)
	}
}

func TestGroundedByRayFallback(t *testing.T) {
	near := newRig(t, mgl64.Vec3{}, mgl64.Vec3{0, 1.0, 0}, standardTuning())
	near.addFloor()
	near.step(1)
	if len(near.st.TouchingGround) != 0 {
		t.Fatalf("sensor contact unexpected at hover height: %d", len(near.st.TouchingGround))
	}
	if !near.st.IsGrounded {
		t.Fatal("ray fallback should report grounded just above the floor")
	}

	far := newRig(t, mgl64.Vec3{}, mgl64.Vec3{0, 2.0, 0}, standardTuning())
	far.addFloor()
	far.step(1)
	if far.st.IsGrounded {
		t.Fatal("grounded reported out of ray reach")
	}
	if far.st.IsFalling {
		t.Fatal("falling should wait for the threshold")
	}
}

func TestMoveAndRotate(t *testing.T) {
	r := newRig(t, earthGravity, mgl64.Vec3{0, 1.5, 0}, standardTuning())
	r.addFloor()
	r.step(90)

	r.ctrl.Rotate(r.world, 1)
	wantYaw := 3.5 * r.world.Dt()
	approxEqual(t, r.st.Yaw, wantYaw, 1e-9, "yaw after one rotate")

	r.ctrl.Move(r.world, 1)
	accel := 40 * r.world.Dt()
	v := r.ctrl.Body().Linvel()
	approxEqual(t, v.X(), accel*math.Sin(wantYaw), 1e-9, "velocity.x along facing")
	approxEqual(t, v.Z(), accel*math.Cos(wantYaw), 1e-9, "velocity.z along facing")

	// Driving on walkable ground is not sliding.
	r.step(1)
	if r.st.IsSliding {
		t.Fatal("sliding reported while driving on walkable ground")
	}
}

func TestJumpCooldown(t *testing.T) {
	r := newRig(t, earthGravity, mgl64.Vec3{0, 1.5, 0}, standardTuning())
	r.addFloor()
	r.step(90)

	r.ctrl.Jump(r.world)
	v1 := r.ctrl.Body().Linvel().Y()
	approxEqual(t, v1, 7.5, 1e-12, "velocity.y after first jump")

	r.ctrl.Jump(r.world)
	if got := r.ctrl.Body().Linvel().Y(); got != v1 {
		t.Fatalf("second jump inside cooldown changed velocity: %v", got)
	}

	r.step(7) // past the 100ms cooldown
	before := r.ctrl.Body().Linvel().Y()
	r.ctrl.Jump(r.world)
	approxEqual(t, r.ctrl.Body().Linvel().Y(), before+7.5, 1e-12, "velocity.y gain after cooldown")
}

func TestCrouchSwapsColliderAndBlocksJump(t *testing.T) {
	r := newRig(t, earthGravity, mgl64.Vec3{0, 1.5, 0}, standardTuning())
	r.addFloor()
	r.step(90)
	cols := r.ctrl.Body().Colliders()

	r.ctrl.Crouch()
	if !r.st.IsCrouching {
		t.Fatal("crouch flag not set")
	}
	if cols[0].Enabled() || !cols[1].Enabled() {
		t.Fatalf("crouch collider swap wrong: standing=%v crouch=%v", cols[0].Enabled(), cols[1].Enabled())
	}
	if !cols[2].Enabled() || !cols[3].Enabled() {
		t.Fatal("sensors must survive the collider swap")
	}

	before := r.ctrl.Body().Linvel().Y()
	r.ctrl.Jump(r.world)
	if got := r.ctrl.Body().Linvel().Y(); got != before {
		t.Fatalf("jump while crouched changed velocity: %v", got)
	}

	r.ctrl.Crouch()
	if r.st.IsCrouching || !cols[0].Enabled() || cols[1].Enabled() {
		t.Fatal("standing collider not restored")
	}
}

func TestCommandsInertWhileTumbling(t *testing.T) {
	r := newRig(t, earthGravity, mgl64.Vec3{0, 1.5, 0}, standardTuning())
	r.addFloor()
	r.step(90)

	r.st.IsTumbling = true
	vel := r.ctrl.Body().Linvel()
	rot := r.ctrl.Body().Rotation()

	r.ctrl.Move(r.world, 1)
	r.ctrl.Rotate(r.world, 1)
	r.ctrl.Jump(r.world)

	if r.ctrl.Body().Linvel() != vel {
		t.Fatalf("velocity changed while tumbling: %v", r.ctrl.Body().Linvel())
	}
	if r.ctrl.Body().Rotation() != rot {
		t.Fatal("rotation changed while tumbling")
	}
	if r.st.HasMoveInput {
		t.Fatal("move input recorded while tumbling")
	}

	r.st.IsTumbling = false
	r.ctrl.Move(r.world, 1)
	if r.ctrl.Body().Linvel().Z() <= 0 {
		t.Fatal("move had no effect after tumbling cleared")
	}
}

func TestFallingNeedsSustainedAirtime(t *testing.T) {
	r := newRig(t, earthGravity, mgl64.Vec3{0, 1.5, 0}, standardTuning())
	r.addFloor()
	r.step(90)

	r.ctrl.Jump(r.world)
	r.step(80)
	if r.st.IsGrounded {
		t.Fatal("character grounded mid jump arc")
	}
	if !r.st.IsFalling {
		t.Fatal("falling flag not set after sustained airtime")
	}

	r.step(40)
	if !r.st.IsGrounded {
		t.Fatal("character did not land")
	}
	if r.st.IsFalling {
		t.Fatal("falling flag survived landing")
	}
}

func TestFallingFlipsExactlyAtThreshold(t *testing.T) {
	r := newRig(t, mgl64.Vec3{}, mgl64.Vec3{0, 50, 0}, standardTuning())
	r.world.SetFixedStep(10 * time.Millisecond)

	// Airborne from the first tick, so the countdown starts at 10ms on the
	// clock and the 1200ms threshold is first met on tick 121.
	r.step(120)
	if r.st.IsFalling {
		t.Fatal("falling flagged one tick early")
	}
	r.step(1)
	if !r.st.IsFalling {
		t.Fatal("falling not flagged the tick the threshold is met")
	}

	// Ground contact clears the flag and the countdown the same tick.
	r.addFloor()
	r.ctrl.Body().SetTranslation(mgl64.Vec3{0, 0.9, 0})
	r.step(1)
	if !r.st.IsGrounded || r.st.IsFalling {
		t.Fatalf("grounded=%v falling=%v, want grounded and not falling",
			r.st.IsGrounded, r.st.IsFalling)
	}
	if r.st.FallingSince != 0 {
		t.Fatalf("falling countdown not reset: %v", r.st.FallingSince)
	}
}

func TestHardLandingTumbles(t *testing.T) {
	r := newRig(t, earthGravity, mgl64.Vec3{0, 1.075, 0}, standardTuning())
	r.addFloor()
	r.ctrl.Body().SetLinvel(mgl64.Vec3{0, -10, 0})

	r.step(1)

	if !r.st.IsTumbling {
		t.Fatal("hard landing did not start tumbling")
	}
	if r.st.IsGettingUp {
		t.Fatal("getting-up flagged in the same tick the tumble started")
	}
	if r.ctrl.Body().RotationsLocked() {
		t.Fatal("rotations still locked while tumbling")
	}
	approxEqual(t, r.ctrl.Body().AngularDamping(), 0.6, 1e-12, "tumbling angular damping")

	kinds := r.drainKinds()
	if kinds[system.EventCharacterTumbled] != 1 {
		t.Fatalf("tumbled events = %d, want 1", kinds[system.EventCharacterTumbled])
	}
	if kinds[system.EventCharacterLanded] != 1 {
		t.Fatalf("landed events = %d, want 1", kinds[system.EventCharacterLanded])
	}
}

func TestSoftLandingWithMoveInputKeepsRun(t *testing.T) {
	r := newRig(t, earthGravity, mgl64.Vec3{0, 1.02, 0}, standardTuning())
	r.addFloor()
	r.ctrl.Body().SetLinvel(mgl64.Vec3{0, -5, 0})
	r.ctrl.Move(r.world, 1)

	r.step(1)

	v := r.ctrl.Body().Linvel()
	if v.Y() != 0 {
		t.Fatalf("vertical touchdown velocity not zeroed: %v", v.Y())
	}
	if v.Z() <= 0 {
		t.Fatalf("forward motion lost on landing: %v", v.Z())
	}
	if kinds := r.drainKinds(); kinds[system.EventCharacterLanded] != 1 {
		t.Fatalf("landed events = %d, want 1", kinds[system.EventCharacterLanded])
	}

	// Without move input the touchdown keeps its downward velocity until
	// the solid contact, a tick later.
	idle := newRig(t, earthGravity, mgl64.Vec3{0, 1.02, 0}, standardTuning())
	idle.addFloor()
	idle.ctrl.Body().SetLinvel(mgl64.Vec3{0, -5, 0})
	idle.step(1)
	if got := idle.ctrl.Body().Linvel().Y(); got > -5 {
		t.Fatalf("idle touchdown velocity = %v, want below -5", got)
	}
}

func TestWallImpactTumblesAndRecovers(t *testing.T) {
	r := newRig(t, earthGravity, mgl64.Vec3{0, 1.0, 0}, standardTuning())
	r.addFloor()
	r.addWall(0.77)
	r.step(60)
	r.drainKinds()

	r.ctrl.Body().SetLinvel(mgl64.Vec3{0, 0, 12.5})

	r.step(1)
	if !r.st.IsSliding {
		t.Fatal("skidding across the floor should read as sliding")
	}

	r.step(1)
	if !r.st.IsTumbling {
		t.Fatal("wall impact did not start tumbling")
	}
	if !r.st.IsNearWall {
		t.Fatal("wall contact not recorded")
	}

	r.step(100)
	st := r.st
	if st.IsTumbling || st.IsGettingUp {
		t.Fatalf("character did not recover: tumbling=%v gettingUp=%v", st.IsTumbling, st.IsGettingUp)
	}
	if !r.ctrl.Body().RotationsLocked() {
		t.Fatal("rotations not relocked after recovery")
	}
	approxEqual(t, r.ctrl.Body().AngularDamping(), 0, 1e-12, "angular damping restored")

	kinds := r.drainKinds()
	if kinds[system.EventCharacterTumbled] != 1 {
		t.Fatalf("tumbled events = %d, want 1", kinds[system.EventCharacterTumbled])
	}
	if kinds[system.EventCharacterRecovered] != 1 {
		t.Fatalf("recovered events = %d, want 1", kinds[system.EventCharacterRecovered])
	}
}

func TestMoveCanceledIntoWall(t *testing.T) {
	r := newRig(t, earthGravity, mgl64.Vec3{0, 1.0, 0}, standardTuning())
	r.addFloor()
	r.addWall(0.39)
	r.step(60)

	if !r.st.IsNearWall {
		t.Fatal("wall sensor did not register the wall")
	}
	r.ctrl.Move(r.world, 1)
	if v := r.ctrl.Body().Linvel(); v != (mgl64.Vec3{}) {
		t.Fatalf("move into wall produced velocity %v", v)
	}

	open := newRig(t, earthGravity, mgl64.Vec3{0, 1.0, 0}, standardTuning())
	open.addFloor()
	open.step(60)
	open.ctrl.Move(open.world, 1)
	approxEqual(t, open.ctrl.Body().Linvel().Z(), 40*open.world.Dt(), 1e-9, "unobstructed move velocity")
}

func TestSteepSlopeForcesDownhill(t *testing.T) {
	r := newRig(t, earthGravity, mgl64.Vec3{0, 1.5, 0}, standardTuning())
	r.addFloor()
	r.step(90)

	// A 60 degree surface, fall line along +Z.
	r.st.GroundNormal = mgl64.Vec3{0, 0.5, math.Sqrt(3) / 2}
	r.st.GroundIsWalkable = false

	// Pushing uphill slides downhill instead.
	accel := 40 * r.world.Dt()
	r.ctrl.Move(r.world, -1)
	approxEqual(t, r.ctrl.Body().Linvel().Z(), accel, 1e-9, "forced downhill velocity")
	if !r.st.IsMovingTowardsImpossibleSlope {
		t.Fatal("uphill intent not flagged")
	}

	// Traversing across the fall line passes through.
	r.ctrl.Body().SetLinvel(mgl64.Vec3{})
	r.st.Yaw = math.Pi / 2
	r.ctrl.Move(r.world, 1)
	approxEqual(t, r.ctrl.Body().Linvel().X(), accel, 1e-9, "cross-slope velocity")
	if r.st.IsMovingTowardsImpossibleSlope {
		t.Fatal("cross-slope intent wrongly flagged")
	}
}

func TestGroundWalkabilityFromRamp(t *testing.T) {
	tune := standardTuning()
	tune.GroundRayDistance = 5

	cases := []struct {
		name     string
		pitchDeg float64
		walkable bool
		normalY  float64
	}{
		{"gentle", 30, true, math.Cos(30 * math.Pi / 180)},
		{"steep", 60, false, math.Cos(60 * math.Pi / 180)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := ecs.NewWorld()
			phys := system.NewPhysicsSystem(physics.NewSpace(mgl64.Vec3{}))
			chars := system.NewCharacters()

			pitch := tc.pitchDeg * math.Pi / 180
			if _, err := entity.NewStaticBox(w, phys, "ramp", mgl64.Vec3{}, mgl64.QuatRotate(pitch, mgl64.Vec3{1, 0, 0}), mgl64.Vec3{4, 1, 4}, 0); err != nil {
				t.Fatalf("spawn ramp: %v", err)
			}

			// Hover with the ground sensor straddling the ramp's bounding
			// box top and the feet just clear of it.
			top := 0.5*math.Cos(pitch) + 2*math.Sin(pitch)
			char, err := entity.NewCharacter(w, phys, chars, entity.CharacterParams{
				Name:     "probe",
				Position: mgl64.Vec3{0, top + 0.94, 0},
				Tuning:   tune,
			})
			if err != nil {
				t.Fatalf("spawn character: %v", err)
			}

			phys.Update(w)

			st := char.Controller.State()
			if !st.IsGrounded {
				t.Fatal("ground sensor did not register the ramp")
			}
			if st.GroundIsWalkable != tc.walkable {
				t.Fatalf("walkable = %v, want %v", st.GroundIsWalkable, tc.walkable)
			}
			approxEqual(t, st.GroundNormal.Y(), tc.normalY, 1e-6, "ground normal y")
		})
	}
}
