package component

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/milk9111/overworld/physics"
)

// CharacterTuning is the author-tunable configuration block of a character.
// Read-only at runtime; loaded from defs and frozen into the state at spawn.
type CharacterTuning struct {
	Height    float64
	Radius    float64
	SkinWidth float64

	// Sensor geometry.
	GroundSensorHeight float64
	WallSensorPadding  float64
	GroundRayDistance  float64

	// Movement.
	MaxVelocity      float64
	MoveAcceleration float64 // per second
	AirDampening     float64
	RotateSpeed      float64 // radians per second
	RunMultiplier    float64
	CrouchMultiplier float64
	CrouchAccelBoost float64

	// Jumping.
	JumpImpulse          float64
	JumpCooldown         time.Duration
	LandingKeepMoveSpeed float64

	// Slopes and sliding.
	CosMaxWalkableAngle float64 // precomputed cosine of the walkable limit
	MinSlidingSpeed     float64

	// Falling detection.
	FallingThreshold time.Duration

	// Tumbling and recovery.
	TumblingGroundSpeed     float64
	TumblingWallSpeed       float64
	TumblingMinDuration     time.Duration
	TumblingEndSpeed        float64
	TumblingEndAngularSpeed float64
	MaxTumblingAngularSpeed float64
	TumblingAngularDamping  float64
	GettingUpDuration       time.Duration
	GettingUpAngularDamping float64
	GettingUpTorque         float64

	VelocityRoundDecimals int
}

// CharacterState is the per-character mutable core, exclusively owned by the
// character's looper and sensor handlers. Flags are rewritten once per tick
// in a fixed order; read them, don't infer them.
type CharacterState struct {
	// Kinematic snapshot, rounded to VelocityRoundDecimals.
	Position         mgl64.Vec3
	Velocity         mgl64.Vec3
	RelativeVelocity mgl64.Vec3
	AngularVelocity  mgl64.Vec3
	Yaw              float64

	IsAwake                        bool
	HasMoveInput                   bool
	IsGrounded                     bool
	IsFalling                      bool
	IsRunning                      bool
	IsCrouching                    bool
	IsNearWall                     bool
	IsOnStairs                     bool
	IsOnMovingPlatform             bool
	IsSliding                      bool
	IsTumbling                     bool
	IsGettingUp                    bool
	GroundIsWalkable               bool
	IsMovingTowardsImpossibleSlope bool

	// GroundNormal is the last measured ground surface normal. Refreshed
	// only on ground sensor enter or contact change, never by the ray
	// fallback.
	GroundNormal mgl64.Vec3

	Tuning CharacterTuning

	// Bookkeeping, not configuration.
	TouchingGround map[physics.ColliderID]*physics.Collider
	TouchingWalls  map[physics.ColliderID]*physics.Collider

	WasGrounded      bool
	FallingCandidate bool
	FallingSince     time.Duration
	LastJumpAt       time.Duration
	TumblingSince    time.Duration
	GettingUpSince   time.Duration

	SavedAngularDamping float64

	// Platform coupling: the platform velocity applied to the body last
	// tick (subtracted before reconstruction) and the one computed this
	// tick.
	LastPlatformVelocity mgl64.Vec3
	PlatformVelocity     mgl64.Vec3
	PlatformYaw          float64
}

// NewCharacterState builds a state with fresh contact sets and the world-up
// ground normal.
func NewCharacterState(tuning CharacterTuning) CharacterState {
	return CharacterState{
		GroundNormal:     mgl64.Vec3{0, 1, 0},
		GroundIsWalkable: true,
		Tuning:           tuning,
		TouchingGround:   make(map[physics.ColliderID]*physics.Collider),
		TouchingWalls:    make(map[physics.ColliderID]*physics.Collider),
		LastJumpAt:       -tuning.JumpCooldown,
	}
}

var CharacterComponent = NewComponent[CharacterState]()
