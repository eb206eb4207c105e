package defs

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"gopkg.in/yaml.v3"

	"github.com/milk9111/overworld/ecs/component"
)

// LoadSpec loads and unmarshals a def file into a spec type.
func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("defs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("defs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

type Vec3Spec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

func (v Vec3Spec) Vec3() mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

// CharacterSpec is the authored tuning block of a character. Durations are
// authored in milliseconds, angles in degrees; Tuning converts both.
type CharacterSpec struct {
	Name string `yaml:"name"`

	Height    float64 `yaml:"height"`
	Radius    float64 `yaml:"radius"`
	SkinWidth float64 `yaml:"skin_width"`

	GroundSensorHeight float64 `yaml:"ground_sensor_height"`
	WallSensorPadding  float64 `yaml:"wall_sensor_padding"`
	GroundRayDistance  float64 `yaml:"ground_ray_distance"`

	MaxVelocity      float64 `yaml:"max_velocity"`
	MoveAcceleration float64 `yaml:"move_acceleration"`
	AirDampening     float64 `yaml:"air_dampening"`
	RotateSpeed      float64 `yaml:"rotate_speed"`
	RunMultiplier    float64 `yaml:"run_multiplier"`
	CrouchMultiplier float64 `yaml:"crouch_multiplier"`
	CrouchAccelBoost float64 `yaml:"crouch_accel_boost"`

	JumpImpulse          float64 `yaml:"jump_impulse"`
	JumpCooldownMS       int     `yaml:"jump_cooldown_ms"`
	LandingKeepMoveSpeed float64 `yaml:"landing_keep_move_speed"`

	MaxWalkableAngleDeg float64 `yaml:"max_walkable_angle_deg"`
	MinSlidingSpeed     float64 `yaml:"min_sliding_speed"`

	FallingThresholdMS int `yaml:"falling_threshold_ms"`

	TumblingGroundSpeed     float64 `yaml:"tumbling_ground_speed"`
	TumblingWallSpeed       float64 `yaml:"tumbling_wall_speed"`
	TumblingMinDurationMS   int     `yaml:"tumbling_min_duration_ms"`
	TumblingEndSpeed        float64 `yaml:"tumbling_end_speed"`
	TumblingEndAngularSpeed float64 `yaml:"tumbling_end_angular_speed"`
	MaxTumblingAngularSpeed float64 `yaml:"max_tumbling_angular_speed"`
	TumblingAngularDamping  float64 `yaml:"tumbling_angular_damping"`
	GettingUpDurationMS     int     `yaml:"getting_up_duration_ms"`
	GettingUpAngularDamping float64 `yaml:"getting_up_angular_damping"`
	GettingUpTorque         float64 `yaml:"getting_up_torque"`

	VelocityRoundDecimals int `yaml:"velocity_round_decimals"`
}

func LoadCharacterSpec(filename string) (CharacterSpec, error) {
	return LoadSpec[CharacterSpec](filename)
}

// Tuning converts the authored spec into the runtime tuning block.
func (s CharacterSpec) Tuning() component.CharacterTuning {
	return component.CharacterTuning{
		Height:    s.Height,
		Radius:    s.Radius,
		SkinWidth: s.SkinWidth,

		GroundSensorHeight: s.GroundSensorHeight,
		WallSensorPadding:  s.WallSensorPadding,
		GroundRayDistance:  s.GroundRayDistance,

		MaxVelocity:      s.MaxVelocity,
		MoveAcceleration: s.MoveAcceleration,
		AirDampening:     s.AirDampening,
		RotateSpeed:      s.RotateSpeed,
		RunMultiplier:    s.RunMultiplier,
		CrouchMultiplier: s.CrouchMultiplier,
		CrouchAccelBoost: s.CrouchAccelBoost,

		JumpImpulse:          s.JumpImpulse,
		JumpCooldown:         time.Duration(s.JumpCooldownMS) * time.Millisecond,
		LandingKeepMoveSpeed: s.LandingKeepMoveSpeed,

		CosMaxWalkableAngle: math.Cos(s.MaxWalkableAngleDeg * math.Pi / 180),
		MinSlidingSpeed:     s.MinSlidingSpeed,

		FallingThreshold: time.Duration(s.FallingThresholdMS) * time.Millisecond,

		TumblingGroundSpeed:     s.TumblingGroundSpeed,
		TumblingWallSpeed:       s.TumblingWallSpeed,
		TumblingMinDuration:     time.Duration(s.TumblingMinDurationMS) * time.Millisecond,
		TumblingEndSpeed:        s.TumblingEndSpeed,
		TumblingEndAngularSpeed: s.TumblingEndAngularSpeed,
		MaxTumblingAngularSpeed: s.MaxTumblingAngularSpeed,
		TumblingAngularDamping:  s.TumblingAngularDamping,
		GettingUpDuration:       time.Duration(s.GettingUpDurationMS) * time.Millisecond,
		GettingUpAngularDamping: s.GettingUpAngularDamping,
		GettingUpTorque:         s.GettingUpTorque,

		VelocityRoundDecimals: s.VelocityRoundDecimals,
	}
}

// BindingsSpec names keys by their ebiten names ("A", "Space", "ShiftLeft").
type BindingsSpec struct {
	RotateLeft   string `yaml:"rotate_left"`
	RotateRight  string `yaml:"rotate_right"`
	MoveForward  string `yaml:"move_forward"`
	MoveBackward string `yaml:"move_backward"`
	Jump         string `yaml:"jump"`
	Run          string `yaml:"run"`
	Crouch       string `yaml:"crouch"`
}

func LoadBindingsSpec(filename string) (BindingsSpec, error) {
	return LoadSpec[BindingsSpec](filename)
}

func (s BindingsSpec) Bindings() (component.Bindings, error) {
	var (
		b   component.Bindings
		err error
	)
	if b.RotateLeft, err = parseKey(s.RotateLeft); err != nil {
		return b, err
	}
	if b.RotateRight, err = parseKey(s.RotateRight); err != nil {
		return b, err
	}
	if b.MoveForward, err = parseKey(s.MoveForward); err != nil {
		return b, err
	}
	if b.MoveBackward, err = parseKey(s.MoveBackward); err != nil {
		return b, err
	}
	if b.Jump, err = parseKey(s.Jump); err != nil {
		return b, err
	}
	if b.Run, err = parseKey(s.Run); err != nil {
		return b, err
	}
	if b.Crouch, err = parseKey(s.Crouch); err != nil {
		return b, err
	}
	return b, nil
}

func parseKey(name string) (ebiten.Key, error) {
	for k := ebiten.Key(0); k <= ebiten.KeyMax; k++ {
		if strings.EqualFold(k.String(), name) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("defs: unknown key %q", name)
}

// LevelSpec describes a whole sandbox: geometry, platforms and spawns.
type LevelSpec struct {
	Name       string                   `yaml:"name"`
	Gravity    Vec3Spec                 `yaml:"gravity"`
	Camera     CameraSpec               `yaml:"camera"`
	Boxes      []BoxSpec                `yaml:"boxes"`
	Stairs     []StairsSpec             `yaml:"stairs"`
	Platforms  []PlatformSpec           `yaml:"platforms"`
	Characters []CharacterPlacementSpec `yaml:"characters"`
}

func LoadLevelSpec(filename string) (LevelSpec, error) {
	return LoadSpec[LevelSpec](filename)
}

type CameraSpec struct {
	Offset     Vec3Spec `yaml:"offset"`
	Smoothness float64  `yaml:"smoothness"`
	Zoom       float64  `yaml:"zoom"`
}

// BoxSpec is a static box: floors, walls, and with a pitch or yaw, ramps.
type BoxSpec struct {
	Name     string   `yaml:"name"`
	Position Vec3Spec `yaml:"position"`
	Size     Vec3Spec `yaml:"size"`
	PitchDeg float64  `yaml:"pitch_deg"`
	YawDeg   float64  `yaml:"yaw_deg"`
	Friction float64  `yaml:"friction"`
}

// Rotation composes the authored yaw then pitch into the body rotation.
func (s BoxSpec) Rotation() mgl64.Quat {
	yaw := mgl64.QuatRotate(s.YawDeg*math.Pi/180, mgl64.Vec3{0, 1, 0})
	pitch := mgl64.QuatRotate(s.PitchDeg*math.Pi/180, mgl64.Vec3{1, 0, 0})
	return yaw.Mul(pitch)
}

type StairsSpec struct {
	Name     string   `yaml:"name"`
	Position Vec3Spec `yaml:"position"`
	Steps    int      `yaml:"steps"`
	Rise     float64  `yaml:"rise"`
	Run      float64  `yaml:"run"`
	Width    float64  `yaml:"width"`
	Friction float64  `yaml:"friction"`
}

type WaypointSpec struct {
	Position   Vec3Spec `yaml:"position"`
	YawDeg     float64  `yaml:"yaw_deg"`
	DurationMS int      `yaml:"duration_ms"`
}

func (s WaypointSpec) Waypoint() component.Waypoint {
	return component.Waypoint{
		Position: s.Position.Vec3(),
		Yaw:      s.YawDeg * math.Pi / 180,
		Duration: time.Duration(s.DurationMS) * time.Millisecond,
	}
}

type PlatformSpec struct {
	Name      string         `yaml:"name"`
	Position  Vec3Spec       `yaml:"position"`
	Size      Vec3Spec       `yaml:"size"`
	Friction  float64        `yaml:"friction"`
	Waypoints []WaypointSpec `yaml:"waypoints"`
}

// CharacterPlacementSpec spawns a character def at a position. Controlled
// characters get the keyboard bindings; Script attaches a tengo brain.
type CharacterPlacementSpec struct {
	Name         string   `yaml:"name"`
	Spec         string   `yaml:"spec"`
	Position     Vec3Spec `yaml:"position"`
	Controlled   bool     `yaml:"controlled"`
	Script       string   `yaml:"script"`
	CameraTarget bool     `yaml:"camera_target"`
}
