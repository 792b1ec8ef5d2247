package charphys

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/charphys/scene"
)

// Vec3 is the public vector type for this module's API, a direct alias
// for mgl32.Vec3 (spec §9 ambient-stack: "all vector... math uses
// github.com/go-gl/mathgl/mgl32... rather than a hand-rolled vector
// type").
type Vec3 = mgl32.Vec3

// LiquidType re-exports scene.LiquidType as the public enum consumed by
// StepOutput (spec §6.2).
type LiquidType = scene.LiquidType

const (
	LiquidNone           = scene.LiquidNone
	LiquidWater          = scene.LiquidWater
	LiquidOcean          = scene.LiquidOcean
	LiquidMagma          = scene.LiquidMagma
	LiquidSlime          = scene.LiquidSlime
	LiquidNaxxramasSlime = scene.LiquidNaxxramasSlime
)

// NoLiquidLevel is the sentinel meaning "no liquid sampled here" (spec
// §6.2: "any z > sentinel is a valid level").
const NoLiquidLevel = scene.NoLiquidLevel

// MoveFlags is the bitset recognized on StepInput and recomputed on
// StepOutput (spec §6.1).
type MoveFlags uint32

const (
	MoveForward MoveFlags = 1 << iota
	MoveBackward
	MoveStrafeLeft
	MoveStrafeRight
	MoveWalkMode
	MoveJumping
	MoveFallingFar
	MoveSwimming
	MoveMoved
	MoveOnTransport
	MoveSplineEnabled
	MovePendingStop
	MovePendingStrafe
	MovePendingForward
	MoveRoot
	MoveFlying
	MoveHover
	MoveWaterWalking
	MoveSafeFall
)

// PhysicsFlags carries behavioral switches independent of movement intent
// (spec §4.7).
type PhysicsFlags uint32

const (
	// TrustInputVelocity makes the air path skip its ground collision test:
	// an airborne or jumping tick moves by the integrated displacement with
	// no sweep. The grounded three-pass path does not read this flag, so its
	// down pass still runs ground detection.
	TrustInputVelocity PhysicsFlags = 1 << iota
)

// StepInput is one tick's movement request (spec §4.7).
type StepInput struct {
	MapID uint32

	Position    Vec3
	Orientation float32 // yaw, radians
	Pitch       float32
	Velocity    Vec3

	MoveFlags    MoveFlags
	PhysicsFlags PhysicsFlags

	RunSpeed     float32
	RunBackSpeed float32
	WalkSpeed    float32
	SwimSpeed    float32
	SwimBackSpeed float32
	FlightSpeed  float32

	Radius   float32
	Height   float32
	FallTime float32

	DT float32

	TransportGUID uint64

	HasSplinePath      bool
	SplineSpeed        float32
	CurrentSplineIndex int
}

// StepOutput is the result of one tick (spec §4.7).
type StepOutput struct {
	Position    Vec3
	Orientation float32
	Pitch       float32
	Velocity    Vec3

	MoveFlags MoveFlags

	GroundZ    float32
	Grounded   bool
	LiquidZ    float32
	LiquidType LiquidType
}
