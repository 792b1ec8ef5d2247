package charphys

import "github.com/go-gl/mathgl/mgl32"

// CapsuleMover is the stateful thin wrapper of spec §4.8: it stores the
// current capsule pose and always calls through the Stepper rather than
// duplicating any climbing-sensor logic — the stepper's Up pass (§4.7.1)
// is the single source of truth for that behavior, per spec §9's explicit
// resolution of the mover/stepper duplication open question.
type CapsuleMover struct {
	stepper *Stepper

	MapID  uint32
	Pos    mgl32.Vec3
	Orient float32
	Pitch  float32
	Vel    mgl32.Vec3
	Radius float32
	Height float32

	MoveFlags    MoveFlags
	PhysicsFlags PhysicsFlags

	RunSpeed      float32
	RunBackSpeed  float32
	WalkSpeed     float32
	SwimSpeed     float32
	SwimBackSpeed float32

	State MoverState
}

// NewCapsuleMover builds a mover bound to engine's stepper, at the given
// initial pose.
func (e *Engine) NewCapsuleMover(mapID uint32, pos mgl32.Vec3, radius, height float32) *CapsuleMover {
	return &CapsuleMover{
		stepper: e.stepper,
		MapID:   mapID,
		Pos:     pos,
		Radius:  radius,
		Height:  height,
		State:   StateGrounded,
	}
}

// Tick advances the mover by one step, calling through to the Stepper and
// updating the mover's cached pose/velocity/state.
func (m *CapsuleMover) Tick(dt float32) (StepOutput, error) {
	in := StepInput{
		MapID:         m.MapID,
		Position:      m.Pos,
		Orientation:   m.Orient,
		Pitch:         m.Pitch,
		Velocity:      m.Vel,
		MoveFlags:     m.MoveFlags,
		PhysicsFlags:  m.PhysicsFlags,
		RunSpeed:      m.RunSpeed,
		RunBackSpeed:  m.RunBackSpeed,
		WalkSpeed:     m.WalkSpeed,
		SwimSpeed:     m.SwimSpeed,
		SwimBackSpeed: m.SwimBackSpeed,
		Radius:        m.Radius,
		Height:        m.Height,
		DT:            dt,
	}

	out, err := m.stepper.Step(in)
	if err != nil {
		return out, err
	}

	m.Pos = out.Position
	m.Orient = out.Orientation
	m.Pitch = out.Pitch
	m.Vel = out.Velocity
	m.MoveFlags = out.MoveFlags

	switch {
	case out.MoveFlags&MoveSwimming != 0:
		m.State = StateSwimming
	case out.Grounded:
		m.State = StateGrounded
	default:
		m.State = StateAirborne
	}

	return out, nil
}
