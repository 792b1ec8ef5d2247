package charphys

import "github.com/gekko3d/charphys/mathutil"

// EngineConfig holds every tunable constant the stepper and mover read,
// mirroring the teacher's NewPhysicsWorld() constructor-with-defaults
// idiom (physics.go): every constant from spec §4.1 is a field with a
// documented default rather than an inline magic number, so a caller (or
// test) can override it.
type EngineConfig struct {
	Gravity          float32
	TerminalVZ       float32
	JumpVZ           float32
	StepHeight       float32
	StepDown         float32
	WalkableCosMin   float32
	LandingTolerance float32
	SwimDepthTol     float32

	// BaseSkin/GroundZBias are formulas, not constants, but the scale
	// factors are exposed so a caller can retune contact slack without
	// forking mathutil.
	SkinScale       float32
	GroundBiasScale float32
}

// DefaultEngineConfig returns the constants specified in spec §4.1.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Gravity:          mathutil.Gravity,
		TerminalVZ:       mathutil.TerminalVZ,
		JumpVZ:           mathutil.JumpVZ,
		StepHeight:       mathutil.StepHeight,
		StepDown:         mathutil.StepDown,
		WalkableCosMin:   mathutil.WalkableCosMin,
		LandingTolerance: mathutil.LandingTolerance,
		SwimDepthTol:     1.0,
		SkinScale:        0.02,
		GroundBiasScale:  0.05,
	}
}

// Skin returns the contact skin offset for a capsule of the given radius
// under this config.
func (c EngineConfig) Skin(radius float32) float32 {
	return mathutil.Clampf(c.SkinScale*radius, 0.001, 0.05)
}

// GroundBias returns the vertical snap slack for a capsule of the given
// radius under this config.
func (c EngineConfig) GroundBias(radius float32) float32 {
	return mathutil.Clampf(c.GroundBiasScale*radius, 0.01, 0.05)
}

// Validate rejects a physically nonsensical capsule radius/height per the
// ConfigInvalid error kind (spec §7).
func (c EngineConfig) Validate(radius, height float32) error {
	if radius <= 0 {
		return newPhysError(KindConfigInvalid, "capsule radius must be positive", nil)
	}
	if height < 2*radius {
		return newPhysError(KindConfigInvalid, "capsule height must be >= 2*radius", nil)
	}
	return nil
}
