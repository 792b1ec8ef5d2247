package charphys

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/charphys/collide"
	"github.com/gekko3d/charphys/mathutil"
	"github.com/gekko3d/charphys/scene"
)

// MoverState is the three-state character machine of spec §4.7.2.
type MoverState int

const (
	StateGrounded MoverState = iota
	StateAirborne
	StateSwimming
)

// blockGateCos is cos(120 deg): a head-on unwalkable hit at or past this
// angle zeroes horizontal velocity for the step (spec §4.7.1 step 4).
const blockGateCos = -0.5

// sideIterations bounds the collide-and-slide corner-resolution loop
// (spec §4.7.1 "Side": "iterate up to a fixed cap (3)").
const sideIterations = 3

// penetrationBudget is the "2 cm" snap/landing validation tolerance named
// throughout spec §4.7.1 and §8's invariant 1/2.
const penetrationBudget = 0.02

// Stepper is the three-pass character movement stepper (spec §4.7): a
// pure function of (StepInput, scene state) with no hidden shared state,
// safe to invoke concurrently for different characters (spec §5).
type Stepper struct {
	facade  *sceneFacade
	cfg     EngineConfig
	logger  Logger
	logMask LogMask
}

func newStepper(facade *sceneFacade, cfg EngineConfig, logger Logger, logMask LogMask) *Stepper {
	return &Stepper{facade: facade, cfg: cfg, logger: logger, logMask: logMask}
}

// Step runs one tick of the movement stepper (spec §4.7.1's ten-step
// sequence).
func (s *Stepper) Step(in StepInput) (StepOutput, error) {
	if err := s.cfg.Validate(in.Radius, in.Height); err != nil {
		return StepOutput{}, err
	}
	if in.DT <= 0 {
		return StepOutput{Position: in.Position, Orientation: in.Orientation, Pitch: in.Pitch, Velocity: in.Velocity, MoveFlags: in.MoveFlags}, nil
	}

	if s.logMask.enabled(LogMaskMove) {
		s.logger.Debugf("MOVE: map=%d pos=%v vel=%v flags=%#x dt=%.4f", in.MapID, in.Position, in.Velocity, in.MoveFlags, in.DT)
	}

	startPos := in.Position
	cap := collide.NewCapsule(startPos, in.Radius, in.Height)

	dir, hasInput := intentDirection(in.Orientation, in.MoveFlags)
	jumpRequested := in.MoveFlags&MoveJumping != 0

	startLiquid := s.facade.LiquidAt(in.MapID, startPos.X(), startPos.Y(), startPos.Z())

	var (
		endPos     mgl32.Vec3
		grounded   bool
		groundZ    float32
		hasGroundZ bool
		endLiquid  scene.LiquidSample
	)

	switch {
	case startLiquid.IsSwimming:
		endPos = s.swimPath(in, startPos, dir, hasInput)
		endLiquid = s.facade.LiquidAt(in.MapID, endPos.X(), endPos.Y(), endPos.Z())

	case jumpRequested:
		vz := s.cfg.JumpVZ
		endPos, grounded, groundZ, hasGroundZ = s.airPath(in, cap, dir, hasInput, vz)
		endLiquid = s.facade.LiquidAt(in.MapID, endPos.X(), endPos.Y(), endPos.Z())

	default:
		var downAccepted bool
		endPos, downAccepted, groundZ, hasGroundZ = s.groundPath(in, cap, dir, hasInput)
		grounded = downAccepted
		endLiquid = s.facade.LiquidAt(in.MapID, endPos.X(), endPos.Y(), endPos.Z())
		if !downAccepted {
			endPos, grounded, groundZ, hasGroundZ = s.airPath(in, cap, dir, hasInput, in.Velocity.Z())
			endLiquid = s.facade.LiquidAt(in.MapID, endPos.X(), endPos.Y(), endPos.Z())
		}
	}

	return s.synthesize(in, startPos, endPos, grounded, groundZ, hasGroundZ, endLiquid), nil
}

// intentDirection derives the horizontal movement direction from the
// orientation basis and input bits (spec §4.7.1 step 1). A zero result
// means "no input".
func intentDirection(orientation float32, flags MoveFlags) (mgl32.Vec3, bool) {
	forward := mgl32.Vec3{mathutil.Cosf(orientation), mathutil.Sinf(orientation), 0}
	right := mgl32.Vec3{mathutil.Sinf(orientation), -mathutil.Cosf(orientation), 0}

	var dir mgl32.Vec3
	if flags&MoveForward != 0 {
		dir = dir.Add(forward)
	}
	if flags&MoveBackward != 0 {
		dir = dir.Sub(forward)
	}
	if flags&MoveStrafeLeft != 0 {
		dir = dir.Sub(right)
	}
	if flags&MoveStrafeRight != 0 {
		dir = dir.Add(right)
	}
	if dir.LenSqr() <= mathutil.Eps*mathutil.Eps {
		return mgl32.Vec3{}, false
	}
	return dir.Normalize(), true
}

// selectedSpeed picks the tick's horizontal speed from the input's speed
// set, walk mode, and forward/backward intent (spec §6 "Speeds: run,
// walk, run_back, swim, swim_back, flight" — this module treats walk mode
// as overriding run/run_back uniformly since no separate walk_back speed
// is named in the input record).
func selectedSpeed(in StepInput, backward bool) float32 {
	if in.MoveFlags&MoveWalkMode != 0 {
		return in.WalkSpeed
	}
	if backward {
		return in.RunBackSpeed
	}
	return in.RunSpeed
}

// groundPath runs the three-pass (up/side/down) move and returns whether
// the down pass accepted a ground snap.
func (s *Stepper) groundPath(in StepInput, cap collide.Capsule, dir mgl32.Vec3, hasInput bool) (mgl32.Vec3, bool, float32, bool) {
	backward := in.MoveFlags&MoveBackward != 0 && in.MoveFlags&MoveForward == 0
	speed := selectedSpeed(in, backward)
	lateral := mgl32.Vec3{dir.X() * speed * in.DT, dir.Y() * speed * in.DT, 0}

	res := s.facade.Sweep(in.MapID, cap, lateral)
	lateral = s.applyBlockGate(dir, res, lateral)

	stepHeight := float32(0)
	if hasInput && in.MoveFlags&MoveJumping == 0 {
		stepHeight = s.upPass(in, cap, lateral)
	}
	liftedCap := collide.Capsule{P0: cap.P0.Add(mgl32.Vec3{0, 0, stepHeight}), P1: cap.P1.Add(mgl32.Vec3{0, 0, stepHeight}), Radius: cap.Radius}

	movedCap := s.sidePass(in, liftedCap, lateral)

	return s.downPass(in, movedCap, stepHeight)
}

// applyBlockGate zeroes (or attenuates) the lateral vector when an
// unwalkable plane is hit head-on (spec §4.7.1 step 4).
func (s *Stepper) applyBlockGate(dir mgl32.Vec3, res SweepResults, lateral mgl32.Vec3) mgl32.Vec3 {
	worst := float32(1)
	hit := false
	for i, n := range res.PlaneNormals {
		if res.WalkablePlaneMask[i] {
			continue
		}
		d := dir.Dot(n)
		if d < worst {
			worst = d
			hit = true
		}
	}
	if !hit {
		return lateral
	}
	if worst <= blockGateCos {
		return mgl32.Vec3{}
	}
	scale := mathutil.Maxf(0, worst+1)
	return lateral.Mul(scale)
}

// upPass performs the auto-step lift: if there is lateral intent, probe
// for climbable geometry ahead; if found, return the lift height (clamped
// by the earliest obstruction), else 0 (spec §4.7.1 "Up").
func (s *Stepper) upPass(in StepInput, cap collide.Capsule, lateral mgl32.Vec3) float32 {
	if lateral.LenSqr() <= mathutil.Eps*mathutil.Eps {
		return 0
	}
	lift := s.cfg.StepHeight

	sensorDist := cap.Radius + mathutil.LargeEps
	sensorDir := lateral.Normalize().Mul(sensorDist)
	res := s.facade.Sweep(in.MapID, cap, sensorDir)
	climbable := false
	for i := range res.PlaneNormals {
		if !res.WalkablePlaneMask[i] {
			climbable = true
			break
		}
	}
	if !climbable {
		return 0
	}

	upCap := cap
	upSweep := s.facade.Sweep(in.MapID, upCap, mgl32.Vec3{0, 0, lift})
	if upSweep.HasAnyHit && upSweep.EarliestTOI < 1 {
		lift = upSweep.EarliestTOI*lift - s.cfg.Skin(cap.Radius)
		if lift < 0 {
			lift = 0
		}
	}
	if s.logMask.enabled(LogMaskStep) {
		s.logger.Debugf("STEP: lift=%.3f sensorDist=%.3f", lift, sensorDist)
	}
	return lift
}

// sidePass performs horizontal collide-and-slide, projecting the
// remaining displacement against each contact plane for up to
// sideIterations corners (spec §4.7.1 "Side").
func (s *Stepper) sidePass(in StepInput, cap collide.Capsule, lateral mgl32.Vec3) collide.Capsule {
	remaining := lateral
	current := cap

	for iter := 0; iter < sideIterations; iter++ {
		if remaining.LenSqr() <= mathutil.Eps*mathutil.Eps {
			break
		}
		res := s.facade.Sweep(in.MapID, current, remaining)
		toi := mathutil.Clamp01(res.EarliestTOI)
		if s.logMask.enabled(LogMaskCyl) {
			s.logger.Debugf("CYL: iter=%d toi=%.3f hits=%d", iter, toi, len(res.PlaneNormals))
		}
		moveNow := remaining.Mul(toi)
		skin := remaining.Normalize().Mul(s.cfg.Skin(current.Radius))
		if toi < 1 {
			moveNow = moveNow.Sub(skin)
		}
		current = current.Translated(moveNow)

		if toi >= 1 {
			break
		}
		var manifold collide.Manifold
		for _, n := range res.PlaneNormals {
			manifold.Add(n)
		}
		left := remaining.Mul(1 - toi)
		remaining = manifold.ProjectVelocity(left, !res.PrimaryWalkable, 4)
	}
	return current
}

// downPass undoes the step-offset lift, sweeps downward, and selects the
// best ground candidate, validating by a zero-distance overlap before
// accepting (spec §4.7.1 "Down").
func (s *Stepper) downPass(in StepInput, cap collide.Capsule, stepHeight float32) (mgl32.Vec3, bool, float32, bool) {
	downDist := stepHeight + s.cfg.Gravity*in.DT*in.DT + s.cfg.StepDown
	res := s.facade.Sweep(in.MapID, cap, mgl32.Vec3{0, 0, -downDist})

	var best collide.Contact
	found := false
	for _, c := range res.NonPenetrating {
		if mathutil.Absf(c.Normal.Z()) < s.cfg.WalkableCosMin {
			continue
		}
		if !found || c.Point.Z() > best.Point.Z() || (c.Point.Z() == best.Point.Z() && c.TOI < best.TOI) {
			best = c
			found = true
		}
	}

	if found {
		candidate := cap.Translated(mgl32.Vec3{0, 0, -downDist * best.TOI})
		overlapCap := collide.Capsule{P0: candidate.P0, P1: candidate.P1, Radius: candidate.Radius}
		maxPen := float32(0)
		for _, c := range s.facade.OverlapAll(in.MapID, overlapCap) {
			if c.Depth > maxPen {
				maxPen = c.Depth
			}
		}
		if maxPen <= penetrationBudget+s.cfg.Skin(cap.Radius) {
			if s.logMask.enabled(LogMaskSurf) {
				s.logger.Debugf("SURF: accepted groundZ=%.3f maxPen=%.4f", best.Point.Z(), maxPen)
			}
			return candidate.Feet(), true, best.Point.Z(), true
		}
	}

	// Fall back to the highest upward-facing penetrating contact under
	// the same tolerance (spec §4.7.1 "Down": "...fall back to...").
	var fallback collide.Contact
	fallbackFound := false
	for _, c := range res.Penetrating {
		if c.Normal.Z() <= 0 {
			continue
		}
		if c.Depth > penetrationBudget+s.cfg.Skin(cap.Radius) {
			continue
		}
		if !fallbackFound || c.Point.Z() > fallback.Point.Z() {
			fallback = c
			fallbackFound = true
		}
	}
	if fallbackFound {
		return cap.Feet(), true, fallback.Point.Z(), true
	}

	return cap.Feet(), false, 0, false
}

// airPath integrates vz with gravity, optionally skipping ground
// detection under TRUST_INPUT_VELOCITY (spec §4.7.1 step 7).
func (s *Stepper) airPath(in StepInput, cap collide.Capsule, dir mgl32.Vec3, hasInput bool, vz float32) (mgl32.Vec3, bool, float32, bool) {
	backward := in.MoveFlags&MoveBackward != 0 && in.MoveFlags&MoveForward == 0
	speed := selectedSpeed(in, backward)
	horiz := mgl32.Vec3{}
	if hasInput {
		horiz = mgl32.Vec3{dir.X() * speed * in.DT, dir.Y() * speed * in.DT, 0}
	}

	newVZ := vz - s.cfg.Gravity*in.DT
	if newVZ < s.cfg.TerminalVZ {
		newVZ = s.cfg.TerminalVZ
	}
	dz := vz*in.DT - 0.5*s.cfg.Gravity*in.DT*in.DT
	if minDZ := s.cfg.TerminalVZ * in.DT; dz < minDZ {
		dz = minDZ
	}

	delta := mgl32.Vec3{horiz.X(), horiz.Y(), dz}

	if in.PhysicsFlags&TrustInputVelocity != 0 {
		return cap.Translated(delta).Feet(), false, 0, false
	}

	res := s.facade.Sweep(in.MapID, cap, delta)
	for _, c := range res.NonPenetrating {
		if mathutil.Absf(c.Normal.Z()) < s.cfg.WalkableCosMin {
			continue
		}
		predictedZ := cap.Feet().Z() + dz
		if mathutil.Absf(predictedZ-c.Point.Z()) <= s.cfg.LandingTolerance {
			landed := cap.Translated(mgl32.Vec3{horiz.X(), horiz.Y(), c.Point.Z() - cap.Feet().Z()})
			return landed.Feet(), true, c.Point.Z(), true
		}
	}
	for _, c := range res.Penetrating {
		if c.Normal.Z() > 0 && c.Depth <= penetrationBudget+s.cfg.Skin(cap.Radius) {
			return cap.Feet(), true, c.Point.Z(), true
		}
	}

	return cap.Translated(delta).Feet(), false, 0, false
}

// swimPath integrates the capsule through liquid without gravity (spec
// §4.7.1 step 8).
func (s *Stepper) swimPath(in StepInput, pos mgl32.Vec3, dir mgl32.Vec3, hasInput bool) mgl32.Vec3 {
	backward := in.MoveFlags&MoveBackward != 0 && in.MoveFlags&MoveForward == 0
	speed := in.SwimSpeed
	if backward {
		speed = in.SwimBackSpeed
	}
	if !hasInput {
		return pos
	}

	strafeOnly := in.MoveFlags&(MoveStrafeLeft|MoveStrafeRight) != 0 &&
		in.MoveFlags&(MoveForward|MoveBackward) == 0

	cosP := mathutil.Cosf(in.Pitch)
	sinP := mathutil.Sinf(in.Pitch)

	horizSpeed := cosP * speed
	vertSpeed := float32(0)
	if !strafeOnly {
		vertSpeed = sinP * speed
		if backward {
			vertSpeed = -vertSpeed
		}
	}

	delta := mgl32.Vec3{dir.X() * horizSpeed * in.DT, dir.Y() * horizSpeed * in.DT, vertSpeed * in.DT}
	return pos.Add(delta)
}

// synthesize builds the final StepOutput: velocity from displacement,
// flag recomputation (spec §4.7.1 steps 9-10).
func (s *Stepper) synthesize(in StepInput, startPos, endPos mgl32.Vec3, grounded bool, groundZ float32, hasGroundZ bool, endLiquid scene.LiquidSample) StepOutput {
	delta := endPos.Sub(startPos)
	vel := mgl32.Vec3{}
	if in.DT > 0 {
		vel = delta.Mul(1 / in.DT)
	}
	if grounded && !endLiquid.IsSwimming {
		vel = mgl32.Vec3{vel.X(), vel.Y(), 0}
	}

	flags := in.MoveFlags
	if endLiquid.IsSwimming {
		flags |= MoveSwimming
		flags &^= MoveJumping | MoveFallingFar | MoveFlying | MoveRoot |
			MovePendingStop | MovePendingStrafe | MovePendingForward
	} else {
		flags &^= MoveSwimming
	}

	jumpRequested := in.MoveFlags&MoveJumping != 0
	if jumpRequested {
		flags |= MoveJumping
	} else {
		flags &^= MoveJumping
	}

	if !grounded && !endLiquid.IsSwimming && vel.Z() < 0 {
		flags |= MoveFallingFar
	} else {
		flags &^= MoveFallingFar
	}

	if delta.Len() > mathutil.TouchEps {
		flags |= MoveMoved
	} else {
		flags &^= MoveMoved
	}

	liquidZ := endLiquid.Level
	if !endLiquid.HasLevel {
		liquidZ = NoLiquidLevel
	}

	gz := groundZ
	if !hasGroundZ {
		gz = endPos.Z()
	}

	return StepOutput{
		Position:    endPos,
		Orientation: in.Orientation,
		Pitch:       in.Pitch,
		Velocity:    vel,
		MoveFlags:   flags,
		GroundZ:     gz,
		Grounded:    grounded,
		LiquidZ:     liquidZ,
		LiquidType:  endLiquid.Type,
	}
}
