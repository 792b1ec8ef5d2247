package charphys

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/charphys/collide"
	"github.com/gekko3d/charphys/dynamic"
	"github.com/gekko3d/charphys/mathutil"
	"github.com/gekko3d/charphys/scene"
)

// StandSource records where a standable Z came from, for diagnostics and
// for the invariant checks in spec §8.
type StandSource int

const (
	StandSourceNone StandSource = iota
	StandSourceSweep
	StandSourceGroundZ
)

// SweepResults is the cached outcome of one capsule sweep plus its liquid
// bracket, the single struct the stepper consumes (spec §4.6).
type SweepResults struct {
	Penetrating    []collide.Contact
	NonPenetrating []collide.Contact

	PrimaryPlane     collide.Contact
	HasPrimary       bool
	PrimaryWalkable  bool
	PrimaryPenetrate bool

	PlaneNormals      []mgl32.Vec3
	WalkablePlaneMask []bool

	StandZ      float32
	HasStandZ   bool
	StandSource StandSource

	SuggestedSkin float32

	LiquidStart scene.LiquidSample
	LiquidEnd   scene.LiquidSample

	SlideDir     mgl32.Vec3
	HasSlideDir  bool
	EarliestTOI  float32
	HasAnyHit    bool
}

// sceneFacade unifies the static scene, dynamic registry, and liquid
// evaluation into the hit-list API the stepper consumes (spec §4.6).
// Grounded on the teacher's pattern of passing owned engine values by
// reference rather than reaching for a singleton (spec §9).
type sceneFacade struct {
	static  *scene.StaticScene
	dynamic *dynamic.Registry
	cfg     EngineConfig
	logger  Logger
	logMask LogMask
}

func newSceneFacade(static *scene.StaticScene, registry *dynamic.Registry, cfg EngineConfig, logger Logger, logMask LogMask) *sceneFacade {
	return &sceneFacade{static: static, dynamic: registry, cfg: cfg, logger: logger, logMask: logMask}
}

// Sweep gathers a capsule's static and dynamic-object contacts along
// displacement v, builds the de-duplicated plane manifold, finds the
// standable Z within the step-down window, and samples liquid at both
// ends of the intended path.
func (f *sceneFacade) Sweep(mapID uint32, cap collide.Capsule, v mgl32.Vec3) SweepResults {
	var res SweepResults

	staticHits := f.static.SweepCapsule(mapID, cap, v)
	box := mathutil.SweptAABB(cap.AABB(), v)
	f.dynamic.VisitObjects(mapID, box, func(o *dynamic.Object) {
		for _, c := range collide.SweepViewCapsule(o, cap, v, box) {
			c.InstanceID = fmt.Sprintf("dyn:%d", o.GUID)
			staticHits = append(staticHits, c)
		}
	})

	res.SuggestedSkin = f.cfg.Skin(cap.Radius)

	var manifold collide.Manifold
	bestTOI := float32(1.0)
	hasAny := false
	for _, c := range staticHits {
		if c.StartPenetrating {
			res.Penetrating = append(res.Penetrating, c)
		} else {
			res.NonPenetrating = append(res.NonPenetrating, c)
		}
		manifold.Add(c.Normal)
		hasAny = true
		if c.TOI < bestTOI {
			bestTOI = c.TOI
		}
		walkable := mathutil.Absf(c.Normal.Z()) >= f.cfg.WalkableCosMin
		if !res.HasPrimary || c.Depth > res.PrimaryPlane.Depth {
			res.PrimaryPlane = c
			res.HasPrimary = true
			res.PrimaryWalkable = walkable
			res.PrimaryPenetrate = c.StartPenetrating
		}
	}
	res.HasAnyHit = hasAny
	res.EarliestTOI = bestTOI

	res.PlaneNormals = append(res.PlaneNormals, manifold.Planes...)
	for _, n := range manifold.Planes {
		res.WalkablePlaneMask = append(res.WalkablePlaneMask, mathutil.Absf(n.Z()) >= f.cfg.WalkableCosMin)
	}

	if v.LenSqr() > mathutil.Eps*mathutil.Eps {
		horiz := mgl32.Vec3{v.X(), v.Y(), 0}
		proj := manifold.ProjectVelocity(horiz, true, 4)
		if proj.LenSqr() > mathutil.Eps*mathutil.Eps {
			res.SlideDir = proj.Normalize()
			res.HasSlideDir = true
		}
	}

	standZ, source, ok := f.findStandZ(mapID, cap, v)
	res.StandZ = standZ
	res.StandSource = source
	res.HasStandZ = ok

	startFeet := cap.Feet()
	endFeet := cap.Translated(v).Feet()
	res.LiquidStart = f.static.LiquidAt(mapID, startFeet.X(), startFeet.Y(), startFeet.Z())
	res.LiquidEnd = f.static.LiquidAt(mapID, endFeet.X(), endFeet.Y(), endFeet.Z())

	return res
}

// findStandZ looks for a walkable floor within the step-down window below
// the swept capsule's end position, first via ground_z and then, when the
// ray finds nothing, via a zero-distance sphere overlap at the end feet
// (for WMO interiors where the ray misses the floor).
func (f *sceneFacade) findStandZ(mapID uint32, cap collide.Capsule, v mgl32.Vec3) (float32, StandSource, bool) {
	endFeet := cap.Translated(v).Feet()

	if z, ok := f.static.GroundZ(mapID, endFeet.X(), endFeet.Y(), endFeet.Z()+mathutil.LargeEps, f.cfg.StepDown); ok {
		if f.logMask.enabled(LogMaskSurf) {
			f.logger.Debugf("SURF: ground_z hit map=%d feet=%v z=%.3f", mapID, endFeet, z)
		}
		return z, StandSourceGroundZ, true
	}

	overlapCap := collide.Capsule{
		P0:     mgl32.Vec3{endFeet.X(), endFeet.Y(), endFeet.Z() + cap.Radius},
		P1:     mgl32.Vec3{endFeet.X(), endFeet.Y(), endFeet.Z() + cap.Radius},
		Radius: cap.Radius,
	}
	for _, c := range f.static.OverlapCapsule(mapID, overlapCap) {
		if mathutil.Absf(c.Normal.Z()) >= f.cfg.WalkableCosMin {
			return c.Point.Z(), StandSourceSweep, true
		}
	}
	return 0, StandSourceNone, false
}

// OverlapAll merges static and dynamic-object overlap contacts at cap's
// current pose (no displacement).
func (f *sceneFacade) OverlapAll(mapID uint32, cap collide.Capsule) []collide.Contact {
	out := f.static.OverlapCapsule(mapID, cap)
	box := cap.AABB()
	f.dynamic.VisitObjects(mapID, box, func(o *dynamic.Object) {
		for _, c := range collide.OverlapViewCapsule(o, cap, box) {
			c.InstanceID = fmt.Sprintf("dyn:%d", o.GUID)
			out = append(out, c)
		}
	})
	return out
}

// GroundZ delegates to the static scene's height query.
func (f *sceneFacade) GroundZ(mapID uint32, x, y, z0, maxDist float32) (float32, bool) {
	return f.static.GroundZ(mapID, x, y, z0, maxDist)
}

// LiquidAt delegates to the static scene's liquid query.
func (f *sceneFacade) LiquidAt(mapID uint32, x, y, z float32) scene.LiquidSample {
	return f.static.LiquidAt(mapID, x, y, z)
}

// LOS delegates to the static scene's line-of-sight query.
func (f *sceneFacade) LOS(mapID uint32, a, b mgl32.Vec3) bool {
	return f.static.LOS(mapID, a, b)
}
