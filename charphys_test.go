package charphys

import (
	"errors"
	"os"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/charphys/collide"
	"github.com/gekko3d/charphys/scene"
)

func flatFloorTriangles() []collide.Triangle {
	return []collide.Triangle{
		{V0: mgl32.Vec3{-200, -200, 0}, V1: mgl32.Vec3{200, -200, 0}, V2: mgl32.Vec3{200, 200, 0}},
		{V0: mgl32.Vec3{-200, -200, 0}, V1: mgl32.Vec3{200, 200, 0}, V2: mgl32.Vec3{-200, 200, 0}},
	}
}

func flatTerrainTile(coord scene.TileCoord) *scene.TerrainTile {
	size := 4
	heights := make([]float32, (size+1)*(size+1))
	return &scene.TerrainTile{
		Coord:    coord,
		Size:     size,
		CellSize: 100,
		OriginX:  float32(coord.X) * 400,
		OriginY:  float32(coord.Y) * 400,
		Heights:  heights,
	}
}

// newFlatEngine builds an Engine over a single flat terrain tile centered
// on the origin, with no model instances.
func newFlatEngine(t *testing.T) *Engine {
	t.Helper()
	tileLoader := func(mapID uint32, coord scene.TileCoord) (*scene.TerrainTile, []scene.TileInstance, error) {
		return flatTerrainTile(coord), nil, nil
	}
	modelLoader := func(ref string) ([]collide.Triangle, error) {
		return nil, errors.New("no models in this fixture")
	}
	e := NewEngine(modelLoader, tileLoader, DefaultEngineConfig(), DefaultLogConfig())
	e.LoadMap(0)
	require.NoError(t, e.LoadTile(0, 0, 0))
	return e
}

func TestIntentDirectionNoInputIsZero(t *testing.T) {
	dir, ok := intentDirection(0, 0)
	require.False(t, ok)
	require.Equal(t, mgl32.Vec3{}, dir)
}

func TestIntentDirectionForwardMatchesOrientation(t *testing.T) {
	dir, ok := intentDirection(0, MoveForward)
	require.True(t, ok)
	require.InDelta(t, 1, dir.X(), 1e-3)
	require.InDelta(t, 0, dir.Y(), 1e-3)
}

func TestIntentDirectionForwardAndStrafeIsDiagonal(t *testing.T) {
	dir, ok := intentDirection(0, MoveForward|MoveStrafeRight)
	require.True(t, ok)
	require.InDelta(t, 1, dir.Len(), 1e-3)
	require.Greater(t, dir.X(), float32(0))
	require.NotEqual(t, float32(0), dir.Y())
}

func TestIntentDirectionOpposingCancelsOut(t *testing.T) {
	_, ok := intentDirection(0, MoveForward|MoveBackward)
	require.False(t, ok)
}

func TestSelectedSpeedWalkModeOverridesRunAndBack(t *testing.T) {
	in := StepInput{MoveFlags: MoveWalkMode, WalkSpeed: 2.5, RunSpeed: 7, RunBackSpeed: 4.5}
	require.Equal(t, float32(2.5), selectedSpeed(in, false))
	require.Equal(t, float32(2.5), selectedSpeed(in, true))
}

func TestSelectedSpeedRunVsRunBack(t *testing.T) {
	in := StepInput{RunSpeed: 7, RunBackSpeed: 4.5}
	require.Equal(t, float32(7), selectedSpeed(in, false))
	require.Equal(t, float32(4.5), selectedSpeed(in, true))
}

func TestEngineConfigValidateRejectsBadCapsule(t *testing.T) {
	cfg := DefaultEngineConfig()
	require.NoError(t, cfg.Validate(0.3, 2.0))

	err := cfg.Validate(0, 2.0)
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, KindConfigInvalid, kind)

	err = cfg.Validate(0.3, 0.1)
	require.Error(t, err)
}

func TestPhysErrorWrapsAndUnwraps(t *testing.T) {
	inner := errors.New("boom")
	pe := newPhysError(KindModelLoadFailure, "model missing", inner)
	require.ErrorIs(t, pe, inner)

	kind, ok := KindOf(pe)
	require.True(t, ok)
	require.Equal(t, KindModelLoadFailure, kind)

	_, ok = KindOf(inner)
	require.False(t, ok)
}

func TestSceneCacheRoundTrip(t *testing.T) {
	tris := []collide.Triangle{
		{V0: mgl32.Vec3{0, 0, 0}, V1: mgl32.Vec3{1, 0, 0}, V2: mgl32.Vec3{0, 1, 0}, DoubleSided: true, Mask: 7},
		{V0: mgl32.Vec3{1, 1, 1}, V1: mgl32.Vec3{2, 1, 1}, V2: mgl32.Vec3{1, 2, 1}, Mask: 0},
	}
	data := SaveSceneCache(tris)
	back, err := LoadSceneCache(data)
	require.NoError(t, err)
	require.Equal(t, tris, back)
}

func TestSceneCacheRejectsBadMagic(t *testing.T) {
	data := SaveSceneCache(nil)
	data[0] = 'X'
	_, err := LoadSceneCache(data)
	require.Error(t, err)
}

func TestSceneCacheRejectsTruncated(t *testing.T) {
	data := SaveSceneCache(flatFloorTriangles())
	_, err := LoadSceneCache(data[:len(data)-2])
	require.Error(t, err)
}

func TestCoordinateTransformsRoundTrip(t *testing.T) {
	mid := float32(17066.666)
	world := mgl32.Vec3{100, -200, 15}
	internal := ToInternal(world, mid)
	back := ToWorld(internal, mid)
	require.InDelta(t, world.X(), back.X(), 1e-3)
	require.InDelta(t, world.Y(), back.Y(), 1e-3)
	require.InDelta(t, world.Z(), back.Z(), 1e-3)

	dir := mgl32.Vec3{0.6, -0.8, 0.1}
	require.Equal(t, dir, ToWorldDir(ToInternalDir(dir)))
}

func TestLoadLogConfigFromEnv(t *testing.T) {
	os.Setenv("VMAP_PHYS_LOG_LEVEL", "1")
	os.Setenv("VMAP_PHYS_LOG_MASK", "3")
	defer os.Unsetenv("VMAP_PHYS_LOG_LEVEL")
	defer os.Unsetenv("VMAP_PHYS_LOG_MASK")

	cfg := LoadLogConfigFromEnv()
	require.True(t, cfg.Debug)
	require.Equal(t, LogMask(3), cfg.Mask)
}

func TestDefaultLoggerDebugGate(t *testing.T) {
	l := NewDefaultLogger("test", false)
	require.False(t, l.DebugEnabled())
	l.SetDebug(true)
	require.True(t, l.DebugEnabled())
	l.Debugf("hello %d", 1)
	l.Infof("hello")
	l.Warnf("hello")
	l.Errorf("hello")
}

func TestNopLoggerDiscardsEverything(t *testing.T) {
	l := NewNopLogger()
	require.False(t, l.DebugEnabled())
	l.Debugf("x")
	l.Infof("x")
	l.Warnf("x")
	l.Errorf("x")
}

// TestStepForwardOnFlatGroundMoves approximates spec scenario S1: a
// character standing on flat ground, given forward input, ends up
// grounded, further along its facing direction, with the Moved flag set.
// Exact displacement isn't asserted: the multi-pass stepper's skin/bias
// slack makes a literal distance comparison brittle.
func TestStepForwardOnFlatGroundMoves(t *testing.T) {
	e := newFlatEngine(t)

	start := mgl32.Vec3{0, 0, 0.01}
	in := StepInput{
		MapID:       0,
		Position:    start,
		Orientation: 0,
		MoveFlags:   MoveForward,
		RunSpeed:    7,
		Radius:      0.3,
		Height:      1.8,
		DT:          0.1,
	}

	out, err := e.Step(in)
	require.NoError(t, err)
	require.True(t, out.Grounded)
	require.Greater(t, out.Position.X(), start.X())
	require.NotZero(t, out.MoveFlags&MoveMoved)
	require.InDelta(t, 0, out.Position.Z(), 0.1)
}

// TestStepNoInputStaysGrounded approximates S2: no movement input on flat
// ground should leave the character resting in place, not falling.
func TestStepNoInputStaysGrounded(t *testing.T) {
	e := newFlatEngine(t)

	start := mgl32.Vec3{0, 0, 0.01}
	in := StepInput{
		MapID:    0,
		Position: start,
		Radius:   0.3,
		Height:   1.8,
		DT:       0.1,
	}

	out, err := e.Step(in)
	require.NoError(t, err)
	require.True(t, out.Grounded)
	require.InDelta(t, start.X(), out.Position.X(), 1e-3)
	require.InDelta(t, start.Y(), out.Position.Y(), 1e-3)
}

// TestStepJumpLeavesGround approximates S3: requesting a jump on flat
// ground produces upward velocity and an airborne result for that tick.
func TestStepJumpLeavesGround(t *testing.T) {
	e := newFlatEngine(t)

	start := mgl32.Vec3{0, 0, 0.01}
	in := StepInput{
		MapID:     0,
		Position:  start,
		MoveFlags: MoveJumping,
		Radius:    0.3,
		Height:    1.8,
		DT:        0.05,
	}

	out, err := e.Step(in)
	require.NoError(t, err)
	require.Greater(t, out.Position.Z(), start.Z())
	require.NotZero(t, out.MoveFlags&MoveJumping)
}

// TestStepSwimmingInDeepLiquidSetsSwimFlag approximates S5: a character
// whose position is underwater relative to a loaded liquid plane should
// have MoveSwimming set on the way out and report the liquid's type.
func TestStepSwimmingInDeepLiquidSetsSwimFlag(t *testing.T) {
	tileLoader := func(mapID uint32, coord scene.TileCoord) (*scene.TerrainTile, []scene.TileInstance, error) {
		tile := flatTerrainTile(coord)
		tile.Liquid = &scene.LiquidPlane{Level: 10, Type: scene.LiquidWater}
		return tile, nil, nil
	}
	modelLoader := func(ref string) ([]collide.Triangle, error) { return nil, errors.New("unused") }
	e := NewEngine(modelLoader, tileLoader, DefaultEngineConfig(), DefaultLogConfig())
	e.LoadMap(0)
	require.NoError(t, e.LoadTile(0, 0, 0))

	start := mgl32.Vec3{0, 0, 5}
	in := StepInput{
		MapID:       0,
		Position:    start,
		Orientation: 0,
		MoveFlags:   MoveForward,
		SwimSpeed:   3,
		Radius:      0.3,
		Height:      1.8,
		DT:          0.1,
	}

	out, err := e.Step(in)
	require.NoError(t, err)
	require.NotZero(t, out.MoveFlags&MoveSwimming)
	require.Equal(t, LiquidWater, out.LiquidType)
}

func TestStepRejectsInvalidCapsule(t *testing.T) {
	e := newFlatEngine(t)
	_, err := e.Step(StepInput{MapID: 0, Radius: 0, Height: 1.8, DT: 0.1})
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, KindConfigInvalid, kind)
}

func TestStepZeroDTIsNoOp(t *testing.T) {
	e := newFlatEngine(t)
	start := mgl32.Vec3{1, 2, 3}
	out, err := e.Step(StepInput{MapID: 0, Position: start, Radius: 0.3, Height: 1.8, DT: 0})
	require.NoError(t, err)
	require.Equal(t, start, out.Position)
}

func TestCapsuleMoverTicksThroughEngine(t *testing.T) {
	e := newFlatEngine(t)
	mover := e.NewCapsuleMover(0, mgl32.Vec3{0, 0, 0.01}, 0.3, 1.8)
	mover.MoveFlags = MoveForward
	mover.RunSpeed = 7

	out, err := mover.Tick(0.1)
	require.NoError(t, err)
	require.Equal(t, StateGrounded, mover.State)
	require.Greater(t, out.Position.X(), float32(0))
}

func TestLineOfSightClearOnFlatOpenGround(t *testing.T) {
	e := newFlatEngine(t)
	ok := e.LineOfSight(0, mgl32.Vec3{0, 0, 2}, mgl32.Vec3{10, 0, 2})
	require.True(t, ok)
}

func TestFindPathStraightLineWhenVisible(t *testing.T) {
	e := newFlatEngine(t)
	path := e.FindPath(0, mgl32.Vec3{0, 0, 2}, mgl32.Vec3{10, 0, 2}, false)
	require.Len(t, path, 2)
}

func TestGroundZOnFlatTile(t *testing.T) {
	e := newFlatEngine(t)
	z, ok := e.GroundZ(0, 5, 5, 20, 50)
	require.True(t, ok)
	require.InDelta(t, 0, z, 1e-3)
}
