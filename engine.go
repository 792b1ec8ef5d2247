package charphys

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/charphys/dynamic"
	"github.com/gekko3d/charphys/scene"
)

// Engine is the owned, explicitly-constructed value that replaces every
// singleton in the source (physics engine, VMap manager, dynamic
// registry, scene query) per spec §9: callers hold a *Engine and pass it
// by reference; there is no global lazy state.
type Engine struct {
	static  *scene.StaticScene
	dynamic *dynamic.Registry
	facade  *sceneFacade
	stepper *Stepper
	cfg     EngineConfig
	logger  Logger
}

// NewEngine wires the static scene, dynamic registry, and stepper behind
// one owned value (spec §9). modelLoader/tileLoader resolve model and
// tile references to geometry; cfg supplies every tunable constant;
// logConfig controls the injected Logger (spec §2.2: no os.Getenv inside
// the engine).
func NewEngine(modelLoader scene.ModelLoader, tileLoader scene.TileLoader, cfg EngineConfig, logConfig LogConfig) *Engine {
	logger := Logger(NewDefaultLogger("charphys", logConfig.Debug))

	static := scene.NewStaticScene(modelLoader, tileLoader, cfg.SwimDepthTol)
	static.SetLogger(logger)
	registry := dynamic.NewRegistry()
	facade := newSceneFacade(static, registry, cfg, logger, logConfig.Mask)
	stepper := newStepper(facade, cfg, logger, logConfig.Mask)

	return &Engine{
		static:  static,
		dynamic: registry,
		facade:  facade,
		stepper: stepper,
		cfg:     cfg,
		logger:  logger,
	}
}

// Step runs one tick of the movement stepper for a single character.
// Safe to call concurrently for different characters (spec §5).
func (e *Engine) Step(in StepInput) (StepOutput, error) {
	return e.stepper.Step(in)
}

// LoadMap registers mapID as loaded (spec §4.4).
func (e *Engine) LoadMap(mapID uint32) { e.static.LoadMap(mapID) }

// UnloadMap drops mapID and releases its resident models (spec §4.4).
func (e *Engine) UnloadMap(mapID uint32) { e.static.UnloadMap(mapID) }

// LoadTile streams one tile's terrain and model instances in (spec §4.4).
func (e *Engine) LoadTile(mapID uint32, x, y int32) error {
	return e.static.LoadTile(mapID, scene.TileCoord{X: x, Y: y})
}

// UnloadTile decrements one tile's reference count (spec §4.4).
func (e *Engine) UnloadTile(mapID uint32, x, y int32) error {
	return e.static.UnloadTile(mapID, scene.TileCoord{X: x, Y: y})
}

// GroundZ exports the static scene's height query (spec §4.4).
func (e *Engine) GroundZ(mapID uint32, x, y, z0, maxDist float32) (float32, bool) {
	return e.static.GroundZ(mapID, x, y, z0, maxDist)
}

// LiquidAt exports the static scene's liquid query (spec §4.4, §4.6).
func (e *Engine) LiquidAt(mapID uint32, x, y, z float32) scene.LiquidSample {
	return e.static.LiquidAt(mapID, x, y, z)
}

// SpawnDynamicObject registers a dynamic object (door, elevator) with the
// registry (spec §4.5).
func (e *Engine) SpawnDynamicObject(o *dynamic.Object) { e.dynamic.Spawn(o) }

// DespawnDynamicObject removes guid from the registry (spec §4.5).
func (e *Engine) DespawnDynamicObject(guid uint64) { e.dynamic.Despawn(guid) }

// UpdateDynamicObjectPose rebuilds guid's world-space triangles and AABB
// (spec §4.5).
func (e *Engine) UpdateDynamicObjectPose(guid uint64, pos mgl32.Vec3, yawDeg float32, state dynamic.State) {
	e.dynamic.UpdatePose(guid, pos, yawDeg, state)
}

// Config returns the engine's effective configuration.
func (e *Engine) Config() EngineConfig { return e.cfg }

// SetDebug toggles debug-level logging at runtime.
func (e *Engine) SetDebug(enabled bool) { e.logger.SetDebug(enabled) }
