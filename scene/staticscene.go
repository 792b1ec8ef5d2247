package scene

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/charphys/collide"
	"github.com/gekko3d/charphys/mathutil"
)

// Errors returned by StaticScene. The root package's Engine passes them
// through unchanged; they are not wrapped in a PhysError.
var (
	ErrMapNotLoaded = errors.New("scene: map not loaded")
	ErrMapLoaded    = errors.New("scene: map already loaded")
)

// mapState is everything resident for one loaded map.
type mapState struct {
	instances *StaticMapTree
	terrain   *TerrainGrid
	tileRefs  map[TileCoord]int
	models    map[string]int // model ref -> tiles currently using it, for refcounted unload

	// tileContents records, per resident tile, the instance IDs and model
	// refs that tile's LoadTile call created, so UnloadTile can remove
	// exactly those instances from the BIH and release exactly those model
	// references instead of only ever unwinding on full UnloadMap.
	tileContents map[TileCoord][]tileLoadRecord
}

// tileLoadRecord is one model instance a tile contributed to the static
// map tree, kept so UnloadTile can undo it precisely.
type tileLoadRecord struct {
	instanceID string
	modelRef   string
}

func newMapState() *mapState {
	return &mapState{
		instances:    newStaticMapTree(),
		terrain:      newTerrainGrid(),
		tileRefs:     make(map[TileCoord]int),
		models:       make(map[string]int),
		tileContents: make(map[TileCoord][]tileLoadRecord),
	}
}

// TileLoader resolves one map tile's instances and terrain, invoked by
// LoadTile. Supplied by the engine; the scene package never touches disk.
type TileLoader func(mapID uint32, coord TileCoord) (*TerrainTile, []TileInstance, error)

// TileInstance is one model placement sourced from a tile's data, resolved
// against the model cache by LoadTile.
type TileInstance struct {
	ModelRef    string
	Position    mgl32.Vec3
	RotationDeg mgl32.Vec3
	Scale       float32
	Mask        uint32
	NoBreakLOS  bool
	Liquid      *LiquidPlane
}

// StaticScene is the per-process owner of every loaded map's terrain,
// model cache, and model-instance BIH (spec §4.4). Grounded on the
// teacher's World type (world.go) for map/tile residency bookkeeping,
// generalized from a voxel-region world to the terrain+instance static
// scene described by the spec.
type StaticScene struct {
	mu         sync.RWMutex
	maps       map[uint32]*mapState
	models     *ModelCache
	tileLoader TileLoader
	logger     Logger

	swimDepthTol float32
}

// NewStaticScene builds a scene backed by the given model loader and tile
// loader, and the configured liquid swim-depth tolerance. Logging defaults
// to a no-op until SetLogger is called.
func NewStaticScene(modelLoader ModelLoader, tileLoader TileLoader, swimDepthTol float32) *StaticScene {
	return &StaticScene{
		maps:         make(map[uint32]*mapState),
		models:       NewModelCache(modelLoader),
		tileLoader:   tileLoader,
		logger:       nopLogger{},
		swimDepthTol: swimDepthTol,
	}
}

// SetLogger installs the diagnostic sink used for ModelLoadFailure and
// similar scene-resident warnings (spec §7).
func (s *StaticScene) SetLogger(logger Logger) {
	if logger == nil {
		logger = nopLogger{}
	}
	s.logger = logger
}

// LoadMap registers mapID as loaded. Idempotent (spec §4.4).
func (s *StaticScene) LoadMap(mapID uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.maps[mapID]; ok {
		return
	}
	s.maps[mapID] = newMapState()
}

// UnloadMap drops mapID and decrements every resident model's reference
// count (spec §4.4). Idempotent.
func (s *StaticScene) UnloadMap(mapID uint32) {
	s.mu.Lock()
	ms, ok := s.maps[mapID]
	if !ok {
		s.mu.Unlock()
		return
	}
	delete(s.maps, mapID)
	s.mu.Unlock()

	for ref, count := range ms.models {
		for i := 0; i < count; i++ {
			s.models.Release(ref)
		}
	}
}

func (s *StaticScene) mapState(mapID uint32) (*mapState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ms, ok := s.maps[mapID]
	if !ok {
		return nil, fmt.Errorf("%w: map %d", ErrMapNotLoaded, mapID)
	}
	return ms, nil
}

// LoadTile streams one tile's terrain and model instances in via the
// configured TileLoader, acquiring each referenced model and updating
// reference counts (spec §4.4). Idempotent per (mapID, coord).
func (s *StaticScene) LoadTile(mapID uint32, coord TileCoord) error {
	ms, err := s.mapState(mapID)
	if err != nil {
		return err
	}
	if ms.tileRefs[coord] > 0 {
		ms.tileRefs[coord]++
		return nil
	}

	terrain, instances, err := s.tileLoader(mapID, coord)
	if err != nil {
		return fmt.Errorf("scene: load tile (%d,%d,%d): %w", mapID, coord.X, coord.Y, err)
	}
	if terrain != nil {
		ms.terrain.LoadTile(terrain)
	}
	var records []tileLoadRecord
	for _, ti := range instances {
		model, err := s.models.Acquire(ti.ModelRef)
		if err != nil {
			s.logger.Warnf("scene: ModelLoadFailure ref=%s tile=(%d,%d): %v, instance skipped", ti.ModelRef, coord.X, coord.Y, err)
			continue // collision degraded locally for this instance (spec §7)
		}
		ms.models[ti.ModelRef]++
		inst := NewModelInstance(model, ti.Position, ti.RotationDeg, ti.Scale, ti.Mask)
		inst.NoBreakLOS = ti.NoBreakLOS
		inst.Liquid = ti.Liquid
		ms.instances.AddInstance(inst)
		records = append(records, tileLoadRecord{instanceID: inst.ID, modelRef: ti.ModelRef})
	}
	ms.instances.Rebuild()
	ms.tileContents[coord] = records
	ms.tileRefs[coord] = 1
	return nil
}

// UnloadTile decrements coord's reference count, and once it reaches zero
// unloads its terrain, removes every model instance that tile contributed
// from the static map tree, and releases their model references (spec §3,
// §4.4: "tile add/remove updates reference counts and the instance set").
func (s *StaticScene) UnloadTile(mapID uint32, coord TileCoord) error {
	ms, err := s.mapState(mapID)
	if err != nil {
		return err
	}
	if ms.tileRefs[coord] == 0 {
		return nil
	}
	ms.tileRefs[coord]--
	if ms.tileRefs[coord] > 0 {
		return nil
	}
	delete(ms.tileRefs, coord)
	ms.terrain.UnloadTile(coord)

	records := ms.tileContents[coord]
	delete(ms.tileContents, coord)
	for _, rec := range records {
		ms.instances.RemoveInstance(rec.instanceID)
		ms.models[rec.modelRef]--
		if ms.models[rec.modelRef] <= 0 {
			delete(ms.models, rec.modelRef)
		}
		s.models.Release(rec.modelRef)
	}
	if len(records) > 0 {
		ms.instances.Rebuild()
	}
	return nil
}

// GroundZ casts a ray downward from (x, y, z0+smallUp) for maxDist against
// terrain and model-instance triangles and returns the highest hit. It
// runs no overlap test: where the ray misses every floor triangle (as in
// some WMO interiors) it reports no ground.
func (s *StaticScene) GroundZ(mapID uint32, x, y, z0, maxDist float32) (float32, bool) {
	ms, err := s.mapState(mapID)
	if err != nil {
		return 0, false
	}

	const smallUp = 0.05
	origin := mgl32.Vec3{x, y, z0 + smallUp}
	rayLen := maxDist + smallUp
	box := mathutil.AABBFromPoint(origin).ExpandPoint(mgl32.Vec3{x, y, origin.Z() - rayLen})

	bestZ := float32(0)
	found := false
	consider := func(z float32) {
		if !found || z > bestZ {
			bestZ = z
			found = true
		}
	}

	for _, tri := range ms.terrain.TrianglesInAABB(box) {
		if z, ok := rayTriangleDownZ(tri, x, y, origin.Z(), rayLen); ok {
			consider(z)
		}
	}
	ms.instances.QueryAABB(box, func(inst *ModelInstance) {
		modelOrigin := inst.ToModel(origin)
		modelBox := mathutil.AABBFromPoint(modelOrigin).
			ExpandPoint(mgl32.Vec3{modelOrigin.X(), modelOrigin.Y(), modelOrigin.Z() - rayLen})
		inst.Model.QueryAABB(modelBox, func(triIdx int32) {
			tri := inst.Model.Triangles[triIdx]
			if z, ok := rayTriangleDownZ(tri, modelOrigin.X(), modelOrigin.Y(), modelOrigin.Z(), rayLen); ok {
				consider(inst.ToWorld(mgl32.Vec3{modelOrigin.X(), modelOrigin.Y(), z}).Z())
			}
		})
	})

	if !found {
		return 0, false
	}
	return bestZ, true
}

// rayTriangleDownZ intersects the vertical ray (x, y, downward from top)
// against tri's plane and reports its Z if the XY point lies inside the
// triangle and the hit is within [top-rayLen, top].
func rayTriangleDownZ(tri collide.Triangle, x, y, top, rayLen float32) (float32, bool) {
	n, degenerate := tri.Normal()
	if degenerate || mathutil.Absf(n.Z()) < mathutil.Eps {
		return 0, false
	}
	// Solve n . (P - V0) = 0 for P = (x, y, z).
	denom := n.Z()
	num := n.X()*(tri.V0.X()-x) + n.Y()*(tri.V0.Y()-y) + n.Z()*tri.V0.Z()
	z := num / denom
	if z > top || z < top-rayLen {
		return 0, false
	}
	if !mathutil.PointInTriangle(mgl32.Vec3{x, y, z}, tri.V0, tri.V1, tri.V2) {
		return 0, false
	}
	return z, true
}

// LOS ray-tests segment a->b against terrain and every non-"no-break-LOS"
// instance, reporting whether the segment is unobstructed (spec §4.4).
func (s *StaticScene) LOS(mapID uint32, a, b mgl32.Vec3) bool {
	ms, err := s.mapState(mapID)
	if err != nil {
		return true
	}

	cap := collide.Capsule{P0: a, P1: a, Radius: mathutil.Eps}
	v := b.Sub(a)
	box := mathutil.SweptAABB(cap.AABB(), v)

	blocked := false
	ms.terrain.VisitTiles(box, func(tile *TerrainTile) {
		if !blocked && collide.AnyHitView(tile, cap, v, box) {
			blocked = true
		}
	})
	if !blocked {
		ms.instances.QueryAABB(box, func(inst *ModelInstance) {
			if blocked || inst.NoBreakLOS {
				return
			}
			modelCap := collide.Capsule{P0: inst.ToModel(a), P1: inst.ToModel(a), Radius: mathutil.Eps}
			modelV := inst.ToModel(b).Sub(modelCap.P0)
			modelBox := mathutil.SweptAABB(modelCap.AABB(), modelV)
			if collide.AnyHitView(inst.Model, modelCap, modelV, modelBox) {
				blocked = true
			}
		})
	}
	return !blocked
}

// SweepCapsule sweeps cap by displacement v and returns every contact from
// terrain and model instances, transformed back into world space (spec
// §4.4).
func (s *StaticScene) SweepCapsule(mapID uint32, cap collide.Capsule, v mgl32.Vec3) []collide.Contact {
	ms, err := s.mapState(mapID)
	if err != nil {
		return nil
	}

	box := mathutil.SweptAABB(cap.AABB(), v)
	var out []collide.Contact

	ms.terrain.VisitTiles(box, func(tile *TerrainTile) {
		out = append(out, collide.SweepViewCapsule(tile, cap, v, box)...)
	})

	ms.instances.QueryAABB(box, func(inst *ModelInstance) {
		modelCap := collide.Capsule{P0: inst.ToModel(cap.P0), P1: inst.ToModel(cap.P1), Radius: cap.Radius}
		modelV := inst.ToModel(cap.P0.Add(v)).Sub(modelCap.P0)
		modelBox := mathutil.SweptAABB(modelCap.AABB(), modelV)
		for _, c := range collide.SweepViewCapsule(inst.Model, modelCap, modelV, modelBox) {
			c.Point = inst.ToWorld(c.Point)
			c.Normal = inst.ToWorldNormal(c.Normal).Normalize()
			c.InstanceID = inst.ID
			out = append(out, c)
		}
	})
	return out
}

// OverlapCapsule is SweepCapsule with a zero displacement (spec §4.4).
func (s *StaticScene) OverlapCapsule(mapID uint32, cap collide.Capsule) []collide.Contact {
	ms, err := s.mapState(mapID)
	if err != nil {
		return nil
	}

	box := cap.AABB()
	var out []collide.Contact

	ms.terrain.VisitTiles(box, func(tile *TerrainTile) {
		out = append(out, collide.OverlapViewCapsule(tile, cap, box)...)
	})
	ms.instances.QueryAABB(box, func(inst *ModelInstance) {
		modelCap := collide.Capsule{P0: inst.ToModel(cap.P0), P1: inst.ToModel(cap.P1), Radius: cap.Radius}
		for _, c := range collide.OverlapViewCapsule(inst.Model, modelCap, modelCap.AABB()) {
			c.Point = inst.ToWorld(c.Point)
			c.Normal = inst.ToWorldNormal(c.Normal).Normalize()
			c.InstanceID = inst.ID
			out = append(out, c)
		}
	})
	return out
}

// LiquidAt queries WMO liquid planes first, falling back to terrain
// liquid, and derives is_swimming against the configured depth tolerance
// (spec §4.4, §4.6).
func (s *StaticScene) LiquidAt(mapID uint32, x, y, z float32) LiquidSample {
	ms, err := s.mapState(mapID)
	if err != nil {
		return NoLiquid()
	}

	point := mgl32.Vec3{x, y, z}
	box := mathutil.AABBFromPoint(point).Expand(mathutil.Eps)

	var wmoLiquid *LiquidPlane
	ms.instances.QueryAABB(box, func(inst *ModelInstance) {
		if wmoLiquid == nil && inst.Liquid != nil {
			wmoLiquid = inst.Liquid
		}
	})
	if wmoLiquid != nil {
		return sampleFromPlane(wmoLiquid, z, s.swimDepthTol)
	}

	plane, _ := ms.terrain.LiquidAt(x, y)
	return sampleFromPlane(plane, z, s.swimDepthTol)
}
