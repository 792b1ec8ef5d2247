package dynamic

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/charphys/collide"
	"github.com/gekko3d/charphys/mathutil"
)

// dynamicGridCellSize is the broad-phase cell size for the registry's
// spatial hash: dynamic objects (doors, elevators, drawbridges) are
// typically several meters across, much larger than the ECS source's
// 2.0-unit default, so the cell is sized up accordingly.
const dynamicGridCellSize = 10.0

// Registry maps GUID -> Object across every loaded map, guarded by a
// single mutex (spec §4.5: "single mutex around the registry maps;
// query_triangles holds the lock for the duration of the append"). A
// spatial hash grid keyed by world AABB narrows QueryTriangles to the
// objects near box instead of scanning every open object on the map.
type Registry struct {
	mu      sync.Mutex
	objects map[uint64]*Object
	grid    *spatialHashGrid
}

func NewRegistry() *Registry {
	return &Registry{
		objects: make(map[uint64]*Object),
		grid:    newSpatialHashGrid(dynamicGridCellSize),
	}
}

// Spawn registers a new dynamic object.
func (r *Registry) Spawn(o *Object) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.objects[o.GUID] = o
	r.grid.Insert(o.GUID, o.WorldAABB())
}

// Despawn removes guid from the registry, if present.
func (r *Registry) Despawn(guid uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.objects[guid]; !ok {
		return
	}
	delete(r.objects, guid)
	r.grid.Remove(guid)
}

// UpdatePose rebuilds guid's world-space triangles and AABB from its new
// pose (spec §4.5). Missing GUIDs are silently ignored (spec §7: "Missing
// dynamic objects are silent").
func (r *Registry) UpdatePose(guid uint64, pos mgl32.Vec3, yawDeg float32, state State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.objects[guid]
	if !ok {
		return
	}
	o.UpdatePose(pos, yawDeg, state)
	r.grid.Update(guid, o.WorldAABB())
}

// VisitObjects calls visit, synchronously and under the registry's lock,
// for every object on mapID whose world AABB overlaps box and whose state
// permits collision (spec §4.5). The grid narrows candidates before the
// exact per-object AABB check. This is the entry point callers use to
// reach each object's collide.TriangleMeshView adapter (spec §9).
func (r *Registry) VisitObjects(mapID uint32, box mathutil.AABB, visit func(*Object)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, guid := range r.grid.QueryAABB(box) {
		o, ok := r.objects[guid]
		if !ok || o.MapID != mapID || !o.State.Collidable() {
			continue
		}
		if !o.WorldAABB().Overlaps(box) {
			continue
		}
		visit(o)
	}
}

// QueryTriangles appends every triangle of every object VisitObjects would
// visit for (mapID, box). Kept as a convenience for callers that just want
// a flat triangle list rather than per-object identity.
func (r *Registry) QueryTriangles(mapID uint32, box mathutil.AABB) []collide.Triangle {
	var out []collide.Triangle
	r.VisitObjects(mapID, box, func(o *Object) {
		out = append(out, o.WorldTriangles()...)
	})
	return out
}

// Get returns the object for guid, if resident.
func (r *Registry) Get(guid uint64) (*Object, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.objects[guid]
	return o, ok
}

// Len reports how many objects are registered, across all maps.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.objects)
}
