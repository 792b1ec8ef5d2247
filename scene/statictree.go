package scene

import (
	"sync"

	"github.com/gekko3d/charphys/bih"
	"github.com/gekko3d/charphys/mathutil"
)

// StaticMapTree owns every model instance loaded for one map and indexes
// them in an outer BIH for fast broad-phase queries (spec §4.4). Writes
// (tile load/unload) take the exclusive lock; every read path (sweep,
// overlap, ground, LOS) only needs the shared lock, matching the spec's
// concurrency note that "a single read-write lock over the instance-tree
// map suffices". Grounded on the teacher's region residency bookkeeping in
// world.go, replacing its voxel-region set with a refcounted instance set.
type StaticMapTree struct {
	mu        sync.RWMutex
	instances []*ModelInstance
	byID      map[string]int // instance ID -> index into instances
	refCount  map[string]int // instance ID -> number of resident tiles referencing it
	tree      *bih.Tree
	dirty     bool
}

func newStaticMapTree() *StaticMapTree {
	return &StaticMapTree{
		byID:     make(map[string]int),
		refCount: make(map[string]int),
		tree:     bih.Build(nil),
	}
}

// AddInstance registers inst as resident for one more tile. The first
// caller to reference a given instance adds it to the tree; subsequent
// callers (the same model instance shared across adjacent tiles) just bump
// its reference count. Rebuild must be called afterwards to make the
// instance queryable.
func (s *StaticMapTree) AddInstance(inst *ModelInstance) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[inst.ID]; ok {
		s.refCount[inst.ID]++
		return
	}
	s.byID[inst.ID] = len(s.instances)
	s.instances = append(s.instances, inst)
	s.refCount[inst.ID] = 1
	s.dirty = true
}

// RemoveInstance drops one tile's reference to instanceID, removing the
// instance from the set once no tile references it. Rebuild must be called
// afterwards.
func (s *StaticMapTree) RemoveInstance(instanceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.refCount[instanceID]--
	if s.refCount[instanceID] > 0 {
		return
	}
	delete(s.refCount, instanceID)
	idx, ok := s.byID[instanceID]
	if !ok {
		return
	}
	last := len(s.instances) - 1
	s.instances[idx] = s.instances[last]
	s.byID[s.instances[idx].ID] = idx
	s.instances = s.instances[:last]
	delete(s.byID, instanceID)
	s.dirty = true
}

// Rebuild rebuilds the outer BIH from the current instance set. Spec §4.4
// calls for this to happen "only on full-map load/unload"; callers that
// also invoke it at tile granularity trade that optimization for the
// simplicity of never serving a query against a stale tree (see DESIGN.md).
func (s *StaticMapTree) Rebuild() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return
	}
	boxes := make([]mathutil.AABB, len(s.instances))
	for i, inst := range s.instances {
		boxes[i] = inst.AABB()
	}
	s.tree = bih.Build(boxes)
	s.dirty = false
}

// QueryAABB visits every resident instance whose world AABB may overlap
// box. Safe for concurrent callers; never mutates.
func (s *StaticMapTree) QueryAABB(box mathutil.AABB, visit func(inst *ModelInstance)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.tree.QueryAABB(box, func(i int32) {
		visit(s.instances[i])
	})
}

// Len reports the number of resident instances, for tests and diagnostics.
func (s *StaticMapTree) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.instances)
}
