package scene

import (
	"fmt"
	"sync"

	"github.com/gekko3d/charphys/collide"
)

// ModelLoader resolves a model reference (a path or numeric file-data id,
// per spec §3 "Model Instance") into its triangle set. The engine supplies
// one at construction; the cache never reads from disk itself.
type ModelLoader func(ref string) ([]collide.Triangle, error)

type cacheEntry struct {
	model    *Model
	refCount int
}

// ModelCache is the shared, reference-counted owner of World Model meshes
// (spec §3, §4.4: models are de-duplicated across instances and tiles).
// Grounded on the teacher's asset reference-counting in mod_assets.go,
// generalized from texture/mesh GPU handles to plain triangle buffers and
// re-expressed over a single mutex per the teacher's AssetServer pattern.
type ModelCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	load    ModelLoader
}

func NewModelCache(load ModelLoader) *ModelCache {
	return &ModelCache{entries: make(map[string]*cacheEntry), load: load}
}

// Acquire returns the Model for ref, loading and BIH-building it on first
// use and bumping its reference count. Pair with Release.
func (c *ModelCache) Acquire(ref string) (*Model, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[ref]; ok {
		e.refCount++
		return e.model, nil
	}

	tris, err := c.load(ref)
	if err != nil {
		return nil, fmt.Errorf("scene: load model %q: %w", ref, err)
	}
	m := NewModel(ref, tris)
	c.entries[ref] = &cacheEntry{model: m, refCount: 1}
	return m, nil
}

// Release drops a reference to ref, evicting the cached model once its
// count reaches zero.
func (c *ModelCache) Release(ref string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[ref]
	if !ok {
		return
	}
	e.refCount--
	if e.refCount <= 0 {
		delete(c.entries, ref)
	}
}

// Len reports how many distinct models are currently resident, for tests
// and diagnostics.
func (c *ModelCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
