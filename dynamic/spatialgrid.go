package dynamic

import (
	"math"

	"github.com/gekko3d/charphys/mathutil"
)

// spatialHashGrid is a uniform hash grid broad-phase over dynamic object
// GUIDs, adapted from the teacher's ECS spatial-grid module: the cell
// hashing and AABB-bucketing scheme is unchanged, but it no longer
// depends on the ECS (no EntityId/Commands/System) — it indexes the
// registry's world AABBs directly and remembers, per GUID, which cells
// it occupies so a pose update can remove the stale entry without a
// full rebuild (spec §4.5: registry queries must stay cheap under many
// open doors/elevators).
type spatialHashGrid struct {
	cellSize float32
	cells    map[uint64][]uint64
	cellsOf  map[uint64][]uint64
}

func newSpatialHashGrid(cellSize float32) *spatialHashGrid {
	return &spatialHashGrid{
		cellSize: cellSize,
		cells:    make(map[uint64][]uint64),
		cellsOf:  make(map[uint64][]uint64),
	}
}

// Insert buckets guid into every cell its AABB overlaps.
func (g *spatialHashGrid) Insert(guid uint64, box mathutil.AABB) {
	keys := g.keysFor(box)
	for _, key := range keys {
		g.cells[key] = append(g.cells[key], guid)
	}
	g.cellsOf[guid] = keys
}

// Remove drops guid from every cell it was last inserted into.
func (g *spatialHashGrid) Remove(guid uint64) {
	for _, key := range g.cellsOf[guid] {
		bucket := g.cells[key]
		for i, id := range bucket {
			if id == guid {
				bucket[i] = bucket[len(bucket)-1]
				bucket = bucket[:len(bucket)-1]
				break
			}
		}
		if len(bucket) == 0 {
			delete(g.cells, key)
		} else {
			g.cells[key] = bucket
		}
	}
	delete(g.cellsOf, guid)
}

// Update is Remove+Insert under the object's new AABB.
func (g *spatialHashGrid) Update(guid uint64, box mathutil.AABB) {
	g.Remove(guid)
	g.Insert(guid, box)
}

// QueryAABB returns every distinct GUID bucketed into a cell box overlaps.
// Candidates are a superset of the true overlap set (the grid is cell-
// granular); the registry still does an exact AABB check afterward.
func (g *spatialHashGrid) QueryAABB(box mathutil.AABB) []uint64 {
	seen := make(map[uint64]struct{})
	var out []uint64
	for _, key := range g.keysFor(box) {
		for _, guid := range g.cells[key] {
			if _, ok := seen[guid]; ok {
				continue
			}
			seen[guid] = struct{}{}
			out = append(out, guid)
		}
	}
	return out
}

func (g *spatialHashGrid) keysFor(box mathutil.AABB) []uint64 {
	minX, maxX := g.cellIndex(box.Min.X()), g.cellIndex(box.Max.X())
	minY, maxY := g.cellIndex(box.Min.Y()), g.cellIndex(box.Max.Y())
	minZ, maxZ := g.cellIndex(box.Min.Z()), g.cellIndex(box.Max.Z())

	var keys []uint64
	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			for z := minZ; z <= maxZ; z++ {
				keys = append(keys, g.hashKey(x, y, z))
			}
		}
	}
	return keys
}

func (g *spatialHashGrid) cellIndex(pos float32) int {
	return int(math.Floor(float64(pos / g.cellSize)))
}

// hashKey mixes the three cell coordinates with the teacher's large-prime
// XOR scheme, widened to uint64 so negative coordinates (characters can
// be anywhere relative to a map's origin) don't collide via int truncation.
func (g *spatialHashGrid) hashKey(x, y, z int) uint64 {
	const p1 = 73856093
	const p2 = 19349663
	const p3 = 83492791
	return uint64(x)*p1 ^ uint64(y)*p2 ^ uint64(z)*p3
}
