package scene

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/charphys/collide"
	"github.com/gekko3d/charphys/mathutil"
)

// TileCoord identifies one terrain tile by its grid coordinates.
type TileCoord struct {
	X, Y int32
}

// TerrainTile is a per-tile regular height grid: Size x Size cells over
// Size+1 x Size+1 height samples, producing two triangles per cell on
// demand rather than a precomputed mesh (spec §3 "terrain... a regular
// height-field grid"). Grounded on the teacher's chunked voxel tiling in
// world.go, replaced here with a flat height field instead of a voxel
// volume.
type TerrainTile struct {
	Coord    TileCoord
	Size     int
	CellSize float32
	OriginX  float32
	OriginY  float32
	Heights  []float32 // (Size+1)*(Size+1), row-major over Y then X
	Liquid   *LiquidPlane

	lastQuery []collide.Triangle // scratch buffer backing the TriangleMeshView adapter
}

// Query implements collide.TriangleMeshView: a fresh call re-walks the
// grid and indices are only valid against the Triangle calls that follow
// it, matching the single-pass iteration the capability interface
// promises.
func (t *TerrainTile) Query(box mathutil.AABB, visit func(index int)) {
	t.lastQuery = t.TrianglesInAABB(box, t.lastQuery[:0])
	for i := range t.lastQuery {
		visit(i)
	}
}

// Triangle implements collide.TriangleMeshView, indexing into the buffer
// filled by the most recent Query call.
func (t *TerrainTile) Triangle(index int) collide.Triangle {
	return t.lastQuery[index]
}

// Len implements collide.TriangleMeshView.
func (t *TerrainTile) Len() int {
	return len(t.lastQuery)
}

func (t *TerrainTile) height(ix, iy int) float32 {
	ix = clampInt(ix, 0, t.Size)
	iy = clampInt(iy, 0, t.Size)
	return t.Heights[iy*(t.Size+1)+ix]
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// worldBounds returns the tile's world-space XY footprint with Z spanning
// its min/max sampled height, used to early-reject a query box.
func (t *TerrainTile) worldBounds() mathutil.AABB {
	minZ, maxZ := t.Heights[0], t.Heights[0]
	for _, h := range t.Heights {
		minZ = mathutil.Minf(minZ, h)
		maxZ = mathutil.Maxf(maxZ, h)
	}
	size := float32(t.Size) * t.CellSize
	return mathutil.AABB{
		Min: mgl32.Vec3{t.OriginX, t.OriginY, minZ},
		Max: mgl32.Vec3{t.OriginX + size, t.OriginY + size, maxZ},
	}
}

// TrianglesInAABB appends the two triangles of every cell in the tile
// whose XY footprint overlaps box, skipping the height test entirely for
// tiles outside box's Z range first.
func (t *TerrainTile) TrianglesInAABB(box mathutil.AABB, out []collide.Triangle) []collide.Triangle {
	if !box.Overlaps(t.worldBounds()) {
		return out
	}

	minIX := clampInt(int((box.Min.X()-t.OriginX)/t.CellSize), 0, t.Size-1)
	maxIX := clampInt(int((box.Max.X()-t.OriginX)/t.CellSize), 0, t.Size-1)
	minIY := clampInt(int((box.Min.Y()-t.OriginY)/t.CellSize), 0, t.Size-1)
	maxIY := clampInt(int((box.Max.Y()-t.OriginY)/t.CellSize), 0, t.Size-1)

	for iy := minIY; iy <= maxIY; iy++ {
		for ix := minIX; ix <= maxIX; ix++ {
			x0 := t.OriginX + float32(ix)*t.CellSize
			y0 := t.OriginY + float32(iy)*t.CellSize
			x1 := x0 + t.CellSize
			y1 := y0 + t.CellSize

			h00 := t.height(ix, iy)
			h10 := t.height(ix+1, iy)
			h01 := t.height(ix, iy+1)
			h11 := t.height(ix+1, iy+1)

			v00 := mgl32.Vec3{x0, y0, h00}
			v10 := mgl32.Vec3{x1, y0, h10}
			v01 := mgl32.Vec3{x0, y1, h01}
			v11 := mgl32.Vec3{x1, y1, h11}

			out = append(out,
				collide.Triangle{V0: v00, V1: v10, V2: v11},
				collide.Triangle{V0: v00, V1: v11, V2: v01},
			)
		}
	}
	return out
}

// TerrainGrid owns the resident terrain tiles for one map, streamed in and
// out per Load/UnloadTile (spec §4.4).
type TerrainGrid struct {
	mu    sync.RWMutex
	tiles map[TileCoord]*TerrainTile
}

func newTerrainGrid() *TerrainGrid {
	return &TerrainGrid{tiles: make(map[TileCoord]*TerrainTile)}
}

func (g *TerrainGrid) LoadTile(tile *TerrainTile) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.tiles[tile.Coord] = tile
}

func (g *TerrainGrid) UnloadTile(coord TileCoord) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.tiles, coord)
}

func (g *TerrainGrid) Tile(coord TileCoord) (*TerrainTile, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	t, ok := g.tiles[coord]
	return t, ok
}

// TrianglesInAABB gathers triangles from every resident tile whose
// footprint may overlap box.
func (g *TerrainGrid) TrianglesInAABB(box mathutil.AABB) []collide.Triangle {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []collide.Triangle
	for _, tile := range g.tiles {
		out = tile.TrianglesInAABB(box, out)
	}
	return out
}

// VisitTiles calls visit, synchronously and under the grid's read lock,
// for every resident tile whose world bounds may overlap box — the entry
// point sweep/overlap/LOS queries use to reach each tile's
// collide.TriangleMeshView adapter (spec §9).
func (g *TerrainGrid) VisitTiles(box mathutil.AABB, visit func(*TerrainTile)) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, tile := range g.tiles {
		if box.Overlaps(tile.worldBounds()) {
			visit(tile)
		}
	}
}

// LiquidAt returns the liquid plane covering (x, y), if any tile resident
// at that position carries one.
func (g *TerrainGrid) LiquidAt(x, y float32) (*LiquidPlane, *TerrainTile) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, tile := range g.tiles {
		b := tile.worldBounds()
		if x >= b.Min.X() && x <= b.Max.X() && y >= b.Min.Y() && y <= b.Max.Y() {
			return tile.Liquid, tile
		}
	}
	return nil, nil
}
