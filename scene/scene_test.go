package scene

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/charphys/collide"
)

func floorTriangles() []collide.Triangle {
	return []collide.Triangle{
		{V0: mgl32.Vec3{-50, -50, 0}, V1: mgl32.Vec3{50, -50, 0}, V2: mgl32.Vec3{50, 50, 0}},
		{V0: mgl32.Vec3{-50, -50, 0}, V1: mgl32.Vec3{50, 50, 0}, V2: mgl32.Vec3{-50, 50, 0}},
	}
}

func flatTerrainTile(coord TileCoord) *TerrainTile {
	size := 4
	heights := make([]float32, (size+1)*(size+1))
	return &TerrainTile{
		Coord:    coord,
		Size:     size,
		CellSize: 10,
		OriginX:  float32(coord.X) * 40,
		OriginY:  float32(coord.Y) * 40,
		Heights:  heights,
	}
}

func TestModelQueryAABBFindsTriangles(t *testing.T) {
	m := NewModel("floor", floorTriangles())
	require.Equal(t, 2, m.tree.Len())

	var hits []int32
	m.QueryAABB(m.Bound, func(i int32) { hits = append(hits, i) })
	require.Len(t, hits, 2)
}

func TestModelCacheRefCounting(t *testing.T) {
	loads := 0
	cache := NewModelCache(func(ref string) ([]collide.Triangle, error) {
		loads++
		return floorTriangles(), nil
	})

	m1, err := cache.Acquire("floor.m2")
	require.NoError(t, err)
	m2, err := cache.Acquire("floor.m2")
	require.NoError(t, err)
	require.Same(t, m1, m2)
	require.Equal(t, 1, loads)
	require.Equal(t, 1, cache.Len())

	cache.Release("floor.m2")
	require.Equal(t, 1, cache.Len())
	cache.Release("floor.m2")
	require.Equal(t, 0, cache.Len())
}

func TestModelCachePropagatesLoadError(t *testing.T) {
	cache := NewModelCache(func(ref string) ([]collide.Triangle, error) {
		return nil, errors.New("boom")
	})
	_, err := cache.Acquire("missing.m2")
	require.Error(t, err)
}

func TestModelInstanceTransformsRoundTrip(t *testing.T) {
	m := NewModel("box", floorTriangles())
	inst := NewModelInstance(m, mgl32.Vec3{10, 20, 5}, mgl32.Vec3{0, 0, 90}, 2, 1)

	worldPoint := mgl32.Vec3{11, 20, 5}
	modelPoint := inst.ToModel(worldPoint)
	back := inst.ToWorld(modelPoint)
	require.InDelta(t, worldPoint.X(), back.X(), 1e-3)
	require.InDelta(t, worldPoint.Y(), back.Y(), 1e-3)
	require.InDelta(t, worldPoint.Z(), back.Z(), 1e-3)
}

func TestStaticMapTreeAddRemoveRefcounted(t *testing.T) {
	tree := newStaticMapTree()
	m := NewModel("box", floorTriangles())
	inst := NewModelInstance(m, mgl32.Vec3{}, mgl32.Vec3{}, 1, 0)

	tree.AddInstance(inst)
	tree.AddInstance(inst) // second tile referencing the same instance
	tree.Rebuild()
	require.Equal(t, 1, tree.Len())

	tree.RemoveInstance(inst.ID)
	require.Equal(t, 1, tree.Len()) // still referenced once

	tree.RemoveInstance(inst.ID)
	tree.Rebuild()
	require.Equal(t, 0, tree.Len())
}

func TestTerrainTileProducesTrianglesOnDemand(t *testing.T) {
	tile := flatTerrainTile(TileCoord{0, 0})
	var out []collide.Triangle
	out = tile.TrianglesInAABB(tile.worldBounds(), out)
	require.Equal(t, tile.Size*tile.Size*2, len(out))
}

func TestStaticSceneGroundZFindsFlatFloor(t *testing.T) {
	scene := NewStaticScene(
		func(ref string) ([]collide.Triangle, error) { return nil, errors.New("unused") },
		func(mapID uint32, coord TileCoord) (*TerrainTile, []TileInstance, error) {
			return flatTerrainTile(coord), nil, nil
		},
		0.5,
	)
	scene.LoadMap(0)
	require.NoError(t, scene.LoadTile(0, TileCoord{0, 0}))

	z, ok := scene.GroundZ(0, 5, 5, 10, 50)
	require.True(t, ok)
	require.InDelta(t, 0, z, 1e-3)
}

func TestStaticSceneGroundZMissingMapIsQuiet(t *testing.T) {
	scene := NewStaticScene(nil, nil, 0.5)
	_, ok := scene.GroundZ(99, 0, 0, 10, 50)
	require.False(t, ok)
}

func TestStaticSceneLiquidFallsBackToTerrain(t *testing.T) {
	scene := NewStaticScene(
		nil,
		func(mapID uint32, coord TileCoord) (*TerrainTile, []TileInstance, error) {
			tile := flatTerrainTile(coord)
			tile.Liquid = &LiquidPlane{Level: 10, Type: LiquidWater}
			return tile, nil, nil
		},
		0.5,
	)
	scene.LoadMap(0)
	require.NoError(t, scene.LoadTile(0, TileCoord{0, 0}))

	sample := scene.LiquidAt(0, 5, 5, 6)
	require.True(t, sample.HasLevel)
	require.True(t, sample.IsSwimming)
	require.Equal(t, LiquidWater, sample.Type)
}

func TestStaticSceneLoadTileIsIdempotent(t *testing.T) {
	loads := 0
	scene := NewStaticScene(
		nil,
		func(mapID uint32, coord TileCoord) (*TerrainTile, []TileInstance, error) {
			loads++
			return flatTerrainTile(coord), nil, nil
		},
		0.5,
	)
	scene.LoadMap(0)
	require.NoError(t, scene.LoadTile(0, TileCoord{1, 1}))
	require.NoError(t, scene.LoadTile(0, TileCoord{1, 1}))
	require.Equal(t, 1, loads)
}
