package dynamic

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/charphys/mathutil"
)

func boxAt(center mgl32.Vec3, half float32) mathutil.AABB {
	return mathutil.AABB{
		Min: center.Sub(mgl32.Vec3{half, half, half}),
		Max: center.Add(mgl32.Vec3{half, half, half}),
	}
}

func TestSpatialHashGridFindsInsertedBox(t *testing.T) {
	g := newSpatialHashGrid(10)
	g.Insert(1, boxAt(mgl32.Vec3{0, 0, 0}, 1))
	g.Insert(2, boxAt(mgl32.Vec3{500, 500, 0}, 1))

	hits := g.QueryAABB(boxAt(mgl32.Vec3{0, 0, 0}, 2))
	require.Contains(t, hits, uint64(1))
	require.NotContains(t, hits, uint64(2))
}

func TestSpatialHashGridUpdateMovesBucket(t *testing.T) {
	g := newSpatialHashGrid(10)
	g.Insert(1, boxAt(mgl32.Vec3{0, 0, 0}, 1))
	g.Update(1, boxAt(mgl32.Vec3{500, 500, 0}, 1))

	require.Empty(t, g.QueryAABB(boxAt(mgl32.Vec3{0, 0, 0}, 2)))
	require.Contains(t, g.QueryAABB(boxAt(mgl32.Vec3{500, 500, 0}, 2)), uint64(1))
}

func TestSpatialHashGridRemove(t *testing.T) {
	g := newSpatialHashGrid(10)
	g.Insert(1, boxAt(mgl32.Vec3{0, 0, 0}, 1))
	g.Remove(1)
	require.Empty(t, g.QueryAABB(boxAt(mgl32.Vec3{0, 0, 0}, 2)))
	require.Empty(t, g.cellsOf[1])
}

func TestSpatialHashGridQueryDedupesAcrossCells(t *testing.T) {
	g := newSpatialHashGrid(1)
	g.Insert(1, boxAt(mgl32.Vec3{0, 0, 0}, 5)) // spans many 1-unit cells
	hits := g.QueryAABB(boxAt(mgl32.Vec3{0, 0, 0}, 5))
	count := 0
	for _, h := range hits {
		if h == 1 {
			count++
		}
	}
	require.Equal(t, 1, count)
}
