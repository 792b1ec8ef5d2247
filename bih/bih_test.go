package bih

import (
	"testing"

	"github.com/gekko3d/charphys/mathutil"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

func box(cx, cy, cz, half float32) mathutil.AABB {
	c := mgl32.Vec3{cx, cy, cz}
	h := mgl32.Vec3{half, half, half}
	return mathutil.AABB{Min: c.Sub(h), Max: c.Add(h)}
}

func TestBuildEmpty(t *testing.T) {
	tree := Build(nil)
	require.Equal(t, 0, tree.Len())
	var hits []int32
	tree.QueryAABB(box(0, 0, 0, 100), func(i int32) { hits = append(hits, i) })
	require.Empty(t, hits)
}

func TestQueryFindsOverlappingBoxesOnly(t *testing.T) {
	boxes := []mathutil.AABB{
		box(0, 0, 0, 1),
		box(50, 0, 0, 1),
		box(100, 0, 0, 1),
		box(-50, 0, 0, 1),
	}
	tree := Build(boxes)
	require.Equal(t, 4, tree.Len())

	var hits []int32
	tree.QueryAABB(box(0, 0, 0, 2), func(i int32) { hits = append(hits, i) })
	require.Equal(t, []int32{0}, hits)
}

func TestQueryFindsAllWhenQueryCoversEverything(t *testing.T) {
	var boxes []mathutil.AABB
	for i := 0; i < 40; i++ {
		boxes = append(boxes, box(float32(i)*3, 0, 0, 1))
	}
	tree := Build(boxes)

	seen := map[int32]bool{}
	tree.QueryAABB(box(60, 0, 0, 1000), func(i int32) { seen[i] = true })
	require.Len(t, seen, 40)
}

func TestEveryLeafBoundedByRoot(t *testing.T) {
	boxes := []mathutil.AABB{
		box(0, 0, 0, 1),
		box(5, 2, -3, 2),
		box(-10, 10, 10, 0.5),
	}
	tree := Build(boxes)
	for _, b := range boxes {
		require.True(t, tree.Bounds.Contains(b))
	}
}
