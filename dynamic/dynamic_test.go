package dynamic

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/charphys/collide"
	"github.com/gekko3d/charphys/mathutil"
)

func doorTriangles() []collide.Triangle {
	return []collide.Triangle{
		{V0: mgl32.Vec3{-1, 0, 0}, V1: mgl32.Vec3{1, 0, 0}, V2: mgl32.Vec3{1, 0, 3}},
		{V0: mgl32.Vec3{-1, 0, 0}, V1: mgl32.Vec3{1, 0, 3}, V2: mgl32.Vec3{-1, 0, 3}},
	}
}

func TestUpdatePoseRebuildsWorldTrianglesAndAABB(t *testing.T) {
	o := NewObject(1, 0, doorTriangles(), mgl32.Vec3{}, 0, StateClosed)
	require.True(t, o.WorldAABB().ContainsPoint(mgl32.Vec3{0, 0, 1}))

	o.UpdatePose(mgl32.Vec3{10, 0, 0}, 90, StateClosed)
	require.False(t, o.WorldAABB().ContainsPoint(mgl32.Vec3{0, 0, 1}))
	require.True(t, o.WorldAABB().ContainsPoint(mgl32.Vec3{10, 0, 1}))
}

func TestStateCollidable(t *testing.T) {
	require.True(t, StateClosed.Collidable())
	require.True(t, StateTransitioning.Collidable())
	require.False(t, StateOpen.Collidable())
	require.False(t, StateDestroyed.Collidable())
}

func TestRegistryQueryTrianglesFiltersByMapAndState(t *testing.T) {
	r := NewRegistry()
	open := NewObject(1, 0, doorTriangles(), mgl32.Vec3{}, 0, StateOpen)
	closed := NewObject(2, 0, doorTriangles(), mgl32.Vec3{}, 0, StateClosed)
	otherMap := NewObject(3, 1, doorTriangles(), mgl32.Vec3{}, 0, StateClosed)

	r.Spawn(open)
	r.Spawn(closed)
	r.Spawn(otherMap)

	box := mathutil.AABB{Min: mgl32.Vec3{-5, -5, -5}, Max: mgl32.Vec3{5, 5, 5}}
	tris := r.QueryTriangles(0, box)
	require.Len(t, tris, len(doorTriangles())) // only the closed, same-map object counts
}

func TestRegistryUpdatePoseAndDespawn(t *testing.T) {
	r := NewRegistry()
	o := NewObject(7, 0, doorTriangles(), mgl32.Vec3{}, 0, StateClosed)
	r.Spawn(o)

	r.UpdatePose(7, mgl32.Vec3{100, 0, 0}, 0, StateClosed)
	got, ok := r.Get(7)
	require.True(t, ok)
	require.InDelta(t, float32(100), got.Position.X(), 1e-6)

	r.UpdatePose(404, mgl32.Vec3{}, 0, StateClosed) // missing GUID is silent

	r.Despawn(7)
	require.Equal(t, 0, r.Len())
}

func TestObjectTriangleMeshViewAdapter(t *testing.T) {
	o := NewObject(1, 0, doorTriangles(), mgl32.Vec3{}, 0, StateClosed)
	var hits []int
	o.Query(o.WorldAABB(), func(i int) { hits = append(hits, i) })
	require.Len(t, hits, 2)
	require.Equal(t, o.WorldTriangles()[0], o.Triangle(0))
}
