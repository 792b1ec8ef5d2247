// Package scene implements the Static Scene (spec §4.4): the per-map owner
// of the terrain grid, model-instance BIH, and model-mesh cache, answering
// sweep/overlap/height/LOS queries. It is grounded on the teacher's
// VoxelObject world-AABB bookkeeping (voxelrt/rt/core/scene.go,
// voxelrt/rt/core/transform.go) and region/tile streaming idiom
// (world.go), generalized from voxel regions to triangle model instances.
package scene

import (
	"github.com/gekko3d/charphys/bih"
	"github.com/gekko3d/charphys/collide"
	"github.com/gekko3d/charphys/mathutil"
)

// Model is a World Model: an indexed triangle set with its own inner BIH
// (spec §3 "Model Instance... a placement of a World Model").
type Model struct {
	ID        string
	Triangles []collide.Triangle
	tree      *bih.Tree
	Bound     mathutil.AABB
}

// NewModel builds a Model's inner BIH over its triangles. Triangles are
// immutable once placed (spec §3).
func NewModel(id string, triangles []collide.Triangle) *Model {
	boxes := make([]mathutil.AABB, len(triangles))
	for i, t := range triangles {
		boxes[i] = triangleAABB(t)
	}
	tree := bih.Build(boxes)
	return &Model{ID: id, Triangles: triangles, tree: tree, Bound: tree.Bounds}
}

func triangleAABB(t collide.Triangle) mathutil.AABB {
	return mathutil.AABBFromPoint(t.V0).ExpandPoint(t.V1).ExpandPoint(t.V2)
}

// QueryAABB visits every triangle index whose box may overlap box
// (model-space). Descends the model's single inner BIH, which is built
// directly over its triangles; there is no separate group level.
func (m *Model) QueryAABB(box mathutil.AABB, visit func(triIndex int32)) {
	if m == nil || m.tree == nil {
		return
	}
	m.tree.QueryAABB(box, visit)
}

// Query implements collide.TriangleMeshView.
func (m *Model) Query(box mathutil.AABB, visit func(index int)) {
	m.QueryAABB(box, func(i int32) { visit(int(i)) })
}

// Triangle implements collide.TriangleMeshView.
func (m *Model) Triangle(index int) collide.Triangle {
	return m.Triangles[index]
}

// Len implements collide.TriangleMeshView.
func (m *Model) Len() int {
	return len(m.Triangles)
}
