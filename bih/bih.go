// Package bih implements the Bounding Interval Hierarchy broad-phase used
// to index static model instances for fast AABB queries (spec §4.3). It has
// no ray/segment traversal of its own: ray and segment queries go through
// QueryAABB with the segment's bounding box. It is grounded on the
// teacher's median-split BVH builder in voxelrt/rt/bvh/builder.go, generalized from a flat byte-serializable BVH
// to a proper two-plane-per-node BIH with a reorderable object index array.
package bih

import "github.com/gekko3d/charphys/mathutil"

// leafSize bounds how many objects a leaf may hold before it is further
// split; small enough to keep per-leaf triangle/instance scans cheap.
const leafSize = 4

// node is either an internal split node (Axis >= 0) or a leaf
// (Axis == leafAxis) holding a contiguous range of Order.
type node struct {
	Axis        int8
	LeftMax     float32
	RightMin    float32
	Left, Right int32
	LeafFirst   int32
	LeafCount   int32
}

const leafAxis int8 = -1

// Tree is an immutable BIH over a caller-provided set of bounding boxes.
// Safe to query concurrently from multiple reader goroutines once built
// (spec §4.3: "the structure is immutable after build and safe to query
// from parallel readers").
type Tree struct {
	nodes  []node
	Order  []int32 // reordered object indices; leaf ranges index into this
	Bounds mathutil.AABB
}

// Len returns the number of objects indexed by the tree.
func (t *Tree) Len() int {
	return len(t.Order)
}
