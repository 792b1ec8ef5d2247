package bih

import (
	"sort"

	"github.com/gekko3d/charphys/mathutil"
)

type item struct {
	box      mathutil.AABB
	centroid [3]float32
	index    int32
}

// Build constructs a BIH over boxes via an O(n log n) median split on
// centroids (spec §4.3). The index of each input box is preserved in
// Tree.Order so callers can map a leaf range back to their own object
// array.
func Build(boxes []mathutil.AABB) *Tree {
	if len(boxes) == 0 {
		return &Tree{Bounds: mathutil.EmptyAABB()}
	}

	items := make([]item, len(boxes))
	for i, b := range boxes {
		c := b.Center()
		items[i] = item{box: b, centroid: [3]float32{c.X(), c.Y(), c.Z()}, index: int32(i)}
	}

	t := &Tree{}
	root := mathutil.EmptyAABB()
	for _, b := range boxes {
		root = root.Union(b)
	}
	t.Bounds = root

	var build func(items []item) int32
	build = func(items []item) int32 {
		union := mathutil.EmptyAABB()
		for _, it := range items {
			union = union.Union(it.box)
		}

		if len(items) <= leafSize {
			first := int32(len(t.Order))
			for _, it := range items {
				t.Order = append(t.Order, it.index)
			}
			idx := int32(len(t.nodes))
			t.nodes = append(t.nodes, node{Axis: leafAxis, LeafFirst: first, LeafCount: int32(len(items))})
			return idx
		}

		extent := union.Max.Sub(union.Min)
		axis := 0
		if extent.Y() > extent.X() {
			axis = 1
		}
		if extent.Z() > extent[axis] {
			axis = 2
		}

		sort.Slice(items, func(i, j int) bool {
			return items[i].centroid[axis] < items[j].centroid[axis]
		})

		mid := len(items) / 2
		left := items[:mid]
		right := items[mid:]

		leftMax := float32(-1e30)
		for _, it := range left {
			leftMax = mathutil.Maxf(leftMax, maxOnAxis(it.box, axis))
		}
		rightMin := float32(1e30)
		for _, it := range right {
			rightMin = mathutil.Minf(rightMin, minOnAxis(it.box, axis))
		}

		idx := int32(len(t.nodes))
		t.nodes = append(t.nodes, node{}) // placeholder, filled below
		leftIdx := build(left)
		rightIdx := build(right)
		t.nodes[idx] = node{
			Axis:     int8(axis),
			LeftMax:  leftMax,
			RightMin: rightMin,
			Left:     leftIdx,
			Right:    rightIdx,
		}
		return idx
	}

	build(items)
	return t
}

func minOnAxis(b mathutil.AABB, axis int) float32 {
	switch axis {
	case 0:
		return b.Min.X()
	case 1:
		return b.Min.Y()
	default:
		return b.Min.Z()
	}
}

func maxOnAxis(b mathutil.AABB, axis int) float32 {
	switch axis {
	case 0:
		return b.Max.X()
	case 1:
		return b.Max.Y()
	default:
		return b.Max.Z()
	}
}
