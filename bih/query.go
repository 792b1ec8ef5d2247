package bih

import (
	"github.com/gekko3d/charphys/mathutil"
	"github.com/go-gl/mathgl/mgl32"
)

// QueryAABB calls visit(objectIndex) for every object whose box may
// overlap query, descending whenever the query box overlaps the child's
// interval on the node's chosen axis (spec §4.3 "AABB intersect"). Ray and
// swept-segment queries (ground-Z casts, capsule sweeps) are issued by
// building the segment's swept AABB first and calling this with it; the
// per-candidate exact test happens in the collide/scene packages.
func (t *Tree) QueryAABB(query mathutil.AABB, visit func(objectIndex int32)) {
	if len(t.nodes) == 0 {
		return
	}
	t.queryAABB(0, t.Bounds, query, visit)
}

func (t *Tree) queryAABB(nodeIdx int32, bounds mathutil.AABB, query mathutil.AABB, visit func(int32)) {
	n := t.nodes[nodeIdx]
	if n.Axis == leafAxis {
		for i := int32(0); i < n.LeafCount; i++ {
			visit(t.Order[n.LeafFirst+i])
		}
		return
	}

	axis := int(n.Axis)
	leftBounds := bounds
	setAxis(&leftBounds.Max, axis, mathutil.Minf(axisOf(bounds.Max, axis), n.LeftMax))
	rightBounds := bounds
	setAxis(&rightBounds.Min, axis, mathutil.Maxf(axisOf(bounds.Min, axis), n.RightMin))

	if query.Overlaps(leftBounds) {
		t.queryAABB(n.Left, leftBounds, query, visit)
	}
	if query.Overlaps(rightBounds) {
		t.queryAABB(n.Right, rightBounds, query, visit)
	}
}

func axisOf(v mgl32.Vec3, axis int) float32 {
	return v[axis]
}

func setAxis(v *mgl32.Vec3, axis int, val float32) {
	v[axis] = val
}
