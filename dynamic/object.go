// Package dynamic implements the Dynamic Object Registry (spec §4.5): the
// GUID-keyed set of runtime-positioned models (doors, elevators, gameobjects)
// whose world-space triangles are rebuilt on every pose change. Grounded on
// the teacher's TransformComponent/hierarchy update pattern
// (voxelrt/rt/core/transform.go, transform_hierarchy.go), generalized from a
// scene-graph node to a single flat GUID->object map with no parent/child
// chaining.
package dynamic

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/charphys/collide"
	"github.com/gekko3d/charphys/mathutil"
)

// State is the door/gameobject open-closed-destroyed state that gates
// whether an object's triangles participate in collision (spec §4.5:
// "door/state filter allows collision").
type State uint8

const (
	StateClosed State = iota
	StateOpen
	StateDestroyed
	StateTransitioning
)

// Collidable reports whether s should block movement. Open and destroyed
// objects (doors swung out of the way, debris cleared) do not.
func (s State) Collidable() bool {
	return s == StateClosed || s == StateTransitioning
}

// Object is one runtime-positioned model: its model-local triangles are
// immutable, but its pose (and therefore its world-space triangles and
// AABB) changes over the object's lifetime (spec §3 "dynamic object").
type Object struct {
	GUID  uint64
	MapID uint32

	localTriangles []collide.Triangle
	State          State

	Position mgl32.Vec3
	YawDeg   float32

	worldTriangles []collide.Triangle
	worldAABB      mathutil.AABB
}

// NewObject builds a dynamic object from its model-local triangles and
// places it at its initial pose.
func NewObject(guid uint64, mapID uint32, localTriangles []collide.Triangle, pos mgl32.Vec3, yawDeg float32, state State) *Object {
	o := &Object{
		GUID:           guid,
		MapID:          mapID,
		localTriangles: localTriangles,
		State:          state,
	}
	o.UpdatePose(pos, yawDeg, state)
	return o
}

// UpdatePose rebuilds the object's world-space triangle list and AABB from
// its model-local triangles (spec §4.5). Rotation is yaw-only (about Z),
// matching the teacher's gameobject placement convention.
func (o *Object) UpdatePose(pos mgl32.Vec3, yawDeg float32, state State) {
	o.Position = pos
	o.YawDeg = yawDeg
	o.State = state

	rot := mgl32.QuatRotate(mgl32.DegToRad(yawDeg), mgl32.Vec3{0, 0, 1}).Mat4()
	xform := mgl32.Translate3D(pos.X(), pos.Y(), pos.Z()).Mul4(rot)

	o.worldTriangles = make([]collide.Triangle, len(o.localTriangles))
	bound := mathutil.EmptyAABB()
	for i, tri := range o.localTriangles {
		wt := collide.Triangle{
			V0:          transformPoint(xform, tri.V0),
			V1:          transformPoint(xform, tri.V1),
			V2:          transformPoint(xform, tri.V2),
			DoubleSided: tri.DoubleSided,
			Mask:        tri.Mask,
		}
		o.worldTriangles[i] = wt
		bound = bound.ExpandPoint(wt.V0).ExpandPoint(wt.V1).ExpandPoint(wt.V2)
	}
	o.worldAABB = bound
}

// WorldAABB returns the object's cached world-space bounding box.
func (o *Object) WorldAABB() mathutil.AABB {
	return o.worldAABB
}

// WorldTriangles returns the object's cached world-space triangles.
func (o *Object) WorldTriangles() []collide.Triangle {
	return o.worldTriangles
}

func transformPoint(m mgl32.Mat4, p mgl32.Vec3) mgl32.Vec3 {
	v := m.Mul4x1(mgl32.Vec4{p.X(), p.Y(), p.Z(), 1})
	return mgl32.Vec3{v.X(), v.Y(), v.Z()}
}

// Query implements collide.TriangleMeshView over this object's current
// world-space triangles.
func (o *Object) Query(box mathutil.AABB, visit func(index int)) {
	if !o.worldAABB.Overlaps(box) {
		return
	}
	for i, tri := range o.worldTriangles {
		if triangleAABB(tri).Overlaps(box) {
			visit(i)
		}
	}
}

// Triangle implements collide.TriangleMeshView.
func (o *Object) Triangle(index int) collide.Triangle {
	return o.worldTriangles[index]
}

// Len implements collide.TriangleMeshView.
func (o *Object) Len() int {
	return len(o.worldTriangles)
}

func triangleAABB(t collide.Triangle) mathutil.AABB {
	return mathutil.AABBFromPoint(t.V0).ExpandPoint(t.V1).ExpandPoint(t.V2)
}
