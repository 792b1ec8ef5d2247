package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/gekko3d/charphys/mathutil"
)

// ModelInstance places a Model in the world with a position, Euler
// rotation (degrees, applied Z then Y then X, matching the teacher's
// TransformComponent convention in voxelrt/rt/core/transform.go), and
// uniform scale (spec §3 "Model Instance").
type ModelInstance struct {
	ID          string
	Model       *Model
	Position    mgl32.Vec3
	RotationDeg mgl32.Vec3
	Scale       float32
	Mask        uint32
	NoBreakLOS  bool
	Liquid      *LiquidPlane // non-nil for WMO instances carrying a liquid plane

	worldToModel mgl32.Mat4
	modelToWorld mgl32.Mat4
	normalRot    mgl32.Mat3
	bound        mathutil.AABB
}

// NewModelInstance builds an instance and caches its world/model
// transforms and world AABB (spec §4.4: "instance transforms are cached
// and only recomputed when the instance is moved").
func NewModelInstance(model *Model, pos mgl32.Vec3, rotationDeg mgl32.Vec3, scale float32, mask uint32) *ModelInstance {
	inst := &ModelInstance{
		ID:          uuid.NewString(),
		Model:       model,
		Position:    pos,
		RotationDeg: rotationDeg,
		Scale:       scale,
		Mask:        mask,
	}
	inst.recompute()
	return inst
}

func (inst *ModelInstance) recompute() {
	q := mgl32.QuatRotate(mgl32.DegToRad(inst.RotationDeg.Z()), mgl32.Vec3{0, 0, 1}).
		Mul(mgl32.QuatRotate(mgl32.DegToRad(inst.RotationDeg.Y()), mgl32.Vec3{0, 1, 0})).
		Mul(mgl32.QuatRotate(mgl32.DegToRad(inst.RotationDeg.X()), mgl32.Vec3{1, 0, 0}))

	rot := q.Mat4()
	inst.normalRot = q.Mat4().Mat3()
	scale := mgl32.Scale3D(inst.Scale, inst.Scale, inst.Scale)
	translate := mgl32.Translate3D(inst.Position.X(), inst.Position.Y(), inst.Position.Z())

	inst.modelToWorld = translate.Mul4(rot).Mul4(scale)
	inst.worldToModel = inst.modelToWorld.Inv()

	inst.bound = transformAABB(inst.modelToWorld, inst.Model.Bound)
}

// SetPose updates position/rotation/scale and recomputes cached
// transforms and the world AABB in one step.
func (inst *ModelInstance) SetPose(pos mgl32.Vec3, rotationDeg mgl32.Vec3, scale float32) {
	inst.Position = pos
	inst.RotationDeg = rotationDeg
	inst.Scale = scale
	inst.recompute()
}

// AABB returns the instance's cached world-space bounding box.
func (inst *ModelInstance) AABB() mathutil.AABB {
	return inst.bound
}

// ToModel transforms a world-space point into the instance's model space.
func (inst *ModelInstance) ToModel(worldPoint mgl32.Vec3) mgl32.Vec3 {
	v := inst.worldToModel.Mul4x1(mgl32.Vec4{worldPoint.X(), worldPoint.Y(), worldPoint.Z(), 1})
	return mgl32.Vec3{v.X(), v.Y(), v.Z()}
}

// ToWorld transforms a model-space point into world space.
func (inst *ModelInstance) ToWorld(modelPoint mgl32.Vec3) mgl32.Vec3 {
	v := inst.modelToWorld.Mul4x1(mgl32.Vec4{modelPoint.X(), modelPoint.Y(), modelPoint.Z(), 1})
	return mgl32.Vec3{v.X(), v.Y(), v.Z()}
}

// ToWorldNormal rotates (without translating or scaling) a model-space
// direction into world space.
func (inst *ModelInstance) ToWorldNormal(modelDir mgl32.Vec3) mgl32.Vec3 {
	return inst.normalRot.Mul3x1(modelDir)
}

func transformAABB(m mgl32.Mat4, box mathutil.AABB) mathutil.AABB {
	corners := [8]mgl32.Vec3{
		{box.Min.X(), box.Min.Y(), box.Min.Z()},
		{box.Max.X(), box.Min.Y(), box.Min.Z()},
		{box.Min.X(), box.Max.Y(), box.Min.Z()},
		{box.Max.X(), box.Max.Y(), box.Min.Z()},
		{box.Min.X(), box.Min.Y(), box.Max.Z()},
		{box.Max.X(), box.Min.Y(), box.Max.Z()},
		{box.Min.X(), box.Max.Y(), box.Max.Z()},
		{box.Max.X(), box.Max.Y(), box.Max.Z()},
	}
	out := mathutil.EmptyAABB()
	for _, c := range corners {
		v := m.Mul4x1(mgl32.Vec4{c.X(), c.Y(), c.Z(), 1})
		out = out.ExpandPoint(mgl32.Vec3{v.X(), v.Y(), v.Z()})
	}
	return out
}
