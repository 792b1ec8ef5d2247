// Package collide implements the analytic collision primitives of the
// core: sphere/capsule vs. triangle discrete intersection, swept capsule
// vs. triangle, and contact resolution/manifolds (spec §4.2).
package collide

import (
	"github.com/gekko3d/charphys/mathutil"
	"github.com/go-gl/mathgl/mgl32"
)

// Triangle is immutable once placed in a scene (spec §3).
type Triangle struct {
	V0, V1, V2   mgl32.Vec3
	DoubleSided  bool
	Mask         uint32
}

func (t Triangle) Normal() (n mgl32.Vec3, degenerate bool) {
	return mathutil.TriangleNormal(t.V0, t.V1, t.V2)
}

// Region identifies which cap/side of the capsule a contact belongs to.
type Region int

const (
	RegionNone Region = iota
	RegionCapA
	RegionCapB
	RegionCylinder
)

// Capsule is represented by its inner segment's end-points (at the sphere
// centers, not the extreme Z) plus radius. Invariant: P1.Z() >= P0.Z() and
// Radius > 0 (spec §3).
type Capsule struct {
	P0, P1 mgl32.Vec3
	Radius float32
}

// NewCapsule builds a capsule from feet position, radius, and total height
// using the full-height convention in spec §3: feet-Z maps to
// p0 = (x,y,z+r), head to p1 = (x,y,z+h-r).
func NewCapsule(feet mgl32.Vec3, radius, height float32) Capsule {
	p0 := mgl32.Vec3{feet.X(), feet.Y(), feet.Z() + radius}
	p1 := mgl32.Vec3{feet.X(), feet.Y(), feet.Z() + height - radius}
	if p1.Z() < p0.Z() {
		p1 = p0
	}
	return Capsule{P0: p0, P1: p1, Radius: radius}
}

// Translated returns the capsule moved by d.
func (c Capsule) Translated(d mgl32.Vec3) Capsule {
	return Capsule{P0: c.P0.Add(d), P1: c.P1.Add(d), Radius: c.Radius}
}

// Feet returns the foot position (bottom of the lower hemisphere).
func (c Capsule) Feet() mgl32.Vec3 {
	return mgl32.Vec3{c.P0.X(), c.P0.Y(), c.P0.Z() - c.Radius}
}

func (c Capsule) AABB() mathutil.AABB {
	return mathutil.CapsuleAABB(c.P0, c.P1, c.Radius)
}

// Contact describes the result of a discrete or swept collision test
// (spec §3).
type Contact struct {
	Hit              bool
	Depth            float32 // signed penetration depth, positive when overlapping
	Normal           mgl32.Vec3
	Point            mgl32.Vec3
	TOI              float32 // time of impact in [0,1], only meaningful for sweeps
	TriangleIndex    int
	InstanceID       string
	Region           Region
	StartPenetrating bool
}
