package mathutil

import "github.com/go-gl/mathgl/mgl32"

// AABB is an axis-aligned bounding box in world units.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// EmptyAABB returns an AABB that Union will immediately replace.
func EmptyAABB() AABB {
	const big = float32(1e30)
	return AABB{
		Min: mgl32.Vec3{big, big, big},
		Max: mgl32.Vec3{-big, -big, -big},
	}
}

func AABBFromPoint(p mgl32.Vec3) AABB {
	return AABB{Min: p, Max: p}
}

func (a AABB) Union(b AABB) AABB {
	return AABB{
		Min: mgl32.Vec3{Minf(a.Min.X(), b.Min.X()), Minf(a.Min.Y(), b.Min.Y()), Minf(a.Min.Z(), b.Min.Z())},
		Max: mgl32.Vec3{Maxf(a.Max.X(), b.Max.X()), Maxf(a.Max.Y(), b.Max.Y()), Maxf(a.Max.Z(), b.Max.Z())},
	}
}

func (a AABB) ExpandPoint(p mgl32.Vec3) AABB {
	return a.Union(AABBFromPoint(p))
}

// Expand grows the box by r on every side (used to build sweep/query boxes).
func (a AABB) Expand(r float32) AABB {
	d := mgl32.Vec3{r, r, r}
	return AABB{Min: a.Min.Sub(d), Max: a.Max.Add(d)}
}

func (a AABB) Overlaps(b AABB) bool {
	return a.Min.X() <= b.Max.X() && a.Max.X() >= b.Min.X() &&
		a.Min.Y() <= b.Max.Y() && a.Max.Y() >= b.Min.Y() &&
		a.Min.Z() <= b.Max.Z() && a.Max.Z() >= b.Min.Z()
}

func (a AABB) ContainsPoint(p mgl32.Vec3) bool {
	return p.X() >= a.Min.X() && p.X() <= a.Max.X() &&
		p.Y() >= a.Min.Y() && p.Y() <= a.Max.Y() &&
		p.Z() >= a.Min.Z() && p.Z() <= a.Max.Z()
}

// Contains reports whether a fully contains b (used to validate the BIH
// invariant that every instance AABB is contained in its subtree's AABB).
func (a AABB) Contains(b AABB) bool {
	return a.ContainsPoint(b.Min) && a.ContainsPoint(b.Max)
}

func (a AABB) Center() mgl32.Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}

func (a AABB) HalfExtents() mgl32.Vec3 {
	return a.Max.Sub(a.Min).Mul(0.5)
}

// SweptAABB returns the AABB swept from a along displacement d, used by
// the scene layer to gather BIH candidates for a sweep query.
func SweptAABB(a AABB, d mgl32.Vec3) AABB {
	moved := AABB{Min: a.Min.Add(d), Max: a.Max.Add(d)}
	return a.Union(moved)
}

// CapsuleAABB returns the bounding box of a capsule segment (p0,p1) with
// the given radius.
func CapsuleAABB(p0, p1 mgl32.Vec3, radius float32) AABB {
	box := AABBFromPoint(p0).ExpandPoint(p1)
	return box.Expand(radius)
}
