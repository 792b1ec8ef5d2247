package mathutil

import "github.com/go-gl/mathgl/mgl32"

// ClosestPointOnSegment returns the closest point to p on segment (a,b) and
// the clamped parameter t in [0,1].
func ClosestPointOnSegment(p, a, b mgl32.Vec3) (mgl32.Vec3, float32) {
	ab := b.Sub(a)
	lenSqr := ab.LenSqr()
	if lenSqr <= Eps*Eps {
		return a, 0
	}
	t := Clamp01(p.Sub(a).Dot(ab) / lenSqr)
	return a.Add(ab.Mul(t)), t
}

// ClosestPointSegmentSegment returns the closest points on segments (p1,q1)
// and (p2,q2), their parameters s,t in [0,1], and handles degenerate
// (point or parallel) configurations per Ericson's real-time collision
// detection algorithm.
func ClosestPointSegmentSegment(p1, q1, p2, q2 mgl32.Vec3) (c1, c2 mgl32.Vec3, s, t float32) {
	d1 := q1.Sub(p1)
	d2 := q2.Sub(p2)
	r := p1.Sub(p2)

	a := d1.LenSqr()
	e := d2.LenSqr()
	f := d2.Dot(r)

	if a <= Eps && e <= Eps {
		return p1, p2, 0, 0
	}
	if a <= Eps {
		s = 0
		t = Clamp01(f / e)
	} else {
		c := d1.Dot(r)
		if e <= Eps {
			t = 0
			s = Clamp01(-c / a)
		} else {
			b := d1.Dot(d2)
			denom := a*e - b*b
			if denom > Eps {
				s = Clamp01((b*f - c*e) / denom)
			} else {
				s = 0
			}
			t = (b*s + f) / e
			if t < 0 {
				t = 0
				s = Clamp01(-c / a)
			} else if t > 1 {
				t = 1
				s = Clamp01((b - c) / a)
			}
		}
	}

	c1 = p1.Add(d1.Mul(s))
	c2 = p2.Add(d2.Mul(t))
	return c1, c2, s, t
}

// TriangleRegion classifies which of the seven barycentric regions a
// closest-point query resolved to (spec §4.1: "seven cases").
type TriangleRegion int

const (
	RegionVertexA TriangleRegion = iota
	RegionVertexB
	RegionVertexC
	RegionEdgeAB
	RegionEdgeBC
	RegionEdgeCA
	RegionInterior
)

// ClosestPointOnTriangle implements Ericson's barycentric-region method:
// three vertex regions, three edge regions, and the interior region.
func ClosestPointOnTriangle(p, a, b, c mgl32.Vec3) (mgl32.Vec3, TriangleRegion) {
	ab := b.Sub(a)
	ac := c.Sub(a)
	ap := p.Sub(a)

	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return a, RegionVertexA
	}

	bp := p.Sub(b)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return b, RegionVertexB
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return a.Add(ab.Mul(v)), RegionEdgeAB
	}

	cp := p.Sub(c)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return c, RegionVertexC
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return a.Add(ac.Mul(w)), RegionEdgeCA
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return b.Add(c.Sub(b).Mul(w)), RegionEdgeBC
	}

	denom := 1.0 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return a.Add(ab.Mul(v)).Add(ac.Mul(w)), RegionInterior
}

// TriangleNormal returns the unit plane normal of a triangle,
// falling back to Up when the triangle is degenerate (spec §4.1: "Plane
// computation falls back to up when the cross product is degenerate").
func TriangleNormal(a, b, c mgl32.Vec3) (normal mgl32.Vec3, degenerate bool) {
	n := b.Sub(a).Cross(c.Sub(a))
	if n.LenSqr() <= Eps*Eps {
		return Up, true
	}
	return n.Normalize(), false
}

// PlaneDistance returns the signed distance from p to the plane through
// point o with unit normal n.
func PlaneDistance(p, o, n mgl32.Vec3) float32 {
	return p.Sub(o).Dot(n)
}

// PointInTriangle reports whether the projection of p onto the triangle's
// plane (along n) falls inside the triangle, using the same barycentric
// test as ClosestPointOnTriangle. A point that lies on an edge or vertex
// (within Eps) counts as inside, so a point on an edge shared by two
// triangles is inside both.
func PointInTriangle(p, a, b, c mgl32.Vec3) bool {
	q, region := ClosestPointOnTriangle(p, a, b, c)
	return region == RegionInterior || q.Sub(p).LenSqr() <= Eps*Eps
}
