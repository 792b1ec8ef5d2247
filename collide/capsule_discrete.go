package collide

import (
	"github.com/gekko3d/charphys/mathutil"
	"github.com/go-gl/mathgl/mgl32"
)

// CapsuleVsTriangle performs the discrete capsule/triangle test of spec
// §4.2: plane-cull the capsule axis against the triangle plane, then
// compute the closest pair between the capsule's inner segment and the
// triangle via segment-plane penetration, end-point-to-triangle, and
// segment-vs-edge tests, reporting the deepest penetration.
func CapsuleVsTriangle(cap Capsule, tri Triangle) Contact {
	n, degenerate := tri.Normal()
	o := tri.V0

	if !degenerate {
		d0 := mathutil.PlaneDistance(cap.P0, o, n)
		d1 := mathutil.PlaneDistance(cap.P1, o, n)
		axisParallel := mathutil.Absf(d0-d1) <= mathutil.Eps
		if axisParallel && mathutil.Absf(d0) > cap.Radius+mathutil.TouchEps {
			return Contact{}
		}
		if !axisParallel && mathutil.Minf(mathutil.Absf(d0), mathutil.Absf(d1)) > cap.Radius+mathutil.TouchEps &&
			(d0 > 0) == (d1 > 0) {
			return Contact{}
		}
	}

	best := Contact{}
	bestDepth := float32(-1)
	consider := func(q, closest mgl32.Vec3, normal mgl32.Vec3, region Region) {
		diff := q.Sub(closest)
		dist := diff.Len()
		depth := cap.Radius - dist
		if depth <= -mathutil.TouchEps {
			return
		}
		if depth > bestDepth {
			bestDepth = depth
			nrm := mathutil.SafeNormalize(diff, normal)
			best = Contact{
				Hit:              true,
				Depth:            depth,
				Normal:           nrm,
				Point:            closest,
				Region:           region,
				StartPenetrating: dist < cap.Radius,
			}
		}
	}

	// (a) each end-point against the triangle.
	q0, _ := mathutil.ClosestPointOnTriangle(cap.P0, tri.V0, tri.V1, tri.V2)
	consider(cap.P0, q0, n, RegionCapA)
	q1, _ := mathutil.ClosestPointOnTriangle(cap.P1, tri.V0, tri.V1, tri.V2)
	consider(cap.P1, q1, n, RegionCapB)

	// (b) segment vs each edge.
	edges := [3][2]mgl32.Vec3{{tri.V0, tri.V1}, {tri.V1, tri.V2}, {tri.V2, tri.V0}}
	for _, e := range edges {
		cSeg, cEdge, _, _ := mathutil.ClosestPointSegmentSegment(cap.P0, cap.P1, e[0], e[1])
		consider(cSeg, cEdge, n, RegionCylinder)
	}

	// (c) segment-plane intersection for through-triangle penetration: if
	// the capsule axis pierces the triangle's interior, the deepest
	// contact may be along the interior rather than at an edge/vertex.
	if !degenerate {
		d0 := mathutil.PlaneDistance(cap.P0, o, n)
		d1 := mathutil.PlaneDistance(cap.P1, o, n)
		if (d0 > 0) != (d1 > 0) && mathutil.Absf(d0-d1) > mathutil.Eps {
			t := d0 / (d0 - d1)
			pierce := cap.P0.Add(cap.P1.Sub(cap.P0).Mul(t))
			if mathutil.PointInTriangle(pierce, tri.V0, tri.V1, tri.V2) {
				consider(pierce, pierce, n, RegionCylinder)
				if bestDepth < cap.Radius {
					bestDepth = cap.Radius
					best = Contact{
						Hit:              true,
						Depth:            cap.Radius + mathutil.Absf(d0),
						Normal:           n,
						Point:            pierce,
						Region:           RegionCylinder,
						StartPenetrating: true,
					}
				}
			}
		}
	}

	if best.Hit && best.Depth < mathutil.LargeEps {
		best.Normal = n
	}
	return best
}
