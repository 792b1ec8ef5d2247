package collide

import (
	"github.com/gekko3d/charphys/mathutil"
	"github.com/go-gl/mathgl/mgl32"
)

const sweepEdgeSubsteps = 8
const sweepBisectIters = 6

// candidate is an internal scratch record for one of the face/edge/vertex
// TOI candidates considered by SweepCapsuleVsTriangle.
type candidate struct {
	valid  bool
	t      float32
	point  mgl32.Vec3 // contact point on the feature (edge/vertex/plane)
	normal mgl32.Vec3
}

// SweepCapsuleVsTriangle performs the analytic swept capsule/triangle test
// of spec §4.2: an early discrete test at t=0, four face-contact candidate
// times, edge contact via 8-step conservative advancement against each
// edge, vertex contact the same way against each vertex, keeping the
// minimum t in [0,1] and orienting the final normal to oppose v.
func SweepCapsuleVsTriangle(cap Capsule, v mgl32.Vec3, tri Triangle) Contact {
	if v.LenSqr() <= mathutil.Eps*mathutil.Eps {
		c := CapsuleVsTriangle(cap, tri)
		if c.Hit {
			c.TOI = 0
		}
		return c
	}

	if start := CapsuleVsTriangle(cap, tri); start.Hit && start.StartPenetrating {
		start.TOI = 0
		return start
	}

	n, degenerate := tri.Normal()
	o := tri.V0

	best := candidate{t: 2}

	// (2) face contact.
	if !degenerate {
		vn := v.Dot(n)
		if mathutil.Absf(vn) > mathutil.Eps {
			for _, p := range [2]mgl32.Vec3{cap.P0, cap.P1} {
				d0 := mathutil.PlaneDistance(p, o, n)
				for _, target := range [2]float32{cap.Radius, -cap.Radius} {
					t := (target - d0) / vn
					if t < 0 || t > 1 {
						continue
					}
					moved := p.Add(v.Mul(t))
					proj := moved.Sub(n.Mul(mathutil.PlaneDistance(moved, o, n)))
					if !mathutil.PointInTriangle(proj, tri.V0, tri.V1, tri.V2) {
						continue
					}
					if t < best.t {
						best = candidate{valid: true, t: t, point: proj, normal: n}
					}
				}
			}
		}
	}

	// (3) edge contact via conservative advancement.
	edges := [3][2]mgl32.Vec3{{tri.V0, tri.V1}, {tri.V1, tri.V2}, {tri.V2, tri.V0}}
	for _, e := range edges {
		if c := advanceAgainstSegment(cap, v, e[0], e[1]); c.valid && c.t < best.t {
			best = c
		}
	}

	// (4) vertex contact via conservative advancement.
	for _, vert := range [3]mgl32.Vec3{tri.V0, tri.V1, tri.V2} {
		if c := advanceAgainstPoint(cap, v, vert); c.valid && c.t < best.t {
			best = c
		}
	}

	if !best.valid || best.t > 1 {
		return Contact{}
	}

	normal := best.normal
	if normal.Dot(v) > 0 {
		normal = normal.Mul(-1)
	}

	return Contact{
		Hit:    true,
		Depth:  0,
		Normal: normal,
		Point:  best.point,
		TOI:    mathutil.Clamp01(best.t),
	}
}

// advanceAgainstSegment subdivides [0,1] into sweepEdgeSubsteps, scans for
// the first step the capsule axis comes within radius of the edge, then
// bisects between the last miss and first hit to refine the TOI.
func advanceAgainstSegment(cap Capsule, v, a, b mgl32.Vec3) candidate {
	distAt := func(t float32) (float32, mgl32.Vec3, mgl32.Vec3) {
		p0 := cap.P0.Add(v.Mul(t))
		p1 := cap.P1.Add(v.Mul(t))
		cSeg, cEdge, _, _ := mathutil.ClosestPointSegmentSegment(p0, p1, a, b)
		return cSeg.Sub(cEdge).Len(), cSeg, cEdge
	}

	prevT := float32(0)
	dist0, _, _ := distAt(0)
	if dist0 <= cap.Radius {
		_, cSeg, cEdge := distAt(0)
		return candidate{valid: true, t: 0, point: cEdge, normal: mathutil.SafeNormalize(cSeg.Sub(cEdge), mathutil.Up)}
	}

	for i := 1; i <= sweepEdgeSubsteps; i++ {
		t := float32(i) / float32(sweepEdgeSubsteps)
		dist, cSeg, cEdge := distAt(t)
		if dist <= cap.Radius {
			lo, hi := prevT, t
			for iter := 0; iter < sweepBisectIters; iter++ {
				mid := (lo + hi) * 0.5
				d, _, _ := distAt(mid)
				if d <= cap.Radius {
					hi = mid
				} else {
					lo = mid
				}
			}
			_, cSeg, cEdge = distAt(hi)
			return candidate{valid: true, t: hi, point: cEdge, normal: mathutil.SafeNormalize(cSeg.Sub(cEdge), mathutil.Up)}
		}
		prevT = t
	}
	return candidate{}
}

func advanceAgainstPoint(cap Capsule, v, pt mgl32.Vec3) candidate {
	distAt := func(t float32) (float32, mgl32.Vec3) {
		p0 := cap.P0.Add(v.Mul(t))
		p1 := cap.P1.Add(v.Mul(t))
		cSeg, _ := mathutil.ClosestPointOnSegment(pt, p0, p1)
		return cSeg.Sub(pt).Len(), cSeg
	}

	prevT := float32(0)
	d0, _ := distAt(0)
	if d0 <= cap.Radius {
		_, cSeg := distAt(0)
		return candidate{valid: true, t: 0, point: pt, normal: mathutil.SafeNormalize(cSeg.Sub(pt), mathutil.Up)}
	}

	for i := 1; i <= sweepEdgeSubsteps; i++ {
		t := float32(i) / float32(sweepEdgeSubsteps)
		dist, _ := distAt(t)
		if dist <= cap.Radius {
			lo, hi := prevT, t
			for iter := 0; iter < sweepBisectIters; iter++ {
				mid := (lo + hi) * 0.5
				d, _ := distAt(mid)
				if d <= cap.Radius {
					hi = mid
				} else {
					lo = mid
				}
			}
			_, cSeg := distAt(hi)
			return candidate{valid: true, t: hi, point: pt, normal: mathutil.SafeNormalize(cSeg.Sub(pt), mathutil.Up)}
		}
		prevT = t
	}
	return candidate{}
}
