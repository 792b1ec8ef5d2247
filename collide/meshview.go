package collide

import (
	"github.com/gekko3d/charphys/mathutil"
	"github.com/go-gl/mathgl/mgl32"
)

// TriangleMeshView is the capability interface satisfied by every
// triangle-bearing backer the core queries: a static model's inner BIH, a
// terrain tile's on-demand grid, and a dynamic object's cached world
// triangles (spec §9 "Virtual mesh interface"). Iteration is lazy,
// finite, and single-pass: a fresh Query call re-walks the backing
// structure rather than resuming a paused one.
type TriangleMeshView interface {
	// Query visits the index of every triangle whose bounding box may
	// overlap box. Indices are only meaningful to the same view's
	// Triangle method within the same call.
	Query(box mathutil.AABB, visit func(index int))
	// Triangle returns the triangle at index, as produced by the most
	// recent Query call.
	Triangle(index int) Triangle
	// Len reports how many triangles the view currently holds.
	Len() int
}

// SweepViewCapsule sweeps cap by displacement v against every triangle a
// TriangleMeshView exposes under queryBox, the single code path the static
// model, terrain tile, and dynamic object triangle sources all funnel
// through (spec §9 "Virtual mesh interface").
func SweepViewCapsule(view TriangleMeshView, cap Capsule, v mgl32.Vec3, queryBox mathutil.AABB) []Contact {
	var out []Contact
	view.Query(queryBox, func(idx int) {
		if c := SweepCapsuleVsTriangle(cap, v, view.Triangle(idx)); c.Hit {
			c.TriangleIndex = idx
			out = append(out, c)
		}
	})
	return out
}

// OverlapViewCapsule is SweepViewCapsule with zero displacement, used for
// OverlapCapsule-style zero-distance contact gathering.
func OverlapViewCapsule(view TriangleMeshView, cap Capsule, queryBox mathutil.AABB) []Contact {
	var out []Contact
	view.Query(queryBox, func(idx int) {
		if c := CapsuleVsTriangle(cap, view.Triangle(idx)); c.Hit {
			c.TriangleIndex = idx
			out = append(out, c)
		}
	})
	return out
}

// AnyHitView reports whether any triangle the view exposes under queryBox
// blocks the cap->cap+v sweep, short-circuiting on the first hit (used by
// line-of-sight tests, which only care about blocked/unblocked).
func AnyHitView(view TriangleMeshView, cap Capsule, v mgl32.Vec3, queryBox mathutil.AABB) bool {
	blocked := false
	view.Query(queryBox, func(idx int) {
		if blocked {
			return
		}
		if c := SweepCapsuleVsTriangle(cap, v, view.Triangle(idx)); c.Hit {
			blocked = true
		}
	})
	return blocked
}
