package collide

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

func floorTri() Triangle {
	return Triangle{
		V0: mgl32.Vec3{-10, -10, 0},
		V1: mgl32.Vec3{10, -10, 0},
		V2: mgl32.Vec3{0, 10, 0},
	}
}

func TestSphereVsTriangleHit(t *testing.T) {
	c := SphereVsTriangle(mgl32.Vec3{0, 0, 0.5}, 1.0, floorTri())
	if !c.Hit {
		t.Fatalf("expected hit")
	}
	if c.Depth <= 0 {
		t.Errorf("expected positive penetration depth, got %f", c.Depth)
	}
	if c.Normal.Z() <= 0 {
		t.Errorf("expected upward normal, got %v", c.Normal)
	}
}

func TestSphereVsTriangleMiss(t *testing.T) {
	c := SphereVsTriangle(mgl32.Vec3{0, 0, 5}, 1.0, floorTri())
	if c.Hit {
		t.Fatalf("expected no hit, got depth %f", c.Depth)
	}
}

func TestCapsuleVsTriangleDiscretePenetrating(t *testing.T) {
	cap := NewCapsule(mgl32.Vec3{0, 0, -0.2}, 0.4, 2.0)
	c := CapsuleVsTriangle(cap, floorTri())
	require.True(t, c.Hit)
	require.True(t, c.StartPenetrating)
	require.Greater(t, c.Depth, float32(0))
}

func TestCapsuleVsTriangleDiscreteNoHit(t *testing.T) {
	cap := NewCapsule(mgl32.Vec3{0, 0, 5}, 0.4, 2.0)
	c := CapsuleVsTriangle(cap, floorTri())
	require.False(t, c.Hit)
}

func TestSweepCapsuleVsTriangleFaceHit(t *testing.T) {
	cap := NewCapsule(mgl32.Vec3{0, 0, 5}, 0.4, 2.0)
	v := mgl32.Vec3{0, 0, -10}
	c := SweepCapsuleVsTriangle(cap, v, floorTri())
	require.True(t, c.Hit)
	if c.TOI <= 0 || c.TOI >= 1 {
		t.Errorf("expected TOI strictly within (0,1), got %f", c.TOI)
	}
	if c.Normal.Dot(v) > 0 {
		t.Errorf("normal should oppose velocity, normal=%v v=%v", c.Normal, v)
	}
}

func TestSweepCapsuleVsTriangleMissesWhenOutsideExtent(t *testing.T) {
	cap := NewCapsule(mgl32.Vec3{100, 100, 5}, 0.4, 2.0)
	v := mgl32.Vec3{0, 0, -10}
	c := SweepCapsuleVsTriangle(cap, v, floorTri())
	require.False(t, c.Hit)
}

func TestManifoldProjectVelocityAgainstTwoPlanes(t *testing.T) {
	m := &Manifold{}
	m.Add(mgl32.Vec3{1, 0, 0})
	m.Add(mgl32.Vec3{0, 1, 0})

	v := mgl32.Vec3{-1, -1, 0}
	out := m.ProjectVelocity(v, false, 4)

	require.LessOrEqual(t, out.Dot(mgl32.Vec3{1, 0, 0}), float32(1e-4))
	require.LessOrEqual(t, out.Dot(mgl32.Vec3{0, 1, 0}), float32(1e-4))
}

func TestManifoldDedupesSimilarNormals(t *testing.T) {
	m := &Manifold{}
	m.Add(mgl32.Vec3{1, 0, 0})
	m.Add(mgl32.Vec3{0.9999, 0.001, 0})
	require.Len(t, m.Planes, 1)
}

func TestResolveCapsuleHitDepenetratesAndProjects(t *testing.T) {
	c := Contact{Hit: true, Depth: 0.1, Normal: mgl32.Vec3{0, 0, 1}}
	depen, vel := ResolveCapsuleHit(c, mgl32.Vec3{1, 0, -5}, 0.02)
	require.InDelta(t, 0.12, depen.Z(), 1e-5)
	require.Equal(t, float32(0), vel.Z())
	require.Equal(t, float32(1), vel.X())
}
