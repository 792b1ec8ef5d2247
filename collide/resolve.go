package collide

import (
	"github.com/gekko3d/charphys/mathutil"
	"github.com/go-gl/mathgl/mgl32"
)

// ResolveCapsuleHit pops the capsule out of a contact by depth + slack
// along the normal (no separate contact offset is added), and returns the
// velocity projected onto the contact plane (spec §4.2 "Resolution").
func ResolveCapsuleHit(c Contact, velocity mgl32.Vec3, slack float32) (depenetration mgl32.Vec3, newVelocity mgl32.Vec3) {
	if !c.Hit {
		return mgl32.Vec3{}, velocity
	}
	pushout := c.Depth + slack
	if pushout < 0 {
		pushout = 0
	}
	depenetration = c.Normal.Mul(pushout)

	into := velocity.Dot(c.Normal)
	if into < 0 {
		newVelocity = velocity.Sub(c.Normal.Mul(into))
	} else {
		newVelocity = velocity
	}
	return depenetration, newVelocity
}

// Manifold accumulates a cosine-similarity-filtered set of unique contact
// normals and iteratively projects a velocity against all of them at once
// (spec §4.2 "Contact manifold").
type Manifold struct {
	Planes []mgl32.Vec3
}

// sameNormalCos is the cosine-similarity threshold below which two normals
// are treated as distinct supporting planes.
const sameNormalCos = 0.999

func (m *Manifold) Add(n mgl32.Vec3) {
	for _, existing := range m.Planes {
		if existing.Dot(n) >= sameNormalCos {
			return
		}
	}
	m.Planes = append(m.Planes, n)
}

// ProjectVelocity iteratively clips v against every plane in the manifold,
// optionally renormalizing to preserve the original speed.
func (m *Manifold) ProjectVelocity(v mgl32.Vec3, preserveSpeed bool, iterations int) mgl32.Vec3 {
	if len(m.Planes) == 0 {
		return v
	}
	speed := v.Len()
	out := v
	for iter := 0; iter < iterations; iter++ {
		changed := false
		for _, n := range m.Planes {
			into := out.Dot(n)
			if into < -mathutil.Eps {
				out = out.Sub(n.Mul(into))
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	if preserveSpeed && out.LenSqr() > mathutil.Eps*mathutil.Eps {
		out = out.Normalize().Mul(speed)
	}
	return out
}
