package mathutil

import "github.com/go-gl/mathgl/mgl32"

// Up is the world-space up axis used throughout the core for walkability
// and gravity checks.
var Up = mgl32.Vec3{0, 0, 1}

// SafeNormalize returns v normalized, or fallback when v is too close to
// zero length to normalize safely (spec §4.1: "Safe-normalize returns a
// caller-supplied fallback on zero length").
func SafeNormalize(v, fallback mgl32.Vec3) mgl32.Vec3 {
	l := v.Len()
	if l <= Eps {
		return fallback
	}
	return v.Mul(1.0 / l)
}

// ApproxZero reports whether v's length is within eps of zero.
func ApproxZero(v mgl32.Vec3, eps float32) bool {
	return v.LenSqr() <= eps*eps
}
