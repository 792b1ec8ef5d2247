package charphys

import "github.com/go-gl/mathgl/mgl32"

// ToInternal converts a world-frame position into the internal (model-
// file) frame: mirrored across the map midpoint on X and Y (spec §4.9).
func ToInternal(worldPos mgl32.Vec3, mapMid float32) mgl32.Vec3 {
	return mgl32.Vec3{mapMid - worldPos.X(), mapMid - worldPos.Y(), worldPos.Z()}
}

// ToWorld converts an internal-frame position back to the world frame.
// The mirror transform is its own inverse.
func ToWorld(internalPos mgl32.Vec3, mapMid float32) mgl32.Vec3 {
	return ToInternal(internalPos, mapMid)
}

// ToInternalDir converts a world-frame direction into the internal frame:
// X and Y flip, Z is unchanged (spec §4.9: "directions flip X and Y only").
func ToInternalDir(worldDir mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{-worldDir.X(), -worldDir.Y(), worldDir.Z()}
}

// ToWorldDir converts an internal-frame direction back to world. The flip
// is its own inverse.
func ToWorldDir(internalDir mgl32.Vec3) mgl32.Vec3 {
	return ToInternalDir(internalDir)
}
