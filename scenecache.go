package charphys

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/charphys/collide"
)

// sceneCacheMagic identifies the scene-cache binary format: the magic, a
// uint32 triangle count, then a flat array of fixed-size triangle records
// (no AABB index is stored). Grounded on the
// teacher's fixed-layout binary encoding in voxelrt/rt/bvh/builder.go
// (BVHNode.ToBytes, little-endian throughout).
var sceneCacheMagic = [8]byte{'W', 'M', 'D', 'D', '1', '.', '0', 0}

// cacheTriangleSize is the on-disk size of one triangle record: 3 vertices
// * 3 float32 + double-sided byte + 3 padding + mask uint32.
const cacheTriangleSize = 3*3*4 + 4 + 4

// SaveSceneCache encodes triangles into the WMDD_1.0-style binary format
// and returns the bytes (spec §6). Round-tripping through LoadSceneCache
// reproduces an identical triangle set byte-for-byte (spec §8 invariant 7).
func SaveSceneCache(triangles []collide.Triangle) []byte {
	buf := make([]byte, 0, len(sceneCacheMagic)+4+len(triangles)*cacheTriangleSize)
	buf = append(buf, sceneCacheMagic[:]...)

	count := make([]byte, 4)
	binary.LittleEndian.PutUint32(count, uint32(len(triangles)))
	buf = append(buf, count...)

	for _, t := range triangles {
		buf = appendVec3(buf, t.V0)
		buf = appendVec3(buf, t.V1)
		buf = appendVec3(buf, t.V2)
		flags := uint32(0)
		if t.DoubleSided {
			flags = 1
		}
		buf = appendUint32(buf, flags)
		buf = appendUint32(buf, t.Mask)
	}
	return buf
}

// LoadSceneCache decodes a buffer produced by SaveSceneCache, validating
// the magic header.
func LoadSceneCache(data []byte) ([]collide.Triangle, error) {
	if len(data) < len(sceneCacheMagic)+4 {
		return nil, newPhysError(KindConfigInvalid, "scene cache: truncated header", nil)
	}
	if !bytes.Equal(data[:len(sceneCacheMagic)], sceneCacheMagic[:]) {
		return nil, newPhysError(KindConfigInvalid, "scene cache: bad magic", nil)
	}
	offset := len(sceneCacheMagic)
	count := binary.LittleEndian.Uint32(data[offset : offset+4])
	offset += 4

	want := int(count) * cacheTriangleSize
	if len(data[offset:]) < want {
		return nil, newPhysError(KindConfigInvalid, fmt.Sprintf("scene cache: expected %d triangle bytes, have %d", want, len(data[offset:])), nil)
	}

	tris := make([]collide.Triangle, count)
	for i := range tris {
		v0, offset2 := readVec3(data, offset)
		v1, offset3 := readVec3(data, offset2)
		v2, offset4 := readVec3(data, offset3)
		flags := binary.LittleEndian.Uint32(data[offset4 : offset4+4])
		mask := binary.LittleEndian.Uint32(data[offset4+4 : offset4+8])
		offset = offset4 + 8

		tris[i] = collide.Triangle{V0: v0, V1: v1, V2: v2, DoubleSided: flags&1 != 0, Mask: mask}
	}
	return tris, nil
}

func appendVec3(buf []byte, v mgl32.Vec3) []byte {
	buf = appendFloat32(buf, v.X())
	buf = appendFloat32(buf, v.Y())
	buf = appendFloat32(buf, v.Z())
	return buf
}

func appendFloat32(buf []byte, f float32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], math.Float32bits(f))
	return append(buf, b[:]...)
}

func appendUint32(buf []byte, v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return append(buf, b[:]...)
}

func readVec3(data []byte, offset int) (mgl32.Vec3, int) {
	x := math.Float32frombits(binary.LittleEndian.Uint32(data[offset : offset+4]))
	y := math.Float32frombits(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
	z := math.Float32frombits(binary.LittleEndian.Uint32(data[offset+8 : offset+12]))
	return mgl32.Vec3{x, y, z}, offset + 12
}
