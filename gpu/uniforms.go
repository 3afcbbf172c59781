package gpu

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// CameraUniform matches the WGSL Camera struct in shaders/splat.wgsl:
// one mat4x4 plus three vec4s, 112 bytes, std140 compatible.
type CameraUniform struct {
	ViewProj mgl32.Mat4
	Right    mgl32.Vec3
	Up       mgl32.Vec3
	// BaseRadius is the world radius of a unit-size splat
	// (0.02 * bounding radius); InvSizeScale normalizes decoded sizes.
	BaseRadius   float32
	InvSizeScale float32
}

const cameraUniformSize = 16*4 + 3*16

// Marshal serializes the uniform little-endian in shader layout order.
func (u *CameraUniform) Marshal() []byte {
	buf := make([]byte, cameraUniformSize)
	off := 0
	for _, v := range u.ViewProj {
		putF32(buf, &off, v)
	}
	putVec4(buf, &off, u.Right, 0)
	putVec4(buf, &off, u.Up, 0)
	putF32(buf, &off, u.BaseRadius)
	putF32(buf, &off, u.InvSizeScale)
	putF32(buf, &off, 0)
	putF32(buf, &off, 0)
	return buf
}

// HudUniform matches the WGSL HudParams struct in shaders/hud.wgsl.
type HudUniform struct {
	Rect   [4]float32 // x, y, w, h in pixels
	Screen [2]float32 // surface pixels
	Color  [4]float32
}

const hudUniformSize = 3 * 16

func (u *HudUniform) Marshal() []byte {
	buf := make([]byte, hudUniformSize)
	off := 0
	for _, v := range u.Rect {
		putF32(buf, &off, v)
	}
	putF32(buf, &off, u.Screen[0])
	putF32(buf, &off, u.Screen[1])
	putF32(buf, &off, 0)
	putF32(buf, &off, 0)
	for _, v := range u.Color {
		putF32(buf, &off, v)
	}
	return buf
}

func putF32(buf []byte, off *int, v float32) {
	binary.LittleEndian.PutUint32(buf[*off:], math.Float32bits(v))
	*off += 4
}

func putVec4(buf []byte, off *int, v mgl32.Vec3, w float32) {
	putF32(buf, off, v.X())
	putF32(buf, off, v.Y())
	putF32(buf, off, v.Z())
	putF32(buf, off, w)
}
