package splat

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// BoundingSphere returns the centroid of the point set and the maximum
// distance from it. Not minimal, but tight enough to auto-frame a camera
// and derive a model-proportional base point size.
func BoundingSphere(positions []float32) (center mgl32.Vec3, radius float32) {
	n := len(positions) / 3
	if n == 0 {
		return mgl32.Vec3{}, 0
	}

	var sx, sy, sz float64
	for i := 0; i < n; i++ {
		sx += float64(positions[3*i+0])
		sy += float64(positions[3*i+1])
		sz += float64(positions[3*i+2])
	}
	center = mgl32.Vec3{
		float32(sx / float64(n)),
		float32(sy / float64(n)),
		float32(sz / float64(n)),
	}

	var maxSq float64
	for i := 0; i < n; i++ {
		dx := float64(positions[3*i+0] - center.X())
		dy := float64(positions[3*i+1] - center.Y())
		dz := float64(positions[3*i+2] - center.Z())
		if d := dx*dx + dy*dy + dz*dz; d > maxSq {
			maxSq = d
		}
	}
	return center, float32(math.Sqrt(maxSq))
}
