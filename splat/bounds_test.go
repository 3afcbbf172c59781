package splat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoundingSphereEmpty(t *testing.T) {
	center, radius := BoundingSphere(nil)
	assert.Equal(t, float32(0), radius)
	assert.Equal(t, float32(0), center.Len())
}

func TestBoundingSphereSinglePoint(t *testing.T) {
	center, radius := BoundingSphere([]float32{3, -2, 7})
	assert.Equal(t, float32(3), center.X())
	assert.Equal(t, float32(-2), center.Y())
	assert.Equal(t, float32(7), center.Z())
	assert.Equal(t, float32(0), radius)
}

func TestBoundingSphereSymmetricPair(t *testing.T) {
	positions := []float32{
		-1, 0, 0,
		1, 0, 0,
	}
	center, radius := BoundingSphere(positions)
	assert.InDelta(t, 0, float64(center.X()), 1e-6)
	assert.InDelta(t, 1, float64(radius), 1e-6)
}

func TestBoundingSphereContainsAllPoints(t *testing.T) {
	positions := []float32{
		0, 0, 0,
		10, 0, 0,
		0, 5, 0,
		0, 0, -3,
		2, 2, 2,
	}
	center, radius := BoundingSphere(positions)

	for i := 0; i < len(positions)/3; i++ {
		dx := positions[3*i+0] - center.X()
		dy := positions[3*i+1] - center.Y()
		dz := positions[3*i+2] - center.Z()
		distSq := dx*dx + dy*dy + dz*dz
		assert.LessOrEqual(t, distSq, radius*radius+1e-4)
	}
}
