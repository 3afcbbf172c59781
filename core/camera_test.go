package core

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameSpherePlacesEyeAtOffset(t *testing.T) {
	cam := NewOrbitCamera()
	center := mgl32.Vec3{5, -2, 8}
	radius := float32(4)

	cam.FrameSphere(center, radius)

	want := center.Add(mgl32.Vec3{2, 1, 2}.Mul(radius))
	got := cam.Position()
	assert.InDelta(t, float64(want.X()), float64(got.X()), 1e-3)
	assert.InDelta(t, float64(want.Y()), float64(got.Y()), 1e-3)
	assert.InDelta(t, float64(want.Z()), float64(got.Z()), 1e-3)
	assert.InDelta(t, float64(3*radius), float64(cam.Distance), 1e-4)
}

func TestFrameSphereScalesClipPlanes(t *testing.T) {
	cam := NewOrbitCamera()
	cam.FrameSphere(mgl32.Vec3{}, 100)

	assert.Equal(t, float32(1), cam.Near)
	assert.Equal(t, float32(10000), cam.Far)
	assert.Equal(t, float32(20), cam.MinDistance)
}

func TestZoomClampsToMinDistance(t *testing.T) {
	cam := NewOrbitCamera()
	cam.FrameSphere(mgl32.Vec3{}, 10)

	// Spin the wheel hard toward the model.
	for i := 0; i < 500; i++ {
		cam.Zoom(1)
	}
	for i := 0; i < 1000; i++ {
		cam.Update(DefaultDamping)
	}

	assert.GreaterOrEqual(t, cam.Distance, cam.MinDistance-1e-4)
}

func TestDampingConvergesWithoutOvershoot(t *testing.T) {
	cam := NewOrbitCamera()
	cam.FrameSphere(mgl32.Vec3{}, 1)
	startYaw := cam.Yaw

	cam.Rotate(100, 0)
	goal := cam.goalYaw
	require.NotEqual(t, startYaw, goal)

	prev := cam.Yaw
	for i := 0; i < 200; i++ {
		cam.Update(DefaultDamping)
		// Monotonic approach toward the goal, never past it.
		if goal < startYaw {
			assert.LessOrEqual(t, cam.Yaw, prev+1e-6)
			assert.GreaterOrEqual(t, cam.Yaw, goal-1e-6)
		} else {
			assert.GreaterOrEqual(t, cam.Yaw, prev-1e-6)
			assert.LessOrEqual(t, cam.Yaw, goal+1e-6)
		}
		prev = cam.Yaw
	}
	assert.InDelta(t, float64(goal), float64(cam.Yaw), 1e-3)
}

func TestPitchClamp(t *testing.T) {
	cam := NewOrbitCamera()
	cam.FrameSphere(mgl32.Vec3{}, 1)

	cam.Rotate(0, 1e6)
	for i := 0; i < 500; i++ {
		cam.Update(DefaultDamping)
	}

	limit := 89.0 * math.Pi / 180.0
	assert.LessOrEqual(t, float64(cam.Pitch), limit+1e-4)
}

func TestPanMovesTargetInCameraPlane(t *testing.T) {
	cam := NewOrbitCamera()
	cam.FrameSphere(mgl32.Vec3{}, 1)
	before := cam.Target

	cam.Pan(50, 0)
	for i := 0; i < 200; i++ {
		cam.Update(DefaultDamping)
	}

	moved := cam.Target.Sub(before)
	require.Greater(t, moved.Len(), float32(0))

	// Panning must not change the orbit distance.
	assert.InDelta(t, 3.0, float64(cam.Distance), 1e-3)
	// The shift stays perpendicular to the view direction.
	forward := cam.Target.Sub(cam.Position()).Normalize()
	assert.InDelta(t, 0, float64(moved.Normalize().Dot(forward)), 1e-2)
}

// Changing the aspect ratio must not shift the framed center: the orbit
// target always projects to the middle of the frame.
func TestResizeKeepsTargetCentered(t *testing.T) {
	cam := NewOrbitCamera()
	cam.FrameSphere(mgl32.Vec3{3, 1, -2}, 5)

	for _, aspect := range []float32{16.0 / 9.0, 4.0 / 3.0, 1, 0.5} {
		vp := cam.ViewProj(aspect)
		clip := vp.Mul4x1(mgl32.Vec4{3, 1, -2, 1})
		ndcX := clip.X() / clip.W()
		ndcY := clip.Y() / clip.W()
		assert.InDelta(t, 0, float64(ndcX), 1e-4, "aspect %v", aspect)
		assert.InDelta(t, 0, float64(ndcY), 1e-4, "aspect %v", aspect)
	}
}
