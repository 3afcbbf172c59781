// Package core holds the CPU-side viewer state: the orbit camera, the
// externally visible load state, HUD text rasterization and logging.
package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// DefaultDamping is the exponential smoothing factor applied once per
	// rendered frame to all camera motion.
	DefaultDamping = 0.1

	maxPitch = 89.0 * math.Pi / 180.0
)

// OrbitCamera orbits a fixed target point. Input mutates the goal values;
// Update advances the damped values toward them once per frame, which is
// what produces the inertial feel.
type OrbitCamera struct {
	Target   mgl32.Vec3
	Yaw      float32 // radians, around Y-up
	Pitch    float32 // radians, clamped short of the poles
	Distance float32

	goalTarget   mgl32.Vec3
	goalYaw      float32
	goalPitch    float32
	goalDistance float32

	MinDistance float32
	MaxDistance float32

	FovDeg float32
	Near   float32
	Far    float32

	RotateSpeed float32 // radians per pixel
	PanSpeed    float32 // fraction of distance per pixel
	ZoomSpeed   float32 // distance factor per wheel step
}

func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Distance:     10,
		goalDistance: 10,
		MinDistance:  0.1,
		MaxDistance:  1000,
		FovDeg:       60,
		Near:         0.1,
		Far:          1000,
		RotateSpeed:  0.005,
		PanSpeed:     0.0015,
		ZoomSpeed:    0.95,
	}
}

// FrameSphere aims the camera at the sphere center from an offset of
// radius*(2,1,2), so models of any scale fill the frame similarly.
// Clip planes and zoom limits are re-derived from the model radius.
func (c *OrbitCamera) FrameSphere(center mgl32.Vec3, radius float32) {
	if radius <= 0 {
		radius = 1
	}

	c.Target = center
	c.goalTarget = center

	// |(2,1,2)| = 3, so the eye sits at distance 3*radius.
	c.Distance = 3 * radius
	c.goalDistance = c.Distance
	c.Yaw = math.Pi / 4                   // offset X == offset Z
	c.Pitch = float32(math.Asin(1.0 / 3)) // sin(pitch) = 1/3
	c.goalYaw = c.Yaw
	c.goalPitch = c.Pitch

	c.MinDistance = 0.2 * radius
	c.MaxDistance = 30 * radius
	c.Near = 0.01 * radius
	c.Far = 100 * radius
}

// Rotate adds a pointer-drag delta (pixels) to the goal orientation.
func (c *OrbitCamera) Rotate(dx, dy float32) {
	c.goalYaw -= dx * c.RotateSpeed
	c.goalPitch += dy * c.RotateSpeed
	if c.goalPitch > maxPitch {
		c.goalPitch = maxPitch
	}
	if c.goalPitch < -maxPitch {
		c.goalPitch = -maxPitch
	}
}

// Pan shifts the orbit target in the camera plane. The step is scaled by
// the current distance so a drag covers a similar screen-space span at any
// zoom level.
func (c *OrbitCamera) Pan(dx, dy float32) {
	right, up := c.Axes()
	step := c.Distance * c.PanSpeed
	c.goalTarget = c.goalTarget.
		Add(right.Mul(-dx * step)).
		Add(up.Mul(dy * step))
}

// Zoom scales the goal distance by wheel steps, clamped so the eye cannot
// pass through the model or drift out of the far plane.
func (c *OrbitCamera) Zoom(steps float32) {
	factor := float32(math.Pow(float64(c.ZoomSpeed), float64(steps)))
	c.goalDistance *= factor
	if c.goalDistance < c.MinDistance {
		c.goalDistance = c.MinDistance
	}
	if c.goalDistance > c.MaxDistance {
		c.goalDistance = c.MaxDistance
	}
}

// Update advances the damped values toward the goals. Called exactly once
// per rendered frame.
func (c *OrbitCamera) Update(damping float32) {
	if damping <= 0 {
		damping = DefaultDamping
	}
	if damping > 1 {
		damping = 1
	}
	c.Yaw += (c.goalYaw - c.Yaw) * damping
	c.Pitch += (c.goalPitch - c.Pitch) * damping
	c.Distance += (c.goalDistance - c.Distance) * damping
	c.Target = c.Target.Add(c.goalTarget.Sub(c.Target).Mul(damping))
}

// Position derives the eye point from the damped spherical coordinates.
func (c *OrbitCamera) Position() mgl32.Vec3 {
	cp := float32(math.Cos(float64(c.Pitch)))
	dir := mgl32.Vec3{
		cp * float32(math.Sin(float64(c.Yaw))),
		float32(math.Sin(float64(c.Pitch))),
		cp * float32(math.Cos(float64(c.Yaw))),
	}
	return c.Target.Add(dir.Mul(c.Distance))
}

func (c *OrbitCamera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), c.Target, mgl32.Vec3{0, 1, 0})
}

// ViewProj builds the combined view-projection matrix for the given
// surface aspect ratio. Only matrices are recomputed per frame; the
// decoded arrays are never touched here.
func (c *OrbitCamera) ViewProj(aspect float32) mgl32.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	proj := mgl32.Perspective(mgl32.DegToRad(c.FovDeg), aspect, c.Near, c.Far)
	return proj.Mul4(c.ViewMatrix())
}

// Axes returns the camera-plane right and up vectors, used for panning and
// for billboarding point quads toward the eye.
func (c *OrbitCamera) Axes() (right, up mgl32.Vec3) {
	forward := c.Target.Sub(c.Position())
	if forward.Len() == 0 {
		return mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}
	}
	forward = forward.Normalize()
	right = forward.Cross(mgl32.Vec3{0, 1, 0})
	if right.Len() == 0 {
		right = mgl32.Vec3{1, 0, 0}
	} else {
		right = right.Normalize()
	}
	up = right.Cross(forward)
	return right, up
}
