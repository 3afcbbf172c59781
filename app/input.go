package app

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

// dragMode tracks which mouse button is held during a pointer drag.
type dragMode int

const (
	dragNone dragMode = iota
	dragOrbit
	dragPan
)

type inputState struct {
	mode    dragMode
	lastX   float64
	lastY   float64
	tracked bool
}

// installCallbacks wires the viewer controls: left-drag orbits, right-drag
// pans, scroll zooms, R re-frames the model, Escape closes the window.
func (a *App) installCallbacks() {
	var in inputState

	a.window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		switch {
		case action == glfw.Press && button == glfw.MouseButtonLeft:
			in.mode = dragOrbit
			in.tracked = false
		case action == glfw.Press && button == glfw.MouseButtonRight:
			in.mode = dragPan
			in.tracked = false
		case action == glfw.Release:
			in.mode = dragNone
		}
	})

	a.window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		if in.mode == dragNone {
			return
		}
		if !in.tracked {
			in.lastX, in.lastY = xpos, ypos
			in.tracked = true
			return
		}
		dx := float32(xpos - in.lastX)
		dy := float32(ypos - in.lastY)
		in.lastX, in.lastY = xpos, ypos

		switch in.mode {
		case dragOrbit:
			a.camera.Rotate(dx, dy)
		case dragPan:
			a.camera.Pan(dx, dy)
		}
	})

	a.window.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		a.camera.Zoom(float32(yoff))
	})

	a.window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		switch key {
		case glfw.KeyR:
			a.Reframe()
		case glfw.KeyEscape:
			w.SetShouldClose(true)
		}
	})

	a.window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		a.Resize(width, height)
	})
}

// removeCallbacks detaches every handler installed by installCallbacks so a
// late event cannot reach released state.
func (a *App) removeCallbacks() {
	a.window.SetMouseButtonCallback(nil)
	a.window.SetCursorPosCallback(nil)
	a.window.SetScrollCallback(nil)
	a.window.SetKeyCallback(nil)
	a.window.SetFramebufferSizeCallback(nil)
}
