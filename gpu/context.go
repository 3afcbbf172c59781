// Package gpu owns every wgpu resource of the viewer: the device and
// surface, the splat and HUD pipelines, and the per-model vertex buffers.
package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// InitError reports that no usable graphics context could be created.
// Terminal for the current load attempt; the host decides what to do.
type InitError struct {
	Stage string
	Err   error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("render init failed (%s): %v", e.Stage, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

// Context wraps the wgpu instance chain for one window surface. Exactly
// one viewer instance may own a surface at a time.
type Context struct {
	instance *wgpu.Instance
	Surface  *wgpu.Surface
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue
	Config   *wgpu.SurfaceConfiguration

	released bool
}

// NewContext builds the instance → surface → adapter → device chain and
// configures the swapchain at the given pixel size. Every failure maps to
// an InitError so the viewer can surface it as a load error instead of
// panicking.
func NewContext(window *glfw.Window, width, height int) (*Context, error) {
	instance := wgpu.CreateInstance(nil)
	if instance == nil {
		return nil, &InitError{Stage: "instance", Err: fmt.Errorf("wgpu instance unavailable")}
	}

	surface := instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(window))

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		surface.Release()
		instance.Release()
		return nil, &InitError{Stage: "adapter", Err: err}
	}

	device, err := adapter.RequestDevice(nil)
	if err != nil {
		adapter.Release()
		surface.Release()
		instance.Release()
		return nil, &InitError{Stage: "device", Err: err}
	}
	queue := device.GetQueue()

	caps := surface.GetCapabilities(adapter)
	if len(caps.Formats) == 0 || len(caps.AlphaModes) == 0 {
		device.Release()
		adapter.Release()
		surface.Release()
		instance.Release()
		return nil, &InitError{Stage: "surface format", Err: fmt.Errorf("adapter reports no compatible surface format")}
	}
	config := &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo, // vsync
		AlphaMode:   caps.AlphaModes[0],
	}
	surface.Configure(adapter, device, config)

	return &Context{
		instance: instance,
		Surface:  surface,
		Adapter:  adapter,
		Device:   device,
		Queue:    queue,
		Config:   config,
	}, nil
}

// Resize reconfigures the swapchain. Zero dimensions (minimized window)
// are ignored.
func (c *Context) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.Config.Width = uint32(width)
	c.Config.Height = uint32(height)
	c.Surface.Configure(c.Adapter, c.Device, c.Config)
}

func (c *Context) Format() wgpu.TextureFormat {
	return c.Config.Format
}

// Release drops the context, surface last so nothing still references it.
// Idempotent.
func (c *Context) Release() {
	if c.released {
		return
	}
	c.released = true
	c.Device.Release()
	c.Adapter.Release()
	c.Surface.Release()
	c.instance.Release()
}
