package gpu

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/ColinFirth5566/3D-SFM/splat"
)

// Model holds the GPU-resident form of one decoded point cloud: three
// instance-stepped vertex buffers. Immutable after upload; discarded as a
// whole when the source changes.
type Model struct {
	positions *wgpu.Buffer
	colors    *wgpu.Buffer
	sizes     *wgpu.Buffer
	count     uint32
	released  bool
}

// UploadModel copies the decoded arrays into vertex buffers. The decoded
// cloud itself is not retained.
func UploadModel(ctx *Context, pc *splat.PointCloud) (*Model, error) {
	positions, err := ctx.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "Splat Positions",
		Contents: wgpu.ToBytes(pc.Positions),
		Usage:    wgpu.BufferUsageVertex,
	})
	if err != nil {
		return nil, &InitError{Stage: "position buffer", Err: err}
	}
	colors, err := ctx.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "Splat Colors",
		Contents: wgpu.ToBytes(pc.Colors),
		Usage:    wgpu.BufferUsageVertex,
	})
	if err != nil {
		positions.Release()
		return nil, &InitError{Stage: "color buffer", Err: err}
	}
	sizes, err := ctx.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "Splat Sizes",
		Contents: wgpu.ToBytes(pc.Sizes),
		Usage:    wgpu.BufferUsageVertex,
	})
	if err != nil {
		colors.Release()
		positions.Release()
		return nil, &InitError{Stage: "size buffer", Err: err}
	}

	return &Model{
		positions: positions,
		colors:    colors,
		sizes:     sizes,
		count:     uint32(pc.Count),
	}, nil
}

func (m *Model) Count() uint32 { return m.count }

// Release drops the vertex buffers. Idempotent so teardown and reload
// paths can both call it.
func (m *Model) Release() {
	if m == nil || m.released {
		return
	}
	m.released = true
	if m.sizes != nil {
		m.sizes.Release()
	}
	if m.colors != nil {
		m.colors.Release()
	}
	if m.positions != nil {
		m.positions.Release()
	}
}
