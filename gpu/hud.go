package gpu

import (
	"image"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/ColinFirth5566/3D-SFM/shaders"
)

// Hud draws the rasterized status text as an alpha-blended quad in the
// top-left corner of the surface.
type Hud struct {
	ctx *Context

	pipeline *wgpu.RenderPipeline
	sampler  *wgpu.Sampler
	uniform  *wgpu.Buffer

	texture   *wgpu.Texture
	view      *wgpu.TextureView
	bindGroup *wgpu.BindGroup
	texW      int
	texH      int

	visible  bool
	released bool
}

func NewHud(ctx *Context) (*Hud, error) {
	shader, err := ctx.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "HUD Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.HudWGSL},
	})
	if err != nil {
		return nil, &InitError{Stage: "hud shader", Err: err}
	}
	defer shader.Release()

	pipeline, err := ctx.Device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "HUD Pipeline",
		Vertex: wgpu.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format: ctx.Format(),
				Blend: &wgpu.BlendState{
					Color: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorSrcAlpha,
						DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
						Operation: wgpu.BlendOperationAdd,
					},
					Alpha: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorOne,
						DstFactor: wgpu.BlendFactorOne,
						Operation: wgpu.BlendOperationAdd,
					},
				},
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyTriangleList,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, &InitError{Stage: "hud pipeline", Err: err}
	}

	sampler, err := ctx.Device.CreateSampler(&wgpu.SamplerDescriptor{
		MinFilter:     wgpu.FilterModeLinear,
		MagFilter:     wgpu.FilterModeLinear,
		MaxAnisotropy: 1,
	})
	if err != nil {
		pipeline.Release()
		return nil, &InitError{Stage: "hud sampler", Err: err}
	}

	var zero HudUniform
	uniform, err := ctx.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "HUD Uniform",
		Contents: zero.Marshal(),
		Usage:    wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		sampler.Release()
		pipeline.Release()
		return nil, &InitError{Stage: "hud uniform", Err: err}
	}

	return &Hud{
		ctx:      ctx,
		pipeline: pipeline,
		sampler:  sampler,
		uniform:  uniform,
	}, nil
}

// SetMask uploads a new text mask. Passing nil hides the overlay.
func (h *Hud) SetMask(img *image.Alpha) error {
	if img == nil {
		h.visible = false
		return nil
	}

	w, h2 := img.Bounds().Dx(), img.Bounds().Dy()
	if h.texture == nil || w != h.texW || h2 != h.texH {
		if err := h.recreateTexture(w, h2); err != nil {
			return err
		}
	}

	if err := h.ctx.Queue.WriteTexture(
		h.texture.AsImageCopy(),
		img.Pix,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(img.Stride),
			RowsPerImage: uint32(h2),
		},
		&wgpu.Extent3D{Width: uint32(w), Height: uint32(h2), DepthOrArrayLayers: 1},
	); err != nil {
		return err
	}
	h.visible = true
	return nil
}

func (h *Hud) recreateTexture(w, ht int) error {
	h.dropTexture()

	texture, err := h.ctx.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "HUD Text Mask",
		Size:          wgpu.Extent3D{Width: uint32(w), Height: uint32(ht), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatR8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return &InitError{Stage: "hud texture", Err: err}
	}
	view, err := texture.CreateView(nil)
	if err != nil {
		texture.Release()
		return &InitError{Stage: "hud texture view", Err: err}
	}

	layout := h.pipeline.GetBindGroupLayout(0)
	defer layout.Release()
	bindGroup, err := h.ctx.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "HUD Bind Group",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: h.uniform, Size: wgpu.WholeSize},
			{Binding: 1, TextureView: view},
			{Binding: 2, Sampler: h.sampler},
		},
	})
	if err != nil {
		view.Release()
		texture.Release()
		return &InitError{Stage: "hud bind group", Err: err}
	}

	h.texture = texture
	h.view = view
	h.bindGroup = bindGroup
	h.texW = w
	h.texH = ht
	return nil
}

// Draw appends the HUD quad to an open render pass.
func (h *Hud) Draw(pass *wgpu.RenderPassEncoder, surfaceW, surfaceH int) {
	if !h.visible || h.bindGroup == nil {
		return
	}

	u := HudUniform{
		Rect:   [4]float32{10, 10, float32(h.texW), float32(h.texH)},
		Screen: [2]float32{float32(surfaceW), float32(surfaceH)},
		Color:  [4]float32{1, 1, 1, 0.9},
	}
	// A failed uniform write only stales the overlay for one frame.
	_ = h.ctx.Queue.WriteBuffer(h.uniform, 0, u.Marshal())

	pass.SetPipeline(h.pipeline)
	pass.SetBindGroup(0, h.bindGroup, nil)
	pass.Draw(6, 1, 0, 0)
}

func (h *Hud) dropTexture() {
	if h.bindGroup != nil {
		h.bindGroup.Release()
		h.bindGroup = nil
	}
	if h.view != nil {
		h.view.Release()
		h.view = nil
	}
	if h.texture != nil {
		h.texture.Release()
		h.texture = nil
	}
}

func (h *Hud) Release() {
	if h.released {
		return
	}
	h.released = true
	h.dropTexture()
	h.uniform.Release()
	h.sampler.Release()
	h.pipeline.Release()
}
