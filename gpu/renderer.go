package gpu

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/ColinFirth5566/3D-SFM/shaders"
)

// Renderer owns the splat pipeline, the camera uniform buffer and the HUD
// overlay. One draw call per frame for the cloud, one for the HUD.
type Renderer struct {
	ctx *Context

	pipeline      *wgpu.RenderPipeline
	cameraBuffer  *wgpu.Buffer
	cameraBinding *wgpu.BindGroup

	hud *Hud

	framesSubmitted uint64
	released        bool
}

func NewRenderer(ctx *Context) (*Renderer, error) {
	shader, err := ctx.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Splat Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.SplatWGSL},
	})
	if err != nil {
		return nil, &InitError{Stage: "splat shader", Err: err}
	}
	defer shader.Release()

	pipeline, err := ctx.Device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "Splat Pipeline",
		Vertex: wgpu.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{
				{
					ArrayStride: 12,
					StepMode:    wgpu.VertexStepModeInstance,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
					},
				},
				{
					ArrayStride: 12,
					StepMode:    wgpu.VertexStepModeInstance,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 1},
					},
				},
				{
					ArrayStride: 4,
					StepMode:    wgpu.VertexStepModeInstance,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32, Offset: 0, ShaderLocation: 2},
					},
				},
			},
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
		return nil, &InitError{Stage: "splat pipeline", Err: err}
	}

	var zero CameraUniform
	cameraBuffer, err := ctx.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "Camera Uniform",
		Contents: zero.Marshal(),
		Usage:    wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		pipeline.Release()
		return nil, &InitError{Stage: "camera buffer", Err: err}
	}

	layout := pipeline.GetBindGroupLayout(0)
	defer layout.Release()
	cameraBinding, err := ctx.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Camera Bind Group",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: cameraBuffer, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		cameraBuffer.Release()
		pipeline.Release()
		return nil, &InitError{Stage: "camera bind group", Err: err}
	}

	hud, err := NewHud(ctx)
	if err != nil {
		cameraBinding.Release()
		cameraBuffer.Release()
		pipeline.Release()
		return nil, err
	}

	return &Renderer{
		ctx:           ctx,
		pipeline:      pipeline,
		cameraBuffer:  cameraBuffer,
		cameraBinding: cameraBinding,
		hud:           hud,
	}, nil
}

func (r *Renderer) Hud() *Hud { return r.hud }

// FramesSubmitted counts presented frames. Stops advancing after Release.
func (r *Renderer) FramesSubmitted() uint64 { return r.framesSubmitted }

// Frame encodes and presents one frame: clear, draw the model if any,
// then the HUD overlay. Swapchain hiccups are skipped, not fatal.
func (r *Renderer) Frame(model *Model, cam *CameraUniform) error {
	if r.released {
		return nil
	}

	if err := r.ctx.Queue.WriteBuffer(r.cameraBuffer, 0, cam.Marshal()); err != nil {
		return err
	}

	nextTexture, err := r.ctx.Surface.GetCurrentTexture()
	if err != nil {
		// Transient during resize; the next frame reacquires.
		return nil
	}
	defer nextTexture.Release()

	view, err := nextTexture.CreateView(nil)
	if err != nil {
		return err
	}
	defer view.Release()

	encoder, err := r.ctx.Device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: 0.02, G: 0.02, B: 0.03, A: 1.0},
		}},
	})

	if model != nil && model.count > 0 {
		pass.SetPipeline(r.pipeline)
		pass.SetBindGroup(0, r.cameraBinding, nil)
		pass.SetVertexBuffer(0, model.positions, 0, wgpu.WholeSize)
		pass.SetVertexBuffer(1, model.colors, 0, wgpu.WholeSize)
		pass.SetVertexBuffer(2, model.sizes, 0, wgpu.WholeSize)
		pass.Draw(6, model.count, 0, 0)
	}

	r.hud.Draw(pass, int(r.ctx.Config.Width), int(r.ctx.Config.Height))

	if err := pass.End(); err != nil {
		return err
	}
	pass.Release()

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	defer cmd.Release()

	r.ctx.Queue.Submit(cmd)
	r.ctx.Surface.Present()
	r.framesSubmitted++
	return nil
}

// Release drops pipeline-level resources. Model buffers are owned by the
// caller and released separately, before this.
func (r *Renderer) Release() {
	if r.released {
		return
	}
	r.released = true
	r.hud.Release()
	r.cameraBinding.Release()
	r.cameraBuffer.Release()
	r.pipeline.Release()
}
