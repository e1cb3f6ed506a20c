package wgpu

import (
	"bytes"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gfx"
)

// scene is a device with a triangle pipeline, an 8x4 render pass and a few
// buffers, with the call log cleared after setup.
type scene struct {
	d    *Device
	rd   *recDevice
	pipe gfx.PipelineHandle
	pass gfx.RenderPassHandle
	vb   gfx.BufferHandle
	ib   gfx.BufferHandle
	ub   gfx.BufferHandle
}

func newScene(t *testing.T, opts ...gfx.Option) *scene {
	t.Helper()
	d, rd := newTestDevice(t, opts...)
	s := &scene{d: d, rd: rd}
	s.pipe = mustPipeline(t, d, trianglePipelineDesc())
	_, s.pass = renderTarget(t, d, gfx.TextureFormatRGBA8Unorm)
	s.vb = mustBuffer(t, d, gfx.BufferDesc{Type: gfx.BufferVertex, Size: 36})
	s.ib = mustBuffer(t, d, gfx.BufferDesc{Type: gfx.BufferIndex, Size: 64})
	s.ub = mustBuffer(t, d, gfx.BufferDesc{Type: gfx.BufferConstant, Size: 512})
	rd.rec.reset()
	return s
}

// recordCmds returns a finalized command buffer holding what fn records.
func recordCmds(t *testing.T, fn func(cb *gfx.CmdBuffer)) *gfx.CmdBuffer {
	t.Helper()
	cb := gfx.NewCmdBuffer()
	cb.Begin()
	fn(cb)
	if err := cb.End(); err != nil {
		t.Fatalf("End() error = %v", err)
	}
	return cb
}

func TestExecuteTriangle(t *testing.T) {
	s := newScene(t)
	cb := recordCmds(t, func(cb *gfx.CmdBuffer) {
		cb.BindRenderPass(s.pass)
		cb.BindPipeline(s.pipe)
		cb.BindVertexBuffer(0, s.vb, 0, 0)
		cb.DrawPrimitives(0, 3)
	})
	if err := s.d.ExecuteCmdBuffers(cb); err != nil {
		t.Fatalf("ExecuteCmdBuffers() error = %v", err)
	}

	want := []call{
		{"BeginRenderPass", []any{1, false}},
		{"SetViewport", []any{float32(0), float32(0), float32(8), float32(4)}},
		{"SetScissorRect", []any{uint32(0), uint32(0), uint32(8), uint32(4)}},
		{"SetStencilReference", []any{uint32(0)}},
		{"SetPipeline", nil},
		{"SetVertexBuffer", []any{uint32(0), uint64(0)}},
		{"Draw", []any{uint32(3), uint32(1), uint32(0), uint32(0)}},
		{"End", nil},
	}
	if !reflect.DeepEqual(s.rd.rec.calls, want) {
		t.Errorf("calls =\n%v\nwant\n%v", s.rd.rec.calls, want)
	}
	if cb.State() != gfx.CmdBufferSubmitted {
		t.Errorf("State() = %v, want %v", cb.State(), gfx.CmdBufferSubmitted)
	}

	if len(s.rd.pipelines) != 1 {
		t.Fatalf("render pipelines created = %d, want 1", len(s.rd.pipelines))
	}
	desc := s.rd.pipelines[0]
	if got := desc.Vertex.Buffers[0].ArrayStride; got != 12 {
		t.Errorf("ArrayStride = %d, want 12", got)
	}
	if desc.DepthStencil != nil {
		t.Errorf("DepthStencil = %+v, want nil for a color-only pass", desc.DepthStencil)
	}
	target := desc.Fragment.Targets[0]
	if target.Format != gputypes.TextureFormatRGBA8Unorm || target.Blend != nil || target.WriteMask != gputypes.ColorWriteMaskAll {
		t.Errorf("color target = %+v, want RGBA8 unblended with all channels", target)
	}
	if desc.Primitive.CullMode != gputypes.CullModeNone || desc.Primitive.FrontFace != gputypes.FrontFaceCW {
		t.Errorf("primitive = %+v, want no culling and clockwise front faces", desc.Primitive)
	}
}

func TestExecuteViewportAndScissor(t *testing.T) {
	s := newScene(t)
	scissor, err := s.d.CreateRasterizerState(gfx.RasterizerStateDesc{ScissorTest: true})
	if err != nil {
		t.Fatalf("CreateRasterizerState() error = %v", err)
	}
	cb := recordCmds(t, func(cb *gfx.CmdBuffer) {
		cb.SetViewport(9, 9, 9, 9)
		cb.BindRenderPass(s.pass)
		cb.SetViewport(0, 0, 4, 2)
		cb.SetScissor(0, 0, 4, 2)
		cb.SetRasterizerState(scissor)
		cb.SetScissor(-2, -2, 20, 20)
	})
	if err := s.d.ExecuteCmdBuffers(cb); err != nil {
		t.Fatalf("ExecuteCmdBuffers() error = %v", err)
	}

	wantViewports := []call{
		{"SetViewport", []any{float32(0), float32(0), float32(8), float32(4)}},
		{"SetViewport", []any{float32(0), float32(2), float32(4), float32(2)}},
	}
	if got := s.rd.rec.named("SetViewport"); !reflect.DeepEqual(got, wantViewports) {
		t.Errorf("viewports = %v, want %v", got, wantViewports)
	}
	// The scissor rectangle applies only once the rasterizer state
	// enables the test.
	wantScissors := []call{
		{"SetScissorRect", []any{uint32(0), uint32(0), uint32(8), uint32(4)}},
		{"SetScissorRect", []any{uint32(0), uint32(0), uint32(8), uint32(4)}},
		{"SetScissorRect", []any{uint32(0), uint32(2), uint32(4), uint32(2)}},
		{"SetScissorRect", []any{uint32(0), uint32(0), uint32(8), uint32(4)}},
	}
	if got := s.rd.rec.named("SetScissorRect"); !reflect.DeepEqual(got, wantScissors) {
		t.Errorf("scissors = %v, want %v", got, wantScissors)
	}
}

func TestExecuteIndexed(t *testing.T) {
	s := newScene(t)
	cb := recordCmds(t, func(cb *gfx.CmdBuffer) {
		cb.BindRenderPass(s.pass)
		cb.BindPipeline(s.pipe)
		cb.BindVertexBuffer(0, s.vb, 0, 12)
		cb.BindIndexBuffer(s.ib, gfx.Index16, 4)
		cb.DrawIndexedPrimitivesInstanced(6, 4, 3)
	})
	if err := s.d.ExecuteCmdBuffers(cb); err != nil {
		t.Fatalf("ExecuteCmdBuffers() error = %v", err)
	}
	want := []call{
		{"SetPipeline", nil},
		{"SetVertexBuffer", []any{uint32(0), uint64(12)}},
		{"SetIndexBuffer", []any{gputypes.IndexFormatUint16, uint64(4)}},
		{"DrawIndexed", []any{uint32(6), uint32(3), uint32(2), int32(0), uint32(0)}},
		{"End", nil},
	}
	if got := s.rd.rec.calls[4:]; !reflect.DeepEqual(got, want) {
		t.Errorf("calls =\n%v\nwant\n%v", got, want)
	}
}

func TestExecuteErrors(t *testing.T) {
	tests := []struct {
		name   string
		record func(s *scene, cb *gfx.CmdBuffer)
		setup  func(t *testing.T, s *scene) gfx.PipelineHandle
		want   error
	}{
		{"draw without pipeline", func(s *scene, cb *gfx.CmdBuffer) {
			cb.BindRenderPass(s.pass)
			cb.DrawPrimitives(0, 3)
		}, nil, gfx.ErrNoPipeline},
		{"draw outside pass", func(s *scene, cb *gfx.CmdBuffer) {
			cb.BindPipeline(s.pipe)
			cb.BindVertexBuffer(0, s.vb, 0, 0)
			cb.DrawPrimitives(0, 3)
		}, nil, gfx.ErrInvalidUsage},
		{"missing vertex buffer", func(s *scene, cb *gfx.CmdBuffer) {
			cb.BindRenderPass(s.pass)
			cb.BindPipeline(s.pipe)
			cb.DrawPrimitives(0, 3)
		}, nil, gfx.ErrInvalidUsage},
		{"missing index buffer", func(s *scene, cb *gfx.CmdBuffer) {
			cb.BindRenderPass(s.pass)
			cb.BindPipeline(s.pipe)
			cb.BindVertexBuffer(0, s.vb, 0, 0)
			cb.DrawIndexedPrimitives(3, 0)
		}, nil, gfx.ErrNoIndexBuffer},
		{"unaligned index offset", func(s *scene, cb *gfx.CmdBuffer) {
			cb.BindRenderPass(s.pass)
			cb.BindPipeline(s.pipe)
			cb.BindVertexBuffer(0, s.vb, 0, 0)
			cb.BindIndexBuffer(s.ib, gfx.Index32, 0)
			cb.DrawIndexedPrimitives(3, 6)
		}, nil, gfx.ErrInvalidUsage},
		{"index buffer as vertex buffer", func(s *scene, cb *gfx.CmdBuffer) {
			cb.BindVertexBuffer(0, s.ib, 0, 0)
		}, nil, gfx.ErrInvalidUsage},
		{"vertex buffer as index buffer", func(s *scene, cb *gfx.CmdBuffer) {
			cb.BindIndexBuffer(s.vb, gfx.Index16, 0)
		}, nil, gfx.ErrInvalidUsage},
		{"vertex slot out of range", func(s *scene, cb *gfx.CmdBuffer) {
			cb.BindVertexBuffer(maxVertexSlots, s.vb, 0, 0)
		}, nil, gfx.ErrInvalidUsage},
		{"unaligned constant offset", func(s *scene, cb *gfx.CmdBuffer) {
			cb.BindConstantBuffer(0, s.ub, 16, 0)
		}, nil, gfx.ErrInvalidUsage},
		{"constant range past end", func(s *scene, cb *gfx.CmdBuffer) {
			cb.BindConstantBuffer(0, s.ub, 256, 512)
		}, nil, gfx.ErrInvalidUsage},
		{"constant index out of range", func(s *scene, cb *gfx.CmdBuffer) {
			cb.BindConstantBuffer(maxConstantSlots, s.ub, 0, 0)
		}, nil, gfx.ErrInvalidUsage},
		{"unknown pass", func(s *scene, cb *gfx.CmdBuffer) {
			cb.BindRenderPass(gfx.RenderPassHandle(0x00F00001))
		}, nil, gfx.ErrInvalidHandle},
		{"missing texture", func(s *scene, cb *gfx.CmdBuffer) {
			cb.BindRenderPass(s.pass)
			cb.BindVertexBuffer(0, s.vb, 0, 0)
			cb.DrawPrimitives(0, 3)
		}, func(t *testing.T, s *scene) gfx.PipelineHandle {
			desc := trianglePipelineDesc()
			desc.Bindings = []gfx.ResourceBinding{{Kind: gfx.BindingTexture, Slot: 0}}
			return mustPipeline(t, s.d, desc)
		}, gfx.ErrInvalidUsage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newScene(t)
			var pipe gfx.PipelineHandle
			if tt.setup != nil {
				pipe = tt.setup(t, s)
				s.rd.rec.reset()
			}
			cb := recordCmds(t, func(cb *gfx.CmdBuffer) {
				if pipe != 0 {
					cb.BindPipeline(pipe)
				}
				tt.record(s, cb)
			})
			err := s.d.ExecuteCmdBuffers(cb)
			if !errors.Is(err, tt.want) {
				t.Fatalf("ExecuteCmdBuffers() error = %v, want %v", err, tt.want)
			}
			if got := s.rd.rec.named("DiscardEncoding"); len(got) != 1 {
				t.Errorf("DiscardEncoding calls = %d, want 1", len(got))
			}
			if cb.State() == gfx.CmdBufferSubmitted {
				t.Error("failed buffer marked submitted")
			}
		})
	}
}

func TestExecuteWrongStateKind(t *testing.T) {
	s := newScene(t)
	raster, err := s.d.CreateRasterizerState(gfx.RasterizerStateDesc{})
	if err != nil {
		t.Fatal(err)
	}
	cb := recordCmds(t, func(cb *gfx.CmdBuffer) { cb.SetBlendState(raster) })
	if err := s.d.ExecuteCmdBuffers(cb); !errors.Is(err, gfx.ErrInvalidUsage) {
		t.Errorf("ExecuteCmdBuffers() error = %v, want ErrInvalidUsage", err)
	}
}

func TestExecutePipelineVariants(t *testing.T) {
	s := newScene(t)
	alpha, err := s.d.CreateBlendState(gfx.AlphaBlendState())
	if err != nil {
		t.Fatal(err)
	}
	frame := func() *gfx.CmdBuffer {
		return recordCmds(t, func(cb *gfx.CmdBuffer) {
			cb.BindRenderPass(s.pass)
			cb.BindPipeline(s.pipe)
			cb.BindVertexBuffer(0, s.vb, 0, 0)
			cb.DrawPrimitives(0, 3)
			cb.DrawPrimitives(3, 3)
			cb.SetBlendState(alpha)
			cb.DrawPrimitives(0, 3)
			cb.BindVertexBuffer(0, s.vb, 16, 0)
			cb.DrawPrimitives(0, 2)
		})
	}
	if err := s.d.ExecuteCmdBuffers(frame()); err != nil {
		t.Fatalf("ExecuteCmdBuffers() error = %v", err)
	}
	if got := len(s.rd.pipelines); got != 3 {
		t.Fatalf("render pipelines created = %d, want 3", got)
	}
	if got := len(s.rd.rec.named("SetPipeline")); got != 3 {
		t.Errorf("SetPipeline calls = %d, want 3", got)
	}
	if s.rd.pipelines[1].Fragment.Targets[0].Blend == nil {
		t.Error("alpha blend variant has no blend state")
	}
	if got := s.rd.pipelines[2].Vertex.Buffers[0].ArrayStride; got != 16 {
		t.Errorf("override ArrayStride = %d, want 16", got)
	}

	if err := s.d.ExecuteCmdBuffers(frame()); err != nil {
		t.Fatalf("second ExecuteCmdBuffers() error = %v", err)
	}
	if got := len(s.rd.pipelines); got != 3 {
		t.Errorf("render pipelines after second frame = %d, want 3", got)
	}
	if s.d.variants.hits == 0 {
		t.Error("variant cache hits = 0")
	}

	if err := s.d.DeletePipeline(s.pipe); err != nil {
		t.Fatal(err)
	}
	if got := s.d.variants.len(); got != 0 {
		t.Errorf("cached variants after delete = %d, want 0", got)
	}
	if got := s.rd.destroyed["pipeline"]; got != 3 {
		t.Errorf("DestroyRenderPipeline calls = %d, want 3", got)
	}
}

func TestExecuteDepthStencilVariant(t *testing.T) {
	s := newScene(t)
	color := mustTexture(t, s.d, gfx.TextureDesc{Type: gfx.Texture2D, Format: gfx.TextureFormatBGRA8Unorm, Width: 8, Height: 4, RenderTarget: true})
	depth := mustTexture(t, s.d, gfx.TextureDesc{Type: gfx.Texture2D, Format: gfx.TextureFormatDepth24Stencil8, Width: 8, Height: 4, RenderTarget: true})
	pass := mustPass(t, s.d, gfx.RenderPassDesc{
		Colors:  []gfx.ColorAttachment{{Texture: color}},
		Depth:   &gfx.DepthAttachment{Texture: depth, Load: gfx.LoadActionClear, ClearDepth: 1},
		Stencil: &gfx.StencilAttachment{Texture: depth},
	})
	dsDesc := gfx.DefaultDepthStencilState()
	dsDesc.StencilRef = 7
	ds, err := s.d.CreateDepthStencilState(dsDesc)
	if err != nil {
		t.Fatal(err)
	}
	raster, err := s.d.CreateRasterizerState(gfx.RasterizerStateDesc{DepthBias: 2, Cull: gfx.CullBack, FrontCounterClockwise: true})
	if err != nil {
		t.Fatal(err)
	}
	s.rd.rec.reset()

	cb := recordCmds(t, func(cb *gfx.CmdBuffer) {
		cb.BindRenderPass(pass)
		cb.SetDepthStencilState(ds)
		cb.SetRasterizerState(raster)
		cb.BindPipeline(s.pipe)
		cb.BindVertexBuffer(0, s.vb, 0, 0)
		cb.DrawPrimitives(0, 3)
	})
	if err := s.d.ExecuteCmdBuffers(cb); err != nil {
		t.Fatalf("ExecuteCmdBuffers() error = %v", err)
	}
	if got := s.rd.rec.calls[0]; !reflect.DeepEqual(got, call{"BeginRenderPass", []any{1, true}}) {
		t.Errorf("first call = %v, want BeginRenderPass with depth", got)
	}
	refs := s.rd.rec.named("SetStencilReference")
	if got := refs[len(refs)-1].args[0]; got != uint32(7) {
		t.Errorf("stencil reference = %v, want 7", got)
	}
	desc := s.rd.pipelines[0]
	dss := desc.DepthStencil
	if dss == nil {
		t.Fatal("DepthStencil = nil")
	}
	if dss.Format != gputypes.TextureFormatDepth24PlusStencil8 || !dss.DepthWriteEnabled ||
		dss.DepthCompare != gputypes.CompareFunctionLess || dss.DepthBias != 2 {
		t.Errorf("DepthStencil = %+v", dss)
	}
	if desc.Primitive.CullMode != gputypes.CullModeBack || desc.Primitive.FrontFace != gputypes.FrontFaceCCW {
		t.Errorf("primitive = %+v, want back culling with CCW front faces", desc.Primitive)
	}
	if desc.Fragment.Targets[0].Format != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("target format = %v, want BGRA8Unorm", desc.Fragment.Targets[0].Format)
	}
}

func TestExecutePushConstants(t *testing.T) {
	s := newScene(t)
	desc := trianglePipelineDesc()
	desc.Bindings = []gfx.ResourceBinding{{Kind: gfx.BindingPushConstants}}
	pipe := mustPipeline(t, s.d, desc)

	first := bytes.Repeat([]byte{1}, 16)
	second := bytes.Repeat([]byte{2}, 16)
	cb := recordCmds(t, func(cb *gfx.CmdBuffer) {
		cb.BindRenderPass(s.pass)
		cb.BindPipeline(pipe)
		cb.BindVertexBuffer(0, s.vb, 0, 0)
		cb.DrawPrimitives(0, 3)
		cb.BindPushConstants(0, gfx.StageVertex, first)
		cb.DrawPrimitives(0, 3)
		cb.BindPushConstants(16, gfx.StageVertex, second)
		cb.DrawPrimitives(0, 3)
	})
	if err := s.d.ExecuteCmdBuffers(cb); err != nil {
		t.Fatalf("ExecuteCmdBuffers() error = %v", err)
	}

	if got := len(s.rd.bindGroups); got != 3 {
		t.Fatalf("bind groups = %d, want 3", got)
	}
	for i, wantOffset := range []uint64{0, 256, 512} {
		e := s.rd.bindGroups[i].Entries[0]
		res, ok := e.Resource.(gputypes.BufferBinding)
		if !ok || e.Binding != PushConstantBinding || res.Offset != wantOffset || res.Size != gfx.MaxPushConstantSize {
			t.Errorf("bind group %d entry = %+v, want push constants at offset %d", i, e, wantOffset)
		}
	}

	buf := s.rd.buffers["gfx push constants"]
	if buf == nil {
		t.Fatal("push-constant buffer not created")
	}
	data := s.rd.contents(t, buf, 3*pushConstantStride)
	if !bytes.Equal(data[:16], make([]byte, 16)) {
		t.Errorf("slot 0 = %v, want zeros", data[:16])
	}
	if !bytes.Equal(data[256:272], first) || !bytes.Equal(data[272:288], make([]byte, 16)) {
		t.Errorf("slot 1 = %v, want first payload only", data[256:288])
	}
	if !bytes.Equal(data[512:528], first) || !bytes.Equal(data[528:544], second) {
		t.Errorf("slot 2 = %v, want both payloads", data[512:544])
	}
	if got := s.rd.destroyed["bind group"]; got != 3 {
		t.Errorf("DestroyBindGroup calls = %d, want 3", got)
	}
	if s.d.exec.pushBuf != nil {
		t.Error("push-constant buffer kept after submission")
	}
}

func TestExecuteTexturesAndSamplers(t *testing.T) {
	s := newScene(t)
	desc := trianglePipelineDesc()
	desc.Bindings = []gfx.ResourceBinding{
		{Kind: gfx.BindingConstantBuffer, Slot: 1},
		{Kind: gfx.BindingTexture, Slot: 0, Stages: gfx.StageFragment},
		{Kind: gfx.BindingSampler, Slot: 0, Stages: gfx.StageFragment},
		{Kind: gfx.BindingTexture, Slot: 1, Stages: gfx.StageFragment},
		{Kind: gfx.BindingSampler, Slot: 1, Stages: gfx.StageFragment},
	}
	pipe := mustPipeline(t, s.d, desc)
	cube := mustTexture(t, s.d, gfx.TextureDesc{Type: gfx.TextureCube, Format: gfx.TextureFormatRGBA8Unorm, Width: 2, Height: 2})
	shadow := mustTexture(t, s.d, gfx.TextureDesc{Type: gfx.Texture2D, Format: gfx.TextureFormatDepth32Float, Width: 2, Height: 2})
	linear, err := s.d.CreateSampler(gfx.SamplerDesc{MinFilter: gfx.FilterLinear})
	if err != nil {
		t.Fatal(err)
	}
	compare, err := s.d.CreateSampler(gfx.SamplerDesc{Compare: true, CompareFunc: gfx.CompareLessEqual})
	if err != nil {
		t.Fatal(err)
	}

	cb := recordCmds(t, func(cb *gfx.CmdBuffer) {
		cb.BindRenderPass(s.pass)
		cb.BindPipeline(pipe)
		cb.BindVertexBuffer(0, s.vb, 0, 0)
		cb.BindConstantBuffer(1, s.ub, 256, 0)
		cb.BindTextures(0, []gfx.TextureHandle{cube, shadow})
		cb.BindSamplers(0, []gfx.SamplerHandle{linear, compare})
		cb.DrawPrimitives(0, 3)
		cb.DrawPrimitives(0, 3)
	})
	if err := s.d.ExecuteCmdBuffers(cb); err != nil {
		t.Fatalf("ExecuteCmdBuffers() error = %v", err)
	}

	if got := len(s.rd.bindGroups); got != 1 {
		t.Fatalf("bind groups = %d, want 1 for unchanged bindings", got)
	}
	var bindings []uint32
	for _, e := range s.rd.bindGroups[0].Entries {
		bindings = append(bindings, e.Binding)
	}
	if want := []uint32{1, 16, 32, 17, 33}; !reflect.DeepEqual(bindings, want) {
		t.Errorf("bindings = %v, want %v", bindings, want)
	}
	if res := s.rd.bindGroups[0].Entries[0].Resource.(gputypes.BufferBinding); res.Offset != 256 || res.Size != 256 {
		t.Errorf("constant binding = %+v, want offset 256 size 256", res)
	}

	layout := s.rd.layouts[len(s.rd.layouts)-1].Entries
	if tex := layout[1].Texture; tex == nil || tex.ViewDimension != gputypes.TextureViewDimensionCube {
		t.Errorf("texture 0 layout = %+v, want a cube view", tex)
	}
	if tex := layout[3].Texture; tex == nil || tex.SampleType != gputypes.TextureSampleTypeDepth {
		t.Errorf("texture 1 layout = %+v, want depth sampling", tex)
	}
	if smp := layout[2].Sampler; smp == nil || smp.Type != gputypes.SamplerBindingTypeFiltering {
		t.Errorf("sampler 0 layout = %+v, want filtering", smp)
	}
	if smp := layout[4].Sampler; smp == nil || smp.Type != gputypes.SamplerBindingTypeComparison {
		t.Errorf("sampler 1 layout = %+v, want comparison", smp)
	}
	if buf := layout[0].Buffer; buf == nil || buf.Type != gputypes.BufferBindingTypeUniform {
		t.Errorf("constant layout = %+v, want uniform", buf)
	}
}

func TestExecuteResetsPerStream(t *testing.T) {
	s := newScene(t)
	first := recordCmds(t, func(cb *gfx.CmdBuffer) {
		cb.BindRenderPass(s.pass)
		cb.BindPipeline(s.pipe)
		cb.BindVertexBuffer(0, s.vb, 0, 0)
		cb.DrawPrimitives(0, 3)
	})
	second := recordCmds(t, func(cb *gfx.CmdBuffer) {
		cb.BindRenderPass(s.pass)
		cb.DrawPrimitives(0, 3)
	})
	err := s.d.ExecuteCmdBuffers(first, second)
	if !errors.Is(err, gfx.ErrNoPipeline) {
		t.Fatalf("ExecuteCmdBuffers() error = %v, want ErrNoPipeline", err)
	}
	if !strings.Contains(err.Error(), "command buffer 1") {
		t.Errorf("error = %q, want the failing buffer index", err)
	}
	if first.State() == gfx.CmdBufferSubmitted {
		t.Error("buffer of a failed batch marked submitted")
	}
}

func TestExecuteNotFinalized(t *testing.T) {
	s := newScene(t)
	open := gfx.NewCmdBuffer()
	open.Begin()
	if err := s.d.ExecuteCmdBuffers(open); !errors.Is(err, gfx.ErrNotFinalized) {
		t.Errorf("ExecuteCmdBuffers() error = %v, want ErrNotFinalized", err)
	}
	if len(s.rd.rec.calls) != 0 {
		t.Errorf("calls for a rejected batch: %v", s.rd.rec.calls)
	}
}

func TestExecuteDebugLog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	d, _ := newTestDevice(t, gfx.WithLogger(logger), gfx.WithDebug(true))
	cb := recordCmds(t, func(cb *gfx.CmdBuffer) { cb.SetViewport(0, 0, 1, 1) })
	if err := d.ExecuteCmdBuffers(cb); err != nil {
		t.Fatalf("ExecuteCmdBuffers() error = %v", err)
	}
	if !strings.Contains(buf.String(), "wgpu: command") || !strings.Contains(buf.String(), "Viewport") {
		t.Errorf("log output = %q, want the viewport command", buf.String())
	}
}
