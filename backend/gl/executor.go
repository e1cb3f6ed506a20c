package gl

import (
	"fmt"

	"github.com/gogpu/gfx"
)

type vertexBinding struct {
	id             uint32
	stride, offset uint32
}

type indexBinding struct {
	id     uint32
	typ    Enum
	offset uint32
}

// executor replays one decoded command stream. Transient state is reset at
// the start of every stream, and state commands are applied as recorded
// without filtering redundant calls.
type executor struct {
	d *Device

	pipeline    pipeline
	hasPipeline bool

	index    indexBinding
	hasIndex bool

	// vertex holds bindings by slot, applied again whenever a pipeline is
	// bound since attribute pointers live in the pipeline's vertex array.
	vertex map[uint32]vertexBinding

	raster, depth, blend *stateBlock
}

func (e *executor) reset() {
	e.pipeline, e.hasPipeline = pipeline{}, false
	e.index, e.hasIndex = indexBinding{}, false
	if e.vertex == nil {
		e.vertex = make(map[uint32]vertexBinding)
	}
	clear(e.vertex)
	e.raster, e.depth, e.blend = nil, nil, nil
}

func (e *executor) execute(cmd gfx.Command) error {
	if e.d.debug {
		e.d.log.Debug("gl: command", "type", cmd.Type(), "cmd", cmd)
	}
	f := e.d.f

	switch c := cmd.(type) {
	case gfx.ViewportCommand:
		f.Viewport(c.X, c.Y, c.Width, c.Height)
	case gfx.ScissorCommand:
		f.Scissor(c.X, c.Y, c.Width, c.Height)
	case gfx.SetRasterizerStateCommand:
		s, err := e.state(c.State, gfx.StateRasterizer)
		if err != nil {
			return err
		}
		s.raster.apply(f)
		e.raster = s
	case gfx.SetDepthStencilStateCommand:
		s, err := e.state(c.State, gfx.StateDepthStencil)
		if err != nil {
			return err
		}
		s.depth.apply(f)
		e.depth = s
	case gfx.SetBlendStateCommand:
		s, err := e.state(c.State, gfx.StateBlend)
		if err != nil {
			return err
		}
		s.blend.apply(f)
		e.blend = s
	case gfx.BindPipelineCommand:
		return e.bindPipeline(c.Pipeline)
	case gfx.BindRenderPassCommand:
		return e.bindRenderPass(c.RenderPass)
	case gfx.BindPushConstantsCommand:
		if int(c.Offset)+len(c.Data) > gfx.MaxPushConstantSize {
			return fmt.Errorf("%w: %d bytes at offset %d", gfx.ErrPushConstantSize, len(c.Data), c.Offset)
		}
		f.BindBuffer(UNIFORM_BUFFER, e.d.pushConstants)
		f.BufferSubData(UNIFORM_BUFFER, int(c.Offset), c.Data)
		f.BindBufferBase(UNIFORM_BUFFER, PushConstantBinding, e.d.pushConstants)
	case gfx.BindVertexBufferCommand:
		return e.bindVertexBuffer(c.Slot, c.VertexBufferBinding)
	case gfx.BindVertexBuffersCommand:
		for i, b := range c.Buffers {
			if err := e.bindVertexBuffer(c.StartSlot+uint32(i), b); err != nil { //nolint:gosec // G115: count fits the stream
				return err
			}
		}
	case gfx.BindIndexBufferCommand:
		return e.bindIndexBuffer(c)
	case gfx.BindConstantBufferCommand:
		return e.bindConstantBuffer(c)
	case gfx.BindTextureCommand:
		return e.bindTexture(c.Index, c.Texture)
	case gfx.BindTexturesCommand:
		for i, t := range c.Textures {
			if err := e.bindTexture(c.StartIndex+uint32(i), t); err != nil { //nolint:gosec // G115: count fits the stream
				return err
			}
		}
	case gfx.BindSamplerCommand:
		return e.bindSampler(c.Index, c.Sampler)
	case gfx.BindSamplersCommand:
		for i, s := range c.Samplers {
			if err := e.bindSampler(c.StartIndex+uint32(i), s); err != nil { //nolint:gosec // G115: count fits the stream
				return err
			}
		}
	case gfx.DrawCommand:
		if !e.hasPipeline {
			return gfx.ErrNoPipeline
		}
		f.DrawArrays(e.pipeline.topology, int32(c.Start), int32(c.Count)) //nolint:gosec // G115: GL takes signed counts
	case gfx.DrawInstancedCommand:
		if !e.hasPipeline {
			return gfx.ErrNoPipeline
		}
		//nolint:gosec // G115: GL takes signed counts
		f.DrawArraysInstanced(e.pipeline.topology, int32(c.Start), int32(c.Count), int32(c.Instances))
	case gfx.DrawIndexedCommand:
		if err := e.checkIndexed(); err != nil {
			return err
		}
		//nolint:gosec // G115: GL takes signed counts
		f.DrawElements(e.pipeline.topology, int32(c.Count), e.index.typ, int(e.index.offset)+int(c.IndexOffset))
	case gfx.DrawIndexedInstancedCommand:
		if err := e.checkIndexed(); err != nil {
			return err
		}
		//nolint:gosec // G115: GL takes signed counts
		f.DrawElementsInstanced(e.pipeline.topology, int32(c.Count), e.index.typ,
			int(e.index.offset)+int(c.IndexOffset), int32(c.Instances))
	default:
		return fmt.Errorf("%w: %v", gfx.ErrUnknownOpcode, cmd.Type())
	}
	return nil
}

func (e *executor) checkIndexed() error {
	if !e.hasPipeline {
		return gfx.ErrNoPipeline
	}
	if !e.hasIndex {
		return gfx.ErrNoIndexBuffer
	}
	return nil
}

func (e *executor) state(h gfx.StateBlockHandle, kind gfx.StateBlockKind) (*stateBlock, error) {
	s, err := e.d.states.Get(h)
	if err != nil {
		return nil, err
	}
	if s.kind != kind {
		return nil, fmt.Errorf("%w: %v is a %v state, not %v", gfx.ErrInvalidUsage, h, s.kind, kind)
	}
	return &s, nil
}

func (e *executor) bindPipeline(h gfx.PipelineHandle) error {
	p, err := e.d.pipelines.Get(h)
	if err != nil {
		return err
	}
	e.pipeline, e.hasPipeline = p, true
	f := e.d.f
	f.UseProgram(p.program)
	f.BindVertexArray(p.vao)
	for slot, b := range e.vertex {
		e.applyVertexBuffer(slot, b)
	}
	if e.hasIndex {
		f.BindBuffer(ELEMENT_ARRAY_BUFFER, e.index.id)
	}
	return nil
}

// bindRenderPass binds the pass framebuffer and clears attachments whose
// load action is Clear. Clears ignore the scissor rectangle and write
// masks, so both are opened for the clear and the bound state blocks are
// applied again afterwards.
func (e *executor) bindRenderPass(h gfx.RenderPassHandle) error {
	p, err := e.d.passes.Get(h)
	if err != nil {
		return err
	}
	f := e.d.f
	f.BindFramebuffer(FRAMEBUFFER, p.fbo)
	if p.fbo == 0 {
		return nil
	}
	//nolint:gosec // G115: framebuffer sizes fit in int32
	f.Viewport(0, 0, int32(p.width), int32(p.height))

	clearDepth := p.depth != nil && p.depth.Load == gfx.LoadActionClear
	clearStencil := p.stencil != nil && p.stencil.Load == gfx.LoadActionClear
	clearAny := clearDepth || clearStencil
	for _, c := range p.colors {
		clearAny = clearAny || c.Load == gfx.LoadActionClear
	}
	if !clearAny {
		return nil
	}

	f.Disable(SCISSOR_TEST)
	f.ColorMask(true, true, true, true)
	f.DepthMask(true)
	f.StencilMaskSeparate(FRONT_AND_BACK, 0xFF)

	for i, c := range p.colors {
		if c.Load == gfx.LoadActionClear {
			f.ClearBufferfv(COLOR, int32(i), c.ClearColor[:]) //nolint:gosec // G115: at most MaxColorAttachments
		}
	}
	switch {
	case p.depthStencil && clearDepth && clearStencil:
		f.ClearBufferfi(DEPTH_STENCIL, 0, p.depth.ClearDepth, int32(p.stencil.ClearStencil))
	default:
		if clearDepth {
			f.ClearBufferfv(DEPTH, 0, []float32{p.depth.ClearDepth})
		}
		if clearStencil {
			f.ClearBufferiv(STENCIL, 0, []int32{int32(p.stencil.ClearStencil)})
		}
	}

	if e.raster != nil {
		e.raster.raster.apply(f)
	}
	if e.depth != nil {
		e.depth.depth.apply(f)
	}
	if e.blend != nil {
		e.blend.blend.apply(f)
	}
	return nil
}

func (e *executor) bindVertexBuffer(slot uint32, vb gfx.VertexBufferBinding) error {
	b, err := e.d.buffers.Get(vb.Buffer)
	if err != nil {
		return err
	}
	if b.typ != gfx.BufferVertex {
		return fmt.Errorf("%w: %v is a %v buffer, bound as vertex buffer", gfx.ErrInvalidUsage, vb.Buffer, b.typ)
	}
	binding := vertexBinding{id: b.id, stride: vb.Stride, offset: vb.Offset}
	e.vertex[slot] = binding
	if e.hasPipeline {
		e.applyVertexBuffer(slot, binding)
	}
	return nil
}

// applyVertexBuffer points every attribute of the bound pipeline that reads
// from slot at the buffer.
func (e *executor) applyVertexBuffer(slot uint32, b vertexBinding) {
	f := e.d.f
	f.BindBuffer(ARRAY_BUFFER, b.id)
	for i, el := range e.pipeline.layout {
		if el.Slot != slot {
			continue
		}
		stride := el.Stride
		if b.stride != 0 {
			stride = b.stride
		}
		a := e.pipeline.attribs[i]
		loc := uint32(i) //nolint:gosec // G115: bounded by MaxVertexBuffers
		//nolint:gosec // G115: strides fit in int32
		f.VertexAttribPointer(loc, a.size, a.typ, a.normalized, int32(stride), int(b.offset)+int(el.Offset))
		var divisor uint32
		if el.Classification == gfx.PerInstance {
			divisor = 1
		}
		f.VertexAttribDivisor(loc, divisor)
	}
}

func (e *executor) bindIndexBuffer(c gfx.BindIndexBufferCommand) error {
	b, err := e.d.buffers.Get(c.Buffer)
	if err != nil {
		return err
	}
	if b.typ != gfx.BufferIndex {
		return fmt.Errorf("%w: %v is a %v buffer, bound as index buffer", gfx.ErrInvalidUsage, c.Buffer, b.typ)
	}
	typ, err := lookup("index type", c.IndexType, indexTypes)
	if err != nil {
		return err
	}
	e.index, e.hasIndex = indexBinding{id: b.id, typ: typ, offset: c.Offset}, true
	if e.hasPipeline {
		e.d.f.BindBuffer(ELEMENT_ARRAY_BUFFER, b.id)
	}
	return nil
}

func (e *executor) bindConstantBuffer(c gfx.BindConstantBufferCommand) error {
	if c.Index >= uint32(e.d.caps.MaxConstantBuffers) { //nolint:gosec // G115: caps are small and positive
		return fmt.Errorf("%w: constant buffer index %d, max %d", gfx.ErrInvalidUsage, c.Index, e.d.caps.MaxConstantBuffers-1)
	}
	b, err := e.d.buffers.Get(c.Buffer)
	if err != nil {
		return err
	}
	if b.typ != gfx.BufferConstant {
		return fmt.Errorf("%w: %v is a %v buffer, bound as constant buffer", gfx.ErrInvalidUsage, c.Buffer, b.typ)
	}
	offset, size := int(c.Offset), int(c.Size)
	if size == 0 {
		size = b.size - offset
	}
	if offset >= b.size || size <= 0 || size > b.size-offset {
		return fmt.Errorf("%w: range [%d, %d) of %d-byte %v", gfx.ErrInvalidUsage, offset, offset+size, b.size, c.Buffer)
	}
	e.d.f.BindBufferRange(UNIFORM_BUFFER, c.Index, b.id, offset, size)
	return nil
}

func (e *executor) bindTexture(index uint32, h gfx.TextureHandle) error {
	t, err := e.d.textures.Get(h)
	if err != nil {
		return err
	}
	e.d.f.ActiveTexture(TEXTURE0 + Enum(index))
	e.d.f.BindTexture(t.target, t.id)
	return nil
}

func (e *executor) bindSampler(index uint32, h gfx.SamplerHandle) error {
	s, err := e.d.samplers.Get(h)
	if err != nil {
		return err
	}
	e.d.f.BindSampler(index, s.id)
	return nil
}
