package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gfx"
)

type vertexBinding struct {
	buf            hal.Buffer
	stride, offset uint32
}

type indexBinding struct {
	buf    hal.Buffer
	format gputypes.IndexFormat
	size   uint32
	offset uint32
}

type constantBinding struct {
	buf          hal.Buffer
	offset, size uint64
}

type textureBinding struct {
	view hal.TextureView
	kind textureKind
}

type samplerBinding struct {
	sampler hal.Sampler
	compare bool
}

// executor encodes decoded command streams into one HAL command encoder.
// Pipelines, vertex buffers and bind groups are resolved lazily at draw
// time because WebGPU bakes most state into the render pipeline.
type executor struct {
	d   *Device
	enc hal.CommandEncoder

	rp   *renderPass
	pass hal.RenderPassEncoder

	pipeline  *pipeline
	pipelineH gfx.PipelineHandle
	variant   *variant

	raster gfx.RasterizerStateDesc
	depth  gfx.DepthStencilStateDesc
	blend  gfx.BlendStateDesc

	scissor    gfx.ScissorCommand
	hasScissor bool

	vertex    [maxVertexSlots]*vertexBinding
	index     *indexBinding
	constants [maxConstantSlots]*constantBinding
	textures  [maxTextureSlots]*textureBinding
	samplers  [maxSamplerSlots]*samplerBinding

	// Push constants are staged in slots of pushBuf. Slot 0 stays zero;
	// every BindPushConstants takes the next free slot.
	pushBuf   hal.Buffer
	pushSlots int
	pushSlot  int
	pushNext  int
	pushData  [gfx.MaxPushConstantSize]byte

	vertexDirty, indexDirty, groupDirty bool

	// groups are destroyed once the submission completes.
	groups []hal.BindGroup
}

// begin prepares for a submission that binds push constants pushes times.
func (e *executor) begin(enc hal.CommandEncoder, pushes int) {
	e.enc = enc
	e.pushSlots = pushes + 1
	e.pushNext = 1
}

// reset clears the state a stream may rely on. Push constants start from
// zero in every stream.
func (e *executor) reset() {
	e.rp, e.pass = nil, nil
	e.pipeline, e.pipelineH, e.variant = nil, 0, nil
	e.raster = gfx.RasterizerStateDesc{}
	e.depth = gfx.DepthStencilStateDesc{}
	e.blend = gfx.DefaultBlendState()
	e.scissor, e.hasScissor = gfx.ScissorCommand{}, false
	e.vertex = [maxVertexSlots]*vertexBinding{}
	e.index = nil
	e.constants = [maxConstantSlots]*constantBinding{}
	e.textures = [maxTextureSlots]*textureBinding{}
	e.samplers = [maxSamplerSlots]*samplerBinding{}
	e.pushSlot = 0
	e.pushData = [gfx.MaxPushConstantSize]byte{}
}

func (e *executor) endPass() {
	if e.pass != nil {
		e.pass.End()
		e.pass = nil
	}
}

// release frees the per-submission objects. It runs after the GPU is done
// with them.
func (e *executor) release() {
	for _, g := range e.groups {
		e.d.device.DestroyBindGroup(g)
	}
	e.groups = e.groups[:0]
	if e.pushBuf != nil {
		e.d.device.DestroyBuffer(e.pushBuf)
		e.pushBuf = nil
	}
	e.enc, e.rp, e.pass = nil, nil, nil
	e.pipeline, e.variant = nil, nil
}

func (e *executor) execute(cmd gfx.Command) error {
	if e.d.debug {
		e.d.log.Debug("wgpu: command", "type", cmd.Type(), "cmd", cmd)
	}

	switch c := cmd.(type) {
	case gfx.ViewportCommand:
		e.setViewport(c.X, c.Y, c.Width, c.Height)
	case gfx.ScissorCommand:
		e.scissor, e.hasScissor = c, true
		e.applyScissor()
	case gfx.SetRasterizerStateCommand:
		s, err := e.state(c.State, gfx.StateRasterizer)
		if err != nil {
			return err
		}
		e.raster = s.raster
		e.applyScissor()
	case gfx.SetDepthStencilStateCommand:
		s, err := e.state(c.State, gfx.StateDepthStencil)
		if err != nil {
			return err
		}
		e.depth = s.depth
		if e.pass != nil {
			e.pass.SetStencilReference(uint32(e.depth.StencilRef))
		}
	case gfx.SetBlendStateCommand:
		s, err := e.state(c.State, gfx.StateBlend)
		if err != nil {
			return err
		}
		e.blend = s.blend
	case gfx.BindPipelineCommand:
		p, err := e.d.pipelines.Get(c.Pipeline)
		if err != nil {
			return err
		}
		e.pipeline, e.pipelineH = &p, c.Pipeline
		e.vertexDirty, e.groupDirty = true, true
	case gfx.BindRenderPassCommand:
		return e.bindRenderPass(c.RenderPass)
	case gfx.BindPushConstantsCommand:
		return e.bindPushConstants(c)
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
		if err := e.prepare(false); err != nil {
			return err
		}
		e.pass.Draw(c.Count, 1, c.Start, 0)
	case gfx.DrawInstancedCommand:
		if err := e.prepare(false); err != nil {
			return err
		}
		e.pass.Draw(c.Count, c.Instances, c.Start, 0)
	case gfx.DrawIndexedCommand:
		first, err := e.prepareIndexed(c.IndexOffset)
		if err != nil {
			return err
		}
		e.pass.DrawIndexed(c.Count, 1, first, 0, 0)
	case gfx.DrawIndexedInstancedCommand:
		first, err := e.prepareIndexed(c.IndexOffset)
		if err != nil {
			return err
		}
		e.pass.DrawIndexed(c.Count, c.Instances, first, 0, 0)
	default:
		return fmt.Errorf("%w: %v", gfx.ErrUnknownOpcode, cmd.Type())
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

// bindRenderPass ends the open HAL pass and begins one on the new target.
// Clears happen through the attachment load operations. The viewport is
// reset to the full target and every binding is encoded again.
func (e *executor) bindRenderPass(h gfx.RenderPassHandle) error {
	p, err := e.d.passes.Get(h)
	if err != nil {
		return err
	}
	e.endPass()
	e.rp = &p
	e.pass = e.enc.BeginRenderPass(p.descriptor())
	e.pass.SetViewport(0, 0, float32(p.width), float32(p.height), 0, 1)
	e.applyScissor()
	e.pass.SetStencilReference(uint32(e.depth.StencilRef))
	e.variant = nil
	e.vertexDirty, e.indexDirty, e.groupDirty = true, true, true
	return nil
}

// setViewport applies a bottom-left origin rectangle to the open pass.
// Without a pass it has no effect, since binding a pass resets the
// viewport.
func (e *executor) setViewport(x, y, w, h int32) {
	if e.pass == nil {
		return
	}
	top := int32(e.rp.height) - y - h //nolint:gosec // G115: pass sizes fit in int32
	e.pass.SetViewport(float32(x), float32(top), float32(w), float32(h), 0, 1)
}

// applyScissor sets the scissor rectangle of the open pass: the recorded
// rectangle when the rasterizer state enables the scissor test, otherwise
// the whole target.
func (e *executor) applyScissor() {
	if e.pass == nil {
		return
	}
	w, h := e.rp.width, e.rp.height
	x0, y0, x1, y1 := 0, 0, w, h
	if e.raster.ScissorTest && e.hasScissor {
		s := e.scissor
		x0 = clamp(int(s.X), 0, w)
		x1 = clamp(int(s.X)+int(s.Width), x0, w)
		y0 = clamp(h-int(s.Y)-int(s.Height), 0, h)
		y1 = clamp(h-int(s.Y), y0, h)
	}
	//nolint:gosec // G115: clamped to the target size
	e.pass.SetScissorRect(uint32(x0), uint32(y0), uint32(x1-x0), uint32(y1-y0))
}

func clamp(v, lo, hi int) int { return min(max(v, lo), hi) }

// bindPushConstants merges the payload into the current push-constant
// block and uploads the block to a fresh slot. Queue writes land before
// the command buffer runs, so slots are never reused within a submission.
func (e *executor) bindPushConstants(c gfx.BindPushConstantsCommand) error {
	if int(c.Offset)+len(c.Data) > gfx.MaxPushConstantSize {
		return fmt.Errorf("%w: %d bytes at offset %d", gfx.ErrPushConstantSize, len(c.Data), c.Offset)
	}
	buf, err := e.pushBuffer()
	if err != nil {
		return err
	}
	if e.pushNext >= e.pushSlots {
		return fmt.Errorf("%w: push-constant slots exhausted", gfx.ErrCapacityExceeded)
	}
	copy(e.pushData[c.Offset:], c.Data)
	e.pushSlot = e.pushNext
	e.pushNext++
	if err := e.d.queue.WriteBuffer(buf, uint64(e.pushSlot*pushConstantStride), e.pushData[:]); err != nil { //nolint:gosec // G115: non-negative
		return fmt.Errorf("write push constants: %w", err)
	}
	e.groupDirty = true
	return nil
}

// pushBuffer creates the push-constant buffer on first use. The HAL
// zero-initializes it, which is what slot 0 relies on.
func (e *executor) pushBuffer() (hal.Buffer, error) {
	if e.pushBuf != nil {
		return e.pushBuf, nil
	}
	buf, err := e.d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "gfx push constants",
		Size:  uint64(e.pushSlots * pushConstantStride), //nolint:gosec // G115: positive
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create push-constant buffer: %w", err)
	}
	e.pushBuf = buf
	return buf, nil
}

func (e *executor) bindVertexBuffer(slot uint32, vb gfx.VertexBufferBinding) error {
	if slot >= maxVertexSlots {
		return fmt.Errorf("%w: vertex buffer slot %d, max %d", gfx.ErrInvalidUsage, slot, maxVertexSlots-1)
	}
	b, err := e.d.buffers.Get(vb.Buffer)
	if err != nil {
		return err
	}
	if b.typ != gfx.BufferVertex {
		return fmt.Errorf("%w: %v is a %v buffer, bound as vertex buffer", gfx.ErrInvalidUsage, vb.Buffer, b.typ)
	}
	e.vertex[slot] = &vertexBinding{buf: b.buf, stride: vb.Stride, offset: vb.Offset}
	e.vertexDirty = true
	return nil
}

func (e *executor) bindIndexBuffer(c gfx.BindIndexBufferCommand) error {
	b, err := e.d.buffers.Get(c.Buffer)
	if err != nil {
		return err
	}
	if b.typ != gfx.BufferIndex {
		return fmt.Errorf("%w: %v is a %v buffer, bound as index buffer", gfx.ErrInvalidUsage, c.Buffer, b.typ)
	}
	format, err := lookup("index type", c.IndexType, indexFormats)
	if err != nil {
		return err
	}
	e.index = &indexBinding{buf: b.buf, format: format, size: uint32(c.IndexType.Size()), offset: c.Offset} //nolint:gosec // G115: 2 or 4
	e.indexDirty = true
	return nil
}

// bindConstantBuffer records a uniform range. WebGPU requires bind group
// buffer offsets to be multiples of 256.
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
	if offset%pushConstantStride != 0 {
		return fmt.Errorf("%w: constant buffer offset %d is not a multiple of %d", gfx.ErrInvalidUsage, offset, pushConstantStride)
	}
	e.constants[c.Index] = &constantBinding{buf: b.buf, offset: uint64(offset), size: uint64(size)} //nolint:gosec // G115: validated range
	e.groupDirty = true
	return nil
}

func (e *executor) bindTexture(index uint32, h gfx.TextureHandle) error {
	if index >= uint32(e.d.caps.MaxTextureUnits) { //nolint:gosec // G115: caps are small and positive
		return fmt.Errorf("%w: texture unit %d, max %d", gfx.ErrInvalidUsage, index, e.d.caps.MaxTextureUnits-1)
	}
	t, err := e.d.textures.Get(h)
	if err != nil {
		return err
	}
	dim, err := lookup("texture type", t.desc.Type, viewDimensions)
	if err != nil {
		return err
	}
	e.textures[index] = &textureBinding{view: t.view, kind: textureKind{dimension: dim, depth: t.desc.Format.IsDepth()}}
	e.groupDirty = true
	return nil
}

func (e *executor) bindSampler(index uint32, h gfx.SamplerHandle) error {
	if index >= maxSamplerSlots {
		return fmt.Errorf("%w: sampler unit %d, max %d", gfx.ErrInvalidUsage, index, maxSamplerSlots-1)
	}
	s, err := e.d.samplers.Get(h)
	if err != nil {
		return err
	}
	e.samplers[index] = &samplerBinding{sampler: s.sampler, compare: s.compare}
	e.groupDirty = true
	return nil
}

// key describes the HAL pipeline the next draw needs.
func (e *executor) key() variantKey {
	k := variantKey{
		pipeline: e.pipelineH,
		raster:   e.raster,
		depth:    e.depth,
		blend:    e.blend,
	}
	// The stencil reference is dynamic pass state.
	k.depth.StencilRef = 0
	for i, c := range e.rp.colors {
		k.colors[i] = c.format
	}
	k.colorCount = len(e.rp.colors)
	if e.rp.depth != nil {
		k.depthFormat = e.rp.depth.format
	}
	for i, s := range e.pipeline.slots {
		if !s.used {
			continue
		}
		k.strides[i] = s.stride
		if v := e.vertex[i]; v != nil && v.stride != 0 {
			k.strides[i] = v.stride
		}
	}
	for _, b := range e.pipeline.bindings {
		switch b.kind {
		case gfx.BindingTexture:
			if t := e.textures[b.slot]; t != nil {
				k.textures[b.slot] = t.kind
			}
		case gfx.BindingSampler:
			if s := e.samplers[b.slot]; s != nil {
				k.compare[b.slot] = s.compare
			}
		}
	}
	return k
}

// prepare encodes the pipeline, vertex buffers and bind group a draw
// needs.
func (e *executor) prepare(indexed bool) error {
	if e.pipeline == nil {
		return gfx.ErrNoPipeline
	}
	if e.pass == nil {
		return fmt.Errorf("%w: draw outside a render pass", gfx.ErrInvalidUsage)
	}
	if indexed && e.index == nil {
		return gfx.ErrNoIndexBuffer
	}

	key := e.key()
	v, err := e.d.variants.get(&key, func() (*variant, error) { return e.d.createVariant(e.pipeline, &key) })
	if err != nil {
		return err
	}
	if v != e.variant {
		e.pass.SetPipeline(v.pipeline)
		e.variant = v
		e.groupDirty = true
	}

	if e.vertexDirty {
		for i, s := range e.pipeline.slots {
			if !s.used {
				continue
			}
			b := e.vertex[i]
			if b == nil {
				return fmt.Errorf("%w: vertex buffer slot %d is not bound", gfx.ErrInvalidUsage, i)
			}
			e.pass.SetVertexBuffer(uint32(i), b.buf, uint64(b.offset)) //nolint:gosec // G115: slot < maxVertexSlots
		}
		e.vertexDirty = false
	}
	if indexed && e.indexDirty {
		e.pass.SetIndexBuffer(e.index.buf, e.index.format, uint64(e.index.offset))
		e.indexDirty = false
	}

	if e.groupDirty && v.bindLayout != nil {
		g, err := e.bindGroup(v)
		if err != nil {
			return err
		}
		e.pass.SetBindGroup(0, g, nil)
	}
	e.groupDirty = false
	return nil
}

// prepareIndexed converts a byte offset into the bound index buffer to a
// first index.
func (e *executor) prepareIndexed(byteOffset uint32) (uint32, error) {
	if err := e.prepare(true); err != nil {
		return 0, err
	}
	if byteOffset%e.index.size != 0 {
		return 0, fmt.Errorf("%w: index offset %d is not a multiple of %d", gfx.ErrInvalidUsage, byteOffset, e.index.size)
	}
	return byteOffset / e.index.size, nil
}

// bindGroup creates bind group 0 for the current bindings. Groups live
// until the submission completes.
func (e *executor) bindGroup(v *variant) (hal.BindGroup, error) {
	entries := make([]gputypes.BindGroupEntry, 0, len(e.pipeline.bindings))
	for _, b := range e.pipeline.bindings {
		entry := gputypes.BindGroupEntry{Binding: b.binding}
		switch b.kind {
		case gfx.BindingConstantBuffer:
			c := e.constants[b.slot]
			if c == nil {
				return nil, fmt.Errorf("%w: constant buffer %d is not bound", gfx.ErrInvalidUsage, b.slot)
			}
			entry.Resource = gputypes.BufferBinding{Buffer: c.buf.NativeHandle(), Offset: c.offset, Size: c.size}
		case gfx.BindingPushConstants:
			buf, err := e.pushBuffer()
			if err != nil {
				return nil, err
			}
			entry.Resource = gputypes.BufferBinding{
				Buffer: buf.NativeHandle(),
				Offset: uint64(e.pushSlot * pushConstantStride), //nolint:gosec // G115: non-negative
				Size:   gfx.MaxPushConstantSize,
			}
		case gfx.BindingTexture:
			t := e.textures[b.slot]
			if t == nil {
				return nil, fmt.Errorf("%w: texture unit %d is not bound", gfx.ErrInvalidUsage, b.slot)
			}
			entry.Resource = gputypes.TextureViewBinding{TextureView: t.view.NativeHandle()}
		case gfx.BindingSampler:
			s := e.samplers[b.slot]
			if s == nil {
				return nil, fmt.Errorf("%w: sampler unit %d is not bound", gfx.ErrInvalidUsage, b.slot)
			}
			entry.Resource = gputypes.SamplerBinding{Sampler: s.sampler.NativeHandle()}
		}
		entries = append(entries, entry)
	}
	g, err := e.d.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   e.pipeline.label,
		Layout:  v.bindLayout,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("create bind group: %w", err)
	}
	e.groups = append(e.groups, g)
	return g, nil
}
