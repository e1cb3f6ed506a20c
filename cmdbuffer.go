package gfx

import "fmt"

const (
	// DefaultCapacity is the default command stream capacity in 32-bit words.
	DefaultCapacity = 4096 * 4

	// MaxPushConstantSize is the largest push-constant payload in bytes.
	MaxPushConstantSize = 128

	// PushConstantStride is the granularity of push-constant offsets and
	// sizes in bytes.
	PushConstantStride = 4
)

// CmdBufferState is the lifecycle state of a CmdBuffer.
type CmdBufferState uint8

const (
	CmdBufferUnrecorded CmdBufferState = iota
	CmdBufferRecording
	CmdBufferFinalized
	CmdBufferSubmitted
)

var cmdBufferStateNames = []string{"Unrecorded", "Recording", "Finalized", "Submitted"}

func (s CmdBufferState) String() string { return enumString(s, cmdBufferStateNames) }

// PushConstant is one entry of a stream's push-constant pool.
type PushConstant struct {
	Offset uint32
	Stages ShaderStage
	Size   uint32
	Data   [MaxPushConstantSize]byte
}

// Bytes returns the payload of the entry.
func (p *PushConstant) Bytes() []byte { return p.Data[:p.Size] }

// Stream is a finalized command stream. Words ends with CmdEnd; its length
// is the one captured when the stream was ended.
type Stream struct {
	Words         []uint32
	PushConstants []PushConstant
}

// ByteLen returns the size of the instruction words in bytes.
func (s Stream) ByteLen() int { return len(s.Words) * 4 }

// CmdBuffer records GPU operations into a flat opcode stream.
//
// A CmdBuffer is used as:
//
//	cb.Begin()
//	cb.BindRenderPass(pass)
//	cb.BindPipeline(pipeline)
//	cb.BindVertexBuffer(0, vb, 12, 0)
//	cb.DrawPrimitives(0, 3)
//	if err := cb.End(); err != nil {
//	    return err
//	}
//	err := device.ExecuteCmdBuffers(cb)
//
// Recording errors are sticky: after the first error every further
// recording call is a no-op and End reports the error. This keeps call
// sites free of per-command error checks.
//
// The stream has a fixed capacity. One word is always reserved for the
// terminating CmdEnd, so End cannot overflow.
//
// A CmdBuffer must not be recorded from several goroutines at once.
// Distinct buffers may be recorded concurrently.
type CmdBuffer struct {
	words    []uint32
	pool     []PushConstant
	capacity int
	length   int
	state    CmdBufferState
	err      error
}

// NewCmdBuffer creates an unrecorded command buffer.
func NewCmdBuffer(opts ...CmdBufferOption) *CmdBuffer {
	o := cmdBufferOptions{capacity: DefaultCapacity}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return &CmdBuffer{
		words:    make([]uint32, 0, o.capacity),
		capacity: o.capacity,
	}
}

// Cap returns the stream capacity in words.
func (cb *CmdBuffer) Cap() int { return cb.capacity }

// Len returns the number of recorded words. After End it is the captured
// stream length, including CmdEnd.
func (cb *CmdBuffer) Len() int {
	if cb.state == CmdBufferFinalized || cb.state == CmdBufferSubmitted {
		return cb.length
	}
	return len(cb.words)
}

// State returns the lifecycle state.
func (cb *CmdBuffer) State() CmdBufferState { return cb.state }

// Err returns the first recording error, if any.
func (cb *CmdBuffer) Err() error { return cb.err }

// Begin discards any recorded content and starts recording. It may be
// called in any state.
func (cb *CmdBuffer) Begin() {
	cb.words = cb.words[:0]
	cb.pool = cb.pool[:0]
	cb.length = 0
	cb.err = nil
	cb.state = CmdBufferRecording
}

// End terminates the stream. On success the buffer is finalized and can be
// submitted. If recording failed the error is returned and the buffer
// goes back to the unrecorded state.
func (cb *CmdBuffer) End() error {
	if cb.state != CmdBufferRecording {
		if cb.err == nil {
			return fmt.Errorf("end %v command buffer: %w", cb.state, ErrNotRecording)
		}
		return cb.err
	}
	if cb.err != nil {
		cb.state = CmdBufferUnrecorded
		return cb.err
	}
	cb.words = append(cb.words, uint32(CmdEnd))
	cb.length = len(cb.words)
	cb.state = CmdBufferFinalized
	return nil
}

// Stream returns the finalized stream. The returned slices alias the
// buffer and are valid until the next Begin.
func (cb *CmdBuffer) Stream() (Stream, error) {
	if cb.state != CmdBufferFinalized && cb.state != CmdBufferSubmitted {
		return Stream{}, fmt.Errorf("%v command buffer: %w", cb.state, ErrNotFinalized)
	}
	return Stream{
		Words:         cb.words[:cb.length:cb.length],
		PushConstants: cb.pool,
	}, nil
}

// MarkSubmitted moves a finalized buffer to the submitted state. Devices
// call it after executing the stream.
func (cb *CmdBuffer) MarkSubmitted() {
	if cb.state == CmdBufferFinalized {
		cb.state = CmdBufferSubmitted
	}
}

func (cb *CmdBuffer) fail(err error) {
	if cb.err == nil {
		cb.err = err
	}
}

// reserve checks that n more words fit, keeping room for CmdEnd.
func (cb *CmdBuffer) reserve(op CommandType, n int) bool {
	if cb.err != nil {
		return false
	}
	if cb.state != CmdBufferRecording {
		cb.fail(fmt.Errorf("record %v: %w", op, ErrNotRecording))
		return false
	}
	if len(cb.words)+n+1 > cb.capacity {
		cb.fail(fmt.Errorf("record %v at word %d of %d: %w", op, len(cb.words), cb.capacity, ErrCapacityExceeded))
		return false
	}
	return true
}

func (cb *CmdBuffer) emit(op CommandType, operands ...uint32) {
	if !cb.reserve(op, 1+len(operands)) {
		return
	}
	cb.words = append(cb.words, uint32(op))
	cb.words = append(cb.words, operands...)
}

// --------------------------------------------------------------------------
// State
// --------------------------------------------------------------------------

// signedWord stores v as its two's complement bit pattern.
//
//nolint:gosec // G115: intentional bit-pattern conversion
func signedWord(v int32) uint32 { return uint32(v) }

// SetViewport sets the viewport rectangle in pixels, origin bottom-left.
func (cb *CmdBuffer) SetViewport(x, y, width, height int32) {
	cb.emit(CmdViewport, signedWord(x), signedWord(y), signedWord(width), signedWord(height))
}

// SetScissor sets the scissor rectangle. It has no effect unless the bound
// rasterizer state enables the scissor test.
func (cb *CmdBuffer) SetScissor(x, y, width, height int32) {
	cb.emit(CmdScissor, signedWord(x), signedWord(y), signedWord(width), signedWord(height))
}

// SetRasterizerState binds a state block created by CreateRasterizerState.
func (cb *CmdBuffer) SetRasterizerState(h StateBlockHandle) {
	cb.emit(CmdSetRasterizerState, uint32(h))
}

// SetDepthStencilState binds a depth-stencil state block.
func (cb *CmdBuffer) SetDepthStencilState(h StateBlockHandle) {
	cb.emit(CmdSetDepthStencilState, uint32(h))
}

// SetBlendState binds a blend state block.
func (cb *CmdBuffer) SetBlendState(h StateBlockHandle) {
	cb.emit(CmdSetBlendState, uint32(h))
}

// BindPipeline binds a pipeline for subsequent draws.
func (cb *CmdBuffer) BindPipeline(h PipelineHandle) {
	cb.emit(CmdBindPipeline, uint32(h))
}

// BindRenderPass makes h the target of subsequent draws. Attachments with
// LoadActionClear are cleared when the command executes.
func (cb *CmdBuffer) BindRenderPass(h RenderPassHandle) {
	cb.emit(CmdBindRenderPass, uint32(h))
}

// BindPushConstants copies data into the push-constant pool. offset and
// len(data) must be multiples of PushConstantStride, data must not be
// empty, and offset+len(data) must not exceed MaxPushConstantSize.
func (cb *CmdBuffer) BindPushConstants(offset uint32, stages ShaderStage, data []byte) {
	if cb.err != nil {
		return
	}
	if cb.state != CmdBufferRecording {
		cb.fail(fmt.Errorf("record %v: %w", CmdBindPushConstants, ErrNotRecording))
		return
	}
	size := len(data)
	if size == 0 || size%PushConstantStride != 0 || offset%PushConstantStride != 0 ||
		int(offset)+size > MaxPushConstantSize {
		cb.fail(fmt.Errorf("push constants offset %d size %d: %w", offset, size, ErrPushConstantSize))
		return
	}
	if !cb.reserve(CmdBindPushConstants, 2) {
		return
	}

	pc := PushConstant{Offset: offset, Stages: stages, Size: uint32(size)}
	copy(pc.Data[:], data)
	//nolint:gosec // G115: pool length is bounded by stream capacity
	index := uint32(len(cb.pool))
	cb.pool = append(cb.pool, pc)
	cb.words = append(cb.words, uint32(CmdBindPushConstants), index)
}

// --------------------------------------------------------------------------
// Resources
// --------------------------------------------------------------------------

// BindVertexBuffer binds buf to a vertex input slot. A zero stride keeps
// the stride declared by the pipeline's input layout.
func (cb *CmdBuffer) BindVertexBuffer(slot uint32, buf BufferHandle, stride, offset uint32) {
	cb.emit(CmdBindVertexBuffer, slot, uint32(buf), stride, offset)
}

// BindVertexBuffers binds consecutive slots starting at start.
func (cb *CmdBuffer) BindVertexBuffers(start uint32, bindings []VertexBufferBinding) {
	if !cb.reserve(CmdBindVertexBuffers, 3+3*len(bindings)) {
		return
	}
	//nolint:gosec // G115: count is bounded by stream capacity
	cb.words = append(cb.words, uint32(CmdBindVertexBuffers), start, uint32(len(bindings)))
	for _, b := range bindings {
		cb.words = append(cb.words, uint32(b.Buffer), b.Stride, b.Offset)
	}
}

// BindIndexBuffer binds the index buffer for indexed draws.
func (cb *CmdBuffer) BindIndexBuffer(buf BufferHandle, indexType IndexType, offset uint32) {
	cb.emit(CmdBindIndexBuffer, uint32(buf), uint32(indexType), offset)
}

// BindConstantBuffer binds size bytes of buf at offset to a constant
// buffer index. Size 0 binds to the end of the buffer.
// BindConstantBuffer binds a range of buf to constant buffer slot index.
// A zero size binds from offset to the end of the buffer.
func (cb *CmdBuffer) BindConstantBuffer(index uint32, buf BufferHandle, offset, size uint32) {
	cb.emit(CmdBindConstantBuffer, index, uint32(buf), offset, size)
}

// BindTexture binds tex to texture unit index.
func (cb *CmdBuffer) BindTexture(index uint32, tex TextureHandle) {
	cb.emit(CmdBindTexture, index, uint32(tex))
}

// BindTextures binds textures to consecutive units starting at start.
func (cb *CmdBuffer) BindTextures(start uint32, textures []TextureHandle) {
	if !cb.reserve(CmdBindTextures, 3+len(textures)) {
		return
	}
	//nolint:gosec // G115: count is bounded by stream capacity
	cb.words = append(cb.words, uint32(CmdBindTextures), start, uint32(len(textures)))
	for _, t := range textures {
		cb.words = append(cb.words, uint32(t))
	}
}

// BindSampler binds s to sampler unit index.
func (cb *CmdBuffer) BindSampler(index uint32, s SamplerHandle) {
	cb.emit(CmdBindSampler, index, uint32(s))
}

// BindSamplers binds samplers to consecutive units starting at start.
func (cb *CmdBuffer) BindSamplers(start uint32, samplers []SamplerHandle) {
	if !cb.reserve(CmdBindSamplers, 3+len(samplers)) {
		return
	}
	//nolint:gosec // G115: count is bounded by stream capacity
	cb.words = append(cb.words, uint32(CmdBindSamplers), start, uint32(len(samplers)))
	for _, s := range samplers {
		cb.words = append(cb.words, uint32(s))
	}
}

// --------------------------------------------------------------------------
// Draws
// --------------------------------------------------------------------------

// DrawPrimitives draws count vertices starting at start using the bound
// pipeline's topology.
func (cb *CmdBuffer) DrawPrimitives(start, count uint32) {
	cb.emit(CmdDraw, start, count)
}

// DrawPrimitivesInstanced is DrawPrimitives repeated for instances
// instances.
func (cb *CmdBuffer) DrawPrimitivesInstanced(start, count, instances uint32) {
	cb.emit(CmdDrawInstanced, start, count, instances)
}

// DrawIndexedPrimitives draws count indices from the bound index buffer.
// indexOffset is a byte offset added to the index buffer binding offset.
func (cb *CmdBuffer) DrawIndexedPrimitives(count, indexOffset uint32) {
	cb.emit(CmdDrawIndexed, count, indexOffset)
}

// DrawIndexedPrimitivesInstanced is the instanced form of
// DrawIndexedPrimitives.
func (cb *CmdBuffer) DrawIndexedPrimitivesInstanced(count, indexOffset, instances uint32) {
	cb.emit(CmdDrawIndexedInstanced, count, indexOffset, instances)
}

// Record appends a decoded command. It is the inverse of Decoder.Next and
// is used to copy or filter streams. EndCommand is ignored; call End.
func (cb *CmdBuffer) Record(cmd Command) {
	switch c := cmd.(type) {
	case ViewportCommand:
		cb.SetViewport(c.X, c.Y, c.Width, c.Height)
	case ScissorCommand:
		cb.SetScissor(c.X, c.Y, c.Width, c.Height)
	case SetRasterizerStateCommand:
		cb.SetRasterizerState(c.State)
	case SetDepthStencilStateCommand:
		cb.SetDepthStencilState(c.State)
	case SetBlendStateCommand:
		cb.SetBlendState(c.State)
	case BindPipelineCommand:
		cb.BindPipeline(c.Pipeline)
	case BindRenderPassCommand:
		cb.BindRenderPass(c.RenderPass)
	case BindPushConstantsCommand:
		cb.BindPushConstants(c.Offset, c.Stages, c.Data)
	case BindVertexBufferCommand:
		cb.BindVertexBuffer(c.Slot, c.Buffer, c.Stride, c.Offset)
	case BindVertexBuffersCommand:
		cb.BindVertexBuffers(c.StartSlot, c.Buffers)
	case BindIndexBufferCommand:
		cb.BindIndexBuffer(c.Buffer, c.IndexType, c.Offset)
	case BindConstantBufferCommand:
		cb.BindConstantBuffer(c.Index, c.Buffer, c.Offset, c.Size)
	case BindTextureCommand:
		cb.BindTexture(c.Index, c.Texture)
	case BindTexturesCommand:
		cb.BindTextures(c.StartIndex, c.Textures)
	case BindSamplerCommand:
		cb.BindSampler(c.Index, c.Sampler)
	case BindSamplersCommand:
		cb.BindSamplers(c.StartIndex, c.Samplers)
	case DrawCommand:
		cb.DrawPrimitives(c.Start, c.Count)
	case DrawInstancedCommand:
		cb.DrawPrimitivesInstanced(c.Start, c.Count, c.Instances)
	case DrawIndexedCommand:
		cb.DrawIndexedPrimitives(c.Count, c.IndexOffset)
	case DrawIndexedInstancedCommand:
		cb.DrawIndexedPrimitivesInstanced(c.Count, c.IndexOffset, c.Instances)
	case EndCommand:
	default:
		cb.fail(fmt.Errorf("record %T: %w", cmd, ErrUnknownOpcode))
	}
}
