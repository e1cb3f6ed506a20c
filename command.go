package gfx

// CommandType is the opcode word that starts every instruction in a command
// stream. Zero is never emitted so that a zeroed or truncated stream is
// caught as an unknown opcode.
type CommandType uint32

const (
	CmdInvalid CommandType = iota

	// Fixed-function state
	CmdViewport             // x, y, width, height
	CmdScissor              // x, y, width, height
	CmdSetRasterizerState   // state block
	CmdSetDepthStencilState // state block
	CmdSetBlendState        // state block

	// Pipeline and target
	CmdBindPipeline      // pipeline
	CmdBindRenderPass    // render pass
	CmdBindPushConstants // push-constant pool index

	// Resources
	CmdBindVertexBuffer   // slot, buffer, stride, offset
	CmdBindVertexBuffers  // start slot, count, count × (buffer, stride, offset)
	CmdBindIndexBuffer    // buffer, index type, offset
	CmdBindConstantBuffer // index, buffer, offset, size
	CmdBindTexture        // index, texture
	CmdBindTextures       // start index, count, count × texture
	CmdBindSampler        // index, sampler
	CmdBindSamplers       // start index, count, count × sampler

	// Draws
	CmdDraw                 // start, count
	CmdDrawInstanced        // start, count, instances
	CmdDrawIndexed          // count, index byte offset
	CmdDrawIndexedInstanced // count, index byte offset, instances
	CmdEnd                  // terminates the stream
	cmdCount
)

// commandTypeNames maps CommandType values to their string representation.
var commandTypeNames = [...]string{
	CmdInvalid:              "Invalid",
	CmdViewport:             "Viewport",
	CmdScissor:              "Scissor",
	CmdSetRasterizerState:   "SetRasterizerState",
	CmdSetDepthStencilState: "SetDepthStencilState",
	CmdSetBlendState:        "SetBlendState",
	CmdBindPipeline:         "BindPipeline",
	CmdBindRenderPass:       "BindRenderPass",
	CmdBindPushConstants:    "BindPushConstants",
	CmdBindVertexBuffer:     "BindVertexBuffer",
	CmdBindVertexBuffers:    "BindVertexBuffers",
	CmdBindIndexBuffer:      "BindIndexBuffer",
	CmdBindConstantBuffer:   "BindConstantBuffer",
	CmdBindTexture:          "BindTexture",
	CmdBindTextures:         "BindTextures",
	CmdBindSampler:          "BindSampler",
	CmdBindSamplers:         "BindSamplers",
	CmdDraw:                 "Draw",
	CmdDrawInstanced:        "DrawInstanced",
	CmdDrawIndexed:          "DrawIndexed",
	CmdDrawIndexedInstanced: "DrawIndexedInstanced",
	CmdEnd:                  "End",
}

// String returns the string representation of a CommandType.
func (c CommandType) String() string {
	if int(c) < len(commandTypeNames) {
		return commandTypeNames[c]
	}
	return "Unknown"
}

// fixedOperands is the operand word count of each opcode that has no
// count prefix. Bulk binds are handled by the decoder.
var fixedOperands = [cmdCount]int{
	CmdViewport:             4,
	CmdScissor:              4,
	CmdSetRasterizerState:   1,
	CmdSetDepthStencilState: 1,
	CmdSetBlendState:        1,
	CmdBindPipeline:         1,
	CmdBindRenderPass:       1,
	CmdBindPushConstants:    1,
	CmdBindVertexBuffer:     4,
	CmdBindIndexBuffer:      3,
	CmdBindConstantBuffer:   4,
	CmdBindTexture:          2,
	CmdBindSampler:          2,
	CmdDraw:                 2,
	CmdDrawInstanced:        3,
	CmdDrawIndexed:          2,
	CmdDrawIndexedInstanced: 3,
}

// Command is a decoded stream instruction. Executors type-switch on the
// concrete command types below.
type Command interface {
	Type() CommandType
}

// --------------------------------------------------------------------------
// State Commands
// --------------------------------------------------------------------------

// ViewportCommand sets the viewport rectangle in pixels.
type ViewportCommand struct {
	X, Y, Width, Height int32
}

// Type implements Command.
func (ViewportCommand) Type() CommandType { return CmdViewport }

// ScissorCommand sets the scissor rectangle in pixels. The rectangle only
// takes effect when the bound rasterizer state enables the scissor test.
type ScissorCommand struct {
	X, Y, Width, Height int32
}

// Type implements Command.
func (ScissorCommand) Type() CommandType { return CmdScissor }

// SetRasterizerStateCommand binds a rasterizer state block.
type SetRasterizerStateCommand struct {
	State StateBlockHandle
}

// Type implements Command.
func (SetRasterizerStateCommand) Type() CommandType { return CmdSetRasterizerState }

// SetDepthStencilStateCommand binds a depth-stencil state block.
type SetDepthStencilStateCommand struct {
	State StateBlockHandle
}

// Type implements Command.
func (SetDepthStencilStateCommand) Type() CommandType { return CmdSetDepthStencilState }

// SetBlendStateCommand binds a blend state block.
type SetBlendStateCommand struct {
	State StateBlockHandle
}

// Type implements Command.
func (SetBlendStateCommand) Type() CommandType { return CmdSetBlendState }

// BindPipelineCommand binds a pipeline. Its topology applies to the
// draws that follow.
type BindPipelineCommand struct {
	Pipeline PipelineHandle
}

// Type implements Command.
func (BindPipelineCommand) Type() CommandType { return CmdBindPipeline }

// BindRenderPassCommand makes a render pass the target of subsequent
// draws and performs its clear load actions.
type BindRenderPassCommand struct {
	RenderPass RenderPassHandle
}

// Type implements Command.
func (BindRenderPassCommand) Type() CommandType { return CmdBindRenderPass }

// BindPushConstantsCommand uploads a push-constant payload. Data aliases the
// stream's push-constant pool and must not be modified.
type BindPushConstantsCommand struct {
	Offset uint32
	Stages ShaderStage
	Data   []byte
}

// Type implements Command.
func (BindPushConstantsCommand) Type() CommandType { return CmdBindPushConstants }

// --------------------------------------------------------------------------
// Resource Commands
// --------------------------------------------------------------------------

// VertexBufferBinding is one vertex buffer bound to a slot. A zero Stride
// keeps the stride declared by the pipeline's input layout.
type VertexBufferBinding struct {
	Buffer BufferHandle
	Stride uint32
	Offset uint32
}

// BindVertexBufferCommand binds one vertex buffer to a slot.
type BindVertexBufferCommand struct {
	Slot uint32
	VertexBufferBinding
}

// Type implements Command.
func (BindVertexBufferCommand) Type() CommandType { return CmdBindVertexBuffer }

// BindVertexBuffersCommand binds consecutive vertex buffer slots.
type BindVertexBuffersCommand struct {
	StartSlot uint32
	Buffers   []VertexBufferBinding
}

// Type implements Command.
func (BindVertexBuffersCommand) Type() CommandType { return CmdBindVertexBuffers }

// BindIndexBufferCommand binds the index buffer used by indexed draws.
type BindIndexBufferCommand struct {
	Buffer    BufferHandle
	IndexType IndexType
	Offset    uint32
}

// Type implements Command.
func (BindIndexBufferCommand) Type() CommandType { return CmdBindIndexBuffer }

// BindConstantBufferCommand binds a range of a constant buffer to a
// binding index. Size 0 binds to the end of the buffer.
type BindConstantBufferCommand struct {
	Index  uint32
	Buffer BufferHandle
	Offset uint32
	Size   uint32
}

// Type implements Command.
func (BindConstantBufferCommand) Type() CommandType { return CmdBindConstantBuffer }

// BindTextureCommand binds a texture to a texture unit.
type BindTextureCommand struct {
	Index   uint32
	Texture TextureHandle
}

// Type implements Command.
func (BindTextureCommand) Type() CommandType { return CmdBindTexture }

// BindTexturesCommand binds consecutive texture units.
type BindTexturesCommand struct {
	StartIndex uint32
	Textures   []TextureHandle
}

// Type implements Command.
func (BindTexturesCommand) Type() CommandType { return CmdBindTextures }

// BindSamplerCommand binds a sampler to a texture unit.
type BindSamplerCommand struct {
	Index   uint32
	Sampler SamplerHandle
}

// Type implements Command.
func (BindSamplerCommand) Type() CommandType { return CmdBindSampler }

// BindSamplersCommand binds consecutive sampler units.
type BindSamplersCommand struct {
	StartIndex uint32
	Samplers   []SamplerHandle
}

// Type implements Command.
func (BindSamplersCommand) Type() CommandType { return CmdBindSamplers }

// --------------------------------------------------------------------------
// Draw Commands
// --------------------------------------------------------------------------

// DrawCommand draws Count vertices starting at Start.
type DrawCommand struct {
	Start, Count uint32
}

// Type implements Command.
func (DrawCommand) Type() CommandType { return CmdDraw }

// DrawInstancedCommand draws Instances copies of a vertex range.
type DrawInstancedCommand struct {
	Start, Count, Instances uint32
}

// Type implements Command.
func (DrawInstancedCommand) Type() CommandType { return CmdDrawInstanced }

// DrawIndexedCommand draws Count indices read from the bound index buffer,
// starting IndexOffset bytes past the buffer binding offset.
type DrawIndexedCommand struct {
	Count, IndexOffset uint32
}

// Type implements Command.
func (DrawIndexedCommand) Type() CommandType { return CmdDrawIndexed }

// DrawIndexedInstancedCommand is the instanced form of DrawIndexedCommand.
type DrawIndexedInstancedCommand struct {
	Count, IndexOffset, Instances uint32
}

// Type implements Command.
func (DrawIndexedInstancedCommand) Type() CommandType { return CmdDrawIndexedInstanced }

// EndCommand terminates a stream. Decoders return it last.
type EndCommand struct{}

// Type implements Command.
func (EndCommand) Type() CommandType { return CmdEnd }
