package gfx

import (
	"fmt"
	"io"
)

// Decoder reads typed commands from a finalized Stream.
//
// Every read is checked against the stream length captured by End, so a
// truncated or corrupted stream yields ErrTruncatedStream or
// ErrUnknownOpcode instead of running past its end.
//
// Example usage:
//
//	dec := gfx.NewDecoder(stream)
//	for {
//	    cmd, err := dec.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    switch c := cmd.(type) {
//	    case gfx.DrawCommand:
//	        // issue draw
//	    }
//	}
type Decoder struct {
	s    Stream
	pos  int
	done bool
	err  error
}

// NewDecoder creates a decoder positioned at the start of s.
func NewDecoder(s Stream) *Decoder {
	return &Decoder{s: s}
}

// Reset repositions the decoder at the start of s.
func (d *Decoder) Reset(s Stream) {
	*d = Decoder{s: s}
}

// Position returns the word offset of the next instruction.
func (d *Decoder) Position() int {
	return d.pos
}

// Next decodes the next command. It returns EndCommand when CmdEnd is
// reached and io.EOF on every call after that. Errors are sticky.
func (d *Decoder) Next() (Command, error) {
	if d.err != nil {
		return nil, d.err
	}
	if d.done {
		return nil, io.EOF
	}
	cmd, err := d.decode()
	if err != nil {
		d.err = err
		return nil, err
	}
	if _, ok := cmd.(EndCommand); ok {
		d.done = true
	}
	return cmd, nil
}

func (d *Decoder) truncated(op CommandType, need int) error {
	return fmt.Errorf("%v at word %d needs %d words, %d left: %w",
		op, d.pos, need, len(d.s.Words)-d.pos, ErrTruncatedStream)
}

// take returns the next n words and advances.
func (d *Decoder) take(op CommandType, n int) ([]uint32, error) {
	if n < 0 || d.pos+n > len(d.s.Words) {
		return nil, d.truncated(op, n)
	}
	w := d.s.Words[d.pos : d.pos+n]
	d.pos += n
	return w, nil
}

// takeCounted reads a start index and a count, then count*stride words.
func (d *Decoder) takeCounted(op CommandType, stride int) (start uint32, items []uint32, err error) {
	head, err := d.take(op, 2)
	if err != nil {
		return 0, nil, err
	}
	count := int(head[1])
	if count > (len(d.s.Words)-d.pos)/stride {
		d.pos -= 2
		return 0, nil, d.truncated(op, 2+count*stride)
	}
	items, err = d.take(op, count*stride)
	return head[0], items, err
}

//nolint:gocyclo,cyclop,funlen // flat opcode switch
func (d *Decoder) decode() (Command, error) {
	if d.pos >= len(d.s.Words) {
		return nil, fmt.Errorf("missing %v at word %d: %w", CmdEnd, d.pos, ErrTruncatedStream)
	}
	at := d.pos
	op := CommandType(d.s.Words[at])
	if op == CmdInvalid || op >= cmdCount {
		return nil, fmt.Errorf("opcode %#x at word %d: %w", uint32(op), at, ErrUnknownOpcode)
	}
	d.pos++

	switch op {
	case CmdEnd:
		return EndCommand{}, nil
	case CmdBindVertexBuffers:
		start, items, err := d.takeCounted(op, 3)
		if err != nil {
			return nil, err
		}
		c := BindVertexBuffersCommand{StartSlot: start, Buffers: make([]VertexBufferBinding, len(items)/3)}
		for i := range c.Buffers {
			c.Buffers[i] = VertexBufferBinding{
				Buffer: BufferHandle(items[3*i]),
				Stride: items[3*i+1],
				Offset: items[3*i+2],
			}
		}
		return c, nil
	case CmdBindTextures:
		start, items, err := d.takeCounted(op, 1)
		if err != nil {
			return nil, err
		}
		c := BindTexturesCommand{StartIndex: start, Textures: make([]TextureHandle, len(items))}
		for i, w := range items {
			c.Textures[i] = TextureHandle(w)
		}
		return c, nil
	case CmdBindSamplers:
		start, items, err := d.takeCounted(op, 1)
		if err != nil {
			return nil, err
		}
		c := BindSamplersCommand{StartIndex: start, Samplers: make([]SamplerHandle, len(items))}
		for i, w := range items {
			c.Samplers[i] = SamplerHandle(w)
		}
		return c, nil
	}

	w, err := d.take(op, fixedOperands[op])
	if err != nil {
		return nil, err
	}

	switch op {
	case CmdViewport:
		return ViewportCommand{X: int32(w[0]), Y: int32(w[1]), Width: int32(w[2]), Height: int32(w[3])}, nil //nolint:gosec // G115: bit pattern
	case CmdScissor:
		return ScissorCommand{X: int32(w[0]), Y: int32(w[1]), Width: int32(w[2]), Height: int32(w[3])}, nil //nolint:gosec // G115: bit pattern
	case CmdSetRasterizerState:
		return SetRasterizerStateCommand{State: StateBlockHandle(w[0])}, nil
	case CmdSetDepthStencilState:
		return SetDepthStencilStateCommand{State: StateBlockHandle(w[0])}, nil
	case CmdSetBlendState:
		return SetBlendStateCommand{State: StateBlockHandle(w[0])}, nil
	case CmdBindPipeline:
		return BindPipelineCommand{Pipeline: PipelineHandle(w[0])}, nil
	case CmdBindRenderPass:
		return BindRenderPassCommand{RenderPass: RenderPassHandle(w[0])}, nil
	case CmdBindPushConstants:
		index := int(w[0])
		if index >= len(d.s.PushConstants) {
			return nil, fmt.Errorf("push constant %d of %d at word %d: %w",
				index, len(d.s.PushConstants), at, ErrTruncatedStream)
		}
		pc := &d.s.PushConstants[index]
		if pc.Size > MaxPushConstantSize {
			return nil, fmt.Errorf("push constant %d size %d: %w", index, pc.Size, ErrPushConstantSize)
		}
		return BindPushConstantsCommand{Offset: pc.Offset, Stages: pc.Stages, Data: pc.Bytes()}, nil
	case CmdBindVertexBuffer:
		return BindVertexBufferCommand{
			Slot:                w[0],
			VertexBufferBinding: VertexBufferBinding{Buffer: BufferHandle(w[1]), Stride: w[2], Offset: w[3]},
		}, nil
	case CmdBindIndexBuffer:
		return BindIndexBufferCommand{Buffer: BufferHandle(w[0]), IndexType: IndexType(w[1]), Offset: w[2]}, nil //nolint:gosec // G115: recorded from IndexType
	case CmdBindConstantBuffer:
		return BindConstantBufferCommand{Index: w[0], Buffer: BufferHandle(w[1]), Offset: w[2], Size: w[3]}, nil
	case CmdBindTexture:
		return BindTextureCommand{Index: w[0], Texture: TextureHandle(w[1])}, nil
	case CmdBindSampler:
		return BindSamplerCommand{Index: w[0], Sampler: SamplerHandle(w[1])}, nil
	case CmdDraw:
		return DrawCommand{Start: w[0], Count: w[1]}, nil
	case CmdDrawInstanced:
		return DrawInstancedCommand{Start: w[0], Count: w[1], Instances: w[2]}, nil
	case CmdDrawIndexed:
		return DrawIndexedCommand{Count: w[0], IndexOffset: w[1]}, nil
	case CmdDrawIndexedInstanced:
		return DrawIndexedInstancedCommand{Count: w[0], IndexOffset: w[1], Instances: w[2]}, nil
	}
	return nil, fmt.Errorf("opcode %v at word %d: %w", op, at, ErrUnknownOpcode)
}

// Decode returns every command of s up to, but not including, CmdEnd.
func Decode(s Stream) ([]Command, error) {
	dec := NewDecoder(s)
	var cmds []Command
	for {
		cmd, err := dec.Next()
		if err != nil {
			return cmds, err
		}
		if _, ok := cmd.(EndCommand); ok {
			return cmds, nil
		}
		cmds = append(cmds, cmd)
	}
}

// Walk decodes s and calls fn for each command before CmdEnd. It stops at
// the first error returned by fn or by the decoder.
func Walk(s Stream, fn func(Command) error) error {
	dec := NewDecoder(s)
	for {
		cmd, err := dec.Next()
		if err != nil {
			return err
		}
		if _, ok := cmd.(EndCommand); ok {
			return nil
		}
		if err := fn(cmd); err != nil {
			return err
		}
	}
}
