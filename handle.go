package gfx

import "fmt"

// Handle is an opaque 32-bit resource identifier. The low 20 bits hold a
// table slot index and the high 12 bits hold the slot generation, so a
// handle to a deleted resource is detected even after its slot is reused.
//
// The zero Handle is never issued.
type Handle uint32

const (
	handleIndexBits = 20
	handleIndexMask = 1<<handleIndexBits - 1
	maxGeneration   = 1<<(32-handleIndexBits) - 1
)

// InvalidHandle is the zero handle.
const InvalidHandle Handle = 0

func makeHandle(index, generation uint32) Handle {
	return Handle(generation<<handleIndexBits | index&handleIndexMask)
}

// Index returns the table slot of the handle.
func (h Handle) Index() uint32 { return uint32(h) & handleIndexMask }

// Generation returns the slot generation of the handle.
func (h Handle) Generation() uint32 { return uint32(h) >> handleIndexBits }

// IsValid reports whether h is not the zero handle. It does not check that
// the resource is live.
func (h Handle) IsValid() bool { return h != InvalidHandle }

func (h Handle) String() string {
	if !h.IsValid() {
		return "invalid"
	}
	return fmt.Sprintf("%d#%d", h.Index(), h.Generation())
}

// BufferHandle identifies a buffer.
type BufferHandle Handle

// PipelineHandle identifies a pipeline.
type PipelineHandle Handle

// StateBlockHandle identifies a rasterizer, depth-stencil or blend state.
type StateBlockHandle Handle

// SamplerHandle identifies a sampler.
type SamplerHandle Handle

// TextureHandle identifies a texture.
type TextureHandle Handle

// RenderPassHandle identifies a render pass.
type RenderPassHandle Handle

func (h BufferHandle) IsValid() bool     { return Handle(h).IsValid() }
func (h PipelineHandle) IsValid() bool   { return Handle(h).IsValid() }
func (h StateBlockHandle) IsValid() bool { return Handle(h).IsValid() }
func (h SamplerHandle) IsValid() bool    { return Handle(h).IsValid() }
func (h TextureHandle) IsValid() bool    { return Handle(h).IsValid() }
func (h RenderPassHandle) IsValid() bool { return Handle(h).IsValid() }

func (h BufferHandle) String() string     { return "buffer " + Handle(h).String() }
func (h PipelineHandle) String() string   { return "pipeline " + Handle(h).String() }
func (h StateBlockHandle) String() string { return "state block " + Handle(h).String() }
func (h SamplerHandle) String() string    { return "sampler " + Handle(h).String() }
func (h TextureHandle) String() string    { return "texture " + Handle(h).String() }
func (h RenderPassHandle) String() string { return "render pass " + Handle(h).String() }
