package gfx

import (
	"fmt"
	"math/bits"
)

// MaxColorAttachments is the maximum number of color attachments in a
// render pass.
const MaxColorAttachments = 8

// BufferDesc describes a buffer to create.
type BufferDesc struct {
	// Label is an optional debug label.
	Label string

	Type  BufferType
	Usage BufferUsage

	// Size is the buffer size in bytes.
	Size int

	// Data is optional initial contents. It may be shorter than Size.
	Data []byte
}

// Validate checks the descriptor for values no backend can accept.
func (d *BufferDesc) Validate() error {
	if d.Size <= 0 {
		return fmt.Errorf("%w: buffer size %d", ErrInvalidDescriptor, d.Size)
	}
	if len(d.Data) > d.Size {
		return fmt.Errorf("%w: %d bytes of data for %d byte buffer", ErrInvalidDescriptor, len(d.Data), d.Size)
	}
	if int(d.Type) >= len(bufferTypeNames) {
		return fmt.Errorf("%w: buffer type %d", ErrInvalidDescriptor, d.Type)
	}
	if int(d.Usage) >= len(bufferUsageNames) {
		return fmt.Errorf("%w: buffer usage %d", ErrInvalidDescriptor, d.Usage)
	}
	return nil
}

// InputLayoutElement describes one vertex attribute. Its index in
// PipelineDesc.InputLayout is the attribute location.
type InputLayoutElement struct {
	Semantic       Semantic
	Format         VertexFormat
	Classification Classification

	// Slot is the vertex buffer binding slot the attribute is read from.
	Slot uint32

	// Offset is the byte offset of the attribute within one vertex.
	Offset uint32

	// Stride is the default vertex stride. A non-zero stride recorded with
	// BindVertexBuffer overrides it.
	Stride uint32
}

// ShaderStageDesc is the source of one shader stage in the backend's native
// language (GLSL for gl, WGSL for wgpu).
type ShaderStageDesc struct {
	Stage  ShaderStage
	Source string

	// EntryPoint is the entry function. Backends whose language fixes the
	// entry point ignore it.
	EntryPoint string
}

// ResourceBinding declares a resource slot a pipeline reads.
type ResourceBinding struct {
	Kind BindingKind

	// Slot is the index used by BindConstantBuffer, BindTexture and
	// BindSampler. It is ignored for push constants.
	Slot uint32

	// Name is the shader-side name of the uniform block or sampler, used by
	// backends that resolve bindings by name.
	Name string

	Stages ShaderStage
}

// PipelineDesc describes a vertex layout, shader program and topology.
type PipelineDesc struct {
	Label       string
	InputLayout []InputLayoutElement
	Shaders     []ShaderStageDesc
	Topology    PrimitiveType
	Bindings    []ResourceBinding
}

// Shader returns the stage description for stage, if present.
func (d *PipelineDesc) Shader(stage ShaderStage) (ShaderStageDesc, bool) {
	for _, s := range d.Shaders {
		if s.Stage == stage {
			return s, true
		}
	}
	return ShaderStageDesc{}, false
}

// Validate checks the descriptor for values no backend can accept.
func (d *PipelineDesc) Validate() error {
	var seen ShaderStage
	for _, s := range d.Shaders {
		if bits.OnesCount8(uint8(s.Stage)) != 1 || s.Stage > StageGeometry {
			return fmt.Errorf("%w: shader stage mask %#x", ErrInvalidDescriptor, uint8(s.Stage))
		}
		if seen&s.Stage != 0 {
			return fmt.Errorf("%w: duplicate %s stage", ErrInvalidDescriptor, s.Stage)
		}
		if s.Source == "" {
			return fmt.Errorf("%w: empty %s shader source", ErrInvalidDescriptor, s.Stage)
		}
		seen |= s.Stage
	}
	if seen&StageVertex == 0 {
		return fmt.Errorf("%w: pipeline has no vertex stage", ErrInvalidDescriptor)
	}
	if int(d.Topology) >= len(primitiveTypeNames) {
		return fmt.Errorf("%w: topology %d", ErrInvalidDescriptor, d.Topology)
	}
	for i, e := range d.InputLayout {
		if int(e.Format) >= len(vertexFormatNames) {
			return fmt.Errorf("%w: input element %d format %d", ErrInvalidDescriptor, i, e.Format)
		}
		if int(e.Classification) >= len(classificationNames) {
			return fmt.Errorf("%w: input element %d classification %d", ErrInvalidDescriptor, i, e.Classification)
		}
	}
	pushConstants := 0
	for _, b := range d.Bindings {
		if int(b.Kind) >= len(bindingKindNames) {
			return fmt.Errorf("%w: binding kind %d", ErrInvalidDescriptor, b.Kind)
		}
		if b.Kind == BindingPushConstants {
			pushConstants++
		}
	}
	if pushConstants > 1 {
		return fmt.Errorf("%w: %d push constant bindings", ErrInvalidDescriptor, pushConstants)
	}
	return nil
}

// RasterizerStateDesc holds fixed-function rasterizer settings.
// The zero value rasterizes solid, unculled, clockwise-front triangles.
type RasterizerStateDesc struct {
	// DisableRasterizer discards all primitives before rasterization.
	DisableRasterizer bool

	FrontCounterClockwise bool
	ScissorTest           bool

	// DepthClamp clamps depth instead of clipping against near and far.
	DepthClamp bool

	Fill FillMode
	Cull CullMode

	DepthBias            int32
	SlopeScaledDepthBias float32
	DepthBiasClamp       float32
}

// DefaultRasterizerState returns back-face culling with counter-clockwise
// front faces.
func DefaultRasterizerState() RasterizerStateDesc {
	return RasterizerStateDesc{
		FrontCounterClockwise: true,
		Fill:                  FillSolid,
		Cull:                  CullBack,
	}
}

// StencilFaceDesc holds stencil operations for one face.
type StencilFaceDesc struct {
	FailOp      StencilOp
	DepthFailOp StencilOp
	PassOp      StencilOp
	Func        CompareFunc
}

// DepthStencilStateDesc holds depth and stencil test settings.
type DepthStencilStateDesc struct {
	DepthTest  bool
	DepthWrite bool
	DepthFunc  CompareFunc

	StencilTest bool
	Front       StencilFaceDesc
	Back        StencilFaceDesc

	StencilRef       uint8
	StencilReadMask  uint8
	StencilWriteMask uint8
}

// DefaultDepthStencilState returns depth testing with writes and a Less
// comparison, with stencil disabled.
func DefaultDepthStencilState() DepthStencilStateDesc {
	face := StencilFaceDesc{
		FailOp:      StencilKeep,
		DepthFailOp: StencilKeep,
		PassOp:      StencilKeep,
		Func:        CompareAlways,
	}
	return DepthStencilStateDesc{
		DepthTest:        true,
		DepthWrite:       true,
		DepthFunc:        CompareLess,
		Front:            face,
		Back:             face,
		StencilReadMask:  0xFF,
		StencilWriteMask: 0xFF,
	}
}

// BlendStateDesc holds color blending settings shared by all color
// attachments.
type BlendStateDesc struct {
	Enabled bool

	SrcColor BlendFactor
	DstColor BlendFactor
	ColorOp  BlendOp

	SrcAlpha BlendFactor
	DstAlpha BlendFactor
	AlphaOp  BlendOp

	WriteMask ColorWriteMask
}

// DefaultBlendState returns blending disabled with all channels written.
func DefaultBlendState() BlendStateDesc {
	return BlendStateDesc{
		SrcColor:  BlendOne,
		DstColor:  BlendZero,
		SrcAlpha:  BlendOne,
		DstAlpha:  BlendZero,
		WriteMask: WriteAll,
	}
}

// AlphaBlendState returns straight alpha blending.
func AlphaBlendState() BlendStateDesc {
	return BlendStateDesc{
		Enabled:   true,
		SrcColor:  BlendSrcAlpha,
		DstColor:  BlendOneMinusSrcAlpha,
		SrcAlpha:  BlendOne,
		DstAlpha:  BlendOneMinusSrcAlpha,
		WriteMask: WriteAll,
	}
}

// SamplerDesc describes texture sampling independent of any texture.
type SamplerDesc struct {
	Label string

	MinFilter Filter
	MagFilter Filter
	Mipmap    MipmapMode

	AddressU AddressMode
	AddressV AddressMode
	AddressW AddressMode

	MinLOD float32
	MaxLOD float32

	// Compare enables depth comparison sampling with CompareFunc.
	Compare     bool
	CompareFunc CompareFunc

	BorderColor [4]float32
}

// Validate checks the descriptor for values no backend can accept.
func (d *SamplerDesc) Validate() error {
	if d.MaxLOD != 0 && d.MaxLOD < d.MinLOD {
		return fmt.Errorf("%w: sampler MaxLOD %v < MinLOD %v", ErrInvalidDescriptor, d.MaxLOD, d.MinLOD)
	}
	for _, m := range []AddressMode{d.AddressU, d.AddressV, d.AddressW} {
		if int(m) >= len(addressModeNames) {
			return fmt.Errorf("%w: address mode %d", ErrInvalidDescriptor, m)
		}
	}
	return nil
}

// TextureDesc describes a texture to create.
type TextureDesc struct {
	Label  string
	Type   TextureType
	Format TextureFormat

	Width  int
	Height int

	// Depth is the depth of a 3D texture. Other types ignore it.
	Depth int

	// MipLevels is the number of mip levels. Zero means one.
	MipLevels int

	// RenderTarget allows the texture to be used as a render pass
	// attachment.
	RenderTarget bool

	// Data is optional tightly packed contents of mip level 0. Cube faces
	// are concatenated in +X, -X, +Y, -Y, +Z, -Z order.
	Data []byte
}

// Extent returns width, height and depth with unused dimensions set to 1.
func (d *TextureDesc) Extent() (w, h, depth int) {
	w, h, depth = d.Width, d.Height, 1
	switch d.Type {
	case Texture1D:
		h = 1
	case Texture3D:
		depth = d.Depth
	case TextureCube:
		depth = 6
	}
	return w, h, depth
}

// Levels returns MipLevels with the zero default applied.
func (d *TextureDesc) Levels() int {
	if d.MipLevels <= 0 {
		return 1
	}
	return d.MipLevels
}

// Validate checks the descriptor for values no backend can accept.
func (d *TextureDesc) Validate() error {
	if int(d.Type) >= len(textureTypeNames) {
		return fmt.Errorf("%w: texture type %d", ErrUnsupportedTexture, d.Type)
	}
	if d.Format == TextureFormatUndefined || int(d.Format) >= len(textureFormatNames) {
		return fmt.Errorf("%w: texture format %d", ErrInvalidDescriptor, d.Format)
	}
	w, h, depth := d.Extent()
	if w <= 0 || h <= 0 || depth <= 0 {
		return fmt.Errorf("%w: texture extent %dx%dx%d", ErrInvalidDescriptor, w, h, depth)
	}
	if d.Type == TextureCube && w != h {
		return fmt.Errorf("%w: cube texture %dx%d is not square", ErrInvalidDescriptor, w, h)
	}
	if d.Format.IsDepth() && (d.Type == Texture3D || d.Type == Texture1D) {
		return fmt.Errorf("%w: depth format on %s texture", ErrUnsupportedTexture, d.Type)
	}
	maxDim := max(w, h)
	if d.Type == Texture3D {
		maxDim = max(maxDim, depth)
	}
	if maxLevels := bits.Len(uint(maxDim)); d.Levels() > maxLevels {
		return fmt.Errorf("%w: %d mip levels for %d texels", ErrInvalidDescriptor, d.Levels(), maxDim)
	}
	if d.Data != nil {
		if want := w * h * depth * d.Format.BytesPerPixel(); len(d.Data) != want {
			return fmt.Errorf("%w: texture data is %d bytes, want %d", ErrInvalidDescriptor, len(d.Data), want)
		}
	}
	return nil
}

// ColorAttachment is one color target of a render pass.
type ColorAttachment struct {
	Texture TextureHandle
	Level   int

	// Layer selects the cube face or 3D slice.
	Layer int

	Load       LoadAction
	ClearColor [4]float32
}

// DepthAttachment is the depth target of a render pass.
type DepthAttachment struct {
	Texture    TextureHandle
	Level      int
	Load       LoadAction
	ClearDepth float32
}

// StencilAttachment is the stencil target of a render pass. It may name the
// same texture as the depth attachment.
type StencilAttachment struct {
	Texture      TextureHandle
	Level        int
	Load         LoadAction
	ClearStencil uint8
}

// RenderPassDesc describes the targets of subsequent draws.
type RenderPassDesc struct {
	Label   string
	Colors  []ColorAttachment
	Depth   *DepthAttachment
	Stencil *StencilAttachment
}

// HasAttachments reports whether the pass has any attachment at all.
func (d *RenderPassDesc) HasAttachments() bool {
	return len(d.Colors) > 0 || d.Depth != nil || d.Stencil != nil
}

// Validate checks the descriptor for values no backend can accept.
func (d *RenderPassDesc) Validate() error {
	if len(d.Colors) > MaxColorAttachments {
		return fmt.Errorf("%w: %d color attachments, max %d", ErrInvalidDescriptor, len(d.Colors), MaxColorAttachments)
	}
	for i, c := range d.Colors {
		if !c.Texture.IsValid() {
			return fmt.Errorf("%w: color attachment %d: %w", ErrIncompleteRenderPass, i, ErrInvalidHandle)
		}
		if c.Level < 0 || c.Layer < 0 {
			return fmt.Errorf("%w: color attachment %d level %d layer %d", ErrInvalidDescriptor, i, c.Level, c.Layer)
		}
	}
	if d.Depth != nil && !d.Depth.Texture.IsValid() {
		return fmt.Errorf("%w: depth attachment: %w", ErrIncompleteRenderPass, ErrInvalidHandle)
	}
	if d.Stencil != nil && !d.Stencil.Texture.IsValid() {
		return fmt.Errorf("%w: stencil attachment: %w", ErrIncompleteRenderPass, ErrInvalidHandle)
	}
	return nil
}
