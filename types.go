package gfx

// enumString returns names[v] or "Unknown" when v is out of range.
func enumString[T ~uint8 | ~uint16 | ~uint32](v T, names []string) string {
	if int(v) < len(names) && names[v] != "" {
		return names[v]
	}
	return "Unknown"
}

// BufferType selects the binding target of a buffer.
type BufferType uint8

const (
	BufferVertex   BufferType = iota // Vertex attribute data
	BufferIndex                      // Index data for indexed draws
	BufferConstant                   // Uniform/constant data
)

var bufferTypeNames = []string{
	BufferVertex:   "Vertex",
	BufferIndex:    "Index",
	BufferConstant: "Constant",
}

func (t BufferType) String() string { return enumString(t, bufferTypeNames) }

// BufferUsage describes how often a buffer is written by the CPU.
type BufferUsage uint8

const (
	// UsageStatic buffers are written once at creation and read by the GPU.
	UsageStatic BufferUsage = iota
	// UsageDynamic buffers are rewritten from the CPU through MapBuffer.
	UsageDynamic
)

var bufferUsageNames = []string{
	UsageStatic:  "Static",
	UsageDynamic: "Dynamic",
}

func (u BufferUsage) String() string { return enumString(u, bufferUsageNames) }

// IndexType is the element width of an index buffer.
type IndexType uint8

const (
	Index16 IndexType = iota
	Index32
)

var indexTypeNames = []string{
	Index16: "Uint16",
	Index32: "Uint32",
}

func (t IndexType) String() string { return enumString(t, indexTypeNames) }

// Size returns the size of one index in bytes.
func (t IndexType) Size() int {
	if t == Index32 {
		return 4
	}
	return 2
}

// PrimitiveType is the topology used to assemble vertices.
type PrimitiveType uint8

const (
	TriangleList PrimitiveType = iota
	TriangleStrip
	PointList
	LineList
	LineStrip
)

var primitiveTypeNames = []string{
	TriangleList:  "TriangleList",
	TriangleStrip: "TriangleStrip",
	PointList:     "PointList",
	LineList:      "LineList",
	LineStrip:     "LineStrip",
}

func (p PrimitiveType) String() string { return enumString(p, primitiveTypeNames) }

// Semantic names the meaning of a vertex attribute.
type Semantic uint8

const (
	SemanticPosition Semantic = iota
	SemanticNormal
	SemanticTexCoord0
	SemanticTexCoord1
	SemanticTexCoord2
	SemanticTexCoord3
	SemanticColor
	SemanticTangent
)

var semanticNames = []string{
	SemanticPosition:  "Position",
	SemanticNormal:    "Normal",
	SemanticTexCoord0: "TexCoord0",
	SemanticTexCoord1: "TexCoord1",
	SemanticTexCoord2: "TexCoord2",
	SemanticTexCoord3: "TexCoord3",
	SemanticColor:     "Color",
	SemanticTangent:   "Tangent",
}

func (s Semantic) String() string { return enumString(s, semanticNames) }

// AttribName returns the shader attribute name bound to the semantic on
// backends that link attributes by name, e.g. "inPosition".
func (s Semantic) AttribName() string {
	return "in" + s.String()
}

// VertexFormat is the data format of one vertex attribute.
type VertexFormat uint8

const (
	VertexFloat1 VertexFormat = iota
	VertexFloat2
	VertexFloat3
	VertexFloat4
	VertexUByte
	VertexUShort
	VertexUInt
	VertexUByte4Norm
)

var vertexFormatNames = []string{
	VertexFloat1:     "Float1",
	VertexFloat2:     "Float2",
	VertexFloat3:     "Float3",
	VertexFloat4:     "Float4",
	VertexUByte:      "UByte",
	VertexUShort:     "UShort",
	VertexUInt:       "UInt",
	VertexUByte4Norm: "UByte4Norm",
}

func (f VertexFormat) String() string { return enumString(f, vertexFormatNames) }

// Components returns the number of components in the format.
func (f VertexFormat) Components() int {
	switch f {
	case VertexFloat2:
		return 2
	case VertexFloat3:
		return 3
	case VertexFloat4, VertexUByte4Norm:
		return 4
	default:
		return 1
	}
}

// Size returns the size of one attribute value in bytes.
func (f VertexFormat) Size() int {
	switch f {
	case VertexFloat1, VertexUInt, VertexUByte4Norm:
		return 4
	case VertexFloat2:
		return 8
	case VertexFloat3:
		return 12
	case VertexFloat4:
		return 16
	case VertexUByte:
		return 1
	case VertexUShort:
		return 2
	}
	return 0
}

// Classification selects whether an attribute advances per vertex or per
// instance.
type Classification uint8

const (
	PerVertex Classification = iota
	PerInstance
)

var classificationNames = []string{
	PerVertex:   "PerVertex",
	PerInstance: "PerInstance",
}

func (c Classification) String() string { return enumString(c, classificationNames) }

// CompareFunc is a depth, stencil or sampler comparison.
type CompareFunc uint8

const (
	CompareAlways CompareFunc = iota
	CompareNever
	CompareLess
	CompareLessEqual
	CompareEqual
	CompareNotEqual
	CompareGreater
	CompareGreaterEqual
)

var compareFuncNames = []string{
	CompareAlways:       "Always",
	CompareNever:        "Never",
	CompareLess:         "Less",
	CompareLessEqual:    "LessEqual",
	CompareEqual:        "Equal",
	CompareNotEqual:     "NotEqual",
	CompareGreater:      "Greater",
	CompareGreaterEqual: "GreaterEqual",
}

func (c CompareFunc) String() string { return enumString(c, compareFuncNames) }

// StencilOp is the action applied to the stencil buffer.
type StencilOp uint8

const (
	StencilKeep StencilOp = iota
	StencilZero
	StencilReplace
	StencilIncrSat
	StencilDecrSat
	StencilInvert
	StencilIncrWrap
	StencilDecrWrap
)

var stencilOpNames = []string{
	StencilKeep:     "Keep",
	StencilZero:     "Zero",
	StencilReplace:  "Replace",
	StencilIncrSat:  "IncrSat",
	StencilDecrSat:  "DecrSat",
	StencilInvert:   "Invert",
	StencilIncrWrap: "IncrWrap",
	StencilDecrWrap: "DecrWrap",
}

func (s StencilOp) String() string { return enumString(s, stencilOpNames) }

// FillMode selects polygon rasterization.
type FillMode uint8

const (
	FillSolid FillMode = iota
	FillWireframe
)

var fillModeNames = []string{
	FillSolid:     "Solid",
	FillWireframe: "Wireframe",
}

func (f FillMode) String() string { return enumString(f, fillModeNames) }

// CullMode selects which faces are discarded.
type CullMode uint8

const (
	CullNone CullMode = iota
	CullBack
	CullFront
)

var cullModeNames = []string{
	CullNone:  "None",
	CullBack:  "Back",
	CullFront: "Front",
}

func (c CullMode) String() string { return enumString(c, cullModeNames) }

// BlendFactor scales a source or destination color in blending.
type BlendFactor uint8

const (
	BlendZero BlendFactor = iota
	BlendOne
	BlendSrcColor
	BlendOneMinusSrcColor
	BlendSrcAlpha
	BlendOneMinusSrcAlpha
	BlendDstColor
	BlendOneMinusDstColor
	BlendDstAlpha
	BlendOneMinusDstAlpha
)

var blendFactorNames = []string{
	BlendZero:             "Zero",
	BlendOne:              "One",
	BlendSrcColor:         "SrcColor",
	BlendOneMinusSrcColor: "OneMinusSrcColor",
	BlendSrcAlpha:         "SrcAlpha",
	BlendOneMinusSrcAlpha: "OneMinusSrcAlpha",
	BlendDstColor:         "DstColor",
	BlendOneMinusDstColor: "OneMinusDstColor",
	BlendDstAlpha:         "DstAlpha",
	BlendOneMinusDstAlpha: "OneMinusDstAlpha",
}

func (f BlendFactor) String() string { return enumString(f, blendFactorNames) }

// BlendOp combines the scaled source and destination.
type BlendOp uint8

const (
	BlendOpAdd BlendOp = iota
	BlendOpSubtract
	BlendOpReverseSubtract
	BlendOpMin
	BlendOpMax
)

var blendOpNames = []string{
	BlendOpAdd:             "Add",
	BlendOpSubtract:        "Subtract",
	BlendOpReverseSubtract: "ReverseSubtract",
	BlendOpMin:             "Min",
	BlendOpMax:             "Max",
}

func (o BlendOp) String() string { return enumString(o, blendOpNames) }

// ColorWriteMask selects the color channels written by draws.
// The zero value writes no channels.
type ColorWriteMask uint8

const (
	WriteRed ColorWriteMask = 1 << iota
	WriteGreen
	WriteBlue
	WriteAlpha

	WriteNone ColorWriteMask = 0
	WriteAll                 = WriteRed | WriteGreen | WriteBlue | WriteAlpha
)

// Filter is a texel filtering mode.
type Filter uint8

const (
	FilterNearest Filter = iota
	FilterLinear
)

var filterNames = []string{
	FilterNearest: "Nearest",
	FilterLinear:  "Linear",
}

func (f Filter) String() string { return enumString(f, filterNames) }

// MipmapMode selects filtering between mip levels.
type MipmapMode uint8

const (
	MipNone MipmapMode = iota
	MipNearest
	MipLinear
)

var mipmapModeNames = []string{
	MipNone:    "None",
	MipNearest: "Nearest",
	MipLinear:  "Linear",
}

func (m MipmapMode) String() string { return enumString(m, mipmapModeNames) }

// AddressMode selects how texture coordinates outside [0,1] are resolved.
type AddressMode uint8

const (
	AddressRepeat AddressMode = iota
	AddressClampToEdge
	AddressMirroredRepeat
	AddressClampToBorder
)

var addressModeNames = []string{
	AddressRepeat:         "Repeat",
	AddressClampToEdge:    "ClampToEdge",
	AddressMirroredRepeat: "MirroredRepeat",
	AddressClampToBorder:  "ClampToBorder",
}

func (a AddressMode) String() string { return enumString(a, addressModeNames) }

// TextureType is the dimensionality of a texture.
type TextureType uint8

const (
	Texture1D TextureType = iota
	Texture2D
	Texture3D
	TextureCube
)

var textureTypeNames = []string{
	Texture1D:   "1D",
	Texture2D:   "2D",
	Texture3D:   "3D",
	TextureCube: "Cube",
}

func (t TextureType) String() string { return enumString(t, textureTypeNames) }

// TextureFormat is the texel format of a texture.
type TextureFormat uint8

const (
	TextureFormatUndefined TextureFormat = iota
	TextureFormatRGBA8Unorm
	TextureFormatRGBA8UnormSRGB
	TextureFormatBGRA8Unorm
	TextureFormatR8Unorm
	TextureFormatRG8Unorm
	TextureFormatR32Float
	TextureFormatRGBA16Float
	TextureFormatRGBA32Float
	TextureFormatDepth24
	TextureFormatDepth32Float
	TextureFormatDepth24Stencil8
)

var textureFormatNames = []string{
	TextureFormatUndefined:       "Undefined",
	TextureFormatRGBA8Unorm:      "RGBA8Unorm",
	TextureFormatRGBA8UnormSRGB:  "RGBA8UnormSRGB",
	TextureFormatBGRA8Unorm:      "BGRA8Unorm",
	TextureFormatR8Unorm:         "R8Unorm",
	TextureFormatRG8Unorm:        "RG8Unorm",
	TextureFormatR32Float:        "R32Float",
	TextureFormatRGBA16Float:     "RGBA16Float",
	TextureFormatRGBA32Float:     "RGBA32Float",
	TextureFormatDepth24:         "Depth24",
	TextureFormatDepth32Float:    "Depth32Float",
	TextureFormatDepth24Stencil8: "Depth24Stencil8",
}

func (f TextureFormat) String() string { return enumString(f, textureFormatNames) }

// IsDepth reports whether the format has a depth aspect.
func (f TextureFormat) IsDepth() bool {
	return f == TextureFormatDepth24 || f == TextureFormatDepth32Float || f == TextureFormatDepth24Stencil8
}

// HasStencil reports whether the format has a stencil aspect.
func (f TextureFormat) HasStencil() bool {
	return f == TextureFormatDepth24Stencil8
}

// BytesPerPixel returns the size of one texel in bytes, or 0 for
// TextureFormatUndefined.
func (f TextureFormat) BytesPerPixel() int {
	switch f {
	case TextureFormatR8Unorm:
		return 1
	case TextureFormatRG8Unorm:
		return 2
	case TextureFormatRGBA8Unorm, TextureFormatRGBA8UnormSRGB, TextureFormatBGRA8Unorm,
		TextureFormatR32Float, TextureFormatDepth24, TextureFormatDepth32Float, TextureFormatDepth24Stencil8:
		return 4
	case TextureFormatRGBA16Float:
		return 8
	case TextureFormatRGBA32Float:
		return 16
	}
	return 0
}

// LoadAction is what happens to an attachment when its render pass is bound.
type LoadAction uint8

const (
	// LoadActionLoad preserves the attachment contents.
	LoadActionLoad LoadAction = iota
	// LoadActionClear fills the attachment with its clear value.
	LoadActionClear
)

var loadActionNames = []string{
	LoadActionLoad:  "Load",
	LoadActionClear: "Clear",
}

func (a LoadAction) String() string { return enumString(a, loadActionNames) }

// ShaderStage is a bitmask of programmable pipeline stages.
type ShaderStage uint8

const (
	StageVertex ShaderStage = 1 << iota
	StageFragment
	StageGeometry
)

// String returns the name of a single stage, or "Unknown" for masks.
func (s ShaderStage) String() string {
	switch s {
	case StageVertex:
		return "Vertex"
	case StageFragment:
		return "Fragment"
	case StageGeometry:
		return "Geometry"
	}
	return "Unknown"
}

// BindingKind is the kind of resource a pipeline binding slot receives.
type BindingKind uint8

const (
	BindingConstantBuffer BindingKind = iota
	BindingTexture
	BindingSampler
	BindingPushConstants
)

var bindingKindNames = []string{
	BindingConstantBuffer: "ConstantBuffer",
	BindingTexture:        "Texture",
	BindingSampler:        "Sampler",
	BindingPushConstants:  "PushConstants",
}

func (k BindingKind) String() string { return enumString(k, bindingKindNames) }

// StateBlockKind tells which fixed-function descriptor a state block holds.
type StateBlockKind uint8

const (
	StateRasterizer StateBlockKind = iota
	StateDepthStencil
	StateBlend
)

var stateBlockKindNames = []string{
	StateRasterizer:   "Rasterizer",
	StateDepthStencil: "DepthStencil",
	StateBlend:        "Blend",
}

func (k StateBlockKind) String() string { return enumString(k, stateBlockKindNames) }
