package gl

import (
	"fmt"

	"github.com/gogpu/gfx"
)

// lookup translates v through table, reporting out-of-range values as
// gfx.ErrInvalidDescriptor.
func lookup[T ~uint8](what string, v T, table []Enum) (Enum, error) {
	if int(v) >= len(table) {
		return 0, fmt.Errorf("%w: %s %d", gfx.ErrInvalidDescriptor, what, v)
	}
	return table[v], nil
}

var bufferTargets = []Enum{
	gfx.BufferVertex:   ARRAY_BUFFER,
	gfx.BufferIndex:    ELEMENT_ARRAY_BUFFER,
	gfx.BufferConstant: UNIFORM_BUFFER,
}

var bufferUsages = []Enum{
	gfx.UsageStatic:  STATIC_DRAW,
	gfx.UsageDynamic: DYNAMIC_DRAW,
}

var primitiveModes = []Enum{
	gfx.TriangleList:  TRIANGLES,
	gfx.TriangleStrip: TRIANGLE_STRIP,
	gfx.PointList:     POINTS,
	gfx.LineList:      LINES,
	gfx.LineStrip:     LINE_STRIP,
}

var indexTypes = []Enum{
	gfx.Index16: UNSIGNED_SHORT,
	gfx.Index32: UNSIGNED_INT,
}

var compareFuncs = []Enum{
	gfx.CompareAlways:       ALWAYS,
	gfx.CompareNever:        NEVER,
	gfx.CompareLess:         LESS,
	gfx.CompareLessEqual:    LEQUAL,
	gfx.CompareEqual:        EQUAL,
	gfx.CompareNotEqual:     NOTEQUAL,
	gfx.CompareGreater:      GREATER,
	gfx.CompareGreaterEqual: GEQUAL,
}

var stencilOps = []Enum{
	gfx.StencilKeep:     KEEP,
	gfx.StencilZero:     ZERO,
	gfx.StencilReplace:  REPLACE,
	gfx.StencilIncrSat:  INCR,
	gfx.StencilDecrSat:  DECR,
	gfx.StencilInvert:   INVERT,
	gfx.StencilIncrWrap: INCR_WRAP,
	gfx.StencilDecrWrap: DECR_WRAP,
}

var blendFactors = []Enum{
	gfx.BlendZero:             ZERO,
	gfx.BlendOne:              ONE,
	gfx.BlendSrcColor:         SRC_COLOR,
	gfx.BlendOneMinusSrcColor: ONE_MINUS_SRC_COLOR,
	gfx.BlendSrcAlpha:         SRC_ALPHA,
	gfx.BlendOneMinusSrcAlpha: ONE_MINUS_SRC_ALPHA,
	gfx.BlendDstColor:         DST_COLOR,
	gfx.BlendOneMinusDstColor: ONE_MINUS_DST_COLOR,
	gfx.BlendDstAlpha:         DST_ALPHA,
	gfx.BlendOneMinusDstAlpha: ONE_MINUS_DST_ALPHA,
}

var blendOps = []Enum{
	gfx.BlendOpAdd:             FUNC_ADD,
	gfx.BlendOpSubtract:        FUNC_SUBTRACT,
	gfx.BlendOpReverseSubtract: FUNC_REVERSE_SUBTRACT,
	gfx.BlendOpMin:             MIN,
	gfx.BlendOpMax:             MAX,
}

var addressModes = []Enum{
	gfx.AddressRepeat:         REPEAT,
	gfx.AddressClampToEdge:    CLAMP_TO_EDGE,
	gfx.AddressMirroredRepeat: MIRRORED_REPEAT,
	gfx.AddressClampToBorder:  CLAMP_TO_BORDER,
}

var textureTargets = []Enum{
	gfx.Texture1D:   TEXTURE_1D,
	gfx.Texture2D:   TEXTURE_2D,
	gfx.Texture3D:   TEXTURE_3D,
	gfx.TextureCube: TEXTURE_CUBE_MAP,
}

var shaderTypes = map[gfx.ShaderStage]Enum{
	gfx.StageVertex:   VERTEX_SHADER,
	gfx.StageFragment: FRAGMENT_SHADER,
	gfx.StageGeometry: GEOMETRY_SHADER,
}

// textureFormat is the internal format, pixel format and pixel type passed
// to glTexImage for a gfx.TextureFormat.
type textureFormat struct {
	internal Enum
	format   Enum
	typ      Enum
}

var textureFormats = []textureFormat{
	gfx.TextureFormatUndefined:       {},
	gfx.TextureFormatRGBA8Unorm:      {RGBA8, RGBA, UNSIGNED_BYTE},
	gfx.TextureFormatRGBA8UnormSRGB:  {SRGB8_ALPHA8, RGBA, UNSIGNED_BYTE},
	gfx.TextureFormatBGRA8Unorm:      {RGBA8, BGRA, UNSIGNED_BYTE},
	gfx.TextureFormatR8Unorm:         {R8, RED, UNSIGNED_BYTE},
	gfx.TextureFormatRG8Unorm:        {RG8, RG, UNSIGNED_BYTE},
	gfx.TextureFormatR32Float:        {R32F, RED, FLOAT},
	gfx.TextureFormatRGBA16Float:     {RGBA16F, RGBA, HALF_FLOAT},
	gfx.TextureFormatRGBA32Float:     {RGBA32F, RGBA, FLOAT},
	gfx.TextureFormatDepth24:         {DEPTH_COMPONENT24, DEPTH_COMPONENT, UNSIGNED_INT},
	gfx.TextureFormatDepth32Float:    {DEPTH_COMPONENT32F, DEPTH_COMPONENT, FLOAT},
	gfx.TextureFormatDepth24Stencil8: {DEPTH24_STENCIL8, DEPTH_STENCIL, UNSIGNED_INT_24_8},
}

func convertTextureFormat(f gfx.TextureFormat) (textureFormat, error) {
	if int(f) >= len(textureFormats) || textureFormats[f].internal == 0 {
		return textureFormat{}, fmt.Errorf("%w: texture format %v", gfx.ErrInvalidDescriptor, f)
	}
	return textureFormats[f], nil
}

// vertexAttrib is the glVertexAttribPointer form of a gfx.VertexFormat.
type vertexAttrib struct {
	size       int32
	typ        Enum
	normalized bool
}

var vertexAttribs = []vertexAttrib{
	gfx.VertexFloat1:     {1, FLOAT, false},
	gfx.VertexFloat2:     {2, FLOAT, false},
	gfx.VertexFloat3:     {3, FLOAT, false},
	gfx.VertexFloat4:     {4, FLOAT, false},
	gfx.VertexUByte:      {1, UNSIGNED_BYTE, false},
	gfx.VertexUShort:     {1, UNSIGNED_SHORT, false},
	gfx.VertexUInt:       {1, UNSIGNED_INT, false},
	gfx.VertexUByte4Norm: {4, UNSIGNED_BYTE, true},
}

func convertVertexFormat(f gfx.VertexFormat) (vertexAttrib, error) {
	if int(f) >= len(vertexAttribs) {
		return vertexAttrib{}, fmt.Errorf("%w: vertex format %d", gfx.ErrInvalidDescriptor, f)
	}
	return vertexAttribs[f], nil
}

// minFilter combines the minification and mipmap filters into the single
// GL minification enum.
func minFilter(f gfx.Filter, m gfx.MipmapMode) Enum {
	switch m {
	case gfx.MipNearest:
		if f == gfx.FilterLinear {
			return LINEAR_MIPMAP_NEAREST
		}
		return NEAREST_MIPMAP_NEAREST
	case gfx.MipLinear:
		if f == gfx.FilterLinear {
			return LINEAR_MIPMAP_LINEAR
		}
		return NEAREST_MIPMAP_LINEAR
	}
	if f == gfx.FilterLinear {
		return LINEAR
	}
	return NEAREST
}

func magFilter(f gfx.Filter) Enum {
	if f == gfx.FilterLinear {
		return LINEAR
	}
	return NEAREST
}
