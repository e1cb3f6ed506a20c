package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gfx"
)

// lookup translates v through table, reporting out-of-range values as
// gfx.ErrInvalidDescriptor.
func lookup[T ~uint8, E comparable](what string, v T, table []E) (E, error) {
	var zero E
	if int(v) >= len(table) {
		return zero, fmt.Errorf("%w: %s %d", gfx.ErrInvalidDescriptor, what, v)
	}
	return table[v], nil
}

// supported is lookup for tables whose zero entries are gfx values with no
// HAL equivalent.
func supported[T interface {
	~uint8
	fmt.Stringer
}, E comparable](what string, v T, table []E) (E, error) {
	e, err := lookup(what, v, table)
	if err != nil {
		return e, err
	}
	var zero E
	if e == zero {
		return e, fmt.Errorf("%w: %s %v is not supported by wgpu", gfx.ErrInvalidDescriptor, what, v)
	}
	return e, nil
}

var primitiveTopologies = []gputypes.PrimitiveTopology{
	gfx.TriangleList:  gputypes.PrimitiveTopologyTriangleList,
	gfx.TriangleStrip: gputypes.PrimitiveTopologyTriangleStrip,
	gfx.PointList:     gputypes.PrimitiveTopologyPointList,
	gfx.LineList:      gputypes.PrimitiveTopologyLineList,
	gfx.LineStrip:     gputypes.PrimitiveTopologyLineStrip,
}

var indexFormats = []gputypes.IndexFormat{
	gfx.Index16: gputypes.IndexFormatUint16,
	gfx.Index32: gputypes.IndexFormatUint32,
}

// Single byte and short attributes have no WebGPU vertex format.
var vertexFormats = []gputypes.VertexFormat{
	gfx.VertexFloat1:     gputypes.VertexFormatFloat32,
	gfx.VertexFloat2:     gputypes.VertexFormatFloat32x2,
	gfx.VertexFloat3:     gputypes.VertexFormatFloat32x3,
	gfx.VertexFloat4:     gputypes.VertexFormatFloat32x4,
	gfx.VertexUByte:      0,
	gfx.VertexUShort:     0,
	gfx.VertexUInt:       gputypes.VertexFormatUint32,
	gfx.VertexUByte4Norm: gputypes.VertexFormatUnorm8x4,
}

var compareFuncs = []gputypes.CompareFunction{
	gfx.CompareAlways:       gputypes.CompareFunctionAlways,
	gfx.CompareNever:        gputypes.CompareFunctionNever,
	gfx.CompareLess:         gputypes.CompareFunctionLess,
	gfx.CompareLessEqual:    gputypes.CompareFunctionLessEqual,
	gfx.CompareEqual:        gputypes.CompareFunctionEqual,
	gfx.CompareNotEqual:     gputypes.CompareFunctionNotEqual,
	gfx.CompareGreater:      gputypes.CompareFunctionGreater,
	gfx.CompareGreaterEqual: gputypes.CompareFunctionGreaterEqual,
}

// stencilOps is indexed by gfx.StencilOp. The HAL's Keep is its zero value,
// so this table is translated with lookup, not supported.
var stencilOps = []hal.StencilOperation{
	gfx.StencilKeep:     hal.StencilOperationKeep,
	gfx.StencilZero:     hal.StencilOperationZero,
	gfx.StencilReplace:  hal.StencilOperationReplace,
	gfx.StencilIncrSat:  hal.StencilOperationIncrementClamp,
	gfx.StencilDecrSat:  hal.StencilOperationDecrementClamp,
	gfx.StencilInvert:   hal.StencilOperationInvert,
	gfx.StencilIncrWrap: hal.StencilOperationIncrementWrap,
	gfx.StencilDecrWrap: hal.StencilOperationDecrementWrap,
}

var cullModes = []gputypes.CullMode{
	gfx.CullNone:  gputypes.CullModeNone,
	gfx.CullBack:  gputypes.CullModeBack,
	gfx.CullFront: gputypes.CullModeFront,
}

var blendFactors = []gputypes.BlendFactor{
	gfx.BlendZero:             gputypes.BlendFactorZero,
	gfx.BlendOne:              gputypes.BlendFactorOne,
	gfx.BlendSrcColor:         gputypes.BlendFactorSrc,
	gfx.BlendOneMinusSrcColor: gputypes.BlendFactorOneMinusSrc,
	gfx.BlendSrcAlpha:         gputypes.BlendFactorSrcAlpha,
	gfx.BlendOneMinusSrcAlpha: gputypes.BlendFactorOneMinusSrcAlpha,
	gfx.BlendDstColor:         gputypes.BlendFactorDst,
	gfx.BlendOneMinusDstColor: gputypes.BlendFactorOneMinusDst,
	gfx.BlendDstAlpha:         gputypes.BlendFactorDstAlpha,
	gfx.BlendOneMinusDstAlpha: gputypes.BlendFactorOneMinusDstAlpha,
}

var blendOps = []gputypes.BlendOperation{
	gfx.BlendOpAdd:             gputypes.BlendOperationAdd,
	gfx.BlendOpSubtract:        gputypes.BlendOperationSubtract,
	gfx.BlendOpReverseSubtract: gputypes.BlendOperationReverseSubtract,
	gfx.BlendOpMin:             gputypes.BlendOperationMin,
	gfx.BlendOpMax:             gputypes.BlendOperationMax,
}

var filterModes = []gputypes.FilterMode{
	gfx.FilterNearest: gputypes.FilterModeNearest,
	gfx.FilterLinear:  gputypes.FilterModeLinear,
}

// WebGPU has no border color addressing.
var addressModes = []gputypes.AddressMode{
	gfx.AddressRepeat:         gputypes.AddressModeRepeat,
	gfx.AddressClampToEdge:    gputypes.AddressModeClampToEdge,
	gfx.AddressMirroredRepeat: gputypes.AddressModeMirrorRepeat,
	gfx.AddressClampToBorder:  0,
}

var textureFormats = []gputypes.TextureFormat{
	gfx.TextureFormatUndefined:       0,
	gfx.TextureFormatRGBA8Unorm:      gputypes.TextureFormatRGBA8Unorm,
	gfx.TextureFormatRGBA8UnormSRGB:  gputypes.TextureFormatRGBA8UnormSrgb,
	gfx.TextureFormatBGRA8Unorm:      gputypes.TextureFormatBGRA8Unorm,
	gfx.TextureFormatR8Unorm:         gputypes.TextureFormatR8Unorm,
	gfx.TextureFormatRG8Unorm:        gputypes.TextureFormatRG8Unorm,
	gfx.TextureFormatR32Float:        gputypes.TextureFormatR32Float,
	gfx.TextureFormatRGBA16Float:     gputypes.TextureFormatRGBA16Float,
	gfx.TextureFormatRGBA32Float:     gputypes.TextureFormatRGBA32Float,
	gfx.TextureFormatDepth24:         gputypes.TextureFormatDepth24Plus,
	gfx.TextureFormatDepth32Float:    gputypes.TextureFormatDepth32Float,
	gfx.TextureFormatDepth24Stencil8: gputypes.TextureFormatDepth24PlusStencil8,
}

var textureDimensions = []gputypes.TextureDimension{
	gfx.Texture1D:   gputypes.TextureDimension1D,
	gfx.Texture2D:   gputypes.TextureDimension2D,
	gfx.Texture3D:   gputypes.TextureDimension3D,
	gfx.TextureCube: gputypes.TextureDimension2D,
}

var viewDimensions = []gputypes.TextureViewDimension{
	gfx.Texture1D:   gputypes.TextureViewDimension1D,
	gfx.Texture2D:   gputypes.TextureViewDimension2D,
	gfx.Texture3D:   gputypes.TextureViewDimension3D,
	gfx.TextureCube: gputypes.TextureViewDimensionCube,
}

var loadOps = []gputypes.LoadOp{
	gfx.LoadActionLoad:  gputypes.LoadOpLoad,
	gfx.LoadActionClear: gputypes.LoadOpClear,
}

// shaderStages converts a gfx stage mask. Geometry shaders do not exist in
// WebGPU. An empty mask means every stage.
func shaderStages(s gfx.ShaderStage) (gputypes.ShaderStages, error) {
	if s&gfx.StageGeometry != 0 {
		return 0, fmt.Errorf("%w: geometry stage is not supported by wgpu", gfx.ErrInvalidDescriptor)
	}
	if s == 0 {
		return gputypes.ShaderStagesVertexFragment, nil
	}
	var out gputypes.ShaderStages
	if s&gfx.StageVertex != 0 {
		out |= gputypes.ShaderStageVertex
	}
	if s&gfx.StageFragment != 0 {
		out |= gputypes.ShaderStageFragment
	}
	return out, nil
}

// mipmapFilter maps the gfx mipmap mode onto the HAL's filter mode. With
// MipNone the sampler reads level 0 only, which the caller enforces
// through the LOD clamp.
func mipmapFilter(m gfx.MipmapMode) gputypes.FilterMode {
	if m == gfx.MipLinear {
		return gputypes.FilterModeLinear
	}
	return gputypes.FilterModeNearest
}

func colorWriteMask(m gfx.ColorWriteMask) gputypes.ColorWriteMask {
	return gputypes.ColorWriteMask(m & gfx.WriteAll)
}
