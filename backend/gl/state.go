package gl

import (
	"fmt"

	"github.com/gogpu/gfx"
)

// stateBlock is a translated fixed-function descriptor. Only the member
// selected by kind is meaningful.
type stateBlock struct {
	kind   gfx.StateBlockKind
	raster rasterizerState
	depth  depthStencilState
	blend  blendState
}

type rasterizerState struct {
	desc        gfx.RasterizerStateDesc
	cullFace    Enum
	frontFace   Enum
	polygonMode Enum
}

type stencilFace struct {
	fail, depthFail, pass, fn Enum
}

type depthStencilState struct {
	desc        gfx.DepthStencilStateDesc
	depthFunc   Enum
	front, back stencilFace
}

type blendState struct {
	desc                    gfx.BlendStateDesc
	srcRGB, dstRGB          Enum
	srcAlpha, dstAlpha      Enum
	modeRGB, modeAlpha      Enum
	red, green, blue, alpha bool
}

func newRasterizerState(d gfx.RasterizerStateDesc) (rasterizerState, error) {
	s := rasterizerState{desc: d, frontFace: CW, polygonMode: FILL}
	if d.FrontCounterClockwise {
		s.frontFace = CCW
	}
	switch d.Cull {
	case gfx.CullNone:
	case gfx.CullBack:
		s.cullFace = BACK
	case gfx.CullFront:
		s.cullFace = FRONT
	default:
		return s, fmt.Errorf("%w: cull mode %d", gfx.ErrInvalidDescriptor, d.Cull)
	}
	switch d.Fill {
	case gfx.FillSolid:
	case gfx.FillWireframe:
		s.polygonMode = LINE
	default:
		return s, fmt.Errorf("%w: fill mode %d", gfx.ErrInvalidDescriptor, d.Fill)
	}
	return s, nil
}

func newStencilFace(d gfx.StencilFaceDesc) (stencilFace, error) {
	var (
		s   stencilFace
		err error
	)
	if s.fail, err = lookup("stencil op", d.FailOp, stencilOps); err != nil {
		return s, err
	}
	if s.depthFail, err = lookup("stencil op", d.DepthFailOp, stencilOps); err != nil {
		return s, err
	}
	if s.pass, err = lookup("stencil op", d.PassOp, stencilOps); err != nil {
		return s, err
	}
	s.fn, err = lookup("compare func", d.Func, compareFuncs)
	return s, err
}

func newDepthStencilState(d gfx.DepthStencilStateDesc) (depthStencilState, error) {
	s := depthStencilState{desc: d}
	var err error
	if s.depthFunc, err = lookup("compare func", d.DepthFunc, compareFuncs); err != nil {
		return s, err
	}
	if s.front, err = newStencilFace(d.Front); err != nil {
		return s, err
	}
	s.back, err = newStencilFace(d.Back)
	return s, err
}

func newBlendState(d gfx.BlendStateDesc) (blendState, error) {
	s := blendState{
		desc:  d,
		red:   d.WriteMask&gfx.WriteRed != 0,
		green: d.WriteMask&gfx.WriteGreen != 0,
		blue:  d.WriteMask&gfx.WriteBlue != 0,
		alpha: d.WriteMask&gfx.WriteAlpha != 0,
	}
	var err error
	for _, f := range []struct {
		dst *Enum
		v   gfx.BlendFactor
	}{
		{&s.srcRGB, d.SrcColor},
		{&s.dstRGB, d.DstColor},
		{&s.srcAlpha, d.SrcAlpha},
		{&s.dstAlpha, d.DstAlpha},
	} {
		if *f.dst, err = lookup("blend factor", f.v, blendFactors); err != nil {
			return s, err
		}
	}
	if s.modeRGB, err = lookup("blend op", d.ColorOp, blendOps); err != nil {
		return s, err
	}
	s.modeAlpha, err = lookup("blend op", d.AlphaOp, blendOps)
	return s, err
}

func enable(f Functions, capability Enum, on bool) {
	if on {
		f.Enable(capability)
	} else {
		f.Disable(capability)
	}
}

func (s *rasterizerState) apply(f Functions) {
	d := &s.desc
	enable(f, RASTERIZER_DISCARD, d.DisableRasterizer)
	if s.cullFace == 0 {
		f.Disable(CULL_FACE)
	} else {
		f.Enable(CULL_FACE)
		f.CullFace(s.cullFace)
	}
	f.FrontFace(s.frontFace)
	f.PolygonMode(FRONT_AND_BACK, s.polygonMode)
	enable(f, SCISSOR_TEST, d.ScissorTest)
	enable(f, DEPTH_CLAMP, d.DepthClamp)
	if d.DepthBias != 0 || d.SlopeScaledDepthBias != 0 {
		f.Enable(POLYGON_OFFSET_FILL)
		f.PolygonOffset(d.SlopeScaledDepthBias, float32(d.DepthBias))
	} else {
		f.Disable(POLYGON_OFFSET_FILL)
	}
}

func (s *depthStencilState) apply(f Functions) {
	d := &s.desc
	enable(f, DEPTH_TEST, d.DepthTest)
	f.DepthFunc(s.depthFunc)
	f.DepthMask(d.DepthWrite)

	enable(f, STENCIL_TEST, d.StencilTest)
	ref, mask := int32(d.StencilRef), uint32(d.StencilReadMask)
	f.StencilFuncSeparate(FRONT, s.front.fn, ref, mask)
	f.StencilFuncSeparate(BACK, s.back.fn, ref, mask)
	f.StencilOpSeparate(FRONT, s.front.fail, s.front.depthFail, s.front.pass)
	f.StencilOpSeparate(BACK, s.back.fail, s.back.depthFail, s.back.pass)
	f.StencilMaskSeparate(FRONT_AND_BACK, uint32(d.StencilWriteMask))
}

func (s *blendState) apply(f Functions) {
	enable(f, BLEND, s.desc.Enabled)
	f.BlendEquationSeparate(s.modeRGB, s.modeAlpha)
	f.BlendFuncSeparate(s.srcRGB, s.dstRGB, s.srcAlpha, s.dstAlpha)
	f.ColorMask(s.red, s.green, s.blue, s.alpha)
}
