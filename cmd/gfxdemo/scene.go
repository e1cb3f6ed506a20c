package main

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/gfx"
	"github.com/gogpu/gfx/internal/config"
)

const vertexShader = `#version 330 core
layout(std140) uniform PushConstants {
    mat4 mvp;
};

in vec3 inPosition;
in vec4 inColor;
out vec4 color;

void main() {
    color = inColor;
    gl_Position = mvp * vec4(inPosition, 1.0);
}
`

const fragmentShader = `#version 330 core
in vec4 color;
out vec4 fragColor;

void main() {
    fragColor = color;
}
`

// vertex is a position followed by an 8-bit RGBA color.
type vertex struct {
	pos   mgl32.Vec3
	color [4]uint8
}

const vertexStride = 16

var triangle = []vertex{
	{mgl32.Vec3{-0.8, -0.7, 0}, [4]uint8{255, 64, 64, 255}},
	{mgl32.Vec3{0.8, -0.7, 0}, [4]uint8{64, 255, 64, 255}},
	{mgl32.Vec3{0, 0.8, 0}, [4]uint8{64, 64, 255, 255}},
}

func vertexData(vs []vertex) []byte {
	out := make([]byte, 0, len(vs)*vertexStride)
	for _, v := range vs {
		for _, f := range v.pos {
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(f))
		}
		out = append(out, v.color[:]...)
	}
	return out
}

// matrixBytes lays m out column-major, which is what a std140 mat4 and
// mgl32 both use.
func matrixBytes(m mgl32.Mat4) []byte {
	out := make([]byte, 0, 64)
	for _, f := range m {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(f))
	}
	return out
}

// mvp spins the triangle around Y at angle radians.
func mvp(angle, aspect float32) mgl32.Mat4 {
	proj := mgl32.Perspective(mgl32.DegToRad(45), aspect, 0.1, 10)
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 3}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	return proj.Mul4(view).Mul4(mgl32.HomogRotate3DY(angle))
}

// scene owns the demo's device resources and records one command buffer
// per frame.
type scene struct {
	dev gfx.Device
	cb  *gfx.CmdBuffer

	vb                        gfx.BufferHandle
	pipe                      gfx.PipelineHandle
	color, depth              gfx.TextureHandle
	pass                      gfx.RenderPassHandle
	raster, depthState, blend gfx.StateBlockHandle

	width, height int
}

func pipelineDesc() gfx.PipelineDesc {
	return gfx.PipelineDesc{
		Label: "triangle",
		InputLayout: []gfx.InputLayoutElement{
			{Semantic: gfx.SemanticPosition, Format: gfx.VertexFloat3, Offset: 0, Stride: vertexStride},
			{Semantic: gfx.SemanticColor, Format: gfx.VertexUByte4Norm, Offset: 12, Stride: vertexStride},
		},
		Shaders: []gfx.ShaderStageDesc{
			{Stage: gfx.StageVertex, Source: vertexShader},
			{Stage: gfx.StageFragment, Source: fragmentShader},
		},
		Topology: gfx.TriangleList,
		Bindings: []gfx.ResourceBinding{{Kind: gfx.BindingPushConstants, Stages: gfx.StageVertex}},
	}
}

func newScene(dev gfx.Device, cfg *config.Demo) (_ *scene, err error) {
	s := &scene{dev: dev, cb: gfx.NewCmdBuffer(), width: cfg.Width, height: cfg.Height}
	defer func() {
		if err != nil {
			_ = s.release()
		}
	}()

	data := vertexData(triangle)
	if s.vb, err = dev.CreateBuffer(gfx.BufferDesc{
		Label: "triangle vertices",
		Type:  gfx.BufferVertex,
		Usage: gfx.UsageStatic,
		Size:  len(data),
		Data:  data,
	}); err != nil {
		return nil, fmt.Errorf("vertex buffer: %w", err)
	}
	if s.pipe, err = dev.CreatePipeline(pipelineDesc()); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	if s.color, err = dev.CreateTexture(gfx.TextureDesc{
		Label:        "color target",
		Type:         gfx.Texture2D,
		Format:       gfx.TextureFormatRGBA8Unorm,
		Width:        cfg.Width,
		Height:       cfg.Height,
		RenderTarget: true,
	}); err != nil {
		return nil, fmt.Errorf("color target: %w", err)
	}
	if s.depth, err = dev.CreateTexture(gfx.TextureDesc{
		Label:        "depth target",
		Type:         gfx.Texture2D,
		Format:       gfx.TextureFormatDepth24Stencil8,
		Width:        cfg.Width,
		Height:       cfg.Height,
		RenderTarget: true,
	}); err != nil {
		return nil, fmt.Errorf("depth target: %w", err)
	}
	if s.pass, err = dev.CreateRenderPass(gfx.RenderPassDesc{
		Label:  "offscreen",
		Colors: []gfx.ColorAttachment{{Texture: s.color, Load: gfx.LoadActionClear, ClearColor: cfg.ClearColor}},
		Depth:  &gfx.DepthAttachment{Texture: s.depth, Load: gfx.LoadActionClear, ClearDepth: 1},
	}); err != nil {
		return nil, fmt.Errorf("render pass: %w", err)
	}

	// Both faces are drawn so the triangle stays visible while it spins.
	if s.raster, err = dev.CreateRasterizerState(gfx.RasterizerStateDesc{Cull: gfx.CullNone}); err != nil {
		return nil, err
	}
	if s.depthState, err = dev.CreateDepthStencilState(gfx.DefaultDepthStencilState()); err != nil {
		return nil, err
	}
	if s.blend, err = dev.CreateBlendState(gfx.AlphaBlendState()); err != nil {
		return nil, err
	}
	return s, nil
}

// frame records the commands for one frame into the scene's reusable
// command buffer.
func (s *scene) frame(angle float32) (*gfx.CmdBuffer, error) {
	cb := s.cb
	cb.Begin()
	cb.BindRenderPass(s.pass)
	cb.SetRasterizerState(s.raster)
	cb.SetDepthStencilState(s.depthState)
	cb.SetBlendState(s.blend)
	cb.BindPipeline(s.pipe)
	cb.BindPushConstants(0, gfx.StageVertex, matrixBytes(mvp(angle, float32(s.width)/float32(s.height))))
	cb.BindVertexBuffer(0, s.vb, 0, 0)
	cb.DrawPrimitives(0, uint32(len(triangle)))
	if err := cb.End(); err != nil {
		return nil, fmt.Errorf("record frame: %w", err)
	}
	return cb, nil
}

// release deletes whatever newScene managed to create.
func (s *scene) release() error {
	var errs []error
	del := func(valid bool, fn func() error) {
		if valid {
			errs = append(errs, fn())
		}
	}
	del(s.pass.IsValid(), func() error { return s.dev.DeleteRenderPass(s.pass) })
	del(s.color.IsValid(), func() error { return s.dev.DeleteTexture(s.color) })
	del(s.depth.IsValid(), func() error { return s.dev.DeleteTexture(s.depth) })
	del(s.pipe.IsValid(), func() error { return s.dev.DeletePipeline(s.pipe) })
	del(s.vb.IsValid(), func() error { return s.dev.DeleteBuffer(s.vb) })
	for _, h := range []gfx.StateBlockHandle{s.raster, s.depthState, s.blend} {
		del(h.IsValid(), func() error { return s.dev.DeleteStateBlock(h) })
	}
	return errors.Join(errs...)
}
