// Package glcore implements gl.Functions with the go-gl OpenGL 3.3 core
// bindings and registers the "gl" backend.
//
// Importing the package for its side effect makes the backend available
// through gfx.Open:
//
//	import _ "github.com/gogpu/gfx/backend/gl/glcore"
//
// A GL 3.3 core context must be current on the calling thread when the
// device is opened and whenever it is used.
package glcore

import (
	"fmt"
	"strings"
	"sync"
	"unsafe"

	"github.com/go-gl/gl/v3.3-core/gl"

	"github.com/gogpu/gfx"
	gfxgl "github.com/gogpu/gfx/backend/gl"
)

func init() {
	gfx.Register("gl", func(opts ...gfx.Option) (gfx.Device, error) {
		if err := Init(); err != nil {
			return nil, err
		}
		return gfxgl.NewDevice(Functions{}, opts...)
	})
}

var initGL = sync.OnceValue(gl.Init)

// Init loads the GL function pointers for the current context. It is
// called by the registered factory; calling it again has no effect.
func Init() error {
	if err := initGL(); err != nil {
		return fmt.Errorf("glcore: %w: %w", gfx.ErrNoDevice, err)
	}
	return nil
}

// Version returns the GL version and renderer strings of the current
// context. Init must have succeeded.
func Version() (version, renderer string) {
	return gl.GoStr(gl.GetString(gl.VERSION)), gl.GoStr(gl.GetString(gl.RENDERER))
}

// Functions calls straight into the loaded GL entry points.
type Functions struct{}

var _ gfxgl.Functions = Functions{}

func ptr(data []byte) unsafe.Pointer {
	if len(data) == 0 {
		return nil
	}
	return unsafe.Pointer(&data[0])
}

// cstr returns a NUL-terminated copy of s. The result must stay reachable
// until the GL call returns.
func cstr(s string) *uint8 {
	return gl.Str(s + "\x00")
}

func infoLog(length int32, get func(n int32, buf *uint8)) string {
	if length <= 1 {
		return ""
	}
	buf := make([]byte, length)
	get(length, &buf[0])
	return strings.TrimRight(string(buf), "\x00")
}

func (Functions) GetError() gfxgl.Enum { return gfxgl.Enum(gl.GetError()) }

func (Functions) GetInteger(pname gfxgl.Enum) int32 {
	var v int32
	gl.GetIntegerv(uint32(pname), &v)
	return v
}

// Buffers

func (Functions) GenBuffer() uint32 {
	var b uint32
	gl.GenBuffers(1, &b)
	return b
}

func (Functions) DeleteBuffer(b uint32)                  { gl.DeleteBuffers(1, &b) }
func (Functions) BindBuffer(target gfxgl.Enum, b uint32) { gl.BindBuffer(uint32(target), b) }

func (Functions) BindBufferBase(target gfxgl.Enum, index, b uint32) {
	gl.BindBufferBase(uint32(target), index, b)
}

func (Functions) BufferData(target gfxgl.Enum, size int, data []byte, usage gfxgl.Enum) {
	gl.BufferData(uint32(target), size, ptr(data), uint32(usage))
}

func (Functions) BufferSubData(target gfxgl.Enum, offset int, data []byte) {
	if len(data) == 0 {
		return
	}
	gl.BufferSubData(uint32(target), offset, len(data), ptr(data))
}

func (Functions) BindBufferRange(target gfxgl.Enum, index, b uint32, offset, size int) {
	gl.BindBufferRange(uint32(target), index, b, offset, size)
}

// Vertex arrays

func (Functions) GenVertexArray() uint32 {
	var a uint32
	gl.GenVertexArrays(1, &a)
	return a
}

func (Functions) DeleteVertexArray(a uint32)            { gl.DeleteVertexArrays(1, &a) }
func (Functions) BindVertexArray(a uint32)              { gl.BindVertexArray(a) }
func (Functions) EnableVertexAttribArray(index uint32)  { gl.EnableVertexAttribArray(index) }
func (Functions) VertexAttribDivisor(index, div uint32) { gl.VertexAttribDivisor(index, div) }

func (Functions) VertexAttribPointer(index uint32, size int32, typ gfxgl.Enum, normalized bool, stride int32, offset int) {
	gl.VertexAttribPointer(index, size, uint32(typ), normalized, stride, gl.PtrOffset(offset))
}

// Shaders and programs

func (Functions) CreateShader(typ gfxgl.Enum) uint32 { return gl.CreateShader(uint32(typ)) }

func (Functions) ShaderSource(s uint32, src string) {
	csources, free := gl.Strs(src + "\x00")
	gl.ShaderSource(s, 1, csources, nil)
	free()
}

func (Functions) CompileShader(s uint32) { gl.CompileShader(s) }

func (Functions) GetShaderi(s uint32, pname gfxgl.Enum) int32 {
	var v int32
	gl.GetShaderiv(s, uint32(pname), &v)
	return v
}

func (f Functions) GetShaderInfoLog(s uint32) string {
	return infoLog(f.GetShaderi(s, gfxgl.INFO_LOG_LENGTH), func(n int32, buf *uint8) {
		gl.GetShaderInfoLog(s, n, nil, buf)
	})
}

func (Functions) DeleteShader(s uint32)    { gl.DeleteShader(s) }
func (Functions) CreateProgram() uint32    { return gl.CreateProgram() }
func (Functions) AttachShader(p, s uint32) { gl.AttachShader(p, s) }
func (Functions) LinkProgram(p uint32)     { gl.LinkProgram(p) }
func (Functions) DeleteProgram(p uint32)   { gl.DeleteProgram(p) }
func (Functions) UseProgram(p uint32)      { gl.UseProgram(p) }

func (Functions) BindAttribLocation(p, index uint32, name string) {
	gl.BindAttribLocation(p, index, cstr(name))
}

func (Functions) GetProgrami(p uint32, pname gfxgl.Enum) int32 {
	var v int32
	gl.GetProgramiv(p, uint32(pname), &v)
	return v
}

func (f Functions) GetProgramInfoLog(p uint32) string {
	return infoLog(f.GetProgrami(p, gfxgl.INFO_LOG_LENGTH), func(n int32, buf *uint8) {
		gl.GetProgramInfoLog(p, n, nil, buf)
	})
}

func (Functions) GetUniformBlockIndex(p uint32, name string) uint32 {
	return gl.GetUniformBlockIndex(p, cstr(name))
}

func (Functions) UniformBlockBinding(p, blockIndex, binding uint32) {
	gl.UniformBlockBinding(p, blockIndex, binding)
}

func (Functions) GetUniformLocation(p uint32, name string) int32 {
	return gl.GetUniformLocation(p, cstr(name))
}

func (Functions) Uniform1i(location, v int32) { gl.Uniform1i(location, v) }

// Textures and samplers

func (Functions) GenTexture() uint32 {
	var t uint32
	gl.GenTextures(1, &t)
	return t
}

func (Functions) DeleteTexture(t uint32)                  { gl.DeleteTextures(1, &t) }
func (Functions) ActiveTexture(unit gfxgl.Enum)           { gl.ActiveTexture(uint32(unit)) }
func (Functions) BindTexture(target gfxgl.Enum, t uint32) { gl.BindTexture(uint32(target), t) }

func (Functions) TexImage1D(target gfxgl.Enum, level int32, internalFormat gfxgl.Enum, width int32, format, typ gfxgl.Enum, data []byte) {
	gl.TexImage1D(uint32(target), level, int32(internalFormat), width, 0, uint32(format), uint32(typ), ptr(data)) //nolint:gosec // G115: GL enums fit in int32
}

func (Functions) TexImage2D(target gfxgl.Enum, level int32, internalFormat gfxgl.Enum, width, height int32, format, typ gfxgl.Enum, data []byte) {
	gl.TexImage2D(uint32(target), level, int32(internalFormat), width, height, 0, uint32(format), uint32(typ), ptr(data)) //nolint:gosec // G115: GL enums fit in int32
}

func (Functions) TexImage3D(target gfxgl.Enum, level int32, internalFormat gfxgl.Enum, width, height, depth int32, format, typ gfxgl.Enum, data []byte) {
	gl.TexImage3D(uint32(target), level, int32(internalFormat), width, height, depth, 0, uint32(format), uint32(typ), ptr(data)) //nolint:gosec // G115: GL enums fit in int32
}

func (Functions) TexParameteri(target, pname gfxgl.Enum, param int32) {
	gl.TexParameteri(uint32(target), uint32(pname), param)
}

func (Functions) GenSampler() uint32 {
	var s uint32
	gl.GenSamplers(1, &s)
	return s
}

func (Functions) DeleteSampler(s uint32)     { gl.DeleteSamplers(1, &s) }
func (Functions) BindSampler(unit, s uint32) { gl.BindSampler(unit, s) }

func (Functions) SamplerParameteri(s uint32, pname gfxgl.Enum, param int32) {
	gl.SamplerParameteri(s, uint32(pname), param)
}

func (Functions) SamplerParameterf(s uint32, pname gfxgl.Enum, param float32) {
	gl.SamplerParameterf(s, uint32(pname), param)
}

func (Functions) SamplerParameterfv(s uint32, pname gfxgl.Enum, params []float32) {
	gl.SamplerParameterfv(s, uint32(pname), &params[0])
}

// Framebuffers

func (Functions) GenFramebuffer() uint32 {
	var fb uint32
	gl.GenFramebuffers(1, &fb)
	return fb
}

func (Functions) DeleteFramebuffer(fb uint32)                  { gl.DeleteFramebuffers(1, &fb) }
func (Functions) BindFramebuffer(target gfxgl.Enum, fb uint32) { gl.BindFramebuffer(uint32(target), fb) }
func (Functions) ReadBuffer(src gfxgl.Enum)                    { gl.ReadBuffer(uint32(src)) }

func (Functions) FramebufferTexture(target, attachment gfxgl.Enum, t uint32, level int32) {
	gl.FramebufferTexture(uint32(target), uint32(attachment), t, level)
}

func (Functions) FramebufferTexture2D(target, attachment, texTarget gfxgl.Enum, t uint32, level int32) {
	gl.FramebufferTexture2D(uint32(target), uint32(attachment), uint32(texTarget), t, level)
}

func (Functions) FramebufferTextureLayer(target, attachment gfxgl.Enum, t uint32, level, layer int32) {
	gl.FramebufferTextureLayer(uint32(target), uint32(attachment), t, level, layer)
}

func (Functions) CheckFramebufferStatus(target gfxgl.Enum) gfxgl.Enum {
	return gfxgl.Enum(gl.CheckFramebufferStatus(uint32(target)))
}

func (Functions) DrawBuffers(bufs []gfxgl.Enum) {
	gl.DrawBuffers(int32(len(bufs)), (*uint32)(unsafe.Pointer(&bufs[0]))) //nolint:gosec // G115: at most 8 draw buffers
}

func (Functions) BlitFramebuffer(sx0, sy0, sx1, sy1, dx0, dy0, dx1, dy1 int32, mask, filter gfxgl.Enum) {
	gl.BlitFramebuffer(sx0, sy0, sx1, sy1, dx0, dy0, dx1, dy1, uint32(mask), uint32(filter))
}

func (Functions) ClearBufferfv(buffer gfxgl.Enum, drawBuffer int32, value []float32) {
	gl.ClearBufferfv(uint32(buffer), drawBuffer, &value[0])
}

func (Functions) ClearBufferiv(buffer gfxgl.Enum, drawBuffer int32, value []int32) {
	gl.ClearBufferiv(uint32(buffer), drawBuffer, &value[0])
}

func (Functions) ClearBufferfi(buffer gfxgl.Enum, drawBuffer int32, depth float32, stencil int32) {
	gl.ClearBufferfi(uint32(buffer), drawBuffer, depth, stencil)
}

func (Functions) ReadPixels(x, y, width, height int32, format, typ gfxgl.Enum, dst []byte) {
	gl.ReadPixels(x, y, width, height, uint32(format), uint32(typ), ptr(dst))
}

// Fixed-function state

func (Functions) Viewport(x, y, width, height int32)  { gl.Viewport(x, y, width, height) }
func (Functions) Scissor(x, y, width, height int32)   { gl.Scissor(x, y, width, height) }
func (Functions) Enable(capability gfxgl.Enum)        { gl.Enable(uint32(capability)) }
func (Functions) Disable(capability gfxgl.Enum)       { gl.Disable(uint32(capability)) }
func (Functions) CullFace(mode gfxgl.Enum)            { gl.CullFace(uint32(mode)) }
func (Functions) FrontFace(mode gfxgl.Enum)           { gl.FrontFace(uint32(mode)) }
func (Functions) PolygonMode(face, mode gfxgl.Enum)   { gl.PolygonMode(uint32(face), uint32(mode)) }
func (Functions) PolygonOffset(factor, units float32) { gl.PolygonOffset(factor, units) }
func (Functions) DepthFunc(fn gfxgl.Enum)             { gl.DepthFunc(uint32(fn)) }
func (Functions) DepthMask(write bool)                { gl.DepthMask(write) }
func (Functions) ColorMask(r, g, b, a bool)           { gl.ColorMask(r, g, b, a) }

func (Functions) StencilFuncSeparate(face, fn gfxgl.Enum, ref int32, mask uint32) {
	gl.StencilFuncSeparate(uint32(face), uint32(fn), ref, mask)
}

func (Functions) StencilOpSeparate(face, sfail, dpfail, dppass gfxgl.Enum) {
	gl.StencilOpSeparate(uint32(face), uint32(sfail), uint32(dpfail), uint32(dppass))
}

func (Functions) StencilMaskSeparate(face gfxgl.Enum, mask uint32) {
	gl.StencilMaskSeparate(uint32(face), mask)
}

func (Functions) BlendEquationSeparate(modeRGB, modeAlpha gfxgl.Enum) {
	gl.BlendEquationSeparate(uint32(modeRGB), uint32(modeAlpha))
}

func (Functions) BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha gfxgl.Enum) {
	gl.BlendFuncSeparate(uint32(srcRGB), uint32(dstRGB), uint32(srcAlpha), uint32(dstAlpha))
}

// Draws

func (Functions) DrawArrays(mode gfxgl.Enum, first, count int32) {
	gl.DrawArrays(uint32(mode), first, count)
}

func (Functions) DrawArraysInstanced(mode gfxgl.Enum, first, count, instances int32) {
	gl.DrawArraysInstanced(uint32(mode), first, count, instances)
}

func (Functions) DrawElements(mode gfxgl.Enum, count int32, typ gfxgl.Enum, offset int) {
	gl.DrawElements(uint32(mode), count, uint32(typ), gl.PtrOffset(offset))
}

func (Functions) DrawElementsInstanced(mode gfxgl.Enum, count int32, typ gfxgl.Enum, offset int, instances int32) {
	gl.DrawElementsInstanced(uint32(mode), count, uint32(typ), gl.PtrOffset(offset), instances)
}

// Queries

func (Functions) GenQuery() uint32 {
	var q uint32
	gl.GenQueries(1, &q)
	return q
}

func (Functions) DeleteQuery(q uint32)                   { gl.DeleteQueries(1, &q) }
func (Functions) BeginQuery(target gfxgl.Enum, q uint32) { gl.BeginQuery(uint32(target), q) }
func (Functions) EndQuery(target gfxgl.Enum)             { gl.EndQuery(uint32(target)) }

func (Functions) GetQueryObjectui64(q uint32, pname gfxgl.Enum) uint64 {
	var v uint64
	gl.GetQueryObjectui64v(q, uint32(pname), &v)
	return v
}
