package gl

// Functions is the subset of the OpenGL 3.3 core API used by Device.
//
// Object names are plain uint32 values, as in the C API. Slice arguments
// replace pointer/length pairs and strings are Go strings; implementations
// take care of NUL termination. A nil data slice uploads nothing and only
// allocates storage.
//
// Package glcore provides the cgo implementation. Tests use a recording
// fake.
type Functions interface {
	GetError() Enum
	GetInteger(pname Enum) int32

	// Buffers
	GenBuffer() uint32
	DeleteBuffer(b uint32)
	BindBuffer(target Enum, b uint32)
	BufferData(target Enum, size int, data []byte, usage Enum)
	BufferSubData(target Enum, offset int, data []byte)
	BindBufferBase(target Enum, index, b uint32)
	BindBufferRange(target Enum, index, b uint32, offset, size int)

	// Vertex arrays
	GenVertexArray() uint32
	DeleteVertexArray(a uint32)
	BindVertexArray(a uint32)
	EnableVertexAttribArray(index uint32)
	VertexAttribPointer(index uint32, size int32, typ Enum, normalized bool, stride int32, offset int)
	VertexAttribDivisor(index, divisor uint32)

	// Shaders and programs
	CreateShader(typ Enum) uint32
	ShaderSource(s uint32, src string)
	CompileShader(s uint32)
	GetShaderi(s uint32, pname Enum) int32
	GetShaderInfoLog(s uint32) string
	DeleteShader(s uint32)
	CreateProgram() uint32
	AttachShader(p, s uint32)
	BindAttribLocation(p, index uint32, name string)
	LinkProgram(p uint32)
	GetProgrami(p uint32, pname Enum) int32
	GetProgramInfoLog(p uint32) string
	DeleteProgram(p uint32)
	UseProgram(p uint32)
	GetUniformBlockIndex(p uint32, name string) uint32
	UniformBlockBinding(p, blockIndex, binding uint32)
	GetUniformLocation(p uint32, name string) int32
	Uniform1i(location, v int32)

	// Textures and samplers
	GenTexture() uint32
	DeleteTexture(t uint32)
	ActiveTexture(unit Enum)
	BindTexture(target Enum, t uint32)
	TexImage1D(target Enum, level int32, internalFormat Enum, width int32, format, typ Enum, data []byte)
	TexImage2D(target Enum, level int32, internalFormat Enum, width, height int32, format, typ Enum, data []byte)
	TexImage3D(target Enum, level int32, internalFormat Enum, width, height, depth int32, format, typ Enum, data []byte)
	TexParameteri(target, pname Enum, param int32)
	GenSampler() uint32
	DeleteSampler(s uint32)
	BindSampler(unit, s uint32)
	SamplerParameteri(s uint32, pname Enum, param int32)
	SamplerParameterf(s uint32, pname Enum, param float32)
	SamplerParameterfv(s uint32, pname Enum, params []float32)

	// Framebuffers
	GenFramebuffer() uint32
	DeleteFramebuffer(fb uint32)
	BindFramebuffer(target Enum, fb uint32)
	FramebufferTexture(target, attachment Enum, t uint32, level int32)
	FramebufferTexture2D(target, attachment, texTarget Enum, t uint32, level int32)
	FramebufferTextureLayer(target, attachment Enum, t uint32, level, layer int32)
	CheckFramebufferStatus(target Enum) Enum
	DrawBuffers(bufs []Enum)
	ReadBuffer(src Enum)
	BlitFramebuffer(sx0, sy0, sx1, sy1, dx0, dy0, dx1, dy1 int32, mask, filter Enum)
	ClearBufferfv(buffer Enum, drawBuffer int32, value []float32)
	ClearBufferiv(buffer Enum, drawBuffer int32, value []int32)
	ClearBufferfi(buffer Enum, drawBuffer int32, depth float32, stencil int32)
	ReadPixels(x, y, width, height int32, format, typ Enum, dst []byte)

	// Fixed-function state
	Viewport(x, y, width, height int32)
	Scissor(x, y, width, height int32)
	Enable(capability Enum)
	Disable(capability Enum)
	CullFace(mode Enum)
	FrontFace(mode Enum)
	PolygonMode(face, mode Enum)
	PolygonOffset(factor, units float32)
	DepthFunc(fn Enum)
	DepthMask(write bool)
	StencilFuncSeparate(face, fn Enum, ref int32, mask uint32)
	StencilOpSeparate(face, sfail, dpfail, dppass Enum)
	StencilMaskSeparate(face Enum, mask uint32)
	BlendEquationSeparate(modeRGB, modeAlpha Enum)
	BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha Enum)
	ColorMask(r, g, b, a bool)

	// Draws
	DrawArrays(mode Enum, first, count int32)
	DrawArraysInstanced(mode Enum, first, count, instances int32)
	DrawElements(mode Enum, count int32, typ Enum, offset int)
	DrawElementsInstanced(mode Enum, count int32, typ Enum, offset int, instances int32)

	// Queries
	GenQuery() uint32
	DeleteQuery(q uint32)
	BeginQuery(target Enum, q uint32)
	EndQuery(target Enum)
	GetQueryObjectui64(q uint32, pname Enum) uint64
}
