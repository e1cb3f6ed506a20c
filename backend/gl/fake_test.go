package gl

import (
	"fmt"
	"math"
	"slices"
)

// call is one recorded Functions call.
type call struct {
	name string
	args []any
}

func (c call) String() string { return fmt.Sprintf("%s%v", c.name, c.args) }

// fakeTexture models level 0 of a texture.
type fakeTexture struct {
	width, height int
	internal      Enum
	pixels        []byte
	depth         []float32
	stencil       []uint8
}

// fakeGL is a recording Functions implementation with a small memory model:
// buffers keep their contents, RGBA8 textures keep pixels, and clears and
// ReadPixels go through the bound framebuffers.
type fakeGL struct {
	calls []call

	next       uint32
	live       map[string]map[uint32]bool
	doubleFree []string

	// Failure injection.
	failCompile       Enum
	failLink          bool
	infoLog           string
	framebufferStatus Enum
	glError           Enum

	blocks     map[string]uint32
	uniforms   map[string]int32
	queryNanos uint64

	shaderTypes  map[uint32]Enum
	buffers      map[uint32][]byte
	boundBuffer  map[Enum]uint32
	textures     map[uint32]*fakeTexture
	boundTexture map[Enum]uint32
	framebuffers map[uint32]map[Enum]uint32
	readBuffer   map[uint32]Enum
	drawFB       uint32
	readFB       uint32
}

func newFakeGL() *fakeGL {
	return &fakeGL{
		live:         make(map[string]map[uint32]bool),
		blocks:       map[string]uint32{"PushConstants": 0},
		uniforms:     make(map[string]int32),
		queryNanos:   2_000_000,
		shaderTypes:  make(map[uint32]Enum),
		buffers:      make(map[uint32][]byte),
		boundBuffer:  make(map[Enum]uint32),
		textures:     make(map[uint32]*fakeTexture),
		boundTexture: make(map[Enum]uint32),
		framebuffers: make(map[uint32]map[Enum]uint32),
		readBuffer:   make(map[uint32]Enum),
	}
}

func (f *fakeGL) record(name string, args ...any) {
	f.calls = append(f.calls, call{name: name, args: args})
}

func (f *fakeGL) reset() { f.calls = nil }

// named returns the recorded calls of one function.
func (f *fakeGL) named(name string) []call {
	var out []call
	for _, c := range f.calls {
		if c.name == name {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeGL) count(name string) int { return len(f.named(name)) }

// index returns the position of the first call named name at or after
// from, or -1.
func (f *fakeGL) index(name string, from int) int {
	for i := from; i < len(f.calls); i++ {
		if f.calls[i].name == name {
			return i
		}
	}
	return -1
}

func (f *fakeGL) gen(kind string) uint32 {
	f.next++
	if f.live[kind] == nil {
		f.live[kind] = make(map[uint32]bool)
	}
	f.live[kind][f.next] = true
	return f.next
}

func (f *fakeGL) del(kind string, id uint32) {
	if id == 0 {
		return
	}
	if !f.live[kind][id] {
		f.doubleFree = append(f.doubleFree, fmt.Sprintf("%s %d", kind, id))
		return
	}
	delete(f.live[kind], id)
}

func (f *fakeGL) liveCount(kind string) int { return len(f.live[kind]) }

func (f *fakeGL) leaks() []string {
	var out []string
	for kind, ids := range f.live {
		for id := range ids {
			out = append(out, fmt.Sprintf("%s %d", kind, id))
		}
	}
	slices.Sort(out)
	return out
}

func (f *fakeGL) GetError() Enum {
	f.record("GetError")
	return f.glError
}

func (f *fakeGL) GetInteger(pname Enum) int32 {
	f.record("GetInteger", pname)
	switch pname {
	case MAX_VERTEX_ATTRIBS, MAX_TEXTURE_IMAGE_UNITS:
		return 16
	case MAX_UNIFORM_BUFFER_BINDINGS:
		return 36
	case MAX_COLOR_ATTACHMENTS:
		return 8
	}
	return 0
}

// Buffers

func (f *fakeGL) GenBuffer() uint32 {
	id := f.gen("buffer")
	f.record("GenBuffer", id)
	return id
}

func (f *fakeGL) DeleteBuffer(b uint32) {
	f.record("DeleteBuffer", b)
	f.del("buffer", b)
	delete(f.buffers, b)
}

func (f *fakeGL) BindBuffer(target Enum, b uint32) {
	f.record("BindBuffer", target, b)
	f.boundBuffer[target] = b
}

func (f *fakeGL) BufferData(target Enum, size int, data []byte, usage Enum) {
	f.record("BufferData", target, size, slices.Clone(data), usage)
	buf := make([]byte, size)
	copy(buf, data)
	f.buffers[f.boundBuffer[target]] = buf
}

func (f *fakeGL) BufferSubData(target Enum, offset int, data []byte) {
	f.record("BufferSubData", target, offset, slices.Clone(data))
	copy(f.buffers[f.boundBuffer[target]][offset:], data)
}

func (f *fakeGL) BindBufferBase(target Enum, index, b uint32) {
	f.record("BindBufferBase", target, index, b)
}

func (f *fakeGL) BindBufferRange(target Enum, index, b uint32, offset, size int) {
	f.record("BindBufferRange", target, index, b, offset, size)
}

// Vertex arrays

func (f *fakeGL) GenVertexArray() uint32 {
	id := f.gen("vertex array")
	f.record("GenVertexArray", id)
	return id
}

func (f *fakeGL) DeleteVertexArray(a uint32) {
	f.record("DeleteVertexArray", a)
	f.del("vertex array", a)
}

func (f *fakeGL) BindVertexArray(a uint32)             { f.record("BindVertexArray", a) }
func (f *fakeGL) EnableVertexAttribArray(index uint32) { f.record("EnableVertexAttribArray", index) }

func (f *fakeGL) VertexAttribPointer(index uint32, size int32, typ Enum, normalized bool, stride int32, offset int) {
	f.record("VertexAttribPointer", index, size, typ, normalized, stride, offset)
}

func (f *fakeGL) VertexAttribDivisor(index, divisor uint32) {
	f.record("VertexAttribDivisor", index, divisor)
}

// Shaders and programs

func (f *fakeGL) CreateShader(typ Enum) uint32 {
	id := f.gen("shader")
	f.shaderTypes[id] = typ
	f.record("CreateShader", typ, id)
	return id
}

func (f *fakeGL) ShaderSource(s uint32, src string) { f.record("ShaderSource", s, src) }
func (f *fakeGL) CompileShader(s uint32)            { f.record("CompileShader", s) }

func (f *fakeGL) GetShaderi(s uint32, pname Enum) int32 {
	f.record("GetShaderi", s, pname)
	if pname == COMPILE_STATUS && f.failCompile != 0 && f.shaderTypes[s] == f.failCompile {
		return 0
	}
	return 1
}

func (f *fakeGL) GetShaderInfoLog(s uint32) string {
	f.record("GetShaderInfoLog", s)
	if f.failCompile != 0 && f.shaderTypes[s] == f.failCompile {
		return f.infoLog
	}
	return ""
}

func (f *fakeGL) DeleteShader(s uint32) {
	f.record("DeleteShader", s)
	f.del("shader", s)
}

func (f *fakeGL) CreateProgram() uint32 {
	id := f.gen("program")
	f.record("CreateProgram", id)
	return id
}

func (f *fakeGL) AttachShader(p, s uint32) { f.record("AttachShader", p, s) }

func (f *fakeGL) BindAttribLocation(p, index uint32, name string) {
	f.record("BindAttribLocation", p, index, name)
}

func (f *fakeGL) LinkProgram(p uint32) { f.record("LinkProgram", p) }

func (f *fakeGL) GetProgrami(p uint32, pname Enum) int32 {
	f.record("GetProgrami", p, pname)
	if pname == LINK_STATUS && f.failLink {
		return 0
	}
	return 1
}

func (f *fakeGL) GetProgramInfoLog(p uint32) string {
	f.record("GetProgramInfoLog", p)
	return f.infoLog
}

func (f *fakeGL) DeleteProgram(p uint32) {
	f.record("DeleteProgram", p)
	f.del("program", p)
}

func (f *fakeGL) UseProgram(p uint32) { f.record("UseProgram", p) }

func (f *fakeGL) GetUniformBlockIndex(p uint32, name string) uint32 {
	f.record("GetUniformBlockIndex", p, name)
	if idx, ok := f.blocks[name]; ok {
		return idx
	}
	return INVALID_INDEX
}

func (f *fakeGL) UniformBlockBinding(p, blockIndex, binding uint32) {
	f.record("UniformBlockBinding", p, blockIndex, binding)
}

func (f *fakeGL) GetUniformLocation(p uint32, name string) int32 {
	f.record("GetUniformLocation", p, name)
	if loc, ok := f.uniforms[name]; ok {
		return loc
	}
	return -1
}

func (f *fakeGL) Uniform1i(location, v int32) { f.record("Uniform1i", location, v) }

// Textures and samplers

func (f *fakeGL) GenTexture() uint32 {
	id := f.gen("texture")
	f.textures[id] = &fakeTexture{}
	f.record("GenTexture", id)
	return id
}

func (f *fakeGL) DeleteTexture(t uint32) {
	f.record("DeleteTexture", t)
	f.del("texture", t)
	delete(f.textures, t)
}

func (f *fakeGL) ActiveTexture(unit Enum) { f.record("ActiveTexture", unit) }

func (f *fakeGL) BindTexture(target Enum, t uint32) {
	f.record("BindTexture", target, t)
	f.boundTexture[target] = t
}

func (f *fakeGL) TexImage1D(target Enum, level int32, internalFormat Enum, width int32, format, typ Enum, data []byte) {
	f.record("TexImage1D", target, level, internalFormat, width, format, typ, data != nil)
}

func (f *fakeGL) TexImage2D(target Enum, level int32, internalFormat Enum, width, height int32, format, typ Enum, data []byte) {
	f.record("TexImage2D", target, level, internalFormat, width, height, format, typ, data != nil)
	if target != TEXTURE_2D || level != 0 {
		return
	}
	t := f.textures[f.boundTexture[TEXTURE_2D]]
	if t == nil {
		return
	}
	n := int(width) * int(height)
	t.width, t.height, t.internal = int(width), int(height), internalFormat
	switch internalFormat {
	case RGBA8:
		t.pixels = make([]byte, n*4)
		copy(t.pixels, data)
	case DEPTH_COMPONENT24, DEPTH_COMPONENT32F:
		t.depth = make([]float32, n)
	case DEPTH24_STENCIL8:
		t.depth = make([]float32, n)
		t.stencil = make([]uint8, n)
	}
}

func (f *fakeGL) TexImage3D(target Enum, level int32, internalFormat Enum, width, height, depth int32, format, typ Enum, data []byte) {
	f.record("TexImage3D", target, level, internalFormat, width, height, depth, format, typ, data != nil)
}

func (f *fakeGL) TexParameteri(target, pname Enum, param int32) {
	f.record("TexParameteri", target, pname, param)
}

func (f *fakeGL) GenSampler() uint32 {
	id := f.gen("sampler")
	f.record("GenSampler", id)
	return id
}

func (f *fakeGL) DeleteSampler(s uint32) {
	f.record("DeleteSampler", s)
	f.del("sampler", s)
}

func (f *fakeGL) BindSampler(unit, s uint32) { f.record("BindSampler", unit, s) }

func (f *fakeGL) SamplerParameteri(s uint32, pname Enum, param int32) {
	f.record("SamplerParameteri", s, pname, param)
}

func (f *fakeGL) SamplerParameterf(s uint32, pname Enum, param float32) {
	f.record("SamplerParameterf", s, pname, param)
}

func (f *fakeGL) SamplerParameterfv(s uint32, pname Enum, params []float32) {
	f.record("SamplerParameterfv", s, pname, slices.Clone(params))
}

// Framebuffers

func (f *fakeGL) GenFramebuffer() uint32 {
	id := f.gen("framebuffer")
	f.framebuffers[id] = make(map[Enum]uint32)
	f.record("GenFramebuffer", id)
	return id
}

func (f *fakeGL) DeleteFramebuffer(fb uint32) {
	f.record("DeleteFramebuffer", fb)
	f.del("framebuffer", fb)
	delete(f.framebuffers, fb)
}

func (f *fakeGL) BindFramebuffer(target Enum, fb uint32) {
	f.record("BindFramebuffer", target, fb)
	switch target {
	case FRAMEBUFFER:
		f.drawFB, f.readFB = fb, fb
	case DRAW_FRAMEBUFFER:
		f.drawFB = fb
	case READ_FRAMEBUFFER:
		f.readFB = fb
	}
}

func (f *fakeGL) attach(attachment Enum, t uint32) {
	if fb := f.framebuffers[f.drawFB]; fb != nil {
		fb[attachment] = t
	}
}

func (f *fakeGL) FramebufferTexture(target, attachment Enum, t uint32, level int32) {
	f.record("FramebufferTexture", target, attachment, t, level)
	f.attach(attachment, t)
}

func (f *fakeGL) FramebufferTexture2D(target, attachment, texTarget Enum, t uint32, level int32) {
	f.record("FramebufferTexture2D", target, attachment, texTarget, t, level)
	f.attach(attachment, t)
}

func (f *fakeGL) FramebufferTextureLayer(target, attachment Enum, t uint32, level, layer int32) {
	f.record("FramebufferTextureLayer", target, attachment, t, level, layer)
	f.attach(attachment, t)
}

func (f *fakeGL) CheckFramebufferStatus(target Enum) Enum {
	f.record("CheckFramebufferStatus", target)
	if f.framebufferStatus != 0 {
		return f.framebufferStatus
	}
	return FRAMEBUFFER_COMPLETE
}

func (f *fakeGL) DrawBuffers(bufs []Enum) { f.record("DrawBuffers", slices.Clone(bufs)) }

func (f *fakeGL) ReadBuffer(src Enum) {
	f.record("ReadBuffer", src)
	f.readBuffer[f.readFB] = src
}

func (f *fakeGL) BlitFramebuffer(sx0, sy0, sx1, sy1, dx0, dy0, dx1, dy1 int32, mask, filter Enum) {
	f.record("BlitFramebuffer", sx0, sy0, sx1, sy1, dx0, dy0, dx1, dy1, mask, filter)
}

// attached returns the texture attached to the draw framebuffer at the
// first of the given attachment points.
func (f *fakeGL) attached(points ...Enum) *fakeTexture {
	fb := f.framebuffers[f.drawFB]
	for _, p := range points {
		if t, ok := fb[p]; ok {
			return f.textures[t]
		}
	}
	return nil
}

func unorm8(v float32) byte {
	return byte(math.Round(float64(min(max(v, 0), 1)) * 255))
}

func (f *fakeGL) ClearBufferfv(buffer Enum, drawBuffer int32, value []float32) {
	f.record("ClearBufferfv", buffer, drawBuffer, slices.Clone(value))
	switch buffer {
	case COLOR:
		if t := f.attached(COLOR_ATTACHMENT0 + Enum(drawBuffer)); t != nil {
			for i := 0; i+3 < len(t.pixels); i += 4 {
				for c := range 4 {
					t.pixels[i+c] = unorm8(value[c])
				}
			}
		}
	case DEPTH:
		if t := f.attached(DEPTH_ATTACHMENT, DEPTH_STENCIL_ATTACHMENT); t != nil {
			for i := range t.depth {
				t.depth[i] = value[0]
			}
		}
	}
}

func (f *fakeGL) ClearBufferiv(buffer Enum, drawBuffer int32, value []int32) {
	f.record("ClearBufferiv", buffer, drawBuffer, slices.Clone(value))
	if t := f.attached(STENCIL_ATTACHMENT, DEPTH_STENCIL_ATTACHMENT); buffer == STENCIL && t != nil {
		for i := range t.stencil {
			t.stencil[i] = uint8(value[0]) //nolint:gosec // test values are small
		}
	}
}

func (f *fakeGL) ClearBufferfi(buffer Enum, drawBuffer int32, depth float32, stencil int32) {
	f.record("ClearBufferfi", buffer, drawBuffer, depth, stencil)
	if t := f.attached(DEPTH_STENCIL_ATTACHMENT); t != nil {
		for i := range t.depth {
			t.depth[i] = depth
		}
		for i := range t.stencil {
			t.stencil[i] = uint8(stencil) //nolint:gosec // test values are small
		}
	}
}

func (f *fakeGL) ReadPixels(x, y, width, height int32, format, typ Enum, dst []byte) {
	f.record("ReadPixels", x, y, width, height, format, typ)
	src, ok := f.readBuffer[f.readFB]
	if !ok {
		src = COLOR_ATTACHMENT0
	}
	t := f.textures[f.framebuffers[f.readFB][src]]
	if t == nil || t.pixels == nil {
		return
	}
	rowLen := int(width) * 4
	for row := range int(height) {
		start := ((int(y)+row)*t.width + int(x)) * 4
		copy(dst[row*rowLen:(row+1)*rowLen], t.pixels[start:start+rowLen])
	}
}

// Fixed-function state

func (f *fakeGL) Viewport(x, y, width, height int32)  { f.record("Viewport", x, y, width, height) }
func (f *fakeGL) Scissor(x, y, width, height int32)   { f.record("Scissor", x, y, width, height) }
func (f *fakeGL) Enable(capability Enum)              { f.record("Enable", capability) }
func (f *fakeGL) Disable(capability Enum)             { f.record("Disable", capability) }
func (f *fakeGL) CullFace(mode Enum)                  { f.record("CullFace", mode) }
func (f *fakeGL) FrontFace(mode Enum)                 { f.record("FrontFace", mode) }
func (f *fakeGL) PolygonMode(face, mode Enum)         { f.record("PolygonMode", face, mode) }
func (f *fakeGL) PolygonOffset(factor, units float32) { f.record("PolygonOffset", factor, units) }
func (f *fakeGL) DepthFunc(fn Enum)                   { f.record("DepthFunc", fn) }
func (f *fakeGL) DepthMask(write bool)                { f.record("DepthMask", write) }

func (f *fakeGL) StencilFuncSeparate(face, fn Enum, ref int32, mask uint32) {
	f.record("StencilFuncSeparate", face, fn, ref, mask)
}

func (f *fakeGL) StencilOpSeparate(face, sfail, dpfail, dppass Enum) {
	f.record("StencilOpSeparate", face, sfail, dpfail, dppass)
}

func (f *fakeGL) StencilMaskSeparate(face Enum, mask uint32) {
	f.record("StencilMaskSeparate", face, mask)
}

func (f *fakeGL) BlendEquationSeparate(modeRGB, modeAlpha Enum) {
	f.record("BlendEquationSeparate", modeRGB, modeAlpha)
}

func (f *fakeGL) BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha Enum) {
	f.record("BlendFuncSeparate", srcRGB, dstRGB, srcAlpha, dstAlpha)
}

func (f *fakeGL) ColorMask(r, g, b, a bool) { f.record("ColorMask", r, g, b, a) }

// Draws

func (f *fakeGL) DrawArrays(mode Enum, first, count int32) {
	f.record("DrawArrays", mode, first, count)
}

func (f *fakeGL) DrawArraysInstanced(mode Enum, first, count, instances int32) {
	f.record("DrawArraysInstanced", mode, first, count, instances)
}

func (f *fakeGL) DrawElements(mode Enum, count int32, typ Enum, offset int) {
	f.record("DrawElements", mode, count, typ, offset)
}

func (f *fakeGL) DrawElementsInstanced(mode Enum, count int32, typ Enum, offset int, instances int32) {
	f.record("DrawElementsInstanced", mode, count, typ, offset, instances)
}

// Queries

func (f *fakeGL) GenQuery() uint32 {
	id := f.gen("query")
	f.record("GenQuery", id)
	return id
}

func (f *fakeGL) DeleteQuery(q uint32) {
	f.record("DeleteQuery", q)
	f.del("query", q)
}

func (f *fakeGL) BeginQuery(target Enum, q uint32) { f.record("BeginQuery", target, q) }
func (f *fakeGL) EndQuery(target Enum)             { f.record("EndQuery", target) }

func (f *fakeGL) GetQueryObjectui64(q uint32, pname Enum) uint64 {
	f.record("GetQueryObjectui64", q, pname)
	return f.queryNanos
}

var _ Functions = (*fakeGL)(nil)
