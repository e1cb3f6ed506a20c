package gl

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/gogpu/gfx"
)

type buffer struct {
	id    uint32
	typ   gfx.BufferType
	usage gfx.BufferUsage
	size  int

	// staging backs MapBuffer for dynamic buffers.
	staging   []byte
	mapped    bool
	mapOffset int
	mapSize   int
}

type pipeline struct {
	program  uint32
	vao      uint32
	topology Enum
	layout   []gfx.InputLayoutElement
	attribs  []vertexAttrib
}

func (p *pipeline) release(f Functions) {
	f.DeleteVertexArray(p.vao)
	f.DeleteProgram(p.program)
}

type sampler struct {
	id uint32
}

type texture struct {
	id     uint32
	target Enum
	desc   gfx.TextureDesc
}

type renderPass struct {
	fbo           uint32
	width, height int
	colors        []gfx.ColorAttachment
	depth         *gfx.DepthAttachment
	stencil       *gfx.StencilAttachment

	// depthStencil is set when depth and stencil share one packed texture
	// and are cleared together.
	depthStencil bool
}

func (p *renderPass) release(f Functions) {
	if p.fbo != 0 {
		f.DeleteFramebuffer(p.fbo)
	}
}

// remove deletes h from t and frees the GL object. Unknown and stale
// handles are logged and returned without touching GL.
func remove[H ~uint32, T any](log *slog.Logger, t *gfx.Table[H, T], h H, free func(T)) error {
	v, err := t.Remove(h)
	if err != nil {
		log.Warn("gl: delete of unknown handle", "handle", h, "err", err)
		return fmt.Errorf("gl: delete %w", err)
	}
	free(v)
	log.Debug("gl: deleted", "handle", h)
	return nil
}

// CreateBuffer implements gfx.Device.
func (d *Device) CreateBuffer(desc gfx.BufferDesc) (gfx.BufferHandle, error) {
	if err := d.alive(); err != nil {
		return 0, err
	}
	if err := desc.Validate(); err != nil {
		return 0, fmt.Errorf("gl: create buffer: %w", err)
	}
	usage, err := lookup("buffer usage", desc.Usage, bufferUsages)
	if err != nil {
		return 0, fmt.Errorf("gl: create buffer: %w", err)
	}

	// Buffer objects are untyped. Uploading through ARRAY_BUFFER leaves the
	// element array binding of the bound vertex array alone.
	b := buffer{id: d.f.GenBuffer(), typ: desc.Type, usage: desc.Usage, size: desc.Size}
	d.f.BindBuffer(ARRAY_BUFFER, b.id)
	if len(desc.Data) == desc.Size {
		d.f.BufferData(ARRAY_BUFFER, desc.Size, desc.Data, usage)
	} else {
		d.f.BufferData(ARRAY_BUFFER, desc.Size, nil, usage)
		if len(desc.Data) > 0 {
			d.f.BufferSubData(ARRAY_BUFFER, 0, desc.Data)
		}
	}
	d.f.BindBuffer(ARRAY_BUFFER, 0)
	if desc.Usage == gfx.UsageDynamic {
		b.staging = make([]byte, desc.Size)
		copy(b.staging, desc.Data)
	}

	h, err := d.buffers.Insert(b)
	if err != nil {
		d.f.DeleteBuffer(b.id)
		return 0, fmt.Errorf("gl: create buffer: %w", err)
	}
	d.log.Debug("gl: buffer created", "handle", h, "type", desc.Type, "size", desc.Size, "label", desc.Label)
	return h, nil
}

// DeleteBuffer implements gfx.Device.
func (d *Device) DeleteBuffer(h gfx.BufferHandle) error {
	return remove(d.log, d.buffers, h, func(b buffer) { d.f.DeleteBuffer(b.id) })
}

// MapBuffer implements gfx.Device. The region is a window into a CPU copy
// of the buffer; UnmapBuffer uploads it.
func (d *Device) MapBuffer(h gfx.BufferHandle, offset, size int) ([]byte, error) {
	var region []byte
	err := d.buffers.Update(h, func(b *buffer) error {
		if b.usage != gfx.UsageDynamic {
			return fmt.Errorf("%w: %v buffer is not mappable", gfx.ErrInvalidUsage, b.usage)
		}
		if b.mapped {
			return gfx.ErrAlreadyMapped
		}
		if err := gfx.CheckMapRange(b.size, offset, size); err != nil {
			return err
		}
		b.mapped, b.mapOffset, b.mapSize = true, offset, size
		region = b.staging[offset : offset+size : offset+size]
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("gl: map %v: %w", h, err)
	}
	return region, nil
}

// UnmapBuffer implements gfx.Device.
func (d *Device) UnmapBuffer(h gfx.BufferHandle) error {
	err := d.buffers.Update(h, func(b *buffer) error {
		if !b.mapped {
			return gfx.ErrNotMapped
		}
		d.f.BindBuffer(ARRAY_BUFFER, b.id)
		d.f.BufferSubData(ARRAY_BUFFER, b.mapOffset, b.staging[b.mapOffset:b.mapOffset+b.mapSize])
		d.f.BindBuffer(ARRAY_BUFFER, 0)
		b.mapped = false
		return nil
	})
	if err != nil {
		return fmt.Errorf("gl: unmap %v: %w", h, err)
	}
	return nil
}

// CreatePipeline implements gfx.Device. Vertex attributes are bound to
// their input layout index by the name returned from Semantic.AttribName.
func (d *Device) CreatePipeline(desc gfx.PipelineDesc) (gfx.PipelineHandle, error) {
	if err := d.alive(); err != nil {
		return 0, err
	}
	if err := desc.Validate(); err != nil {
		return 0, fmt.Errorf("gl: create pipeline: %w", err)
	}
	if len(desc.InputLayout) > d.caps.MaxVertexBuffers {
		return 0, fmt.Errorf("gl: create pipeline: %w: %d vertex attributes, max %d",
			gfx.ErrInvalidDescriptor, len(desc.InputLayout), d.caps.MaxVertexBuffers)
	}
	topology, err := lookup("topology", desc.Topology, primitiveModes)
	if err != nil {
		return 0, fmt.Errorf("gl: create pipeline: %w", err)
	}
	attribs := make([]vertexAttrib, len(desc.InputLayout))
	for i, e := range desc.InputLayout {
		if attribs[i], err = convertVertexFormat(e.Format); err != nil {
			return 0, fmt.Errorf("gl: create pipeline: %w", err)
		}
	}

	program, err := d.linkProgram(&desc)
	if err != nil {
		return 0, fmt.Errorf("gl: create pipeline %q: %w", desc.Label, err)
	}

	vao := d.f.GenVertexArray()
	d.f.BindVertexArray(vao)
	for i := range desc.InputLayout {
		d.f.EnableVertexAttribArray(uint32(i)) //nolint:gosec // G115: bounded by MaxVertexBuffers
	}
	d.f.BindVertexArray(0)

	p := pipeline{
		program:  program,
		vao:      vao,
		topology: topology,
		layout:   slices.Clone(desc.InputLayout),
		attribs:  attribs,
	}
	h, err := d.pipelines.Insert(p)
	if err != nil {
		p.release(d.f)
		return 0, fmt.Errorf("gl: create pipeline: %w", err)
	}
	d.log.Debug("gl: pipeline created", "handle", h, "label", desc.Label, "stages", len(desc.Shaders))
	return h, nil
}

func (d *Device) compileShader(s gfx.ShaderStageDesc) (uint32, error) {
	typ, ok := shaderTypes[s.Stage]
	if !ok {
		return 0, fmt.Errorf("%w: shader stage %v", gfx.ErrInvalidDescriptor, s.Stage)
	}
	shader := d.f.CreateShader(typ)
	d.f.ShaderSource(shader, s.Source)
	d.f.CompileShader(shader)
	if d.f.GetShaderi(shader, COMPILE_STATUS) == 0 {
		log := strings.TrimSpace(d.f.GetShaderInfoLog(shader))
		d.f.DeleteShader(shader)
		return 0, fmt.Errorf("%w: %v stage: %s", gfx.ErrShaderCompile, s.Stage, log)
	}
	if log := strings.TrimSpace(d.f.GetShaderInfoLog(shader)); log != "" {
		d.log.Warn("gl: shader compiled with warnings", "stage", s.Stage, "log", log)
	}
	return shader, nil
}

// linkProgram compiles and links the stages of desc, then attaches uniform
// blocks and sampler uniforms to the slots declared in desc.Bindings.
func (d *Device) linkProgram(desc *gfx.PipelineDesc) (uint32, error) {
	shaders := make([]uint32, 0, len(desc.Shaders))
	defer func() {
		for _, s := range shaders {
			d.f.DeleteShader(s)
		}
	}()
	for _, st := range desc.Shaders {
		s, err := d.compileShader(st)
		if err != nil {
			return 0, err
		}
		shaders = append(shaders, s)
	}

	program := d.f.CreateProgram()
	for _, s := range shaders {
		d.f.AttachShader(program, s)
	}
	for i, e := range desc.InputLayout {
		d.f.BindAttribLocation(program, uint32(i), e.Semantic.AttribName()) //nolint:gosec // G115: bounded by MaxVertexBuffers
	}
	d.f.LinkProgram(program)
	if d.f.GetProgrami(program, LINK_STATUS) == 0 {
		log := strings.TrimSpace(d.f.GetProgramInfoLog(program))
		d.f.DeleteProgram(program)
		return 0, fmt.Errorf("%w: %s", gfx.ErrShaderLink, log)
	}

	pushConstants := "PushConstants"
	used := false
	for _, b := range desc.Bindings {
		switch b.Kind {
		case gfx.BindingPushConstants:
			if b.Name != "" {
				pushConstants = b.Name
			}
		case gfx.BindingConstantBuffer:
			if idx := d.f.GetUniformBlockIndex(program, b.Name); idx != INVALID_INDEX {
				d.f.UniformBlockBinding(program, idx, b.Slot)
			}
		case gfx.BindingTexture, gfx.BindingSampler:
			if loc := d.f.GetUniformLocation(program, b.Name); loc >= 0 {
				if !used {
					d.f.UseProgram(program)
					used = true
				}
				d.f.Uniform1i(loc, int32(b.Slot)) //nolint:gosec // G115: texture units are small
			}
		}
	}
	if idx := d.f.GetUniformBlockIndex(program, pushConstants); idx != INVALID_INDEX {
		d.f.UniformBlockBinding(program, idx, PushConstantBinding)
	}
	if used {
		d.f.UseProgram(0)
	}
	return program, nil
}

// DeletePipeline implements gfx.Device.
func (d *Device) DeletePipeline(h gfx.PipelineHandle) error {
	return remove(d.log, d.pipelines, h, func(p pipeline) { p.release(d.f) })
}

func (d *Device) insertState(s stateBlock) (gfx.StateBlockHandle, error) {
	if err := d.alive(); err != nil {
		return 0, err
	}
	h, err := d.states.Insert(s)
	if err != nil {
		return 0, fmt.Errorf("gl: create %v state: %w", s.kind, err)
	}
	d.log.Debug("gl: state block created", "handle", h, "kind", s.kind)
	return h, nil
}

// CreateRasterizerState implements gfx.Device.
func (d *Device) CreateRasterizerState(desc gfx.RasterizerStateDesc) (gfx.StateBlockHandle, error) {
	s, err := newRasterizerState(desc)
	if err != nil {
		return 0, fmt.Errorf("gl: create rasterizer state: %w", err)
	}
	return d.insertState(stateBlock{kind: gfx.StateRasterizer, raster: s})
}

// CreateDepthStencilState implements gfx.Device.
func (d *Device) CreateDepthStencilState(desc gfx.DepthStencilStateDesc) (gfx.StateBlockHandle, error) {
	s, err := newDepthStencilState(desc)
	if err != nil {
		return 0, fmt.Errorf("gl: create depth-stencil state: %w", err)
	}
	return d.insertState(stateBlock{kind: gfx.StateDepthStencil, depth: s})
}

// CreateBlendState implements gfx.Device.
func (d *Device) CreateBlendState(desc gfx.BlendStateDesc) (gfx.StateBlockHandle, error) {
	s, err := newBlendState(desc)
	if err != nil {
		return 0, fmt.Errorf("gl: create blend state: %w", err)
	}
	return d.insertState(stateBlock{kind: gfx.StateBlend, blend: s})
}

// DeleteStateBlock implements gfx.Device.
func (d *Device) DeleteStateBlock(h gfx.StateBlockHandle) error {
	return remove(d.log, d.states, h, func(stateBlock) {})
}

// CreateSampler implements gfx.Device.
func (d *Device) CreateSampler(desc gfx.SamplerDesc) (gfx.SamplerHandle, error) {
	if err := d.alive(); err != nil {
		return 0, err
	}
	if err := desc.Validate(); err != nil {
		return 0, fmt.Errorf("gl: create sampler: %w", err)
	}
	var wrap [3]Enum
	for i, m := range []gfx.AddressMode{desc.AddressU, desc.AddressV, desc.AddressW} {
		var err error
		if wrap[i], err = lookup("address mode", m, addressModes); err != nil {
			return 0, fmt.Errorf("gl: create sampler: %w", err)
		}
	}
	compare, err := lookup("compare func", desc.CompareFunc, compareFuncs)
	if err != nil {
		return 0, fmt.Errorf("gl: create sampler: %w", err)
	}

	s := d.f.GenSampler()
	d.f.SamplerParameteri(s, TEXTURE_MIN_FILTER, int32(minFilter(desc.MinFilter, desc.Mipmap)))
	d.f.SamplerParameteri(s, TEXTURE_MAG_FILTER, int32(magFilter(desc.MagFilter)))
	d.f.SamplerParameteri(s, TEXTURE_WRAP_S, int32(wrap[0]))
	d.f.SamplerParameteri(s, TEXTURE_WRAP_T, int32(wrap[1]))
	d.f.SamplerParameteri(s, TEXTURE_WRAP_R, int32(wrap[2]))
	maxLOD := desc.MaxLOD
	if maxLOD == 0 {
		maxLOD = 1000
	}
	d.f.SamplerParameterf(s, TEXTURE_MIN_LOD, desc.MinLOD)
	d.f.SamplerParameterf(s, TEXTURE_MAX_LOD, maxLOD)
	if desc.Compare {
		d.f.SamplerParameteri(s, TEXTURE_COMPARE_MODE, int32(COMPARE_REF_TO_TEXTURE))
		d.f.SamplerParameteri(s, TEXTURE_COMPARE_FUNC, int32(compare))
	}
	if desc.BorderColor != [4]float32{} {
		d.f.SamplerParameterfv(s, TEXTURE_BORDER_COLOR, desc.BorderColor[:])
	}

	h, err := d.samplers.Insert(sampler{id: s})
	if err != nil {
		d.f.DeleteSampler(s)
		return 0, fmt.Errorf("gl: create sampler: %w", err)
	}
	d.log.Debug("gl: sampler created", "handle", h, "label", desc.Label)
	return h, nil
}

// DeleteSampler implements gfx.Device.
func (d *Device) DeleteSampler(h gfx.SamplerHandle) error {
	return remove(d.log, d.samplers, h, func(s sampler) { d.f.DeleteSampler(s.id) })
}

// CreateTexture implements gfx.Device. Data, when present, fills mip
// level 0; further levels are allocated empty.
func (d *Device) CreateTexture(desc gfx.TextureDesc) (gfx.TextureHandle, error) {
	if err := d.alive(); err != nil {
		return 0, err
	}
	if err := desc.Validate(); err != nil {
		return 0, fmt.Errorf("gl: create texture: %w", err)
	}
	target, err := lookup("texture type", desc.Type, textureTargets)
	if err != nil {
		return 0, fmt.Errorf("gl: create texture: %w", gfx.ErrUnsupportedTexture)
	}
	format, err := convertTextureFormat(desc.Format)
	if err != nil {
		return 0, fmt.Errorf("gl: create texture: %w", err)
	}

	id := d.f.GenTexture()
	d.f.BindTexture(target, id)
	w, h, depth := desc.Extent()
	levels := desc.Levels()
	for level := range levels {
		var data []byte
		if level == 0 {
			data = desc.Data
		}
		d.texImage(&desc, target, format, level, max(w>>level, 1), max(h>>level, 1), max(depth>>level, 1), data)
	}
	d.f.TexParameteri(target, TEXTURE_BASE_LEVEL, 0)
	d.f.TexParameteri(target, TEXTURE_MAX_LEVEL, int32(levels-1)) //nolint:gosec // G115: at most 32 levels
	if levels == 1 {
		// The default minification filter samples mipmaps, which would
		// leave a single-level texture incomplete.
		d.f.TexParameteri(target, TEXTURE_MIN_FILTER, int32(LINEAR))
	}
	d.f.BindTexture(target, 0)

	if e := d.f.GetError(); e != NO_ERROR {
		d.f.DeleteTexture(id)
		return 0, fmt.Errorf("gl: create texture: %w: %v %v (GL error %#x)", gfx.ErrUnsupportedTexture, desc.Type, desc.Format, uint32(e))
	}

	stored := desc
	stored.Data = nil
	th, err := d.textures.Insert(texture{id: id, target: target, desc: stored})
	if err != nil {
		d.f.DeleteTexture(id)
		return 0, fmt.Errorf("gl: create texture: %w", err)
	}
	d.log.Debug("gl: texture created", "handle", th, "type", desc.Type, "format", desc.Format,
		"width", w, "height", h, "depth", depth, "levels", levels)
	return th, nil
}

//nolint:gosec // G115: texture dimensions fit in int32
func (d *Device) texImage(desc *gfx.TextureDesc, target Enum, f textureFormat, level, w, h, depth int, data []byte) {
	switch desc.Type {
	case gfx.Texture1D:
		d.f.TexImage1D(target, int32(level), f.internal, int32(w), f.format, f.typ, data)
	case gfx.Texture2D:
		d.f.TexImage2D(target, int32(level), f.internal, int32(w), int32(h), f.format, f.typ, data)
	case gfx.Texture3D:
		d.f.TexImage3D(target, int32(level), f.internal, int32(w), int32(h), int32(depth), f.format, f.typ, data)
	case gfx.TextureCube:
		faceSize := w * h * desc.Format.BytesPerPixel()
		for face := range 6 {
			var faceData []byte
			if data != nil {
				faceData = data[face*faceSize : (face+1)*faceSize]
			}
			d.f.TexImage2D(TEXTURE_CUBE_MAP_POSITIVE_X+Enum(face), int32(level), f.internal,
				int32(w), int32(h), f.format, f.typ, faceData)
		}
	}
}

// DeleteTexture implements gfx.Device. Render passes that attach the
// texture keep their framebuffer but lose the attachment.
func (d *Device) DeleteTexture(h gfx.TextureHandle) error {
	return remove(d.log, d.textures, h, func(t texture) { d.f.DeleteTexture(t.id) })
}

// CreateRenderPass implements gfx.Device. A pass without attachments
// renders to the default framebuffer and creates no GL object.
func (d *Device) CreateRenderPass(desc gfx.RenderPassDesc) (gfx.RenderPassHandle, error) {
	if err := d.alive(); err != nil {
		return 0, err
	}
	if err := desc.Validate(); err != nil {
		return 0, fmt.Errorf("gl: create render pass: %w", err)
	}
	if len(desc.Colors) > d.caps.MaxColorAttachments {
		return 0, fmt.Errorf("gl: create render pass: %w: %d color attachments, max %d",
			gfx.ErrInvalidDescriptor, len(desc.Colors), d.caps.MaxColorAttachments)
	}

	pass := renderPass{colors: slices.Clone(desc.Colors)}
	if desc.Depth != nil {
		depth := *desc.Depth
		pass.depth = &depth
	}
	if desc.Stencil != nil {
		stencil := *desc.Stencil
		pass.stencil = &stencil
	}
	if desc.HasAttachments() {
		if err := d.buildFramebuffer(&pass); err != nil {
			return 0, fmt.Errorf("gl: create render pass %q: %w", desc.Label, err)
		}
	}

	h, err := d.passes.Insert(pass)
	if err != nil {
		pass.release(d.f)
		return 0, fmt.Errorf("gl: create render pass: %w", err)
	}
	d.log.Debug("gl: render pass created", "handle", h, "label", desc.Label,
		"colors", len(desc.Colors), "width", pass.width, "height", pass.height)
	return h, nil
}

// resolveAttachment looks up an attachment texture and checks that its
// level and layer exist and that all attachments share one size.
func (d *Device) resolveAttachment(p *renderPass, what string, h gfx.TextureHandle, level, layer int) (texture, error) {
	tex, err := d.textures.Get(h)
	if err != nil {
		return tex, fmt.Errorf("%w: %s: %w", gfx.ErrIncompleteRenderPass, what, err)
	}
	if level >= tex.desc.Levels() {
		return tex, fmt.Errorf("%w: %s level %d of %d", gfx.ErrInvalidDescriptor, what, level, tex.desc.Levels())
	}
	w, hh, depth := tex.desc.Extent()
	if tex.desc.Type == gfx.Texture3D {
		depth = max(depth>>level, 1)
	}
	if layer >= depth {
		return tex, fmt.Errorf("%w: %s layer %d of %d", gfx.ErrInvalidDescriptor, what, layer, depth)
	}
	w, hh = max(w>>level, 1), max(hh>>level, 1)
	if p.width == 0 {
		p.width, p.height = w, hh
	} else if w != p.width || hh != p.height {
		return tex, fmt.Errorf("%w: %s is %dx%d, pass is %dx%d", gfx.ErrIncompleteRenderPass, what, w, hh, p.width, p.height)
	}
	return tex, nil
}

func (d *Device) attach(attachment Enum, tex texture, level, layer int) {
	lvl := int32(level) //nolint:gosec // G115: validated against the mip count
	switch tex.desc.Type {
	case gfx.Texture1D:
		d.f.FramebufferTexture(FRAMEBUFFER, attachment, tex.id, lvl)
	case gfx.Texture2D:
		d.f.FramebufferTexture2D(FRAMEBUFFER, attachment, TEXTURE_2D, tex.id, lvl)
	case gfx.TextureCube:
		d.f.FramebufferTexture2D(FRAMEBUFFER, attachment, TEXTURE_CUBE_MAP_POSITIVE_X+Enum(layer), tex.id, lvl)
	case gfx.Texture3D:
		d.f.FramebufferTextureLayer(FRAMEBUFFER, attachment, tex.id, lvl, int32(layer)) //nolint:gosec // G115: validated against depth
	}
}

func (d *Device) buildFramebuffer(p *renderPass) error {
	colors := make([]texture, len(p.colors))
	for i, c := range p.colors {
		tex, err := d.resolveAttachment(p, fmt.Sprintf("color attachment %d", i), c.Texture, c.Level, c.Layer)
		if err != nil {
			return err
		}
		if tex.desc.Format.IsDepth() {
			return fmt.Errorf("%w: color attachment %d has depth format %v", gfx.ErrIncompleteRenderPass, i, tex.desc.Format)
		}
		colors[i] = tex
	}
	var depthTex, stencilTex texture
	if p.depth != nil {
		tex, err := d.resolveAttachment(p, "depth attachment", p.depth.Texture, p.depth.Level, 0)
		if err != nil {
			return err
		}
		if !tex.desc.Format.IsDepth() {
			return fmt.Errorf("%w: depth attachment has format %v", gfx.ErrIncompleteRenderPass, tex.desc.Format)
		}
		depthTex = tex
	}
	if p.stencil != nil {
		tex, err := d.resolveAttachment(p, "stencil attachment", p.stencil.Texture, p.stencil.Level, 0)
		if err != nil {
			return err
		}
		if !tex.desc.Format.HasStencil() {
			return fmt.Errorf("%w: stencil attachment has format %v", gfx.ErrIncompleteRenderPass, tex.desc.Format)
		}
		stencilTex = tex
	}
	p.depthStencil = p.depth != nil && p.stencil != nil &&
		p.depth.Texture == p.stencil.Texture && p.depth.Level == p.stencil.Level

	p.fbo = d.f.GenFramebuffer()
	d.f.BindFramebuffer(FRAMEBUFFER, p.fbo)
	drawBuffers := make([]Enum, len(colors))
	for i, tex := range colors {
		drawBuffers[i] = COLOR_ATTACHMENT0 + Enum(i)
		d.attach(drawBuffers[i], tex, p.colors[i].Level, p.colors[i].Layer)
	}
	switch {
	case p.depthStencil:
		d.attach(DEPTH_STENCIL_ATTACHMENT, depthTex, p.depth.Level, 0)
	default:
		if p.depth != nil {
			d.attach(DEPTH_ATTACHMENT, depthTex, p.depth.Level, 0)
		}
		if p.stencil != nil {
			d.attach(STENCIL_ATTACHMENT, stencilTex, p.stencil.Level, 0)
		}
	}
	if len(drawBuffers) > 0 {
		d.f.DrawBuffers(drawBuffers)
	} else {
		d.f.DrawBuffers([]Enum{NONE})
		d.f.ReadBuffer(NONE)
	}
	status := d.f.CheckFramebufferStatus(FRAMEBUFFER)
	d.f.BindFramebuffer(FRAMEBUFFER, 0)
	if status != FRAMEBUFFER_COMPLETE {
		d.f.DeleteFramebuffer(p.fbo)
		p.fbo = 0
		return fmt.Errorf("%w: framebuffer status %#x", gfx.ErrIncompleteRenderPass, uint32(status))
	}
	return nil
}

// DeleteRenderPass implements gfx.Device.
func (d *Device) DeleteRenderPass(h gfx.RenderPassHandle) error {
	return remove(d.log, d.passes, h, func(p renderPass) { p.release(d.f) })
}
