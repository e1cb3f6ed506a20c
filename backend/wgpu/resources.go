package wgpu

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gfx"
)

type buffer struct {
	buf   hal.Buffer
	typ   gfx.BufferType
	usage gfx.BufferUsage
	size  int

	// staging backs MapBuffer for dynamic buffers. It is padded to the
	// size of the HAL buffer.
	staging   []byte
	mapped    bool
	mapOffset int
	mapSize   int
}

type texture struct {
	tex    hal.Texture
	view   hal.TextureView
	format gputypes.TextureFormat
	desc   gfx.TextureDesc
}

func (t *texture) release(device hal.Device) {
	device.DestroyTextureView(t.view)
	device.DestroyTexture(t.tex)
}

type sampler struct {
	sampler hal.Sampler
	compare bool
}

// stateBlock keeps the descriptor of a state object. WebGPU has no
// separate state objects, so blocks are folded into pipeline variants.
type stateBlock struct {
	kind   gfx.StateBlockKind
	raster gfx.RasterizerStateDesc
	depth  gfx.DepthStencilStateDesc
	blend  gfx.BlendStateDesc
}

type colorTarget struct {
	tex    hal.Texture
	view   hal.TextureView
	format gputypes.TextureFormat
	level  int
	layer  int
	load   gputypes.LoadOp
	clear  gputypes.Color
}

// depthTarget is the single depth-stencil attachment of a pass, combining
// the gfx depth and stencil attachments.
type depthTarget struct {
	view       hal.TextureView
	format     gputypes.TextureFormat
	hasStencil bool

	depthLoad, stencilLoad gputypes.LoadOp
	clearDepth             float32
	clearStencil           uint32
}

type renderPass struct {
	label         string
	width, height int
	colors        []colorTarget
	depth         *depthTarget
}

func (p *renderPass) release(device hal.Device) {
	for _, c := range p.colors {
		device.DestroyTextureView(c.view)
	}
	if p.depth != nil {
		device.DestroyTextureView(p.depth.view)
	}
}

func (p *renderPass) colorFormats() []gputypes.TextureFormat {
	formats := make([]gputypes.TextureFormat, len(p.colors))
	for i, c := range p.colors {
		formats[i] = c.format
	}
	return formats
}

// descriptor builds the HAL render pass descriptor. Every attachment is
// stored.
func (p *renderPass) descriptor() *hal.RenderPassDescriptor {
	desc := &hal.RenderPassDescriptor{Label: p.label}
	for _, c := range p.colors {
		desc.ColorAttachments = append(desc.ColorAttachments, hal.RenderPassColorAttachment{
			View:       c.view,
			LoadOp:     c.load,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: c.clear,
		})
	}
	if p.depth != nil {
		ds := &hal.RenderPassDepthStencilAttachment{
			View:            p.depth.view,
			DepthLoadOp:     p.depth.depthLoad,
			DepthStoreOp:    gputypes.StoreOpStore,
			DepthClearValue: p.depth.clearDepth,
		}
		if p.depth.hasStencil {
			ds.StencilLoadOp = p.depth.stencilLoad
			ds.StencilStoreOp = gputypes.StoreOpStore
			ds.StencilClearValue = p.depth.clearStencil
		}
		desc.DepthStencilAttachment = ds
	}
	return desc
}

// remove deletes h from t and frees the HAL object. Unknown and stale
// handles are logged and returned without touching the HAL.
func remove[H ~uint32, T any](log *slog.Logger, t *gfx.Table[H, T], h H, free func(T)) error {
	v, err := t.Remove(h)
	if err != nil {
		log.Warn("wgpu: delete of unknown handle", "handle", h, "err", err)
		return fmt.Errorf("wgpu: delete %w", err)
	}
	free(v)
	log.Debug("wgpu: deleted", "handle", h)
	return nil
}

// align4 rounds n up to the copy alignment of queue writes.
func align4(n int) int { return (n + 3) &^ 3 }

var bufferUsages = []gputypes.BufferUsage{
	gfx.BufferVertex:   gputypes.BufferUsageVertex,
	gfx.BufferIndex:    gputypes.BufferUsageIndex,
	gfx.BufferConstant: gputypes.BufferUsageUniform,
}

// CreateBuffer implements gfx.Device. The HAL buffer is padded to a
// multiple of four bytes.
func (d *Device) CreateBuffer(desc gfx.BufferDesc) (gfx.BufferHandle, error) {
	if err := d.alive(); err != nil {
		return 0, err
	}
	if err := desc.Validate(); err != nil {
		return 0, fmt.Errorf("wgpu: create buffer: %w", err)
	}
	usage, err := lookup("buffer type", desc.Type, bufferUsages)
	if err != nil {
		return 0, fmt.Errorf("wgpu: create buffer: %w", err)
	}

	size := align4(desc.Size)
	buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: desc.Label,
		Size:  uint64(size), //nolint:gosec // G115: validated positive
		Usage: usage | gputypes.BufferUsageCopyDst | gputypes.BufferUsageCopySrc,
	})
	if err != nil {
		return 0, fmt.Errorf("wgpu: create buffer: %w", err)
	}
	if len(desc.Data) > 0 {
		data := desc.Data
		if n := align4(len(data)); n != len(data) {
			data = make([]byte, n)
			copy(data, desc.Data)
		}
		if err := d.queue.WriteBuffer(buf, 0, data); err != nil {
			d.device.DestroyBuffer(buf)
			return 0, fmt.Errorf("wgpu: create buffer: upload: %w", err)
		}
	}

	b := buffer{buf: buf, typ: desc.Type, usage: desc.Usage, size: desc.Size}
	if desc.Usage == gfx.UsageDynamic {
		b.staging = make([]byte, size)
		copy(b.staging, desc.Data)
	}
	h, err := d.buffers.Insert(b)
	if err != nil {
		d.device.DestroyBuffer(buf)
		return 0, fmt.Errorf("wgpu: create buffer: %w", err)
	}
	d.log.Debug("wgpu: buffer created", "handle", h, "type", desc.Type, "size", desc.Size, "label", desc.Label)
	return h, nil
}

// DeleteBuffer implements gfx.Device.
func (d *Device) DeleteBuffer(h gfx.BufferHandle) error {
	return remove(d.log, d.buffers, h, func(b buffer) { d.device.DestroyBuffer(b.buf) })
}

// MapBuffer implements gfx.Device. The region is a window into a CPU copy
// of the buffer; UnmapBuffer writes it through the queue.
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
		return nil, fmt.Errorf("wgpu: map %v: %w", h, err)
	}
	return region, nil
}

// UnmapBuffer implements gfx.Device. The write is widened to four-byte
// boundaries; the bytes around the mapped region come from the CPU copy.
func (d *Device) UnmapBuffer(h gfx.BufferHandle) error {
	err := d.buffers.Update(h, func(b *buffer) error {
		if !b.mapped {
			return gfx.ErrNotMapped
		}
		start := b.mapOffset &^ 3
		end := min(align4(b.mapOffset+b.mapSize), len(b.staging))
		b.mapped = false
		return d.queue.WriteBuffer(b.buf, uint64(start), b.staging[start:end]) //nolint:gosec // G115: non-negative
	})
	if err != nil {
		return fmt.Errorf("wgpu: unmap %v: %w", h, err)
	}
	return nil
}

func (d *Device) insertState(s stateBlock) (gfx.StateBlockHandle, error) {
	if err := d.alive(); err != nil {
		return 0, err
	}
	h, err := d.states.Insert(s)
	if err != nil {
		return 0, fmt.Errorf("wgpu: create %v state: %w", s.kind, err)
	}
	d.log.Debug("wgpu: state block created", "handle", h, "kind", s.kind)
	return h, nil
}

// CreateRasterizerState implements gfx.Device. WebGPU always rasterizes
// filled polygons, so wireframe fill and a disabled rasterizer are
// rejected.
func (d *Device) CreateRasterizerState(desc gfx.RasterizerStateDesc) (gfx.StateBlockHandle, error) {
	if _, err := lookup("cull mode", desc.Cull, cullModes); err != nil {
		return 0, fmt.Errorf("wgpu: create rasterizer state: %w", err)
	}
	if desc.Fill != gfx.FillSolid {
		return 0, fmt.Errorf("wgpu: create rasterizer state: %w: fill mode %v is not supported by wgpu",
			gfx.ErrInvalidDescriptor, desc.Fill)
	}
	if desc.DisableRasterizer {
		return 0, fmt.Errorf("wgpu: create rasterizer state: %w: rasterizer discard is not supported by wgpu",
			gfx.ErrInvalidDescriptor)
	}
	return d.insertState(stateBlock{kind: gfx.StateRasterizer, raster: desc})
}

// CreateDepthStencilState implements gfx.Device.
func (d *Device) CreateDepthStencilState(desc gfx.DepthStencilStateDesc) (gfx.StateBlockHandle, error) {
	if _, err := depthStencilState(&desc, gputypes.TextureFormatDepth24PlusStencil8, nil); err != nil {
		return 0, fmt.Errorf("wgpu: create depth-stencil state: %w", err)
	}
	return d.insertState(stateBlock{kind: gfx.StateDepthStencil, depth: desc})
}

// CreateBlendState implements gfx.Device.
func (d *Device) CreateBlendState(desc gfx.BlendStateDesc) (gfx.StateBlockHandle, error) {
	if _, err := blendState(&desc); err != nil {
		return 0, fmt.Errorf("wgpu: create blend state: %w", err)
	}
	return d.insertState(stateBlock{kind: gfx.StateBlend, blend: desc})
}

// DeleteStateBlock implements gfx.Device. Pipeline variants built from the
// block stay cached until their pipeline is deleted.
func (d *Device) DeleteStateBlock(h gfx.StateBlockHandle) error {
	return remove(d.log, d.states, h, func(stateBlock) {})
}

// CreateSampler implements gfx.Device. With MipNone the LOD range is
// clamped to level 0.
func (d *Device) CreateSampler(desc gfx.SamplerDesc) (gfx.SamplerHandle, error) {
	if err := d.alive(); err != nil {
		return 0, err
	}
	if err := desc.Validate(); err != nil {
		return 0, fmt.Errorf("wgpu: create sampler: %w", err)
	}
	var address [3]gputypes.AddressMode
	for i, m := range []gfx.AddressMode{desc.AddressU, desc.AddressV, desc.AddressW} {
		var err error
		if address[i], err = supported("address mode", m, addressModes); err != nil {
			return 0, fmt.Errorf("wgpu: create sampler: %w", err)
		}
	}
	minFilter, err := lookup("min filter", desc.MinFilter, filterModes)
	if err != nil {
		return 0, fmt.Errorf("wgpu: create sampler: %w", err)
	}
	magFilter, err := lookup("mag filter", desc.MagFilter, filterModes)
	if err != nil {
		return 0, fmt.Errorf("wgpu: create sampler: %w", err)
	}

	sd := &hal.SamplerDescriptor{
		Label:        desc.Label,
		AddressModeU: address[0],
		AddressModeV: address[1],
		AddressModeW: address[2],
		MagFilter:    magFilter,
		MinFilter:    minFilter,
		MipmapFilter: mipmapFilter(desc.Mipmap),
		LodMinClamp:  desc.MinLOD,
		LodMaxClamp:  desc.MaxLOD,
		Anisotropy:   1,
	}
	if sd.LodMaxClamp == 0 {
		sd.LodMaxClamp = 32
	}
	if desc.Mipmap == gfx.MipNone {
		sd.LodMinClamp, sd.LodMaxClamp = 0, 0
	}
	if desc.Compare {
		if sd.Compare, err = lookup("compare func", desc.CompareFunc, compareFuncs); err != nil {
			return 0, fmt.Errorf("wgpu: create sampler: %w", err)
		}
	}

	s, err := d.device.CreateSampler(sd)
	if err != nil {
		return 0, fmt.Errorf("wgpu: create sampler: %w", err)
	}
	h, err := d.samplers.Insert(sampler{sampler: s, compare: desc.Compare})
	if err != nil {
		d.device.DestroySampler(s)
		return 0, fmt.Errorf("wgpu: create sampler: %w", err)
	}
	d.log.Debug("wgpu: sampler created", "handle", h, "label", desc.Label)
	return h, nil
}

// DeleteSampler implements gfx.Device.
func (d *Device) DeleteSampler(h gfx.SamplerHandle) error {
	return remove(d.log, d.samplers, h, func(s sampler) { d.device.DestroySampler(s.sampler) })
}

// CreateTexture implements gfx.Device. Cube textures are 2D textures with
// six layers. Data, when present, fills mip level 0 of every layer.
func (d *Device) CreateTexture(desc gfx.TextureDesc) (gfx.TextureHandle, error) {
	if err := d.alive(); err != nil {
		return 0, err
	}
	if err := desc.Validate(); err != nil {
		return 0, fmt.Errorf("wgpu: create texture: %w", err)
	}
	format, err := supported("texture format", desc.Format, textureFormats)
	if err != nil {
		return 0, fmt.Errorf("wgpu: create texture: %w", err)
	}
	if desc.Format.IsDepth() && desc.Data != nil {
		return 0, fmt.Errorf("wgpu: create texture: %w: depth texture %v cannot be uploaded",
			gfx.ErrUnsupportedTexture, desc.Format)
	}
	dimension, _ := lookup("texture type", desc.Type, textureDimensions)
	viewDim, _ := lookup("texture type", desc.Type, viewDimensions)

	usage := gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst | gputypes.TextureUsageCopySrc
	if desc.RenderTarget {
		usage |= gputypes.TextureUsageRenderAttachment
	}
	w, h, depth := desc.Extent()
	size := hal.Extent3D{
		Width:              uint32(w),     //nolint:gosec // G115: validated positive
		Height:             uint32(h),     //nolint:gosec // G115: validated positive
		DepthOrArrayLayers: uint32(depth), //nolint:gosec // G115: validated positive
	}
	levels := uint32(desc.Levels()) //nolint:gosec // G115: at most 32 levels
	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         desc.Label,
		Size:          size,
		MipLevelCount: levels,
		SampleCount:   1,
		Dimension:     dimension,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return 0, fmt.Errorf("wgpu: create texture: %w: %w", gfx.ErrUnsupportedTexture, err)
	}

	aspect := gputypes.TextureAspectAll
	if desc.Format.IsDepth() {
		aspect = gputypes.TextureAspectDepthOnly
	}
	layers := uint32(1)
	if desc.Type == gfx.TextureCube {
		layers = 6
	}
	view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:           desc.Label,
		Format:          format,
		Dimension:       viewDim,
		Aspect:          aspect,
		MipLevelCount:   levels,
		ArrayLayerCount: layers,
	})
	if err != nil {
		d.device.DestroyTexture(tex)
		return 0, fmt.Errorf("wgpu: create texture view: %w", err)
	}
	t := texture{tex: tex, view: view, format: format, desc: desc}
	t.desc.Data = nil

	if desc.Data != nil {
		bpp := desc.Format.BytesPerPixel()
		err := d.queue.WriteTexture(
			&hal.ImageCopyTexture{Texture: tex, Aspect: gputypes.TextureAspectAll},
			desc.Data,
			&hal.ImageDataLayout{
				BytesPerRow:  uint32(w * bpp), //nolint:gosec // G115: validated positive
				RowsPerImage: uint32(h),       //nolint:gosec // G115: validated positive
			},
			&size)
		if err != nil {
			t.release(d.device)
			return 0, fmt.Errorf("wgpu: create texture: upload: %w", err)
		}
	}

	th, err := d.textures.Insert(t)
	if err != nil {
		t.release(d.device)
		return 0, fmt.Errorf("wgpu: create texture: %w", err)
	}
	d.log.Debug("wgpu: texture created", "handle", th, "type", desc.Type, "format", desc.Format,
		"width", w, "height", h, "depth", depth, "levels", levels)
	return th, nil
}

// DeleteTexture implements gfx.Device. Render passes that attach the
// texture keep their views, which the HAL keeps valid until the pass is
// deleted.
func (d *Device) DeleteTexture(h gfx.TextureHandle) error {
	return remove(d.log, d.textures, h, func(t texture) { t.release(d.device) })
}

// CreateRenderPass implements gfx.Device. Every pass needs at least one
// attachment; the HAL has no default framebuffer. Depth and stencil
// attachments must name the same texture and level when both are set.
func (d *Device) CreateRenderPass(desc gfx.RenderPassDesc) (gfx.RenderPassHandle, error) {
	if err := d.alive(); err != nil {
		return 0, err
	}
	if err := desc.Validate(); err != nil {
		return 0, fmt.Errorf("wgpu: create render pass: %w", err)
	}
	if !desc.HasAttachments() {
		return 0, fmt.Errorf("wgpu: create render pass: %w: %w", gfx.ErrIncompleteRenderPass, gfx.ErrNoAttachments)
	}

	pass := renderPass{label: desc.Label}
	if err := d.buildPass(&pass, &desc); err != nil {
		pass.release(d.device)
		return 0, fmt.Errorf("wgpu: create render pass %q: %w", desc.Label, err)
	}
	h, err := d.passes.Insert(pass)
	if err != nil {
		pass.release(d.device)
		return 0, fmt.Errorf("wgpu: create render pass: %w", err)
	}
	d.log.Debug("wgpu: render pass created", "handle", h, "label", desc.Label,
		"colors", len(pass.colors), "width", pass.width, "height", pass.height)
	return h, nil
}

// attachment resolves one attachment texture and creates a single-level,
// single-layer view of it. All attachments must share one size.
func (d *Device) attachment(p *renderPass, what string, h gfx.TextureHandle, level, layer int) (texture, hal.TextureView, error) {
	tex, err := d.textures.Get(h)
	if err != nil {
		return tex, nil, fmt.Errorf("%w: %s: %w", gfx.ErrIncompleteRenderPass, what, err)
	}
	if tex.desc.Type != gfx.Texture2D && tex.desc.Type != gfx.TextureCube {
		return tex, nil, fmt.Errorf("%w: %s is a %v texture", gfx.ErrIncompleteRenderPass, what, tex.desc.Type)
	}
	if !tex.desc.RenderTarget {
		return tex, nil, fmt.Errorf("%w: %s texture was not created as a render target", gfx.ErrIncompleteRenderPass, what)
	}
	if level >= tex.desc.Levels() {
		return tex, nil, fmt.Errorf("%w: %s level %d of %d", gfx.ErrInvalidDescriptor, what, level, tex.desc.Levels())
	}
	_, _, layers := tex.desc.Extent()
	if layer >= layers {
		return tex, nil, fmt.Errorf("%w: %s layer %d of %d", gfx.ErrInvalidDescriptor, what, layer, layers)
	}
	w, hh, _ := tex.desc.Extent()
	w, hh = max(w>>level, 1), max(hh>>level, 1)
	if p.width == 0 {
		p.width, p.height = w, hh
	} else if w != p.width || hh != p.height {
		return tex, nil, fmt.Errorf("%w: %s is %dx%d, pass is %dx%d", gfx.ErrIncompleteRenderPass, what, w, hh, p.width, p.height)
	}

	view, err := d.device.CreateTextureView(tex.tex, &hal.TextureViewDescriptor{
		Label:           what,
		Format:          tex.format,
		Dimension:       gputypes.TextureViewDimension2D,
		Aspect:          gputypes.TextureAspectAll,
		BaseMipLevel:    uint32(level), //nolint:gosec // G115: validated against the mip count
		MipLevelCount:   1,
		BaseArrayLayer:  uint32(layer), //nolint:gosec // G115: validated against the layer count
		ArrayLayerCount: 1,
	})
	if err != nil {
		return tex, nil, fmt.Errorf("%w: %s view: %w", gfx.ErrIncompleteRenderPass, what, err)
	}
	return tex, view, nil
}

func (d *Device) buildPass(p *renderPass, desc *gfx.RenderPassDesc) error {
	if len(desc.Colors) > d.caps.MaxColorAttachments {
		return fmt.Errorf("%w: %d color attachments, max %d",
			gfx.ErrInvalidDescriptor, len(desc.Colors), d.caps.MaxColorAttachments)
	}
	for i, c := range desc.Colors {
		what := fmt.Sprintf("color attachment %d", i)
		load, err := lookup("load action", c.Load, loadOps)
		if err != nil {
			return err
		}
		tex, view, err := d.attachment(p, what, c.Texture, c.Level, c.Layer)
		if err != nil {
			return err
		}
		p.colors = append(p.colors, colorTarget{
			tex:    tex.tex,
			view:   view,
			format: tex.format,
			level:  c.Level,
			layer:  c.Layer,
			load:   load,
			clear: gputypes.Color{
				R: float64(c.ClearColor[0]),
				G: float64(c.ClearColor[1]),
				B: float64(c.ClearColor[2]),
				A: float64(c.ClearColor[3]),
			},
		})
		if tex.desc.Format.IsDepth() {
			return fmt.Errorf("%w: %s has depth format %v", gfx.ErrIncompleteRenderPass, what, tex.desc.Format)
		}
	}

	if desc.Depth == nil && desc.Stencil == nil {
		return nil
	}
	if desc.Depth != nil && desc.Stencil != nil &&
		(desc.Depth.Texture != desc.Stencil.Texture || desc.Depth.Level != desc.Stencil.Level) {
		return fmt.Errorf("%w: depth and stencil attachments must share one texture", gfx.ErrIncompleteRenderPass)
	}
	what, h, level := "depth attachment", gfx.TextureHandle(0), 0
	if desc.Depth != nil {
		h, level = desc.Depth.Texture, desc.Depth.Level
	} else {
		what, h, level = "stencil attachment", desc.Stencil.Texture, desc.Stencil.Level
	}
	tex, view, err := d.attachment(p, what, h, level, 0)
	if err != nil {
		return err
	}
	p.depth = &depthTarget{
		view:        view,
		format:      tex.format,
		hasStencil:  tex.desc.Format.HasStencil(),
		depthLoad:   gputypes.LoadOpLoad,
		stencilLoad: gputypes.LoadOpLoad,
	}
	if !tex.desc.Format.IsDepth() {
		return fmt.Errorf("%w: %s has format %v", gfx.ErrIncompleteRenderPass, what, tex.desc.Format)
	}
	if desc.Stencil != nil && !tex.desc.Format.HasStencil() {
		return fmt.Errorf("%w: stencil attachment has format %v", gfx.ErrIncompleteRenderPass, tex.desc.Format)
	}
	if desc.Depth != nil && desc.Depth.Load == gfx.LoadActionClear {
		p.depth.depthLoad = gputypes.LoadOpClear
		p.depth.clearDepth = desc.Depth.ClearDepth
	}
	if desc.Stencil != nil && desc.Stencil.Load == gfx.LoadActionClear {
		p.depth.stencilLoad = gputypes.LoadOpClear
		p.depth.clearStencil = uint32(desc.Stencil.ClearStencil)
	}
	return nil
}

// DeleteRenderPass implements gfx.Device.
func (d *Device) DeleteRenderPass(h gfx.RenderPassHandle) error {
	return remove(d.log, d.passes, h, func(p renderPass) { p.release(d.device) })
}
