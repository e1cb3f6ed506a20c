package wgpu

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"golang.org/x/image/draw"

	"github.com/gogpu/gfx"
)

// copyPitchAlignment is the row alignment of texture-to-buffer copies.
const copyPitchAlignment = 256

// ReadPixels implements gfx.Device. The attachment is copied into a
// staging buffer with rows padded to 256 bytes, then unpadded on the CPU.
// Only 8-bit RGBA and BGRA attachments can be read.
func (d *Device) ReadPixels(rp gfx.RenderPassHandle, attachment int) (*image.RGBA, error) {
	if err := d.alive(); err != nil {
		return nil, err
	}
	pass, err := d.passes.Get(rp)
	if err != nil {
		return nil, fmt.Errorf("wgpu: read pixels: %w", err)
	}
	if attachment < 0 || attachment >= len(pass.colors) {
		return nil, fmt.Errorf("wgpu: read pixels %v: %w: color attachment %d of %d",
			rp, gfx.ErrInvalidDescriptor, attachment, len(pass.colors))
	}
	c := pass.colors[attachment]
	bgra := false
	switch c.format {
	case gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatRGBA8UnormSrgb:
	case gputypes.TextureFormatBGRA8Unorm:
		bgra = true
	default:
		return nil, fmt.Errorf("wgpu: read pixels %v: %w: format %v", rp, gfx.ErrUnsupportedTexture, c.format)
	}

	w, h := pass.width, pass.height
	rowBytes := w * 4
	pitch := (rowBytes + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	size := uint64(pitch * h) //nolint:gosec // G115: positive

	staging, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "gfx readback",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: read pixels: create staging buffer: %w", err)
	}
	defer d.device.DestroyBuffer(staging)

	if err := d.copyToBuffer(&c, staging, w, h, pitch); err != nil {
		return nil, fmt.Errorf("wgpu: read pixels %v: %w", rp, err)
	}

	mapping, err := d.device.MapBuffer(staging, 0, size)
	if err != nil {
		return nil, fmt.Errorf("wgpu: read pixels: map staging buffer: %w", err)
	}
	src := unsafe.Slice((*byte)(mapping.Ptr), size)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		copy(img.Pix[y*img.Stride:y*img.Stride+rowBytes], src[y*pitch:y*pitch+rowBytes])
	}
	if err := d.device.UnmapBuffer(staging); err != nil {
		return nil, fmt.Errorf("wgpu: read pixels: unmap staging buffer: %w", err)
	}
	if bgra {
		convertBGRAToRGBA(img.Pix)
	}
	return img, nil
}

// copyToBuffer encodes and submits a copy of one attachment level and
// layer into dst.
func (d *Device) copyToBuffer(c *colorTarget, dst hal.Buffer, w, h, pitch int) error {
	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "gfx readback"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	defer encoder.Destroy()
	if err := encoder.BeginEncoding("gfx readback"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	//nolint:gosec // G115: levels, layers and sizes are validated at pass creation
	texRange := hal.TextureRange{
		Aspect:          gputypes.TextureAspectAll,
		BaseMipLevel:    uint32(c.level),
		MipLevelCount:   1,
		BaseArrayLayer:  uint32(c.layer),
		ArrayLayerCount: 1,
	}
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: c.tex,
		Range:   texRange,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	//nolint:gosec // G115: validated at pass creation
	encoder.CopyTextureToBuffer(c.tex, dst, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{
			BytesPerRow:  uint32(pitch),
			RowsPerImage: uint32(h),
		},
		TextureBase: hal.ImageCopyTexture{
			Texture:  c.tex,
			MipLevel: uint32(c.level),
			Origin:   hal.Origin3D{Z: uint32(c.layer)},
			Aspect:   gputypes.TextureAspectAll,
		},
		Size: hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: c.tex,
		Range:   texRange,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)
	return d.submit(cmdBuf)
}

func convertBGRAToRGBA(pix []byte) {
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i], pix[i+2] = pix[i+2], pix[i]
	}
}

// Present implements gfx.Device. Color attachment 0 is read back, scaled
// bilinearly when the sizes differ, and handed to the provider's
// gpucontext.TextureDrawer at the top-left corner.
func (d *Device) Present(rp gfx.RenderPassHandle, width, height int) error {
	if err := d.alive(); err != nil {
		return err
	}
	if d.drawer == nil {
		return fmt.Errorf("wgpu: present: %w: provider cannot draw textures", gfx.ErrNoDevice)
	}
	pass, err := d.passes.Get(rp)
	if err != nil {
		return fmt.Errorf("wgpu: present: %w", err)
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("wgpu: present %v: %w: size %dx%d", rp, gfx.ErrInvalidDescriptor, width, height)
	}
	if len(pass.colors) == 0 {
		// Passes always have an attachment here; depth alone cannot be drawn.
		return fmt.Errorf("wgpu: present %v: %w: depth-only pass", rp, gfx.ErrUnsupportedTexture)
	}

	img, err := d.ReadPixels(rp, 0)
	if err != nil {
		return err
	}
	if width != pass.width || height != pass.height {
		scaled := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.BiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Src, nil)
		img = scaled
	}

	tex, err := d.presentTexture(img)
	if err != nil {
		return fmt.Errorf("wgpu: present %v: %w", rp, err)
	}
	if err := d.drawer.DrawTexture(tex, 0, 0); err != nil {
		return fmt.Errorf("wgpu: present %v: draw: %w", rp, err)
	}
	return nil
}

// presentTexture uploads img into the cached presentation texture, or a
// new one when the size changed or the texture cannot be updated.
func (d *Device) presentTexture(img *image.RGBA) (gpucontext.Texture, error) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if t := d.presentTex; t != nil && t.Width() == w && t.Height() == h {
		if u, ok := t.(gpucontext.TextureUpdater); ok {
			if err := u.UpdateData(img.Pix); err != nil {
				return nil, fmt.Errorf("update texture: %w", err)
			}
			return t, nil
		}
	}
	t, err := d.drawer.TextureCreator().NewTextureFromRGBA(w, h, img.Pix)
	if err != nil {
		return nil, fmt.Errorf("create texture: %w", err)
	}
	d.presentTex = t
	d.log.Debug("wgpu: present texture created", "width", w, "height", h)
	return t, nil
}
