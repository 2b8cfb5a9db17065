package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/core"

	"github.com/gogpu/sdcs"
)

// Texture errors.
var (
	// ErrTextureReleased is returned when uploading to a released texture.
	ErrTextureReleased = errors.New("gpu: frame texture has been released")

	// ErrTextureSizeMismatch is returned when the surface does not match
	// the texture dimensions.
	ErrTextureSizeMismatch = errors.New("gpu: surface size does not match frame texture")
)

// frameTexture is the GPU-side presentation target for one framebuffer.
// It tracks the logical texture (dimensions, format, memory size) and the
// wgpu handles once texture creation is wired through core.
type frameTexture struct {
	textureID core.TextureID
	viewID    core.TextureViewID

	width     int
	height    int
	format    sdcs.PixelFormat
	sizeBytes uint64

	released bool
}

// wgpuFormat maps a surface pixel format to its wgpu texture format.
func wgpuFormat(f sdcs.PixelFormat) gputypes.TextureFormat {
	if f == sdcs.FormatBGRA8888 {
		return gputypes.TextureFormatBGRA8Unorm
	}
	return gputypes.TextureFormatRGBA8Unorm
}

// newFrameTexture creates the presentation texture for a framebuffer of
// the given size. Dimensions are assumed already validated by
// InitFramebuffer.
//
// Note: this creates a logical texture. The wgpu handles stay zero until
// core exposes CreateTexture; the present path is complete on the CPU
// side either way.
func newFrameTexture(b *GPUBackend, width, height int, format sdcs.PixelFormat) (*frameTexture, error) {
	if b.device.IsZero() {
		return nil, backendErrNoDevice
	}

	t := &frameTexture{
		width:     width,
		height:    height,
		format:    format,
		sizeBytes: uint64(width) * uint64(height) * uint64(format.BytesPerPixel()),
	}

	// TODO: allocate through core once texture creation lands:
	//
	// desc := &gputypes.TextureDescriptor{
	//     Size:   gputypes.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1},
	//     Format: wgpuFormat(format),
	//     Usage:  gputypes.TextureUsageCopyDst | gputypes.TextureUsageTextureBinding,
	// }
	// t.textureID, err = core.CreateTexture(b.device, desc)
	_ = wgpuFormat(format)

	sdcs.Logger().Debug("gpu: frame texture created",
		"width", width, "height", height, "format", format.String(), "bytes", t.sizeBytes)
	return t, nil
}

// backendErrNoDevice is returned when texture creation runs without an
// acquired device.
var backendErrNoDevice = errors.New("gpu: no device acquired")

// upload copies the rendered surface into the frame texture.
//
// Note: the byte transfer lands when wgpu exposes queue WriteTexture;
// until then upload validates and accounts the frame so the present path
// exercises the same state machine.
func (t *frameTexture) upload(s *sdcs.Surface) error {
	if t.released {
		return ErrTextureReleased
	}
	if s.Width() != t.width || s.Height() != t.height {
		return fmt.Errorf("%w: texture %dx%d, surface %dx%d",
			ErrTextureSizeMismatch, t.width, t.height, s.Width(), s.Height())
	}

	// core.QueueWriteTexture(queue, ..., s.Data(), &gputypes.TextureDataLayout{
	//     BytesPerRow:  uint32(s.Stride()),
	//     RowsPerImage: uint32(t.height),
	// }, ...)
	return nil
}

// release frees the texture. Safe to call more than once.
func (t *frameTexture) release() {
	if t.released {
		return
	}
	t.released = true
	t.textureID = core.TextureID{}
	t.viewID = core.TextureViewID{}
	sdcs.Logger().Debug("gpu: frame texture released",
		"width", t.width, "height", t.height)
}
