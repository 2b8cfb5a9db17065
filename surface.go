package sdcs

import (
	"image"
	"image/color"
	"image/png"
	"os"
)

// PixelFormat identifies the channel order of a surface's pixel memory.
// The order is a property of the backend that allocated the surface, not of
// the command stream: the interpreter writes through the surface so the same
// stream produces the same visible result in either layout.
type PixelFormat uint8

const (
	// FormatRGBA8888 stores pixels as R, G, B, A bytes.
	FormatRGBA8888 PixelFormat = iota

	// FormatBGRA8888 stores pixels as B, G, R, A bytes. Common for
	// window-system and scanout surfaces.
	FormatBGRA8888
)

// String returns a human-readable name for the format.
func (f PixelFormat) String() string {
	switch f {
	case FormatRGBA8888:
		return "RGBA8888"
	case FormatBGRA8888:
		return "BGRA8888"
	default:
		return "Unknown"
	}
}

// BytesPerPixel returns the number of bytes per pixel for the format.
func (f PixelFormat) BytesPerPixel() int { return 4 }

// channelIndex returns the byte offset of each channel within a pixel.
func (f PixelFormat) channelIndex() (ri, gi, bi, ai int) {
	if f == FormatBGRA8888 {
		return 2, 1, 0, 3
	}
	return 0, 1, 2, 3
}

// Surface is a mutable rectangular pixel buffer.
//
// A Surface is owned by whichever backend allocated it. It is mutated only
// by the stream interpreter and by backend clear operations. Surfaces are
// not safe for concurrent use.
type Surface struct {
	width  int
	height int
	stride int // bytes per row
	format PixelFormat

	// Additive render offset applied to all draw coordinates.
	offsetX int
	offsetY int

	data []uint8
}

// NewSurface creates a surface with the given dimensions and channel order.
// Dimensions are clamped to be non-negative. The buffer starts zeroed
// (transparent black).
func NewSurface(width, height int, format PixelFormat) *Surface {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	stride := width * format.BytesPerPixel()
	return &Surface{
		width:  width,
		height: height,
		stride: stride,
		format: format,
		data:   make([]uint8, stride*height),
	}
}

// Width returns the width of the surface in pixels.
func (s *Surface) Width() int { return s.width }

// Height returns the height of the surface in pixels.
func (s *Surface) Height() int { return s.height }

// Stride returns the number of bytes per row.
func (s *Surface) Stride() int { return s.stride }

// Format returns the channel order of the surface.
func (s *Surface) Format() PixelFormat { return s.format }

// Data returns the raw pixel data in the surface's channel order.
func (s *Surface) Data() []uint8 { return s.data }

// SetOffset sets the additive render offset applied to draw coordinates.
func (s *Surface) SetOffset(x, y int) {
	s.offsetX = x
	s.offsetY = y
}

// Offset returns the current render offset.
func (s *Surface) Offset() (x, y int) {
	return s.offsetX, s.offsetY
}

// Resize reallocates the surface to the new dimensions.
// Existing content is discarded; the new buffer starts zeroed.
// The render offset is preserved.
func (s *Surface) Resize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	s.width = width
	s.height = height
	s.stride = width * s.format.BytesPerPixel()
	s.data = make([]uint8, s.stride*height)
}

// Clear fills the entire surface with a color, ignoring the render offset.
func (s *Surface) Clear(c RGBA) {
	ri, gi, bi, ai := s.format.channelIndex()
	r, g, b, a := c.R8(), c.G8(), c.B8(), c.A8()
	for i := 0; i < len(s.data); i += 4 {
		s.data[i+ri] = r
		s.data[i+gi] = g
		s.data[i+bi] = b
		s.data[i+ai] = a
	}
}

// SetPixel writes one pixel in canonical R, G, B, A order, translating to
// the surface's channel order. Out-of-bounds coordinates are ignored.
func (s *Surface) SetPixel(x, y int, r, g, b, a uint8) {
	if x < 0 || x >= s.width || y < 0 || y >= s.height {
		return
	}
	ri, gi, bi, ai := s.format.channelIndex()
	i := y*s.stride + x*4
	s.data[i+ri] = r
	s.data[i+gi] = g
	s.data[i+bi] = b
	s.data[i+ai] = a
}

// PixelAt reads one pixel in canonical R, G, B, A order.
// Out-of-bounds coordinates return transparent black.
func (s *Surface) PixelAt(x, y int) (r, g, b, a uint8) {
	if x < 0 || x >= s.width || y < 0 || y >= s.height {
		return 0, 0, 0, 0
	}
	ri, gi, bi, ai := s.format.channelIndex()
	i := y*s.stride + x*4
	return s.data[i+ri], s.data[i+gi], s.data[i+bi], s.data[i+ai]
}

// Snapshot returns a copy of the surface contents as an NRGBA image,
// normalizing the channel order. Modifying the returned image does not
// affect the surface.
func (s *Surface) Snapshot() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, s.width, s.height))
	if s.format == FormatRGBA8888 && s.stride == img.Stride {
		copy(img.Pix, s.data)
		return img
	}
	ri, gi, bi, ai := s.format.channelIndex()
	for y := 0; y < s.height; y++ {
		src := y * s.stride
		dst := y * img.Stride
		for x := 0; x < s.width; x++ {
			img.Pix[dst+0] = s.data[src+ri]
			img.Pix[dst+1] = s.data[src+gi]
			img.Pix[dst+2] = s.data[src+bi]
			img.Pix[dst+3] = s.data[src+ai]
			src += 4
			dst += 4
		}
	}
	return img
}

// SavePNG saves the surface contents to a PNG file.
func (s *Surface) SavePNG(path string) error {
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	return png.Encode(f, s.Snapshot())
}

// At implements the image.Image interface.
func (s *Surface) At(x, y int) color.Color {
	r, g, b, a := s.PixelAt(x, y)
	return color.NRGBA{R: r, G: g, B: b, A: a}
}

// Bounds implements the image.Image interface.
func (s *Surface) Bounds() image.Rectangle {
	return image.Rect(0, 0, s.width, s.height)
}

// ColorModel implements the image.Image interface.
func (s *Surface) ColorModel() color.Model {
	return color.NRGBAModel
}
