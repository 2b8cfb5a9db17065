package sdcs

import (
	"image/color"
	"math"
)

// RGBA represents a color with red, green, blue, and alpha components.
// Each component is in the range [0, 1].
type RGBA struct {
	R, G, B, A float64
}

// Common colors.
var (
	Transparent = RGBA{0, 0, 0, 0}
	Black       = RGBA{0, 0, 0, 1}
	White       = RGBA{1, 1, 1, 1}
	Red         = RGBA{1, 0, 0, 1}
	Green       = RGBA{0, 1, 0, 1}
	Blue        = RGBA{0, 0, 1, 1}
)

// RGB creates an opaque color from RGB components.
func RGB(r, g, b float64) RGBA {
	return RGBA{R: r, G: g, B: b, A: 1.0}
}

// Color converts RGBA to the standard color.Color interface.
func (c RGBA) Color() color.Color {
	return color.NRGBA{
		R: c.R8(),
		G: c.G8(),
		B: c.B8(),
		A: c.A8(),
	}
}

// FromColor converts a standard color.Color to RGBA.
func FromColor(c color.Color) RGBA {
	r, g, b, a := c.RGBA()
	return RGBA{
		R: float64(r) / 65535,
		G: float64(g) / 65535,
		B: float64(b) / 65535,
		A: float64(a) / 65535,
	}
}

// R8 returns the red component quantized to [0, 255].
func (c RGBA) R8() uint8 { return Quantize(c.R) }

// G8 returns the green component quantized to [0, 255].
func (c RGBA) G8() uint8 { return Quantize(c.G) }

// B8 returns the blue component quantized to [0, 255].
func (c RGBA) B8() uint8 { return Quantize(c.B) }

// A8 returns the alpha component quantized to [0, 255].
func (c RGBA) A8() uint8 { return Quantize(c.A) }

// Lerp performs linear interpolation between two colors.
func (c RGBA) Lerp(other RGBA, t float64) RGBA {
	return RGBA{
		R: c.R + (other.R-c.R)*t,
		G: c.G + (other.G-c.G)*t,
		B: c.B + (other.B-c.B)*t,
		A: c.A + (other.A-c.A)*t,
	}
}

// Quantize maps a [0, 1] float component to a byte.
// Out-of-range inputs (including NaN) clamp to the valid range first, so a
// hostile stream can never produce an out-of-range channel value.
func Quantize(x float64) uint8 {
	return uint8(math.Round(Clamp01(x) * 255))
}

// Clamp01 restricts a value to the [0, 1] range. NaN clamps to 0.
func Clamp01(x float64) float64 {
	if x > 1 {
		return 1
	}
	if x >= 0 {
		return x
	}
	return 0
}
