package stream

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Atlas errors.
var (
	// ErrEmptyAtlas is returned when an atlas has no cells.
	ErrEmptyAtlas = errors.New("stream: atlas has no cells")
)

// Atlas is an alpha-only glyph atlas: a grid of fixed-size cells in a
// single-channel coverage bitmap. Each byte is a coverage value in
// [0, 255]; there is no color information, the run color supplies it.
type Atlas struct {
	// CellWidth and CellHeight are the dimensions of one glyph cell.
	CellWidth  int
	CellHeight int

	// Cols is the number of cells per atlas row.
	Cols int

	// Width and Height are the full atlas dimensions in texels.
	Width  int
	Height int

	// Alpha holds Width*Height coverage bytes, row major.
	Alpha []uint8
}

// NewAtlas creates a zeroed atlas with the given cell grid.
func NewAtlas(cellWidth, cellHeight, cols, rows int) (*Atlas, error) {
	if cellWidth <= 0 || cellHeight <= 0 || cols <= 0 || rows <= 0 {
		return nil, ErrEmptyAtlas
	}
	w := cellWidth * cols
	h := cellHeight * rows
	return &Atlas{
		CellWidth:  cellWidth,
		CellHeight: cellHeight,
		Cols:       cols,
		Width:      w,
		Height:     h,
		Alpha:      make([]uint8, w*h),
	}, nil
}

// SetCell copies a coverage bitmap into cell index. The source is clipped
// to the cell; indexes outside the atlas return an error.
func (a *Atlas) SetCell(index int, src *image.Alpha) error {
	rows := a.Height / a.CellHeight
	if index < 0 || index >= a.Cols*rows {
		return fmt.Errorf("stream: atlas cell %d out of range", index)
	}
	if src == nil {
		return nil
	}
	cellX := (index % a.Cols) * a.CellWidth
	cellY := (index / a.Cols) * a.CellHeight
	b := src.Bounds()
	for y := 0; y < min(b.Dy(), a.CellHeight); y++ {
		for x := 0; x < min(b.Dx(), a.CellWidth); x++ {
			a.Alpha[(cellY+y)*a.Width+cellX+x] = src.AlphaAt(b.Min.X+x, b.Min.Y+y).A
		}
	}
	return nil
}

// AtlasFromFace rasterizes runes from a fixed-metrics font face into a new
// atlas, one rune per cell in order, and returns the atlas together with
// the rune-to-cell-index mapping.
//
// This is a convenience for demos and tests; it performs no shaping. Glyph
// placement within a run remains the caller's responsibility.
func AtlasFromFace(face font.Face, runes []rune, cols int) (*Atlas, map[rune]uint32, error) {
	if face == nil || len(runes) == 0 || cols <= 0 {
		return nil, nil, ErrEmptyAtlas
	}

	m := face.Metrics()
	cellH := (m.Ascent + m.Descent).Ceil()
	cellW := 0
	for _, r := range runes {
		if adv, ok := face.GlyphAdvance(r); ok && adv.Ceil() > cellW {
			cellW = adv.Ceil()
		}
	}
	if cellW == 0 || cellH == 0 {
		return nil, nil, ErrEmptyAtlas
	}

	rows := (len(runes) + cols - 1) / cols
	atlas, err := NewAtlas(cellW, cellH, cols, rows)
	if err != nil {
		return nil, nil, err
	}

	index := make(map[rune]uint32, len(runes))
	for i, r := range runes {
		cell := image.NewAlpha(image.Rect(0, 0, cellW, cellH))
		dot := fixed.Point26_6{X: 0, Y: m.Ascent}
		dr, mask, maskp, _, ok := face.Glyph(dot, r)
		if !ok {
			continue
		}
		// Copy the glyph coverage into the cell, clipping to the cell box.
		for y := dr.Min.Y; y < dr.Max.Y; y++ {
			if y < 0 || y >= cellH {
				continue
			}
			for x := dr.Min.X; x < dr.Max.X; x++ {
				if x < 0 || x >= cellW {
					continue
				}
				_, _, _, ma := mask.At(maskp.X+x-dr.Min.X, maskp.Y+y-dr.Min.Y).RGBA()
				cell.SetAlpha(x, y, color.Alpha{A: uint8(ma >> 8)})
			}
		}
		if err := atlas.SetCell(i, cell); err != nil {
			return nil, nil, err
		}
		index[r] = uint32(i)
	}
	return atlas, index, nil
}
