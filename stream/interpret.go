package stream

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/sdcs"
)

// ErrNilSurface is returned when Execute is called without a surface.
var ErrNilSurface = errors.New("stream: nil surface")

// DecodeError describes malformed SDCS bytes. It is non-fatal: Execute
// returns early and the surface retains whatever was drawn before the
// malformed data was reached.
type DecodeError struct {
	// Offset is the byte offset into the stream where decoding stopped.
	Offset int

	// Op is the command being decoded, or zero for framing errors.
	Op Opcode

	// Reason describes what was wrong.
	Reason string
}

func (e *DecodeError) Error() string {
	if e.Op != 0 {
		return fmt.Sprintf("stream: %s at offset %d: %s", e.Op, e.Offset, e.Reason)
	}
	return fmt.Sprintf("stream: offset %d: %s", e.Offset, e.Reason)
}

// Execute decodes an SDCS stream and applies its drawing commands to dst.
//
// Execute never panics on malformed input. The stream may originate from an
// untrusted or buggy client, so every offset advance is bounds-checked
// before use. A truncated or inconsistent payload returns a *DecodeError;
// drawing performed up to that point is retained. The two framing stops the
// format defines (a chunk whose declared length exceeds the remaining
// buffer, and a record whose length exceeds the remaining chunk) terminate
// processing cleanly without an error.
//
// Execute is safe to call from any single goroutine, but never concurrently
// against the same surface.
func Execute(dst *sdcs.Surface, data []byte) error {
	if dst == nil {
		return ErrNilSurface
	}
	if len(data) < StreamHeaderSize {
		return &DecodeError{Offset: len(data), Reason: "truncated stream header"}
	}

	n := uint64(len(data))
	off := uint64(StreamHeaderSize)
	for off < n {
		if n-off < ChunkHeaderSize {
			return &DecodeError{Offset: int(off), Reason: "truncated chunk header"}
		}
		payload := binary.LittleEndian.Uint64(data[off+ChunkHeaderSize-8 : off+ChunkHeaderSize])
		body := off + ChunkHeaderSize
		if payload > n-body {
			// Declared length exceeds the remaining buffer: stop stream
			// processing, keeping everything drawn so far.
			sdcs.Logger().Debug("stream: chunk exceeds buffer, stopping",
				"offset", off, "declared", payload, "remaining", n-body)
			return nil
		}
		if err := executeChunk(dst, data, body, payload); err != nil {
			return err
		}
		off = body + alignUp(payload)
	}
	return nil
}

// executeChunk walks the command records of one chunk.
// start and payload delimit the chunk body within data.
func executeChunk(dst *sdcs.Surface, data []byte, start, payload uint64) error {
	end := start + payload
	off := start
	for off < end {
		if end-off < CommandHeaderSize {
			// Record would exceed the remaining chunk: stop chunk processing.
			sdcs.Logger().Debug("stream: truncated command header, ending chunk", "offset", off)
			return nil
		}
		op := Opcode(binary.LittleEndian.Uint16(data[off:]))
		plen := uint64(binary.LittleEndian.Uint32(data[off+4:]))
		body := off + CommandHeaderSize
		if plen > end-body {
			sdcs.Logger().Debug("stream: command exceeds chunk, ending chunk",
				"opcode", op.String(), "offset", off, "declared", plen, "remaining", end-body)
			return nil
		}
		pay := data[body : body+plen]

		switch op {
		case OpEnd:
			return nil
		case OpReset:
			// Parsed no-op: no interpreter state exists to reset.
			sdcs.Logger().Debug("stream: reset", "offset", off)
		case OpSetBlend:
			// Parsed no-op: only source-over compositing exists.
			sdcs.Logger().Debug("stream: set blend ignored", "offset", off)
		case OpFillRect:
			if err := fillRect(dst, pay, int(off)); err != nil {
				return err
			}
		case OpDrawGlyphRun:
			if err := drawGlyphRun(dst, pay, int(off)); err != nil {
				return err
			}
		default:
			sdcs.Logger().Debug("stream: skipping unknown opcode",
				"opcode", uint16(op), "offset", off)
		}
		off = body + alignUp(plen)
	}
	return nil
}

// fillRect executes an OpFillRect payload: [x, y, w, h, r, g, b, a] float32.
func fillRect(dst *sdcs.Surface, payload []byte, at int) error {
	if len(payload) < fillRectPayloadSize {
		return &DecodeError{Offset: at, Op: OpFillRect, Reason: "payload too short"}
	}
	x := f32(payload, 0)
	y := f32(payload, 4)
	w := f32(payload, 8)
	h := f32(payload, 12)
	sr := sdcs.Clamp01(float64(f32(payload, 16)))
	sg := sdcs.Clamp01(float64(f32(payload, 20)))
	sb := sdcs.Clamp01(float64(f32(payload, 24)))
	sa := sdcs.Clamp01(float64(f32(payload, 28)))

	ox, oy := dst.Offset()
	x0 := floorInt(x) + ox
	y0 := floorInt(y) + oy
	x1 := floorInt(x+w) + ox
	y1 := floorInt(y+h) + oy

	x0 = max(x0, 0)
	y0 = max(y0, 0)
	x1 = min(x1, dst.Width())
	y1 = min(y1, dst.Height())
	if x1 <= x0 || y1 <= y0 {
		return nil
	}

	if sdcs.Quantize(sa) == 255 {
		// Fully opaque: overwrite directly, skipping the blend division.
		r8, g8, b8 := sdcs.Quantize(sr), sdcs.Quantize(sg), sdcs.Quantize(sb)
		for py := y0; py < y1; py++ {
			for px := x0; px < x1; px++ {
				dst.SetPixel(px, py, r8, g8, b8, 255)
			}
		}
		return nil
	}

	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			compositePixel(dst, px, py, sr, sg, sb, sa)
		}
	}
	return nil
}

// drawGlyphRun executes an OpDrawGlyphRun payload. Texel reads are
// bounds-checked against the atlas extent and pixel writes against the
// surface extent, independently.
func drawGlyphRun(dst *sdcs.Surface, payload []byte, at int) error {
	if len(payload) < glyphRunHeaderSize {
		return &DecodeError{Offset: at, Op: OpDrawGlyphRun, Reason: "header too short"}
	}
	baseX := f32(payload, 0)
	baseY := f32(payload, 4)
	sr := sdcs.Clamp01(float64(f32(payload, 8)))
	sg := sdcs.Clamp01(float64(f32(payload, 12)))
	sb := sdcs.Clamp01(float64(f32(payload, 16)))
	runA := sdcs.Clamp01(float64(f32(payload, 20)))

	cellW := binary.LittleEndian.Uint32(payload[24:])
	cellH := binary.LittleEndian.Uint32(payload[28:])
	cols := binary.LittleEndian.Uint32(payload[32:])
	atlasW := binary.LittleEndian.Uint32(payload[36:])
	atlasH := binary.LittleEndian.Uint32(payload[40:])
	count := binary.LittleEndian.Uint32(payload[44:])

	need := uint64(glyphRunHeaderSize) + uint64(count)*glyphRecordSize + uint64(atlasW)*uint64(atlasH)
	if uint64(len(payload)) < need {
		return &DecodeError{Offset: at, Op: OpDrawGlyphRun, Reason: "glyph records or atlas truncated"}
	}
	if count > 0 && cols == 0 {
		return &DecodeError{Offset: at, Op: OpDrawGlyphRun, Reason: "atlas declares zero columns"}
	}

	atlasOff := uint64(glyphRunHeaderSize) + uint64(count)*glyphRecordSize
	atlas := payload[atlasOff : atlasOff+uint64(atlasW)*uint64(atlasH)]

	aw := int(atlasW)
	ah := int(atlasH)
	ox, oy := dst.Offset()

	for i := uint32(0); i < count; i++ {
		rec := payload[glyphRunHeaderSize+int(i)*glyphRecordSize:]
		idx := binary.LittleEndian.Uint32(rec)
		xOff := f32(rec, 4)
		yOff := f32(rec, 8)

		cellX := int(idx%cols) * int(cellW)
		cellY := int(idx/cols) * int(cellH)
		dx0 := floorInt(baseX+xOff) + ox
		dy0 := floorInt(baseY+yOff) + oy

		// Clip the cell to the atlas so a hostile cell size cannot turn
		// into an unbounded texel loop.
		tw := min(int(cellW), aw-cellX)
		th := min(int(cellH), ah-cellY)

		for ty := 0; ty < th; ty++ {
			ay := cellY + ty
			py := dy0 + ty
			if py < 0 || py >= dst.Height() {
				continue
			}
			row := ay * aw
			for tx := 0; tx < tw; tx++ {
				cov := atlas[row+cellX+tx]
				if cov == 0 {
					continue
				}
				px := dx0 + tx
				if px < 0 || px >= dst.Width() {
					continue
				}
				sa := float64(cov) / 255 * runA
				if sdcs.Quantize(sa) == 255 {
					dst.SetPixel(px, py, sdcs.Quantize(sr), sdcs.Quantize(sg), sdcs.Quantize(sb), 255)
					continue
				}
				compositePixel(dst, px, py, sr, sg, sb, sa)
			}
		}
	}
	return nil
}

// compositePixel applies source-over compositing to a single pixel.
// Components are straight (non-premultiplied) alpha in [0, 1]:
//
//	outA = sa + da*(1-sa)
//	outC = (srcC*sa + dstC*da*(1-sa)) / outA
//
// When outA is zero the destination is left unchanged.
func compositePixel(dst *sdcs.Surface, x, y int, sr, sg, sb, sa float64) {
	dr8, dg8, db8, da8 := dst.PixelAt(x, y)
	da := float64(da8) / 255
	outA := sa + da*(1-sa)
	if outA <= 0 {
		return
	}
	dw := da * (1 - sa)
	outR := (sr*sa + float64(dr8)/255*dw) / outA
	outG := (sg*sa + float64(dg8)/255*dw) / outA
	outB := (sb*sa + float64(db8)/255*dw) / outA
	dst.SetPixel(x, y,
		sdcs.Quantize(outR), sdcs.Quantize(outG), sdcs.Quantize(outB), sdcs.Quantize(outA))
}

// f32 reads a little-endian float32 at offset i.
func f32(b []byte, i int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[i:]))
}

// floorInt converts a float coordinate to the pixel grid, truncating
// toward negative infinity so negative coordinates clip correctly.
func floorInt(v float32) int {
	return int(math.Floor(float64(v)))
}
