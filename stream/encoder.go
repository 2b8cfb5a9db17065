package stream

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/sdcs"
)

// Glyph positions one atlas cell within a glyph run.
// Offsets are relative to the run's base point.
type Glyph struct {
	// Index selects the atlas cell: column Index % atlasCols,
	// row Index / atlasCols.
	Index uint32

	// XOffset and YOffset translate the cell's destination origin.
	XOffset float32
	YOffset float32
}

// Encoder builds a valid SDCS stream command by command.
//
// Commands are appended to the current chunk; NextChunk closes it and
// starts another. Bytes assembles the final stream with correct headers,
// lengths, and padding. The zero value is ready to use.
//
// Example:
//
//	var enc stream.Encoder
//	enc.FillRect(10, 10, 100, 50, sdcs.Red)
//	enc.End()
//	err := stream.Execute(surface, enc.Bytes())
type Encoder struct {
	chunks [][]byte
	cur    []byte
}

// NewEncoder creates an empty encoder.
func NewEncoder() *Encoder { return &Encoder{} }

// Reset discards all encoded commands and chunks.
func (e *Encoder) Reset() {
	e.chunks = nil
	e.cur = nil
}

// FillRect appends an OpFillRect command filling the rectangle at (x, y)
// with the given size and color.
func (e *Encoder) FillRect(x, y, w, h float32, c sdcs.RGBA) {
	var p [fillRectPayloadSize]byte
	putF32(p[0:], x)
	putF32(p[4:], y)
	putF32(p[8:], w)
	putF32(p[12:], h)
	putF32(p[16:], float32(c.R))
	putF32(p[20:], float32(c.G))
	putF32(p[24:], float32(c.B))
	putF32(p[28:], float32(c.A))
	e.appendCommand(OpFillRect, p[:])
}

// GlyphRun appends an OpDrawGlyphRun command drawing glyphs from atlas at
// base point (baseX, baseY) with the given run color. The atlas coverage
// bytes are embedded in the command payload.
func (e *Encoder) GlyphRun(baseX, baseY float32, c sdcs.RGBA, atlas *Atlas, glyphs []Glyph) {
	if atlas == nil {
		return
	}
	p := make([]byte, glyphRunHeaderSize+len(glyphs)*glyphRecordSize+len(atlas.Alpha))
	putF32(p[0:], baseX)
	putF32(p[4:], baseY)
	putF32(p[8:], float32(c.R))
	putF32(p[12:], float32(c.G))
	putF32(p[16:], float32(c.B))
	putF32(p[20:], float32(c.A))
	binary.LittleEndian.PutUint32(p[24:], uint32(atlas.CellWidth))
	binary.LittleEndian.PutUint32(p[28:], uint32(atlas.CellHeight))
	binary.LittleEndian.PutUint32(p[32:], uint32(atlas.Cols))
	binary.LittleEndian.PutUint32(p[36:], uint32(atlas.Width))
	binary.LittleEndian.PutUint32(p[40:], uint32(atlas.Height))
	binary.LittleEndian.PutUint32(p[44:], uint32(len(glyphs)))
	for i, g := range glyphs {
		rec := p[glyphRunHeaderSize+i*glyphRecordSize:]
		binary.LittleEndian.PutUint32(rec, g.Index)
		putF32(rec[4:], g.XOffset)
		putF32(rec[8:], g.YOffset)
	}
	copy(p[glyphRunHeaderSize+len(glyphs)*glyphRecordSize:], atlas.Alpha)
	e.appendCommand(OpDrawGlyphRun, p)
}

// ResetState appends an OpReset command.
func (e *Encoder) ResetState() {
	e.appendCommand(OpReset, nil)
}

// SetBlend appends an OpSetBlend command.
func (e *Encoder) SetBlend() {
	e.appendCommand(OpSetBlend, nil)
}

// End appends an OpEnd command, terminating the current chunk for readers.
func (e *Encoder) End() {
	e.appendCommand(OpEnd, nil)
}

// NextChunk closes the current chunk and starts a new one.
// An empty current chunk is preserved as an empty chunk in the stream.
func (e *Encoder) NextChunk() {
	e.chunks = append(e.chunks, e.cur)
	e.cur = nil
}

// Bytes assembles the encoded stream: the reserved stream header followed
// by one length-framed chunk per chunk of commands. The encoder remains
// usable; later commands extend the current chunk.
func (e *Encoder) Bytes() []byte {
	out := make([]byte, StreamHeaderSize)

	chunks := e.chunks
	if len(e.cur) > 0 || len(chunks) == 0 {
		chunks = append(append([][]byte(nil), chunks...), e.cur)
	}
	for _, chunk := range chunks {
		var hdr [ChunkHeaderSize]byte
		binary.LittleEndian.PutUint64(hdr[ChunkHeaderSize-8:], uint64(len(chunk)))
		out = append(out, hdr[:]...)
		out = append(out, chunk...)
		out = append(out, pad(len(chunk))...)
	}
	return out
}

// appendCommand writes one 8-byte-aligned command record to the current chunk.
func (e *Encoder) appendCommand(op Opcode, payload []byte) {
	var hdr [CommandHeaderSize]byte
	binary.LittleEndian.PutUint16(hdr[0:], uint16(op))
	binary.LittleEndian.PutUint32(hdr[4:], uint32(len(payload)))
	e.cur = append(e.cur, hdr[:]...)
	e.cur = append(e.cur, payload...)
	e.cur = append(e.cur, pad(len(payload))...)
}

// pad returns the zero bytes needed to align n up to the record boundary.
func pad(n int) []byte {
	r := int(alignUp(uint64(n))) - n
	return make([]byte, r)
}

// putF32 writes a little-endian float32.
func putF32(b []byte, v float32) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(v))
}
