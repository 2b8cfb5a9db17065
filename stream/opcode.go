// Package stream implements the SDCS binary draw-command-stream format:
// the opcode set, a bounds-checked interpreter that executes a stream
// against an sdcs.Surface, an encoder for producing valid streams, and a
// compressed file container for storing them.
//
// The format is length-framed at two levels:
//   - A stream is a 64-byte reserved header followed by chunks.
//   - A chunk is a 32-byte header (whose final 8 bytes give the payload
//     length) followed by 8-byte-aligned command records.
//
// Exactly one interpreter exists; every backend renders by calling
// Execute against its own surface. The interpreter never panics on
// malformed input: truncated or inconsistent data stops processing early
// and whatever was already drawn is retained.
package stream

import "fmt"

// Opcode identifies one command within a chunk.
//
// Unknown opcodes are skipped by the interpreter, so new commands can be
// added without breaking old renderers.
type Opcode uint16

// Opcode constants define all stream commands.
// Each opcode has a fixed payload layout documented in its comment.
const (
	// OpReset resets interpreter state.
	// Payload: none. Currently a parsed no-op: the interpreter carries no
	// resettable state beyond the surface itself.
	OpReset Opcode = 0x0001

	// OpSetBlend selects the blend mode for subsequent draws.
	// Payload: implementation-reserved. Currently a parsed no-op: only
	// source-over compositing exists.
	OpSetBlend Opcode = 0x0004

	// OpFillRect fills an axis-aligned rectangle.
	// Payload: 8 float32 values [x, y, w, h, r, g, b, a].
	OpFillRect Opcode = 0x0010

	// OpDrawGlyphRun draws a run of glyphs from an alpha-only atlas.
	// Payload: 6 float32 [baseX, baseY, r, g, b, a], then 6 uint32
	// [cellWidth, cellHeight, atlasCols, atlasWidth, atlasHeight,
	// glyphCount], then glyphCount 12-byte records [index:u32,
	// xOffset:f32, yOffset:f32], then atlasWidth*atlasHeight coverage
	// bytes.
	OpDrawGlyphRun Opcode = 0x0030

	// OpEnd terminates the current chunk immediately, regardless of how
	// many declared payload bytes remain.
	// Payload: none.
	OpEnd Opcode = 0x00F0
)

// String returns a human-readable name for the opcode.
func (op Opcode) String() string {
	switch op {
	case OpReset:
		return "Reset"
	case OpSetBlend:
		return "SetBlend"
	case OpFillRect:
		return "FillRect"
	case OpDrawGlyphRun:
		return "DrawGlyphRun"
	case OpEnd:
		return "End"
	default:
		return fmt.Sprintf("Unknown(0x%04X)", uint16(op))
	}
}

// Framing constants. All sizes are in bytes.
const (
	// StreamHeaderSize is the reserved header at the start of every
	// stream. Its contents are skipped by the interpreter.
	StreamHeaderSize = 64

	// ChunkHeaderSize is the fixed chunk header. The final 8 bytes hold
	// the little-endian payload length; the rest is reserved.
	ChunkHeaderSize = 32

	// CommandHeaderSize is the fixed per-command header:
	// opcode:u16, reserved:u16, payloadLen:u32.
	CommandHeaderSize = 8

	// recordAlign is the alignment boundary both command records and
	// chunk payloads are padded to.
	recordAlign = 8
)

// alignUp rounds n up to the next multiple of recordAlign.
func alignUp(n uint64) uint64 {
	return (n + recordAlign - 1) &^ (recordAlign - 1)
}

// Payload layout sizes for the fixed-header opcodes.
const (
	fillRectPayloadSize = 32 // 8 x float32
	glyphRunHeaderSize  = 48 // 6 x float32 + 6 x uint32
	glyphRecordSize     = 12 // index:u32, xOffset:f32, yOffset:f32
)
