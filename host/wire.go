package host

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gogpu/sdcs"
)

// Command tags, sent as a 4-byte little-endian word on the command pipe.
const (
	cmdShutdown uint32 = 0
	cmdRender   uint32 = 1
)

// Wire record sizes.
const (
	tagSize          = 4
	renderHeaderSize = 17 // surface_id:u32 width:u32 height:u32 format:u8 sdcs_len:u32
	resultSize       = 21 // surface_id:u32 frame_number:u64 render_time_ns:u64 success:u8
)

// maxStreamSize bounds a declared SDCS payload length so a corrupt or
// hostile header cannot force an absurd allocation.
const maxStreamSize = 64 << 20

// Wire errors.
var (
	// ErrStreamTooLarge is returned when a render header declares a
	// payload above maxStreamSize.
	ErrStreamTooLarge = errors.New("host: declared SDCS payload exceeds maximum size")

	// ErrUnknownCommand is returned by the child loop on an
	// unrecognized command tag.
	ErrUnknownCommand = errors.New("host: unknown command tag")
)

// IpcError wraps a pipe-level failure: short transfer, broken pipe, or
// unexpected EOF mid-record.
type IpcError struct {
	Op  string // "read tag", "write render header", ...
	Err error
}

func (e *IpcError) Error() string {
	return fmt.Sprintf("host: ipc %s: %v", e.Op, e.Err)
}

func (e *IpcError) Unwrap() error { return e.Err }

// renderHeader is the fixed-size header following a cmdRender tag. The
// SDCS payload of StreamLen bytes follows immediately.
type renderHeader struct {
	SurfaceID uint32
	Width     uint32
	Height    uint32
	Format    sdcs.PixelFormat
	StreamLen uint32
}

func (h *renderHeader) encode(buf *[renderHeaderSize]byte) {
	binary.LittleEndian.PutUint32(buf[0:4], h.SurfaceID)
	binary.LittleEndian.PutUint32(buf[4:8], h.Width)
	binary.LittleEndian.PutUint32(buf[8:12], h.Height)
	buf[12] = uint8(h.Format)
	binary.LittleEndian.PutUint32(buf[13:17], h.StreamLen)
}

func (h *renderHeader) decode(buf *[renderHeaderSize]byte) {
	h.SurfaceID = binary.LittleEndian.Uint32(buf[0:4])
	h.Width = binary.LittleEndian.Uint32(buf[4:8])
	h.Height = binary.LittleEndian.Uint32(buf[8:12])
	h.Format = sdcs.PixelFormat(buf[12])
	h.StreamLen = binary.LittleEndian.Uint32(buf[13:17])
}

// Result is one render round trip's outcome as carried on the result
// pipe. Success false means the hosted backend reported a failed frame;
// the child stays alive either way.
type Result struct {
	SurfaceID   uint32
	FrameNumber uint64
	RenderTime  time.Duration
	Success     bool
}

func (r *Result) encode(buf *[resultSize]byte) {
	binary.LittleEndian.PutUint32(buf[0:4], r.SurfaceID)
	binary.LittleEndian.PutUint64(buf[4:12], r.FrameNumber)
	ns := r.RenderTime.Nanoseconds()
	if ns < 0 {
		ns = 0
	}
	binary.LittleEndian.PutUint64(buf[12:20], uint64(ns))
	if r.Success {
		buf[20] = 1
	}
}

func (r *Result) decode(buf *[resultSize]byte) {
	r.SurfaceID = binary.LittleEndian.Uint32(buf[0:4])
	r.FrameNumber = binary.LittleEndian.Uint64(buf[4:12])
	ns := binary.LittleEndian.Uint64(buf[12:20])
	r.RenderTime = time.Duration(ns) //nolint:gosec // wire value, saturation acceptable
	r.Success = buf[20] != 0
}

// writeTag writes one command tag.
func writeTag(w io.Writer, tag uint32) error {
	var buf [tagSize]byte
	binary.LittleEndian.PutUint32(buf[:], tag)
	if _, err := w.Write(buf[:]); err != nil {
		return &IpcError{Op: "write tag", Err: err}
	}
	return nil
}

// readTag reads one command tag. A clean EOF before any byte is returned
// as io.EOF so the serve loop can distinguish parent shutdown from a
// torn record.
func readTag(r io.Reader) (uint32, error) {
	var buf [tagSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		if err == io.EOF {
			return 0, io.EOF
		}
		return 0, &IpcError{Op: "read tag", Err: err}
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// writeRenderRequest writes the render tag, header, and SDCS payload.
func writeRenderRequest(w io.Writer, h *renderHeader, stream []byte) error {
	if err := writeTag(w, cmdRender); err != nil {
		return err
	}
	var buf [renderHeaderSize]byte
	h.encode(&buf)
	if _, err := w.Write(buf[:]); err != nil {
		return &IpcError{Op: "write render header", Err: err}
	}
	if len(stream) > 0 {
		if _, err := w.Write(stream); err != nil {
			return &IpcError{Op: "write render payload", Err: err}
		}
	}
	return nil
}

// readRenderRequest reads the header and payload following a cmdRender
// tag. EOF mid-record is a protocol error, not shutdown.
func readRenderRequest(r io.Reader) (renderHeader, []byte, error) {
	var h renderHeader
	var buf [renderHeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return h, nil, &IpcError{Op: "read render header", Err: err}
	}
	h.decode(&buf)

	if h.StreamLen > maxStreamSize {
		return h, nil, ErrStreamTooLarge
	}
	stream := make([]byte, h.StreamLen)
	if h.StreamLen > 0 {
		if _, err := io.ReadFull(r, stream); err != nil {
			return h, nil, &IpcError{Op: "read render payload", Err: err}
		}
	}
	return h, stream, nil
}

// writeResult writes one fixed-size result record.
func writeResult(w io.Writer, res *Result) error {
	var buf [resultSize]byte
	res.encode(&buf)
	if _, err := w.Write(buf[:]); err != nil {
		return &IpcError{Op: "write result", Err: err}
	}
	return nil
}

// readResult blocking-reads one result record, failing on anything short
// of the full record.
func readResult(r io.Reader) (Result, error) {
	var res Result
	var buf [resultSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return res, &IpcError{Op: "read result", Err: err}
	}
	res.decode(&buf)
	return res, nil
}
