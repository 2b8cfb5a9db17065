package stream

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// File container framing. A .sdcs file is a 16-byte header followed by the
// stream bytes, optionally zstd-compressed:
//
//	[4 bytes] magic "SDCS"
//	[2 bytes] container version (little-endian)
//	[2 bytes] flags
//	[8 bytes] uncompressed stream length (little-endian)
const (
	fileHeaderSize = 16
	fileVersion    = 1

	// flagZstd marks the stream bytes as a zstd frame.
	flagZstd = 1 << 0

	// maxFileStreamSize caps the declared stream length so a corrupt
	// header cannot cause an absurd allocation.
	maxFileStreamSize = 256 << 20
)

var fileMagic = [4]byte{'S', 'D', 'C', 'S'}

// File container errors.
var (
	// ErrBadMagic is returned when a container does not start with "SDCS".
	ErrBadMagic = errors.New("stream: not an SDCS container")

	// ErrBadVersion is returned for an unsupported container version.
	ErrBadVersion = errors.New("stream: unsupported container version")

	// ErrStreamTooLarge is returned when the declared stream length
	// exceeds the container limit.
	ErrStreamTooLarge = errors.New("stream: declared stream length too large")
)

// WriteContainer writes stream bytes to w in the .sdcs container format.
// When compress is true the stream is stored as a zstd frame.
func WriteContainer(w io.Writer, stream []byte, compress bool) error {
	var hdr [fileHeaderSize]byte
	copy(hdr[0:4], fileMagic[:])
	binary.LittleEndian.PutUint16(hdr[4:], fileVersion)
	binary.LittleEndian.PutUint64(hdr[8:], uint64(len(stream)))

	body := stream
	if compress {
		binary.LittleEndian.PutUint16(hdr[6:], flagZstd)
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return fmt.Errorf("stream: zstd init: %w", err)
		}
		body = enc.EncodeAll(stream, nil)
		_ = enc.Close()
	}

	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("stream: write container header: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("stream: write container body: %w", err)
	}
	return nil
}

// ReadContainer reads a .sdcs container from r and returns the stream bytes.
func ReadContainer(r io.Reader) ([]byte, error) {
	var hdr [fileHeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("stream: read container header: %w", err)
	}
	if [4]byte(hdr[0:4]) != fileMagic {
		return nil, ErrBadMagic
	}
	if binary.LittleEndian.Uint16(hdr[4:]) != fileVersion {
		return nil, ErrBadVersion
	}
	flags := binary.LittleEndian.Uint16(hdr[6:])
	rawLen := binary.LittleEndian.Uint64(hdr[8:])
	if rawLen > maxFileStreamSize {
		return nil, ErrStreamTooLarge
	}

	body, err := io.ReadAll(io.LimitReader(r, maxFileStreamSize+1))
	if err != nil {
		return nil, fmt.Errorf("stream: read container body: %w", err)
	}
	if flags&flagZstd == 0 {
		if uint64(len(body)) != rawLen {
			return nil, fmt.Errorf("stream: container body is %d bytes, header declares %d", len(body), rawLen)
		}
		return body, nil
	}

	dec, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxFileStreamSize))
	if err != nil {
		return nil, fmt.Errorf("stream: zstd init: %w", err)
	}
	defer dec.Close()
	out, err := dec.DecodeAll(body, make([]byte, 0, rawLen))
	if err != nil {
		return nil, fmt.Errorf("stream: zstd decode: %w", err)
	}
	if uint64(len(out)) != rawLen {
		return nil, fmt.Errorf("stream: container decodes to %d bytes, header declares %d", len(out), rawLen)
	}
	return out, nil
}

// WriteFile saves stream bytes to a .sdcs container file.
func WriteFile(path string, stream []byte, compress bool) error {
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	if err := WriteContainer(f, stream, compress); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// ReadFile loads stream bytes from a .sdcs container file.
func ReadFile(path string) ([]byte, error) {
	f, err := os.Open(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	return ReadContainer(f)
}
