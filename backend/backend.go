package backend

import (
	"errors"
	"time"

	"github.com/gogpu/sdcs"
)

// Common backend errors.
var (
	// ErrNotInitialized is returned when operations are called before
	// InitFramebuffer.
	ErrNotInitialized = errors.New("backend: not initialized")

	// ErrClosed is returned when operations are called after Close.
	ErrClosed = errors.New("backend: closed")

	// ErrInvalidDimensions is returned for non-positive or out-of-range
	// framebuffer dimensions.
	ErrInvalidDimensions = errors.New("backend: invalid framebuffer dimensions")
)

// Backend is the contract every concrete renderer satisfies.
//
// A backend owns one pixel surface, renders SDCS streams into it through
// the shared interpreter, and presents the result however its platform
// requires. All operations on one instance are single-threaded and
// sequential; a Backend is not safe for concurrent use.
type Backend interface {
	// Capabilities describes the backend. Static and side-effect-free.
	Capabilities() Capabilities

	// InitFramebuffer idempotently (re)allocates the backing surface.
	// Callers must call it before the first Render, and again whenever
	// dimensions change. Reallocation discards surface contents.
	InitFramebuffer(cfg FramebufferConfig) error

	// Render optionally clears, executes the request's SDCS stream
	// against the surface, and presents if the backend supports direct
	// presentation. A bad SDCS payload never panics or returns a Go
	// error: failures are reported through the result's ErrorMsg so one
	// hostile frame cannot take the renderer down.
	Render(req *RenderRequest) RenderResult

	// Pixels returns the raw surface buffer in the backend's channel
	// order, for readback, testing, and headless capture. Returns nil
	// if the backend has no framebuffer yet or does not support
	// readback. The slice aliases backend memory; it is valid until the
	// next Render, Resize, or Close.
	Pixels() []uint8

	// Resize changes the surface dimensions, discarding contents.
	Resize(width, height int) error

	// PollEvents processes pending platform events. It returns false
	// when the backend wants the caller to stop, e.g. the user closed
	// the window.
	PollEvents() bool

	// Close releases all resources. Safe to call at most once.
	Close() error
}

// InputSource is an optional interface for backends that translate native
// input into the common event shapes.
type InputSource interface {
	Backend

	// DrainKeyEvents atomically returns and clears the key events
	// accumulated since the previous call.
	DrainKeyEvents() []KeyEvent

	// DrainMouseEvents atomically returns and clears the mouse events
	// accumulated since the previous call.
	DrainMouseEvents() []MouseEvent
}

// Selection identifies a clipboard selection.
type Selection uint8

const (
	// SelectionClipboard is the explicit copy/paste clipboard.
	SelectionClipboard Selection = iota

	// SelectionPrimary is the implicit select/middle-click selection.
	SelectionPrimary
)

// String returns a human-readable name for the selection.
func (s Selection) String() string {
	switch s {
	case SelectionClipboard:
		return "clipboard"
	case SelectionPrimary:
		return "primary"
	default:
		return "unknown"
	}
}

// Clipboard is an optional interface for backends with clipboard transfer.
//
// Requests are asynchronous: after RequestClipboard, the data becomes
// observable through ClipboardData only after a subsequent PollEvents has
// processed the transfer.
type Clipboard interface {
	Backend

	// SetClipboard publishes data to a selection.
	SetClipboard(sel Selection, data []byte) error

	// RequestClipboard starts an asynchronous fetch of a selection.
	RequestClipboard(sel Selection) error

	// ClipboardData returns the most recently fetched data for a
	// selection, if any fetch has completed.
	ClipboardData(sel Selection) ([]byte, bool)

	// ClipboardPending reports whether a requested fetch has not yet
	// completed.
	ClipboardPending() bool
}

// Capabilities describes a backend's static properties.
type Capabilities struct {
	// Name is the backend identifier (e.g. "software", "gpu").
	Name string

	// MaxWidth and MaxHeight are the largest supported framebuffer
	// dimensions (0 = unlimited).
	MaxWidth  int
	MaxHeight int

	// SupportsAntialias indicates anti-aliased rendering is available.
	SupportsAntialias bool

	// HardwareAccelerated indicates rendering or presentation uses the GPU.
	HardwareAccelerated bool

	// CanPresent indicates the backend can display frames directly
	// rather than only offering readback.
	CanPresent bool
}

// FramebufferConfig describes the backing surface a backend allocates.
type FramebufferConfig struct {
	// Width and Height are the surface dimensions in pixels.
	Width  int
	Height int

	// Format is the channel order of the surface memory.
	Format sdcs.PixelFormat

	// Scale is the output scale factor. Zero means 1.
	Scale float64
}

// RenderRequest describes one frame to render.
// Its field layout, together with RenderResult, is the wire contract both
// for in-process calls and for host-process serialization.
type RenderRequest struct {
	// SurfaceID is an opaque client identifier echoed in the result.
	SurfaceID uint32

	// Stream holds the SDCS bytes to execute.
	Stream []byte

	// Config is the framebuffer the frame targets. Backends reallocate
	// idempotently when it differs from the current surface.
	Config FramebufferConfig

	// Clear, when non-nil, fills the surface with this color before the
	// stream executes.
	Clear *sdcs.RGBA

	// OffsetX and OffsetY are added to all draw coordinates.
	OffsetX int
	OffsetY int
}

// RenderResult reports the outcome of one Render call.
type RenderResult struct {
	// SurfaceID echoes the request's identifier.
	SurfaceID uint32

	// FrameNumber is the backend's monotonically increasing frame count.
	FrameNumber uint64

	// RenderTime is how long decode and execution took.
	RenderTime time.Duration

	// ErrorMsg is empty on success. Render-call failures are always
	// represented here, never as a crash.
	ErrorMsg string
}

// Ok reports whether the render succeeded.
func (r RenderResult) Ok() bool { return r.ErrorMsg == "" }
