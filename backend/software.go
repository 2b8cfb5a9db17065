package backend

import "github.com/gogpu/sdcs"

// Backend name constants for the built-in backends.
const (
	// NameSoftware is the CPU reference backend with simulated input
	// and an in-memory clipboard.
	NameSoftware = "software"
	// NameHeadless is the capture-only CPU backend.
	NameHeadless = "headless"
)

// init registers the built-in CPU backends on package import.
func init() {
	Register(NameSoftware, 10, func(opts Options) (Backend, error) {
		return NewSoftwareBackend(opts), nil
	}, nil)
	Register(NameHeadless, 5, func(opts Options) (Backend, error) {
		return NewHeadlessBackend(), nil
	}, nil)
}

// SoftwareBackend is the CPU reference renderer. It draws through the
// shared stream interpreter into an in-memory surface, queues injected
// input events, and implements the asynchronous clipboard contract with an
// in-memory store.
//
// It cannot present; callers read frames back through Pixels or Surface.
type SoftwareBackend struct {
	cpuCore

	keys *EventQueue[KeyEvent]
	mice *EventQueue[MouseEvent]

	// Clipboard state. store holds published selections; pending marks
	// requested fetches that become visible in ready only after the
	// next PollEvents, matching the asynchronous transfer of real
	// window-system clipboards.
	store   map[Selection][]byte
	pending map[Selection]bool
	ready   map[Selection][]byte
}

// NewSoftwareBackend creates a software backend. The surface is allocated
// lazily by InitFramebuffer.
func NewSoftwareBackend(opts Options) *SoftwareBackend {
	keyCap := opts.KeyQueueCap
	if keyCap == 0 {
		keyCap = DefaultKeyQueueCap
	}
	mouseCap := opts.MouseQueueCap
	if mouseCap == 0 {
		mouseCap = DefaultMouseQueueCap
	}
	return &SoftwareBackend{
		keys:    NewEventQueue[KeyEvent]("key", keyCap),
		mice:    NewEventQueue[MouseEvent]("mouse", mouseCap),
		store:   make(map[Selection][]byte),
		pending: make(map[Selection]bool),
		ready:   make(map[Selection][]byte),
	}
}

// Capabilities describes the software backend.
func (b *SoftwareBackend) Capabilities() Capabilities {
	return Capabilities{
		Name:      NameSoftware,
		MaxWidth:  maxSoftwareDim,
		MaxHeight: maxSoftwareDim,
	}
}

// InitFramebuffer idempotently (re)allocates the backing surface.
func (b *SoftwareBackend) InitFramebuffer(cfg FramebufferConfig) error {
	return b.initFramebuffer(cfg)
}

// Render executes one SDCS frame against the surface.
func (b *SoftwareBackend) Render(req *RenderRequest) RenderResult {
	return b.render(req)
}

// Pixels returns the raw surface buffer, or nil before InitFramebuffer.
func (b *SoftwareBackend) Pixels() []uint8 {
	return b.pixels()
}

// Surface returns the backing surface, or nil before InitFramebuffer.
func (b *SoftwareBackend) Surface() *sdcs.Surface {
	return b.surface
}

// Resize reallocates the surface, discarding contents.
func (b *SoftwareBackend) Resize(width, height int) error {
	return b.resize(width, height)
}

// PollEvents completes pending clipboard transfers. The software backend
// has no window, so it never asks the caller to stop.
func (b *SoftwareBackend) PollEvents() bool {
	if b.closed {
		return false
	}
	for sel := range b.pending {
		if data, ok := b.store[sel]; ok {
			b.ready[sel] = append([]byte(nil), data...)
		}
		delete(b.pending, sel)
	}
	return true
}

// PushKeyEvent injects a key event, as a window system would on input.
func (b *SoftwareBackend) PushKeyEvent(ev KeyEvent) {
	b.keys.Push(ev)
}

// PushMouseEvent injects a mouse event.
func (b *SoftwareBackend) PushMouseEvent(ev MouseEvent) {
	b.mice.Push(ev)
}

// DrainKeyEvents implements InputSource.
func (b *SoftwareBackend) DrainKeyEvents() []KeyEvent {
	return b.keys.Drain()
}

// DrainMouseEvents implements InputSource.
func (b *SoftwareBackend) DrainMouseEvents() []MouseEvent {
	return b.mice.Drain()
}

// SetClipboard implements Clipboard.
func (b *SoftwareBackend) SetClipboard(sel Selection, data []byte) error {
	if b.closed {
		return ErrClosed
	}
	b.store[sel] = append([]byte(nil), data...)
	return nil
}

// RequestClipboard implements Clipboard. The fetched data becomes visible
// through ClipboardData after the next PollEvents.
func (b *SoftwareBackend) RequestClipboard(sel Selection) error {
	if b.closed {
		return ErrClosed
	}
	b.pending[sel] = true
	return nil
}

// ClipboardData implements Clipboard.
func (b *SoftwareBackend) ClipboardData(sel Selection) ([]byte, bool) {
	data, ok := b.ready[sel]
	return data, ok
}

// ClipboardPending implements Clipboard.
func (b *SoftwareBackend) ClipboardPending() bool {
	return len(b.pending) > 0
}

// Close releases the surface.
func (b *SoftwareBackend) Close() error {
	return b.close()
}

// Interface checks.
var (
	_ Backend     = (*SoftwareBackend)(nil)
	_ InputSource = (*SoftwareBackend)(nil)
	_ Clipboard   = (*SoftwareBackend)(nil)
)
