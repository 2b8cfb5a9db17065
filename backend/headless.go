package backend

import "github.com/gogpu/sdcs"

// HeadlessBackend is a capture-only CPU renderer: no presentation, no
// input, no clipboard. It exists for servers, tests, and batch rendering
// where frames are read back or written to files.
type HeadlessBackend struct {
	cpuCore
}

// NewHeadlessBackend creates a headless backend.
func NewHeadlessBackend() *HeadlessBackend {
	return &HeadlessBackend{}
}

// Capabilities describes the headless backend.
func (b *HeadlessBackend) Capabilities() Capabilities {
	return Capabilities{
		Name:      NameHeadless,
		MaxWidth:  maxSoftwareDim,
		MaxHeight: maxSoftwareDim,
	}
}

// InitFramebuffer idempotently (re)allocates the backing surface.
func (b *HeadlessBackend) InitFramebuffer(cfg FramebufferConfig) error {
	return b.initFramebuffer(cfg)
}

// Render executes one SDCS frame against the surface.
func (b *HeadlessBackend) Render(req *RenderRequest) RenderResult {
	return b.render(req)
}

// Pixels returns the raw surface buffer, or nil before InitFramebuffer.
func (b *HeadlessBackend) Pixels() []uint8 {
	return b.pixels()
}

// Surface exposes the backing surface for readback, or nil before
// InitFramebuffer.
func (b *HeadlessBackend) Surface() *sdcs.Surface {
	return b.surface
}

// Resize reallocates the surface, discarding contents.
func (b *HeadlessBackend) Resize(width, height int) error {
	return b.resize(width, height)
}

// PollEvents is a no-op; there is no event source.
func (b *HeadlessBackend) PollEvents() bool {
	return !b.closed
}

// SaveSnapshot writes the current frame to a PNG file.
func (b *HeadlessBackend) SaveSnapshot(path string) error {
	if b.surface == nil {
		return ErrNotInitialized
	}
	return b.surface.SavePNG(path)
}

// Close releases the surface.
func (b *HeadlessBackend) Close() error {
	return b.close()
}

var _ Backend = (*HeadlessBackend)(nil)
