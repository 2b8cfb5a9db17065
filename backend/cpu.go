package backend

import (
	"fmt"
	"time"

	"github.com/gogpu/sdcs"
	"github.com/gogpu/sdcs/stream"
)

// maxSoftwareDim bounds CPU framebuffer dimensions.
const maxSoftwareDim = 16384

// cpuCore is the shared surface and frame bookkeeping of the CPU-rendered
// backends. Every frame goes through the one stream interpreter; backends
// embedding the core differ only in presentation and input concerns.
type cpuCore struct {
	surface *sdcs.Surface
	frame   uint64
	closed  bool
}

// initFramebuffer idempotently (re)allocates the backing surface.
// A matching existing surface is kept, including its contents.
func (c *cpuCore) initFramebuffer(cfg FramebufferConfig) error {
	if c.closed {
		return ErrClosed
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > maxSoftwareDim || cfg.Height > maxSoftwareDim {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, cfg.Width, cfg.Height)
	}
	if c.surface != nil &&
		c.surface.Width() == cfg.Width &&
		c.surface.Height() == cfg.Height &&
		c.surface.Format() == cfg.Format {
		return nil
	}
	c.surface = sdcs.NewSurface(cfg.Width, cfg.Height, cfg.Format)
	return nil
}

// render executes one SDCS frame against the surface.
func (c *cpuCore) render(req *RenderRequest) RenderResult {
	start := time.Now()
	res := RenderResult{SurfaceID: req.SurfaceID}

	if c.closed {
		res.ErrorMsg = ErrClosed.Error()
		return res
	}
	if err := c.initFramebuffer(req.Config); err != nil {
		res.ErrorMsg = err.Error()
		return res
	}

	if req.Clear != nil {
		c.surface.Clear(*req.Clear)
	}
	c.surface.SetOffset(req.OffsetX, req.OffsetY)

	if err := stream.Execute(c.surface, req.Stream); err != nil {
		// Partial rendering is retained; the frame still counts.
		res.ErrorMsg = err.Error()
	}

	c.frame++
	res.FrameNumber = c.frame
	res.RenderTime = time.Since(start)
	return res
}

// pixels returns the raw surface buffer, or nil before initFramebuffer.
func (c *cpuCore) pixels() []uint8 {
	if c.surface == nil {
		return nil
	}
	return c.surface.Data()
}

// resize reallocates the surface, discarding contents.
func (c *cpuCore) resize(width, height int) error {
	if c.closed {
		return ErrClosed
	}
	if c.surface == nil {
		return ErrNotInitialized
	}
	if width <= 0 || height <= 0 || width > maxSoftwareDim || height > maxSoftwareDim {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	c.surface.Resize(width, height)
	return nil
}

// close releases the surface. The second call reports ErrClosed.
func (c *cpuCore) close() error {
	if c.closed {
		return ErrClosed
	}
	c.closed = true
	c.surface = nil
	return nil
}
