package gpu

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/core"

	"github.com/gogpu/sdcs"
	"github.com/gogpu/sdcs/backend"
	"github.com/gogpu/sdcs/stream"
)

// Name is the registry identifier of the GPU-presenting backend.
const Name = "gpu"

// maxGPUDim bounds GPU framebuffer dimensions to WebGPU's guaranteed
// minimum 2D texture limit.
const maxGPUDim = 8192

// Backend errors.
var (
	// ErrNoGPU is returned when no usable adapter is found.
	ErrNoGPU = errors.New("gpu: no usable GPU adapter")
)

// init registers the GPU backend. Availability is probed lazily on first
// query and cached, so importing the package on a GPU-less host is cheap
// and selection falls back to the CPU backends.
func init() {
	backend.Register(Name, 100, func(opts backend.Options) (backend.Backend, error) {
		return New()
	}, available)
}

var (
	probeOnce sync.Once
	probeOK   bool
)

// available reports whether a GPU adapter can be acquired on this system.
func available() bool {
	probeOnce.Do(func() {
		instance := core.NewInstance(&gputypes.InstanceDescriptor{
			Backends: gputypes.BackendsPrimary,
		})
		adapter, err := instance.RequestAdapter(&gputypes.RequestAdapterOptions{
			PowerPreference: gputypes.PowerPreferenceHighPerformance,
		})
		if err != nil {
			sdcs.Logger().Info("gpu: no adapter, backend unavailable", "error", err)
			return
		}
		_ = releaseAdapter(adapter)
		probeOK = true
	})
	return probeOK
}

// GPUBackend renders SDCS frames with the shared CPU interpreter and
// presents them by uploading the surface to a GPU texture.
//
// Device resources (instance, adapter, device, queue) are acquired in New
// and released in Close.
type GPUBackend struct {
	instance *core.Instance
	adapter  core.AdapterID
	device   core.DeviceID
	queue    core.QueueID
	gpuInfo  *GPUInfo

	surface *sdcs.Surface
	frame   *frameTexture
	frameNo uint64
	closed  bool
}

// New creates a GPU backend, acquiring the adapter, device, and queue.
func New() (*GPUBackend, error) {
	b := &GPUBackend{}

	b.instance = core.NewInstance(&gputypes.InstanceDescriptor{
		Backends: gputypes.BackendsPrimary,
	})

	adapterID, err := b.instance.RequestAdapter(&gputypes.RequestAdapterOptions{
		PowerPreference: gputypes.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoGPU, err)
	}
	b.adapter = adapterID
	logGPUInfo(adapterID)
	b.gpuInfo, _ = getGPUInfo(adapterID)

	deviceID, err := createDevice(adapterID, "sdcs-gpu-device")
	if err != nil {
		_ = releaseAdapter(adapterID)
		return nil, err
	}
	b.device = deviceID

	queueID, err := getDeviceQueue(deviceID)
	if err != nil {
		_ = releaseDevice(deviceID)
		_ = releaseAdapter(adapterID)
		return nil, err
	}
	b.queue = queueID

	sdcs.Logger().Info("gpu: backend initialized")
	return b, nil
}

// Capabilities describes the GPU backend.
func (b *GPUBackend) Capabilities() backend.Capabilities {
	return backend.Capabilities{
		Name:                Name,
		MaxWidth:            maxGPUDim,
		MaxHeight:           maxGPUDim,
		HardwareAccelerated: true,
		CanPresent:          true,
	}
}

// InitFramebuffer idempotently (re)allocates the surface and its
// matching frame texture.
func (b *GPUBackend) InitFramebuffer(cfg backend.FramebufferConfig) error {
	if b.closed {
		return backend.ErrClosed
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > maxGPUDim || cfg.Height > maxGPUDim {
		return fmt.Errorf("%w: %dx%d", backend.ErrInvalidDimensions, cfg.Width, cfg.Height)
	}
	if b.surface != nil &&
		b.surface.Width() == cfg.Width &&
		b.surface.Height() == cfg.Height &&
		b.surface.Format() == cfg.Format {
		return nil
	}

	if b.frame != nil {
		b.frame.release()
	}
	b.surface = sdcs.NewSurface(cfg.Width, cfg.Height, cfg.Format)
	frame, err := newFrameTexture(b, cfg.Width, cfg.Height, cfg.Format)
	if err != nil {
		b.surface = nil
		return err
	}
	b.frame = frame
	return nil
}

// Render executes one SDCS frame on the CPU surface, then presents it by
// uploading to the frame texture.
func (b *GPUBackend) Render(req *backend.RenderRequest) backend.RenderResult {
	start := time.Now()
	res := backend.RenderResult{SurfaceID: req.SurfaceID}
	if b.closed {
		res.ErrorMsg = backend.ErrClosed.Error()
		return res
	}
	if err := b.InitFramebuffer(req.Config); err != nil {
		res.ErrorMsg = err.Error()
		return res
	}

	if req.Clear != nil {
		b.surface.Clear(*req.Clear)
	}
	b.surface.SetOffset(req.OffsetX, req.OffsetY)

	if err := stream.Execute(b.surface, req.Stream); err != nil {
		res.ErrorMsg = err.Error()
	}

	if err := b.frame.upload(b.surface); err != nil {
		// A present failure is a frame failure, but the surface still
		// holds the rendered pixels for readback.
		if res.ErrorMsg == "" {
			res.ErrorMsg = err.Error()
		}
		sdcs.Logger().Warn("gpu: present failed", "error", err)
	}

	b.frameNo++
	res.FrameNumber = b.frameNo
	res.RenderTime = time.Since(start)
	return res
}

// Pixels returns the CPU-side surface buffer, or nil before
// InitFramebuffer. GPU texture readback is not required for SDCS; the
// CPU surface is authoritative.
func (b *GPUBackend) Pixels() []uint8 {
	if b.surface == nil {
		return nil
	}
	return b.surface.Data()
}

// Surface exposes the CPU-side surface for readback, or nil before
// InitFramebuffer.
func (b *GPUBackend) Surface() *sdcs.Surface {
	return b.surface
}

// Resize reallocates the surface and frame texture, discarding contents.
func (b *GPUBackend) Resize(width, height int) error {
	if b.closed {
		return backend.ErrClosed
	}
	if b.surface == nil {
		return backend.ErrNotInitialized
	}
	return b.InitFramebuffer(backend.FramebufferConfig{
		Width:  width,
		Height: height,
		Format: b.surface.Format(),
	})
}

// PollEvents is a no-op; windowing integration lives outside this backend.
func (b *GPUBackend) PollEvents() bool {
	return !b.closed
}

// GPU returns information about the selected adapter, or nil.
func (b *GPUBackend) GPU() *GPUInfo {
	return b.gpuInfo
}

// Close releases the frame texture and all device resources, in reverse
// order of creation.
func (b *GPUBackend) Close() error {
	if b.closed {
		return backend.ErrClosed
	}
	b.closed = true

	if b.frame != nil {
		b.frame.release()
		b.frame = nil
	}
	b.surface = nil

	if err := releaseDevice(b.device); err != nil {
		sdcs.Logger().Warn("gpu: error releasing device", "error", err)
	}
	b.device = core.DeviceID{}

	if err := releaseAdapter(b.adapter); err != nil {
		sdcs.Logger().Warn("gpu: error releasing adapter", "error", err)
	}
	b.adapter = core.AdapterID{}

	// Instance needs no explicit cleanup in the current implementation.
	b.instance = nil
	b.queue = core.QueueID{}

	sdcs.Logger().Info("gpu: backend closed")
	return nil
}

var _ backend.Backend = (*GPUBackend)(nil)
