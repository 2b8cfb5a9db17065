package gpu

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/sdcs"
	"github.com/gogpu/sdcs/backend"
)

func TestRegistryRegistration(t *testing.T) {
	entry, ok := backend.Get(Name)
	if !ok {
		t.Fatal("gpu backend not registered")
	}
	if entry.Priority != 100 {
		t.Errorf("priority = %d, want 100", entry.Priority)
	}
	if entry.Available == nil {
		t.Error("gpu backend must register an availability probe")
	}
}

func TestWgpuFormat(t *testing.T) {
	if got := wgpuFormat(sdcs.FormatRGBA8888); got != gputypes.TextureFormatRGBA8Unorm {
		t.Errorf("wgpuFormat(RGBA8888) = %v", got)
	}
	if got := wgpuFormat(sdcs.FormatBGRA8888); got != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("wgpuFormat(BGRA8888) = %v", got)
	}
}

func TestFrameTexture_Upload(t *testing.T) {
	ft := &frameTexture{width: 4, height: 4, format: sdcs.FormatRGBA8888, sizeBytes: 64}

	if err := ft.upload(sdcs.NewSurface(4, 4, sdcs.FormatRGBA8888)); err != nil {
		t.Errorf("upload(matching surface) = %v", err)
	}
	if err := ft.upload(sdcs.NewSurface(8, 4, sdcs.FormatRGBA8888)); !errors.Is(err, ErrTextureSizeMismatch) {
		t.Errorf("upload(mismatched surface) = %v, want ErrTextureSizeMismatch", err)
	}

	ft.release()
	ft.release() // idempotent
	if err := ft.upload(sdcs.NewSurface(4, 4, sdcs.FormatRGBA8888)); !errors.Is(err, ErrTextureReleased) {
		t.Errorf("upload after release = %v, want ErrTextureReleased", err)
	}
}

func TestGPUInfoString(t *testing.T) {
	info := &GPUInfo{Name: "Test GPU"}
	if got := info.String(); got == "" {
		t.Error("String() returned empty")
	}
}
