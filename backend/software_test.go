package backend

import (
	"errors"
	"testing"

	"github.com/gogpu/sdcs"
	"github.com/gogpu/sdcs/stream"
)

func fillStream(t *testing.T, x, y, w, h float32, c sdcs.RGBA) []byte {
	t.Helper()
	var enc stream.Encoder
	enc.FillRect(x, y, w, h, c)
	enc.End()
	return enc.Bytes()
}

func testConfig(w, h int) FramebufferConfig {
	return FramebufferConfig{Width: w, Height: h, Format: sdcs.FormatRGBA8888}
}

func TestSoftwareBackend_Render(t *testing.T) {
	b := NewSoftwareBackend(Options{})
	defer b.Close()

	res := b.Render(&RenderRequest{
		SurfaceID: 7,
		Stream:    fillStream(t, 0, 0, 4, 4, sdcs.Red),
		Config:    testConfig(8, 8),
	})
	if !res.Ok() {
		t.Fatalf("Render() failed: %s", res.ErrorMsg)
	}
	if res.SurfaceID != 7 {
		t.Errorf("SurfaceID = %d, want 7", res.SurfaceID)
	}
	if res.FrameNumber != 1 {
		t.Errorf("FrameNumber = %d, want 1", res.FrameNumber)
	}
	if res.RenderTime <= 0 {
		t.Error("RenderTime not measured")
	}

	r, _, _, a := b.Surface().PixelAt(2, 2)
	if r != 255 || a != 255 {
		t.Errorf("pixel (2,2) = r%d a%d, want opaque red", r, a)
	}
	if _, _, _, a := b.Surface().PixelAt(6, 6); a != 0 {
		t.Error("pixel outside rect drawn")
	}

	// Frame numbers increase across renders.
	res = b.Render(&RenderRequest{Stream: fillStream(t, 0, 0, 1, 1, sdcs.Blue), Config: testConfig(8, 8)})
	if res.FrameNumber != 2 {
		t.Errorf("second FrameNumber = %d, want 2", res.FrameNumber)
	}
}

func TestSoftwareBackend_RenderClear(t *testing.T) {
	b := NewSoftwareBackend(Options{})
	defer b.Close()

	clearColor := sdcs.Blue
	res := b.Render(&RenderRequest{
		Stream: fillStream(t, 0, 0, 1, 1, sdcs.Red),
		Config: testConfig(4, 4),
		Clear:  &clearColor,
	})
	if !res.Ok() {
		t.Fatalf("Render() failed: %s", res.ErrorMsg)
	}
	if _, _, bl, _ := b.Surface().PixelAt(3, 3); bl != 255 {
		t.Error("clear color not applied outside drawn area")
	}
}

func TestSoftwareBackend_RenderOffset(t *testing.T) {
	b := NewSoftwareBackend(Options{})
	defer b.Close()

	res := b.Render(&RenderRequest{
		Stream:  fillStream(t, 0, 0, 1, 1, sdcs.White),
		Config:  testConfig(8, 8),
		OffsetX: 5,
		OffsetY: 6,
	})
	if !res.Ok() {
		t.Fatalf("Render() failed: %s", res.ErrorMsg)
	}
	if _, _, _, a := b.Surface().PixelAt(5, 6); a != 255 {
		t.Error("render offset not applied")
	}
}

func TestSoftwareBackend_BadStreamReportedNotFatal(t *testing.T) {
	b := NewSoftwareBackend(Options{})
	defer b.Close()

	// Too short to hold a stream header.
	res := b.Render(&RenderRequest{Stream: []byte{1, 2, 3}, Config: testConfig(4, 4)})
	if res.Ok() {
		t.Fatal("malformed stream did not set ErrorMsg")
	}
	// The backend keeps working, and the bad frame still counted.
	res = b.Render(&RenderRequest{Stream: fillStream(t, 0, 0, 1, 1, sdcs.Red), Config: testConfig(4, 4)})
	if !res.Ok() {
		t.Fatalf("Render() after bad frame failed: %s", res.ErrorMsg)
	}
	if res.FrameNumber != 2 {
		t.Errorf("FrameNumber = %d, want 2", res.FrameNumber)
	}
}

func TestSoftwareBackend_InvalidDimensions(t *testing.T) {
	b := NewSoftwareBackend(Options{})
	defer b.Close()

	for _, cfg := range []FramebufferConfig{
		testConfig(0, 4), testConfig(4, -1), testConfig(maxSoftwareDim+1, 4),
	} {
		if err := b.InitFramebuffer(cfg); !errors.Is(err, ErrInvalidDimensions) {
			t.Errorf("InitFramebuffer(%dx%d) = %v, want ErrInvalidDimensions", cfg.Width, cfg.Height, err)
		}
	}
}

func TestSoftwareBackend_InitIdempotent(t *testing.T) {
	b := NewSoftwareBackend(Options{})
	defer b.Close()

	if err := b.InitFramebuffer(testConfig(8, 8)); err != nil {
		t.Fatal(err)
	}
	b.Surface().SetPixel(1, 1, 9, 9, 9, 9)

	// Same config keeps the surface and its contents.
	if err := b.InitFramebuffer(testConfig(8, 8)); err != nil {
		t.Fatal(err)
	}
	if _, _, _, a := b.Surface().PixelAt(1, 1); a != 9 {
		t.Error("matching InitFramebuffer discarded contents")
	}

	// A new size reallocates.
	if err := b.InitFramebuffer(testConfig(16, 8)); err != nil {
		t.Fatal(err)
	}
	if b.Surface().Width() != 16 {
		t.Error("InitFramebuffer did not resize")
	}
}

func TestSoftwareBackend_Resize(t *testing.T) {
	b := NewSoftwareBackend(Options{})
	defer b.Close()

	if err := b.Resize(4, 4); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Resize before init = %v, want ErrNotInitialized", err)
	}
	if err := b.InitFramebuffer(testConfig(4, 4)); err != nil {
		t.Fatal(err)
	}
	if err := b.Resize(10, 12); err != nil {
		t.Fatalf("Resize() = %v", err)
	}
	if len(b.Pixels()) != 10*12*4 {
		t.Errorf("len(Pixels()) = %d after resize", len(b.Pixels()))
	}
}

func TestSoftwareBackend_CloseTwice(t *testing.T) {
	b := NewSoftwareBackend(Options{})
	if err := b.Close(); err != nil {
		t.Fatalf("first Close() = %v", err)
	}
	if err := b.Close(); !errors.Is(err, ErrClosed) {
		t.Errorf("second Close() = %v, want ErrClosed", err)
	}
	if b.PollEvents() {
		t.Error("PollEvents() on closed backend = true")
	}
	res := b.Render(&RenderRequest{Config: testConfig(4, 4)})
	if res.Ok() {
		t.Error("Render() on closed backend succeeded")
	}
}

func TestSoftwareBackend_InputQueues(t *testing.T) {
	b := NewSoftwareBackend(Options{KeyQueueCap: 2, MouseQueueCap: 2})
	defer b.Close()

	b.PushKeyEvent(KeyEvent{Code: 1, Pressed: true})
	b.PushKeyEvent(KeyEvent{Code: 2, Modifiers: ModShift})
	b.PushKeyEvent(KeyEvent{Code: 3}) // over capacity, dropped

	keys := b.DrainKeyEvents()
	if len(keys) != 2 || keys[0].Code != 1 || keys[1].Code != 2 {
		t.Errorf("DrainKeyEvents() = %v", keys)
	}
	if b.DrainKeyEvents() != nil {
		t.Error("second drain should be empty")
	}

	b.PushMouseEvent(MouseEvent{X: 3, Y: 4, Button: ButtonLeft, Type: MousePress})
	mice := b.DrainMouseEvents()
	if len(mice) != 1 || mice[0].X != 3 || mice[0].Type != MousePress {
		t.Errorf("DrainMouseEvents() = %v", mice)
	}
}

func TestSoftwareBackend_ClipboardAsync(t *testing.T) {
	b := NewSoftwareBackend(Options{})
	defer b.Close()

	if err := b.SetClipboard(SelectionClipboard, []byte("hello")); err != nil {
		t.Fatalf("SetClipboard() = %v", err)
	}

	// Nothing visible before a request completes.
	if _, ok := b.ClipboardData(SelectionClipboard); ok {
		t.Error("ClipboardData visible before request")
	}

	if err := b.RequestClipboard(SelectionClipboard); err != nil {
		t.Fatalf("RequestClipboard() = %v", err)
	}
	if !b.ClipboardPending() {
		t.Error("ClipboardPending() = false after request")
	}
	// Still asynchronous: data arrives only with the next poll.
	if _, ok := b.ClipboardData(SelectionClipboard); ok {
		t.Error("ClipboardData visible before PollEvents")
	}

	if !b.PollEvents() {
		t.Fatal("PollEvents() = false")
	}
	if b.ClipboardPending() {
		t.Error("ClipboardPending() = true after poll")
	}
	data, ok := b.ClipboardData(SelectionClipboard)
	if !ok || string(data) != "hello" {
		t.Errorf("ClipboardData() = %q, %v", data, ok)
	}

	// Selections are independent.
	if _, ok := b.ClipboardData(SelectionPrimary); ok {
		t.Error("primary selection leaked from clipboard selection")
	}
}

func TestHeadlessBackend_SnapshotWorkflow(t *testing.T) {
	b := NewHeadlessBackend()
	defer b.Close()

	res := b.Render(&RenderRequest{
		Stream: fillStream(t, 0, 0, 8, 8, sdcs.Green),
		Config: testConfig(8, 8),
	})
	if !res.Ok() {
		t.Fatalf("Render() failed: %s", res.ErrorMsg)
	}
	if !b.PollEvents() {
		t.Error("PollEvents() = false on open headless backend")
	}

	path := t.TempDir() + "/frame.png"
	if err := b.SaveSnapshot(path); err != nil {
		t.Fatalf("SaveSnapshot() = %v", err)
	}
}

func TestHeadlessBackend_SnapshotBeforeInit(t *testing.T) {
	b := NewHeadlessBackend()
	defer b.Close()
	if err := b.SaveSnapshot(t.TempDir() + "/none.png"); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("SaveSnapshot() = %v, want ErrNotInitialized", err)
	}
}
