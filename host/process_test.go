package host

import (
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/gogpu/sdcs"
)

// TestHelperProcess is the child side of the Process tests. It is not a
// real test: it runs only when launched by a parent Process, which is
// detected through the session variable Start always sets.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("SDCS_HOST_SESSION") == "" {
		t.Skip("not a host child")
	}

	mode := "serve"
	args := os.Args
	for i, a := range args {
		if a == "--" && i+1 < len(args) {
			mode = args[i+1]
			break
		}
	}

	switch mode {
	case "serve":
		if err := ServeFDs("software"); err != nil {
			os.Exit(1)
		}
		os.Exit(0)
	case "hang":
		// Never drain the command pipe; the parent must force-kill.
		// A sleep loop rather than select{} so the runtime's deadlock
		// detector cannot kill the child before the parent does.
		for {
			time.Sleep(time.Hour)
		}
	default:
		os.Exit(2)
	}
}

// helperOptions launches the test binary itself as the child, routed
// into TestHelperProcess.
func helperOptions(mode string) Options {
	return Options{
		ExecPath: os.Args[0],
		Args:     []string{"-test.run=TestHelperProcess$", "--", mode},
	}
}

func TestProcess_StartStop(t *testing.T) {
	p := NewProcess(helperOptions("serve"))
	if p.Running() {
		t.Fatal("new process reports running")
	}
	if err := p.Start(); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	if !p.Running() || p.Pid() == 0 {
		t.Error("started process not running")
	}
	if err := p.Start(); err != ErrAlreadyRunning {
		t.Errorf("second Start() = %v, want ErrAlreadyRunning", err)
	}

	pid := p.Pid()
	if err := p.Stop(); err != nil {
		t.Fatalf("Stop() = %v", err)
	}
	if p.Running() || p.Pid() != 0 {
		t.Error("stopped process reports running")
	}
	// Stop reaped the child: signaling it must fail.
	if err := syscall.Kill(pid, 0); err == nil {
		t.Error("child still exists after Stop")
	}

	// Stop is idempotent.
	if err := p.Stop(); err != nil {
		t.Errorf("repeated Stop() = %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("Close() after Stop = %v", err)
	}
}

func TestProcess_RenderRoundTrip(t *testing.T) {
	p := NewProcess(helperOptions("serve"))
	if err := p.Start(); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	defer p.Stop()

	res, err := p.Render(7, 16, 16, sdcs.FormatRGBA8888, validStream(t))
	if err != nil {
		t.Fatalf("Render() = %v", err)
	}
	if res.SurfaceID != 7 {
		t.Errorf("SurfaceID = %d, want 7", res.SurfaceID)
	}
	if !res.Success || res.FrameNumber != 1 {
		t.Errorf("result = %+v", res)
	}

	res, err = p.Render(8, 16, 16, sdcs.FormatRGBA8888, validStream(t))
	if err != nil {
		t.Fatalf("second Render() = %v", err)
	}
	if res.FrameNumber != 2 {
		t.Errorf("second FrameNumber = %d, want 2", res.FrameNumber)
	}

	if err := p.Stop(); err != nil {
		t.Errorf("Stop() = %v", err)
	}
}

func TestProcess_FailedRenderKeepsChildAlive(t *testing.T) {
	p := NewProcess(helperOptions("serve"))
	if err := p.Start(); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	defer p.Stop()

	res, err := p.Render(1, 16, 16, sdcs.FormatRGBA8888, []byte{1, 2, 3})
	if err != nil {
		t.Fatalf("Render(garbage) = %v", err)
	}
	if res.Success {
		t.Error("garbage stream reported success")
	}

	// The child survived the bad frame and serves the next request.
	res, err = p.Render(2, 16, 16, sdcs.FormatRGBA8888, validStream(t))
	if err != nil {
		t.Fatalf("Render() after failure = %v", err)
	}
	if !res.Success || res.SurfaceID != 2 {
		t.Errorf("result = %+v", res)
	}
}

func TestProcess_StopHungChild(t *testing.T) {
	opts := helperOptions("hang")
	opts.Grace = 200 * time.Millisecond
	p := NewProcess(opts)
	if err := p.Start(); err != nil {
		t.Fatalf("Start() = %v", err)
	}

	start := time.Now()
	if err := p.Stop(); err != nil {
		t.Errorf("Stop() = %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Stop() of a hung child took %s", elapsed)
	}
	if p.Running() {
		t.Error("hung child still reported running after Stop")
	}
}

func TestProcess_RenderWhenNotRunning(t *testing.T) {
	p := NewProcess(helperOptions("serve"))
	if _, err := p.Render(1, 8, 8, sdcs.FormatRGBA8888, nil); err != ErrNotRunning {
		t.Errorf("Render() before Start = %v, want ErrNotRunning", err)
	}
}

func TestProcess_SessionAssigned(t *testing.T) {
	a := NewProcess(Options{})
	b := NewProcess(Options{})
	if a.Session() == "" || a.Session() == b.Session() {
		t.Error("sessions must be unique and nonempty")
	}
}
