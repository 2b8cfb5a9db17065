package host

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/google/uuid"

	"github.com/gogpu/sdcs"
)

// Process lifecycle errors.
var (
	// ErrNotRunning is returned when operating on a stopped process.
	ErrNotRunning = errors.New("host: child process is not running")

	// ErrAlreadyRunning is returned by Start on a running process.
	ErrAlreadyRunning = errors.New("host: child process is already running")
)

// stopGracePeriod is how long Stop waits for a clean exit after sending
// the shutdown command before killing the child.
const stopGracePeriod = time.Second

// Options configures a Process.
type Options struct {
	// BackendName selects the backend the child constructs. Empty means
	// the child picks the best available backend from its registry.
	BackendName string

	// ExecPath is the child executable. Empty means re-exec the current
	// binary (os.Executable).
	ExecPath string

	// Args are the child's arguments. Empty means the standard host
	// entry: "host" plus "--backend <name>" when BackendName is set.
	Args []string

	// Grace overrides the shutdown grace period. Zero means the
	// default of one second.
	Grace time.Duration
}

// Process hosts one rendering backend in a child OS process. It is
// constructed inert; Start allocates the pipes and launches the child,
// Stop returns it to inert. Not safe for concurrent use: the wire
// protocol is strict request/response with one render in flight.
type Process struct {
	opts    Options
	session string // uuid for log correlation across parent and child

	cmd       *exec.Cmd
	cmdWrite  *os.File // parent writes commands
	resRead   *os.File // parent reads results
	childDone chan error
	running   bool
}

// NewProcess returns an inert Process. No OS resources are held until
// Start.
func NewProcess(opts Options) *Process {
	return &Process{
		opts:    opts,
		session: uuid.NewString(),
	}
}

// Session returns the process's log-correlation identifier.
func (p *Process) Session() string { return p.session }

// Pid returns the child's process id, or 0 when not running.
func (p *Process) Pid() int {
	if !p.running || p.cmd == nil || p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

// Running reports whether the child has been started and not yet
// stopped.
func (p *Process) Running() bool { return p.running }

// Start allocates the command and result pipes and launches the child
// with its pipe ends inherited as descriptors 3 (command read end) and
// 4 (result write end). On any failure the Process stays inert.
func (p *Process) Start() error {
	if p.running {
		return ErrAlreadyRunning
	}

	execPath := p.opts.ExecPath
	if execPath == "" {
		self, err := os.Executable()
		if err != nil {
			return fmt.Errorf("host: resolve executable: %w", err)
		}
		execPath = self
	}
	args := p.opts.Args
	if args == nil {
		args = []string{"host"}
		if p.opts.BackendName != "" {
			args = append(args, "--backend", p.opts.BackendName)
		}
	}

	cmdRead, cmdWrite, err := os.Pipe()
	if err != nil {
		return fmt.Errorf("host: create command pipe: %w", err)
	}
	resRead, resWrite, err := os.Pipe()
	if err != nil {
		cmdRead.Close()
		cmdWrite.Close()
		return fmt.Errorf("host: create result pipe: %w", err)
	}

	cmd := exec.Command(execPath, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	// The child sees these as fds 3 and 4.
	cmd.ExtraFiles = []*os.File{cmdRead, resWrite}
	cmd.Env = append(os.Environ(), "SDCS_HOST_SESSION="+p.session)

	if err := cmd.Start(); err != nil {
		cmdRead.Close()
		cmdWrite.Close()
		resRead.Close()
		resWrite.Close()
		return fmt.Errorf("host: start child: %w", err)
	}

	// The child holds its own copies now.
	cmdRead.Close()
	resWrite.Close()

	p.cmd = cmd
	p.cmdWrite = cmdWrite
	p.resRead = resRead
	p.childDone = make(chan error, 1)
	go func() { p.childDone <- cmd.Wait() }()
	p.running = true

	sdcs.Logger().Info("host: child started",
		"session", p.session, "pid", cmd.Process.Pid, "backend", p.opts.BackendName)
	return nil
}

// Render performs one blocking render round trip: write the request on
// the command pipe, read the fixed result record off the result pipe.
func (p *Process) Render(surfaceID uint32, width, height int, format sdcs.PixelFormat, stream []byte) (Result, error) {
	if !p.running {
		return Result{}, ErrNotRunning
	}
	if len(stream) > maxStreamSize {
		return Result{}, ErrStreamTooLarge
	}

	h := renderHeader{
		SurfaceID: surfaceID,
		Width:     uint32(width),  //nolint:gosec // validated by the child's backend
		Height:    uint32(height), //nolint:gosec // validated by the child's backend
		Format:    format,
		StreamLen: uint32(len(stream)), //nolint:gosec // bounded by maxStreamSize
	}
	if err := writeRenderRequest(p.cmdWrite, &h, stream); err != nil {
		return Result{}, err
	}
	return readResult(p.resRead)
}

// Stop shuts the child down: send the shutdown command, wait up to the
// grace period for a clean exit, then SIGKILL and reap. The pipes are
// always closed. Safe to call repeatedly; calls after the first are
// no-ops.
func (p *Process) Stop() error {
	if !p.running {
		return nil
	}
	p.running = false

	grace := p.opts.Grace
	if grace <= 0 {
		grace = stopGracePeriod
	}

	// A write failure just means the child is already gone or hung; the
	// wait below settles it either way.
	writeErr := writeTag(p.cmdWrite, cmdShutdown)

	var waitErr error
	killed := false
	select {
	case waitErr = <-p.childDone:
	case <-time.After(grace):
		killed = true
		if err := p.cmd.Process.Kill(); err != nil {
			sdcs.Logger().Warn("host: kill child", "session", p.session, "error", err)
		}
		waitErr = <-p.childDone
	}

	p.cmdWrite.Close()
	p.resRead.Close()
	p.cmd = nil
	p.cmdWrite = nil
	p.resRead = nil
	p.childDone = nil

	sdcs.Logger().Info("host: child stopped",
		"session", p.session, "killed", killed)

	if killed {
		// Forced termination is the expected outcome of a hung child,
		// not an error of Stop itself.
		return nil
	}
	if writeErr != nil {
		return writeErr
	}
	if waitErr != nil {
		return fmt.Errorf("host: child exit: %w", waitErr)
	}
	return nil
}

// Close is Stop. It exists so a Process can sit behind io.Closer.
func (p *Process) Close() error { return p.Stop() }
