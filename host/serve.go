package host

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gogpu/sdcs"
	"github.com/gogpu/sdcs/backend"
)

// Serve runs the child command loop: read commands off r, render them
// against b, write results to w. It returns nil on a shutdown command or
// a clean EOF on r (the parent closed its end or died), and an error on
// a torn wire record.
//
// A render that fails inside the backend is reported in its result and
// logged; one bad frame never ends the loop.
func Serve(b backend.Backend, r io.Reader, w io.Writer) error {
	log := sdcs.Logger()
	caps := b.Capabilities()
	log.Info("host: serving", "backend", caps.Name)

	for {
		tag, err := readTag(r)
		if err != nil {
			if errors.Is(err, io.EOF) {
				log.Info("host: command pipe closed, exiting")
				return nil
			}
			return err
		}

		switch tag {
		case cmdShutdown:
			log.Info("host: shutdown requested")
			return nil

		case cmdRender:
			h, stream, err := readRenderRequest(r)
			if err != nil {
				return err
			}
			res := renderOne(b, h, stream)
			if err := writeResult(w, &res); err != nil {
				return err
			}

		default:
			return fmt.Errorf("%w: %d", ErrUnknownCommand, tag)
		}
	}
}

// renderOne executes a single request, converting the backend's result
// into the wire shape. Backend panics would defeat the whole point of
// an isolated child, so none are recovered here; the parent observes a
// dead pipe instead.
func renderOne(b backend.Backend, h renderHeader, stream []byte) Result {
	req := backend.RenderRequest{
		SurfaceID: h.SurfaceID,
		Stream:    stream,
		Config: backend.FramebufferConfig{
			Width:  int(h.Width),
			Height: int(h.Height),
			Format: h.Format,
		},
	}
	br := b.Render(&req)
	if !br.Ok() {
		sdcs.Logger().Warn("host: render failed",
			"surface", br.SurfaceID, "error", br.ErrorMsg)
	}
	return Result{
		SurfaceID:   br.SurfaceID,
		FrameNumber: br.FrameNumber,
		RenderTime:  br.RenderTime,
		Success:     br.Ok(),
	}
}

// ServeFDs serves on the pipe descriptors a parent Process passes to its
// child: fd 3 is the command read end, fd 4 is the result write end. The
// backend is constructed from the registry (by name, or best available
// when name is empty), the sandbox hook is applied, and the loop runs
// until shutdown. The backend is closed before returning.
func ServeFDs(backendName string) error {
	cmdPipe := os.NewFile(3, "sdcs-cmd")
	resPipe := os.NewFile(4, "sdcs-result")
	if cmdPipe == nil || resPipe == nil {
		return errors.New("host: pipe descriptors 3 and 4 not inherited")
	}
	defer cmdPipe.Close()
	defer resPipe.Close()

	if session := os.Getenv("SDCS_HOST_SESSION"); session != "" {
		sdcs.SetLogger(sdcs.Logger().With("session", session))
	}

	var b backend.Backend
	var err error
	if backendName == "" {
		b, err = backend.New(backend.Options{})
	} else {
		b, err = backend.NewByName(backendName, backend.Options{})
	}
	if err != nil {
		return err
	}
	defer b.Close()

	dropPrivileges()

	return Serve(b, cmdPipe, resPipe)
}
