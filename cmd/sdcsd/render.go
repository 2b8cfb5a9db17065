package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gogpu/sdcs"
	"github.com/gogpu/sdcs/backend"
	"github.com/gogpu/sdcs/host"
	"github.com/gogpu/sdcs/stream"
)

// surfacer is the optional readback interface backends expose for
// snapshot output.
type surfacer interface {
	Surface() *sdcs.Surface
}

func newRenderCmd(opts *rootOptions) *cobra.Command {
	var (
		backendName string
		width       int
		height      int
		output      string
		isolate     bool
		surfaceID   uint32
	)

	cmd := &cobra.Command{
		Use:   "render <file.sdcs>",
		Short: "Execute a .sdcs stream against a backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := stream.ReadFile(args[0])
			if err != nil {
				return err
			}

			if backendName == "" {
				backendName = opts.config.Backend
			}
			if width <= 0 {
				width = opts.config.Width
			}
			if height <= 0 {
				height = opts.config.Height
			}
			if !cmd.Flags().Changed("isolate") {
				isolate = opts.config.Isolate
			}

			if isolate {
				if output != "" {
					return errors.New("snapshot output requires in-process rendering; drop --isolate or --out")
				}
				return renderIsolated(cmd, backendName, width, height, surfaceID, data)
			}
			return renderInProcess(cmd, backendName, width, height, surfaceID, data, output)
		},
	}

	cmd.Flags().StringVarP(&backendName, "backend", "b", "", "backend name (default: config, then best available)")
	cmd.Flags().IntVarP(&width, "width", "W", 0, "framebuffer width")
	cmd.Flags().IntVarP(&height, "height", "H", 0, "framebuffer height")
	cmd.Flags().StringVarP(&output, "out", "o", "", "write the rendered frame to a PNG file")
	cmd.Flags().BoolVar(&isolate, "isolate", false, "render inside a sandboxed child process")
	cmd.Flags().Uint32Var(&surfaceID, "surface-id", 1, "surface identifier echoed in the result")
	return cmd
}

func renderInProcess(cmd *cobra.Command, name string, width, height int, surfaceID uint32, data []byte, output string) error {
	var (
		b   backend.Backend
		err error
	)
	if name == "" {
		b, err = backend.New(backend.DefaultOptions(width, height))
	} else {
		b, err = backend.NewByName(name, backend.DefaultOptions(width, height))
	}
	if err != nil {
		return err
	}
	defer b.Close()

	clearColor := sdcs.Black
	res := b.Render(&backend.RenderRequest{
		SurfaceID: surfaceID,
		Stream:    data,
		Config: backend.FramebufferConfig{
			Width:  width,
			Height: height,
			Format: sdcs.FormatRGBA8888,
		},
		Clear: &clearColor,
	})
	if !res.Ok() {
		return fmt.Errorf("render failed: %s", res.ErrorMsg)
	}
	if stderrIsTerminal() {
		fmt.Fprintf(cmd.ErrOrStderr(), "frame %d rendered in %s on %q\n",
			res.FrameNumber, res.RenderTime, b.Capabilities().Name)
	}

	if output == "" {
		return nil
	}
	s, ok := b.(surfacer)
	if !ok || s.Surface() == nil {
		return fmt.Errorf("backend %q does not support snapshot output", b.Capabilities().Name)
	}
	if err := s.Surface().SavePNG(output); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), output)
	return nil
}

func renderIsolated(cmd *cobra.Command, name string, width, height int, surfaceID uint32, data []byte) error {
	p := host.NewProcess(host.Options{BackendName: name})
	if err := p.Start(); err != nil {
		return err
	}
	defer p.Stop()

	res, err := p.Render(surfaceID, width, height, sdcs.FormatRGBA8888, data)
	if err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("render failed in child (surface %d, frame %d)", res.SurfaceID, res.FrameNumber)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "frame %d rendered in %s (child pid %d)\n",
		res.FrameNumber, res.RenderTime, p.Pid())
	return p.Stop()
}
