package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/image/font/basicfont"

	"github.com/gogpu/sdcs"
	"github.com/gogpu/sdcs/stream"
)

const demoText = "sdcs demo stream"

func newDemoCmd(opts *rootOptions) *cobra.Command {
	var (
		output   string
		snapshot string
		compress bool
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Generate a demonstration .sdcs stream",
		Long: "Generate a stream exercising every drawing opcode: background and\n" +
			"overlapping translucent fills plus a glyph run rasterized from the\n" +
			"builtin 7x13 bitmap font.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := buildDemoStream()
			if err != nil {
				return err
			}
			if err := stream.WriteFile(output, data, compress); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), output)

			if snapshot == "" {
				return nil
			}
			return renderInProcess(cmd, "headless", opts.config.Width, opts.config.Height, 1, data, snapshot)
		},
	}

	cmd.Flags().StringVarP(&output, "out", "o", "demo.sdcs", "output .sdcs file")
	cmd.Flags().StringVar(&snapshot, "snapshot", "", "also render the stream to a PNG file")
	cmd.Flags().BoolVar(&compress, "compress", true, "zstd-compress the container")
	return cmd
}

// buildDemoStream encodes a stream with fills and a glyph run covering
// the printable ASCII range of the builtin bitmap font.
func buildDemoStream() ([]byte, error) {
	runes := make([]rune, 0, 95)
	for r := rune(' '); r <= '~'; r++ {
		runes = append(runes, r)
	}
	atlas, index, err := stream.AtlasFromFace(basicfont.Face7x13, runes, 16)
	if err != nil {
		return nil, err
	}

	enc := stream.NewEncoder()
	enc.ResetState()
	enc.FillRect(0, 0, 800, 600, sdcs.RGB(0.10, 0.10, 0.12))
	enc.FillRect(40, 40, 300, 200, sdcs.RGB(0.80, 0.20, 0.20))
	enc.FillRect(190, 140, 300, 200, sdcs.RGBA{R: 0.20, G: 0.40, B: 0.90, A: 0.5})

	glyphs := make([]stream.Glyph, 0, len(demoText))
	var penX float32
	for _, r := range demoText {
		if idx, ok := index[r]; ok {
			glyphs = append(glyphs, stream.Glyph{Index: idx, XOffset: penX})
		}
		penX += float32(basicfont.Face7x13.Advance)
	}
	enc.GlyphRun(60, 420, sdcs.White, atlas, glyphs)
	enc.End()

	return enc.Bytes(), nil
}
