// Command sdcsd renders SDCS draw-command streams.
//
// It can execute a .sdcs file against any registered backend, list the
// backend registry, generate a demonstration stream, and act as the
// sandboxed child end of a host.Process.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/gogpu/sdcs"
	_ "github.com/gogpu/sdcs/backend/gpu"
)

type rootOptions struct {
	configPath string
	verbose    bool
	config     *Config
}

func (r *rootOptions) prepare() error {
	level := slog.LevelInfo
	if r.verbose {
		level = slog.LevelDebug
	}
	sdcs.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))

	cfg, err := LoadConfig(r.configPath)
	if err != nil {
		return err
	}
	r.config = cfg
	return nil
}

func main() {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:          "sdcsd",
		Short:        "SDCS draw-command-stream renderer",
		SilenceUsage: true,
	}
	defaultConfig := os.Getenv("SDCSD_CONFIG")
	if defaultConfig == "" {
		defaultConfig = DefaultConfigPath()
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", defaultConfig, "path to sdcsd config file")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentPreRunE = func(*cobra.Command, []string) error {
		return opts.prepare()
	}

	rootCmd.AddCommand(newRenderCmd(opts))
	rootCmd.AddCommand(newBackendsCmd())
	rootCmd.AddCommand(newDemoCmd(opts))
	rootCmd.AddCommand(newHostCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// stderrIsTerminal reports whether stderr is attached to a terminal, for
// deciding when progress output is worth printing.
func stderrIsTerminal() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}
