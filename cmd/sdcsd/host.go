package main

import (
	"github.com/spf13/cobra"

	"github.com/gogpu/sdcs/host"
)

// newHostCmd is the child-process entry of host.Process. It is hidden:
// users never run it directly, the parent re-execs this binary with the
// pipe descriptors attached.
func newHostCmd() *cobra.Command {
	var backendName string

	cmd := &cobra.Command{
		Use:    "host",
		Short:  "Serve render requests on inherited pipe descriptors",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return host.ServeFDs(backendName)
		},
	}
	cmd.Flags().StringVar(&backendName, "backend", "", "backend to host (default: best available)")
	return cmd
}
