package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gogpu/sdcs/backend"
)

func newBackendsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List registered backends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tPRIORITY\tAVAILABLE")
			for _, name := range backend.List() {
				entry, ok := backend.Get(name)
				if !ok {
					continue
				}
				avail := "yes"
				if entry.Available != nil && !entry.Available() {
					avail = "no"
				}
				fmt.Fprintf(w, "%s\t%d\t%s\n", entry.Name, entry.Priority, avail)
			}
			return w.Flush()
		},
	}
}
