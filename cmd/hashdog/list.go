package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newListCmd prints every registered algorithm's descriptor. spec §6 names
// `list` in the command surface table but leaves its payload to the
// Algorithm Registry's own descriptor fields (§3, C1's list() operation).
func newListCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered hash algorithms",
		RunE: func(_ *cobra.Command, _ []string) error {
			descriptors := sharedRegistry.List()
			if jsonOut {
				return printJSON(descriptors)
			}
			for _, d := range descriptors {
				fmt.Printf("%-10s %4d bits  cryptographic=%-5t post_quantum=%-5t\n",
					d.Name, d.OutputBits, d.Cryptographic, d.PostQuantum)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of text")
	return cmd
}
