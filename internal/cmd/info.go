// ABOUTME: Info command
// ABOUTME: Prints the structure of descriptions without generating samples
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tonewright/seqgen/internal/app"
)

var infoCmd = &cobra.Command{
	Use:   "info <description>...",
	Short: "Describe sequences and signals",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gen, err := app.New(*cfg, logger)
		if err != nil {
			return err
		}
		defer gen.Close()

		for _, path := range args {
			out, err := gen.Describe(path)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
