// ABOUTME: Generate command
// ABOUTME: Writes waveform files for each description given on the command line
package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tonewright/seqgen/internal/app"
	"go.uber.org/zap"
)

var generateStrict bool

var generateCmd = &cobra.Command{
	Use:   "generate <description>...",
	Short: "Generate waveform files from descriptions",
	Long: `Generate composes each description between the configured lead and trail
silences and writes <name>.out and <name>.dat to the output directory.
Segments that fail are skipped and listed in the summary.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().BoolVar(&generateStrict, "strict", false, "Exit with an error when any segment fails")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	gen, err := app.New(*cfg, logger)
	if err != nil {
		return err
	}
	defer gen.Close()

	var errs []error
	for _, path := range args {
		summary, err := gen.Generate(cmd.Context(), path)
		if err != nil {
			logger.Error("generation failed", zap.String("description", path), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		fmt.Fprint(cmd.OutOrStdout(), summary.String())

		if generateStrict && summary.Report != nil {
			if err := summary.Report.Err(); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", path, err))
			}
		}
	}
	return errors.Join(errs...)
}
