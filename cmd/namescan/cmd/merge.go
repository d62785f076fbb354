package cmd

import (
	"github.com/spf13/cobra"

	"github.com/corey/namescan/internal/app"
)

var mergeOut string

var mergeCmd = &cobra.Command{
	Use:           "merge [flags] <results.csv ...>",
	Short:         "Concatenate result files into one",
	Long:          "Merges per-chunk result files. The first file's header wins; later files are reordered to match it.",
	Args:          cobra.MinimumNArgs(1),
	RunE:          runMerge,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	mergeCmd.Flags().StringVarP(&mergeOut, "out", "o", "merged_results.csv", "Output CSV file")
}

func runMerge(cmd *cobra.Command, args []string) error {
	return app.MergeResults(args, mergeOut, logger())
}
