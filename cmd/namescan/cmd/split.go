package cmd

import (
	"github.com/spf13/cobra"

	"github.com/corey/namescan/internal/app"
)

var (
	splitSize int
	splitOut  string
)

var splitCmd = &cobra.Command{
	Use:           "split [flags] <corpus.csv[.gz]>",
	Short:         "Cut a corpus into fixed-size parts",
	Long:          "Splits a corpus into files of at most --size rows, adding a uniqid column when the input has none.",
	Args:          cobra.ExactArgs(1),
	RunE:          runSplit,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	f := splitCmd.Flags()
	f.IntVar(&splitSize, "size", 10000, "Maximum rows per part")
	f.StringVarP(&splitOut, "out", "o", app.DefaultSplitPattern, "Output path pattern ({chunk}, {base})")
}

func runSplit(cmd *cobra.Command, args []string) error {
	return app.SplitCorpus(args[0], splitOut, splitSize, logger())
}
