package cmd

import (
	"github.com/spf13/cobra"

	"github.com/corey/namescan/internal/app"
	"github.com/corey/namescan/internal/domain/match"
)

var (
	preOut         string
	preDrop        string
	preIDCol       string
	prePatterns    []string
	preEditLengths []int
)

var preprocessCmd = &cobra.Command{
	Use:           "preprocess [flags] <names.csv>",
	Short:         "Expand name records into a deduplicated search-name list",
	Long:          "Expands each record through the name templates, filters the drop list, and removes near-duplicate candidates by edit distance.",
	Args:          cobra.ExactArgs(1),
	RunE:          runPreprocess,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	f := preprocessCmd.Flags()
	f.StringVarP(&preOut, "out", "o", "deduped_augmented_clean_names.csv", "Output CSV file")
	f.StringVarP(&preDrop, "drop-patterns", "d", "", "File of names to drop, one per line")
	f.StringVarP(&preIDCol, "id-column", "u", "uniqid", "Column holding the record id")
	f.StringArrayVar(&prePatterns, "pattern", []string{"FirstName LastName", "NickName LastName", "Prefix LastName"}, "Name template (repeatable)")
	f.IntSliceVar(&preEditLengths, "edit-length", []int{10, 20}, "Ascending length thresholds for dedup tolerance")
}

func runPreprocess(cmd *cobra.Command, args []string) error {
	job := &app.PreprocessJob{
		NamesPath: args[0],
		OutPath:   preOut,
		DropPath:  preDrop,
		IDColumn:  preIDCol,
		Templates: prePatterns,
		Tiers:     match.TiersFromEditLengths(preEditLengths),
		Log:       logger(),
	}
	_, err := job.Run()
	return err
}
