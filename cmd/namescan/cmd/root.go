package cmd

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "namescan",
	Short: "namescan — fuzzy person-name search over CSV corpora",
	Long:  "Generates search-name lists from structured name records and scans text corpora for exact and near-exact mentions in parallel.",
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// logger builds the process logger. Verbose mode lowers the level to debug.
func logger() zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(preprocessCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(splitCmd)
}
