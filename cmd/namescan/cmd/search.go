package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/corey/namescan/internal/adapters/runstore"
	"github.com/corey/namescan/internal/adapters/watcher"
	"github.com/corey/namescan/internal/app"
	"github.com/corey/namescan/internal/domain/clean"
	"github.com/corey/namescan/internal/domain/match"
	"github.com/corey/namescan/internal/ports"
)

var (
	searchNames     string
	searchOut       string
	searchMaxNames  int
	searchWorkers   int
	searchTextCol   string
	searchIDCol     string
	searchSearchCol string
	searchInputCols []string
	searchOutCols   []string
	searchFuzzy     []string
	searchClean     bool
	searchStream    bool
	searchOverwrite bool
	searchResume    bool
	searchOnlyHits  bool
	searchFollow    string
)

var searchCmd = &cobra.Command{
	Use:           "search [flags] <corpus.csv[.gz]>",
	Short:         "Scan a text corpus for search names",
	Long:          "Streams the corpus in chunks across parallel workers, matching each row's text against the search-name list with per-length edit tolerances.",
	Args:          cobra.MaximumNArgs(1),
	RunE:          runSearch,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	f := searchCmd.Flags()
	f.StringVarP(&searchNames, "names", "f", "deduped_augmented_clean_names.csv", "Search-names CSV file")
	f.StringVarP(&searchOut, "out", "o", "search_results.csv", "Output CSV file (.gz for gzip)")
	f.IntVarP(&searchMaxNames, "max-names", "m", 20, "Result slots per output row")
	f.IntVarP(&searchWorkers, "workers", "p", 4, "Parallel workers")
	f.StringVarP(&searchTextCol, "text-column", "t", "text", "Corpus column holding the text")
	f.StringVarP(&searchIDCol, "id-column", "u", "uniqid", "Names column holding the group id")
	f.StringVarP(&searchSearchCol, "search-column", "s", "search_name", "Names column holding the keyword")
	f.StringSliceVarP(&searchInputCols, "input-cols", "i", []string{"uniqid", "text"}, "Corpus columns copied to the output")
	f.StringSliceVarP(&searchOutCols, "search-cols", "c", []string{"uniqid", "n", "match", "start", "end", "count"}, "Result fields per slot")
	f.StringSliceVarP(&searchFuzzy, "fuzzy", "e", []string{"10:1", "20:2"}, "Edit tolerance tiers as MINLEN:DIST")
	f.BoolVar(&searchClean, "clean", false, "Clean corpus text before matching")
	f.BoolVar(&searchStream, "stream", false, "Emit rows as they finish instead of per chunk")
	f.BoolVar(&searchOverwrite, "overwrite", false, "Replace an existing output file")
	f.BoolVar(&searchResume, "resume", false, "Skip chunks completed by a prior run")
	f.BoolVar(&searchOnlyHits, "only-matches", false, "Drop rows with zero matches")
	f.StringVar(&searchFollow, "follow", "", "Watch a directory and search new corpus files")
}

func runSearch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && searchFollow == "" {
		return fmt.Errorf("corpus file required (or use --follow)")
	}

	tiers, err := match.ParseTierSpecs(searchFuzzy)
	if err != nil {
		return err
	}
	log := logger()

	store, err := runstore.NewStore(searchOut + ".checkpoint")
	if err != nil {
		return fmt.Errorf("open checkpoint store: %w", err)
	}
	defer store.Close()

	var cleaner ports.TextCleaner
	if searchClean {
		cleaner = clean.New()
	}

	job := &app.SearchJob{
		NamesPath:    searchNames,
		OutPath:      searchOut,
		IDColumn:     searchIDCol,
		SearchColumn: searchSearchCol,
		Tiers:        tiers,
		Cleaner:      cleaner,
		Store:        store,
		Overwrite:    searchOverwrite,
		Log:          log,
		Opts: ports.SearchOptions{
			TextColumn:  searchTextCol,
			InputCols:   searchInputCols,
			SearchCols:  searchOutCols,
			MaxNames:    searchMaxNames,
			Workers:     searchWorkers,
			Clean:       searchClean,
			Stream:      searchStream,
			Resume:      searchResume,
			OnlyMatches: searchOnlyHits,
		},
	}
	if len(args) == 1 {
		job.CorpusPath = args[0]
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if searchFollow != "" {
		w, err := watcher.NewWatcher()
		if err != nil {
			return fmt.Errorf("start watcher: %w", err)
		}
		return job.Follow(ctx, searchFollow, w)
	}

	stats, err := job.Run(ctx)
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		log.Warn().Int("rows", stats.RowsProcessed).Msg("interrupted, partial results written")
	}
	return nil
}
