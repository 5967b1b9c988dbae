package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kvpeek/kvpeek/internal/discovery"
	"github.com/kvpeek/kvpeek/internal/kv"
	"github.com/kvpeek/kvpeek/internal/search"
)

var flagSearchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search keys and values across every namespace",
	Long: `Search all discovered namespaces at once. Keys match when the query
is a subsequence of the key (so "usr" finds "user:1"); values match on
case-insensitive substring and show a short preview around the hit.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVar(&flagSearchLimit, "limit", 0, "maximum results (default from config)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	limit := cfg.Search.Limit
	if flagSearchLimit > 0 {
		limit = flagSearchLimit
	}

	scanner := discovery.NewScanner(logger, cfg.Discovery.Excludes)
	projects, err := scanner.Scan(cfg.Root)
	if err != nil {
		return err
	}

	store := kv.NewStore(logger)
	defer func() { _ = store.Dispose() }()

	results, err := search.New(store, logger).Search(cmd.Context(), args[0], projects, search.Options{Limit: limit})
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Println("no matches")
		return nil
	}

	for _, r := range results {
		if r.MatchedValue && !r.MatchedKey {
			fmt.Printf("%s/%s  %s\n    %s\n", r.Project, r.Namespace, r.Key, r.Preview)
			continue
		}
		fmt.Printf("%s/%s  %s\n", r.Project, r.Namespace, r.Key)
	}
	return nil
}
