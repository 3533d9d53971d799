package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/ppubs-fetch/internal/httputil"
	"github.com/pdiddy/ppubs-fetch/internal/pipeline"
	"github.com/pdiddy/ppubs-fetch/internal/search"
	"github.com/pdiddy/ppubs-fetch/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search PPUBS and print the matching patents",
	Long: `Search opens a PPUBS session, submits the query, and prints the bare
document identifier and title of every result. Nothing is downloaded.

With --save the query and its results are written to a YAML file that
"ppubs-fetch download --from" reads later.`,
	Example: `  ppubs-fetch search --query 'slipper.ttl.' --format json
  ppubs-fetch search --query 'slipper.ttl.' --save slippers.yaml`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("query", "", "PPUBS search query")
	searchCmd.Flags().String("format", search.FormatTable, "output format: table, json, yaml")
	searchCmd.Flags().String("save", "", "write the query and results to a YAML file")
	searchCmd.Flags().Int("retries", 0, "retries of a rate-limited (HTTP 429) search, with exponential backoff")
	searchCmd.Flags().Int("page-size", 0, "number of results requested (default and max 500)")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query, _ := cmd.Flags().GetString("query")
	if query == "" {
		return fmt.Errorf("provide a search query with --query")
	}
	format, _ := cmd.Flags().GetString("format")
	savePath, _ := cmd.Flags().GetString("save")

	client, err := httputil.NewClient(cfg.HTTP)
	if err != nil {
		return err
	}
	sc := pipeline.NewSearchClient(client, cfg, slog.Default(), met)

	q := types.SearchQuery{RawText: query}
	res, err := pipeline.SearchWithRetry(cmd.Context(), sc, q, cfg.Search.Retries, slog.Default())
	if err != nil {
		return err
	}

	if err := search.Format(res.Documents, format, os.Stdout); err != nil {
		return err
	}

	if savePath != "" {
		if err := search.WriteQueryFile(savePath, q, res, time.Now().UTC()); err != nil {
			return fmt.Errorf("saving results: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Saved %d results to %s\n", len(res.Documents), savePath)
	}
	return nil
}
