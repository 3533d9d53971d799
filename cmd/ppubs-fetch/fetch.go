package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/pdiddy/ppubs-fetch/internal/pipeline"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Search and download every matching patent PDF",
	Long: `Fetch runs the whole pipeline: it opens a PPUBS session, submits the
query, and downloads <documentId>.pdf for every result into the output
directory. Downloads run one at a time with a pause between them. A failed
download is reported and skipped.

The exit status is non-zero when the search fails or any download fails.`,
	Example: `  ppubs-fetch fetch --query 'slipper.ttl. AND s.kd. AND @PD>="20230101"' --out ./pdfs`,
	RunE:    runFetch,
}

func init() {
	fetchCmd.Flags().String("query", "", "PPUBS search query")
	fetchCmd.Flags().String("out", "", "output directory for PDFs")
	fetchCmd.Flags().Int("retries", 0, "retries of a rate-limited (HTTP 429) search, with exponential backoff")
	fetchCmd.Flags().Duration("delay", 0, "pause between downloads (default 500ms)")
	fetchCmd.Flags().Int("page-size", 0, "number of results requested (default and max 500)")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	query, _ := cmd.Flags().GetString("query")
	if query == "" {
		return fmt.Errorf("provide a search query with --query")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	p := pipeline.New(pipeline.ConfigStages(cfg, met))
	p.Retries = cfg.Search.Retries
	p.Metrics = met

	run, err := p.Execute(ctx, query, cfg.Download.OutputDir, consoleNotifier{w: os.Stderr})
	if err != nil {
		return err
	}
	return fetchResult(run.Wait())
}

// fetchResult turns a finished run into the command's error.
func fetchResult(r pipeline.Report) error {
	switch r.State {
	case pipeline.StateFailed:
		return r.Err
	case pipeline.StateCancelled:
		return context.Canceled
	}
	if failed := len(r.Outcomes) - r.Downloaded(); failed > 0 {
		return fmt.Errorf("%d patent(s) failed to download", failed)
	}
	return nil
}
