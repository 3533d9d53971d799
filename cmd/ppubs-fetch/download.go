package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/ppubs-fetch/internal/acquire"
	"github.com/pdiddy/ppubs-fetch/internal/docid"
	"github.com/pdiddy/ppubs-fetch/internal/httputil"
	"github.com/pdiddy/ppubs-fetch/internal/pipeline"
	"github.com/pdiddy/ppubs-fetch/internal/search"
	"github.com/pdiddy/ppubs-fetch/pkg/types"
)

var downloadCmd = &cobra.Command{
	Use:   "download [document-ids...]",
	Short: "Download patent PDFs by document identifier",
	Long: `Download opens a PPUBS session and downloads <documentId>.pdf for each
identifier, one at a time. Identifiers may carry a country prefix and kind
code ("US 11,223,344 B2"); they are reduced to the bare form first.

With --from the identifiers are read from a file written by
"ppubs-fetch search --save".`,
	Example: `  ppubs-fetch download --out ./pdfs US11223344B2 D1108091
  ppubs-fetch download --from slippers.yaml --out ./pdfs`,
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().String("from", "", "read document ids from a saved search file")
	downloadCmd.Flags().String("out", "", "output directory for PDFs")
	downloadCmd.Flags().Duration("delay", 0, "pause between downloads (default 500ms)")

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	from, _ := cmd.Flags().GetString("from")

	docs, err := downloadTargets(from, args)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return fmt.Errorf("provide document ids as arguments or with --from")
	}
	if err := requireOutputDir(cfg.Download.OutputDir); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	client, err := httputil.NewClient(cfg.HTTP)
	if err != nil {
		return err
	}
	logger := slog.Default()
	sess, err := pipeline.NewSessionManager(client, cfg, logger, met).Acquire(ctx)
	if err != nil {
		return err
	}

	d := pipeline.NewDownloader(client, cfg, logger, met)
	outcomes := d.DownloadAll(ctx, sess, docs, cfg.Download.OutputDir, consoleNotifier{w: os.Stderr})

	result := acquire.Summarize(outcomes)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if result.HasFailures() {
		return fmt.Errorf("%d patent(s) failed to download", result.Failed)
	}
	return nil
}

// requireOutputDir rejects an empty destination the way the pipeline does.
func requireOutputDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return fmt.Errorf("%w: %s", pipeline.ErrNoDestination, pipeline.StatusNoDestination)
	}
	return nil
}

// downloadTargets collects the documents to download from a saved search
// file and from the arguments, in that order, reducing each identifier to
// its bare form and skipping repeats.
func downloadTargets(from string, args []string) ([]types.DocumentSummary, error) {
	var docs []types.DocumentSummary
	if from != "" {
		qf, err := search.ReadQueryFile(from)
		if err != nil {
			return nil, err
		}
		docs = append(docs, qf.Results...)
	}
	for _, a := range args {
		docs = append(docs, types.DocumentSummary{DocumentID: a})
	}

	seen := make(map[string]bool, len(docs))
	out := docs[:0]
	for _, d := range docs {
		d.DocumentID = docid.Bare(d.DocumentID)
		if d.DocumentID == "" || seen[d.DocumentID] {
			continue
		}
		seen[d.DocumentID] = true
		out = append(out, d)
	}
	return out, nil
}
