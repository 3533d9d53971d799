// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the ppubs-fetch CLI. It searches the
// USPTO Patent Public Search service and downloads the matching PDFs.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/ppubs-fetch/internal/metrics"
	"github.com/pdiddy/ppubs-fetch/internal/secrets"
	"github.com/pdiddy/ppubs-fetch/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// cfg is the resolved configuration, loaded before any subcommand runs.
	cfg types.Config

	// met collects metrics for this process; written out after the command
	// when metrics_file is set.
	met = metrics.New()
)

// rootCmd is the base command for the ppubs-fetch CLI.
var rootCmd = &cobra.Command{
	Use:   "ppubs-fetch",
	Short: "Search USPTO Patent Public Search and download patent PDFs",
	Long: `ppubs-fetch talks to the USPTO Patent Public Search (PPUBS) web service.
It opens a session, submits a search query, and downloads the PDF of every
matching patent into a directory, one file at a time.

Use "fetch" for the whole pipeline, or "search" and "download" to run the
stages separately.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(secrets.DefaultDir)
		if err != nil {
			return err
		}

		c, err := loadConfig(viper.GetViper(), s)
		if err != nil {
			return err
		}
		applyFlags(cmd, &c)
		cfg = c

		level, err := parseLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

		if keys := s.Keys(); len(keys) > 0 {
			slog.Info("loaded secrets", "keys", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./ppubs-fetch.yaml or ~/.config/ppubs-fetch/ppubs-fetch.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (default warn)")
	rootCmd.PersistentFlags().String("metrics-file", "", "write Prometheus metrics to this file after the command")
	rootCmd.PersistentFlags().Duration("timeout", 0, "per-request HTTP timeout (default none)")

	bindFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	bindFlag("metrics_file", rootCmd.PersistentFlags().Lookup("metrics-file"))
	bindFlag("http.timeout", rootCmd.PersistentFlags().Lookup("timeout"))
}

func main() {
	err := rootCmd.Execute()
	if werr := met.WriteTextfile(cfg.MetricsFile); werr != nil {
		fmt.Fprintf(os.Stderr, "warning: writing metrics: %v\n", werr)
	}
	if err != nil {
		os.Exit(1)
	}
}
