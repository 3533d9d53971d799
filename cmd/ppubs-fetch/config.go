package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/ppubs-fetch/internal/acquire"
	"github.com/pdiddy/ppubs-fetch/internal/search"
	"github.com/pdiddy/ppubs-fetch/internal/secrets"
	"github.com/pdiddy/ppubs-fetch/internal/session"
	"github.com/pdiddy/ppubs-fetch/pkg/types"
)

const (
	appName   = "ppubs-fetch"
	envPrefix = "PPUBS_FETCH"
)

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(appName)
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", appName))
		}
	}

	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setDefaults registers every config key with its default and enables
// PPUBS_FETCH_* environment overrides (http.timeout -> PPUBS_FETCH_HTTP_TIMEOUT).
// Keys must be registered for Unmarshal to see their environment values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("http.timeout", 0)
	v.SetDefault("http.user_agent", "")
	v.SetDefault("http.origin", "")
	v.SetDefault("http.referer", "")
	v.SetDefault("endpoints.session", session.DefaultEndpoint)
	v.SetDefault("endpoints.search", search.DefaultEndpoint)
	v.SetDefault("endpoints.download", acquire.DefaultEndpoint)
	v.SetDefault("session.fallback_token", "")
	v.SetDefault("session.default_case_id", session.DefaultCaseID)
	v.SetDefault("search.page_size", search.MaxPageSize)
	v.SetDefault("search.retries", 0)
	v.SetDefault("download.delay", acquire.DefaultDelay)
	v.SetDefault("download.output_dir", "")
	v.SetDefault("log_level", "warn")
	v.SetDefault("metrics_file", "")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// loadConfig resolves the configuration from v. A fallback token missing
// from config is taken from the secrets directory.
func loadConfig(v *viper.Viper, s secrets.Secrets) (types.Config, error) {
	var c types.Config
	if err := v.Unmarshal(&c); err != nil {
		return types.Config{}, fmt.Errorf("parsing configuration: %w", err)
	}
	c.Session.FallbackToken = s.Get(secrets.AccessTokenKey, c.Session.FallbackToken)
	return c, nil
}

// applyFlags overrides c with the stage flags set on cmd. Stage flags are
// shared by several subcommands, so they are applied per command instead of
// being bound to viper keys.
func applyFlags(cmd *cobra.Command, c *types.Config) {
	f := cmd.Flags()
	if f.Changed("out") {
		c.Download.OutputDir, _ = f.GetString("out")
	}
	if f.Changed("delay") {
		c.Download.Delay, _ = f.GetDuration("delay")
	}
	if f.Changed("retries") {
		c.Search.Retries, _ = f.GetInt("retries")
	}
	if f.Changed("page-size") {
		c.Search.PageSize, _ = f.GetInt("page-size")
	}
}

// bindFlag binds a flag to a viper key so flag > env > file > default.
func bindFlag(key string, f *pflag.Flag) {
	if err := viper.BindPFlag(key, f); err != nil {
		panic(fmt.Sprintf("binding flag %s: %v", key, err))
	}
}

// parseLevel maps a log level name to a slog.Level.
func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if strings.TrimSpace(s) == "" {
		return slog.LevelWarn, nil
	}
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return l, nil
}
