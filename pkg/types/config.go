package types

import "time"

// HTTPConfig holds shared HTTP settings used by every stage that talks to
// the remote service.
type HTTPConfig struct {
	// Timeout is the per-request timeout. Zero leaves the transport default
	// in place (no client-side timeout).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header. The service rejects obviously
	// non-browser agents, so the default mimics Chrome.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// Origin and Referer are sent on the handshake and search requests.
	Origin  string `json:"origin" yaml:"origin" mapstructure:"origin"`
	Referer string `json:"referer" yaml:"referer" mapstructure:"referer"`
}

// Endpoints holds the remote service URLs. Empty fields fall back to the
// defaults owned by each component.
type Endpoints struct {
	Session  string `json:"session" yaml:"session" mapstructure:"session"`
	Search   string `json:"search" yaml:"search" mapstructure:"search"`
	Download string `json:"download" yaml:"download" mapstructure:"download"`
}

// SessionConfig holds settings for the handshake.
type SessionConfig struct {
	// FallbackToken is used as the auth token when the handshake response
	// carries none. Usually loaded from .secrets/ppubs-access-token.
	FallbackToken string `json:"-" yaml:"-" mapstructure:"fallback_token"`

	// DefaultCaseID overrides the built-in case identifier used when the
	// handshake body does not carry one.
	DefaultCaseID string `json:"default_case_id,omitempty" yaml:"default_case_id,omitempty" mapstructure:"default_case_id"`
}

// SearchConfig holds settings for the search stage.
type SearchConfig struct {
	// PageSize is the number of records requested in the single page fetched
	// (default and maximum 500).
	PageSize int `json:"page_size" yaml:"page_size" mapstructure:"page_size"`

	// Retries is the number of caller-side retries of a rate-limited (HTTP
	// 429) search. The search client itself never retries.
	Retries int `json:"retries" yaml:"retries" mapstructure:"retries"`
}

// DownloadConfig holds settings for the batch download stage.
type DownloadConfig struct {
	// Delay is the pacing interval between consecutive downloads (default 500ms).
	Delay time.Duration `json:"delay" yaml:"delay" mapstructure:"delay"`

	// OutputDir is the destination directory for <documentId>.pdf files.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`
}

// Config groups all settings for one pipeline.
type Config struct {
	HTTP      HTTPConfig     `json:"http" yaml:"http" mapstructure:"http"`
	Endpoints Endpoints      `json:"endpoints" yaml:"endpoints" mapstructure:"endpoints"`
	Session   SessionConfig  `json:"session" yaml:"session" mapstructure:"session"`
	Search    SearchConfig   `json:"search" yaml:"search" mapstructure:"search"`
	Download  DownloadConfig `json:"download" yaml:"download" mapstructure:"download"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level" yaml:"log_level" mapstructure:"log_level"`

	// MetricsFile, when set, receives run metrics in the Prometheus text
	// format after each command.
	MetricsFile string `json:"metrics_file,omitempty" yaml:"metrics_file,omitempty" mapstructure:"metrics_file"`
}
