package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete uniq configuration
type Config struct {
	APIKeys      APIKeysConfig      `mapstructure:"api_keys"`
	Search       SearchConfig       `mapstructure:"search"`
	Generation   GenerationConfig   `mapstructure:"generation"`
	Benchmark    BenchmarkConfig    `mapstructure:"benchmark"`
	Collaborator CollaboratorConfig `mapstructure:"collaborator"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	TUI          TUIConfig          `mapstructure:"tui"`
}

// APIKeysConfig holds credentials forwarded to the collaborator process.
// uniq itself never calls these services.
type APIKeysConfig struct {
	Anthropic       string `mapstructure:"anthropic"`
	SemanticScholar string `mapstructure:"semantic_scholar"`
}

// SearchConfig controls literature search
type SearchConfig struct {
	// MaxPapers caps the deduplicated paper list kept after all queries
	MaxPapers int `mapstructure:"max_papers"`
	// ResultsPerQuery is the max_results sent with each search-papers call
	ResultsPerQuery int `mapstructure:"results_per_query"`
	// YearMin and YearMax bound publication year (0 = unbounded)
	YearMin int `mapstructure:"year_min"`
	YearMax int `mapstructure:"year_max"`
	// PreferOpenAccess asks the collaborator to rank papers with PDFs first
	PreferOpenAccess bool `mapstructure:"prefer_open_access"`
	// TopTechniques pre-selects this many of the most relevant techniques
	TopTechniques int `mapstructure:"top_techniques"`
}

// GenerationConfig controls variant generation
type GenerationConfig struct {
	Model               string `mapstructure:"model"`
	MaxTokensPerVariant int    `mapstructure:"max_tokens_per_variant"`
	// BranchPrefix is prepended to every variant branch name
	BranchPrefix string `mapstructure:"branch_prefix"`
}

// BenchmarkConfig controls benchmark runs
type BenchmarkConfig struct {
	TimeoutSeconds int      `mapstructure:"timeout_seconds"`
	Metrics        []string `mapstructure:"metrics"`
}

// CollaboratorConfig controls the collaborator process and its HTTP client
type CollaboratorConfig struct {
	// Dir is the collaborator project root; the process runs with it as cwd
	Dir string `mapstructure:"dir"`
	// Runner is the package runner used to launch the server module
	Runner string `mapstructure:"runner"`
	// Module is the python module started by the runner
	Module                string `mapstructure:"module"`
	StartupTimeoutSeconds int    `mapstructure:"startup_timeout_seconds"`
	PollIntervalMs        int    `mapstructure:"poll_interval_ms"`
	GraceDelayMs          int    `mapstructure:"grace_delay_ms"`
	RequestTimeoutSeconds int    `mapstructure:"request_timeout_seconds"`
}

// LoggingConfig controls debug logging
type LoggingConfig struct {
	// Level is one of debug, info, warn, error
	Level string `mapstructure:"level"`
	// Dir overrides the log directory (default: CacheDir())
	Dir        string `mapstructure:"dir"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// TUIConfig controls the terminal UI
type TUIConfig struct {
	// Theme is a built-in theme name or a path to a YAML theme file
	Theme          string `mapstructure:"theme"`
	TickIntervalMs int    `mapstructure:"tick_interval_ms"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Search: SearchConfig{
			MaxPapers:        500,
			ResultsPerQuery:  20,
			YearMin:          2020,
			YearMax:          0,
			PreferOpenAccess: true,
			TopTechniques:    10,
		},
		Generation: GenerationConfig{
			Model:               "claude-sonnet-4-20250514",
			MaxTokensPerVariant: 8192,
			BranchPrefix:        "uniq",
		},
		Benchmark: BenchmarkConfig{
			TimeoutSeconds: 300,
			Metrics:        []string{"build_success", "test_pass", "runtime_ms", "memory_mb"},
		},
		Collaborator: CollaboratorConfig{
			Dir:                   "./sidecar",
			Runner:                "uv",
			Module:                "src.server",
			StartupTimeoutSeconds: 60,
			PollIntervalMs:        250,
			GraceDelayMs:          2000,
			RequestTimeoutSeconds: 120,
		},
		Logging: LoggingConfig{
			Level:      "warn",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		TUI: TUIConfig{
			Theme:          "default",
			TickIntervalMs: 100,
		},
	}
}

// StartupTimeout returns the collaborator health deadline
func (c *CollaboratorConfig) StartupTimeout() time.Duration {
	return time.Duration(c.StartupTimeoutSeconds) * time.Second
}

// PollInterval returns the health poll interval
func (c *CollaboratorConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// GraceDelay returns the wait between the shutdown request and the kill check
func (c *CollaboratorConfig) GraceDelay() time.Duration {
	return time.Duration(c.GraceDelayMs) * time.Millisecond
}

// RequestTimeout returns the per-request HTTP timeout
func (c *CollaboratorConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// TickInterval returns the TUI animation tick
func (c *TUIConfig) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMs) * time.Millisecond
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("api_keys.anthropic", defaults.APIKeys.Anthropic)
	viper.SetDefault("api_keys.semantic_scholar", defaults.APIKeys.SemanticScholar)

	viper.SetDefault("search.max_papers", defaults.Search.MaxPapers)
	viper.SetDefault("search.results_per_query", defaults.Search.ResultsPerQuery)
	viper.SetDefault("search.year_min", defaults.Search.YearMin)
	viper.SetDefault("search.year_max", defaults.Search.YearMax)
	viper.SetDefault("search.prefer_open_access", defaults.Search.PreferOpenAccess)
	viper.SetDefault("search.top_techniques", defaults.Search.TopTechniques)

	viper.SetDefault("generation.model", defaults.Generation.Model)
	viper.SetDefault("generation.max_tokens_per_variant", defaults.Generation.MaxTokensPerVariant)
	viper.SetDefault("generation.branch_prefix", defaults.Generation.BranchPrefix)

	viper.SetDefault("benchmark.timeout_seconds", defaults.Benchmark.TimeoutSeconds)
	viper.SetDefault("benchmark.metrics", defaults.Benchmark.Metrics)

	viper.SetDefault("collaborator.dir", defaults.Collaborator.Dir)
	viper.SetDefault("collaborator.runner", defaults.Collaborator.Runner)
	viper.SetDefault("collaborator.module", defaults.Collaborator.Module)
	viper.SetDefault("collaborator.startup_timeout_seconds", defaults.Collaborator.StartupTimeoutSeconds)
	viper.SetDefault("collaborator.poll_interval_ms", defaults.Collaborator.PollIntervalMs)
	viper.SetDefault("collaborator.grace_delay_ms", defaults.Collaborator.GraceDelayMs)
	viper.SetDefault("collaborator.request_timeout_seconds", defaults.Collaborator.RequestTimeoutSeconds)

	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)

	viper.SetDefault("tui.theme", defaults.TUI.Theme)
	viper.SetDefault("tui.tick_interval_ms", defaults.TUI.TickIntervalMs)
}

// BindEnv lets the conventional provider variables fill the API keys when
// the UNIQ_-prefixed ones are unset.
func BindEnv() {
	_ = viper.BindEnv("api_keys.anthropic", "UNIQ_API_KEYS_ANTHROPIC", "ANTHROPIC_API_KEY")
	_ = viper.BindEnv("api_keys.semantic_scholar", "UNIQ_API_KEYS_SEMANTIC_SCHOLAR", "SEMANTIC_SCHOLAR_API_KEY")
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration, falling back to defaults when the
// loaded values do not validate.
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "uniq")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".uniq"
	}
	return filepath.Join(home, ".config", "uniq")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// CacheDir returns the directory holding logs
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "uniq")
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(".uniq", "cache")
	}
	return filepath.Join(dir, "uniq")
}

// LogDir resolves the effective log directory
func (c *LoggingConfig) LogDir() string {
	if c.Dir != "" {
		return c.Dir
	}
	return CacheDir()
}
