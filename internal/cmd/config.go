package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/uniq/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View uniq configuration",
	Long: `View uniq configuration.

Without arguments, displays the current configuration.
Use subcommands to locate or create a config file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/uniq/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

// maskedSecret hides all but the last four characters of an API key.
func maskedSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if _, err := config.Load(); err != nil {
		fmt.Fprintf(out, "Warning: configuration does not validate, uniq will refuse to start:\n%v\n\n", err)
	}

	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "Config file: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "Config file: (none - using defaults)\n")
	}
	fmt.Fprintln(out)

	settings := viper.AllSettings()
	if keys, ok := settings["api_keys"].(map[string]any); ok {
		for k, v := range keys {
			if s, ok := v.(string); ok {
				keys[k] = maskedSecret(s)
			}
		}
	}
	// The persistent --config flag is bound to viper but is not a setting.
	delete(settings, "config")

	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("rendering configuration: %w", err)
	}
	_, err = out.Write(data)
	return err
}

const defaultConfigFile = `# uniq configuration

# Keys forwarded to the collaborator process. ANTHROPIC_API_KEY and
# SEMANTIC_SCHOLAR_API_KEY in the environment work too.
api_keys:
  anthropic: ""
  semantic_scholar: ""

search:
  # Deduplicated papers kept across all queries
  max_papers: 500
  # max_results sent with each query
  results_per_query: 20
  # Publication year bounds (0 = unbounded)
  year_min: 2020
  year_max: 0
  prefer_open_access: true
  # Techniques pre-selected when extraction completes
  top_techniques: 10

generation:
  model: claude-sonnet-4-20250514
  max_tokens_per_variant: 8192
  # Variant branches are named <prefix>/variant-<n>-<slug>
  branch_prefix: uniq

benchmark:
  timeout_seconds: 300
  # Options: build_success, test_pass, runtime_ms, memory_mb
  metrics: [build_success, test_pass, runtime_ms, memory_mb]

collaborator:
  # Collaborator project root; launched as
  # <runner> run --project <dir> python -m <module> --port <N>
  dir: ./sidecar
  runner: uv
  module: src.server
  startup_timeout_seconds: 60
  poll_interval_ms: 250
  grace_delay_ms: 2000
  request_timeout_seconds: 120

logging:
  # Options: debug, info, warn, error
  level: warn
  # Empty means the user cache directory
  dir: ""
  max_size_mb: 10
  max_backups: 3

tui:
  # Built-in (default, monokai, dracula, nord), a custom theme from
  # ~/.config/uniq/themes, or a path to a theme file
  theme: default
  tick_interval_ms: 100
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	configDir := config.ConfigDir()
	configFile := config.ConfigFile()

	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s", configFile)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(configFile, []byte(defaultConfigFile), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(out, "Created config file at %s\n", configFile)
	fmt.Fprintln(out, "Edit this file to customize uniq. A running session picks up changes.")
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "Active config: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "Default path: %s (not created)\n", config.ConfigFile())
	}

	fmt.Fprintln(out, "\nSearch paths:")
	fmt.Fprintf(out, "  1. %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
	fmt.Fprintf(out, "  2. ./config.yaml (current directory)\n")
	fmt.Fprintln(out, "\nEnvironment variables: UNIQ_* (e.g., UNIQ_SEARCH_MAX_PAPERS)")
	return nil
}
