package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Iron-Ham/uniq/internal/app"
	"github.com/Iron-Ham/uniq/internal/config"
	"github.com/Iron-Ham/uniq/internal/errors"
	"github.com/Iron-Ham/uniq/internal/logging"
	"github.com/Iron-Ham/uniq/internal/tui"
	"github.com/Iron-Ham/uniq/internal/tui/styles"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the interactive pipeline",
	Long: `Start the interactive pipeline: intake, research, techniques, build and
benchmark. The collaborator process is started in the background and stopped
when you quit.

Examples:
  uniq run -p ./myproject -d "make the ranking faster"
  uniq -vv                  # debug logging to the log directory`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	addRunFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("project", "p", "", "project directory to improve (default: current directory)")
	cmd.Flags().StringP("description", "d", "", "what the project should do better")
	cmd.Flags().String("collaborator-dir", "", "collaborator project root (overrides collaborator.dir)")
	cmd.Flags().CountP("verbose", "v", "increase log verbosity (-v info, -vv debug)")
}

// runOptions are the run flags after defaults are applied.
type runOptions struct {
	project         string
	description     string
	collaboratorDir string
	verbosity       int
}

func runOptionsFromFlags(cmd *cobra.Command) (runOptions, error) {
	var opts runOptions
	flags := cmd.Flags()
	opts.project, _ = flags.GetString("project")
	opts.description, _ = flags.GetString("description")
	opts.collaboratorDir, _ = flags.GetString("collaborator-dir")
	opts.verbosity, _ = flags.GetCount("verbose")

	if opts.project == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return opts, fmt.Errorf("failed to get current directory: %w", err)
		}
		opts.project = cwd
	}
	return opts, nil
}

// loadConfig reads the validated configuration and applies flag overrides.
func loadConfig(opts runOptions) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	if opts.collaboratorDir != "" {
		cfg.Collaborator.Dir = opts.collaboratorDir
	}
	return cfg, nil
}

// logLevel prefers -v over logging.level.
func logLevel(cfg *config.Config, verbosity int) string {
	if verbosity > 0 {
		return logging.LevelForVerbosity(verbosity)
	}
	return logging.ParseLevel(cfg.Logging.Level)
}

func themesDir() string {
	return filepath.Join(config.ConfigDir(), "themes")
}

func runRun(cmd *cobra.Command, args []string) error {
	opts, err := runOptionsFromFlags(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("uniq needs an interactive terminal\n\nRun 'uniq doctor' to check the collaborator without one")
	}

	logger, err := logging.NewLogger(cfg.Logging.LogDir(), logLevel(cfg, opts.verbosity))
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Close() }()

	loaded, themeErrs := styles.DiscoverCustomThemes(themesDir())
	for _, err := range themeErrs {
		logger.Warn("custom theme skipped", "error", err.Error())
	}
	if len(loaded) > 0 {
		logger.Debug("custom themes loaded", "themes", loaded)
	}

	session, err := app.NewSession(app.SessionOptions{
		Config:      cfg,
		Logger:      logger,
		ProjectPath: opts.project,
		Description: opts.description,
		WatchConfig: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	logger.Info("session started", "run_id", session.ID, "project", opts.project)

	if err := tui.Run(cmd.Context(), session); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
