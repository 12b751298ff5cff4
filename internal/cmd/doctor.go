package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/uniq/internal/app"
	"github.com/Iron-Ham/uniq/internal/collaborator"
	"github.com/Iron-Ham/uniq/internal/errors"
	"github.com/Iron-Ham/uniq/internal/logging"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the collaborator starts and answers",
	Long: `Start the collaborator without the TUI, query its health endpoint and shut
it down again. Collaborator output is written to collaborator.log in the log
directory.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	doctorCmd.Flags().String("collaborator-dir", "", "collaborator project root (overrides collaborator.dir)")
	doctorCmd.Flags().CountP("verbose", "v", "log to stderr (-v info, -vv debug)")
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("collaborator-dir")
	verbosity, _ := cmd.Flags().GetCount("verbose")

	cfg, err := loadConfig(runOptions{collaboratorDir: dir})
	if err != nil {
		return err
	}

	logger := logging.NopLogger()
	if verbosity > 0 {
		logger = logging.NewWithWriter(cmd.ErrOrStderr(), logging.LevelForVerbosity(verbosity))
	}

	sup, output, err := app.NewSupervisor(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = output.Close() }()
	defer sup.Kill()

	out := cmd.OutOrStdout()
	spec := sup.Command(0)
	fmt.Fprintf(out, "Collaborator: %s %s (in %s)\n", spec.Name, strings.Join(spec.Args[:len(spec.Args)-2], " "), spec.Dir)
	fmt.Fprintf(out, "Output log:   %s\n\n", output.FilePath())

	ctx := cmd.Context()
	began := time.Now()
	h, err := sup.Start(ctx)
	if err != nil {
		fmt.Fprintf(out, "✗ startup failed: %s\n", errors.UserMessage(err))
		return err
	}
	fmt.Fprintf(out, "✓ started (pid %d, port %d) in %s\n", h.PID, h.Port, time.Since(began).Round(time.Millisecond))

	client := collaborator.NewClient(h.BaseURL, collaborator.WithTimeout(cfg.Collaborator.RequestTimeout()))
	health, healthErr := client.Health(ctx)
	if healthErr != nil {
		fmt.Fprintf(out, "✗ health check failed: %s\n", errors.UserMessage(healthErr))
	} else {
		fmt.Fprintf(out, "✓ health: %s (version %s)\n", health.Status, health.Version)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Collaborator.GraceDelay()+5*time.Second)
	defer cancel()
	if err := sup.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(out, "✗ shutdown: %s\n", errors.UserMessage(err))
		return errors.Join(healthErr, err)
	}
	fmt.Fprintln(out, "✓ stopped")
	return healthErr
}
