package tui

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/uniq/internal/action"
	"github.com/Iron-Ham/uniq/internal/app"
	"github.com/Iron-Ham/uniq/internal/errors"
)

// Run starts the session and blocks until the user quits. The session is
// closed before Run returns.
func Run(ctx context.Context, session *app.Session) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	session.Start()
	// Safety net for panics; Close below does the graceful stop.
	defer session.Kill()

	program := tea.NewProgram(
		NewModel(ctx, session),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	// Signals become a Quit action so the collaborator is shut down the
	// same way as a keypress quit.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		select {
		case <-sigChan:
			session.Bus.Send(action.Quit{})
		case <-ctx.Done():
		}
	}()

	_, runErr := program.Run()
	signal.Stop(sigChan)

	if errors.Is(runErr, tea.ErrProgramKilled) && ctx.Err() != nil {
		runErr = nil
	}
	return errors.Join(runErr, session.Close())
}
