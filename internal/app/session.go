package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Iron-Ham/uniq/internal/action"
	"github.com/Iron-Ham/uniq/internal/bus"
	"github.com/Iron-Ham/uniq/internal/collaborator"
	"github.com/Iron-Ham/uniq/internal/config"
	"github.com/Iron-Ham/uniq/internal/errors"
	"github.com/Iron-Ham/uniq/internal/fanout"
	"github.com/Iron-Ham/uniq/internal/logging"
)

// Collaborator is the lifecycle surface of *collaborator.Supervisor.
type Collaborator interface {
	Start(ctx context.Context) (collaborator.Handle, error)
	Shutdown(ctx context.Context) error
	Kill()
}

var _ Collaborator = (*collaborator.Supervisor)(nil)

// SessionOptions configures a Session.
type SessionOptions struct {
	Config      *config.Config
	Logger      *logging.Logger
	ProjectPath string
	Description string
	// WatchConfig reloads the config file when it changes on disk.
	WatchConfig bool
	// Collaborator replaces the real supervisor; used by tests.
	Collaborator Collaborator
}

// Session is one interactive run: the bus, the reducer, the collaborator
// process and the ticker. The UI drains Bus and feeds every action to
// App.Process on its own goroutine.
type Session struct {
	ID  string
	App *App
	Bus *bus.Bus

	cfg    *config.Config
	logger *logging.Logger
	collab Collaborator
	output *logging.RotatingWriter

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	closeOnce sync.Once
	closeErr  error
}

// NewSession builds a session. Nothing runs until Start.
func NewSession(opts SessionOptions) (*Session, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}

	id := uuid.NewString()[:8]
	s := &Session{
		ID:     id,
		Bus:    bus.New(),
		cfg:    cfg,
		logger: logger.WithRun(id),
		collab: opts.Collaborator,
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())

	if s.collab == nil {
		sup, out, err := NewSupervisor(cfg, s.logger)
		if err != nil {
			s.cancel()
			return nil, err
		}
		s.collab = sup
		s.output = out
	}

	s.App = New(NewState(opts.ProjectPath, opts.Description), cfg, s.connect, s.logger)

	if opts.WatchConfig {
		config.Watch(func(c *config.Config, err error) {
			if err != nil {
				s.logger.Warn("config reload rejected", "error", err.Error())
				s.Bus.Send(action.SetStatus{Message: "Config reload failed: " + errors.UserMessage(err)})
				return
			}
			s.Bus.Send(action.ConfigReloaded{Config: c})
		})
	}
	return s, nil
}

// NewSupervisor builds the real supervisor with collaborator output going
// to a rotated log file next to the application log. The caller closes the
// returned writer once the supervisor has stopped.
func NewSupervisor(cfg *config.Config, logger *logging.Logger) (*collaborator.Supervisor, *logging.RotatingWriter, error) {
	logDir := cfg.Logging.LogDir()
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, nil, errors.NewUniqError(errors.CategoryIo, "cannot create log directory", err)
	}
	out, err := logging.NewRotatingWriter(filepath.Join(logDir, logging.CollaboratorLogFileName), logging.RotationConfig{
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
	if err != nil {
		return nil, nil, errors.NewUniqError(errors.CategoryIo, "cannot open collaborator log", err)
	}

	c := cfg.Collaborator
	opts := collaborator.Options{
		Dir:            c.Dir,
		Runner:         c.Runner,
		Module:         c.Module,
		Env:            apiKeyEnv(cfg.APIKeys),
		StartupTimeout: c.StartupTimeout(),
		PollInterval:   c.PollInterval(),
		GraceDelay:     c.GraceDelay(),
		Output: func(stream, line string) {
			_ = out.WriteLine(stream, line)
		},
	}
	return collaborator.NewSupervisor(opts, logger), out, nil
}

// apiKeyEnv passes configured keys to the collaborator. Empty keys are left
// out so the collaborator's own environment still applies.
func apiKeyEnv(keys config.APIKeysConfig) []string {
	var env []string
	if keys.Anthropic != "" {
		env = append(env, "ANTHROPIC_API_KEY="+keys.Anthropic)
	}
	if keys.SemanticScholar != "" {
		env = append(env, "SEMANTIC_SCHOLAR_API_KEY="+keys.SemanticScholar)
	}
	return env
}

// connect is the reducer's Connector.
func (s *Session) connect(h collaborator.Handle) Effects {
	client := collaborator.NewClient(h.BaseURL, collaborator.WithTimeout(s.cfg.Collaborator.RequestTimeout()))
	return fanout.New(s.ctx, client, s.Bus.Sender(), s.logger)
}

// Start launches the collaborator and the ticker in the background. Their
// outcomes arrive on the bus.
func (s *Session) Start() {
	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		h, err := s.collab.Start(s.ctx)
		if err != nil {
			s.logger.Error("collaborator startup failed", "error", err.Error())
			s.Bus.Send(action.CollaboratorFailed{Err: errors.UserMessage(err)})
			return
		}
		s.Bus.Send(action.CollaboratorReady{Handle: h})
	}()
	go func() {
		defer s.wg.Done()
		s.tick(s.cfg.TUI.TickInterval())
	}()
}

func (s *Session) tick(every time.Duration) {
	if every <= 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-t.C:
			s.Bus.Send(action.Tick{})
		}
	}
}

// Step blocks for the next action and applies it. It reports false once
// the bus is closed and drained, or when ctx ends.
func (s *Session) Step(ctx context.Context) (action.Action, bool) {
	a, ok := s.Bus.Next(ctx)
	if !ok {
		return nil, false
	}
	s.App.Process(a)
	return a, true
}

// Kill force-stops the collaborator without waiting. It is safe to call
// any number of times, before or after Close.
func (s *Session) Kill() { s.collab.Kill() }

// Close cancels in-flight work, stops the collaborator and closes the bus.
// It is safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		defer s.collab.Kill()

		s.cancel()

		grace := s.cfg.Collaborator.GraceDelay()
		ctx, cancel := context.WithTimeout(context.Background(), grace+5*time.Second)
		defer cancel()
		if err := s.collab.Shutdown(ctx); err != nil && !errors.Is(err, errors.ErrNotRunning) {
			s.closeErr = fmt.Errorf("collaborator shutdown: %w", err)
		}

		s.wg.Wait()
		s.Bus.Close()
		if s.output != nil {
			if err := s.output.Close(); err != nil && s.closeErr == nil {
				s.closeErr = err
			}
		}
		s.logger.Info("session closed")
	})
	return s.closeErr
}
