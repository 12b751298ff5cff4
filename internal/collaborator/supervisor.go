// Package collaborator owns the external compute process: launching it,
// waiting for it to become healthy, shutting it down, and the HTTP client
// used to talk to it in between.
package collaborator

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/Iron-Ham/uniq/internal/errors"
	"github.com/Iron-Ham/uniq/internal/logging"
)

// State is the supervisor's lifecycle state.
type State int

const (
	StateNotStarted State = iota
	StateStarting
	StateHealthy
	StateShuttingDown
	StateStopped
	// StateFailed is only reachable from StateStarting.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not started"
	case StateStarting:
		return "starting"
	case StateHealthy:
		return "healthy"
	case StateShuttingDown:
		return "shutting down"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// live states hold a process
func (s State) live() bool {
	return s == StateStarting || s == StateHealthy || s == StateShuttingDown
}

// Handle identifies the running collaborator.
type Handle struct {
	PID     int
	Port    int
	BaseURL string
}

// Options configures the supervisor.
type Options struct {
	// Dir is the collaborator project root.
	Dir string
	// Runner and Module form the launch command:
	// <runner> run --project <dir> python -m <module> --port <N>
	Runner string
	Module string
	// Env is added to the collaborator environment (API keys).
	Env []string

	StartupTimeout time.Duration
	PollInterval   time.Duration
	GraceDelay     time.Duration

	// Output receives collaborator stdout/stderr lines.
	Output LineSink
}

// DefaultOptions mirrors the built-in configuration defaults.
func DefaultOptions(dir string) Options {
	return Options{
		Dir:            dir,
		Runner:         "uv",
		Module:         "src.server",
		StartupTimeout: 60 * time.Second,
		PollInterval:   250 * time.Millisecond,
		GraceDelay:     2 * time.Second,
	}
}

// clock abstracts time so startup deadlines can be tested exactly.
type clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration)
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Supervisor owns the collaborator process. At most one process is live at
// a time; Start, Shutdown and Kill are the only code that touches it.
type Supervisor struct {
	opts   Options
	logger *logging.Logger

	launcher  Launcher
	allocPort func() (int, error)
	probe     func(ctx context.Context, baseURL string) error
	goodbye   func(ctx context.Context, baseURL string) error
	clock     clock

	mu     sync.Mutex
	state  State
	proc   Process
	handle Handle
}

// NewSupervisor creates a supervisor that launches real processes.
func NewSupervisor(opts Options, logger *logging.Logger) *Supervisor {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Supervisor{
		opts:      opts,
		logger:    logger.WithPhase("collaborator"),
		launcher:  ExecLauncher{},
		allocPort: FreePort,
		probe:     probeHealth,
		goodbye:   requestShutdown,
		clock:     realClock{},
	}
}

func probeHealth(ctx context.Context, baseURL string) error {
	_, err := NewClient(baseURL).Health(ctx)
	return err
}

func requestShutdown(ctx context.Context, baseURL string) error {
	return NewClient(baseURL).Shutdown(ctx)
}

// State returns the current lifecycle state.
func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Handle returns the live collaborator's identity. It reports false when no
// process is live.
func (s *Supervisor) Handle() (Handle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.proc == nil {
		return Handle{}, false
	}
	return s.handle, true
}

// Command returns the launch command for port.
func (s *Supervisor) Command(port int) Spec {
	return Spec{
		Dir:  s.opts.Dir,
		Name: s.opts.Runner,
		Args: []string{
			"run", "--project", s.opts.Dir,
			"python", "-m", s.opts.Module,
			"--port", strconv.Itoa(port),
		},
		Env:    s.opts.Env,
		Output: s.opts.Output,
	}
}

// Start launches the collaborator and blocks until it answers the health
// endpoint or StartupTimeout elapses. It returns ErrAlreadyRunning when a
// process is already live.
func (s *Supervisor) Start(ctx context.Context) (Handle, error) {
	s.mu.Lock()
	if s.state.live() {
		s.mu.Unlock()
		return Handle{}, errors.NewUniqError(errors.CategoryCollaboratorCommunication,
			"start refused", errors.ErrAlreadyRunning)
	}
	s.state = StateStarting
	s.mu.Unlock()

	port, err := s.allocPort()
	if err != nil {
		return Handle{}, s.fail(nil, errors.NewUniqError(errors.CategoryIo, "no free loopback port", err))
	}

	spec := s.Command(port)
	proc, err := s.launcher.Launch(ctx, spec)
	if err != nil {
		return Handle{}, s.fail(nil, errors.NewUniqError(errors.CategoryCollaboratorCommunication,
			fmt.Sprintf("could not launch %q; is it installed and on PATH?", spec.Name), err))
	}

	handle := Handle{PID: proc.PID(), Port: port, BaseURL: BaseURL(port)}
	s.mu.Lock()
	s.proc = proc
	s.handle = handle
	s.mu.Unlock()

	s.logger.Info("collaborator launched", "pid", handle.PID, "port", port, "dir", spec.Dir)

	if err := s.awaitHealthy(ctx, proc, handle.BaseURL); err != nil {
		return Handle{}, s.fail(proc, err)
	}

	s.mu.Lock()
	s.state = StateHealthy
	s.mu.Unlock()

	s.logger.Info("collaborator healthy", "pid", handle.PID, "base_url", handle.BaseURL)
	return handle, nil
}

// awaitHealthy polls until the first successful probe. Refused connections
// and non-2xx answers both mean "not ready yet".
func (s *Supervisor) awaitHealthy(ctx context.Context, proc Process, baseURL string) error {
	started := s.clock.Now()
	deadline := started.Add(s.opts.StartupTimeout)
	attempts := 0

	for {
		attempts++
		// A probe that hangs must not carry Start past the deadline.
		timeout := min(s.opts.PollInterval*4, deadline.Sub(s.clock.Now()))
		probeCtx, cancel := context.WithTimeout(ctx, timeout)
		lastErr := s.probe(probeCtx, baseURL)
		cancel()
		if lastErr == nil {
			s.logger.Debug("health probe succeeded", "attempts", attempts,
				"elapsed_ms", s.clock.Now().Sub(started).Milliseconds())
			return nil
		}

		if proc.Exited() {
			return errors.NewUniqError(errors.CategoryCollaboratorCommunication,
				fmt.Sprintf("collaborator exited during startup; see %s for its output and check that %s contains the server project",
					logging.CollaboratorLogFileName, s.opts.Dir), lastErr).WithSeverity(errors.SeverityCritical)
		}
		if err := ctx.Err(); err != nil {
			return errors.NewUniqError(errors.CategoryCollaboratorCommunication, "startup canceled", err)
		}

		now := s.clock.Now()
		if !now.Before(deadline) {
			return errors.NewUniqError(errors.CategoryCollaboratorCommunication,
				fmt.Sprintf("collaborator did not become healthy within %s; install Python and %s, then check %s",
					s.opts.StartupTimeout, s.opts.Runner, s.opts.Dir),
				fmt.Errorf("%w: %w", errors.ErrStartupTimeout, errors.NewTimeoutError("health probe", s.opts.StartupTimeout).WithCause(lastErr))).
				WithSeverity(errors.SeverityCritical)
		}

		s.clock.Sleep(ctx, min(s.opts.PollInterval, deadline.Sub(now)))
	}
}

// fail kills any launched process and parks the supervisor in StateFailed.
func (s *Supervisor) fail(proc Process, err error) error {
	if proc != nil {
		if kerr := proc.Kill(); kerr != nil {
			s.logger.Warn("kill after failed startup", "error", kerr.Error())
		}
	}
	s.mu.Lock()
	s.state = StateFailed
	s.proc = nil
	s.handle = Handle{}
	s.mu.Unlock()

	s.logger.Error("collaborator startup failed", "error", err.Error())
	return err
}

// Shutdown stops the collaborator. All three steps always run: the graceful
// request, the grace delay, then the exit check with a forced kill if the
// process is still alive. A failed request does not skip the later steps.
// Without a live process it returns ErrNotRunning.
func (s *Supervisor) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	proc, handle := s.proc, s.handle
	if proc == nil {
		if s.state != StateFailed {
			s.state = StateStopped
		}
		s.mu.Unlock()
		return errors.ErrNotRunning
	}
	s.state = StateShuttingDown
	s.mu.Unlock()

	if err := s.goodbye(ctx, handle.BaseURL); err != nil {
		s.logger.Debug("graceful shutdown request failed (process may have exited)", "error", err.Error())
	}

	s.clock.Sleep(ctx, s.opts.GraceDelay)

	var killErr error
	if !proc.Exited() {
		s.logger.Warn("collaborator still running after grace delay, killing", "pid", handle.PID)
		killErr = proc.Kill()
	}

	s.mu.Lock()
	s.proc = nil
	s.handle = Handle{}
	s.state = StateStopped
	s.mu.Unlock()

	s.logger.Info("collaborator stopped", "pid", handle.PID)
	if killErr != nil {
		return errors.NewUniqError(errors.CategoryCollaboratorCommunication, "force kill failed", killErr)
	}
	return nil
}

// Kill is the synchronous safety net for exit paths that skipped Shutdown.
// It is idempotent and safe to defer.
func (s *Supervisor) Kill() {
	s.mu.Lock()
	proc := s.proc
	s.proc = nil
	s.handle = Handle{}
	if proc != nil {
		s.state = StateStopped
	}
	s.mu.Unlock()

	if proc == nil {
		return
	}
	if err := proc.Kill(); err != nil {
		s.logger.Warn("safety-net kill failed", "error", err.Error())
	}
}
