package collaborator

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/Iron-Ham/uniq/internal/errors"
)

// LineSink receives each line the collaborator writes, tagged with the
// stream ("stdout" or "stderr") it came from. It may be called from two
// goroutines at once.
type LineSink func(stream, line string)

// Spec describes how to launch the collaborator.
type Spec struct {
	// Dir is the working directory; the collaborator's own project root.
	Dir  string
	Name string
	Args []string
	// Env is appended to the current environment.
	Env []string
	// Output receives both output streams line by line. Nil discards them.
	Output LineSink
}

// Process is a launched collaborator.
//
// Implementations must make Kill safe to call more than once and from a
// goroutine other than the one that launched the process.
type Process interface {
	// PID returns the OS process id.
	PID() int

	// Exited reports whether the process has terminated.
	Exited() bool

	// Done is closed once the process has terminated.
	Done() <-chan struct{}

	// Kill forcibly terminates the process. Killing an exited process is
	// not an error.
	Kill() error
}

// Launcher starts processes.
type Launcher interface {
	Launch(ctx context.Context, spec Spec) (Process, error)
}

// ExecLauncher launches real OS processes.
type ExecLauncher struct{}

// Launch starts spec and drains its output into spec.Output until exit.
func (ExecLauncher) Launch(ctx context.Context, spec Spec) (Process, error) {
	cmd := exec.Command(spec.Name, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.Env = append(os.Environ(), spec.Env...)
	configureProcAttr(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", spec.Name, err)
	}

	p := &execProcess{cmd: cmd, done: make(chan struct{})}

	var drain sync.WaitGroup
	drain.Add(2)
	go drainLines(&drain, stdout, "stdout", spec.Output)
	go drainLines(&drain, stderr, "stderr", spec.Output)

	// Wait closes the pipes, so it may only run after both drains hit EOF.
	go func() {
		drain.Wait()
		p.waitErr = cmd.Wait()
		close(p.done)
	}()

	return p, nil
}

func drainLines(wg *sync.WaitGroup, r io.Reader, stream string, sink LineSink) {
	defer wg.Done()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if sink != nil {
			sink(stream, scanner.Text())
		}
	}
	// Keep reading after an oversized line so the child never blocks on a
	// full pipe.
	_, _ = io.Copy(io.Discard, r)
}

type execProcess struct {
	cmd     *exec.Cmd
	done    chan struct{}
	waitErr error
}

func (p *execProcess) PID() int {
	return p.cmd.Process.Pid
}

func (p *execProcess) Exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

func (p *execProcess) Done() <-chan struct{} {
	return p.done
}

func (p *execProcess) Kill() error {
	if p.Exited() {
		return nil
	}
	err := killTree(p.cmd)
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}
