package action

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/tacogips/mkapp/internal/debug"
	"github.com/tacogips/mkapp/internal/scaffold"
)

// Step selects a lifecycle command of a scaffold.
type Step int

const (
	// Install is the dependency install step.
	Install Step = iota
	// Start is the dev-server start step.
	Start
)

// String returns the string representation of the step.
func (s Step) String() string {
	switch s {
	case Install:
		return "install"
	case Start:
		return "start"
	default:
		return "unknown"
	}
}

// Runner resolves and spawns lifecycle commands.
type Runner struct {
	Spawner Spawner
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
}

// NewRunner creates a Runner that spawns real processes with the invoking
// process's standard streams attached.
func NewRunner() *Runner {
	return &Runner{
		Spawner: NewExecSpawner(),
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

// Run resolves the command for step against data and starts it in dir.
// It returns a nil Action when the scaffold declares no such step or the
// command resolves to an empty vector.
func (r *Runner) Run(ctx context.Context, dir string, def *scaffold.Definition, data scaffold.Data, step Step) (*Action, error) {
	var decl scaffold.Command
	switch step {
	case Install:
		decl = def.Install
	case Start:
		decl = def.Start
	default:
		return nil, fmt.Errorf("unknown lifecycle step: %d", step)
	}

	argv, err := decl.Resolve(data)
	if err != nil {
		return nil, &SpawnError{Step: step, Command: decl.String(), Message: "failed to resolve command", Cause: err}
	}
	if len(argv) == 0 || argv[0] == "" {
		debug.Debug("[action] No %s command declared for %s", step, def.Name)
		return nil, nil
	}

	command := strings.Join(argv, " ")
	debug.Debug("[action] Spawning %s command in %s: %s", step, dir, command)

	proc, err := r.Spawner.Spawn(ctx, argv[0], argv[1:], SpawnOpts{
		Dir:    dir,
		Stdin:  r.Stdin,
		Stdout: r.Stdout,
		Stderr: r.Stderr,
	})
	if err != nil {
		return nil, &SpawnError{Step: step, Command: command, Message: "failed to start command", Cause: err}
	}

	return &Action{step: step, command: command, proc: proc}, nil
}

// Action is a handle on a spawned lifecycle command.
type Action struct {
	step    Step
	command string
	proc    Process

	once sync.Once
	err  error
}

// Command returns the joined command string for display.
func (a *Action) Command() string {
	return a.command
}

// Step returns the lifecycle step the action runs.
func (a *Action) Step() Step {
	return a.step
}

// Wait blocks until the process exits and returns the command string.
// Calling Wait again returns the same result without waiting.
func (a *Action) Wait() (string, error) {
	a.once.Do(func() {
		if err := a.proc.Wait(); err != nil {
			a.err = &SpawnError{Step: a.step, Command: a.command, Message: "command did not complete", Cause: err}
		}
		debug.Debug("[action] %s command exited: %s (err=%v)", a.step, a.command, a.err)
	})
	return a.command, a.err
}

// SpawnError reports a lifecycle command that could not be resolved,
// started or completed.
type SpawnError struct {
	// Step is the lifecycle step.
	Step Step
	// Command is the command string.
	Command string
	// Message is the human-readable error message.
	Message string
	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *SpawnError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s command '%s': %s: %v", e.Step, e.Command, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s command '%s': %s", e.Step, e.Command, e.Message)
}

// Unwrap returns the underlying cause for error wrapping.
func (e *SpawnError) Unwrap() error {
	return e.Cause
}
