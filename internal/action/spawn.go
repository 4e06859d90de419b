// Package action runs a scaffold's post-render lifecycle commands.
package action

import (
	"context"
	"io"
	"os"
	"os/exec"
	"time"
)

// SpawnOpts holds the parameters for starting a child process.
type SpawnOpts struct {
	Dir    string // working directory
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Process is a started child process.
type Process interface {
	// Wait blocks until the process exits.
	Wait() error
}

// Spawner starts external commands. Implementations must be safe for
// stubbing in tests.
type Spawner interface {
	// Spawn starts name with args and returns without waiting for it.
	// An error means the process could not be started (e.g. executable not found).
	Spawn(ctx context.Context, name string, args []string, opts SpawnOpts) (Process, error)
}

// ExecSpawner is the production Spawner using os/exec.
type ExecSpawner struct {
	// GracePeriod is how long a cancelled process gets between the interrupt
	// signal and being killed.
	GracePeriod time.Duration
}

// NewExecSpawner creates an ExecSpawner.
func NewExecSpawner() *ExecSpawner {
	return &ExecSpawner{GracePeriod: 5 * time.Second}
}

// Spawn starts the command with the given stdio attached directly.
func (s *ExecSpawner) Spawn(ctx context.Context, name string, args []string, opts SpawnOpts) (Process, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = opts.Dir
	cmd.Stdin = opts.Stdin
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr

	// Cancellation interrupts; the process is killed after GracePeriod.
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = s.GracePeriod

	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return cmd, nil
}
