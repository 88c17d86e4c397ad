// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/podenv/podenv/internal/render"
	"github.com/podenv/podenv/pkg/types"
)

// DefaultGracePeriod is how long Run waits for the runtime to exit after the
// container was asked to stop.
const DefaultGracePeriod = 10 * time.Second

// ErrExecutionFailed is the sentinel error wrapped by ExecutionError.
var ErrExecutionFailed = errors.New("execution failed")

type (
	// ExecCommandFunc is the function signature for creating exec.Cmd.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// Killer stops the container called name.
	Killer func(ctx context.Context, name string) error

	// Runner executes rendered command lines.
	Runner struct {
		programs    map[render.Target]string
		killers     map[render.Target]Killer
		execCommand ExecCommandFunc
		grace       time.Duration
		stdin       io.Reader
		stdout      io.Writer
		stderr      io.Writer
	}

	// Option configures a Runner.
	Option func(*Runner)

	// ExecutionError is returned when the runtime program could not be run
	// at all. A runtime that starts and exits non-zero is not an error.
	ExecutionError struct {
		Program string
		Err     error
	}
)

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	return fmt.Sprintf("failed to execute %s: %v", e.Program, e.Err)
}

// Unwrap returns ErrExecutionFailed and the underlying cause.
func (e *ExecutionError) Unwrap() []error { return []error{ErrExecutionFailed, e.Err} }

// WithProgram sets the binary executed for target.
func WithProgram(target render.Target, program string) Option {
	return func(r *Runner) {
		if program != "" {
			r.programs[target] = program
		}
	}
}

// WithKiller sets how a container on target is stopped on interrupt.
func WithKiller(target render.Target, k Killer) Option {
	return func(r *Runner) { r.killers[target] = k }
}

// WithExecCommand sets a custom exec command function for testing.
func WithExecCommand(fn ExecCommandFunc) Option {
	return func(r *Runner) { r.execCommand = fn }
}

// WithGracePeriod sets how long to wait for the runtime after a kill.
func WithGracePeriod(d time.Duration) Option {
	return func(r *Runner) { r.grace = d }
}

// WithStdio sets the streams passed to the runtime.
func WithStdio(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(r *Runner) {
		r.stdin = stdin
		r.stdout = stdout
		r.stderr = stderr
	}
}

// New returns a Runner using the process's standard streams.
func New(opts ...Option) *Runner {
	r := &Runner{
		programs:    make(map[render.Target]string),
		killers:     make(map[render.Target]Killer),
		execCommand: exec.CommandContext,
		grace:       DefaultGracePeriod,
		stdin:       os.Stdin,
		stdout:      os.Stdout,
		stderr:      os.Stderr,
	}
	for _, opt := range opts {
		opt(r)
	}
	if _, ok := r.killers[render.TargetKubernetes]; !ok {
		r.killers[render.TargetKubernetes] = r.deletePod
	}
	if _, ok := r.killers[render.TargetPodman]; !ok {
		r.killers[render.TargetPodman] = r.killContainer
	}
	return r
}

// Program returns the binary executed for target.
func (r *Runner) Program(target render.Target) string {
	if p, ok := r.programs[target]; ok {
		return p
	}
	return target.Program()
}

// Run executes argv with the runtime program of target and returns its exit
// code. When ctx is cancelled the container called name is killed, the
// runtime gets the grace period to exit, and Run returns ExitInterrupted
// along with the context error.
func (r *Runner) Run(ctx context.Context, target render.Target, name string, argv []string) (types.ExitCode, error) {
	program := r.Program(target)
	slog.Debug("executing runtime", "program", program, "args", argv)

	// The runtime client must outlive ctx so it can report the container's
	// exit after the kill.
	cmd := r.execCommand(context.WithoutCancel(ctx), program, argv...)
	cmd.Stdin = r.stdin
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr

	if err := cmd.Start(); err != nil {
		return types.ExitFailure, &ExecutionError{Program: program, Err: err}
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		return exitCode(program, err)
	case <-ctx.Done():
	}

	slog.Info("interrupted, stopping container", "name", name)
	killCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.grace)
	defer cancel()
	if kill := r.killers[target]; kill != nil && name != "" {
		if err := kill(killCtx, name); err != nil {
			slog.Warn("failed to stop container", "name", name, "error", err)
		}
	}
	select {
	case <-done:
	case <-killCtx.Done():
		_ = cmd.Process.Kill()
		<-done
	}
	return types.ExitInterrupted, ctx.Err()
}

func (r *Runner) killContainer(ctx context.Context, name string) error {
	return r.execCommand(ctx, r.Program(render.TargetPodman), "kill", name).Run()
}

func (r *Runner) deletePod(ctx context.Context, name string) error {
	return r.execCommand(ctx, r.Program(render.TargetKubernetes), "delete", "pod", name, "--now").Run()
}

// exitCode maps the result of Wait to the runtime's exit code.
func exitCode(program string, err error) (types.ExitCode, error) {
	if err == nil {
		return types.ExitSuccess, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := types.ExitCode(exitErr.ExitCode())
		if code.Validate() != nil {
			// killed by a signal
			return types.ExitFailure, &ExecutionError{Program: program, Err: err}
		}
		return code, nil
	}
	return types.ExitFailure, &ExecutionError{Program: program, Err: err}
}
