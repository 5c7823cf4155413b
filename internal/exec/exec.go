// Package exec provides an abstraction over executing external toolchain commands.
package exec

import (
	"context"
	"errors"
	"io"
	"time"
)

// Sentinel errors for command execution.
var (
	// ErrStart is returned when the process could not be spawned at all
	// (binary missing, not executable, bad working directory).
	ErrStart = errors.New("process could not be started")

	// ErrTimeout is returned when the process did not complete within the
	// bounded wait supplied by the caller.
	ErrTimeout = errors.New("timed out waiting for process to complete")
)

// Result holds the output from a completed command.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Stdio selects how the child process is wired to the parent's standard streams.
type Stdio int

const (
	// StdioCapture buffers stdout and stderr into the Result (default).
	StdioCapture Stdio = iota
	// StdioInherit streams the child's output to the parent's stdout/stderr.
	// Stdin is attached only when it is a terminal.
	StdioInherit
)

// RunOptions configures command execution.
type RunOptions struct {
	Name    string        // Command name or path (required)
	Args    []string      // Command arguments
	Dir     string        // Working directory (empty = current)
	Env     []string      // Additional environment variables (KEY=VALUE format)
	Stdin   io.Reader     // Stdin source (nil = no input)
	Stdout  io.Writer     // If set, streams stdout here instead of capturing
	Stderr  io.Writer     // If set, streams stderr here instead of capturing
	Stdio   Stdio         // Standard stream wiring; explicit writers above take precedence
	Timeout time.Duration // Bounded wait for completion (0 = wait until ctx is done)
}

// Process is a live handle to a spawned command.
//
//go:generate go run github.com/matryer/moq@latest -pkg mocks -out mocks/process.go . Process
type Process interface {
	// PID returns the operating system process ID.
	PID() int

	// Wait blocks until the process has exited and its output streams are drained.
	// Returns ErrTimeout wrapped with ctx.Err() if ctx's deadline passes first,
	// or context.Canceled if ctx is canceled; the process keeps running in
	// either case.
	Wait(ctx context.Context) (*Result, error)

	// Stop terminates the process and its process group.
	Stop() error

	// Done is closed once the process has exited.
	Done() <-chan struct{}
}

// Executor runs external commands.
//
//go:generate go run github.com/matryer/moq@latest -pkg mocks -out mocks/executor.go . Executor
type Executor interface {
	// Run executes a command and waits for it to exit with its streams flushed.
	// A non-zero exit code is not an error: it is reported in Result.ExitCode
	// and left to the caller to interpret.
	// Returns ErrStart if the process cannot be spawned and ErrTimeout if it
	// does not complete within opts.Timeout or ctx's deadline. Cancellation of
	// ctx returns context.Canceled instead. The partial Result is returned in
	// both cases.
	// If Stdout/Stderr writers are set, Result.Stdout/Stderr will be nil.
	Run(ctx context.Context, opts *RunOptions) (*Result, error)

	// Start spawns a command and returns immediately with a live handle.
	// Opts.Timeout is ignored; the caller owns the process lifetime.
	Start(ctx context.Context, opts *RunOptions) (Process, error)

	// LookPath searches for an executable in PATH.
	// Returns the full path if found, or an error if not.
	LookPath(name string) (string, error)
}
