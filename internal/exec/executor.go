package exec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	gocmd "github.com/go-cmd/cmd"
	"golang.org/x/term"
)

// waitDelay bounds how long Run waits for output pipes to drain after the
// process exits. Children that leak the pipes to grandchildren (adb forks a
// server) would otherwise hold Run open forever.
const waitDelay = 2 * time.Second

type executor struct{}

// New returns a new Executor that uses os/exec for Run and go-cmd for Start.
func New() Executor {
	return &executor{}
}

func (e *executor) Run(ctx context.Context, opts *RunOptions) (*Result, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	// G204: This is intentional - we're an executor that runs toolchain commands.
	// The caller is responsible for validating the command and arguments.
	cmd := exec.CommandContext(ctx, opts.Name, opts.Args...) //nolint:gosec // Intentional subprocess execution
	cmd.WaitDelay = waitDelay

	if opts.Dir != "" {
		cmd.Dir = opts.Dir
	}
	if len(opts.Env) > 0 {
		cmd.Env = append(os.Environ(), opts.Env...)
	}

	stdin, stdout, stderr := resolveStdio(opts)
	if stdin != nil {
		cmd.Stdin = stdin
	}

	var stdoutBuf, stderrBuf bytes.Buffer

	if stdout != nil {
		cmd.Stdout = stdout
	} else {
		cmd.Stdout = &stdoutBuf
	}

	if stderr != nil {
		cmd.Stderr = stderr
	} else {
		cmd.Stderr = &stderrBuf
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrStart, opts.Name, err)
	}

	waitErr := cmd.Wait()

	result := &Result{ExitCode: -1}
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}
	if stdout == nil {
		result.Stdout = stdoutBuf.Bytes()
	}
	if stderr == nil {
		result.Stderr = stderrBuf.Bytes()
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, contextError(opts.Name, ctxErr)
	}

	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) && !errors.Is(waitErr, exec.ErrWaitDelay) {
		return result, fmt.Errorf("wait for %s: %w", opts.Name, waitErr)
	}

	return result, nil
}

// contextError reports why ctx ended. An elapsed deadline is a timeout;
// cancellation is returned as is.
func contextError(name string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %w", ErrTimeout, name, err)
	}
	return fmt.Errorf("%s: %w", name, err)
}

func (e *executor) Start(ctx context.Context, opts *RunOptions) (Process, error) {
	// go-cmd reports spawn failures asynchronously, so resolve the binary up
	// front to surface ErrStart synchronously like Run does.
	if _, err := exec.LookPath(opts.Name); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrStart, opts.Name, err)
	}

	stdin, stdout, stderr := resolveStdio(opts)
	streaming := stdout != nil || stderr != nil

	c := gocmd.NewCmdOptions(gocmd.Options{
		Buffered:  !streaming,
		Streaming: streaming,
	}, opts.Name, opts.Args...)
	c.Dir = opts.Dir
	if len(opts.Env) > 0 {
		c.Env = append(os.Environ(), opts.Env...)
	}

	p := &process{cmd: c, name: opts.Name}

	if streaming {
		p.forward(c.Stdout, stdout)
		p.forward(c.Stderr, stderr)
	}

	if stdin != nil {
		c.StartWithStdin(stdin)
	} else {
		c.Start()
	}

	go func() {
		select {
		case <-ctx.Done():
			_ = c.Stop()
		case <-c.Done():
		}
	}()

	return p, nil
}

func (e *executor) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// resolveStdio applies the Stdio mode to the explicit stream options.
// Explicit writers and readers always win over inherited streams.
func resolveStdio(opts *RunOptions) (io.Reader, io.Writer, io.Writer) {
	stdin, stdout, stderr := opts.Stdin, opts.Stdout, opts.Stderr
	if opts.Stdio != StdioInherit {
		return stdin, stdout, stderr
	}

	if stdin == nil && term.IsTerminal(int(os.Stdin.Fd())) {
		stdin = os.Stdin
	}
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return stdin, stdout, stderr
}

// process implements Process on top of a go-cmd command.
type process struct {
	cmd        *gocmd.Cmd
	name       string
	forwarders sync.WaitGroup
}

// forward drains a go-cmd streaming channel into w. Streaming channels must
// always be read or the child blocks on a full pipe.
func (p *process) forward(lines <-chan string, w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	p.forwarders.Add(1)
	go func() {
		defer p.forwarders.Done()
		for line := range lines {
			_, _ = fmt.Fprintln(w, line)
		}
	}()
}

func (p *process) PID() int {
	return p.cmd.Status().PID
}

func (p *process) Wait(ctx context.Context) (*Result, error) {
	select {
	case <-p.cmd.Done():
	case <-ctx.Done():
		return nil, contextError(p.name, ctx.Err())
	}
	p.forwarders.Wait()

	status := p.cmd.Status()
	if status.StartTs == 0 && status.Error != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrStart, p.name, status.Error)
	}

	return &Result{
		Stdout:   joinLines(status.Stdout),
		Stderr:   joinLines(status.Stderr),
		ExitCode: status.Exit,
	}, nil
}

func (p *process) Stop() error {
	return p.cmd.Stop()
}

func (p *process) Done() <-chan struct{} {
	return p.cmd.Done()
}

// joinLines rebuilds text output from go-cmd's line-split buffers.
func joinLines(lines []string) []byte {
	if len(lines) == 0 {
		return nil
	}
	return []byte(strings.Join(lines, "\n") + "\n")
}
