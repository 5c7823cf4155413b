// Package adb drives the Android debug bridge executable.
package adb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/jmgilman/devbridge/internal/classify"
	"github.com/jmgilman/devbridge/internal/exec"
	"github.com/jmgilman/devbridge/internal/slogger"
)

// devicesHeader is the first line printed by `adb devices`.
const devicesHeader = "List of devices attached"

// remoteDirMode is applied to pushed-into directories so the target
// application, which runs under its own user, can read them.
const remoteDirMode = "0777"

// ErrNoResolver is returned when no bridge path resolver is configured.
var ErrNoResolver = errors.New("no bridge path resolver configured")

// PathFunc resolves the bridge executable path.
type PathFunc func() (string, error)

// Config configures a Bridge.
type Config struct {
	// ResolvePath locates the bridge executable. Called once, before first use.
	ResolvePath PathFunc

	// Timeout bounds every command that does not set its own. Zero means no
	// bound; commands against an unknown serial may then block forever.
	Timeout time.Duration

	Logger *slog.Logger
}

// CommandOptions configures a single bridge command.
type CommandOptions struct {
	DeviceID              string        // Target device (empty = bridge default)
	TreatErrorsAsWarnings bool          // Log classified errors instead of failing
	Dir                   string        // Working directory for the bridge process
	Env                   []string      // Extra environment (KEY=VALUE)
	Stdio                 exec.Stdio    // Stream wiring
	Timeout               time.Duration // Overrides Config.Timeout when set
}

// Bridge executes commands through the Android debug bridge.
type Bridge struct {
	exec    exec.Executor
	resolve PathFunc
	timeout time.Duration
	logger  *slog.Logger

	initOnce sync.Once
	path     string
	initErr  error
}

// New creates a Bridge.
func New(e exec.Executor, cfg Config) *Bridge {
	return &Bridge{
		exec:    e,
		resolve: cfg.ResolvePath,
		timeout: cfg.Timeout,
		logger:  slogger.OrDiscard(cfg.Logger),
	}
}

// Path resolves and returns the bridge executable path.
func (b *Bridge) Path() (string, error) {
	b.initOnce.Do(func() {
		if b.resolve == nil {
			b.initErr = ErrNoResolver
			return
		}
		p, err := b.resolve()
		if err != nil {
			b.initErr = fmt.Errorf("resolve bridge path: %w", err)
			return
		}
		b.path = p
	})
	return b.path, b.initErr
}

// Compose builds the concrete invocation for args against deviceID.
func (b *Bridge) Compose(args []string, deviceID string) (Command, error) {
	p, err := b.Path()
	if err != nil {
		return Command{}, err
	}
	return Compose(p, args, deviceID), nil
}

// ExecuteCommand runs a bridge subcommand and returns its stdout.
// The result is classified; fatal findings fail the call unless
// opts.TreatErrorsAsWarnings is set. Stdout is empty when streamed.
func (b *Bridge) ExecuteCommand(ctx context.Context, args []string, opts *CommandOptions) (string, error) {
	if opts == nil {
		opts = &CommandOptions{}
	}

	cmd, err := b.Compose(args, opts.DeviceID)
	if err != nil {
		return "", err
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = b.timeout
	}

	b.logger.DebugContext(ctx, "executing bridge command", "command", cmd.String())

	result, err := b.exec.Run(ctx, &exec.RunOptions{
		Name:    cmd.Path(),
		Args:    cmd.Args(),
		Dir:     opts.Dir,
		Env:     opts.Env,
		Stdio:   opts.Stdio,
		Timeout: timeout,
	})
	if err != nil {
		return "", fmt.Errorf("run %s: %w", subcommand(args), err)
	}

	errs := classify.Classify(result)
	if err := classify.Apply(ctx, b.logger, subcommand(args), errs, opts.TreatErrorsAsWarnings); err != nil {
		return "", err
	}

	return string(result.Stdout), nil
}

// StartCommand spawns a bridge subcommand and returns the live process
// without waiting or classifying its result.
func (b *Bridge) StartCommand(ctx context.Context, args []string, opts *CommandOptions) (exec.Process, error) {
	if opts == nil {
		opts = &CommandOptions{}
	}

	cmd, err := b.Compose(args, opts.DeviceID)
	if err != nil {
		return nil, err
	}

	b.logger.DebugContext(ctx, "starting bridge command", "command", cmd.String())

	p, err := b.exec.Start(ctx, &exec.RunOptions{
		Name:  cmd.Path(),
		Args:  cmd.Args(),
		Dir:   opts.Dir,
		Env:   opts.Env,
		Stdio: opts.Stdio,
	})
	if err != nil {
		return nil, fmt.Errorf("start %s: %w", subcommand(args), err)
	}
	return p, nil
}

// ExecuteShellCommand runs args through `adb shell`.
func (b *Bridge) ExecuteShellCommand(ctx context.Context, args []string, opts *CommandOptions) (string, error) {
	return b.ExecuteCommand(ctx, append([]string{"shell"}, args...), opts)
}

// PushFile copies a local file to the device. The destination directory is
// created first, since newer bridge versions refuse to push into a missing
// directory, and opened up afterwards for the application user.
func (b *Bridge) PushFile(ctx context.Context, deviceID, localPath, devicePath string) error {
	dir := path.Clean(path.Dir(devicePath))
	opts := &CommandOptions{DeviceID: deviceID}

	if _, err := b.ExecuteShellCommand(ctx, []string{"mkdir", "-p", dir}, opts); err != nil {
		return fmt.Errorf("create remote directory %s: %w", dir, err)
	}
	if _, err := b.ExecuteCommand(ctx, []string{"push", localPath, devicePath}, opts); err != nil {
		return fmt.Errorf("push %s: %w", localPath, err)
	}
	if _, err := b.ExecuteShellCommand(ctx, []string{"chmod", remoteDirMode, dir}, opts); err != nil {
		return fmt.Errorf("set permissions on %s: %w", dir, err)
	}
	return nil
}

// GetPropertyValue reads a system property from the device.
func (b *Bridge) GetPropertyValue(ctx context.Context, deviceID, name string) (string, error) {
	out, err := b.ExecuteShellCommand(ctx, []string{"getprop", name}, &CommandOptions{DeviceID: deviceID})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// GetDevices returns the raw `adb devices` lines, without the header and
// blank lines (e.g., "emulator-5554\tdevice").
func (b *Bridge) GetDevices(ctx context.Context) ([]string, error) {
	out, err := b.ExecuteCommand(ctx, []string{"devices"}, nil)
	if err != nil {
		return nil, err
	}

	var lines []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" || line == devicesHeader {
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func subcommand(args []string) string {
	if len(args) == 0 {
		return "adb"
	}
	if args[0] == "shell" && len(args) > 1 {
		return "shell " + args[1]
	}
	return args[0]
}
