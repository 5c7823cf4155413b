// Package simulator drives the iOS simulator tool: availability checks,
// simulator boot, application launch, notification posting and port probing.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/jmgilman/devbridge/internal/classify"
	"github.com/jmgilman/devbridge/internal/device"
	"github.com/jmgilman/devbridge/internal/dial"
	"github.com/jmgilman/devbridge/internal/exec"
	"github.com/jmgilman/devbridge/internal/slogger"
)

// DefaultConnectTimeout bounds ConnectToPort when no timeout is given.
const DefaultConnectTimeout = 10 * time.Second

// Sentinel errors.
var (
	ErrPlatformUnavailable = errors.New("ios simulator unavailable")
	ErrNoAppID             = errors.New("application identifier is required")
	ErrNoToolPath          = errors.New("simulator tool path is not configured")
)

// State is the simulator lifecycle state.
type State int

const (
	NotRunning State = iota
	Launching
	Running
	Exited
)

func (s State) String() string {
	switch s {
	case NotRunning:
		return "not-running"
	case Launching:
		return "launching"
	case Running:
		return "running"
	case Exited:
		return "exited"
	default:
		return "unknown"
	}
}

// ProjectChecker reports whether the current project can run on a platform.
type ProjectChecker interface {
	CanStart(platform device.Platform) bool
}

// Config configures a Service. Zero values mean "use the tool's default".
type Config struct {
	ToolPath         string
	SDK              string
	Device           string        // Explicit device; wins over LaunchSpec.DeviceType
	Timeout          time.Duration // Passed to launch as --timeout in whole seconds
	JustLaunch       bool          // Exit after launch instead of streaming logs
	AvailableDevices bool          // List device types instead of launching
	ConnectTimeout   time.Duration

	// Progress receives the tool's stdout while StartEmulator runs.
	Progress io.Writer

	// GOOS overrides the host OS; defaults to runtime.GOOS.
	GOOS string

	// Project is consulted by CheckAvailability when dependsOnProject is set.
	// A nil checker accepts every platform.
	Project ProjectChecker

	Logger *slog.Logger
}

// LaunchSpec describes one application launch.
type LaunchSpec struct {
	AppID           string
	DeviceType      string
	Args            string
	StderrPath      string
	StdoutPath      string
	WaitForDebugger bool
	SkipInstall     bool

	// CaptureStdio buffers the simulator's output instead of inheriting the
	// terminal. Stdout and Stderr, when set, receive the streams directly.
	CaptureStdio bool
	Stdout       io.Writer
	Stderr       io.Writer
}

// Service controls the iOS simulator through its command-line tool.
type Service struct {
	exec   exec.Executor
	cfg    Config
	logger *slog.Logger

	mu    sync.Mutex
	state State
}

// New creates a Service.
func New(e exec.Executor, cfg Config) *Service {
	if cfg.GOOS == "" {
		cfg.GOOS = runtime.GOOS
	}
	return &Service{
		exec:   e,
		cfg:    cfg,
		logger: slogger.OrDiscard(cfg.Logger),
	}
}

// State returns the current lifecycle state.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetProgress redirects the tool's stdout during StartEmulator.
func (s *Service) SetProgress(w io.Writer) {
	s.mu.Lock()
	s.cfg.Progress = w
	s.mu.Unlock()
}

func (s *Service) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// EmulatorID always returns an empty identifier; the simulator tool selects
// the device itself.
func (s *Service) EmulatorID(context.Context) (string, error) {
	return "", nil
}

// RunningEmulatorID always returns an empty identifier.
func (s *Service) RunningEmulatorID(context.Context, string) (string, error) {
	return "", nil
}

// CheckDependencies has nothing to verify beyond CheckAvailability.
func (s *Service) CheckDependencies(context.Context) error {
	return nil
}

// CheckAvailability fails when the host cannot run the simulator or, with
// dependsOnProject, when the project does not target iOS.
func (s *Service) CheckAvailability(dependsOnProject bool) error {
	if s.cfg.GOOS != "darwin" {
		return fmt.Errorf("%w: iOS Simulator is available only on macOS", ErrPlatformUnavailable)
	}
	if dependsOnProject && s.cfg.Project != nil && !s.cfg.Project.CanStart(device.PlatformIOS) {
		return fmt.Errorf("%w: the current project does not target iOS", ErrPlatformUnavailable)
	}
	return nil
}

// StartEmulator boots the simulator identified by image (the tool's default
// when empty) and waits for the tool to return. The tool's stdout is
// returned unless Config.Progress is set.
func (s *Service) StartEmulator(ctx context.Context, image string) (string, error) {
	if s.cfg.ToolPath == "" {
		return "", ErrNoToolPath
	}

	args := []string{"start", "--state", "None"}
	if image != "" {
		args = append(args, "--id", image)
	}
	if s.cfg.SDK != "" {
		args = append(args, "--sdkVersion", s.cfg.SDK)
	}

	s.mu.Lock()
	progress := s.cfg.Progress
	s.state = Launching
	s.mu.Unlock()
	s.logger.DebugContext(ctx, "starting simulator", "image", image, "sdk", s.cfg.SDK)

	result, err := s.exec.Run(ctx, &exec.RunOptions{Name: s.cfg.ToolPath, Args: args, Stdout: progress})
	if err != nil {
		s.setState(NotRunning)
		return "", fmt.Errorf("start simulator: %w", err)
	}
	if err := classify.Apply(ctx, s.logger, "start", classify.ExitStatus(result), false); err != nil {
		s.setState(NotRunning)
		return "", fmt.Errorf("start simulator: %w", err)
	}

	s.setState(Running)
	return string(result.Stdout), nil
}

// LaunchArgs builds the tool arguments for launching appPath.
func (s *Service) LaunchArgs(appPath string, spec LaunchSpec) []string {
	args := []string{"launch", appPath, spec.AppID}

	if s.cfg.Timeout > 0 {
		args = append(args, "--timeout", strconv.Itoa(int(s.cfg.Timeout/time.Second)))
	}
	if s.cfg.SDK != "" {
		args = append(args, "--sdkVersion", s.cfg.SDK)
	}

	if !s.cfg.JustLaunch {
		args = append(args, "--logging")
	} else {
		if spec.StderrPath != "" {
			args = append(args, "--stderr", spec.StderrPath)
		}
		if spec.StdoutPath != "" {
			args = append(args, "--stdout", spec.StdoutPath)
		}
		args = append(args, "--exit")
	}

	switch {
	case s.cfg.Device != "":
		args = append(args, "--device", s.cfg.Device)
	case spec.DeviceType != "":
		args = append(args, "--device", spec.DeviceType)
	}

	if spec.Args != "" {
		args = append(args, "--args="+spec.Args)
	}
	if spec.WaitForDebugger {
		args = append(args, "--waitForDebugger")
	}
	if spec.SkipInstall {
		args = append(args, "--skipInstall")
	}
	return args
}

// RunApplication launches appPath in the simulator and returns the live tool
// process. With AvailableDevices set it lists device types instead and
// returns a nil process.
func (s *Service) RunApplication(ctx context.Context, appPath string, spec LaunchSpec) (exec.Process, error) {
	if s.cfg.ToolPath == "" {
		return nil, ErrNoToolPath
	}

	s.logger.InfoContext(ctx, "Starting iOS Simulator")

	if s.cfg.AvailableDevices {
		_, err := s.exec.Run(ctx, &exec.RunOptions{
			Name:  s.cfg.ToolPath,
			Args:  []string{"device-types"},
			Stdio: exec.StdioInherit,
		})
		return nil, err
	}

	if spec.AppID == "" {
		return nil, ErrNoAppID
	}

	stdio := exec.StdioInherit
	if spec.CaptureStdio {
		stdio = exec.StdioCapture
	}

	s.setState(Launching)
	proc, err := s.exec.Start(ctx, &exec.RunOptions{
		Name:   s.cfg.ToolPath,
		Args:   s.LaunchArgs(appPath, spec),
		Stdio:  stdio,
		Stdout: spec.Stdout,
		Stderr: spec.Stderr,
	})
	if err != nil {
		s.setState(NotRunning)
		return nil, fmt.Errorf("launch %s: %w", spec.AppID, err)
	}
	s.setState(Running)

	go func() {
		<-proc.Done()
		s.setState(Exited)
	}()

	return proc, nil
}

// PostDarwinNotification posts notification to the simulator, scoped to the
// configured device when one is set.
func (s *Service) PostDarwinNotification(ctx context.Context, notification string) error {
	if s.cfg.ToolPath == "" {
		return ErrNoToolPath
	}

	args := []string{"notify-post", notification}
	if s.cfg.Device != "" {
		args = append(args, "--device", s.cfg.Device)
	}

	result, err := s.exec.Run(ctx, &exec.RunOptions{Name: s.cfg.ToolPath, Args: args, Stdio: exec.StdioInherit})
	if err != nil {
		return fmt.Errorf("post notification %s: %w", notification, err)
	}
	if result.ExitCode != 0 {
		return fmt.Errorf("post notification %s: exit status %d", notification, result.ExitCode)
	}
	return nil
}

// ConnectToPort dials port on the loopback interface until it accepts or
// timeout elapses (the configured connect timeout, else
// DefaultConnectTimeout, when zero). A nil connection means the simulator
// is not accepting connections yet.
func (s *Service) ConnectToPort(ctx context.Context, port int, timeout time.Duration) net.Conn {
	if timeout <= 0 {
		timeout = s.cfg.ConnectTimeout
	}
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}

	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
	conn, err := dial.Eventually(ctx, dial.TCP(addr), timeout, dial.DefaultInterval)
	if err != nil {
		s.logger.DebugContext(ctx, err.Error(), "port", port)
		return nil
	}
	return conn
}
