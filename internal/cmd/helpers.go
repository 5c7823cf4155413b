package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmgilman/devbridge/internal/adb"
	"github.com/jmgilman/devbridge/internal/config"
	"github.com/jmgilman/devbridge/internal/device"
	"github.com/jmgilman/devbridge/internal/devicefs"
	"github.com/jmgilman/devbridge/internal/exec"
	"github.com/jmgilman/devbridge/internal/iosdevice"
	"github.com/jmgilman/devbridge/internal/simulator"
	"github.com/jmgilman/devbridge/internal/slogger"
)

func requireBridge(ctx context.Context) (*adb.Bridge, error) {
	b := BridgeFromContext(ctx)
	if b == nil {
		return nil, errors.New("debug bridge not initialized")
	}
	return b, nil
}

func requireExecutor(ctx context.Context) (exec.Executor, error) {
	e := ExecutorFromContext(ctx)
	if e == nil {
		return nil, errors.New("executor not initialized")
	}
	return e, nil
}

func requireConfig(ctx context.Context) *config.Config {
	if cfg := ConfigFromContext(ctx); cfg != nil {
		return cfg
	}
	return defaultConfig()
}

// targetFlags are shared by every command addressing one device.
type targetFlags struct {
	platform string
	deviceID string
	warn     bool
}

// openFileSystem builds the FileSystem variant for the targeted device.
func openFileSystem(ctx context.Context, tf targetFlags) (devicefs.FileSystem, error) {
	platform, err := device.ParsePlatform(tf.platform)
	if err != nil {
		return nil, err
	}
	if platform == device.PlatformIOS && tf.deviceID == "" {
		return nil, errors.New("--device is required for ios")
	}

	logger := slogger.L(ctx)
	deps := devicefs.Deps{}
	switch platform {
	case device.PlatformAndroid:
		if deps.Bridge, err = requireBridge(ctx); err != nil {
			return nil, err
		}
	case device.PlatformIOS:
		deps.Operations = iosdevice.NewGoIOS(logger)
	}

	warn := tf.warn || requireConfig(ctx).Transfer.ErrorsAsWarnings
	fs, err := devicefs.New(device.Device{Identifier: tf.deviceID, Platform: platform}, deps, devicefs.Options{
		TreatErrorsAsWarnings: warn,
		Logger:                logger,
	})
	if err != nil {
		return nil, fmt.Errorf("open file system: %w", err)
	}
	return fs, nil
}

// newSimulator builds a simulator service from configuration.
func newSimulator(ctx context.Context, overrides simulator.Config) (*simulator.Service, error) {
	e, err := requireExecutor(ctx)
	if err != nil {
		return nil, err
	}
	cfg := requireConfig(ctx)

	sc := simulator.Config{
		ToolPath:         cfg.IOS.SimulatorPath,
		SDK:              cfg.IOS.SDK,
		Device:           cfg.IOS.Device,
		Timeout:          cfg.IOS.LaunchTimeout,
		JustLaunch:       cfg.IOS.JustLaunch || overrides.JustLaunch,
		AvailableDevices: overrides.AvailableDevices,
		ConnectTimeout:   cfg.IOS.ConnectTimeout,
		Logger:           slogger.L(ctx),
	}
	if overrides.SDK != "" {
		sc.SDK = overrides.SDK
	}
	if overrides.Device != "" {
		sc.Device = overrides.Device
	}
	if overrides.Timeout > 0 {
		sc.Timeout = overrides.Timeout
	}
	return simulator.New(e, sc), nil
}
