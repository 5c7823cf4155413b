package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmgilman/devbridge/internal/logging"
	"github.com/jmgilman/devbridge/internal/simulator"
	"github.com/jmgilman/devbridge/internal/slogger"
	"github.com/jmgilman/devbridge/internal/spinner"
)

var simFlags struct {
	sdk     string
	device  string
	timeout time.Duration
}

var launchFlags struct {
	appID           string
	deviceType      string
	args            string
	stderrPath      string
	stdoutPath      string
	logFile         string
	justLaunch      bool
	waitForDebugger bool
	skipInstall     bool
	capture         bool
}

var connectTimeout time.Duration

var simCmd = &cobra.Command{
	Use:   "sim",
	Short: "Control the iOS simulator",
	Long: `Boot the iOS simulator, launch applications in it, post notifications
and wait for ports. Requires macOS and the simulator tool (ios.simulator_path).`,
}

func simService(cmd *cobra.Command, extra simulator.Config) (*simulator.Service, error) {
	extra.SDK = simFlags.sdk
	extra.Device = simFlags.device
	extra.Timeout = simFlags.timeout
	return newSimulator(cmd.Context(), extra)
}

var simStartCmd = &cobra.Command{
	Use:   "start [image]",
	Short: "Boot a simulator",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := simService(cmd, simulator.Config{})
		if err != nil {
			return err
		}
		if err := s.CheckAvailability(false); err != nil {
			return err
		}

		var image string
		if len(args) == 1 {
			image = args[0]
		}

		return spinner.Run(os.Stderr, "Booting simulator", func(progress io.Writer) error {
			s.SetProgress(progress)
			_, err := s.StartEmulator(cmd.Context(), image)
			return err
		})
	},
}

var simLaunchCmd = &cobra.Command{
	Use:   "launch <app-path>",
	Short: "Install and launch an application in the simulator",
	Example: `  # Launch and stream the application's logs
  devbridge sim launch ./build/App.app --app-id com.example.app

  # Launch, capture output to files and return
  devbridge sim launch ./build/App.app --app-id com.example.app --just-launch --stdout out.log`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := simService(cmd, simulator.Config{JustLaunch: launchFlags.justLaunch})
		if err != nil {
			return err
		}
		if err := s.CheckAvailability(false); err != nil {
			return err
		}

		spec := simulator.LaunchSpec{
			AppID:           launchFlags.appID,
			DeviceType:      launchFlags.deviceType,
			Args:            launchFlags.args,
			StderrPath:      launchFlags.stderrPath,
			StdoutPath:      launchFlags.stdoutPath,
			WaitForDebugger: launchFlags.waitForDebugger,
			SkipInstall:     launchFlags.skipInstall,
			CaptureStdio:    launchFlags.capture,
		}

		if launchFlags.logFile != "" {
			console, err := logging.NewConsole(os.Stdout, os.Stderr, launchFlags.logFile, logging.Truncate)
			if err != nil {
				return err
			}
			defer console.Close()
			spec.Stdout = console.Stdout
			spec.Stderr = console.Stderr
		}

		proc, err := s.RunApplication(ctx, args[0], spec)
		if err != nil {
			return err
		}

		result, err := proc.Wait(ctx)
		if err != nil {
			_ = proc.Stop()
			return err
		}
		if launchFlags.capture {
			_, _ = cmd.OutOrStdout().Write(result.Stdout)
			_, _ = cmd.ErrOrStderr().Write(result.Stderr)
		}
		if result.ExitCode != 0 {
			return fmt.Errorf("simulator exited with status %d", result.ExitCode)
		}
		return nil
	},
}

var simDeviceTypesCmd = &cobra.Command{
	Use:   "device-types",
	Short: "List the device types the simulator can run",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := simService(cmd, simulator.Config{AvailableDevices: true})
		if err != nil {
			return err
		}
		if err := s.CheckAvailability(false); err != nil {
			return err
		}
		_, err = s.RunApplication(cmd.Context(), "", simulator.LaunchSpec{})
		return err
	},
}

var simNotifyCmd = &cobra.Command{
	Use:   "notify <notification>",
	Short: "Post a Darwin notification to the simulator",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := simService(cmd, simulator.Config{})
		if err != nil {
			return err
		}
		return s.PostDarwinNotification(cmd.Context(), args[0])
	},
}

var simConnectCmd = &cobra.Command{
	Use:   "connect <port>",
	Short: "Wait until a simulator port accepts connections",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		port, err := strconv.Atoi(args[0])
		if err != nil || port <= 0 || port > 65535 {
			return fmt.Errorf("invalid port %q", args[0])
		}

		s, err := simService(cmd, simulator.Config{})
		if err != nil {
			return err
		}

		conn := s.ConnectToPort(cmd.Context(), port, connectTimeout)
		if conn == nil {
			return fmt.Errorf("port %d is not accepting connections yet", port)
		}
		defer conn.Close()

		slogger.L(cmd.Context()).Info("connected", "port", port, "remote", conn.RemoteAddr().String())
		fmt.Fprintf(cmd.OutOrStdout(), "port %d is ready\n", port)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(simCmd)
	simCmd.AddCommand(simStartCmd, simLaunchCmd, simDeviceTypesCmd, simNotifyCmd, simConnectCmd)

	simCmd.PersistentFlags().StringVar(&simFlags.sdk, "sdk", "", "simulator SDK version (overrides ios.sdk)")
	simCmd.PersistentFlags().StringVar(&simFlags.device, "device", "", "simulator device (overrides ios.device)")
	simCmd.PersistentFlags().DurationVar(&simFlags.timeout, "timeout", 0, "launch timeout (overrides ios.launch_timeout)")

	f := simLaunchCmd.Flags()
	f.StringVar(&launchFlags.appID, "app-id", "", "application bundle identifier (required)")
	f.StringVar(&launchFlags.deviceType, "device-type", "", "device type used when --device is not set")
	f.StringVar(&launchFlags.args, "args", "", "arguments passed to the application")
	f.StringVar(&launchFlags.stderrPath, "stderr", "", "application stderr file (with --just-launch)")
	f.StringVar(&launchFlags.stdoutPath, "stdout", "", "application stdout file (with --just-launch)")
	f.StringVar(&launchFlags.logFile, "log-file", "", "mirror simulator console output to this file")
	f.BoolVar(&launchFlags.justLaunch, "just-launch", false, "return after launch instead of streaming logs")
	f.BoolVar(&launchFlags.waitForDebugger, "wait-for-debugger", false, "pause the application until a debugger attaches")
	f.BoolVar(&launchFlags.skipInstall, "skip-install", false, "launch without reinstalling")
	f.BoolVar(&launchFlags.capture, "capture", false, "buffer simulator output and print it on exit")
	_ = simLaunchCmd.MarkFlagRequired("app-id")

	simConnectCmd.Flags().DurationVar(&connectTimeout, "connect-timeout", 0, "give up after this long (default ios.connect_timeout)")
}
