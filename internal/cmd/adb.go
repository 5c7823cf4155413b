package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmgilman/devbridge/internal/adb"
	"github.com/jmgilman/devbridge/internal/exec"
)

var adbFlags struct {
	deviceID string
	warn     bool
	shell    bool
	stream   bool
}

var adbCmd = &cobra.Command{
	Use:   "adb [flags] -- <args>...",
	Short: "Run a debug bridge command against a device",
	Long: `Run a debug bridge command. The device selector is inserted before the
arguments, and the output is classified: known-benign conditions are dropped,
other failures are fatal unless --warn is set.`,
	Example: `  # List files on a specific device
  devbridge adb --device emulator-5554 --shell -- ls /sdcard

  # Stream logcat until interrupted
  devbridge adb --device emulator-5554 --stream -- logcat`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		bridge, err := requireBridge(ctx)
		if err != nil {
			return err
		}

		opts := &adb.CommandOptions{DeviceID: adbFlags.deviceID, TreatErrorsAsWarnings: adbFlags.warn}
		if adbFlags.shell {
			args = append([]string{"shell"}, args...)
		}

		if adbFlags.stream {
			opts.Stdio = exec.StdioInherit
			proc, err := bridge.StartCommand(ctx, args, opts)
			if err != nil {
				return err
			}
			result, err := proc.Wait(ctx)
			if err != nil {
				return err
			}
			if result.ExitCode != 0 {
				return fmt.Errorf("adb exited with status %d", result.ExitCode)
			}
			return nil
		}

		out, err := bridge.ExecuteCommand(ctx, args, opts)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

var getpropCmd = &cobra.Command{
	Use:   "getprop <name>",
	Short: "Read a system property from an Android device",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bridge, err := requireBridge(cmd.Context())
		if err != nil {
			return err
		}

		value, err := bridge.GetPropertyValue(cmd.Context(), adbFlags.deviceID, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), value)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(adbCmd)
	rootCmd.AddCommand(getpropCmd)

	for _, c := range []*cobra.Command{adbCmd, getpropCmd} {
		c.Flags().StringVarP(&adbFlags.deviceID, "device", "d", "", "device serial (default: the only attached device)")
	}
	adbCmd.Flags().BoolVar(&adbFlags.warn, "warn", false, "log classified errors as warnings instead of failing")
	adbCmd.Flags().BoolVar(&adbFlags.shell, "shell", false, "run the arguments through the device shell")
	adbCmd.Flags().BoolVar(&adbFlags.stream, "stream", false, "stream output live instead of capturing it")
}
