package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jmgilman/devbridge/internal/device"
	"github.com/jmgilman/devbridge/internal/slogger"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List attached Android devices",
	Long:  `List devices reported by the Android debug bridge with their state.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		bridge, err := requireBridge(cmd.Context())
		if err != nil {
			return err
		}

		lines, err := bridge.GetDevices(cmd.Context())
		if err != nil {
			return fmt.Errorf("list devices: %w", err)
		}

		devices := device.ParseADBDevices(lines)
		if len(devices) == 0 {
			slogger.L(cmd.Context()).Info("no devices attached")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		if _, err := fmt.Fprintln(w, "SERIAL\tSTATE\tONLINE"); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		for _, d := range devices {
			if _, err := fmt.Fprintf(w, "%s\t%s\t%t\n", d.Identifier, d.State, d.Online()); err != nil {
				return fmt.Errorf("write device: %w", err)
			}
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}
