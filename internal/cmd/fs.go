package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmgilman/devbridge/internal/slogger"
)

var (
	fsTarget targetFlags
	fsAppID  string
)

var fsCmd = &cobra.Command{
	Use:   "fs",
	Short: "Transfer files to and from a device",
	Long: `Push, pull, list and delete files on an Android or iOS device.

On iOS, --app addresses the application's container; without it the media
domain is used. Android ignores --app.`,
}

var fsPushCmd = &cobra.Command{
	Use:   "push <local> <device-path>",
	Short: "Copy a local file to the device",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		fs, err := openFileSystem(cmd.Context(), fsTarget)
		if err != nil {
			return err
		}
		return fs.Push(cmd.Context(), args[0], args[1], fsAppID)
	},
}

var fsPullCmd = &cobra.Command{
	Use:   "pull <device-path> [local]",
	Short: "Copy a device file locally, or print it",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		fs, err := openFileSystem(cmd.Context(), fsTarget)
		if err != nil {
			return err
		}

		var output string
		if len(args) == 2 {
			output = args[1]
		}

		content, err := fs.Pull(cmd.Context(), args[0], fsAppID, output)
		if err != nil {
			return err
		}
		if output == "" {
			_, err = cmd.OutOrStdout().Write(content)
		}
		return err
	},
}

var fsListCmd = &cobra.Command{
	Use:     "ls [device-path]",
	Aliases: []string{"list"},
	Short:   "List a device directory",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fs, err := openFileSystem(cmd.Context(), fsTarget)
		if err != nil {
			return err
		}

		var dir string
		if len(args) == 1 {
			dir = args[0]
		}

		entries, err := fs.List(cmd.Context(), dir, fsAppID)
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Fprintln(cmd.OutOrStdout(), e)
		}
		return nil
	},
}

var fsRemoveCmd = &cobra.Command{
	Use:     "rm <device-path>",
	Aliases: []string{"delete"},
	Short:   "Delete a device path; absent paths are not an error",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fs, err := openFileSystem(cmd.Context(), fsTarget)
		if err != nil {
			return err
		}
		return fs.Delete(cmd.Context(), args[0], fsAppID)
	},
}

var fsSyncCmd = &cobra.Command{
	Use:   "sync <local-dir> <device-dir>",
	Short: "Copy every regular file under a local directory to the device",
	Long: `Copy every regular file under a local directory to the matching path
under the device directory. Symlinks and special files are skipped.

On iOS the files are sent as one batch; individual failures are logged and
counted without stopping the rest.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		info, err := os.Stat(args[0])
		if err != nil {
			return fmt.Errorf("stat %s: %w", args[0], err)
		}
		if !info.IsDir() {
			return fmt.Errorf("%s is not a directory", args[0])
		}

		fs, err := openFileSystem(ctx, fsTarget)
		if err != nil {
			return err
		}

		report, err := fs.TransferDirectory(ctx, fsAppID, args[0], args[1])
		if err != nil {
			return err
		}

		slogger.L(ctx).Info("sync complete",
			"transferred", report.Transferred, "failed", len(report.Failures), "skipped", report.Skipped)
		fmt.Fprintf(cmd.OutOrStdout(), "transferred %d file(s), %d failed\n", report.Transferred, len(report.Failures))
		for _, f := range report.Failures {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s: %v\n", f.Path, f.Err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fsCmd)
	fsCmd.AddCommand(fsPushCmd, fsPullCmd, fsListCmd, fsRemoveCmd, fsSyncCmd)

	fsCmd.PersistentFlags().StringVarP(&fsTarget.platform, "platform", "p", "android", "target platform (android, ios)")
	fsCmd.PersistentFlags().StringVarP(&fsTarget.deviceID, "device", "d", "", "device serial or UDID")
	fsCmd.PersistentFlags().StringVar(&fsAppID, "app", "", "application identifier")
	fsCmd.PersistentFlags().BoolVar(&fsTarget.warn, "warn", false, "log classified errors as warnings instead of failing")
}
