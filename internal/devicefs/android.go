package devicefs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmgilman/devbridge/internal/adb"
	"github.com/jmgilman/devbridge/internal/slogger"
)

// bridge is the subset of *adb.Bridge the Android variant needs.
type bridge interface {
	ExecuteCommand(ctx context.Context, args []string, opts *adb.CommandOptions) (string, error)
	ExecuteShellCommand(ctx context.Context, args []string, opts *adb.CommandOptions) (string, error)
	PushFile(ctx context.Context, deviceID, localPath, devicePath string) error
}

// Android implements FileSystem over the debug bridge. Application
// identifiers are accepted for interface parity and ignored: every path is
// addressed on the device's shared storage.
type Android struct {
	deviceID string
	bridge   bridge
	warn     bool
	logger   *slog.Logger
}

// NewAndroid returns a FileSystem for the Android device deviceID.
func NewAndroid(deviceID string, b *adb.Bridge, opts Options) *Android {
	return &Android{
		deviceID: deviceID,
		bridge:   b,
		warn:     opts.TreatErrorsAsWarnings,
		logger:   slogger.OrDiscard(opts.Logger),
	}
}

func (a *Android) opts() *adb.CommandOptions {
	return &adb.CommandOptions{DeviceID: a.deviceID, TreatErrorsAsWarnings: a.warn}
}

func (a *Android) Push(ctx context.Context, localPath, devicePath, _ string) error {
	return a.bridge.PushFile(ctx, a.deviceID, localPath, devicePath)
}

func (a *Android) Pull(ctx context.Context, devicePath, _, outputPath string) ([]byte, error) {
	if outputPath == "" {
		out, err := a.bridge.ExecuteShellCommand(ctx, []string{"cat", devicePath}, a.opts())
		if err != nil {
			return nil, err
		}
		return []byte(out), nil
	}

	_, err := a.bridge.ExecuteCommand(ctx, []string{"pull", devicePath, outputPath}, a.opts())
	return nil, err
}

func (a *Android) List(ctx context.Context, devicePath, _ string) ([]string, error) {
	out, err := a.bridge.ExecuteShellCommand(ctx, []string{"ls", "-a", defaultPath(devicePath)}, a.opts())
	if err != nil {
		return nil, err
	}

	var entries []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line == "." || line == ".." {
			continue
		}
		entries = append(entries, line)
	}
	return entries, nil
}

// Delete removes devicePath recursively. The shell reports an absent target
// on stderr, which the classifier treats as benign.
func (a *Android) Delete(ctx context.Context, devicePath, _ string) error {
	_, err := a.bridge.ExecuteShellCommand(ctx, []string{"rm", "-r", devicePath}, a.opts())
	return err
}

// TransferFiles pushes each file in turn and stops at the first failure.
func (a *Android) TransferFiles(ctx context.Context, descs []Descriptor) (*TransferReport, error) {
	if err := claim(a.deviceID, descs); err != nil {
		return nil, err
	}

	files, skipped, err := regularOnly(descs)
	if err != nil {
		return nil, err
	}

	report := &TransferReport{Skipped: skipped}
	for _, d := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := a.bridge.PushFile(ctx, a.deviceID, d.LocalPath, d.DevicePath); err != nil {
			return report, fmt.Errorf("transfer %s: %w", d.LocalPath, err)
		}
		report.Transferred++
	}

	a.logger.DebugContext(ctx, "transferred files", "device", a.deviceID, "count", report.Transferred, "skipped", skipped)
	return report, nil
}

func (a *Android) TransferDirectory(ctx context.Context, appID, localDir, deviceDir string) (*TransferReport, error) {
	descs, err := ExpandDirectory(localDir, deviceDir, appID)
	if err != nil {
		return nil, err
	}
	return a.TransferFiles(ctx, descs)
}
