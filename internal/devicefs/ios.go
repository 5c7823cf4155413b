package devicefs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmgilman/devbridge/internal/classify"
	"github.com/jmgilman/devbridge/internal/iosdevice"
	"github.com/jmgilman/devbridge/internal/slogger"
)

// CrossDeviceError reports a per-file failure attributed to a device other
// than the one the batch was sent for.
type CrossDeviceError struct {
	DeviceID string // Device the batch targeted
	Failure  *iosdevice.FileError
}

func (e *CrossDeviceError) Error() string {
	return fmt.Sprintf("transfer to %s reported failure on %s: %s: %s",
		e.DeviceID, e.Failure.DeviceID, e.Failure.Path, e.Failure.Message)
}

func (e *CrossDeviceError) Unwrap() error {
	return e.Failure
}

// IOS implements FileSystem over the device-operations capability.
type IOS struct {
	deviceID string
	ops      iosdevice.Operations
	warn     bool
	logger   *slog.Logger
}

// NewIOS returns a FileSystem for the iOS device deviceID.
func NewIOS(deviceID string, ops iosdevice.Operations, opts Options) *IOS {
	return &IOS{
		deviceID: deviceID,
		ops:      ops,
		warn:     opts.TreatErrorsAsWarnings,
		logger:   slogger.OrDiscard(opts.Logger),
	}
}

func (i *IOS) Push(ctx context.Context, localPath, devicePath, appID string) error {
	_, err := i.upload(ctx, appID, []iosdevice.FileData{{Source: localPath, Destination: devicePath}})
	return err
}

func (i *IOS) Pull(ctx context.Context, devicePath, appID, outputPath string) ([]byte, error) {
	if outputPath == "" {
		results, err := i.ops.ReadFiles(ctx, []iosdevice.FileRequest{{DeviceID: i.deviceID, AppID: appID, Path: devicePath}})
		if err != nil {
			return nil, err
		}
		if err := i.settle(ctx, classify.OpRead, results); err != nil {
			return nil, err
		}
		for _, o := range results[i.deviceID] {
			if o.Err == nil {
				return o.Content, nil
			}
		}
		return nil, nil
	}

	results, err := i.ops.DownloadFiles(ctx, []iosdevice.TransferRequest{{
		DeviceID: i.deviceID,
		AppID:    appID,
		Files:    []iosdevice.FileData{{Source: devicePath, Destination: outputPath}},
	}})
	if err != nil {
		return nil, err
	}
	return nil, i.settle(ctx, classify.OpDownload, results)
}

// List returns the entries of devicePath and logs them at info level.
func (i *IOS) List(ctx context.Context, devicePath, appID string) ([]string, error) {
	devicePath = defaultPath(devicePath)
	i.logger.InfoContext(ctx, "Listing", "device", i.deviceID, "app", appID, "path", devicePath)

	results, err := i.ops.ListDirectory(ctx, []iosdevice.FileRequest{{DeviceID: i.deviceID, AppID: appID, Path: devicePath}})
	if err != nil {
		return nil, err
	}
	if err := i.settle(ctx, classify.OpList, results); err != nil {
		return nil, err
	}

	var entries []string
	for _, o := range results[i.deviceID] {
		entries = append(entries, o.Entries...)
	}
	for _, e := range entries {
		i.logger.InfoContext(ctx, e)
	}
	return entries, nil
}

func (i *IOS) Delete(ctx context.Context, devicePath, appID string) error {
	results, err := i.ops.DeleteFiles(ctx, []iosdevice.DeleteRequest{{DeviceID: i.deviceID, AppID: appID, Destination: devicePath}})
	if err != nil {
		return err
	}
	return i.settle(ctx, classify.OpDelete, results)
}

// TransferFiles sends one batch per application. Failures on this device are
// logged and counted; a failure attributed to another device aborts.
func (i *IOS) TransferFiles(ctx context.Context, descs []Descriptor) (*TransferReport, error) {
	if err := claim(i.deviceID, descs); err != nil {
		return nil, err
	}

	files, skipped, err := regularOnly(descs)
	if err != nil {
		return nil, err
	}

	var order []string
	byApp := make(map[string][]iosdevice.FileData)
	for _, d := range files {
		if _, ok := byApp[d.AppID]; !ok {
			order = append(order, d.AppID)
		}
		byApp[d.AppID] = append(byApp[d.AppID], iosdevice.FileData{Source: d.LocalPath, Destination: d.DevicePath})
	}

	report := &TransferReport{Skipped: skipped}
	for _, appID := range order {
		batch, err := i.upload(ctx, appID, byApp[appID])
		report.Transferred += batch.Transferred
		report.Failures = append(report.Failures, batch.Failures...)
		if err != nil {
			return report, err
		}
	}
	return report, nil
}

func (i *IOS) TransferDirectory(ctx context.Context, appID, localDir, deviceDir string) (*TransferReport, error) {
	descs, err := ExpandDirectory(localDir, deviceDir, appID)
	if err != nil {
		return nil, err
	}
	return i.TransferFiles(ctx, descs)
}

func (i *IOS) upload(ctx context.Context, appID string, files []iosdevice.FileData) (*TransferReport, error) {
	report := &TransferReport{}
	if len(files) == 0 {
		return report, nil
	}

	results, err := i.ops.UploadFiles(ctx, []iosdevice.TransferRequest{{DeviceID: i.deviceID, AppID: appID, Files: files}})
	if err != nil {
		return report, fmt.Errorf("upload batch to %s: %w", i.deviceID, err)
	}

	for _, out := range results[i.deviceID] {
		if out.Err == nil {
			report.Transferred++
		}
	}

	for _, f := range results.Failures() {
		if f.DeviceID != i.deviceID {
			return report, &CrossDeviceError{DeviceID: i.deviceID, Failure: f}
		}
		i.logger.WarnContext(ctx, "file transfer failed",
			"device", f.DeviceID, "path", f.Path, "code", f.Code, "error", f.Message)
		report.Failures = append(report.Failures, Failure{Path: f.Path, Err: f})
	}
	return report, nil
}

// settle classifies per-file failures and applies the error policy.
func (i *IOS) settle(ctx context.Context, op classify.Op, results iosdevice.Results) error {
	var errs []*classify.Error
	for _, f := range results.Failures() {
		errs = append(errs, classify.ClassifyFile(op, f.Code, f.Path+": "+f.Message))
	}
	return classify.Apply(ctx, i.logger, string(op), errs, i.warn)
}
