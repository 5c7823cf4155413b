// Package devicefs moves files between the host and attached devices.
//
// One FileSystem is created per device at discovery time; the Android and
// iOS variants share the same contract but differ in how failures surface.
// Android runs one bridge command per step and fails on the first classified
// error. iOS sends each transfer as a single batch and settles every file
// independently.
package devicefs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmgilman/devbridge/internal/adb"
	"github.com/jmgilman/devbridge/internal/device"
	"github.com/jmgilman/devbridge/internal/iosdevice"
)

// Sentinel errors for file-system operations.
var (
	ErrNoBridge          = errors.New("android file system requires a bridge")
	ErrNoOperations      = errors.New("ios file system requires device operations")
	ErrForeignDescriptor = errors.New("descriptor targets a different device")
)

// Descriptor maps one local file to its destination on a device.
type Descriptor struct {
	LocalPath  string
	DevicePath string
	DeviceID   string // Owning device; empty means the FileSystem's device
	AppID      string // Owning application
}

// Failure is one file that did not transfer.
type Failure struct {
	Path string
	Err  error
}

// TransferReport summarizes a transfer that completed overall.
type TransferReport struct {
	Transferred int
	Skipped     int // Non-regular files excluded before transfer
	Failures    []Failure
}

// FileSystem transfers files to and from one device.
type FileSystem interface {
	// Push copies a local file to devicePath.
	Push(ctx context.Context, localPath, devicePath, appID string) error

	// Pull reads devicePath. With an empty outputPath the content is
	// returned; otherwise it is written to outputPath and nil is returned.
	Pull(ctx context.Context, devicePath, appID, outputPath string) ([]byte, error)

	// List returns the entries of devicePath ("." when empty).
	List(ctx context.Context, devicePath, appID string) ([]string, error)

	// Delete removes devicePath. A path that is already absent is not an error.
	Delete(ctx context.Context, devicePath, appID string) error

	// TransferFiles pushes every regular file among descs.
	TransferFiles(ctx context.Context, descs []Descriptor) (*TransferReport, error)

	// TransferDirectory pushes every regular file under localDir to the
	// matching path under deviceDir.
	TransferDirectory(ctx context.Context, appID, localDir, deviceDir string) (*TransferReport, error)
}

// Options configures a FileSystem.
type Options struct {
	// TreatErrorsAsWarnings logs classified failures instead of returning them.
	TreatErrorsAsWarnings bool

	Logger *slog.Logger
}

// Deps holds the platform transports. Only the one matching the device's
// platform is required.
type Deps struct {
	Bridge     *adb.Bridge
	Operations iosdevice.Operations
}

// New selects the FileSystem variant for dev.
func New(dev device.Device, deps Deps, opts Options) (FileSystem, error) {
	switch dev.Platform {
	case device.PlatformAndroid:
		if deps.Bridge == nil {
			return nil, ErrNoBridge
		}
		return NewAndroid(dev.Identifier, deps.Bridge, opts), nil
	case device.PlatformIOS:
		if deps.Operations == nil {
			return nil, ErrNoOperations
		}
		return NewIOS(dev.Identifier, deps.Operations, opts), nil
	default:
		return nil, fmt.Errorf("%w: %q", device.ErrUnknownPlatform, dev.Platform)
	}
}

// claim checks that every descriptor belongs to deviceID.
func claim(deviceID string, descs []Descriptor) error {
	for _, d := range descs {
		if d.DeviceID != "" && d.DeviceID != deviceID {
			return fmt.Errorf("%w: %s belongs to %s, not %s", ErrForeignDescriptor, d.LocalPath, d.DeviceID, deviceID)
		}
	}
	return nil
}

func defaultPath(p string) string {
	if p == "" {
		return "."
	}
	return p
}

var (
	_ FileSystem = (*Android)(nil)
	_ FileSystem = (*IOS)(nil)
)
