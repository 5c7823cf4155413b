// Package iosdevice defines the device-operations capability used to move
// files to and from iOS devices, and an implementation backed by go-ios.
//
// Every operation takes a batch of per-device requests and settles each file
// independently: one file failing never prevents the others from running.
// The returned error is reserved for the batch failing as a whole (for
// example, the device connection could not be opened).
package iosdevice

import (
	"context"
	"fmt"
)

// Status codes reported in FileError.Code. They follow the AFC status values.
const (
	CodeUnknown        = 1
	CodeObjectNotFound = 8
)

// FileRequest addresses one path on a device.
type FileRequest struct {
	DeviceID string
	AppID    string // Bundle ID whose container is addressed (empty = media domain)
	Path     string
}

// FileData pairs a source and destination path.
type FileData struct {
	Source      string
	Destination string
}

// TransferRequest moves one or more files for a single device/app pair.
type TransferRequest struct {
	DeviceID string
	AppID    string
	Files    []FileData
}

// DeleteRequest removes one path.
type DeleteRequest struct {
	DeviceID    string
	AppID       string
	Destination string
}

// FileError is a per-file failure reported by the device.
type FileError struct {
	DeviceID string
	Path     string
	Code     int
	Message  string
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %s (code %d)", e.Path, e.Message, e.Code)
}

// Outcome is the settled result for one file.
type Outcome struct {
	DeviceID string
	Path     string
	Entries  []string // Directory entries (list)
	Content  []byte   // File content (read)
	Err      *FileError
}

// Results groups outcomes by device identity.
type Results map[string][]Outcome

// Failures returns every failed outcome across all devices.
func (r Results) Failures() []*FileError {
	var errs []*FileError
	for _, outcomes := range r {
		for _, o := range outcomes {
			if o.Err != nil {
				errs = append(errs, o.Err)
			}
		}
	}
	return errs
}

// Operations is the device-operations capability.
//
//go:generate go run github.com/matryer/moq@latest -pkg mocks -out mocks/operations.go . Operations
type Operations interface {
	// ListDirectory returns the entries of each requested directory.
	ListDirectory(ctx context.Context, reqs []FileRequest) (Results, error)

	// ReadFiles returns the content of each requested file.
	ReadFiles(ctx context.Context, reqs []FileRequest) (Results, error)

	// DownloadFiles copies device files (Source) to local paths (Destination).
	DownloadFiles(ctx context.Context, reqs []TransferRequest) (Results, error)

	// UploadFiles copies local files (Source) to device paths (Destination).
	UploadFiles(ctx context.Context, reqs []TransferRequest) (Results, error)

	// DeleteFiles removes each requested path.
	DeleteFiles(ctx context.Context, reqs []DeleteRequest) (Results, error)
}
