package iosdevice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/danielpaulus/go-ios/ios"
	"github.com/danielpaulus/go-ios/ios/afc"
	"github.com/google/uuid"

	"github.com/jmgilman/devbridge/internal/slogger"
)

// fileService is one open file-service session on a device.
type fileService interface {
	list(path string) ([]string, error)
	pull(src, dst string) error
	push(src, dst string) error
	remove(path string) error
	exists(path string) bool
	close()
}

// openFunc opens a file-service session for a device, scoped to appID's
// container when appID is set.
type openFunc func(deviceID, appID string) (fileService, error)

// GoIOS implements Operations over usbmuxd using go-ios.
type GoIOS struct {
	open   openFunc
	logger *slog.Logger
}

// NewGoIOS creates an Operations backed by go-ios.
func NewGoIOS(logger *slog.Logger) *GoIOS {
	return &GoIOS{open: openService, logger: slogger.OrDiscard(logger)}
}

func (g *GoIOS) ListDirectory(ctx context.Context, reqs []FileRequest) (Results, error) {
	return g.eachFile(ctx, "list", reqs, func(svc fileService, req FileRequest) Outcome {
		entries, err := svc.list(req.Path)
		if err != nil {
			return failed(req.DeviceID, req.Path, CodeObjectNotFound, err)
		}
		return Outcome{DeviceID: req.DeviceID, Path: req.Path, Entries: entries}
	})
}

func (g *GoIOS) ReadFiles(ctx context.Context, reqs []FileRequest) (Results, error) {
	return g.eachFile(ctx, "read", reqs, func(svc fileService, req FileRequest) Outcome {
		tmp, err := os.MkdirTemp("", "devbridge-read-")
		if err != nil {
			return failed(req.DeviceID, req.Path, CodeUnknown, err)
		}
		defer os.RemoveAll(tmp)

		local := filepath.Join(tmp, filepath.Base(req.Path))
		if err := svc.pull(req.Path, local); err != nil {
			return failed(req.DeviceID, req.Path, codeFor(svc, req.Path), err)
		}

		//nolint:gosec // G304: local is inside our own temp directory
		content, err := os.ReadFile(local)
		if err != nil {
			return failed(req.DeviceID, req.Path, CodeUnknown, err)
		}
		return Outcome{DeviceID: req.DeviceID, Path: req.Path, Content: content}
	})
}

func (g *GoIOS) DownloadFiles(ctx context.Context, reqs []TransferRequest) (Results, error) {
	return g.eachTransfer(ctx, "download", reqs, func(svc fileService, deviceID string, f FileData) Outcome {
		if err := svc.pull(f.Source, f.Destination); err != nil {
			return failed(deviceID, f.Source, codeFor(svc, f.Source), err)
		}
		return Outcome{DeviceID: deviceID, Path: f.Source}
	})
}

func (g *GoIOS) UploadFiles(ctx context.Context, reqs []TransferRequest) (Results, error) {
	return g.eachTransfer(ctx, "upload", reqs, func(svc fileService, deviceID string, f FileData) Outcome {
		if err := svc.push(f.Source, f.Destination); err != nil {
			return failed(deviceID, f.Destination, CodeUnknown, err)
		}
		return Outcome{DeviceID: deviceID, Path: f.Destination}
	})
}

func (g *GoIOS) DeleteFiles(ctx context.Context, reqs []DeleteRequest) (Results, error) {
	fileReqs := make([]FileRequest, len(reqs))
	for i, r := range reqs {
		fileReqs[i] = FileRequest{DeviceID: r.DeviceID, AppID: r.AppID, Path: r.Destination}
	}
	return g.eachFile(ctx, "delete", fileReqs, func(svc fileService, req FileRequest) Outcome {
		if err := svc.remove(req.Path); err != nil {
			return failed(req.DeviceID, req.Path, codeFor(svc, req.Path), err)
		}
		return Outcome{DeviceID: req.DeviceID, Path: req.Path}
	})
}

// session key: one open service per device/app pair within a batch.
type sessionKey struct {
	deviceID string
	appID    string
}

type sessions struct {
	open  openFunc
	byKey map[sessionKey]fileService
}

func (s *sessions) get(deviceID, appID string) (fileService, error) {
	key := sessionKey{deviceID, appID}
	if svc, ok := s.byKey[key]; ok {
		return svc, nil
	}
	svc, err := s.open(deviceID, appID)
	if err != nil {
		return nil, &DeviceError{DeviceID: deviceID, Err: err}
	}
	s.byKey[key] = svc
	return svc, nil
}

func (s *sessions) closeAll() {
	for _, svc := range s.byKey {
		svc.close()
	}
}

func (g *GoIOS) eachFile(ctx context.Context, op string, reqs []FileRequest, fn func(fileService, FileRequest) Outcome) (Results, error) {
	batch := uuid.NewString()
	ss := &sessions{open: g.open, byKey: make(map[sessionKey]fileService)}
	defer ss.closeAll()

	results := make(Results)
	for _, req := range reqs {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		svc, err := ss.get(req.DeviceID, req.AppID)
		if err != nil {
			return results, err
		}
		out := fn(svc, req)
		g.logOutcome(ctx, batch, op, out)
		results[req.DeviceID] = append(results[req.DeviceID], out)
	}
	return results, nil
}

func (g *GoIOS) eachTransfer(ctx context.Context, op string, reqs []TransferRequest, fn func(fileService, string, FileData) Outcome) (Results, error) {
	batch := uuid.NewString()
	ss := &sessions{open: g.open, byKey: make(map[sessionKey]fileService)}
	defer ss.closeAll()

	results := make(Results)
	for _, req := range reqs {
		svc, err := ss.get(req.DeviceID, req.AppID)
		if err != nil {
			return results, err
		}
		for _, f := range req.Files {
			if err := ctx.Err(); err != nil {
				return results, err
			}
			out := fn(svc, req.DeviceID, f)
			g.logOutcome(ctx, batch, op, out)
			results[req.DeviceID] = append(results[req.DeviceID], out)
		}
	}
	return results, nil
}

func (g *GoIOS) logOutcome(ctx context.Context, batch, op string, out Outcome) {
	if out.Err != nil {
		g.logger.DebugContext(ctx, "device file operation failed",
			"batch", batch, "op", op, "device", out.DeviceID, "path", out.Path, "code", out.Err.Code)
		return
	}
	slogger.Trace(ctx, g.logger, "device file operation done",
		"batch", batch, "op", op, "device", out.DeviceID, "path", out.Path)
}

// DeviceError reports that a device session could not be opened, failing
// the whole batch for that device.
type DeviceError struct {
	DeviceID string
	Err      error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("device %s: %v", e.DeviceID, e.Err)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}

func failed(deviceID, path string, code int, err error) Outcome {
	return Outcome{
		DeviceID: deviceID,
		Path:     path,
		Err:      &FileError{DeviceID: deviceID, Path: path, Code: code, Message: err.Error()},
	}
}

// codeFor derives a status code for a failed operation on path. The go-ios
// errors are plain text, so a missing path is detected with a stat.
func codeFor(svc fileService, path string) int {
	if !svc.exists(path) {
		return CodeObjectNotFound
	}
	return CodeUnknown
}

const houseArrestService = "com.apple.mobile.house_arrest"

func openService(deviceID, appID string) (fileService, error) {
	entry, err := ios.GetDevice(deviceID)
	if err != nil {
		return nil, fmt.Errorf("find device: %w", err)
	}

	if appID == "" {
		conn, err := afc.New(entry)
		if err != nil {
			return nil, fmt.Errorf("open afc: %w", err)
		}
		return &afcSession{conn: conn}, nil
	}

	deviceConn, err := ios.ConnectToService(entry, houseArrestService)
	if err != nil {
		return nil, fmt.Errorf("open container for %s: %w", appID, err)
	}
	if err := vendContainer(deviceConn, appID); err != nil {
		_ = deviceConn.Close()
		return nil, fmt.Errorf("open container for %s: %w", appID, err)
	}
	return &afcSession{conn: afc.NewFromConn(deviceConn)}, nil
}

// plistConn is the part of a device connection used for the house_arrest
// handshake.
type plistConn interface {
	Send(message []byte) error
	Reader() io.Reader
}

// vendContainer asks house_arrest for appID's container. On success the
// connection speaks AFC rooted at that container.
func vendContainer(conn plistConn, appID string) error {
	codec := ios.NewPlistCodec()
	msg, err := codec.Encode(map[string]interface{}{"Command": "VendContainer", "Identifier": appID})
	if err != nil {
		return err
	}
	if err := conn.Send(msg); err != nil {
		return err
	}

	raw, err := codec.Decode(conn.Reader())
	if err != nil {
		return err
	}
	resp, err := ios.ParsePlist(raw)
	if err != nil {
		return err
	}
	if status, _ := resp["Status"].(string); status == "Complete" {
		return nil
	}
	if reason, _ := resp["Error"].(string); reason != "" {
		return errors.New(reason)
	}
	return errors.New("vend container: unexpected response")
}

// afcSession is an AFC session on the media partition or, when opened
// through house_arrest, on an application's container.
type afcSession struct {
	conn *afc.Connection
}

func (a *afcSession) list(path string) ([]string, error) {
	return a.conn.ListFiles(path, "*")
}

func (a *afcSession) pull(src, dst string) error {
	return a.conn.Pull(src, dst)
}

func (a *afcSession) push(src, dst string) error {
	return a.conn.Push(src, dst)
}

func (a *afcSession) remove(path string) error {
	return a.conn.Remove(path)
}

func (a *afcSession) exists(path string) bool {
	_, err := a.conn.Stat(path)
	return err == nil
}

func (a *afcSession) close() {
	a.conn.Close()
}
