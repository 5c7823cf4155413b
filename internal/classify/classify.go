// Package classify turns raw toolchain output into actionable errors.
//
// Bridge results (exit code plus stdout/stderr text) and per-file device
// errors (numeric code plus message) are both reduced to Error values. Apply
// then decides whether they fail the operation, become warnings, or, for
// known-benign sentinel conditions, are dropped to a trace log entry.
package classify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmgilman/devbridge/internal/exec"
	"github.com/jmgilman/devbridge/internal/slogger"
)

// Sentinel error kinds. Every Error unwraps to exactly one of these.
var (
	ErrDeviceNotFound  = errors.New("device not found")
	ErrMultipleDevices = errors.New("more than one device or emulator attached")
	ErrDeviceOffline   = errors.New("device offline")
	ErrUnauthorized    = errors.New("device unauthorized")
	ErrInstallFailed   = errors.New("application install failed")
	ErrNoSuchFile      = errors.New("no such file or directory")
	ErrNonZeroExit     = errors.New("command exited with non-zero status")
	ErrFileOperation   = errors.New("device file operation failed")
)

// AFCObjectNotFound is the AFC status code a device reports when deleting a
// path that is already absent.
const AFCObjectNotFound = 8

// Op names a device file operation for per-file classification.
type Op string

// File operations reported by the device-operations capability.
const (
	OpList     Op = "list"
	OpRead     Op = "read"
	OpDownload Op = "download"
	OpUpload   Op = "upload"
	OpDelete   Op = "delete"
)

// Error is a single classified failure.
type Error struct {
	Kind    error  // One of the sentinel kinds above
	Code    int    // Exit code or device status code
	Message string // Toolchain-provided text
	Benign  bool   // Known-harmless condition; never surfaced to callers
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s (code %d)", e.Kind, e.Code)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// OperationError aggregates every fatal Error produced by one operation.
type OperationError struct {
	Op     string
	Errors []*Error
}

func (e *OperationError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Op, strings.Join(msgs, "; "))
}

// Unwrap exposes the individual errors so errors.Is matches any kind.
func (e *OperationError) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, err := range e.Errors {
		errs[i] = err
	}
	return errs
}

// bridgePattern maps a line of bridge output to an error kind.
type bridgePattern struct {
	match  func(line string) bool
	kind   error
	benign bool
}

func contains(s string) func(string) bool {
	return func(line string) bool { return strings.Contains(line, s) }
}

// bridgePatterns is ordered; the first match wins for a given stderr line.
var bridgePatterns = []bridgePattern{
	{match: isMissingRemoveTarget, kind: ErrNoSuchFile, benign: true},
	{match: contains("more than one device"), kind: ErrMultipleDevices},
	{match: contains("more than one emulator"), kind: ErrMultipleDevices},
	{match: contains("device offline"), kind: ErrDeviceOffline},
	{match: contains("device unauthorized"), kind: ErrUnauthorized},
	{match: isDeviceNotFound, kind: ErrDeviceNotFound},
	{match: contains("INSTALL_FAILED_"), kind: ErrInstallFailed},
	{match: contains("INSTALL_PARSE_FAILED_"), kind: ErrInstallFailed},
}

// stdoutPatterns apply to stdout, which otherwise carries command payload
// (file content, listings, property values).
var stdoutPatterns = []bridgePattern{
	{match: contains("Failure [INSTALL_"), kind: ErrInstallFailed},
}

// isMissingRemoveTarget matches the on-device rm complaining about a path
// that is already gone, e.g. "rm: /sdcard/x: No such file or directory".
func isMissingRemoveTarget(line string) bool {
	return strings.HasPrefix(line, "rm: ") && strings.HasSuffix(line, "No such file or directory")
}

// isDeviceNotFound matches "error: device not found" and
// "error: device '<serial>' not found".
func isDeviceNotFound(line string) bool {
	if !strings.Contains(line, "error:") || !strings.Contains(line, "not found") {
		return false
	}
	return strings.Contains(line, "device ")
}

// Classify inspects a bridge execution result and returns every recognized
// failure. Toolchain conditions are read from stderr regardless of exit code;
// stdout is only checked for the install failure report, which the package
// manager prints there with status 0.
//
// A non-zero exit yields an ErrNonZeroExit finding unless a fatal pattern
// already explains it. Benign matches alone do not: stderr lines they leave
// unexplained still count as a failure.
func Classify(result *exec.Result) []*Error {
	if result == nil {
		return nil
	}

	var (
		errs      []*Error
		unmatched []string
		fatal     bool
	)
	for _, line := range lines(result.Stderr) {
		e := match(bridgePatterns, line, result.ExitCode)
		if e == nil {
			unmatched = append(unmatched, line)
			continue
		}
		fatal = fatal || !e.Benign
		errs = append(errs, e)
	}
	for _, line := range lines(result.Stdout) {
		if e := match(stdoutPatterns, line, result.ExitCode); e != nil {
			fatal = true
			errs = append(errs, e)
		}
	}

	if result.ExitCode != 0 && !fatal && (len(errs) == 0 || len(unmatched) > 0) {
		msg := strings.Join(unmatched, "\n")
		if len(errs) == 0 {
			msg = exitMessage(result)
		}
		errs = append(errs, &Error{
			Kind:    ErrNonZeroExit,
			Code:    result.ExitCode,
			Message: msg,
		})
	}

	return errs
}

// ExitStatus reports a non-zero exit as a single ErrNonZeroExit finding
// without interpreting the output. It suits tools other than the bridge.
func ExitStatus(result *exec.Result) []*Error {
	if result == nil || result.ExitCode == 0 {
		return nil
	}
	return []*Error{{Kind: ErrNonZeroExit, Code: result.ExitCode, Message: exitMessage(result)}}
}

func match(patterns []bridgePattern, line string, code int) *Error {
	for _, p := range patterns {
		if p.match(line) {
			return &Error{Kind: p.kind, Code: code, Message: line, Benign: p.benign}
		}
	}
	return nil
}

// ClassifyFile classifies a per-file error reported by the device-operations
// capability. A missing target on delete is benign.
func ClassifyFile(op Op, code int, message string) *Error {
	if op == OpDelete && code == AFCObjectNotFound {
		return &Error{Kind: ErrNoSuchFile, Code: code, Message: message, Benign: true}
	}
	return &Error{Kind: ErrFileOperation, Code: code, Message: message}
}

// Apply enforces the error policy for op. Benign errors are always logged at
// trace level and dropped. Remaining errors are logged as warnings when
// treatAsWarnings is set; otherwise they are returned as one *OperationError.
func Apply(ctx context.Context, logger *slog.Logger, op string, errs []*Error, treatAsWarnings bool) error {
	logger = slogger.OrDiscard(logger)

	var fatal []*Error
	for _, e := range errs {
		switch {
		case e.Benign:
			slogger.Trace(ctx, logger, "ignoring benign toolchain error",
				"op", op, "code", e.Code, "message", e.Message)
		case treatAsWarnings:
			logger.WarnContext(ctx, e.Error(), "op", op, "code", e.Code)
		default:
			fatal = append(fatal, e)
		}
	}

	if len(fatal) == 0 {
		return nil
	}
	return &OperationError{Op: op, Errors: fatal}
}

func lines(stream []byte) []string {
	var out []string
	for _, line := range strings.Split(string(stream), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func exitMessage(result *exec.Result) string {
	if stderr := strings.TrimSpace(string(result.Stderr)); stderr != "" {
		return stderr
	}
	if stdout := strings.TrimSpace(string(result.Stdout)); stdout != "" {
		return stdout
	}
	return fmt.Sprintf("exit status %d", result.ExitCode)
}
