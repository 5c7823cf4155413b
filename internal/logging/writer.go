// Package logging mirrors simulator console output to a capture file.
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Mode selects how an existing capture file is opened.
type Mode int

const (
	// Truncate starts a fresh capture file.
	Truncate Mode = iota
	// Append adds to an existing capture file.
	Append
)

// TeeWriter copies everything written to it into a capture file and then
// to an optional primary writer.
type TeeWriter struct {
	primary io.Writer
	file    *os.File
	owner   bool // Only the owner closes file
	mu      *sync.Mutex
}

func openCapture(path string, mode Mode) (*os.File, error) {
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if mode == Append {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	//nolint:gosec // G302/G304: capture path is chosen by the user on the command line
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open capture file: %w", err)
	}
	return f, nil
}

// NewTeeWriter creates a TeeWriter writing to primary and the file at path.
// A nil primary writes to the file only.
func NewTeeWriter(primary io.Writer, path string, mode Mode) (*TeeWriter, error) {
	f, err := openCapture(path, mode)
	if err != nil {
		return nil, err
	}
	return &TeeWriter{primary: primary, file: f, owner: true, mu: &sync.Mutex{}}, nil
}

// Write writes p to the capture file, then to the primary writer.
func (t *TeeWriter) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.file != nil {
		if _, err := t.file.Write(p); err != nil {
			return 0, fmt.Errorf("write capture file: %w", err)
		}
	}
	if t.primary != nil {
		return t.primary.Write(p)
	}
	return len(p), nil
}

// Close closes the capture file. The primary writer is left open.
func (t *TeeWriter) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.file == nil {
		return nil
	}
	f := t.file
	t.file = nil
	if !t.owner {
		return nil
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close capture file: %w", err)
	}
	return nil
}

// Path returns the capture file path, or "" once closed.
func (t *TeeWriter) Path() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.file != nil {
		return t.file.Name()
	}
	return ""
}

// Console holds stdout and stderr writers sharing one capture file, so the
// file interleaves both streams in arrival order.
type Console struct {
	Stdout *TeeWriter
	Stderr *TeeWriter
}

// NewConsole creates writers for stdout and stderr that both mirror into the
// file at path.
func NewConsole(stdout, stderr io.Writer, path string, mode Mode) (*Console, error) {
	f, err := openCapture(path, mode)
	if err != nil {
		return nil, err
	}

	mu := &sync.Mutex{}
	return &Console{
		Stdout: &TeeWriter{primary: stdout, file: f, owner: true, mu: mu},
		Stderr: &TeeWriter{primary: stderr, file: f, mu: mu},
	}, nil
}

// Close closes the shared capture file.
func (c *Console) Close() error {
	errStderr := c.Stderr.Close()
	if err := c.Stdout.Close(); err != nil {
		return err
	}
	return errStderr
}
