package adb

import (
	"slices"
	"strings"
)

// deviceFlag selects the target device; it must precede the subcommand.
const deviceFlag = "-s"

// Command is a composed bridge invocation. It is immutable: Args returns a copy.
type Command struct {
	path string
	args []string
}

// Path returns the bridge executable path.
func (c Command) Path() string {
	return c.path
}

// Args returns a copy of the argument vector.
func (c Command) Args() []string {
	return slices.Clone(c.args)
}

func (c Command) String() string {
	return strings.Join(append([]string{c.path}, c.args...), " ")
}

// Compose builds the invocation for args against deviceID. An empty deviceID
// omits device targeting so the bridge falls back to its default device.
// The caller's slice is never retained or modified.
func Compose(path string, args []string, deviceID string) Command {
	composed := make([]string, 0, len(args)+2)
	if deviceID != "" {
		composed = append(composed, deviceFlag, deviceID)
	}
	composed = append(composed, args...)
	return Command{path: path, args: composed}
}
