package spinner

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{"fits", "booting", 20, "booting"},
		{"cut with ellipsis", "booting iPhone 15 simulator", 10, "booting..."},
		{"too narrow", "booting", 3, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, truncate(tt.in, tt.width))
		})
	}
}

func TestRun_NonTerminalPassesOutputThrough(t *testing.T) {
	var out bytes.Buffer

	err := Run(&out, "Booting", func(progress io.Writer) error {
		fmt.Fprintln(progress, "waiting for runtime")
		return errors.New("boot failed")
	})

	assert.EqualError(t, err, "boot failed")
	assert.Equal(t, "waiting for runtime\n", out.String())
}

func TestModel_View(t *testing.T) {
	m := newModel("Booting", nil, 40)
	m.statusLine = "loading runtime"

	view := m.View()
	assert.Contains(t, view, "Booting")
	assert.Contains(t, view, "loading runtime")

	m.quitting = true
	assert.Empty(t, m.View())
}
