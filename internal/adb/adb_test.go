package adb

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/devbridge/internal/classify"
	"github.com/jmgilman/devbridge/internal/exec"
	"github.com/jmgilman/devbridge/internal/exec/mocks"
	"github.com/jmgilman/devbridge/internal/slogger"
)

const testADB = "/opt/android/platform-tools/adb"

func staticPath() (string, error) {
	return testADB, nil
}

func newBridge(e exec.Executor, logger *slog.Logger) *Bridge {
	return New(e, Config{ResolvePath: staticPath, Logger: logger})
}

func TestCompose(t *testing.T) {
	t.Run("prepends device selection before args", func(t *testing.T) {
		for _, id := range []string{"emulator-5554", "R58M123ABC", "192.168.1.20:5555"} {
			args := []string{"shell", "ls"}
			cmd := Compose(testADB, args, id)

			assert.Equal(t, testADB, cmd.Path())
			assert.Equal(t, []string{"-s", id, "shell", "ls"}, cmd.Args())
			assert.Equal(t, []string{"shell", "ls"}, args, "caller slice must be untouched")
		}
	})

	t.Run("leaves args unmodified without device", func(t *testing.T) {
		cmd := Compose(testADB, []string{"devices"}, "")
		assert.Equal(t, []string{"devices"}, cmd.Args())
	})

	t.Run("args accessor returns a copy", func(t *testing.T) {
		cmd := Compose(testADB, []string{"devices"}, "")
		args := cmd.Args()
		args[0] = "mutated"

		assert.Equal(t, []string{"devices"}, cmd.Args())
	})

	t.Run("string form", func(t *testing.T) {
		cmd := Compose("adb", []string{"push", "a", "b"}, "x")
		assert.Equal(t, "adb -s x push a b", cmd.String())
	})
}

func TestBridge_Path(t *testing.T) {
	t.Run("resolves once", func(t *testing.T) {
		calls := 0
		b := New(&mocks.ExecutorMock{}, Config{ResolvePath: func() (string, error) {
			calls++
			return testADB, nil
		}})

		for range 3 {
			p, err := b.Path()
			require.NoError(t, err)
			assert.Equal(t, testADB, p)
		}
		assert.Equal(t, 1, calls)
	})

	t.Run("surfaces resolver failure", func(t *testing.T) {
		b := New(&mocks.ExecutorMock{}, Config{ResolvePath: func() (string, error) {
			return "", errors.New("adb not installed")
		}})

		_, err := b.ExecuteCommand(context.Background(), []string{"devices"}, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "adb not installed")
	})

	t.Run("missing resolver", func(t *testing.T) {
		b := New(&mocks.ExecutorMock{}, Config{})
		_, err := b.Path()
		assert.ErrorIs(t, err, ErrNoResolver)
	})
}

func TestBridge_ExecuteCommand(t *testing.T) {
	ctx := context.Background()

	t.Run("returns stdout on success", func(t *testing.T) {
		mockExec := &mocks.ExecutorMock{
			RunFunc: func(_ context.Context, opts *exec.RunOptions) (*exec.Result, error) {
				assert.Equal(t, testADB, opts.Name)
				assert.Equal(t, []string{"-s", "emu", "shell", "echo", "hi"}, opts.Args)
				return &exec.Result{Stdout: []byte("hi\n")}, nil
			},
		}

		out, err := newBridge(mockExec, nil).ExecuteShellCommand(ctx, []string{"echo", "hi"}, &CommandOptions{DeviceID: "emu"})

		require.NoError(t, err)
		assert.Equal(t, "hi\n", out)
	})

	t.Run("non-sentinel failure is fatal by default", func(t *testing.T) {
		for _, code := range []int{1, 2, 127, 255} {
			mockExec := &mocks.ExecutorMock{
				RunFunc: func(context.Context, *exec.RunOptions) (*exec.Result, error) {
					return &exec.Result{Stderr: []byte("something broke"), ExitCode: code}, nil
				},
			}

			_, err := newBridge(mockExec, nil).ExecuteCommand(ctx, []string{"install", "app.apk"}, nil)

			require.Error(t, err)
			var opErr *classify.OperationError
			require.ErrorAs(t, err, &opErr)
			assert.Equal(t, code, opErr.Errors[0].Code)
		}
	})

	t.Run("non-sentinel failure becomes a warning when requested", func(t *testing.T) {
		mockExec := &mocks.ExecutorMock{
			RunFunc: func(context.Context, *exec.RunOptions) (*exec.Result, error) {
				return &exec.Result{Stdout: []byte("partial"), Stderr: []byte("something broke"), ExitCode: 1}, nil
			},
		}
		logger, rec := slogger.NewRecorder()

		out, err := newBridge(mockExec, logger).ExecuteCommand(ctx, []string{"install", "app.apk"}, &CommandOptions{TreatErrorsAsWarnings: true})

		require.NoError(t, err)
		assert.Equal(t, "partial", out)
		assert.Len(t, rec.Records(slog.LevelWarn), 1)
	})

	t.Run("benign sentinel never fails", func(t *testing.T) {
		for _, warn := range []bool{false, true} {
			mockExec := &mocks.ExecutorMock{
				RunFunc: func(context.Context, *exec.RunOptions) (*exec.Result, error) {
					return &exec.Result{Stderr: []byte("rm: /sdcard/x: No such file or directory\n"), ExitCode: 1}, nil
				},
			}

			_, err := newBridge(mockExec, nil).ExecuteShellCommand(ctx, []string{"rm", "/sdcard/x"}, &CommandOptions{TreatErrorsAsWarnings: warn})
			assert.NoError(t, err)
		}
	})

	t.Run("benign entry does not hide other removal failures", func(t *testing.T) {
		mockExec := &mocks.ExecutorMock{
			RunFunc: func(context.Context, *exec.RunOptions) (*exec.Result, error) {
				return &exec.Result{
					Stderr:   []byte("rm: /sdcard/dir/a: No such file or directory\nrm: /sdcard/dir/b: Permission denied\n"),
					ExitCode: 1,
				}, nil
			},
		}

		_, err := newBridge(mockExec, nil).ExecuteShellCommand(ctx, []string{"rm", "-r", "/sdcard/dir"}, nil)

		require.Error(t, err)
		assert.ErrorIs(t, err, classify.ErrNonZeroExit)
		assert.Contains(t, err.Error(), "Permission denied")
	})

	t.Run("file content on stdout is not classified", func(t *testing.T) {
		payloads := []string{
			"line 1\nlast run: error: device not found\n",
			"error: device offline\n",
			"error: more than one device/emulator\n",
			"error: device unauthorized.\n",
			"INSTALL_FAILED_x.log\nrm: /x: No such file or directory\n",
		}
		for _, payload := range payloads {
			mockExec := &mocks.ExecutorMock{
				RunFunc: func(context.Context, *exec.RunOptions) (*exec.Result, error) {
					return &exec.Result{Stdout: []byte(payload)}, nil
				},
			}

			out, err := newBridge(mockExec, nil).ExecuteShellCommand(ctx, []string{"cat", "/sdcard/notes.txt"}, nil)

			require.NoError(t, err, payload)
			assert.Equal(t, payload, out)
		}
	})

	t.Run("invalid device is classified", func(t *testing.T) {
		mockExec := &mocks.ExecutorMock{
			RunFunc: func(context.Context, *exec.RunOptions) (*exec.Result, error) {
				return &exec.Result{Stderr: []byte("error: device 'nope' not found\r\n"), ExitCode: 255}, nil
			},
		}

		_, err := newBridge(mockExec, nil).ExecuteCommand(ctx, []string{"install", "a.apk"}, &CommandOptions{DeviceID: "nope"})

		assert.ErrorIs(t, err, classify.ErrDeviceNotFound)
	})

	t.Run("start and timeout errors propagate unclassified", func(t *testing.T) {
		mockExec := &mocks.ExecutorMock{
			RunFunc: func(context.Context, *exec.RunOptions) (*exec.Result, error) {
				return &exec.Result{ExitCode: -1}, exec.ErrTimeout
			},
		}

		_, err := newBridge(mockExec, nil).ExecuteCommand(ctx, []string{"wait-for-device"}, nil)

		assert.ErrorIs(t, err, exec.ErrTimeout)
	})

	t.Run("applies configured and per-call timeouts", func(t *testing.T) {
		var seen []time.Duration
		mockExec := &mocks.ExecutorMock{
			RunFunc: func(_ context.Context, opts *exec.RunOptions) (*exec.Result, error) {
				seen = append(seen, opts.Timeout)
				return &exec.Result{}, nil
			},
		}
		b := New(mockExec, Config{ResolvePath: staticPath, Timeout: time.Minute})

		_, err := b.ExecuteCommand(ctx, []string{"devices"}, nil)
		require.NoError(t, err)
		_, err = b.ExecuteCommand(ctx, []string{"devices"}, &CommandOptions{Timeout: time.Second})
		require.NoError(t, err)

		assert.Equal(t, []time.Duration{time.Minute, time.Second}, seen)
	})
}

func TestBridge_StartCommand(t *testing.T) {
	proc := &mocks.ProcessMock{}
	mockExec := &mocks.ExecutorMock{
		StartFunc: func(_ context.Context, opts *exec.RunOptions) (exec.Process, error) {
			assert.Equal(t, []string{"-s", "emu", "logcat"}, opts.Args)
			return proc, nil
		},
	}

	p, err := newBridge(mockExec, nil).StartCommand(context.Background(), []string{"logcat"}, &CommandOptions{DeviceID: "emu"})

	require.NoError(t, err)
	assert.Same(t, proc, p)
	assert.Empty(t, mockExec.RunCalls())
}

func TestBridge_PushFile(t *testing.T) {
	ctx := context.Background()

	t.Run("creates directory, pushes, then resets permissions", func(t *testing.T) {
		mockExec := &mocks.ExecutorMock{
			RunFunc: func(context.Context, *exec.RunOptions) (*exec.Result, error) {
				return &exec.Result{}, nil
			},
		}

		err := newBridge(mockExec, nil).PushFile(ctx, "emu", "/tmp/app.js", "/data/local/tmp/sync/app.js")
		require.NoError(t, err)

		calls := mockExec.RunCalls()
		require.Len(t, calls, 3)
		assert.Equal(t, []string{"-s", "emu", "shell", "mkdir", "-p", "/data/local/tmp/sync"}, calls[0].Opts.Args)
		assert.Equal(t, []string{"-s", "emu", "push", "/tmp/app.js", "/data/local/tmp/sync/app.js"}, calls[1].Opts.Args)
		assert.Equal(t, []string{"-s", "emu", "shell", "chmod", "0777", "/data/local/tmp/sync"}, calls[2].Opts.Args)
	})

	t.Run("stops at the failing step", func(t *testing.T) {
		mockExec := &mocks.ExecutorMock{
			RunFunc: func(_ context.Context, opts *exec.RunOptions) (*exec.Result, error) {
				if opts.Args[2] == "push" {
					return &exec.Result{Stderr: []byte("adb: error: failed to copy"), ExitCode: 1}, nil
				}
				return &exec.Result{}, nil
			},
		}

		err := newBridge(mockExec, nil).PushFile(ctx, "emu", "/tmp/a", "/sdcard/a")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "push /tmp/a")
		assert.Len(t, mockExec.RunCalls(), 2)
	})
}

func TestBridge_GetPropertyValue(t *testing.T) {
	mockExec := &mocks.ExecutorMock{
		RunFunc: func(_ context.Context, opts *exec.RunOptions) (*exec.Result, error) {
			assert.Equal(t, []string{"-s", "emu", "shell", "getprop", "ro.build.version.sdk"}, opts.Args)
			return &exec.Result{Stdout: []byte("34\r\n")}, nil
		},
	}

	v, err := newBridge(mockExec, nil).GetPropertyValue(context.Background(), "emu", "ro.build.version.sdk")

	require.NoError(t, err)
	assert.Equal(t, "34", v)
}

func TestBridge_GetDevices(t *testing.T) {
	tests := []struct {
		name   string
		stdout string
		want   []string
	}{
		{
			name:   "single device",
			stdout: "List of devices attached\nemulator-5554\tdevice\n\n",
			want:   []string{"emulator-5554\tdevice"},
		},
		{
			name:   "windows line endings",
			stdout: "List of devices attached\r\nemulator-5554\tdevice\r\nR58M\toffline\r\n\r\n",
			want:   []string{"emulator-5554\tdevice", "R58M\toffline"},
		},
		{
			name:   "no devices",
			stdout: "List of devices attached\n\n",
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockExec := &mocks.ExecutorMock{
				RunFunc: func(_ context.Context, opts *exec.RunOptions) (*exec.Result, error) {
					assert.Equal(t, []string{"devices"}, opts.Args)
					return &exec.Result{Stdout: []byte(tt.stdout)}, nil
				},
			}

			got, err := newBridge(mockExec, nil).GetDevices(context.Background())

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
