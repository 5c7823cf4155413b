package classify

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/devbridge/internal/exec"
	"github.com/jmgilman/devbridge/internal/slogger"
)

func TestClassify(t *testing.T) {
	t.Run("nil and clean results yield nothing", func(t *testing.T) {
		assert.Empty(t, Classify(nil))
		assert.Empty(t, Classify(&exec.Result{Stdout: []byte("ok\n")}))
	})

	tests := []struct {
		name   string
		result *exec.Result
		kind   error
		benign bool
	}{
		{
			name:   "invalid device serial",
			result: &exec.Result{Stderr: []byte("error: device '030939f508e6c773' not found\r\n"), ExitCode: 255},
			kind:   ErrDeviceNotFound,
		},
		{
			name:   "no device attached",
			result: &exec.Result{Stderr: []byte("error: device not found\n"), ExitCode: 1},
			kind:   ErrDeviceNotFound,
		},
		{
			name:   "ambiguous target",
			result: &exec.Result{Stderr: []byte("error: more than one device/emulator\n"), ExitCode: 1},
			kind:   ErrMultipleDevices,
		},
		{
			name:   "offline device",
			result: &exec.Result{Stderr: []byte("error: device offline\n"), ExitCode: 1},
			kind:   ErrDeviceOffline,
		},
		{
			name:   "unauthorized device",
			result: &exec.Result{Stderr: []byte("error: device unauthorized.\n"), ExitCode: 1},
			kind:   ErrUnauthorized,
		},
		{
			name:   "install failure reported with status 0",
			result: &exec.Result{Stdout: []byte("Failure [INSTALL_FAILED_VERSION_DOWNGRADE]\n"), ExitCode: 0},
			kind:   ErrInstallFailed,
		},
		{
			name:   "removing an absent path is benign",
			result: &exec.Result{Stderr: []byte("rm: /data/local/tmp/gone: No such file or directory\n"), ExitCode: 1},
			kind:   ErrNoSuchFile,
			benign: true,
		},
		{
			name:   "unrecognized non-zero exit",
			result: &exec.Result{Stderr: []byte("adb: error: remote object '/x' does not exist\n"), ExitCode: 1},
			kind:   ErrNonZeroExit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Classify(tt.result)

			require.Len(t, errs, 1)
			assert.ErrorIs(t, errs[0], tt.kind)
			assert.Equal(t, tt.benign, errs[0].Benign)
			assert.Equal(t, tt.result.ExitCode, errs[0].Code)
		})
	}

	t.Run("missing local file on push is not benign", func(t *testing.T) {
		errs := Classify(&exec.Result{
			Stderr:   []byte("adb: error: cannot stat 'missing.txt': No such file or directory\n"),
			ExitCode: 1,
		})

		require.Len(t, errs, 1)
		assert.False(t, errs[0].Benign)
		assert.ErrorIs(t, errs[0], ErrNonZeroExit)
	})

	t.Run("stdout payload only matches install failure reports", func(t *testing.T) {
		errs := Classify(&exec.Result{
			Stdout: []byte("error: device offline\nerror: device not found\nINSTALL_FAILED_x.log\n"),
		})

		assert.Empty(t, errs)
	})

	t.Run("benign match does not mask unexplained stderr", func(t *testing.T) {
		errs := Classify(&exec.Result{
			Stderr:   []byte("rm: /sdcard/dir/a: No such file or directory\nrm: /sdcard/dir/b: Permission denied\n"),
			ExitCode: 1,
		})

		require.Len(t, errs, 2)
		assert.True(t, errs[0].Benign)
		assert.ErrorIs(t, errs[1], ErrNonZeroExit)
		assert.Equal(t, "rm: /sdcard/dir/b: Permission denied", errs[1].Message)
		assert.Error(t, Apply(context.Background(), nil, "rm", errs, false))
	})

	t.Run("fatal match needs no extra exit finding", func(t *testing.T) {
		errs := Classify(&exec.Result{
			Stderr:   []byte("* daemon started\nerror: device offline\n"),
			ExitCode: 1,
		})

		require.Len(t, errs, 1)
		assert.ErrorIs(t, errs[0], ErrDeviceOffline)
	})

	t.Run("exit without output uses exit status message", func(t *testing.T) {
		errs := Classify(&exec.Result{ExitCode: 7})

		require.Len(t, errs, 1)
		assert.Equal(t, "exit status 7", errs[0].Message)
	})
}

func TestExitStatus(t *testing.T) {
	assert.Empty(t, ExitStatus(nil))
	assert.Empty(t, ExitStatus(&exec.Result{Stdout: []byte("error: device not found\n")}))

	errs := ExitStatus(&exec.Result{Stderr: []byte("error: device offline\n"), ExitCode: 2})

	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrNonZeroExit)
	assert.NotErrorIs(t, errs[0], ErrDeviceOffline)
	assert.Equal(t, 2, errs[0].Code)
}

func TestClassifyFile(t *testing.T) {
	t.Run("missing target on delete is benign", func(t *testing.T) {
		e := ClassifyFile(OpDelete, AFCObjectNotFound, "object not found")
		assert.True(t, e.Benign)
		assert.ErrorIs(t, e, ErrNoSuchFile)
	})

	t.Run("same code on other operations is fatal", func(t *testing.T) {
		e := ClassifyFile(OpUpload, AFCObjectNotFound, "object not found")
		assert.False(t, e.Benign)
		assert.ErrorIs(t, e, ErrFileOperation)
	})

	t.Run("other delete codes are fatal", func(t *testing.T) {
		e := ClassifyFile(OpDelete, 10, "permission denied")
		assert.False(t, e.Benign)
	})
}

func TestApply(t *testing.T) {
	ctx := context.Background()

	fatal := &Error{Kind: ErrNonZeroExit, Code: 1, Message: "boom"}
	benign := &Error{Kind: ErrNoSuchFile, Code: 1, Message: "rm: x: No such file or directory", Benign: true}

	t.Run("no errors is success", func(t *testing.T) {
		assert.NoError(t, Apply(ctx, nil, "push", nil, false))
	})

	t.Run("fatal errors are aggregated by default", func(t *testing.T) {
		other := &Error{Kind: ErrDeviceOffline, Code: 1, Message: "error: device offline"}

		err := Apply(ctx, nil, "push", []*Error{fatal, other}, false)

		require.Error(t, err)
		var opErr *OperationError
		require.True(t, errors.As(err, &opErr))
		assert.Len(t, opErr.Errors, 2)
		assert.ErrorIs(t, err, ErrNonZeroExit)
		assert.ErrorIs(t, err, ErrDeviceOffline)
		assert.Equal(t, "push: boom; error: device offline", err.Error())
	})

	t.Run("warnings policy logs and succeeds", func(t *testing.T) {
		logger, rec := slogger.NewRecorder()

		err := Apply(ctx, logger, "push", []*Error{fatal}, true)

		require.NoError(t, err)
		assert.Equal(t, []string{"boom"}, rec.Messages(slog.LevelWarn))
	})

	t.Run("benign errors never surface under either policy", func(t *testing.T) {
		for _, warn := range []bool{false, true} {
			logger, rec := slogger.NewRecorder()

			err := Apply(ctx, logger, "delete", []*Error{benign}, warn)

			require.NoError(t, err)
			assert.Len(t, rec.Records(slogger.LevelTrace), 1)
			assert.Empty(t, rec.Records(slog.LevelWarn))
		}
	})
}
