package cmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jmgilman/devbridge/internal/adb"
	"github.com/jmgilman/devbridge/internal/config"
	"github.com/jmgilman/devbridge/internal/exec/mocks"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()

	t.Run("missing values are nil", func(t *testing.T) {
		assert.Nil(t, ConfigFromContext(ctx))
		assert.Nil(t, LoaderFromContext(ctx))
		assert.Nil(t, ExecutorFromContext(ctx))
		assert.Nil(t, BridgeFromContext(ctx))
	})

	t.Run("round trip", func(t *testing.T) {
		cfg := &config.Config{}
		e := &mocks.ExecutorMock{}
		b := adb.New(e, adb.Config{})

		ctx := WithBridge(WithExecutor(WithConfig(ctx, cfg), e), b)

		assert.Same(t, cfg, ConfigFromContext(ctx))
		assert.Same(t, e, ExecutorFromContext(ctx))
		assert.Same(t, b, BridgeFromContext(ctx))
	})
}

func TestRequireConfig_FallsBackToDefaults(t *testing.T) {
	cfg := requireConfig(context.Background())

	assert.Equal(t, config.DefaultSimulatorTool, cfg.IOS.SimulatorPath)
	assert.Equal(t, config.DefaultConnectTimeout, cfg.IOS.ConnectTimeout)
}

func TestOpenFileSystem(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown platform", func(t *testing.T) {
		_, err := openFileSystem(ctx, targetFlags{platform: "symbian"})
		assert.Error(t, err)
	})

	t.Run("ios requires device", func(t *testing.T) {
		_, err := openFileSystem(ctx, targetFlags{platform: "ios"})
		assert.Error(t, err)
	})

	t.Run("android requires bridge in context", func(t *testing.T) {
		_, err := openFileSystem(ctx, targetFlags{platform: "android", deviceID: "emu"})
		assert.Error(t, err)
	})

	t.Run("android with bridge", func(t *testing.T) {
		ctx := WithBridge(ctx, adb.New(&mocks.ExecutorMock{}, adb.Config{}))
		fs, err := openFileSystem(ctx, targetFlags{platform: "android", deviceID: "emu"})
		assert.NoError(t, err)
		assert.NotNil(t, fs)
	})
}
