package cmd

import (
	"context"

	"github.com/jmgilman/devbridge/internal/adb"
	"github.com/jmgilman/devbridge/internal/config"
	"github.com/jmgilman/devbridge/internal/exec"
)

type contextKey string

const (
	configKey   contextKey = "config"
	loaderKey   contextKey = "loader"
	executorKey contextKey = "executor"
	bridgeKey   contextKey = "bridge"
)

// WithConfig adds the config to the context.
func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// ConfigFromContext retrieves the config from context.
func ConfigFromContext(ctx context.Context) *config.Config {
	cfg, ok := ctx.Value(configKey).(*config.Config)
	if !ok {
		return nil
	}
	return cfg
}

// WithLoader adds the config loader to the context.
func WithLoader(ctx context.Context, loader *config.Loader) context.Context {
	return context.WithValue(ctx, loaderKey, loader)
}

// LoaderFromContext retrieves the config loader from context.
func LoaderFromContext(ctx context.Context) *config.Loader {
	loader, ok := ctx.Value(loaderKey).(*config.Loader)
	if !ok {
		return nil
	}
	return loader
}

// WithExecutor adds the process executor to the context.
func WithExecutor(ctx context.Context, e exec.Executor) context.Context {
	return context.WithValue(ctx, executorKey, e)
}

// ExecutorFromContext retrieves the process executor from context.
func ExecutorFromContext(ctx context.Context) exec.Executor {
	e, ok := ctx.Value(executorKey).(exec.Executor)
	if !ok {
		return nil
	}
	return e
}

// WithBridge adds the debug bridge to the context.
func WithBridge(ctx context.Context, b *adb.Bridge) context.Context {
	return context.WithValue(ctx, bridgeKey, b)
}

// BridgeFromContext retrieves the debug bridge from context.
func BridgeFromContext(ctx context.Context) *adb.Bridge {
	b, ok := ctx.Value(bridgeKey).(*adb.Bridge)
	if !ok {
		return nil
	}
	return b
}
