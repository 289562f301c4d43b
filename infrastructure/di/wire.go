//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"forever-us/infrastructure/config"

	"github.com/google/wire"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideErrorHandler,
	ProvideKeyValueStore,
	ProvideKeyValueStorePort,
	ProvideStoreBreaker,
	ProvideDocumentRepository,
	ProvideMetrics,
	ProvideStateMetrics,
	ProvideClock,
	ProvideImageCodec,
	ProvideImageCodecPort,
	ProvideRuntimeSettings,
	ProvideConfigWatcher,
	ProvideAppStateStore,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil // Wire will replace this
}
