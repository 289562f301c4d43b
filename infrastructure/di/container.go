package di

import (
	"forever-us/application/services"
	"forever-us/infrastructure/config"
	"forever-us/interfaces/http/rest"
	"forever-us/pkg/observability"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config   *config.Config
	Logger   *zap.Logger
	Store    *services.AppStateStore
	Metrics  *observability.Collector
	Settings *config.RuntimeSettings
	Watcher  *config.Watcher
	Router   *rest.Router
}
