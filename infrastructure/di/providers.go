package di

import (
	"context"
	"fmt"

	"forever-us/application/ports"
	"forever-us/application/services"
	"forever-us/infrastructure/config"
	"forever-us/infrastructure/imaging"
	"forever-us/infrastructure/persistence"
	"forever-us/infrastructure/persistence/badger"
	"forever-us/infrastructure/persistence/dynamodb"
	"forever-us/infrastructure/persistence/memory"
	"forever-us/infrastructure/persistence/sqlite"
	"forever-us/interfaces/http/rest"
	"forever-us/pkg/errors"
	"forever-us/pkg/observability"
	"forever-us/pkg/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const metricsNamespace = "forever_us"

// ProvideLogger creates the application logger
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}

// ProvideErrorHandler creates the HTTP error handler
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *errors.ErrorHandler {
	return errors.NewErrorHandler(logger, cfg.IsDevelopment())
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Storage.AWSRegion),
	)
}

// ProvideKeyValueStore opens the configured durable backend behind a circuit
// breaker. The cleanup closes the backend.
func ProvideKeyValueStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*persistence.BreakerStore, func(), error) {
	backend, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	store := persistence.NewBreakerStore(backend, persistence.DefaultBreakerConfig(cfg.Storage.Backend), logger)
	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close storage backend", zap.Error(err))
		}
	}

	logger.Info("Storage backend ready", zap.String("backend", cfg.Storage.Backend))
	return store, cleanup, nil
}

func openBackend(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ports.KeyValueStore, error) {
	switch cfg.Storage.Backend {
	case config.BackendBadger:
		warnEphemeral(cfg, logger, cfg.Storage.BadgerDir)
		return badger.Open(cfg.Storage.BadgerDir)
	case config.BackendSQLite:
		warnEphemeral(cfg, logger, cfg.Storage.SQLitePath)
		return sqlite.Open(cfg.Storage.SQLitePath)
	case config.BackendDynamoDB:
		awsCfg, err := ProvideAWSConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		client := awsdynamodb.NewFromConfig(awsCfg)
		return dynamodb.NewKVStore(client, cfg.Storage.DynamoDBTable, logger), nil
	case config.BackendMemory:
		return memory.NewKVStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func warnEphemeral(cfg *config.Config, logger *zap.Logger, path string) {
	if !cfg.IsLambda {
		return
	}
	logger.Warn("File storage on Lambda is lost when the execution environment is recycled",
		zap.String("backend", cfg.Storage.Backend),
		zap.String("path", path),
	)
}

// ProvideKeyValueStorePort exposes the breaker-wrapped store to the repository
func ProvideKeyValueStorePort(store *persistence.BreakerStore) ports.KeyValueStore {
	return store
}

// ProvideStoreBreaker exposes the breaker state to the readiness check
func ProvideStoreBreaker(store *persistence.BreakerStore) rest.StoreBreaker {
	return store
}

// ProvideDocumentRepository creates the document repository
func ProvideDocumentRepository(store ports.KeyValueStore, logger *zap.Logger) ports.DocumentRepository {
	return persistence.NewDocumentAdapter(store, logger)
}

// ProvideMetrics creates the prometheus collector
func ProvideMetrics() *observability.Collector {
	return observability.NewCollector(metricsNamespace)
}

// ProvideStateMetrics exposes the collector to the state store
func ProvideStateMetrics(collector *observability.Collector) ports.StateMetrics {
	return collector
}

// ProvideClock returns the wall clock
func ProvideClock() utils.Clock {
	return utils.SystemClock{}
}

// ProvideImageCodec creates the image codec with the configured upscale
// policy and pixel budget
func ProvideImageCodec(cfg *config.Config, logger *zap.Logger) *imaging.Codec {
	codec := imaging.NewCodec(cfg.Image.Policy(), logger)
	codec.SetMaxPixels(cfg.Image.MaxPixels)
	return codec
}

// ProvideImageCodecPort exposes the codec through its port
func ProvideImageCodecPort(codec *imaging.Codec) ports.ImageCodec {
	return codec
}

// ProvideRuntimeSettings seeds the hot-reloadable settings
func ProvideRuntimeSettings(cfg *config.Config) *config.RuntimeSettings {
	return config.NewRuntimeSettings(cfg)
}

// ProvideConfigWatcher starts watching the config file when there is one.
// The returned watcher is nil when the configuration came from the
// environment alone.
func ProvideConfigWatcher(
	cfg *config.Config,
	settings *config.RuntimeSettings,
	codec *imaging.Codec,
	logger *zap.Logger,
) (*config.Watcher, func(), error) {
	if cfg.ConfigFile == "" {
		return nil, func() {}, nil
	}

	watcher, err := config.NewWatcher(config.NewLoader(cfg.ConfigFile), settings, logger)
	if err != nil {
		return nil, nil, err
	}
	watcher.OnChange(func(next *config.Config) {
		codec.SetPolicy(next.Image.Policy())
		codec.SetMaxPixels(next.Image.MaxPixels)
	})
	watcher.Start()

	return watcher, watcher.Stop, nil
}

// ProvideAppStateStore creates the application state store
func ProvideAppStateStore(
	repo ports.DocumentRepository,
	metrics ports.StateMetrics,
	clock utils.Clock,
	logger *zap.Logger,
) *services.AppStateStore {
	return services.NewAppStateStore(repo, metrics, clock, logger)
}

// ProvideRouter creates the HTTP router
func ProvideRouter(
	cfg *config.Config,
	store *services.AppStateStore,
	breaker rest.StoreBreaker,
	settings *config.RuntimeSettings,
	codec ports.ImageCodec,
	metrics *observability.Collector,
	logger *zap.Logger,
	errorHandler *errors.ErrorHandler,
) *rest.Router {
	return rest.NewRouter(cfg, store, breaker, settings, codec, metrics, logger, errorHandler)
}
