package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader builds a Config from, in increasing priority: defaults, an optional
// YAML file and environment variables
type Loader struct {
	path   string
	lambda bool
}

// NewLoader creates a loader; an empty path skips the file layer. Lambda
// defaults are used when AWS_LAMBDA_FUNCTION_NAME is set.
func NewLoader(path string) *Loader {
	return &Loader{
		path:   path,
		lambda: os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "",
	}
}

// WithLambda makes Load start from LambdaDefaults
func (l *Loader) WithLambda() *Loader {
	l.lambda = true
	return l
}

// Path returns the YAML file the loader reads
func (l *Loader) Path() string {
	return l.path
}

// Load returns a validated configuration
func (l *Loader) Load() (*Config, error) {
	cfg := Defaults()
	if l.lambda {
		cfg = LambdaDefaults()
	}

	if l.path != "" {
		if err := l.loadFile(cfg); err != nil {
			return nil, err
		}
		cfg.ConfigFile = l.path
	}

	applyEnvironment(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func (l *Loader) loadFile(cfg *Config) error {
	file, err := os.Open(l.path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", l.path, err)
	}
	return nil
}

// applyEnvironment overlays environment variables on cfg
func applyEnvironment(cfg *Config) {
	cfg.ServerAddress = getEnv("SERVER_ADDRESS", cfg.ServerAddress)
	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	cfg.Storage.Backend = getEnv("STORAGE_BACKEND", cfg.Storage.Backend)
	cfg.Storage.BadgerDir = getEnv("BADGER_DIR", cfg.Storage.BadgerDir)
	cfg.Storage.SQLitePath = getEnv("SQLITE_PATH", cfg.Storage.SQLitePath)
	cfg.Storage.DynamoDBTable = getEnv("TABLE_NAME", getEnv("DYNAMODB_TABLE", cfg.Storage.DynamoDBTable))
	cfg.Storage.AWSRegion = getEnv("AWS_REGION", cfg.Storage.AWSRegion)

	cfg.Image.MaxWidth = getEnvInt("IMAGE_MAX_WIDTH", cfg.Image.MaxWidth)
	cfg.Image.Quality = getEnvFloat("IMAGE_QUALITY", cfg.Image.Quality)
	cfg.Image.UpscalePolicy = getEnv("IMAGE_UPSCALE_POLICY", cfg.Image.UpscalePolicy)
	cfg.Image.MaxPixels = getEnvInt("IMAGE_MAX_PIXELS", cfg.Image.MaxPixels)
	cfg.PageSize = getEnvInt("PAGE_SIZE", cfg.PageSize)

	cfg.EnableCORS = getEnvBool("ENABLE_CORS", cfg.EnableCORS)
	cfg.EnableMetrics = getEnvBool("ENABLE_METRICS", cfg.EnableMetrics)
}
