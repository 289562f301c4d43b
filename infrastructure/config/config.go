package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"forever-us/infrastructure/imaging"

	"go.uber.org/zap/zapcore"
)

// Storage backends
const (
	BackendBadger   = "badger"
	BackendSQLite   = "sqlite"
	BackendDynamoDB = "dynamodb"
	BackendMemory   = "memory"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string       `yaml:"server_address"`
	Environment   string       `yaml:"environment"`
	Server        ServerConfig `yaml:"server"`

	// Logging
	LogLevel string `yaml:"log_level"`

	Storage StorageConfig `yaml:"storage"`
	Image   ImageConfig   `yaml:"image"`

	// PageSize is the default number of memories per page
	PageSize int `yaml:"page_size"`

	// IsLambda is set when running inside AWS Lambda, where only /tmp is writable
	IsLambda bool `yaml:"-"`

	// Feature flags
	EnableCORS    bool `yaml:"enable_cors"`
	EnableMetrics bool `yaml:"enable_metrics"`

	// ConfigFile is the optional YAML file the values were read from
	ConfigFile string `yaml:"-"`
}

// ServerConfig holds HTTP server timeouts
type ServerConfig struct {
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// StorageConfig selects and configures the durable store
type StorageConfig struct {
	Backend       string `yaml:"backend"`
	BadgerDir     string `yaml:"badger_dir"`
	SQLitePath    string `yaml:"sqlite_path"`
	DynamoDBTable string `yaml:"dynamodb_table"`
	AWSRegion     string `yaml:"aws_region"`
}

// ImageConfig controls upload downscaling; it can change at runtime
type ImageConfig struct {
	MaxWidth       int     `yaml:"max_width"`
	Quality        float64 `yaml:"quality"`
	UpscalePolicy  string  `yaml:"upscale_policy"`
	MaxUploadBytes int64   `yaml:"max_upload_bytes"`
	// MaxPixels bounds width*height of both the upload and the scaled result
	MaxPixels int `yaml:"max_pixels"`
}

// Defaults returns the configuration used when nothing overrides it
func Defaults() *Config {
	return &Config{
		ServerAddress: ":8080",
		Environment:   "development",
		Server: ServerConfig{
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		LogLevel: "info",
		Storage: StorageConfig{
			Backend:       BackendBadger,
			BadgerDir:     "./data/badger",
			SQLitePath:    "./data/forever-us.db",
			DynamoDBTable: "forever-us",
			AWSRegion:     "us-west-2",
		},
		Image: ImageConfig{
			MaxWidth:       1200,
			Quality:        0.8,
			UpscalePolicy:  string(imaging.ScaleDownOnly),
			MaxUploadBytes: 20 << 20,
			MaxPixels:      imaging.DefaultMaxPixels,
		},
		PageSize:      10,
		EnableCORS:    true,
		EnableMetrics: true,
	}
}

// LambdaDefaults returns Defaults adjusted for AWS Lambda. Storage defaults
// to DynamoDB, and the file backends point into /tmp, which lasts only as
// long as the execution environment.
func LambdaDefaults() *Config {
	cfg := Defaults()
	cfg.IsLambda = true
	cfg.Storage.Backend = BackendDynamoDB
	cfg.Storage.BadgerDir = lambdaScratchDir + "/forever-us/badger"
	cfg.Storage.SQLitePath = lambdaScratchDir + "/forever-us.db"
	return cfg
}

const lambdaScratchDir = "/tmp"

// LoadConfig loads configuration from defaults, the optional CONFIG_FILE
// and environment variables, in increasing priority
func LoadConfig() (*Config, error) {
	return NewLoader(os.Getenv("CONFIG_FILE")).Load()
}

// LoadLambdaConfig is LoadConfig starting from LambdaDefaults
func LoadLambdaConfig() (*Config, error) {
	return NewLoader(os.Getenv("CONFIG_FILE")).WithLambda().Load()
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	switch c.Environment {
	case "development", "staging", "production", "test":
	default:
		return fmt.Errorf("ENVIRONMENT must be one of development, staging, production, test; got %q", c.Environment)
	}

	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL is invalid: %w", err)
	}

	switch c.Storage.Backend {
	case BackendBadger:
		if c.Storage.BadgerDir == "" {
			return fmt.Errorf("BADGER_DIR is required for the badger backend")
		}
		if c.IsLambda && !underScratch(c.Storage.BadgerDir) {
			return fmt.Errorf("BADGER_DIR must be under %s on Lambda; got %q", lambdaScratchDir, c.Storage.BadgerDir)
		}
	case BackendSQLite:
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite backend")
		}
		if c.IsLambda && !underScratch(c.Storage.SQLitePath) {
			return fmt.Errorf("SQLITE_PATH must be under %s on Lambda; got %q", lambdaScratchDir, c.Storage.SQLitePath)
		}
	case BackendDynamoDB:
		if c.Storage.DynamoDBTable == "" {
			return fmt.Errorf("DYNAMODB_TABLE is required for the dynamodb backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("STORAGE_BACKEND must be one of badger, sqlite, dynamodb, memory; got %q", c.Storage.Backend)
	}

	if err := c.Image.Validate(); err != nil {
		return err
	}

	if c.PageSize <= 0 || c.PageSize > 100 {
		return fmt.Errorf("PAGE_SIZE must be between 1 and 100")
	}

	return nil
}

// Validate checks the image settings
func (i ImageConfig) Validate() error {
	if i.MaxWidth <= 0 {
		return fmt.Errorf("IMAGE_MAX_WIDTH must be positive")
	}
	if i.Quality <= 0 || i.Quality > 1 {
		return fmt.Errorf("IMAGE_QUALITY must be in the range (0, 1]")
	}
	if _, err := imaging.ParseUpscalePolicy(i.UpscalePolicy); err != nil {
		return fmt.Errorf("IMAGE_UPSCALE_POLICY is invalid: %w", err)
	}
	if i.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload size must be positive")
	}
	if i.MaxPixels <= 0 {
		return fmt.Errorf("IMAGE_MAX_PIXELS must be positive")
	}
	return nil
}

// Policy returns the parsed upscale policy
func (i ImageConfig) Policy() imaging.UpscalePolicy {
	p, err := imaging.ParseUpscalePolicy(i.UpscalePolicy)
	if err != nil {
		return imaging.ScaleDownOnly
	}
	return p
}

func underScratch(path string) bool {
	return strings.HasPrefix(filepath.Clean(path), lambdaScratchDir+"/")
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloat gets a float environment variable with a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
