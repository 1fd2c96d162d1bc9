// Package config loads the service configuration from an optional
// config.toml, an optional per-environment overlay, and TRIAGE_* environment
// variables, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/Sakshi281205/sleeppeddlers/internal/summarization"
	"github.com/Sakshi281205/sleeppeddlers/pkg/database"
	"github.com/Sakshi281205/sleeppeddlers/pkg/storage"
	"github.com/Sakshi281205/sleeppeddlers/pkg/trigger"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvTriageEnv             = "TRIAGE_ENV"
	EnvTriageShutdownTimeout = "TRIAGE_SHUTDOWN_TIMEOUT"
	EnvTriageVersion         = "TRIAGE_VERSION"
	EnvCacheSize             = "TRIAGE_CACHE_SIZE"
)

var databaseEnv = &database.Env{
	Host:            "TRIAGE_DB_HOST",
	Port:            "TRIAGE_DB_PORT",
	Name:            "TRIAGE_DB_NAME",
	User:            "TRIAGE_DB_USER",
	Password:        "TRIAGE_DB_PASSWORD",
	SSLMode:         "TRIAGE_DB_SSL_MODE",
	MaxOpenConns:    "TRIAGE_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "TRIAGE_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "TRIAGE_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "TRIAGE_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	Backend:               "TRIAGE_STORAGE_BACKEND",
	Container:             "TRIAGE_STORAGE_CONTAINER",
	AzureConnectionString: "TRIAGE_STORAGE_AZURE_CONNECTION_STRING",
	AzureServiceURL:       "TRIAGE_STORAGE_AZURE_SERVICE_URL",
	MinIOEndpoint:         "TRIAGE_STORAGE_MINIO_ENDPOINT",
	MinIORegion:           "TRIAGE_STORAGE_MINIO_REGION",
	MinIOAccessKey:        "TRIAGE_STORAGE_MINIO_ACCESS_KEY",
	MinIOSecretKey:        "TRIAGE_STORAGE_MINIO_SECRET_KEY",
	MinIOUseSSL:           "TRIAGE_STORAGE_MINIO_USE_SSL",
	MinIOListen:           "TRIAGE_STORAGE_MINIO_LISTEN",
}

var triggerEnv = &trigger.Env{
	Mode:      "TRIAGE_TRIGGER_MODE",
	Workers:   "TRIAGE_TRIGGER_WORKERS",
	QueueSize: "TRIAGE_TRIGGER_QUEUE_SIZE",
	Endpoint:  "TRIAGE_TRIGGER_ENDPOINT",
	Timeout:   "TRIAGE_TRIGGER_TIMEOUT",
	DBOSApp:   "TRIAGE_TRIGGER_DBOS_APP",
	DBOSQueue: "TRIAGE_TRIGGER_DBOS_QUEUE",
}

var modelEnv = &summarization.Env{
	Provider:         "TRIAGE_MODEL_PROVIDER",
	Model:            "TRIAGE_MODEL_NAME",
	Timeout:          "TRIAGE_MODEL_TIMEOUT",
	Temperature:      "TRIAGE_MODEL_TEMPERATURE",
	TopP:             "TRIAGE_MODEL_TOP_P",
	MaxTokens:        "TRIAGE_MODEL_MAX_TOKENS",
	WatsonxAPIKey:    "TRIAGE_WATSONX_API_KEY",
	WatsonxProjectID: "TRIAGE_WATSONX_PROJECT_ID",
	WatsonxBaseURL:   "TRIAGE_WATSONX_BASE_URL",
	WatsonxTokenURL:  "TRIAGE_WATSONX_TOKEN_URL",
	GeminiAPIKey:     "TRIAGE_GEMINI_API_KEY",
}

// Config is the root configuration for the triage service.
type Config struct {
	Server          ServerConfig         `toml:"server"`
	API             APIConfig            `toml:"api"`
	Logging         LoggingConfig        `toml:"logging"`
	Storage         storage.Config       `toml:"storage"`
	Database        database.Config      `toml:"database"`
	Pipeline        PipelineConfig       `toml:"pipeline"`
	Trigger         trigger.Config       `toml:"trigger"`
	Model           summarization.Config `toml:"model"`
	Cache           CacheConfig          `toml:"cache"`
	ShutdownTimeout string               `toml:"shutdown_timeout"`
	Version         string               `toml:"version"`
}

// CacheConfig sizes the result document cache. Zero disables it.
type CacheConfig struct {
	Size int `toml:"size"`
}

// Env returns the TRIAGE_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvTriageEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// NeedsDatabase reports whether any configured subsystem requires postgres.
func (c *Config) NeedsDatabase() bool {
	return c.Storage.Backend == storage.BackendPostgres || c.Trigger.Mode == trigger.ModeDBOS
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	if overlay.Cache.Size != 0 {
		c.Cache.Size = overlay.Cache.Size
	}
	c.Server.Merge(&overlay.Server)
	c.API.Merge(&overlay.API)
	c.Logging.Merge(&overlay.Logging)
	c.Storage.Merge(&overlay.Storage)
	c.Database.Merge(&overlay.Database)
	c.Pipeline.Merge(&overlay.Pipeline)
	c.Trigger.Merge(&overlay.Trigger)
	c.Model.Merge(&overlay.Model)
}

// Finalize applies defaults, environment overrides, and validation to every
// section. Load calls it; commands that build a Config by hand call it
// directly.
func (c *Config) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Logging.Finalize(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Pipeline.Finalize(); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	if err := c.Trigger.Finalize(triggerEnv); err != nil {
		return fmt.Errorf("trigger: %w", err)
	}
	if err := c.Model.Finalize(modelEnv); err != nil {
		return fmt.Errorf("model: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
	if c.Cache.Size == 0 {
		c.Cache.Size = 256
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvTriageShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvTriageVersion); v != "" {
		c.Version = v
	}
	if v := os.Getenv(EnvCacheSize); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Cache.Size = n
		}
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	if c.Cache.Size < 0 {
		return fmt.Errorf("invalid cache size: %d", c.Cache.Size)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvTriageEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
