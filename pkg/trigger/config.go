package trigger

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Trigger modes accepted by Config.Mode.
const (
	ModeLocal = "local"
	ModeHTTP  = "http"
	ModeDBOS  = "dbos"
)

// Config selects the substrate used for outbound stage invocations.
type Config struct {
	Mode      string     `toml:"mode"`
	Workers   int        `toml:"workers"`
	QueueSize int        `toml:"queue_size"`
	Endpoint  string     `toml:"endpoint"`
	Timeout   string     `toml:"timeout"`
	DBOS      DBOSConfig `toml:"dbos"`
}

// DBOSConfig names the durable workflow application and queue.
type DBOSConfig struct {
	AppName string `toml:"app_name"`
	Queue   string `toml:"queue"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Mode      string
	Workers   string
	QueueSize string
	Endpoint  string
	Timeout   string
	DBOSApp   string
	DBOSQueue string
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Mode != "" {
		c.Mode = overlay.Mode
	}
	if overlay.Workers > 0 {
		c.Workers = overlay.Workers
	}
	if overlay.QueueSize > 0 {
		c.QueueSize = overlay.QueueSize
	}
	if overlay.Endpoint != "" {
		c.Endpoint = overlay.Endpoint
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.DBOS.AppName != "" {
		c.DBOS.AppName = overlay.DBOS.AppName
	}
	if overlay.DBOS.Queue != "" {
		c.DBOS.Queue = overlay.DBOS.Queue
	}
}

func (c *Config) loadDefaults() {
	if c.Mode == "" {
		c.Mode = ModeLocal
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 64
	}
	if c.Timeout == "" {
		c.Timeout = "10s"
	}
	if c.DBOS.AppName == "" {
		c.DBOS.AppName = "triage"
	}
	if c.DBOS.Queue == "" {
		c.DBOS.Queue = "triage-pipeline"
	}
}

func (c *Config) loadEnv(env *Env) {
	if v := os.Getenv(env.Mode); env.Mode != "" && v != "" {
		c.Mode = strings.ToLower(v)
	}
	if v := os.Getenv(env.Workers); env.Workers != "" && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Workers = n
		}
	}
	if v := os.Getenv(env.QueueSize); env.QueueSize != "" && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.QueueSize = n
		}
	}
	if v := os.Getenv(env.Endpoint); env.Endpoint != "" && v != "" {
		c.Endpoint = v
	}
	if v := os.Getenv(env.Timeout); env.Timeout != "" && v != "" {
		c.Timeout = v
	}
	if v := os.Getenv(env.DBOSApp); env.DBOSApp != "" && v != "" {
		c.DBOS.AppName = v
	}
	if v := os.Getenv(env.DBOSQueue); env.DBOSQueue != "" && v != "" {
		c.DBOS.Queue = v
	}
}

func (c *Config) validate() error {
	switch c.Mode {
	case ModeLocal, ModeDBOS:
	case ModeHTTP:
		if c.Endpoint == "" {
			return fmt.Errorf("endpoint required for http mode")
		}
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	return nil
}
