package storage

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config selects and parameterizes a storage backend.
type Config struct {
	Backend   string      `toml:"backend"`
	Container string      `toml:"container"`
	Azure     AzureConfig `toml:"azure"`
	MinIO     MinIOConfig `toml:"minio"`
}

// AzureConfig holds Azure Blob Storage connection parameters. When
// ConnectionString is empty the client authenticates against ServiceURL with
// the default Azure credential chain.
type AzureConfig struct {
	ConnectionString string `toml:"connection_string"`
	ServiceURL       string `toml:"service_url"`
}

// MinIOConfig holds S3-compatible endpoint parameters.
type MinIOConfig struct {
	Endpoint  string `toml:"endpoint"`
	Region    string `toml:"region"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	UseSSL    bool   `toml:"use_ssl"`
	Listen    bool   `toml:"listen"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Backend               string
	Container             string
	AzureConnectionString string
	AzureServiceURL       string
	MinIOEndpoint         string
	MinIORegion           string
	MinIOAccessKey        string
	MinIOSecretKey        string
	MinIOUseSSL           string
	MinIOListen           string
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
	if overlay.Backend != "" {
		c.Backend = overlay.Backend
	}
	if overlay.Container != "" {
		c.Container = overlay.Container
	}
	if overlay.Azure.ConnectionString != "" {
		c.Azure.ConnectionString = overlay.Azure.ConnectionString
	}
	if overlay.Azure.ServiceURL != "" {
		c.Azure.ServiceURL = overlay.Azure.ServiceURL
	}
	if overlay.MinIO.Endpoint != "" {
		c.MinIO.Endpoint = overlay.MinIO.Endpoint
	}
	if overlay.MinIO.Region != "" {
		c.MinIO.Region = overlay.MinIO.Region
	}
	if overlay.MinIO.AccessKey != "" {
		c.MinIO.AccessKey = overlay.MinIO.AccessKey
	}
	if overlay.MinIO.SecretKey != "" {
		c.MinIO.SecretKey = overlay.MinIO.SecretKey
	}
	if overlay.MinIO.UseSSL {
		c.MinIO.UseSSL = true
	}
	if overlay.MinIO.Listen {
		c.MinIO.Listen = true
	}
}

func (c *Config) loadDefaults() {
	if c.Backend == "" {
		c.Backend = BackendMemory
	}
	if c.Container == "" {
		c.Container = "triage"
	}
	if c.MinIO.Region == "" {
		c.MinIO.Region = "us-east-1"
	}
}

func (c *Config) loadEnv(env *Env) {
	setString := func(name string, dst *string) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	setBool := func(name string, dst *bool) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}

	setString(env.Backend, &c.Backend)
	setString(env.Container, &c.Container)
	setString(env.AzureConnectionString, &c.Azure.ConnectionString)
	setString(env.AzureServiceURL, &c.Azure.ServiceURL)
	setString(env.MinIOEndpoint, &c.MinIO.Endpoint)
	setString(env.MinIORegion, &c.MinIO.Region)
	setString(env.MinIOAccessKey, &c.MinIO.AccessKey)
	setString(env.MinIOSecretKey, &c.MinIO.SecretKey)
	setBool(env.MinIOUseSSL, &c.MinIO.UseSSL)
	setBool(env.MinIOListen, &c.MinIO.Listen)

	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
}

func (c *Config) validate() error {
	if c.Container == "" {
		return fmt.Errorf("container required")
	}

	switch c.Backend {
	case BackendMemory, BackendPostgres:
		return nil
	case BackendAzure:
		if c.Azure.ConnectionString == "" && c.Azure.ServiceURL == "" {
			return fmt.Errorf("azure: connection_string or service_url required")
		}
		return nil
	case BackendMinIO:
		if c.MinIO.Endpoint == "" {
			return fmt.Errorf("minio: endpoint required")
		}
		if c.MinIO.AccessKey == "" || c.MinIO.SecretKey == "" {
			return fmt.Errorf("minio: access_key and secret_key required")
		}
		return nil
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
}
