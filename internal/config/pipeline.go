package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/Sakshi281205/sleeppeddlers/internal/intake"
	"github.com/Sakshi281205/sleeppeddlers/pkg/formatting"
)

const (
	EnvPipelineAllowedTypes = "TRIAGE_PIPELINE_ALLOWED_TYPES"
	EnvPipelineMaxSize      = "TRIAGE_PIPELINE_MAX_SIZE"
)

// PipelineConfig holds the artifact acceptance policy.
type PipelineConfig struct {
	AllowedTypes []string `toml:"allowed_types"`
	MaxSize      string   `toml:"max_size"`
}

// Policy returns the finalized acceptance policy.
func (c *PipelineConfig) Policy() intake.Policy {
	size, err := formatting.ParseBytes(c.MaxSize)
	if err != nil {
		size = intake.DefaultMaxBytes
	}
	return intake.Policy{AllowedTypes: c.AllowedTypes, MaxBytes: size}
}

func (c *PipelineConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

func (c *PipelineConfig) Merge(overlay *PipelineConfig) {
	if overlay.AllowedTypes != nil {
		c.AllowedTypes = overlay.AllowedTypes
	}
	if overlay.MaxSize != "" {
		c.MaxSize = overlay.MaxSize
	}
}

func (c *PipelineConfig) loadDefaults() {
	if len(c.AllowedTypes) == 0 {
		c.AllowedTypes = append([]string(nil), intake.DefaultAllowedTypes...)
	}
	if c.MaxSize == "" {
		c.MaxSize = "10MiB"
	}
}

func (c *PipelineConfig) loadEnv() {
	if v := os.Getenv(EnvPipelineAllowedTypes); v != "" {
		var types []string
		for t := range strings.SplitSeq(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				types = append(types, t)
			}
		}
		c.AllowedTypes = types
	}
	if v := os.Getenv(EnvPipelineMaxSize); v != "" {
		c.MaxSize = v
	}
	for i, t := range c.AllowedTypes {
		c.AllowedTypes[i] = strings.ToLower(strings.TrimSpace(t))
	}
}

func (c *PipelineConfig) validate() error {
	if len(c.AllowedTypes) == 0 {
		return fmt.Errorf("allowed_types required")
	}
	size, err := formatting.ParseBytes(c.MaxSize)
	if err != nil {
		return fmt.Errorf("invalid max_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("max_size must be positive")
	}
	return nil
}
