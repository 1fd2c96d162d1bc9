package summarization

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Providers accepted by Config.Provider.
const (
	ProviderNone    = "none"
	ProviderWatsonx = "watsonx"
	ProviderGemini  = "gemini"
)

// Config selects and parameterizes the remote summarization model.
type Config struct {
	Provider    string        `toml:"provider"`
	Model       string        `toml:"model"`
	Timeout     string        `toml:"timeout"`
	Temperature float64       `toml:"temperature"`
	TopP        float64       `toml:"top_p"`
	MaxTokens   int           `toml:"max_tokens"`
	Watsonx     WatsonxConfig `toml:"watsonx"`
	Gemini      GeminiConfig  `toml:"gemini"`
}

// WatsonxConfig holds the API key exchange and inference endpoints.
type WatsonxConfig struct {
	APIKey    string `toml:"api_key"`
	ProjectID string `toml:"project_id"`
	BaseURL   string `toml:"base_url"`
	TokenURL  string `toml:"token_url"`
	Version   string `toml:"version"`
}

// GeminiConfig holds Gemini API credentials.
type GeminiConfig struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Provider         string
	Model            string
	Timeout          string
	Temperature      string
	TopP             string
	MaxTokens        string
	WatsonxAPIKey    string
	WatsonxProjectID string
	WatsonxBaseURL   string
	WatsonxTokenURL  string
	GeminiAPIKey     string
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	if env != nil {
		c.loadEnv(env)
	}
	c.loadDefaults()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.Temperature > 0 {
		c.Temperature = overlay.Temperature
	}
	if overlay.TopP > 0 {
		c.TopP = overlay.TopP
	}
	if overlay.MaxTokens > 0 {
		c.MaxTokens = overlay.MaxTokens
	}
	if overlay.Watsonx.APIKey != "" {
		c.Watsonx.APIKey = overlay.Watsonx.APIKey
	}
	if overlay.Watsonx.ProjectID != "" {
		c.Watsonx.ProjectID = overlay.Watsonx.ProjectID
	}
	if overlay.Watsonx.BaseURL != "" {
		c.Watsonx.BaseURL = overlay.Watsonx.BaseURL
	}
	if overlay.Watsonx.TokenURL != "" {
		c.Watsonx.TokenURL = overlay.Watsonx.TokenURL
	}
	if overlay.Watsonx.Version != "" {
		c.Watsonx.Version = overlay.Watsonx.Version
	}
	if overlay.Gemini.APIKey != "" {
		c.Gemini.APIKey = overlay.Gemini.APIKey
	}
	if overlay.Gemini.BaseURL != "" {
		c.Gemini.BaseURL = overlay.Gemini.BaseURL
	}
}

// Defaults depend on the provider, so env overrides are applied first.
func (c *Config) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderNone
	}
	if c.Timeout == "" {
		c.Timeout = "30s"
	}
	if c.Temperature <= 0 {
		c.Temperature = 0.3
	}
	if c.TopP <= 0 {
		c.TopP = 0.9
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 250
	}

	switch c.Provider {
	case ProviderWatsonx:
		if c.Model == "" {
			c.Model = "ibm/granite-13b-chat-v2"
		}
		if c.Watsonx.BaseURL == "" {
			c.Watsonx.BaseURL = "https://us-south.ml.cloud.ibm.com"
		}
		if c.Watsonx.TokenURL == "" {
			c.Watsonx.TokenURL = "https://iam.cloud.ibm.com/identity/token"
		}
		if c.Watsonx.Version == "" {
			c.Watsonx.Version = "2023-05-29"
		}
	case ProviderGemini:
		if c.Model == "" {
			c.Model = "gemini-2.5-flash"
		}
	}
}

func (c *Config) loadEnv(env *Env) {
	str := func(name string, dst *string) {
		if v := os.Getenv(name); name != "" && v != "" {
			*dst = v
		}
	}
	float := func(name string, dst *float64) {
		if v := os.Getenv(name); name != "" && v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				*dst = f
			}
		}
	}

	str(env.Provider, &c.Provider)
	str(env.Model, &c.Model)
	str(env.Timeout, &c.Timeout)
	float(env.Temperature, &c.Temperature)
	float(env.TopP, &c.TopP)
	if v := os.Getenv(env.MaxTokens); env.MaxTokens != "" && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxTokens = n
		}
	}
	str(env.WatsonxAPIKey, &c.Watsonx.APIKey)
	str(env.WatsonxProjectID, &c.Watsonx.ProjectID)
	str(env.WatsonxBaseURL, &c.Watsonx.BaseURL)
	str(env.WatsonxTokenURL, &c.Watsonx.TokenURL)
	str(env.GeminiAPIKey, &c.Gemini.APIKey)

	c.Provider = strings.ToLower(c.Provider)
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if c.TopP > 1 {
		return fmt.Errorf("top_p must be in (0, 1]")
	}

	switch c.Provider {
	case ProviderNone:
		return nil
	case ProviderWatsonx:
		if c.Watsonx.APIKey == "" || c.Watsonx.ProjectID == "" {
			return fmt.Errorf("watsonx: api_key and project_id required")
		}
		return nil
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("gemini: api_key required")
		}
		return nil
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
}
