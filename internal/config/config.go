package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"tarim-kds/internal/llm"
)

// Config holds application configuration
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	// Multiple providers configuration
	Providers []llm.ProviderConfig `yaml:"providers"`

	// Legacy single provider config (fallback)
	Gemini struct {
		APIKey     string `yaml:"api_key"`
		ModelName  string `yaml:"model_name"`
		MaxRetries int    `yaml:"max_retries"`
	} `yaml:"gemini"`

	Database struct {
		Path string `yaml:"path"` // SQLite path
	} `yaml:"database"`

	Query struct {
		// ReferenceYear overrides MAX(year) from the data; 0 means
		// derive it at startup.
		ReferenceYear     int           `yaml:"reference_year"`
		GenerativeTimeout time.Duration `yaml:"generative_timeout"`
	} `yaml:"query"`

	RateLimit struct {
		RequestsPerMinute int `yaml:"requests_per_minute"`
	} `yaml:"rate_limit"`

	Analysis struct {
		CacheTTL time.Duration `yaml:"cache_ttl"`
	} `yaml:"analysis"`

	MaxFailuresBeforeSwitch int `yaml:"max_failures_before_switch"`
}

// LoadConfig loads configuration from YAML file
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	// Set defaults
	if config.Server.Port == "" {
		config.Server.Port = "8002"
	}

	if config.Gemini.ModelName == "" {
		config.Gemini.ModelName = "gemini-2.0-flash-exp"
	}

	if config.Gemini.MaxRetries == 0 {
		config.Gemini.MaxRetries = 3
	}

	if config.Database.Path == "" {
		config.Database.Path = "./data/kds_vt.db"
	}

	if config.Query.GenerativeTimeout == 0 {
		config.Query.GenerativeTimeout = 15 * time.Second
	}

	if config.RateLimit.RequestsPerMinute == 0 {
		config.RateLimit.RequestsPerMinute = 10
	}

	if config.Analysis.CacheTTL == 0 {
		config.Analysis.CacheTTL = 24 * time.Hour
	}

	if config.MaxFailuresBeforeSwitch == 0 {
		config.MaxFailuresBeforeSwitch = 3
	}

	// Expand environment variables in provider API keys
	for i := range config.Providers {
		config.Providers[i].APIKey = os.ExpandEnv(config.Providers[i].APIKey)
	}
	config.Gemini.APIKey = os.ExpandEnv(config.Gemini.APIKey)

	return config, nil
}
