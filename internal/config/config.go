package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/solrkeys/internal/domain/parsemode"
)

// Config holds the solrkeys configuration.
type Config struct {
	HTTP      HTTPConfig     `yaml:"http"`
	Auth      AuthConfig     `yaml:"auth"`
	Query     QueryConfig    `yaml:"query"`
	DataTypes DataTypeConfig `yaml:"data_types"`
	Logging   LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
	MaxBodyBytes    int `yaml:"max_body_bytes"`
}

// QueryConfig holds key compilation settings.
type QueryConfig struct {
	DefaultMode string `yaml:"default_mode"` // terms, phrase, edismax, keys, direct (default: phrase)
	Escaper     string `yaml:"escaper"`      // phrase (default), term, none
	// NameCacheSize bounds the field name transform cache (default: 4096, negative disables it).
	NameCacheSize int `yaml:"name_cache_size"`
}

// DataTypeConfig holds the data type -> dynamic field prefix registry settings.
type DataTypeConfig struct {
	Prefixes map[string]string `yaml:"prefixes"` // overrides and custom types
	Enabled  []string          `yaml:"enabled"`  // optional types: location, geohash, rpt
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		c.HTTP.MaxBodyBytes = 1 << 20
	}
	if c.Query.DefaultMode == "" {
		c.Query.DefaultMode = string(parsemode.Phrase)
	}
	if c.Query.Escaper == "" {
		c.Query.Escaper = "phrase"
	}
	if c.Query.NameCacheSize == 0 {
		c.Query.NameCacheSize = 4096
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if !parsemode.Mode(c.Query.DefaultMode).IsValid() {
		return fmt.Errorf("query.default_mode %q is not a parse mode", c.Query.DefaultMode)
	}
	switch c.Query.Escaper {
	case "phrase", "term", "none":
		// ok
	default:
		return fmt.Errorf("query.escaper must be \"phrase\", \"term\" or \"none\", got %q", c.Query.Escaper)
	}
	for t, p := range c.DataTypes.Prefixes {
		if !prefixRegex.MatchString(p) {
			return fmt.Errorf("data_types.prefixes.%s must be lowercase letters, got %q", t, p)
		}
	}
	return nil
}

// Dynamic field prefixes are matched as a run of lowercase letters.
var prefixRegex = regexp.MustCompile(`^[a-z]+$`)

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
