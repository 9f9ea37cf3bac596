package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/termdex/internal/domain/query"
)

// Config holds the termdex server configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Backend    BackendConfig    `yaml:"backend"`
	Dictionary DictionaryConfig `yaml:"dictionary"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// Backend drivers.
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverValkey = "valkey"
	DriverRemote = "remote"
)

// BackendConfig selects and connects the entry store.
type BackendConfig struct {
	Driver           string   `yaml:"driver"` // memory (default), redis, valkey, remote
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	KeyPrefix        string   `yaml:"key_prefix"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	RemoteURL        string   `yaml:"remote_url"`
	RemoteTimeoutSec int      `yaml:"remote_timeout_sec"`
}

// ID policies.
const (
	IDPolicyPadded = "padded"
	IDPolicyUUID   = "uuid"
)

// DictionaryConfig holds matching, pagination and data loading settings.
type DictionaryConfig struct {
	DefaultPageSize int               `yaml:"default_page_size"`
	MaxPageSize     int               `yaml:"max_page_size"`
	NumberMatch     NumberMatchConfig `yaml:"number_match"`
	IDPolicy        string            `yaml:"id_policy"` // padded (default), uuid
	IDWidth         int               `yaml:"id_width"`
	DataFile        string            `yaml:"data_file"`
	FixedTerms      []query.IDT       `yaml:"fixed_terms"`
}

// NumberMatchConfig configures the synthesized number match.
type NumberMatchConfig struct {
	Enabled         *bool  `yaml:"enabled"` // default true
	DictID          string `yaml:"dict_id"`
	ConceptIDPrefix string `yaml:"concept_id_prefix"`
}

// IsEnabled reports whether number matches are produced.
func (n NumberMatchConfig) IsEnabled() bool { return n.Enabled == nil || *n.Enabled }

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from the given YAML file.
func LoadFile(configPath string) (Config, error) {
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
	if c.Backend.Driver == "" {
		c.Backend.Driver = DriverMemory
	}
	if c.Backend.ReadinessTimeout <= 0 {
		c.Backend.ReadinessTimeout = 10
	}
	if c.Backend.KeyPrefix == "" {
		c.Backend.KeyPrefix = "termdex:"
	}
	if c.Backend.RemoteTimeoutSec <= 0 {
		c.Backend.RemoteTimeoutSec = 10
	}
	if c.Dictionary.DefaultPageSize <= 0 {
		c.Dictionary.DefaultPageSize = 20
	}
	if c.Dictionary.MaxPageSize <= 0 {
		c.Dictionary.MaxPageSize = 100
	}
	if c.Dictionary.IDPolicy == "" {
		c.Dictionary.IDPolicy = IDPolicyPadded
	}
	if c.Dictionary.IDWidth <= 0 {
		c.Dictionary.IDWidth = 4
	}
	if c.Dictionary.NumberMatch.DictID == "" {
		c.Dictionary.NumberMatch.DictID = "00"
	}
	if c.Dictionary.NumberMatch.ConceptIDPrefix == "" {
		c.Dictionary.NumberMatch.ConceptIDPrefix = "00:"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Backend.Driver {
	case DriverMemory:
	case DriverRedis, DriverValkey:
		if len(c.Backend.Addrs) == 0 {
			return fmt.Errorf("backend.addrs is required for driver %q", c.Backend.Driver)
		}
	case DriverRemote:
		if c.Backend.RemoteURL == "" {
			return fmt.Errorf("backend.remote_url is required for driver %q", DriverRemote)
		}
	default:
		return fmt.Errorf("backend.driver must be one of memory, redis, valkey, remote, got %q", c.Backend.Driver)
	}
	if c.Dictionary.DefaultPageSize > c.Dictionary.MaxPageSize {
		return fmt.Errorf("dictionary.default_page_size (%d) exceeds max_page_size (%d)",
			c.Dictionary.DefaultPageSize, c.Dictionary.MaxPageSize)
	}
	switch c.Dictionary.IDPolicy {
	case IDPolicyPadded, IDPolicyUUID:
	default:
		return fmt.Errorf("dictionary.id_policy must be \"padded\" or \"uuid\", got %q", c.Dictionary.IDPolicy)
	}
	return nil
}

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
