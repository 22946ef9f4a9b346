// Package config loads the emledit configuration: defaults first, then an
// optional YAML file, then EMLEDIT_* environment variables, which always win.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zostay/emledit/message"
	"github.com/zostay/emledit/translate"
)

// EnvPrefix starts the name of every environment variable read by Load.
const EnvPrefix = "EMLEDIT_"

// Translation providers.
const (
	ProviderNone = "none"
	ProviderAWS  = "aws"
)

// defaultMaxUploadSize is 25 MB in bytes.
const defaultMaxUploadSize = 26214400

// Config holds the complete application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Parse     ParseConfig     `yaml:"parse"`
	Translate TranslateConfig `yaml:"translate"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Listen        string        `yaml:"listen"`
	MaxUploadSize int64         `yaml:"max_upload_size"`
	ReadTimeout   time.Duration `yaml:"read_timeout"`
	WriteTimeout  time.Duration `yaml:"write_timeout"`
}

// ParseConfig holds the limits for parsing uploaded messages.
type ParseConfig struct {
	MaxHeaderLength int `yaml:"max_header_length"`
	MaxPartLength   int `yaml:"max_part_length"`
	MaxDepth        int `yaml:"max_depth"`
}

// TranslateConfig holds the translated preview configuration.
type TranslateConfig struct {
	Provider        string        `yaml:"provider"`
	Region          string        `yaml:"region"`
	AccessKeyID     string        `yaml:"access_key_id"`
	SecretAccessKey string        `yaml:"secret_access_key"`
	Target          string        `yaml:"target"`
	SampleSize      int           `yaml:"sample_size"`
	Timeout         time.Duration `yaml:"timeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load loads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.applyEnvVars()
	return cfg, cfg.Validate()
}

// LoadFromFile loads configuration from a YAML file as the base layer, then
// overrides it with environment variables. It fails if the file cannot be
// read.
func LoadFromFile(path string) (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvVars()

	return cfg, cfg.Validate()
}

// Validate checks the values that have a fixed set of choices.
func (c *Config) Validate() error {
	switch c.Translate.Provider {
	case ProviderNone, ProviderAWS:
	default:
		return fmt.Errorf("unknown translate provider %q", c.Translate.Provider)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}

	return nil
}

// ParseOptions returns the message.Parse options for the parse limits.
func (c *Config) ParseOptions() []message.ParseOption {
	return []message.ParseOption{
		message.WithMaxHeaderLength(c.Parse.MaxHeaderLength),
		message.WithMaxPartLength(c.Parse.MaxPartLength),
		message.WithMaxDepth(c.Parse.MaxDepth),
	}
}

// applyDefaults sets the default value of every field.
func (c *Config) applyDefaults() {
	c.Server.Listen = ":8080"
	c.Server.MaxUploadSize = defaultMaxUploadSize
	c.Server.ReadTimeout = 30 * time.Second
	c.Server.WriteTimeout = 30 * time.Second

	c.Parse.MaxHeaderLength = message.DefaultMaxHeaderLength
	c.Parse.MaxPartLength = message.DefaultMaxPartLength
	c.Parse.MaxDepth = message.DefaultMaxMultipartDepth

	c.Translate.Provider = ProviderNone
	c.Translate.Target = translate.DefaultTarget
	c.Translate.SampleSize = translate.DefaultSampleSize
	c.Translate.Timeout = translate.DefaultTimeout

	c.Logging.Level = "info"
}

// applyEnvVars overrides configuration with environment variable values. Only
// non-empty variables that parse override existing values.
func (c *Config) applyEnvVars() {
	setString(&c.Server.Listen, "SERVER_LISTEN")
	setInt64(&c.Server.MaxUploadSize, "SERVER_MAX_UPLOAD_SIZE")
	setDuration(&c.Server.ReadTimeout, "SERVER_READ_TIMEOUT")
	setDuration(&c.Server.WriteTimeout, "SERVER_WRITE_TIMEOUT")

	setInt(&c.Parse.MaxHeaderLength, "PARSE_MAX_HEADER_LENGTH")
	setInt(&c.Parse.MaxPartLength, "PARSE_MAX_PART_LENGTH")
	setInt(&c.Parse.MaxDepth, "PARSE_MAX_DEPTH")

	setString(&c.Translate.Provider, "TRANSLATE_PROVIDER")
	setString(&c.Translate.Region, "TRANSLATE_REGION")
	setString(&c.Translate.AccessKeyID, "TRANSLATE_ACCESS_KEY_ID")
	setString(&c.Translate.SecretAccessKey, "TRANSLATE_SECRET_ACCESS_KEY")
	setString(&c.Translate.Target, "TRANSLATE_TARGET")
	setInt(&c.Translate.SampleSize, "TRANSLATE_SAMPLE_SIZE")
	setDuration(&c.Translate.Timeout, "TRANSLATE_TIMEOUT")
	c.Translate.Provider = strings.ToLower(c.Translate.Provider)

	setString(&c.Logging.Level, "LOG_LEVEL")
	c.Logging.Level = strings.ToLower(c.Logging.Level)
}

func setString(dst *string, name string) {
	if v := os.Getenv(EnvPrefix + name); v != "" {
		*dst = v
	}
}

func setInt(dst *int, name string) {
	if v := os.Getenv(EnvPrefix + name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, name string) {
	if v := os.Getenv(EnvPrefix + name); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, name string) {
	if v := os.Getenv(EnvPrefix + name); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
