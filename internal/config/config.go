package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

// ConfigDirName is the dot-directory holding the database, config and logs.
const ConfigDirName = ".fsintel"

// DatabaseFileName is the sqlite file created inside the config directory.
const DatabaseFileName = "fsintel.db"

// Config represents the complete analyzer configuration
type Config struct {
	Version int    `json:"version" mapstructure:"version"`
	Root    string `json:"root" mapstructure:"root"`

	Scan    ScanConfig    `json:"scan" mapstructure:"scan"`
	Workers int           `json:"workers" mapstructure:"workers"`
	Batch   BatchConfig   `json:"batch" mapstructure:"batch"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// ScanConfig is the per-scan configuration blob. It is serialized onto
// the scan session row, so a session always records the exact settings
// it ran with.
type ScanConfig struct {
	MaxDepth           int   `json:"max_depth" mapstructure:"max_depth"`
	IncludeHidden      bool  `json:"include_hidden" mapstructure:"include_hidden"`
	CalculateHashes    bool  `json:"calculate_hashes" mapstructure:"calculate_hashes"`
	HashSizeLimitBytes int64 `json:"hash_size_limit_bytes" mapstructure:"hash_size_limit_bytes"`
}

// BatchConfig controls how file records are chunked into insert batches.
type BatchConfig struct {
	Size int `json:"size" mapstructure:"size"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultHashSizeLimitBytes is 100 MiB; files at or above it are never hashed.
const DefaultHashSizeLimitBytes = 100 * 1024 * 1024

// DefaultScanConfig returns the scan defaults used when a caller
// supplies no config.
func DefaultScanConfig() ScanConfig {
	return ScanConfig{
		MaxDepth:           50,
		IncludeHidden:      true,
		CalculateHashes:    true,
		HashSizeLimitBytes: DefaultHashSizeLimitBytes,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Root:    ".",
		Scan:    DefaultScanConfig(),
		Workers: runtime.NumCPU(),
		Batch:   BatchConfig{Size: 500},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from <root>/.fsintel/config.json,
// returning defaults when the file does not exist.
func LoadConfig(root string) (*Config, error) {
	v := viper.New()

	v.SetDefault("version", 1)
	v.SetDefault("root", ".")
	v.SetDefault("workers", runtime.NumCPU())
	v.SetDefault("batch.size", 500)
	v.SetDefault("scan.max_depth", 50)
	v.SetDefault("scan.include_hidden", true)
	v.SetDefault("scan.calculate_hashes", true)
	v.SetDefault("scan.hash_size_limit_bytes", int64(DefaultHashSizeLimitBytes))
	v.SetDefault("logging.format", "human")
	v.SetDefault("logging.level", "info")

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(root, ConfigDirName))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to <root>/.fsintel/config.json
func (c *Config) Save(root string) error {
	dir := filepath.Join(root, ConfigDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != 1 {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if c.Workers < 0 {
		return &ConfigError{Field: "workers", Message: "must be zero or positive"}
	}
	if c.Batch.Size <= 0 {
		return &ConfigError{Field: "batch.size", Message: "must be positive"}
	}
	if err := c.Scan.Validate(); err != nil {
		return err
	}
	return nil
}

// Validate checks the per-scan settings.
func (s ScanConfig) Validate() error {
	if s.MaxDepth < 0 {
		return &ConfigError{Field: "scan.max_depth", Message: "must be zero or positive"}
	}
	if s.HashSizeLimitBytes < 0 {
		return &ConfigError{Field: "scan.hash_size_limit_bytes", Message: "must be zero or positive"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
