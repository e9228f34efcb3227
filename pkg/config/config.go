package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	errs "liscraper/pkg/errors"
	"liscraper/pkg/storage"
)

// EnvPrefix is prepended to every environment variable the loader reads
const EnvPrefix = "LISCRAPER_"

// Config holds all configuration options for a collection run
type Config struct {
	// Request pacing and randomness
	Scraper ScraperConfig `yaml:"scraper" json:"scraper"`

	// Per-identifier retry policy
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Export destinations
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// ScraperConfig holds the simulated request pacing
type ScraperConfig struct {
	// MinDelay and MaxDelay bound the random wait before each request, in seconds
	MinDelay float64 `yaml:"min_delay" json:"min_delay"`
	MaxDelay float64 `yaml:"max_delay" json:"max_delay"`
	// Seed for the random source; 0 picks a time-based seed
	Seed int64 `yaml:"seed" json:"seed"`
	// RequestsPerHour caps simulated requests; 0 disables the cap
	RequestsPerHour int `yaml:"requests_per_hour" json:"requests_per_hour"`
}

// RetryConfig holds the retry policy applied to record generation
type RetryConfig struct {
	MaxAttempts    int           `yaml:"max_attempts" json:"max_attempts"`
	InitialBackoff time.Duration `yaml:"initial_backoff" json:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff" json:"max_backoff"`
	Multiplier     float64       `yaml:"multiplier" json:"multiplier"`
}

// OutputConfig holds export paths. An empty path skips that format.
type OutputConfig struct {
	CSVPath    string `yaml:"csv_path" json:"csv_path"`
	JSONPath   string `yaml:"json_path" json:"json_path"`
	SQLitePath string `yaml:"sqlite_path" json:"sqlite_path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level   string `yaml:"level" json:"level"`
	File    string `yaml:"file" json:"file"`
	Console bool   `yaml:"console" json:"console"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Scraper: ScraperConfig{
			MinDelay:        2.0,
			MaxDelay:        5.0,
			Seed:            0,
			RequestsPerHour: 0,
		},
		Retry: RetryConfig{
			MaxAttempts:    1,
			InitialBackoff: 1 * time.Second,
			MaxBackoff:     30 * time.Second,
			Multiplier:     2.0,
		},
		Output: OutputConfig{
			CSVPath:    "profiles.csv",
			JSONPath:   "profiles.json",
			SQLitePath: "",
		},
		Logging: LoggingConfig{
			Level:   "info",
			File:    "scraper.log",
			Console: false,
		},
	}
}

// LoadFromEnv loads configuration from LISCRAPER_* environment variables
func (c *Config) LoadFromEnv() error {
	var errList []error

	parseFloat := func(name string, dst *float64) {
		if v := os.Getenv(EnvPrefix + name); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errList = append(errList, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = f
		}
	}
	parseInt := func(name string, dst *int) {
		if v := os.Getenv(EnvPrefix + name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errList = append(errList, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = n
		}
	}

	parseFloat("MIN_DELAY", &c.Scraper.MinDelay)
	parseFloat("MAX_DELAY", &c.Scraper.MaxDelay)
	parseInt("REQUESTS_PER_HOUR", &c.Scraper.RequestsPerHour)
	parseInt("MAX_ATTEMPTS", &c.Retry.MaxAttempts)

	if seed := os.Getenv(EnvPrefix + "SEED"); seed != "" {
		n, err := strconv.ParseInt(seed, 10, 64)
		if err != nil {
			errList = append(errList, fmt.Errorf("%sSEED: %w", EnvPrefix, err))
		} else {
			c.Scraper.Seed = n
		}
	}

	if v, ok := os.LookupEnv(EnvPrefix + "CSV_PATH"); ok {
		c.Output.CSVPath = v
	}
	if v, ok := os.LookupEnv(EnvPrefix + "JSON_PATH"); ok {
		c.Output.JSONPath = v
	}
	if v, ok := os.LookupEnv(EnvPrefix + "SQLITE_PATH"); ok {
		c.Output.SQLitePath = v
	}

	if logLevel := os.Getenv(EnvPrefix + "LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile, ok := os.LookupEnv(EnvPrefix + "LOG_FILE"); ok {
		c.Logging.File = logFile
	}

	if len(errList) > 0 {
		return &errs.Error{
			Type:    errs.ErrorTypeConfig,
			Message: "invalid environment variable",
			Err:     errors.Join(errList...),
		}
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = FindConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return &errs.Error{Type: errs.ErrorTypeConfig, Message: "failed to parse config file " + path, Err: err}
	}

	return nil
}

// FindConfigFile returns the first existing config file among the standard
// locations, or "" when there is none
func FindConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		"liscraper.yaml",
		"liscraper.yml",
		".liscraper.yaml",
		".liscraper.yml",
		filepath.Join(home, ".config", "liscraper", "config.yaml"),
		filepath.Join(home, ".liscraper.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errList []error

	// Delay bounds
	if err := ValidateDelay(c.Scraper.MinDelay, c.Scraper.MaxDelay); err != nil {
		errList = append(errList, err)
	}
	if c.Scraper.RequestsPerHour < 0 {
		errList = append(errList, errors.New("requests per hour cannot be negative"))
	}

	// Retry policy
	if c.Retry.MaxAttempts < 1 || c.Retry.MaxAttempts > 10 {
		errList = append(errList, errors.New("max attempts must be between 1 and 10"))
	}
	if c.Retry.InitialBackoff < 0 || c.Retry.MaxBackoff < 0 {
		errList = append(errList, errors.New("backoff durations cannot be negative"))
	}
	if c.Retry.Multiplier < 1 {
		errList = append(errList, errors.New("backoff multiplier must be at least 1"))
	}

	// Output
	if c.Output.CSVPath == "" && c.Output.JSONPath == "" && c.Output.SQLitePath == "" {
		errList = append(errList, errors.New("at least one output path is required"))
	}

	// Logging
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errList = append(errList, fmt.Errorf("invalid log level %q", c.Logging.Level))
	}

	if len(errList) > 0 {
		return &errs.Error{
			Type:    errs.ErrorTypeConfig,
			Message: "invalid configuration",
			Err:     errors.Join(errList...),
		}
	}

	return nil
}

// ValidateDelay checks a [min,max] delay interval given in seconds
func ValidateDelay(minDelay, maxDelay float64) error {
	for _, d := range []float64{minDelay, maxDelay} {
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return errs.NewConfigError("delay must be a finite number, got %v", d)
		}
	}
	if minDelay < 0 || maxDelay < 0 {
		return errs.NewConfigError("delays cannot be negative (min %.2f, max %.2f)", minDelay, maxDelay)
	}
	if minDelay > maxDelay {
		return errs.NewConfigError("min delay %.2f exceeds max delay %.2f", minDelay, maxDelay)
	}
	return nil
}

// Save writes the configuration as YAML, replacing path atomically
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := storage.WriteBytesAtomic(path, data); err != nil {
		return errs.NewIOError("write config", path, err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if v, ok := flags["min-delay"].(float64); ok {
		c.Scraper.MinDelay = v
	}
	if v, ok := flags["max-delay"].(float64); ok {
		c.Scraper.MaxDelay = v
	}
	if v, ok := flags["seed"].(int64); ok {
		c.Scraper.Seed = v
	}
	if v, ok := flags["requests-per-hour"].(int); ok {
		c.Scraper.RequestsPerHour = v
	}
	if v, ok := flags["max-attempts"].(int); ok {
		c.Retry.MaxAttempts = v
	}
	if v, ok := flags["csv"].(string); ok {
		c.Output.CSVPath = v
	}
	if v, ok := flags["json"].(string); ok {
		c.Output.JSONPath = v
	}
	if v, ok := flags["sqlite"].(string); ok {
		c.Output.SQLitePath = v
	}
	if v, ok := flags["log-level"].(string); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := flags["log-file"].(string); ok {
		c.Logging.File = v
	}
	if v, ok := flags["log-console"].(bool); ok {
		c.Logging.Console = v
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// .env files are optional
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".liscraper.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
