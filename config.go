package f90doc

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// ErrConfigValidation is returned when configuration validation fails.
var ErrConfigValidation = errors.New("configuration validation failed")

// Default configuration values.
const (
	DefaultConfigFile      = "f90doc.yaml"
	DefaultTypeIndexFile   = "f90doc.types.yaml"
	DefaultFormat          = "yaml"
	DefaultMergeNameBudget = 30
)

// Config holds the settings of a documentation extraction run.
type Config struct {
	// DocMarker starts a documentation comment.
	DocMarker string `yaml:"doc_marker"`
	// ReturnValueMarker starts a function return value documentation comment.
	ReturnValueMarker string `yaml:"return_value_marker"`
	// QuoteAwareComments protects '!' inside character literals from starting a comment.
	QuoteAwareComments *bool `yaml:"quote_aware_comments"`
	// CarryPendingDoc lets documentation held at the end of a file reach the next file.
	CarryPendingDoc bool `yaml:"carry_pending_doc"`
	// MergeNameBudget bounds the joined name length of a merged declaration
	// group. Zero keeps every group in a single entry.
	MergeNameBudget *int `yaml:"merge_name_budget"`
	// TypeIndex is the path of the persisted derived type index.
	TypeIndex string `yaml:"type_index"`
	// Format is the default output format of the dump command.
	Format string `yaml:"format"`
}

// LoadConfig loads configuration from configPath. A .env file in the working
// directory is loaded first so that ${VAR} references in string fields can
// be expanded. A missing configuration file yields the defaults.
func LoadConfig(configPath string) (*Config, error) {
	err := loadEnvFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to load environment files: %w", err)
	}

	if configPath == "" || !fileExists(configPath) {
		config := DefaultConfig()
		expandConfigEnvVars(config)
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	config, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}
	return config, nil
}

// ParseConfig decodes, validates and completes a YAML configuration.
// Unknown fields are an error.
func ParseConfig(data []byte) (*Config, error) {
	var config Config
	err := yaml.UnmarshalWithOptions(data, &config, yaml.Strict())
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := validateConfig(&config); err != nil {
		return nil, err
	}
	applyDefaults(&config)
	expandConfigEnvVars(&config)
	return &config, nil
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	config := &Config{}
	applyDefaults(config)
	return config
}

// ParserOptions returns the parser options described by the configuration.
func (c *Config) ParserOptions(logger *slog.Logger) Options {
	return Options{
		DocMarker:         c.DocMarker,
		ReturnValueMarker: c.ReturnValueMarker,
		NaiveComments:     c.QuoteAwareComments != nil && !*c.QuoteAwareComments,
		CarryPendingDoc:   c.CarryPendingDoc,
		Logger:            logger,
	}
}

func validateConfig(config *Config) error {
	for _, marker := range []struct{ field, value string }{
		{"doc_marker", config.DocMarker},
		{"return_value_marker", config.ReturnValueMarker},
	} {
		if marker.value != "" && (!strings.HasPrefix(marker.value, "!") || len(marker.value) < 2) {
			return fmt.Errorf("%w: %s '%s' must be a comment marker of at least two characters starting with '!'", ErrConfigValidation, marker.field, marker.value)
		}
		if strings.ContainsAny(marker.value, " \t") {
			return fmt.Errorf("%w: %s '%s' must not contain blanks", ErrConfigValidation, marker.field, marker.value)
		}
	}
	if config.DocMarker != "" && config.DocMarker == config.ReturnValueMarker {
		return fmt.Errorf("%w: doc_marker and return_value_marker must differ", ErrConfigValidation)
	}
	if config.MergeNameBudget != nil && *config.MergeNameBudget < 0 {
		return fmt.Errorf("%w: merge_name_budget must be non-negative, got %d", ErrConfigValidation, *config.MergeNameBudget)
	}
	switch config.Format {
	case "", "yaml", "json", "tree":
	default:
		return fmt.Errorf("%w: invalid format '%s': must be one of yaml, json, tree", ErrConfigValidation, config.Format)
	}
	return nil
}

func applyDefaults(config *Config) {
	if config.DocMarker == "" {
		config.DocMarker = DefaultDocMarker
	}
	if config.ReturnValueMarker == "" {
		config.ReturnValueMarker = DefaultReturnValueMarker
	}
	if config.QuoteAwareComments == nil {
		config.QuoteAwareComments = boolPtr(true)
	}
	if config.MergeNameBudget == nil {
		config.MergeNameBudget = intPtr(DefaultMergeNameBudget)
	}
	if config.TypeIndex == "" {
		config.TypeIndex = DefaultTypeIndexFile
	}
	if config.Format == "" {
		config.Format = DefaultFormat
	}
}

// loadEnvFiles loads a .env file from the working directory if it exists.
func loadEnvFiles() error {
	if fileExists(".env") {
		err := godotenv.Load(".env")
		if err != nil {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
	}
	return nil
}

// expandConfigEnvVars expands ${VAR} and $VAR in path fields.
func expandConfigEnvVars(config *Config) {
	config.TypeIndex = os.ExpandEnv(config.TypeIndex)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

func boolPtr(b bool) *bool { return &b }

func intPtr(i int) *int { return &i }
