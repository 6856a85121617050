// =============================================================================
// Sales Analytics - Configuration Module
// =============================================================================
//
// This module loads the application configuration.
//
// SOURCES (later sources win):
//   1. Built-in defaults
//   2. YAML file (config.yaml, or the path given with --config)
//   3. Environment variables, optionally loaded from a .env file
//   4. Command-line flags (applied by the cmd package)
//
// ENVIRONMENT VARIABLES:
//   SALES_INPUT_FILE      input_file
//   SALES_ENRICHED_FILE   enriched_output_file
//   SALES_REPORT_FILE     report_file
//   SALES_WORKBOOK_FILE   workbook_file
//   SALES_CATALOG_URL     catalog.base_url
//   SALES_LOG_LEVEL       log_level
//   SALES_OFFLINE         offline
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/sales-analytics/internal/analytics"
	"github.com/ginjaninja78/sales-analytics/internal/catalog"
	"github.com/ginjaninja78/sales-analytics/internal/report"
	"github.com/ginjaninja78/sales-analytics/internal/validation"
)

// DefaultConfigFile is loaded when no --config path is given and the file
// exists in the working directory.
const DefaultConfigFile = "config.yaml"

// ErrInvalidConfig is returned when the loaded configuration fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

var validate = validator.New(validator.WithRequiredStructEnabled())

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the application configuration.
type Config struct {
	// =========================================================================
	// FILE SETTINGS
	// =========================================================================

	// InputFile is the pipe-delimited sales file.
	// Default: "data/sales_data.txt"
	InputFile string `yaml:"input_file" validate:"required"`

	// EnrichedOutputFile receives the enriched transactions.
	// Default: "data/enriched_sales_data.txt"
	EnrichedOutputFile string `yaml:"enriched_output_file" validate:"required"`

	// ReportFile receives the text report.
	// Default: "output/sales_report.txt"
	ReportFile string `yaml:"report_file" validate:"required"`

	// WorkbookFile is an optional .xlsx export. Empty disables it.
	WorkbookFile string `yaml:"workbook_file"`

	// RejectLogFile is an optional diagnostics file listing skipped and
	// invalid lines. Empty disables it.
	RejectLogFile string `yaml:"reject_log_file"`

	// =========================================================================
	// RUNTIME SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`

	// Offline skips the catalog request; every record is left unmatched.
	Offline bool `yaml:"offline"`

	Catalog  CatalogConfig  `yaml:"catalog"`
	Filters  FilterConfig   `yaml:"filters"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Report   ReportConfig   `yaml:"report"`
}

// CatalogConfig configures the product catalog request.
type CatalogConfig struct {
	// Default: "https://dummyjson.com/products"
	BaseURL string `yaml:"base_url" validate:"required,url"`

	// Default: 100
	Limit int `yaml:"limit" validate:"gte=1"`

	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// FilterConfig holds the optional record filters. Unset values disable the
// corresponding filter.
type FilterConfig struct {
	Region    string   `yaml:"region"`
	MinAmount *float64 `yaml:"min_amount" validate:"omitempty,gte=0"`
	MaxAmount *float64 `yaml:"max_amount" validate:"omitempty,gte=0"`
}

// AnalysisConfig sets the report's ranking parameters.
type AnalysisConfig struct {
	// Default: 5
	TopProducts int `yaml:"top_products" validate:"gte=1"`

	// Default: 5
	TopCustomers int `yaml:"top_customers" validate:"gte=1"`

	// Default: 10
	LowPerformerThreshold int `yaml:"low_performer_threshold" validate:"gte=1"`
}

// ReportConfig controls report formatting.
type ReportConfig struct {
	// Default: "₹"
	Currency string `yaml:"currency"`
}

// =============================================================================
// LOADING
// =============================================================================

// Load loads the configuration.
//
// PARAMETERS:
//   - configPath: Path to a YAML file. If empty, DefaultConfigFile is used
//     when it exists, otherwise only defaults and the environment apply.
//
// RETURNS:
//   - The validated configuration.
//   - An error if an explicitly named file cannot be read or parsed, or if
//     validation fails (wrapping ErrInvalidConfig).
func Load(configPath string) (*Config, error) {
	// A missing .env file is not an error.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: failed to load .env: %v", ErrInvalidConfig, err)
	}

	cfg := &Config{}

	path := configPath
	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			path = DefaultConfigFile
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyDefaults(cfg)
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns the configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults sets default values for any missing configuration.
func applyDefaults(cfg *Config) {
	if cfg.InputFile == "" {
		cfg.InputFile = "data/sales_data.txt"
	}
	if cfg.EnrichedOutputFile == "" {
		cfg.EnrichedOutputFile = "data/enriched_sales_data.txt"
	}
	if cfg.ReportFile == "" {
		cfg.ReportFile = "output/sales_report.txt"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Catalog.BaseURL == "" {
		cfg.Catalog.BaseURL = catalog.DefaultBaseURL
	}
	if cfg.Catalog.Limit == 0 {
		cfg.Catalog.Limit = catalog.DefaultLimit
	}
	if cfg.Catalog.Timeout == 0 {
		cfg.Catalog.Timeout = catalog.DefaultTimeout
	}
	if cfg.Analysis.TopProducts == 0 {
		cfg.Analysis.TopProducts = analytics.DefaultTopN
	}
	if cfg.Analysis.TopCustomers == 0 {
		cfg.Analysis.TopCustomers = analytics.DefaultTopN
	}
	if cfg.Analysis.LowPerformerThreshold == 0 {
		cfg.Analysis.LowPerformerThreshold = analytics.DefaultLowPerformerThreshold
	}
	if cfg.Report.Currency == "" {
		cfg.Report.Currency = report.DefaultCurrency
	}
}

func applyEnvOverrides(cfg *Config) error {
	stringVars := map[string]*string{
		"SALES_INPUT_FILE":    &cfg.InputFile,
		"SALES_ENRICHED_FILE": &cfg.EnrichedOutputFile,
		"SALES_REPORT_FILE":   &cfg.ReportFile,
		"SALES_WORKBOOK_FILE": &cfg.WorkbookFile,
		"SALES_CATALOG_URL":   &cfg.Catalog.BaseURL,
		"SALES_LOG_LEVEL":     &cfg.LogLevel,
	}
	for name, target := range stringVars {
		if value, ok := os.LookupEnv(name); ok && value != "" {
			*target = value
		}
	}

	if value, ok := os.LookupEnv("SALES_OFFLINE"); ok && value != "" {
		offline, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: SALES_OFFLINE: %w", ErrInvalidConfig, err)
		}
		cfg.Offline = offline
	}

	return nil
}

// Validate checks struct constraints and cross-field rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Catalog.Timeout <= 0 {
		return fmt.Errorf("%w: catalog timeout must be positive", ErrInvalidConfig)
	}
	if c.Filters.MinAmount != nil && c.Filters.MaxAmount != nil && *c.Filters.MinAmount > *c.Filters.MaxAmount {
		return fmt.Errorf("%w: min_amount %.2f is greater than max_amount %.2f",
			ErrInvalidConfig, *c.Filters.MinAmount, *c.Filters.MaxAmount)
	}
	return nil
}

// =============================================================================
// CONVERSIONS
// =============================================================================

// FilterOptions converts the filter settings for the validation engine.
func (c *Config) FilterOptions() validation.FilterOptions {
	var opts validation.FilterOptions
	if c.Filters.Region != "" {
		region := c.Filters.Region
		opts.Region = &region
	}
	if c.Filters.MinAmount != nil {
		minAmount := decimal.NewFromFloat(*c.Filters.MinAmount)
		opts.MinAmount = &minAmount
	}
	if c.Filters.MaxAmount != nil {
		maxAmount := decimal.NewFromFloat(*c.Filters.MaxAmount)
		opts.MaxAmount = &maxAmount
	}
	return opts
}

// CatalogClientConfig converts the catalog settings for the catalog client.
func (c *Config) CatalogClientConfig() catalog.Config {
	return catalog.Config{
		BaseURL: c.Catalog.BaseURL,
		Limit:   c.Catalog.Limit,
		Timeout: c.Catalog.Timeout,
	}
}
