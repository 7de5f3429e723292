package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"rechnung/internal/logger"
)

// Config carries all run-time settings. It is built from environment
// variables, optionally overlaid with a YAML file, and passed explicitly
// into the commands that need it — there is no ambient configuration state.
type Config struct {
	// Invoice Processing Configuration
	InvoiceDir      string `yaml:"invoiceDir"`
	ReportDir       string `yaml:"reportDir"`
	DefaultCurrency string `yaml:"defaultCurrency"`

	// Exchange Rate Service Configuration
	RatesURL string `yaml:"ratesURL"`

	// Logging Configuration
	LogLevel      string `yaml:"logLevel"`
	LogFormat     string `yaml:"logFormat"`
	LogTimeFormat string `yaml:"logTimeFormat"`
	LogOutput     string `yaml:"logOutput"`
}

// Load builds a Config from environment variables. If RECHNUNG_CONFIG
// names a YAML file, its values override the environment.
func Load() (*Config, error) {
	config := &Config{
		InvoiceDir:      getEnv("INVOICE_DIR", "invoices"),
		ReportDir:       getEnv("REPORT_DIR", "reports"),
		DefaultCurrency: getEnv("DEFAULT_CURRENCY", "CHF"),
		RatesURL:        getEnv("RATES_URL", "https://open.er-api.com/v6/latest/CHF"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:   getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:       getEnv("LOG_OUTPUT", "stderr"),
	}

	if path := os.Getenv("RECHNUNG_CONFIG"); path != "" {
		if err := config.mergeFile(path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// mergeFile overlays the YAML file at path onto the config. Empty fields
// in the file keep their current values.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	overlay := Config{}
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("invalid YAML: %w", err)
	}

	if overlay.InvoiceDir != "" {
		c.InvoiceDir = overlay.InvoiceDir
	}
	if overlay.ReportDir != "" {
		c.ReportDir = overlay.ReportDir
	}
	if overlay.DefaultCurrency != "" {
		c.DefaultCurrency = overlay.DefaultCurrency
	}
	if overlay.RatesURL != "" {
		c.RatesURL = overlay.RatesURL
	}
	if overlay.LogLevel != "" {
		c.LogLevel = overlay.LogLevel
	}
	if overlay.LogFormat != "" {
		c.LogFormat = overlay.LogFormat
	}
	if overlay.LogTimeFormat != "" {
		c.LogTimeFormat = overlay.LogTimeFormat
	}
	if overlay.LogOutput != "" {
		c.LogOutput = overlay.LogOutput
	}

	return nil
}

func (c *Config) validate() error {
	if c.DefaultCurrency == "" {
		return fmt.Errorf("DEFAULT_CURRENCY must not be empty")
	}
	if c.RatesURL == "" {
		return fmt.Errorf("RATES_URL must not be empty")
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
