package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the CLI looks for configuration when --config is not given.
const DefaultPath = "ecocap.yaml"

// Config holds all ecocap configuration.
type Config struct {
	// Category numbering pipeline (enumerate, format, flatten)
	Numbering NumberingConfig `yaml:"numbering" validate:"required"`

	// Company block sorting
	Sort SortConfig `yaml:"sort" validate:"required"`

	// Category name reconciliation
	Reconcile ReconcileConfig `yaml:"reconcile" validate:"required"`

	// Portal capability collector
	Collector CollectorConfig `yaml:"collector" validate:"required"`

	// Browser used by the collector
	Browser BrowserConfig `yaml:"browser" validate:"required"`

	// SQLite export of the flattened tree
	Export ExportConfig `yaml:"export"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// DefaultConfig returns the default configuration, matching the sheet layout
// of the capability-map workbook.
func DefaultConfig() *Config {
	return &Config{
		Numbering: DefaultNumberingConfig(),
		Sort:      DefaultSortConfig(),
		Reconcile: DefaultReconcileConfig(),
		Collector: DefaultCollectorConfig(),
		Browser:   DefaultBrowserConfig(),
		Export:    ExportConfig{},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if level := os.Getenv("ECOCAP_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if raw := os.Getenv("ECOCAP_HEADLESS"); raw != "" {
		if headless, err := strconv.ParseBool(raw); err == nil {
			c.Browser.Headless = headless
		}
	}
	if dir := os.Getenv("ECOCAP_CHROME_PROFILE"); dir != "" {
		c.Browser.UserDataDir = dir
	}
	if url := os.Getenv("ECOCAP_PORTAL_URL"); url != "" {
		c.Collector.PortalURL = url
	}
	if path := os.Getenv("ECOCAP_EXPORT_DB"); path != "" {
		c.Export.DatabasePath = path
	}
}

var validate = validator.New()

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}

	for _, target := range c.Numbering.TargetSheets {
		if target == c.Numbering.DetailSheet {
			return fmt.Errorf("numbering.target_sheets: %q is also the detail sheet", target)
		}
	}
	if c.Numbering.EdgeSheet == c.Numbering.EdgeSourceSheet {
		return fmt.Errorf("numbering.edge_sheet: must differ from edge_source_sheet (%q)", c.Numbering.EdgeSheet)
	}
	if c.Collector.MinPauseMs > c.Collector.MaxPauseMs {
		return fmt.Errorf("collector: min_pause_ms (%d) exceeds max_pause_ms (%d)",
			c.Collector.MinPauseMs, c.Collector.MaxPauseMs)
	}
	return nil
}

// formatValidationError flattens validator errors into one readable message.
func formatValidationError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s=%s", field, fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s", field, fe.Tag()))
		}
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}
