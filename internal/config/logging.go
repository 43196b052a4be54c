package config

// LoggingConfig configures logging. Categories absent from Categories are
// enabled.
type LoggingConfig struct {
	Level      string          `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	File       string          `yaml:"file"`       // optional JSON log file
	Categories map[string]bool `yaml:"categories"` // per-category toggles
}
