package config

import "time"

// CollectorConfig configures the portal capability collector.
type CollectorConfig struct {
	PortalURL string `yaml:"portal_url" validate:"required,url"`

	// Directory sheet listing the companies to collect.
	DirectorySheet     string `yaml:"directory_sheet" validate:"required"`
	DirectoryHeaderRow int    `yaml:"directory_header_row" validate:"min=1"`
	// Sheet copied for every newly seen company.
	TemplateSheet string `yaml:"template_sheet" validate:"required"`

	// Randomized pause bounds between UI actions.
	MinPauseMs int `yaml:"min_pause_ms" validate:"min=0"`
	MaxPauseMs int `yaml:"max_pause_ms" validate:"min=0"`

	// How long to wait for a page element before giving up on it.
	ElementTimeout string `yaml:"element_timeout"`
	// How long to look for the logged-in marker before prompting the operator.
	LoginTimeout string `yaml:"login_timeout"`
}

// DefaultCollectorConfig returns the standard collector settings.
func DefaultCollectorConfig() CollectorConfig {
	return CollectorConfig{
		PortalURL:          "https://atom.189.cn/pc/#/index",
		DirectorySheet:     "目录",
		DirectoryHeaderRow: 2,
		TemplateSheet:      "所需标签",
		MinPauseMs:         500,
		MaxPauseMs:         2000,
		ElementTimeout:     "10s",
		LoginTimeout:       "3s",
	}
}

// GetElementTimeout returns the element timeout as a duration.
func (c CollectorConfig) GetElementTimeout() time.Duration {
	d, err := time.ParseDuration(c.ElementTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// GetLoginTimeout returns the login check timeout as a duration.
func (c CollectorConfig) GetLoginTimeout() time.Duration {
	d, err := time.ParseDuration(c.LoginTimeout)
	if err != nil {
		return 3 * time.Second
	}
	return d
}

// BrowserConfig configures the Chrome instance driven by the collector.
type BrowserConfig struct {
	// Connect to an already running Chrome instead of launching one.
	DebuggerURL string `yaml:"debugger_url"`
	// Chrome binary; empty lets the launcher find or download one.
	Bin string `yaml:"bin"`
	// Profile directory, keeps cookies and the portal login between runs.
	UserDataDir         string `yaml:"user_data_dir"`
	Headless            bool   `yaml:"headless"`
	ViewportWidth       int    `yaml:"viewport_width" validate:"min=0"`
	ViewportHeight      int    `yaml:"viewport_height" validate:"min=0"`
	NavigationTimeoutMs int    `yaml:"navigation_timeout_ms" validate:"min=0"`
}

// DefaultBrowserConfig returns sensible browser defaults.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		UserDataDir:         ".ecocap/chrome_profile",
		ViewportWidth:       1920,
		ViewportHeight:      1080,
		NavigationTimeoutMs: 30000,
	}
}
