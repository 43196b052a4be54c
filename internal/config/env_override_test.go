package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvOverrides(t *testing.T) {
	t.Run("log level", func(t *testing.T) {
		t.Setenv("ECOCAP_LOG_LEVEL", "debug")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "debug", cfg.Logging.Level)
	})

	t.Run("headless parses bools", func(t *testing.T) {
		t.Setenv("ECOCAP_HEADLESS", "true")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.True(t, cfg.Browser.Headless)
	})

	t.Run("headless ignores garbage", func(t *testing.T) {
		t.Setenv("ECOCAP_HEADLESS", "sometimes")

		cfg := DefaultConfig()
		cfg.Browser.Headless = true
		cfg.applyEnvOverrides()

		assert.True(t, cfg.Browser.Headless)
	})

	t.Run("profile, portal and export paths", func(t *testing.T) {
		t.Setenv("ECOCAP_CHROME_PROFILE", "/tmp/profile")
		t.Setenv("ECOCAP_PORTAL_URL", "https://portal.example.com/#/index")
		t.Setenv("ECOCAP_EXPORT_DB", "/tmp/edges.db")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "/tmp/profile", cfg.Browser.UserDataDir)
		assert.Equal(t, "https://portal.example.com/#/index", cfg.Collector.PortalURL)
		assert.Equal(t, "/tmp/edges.db", cfg.Export.DatabasePath)
	})

	t.Run("unset leaves defaults", func(t *testing.T) {
		t.Setenv("ECOCAP_LOG_LEVEL", "")
		t.Setenv("ECOCAP_CHROME_PROFILE", "")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "info", cfg.Logging.Level)
		assert.Equal(t, ".ecocap/chrome_profile", cfg.Browser.UserDataDir)
	})
}
