package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "生态基础表明细", cfg.Numbering.DetailSheet)
	assert.Equal(t, 2, cfg.Numbering.DetailHeaderRow)
	assert.Equal(t, 5, cfg.Numbering.OrdinalStartRow)
	assert.Equal(t, []string{"全量_编码", "有厂家部分_编码"}, cfg.Numbering.TargetSheets)
	assert.Equal(t, "五级分类_编码", cfg.Numbering.EdgeSheet)
	assert.Equal(t, 2, cfg.Sort.TypeRanks["自有公司"])
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Numbering, cfg.Numbering)
}

func TestConfig_SaveLoad(t *testing.T) {
	t.Setenv("ECOCAP_LOG_LEVEL", "")
	path := filepath.Join(t.TempDir(), "nested", "ecocap.yaml")

	cfg := DefaultConfig()
	cfg.Numbering.Strict = true
	cfg.Numbering.TargetSheets = []string{"编码"}
	cfg.Export.DatabasePath = "edges.db"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.True(t, loaded.Numbering.Strict)
	assert.Equal(t, []string{"编码"}, loaded.Numbering.TargetSheets)
	assert.Equal(t, "edges.db", loaded.Export.DatabasePath)
}

func TestLoad_PartialFileKeepsOtherDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ecocap.yaml")
	content := `numbering:
  detail_sheet: 明细
sort:
  type_ranks:
    自有公司: 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "明细", cfg.Numbering.DetailSheet)
	assert.Equal(t, "各级序号", cfg.Numbering.OrdinalSheet)
	assert.Equal(t, 5, cfg.Sort.TypeRanks["自有公司"])
}

func TestLoad_RejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ecocap.yaml")
	require.NoError(t, os.WriteFile(path, []byte("numbering: [unclosed"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing detail sheet",
			mutate:  func(c *Config) { c.Numbering.DetailSheet = "" },
			wantErr: "Numbering.DetailSheet",
		},
		{
			name:    "no target sheets",
			mutate:  func(c *Config) { c.Numbering.TargetSheets = nil },
			wantErr: "Numbering.TargetSheets",
		},
		{
			name:    "header row zero",
			mutate:  func(c *Config) { c.Numbering.DetailHeaderRow = 0 },
			wantErr: "Numbering.DetailHeaderRow",
		},
		{
			name:    "target equals detail",
			mutate:  func(c *Config) { c.Numbering.TargetSheets = []string{c.Numbering.DetailSheet} },
			wantErr: "also the detail sheet",
		},
		{
			name:    "edge sheet overwrites its source",
			mutate:  func(c *Config) { c.Numbering.EdgeSheet = c.Numbering.EdgeSourceSheet },
			wantErr: "edge_sheet",
		},
		{
			name:    "bad portal url",
			mutate:  func(c *Config) { c.Collector.PortalURL = "not a url" },
			wantErr: "Collector.PortalURL",
		},
		{
			name:    "inverted pause bounds",
			mutate:  func(c *Config) { c.Collector.MinPauseMs = 3000 },
			wantErr: "min_pause_ms",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Logging.Level = "chatty" },
			wantErr: "Logging.Level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCollectorTimeouts(t *testing.T) {
	c := DefaultCollectorConfig()
	assert.Equal(t, "10s", c.ElementTimeout)
	assert.Equal(t, 10*time.Second, c.GetElementTimeout())

	c.LoginTimeout = "garbage"
	assert.Equal(t, 3*time.Second, c.GetLoginTimeout())
}
