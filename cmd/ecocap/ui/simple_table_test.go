package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimpleTable(t *testing.T) {
	table := NewSimpleTable("层级计数", []string{"层级", "数量"}).AlignRight(1)
	table.AddRow("行业", "2")
	table.AddRow("一级")

	view := table.View(DefaultStyles())
	t.Logf("View:\n%s", view)

	assert.Contains(t, view, "层级计数")
	assert.Contains(t, view, "行业")
	assert.Contains(t, view, "一级")
	// Header, divider, two rows, title and trailing blank line.
	assert.Equal(t, 5, strings.Count(view, "\n")-1)
}

func TestSimpleTable_Empty(t *testing.T) {
	table := NewSimpleTable("差异", []string{"名称"})
	assert.Empty(t, table.View(DefaultStyles()))

	table.Empty = "无差异"
	view := table.View(DefaultStyles())
	assert.Contains(t, view, "差异")
	assert.Contains(t, view, "无差异")
}

func TestSimpleTable_RightAlignedCJK(t *testing.T) {
	table := NewSimpleTable("", []string{"名称", "n"}).AlignRight(1)
	table.AddRow("政务", "12")
	lines := strings.Split(strings.TrimRight(table.View(NewStyles(LightTheme())), "\n"), "\n")
	require.Len(t, lines, 3)
	// Every line spans the same number of terminal cells.
	assert.Equal(t, lipgloss.Width(lines[0]), lipgloss.Width(lines[1]))
	assert.Equal(t, lipgloss.Width(lines[0]), lipgloss.Width(lines[2]))
}

func TestDetectTheme(t *testing.T) {
	t.Setenv("ECOCAP_THEME", "")
	t.Setenv("COLORFGBG", "15;0")
	assert.True(t, DetectTheme().IsDark)

	t.Setenv("COLORFGBG", "0;15")
	assert.False(t, DetectTheme().IsDark)

	t.Setenv("ECOCAP_THEME", "dark")
	assert.True(t, DetectTheme().IsDark)

	t.Setenv("ECOCAP_THEME", "light")
	t.Setenv("COLORFGBG", "15;0")
	assert.False(t, DetectTheme().IsDark)
}

func TestStatus(t *testing.T) {
	s := NewStyles(LightTheme())
	assert.Contains(t, s.Status(true, "saved"), "✓ saved")
	assert.Contains(t, s.Status(false, "not saved"), "! not saved")
}
