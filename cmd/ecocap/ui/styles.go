// Package ui renders ecocap's console reports.
package ui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Status colors, shared by both themes.
var (
	ColorOK   = lipgloss.Color("#43A047")
	ColorWarn = lipgloss.Color("#FFC107")
)

// Theme is the palette a report is drawn with.
type Theme struct {
	Text   lipgloss.Color
	Accent lipgloss.Color // titles
	Dim    lipgloss.Color // separators, empty-table notes, hints
	IsDark bool
}

// LightTheme suits terminals with a light background.
func LightTheme() Theme {
	return Theme{
		Text:   lipgloss.Color("#101F38"),
		Accent: lipgloss.Color("#1F5C99"),
		Dim:    lipgloss.Color("#8A94A6"),
	}
}

// DarkTheme suits terminals with a dark background.
func DarkTheme() Theme {
	return Theme{
		Text:   lipgloss.Color("#F2F2F2"),
		Accent: lipgloss.Color("#7FB3E6"),
		Dim:    lipgloss.Color("#6B7A90"),
		IsDark: true,
	}
}

// DetectTheme honours ECOCAP_THEME=dark|light, then the background index of
// COLORFGBG ("fg;bg"), and falls back to the light theme.
func DetectTheme() Theme {
	switch strings.ToLower(os.Getenv("ECOCAP_THEME")) {
	case "dark":
		return DarkTheme()
	case "light":
		return LightTheme()
	}
	parts := strings.Split(os.Getenv("COLORFGBG"), ";")
	if bg, err := strconv.Atoi(parts[len(parts)-1]); err == nil && (bg <= 6 || bg == 8) {
		return DarkTheme()
	}
	return LightTheme()
}

// Styles are the text styles of a report.
type Styles struct {
	Theme Theme

	Title   lipgloss.Style
	Body    lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
}

// NewStyles derives the report styles from theme.
func NewStyles(theme Theme) Styles {
	body := lipgloss.NewStyle().Foreground(theme.Text)
	return Styles{
		Theme:   theme,
		Title:   lipgloss.NewStyle().Foreground(theme.Accent).Bold(true),
		Body:    body,
		Bold:    body.Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(theme.Dim),
		Success: lipgloss.NewStyle().Foreground(ColorOK).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(ColorWarn).Bold(true),
	}
}

// DefaultStyles returns styles for the detected theme.
func DefaultStyles() Styles {
	return NewStyles(DetectTheme())
}

// Status renders a one-line outcome: green when ok, yellow otherwise.
func (s Styles) Status(ok bool, msg string) string {
	if ok {
		return s.Success.Render("✓ " + msg)
	}
	return s.Warning.Render("! " + msg)
}
