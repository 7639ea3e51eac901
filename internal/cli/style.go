package cli

import (
	"github.com/charmbracelet/lipgloss"

	"classrecord/internal/analytics"
)

var (
	styleHeader = lipgloss.NewStyle().Foreground(lipgloss.Color("#fe8019")).Bold(true)
	styleGood   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8ec07c"))
	styleWarn   = lipgloss.NewStyle().Foreground(lipgloss.Color("#fabd2f"))
	styleBad    = lipgloss.NewStyle().Foreground(lipgloss.Color("#fb4934"))
)

func trendStyle(t analytics.Trend) lipgloss.Style {
	switch t {
	case analytics.TrendImproving:
		return styleGood
	case analytics.TrendDeclining:
		return styleBad
	}
	return styleWarn
}
