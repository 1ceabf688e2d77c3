package tui

import (
	"github.com/charmbracelet/lipgloss"

	"mq-dashboard/internal/domain"
)

var (
	ColorKafka    = lipgloss.Color("#8884d8")
	ColorRabbitMQ = lipgloss.Color("#82ca9d")
	ColorMuted    = lipgloss.Color("#888888")
	ColorError    = lipgloss.Color("#FF6666")
	ColorWarn     = lipgloss.Color("#FFAA00")
	ColorOK       = lipgloss.Color("#44FF44")
	ColorBorder   = lipgloss.Color("#444444")
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

	tileStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	tileTitleStyle = lipgloss.NewStyle().Bold(true)

	sectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	mutedStyle = lipgloss.NewStyle().Foreground(ColorMuted)
)

func sourceColor(src domain.Source) lipgloss.Color {
	if src == domain.SourceRabbitMQ {
		return ColorRabbitMQ
	}
	return ColorKafka
}

func sourceStyle(src domain.Source) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(sourceColor(src))
}
