package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	ColorPrimary = lipgloss.Color("#7D56F4")
	ColorAccent  = lipgloss.Color("#F25D94")
	ColorSuccess = lipgloss.Color("#04B575")
	ColorDanger  = lipgloss.Color("#FF5F56")
	ColorMuted   = lipgloss.Color("#626262")
	ColorBorder  = lipgloss.Color("#3C3C3C")

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(ColorPrimary).
			Padding(0, 1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Italic(true)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#C1C6B2")).
			Background(lipgloss.Color("#353533")).
			Padding(0, 1)

	StatusKeyStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	BorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	SectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	MetricLabelStyle = lipgloss.NewStyle().
				Foreground(ColorMuted).
				Width(34)

	MetricValueStyle = lipgloss.NewStyle().
				Bold(true).
				Width(16).
				Align(lipgloss.Right)

	// Liability changes: lower tax is good news.
	MetricPositiveStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	MetricNegativeStyle = lipgloss.NewStyle().Foreground(ColorDanger)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorDanger).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFBD2E"))

	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Width(12)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)
)

// DeltaStyle picks the colour of a change in liability.
func DeltaStyle(delta int64) lipgloss.Style {
	switch {
	case delta < 0:
		return MetricPositiveStyle
	case delta > 0:
		return MetricNegativeStyle
	default:
		return SubtitleStyle
	}
}
