package ui

import "github.com/charmbracelet/lipgloss"

var (
	primaryColor   = lipgloss.Color("#0969DA") // blue
	secondaryColor = lipgloss.Color("#8250DF") // purple
	accentColor    = lipgloss.Color("#2DA44E") // green
	warningColor   = lipgloss.Color("#D29922") // orange
	errorColor     = lipgloss.Color("#CF222E") // red
	infoColor      = lipgloss.Color("#58A6FF") // light blue
	textColor      = lipgloss.Color("#FFFFFF")
	lightTextColor = lipgloss.Color("#24292F")
	dimColor       = lipgloss.Color("#6E7681")
	titleColor     = lipgloss.Color("#39D353")
	dateColor      = lipgloss.Color("#A371F7")
	publisherColor = lipgloss.Color("#FFA657")
	selectedBg     = lipgloss.Color("#2D333B")

	HeaderStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true).
			Padding(0, 1).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(accentColor)

	PromptStyle = lipgloss.NewStyle().
			Foreground(secondaryColor).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	TextStyle = lipgloss.NewStyle().
			Foreground(textColor)

	DimStyle = lipgloss.NewStyle().
			Foreground(dimColor)

	LinkStyle = lipgloss.NewStyle().
			Foreground(infoColor).
			Underline(true)

	ArticleTitleStyle = lipgloss.NewStyle().
				Foreground(titleColor).
				Bold(true)

	DateStyle = lipgloss.NewStyle().
			Foreground(dateColor).
			Italic(true)

	PublisherStyle = lipgloss.NewStyle().
			Foreground(publisherColor).
			Bold(true)

	IndexStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true).
			Width(4)

	KeyStyle = lipgloss.NewStyle().
			Foreground(secondaryColor).
			Bold(true).
			Padding(0, 1).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(accentColor)

	DisabledKeyStyle = lipgloss.NewStyle().
				Foreground(dimColor).
				Padding(0, 1).
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(dimColor)

	StatusStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Background(selectedBg).
			Padding(0, 1).
			Bold(true)

	BoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(accentColor).
			Padding(0, 1)

	ProgressFullStyle = lipgloss.NewStyle().
				Foreground(accentColor)

	ProgressEmptyStyle = lipgloss.NewStyle().
				Foreground(dimColor)

	// Banner styles, keyed by notify severity.
	bannerBase = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderRight(false).
			BorderTop(false).
			BorderBottom(false)

	BannerSuccessStyle = bannerBase.Foreground(accentColor).BorderForeground(accentColor)
	BannerDangerStyle  = bannerBase.Foreground(errorColor).BorderForeground(errorColor)
	BannerWarningStyle = bannerBase.Foreground(warningColor).BorderForeground(warningColor)
	BannerInfoStyle    = bannerBase.Foreground(infoColor).BorderForeground(infoColor)
)

// ApplyTheme adjusts the styles to the configured theme. An empty accent
// leaves the accent styles as they are.
func ApplyTheme(dark bool, accent string) {
	lipgloss.SetHasDarkBackground(dark)
	if dark {
		TextStyle = TextStyle.Foreground(textColor)
	} else {
		TextStyle = TextStyle.Foreground(lightTextColor)
	}

	if accent == "" {
		return
	}
	c := lipgloss.Color(accent)
	accentColor = c
	HeaderStyle = HeaderStyle.BorderForeground(c)
	SuccessStyle = SuccessStyle.Foreground(c)
	KeyStyle = KeyStyle.BorderForeground(c)
	StatusStyle = StatusStyle.Foreground(c)
	BoxStyle = BoxStyle.BorderForeground(c)
	ProgressFullStyle = ProgressFullStyle.Foreground(c)
	BannerSuccessStyle = BannerSuccessStyle.Foreground(c).BorderForeground(c)
}
