package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/thedittmer/briefly/internal/notify"
	"github.com/thedittmer/briefly/internal/onboarding"
	"github.com/thedittmer/briefly/internal/search"
)

const (
	defaultWidth = 80
	minWidth     = 30
	progressBar  = 30
)

// Keys are the single-letter commands shown in the pager footer.
type Keys struct {
	Prev   string
	Next   string
	Search string
	Export string
	Sheets string
	Quit   string
}

// TerminalWidth reports the width of f when it is a terminal, else fallback
// (or 80 when fallback is not positive).
func TerminalWidth(f *os.File, fallback int) int {
	if fallback <= 0 {
		fallback = defaultWidth
	}
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return fallback
	}
	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return fallback
	}
	return w
}

// RenderView draws one page of results. The output depends only on its
// arguments.
func RenderView(v search.View, width int, compact bool) string {
	if width < minWidth {
		width = minWidth
	}

	if len(v.Rows) == 0 {
		return DimStyle.Render("No articles to show.")
	}

	var b strings.Builder
	for i, row := range v.Rows {
		if i > 0 && !compact {
			b.WriteString("\n")
		}
		b.WriteString(renderRow(row, width, compact))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderRow(row search.Row, width int, compact bool) string {
	index := IndexStyle.Render(fmt.Sprintf("%d.", row.Index+1))
	title := ArticleTitleStyle.Width(width - 6).Render(row.Title)
	head := lipgloss.JoinHorizontal(lipgloss.Top, index, title)

	meta := PublisherStyle.Render(row.Publisher) + DimStyle.Render(" - ") + DateStyle.Render(row.Date)
	if compact {
		return head + "\n    " + meta
	}
	return head + "\n    " + meta + "\n    " + LinkStyle.Render(row.Link)
}

// RenderFooter shows the page position and the navigation keys; keys that
// would do nothing are dimmed.
func RenderFooter(v search.View, keys Keys) string {
	prev := KeyStyle
	if v.PrevDisabled {
		prev = DisabledKeyStyle
	}
	next := KeyStyle
	if v.NextDisabled {
		next = DisabledKeyStyle
	}

	pages := v.Pages
	if pages == 0 {
		pages = 1
	}
	status := StatusStyle.Render(fmt.Sprintf("page %d/%d · %d articles", v.Page, pages, v.Total))

	nav := lipgloss.JoinHorizontal(lipgloss.Center,
		prev.Render(keys.Prev+" prev"),
		" ", status, " ",
		next.Render(keys.Next+" next"),
	)
	help := DimStyle.Render(fmt.Sprintf("%s search · %s export csv · %s export sheets · %s quit",
		keys.Search, keys.Export, keys.Sheets, keys.Quit))

	return nav + "\n" + help
}

// RenderBanner renders the message line, or "" once it has been dismissed.
func RenderBanner(m notify.Message) string {
	if !m.Visible || m.Text == "" {
		return ""
	}
	return bannerStyle(m.Severity).Render(m.Text)
}

func bannerStyle(sev notify.Severity) lipgloss.Style {
	switch sev {
	case notify.Success:
		return BannerSuccessStyle
	case notify.Danger:
		return BannerDangerStyle
	case notify.Warning:
		return BannerWarningStyle
	default:
		return BannerInfoStyle
	}
}

func RenderHeader(title string) string {
	return HeaderStyle.Render(title)
}

// RenderWizardStep draws the progress bar and title of the current step.
func RenderWizardStep(w *onboarding.Wizard) string {
	filled := int(w.Progress() / 100 * progressBar)
	bar := ProgressFullStyle.Render(strings.Repeat("█", filled)) +
		ProgressEmptyStyle.Render(strings.Repeat("░", progressBar-filled))

	step := w.Current()
	title := PromptStyle.Render(fmt.Sprintf("Step %d of %d: %s", w.Index()+1, w.Len(), step.Title))
	return BoxStyle.Render(title + "\n" + bar + DimStyle.Render(fmt.Sprintf(" %.0f%%", w.Progress())))
}

func Prompt(label string) string {
	return PromptStyle.Render(label + ": ")
}
