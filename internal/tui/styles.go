package tui

import "github.com/charmbracelet/lipgloss"

// palette adapts to light and dark terminals
var (
	accent = lipgloss.AdaptiveColor{Light: "#5B21B6", Dark: "#A78BFA"}
	ok     = lipgloss.AdaptiveColor{Light: "#047857", Dark: "#34D399"}
	warn   = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FBBF24"}
	danger = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}
	dim    = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	bar    = lipgloss.AdaptiveColor{Light: "#E5E7EB", Dark: "#1F2937"}
)

var (
	base = lipgloss.NewStyle()

	headingStyle = base.Bold(true).Foreground(accent).MarginBottom(1)
	barStyle     = base.Background(bar).Padding(0, 1)
	dimStyle     = base.Foreground(dim)
	metaStyle    = dimStyle.Italic(true)
	keysStyle    = dimStyle.MarginTop(1)
	urlStyle     = dimStyle.Underline(true)
	warnStyle    = base.Foreground(warn)
	failStyle    = base.Foreground(danger)
	totalStyle   = base.Foreground(ok).Bold(true)

	tabOff = base.Padding(0, 2).Foreground(dim)
	tabOn  = tabOff.Foreground(accent).Bold(true).Underline(true)

	rowStyle    = base.PaddingLeft(2)
	cursorStyle = base.Reverse(true).Bold(true).Padding(0, 1)
	entryIndent = base.PaddingLeft(6)
)

// statusMark is a one-cell marker for a document status
func statusMark(status string) string {
	switch status {
	case "publish":
		return totalStyle.Render("●")
	case "draft", "pending", "future":
		return warnStyle.Render("○")
	case "private":
		return dimStyle.Render("◌")
	}
	return dimStyle.Render("·")
}
