package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Placeholder stands in for an unset value.
const Placeholder = "—"

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		return boxStyle.Render(StyleHeader.Render(title) + "\n\n" + content)
	}
	return boxStyle.Render(content)
}

// Truncate shortens s to at most width terminal cells, marking the cut
// with an ellipsis.
func Truncate(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, "…")
}

// OrPlaceholder returns s, or a dimmed placeholder when s is blank.
func OrPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return Dim(Placeholder)
	}
	return s
}

// Field renders one "label: value" line of a detail view.
func Field(label, value string) string {
	return fmt.Sprintf("  %s  %s\n", StyleDim.Render(padCells(label, 10)), OrPlaceholder(value))
}

// padCells pads s with spaces to width terminal cells.
func padCells(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// HumanTimestamp renders t relative to now for recent times and as a local
// date-time otherwise.
func HumanTimestamp(t time.Time) string {
	return HumanTimestampFrom(t, time.Now())
}

// HumanTimestampFrom is HumanTimestamp with an explicit reference time.
func HumanTimestampFrom(t, now time.Time) string {
	if t.IsZero() {
		return Placeholder
	}
	diff := now.Sub(t)
	switch {
	case diff < 0:
		return t.Local().Format("2006-01-02 15:04")
	case diff < time.Minute:
		return "刚刚"
	case diff < time.Hour:
		return fmt.Sprintf("%d分钟前", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%d小时前", int(diff.Hours()))
	default:
		return t.Local().Format("2006-01-02 15:04")
	}
}
