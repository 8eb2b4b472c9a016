package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"zdguide/internal/adapters/tui/styles"
	"zdguide/internal/application"
)

// levelStyle maps an outcome level to its style and marker
func levelStyle(level application.Level) (lipgloss.Style, string) {
	switch level {
	case application.LevelSuccess:
		return styles.Success, "✓"
	case application.LevelWarning:
		return styles.WarningMsg, "!"
	default:
		return styles.ErrorMsg, "✗"
	}
}

// RenderOutcome renders one outcome line
func RenderOutcome(o application.Outcome) string {
	style, marker := levelStyle(o.Level)
	return style.Render(marker) + " " + o.Message
}

// RenderReport renders a run report as a bordered panel: the intent label,
// every outcome, then the counters when anything was fetched.
func RenderReport(report *application.RunReport) string {
	if report == nil {
		return ""
	}

	lines := []string{styles.InputLabel.Render(report.Intent.Label())}
	for _, o := range report.Outcomes {
		lines = append(lines, RenderOutcome(o))
	}
	if stats := RenderStats(report.Stats); stats != "" {
		lines = append(lines, "", styles.MutedText.Render(stats))
	}
	return styles.Panel.Render(strings.Join(lines, "\n"))
}

// RenderStats summarizes counters, or returns "" for runs that fetched nothing
func RenderStats(s application.SyncStats) string {
	if s.Fetched == 0 && s.SkippedParents == 0 && s.Failed == 0 {
		return ""
	}
	parts := []string{
		fmt.Sprintf("fetched %d", s.Fetched),
		fmt.Sprintf("created %d", s.Created),
		fmt.Sprintf("updated %d", s.Updated),
	}
	if s.Failed > 0 {
		parts = append(parts, fmt.Sprintf("failed %d", s.Failed))
	}
	if s.SkippedParents > 0 {
		parts = append(parts, fmt.Sprintf("skipped %d parents", s.SkippedParents))
	}
	return strings.Join(parts, ", ") + " in " + s.Duration.Round(time.Millisecond).String()
}

// PlainReport is the unstyled form used for clipboard copies
func PlainReport(report *application.RunReport) string {
	var b strings.Builder
	b.WriteString(report.Intent.Label())
	b.WriteByte('\n')
	for _, o := range report.Outcomes {
		fmt.Fprintf(&b, "[%s] %s\n", o.Level, o.Message)
	}
	if stats := RenderStats(report.Stats); stats != "" {
		b.WriteString(stats)
		b.WriteByte('\n')
	}
	return b.String()
}
