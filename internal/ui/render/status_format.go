package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/kk-code-lab/vgrid/internal/sheet"
)

// formatSheetStatus summarises b for the right side of the status line:
// name, row count, selection and the oldest running task with its progress.
func formatSheetStatus(b *sheet.Base) string {
	parts := []string{b.Name(), formatCompactNumber(b.NumRows()) + " rows"}
	if n := b.SelectedCount(); n > 0 {
		parts = append(parts, formatCompactNumber(n)+" selected")
	}
	if summary := formatTaskSummary(b); summary != "" {
		parts = append(parts, summary)
	}
	return strings.Join(parts, " · ")
}

func formatTaskSummary(b *sheet.Base) string {
	active := b.Tasks.Active()
	if len(active) == 0 {
		return ""
	}
	t := active[0]
	parts := []string{t.Name}
	if pct := b.Tasks.Percent(); pct >= 0 {
		parts = append(parts, fmt.Sprintf("%.0f%%", pct))
	}
	if !t.Started().IsZero() {
		parts = append(parts, formatDurationShort(t.Elapsed()))
	}
	if len(active) > 1 {
		parts = append(parts, fmt.Sprintf("+%d", len(active)-1))
	}
	return strings.Join(parts, " ")
}

func formatCompactNumber(n int) string {
	switch {
	case n >= 1_000_000_000:
		return trimTrailingZero(fmt.Sprintf("%.1f", float64(n)/1_000_000_000.0)) + "B"
	case n >= 1_000_000:
		return trimTrailingZero(fmt.Sprintf("%.1f", float64(n)/1_000_000.0)) + "M"
	case n >= 10_000:
		return trimTrailingZero(fmt.Sprintf("%.1f", float64(n)/1_000.0)) + "k"
	default:
		return fmt.Sprintf("%d", n)
	}
}

func trimTrailingZero(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	return strings.TrimSuffix(strings.TrimRight(s, "0"), ".")
}

func formatDurationShort(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return trimTrailingZero(fmt.Sprintf("%.1f", d.Seconds())) + "s"
	case d < time.Hour:
		return trimTrailingZero(fmt.Sprintf("%.1f", d.Minutes())) + "m"
	default:
		return trimTrailingZero(fmt.Sprintf("%.1f", d.Hours())) + "h"
	}
}
