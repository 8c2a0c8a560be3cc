package notifier

import (
	"fmt"
	"strings"
	"time"

	"MarketScreener/internal/model"
)

// FormatScanReport formats a full scan report for a Telegram reply.
func FormatScanReport(report *model.ScanReport) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Scan: %s\n", report.Trigger))
	b.WriteString(fmt.Sprintf("Condition: %s\n\n", report.Formula))
	b.WriteString(fmt.Sprintf("%d of %d symbols triggered\n", report.Triggered, report.Total))

	for _, r := range report.Results {
		if !r.Triggered {
			break // results are sorted triggered-first
		}
		b.WriteString(fmt.Sprintf("  🚨 %s  %.2f\n", r.Symbol, r.Price))
	}

	b.WriteString(fmt.Sprintf("\ncompleted in %s", report.Duration.Round(time.Millisecond)))
	return b.String()
}

// FormatScanSummary is the one-line operator log form of a report.
func FormatScanSummary(report *model.ScanReport) string {
	return fmt.Sprintf("trigger=%q triggered=%d total=%d duration=%s",
		report.Trigger, report.Triggered, report.Total, report.Duration.Round(time.Millisecond))
}
