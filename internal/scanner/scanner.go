// Package scanner runs one full screening cycle: collect candle windows,
// evaluate the active trigger per symbol, and hand the results to the alert
// coordinator.
package scanner

import (
	"log"
	"sort"
	"time"

	"MarketScreener/internal/alert"
	"MarketScreener/internal/collector"
	"MarketScreener/internal/model"
	"MarketScreener/internal/trigger"
)

// Scanner drives one polling cycle at a time. Callers must not run cycles
// concurrently; the scheduler serializes them.
type Scanner struct {
	Collector   *collector.Collector
	Evaluator   *trigger.Evaluator
	Coordinator *alert.Coordinator
	Session     *alert.Session
	Symbols     []string
}

// NewScanner creates a Scanner over a fixed symbol list.
func NewScanner(col *collector.Collector, ev *trigger.Evaluator, coord *alert.Coordinator, session *alert.Session, symbols []string) *Scanner {
	return &Scanner{
		Collector:   col,
		Evaluator:   ev,
		Coordinator: coord,
		Session:     session,
		Symbols:     symbols,
	}
}

// Scan executes one cycle and returns the report plus the alert batch, which
// is nil when alerts are disabled or nothing was dispatched. A cycle always
// completes: bad formulas and per-symbol data problems degrade to
// not-triggered rather than failing the scan.
func (s *Scanner) Scan() (*model.ScanReport, *model.AlertBatch) {
	start := time.Now()
	name, formula, expr := s.Session.ActiveTrigger()
	if expr == nil {
		log.Printf("[WARN] active trigger %q has no valid formula, scan will report zero triggers", name)
	}

	windows := s.Collector.CollectWindows(s.Symbols)

	results := make([]model.TriggerResult, 0, len(windows))
	for _, sym := range s.Symbols {
		w, ok := windows[sym]
		if !ok {
			continue // no data this cycle, no decision
		}
		last, _ := w.Last()
		results = append(results, model.TriggerResult{
			Symbol:    sym,
			Triggered: s.Evaluator.Triggered(expr, w),
			Price:     last.Close,
			Time:      last.Time,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Triggered != results[j].Triggered {
			return results[i].Triggered
		}
		return results[i].Symbol < results[j].Symbol
	})

	report := &model.ScanReport{
		Trigger:   name,
		Formula:   formula,
		Results:   results,
		Total:     len(results),
		StartedAt: start,
	}
	for _, r := range results {
		if r.Triggered {
			report.Triggered++
		}
	}

	var batch *model.AlertBatch
	if s.Session.AlertsEnabled() && s.Coordinator != nil {
		b := s.Coordinator.ProcessCycle(results)
		if len(b.Symbols) > 0 {
			batch = &b
		}
	}

	report.Duration = time.Since(start)
	return report, batch
}
