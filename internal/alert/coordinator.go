// Package alert decides which symbols are newly alert-worthy after a scan
// cycle and dispatches one consolidated notification through the configured
// channels.
package alert

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"MarketScreener/internal/model"

	"github.com/google/uuid"
)

// Channel delivers a notification text to one external destination.
// Implementations own their wire protocol and any retry policy.
type Channel interface {
	Name() string
	Notify(text string) error
}

// Coordinator converts a cycle's trigger results into at most one dispatched
// alert, deduplicating against the session's notified set.
//
// Dedup is per triggering event: once a symbol has been announced it stays
// suppressed for as long as its condition keeps holding, and becomes eligible
// again only after a cycle in which the condition cleared.
type Coordinator struct {
	session  *Session
	channels []Channel
}

// NewCoordinator creates a Coordinator dispatching through the given channels.
func NewCoordinator(session *Session, channels ...Channel) *Coordinator {
	return &Coordinator{session: session, channels: channels}
}

// ProcessCycle takes the full per-symbol results of one scan cycle, dispatches
// a consolidated alert for symbols that newly triggered, and updates the
// session's notified state. The returned batch lists what was dispatched;
// its Symbols slice is empty when nothing was alert-worthy.
//
// A channel failure is logged and never aborts the cycle or the remaining
// channels.
func (c *Coordinator) ProcessCycle(results []model.TriggerResult) model.AlertBatch {
	name, formula, _ := c.session.ActiveTrigger()
	batch := model.AlertBatch{Trigger: name, Formula: formula}

	var newly []string
	for _, r := range results {
		if r.Triggered {
			if !c.session.isNotified(r.Symbol) {
				newly = append(newly, r.Symbol)
			}
		} else {
			// Condition cleared: the symbol's next trigger is a new event.
			c.session.clearNotified(r.Symbol)
		}
	}
	if len(newly) == 0 {
		return batch
	}
	sort.Strings(newly)

	batch.ID = uuid.NewString()
	batch.Symbols = newly
	batch.SentAt = time.Now()

	text := FormatMessage(formula, newly)
	for _, ch := range c.channels {
		if err := ch.Notify(text); err != nil {
			log.Printf("[ERROR] notify via %s: %v", ch.Name(), err)
		} else {
			log.Printf("[INFO] alert %s dispatched via %s (%d symbols)", batch.ID, ch.Name(), len(newly))
		}
	}

	c.session.markNotified(newly)
	return batch
}

// FormatMessage builds the consolidated alert text: the condition followed by
// the comma-joined list of newly triggered symbols.
func FormatMessage(formula string, symbols []string) string {
	return fmt.Sprintf("%s\nTriggered: %s", formula, strings.Join(symbols, ", "))
}
