package alert

import (
	"sync"

	"MarketScreener/internal/trigger"
)

// Session holds the mutable state of a running screener: the active trigger,
// the alerts gate, and the set of symbols already notified for their current
// triggering event. It is owned by the long-lived process driving scan
// cycles; the cycles themselves are serialized by the scheduler, the mutex
// guards concurrent command-handler access.
type Session struct {
	mu sync.Mutex

	triggerName   string
	formula       string
	expr          *trigger.Expression // nil when the active formula failed to compile
	alertsEnabled bool

	notified map[string]struct{}
}

// NewSession creates a Session with no active trigger and an empty
// notified set.
func NewSession() *Session {
	return &Session{notified: make(map[string]struct{})}
}

// SetTrigger activates a trigger. expr may be nil when compilation failed;
// scans then report zero triggers until a valid formula is activated.
// Switching triggers resets the notified set, so every symbol is eligible to
// alert against the new condition.
func (s *Session) SetTrigger(name, formula string, expr *trigger.Expression) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.triggerName = name
	s.formula = formula
	s.expr = expr
	s.notified = make(map[string]struct{})
}

// ActiveTrigger returns the active trigger's name, formula text, and
// compiled expression.
func (s *Session) ActiveTrigger() (name, formula string, expr *trigger.Expression) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.triggerName, s.formula, s.expr
}

// SetAlertsEnabled flips the alert dispatch gate.
func (s *Session) SetAlertsEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alertsEnabled = enabled
}

// AlertsEnabled reports whether alert dispatch is active.
func (s *Session) AlertsEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alertsEnabled
}

// NotifiedCount returns the number of symbols currently suppressed.
func (s *Session) NotifiedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.notified)
}

func (s *Session) isNotified(symbol string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.notified[symbol]
	return ok
}

func (s *Session) markNotified(symbols []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sym := range symbols {
		s.notified[sym] = struct{}{}
	}
}

func (s *Session) clearNotified(symbol string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.notified, symbol)
}
