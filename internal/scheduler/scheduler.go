package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"MarketScreener/internal/alert"
	"MarketScreener/internal/config"
	"MarketScreener/internal/notifier"
	"MarketScreener/internal/scanner"
	"MarketScreener/internal/trigger"

	"github.com/robfig/cron/v3"
)

// Scheduler runs scan cycles on a cron and handles operator commands.
// The mutex serializes cycles: a command-initiated scan never overlaps a
// cron-initiated one, so the alert session sees at most one cycle at a time.
type Scheduler struct {
	Cron      *cron.Cron
	Scanner   *scanner.Scanner
	Session   *alert.Session
	Evaluator *trigger.Evaluator
	Library   map[string]string
	Ctx       context.Context

	mu sync.Mutex
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, sc *scanner.Scanner, session *alert.Session, ev *trigger.Evaluator, library map[string]string) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Scanner:   sc,
		Session:   session,
		Evaluator: ev,
		Library:   library,
		Ctx:       ctx,
	}
}

// RegisterScan registers the periodic scan task.
func (s *Scheduler) RegisterScan(cronSpec string) error {
	if _, err := s.Cron.AddFunc(cronSpec, s.scanTask); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunScanNow executes a scan cycle immediately (manual trigger / RUN_ON_START).
func (s *Scheduler) RunScanNow() {
	s.scanTask()
}

func (s *Scheduler) scanTask() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Ctx.Err() != nil {
		return
	}
	log.Println("[INFO] running scan cycle")
	report, batch := s.Scanner.Scan()
	log.Printf("[INFO] scan done: %s", notifier.FormatScanSummary(report))
	if batch != nil {
		log.Printf("[INFO] alert batch %s: %s", batch.ID, strings.Join(batch.Symbols, ", "))
	}
}

// HandleCommand processes an operator command and returns the reply text.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(strings.TrimSpace(command))
	if len(fields) == 0 {
		return ""
	}

	switch fields[0] {
	case "/scan":
		s.mu.Lock()
		report, _ := s.Scanner.Scan()
		s.mu.Unlock()
		return notifier.FormatScanReport(report)

	case "/alerts":
		if len(fields) < 2 {
			return "usage: /alerts on|off"
		}
		switch fields[1] {
		case "on":
			s.Session.SetAlertsEnabled(true)
			return "alerts enabled"
		case "off":
			s.Session.SetAlertsEnabled(false)
			return "alerts disabled"
		default:
			return "usage: /alerts on|off"
		}

	case "/triggers":
		var b strings.Builder
		b.WriteString("available triggers:\n")
		for _, tname := range config.TriggerNames(s.Library) {
			b.WriteString(fmt.Sprintf("  %s: %s\n", tname, s.Library[tname]))
		}
		return b.String()

	case "/trigger":
		if len(fields) < 2 {
			return "usage: /trigger <name>"
		}
		return s.activateTrigger(strings.Join(fields[1:], " "))

	case "/status":
		tname, formula, expr := s.Session.ActiveTrigger()
		state := "off"
		if s.Session.AlertsEnabled() {
			state = "on"
		}
		formulaState := "ok"
		if expr == nil {
			formulaState = "invalid, scans report zero triggers"
		}
		return fmt.Sprintf("trigger: %s\ncondition: %s (%s)\nalerts: %s\nsymbols: %d\nsuppressed: %d",
			tname, formula, formulaState, state, len(s.Scanner.Symbols), s.Session.NotifiedCount())

	default:
		return "commands:\n" +
			"  /scan - run a scan now\n" +
			"  /alerts on|off - toggle alert dispatch\n" +
			"  /triggers - list the trigger library\n" +
			"  /trigger <name> - activate a trigger\n" +
			"  /status - show screener state"
	}
}

// activateTrigger switches the active trigger, surfacing compile errors to
// the operator instead of silently producing a never-firing condition.
func (s *Scheduler) activateTrigger(name string) string {
	formula, ok := s.Library[name]
	if !ok {
		return fmt.Sprintf("unknown trigger %q, see /triggers", name)
	}
	expr, err := s.Evaluator.Compile(formula)
	if err != nil {
		s.Session.SetTrigger(name, formula, nil)
		log.Printf("[WARN] trigger %q failed to compile: %v", name, err)
		return fmt.Sprintf("trigger %q activated, but its formula is invalid: %v\nscans will report zero triggers until it is fixed", name, err)
	}
	s.Session.SetTrigger(name, formula, expr)
	return fmt.Sprintf("trigger %q activated: %s", name, formula)
}
