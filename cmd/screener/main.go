package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"MarketScreener/internal/alert"
	"MarketScreener/internal/collector"
	"MarketScreener/internal/config"
	"MarketScreener/internal/notifier"
	"MarketScreener/internal/scanner"
	"MarketScreener/internal/scheduler"
	"MarketScreener/internal/trigger"

	"github.com/joho/godotenv"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] MarketScreener starting...")

	// Load .env if present, then config
	_ = godotenv.Load()
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Load trigger library and ticker list
	library, err := config.LoadTriggers(cfg.Files.Triggers)
	if err != nil {
		log.Fatalf("[FATAL] load trigger library: %v", err)
	}
	symbols, err := config.LoadSymbols(cfg.Files.Tickers)
	if err != nil {
		log.Fatalf("[FATAL] load ticker list: %v", err)
	}
	log.Printf("[INFO] loaded %d triggers, %d symbols", len(library), len(symbols))

	// Init evaluator and session with the starting trigger
	ev := trigger.NewEvaluator(cfg.Scan.MinWindow)
	session := alert.NewSession()
	session.SetAlertsEnabled(cfg.Scan.AlertsEnabled)
	activateStartupTrigger(cfg, library, ev, session)

	// Init notification channels
	tn, err := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	if err != nil {
		log.Fatalf("[FATAL] init telegram notifier: %v", err)
	}
	channels := []alert.Channel{tn}
	if cfg.EmailEnabled() {
		en := notifier.NewEmailNotifier(cfg.Email.SMTPHost, cfg.Email.SMTPPort,
			cfg.Email.Username, cfg.Email.Password, cfg.Email.Recipients, cfg.Email.Subject)
		channels = append(channels, en)
		log.Printf("[INFO] email channel enabled (%d recipients)", len(cfg.Email.Recipients))
	}
	coord := alert.NewCoordinator(session, channels...)

	// Init collector and scanner
	fetcher := collector.NewYahooFetcher(cfg.Proxy)
	log.Printf("[INFO] data source: %s, timeframe: %s", fetcher.Name(), cfg.Scan.Timeframe)
	col := collector.NewCollector(fetcher, cfg.Scan.Timeframe, cfg.Scan.WindowSize)
	sc := scanner.NewScanner(col, ev, coord, session, symbols)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, sc, session, ev, library)
	if err := sched.RegisterScan(cfg.Scan.Cron); err != nil {
		log.Fatalf("[FATAL] register scan task: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram command polling
	go tn.ListenForCommands(ctx, sched.HandleCommand)
	log.Println("[INFO] telegram polling started")

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing scan now")
		go sched.RunScanNow()
	}

	log.Println("[INFO] MarketScreener is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] MarketScreener stopped")
}

// activateStartupTrigger activates the configured default trigger, falling
// back to the first library entry by name. A formula that fails to compile
// is surfaced loudly but does not abort startup: scans simply report zero
// triggers until a valid trigger is activated.
func activateStartupTrigger(cfg *config.Config, library map[string]string, ev *trigger.Evaluator, session *alert.Session) {
	name := cfg.Scan.DefaultTrigger
	if name == "" {
		name = config.TriggerNames(library)[0]
	}
	formula, ok := library[name]
	if !ok {
		log.Fatalf("[FATAL] default trigger %q not found in %s", name, cfg.Files.Triggers)
	}
	expr, err := ev.Compile(formula)
	if err != nil {
		log.Printf("[WARN] trigger %q failed to compile: %v", name, err)
		session.SetTrigger(name, formula, nil)
		return
	}
	session.SetTrigger(name, formula, expr)
	log.Printf("[INFO] active trigger: %s (%s)", name, formula)
}
