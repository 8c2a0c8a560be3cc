package model

import "time"

// TriggerResult is the outcome of evaluating the active trigger for one symbol.
type TriggerResult struct {
	Symbol    string
	Triggered bool
	Price     float64 // most recent close, for display
	Time      time.Time
}

// ScanReport summarizes one full polling cycle for display.
type ScanReport struct {
	Trigger   string // active trigger name
	Formula   string
	Results   []TriggerResult // sorted triggered-first, then by symbol
	Triggered int
	Total     int
	StartedAt time.Time
	Duration  time.Duration
}

// AlertBatch records the symbols dispatched in one consolidated alert.
type AlertBatch struct {
	ID      string
	Trigger string
	Formula string
	Symbols []string // sorted
	SentAt  time.Time
}
