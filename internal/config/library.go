package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// LoadTriggers reads the trigger library: a JSON object mapping trigger names
// to formula texts.
func LoadTriggers(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read triggers: %w", err)
	}
	triggers := make(map[string]string)
	if err := json.Unmarshal(data, &triggers); err != nil {
		return nil, fmt.Errorf("parse triggers: %w", err)
	}
	if len(triggers) == 0 {
		return nil, fmt.Errorf("trigger library %s is empty", path)
	}
	return triggers, nil
}

// TriggerNames returns the library's trigger names in sorted order.
func TriggerNames(triggers map[string]string) []string {
	names := make([]string, 0, len(triggers))
	for name := range triggers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadSymbols reads a ticker list file: symbols separated by commas and/or
// newlines, upper-cased, blanks skipped.
func LoadSymbols(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tickers: %w", err)
	}
	content := strings.ReplaceAll(string(data), "\n", ",")
	var symbols []string
	for _, t := range strings.Split(content, ",") {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t != "" {
			symbols = append(symbols, t)
		}
	}
	if len(symbols) == 0 {
		return nil, fmt.Errorf("ticker list %s is empty", path)
	}
	return symbols, nil
}
