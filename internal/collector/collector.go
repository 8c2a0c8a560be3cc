package collector

import (
	"log"
	"time"

	"MarketScreener/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Bars map[string][]model.Candle
	Errs map[string]error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchCandles(symbol, _ string) ([]model.Candle, error) {
	if err, ok := m.Errs[symbol]; ok {
		return nil, err
	}
	return m.Bars[symbol], nil
}

// MockBars builds an ascending series of count bars from the given closes,
// with opens derived from the previous close.
func MockBars(closes ...float64) []model.Candle {
	bars := make([]model.Candle, len(closes))
	for i, c := range closes {
		open := c
		if i > 0 {
			open = closes[i-1]
		}
		bars[i] = model.Candle{
			Time:   time.Now().AddDate(0, 0, -(len(closes) - i)),
			Open:   open,
			High:   c * 1.005,
			Low:    c * 0.995,
			Close:  c,
			Volume: 1000000,
		}
	}
	return bars
}

// Collector fetches trailing candle windows for a symbol list.
type Collector struct {
	Fetcher    Fetcher
	Timeframe  string
	WindowSize int
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, timeframe string, windowSize int) *Collector {
	return &Collector{Fetcher: fetcher, Timeframe: timeframe, WindowSize: windowSize}
}

// CollectWindows fetches a trailing window per symbol. Symbols whose fetch
// fails or returns no bars are skipped for the cycle and logged; the cycle
// proceeds with whatever data arrived.
func (c *Collector) CollectWindows(symbols []string) map[string]model.Window {
	windows := make(map[string]model.Window, len(symbols))
	for _, sym := range symbols {
		bars, err := c.Fetcher.FetchCandles(sym, c.Timeframe)
		if err != nil {
			log.Printf("[WARN] fetch %s: %v, skipping for this cycle", sym, err)
			continue
		}
		if len(bars) == 0 {
			log.Printf("[WARN] fetch %s: no bars, skipping for this cycle", sym)
			continue
		}
		windows[sym] = model.Tail(bars, c.WindowSize)
	}
	return windows
}
