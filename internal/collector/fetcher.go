package collector

import "MarketScreener/internal/model"

// Fetcher defines the interface for fetching candle data.
type Fetcher interface {
	// FetchCandles returns ascending-time bars for a symbol on the given
	// timeframe ("15m" or "1d"). The returned series may be longer than the
	// desired window; callers trim it.
	FetchCandles(symbol, timeframe string) ([]model.Candle, error)
	Name() string
}
