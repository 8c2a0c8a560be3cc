package model

import "time"

// Candle represents a single candlestick bar.
type Candle struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Window is a chronologically ascending trailing slice of one symbol's candles.
// Consumers only read it; evaluation never mutates the underlying bars.
type Window []Candle

// Tail returns the last n bars of the series as a Window.
// If the series is shorter than n, the whole series is returned.
func Tail(bars []Candle, n int) Window {
	if len(bars) <= n {
		return Window(bars)
	}
	return Window(bars[len(bars)-n:])
}

// Len returns the number of candles in the window.
func (w Window) Len() int { return len(w) }

// At returns the candle `offset` positions back from the most recent one.
// An offset of 0 is the most recent candle, -1 the one before it.
// The second return value is false when the offset falls outside the window.
func (w Window) At(offset int) (Candle, bool) {
	if offset > 0 {
		return Candle{}, false
	}
	idx := len(w) - 1 + offset
	if idx < 0 || idx >= len(w) {
		return Candle{}, false
	}
	return w[idx], true
}

// Last returns the most recent candle in the window.
func (w Window) Last() (Candle, bool) {
	return w.At(0)
}
