package trigger

import (
	"errors"
	"testing"
	"time"

	"MarketScreener/internal/model"
)

// ascendingWindow builds a window whose closes are the given values, with
// opens one below the close and highs/lows bracketing both.
func ascendingWindow(closes ...float64) model.Window {
	w := make(model.Window, len(closes))
	for i, c := range closes {
		w[i] = model.Candle{
			Time:   time.Date(2026, 1, 1+i, 0, 0, 0, 0, time.UTC),
			Open:   c - 1,
			High:   c + 2,
			Low:    c - 2,
			Close:  c,
			Volume: 1000 * float64(i+1),
		}
	}
	return w
}

func mustCompile(t *testing.T, ev *Evaluator, formula string) *Expression {
	t.Helper()
	expr, err := ev.Compile(formula)
	if err != nil {
		t.Fatalf("compile %q: %v", formula, err)
	}
	return expr
}

func TestEvaluate_OffsetSemantics(t *testing.T) {
	ev := NewEvaluator(3)
	w := ascendingWindow(10, 11, 12, 13, 14)

	tests := []struct {
		formula string
		want    bool
	}{
		{"Close > Close[-1]", true},  // 14 > 13
		{"Close[-4] > Close", false}, // 10 > 14
		{"Close[-4] == 10", true},
		{"Close[0] == Close", true},
		{"Close == 14", true},
		{"Volume > Volume[-1]", true},
		{"High[-2] < High", true},
	}
	for _, tt := range tests {
		expr := mustCompile(t, ev, tt.formula)
		got, err := ev.Evaluate(expr, w)
		if err != nil {
			t.Errorf("Evaluate(%q): %v", tt.formula, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Evaluate(%q) = %v, want %v", tt.formula, got, tt.want)
		}
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	ev := NewEvaluator(3)
	w := ascendingWindow(10, 11, 12, 13, 14)
	expr := mustCompile(t, ev, "(Close - Open) / Close > 0.01 and Volume > Volume[-1]")

	first, err := ev.Evaluate(expr, w)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	for i := 0; i < 50; i++ {
		got, err := ev.Evaluate(expr, w)
		if err != nil || got != first {
			t.Fatalf("call %d: got (%v, %v), want (%v, nil)", i, got, err, first)
		}
	}
}

func TestEvaluate_ArithmeticAndFunctions(t *testing.T) {
	ev := NewEvaluator(3)
	w := ascendingWindow(10, 11, 12, 13, 14)

	tests := []struct {
		formula string
		want    bool
	}{
		{"abs(Open - Close) == 1", true}, // open = close - 1
		{"max(Close, Close[-1], Close[-2]) == Close", true},
		{"min(Close[-3], Close[-4]) == 10", true},
		{"Close - Close[-1] == 1", true},
		{"Close * 2 > Close[-1] + Close[-2]", true},
		{"(Close + Open) / 2 < Close", true},
		{"-(Close - Open) == -1", true},
		{"2 + 3 * 4 == 14", true}, // precedence
		{"(2 + 3) * 4 == 20", true},
		{"not Close < Open", true},
		{"Close > Open and Close > Close[-1] and Close > Close[-2]", true},
		{"Close < Open or Close > Close[-1]", true},
		{"Close < Open or Close < Close[-1]", false},
	}
	for _, tt := range tests {
		expr := mustCompile(t, ev, tt.formula)
		got, err := ev.Evaluate(expr, w)
		if err != nil {
			t.Errorf("Evaluate(%q): %v", tt.formula, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Evaluate(%q) = %v, want %v", tt.formula, got, tt.want)
		}
	}
}

func TestEvaluate_ErrorKinds(t *testing.T) {
	ev := NewEvaluator(3)
	w := ascendingWindow(10, 11, 12, 13, 14)

	tests := []struct {
		formula string
		kind    EvalErrorKind
	}{
		{"Close[-99] > 0", ErrOffsetOutOfRange},
		{"Close / (Close - Close) > 1", ErrDivisionByZero},
		{"Close / 0 > 1", ErrDivisionByZero},
		{"(Close > Open) + 1 > 0", ErrTypeMismatch},
		{"Close and Open", ErrTypeMismatch},
		{"not Close", ErrTypeMismatch},
		{"abs(Close > Open) > 0", ErrTypeMismatch},
		{"-(Close > Open) == 0", ErrTypeMismatch},
	}
	for _, tt := range tests {
		expr := mustCompile(t, ev, tt.formula)
		_, err := ev.Evaluate(expr, w)
		var eerr *EvalError
		if !errors.As(err, &eerr) {
			t.Errorf("Evaluate(%q): expected *EvalError, got %v", tt.formula, err)
			continue
		}
		if eerr.Kind != tt.kind {
			t.Errorf("Evaluate(%q): kind = %v, want %v", tt.formula, eerr.Kind, tt.kind)
		}
	}
}

func TestTriggered_FailsClosed(t *testing.T) {
	ev := NewEvaluator(3)
	w := ascendingWindow(10, 11, 12, 13, 14)

	// Runtime anomalies map to false, never to a panic or error.
	for _, formula := range []string{
		"Close[-99] > 0",
		"Close / 0 > 1",
		"Close and Open",
	} {
		if ev.Triggered(mustCompile(t, ev, formula), w) {
			t.Errorf("Triggered(%q) = true, want fail-closed false", formula)
		}
	}

	// A nil expression (formula that never compiled) is also just "not met".
	if ev.Triggered(nil, w) {
		t.Error("Triggered(nil) = true, want false")
	}
}

func TestEvaluate_ShortWindow(t *testing.T) {
	ev := NewEvaluator(3)
	expr := mustCompile(t, ev, "Close > 0")

	got, err := ev.Evaluate(expr, ascendingWindow(10))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if got {
		t.Error("window of 1 against minimum 3 should be vacuously false")
	}

	got, err = ev.Evaluate(expr, ascendingWindow(10, 11, 12))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !got {
		t.Error("window meeting the minimum should evaluate normally")
	}
}

func TestEvaluate_NumericResultIsTruthy(t *testing.T) {
	ev := NewEvaluator(3)
	w := ascendingWindow(10, 11, 12, 13, 14)

	if got, _ := ev.Evaluate(mustCompile(t, ev, "Close - Open"), w); !got {
		t.Error("non-zero numeric result should read as triggered")
	}
	if got, _ := ev.Evaluate(mustCompile(t, ev, "Close - Close"), w); got {
		t.Error("zero numeric result should read as not triggered")
	}
}

func TestEvaluate_DoesNotMutateWindow(t *testing.T) {
	ev := NewEvaluator(3)
	w := ascendingWindow(10, 11, 12, 13, 14)
	before := make(model.Window, len(w))
	copy(before, w)

	expr := mustCompile(t, ev, "max(High, High[-1]) - min(Low, Low[-1]) > 0")
	if _, err := ev.Evaluate(expr, w); err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	for i := range w {
		if w[i] != before[i] {
			t.Fatalf("window candle %d mutated by evaluation", i)
		}
	}
}
