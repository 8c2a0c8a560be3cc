package trigger

import (
	"errors"
	"testing"
)

func TestCompile_ValidFormulas(t *testing.T) {
	ev := NewEvaluator(3)
	formulas := []string{
		"Close > Open",
		"Close > Close[-1]",
		"Close[-4] > Close",
		"Close >= Open and Volume > 1000",
		"Close > Open or Close < Low[-1]",
		"not (Close > Open)",
		"(High - Low) / Close > 0.02",
		"abs(Close - Open) > 1.5",
		"max(High, High[-1], High[-2]) < Close * 1.1",
		"min(Low[-1], Low[-2]) <= Low",
		"-Close < 0",
		"Close != Open",
		"True",
		"True and Close > Open",
		"Close[0] == Close",
		"1.5 * Volume[-1] < Volume",
	}
	for _, f := range formulas {
		if _, err := ev.Compile(f); err != nil {
			t.Errorf("Compile(%q) failed: %v", f, err)
		}
	}
}

func TestCompile_RejectsUnsafeConstructs(t *testing.T) {
	ev := NewEvaluator(3)
	formulas := []string{
		"__import__('os')",      // arbitrary call
		"eval(Close)",           // disallowed function
		"Close.foo",             // member access
		"Close = 1",             // assignment
		"exec(Volume)",          // disallowed function
		"'hello' > Close",       // string literal
		`"x" == "x"`,            // string literal
		"Foo > 1",               // unknown identifier
		"open > 1",              // field names are case-sensitive
		"Close[-1.5] > 0",       // non-integer offset
		"Close[Volume] > 0",     // computed offset
		"Close[-1 + 1] > 0",     // computed offset
		"Close[1] > 0",          // positive offset
		"Close >",               // truncated
		"abs(Close, Open) > 0",  // abs arity
		"max() > 0",             // empty arg list
		"Close > Open; exec(1)", // statement separator
		"lambda: Close",         // host-language construct
		"import os",             // import
		"",                      // empty formula
	}
	for _, f := range formulas {
		_, err := ev.Compile(f)
		if err == nil {
			t.Errorf("Compile(%q) should have failed", f)
			continue
		}
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Errorf("Compile(%q): expected *ParseError, got %T", f, err)
		}
	}
}

func TestCompile_MemoizesByFormula(t *testing.T) {
	ev := NewEvaluator(3)
	a, err := ev.Compile("Close > Open")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	b, err := ev.Compile("Close > Open")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if a != b {
		t.Error("expected the same Expression instance for the same formula text")
	}
}

func TestParseError_ReportsPosition(t *testing.T) {
	ev := NewEvaluator(3)
	_, err := ev.Compile("Close > Bogus")
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if perr.Pos != 8 {
		t.Errorf("expected error position 8, got %d", perr.Pos)
	}
}
