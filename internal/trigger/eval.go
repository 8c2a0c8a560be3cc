// Package trigger compiles user-authored trigger formulas into a restricted
// expression tree and evaluates them against candle windows. The grammar
// covers boolean/comparison/arithmetic operators, the five candle fields
// (optionally with a literal historical offset, e.g. Close[-1]), and the
// abs/max/min functions; everything else is rejected at compile time, so a
// formula can never execute arbitrary behavior.
package trigger

import (
	"math"
	"sync"

	"MarketScreener/internal/model"
)

// value is the runtime type flowing through evaluation: a number or a bool.
type value struct {
	num    float64
	b      bool
	isBool bool
}

func numVal(f float64) value { return value{num: f} }
func boolVal(b bool) value   { return value{b: b, isBool: true} }

func (v value) asNum() (float64, *EvalError) {
	if v.isBool {
		return 0, evalErrf(ErrTypeMismatch, "expected a number, got a boolean")
	}
	return v.num, nil
}

func (v value) asBool() (bool, *EvalError) {
	if !v.isBool {
		return false, evalErrf(ErrTypeMismatch, "expected a boolean, got a number")
	}
	return v.b, nil
}

// Evaluator compiles and evaluates trigger formulas. Compilation is memoized
// by formula text; a compiled Expression is immutable and shared freely.
type Evaluator struct {
	minWindow int

	mu    sync.Mutex
	cache map[string]*Expression
}

// NewEvaluator creates an Evaluator. Windows shorter than minWindow evaluate
// to not-triggered without being inspected.
func NewEvaluator(minWindow int) *Evaluator {
	if minWindow < 1 {
		minWindow = 1
	}
	return &Evaluator{
		minWindow: minWindow,
		cache:     make(map[string]*Expression),
	}
}

// Compile parses a formula into an immutable Expression. It returns a
// *ParseError for any construct outside the restricted grammar.
func (e *Evaluator) Compile(formula string) (*Expression, error) {
	e.mu.Lock()
	if expr, ok := e.cache[formula]; ok {
		e.mu.Unlock()
		return expr, nil
	}
	e.mu.Unlock()

	root, perr := parse(formula)
	if perr != nil {
		return nil, perr
	}
	expr := &Expression{Source: formula, root: root}

	e.mu.Lock()
	e.cache[formula] = expr
	e.mu.Unlock()
	return expr, nil
}

// Evaluate runs a compiled expression against a window and reports whether
// the condition holds. A window shorter than the evaluator's minimum yields
// (false, nil): trigger conditions are vacuously false on thin history.
// Runtime failures (unknown field, out-of-range offset, division by zero,
// type or arity mismatch) are returned as *EvalError.
func (e *Evaluator) Evaluate(expr *Expression, w model.Window) (bool, error) {
	if w.Len() < e.minWindow {
		return false, nil
	}
	v, err := eval(expr.root, w)
	if err != nil {
		return false, err
	}
	if v.isBool {
		return v.b, nil
	}
	// A bare numeric result is truthy: non-zero means triggered.
	return v.num != 0, nil
}

// Triggered is the fail-closed boundary: any compile-surviving anomaly during
// evaluation maps to "condition not met" instead of an error.
func (e *Evaluator) Triggered(expr *Expression, w model.Window) bool {
	if expr == nil {
		return false
	}
	ok, err := e.Evaluate(expr, w)
	if err != nil {
		return false
	}
	return ok
}

func eval(n node, w model.Window) (value, *EvalError) {
	switch n := n.(type) {
	case *numberNode:
		return numVal(n.val), nil

	case *boolNode:
		return boolVal(n.val), nil

	case *fieldNode:
		return evalField(n, w)

	case *unaryNode:
		v, err := eval(n.operand, w)
		if err != nil {
			return value{}, err
		}
		if n.op == "not" {
			b, err := v.asBool()
			if err != nil {
				return value{}, err
			}
			return boolVal(!b), nil
		}
		f, err := v.asNum()
		if err != nil {
			return value{}, err
		}
		return numVal(-f), nil

	case *binaryNode:
		return evalBinary(n, w)

	case *boolChainNode:
		return evalBoolChain(n, w)

	case *callNode:
		return evalCall(n, w)

	default:
		// Unreachable: the parser emits only the node kinds above.
		return value{}, evalErrf(ErrTypeMismatch, "unsupported expression node")
	}
}

func evalField(n *fieldNode, w model.Window) (value, *EvalError) {
	c, ok := w.At(n.offset)
	if !ok {
		return value{}, evalErrf(ErrOffsetOutOfRange, "%s[%d] outside window of %d candles", n.name, n.offset, w.Len())
	}
	switch n.name {
	case "Open":
		return numVal(c.Open), nil
	case "High":
		return numVal(c.High), nil
	case "Low":
		return numVal(c.Low), nil
	case "Close":
		return numVal(c.Close), nil
	case "Volume":
		return numVal(c.Volume), nil
	default:
		// The parser rejects unknown identifiers; kept as a second fence.
		return value{}, evalErrf(ErrUnknownField, "%q", n.name)
	}
}

func evalBinary(n *binaryNode, w model.Window) (value, *EvalError) {
	lv, err := eval(n.left, w)
	if err != nil {
		return value{}, err
	}
	rv, err := eval(n.right, w)
	if err != nil {
		return value{}, err
	}

	// == and != also compare booleans; every other operator is numeric.
	if (n.op == "==" || n.op == "!=") && lv.isBool && rv.isBool {
		if n.op == "==" {
			return boolVal(lv.b == rv.b), nil
		}
		return boolVal(lv.b != rv.b), nil
	}

	l, err := lv.asNum()
	if err != nil {
		return value{}, err
	}
	r, err := rv.asNum()
	if err != nil {
		return value{}, err
	}

	switch n.op {
	case "+":
		return numVal(l + r), nil
	case "-":
		return numVal(l - r), nil
	case "*":
		return numVal(l * r), nil
	case "/":
		if r == 0 {
			return value{}, evalErrf(ErrDivisionByZero, "%v / 0", l)
		}
		return numVal(l / r), nil
	case ">":
		return boolVal(l > r), nil
	case "<":
		return boolVal(l < r), nil
	case ">=":
		return boolVal(l >= r), nil
	case "<=":
		return boolVal(l <= r), nil
	case "==":
		return boolVal(l == r), nil
	case "!=":
		return boolVal(l != r), nil
	default:
		return value{}, evalErrf(ErrTypeMismatch, "unknown operator %q", n.op)
	}
}

// evalBoolChain folds a and/or chain left to right, short-circuiting as soon
// as the outcome is decided. Field lookups are side-effect free, so this is
// observably identical to evaluating every term.
func evalBoolChain(n *boolChainNode, w model.Window) (value, *EvalError) {
	for _, term := range n.terms {
		v, err := eval(term, w)
		if err != nil {
			return value{}, err
		}
		b, berr := v.asBool()
		if berr != nil {
			return value{}, berr
		}
		if n.op == "and" && !b {
			return boolVal(false), nil
		}
		if n.op == "or" && b {
			return boolVal(true), nil
		}
	}
	return boolVal(n.op == "and"), nil
}

func evalCall(n *callNode, w model.Window) (value, *EvalError) {
	args := make([]float64, 0, len(n.args))
	for _, a := range n.args {
		v, err := eval(a, w)
		if err != nil {
			return value{}, err
		}
		f, nerr := v.asNum()
		if nerr != nil {
			return value{}, nerr
		}
		args = append(args, f)
	}

	switch n.fn {
	case funcAbs:
		if len(args) != 1 {
			return value{}, evalErrf(ErrBadArity, "abs takes exactly one argument, got %d", len(args))
		}
		return numVal(math.Abs(args[0])), nil
	case funcMax, funcMin:
		if len(args) == 0 {
			return value{}, evalErrf(ErrBadArity, "%s requires at least one argument", n.fn)
		}
		out := args[0]
		for _, a := range args[1:] {
			if n.fn == funcMax {
				out = math.Max(out, a)
			} else {
				out = math.Min(out, a)
			}
		}
		return numVal(out), nil
	default:
		return value{}, evalErrf(ErrBadArity, "function %q not allowed", n.fn)
	}
}
