package trigger

// The expression tree is a closed set of node kinds. Evaluation walks this
// tree and nothing else, so the set below is the entire sandbox surface:
// no member access, no assignment, no loops, no arbitrary calls.

// Fields resolvable in a formula, matching candle column names.
var allowedFields = map[string]bool{
	"Open":   true,
	"High":   true,
	"Low":    true,
	"Close":  true,
	"Volume": true,
}

// Functions callable from a formula.
const (
	funcAbs = "abs"
	funcMax = "max"
	funcMin = "min"
)

var allowedFuncs = map[string]bool{
	funcAbs: true,
	funcMax: true,
	funcMin: true,
}

type node interface {
	exprNode()
}

// numberNode is a numeric literal.
type numberNode struct {
	val float64
}

// boolNode is a boolean literal (True / False).
type boolNode struct {
	val bool
}

// fieldNode references a candle field at a historical offset.
// An offset of 0 is the most recent candle, -1 the one before it.
type fieldNode struct {
	name   string
	offset int
}

// unaryNode is arithmetic negation or logical not.
type unaryNode struct {
	op      string // "-" or "not"
	operand node
}

// binaryNode is an arithmetic or comparison operation.
type binaryNode struct {
	op    string // + - * / > < >= <= == !=
	left  node
	right node
}

// boolChainNode is a left-to-right and/or chain: a and b and c.
type boolChainNode struct {
	op    string // "and" or "or"
	terms []node
}

// callNode invokes an allow-listed function on evaluated numeric arguments.
type callNode struct {
	fn   string
	args []node
}

func (*numberNode) exprNode()    {}
func (*boolNode) exprNode()      {}
func (*fieldNode) exprNode()     {}
func (*unaryNode) exprNode()     {}
func (*binaryNode) exprNode()    {}
func (*boolChainNode) exprNode() {}
func (*callNode) exprNode()      {}

// Expression is an immutable compiled trigger formula, safe for repeated
// evaluation across windows and symbols.
type Expression struct {
	Source string
	root   node
}
