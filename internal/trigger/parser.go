package trigger

import (
	"fmt"
	"strconv"
	"strings"
)

// parser implements a recursive-descent front end over the token stream.
//
// Precedence, loosest to tightest, mirrors conventional boolean algebra:
//
//	or | and | not | comparison | + - | * / | unary - | primary
type parser struct {
	formula string
	toks    []token
	pos     int
}

func parse(formula string) (node, *ParseError) {
	toks, err := lex(formula)
	if err != nil {
		return nil, err
	}
	p := &parser{formula: formula, toks: toks}
	root, perr := p.parseOr()
	if perr != nil {
		return nil, perr
	}
	if p.peek().kind != tokEOF {
		return nil, p.errf(p.peek().pos, "unexpected %q", p.peek().text)
	}
	return root, nil
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) errf(pos int, format string, args ...interface{}) *ParseError {
	return &ParseError{Formula: p.formula, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) parseOr() (node, *ParseError) {
	return p.parseBoolChain("or", p.parseAnd)
}

func (p *parser) parseAnd() (node, *ParseError) {
	return p.parseBoolChain("and", p.parseNot)
}

// parseBoolChain collects `a op b op c` into a single left-to-right chain.
func (p *parser) parseBoolChain(op string, sub func() (node, *ParseError)) (node, *ParseError) {
	first, err := sub()
	if err != nil {
		return nil, err
	}
	terms := []node{first}
	for p.peek().kind == tokIdent && p.peek().text == op {
		p.next()
		n, err := sub()
		if err != nil {
			return nil, err
		}
		terms = append(terms, n)
	}
	if len(terms) == 1 {
		return first, nil
	}
	return &boolChainNode{op: op, terms: terms}, nil
}

func (p *parser) parseNot() (node, *ParseError) {
	if p.peek().kind == tokIdent && p.peek().text == "not" {
		p.next()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &unaryNode{op: "not", operand: operand}, nil
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() (node, *ParseError) {
	left, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	t := p.peek()
	if t.kind == tokOp && isCompareOp(t.text) {
		p.next()
		right, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		return &binaryNode{op: t.text, left: left, right: right}, nil
	}
	return left, nil
}

func isCompareOp(op string) bool {
	switch op {
	case ">", "<", ">=", "<=", "==", "!=":
		return true
	}
	return false
}

func (p *parser) parseSum() (node, *ParseError) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOp && (p.peek().text == "+" || p.peek().text == "-") {
		op := p.next().text
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseTerm() (node, *ParseError) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOp && (p.peek().text == "*" || p.peek().text == "/") {
		op := p.next().text
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (node, *ParseError) {
	if p.peek().kind == tokOp && p.peek().text == "-" {
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &unaryNode{op: "-", operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, *ParseError) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		v, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, p.errf(t.pos, "invalid number %q", t.text)
		}
		return &numberNode{val: v}, nil

	case tokLParen:
		inner, perr := p.parseOr()
		if perr != nil {
			return nil, perr
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, p.errf(closing.pos, "expected )")
		}
		return inner, nil

	case tokIdent:
		switch t.text {
		case "True":
			return &boolNode{val: true}, nil
		case "False":
			return &boolNode{val: false}, nil
		case "and", "or", "not":
			return nil, p.errf(t.pos, "unexpected keyword %q", t.text)
		}
		if p.peek().kind == tokLParen {
			return p.parseCall(t)
		}
		if !allowedFields[t.text] {
			return nil, p.errf(t.pos, "unknown identifier %q", t.text)
		}
		if p.peek().kind == tokLBracket {
			return p.parseOffset(t)
		}
		return &fieldNode{name: t.text, offset: 0}, nil

	default:
		return nil, p.errf(t.pos, "unexpected %q", t.text)
	}
}

// parseCall parses fn(arg, ...) for the fixed function allow-list.
func (p *parser) parseCall(fn token) (node, *ParseError) {
	if !allowedFuncs[fn.text] {
		return nil, p.errf(fn.pos, "function %q not allowed", fn.text)
	}
	p.next() // consume (
	var args []node
	if p.peek().kind != tokRParen {
		for {
			arg, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.peek().kind != tokComma {
				break
			}
			p.next()
		}
	}
	if closing := p.next(); closing.kind != tokRParen {
		return nil, p.errf(closing.pos, "expected )")
	}
	if fn.text == funcAbs && len(args) != 1 {
		return nil, p.errf(fn.pos, "abs takes exactly one argument")
	}
	if len(args) == 0 {
		return nil, p.errf(fn.pos, "%s requires at least one argument", fn.text)
	}
	return &callNode{fn: fn.text, args: args}, nil
}

// parseOffset parses Field[-k]. Only literal integer offsets are accepted.
func (p *parser) parseOffset(field token) (node, *ParseError) {
	p.next() // consume [
	neg := false
	if t := p.peek(); t.kind == tokOp && t.text == "-" {
		neg = true
		p.next()
	}
	numTok := p.next()
	if numTok.kind != tokNumber || strings.Contains(numTok.text, ".") {
		return nil, p.errf(numTok.pos, "offset must be an integer literal")
	}
	k, err := strconv.Atoi(numTok.text)
	if err != nil {
		return nil, p.errf(numTok.pos, "invalid offset %q", numTok.text)
	}
	if !neg && k != 0 {
		return nil, p.errf(numTok.pos, "offset must be zero or negative")
	}
	if closing := p.next(); closing.kind != tokRBracket {
		return nil, p.errf(closing.pos, "expected ]")
	}
	if neg {
		k = -k
	}
	return &fieldNode{name: field.text, offset: k}, nil
}
