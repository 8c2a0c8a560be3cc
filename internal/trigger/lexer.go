package trigger

import (
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent // field names, function names, and/or/not/True/False keywords
	tokOp    // + - * / > < >= <= == !=
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokComma
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// lex splits a formula into tokens. Any character outside the restricted
// grammar (quotes, dots, semicolons, ...) is rejected here, before parsing.
func lex(formula string) ([]token, *ParseError) {
	var toks []token
	i := 0
	for i < len(formula) {
		c := formula[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c >= '0' && c <= '9':
			start := i
			for i < len(formula) && (formula[i] >= '0' && formula[i] <= '9') {
				i++
			}
			if i < len(formula) && formula[i] == '.' {
				i++
				for i < len(formula) && (formula[i] >= '0' && formula[i] <= '9') {
					i++
				}
			}
			toks = append(toks, token{tokNumber, formula[start:i], start})
		case c == '_' || unicode.IsLetter(rune(c)):
			start := i
			for i < len(formula) && (formula[i] == '_' ||
				unicode.IsLetter(rune(formula[i])) || unicode.IsDigit(rune(formula[i]))) {
				i++
			}
			toks = append(toks, token{tokIdent, formula[start:i], start})
		case c == '(':
			toks = append(toks, token{tokLParen, "(", i})
			i++
		case c == ')':
			toks = append(toks, token{tokRParen, ")", i})
			i++
		case c == '[':
			toks = append(toks, token{tokLBracket, "[", i})
			i++
		case c == ']':
			toks = append(toks, token{tokRBracket, "]", i})
			i++
		case c == ',':
			toks = append(toks, token{tokComma, ",", i})
			i++
		case strings.ContainsRune("+-*/", rune(c)):
			toks = append(toks, token{tokOp, string(c), i})
			i++
		case c == '>' || c == '<':
			op := string(c)
			i++
			if i < len(formula) && formula[i] == '=' {
				op += "="
				i++
			}
			toks = append(toks, token{tokOp, op, i - len(op)})
		case c == '=' || c == '!':
			if i+1 < len(formula) && formula[i+1] == '=' {
				toks = append(toks, token{tokOp, formula[i : i+2], i})
				i += 2
			} else {
				return nil, &ParseError{Formula: formula, Pos: i, Msg: "unexpected character " + string(c)}
			}
		default:
			return nil, &ParseError{Formula: formula, Pos: i, Msg: "unexpected character " + string(c)}
		}
	}
	toks = append(toks, token{tokEOF, "", len(formula)})
	return toks, nil
}
