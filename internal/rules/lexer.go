// internal/rules/lexer.go
package rules

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

/*
 * Tokenizer for the machine condition grammar.
 *
 * Produces identifiers (Age, Weight, at, units), decimal numbers with an
 * optional leading minus written directly before the digits,
 * comparison operators, && / ||, brackets and commas. Positions are byte
 * offsets into the original text so errors can point at the culprit.
 */

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokOp
	tokAnd
	tokOr
	tokLBrack
	tokRBrack
	tokComma
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of condition"
	case tokIdent:
		return "identifier"
	case tokNumber:
		return "number"
	case tokOp:
		return "operator"
	case tokAnd:
		return "&&"
	case tokOr:
		return "||"
	case tokLBrack:
		return "["
	case tokRBrack:
		return "]"
	case tokComma:
		return ","
	default:
		return "token"
	}
}

type token struct {
	kind tokenKind
	text string
	pos  int
}

// lexError is converted into a ConditionError by the parser.
type lexError struct {
	pos int
	msg string
}

func lex(src string) ([]token, *lexError) {
	var toks []token
	i := 0
	for i < len(src) {
		r, size := utf8.DecodeRuneInString(src[i:])
		switch {
		case unicode.IsSpace(r):
			i += size
		case isDigit(src[i]), r == '-' && i+1 < len(src) && isDigit(src[i+1]):
			start := i
			end, ok := scanNumber(src, i)
			if !ok {
				return nil, &lexError{pos: start, msg: "malformed number"}
			}
			i = end
			toks = append(toks, token{kind: tokNumber, text: src[start:i], pos: start})
		case unicode.IsLetter(r):
			start := i
			for i < len(src) {
				r, size = utf8.DecodeRuneInString(src[i:])
				if !unicode.IsLetter(r) {
					break
				}
				i += size
			}
			toks = append(toks, token{kind: tokIdent, text: src[start:i], pos: start})
		case r == '<' || r == '>' || r == '=':
			start := i
			i++
			if i < len(src) && src[i] == '=' {
				i++
			}
			toks = append(toks, token{kind: tokOp, text: src[start:i], pos: start})
		case r == '&' || r == '|':
			if i+1 >= len(src) || src[i+1] != src[i] {
				return nil, &lexError{pos: i, msg: fmt.Sprintf("expected %c%c", r, r)}
			}
			kind := tokAnd
			if r == '|' {
				kind = tokOr
			}
			toks = append(toks, token{kind: kind, text: src[i : i+2], pos: i})
			i += 2
		case r == '[':
			toks = append(toks, token{kind: tokLBrack, text: "[", pos: i})
			i++
		case r == ']':
			toks = append(toks, token{kind: tokRBrack, text: "]", pos: i})
			i++
		case r == ',':
			toks = append(toks, token{kind: tokComma, text: ",", pos: i})
			i++
		case r == '(' || r == ')':
			return nil, &lexError{pos: i, msg: "parentheses are not supported"}
		default:
			return nil, &lexError{pos: i, msg: fmt.Sprintf("unexpected character %q", r)}
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: len(src)})
	return toks, nil
}

// scanNumber reads [-]digits[.digits] starting at i and returns the end offset.
func scanNumber(src string, i int) (int, bool) {
	if src[i] == '-' {
		i++
	}
	for i < len(src) && isDigit(src[i]) {
		i++
	}
	if i < len(src) && src[i] == '.' {
		i++
		if i >= len(src) || !isDigit(src[i]) {
			return i, false
		}
		for i < len(src) && isDigit(src[i]) {
			i++
		}
	}
	return i, true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
