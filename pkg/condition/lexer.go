package condition

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokString
	tokNumber
	tokBool
	tokNull
	tokEq
	tokNeq
	tokLt
	tokLte
	tokGt
	tokGte
	tokAnd
	tokOr
	tokNot
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isDelimiter(ch byte) bool {
	switch ch {
	case '(', ')', '!', '=', '&', '|', '<', '>', '"', '\'':
		return true
	}
	return isSpace(ch)
}

// lex splits src into tokens. Positions are byte offsets used in error
// messages.
func lex(src string) ([]token, error) {
	var out []token
	for i := 0; i < len(src); {
		ch := src[i]
		if isSpace(ch) {
			i++
			continue
		}

		two := ""
		if i+1 < len(src) {
			two = src[i : i+2]
		}
		switch two {
		case "==":
			out = append(out, token{kind: tokEq, text: two, pos: i})
			i += 2
			continue
		case "!=":
			out = append(out, token{kind: tokNeq, text: two, pos: i})
			i += 2
			continue
		case "<=":
			out = append(out, token{kind: tokLte, text: two, pos: i})
			i += 2
			continue
		case ">=":
			out = append(out, token{kind: tokGte, text: two, pos: i})
			i += 2
			continue
		case "&&":
			out = append(out, token{kind: tokAnd, text: two, pos: i})
			i += 2
			continue
		case "||":
			out = append(out, token{kind: tokOr, text: two, pos: i})
			i += 2
			continue
		}

		switch ch {
		case '(':
			out = append(out, token{kind: tokLParen, text: "(", pos: i})
			i++
			continue
		case ')':
			out = append(out, token{kind: tokRParen, text: ")", pos: i})
			i++
			continue
		case '!':
			out = append(out, token{kind: tokNot, text: "!", pos: i})
			i++
			continue
		case '<':
			out = append(out, token{kind: tokLt, text: "<", pos: i})
			i++
			continue
		case '>':
			out = append(out, token{kind: tokGt, text: ">", pos: i})
			i++
			continue
		case '=', '&', '|':
			return nil, fmt.Errorf("condition: stray %q at offset %d", ch, i)
		case '"', '\'':
			value, next, err := lexString(src, i)
			if err != nil {
				return nil, err
			}
			out = append(out, token{kind: tokString, text: value, pos: i})
			i = next
			continue
		}

		start := i
		for i < len(src) && !isDelimiter(src[i]) {
			i++
		}
		word := src[start:i]
		out = append(out, classifyWord(word, start))
	}
	return out, nil
}

func lexString(src string, start int) (string, int, error) {
	quote := src[start]
	escaped := false
	for i := start + 1; i < len(src); i++ {
		ch := src[i]
		switch {
		case escaped:
			escaped = false
		case ch == '\\':
			escaped = true
		case ch == quote:
			body := src[start+1 : i]
			if quote == '\'' {
				body = strings.ReplaceAll(body, `"`, `\"`)
				body = strings.ReplaceAll(body, `\'`, `'`)
			}
			value, err := strconv.Unquote(`"` + body + `"`)
			if err != nil {
				return "", 0, fmt.Errorf("condition: invalid string at offset %d: %w", start, err)
			}
			return value, i + 1, nil
		}
	}
	return "", 0, errors.New("condition: unterminated string")
}

func classifyWord(word string, pos int) token {
	switch strings.ToLower(word) {
	case "true", "false":
		return token{kind: tokBool, text: strings.ToLower(word), pos: pos}
	case "null", "nil":
		return token{kind: tokNull, text: "null", pos: pos}
	case "and":
		return token{kind: tokAnd, text: word, pos: pos}
	case "or":
		return token{kind: tokOr, text: word, pos: pos}
	case "not":
		return token{kind: tokNot, text: word, pos: pos}
	}
	if looksNumeric(word) {
		if _, err := strconv.ParseFloat(word, 64); err == nil {
			return token{kind: tokNumber, text: word, pos: pos}
		}
	}
	return token{kind: tokIdent, text: word, pos: pos}
}

func looksNumeric(word string) bool {
	ch := word[0]
	return (ch >= '0' && ch <= '9') || ch == '-' || ch == '+' || ch == '.'
}
