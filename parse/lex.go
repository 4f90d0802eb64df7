package parse

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

type itemType uint8

const (
	itemEOF itemType = iota
	itemError
	itemIdent
	itemLocal
	itemInt
	itemString
	itemLeftParen
	itemRightParen
	itemLeftBracket
	itemRightBracket
	itemLeftBrace
	itemRightBrace
	itemComma
	itemColon
	itemDot
	itemStar
	itemAmp
	itemEq
	itemArrow
)

func (t itemType) String() string {
	switch t {
	case itemEOF:
		return "end of input"
	case itemError:
		return "error"
	case itemIdent:
		return "identifier"
	case itemLocal:
		return "local"
	case itemInt:
		return "integer"
	case itemString:
		return "string"
	case itemLeftParen:
		return "("
	case itemRightParen:
		return ")"
	case itemLeftBracket:
		return "["
	case itemRightBracket:
		return "]"
	case itemLeftBrace:
		return "{"
	case itemRightBrace:
		return "}"
	case itemComma:
		return ","
	case itemColon:
		return ":"
	case itemDot:
		return "."
	case itemStar:
		return "*"
	case itemAmp:
		return "&"
	case itemEq:
		return "="
	case itemArrow:
		return "->"
	default:
		return fmt.Sprintf("itemType(%d)", t)
	}
}

type item struct {
	typ  itemType
	val  string
	line int
	col  int
}

type lexer struct {
	src   string
	off   int
	line  int
	col   int
	items []item
}

// lex scans src into a flat list of items. Scanning never fails hard;
// invalid input produces a single itemError carrying the message.
func lex(src string) []item {
	lx := &lexer{src: src, line: 1, col: 1}
	lx.run()
	return lx.items
}

func (lx *lexer) emit(typ itemType, val string, line, col int) {
	lx.items = append(lx.items, item{typ: typ, val: val, line: line, col: col})
}

func (lx *lexer) errorf(line, col int, f string, args ...any) {
	lx.items = append(lx.items, item{typ: itemError, val: fmt.Sprintf(f, args...), line: line, col: col})
}

func (lx *lexer) next() (rune, bool) {
	if lx.off >= len(lx.src) {
		return 0, false
	}
	r, size := utf8.DecodeRuneInString(lx.src[lx.off:])
	lx.off += size
	if r == '\n' {
		lx.line++
		lx.col = 1
	} else {
		lx.col++
	}
	return r, true
}

func (lx *lexer) peek() rune {
	if lx.off >= len(lx.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(lx.src[lx.off:])
	return r
}

func isIdent(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func (lx *lexer) run() {
	for {
		line, col := lx.line, lx.col
		start := lx.off
		r, ok := lx.next()
		if !ok {
			lx.emit(itemEOF, "", line, col)
			return
		}
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			// skip
		case r == '/' && lx.peek() == '/':
			for {
				r, ok := lx.next()
				if !ok || r == '\n' {
					break
				}
			}
		case r == '(':
			lx.emit(itemLeftParen, "(", line, col)
		case r == ')':
			lx.emit(itemRightParen, ")", line, col)
		case r == '[':
			lx.emit(itemLeftBracket, "[", line, col)
		case r == ']':
			lx.emit(itemRightBracket, "]", line, col)
		case r == '{':
			lx.emit(itemLeftBrace, "{", line, col)
		case r == '}':
			lx.emit(itemRightBrace, "}", line, col)
		case r == ',':
			lx.emit(itemComma, ",", line, col)
		case r == ':':
			lx.emit(itemColon, ":", line, col)
		case r == '.':
			lx.emit(itemDot, ".", line, col)
		case r == '*':
			lx.emit(itemStar, "*", line, col)
		case r == '&':
			lx.emit(itemAmp, "&", line, col)
		case r == '=':
			lx.emit(itemEq, "=", line, col)
		case r == '-':
			if lx.peek() == '>' {
				lx.next()
				lx.emit(itemArrow, "->", line, col)
			} else if unicode.IsDigit(lx.peek()) {
				lx.lexNumber(start, line, col)
			} else {
				lx.errorf(line, col, "unexpected character %q", r)
				lx.emit(itemEOF, "", lx.line, lx.col)
				return
			}
		case r == '"':
			lx.lexString(start, line, col)
		case r == '_':
			for unicode.IsDigit(lx.peek()) {
				lx.next()
			}
			if lx.off == start+1 {
				lx.errorf(line, col, "expected digits after %q", "_")
				lx.emit(itemEOF, "", lx.line, lx.col)
				return
			}
			lx.emit(itemLocal, lx.src[start:lx.off], line, col)
		case unicode.IsDigit(r):
			lx.lexNumber(start, line, col)
		case unicode.IsLetter(r):
			for isIdent(lx.peek()) {
				lx.next()
			}
			lx.emit(itemIdent, lx.src[start:lx.off], line, col)
		default:
			lx.errorf(line, col, "unexpected character %q", r)
			lx.emit(itemEOF, "", lx.line, lx.col)
			return
		}
	}
}

func (lx *lexer) lexNumber(start, line, col int) {
	for unicode.IsDigit(lx.peek()) {
		lx.next()
	}
	lx.emit(itemInt, lx.src[start:lx.off], line, col)
}

func (lx *lexer) lexString(start, line, col int) {
	for {
		r, ok := lx.next()
		if !ok || r == '\n' {
			lx.errorf(line, col, "unterminated string")
			lx.emit(itemEOF, "", lx.line, lx.col)
			return
		}
		switch r {
		case '\\':
			lx.next()
		case '"':
			lx.emit(itemString, lx.src[start:lx.off], line, col)
			return
		}
	}
}
