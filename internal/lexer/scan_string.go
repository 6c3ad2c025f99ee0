package lexer

import (
	"quantum/internal/token"
)

// scanString читает строковый литерал; start указывает на начало префикса
// (или на открывающую кавычку, если префикса нет). Курсор стоит на кавычке.
//
// Одинарные кавычки не могут содержать неэкранированный перевод строки,
// тройные могут. Escape-последовательности не раскрываются: '\' просто
// экранирует следующий байт (в том числе для r-строк, как и в CPython).
func (lx *Lexer) scanString(start Mark) token.Token {
	q := lx.cursor.Bump()
	triple := false
	if b0, b1, ok := lx.cursor.Peek2(); ok && b0 == q && b1 == q {
		lx.cursor.Bump()
		lx.cursor.Bump()
		triple = true
	}
	closing := string([]byte{q})
	if triple {
		closing = string([]byte{q, q, q})
	}

	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		switch {
		case b == '\\':
			lx.cursor.Bump()
			if lx.cursor.EatNewline() == 0 {
				lx.cursor.Bump()
			}
		case b == q && lx.cursor.HasPrefix(closing):
			lx.tryN(closing)
			sp := lx.cursor.SpanFrom(start)
			return token.Token{Kind: token.String, Span: sp, Text: lx.cursor.Text(start)}
		case !triple && (b == '\n' || b == '\r'):
			sp := lx.cursor.SpanFrom(start)
			lx.report(ErrUnterminatedString, sp, "newline in string literal")
			return token.Token{Kind: token.Invalid, Span: sp, Text: lx.cursor.Text(start)}
		default:
			lx.cursor.Bump()
		}
	}

	// EOF без закрывающей кавычки
	sp := lx.cursor.SpanFrom(start)
	lx.report(ErrUnterminatedString, sp, "unterminated string literal")
	return token.Token{Kind: token.Invalid, Span: sp, Text: lx.cursor.Text(start)}
}
