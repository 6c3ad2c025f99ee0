package lexer

import (
	"strings"

	"quantum/internal/token"
)

// scanNumber читает числовой литерал без валидации: 0x1F, 1_000, 3.14e-2, 2j, .5
// Семантика числа нас не интересует, важно только не разорвать литерал.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		switch {
		case isIdentContinueByte(b) || b == '.':
			lx.cursor.Bump()
		case (b == '+' || b == '-') && lx.afterExponent(start) && isDec(lx.cursor.PeekAt(1)):
			lx.cursor.Bump()
		default:
			return lx.emitNumber(start)
		}
	}
	return lx.emitNumber(start)
}

// afterExponent: предыдущий байт 'e'/'E' и литерал не шестнадцатеричный
func (lx *Lexer) afterExponent(start Mark) bool {
	text := lx.cursor.Text(start)
	if text == "" {
		return false
	}
	last := text[len(text)-1]
	if last != 'e' && last != 'E' {
		return false
	}
	lower := strings.ToLower(text)
	return !strings.HasPrefix(lower, "0x")
}

func (lx *Lexer) emitNumber(start Mark) token.Token {
	return token.Token{Kind: token.Number, Span: lx.cursor.SpanFrom(start), Text: lx.cursor.Text(start)}
}
