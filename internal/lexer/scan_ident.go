package lexer

import (
	"quantum/internal/token"
)

// scanIdentOrString сканирует имя. Если имя является допустимым префиксом
// строки и сразу за ним идёт кавычка, дочитывает строковый литерал целиком.
// Token.Text - ровно исходный срез.
func (lx *Lexer) scanIdentOrString() token.Token {
	start := lx.cursor.Mark()

	r, sz := lx.peekRune()
	if sz == 0 {
		sp := lx.cursor.SpanFrom(start)
		return token.Token{Kind: token.Invalid, Span: sp}
	}
	if r < utf8RuneSelf {
		lx.cursor.Bump()
	} else {
		if !isIdentStartRune(r) {
			return lx.scanOperatorOrPunct()
		}
		lx.bumpRune()
	}
	for {
		r2, sz2 := lx.peekRune()
		if sz2 == 0 {
			break
		}
		if r2 < utf8RuneSelf {
			if !isIdentContinueByte(byte(r2)) {
				break
			}
			lx.cursor.Bump()
			continue
		}
		if !isIdentContinueRune(r2) {
			break
		}
		lx.bumpRune()
	}

	text := lx.cursor.Text(start)
	if q := lx.cursor.Peek(); (q == '"' || q == '\'') && token.IsStringPrefix(text) {
		return lx.scanString(start)
	}
	return token.Token{Kind: token.Name, Span: lx.cursor.SpanFrom(start), Text: text}
}
