package lexer

import (
	"quantum/internal/token"
)

// collectLeadingTrivia собирает подряд идущие trivia перед значимым токеном.
// - ' ', '\t' и '\f' коалесцируются в один TriviaSpace
// - подряд идущие переводы строк (\n, \r\n, \r) коалесцируются в один TriviaNewline
// - #... до конца строки -> TriviaComment (перевод строки не входит)
// - '\' + перевод строки -> TriviaContinuation
func (lx *Lexer) collectLeadingTrivia() {
	lx.hold = lx.hold[:0:0]
	for !lx.cursor.EOF() {
		start := lx.cursor.Mark()
		b := lx.cursor.Peek()

		switch {
		case isSpace(b):
			for isSpace(lx.cursor.Peek()) {
				lx.cursor.Bump()
			}
			lx.pushTrivia(token.TriviaSpace, start)

		case b == '\n' || b == '\r':
			for lx.cursor.EatNewline() > 0 {
			}
			lx.pushTrivia(token.TriviaNewline, start)

		case b == '#':
			for !lx.cursor.EOF() {
				c := lx.cursor.Peek()
				if c == '\n' || c == '\r' {
					break
				}
				lx.cursor.Bump()
			}
			lx.pushTrivia(token.TriviaComment, start)

		case b == '\\':
			lx.cursor.Bump()
			if lx.cursor.EatNewline() == 0 {
				// одиночный '\' - не trivia, пусть разбирает сканер операторов
				lx.cursor.Reset(start)
				return
			}
			lx.pushTrivia(token.TriviaContinuation, start)

		default:
			return
		}
	}
}

func (lx *Lexer) pushTrivia(kind token.TriviaKind, start Mark) {
	lx.hold = append(lx.hold, token.Trivia{
		Kind: kind,
		Span: lx.cursor.SpanFrom(start),
		Text: lx.cursor.Text(start),
	})
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\f'
}
