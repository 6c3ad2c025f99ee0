package lexer

import (
	"quantum/internal/token"
)

// Операторы, которые не нужны дереву по отдельности: различаются по Text.
// Порядок важен: сначала 3-символьные, затем 2-символьные.
var genericOps = []string{
	"**=", "//=", ">>=", "<<=",
	"==", "!=", "<=", ">=", "<<", ">>", "//",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "@=",
}

// scanOperatorOrPunct: жадно, сначала длинные последовательности.
func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Mark()
	emit := func(k token.Kind) token.Token {
		return token.Token{Kind: k, Span: lx.cursor.SpanFrom(start), Text: lx.cursor.Text(start)}
	}

	switch {
	case lx.tryN("..."):
		return emit(token.Ellipsis)
	case lx.tryN("**="):
		return emit(token.Op)
	case lx.tryN("**"):
		return emit(token.StarStar)
	case lx.tryN("->"):
		return emit(token.Arrow)
	case lx.tryN(":="):
		return emit(token.Walrus)
	}
	for _, op := range genericOps {
		if lx.tryN(op) {
			return emit(token.Op)
		}
	}

	ch := lx.cursor.Peek()
	if ch >= utf8RuneSelf {
		lx.bumpRune()
		sp := lx.cursor.SpanFrom(start)
		lx.report(ErrUnknownChar, sp, "unknown character")
		return emit(token.Invalid)
	}
	lx.cursor.Bump()

	switch ch {
	case '(':
		return emit(token.LParen)
	case ')':
		return emit(token.RParen)
	case '[':
		return emit(token.LBracket)
	case ']':
		return emit(token.RBracket)
	case '{':
		return emit(token.LBrace)
	case '}':
		return emit(token.RBrace)
	case ',':
		return emit(token.Comma)
	case '.':
		return emit(token.Dot)
	case ':':
		return emit(token.Colon)
	case ';':
		return emit(token.Semicolon)
	case '=':
		return emit(token.Assign)
	case '*':
		return emit(token.Star)
	case '@':
		return emit(token.At)
	case '+', '-', '/', '%', '&', '|', '^', '~', '<', '>':
		return emit(token.Op)
	case '\\':
		sp := lx.cursor.SpanFrom(start)
		lx.report(ErrStrayBackslash, sp, "unexpected character after line continuation")
		return emit(token.Invalid)
	default:
		sp := lx.cursor.SpanFrom(start)
		lx.report(ErrUnknownChar, sp, "unknown character")
		return emit(token.Invalid)
	}
}
