package token_test

import (
	"testing"

	"quantum/internal/source"
	"quantum/internal/token"
)

func tok(k token.Kind, text string) token.Token {
	return token.Token{Kind: k, Span: source.Span{Start: 0, End: 0}, Text: text}
}

func TestIsLiteral(t *testing.T) {
	for _, k := range []token.Kind{token.Number, token.String} {
		if !tok(k, "").IsLiteral() {
			t.Fatalf("%v should be literal", k)
		}
	}
	for _, k := range []token.Kind{token.Name, token.Dot, token.LParen, token.Op} {
		if tok(k, "").IsLiteral() {
			t.Fatalf("%v must NOT be literal", k)
		}
	}
}

func TestClosing(t *testing.T) {
	pairs := map[token.Kind]token.Kind{
		token.LParen:   token.RParen,
		token.LBracket: token.RBracket,
		token.LBrace:   token.RBrace,
	}
	for open, want := range pairs {
		got, ok := open.Closing()
		if !ok || got != want {
			t.Errorf("%v.Closing() = %v, %v", open, got, ok)
		}
		if !want.IsClosing() {
			t.Errorf("%v should be closing", want)
		}
	}
	if _, ok := token.Dot.Closing(); ok {
		t.Errorf("Dot must not open a bracket")
	}
}

func TestKeywords(t *testing.T) {
	if !tok(token.Name, "lambda").IsKeyword() {
		t.Errorf("lambda is a keyword")
	}
	if tok(token.Name, "format").IsKeyword() {
		t.Errorf("format is not a keyword")
	}
	if tok(token.String, "'if'").IsKeyword() {
		t.Errorf("a string is never a keyword")
	}
}

func TestKindString(t *testing.T) {
	if token.StarStar.String() != "StarStar" {
		t.Fatalf("unexpected name %q", token.StarStar.String())
	}
}
