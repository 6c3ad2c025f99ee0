package token

import (
	"quantum/internal/source"
)

// Token represents a single source token with its location and trivia.
type Token struct {
	Kind    Kind
	Span    source.Span
	Text    string
	Leading []Trivia
}

// IsLiteral reports whether the token is a numeric or string literal.
func (t Token) IsLiteral() bool {
	return t.Kind == Number || t.Kind == String
}

// IsKeyword reports whether the token is a Python keyword (soft keywords excluded).
func (t Token) IsKeyword() bool {
	return t.Kind == Name && IsKeyword(t.Text)
}

// Is reports whether the token is a Name with the given text.
func (t Token) Is(name string) bool { return t.Kind == Name && t.Text == name }

// HasComment reports whether any leading trivia is a comment.
func (t Token) HasComment() bool {
	for _, tr := range t.Leading {
		if tr.Kind == TriviaComment {
			return true
		}
	}
	return false
}
