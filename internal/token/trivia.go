package token

import "quantum/internal/source"

type TriviaKind uint8

const (
	TriviaSpace TriviaKind = iota
	TriviaNewline
	TriviaComment
	// TriviaContinuation is a backslash immediately followed by a newline.
	TriviaContinuation
)

type Trivia struct {
	Kind TriviaKind
	Span source.Span
	Text string
}

// IsLineBreak reports whether printing the trivia moves to the next line.
func (t Trivia) IsLineBreak() bool {
	return t.Kind == TriviaNewline || t.Kind == TriviaContinuation
}
