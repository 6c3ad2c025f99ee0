// Package token defines lexical token kinds and trivia for Python source.
// Invariants:
//   - Token.Text is exactly the source bytes covered by Token.Span.
//   - Whitespace, newlines, comments and backslash continuations are Trivia attached
//     to the following token; printing every token's Leading trivia followed by its
//     Text reproduces the input byte for byte.
//   - Keywords are Name tokens; IsKeyword classifies them.
//   - INDENT/DEDENT are not produced: the rewrite engine never needs block structure.
package token
