package ast

import (
	"quantum/internal/source"
	"quantum/internal/token"
)

// FPart is one segment of an FString: literal text or an embedded expression.
type FPart struct {
	Lit  string
	Expr Node
	// Paren оборачивает выражение в скобки (lambda, yield, := и т.п.)
	Paren bool
}

// IsExpr reports whether the part is a replacement field.
func (p FPart) IsExpr() bool { return p.Expr != nil }

// FString is a synthesized f-string literal. It replaces the node it was
// built from; Leading keeps that node's leading trivia.
type FString struct {
	Leading []token.Trivia
	Prefix  string
	Quote   string
	Parts   []FPart
	Origin  source.Span
}

func (f *FString) Kind() Kind        { return KindFString }
func (f *FString) Span() source.Span { return f.Origin }

func (f *FString) Children() []Node {
	var out []Node
	for _, p := range f.Parts {
		if p.Expr != nil {
			out = append(out, p.Expr)
		}
	}
	return out
}

func (f *FString) ReplaceChild(i int, n Node) bool {
	for j := range f.Parts {
		if f.Parts[j].Expr == nil {
			continue
		}
		if i == 0 {
			f.Parts[j].Expr = n
			return true
		}
		i--
	}
	return false
}
