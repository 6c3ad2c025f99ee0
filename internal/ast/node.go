package ast

import (
	"quantum/internal/source"
	"quantum/internal/token"
)

// Kind identifies the concrete node type behind a Node.
type Kind uint8

const (
	KindModule Kind = iota
	KindLeaf
	KindGroup
	KindCall
	KindAttribute
	KindSubscript
	KindArg
	KindExpr
	KindConcat
	KindFString
)

var kindNames = [...]string{
	KindModule:    "Module",
	KindLeaf:      "Leaf",
	KindGroup:     "Group",
	KindCall:      "Call",
	KindAttribute: "Attribute",
	KindSubscript: "Subscript",
	KindArg:       "Arg",
	KindExpr:      "Expr",
	KindConcat:    "Concat",
	KindFString:   "FString",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(?)"
}

// Node is a vertex of the concrete syntax tree. Printing every leaf with its
// leading trivia in order reproduces the source exactly.
type Node interface {
	Kind() Kind
	Span() source.Span
	Children() []Node
}

// Replacer is implemented by nodes whose children can be swapped in place.
// ReplaceChild reports false when n cannot occupy slot i.
type Replacer interface {
	ReplaceChild(i int, n Node) bool
}

// spanOf покрывает диапазон от первого до последнего непустого ребёнка
func spanOf(children []Node) source.Span {
	var sp source.Span
	seen := false
	for _, c := range children {
		if c == nil {
			continue
		}
		if e, ok := c.(*Expr); ok && len(e.Items) == 0 {
			continue
		}
		cs := c.Span()
		if !seen {
			sp = cs
			seen = true
			continue
		}
		sp = sp.Cover(cs)
	}
	return sp
}

// leafTokens собирает токены поддерева в порядке печати
func leafTokens(n Node, out []token.Token) []token.Token {
	switch x := n.(type) {
	case nil:
		return out
	case *Leaf:
		if x == nil {
			return out
		}
		return append(out, x.Tok)
	default:
		for _, c := range n.Children() {
			out = leafTokens(c, out)
		}
		return out
	}
}

// Tokens returns the tokens of n in source order. FString nodes contribute
// only the tokens of their embedded expressions.
func Tokens(n Node) []token.Token {
	return leafTokens(n, nil)
}

// HasComment reports whether any token under n other than the first carries
// a comment in its leading trivia.
func HasComment(n Node) bool {
	toks := Tokens(n)
	for i, t := range toks {
		if i > 0 && t.HasComment() {
			return true
		}
	}
	return false
}
