package ast

import (
	"quantum/internal/source"
	"quantum/internal/token"
)

// Leaf wraps a single token.
type Leaf struct {
	Tok token.Token
}

func (l *Leaf) Kind() Kind        { return KindLeaf }
func (l *Leaf) Span() source.Span { return l.Tok.Span }
func (l *Leaf) Children() []Node  { return nil }

// IsString reports whether the leaf is a single string literal.
func (l *Leaf) IsString() bool { return l.Tok.Kind == token.String }

// Module is the root: top-level items followed by the EOF leaf that carries
// trailing trivia.
type Module struct {
	Items []Node
	EOF   *Leaf
}

func (m *Module) Kind() Kind        { return KindModule }
func (m *Module) Span() source.Span { return spanOf(m.Children()) }

func (m *Module) Children() []Node {
	out := make([]Node, 0, len(m.Items)+1)
	out = append(out, m.Items...)
	if m.EOF != nil {
		out = append(out, m.EOF)
	}
	return out
}

func (m *Module) ReplaceChild(i int, n Node) bool {
	if i < 0 || i >= len(m.Items) {
		return false
	}
	m.Items[i] = n
	return true
}

// Group is a bracketed sequence that is not a call or subscript: (...), [...], {...}.
type Group struct {
	Open  *Leaf
	Body  []Node
	Close *Leaf
}

func (g *Group) Kind() Kind        { return KindGroup }
func (g *Group) Span() source.Span { return g.Open.Span().Cover(g.Close.Span()) }

func (g *Group) Children() []Node {
	out := make([]Node, 0, len(g.Body)+2)
	out = append(out, g.Open)
	out = append(out, g.Body...)
	return append(out, g.Close)
}

func (g *Group) ReplaceChild(i int, n Node) bool {
	if i < 1 || i > len(g.Body) {
		return false
	}
	g.Body[i-1] = n
	return true
}

// Attribute is Value.Name.
type Attribute struct {
	Value Node
	Dot   *Leaf
	Name  *Leaf
}

func (a *Attribute) Kind() Kind        { return KindAttribute }
func (a *Attribute) Span() source.Span { return a.Value.Span().Cover(a.Name.Span()) }
func (a *Attribute) Children() []Node  { return []Node{a.Value, a.Dot, a.Name} }

func (a *Attribute) ReplaceChild(i int, n Node) bool {
	if i != 0 {
		return false
	}
	a.Value = n
	return true
}

// Subscript is Value[...].
type Subscript struct {
	Value Node
	Index *Group
}

func (s *Subscript) Kind() Kind        { return KindSubscript }
func (s *Subscript) Span() source.Span { return s.Value.Span().Cover(s.Index.Span()) }
func (s *Subscript) Children() []Node  { return []Node{s.Value, s.Index} }

func (s *Subscript) ReplaceChild(i int, n Node) bool {
	if i != 0 {
		return false
	}
	s.Value = n
	return true
}

// Call is Func(Args...).
type Call struct {
	Func  Node
	Open  *Leaf
	Args  []*Arg
	Close *Leaf
}

func (c *Call) Kind() Kind        { return KindCall }
func (c *Call) Span() source.Span { return c.Func.Span().Cover(c.Close.Span()) }

func (c *Call) Children() []Node {
	out := make([]Node, 0, len(c.Args)+3)
	out = append(out, c.Func, c.Open)
	for _, a := range c.Args {
		out = append(out, a)
	}
	return append(out, c.Close)
}

func (c *Call) ReplaceChild(i int, n Node) bool {
	switch {
	case i == 0:
		c.Func = n
		return true
	case i >= 2 && i < len(c.Args)+2:
		arg, ok := n.(*Arg)
		if !ok {
			return false
		}
		c.Args[i-2] = arg
		return true
	}
	return false
}

// Attr returns the callee as an attribute access, if it is one.
func (c *Call) Attr() (*Attribute, bool) {
	a, ok := c.Func.(*Attribute)
	return a, ok
}

// Arg is one call argument: [*|**] [name =] value [,].
type Arg struct {
	Star    *Leaf // nil, "*" или "**"
	Keyword *Leaf
	Assign  *Leaf
	Value   *Expr
	Comma   *Leaf
}

func (a *Arg) Kind() Kind        { return KindArg }
func (a *Arg) Span() source.Span { return spanOf(a.Children()) }

func (a *Arg) Children() []Node {
	out := make([]Node, 0, 5)
	if a.Star != nil {
		out = append(out, a.Star)
	}
	if a.Keyword != nil {
		out = append(out, a.Keyword, a.Assign)
	}
	out = append(out, a.Value)
	if a.Comma != nil {
		out = append(out, a.Comma)
	}
	return out
}

// IsStarred reports *args or **kwargs.
func (a *Arg) IsStarred() bool { return a.Star != nil }

// Name returns the keyword name, "" for positional arguments.
func (a *Arg) Name() string {
	if a.Keyword == nil {
		return ""
	}
	return a.Keyword.Tok.Text
}

// Expr is a flat run of nodes forming one argument value. The tree does not
// model operator precedence.
type Expr struct {
	Items []Node
}

func (e *Expr) Kind() Kind        { return KindExpr }
func (e *Expr) Span() source.Span { return spanOf(e.Items) }
func (e *Expr) Children() []Node  { return e.Items }

func (e *Expr) ReplaceChild(i int, n Node) bool {
	if i < 0 || i >= len(e.Items) {
		return false
	}
	e.Items[i] = n
	return true
}

// Concat is implicit concatenation of adjacent string literals.
type Concat struct {
	Parts []*Leaf
}

func (c *Concat) Kind() Kind        { return KindConcat }
func (c *Concat) Span() source.Span { return c.Parts[0].Span().Cover(c.Parts[len(c.Parts)-1].Span()) }

func (c *Concat) Children() []Node {
	out := make([]Node, len(c.Parts))
	for i, p := range c.Parts {
		out[i] = p
	}
	return out
}
