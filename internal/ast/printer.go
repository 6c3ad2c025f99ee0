package ast

import (
	"io"
	"strings"

	"quantum/internal/token"
)

// Print writes the source text of n. For a tree produced by the parser and
// left untouched the output equals the input byte for byte.
func Print(w io.Writer, n Node) error {
	var sb strings.Builder
	p := printer{sb: &sb}
	p.node(n)
	_, err := io.WriteString(w, sb.String())
	return err
}

// String returns the source text of n.
func String(n Node) string {
	var sb strings.Builder
	p := printer{sb: &sb}
	p.node(n)
	return sb.String()
}

// InlineText renders n as a single-line expression: the leading trivia of the
// first token is dropped, trivia containing a line break or a comment
// collapses to one space, other whitespace is kept.
func InlineText(n Node) string {
	var sb strings.Builder
	p := printer{sb: &sb, inline: true, first: true}
	p.node(n)
	return sb.String()
}

type printer struct {
	sb     *strings.Builder
	inline bool
	first  bool
}

func (p *printer) node(n Node) {
	switch x := n.(type) {
	case nil:
	case *Leaf:
		if x == nil {
			return
		}
		p.trivia(x.Tok.Leading)
		p.sb.WriteString(x.Tok.Text)
	case *FString:
		p.fstring(x)
	default:
		for _, c := range n.Children() {
			p.node(c)
		}
	}
}

func (p *printer) trivia(ts []token.Trivia) {
	if !p.inline {
		for _, t := range ts {
			p.sb.WriteString(t.Text)
		}
		return
	}
	if p.first {
		p.first = false
		return
	}
	collapse := false
	for _, t := range ts {
		if t.IsLineBreak() || t.Kind == token.TriviaComment {
			collapse = true
			break
		}
	}
	if collapse {
		p.sb.WriteByte(' ')
		return
	}
	for _, t := range ts {
		p.sb.WriteString(t.Text)
	}
}

func (p *printer) fstring(f *FString) {
	p.trivia(f.Leading)
	p.sb.WriteString(f.Prefix)
	p.sb.WriteString(f.Quote)
	for _, part := range f.Parts {
		if !part.IsExpr() {
			p.sb.WriteString(part.Lit)
			continue
		}
		p.sb.WriteString(ReplacementField(part))
	}
	p.sb.WriteString(f.Quote)
}

// ReplacementField renders an expression part as {expr}. Text that starts
// with '{' or ends with '}' is padded so it cannot read as an escaped brace.
func ReplacementField(part FPart) string {
	text := InlineText(part.Expr)
	if part.Paren {
		text = "(" + text + ")"
	}
	if strings.HasPrefix(text, "{") {
		text = " " + text
	}
	if strings.HasSuffix(text, "}") {
		text += " "
	}
	return "{" + text + "}"
}
