package parser

import (
	"fmt"

	"quantum/internal/ast"
	"quantum/internal/source"
	"quantum/internal/token"
)

// parseSeq читает узлы до закрывающей скобки или EOF (сами они не съедаются).
func (p *Parser) parseSeq(stop ...token.Kind) []ast.Node {
	var items []ast.Node
	for {
		tok := p.peek()
		if tok.Kind == token.EOF || tok.Kind.IsClosing() || p.atOr(stop...) {
			return items
		}
		items = append(items, p.parsePrimary())
	}
}

// parsePrimary: атом и цепочка трейлеров (.name, (...), [...]).
func (p *Parser) parsePrimary() ast.Node {
	tok := p.advance()
	var node ast.Node

	switch tok.Kind {
	case token.String:
		node = p.parseStrings(tok)
	case token.LParen, token.LBracket, token.LBrace:
		node = p.parseGroup(tok)
	case token.Invalid:
		p.errAt(tok.Span, fmt.Sprintf("invalid token %q", tok.Text))
		return &ast.Leaf{Tok: tok}
	default:
		node = &ast.Leaf{Tok: tok}
	}

	if !p.takesTrailers(tok) {
		return node
	}
	return p.parseTrailers(node)
}

// У ключевых слов (кроме литералов None/True/False) трейлеров нет: "if (x)" - не вызов.
func (p *Parser) takesTrailers(tok token.Token) bool {
	switch tok.Kind {
	case token.Name:
		if !tok.IsKeyword() {
			return true
		}
		return tok.Text == "None" || tok.Text == "True" || tok.Text == "False"
	case token.String, token.Number, token.LParen, token.LBracket, token.LBrace:
		return true
	}
	return false
}

func (p *Parser) parseTrailers(node ast.Node) ast.Node {
	for {
		switch {
		case p.at(token.Dot) && p.peekN(1).Kind == token.Name:
			dot := p.advance()
			name := p.advance()
			node = &ast.Attribute{Value: node, Dot: &ast.Leaf{Tok: dot}, Name: &ast.Leaf{Tok: name}}
		case p.at(token.LParen):
			node = p.parseCall(node, p.advance())
		case p.at(token.LBracket):
			node = &ast.Subscript{Value: node, Index: p.parseGroup(p.advance())}
		default:
			return node
		}
	}
}

// parseStrings склеивает подряд идущие строковые литералы в Concat.
func (p *Parser) parseStrings(first token.Token) ast.Node {
	if !p.at(token.String) {
		return &ast.Leaf{Tok: first}
	}
	c := &ast.Concat{Parts: []*ast.Leaf{{Tok: first}}}
	for p.at(token.String) {
		c.Parts = append(c.Parts, &ast.Leaf{Tok: p.advance()})
	}
	return c
}

func (p *Parser) parseGroup(open token.Token) *ast.Group {
	g := &ast.Group{Open: &ast.Leaf{Tok: open}}
	g.Body = p.parseSeq()
	g.Close = p.expectClosing(open)
	return g
}

// expectClosing съедает парную скобку; при несовпадении пишет ошибку и
// возвращает пустой лист, чтобы дерево осталось печатаемым.
func (p *Parser) expectClosing(open token.Token) *ast.Leaf {
	want, _ := open.Kind.Closing()
	tok := p.peek()
	if tok.Kind == want {
		return &ast.Leaf{Tok: p.advance()}
	}
	if tok.Kind == token.EOF {
		p.errAt(open.Span, fmt.Sprintf("%q was never closed", open.Text))
	} else {
		p.errAt(tok.Span, fmt.Sprintf("closing %q does not match %q", tok.Text, open.Text))
	}
	at := source.Span{File: tok.Span.File, Start: tok.Span.Start, End: tok.Span.Start}
	return &ast.Leaf{Tok: token.Token{Kind: want, Span: at}}
}
