package parser

import (
	"quantum/internal/ast"
	"quantum/internal/token"
)

// parseCall разбирает список аргументов после уже съеденной '('.
// Аргументы делятся по запятым верхнего уровня; вложенные скобки
// целиком уходят в значение аргумента.
func (p *Parser) parseCall(fn ast.Node, open token.Token) *ast.Call {
	call := &ast.Call{Func: fn, Open: &ast.Leaf{Tok: open}}
	for {
		arg := p.parseArg()
		if arg == nil {
			break
		}
		call.Args = append(call.Args, arg)
		if arg.Comma == nil {
			break
		}
	}
	call.Close = p.expectClosing(open)
	return call
}

// parseArg возвращает nil, если аргументов больше нет: f() или f(a,).
func (p *Parser) parseArg() *ast.Arg {
	arg := &ast.Arg{}
	if p.atOr(token.Star, token.StarStar) {
		arg.Star = &ast.Leaf{Tok: p.advance()}
	}
	if kw := p.peek(); arg.Star == nil && kw.Kind == token.Name && !kw.IsKeyword() && p.peekN(1).Kind == token.Assign {
		arg.Keyword = &ast.Leaf{Tok: p.advance()}
		arg.Assign = &ast.Leaf{Tok: p.advance()}
	}
	arg.Value = &ast.Expr{Items: p.parseSeq(token.Comma)}
	if p.at(token.Comma) {
		arg.Comma = &ast.Leaf{Tok: p.advance()}
	}
	if arg.Star == nil && arg.Keyword == nil && arg.Comma == nil && len(arg.Value.Items) == 0 {
		return nil
	}
	return arg
}
