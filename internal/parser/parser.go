package parser

import (
	"errors"
	"fmt"
	"slices"

	"quantum/internal/ast"
	"quantum/internal/lexer"
	"quantum/internal/source"
	"quantum/internal/token"
)

// ErrSyntax is wrapped by every error ParseFile returns.
var ErrSyntax = errors.New("syntax error")

// SyntaxError describes the first problem the parser met.
type SyntaxError struct {
	Span source.Span
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: %s", e.Span, e.Msg)
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }

type Options struct {
	// MaxErrors останавливает сбор ошибок; 0 - без ограничения
	MaxErrors int
	Reporter  lexer.Reporter
}

// Parser - состояние парсера на один файл. Дерево не проверяет грамматику Python:
// оно различает только скобки, вызовы, атрибуты, подписки и аргументы.
type Parser struct {
	toks []token.Token
	pos  int
	opts Options
	errs []*SyntaxError
}

// ParseFile lexes and parses one file. On error the returned module is still
// complete enough to print, but callers that rewrite must not trust it.
func ParseFile(file *source.File, opts Options) (*ast.Module, error) {
	lxOpts := lexer.Options{Reporter: opts.Reporter}
	p := &Parser{
		toks: lexer.Tokenize(file, lxOpts),
		opts: opts,
	}
	mod := p.parseModule()
	if len(p.errs) > 0 {
		return mod, p.errs[0]
	}
	return mod, nil
}

// ParseText is ParseFile over an in-memory buffer.
func ParseText(name string, src []byte, opts Options) (*ast.Module, error) {
	fs := source.NewFileSet()
	return ParseFile(fs.Get(fs.AddVirtual(name, src)), opts)
}

func (p *Parser) parseModule() *ast.Module {
	mod := &ast.Module{}
	for {
		mod.Items = append(mod.Items, p.parseSeq()...)
		if p.at(token.EOF) {
			break
		}
		// закрывающая скобка без открывающей
		tok := p.advance()
		p.errAt(tok.Span, fmt.Sprintf("unmatched %q", tok.Text))
		mod.Items = append(mod.Items, &ast.Leaf{Tok: tok})
	}
	mod.EOF = &ast.Leaf{Tok: p.advance()}
	return mod
}

func (p *Parser) peek() token.Token {
	return p.peekN(0)
}

func (p *Parser) peekN(n int) token.Token {
	i := p.pos + n
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

func (p *Parser) at(k token.Kind) bool {
	return p.peek().Kind == k
}

func (p *Parser) atOr(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.peek().Kind)
}

// advance - съедает следующий токен; EOF не съедается повторно
func (p *Parser) advance() token.Token {
	tok := p.peek()
	if p.pos < len(p.toks)-1 || tok.Kind != token.EOF {
		p.pos++
	}
	return tok
}

func (p *Parser) errAt(sp source.Span, msg string) {
	if p.opts.MaxErrors > 0 && len(p.errs) >= p.opts.MaxErrors {
		return
	}
	p.errs = append(p.errs, &SyntaxError{Span: sp, Msg: msg})
	if p.opts.Reporter != nil {
		p.opts.Reporter.Report("Syntax", sp, msg)
	}
}
