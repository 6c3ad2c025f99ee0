package fix

import (
	"strings"

	"quantum/internal/ast"
	"quantum/internal/parser"
	"quantum/internal/source"
	"quantum/internal/token"
)

// FormatToFStringID is the registry id of FormatToFString.
const FormatToFStringID = "format_to_fstring"

// FormatToFString rewrites `"<template>".format(args)` into an f-string.
//
// By default unresolved placeholders are dropped and literal braces are
// copied as is, which can change the program's output. Strict skips such
// sites instead.
type FormatToFString struct {
	Strict bool
}

func (FormatToFString) ID() string    { return FormatToFStringID }
func (FormatToFString) Title() string { return "convert str.format calls to f-strings" }

// Apply rewrites every qualifying call in src. Unparsable input is returned
// unchanged with ParseErr set.
func (f FormatToFString) Apply(src []byte) Result {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("<fix>", src))
	mod, err := parser.ParseFile(file, parser.Options{MaxErrors: 1})
	if err != nil {
		return Result{Text: src, ParseErr: err}
	}

	res := Result{Text: src}
	ast.Rewrite(mod, func(n ast.Node) ast.Node {
		call, ok := n.(*ast.Call)
		if !ok {
			return n
		}
		repl, reason, target := f.rewriteCall(call)
		if !target {
			return n
		}
		if reason != "" {
			start, _ := fs.Resolve(call.Span())
			res.Skipped = append(res.Skipped, Skip{
				Fixer:  FormatToFStringID,
				Line:   int(start.Line),
				Reason: reason,
			})
			return n
		}
		res.Changes++
		return repl
	})
	if res.Changes > 0 {
		res.Text = []byte(ast.String(mod))
	}
	return res
}

// Причины пропуска: сайт подходит под шаблон, но переписать его без риска нельзя.
const (
	reasonStarred      = "starred arguments"
	reasonComment      = "comment inside call"
	reasonBackslash    = "backslash in argument"
	reasonEmptyArg     = "empty argument"
	reasonNamedEscape  = `template uses \N{...} escape`
	reasonQuote        = "argument conflicts with both quote characters"
	reasonEscapedBrace = "template has literal braces"
	reasonSpec         = "format spec or conversion"
	reasonUnresolved   = "placeholder without matching argument"
)

// rewriteCall returns the replacement node, or a non-empty skip reason.
// target is false when the call is not a str.format call on a plain literal.
func (f FormatToFString) rewriteCall(call *ast.Call) (ast.Node, string, bool) {
	attr, ok := call.Attr()
	if !ok || attr.Name.Tok.Text != "format" {
		return nil, "", false
	}
	recv, ok := attr.Value.(*ast.Leaf)
	if !ok || !recv.IsString() {
		return nil, "", false
	}
	lit, ok := token.SplitString(recv.Tok.Text)
	if !ok || lit.IsBytes() || lit.IsFormatted() {
		return nil, "", false
	}

	var (
		positional []*ast.Expr
		named      = make(map[string]*ast.Expr)
	)
	for _, a := range call.Args {
		if a.IsStarred() {
			return nil, reasonStarred, true
		}
		text := ast.InlineText(a.Value)
		switch {
		case strings.TrimSpace(text) == "":
			return nil, reasonEmptyArg, true
		case strings.ContainsRune(text, '\\'):
			return nil, reasonBackslash, true
		}
		if name := a.Name(); name != "" {
			if _, dup := named[name]; !dup {
				named[name] = a.Value
			}
			continue
		}
		positional = append(positional, a.Value)
	}
	if ast.HasComment(call) {
		return nil, reasonComment, true
	}
	if strings.Contains(lit.Body, `\N{`) {
		return nil, reasonNamedEscape, true
	}

	resolved := Resolve(lit.Body, positional, named)
	if f.Strict {
		if reason := strictReason(resolved); reason != "" {
			return nil, reason, true
		}
	}

	parts := make([]ast.FPart, 0, len(resolved.Pieces))
	for _, p := range resolved.Pieces {
		if !p.IsArg {
			parts = append(parts, ast.FPart{Lit: p.Lit})
			continue
		}
		parts = append(parts, ast.FPart{Expr: p.Arg, Paren: needsParens(p.Arg)})
	}

	quote, ok := chooseQuote(lit, parts)
	if !ok {
		return nil, reasonQuote, true
	}
	return &ast.FString{
		Leading: recv.Tok.Leading,
		Prefix:  fstringPrefix(lit.Prefix),
		Quote:   quote,
		Parts:   parts,
		Origin:  call.Span(),
	}, "", true
}

func strictReason(res Resolution[*ast.Expr]) string {
	for _, ph := range res.Fields {
		if ph.HasSpec() {
			return reasonSpec
		}
	}
	if len(res.Unresolved) > 0 {
		return reasonUnresolved
	}
	if literalBraces(res) {
		return reasonEscapedBrace
	}
	return ""
}

// needsParens: выражения, которые внутри {} без скобок не разбираются
func needsParens(e *ast.Expr) bool {
	for _, n := range e.Items {
		leaf, ok := n.(*ast.Leaf)
		if !ok {
			continue
		}
		if leaf.Tok.Kind == token.Walrus {
			return true
		}
		if leaf.Tok.Is("lambda") || leaf.Tok.Is("yield") || leaf.Tok.Is("for") {
			return true
		}
	}
	return false
}

// chooseQuote keeps the template's quote unless an embedded expression uses
// it; then it tries the other quote character.
func chooseQuote(lit token.StringLiteral, parts []ast.FPart) (string, bool) {
	var fields strings.Builder
	for _, p := range parts {
		if p.IsExpr() {
			fields.WriteString(ast.ReplacementField(p))
		}
	}
	text := fields.String()
	q := lit.Quote[:1]
	if !strings.Contains(text, q) {
		return lit.Quote, true
	}
	alt := `'`
	if q == `'` {
		alt = `"`
	}
	if strings.Contains(text, alt) || strings.Contains(lit.Body, alt) {
		return "", false
	}
	return strings.Repeat(alt, len(lit.Quote)), true
}

// fstringPrefix: u несовместим с f, остальные буквы сохраняем как есть
func fstringPrefix(prefix string) string {
	p := strings.NewReplacer("u", "", "U", "").Replace(prefix)
	return "f" + p
}
