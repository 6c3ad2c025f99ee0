package lexer

import (
	"quantum/internal/source"
)

// Коды ошибок лексера, передаются в Reporter как kind.
const (
	ErrUnterminatedString = "UnterminatedString"
	ErrUnknownChar        = "UnknownChar"
	ErrStrayBackslash     = "StrayBackslash"
)

// Reporter - тонкий интерфейс, чтобы не тянуть логирование сюда.
// Лексер только вызывает его; что делать с ошибкой, решает внешний слой.
type Reporter interface {
	Report(kind string, span source.Span, msg string)
}

// ReporterFunc adapts a plain function to Reporter.
type ReporterFunc func(kind string, span source.Span, msg string)

func (f ReporterFunc) Report(kind string, span source.Span, msg string) { f(kind, span, msg) }

type Options struct {
	Reporter Reporter // может быть nil - тогда ошибки игнорируем (но продолжаем лексить)
}

func (lx *Lexer) report(kind string, sp source.Span, msg string) {
	if lx.opts.Reporter != nil {
		lx.opts.Reporter.Report(kind, sp, msg)
	}
}
