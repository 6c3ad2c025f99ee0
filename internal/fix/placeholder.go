package fix

import (
	"regexp"
	"strconv"
	"strings"
)

// PlaceholderKind classifies a replacement field of a str.format template.
type PlaceholderKind uint8

const (
	// PlaceholderAuto is "{}": takes the next positional argument.
	PlaceholderAuto PlaceholderKind = iota
	// PlaceholderIndex is "{N}": positional argument N.
	PlaceholderIndex
	// PlaceholderName is "{key}": keyword argument key.
	PlaceholderName
)

// Placeholder is one "{...}" field. Start/End are byte offsets in the
// template, End exclusive.
type Placeholder struct {
	Kind  PlaceholderKind
	Index int
	Name  string
	Body  string
	Start int
	End   int
}

// HasSpec reports a format spec or conversion ("{x:>4}", "{x!r}").
func (p Placeholder) HasSpec() bool {
	return strings.ContainsAny(p.Body, ":!")
}

// Поля без вложенных скобок; {{ и }} не распознаются как экранирование.
var placeholderRe = regexp.MustCompile(`\{([^{}]*)\}`)

// ScanTemplate returns the placeholders of tmpl left to right. Auto fields
// get consecutive indexes starting at 0.
func ScanTemplate(tmpl string) []Placeholder {
	locs := placeholderRe.FindAllStringSubmatchIndex(tmpl, -1)
	out := make([]Placeholder, 0, len(locs))
	next := 0
	for _, loc := range locs {
		ph := Placeholder{Body: tmpl[loc[2]:loc[3]], Start: loc[0], End: loc[1]}
		switch {
		case ph.Body == "":
			ph.Kind = PlaceholderAuto
			ph.Index = next
			next++
		case isDigits(ph.Body):
			ph.Kind = PlaceholderIndex
			n, err := strconv.Atoi(ph.Body)
			if err != nil {
				// не влезает в int: заведомо вне диапазона
				n = -1
			}
			ph.Index = n
		default:
			ph.Kind = PlaceholderName
			ph.Name = ph.Body
		}
		out = append(out, ph)
	}
	return out
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

// Piece is a literal run of the template or a resolved argument.
type Piece[T any] struct {
	Lit   string
	Arg   T
	IsArg bool
}

// Resolution is a template split into pieces. Placeholders that matched no
// argument are listed in Unresolved and produce no piece; the literal text
// around them is kept.
type Resolution[T any] struct {
	Pieces     []Piece[T]
	Unresolved []Placeholder
	Fields     []Placeholder
}

// Resolve binds the placeholders of tmpl to arguments. Out of range indexes
// and unknown names are dropped silently.
func Resolve[T any](tmpl string, positional []T, named map[string]T) Resolution[T] {
	fields := ScanTemplate(tmpl)
	res := Resolution[T]{Fields: fields}
	var lit strings.Builder
	prev := 0
	flush := func() {
		if lit.Len() > 0 {
			res.Pieces = append(res.Pieces, Piece[T]{Lit: lit.String()})
			lit.Reset()
		}
	}
	for _, ph := range fields {
		lit.WriteString(tmpl[prev:ph.Start])
		prev = ph.End

		var (
			arg T
			ok  bool
		)
		switch ph.Kind {
		case PlaceholderAuto, PlaceholderIndex:
			if ph.Index >= 0 && ph.Index < len(positional) {
				arg, ok = positional[ph.Index], true
			}
		case PlaceholderName:
			arg, ok = named[ph.Name]
		}
		if !ok {
			res.Unresolved = append(res.Unresolved, ph)
			continue
		}
		flush()
		res.Pieces = append(res.Pieces, Piece[T]{Arg: arg, IsArg: true})
	}
	lit.WriteString(tmpl[prev:])
	flush()
	return res
}

// literalBraces reports '{' or '}' left in literal pieces: "{{", "}}" or
// an unpaired brace.
func literalBraces[T any](res Resolution[T]) bool {
	for _, p := range res.Pieces {
		if !p.IsArg && strings.ContainsAny(p.Lit, "{}") {
			return true
		}
	}
	return false
}
