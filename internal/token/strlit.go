package token

import "strings"

// StringLiteral is a String token split into its parts.
type StringLiteral struct {
	Prefix string // как в исходнике: "", "r", "Rb", "f" ...
	Quote  string // ", ', """ или '''
	Body   string // текст между кавычками, escape-последовательности не раскрыты
}

// SplitString splits the text of a String token. It reports false when text is not
// a complete string literal.
func SplitString(text string) (StringLiteral, bool) {
	i := strings.IndexAny(text, `"'`)
	if i < 0 || !validPrefix(text[:i]) {
		return StringLiteral{}, false
	}
	q := text[i : i+1]
	if strings.HasPrefix(text[i:], q+q+q) && len(text)-i >= 6 {
		q = q + q + q
	}
	rest := text[i:]
	if len(rest) < 2*len(q) || !strings.HasSuffix(rest, q) {
		return StringLiteral{}, false
	}
	return StringLiteral{
		Prefix: text[:i],
		Quote:  q,
		Body:   rest[len(q) : len(rest)-len(q)],
	}, true
}

func (s StringLiteral) has(c byte) bool {
	return strings.IndexByte(strings.ToLower(s.Prefix), c) >= 0
}

// IsBytes reports a b"" literal.
func (s StringLiteral) IsBytes() bool { return s.has('b') }

// IsRaw reports an r"" literal.
func (s StringLiteral) IsRaw() bool { return s.has('r') }

// IsFormatted reports an f"" literal.
func (s StringLiteral) IsFormatted() bool { return s.has('f') }

// IsTriple reports a triple-quoted literal.
func (s StringLiteral) IsTriple() bool { return len(s.Quote) == 3 }

func (s StringLiteral) String() string {
	return s.Prefix + s.Quote + s.Body + s.Quote
}

// IsStringPrefix reports whether name may directly precede a quote to form a literal.
func IsStringPrefix(name string) bool {
	return name != "" && validPrefix(name)
}

func validPrefix(p string) bool {
	switch strings.ToLower(p) {
	case "", "r", "u", "b", "f", "br", "rb", "fr", "rf":
		return true
	default:
		return false
	}
}
