package pattern

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"regexp"
	"slices"
	"strings"
)

// Pattern is a compiled rule. It never changes after Load returns it.
type Pattern struct {
	ID       string // исходный текст регулярного выражения
	Regexp   *regexp.Regexp
	Ideas    []string
	Severity Severity
	Tags     []string
	Source   string
}

// Match reports whether the regex occurs anywhere in line.
func (p *Pattern) Match(line string) bool {
	return p.Regexp.FindStringIndex(line) != nil
}

// HasTag reports whether tag is among the pattern's tags.
func (p *Pattern) HasTag(tag string) bool {
	return slices.Contains(p.Tags, tag)
}

// Compile turns one document entry into a Pattern.
func Compile(source string, e Entry) (*Pattern, error) {
	fail := func(reason string, err error) (*Pattern, error) {
		return nil, &ValidationError{Source: source, Regex: e.Regex, Line: e.Line, Reason: reason, Err: err}
	}
	if e.Err != nil {
		return fail("malformed rule", e.Err)
	}
	if e.Regex == "" {
		return fail("empty regex", nil)
	}
	re, err := regexp.Compile(e.Regex)
	if err != nil {
		return fail("invalid regex", err)
	}

	p := &Pattern{ID: e.Regex, Regexp: re, Source: source}
	switch rule := e.Rule.(type) {
	case ShorthandIdeas:
		p.Severity = Info
		p.Ideas = slices.Clone([]string(rule))
	case StructuredRule:
		if rule.Severity != "" {
			sev, err := ParseSeverity(rule.Severity)
			if err != nil {
				return fail("bad severity", err)
			}
			p.Severity = sev
		}
		p.Ideas = slices.Clone(rule.Ideas)
		p.Tags = uniqueTags(rule.Tags)
	case nil:
		return fail("missing rule", nil)
	default:
		return fail("unsupported rule type", nil)
	}
	return p, nil
}

// Load compiles every entry of docs in order. Rejected entries are returned
// as a joined error of *ValidationError; the accepted patterns are returned
// regardless.
func Load(docs ...Document) ([]*Pattern, error) {
	var (
		out  []*Pattern
		errs []error
	)
	for _, doc := range docs {
		for _, e := range doc.Entries {
			p, err := Compile(doc.Name, e)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			out = append(out, p)
		}
	}
	return out, errors.Join(errs...)
}

// Fingerprint identifies a pattern list. Two lists with equal fingerprints
// produce equal analysis results.
func Fingerprint(patterns []*Pattern) string {
	h := sha256.New()
	for _, p := range patterns {
		h.Write([]byte(p.ID))
		h.Write([]byte{0})
		h.Write([]byte(p.Severity.String()))
		h.Write([]byte{0})
		h.Write([]byte(strings.Join(p.Tags, "\x1f")))
		h.Write([]byte{0})
		h.Write([]byte(strings.Join(p.Ideas, "\x1f")))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func uniqueTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}
