// Package match applies a pattern set to single lines of source.
package match

import (
	"slices"
	"strings"

	"quantum/internal/pattern"
	"quantum/internal/result"
)

// DefaultCommentPrefixes are used when Options.CommentPrefixes is nil.
var DefaultCommentPrefixes = []string{"#"}

type Options struct {
	MinSeverity pattern.Severity
	// Tags, if non-empty, keeps only patterns sharing at least one tag.
	Tags []string
	// CommentPrefixes mark lines that are never analysed. An empty non-nil
	// slice disables comment skipping.
	CommentPrefixes []string
}

// Matcher holds the eligible subset of a pattern list.
type Matcher struct {
	patterns []*pattern.Pattern
	comments []string
}

func New(patterns []*pattern.Pattern, opts Options) *Matcher {
	m := &Matcher{comments: opts.CommentPrefixes}
	if m.comments == nil {
		m.comments = DefaultCommentPrefixes
	}
	for _, p := range patterns {
		if eligible(p, opts) {
			m.patterns = append(m.patterns, p)
		}
	}
	return m
}

func eligible(p *pattern.Pattern, opts Options) bool {
	if !p.Severity.AtLeast(opts.MinSeverity) {
		return false
	}
	if len(opts.Tags) == 0 {
		return true
	}
	return slices.ContainsFunc(p.Tags, func(t string) bool {
		return slices.Contains(opts.Tags, t)
	})
}

// Fingerprint identifies the eligible pattern set and comment rules; it
// changes whenever the result of analysing a line could change.
func (m *Matcher) Fingerprint() string {
	return pattern.Fingerprint(m.patterns) + ";" + strings.Join(m.comments, "\x1f")
}

// Len is the number of eligible patterns.
func (m *Matcher) Len() int { return len(m.patterns) }

// Patterns returns the eligible patterns in load order.
func (m *Matcher) Patterns() []*pattern.Pattern { return slices.Clone(m.patterns) }

// Skip reports whether a trimmed line is blank or a comment.
func (m *Matcher) Skip(trimmed string) bool {
	if trimmed == "" {
		return true
	}
	for _, c := range m.comments {
		if c != "" && strings.HasPrefix(trimmed, c) {
			return true
		}
	}
	return false
}

// AnalyzeLine returns every eligible match on text, in pattern order. The
// recorded line is the trimmed text.
func (m *Matcher) AnalyzeLine(text string) []result.Match {
	line := strings.TrimSpace(text)
	if m.Skip(line) {
		return nil
	}
	var out []result.Match
	for _, p := range m.patterns {
		if p.Match(line) {
			out = append(out, result.NewMatch(line, p))
		}
	}
	return out
}

// AnalyzeFirst returns the first eligible match on text.
func (m *Matcher) AnalyzeFirst(text string) (result.Match, bool) {
	line := strings.TrimSpace(text)
	if m.Skip(line) {
		return result.Match{}, false
	}
	for _, p := range m.patterns {
		if p.Match(line) {
			return result.NewMatch(line, p), true
		}
	}
	return result.Match{}, false
}
