package pattern

import (
	"slices"
	"sync"
)

// Registry is an immutable, ordered set of patterns.
type Registry struct {
	patterns []*Pattern

	fpOnce sync.Once
	fp     string
}

func NewRegistry(patterns []*Pattern) *Registry {
	return &Registry{patterns: slices.Clone(patterns)}
}

// LoadRegistry compiles docs and wraps the accepted patterns. The returned
// error has the same meaning as in Load.
func LoadRegistry(docs ...Document) (*Registry, error) {
	ps, err := Load(docs...)
	return NewRegistry(ps), err
}

// Patterns returns the patterns in load order. The slice is a copy.
func (r *Registry) Patterns() []*Pattern { return slices.Clone(r.patterns) }

func (r *Registry) Len() int { return len(r.patterns) }

// Tags returns every tag used by the registry, sorted.
func (r *Registry) Tags() []string {
	var out []string
	for _, p := range r.patterns {
		for _, t := range p.Tags {
			if !slices.Contains(out, t) {
				out = append(out, t)
			}
		}
	}
	slices.Sort(out)
	return out
}

// Fingerprint is computed once per registry.
func (r *Registry) Fingerprint() string {
	r.fpOnce.Do(func() { r.fp = Fingerprint(r.patterns) })
	return r.fp
}
