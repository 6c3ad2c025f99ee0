package fix

import (
	"fmt"
	"slices"
	"strings"
)

// NotFoundError names a fixer id that is not registered.
type NotFoundError struct {
	ID    string
	Known []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("fixer %q not found (known: %s)", e.ID, strings.Join(e.Known, ", "))
}

// Registry maps fixer ids to fixers.
type Registry struct {
	fixers map[string]Fixer
}

func NewRegistry(fixers ...Fixer) *Registry {
	r := &Registry{fixers: make(map[string]Fixer, len(fixers))}
	for _, f := range fixers {
		r.fixers[f.ID()] = f
	}
	return r
}

// Option mutates builtin fixers during registry construction.
type Option func(*FormatToFString)

// WithStrict makes FormatToFString skip sites it could only rewrite lossily.
func WithStrict(strict bool) Option {
	return func(f *FormatToFString) {
		f.Strict = strict
	}
}

// Builtin returns a registry with every fixer shipped with quantum.
func Builtin(opts ...Option) *Registry {
	ff := FormatToFString{}
	for _, opt := range opts {
		if opt != nil {
			opt(&ff)
		}
	}
	return NewRegistry(ff)
}

// IDs returns the registered ids, sorted.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.fixers))
	for id := range r.fixers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Lookup returns the fixer registered under id.
func (r *Registry) Lookup(id string) (Fixer, error) {
	f, ok := r.fixers[id]
	if !ok {
		return nil, &NotFoundError{ID: id, Known: r.IDs()}
	}
	return f, nil
}

// Resolve looks up every id in order; an empty list selects all fixers.
// It fails on the first unknown id.
func (r *Registry) Resolve(ids []string) ([]Fixer, error) {
	if len(ids) == 0 {
		ids = r.IDs()
	}
	out := make([]Fixer, 0, len(ids))
	for _, id := range ids {
		f, err := r.Lookup(id)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}
