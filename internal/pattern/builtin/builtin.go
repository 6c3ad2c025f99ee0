// Package builtin ships the rule tables used when no pattern files are
// configured.
package builtin

import (
	_ "embed"
	"fmt"
	"slices"

	"quantum/internal/pattern"
)

// Version changes whenever a table below is edited.
const Version = "2"

const (
	Base     = "base"
	Extended = "extended"
)

var (
	//go:embed base.yaml
	baseYAML []byte
	//go:embed extended.yaml
	extendedYAML []byte
)

var tables = map[string][]byte{
	Base:     baseYAML,
	Extended: extendedYAML,
}

// Names lists the built-in tables in load order.
func Names() []string { return []string{Base, Extended} }

// Source returns the raw YAML of a table.
func Source(name string) ([]byte, error) {
	data, ok := tables[name]
	if !ok {
		return nil, fmt.Errorf("unknown builtin table %q (known: %v)", name, Names())
	}
	return slices.Clone(data), nil
}

// Document parses a built-in table. Every call returns a fresh value.
func Document(name string) (pattern.Document, error) {
	data, err := Source(name)
	if err != nil {
		return pattern.Document{}, err
	}
	return pattern.ParseDocument("builtin:"+name, data)
}

// Documents returns every table in Names order.
func Documents() ([]pattern.Document, error) {
	var docs []pattern.Document
	for _, name := range Names() {
		doc, err := Document(name)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Patterns compiles all tables.
func Patterns() ([]*pattern.Pattern, error) {
	docs, err := Documents()
	if err != nil {
		return nil, err
	}
	return pattern.Load(docs...)
}
