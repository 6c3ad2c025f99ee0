package pattern

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Rule is the value side of a rule document entry. It is either
// ShorthandIdeas or StructuredRule; the shape is decided once, at parse time.
type Rule interface {
	isRule()
}

// ShorthandIdeas is `regex: [idea, ...]`: severity info, no tags.
type ShorthandIdeas []string

// StructuredRule is `regex: {severity, tags, ideas}`.
type StructuredRule struct {
	Severity string   `yaml:"severity,omitempty"`
	Tags     []string `yaml:"tags"`
	Ideas    []string `yaml:"ideas"`
}

func (ShorthandIdeas) isRule() {}
func (StructuredRule) isRule() {}

// Entry is one regex with its rule. Err is set when the value had neither
// supported shape; such entries fail validation in Load.
type Entry struct {
	Regex string
	Rule  Rule
	Line  int
	Err   error
}

// Document is a parsed rule file; entries keep file order.
type Document struct {
	Name    string
	Entries []Entry
}

// ErrNotMapping is returned for documents whose top level is not a mapping.
var ErrNotMapping = errors.New("rule document must be a mapping of regex to rule")

// ParseDocument parses YAML rule definitions. An error means the whole
// document is unusable; problems with single entries are reported later by
// Load.
func ParseDocument(name string, data []byte) (Document, error) {
	doc := Document{Name: name}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return doc, fmt.Errorf("parse %s: %w", name, err)
	}
	if root.Kind == 0 {
		// пустой файл
		return doc, nil
	}
	top := &root
	if top.Kind == yaml.DocumentNode {
		if len(top.Content) == 0 {
			return doc, nil
		}
		top = top.Content[0]
	}
	if top.Kind == yaml.ScalarNode && top.Tag == "!!null" {
		return doc, nil
	}
	if top.Kind != yaml.MappingNode {
		return doc, fmt.Errorf("parse %s: %w", name, ErrNotMapping)
	}

	for i := 0; i+1 < len(top.Content); i += 2 {
		key, val := top.Content[i], top.Content[i+1]
		entry := Entry{Regex: key.Value, Line: key.Line}
		if key.Kind != yaml.ScalarNode {
			entry.Err = errors.New("regex must be a string")
			doc.Entries = append(doc.Entries, entry)
			continue
		}
		entry.Rule, entry.Err = decodeRule(val)
		doc.Entries = append(doc.Entries, entry)
	}
	return doc, nil
}

func decodeRule(val *yaml.Node) (Rule, error) {
	switch val.Kind {
	case yaml.SequenceNode:
		var ideas []string
		if err := val.Decode(&ideas); err != nil {
			return nil, fmt.Errorf("ideas: %w", err)
		}
		return ShorthandIdeas(ideas), nil
	case yaml.MappingNode:
		var rule StructuredRule
		if err := val.Decode(&rule); err != nil {
			return nil, err
		}
		if rule.Ideas == nil {
			return nil, errors.New("structured rule has no ideas")
		}
		return rule, nil
	default:
		return nil, fmt.Errorf("expected a list of ideas or a mapping, got %s", nodeKind(val))
	}
}

func nodeKind(n *yaml.Node) string {
	switch n.Kind {
	case yaml.ScalarNode:
		return "scalar " + n.Tag
	case yaml.AliasNode:
		return "alias"
	case yaml.DocumentNode:
		return "document"
	}
	return "node"
}
