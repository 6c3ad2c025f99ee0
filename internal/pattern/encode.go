package pattern

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// EncodeDocument renders doc in structured form, one mapping per regex with
// severity, tags and ideas, in entry order.
func EncodeDocument(doc Document) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range doc.Entries {
		sev, tags, ideas, err := normalized(e.Rule)
		if err != nil {
			return nil, fmt.Errorf("encode %s: pattern %q: %w", doc.Name, e.Regex, err)
		}
		rule := &yaml.Node{Kind: yaml.MappingNode}
		rule.Content = append(rule.Content,
			scalar("severity"), scalar(sev),
			scalar("tags"), stringSeq(tags, yaml.FlowStyle),
			scalar("ideas"), stringSeq(ideas, 0),
		)
		root.Content = append(root.Content, scalar(e.Regex), rule)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, fmt.Errorf("encode %s: %w", doc.Name, err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DocumentFrom converts loaded patterns back into a structured document.
func DocumentFrom(name string, patterns []*Pattern) Document {
	doc := Document{Name: name}
	for _, p := range patterns {
		doc.Entries = append(doc.Entries, Entry{
			Regex: p.ID,
			Rule: StructuredRule{
				Severity: p.Severity.String(),
				Tags:     p.Tags,
				Ideas:    p.Ideas,
			},
		})
	}
	return doc
}

func normalized(r Rule) (string, []string, []string, error) {
	switch rule := r.(type) {
	case ShorthandIdeas:
		return Info.String(), nil, []string(rule), nil
	case StructuredRule:
		sev := Info
		if rule.Severity != "" {
			s, err := ParseSeverity(rule.Severity)
			if err != nil {
				return "", nil, nil, err
			}
			sev = s
		}
		return sev.String(), rule.Tags, rule.Ideas, nil
	}
	return "", nil, nil, fmt.Errorf("unsupported rule %T", r)
}

func scalar(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func stringSeq(items []string, style yaml.Style) *yaml.Node {
	n := &yaml.Node{Kind: yaml.SequenceNode, Style: style}
	for _, s := range items {
		n.Content = append(n.Content, scalar(s))
	}
	return n
}
