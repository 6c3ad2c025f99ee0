package result

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"quantum/internal/pattern"
)

type matchJSON struct {
	Line     string           `json:"line"`
	Ideas    []string         `json:"ideas"`
	Severity pattern.Severity `json:"severity"`
	Tags     []string         `json:"tags"`
}

// MarshalJSON renders {"path": {"line": {line, ideas, severity, tags}}}
// with paths sorted and line keys in numeric order.
func (s *Store) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, fe := range s.ToSerializable() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(&buf, fe.Path); err != nil {
			return nil, err
		}
		buf.WriteByte('{')
		for j, le := range fe.Lines {
			if j > 0 {
				buf.WriteByte(',')
			}
			if err := writeKey(&buf, strconv.Itoa(le.Number)); err != nil {
				return nil, err
			}
			v := matchJSON{
				Line:     le.Line,
				Ideas:    nonNil(le.Ideas),
				Severity: le.Severity,
				Tags:     nonNil(le.Tags),
			}
			b, err := marshal(v)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %w", fe.Path, le.Number, err)
			}
			buf.Write(b)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// WriteJSON writes the report with two-space indentation.
func (s *Store) WriteJSON(w io.Writer) error {
	raw, err := s.MarshalJSON()
	if err != nil {
		return err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return err
	}
	out.WriteByte('\n')
	_, err = w.Write(out.Bytes())
	return err
}

func (s *Store) SaveJSON(path string) error {
	return saveWith(path, s.WriteJSON)
}

func writeKey(buf *bytes.Buffer, key string) error {
	b, err := marshal(key)
	if err != nil {
		return err
	}
	buf.Write(b)
	buf.WriteByte(':')
	return nil
}

// marshal is json.Marshal without HTML escaping, so that `<` in source
// lines stays readable.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func saveWith(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if err := write(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
