package pattern

import (
	"errors"
	"fmt"
)

// ValidationError rejects a single rule entry. The rest of its document is
// still loaded.
type ValidationError struct {
	Source string // имя документа или путь к файлу
	Regex  string
	Line   int
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	loc := e.Source
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", e.Source, e.Line)
	}
	msg := fmt.Sprintf("%s: pattern %q: %s", loc, e.Regex, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ValidationErrors flattens an error produced by Load into its entries.
func ValidationErrors(err error) []*ValidationError {
	if err == nil {
		return nil
	}
	var out []*ValidationError
	var ve *ValidationError
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			out = append(out, ValidationErrors(e)...)
		}
		return out
	}
	if errors.As(err, &ve) {
		out = append(out, ve)
	}
	return out
}
