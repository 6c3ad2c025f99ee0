package pattern

import (
	"fmt"
	"strings"
)

// Severity is an ordinal classification of a suggestion: Info < Warning < Critical.
type Severity uint8

const (
	Info Severity = iota
	Warning
	Critical
)

var severityNames = [...]string{
	Info:     "info",
	Warning:  "warning",
	Critical: "critical",
}

func (s Severity) String() string {
	if int(s) < len(severityNames) {
		return severityNames[s]
	}
	return fmt.Sprintf("severity(%d)", uint8(s))
}

// Rank returns the ordinal used for threshold comparisons.
func (s Severity) Rank() int { return int(s) }

// AtLeast reports whether s is not below min.
func (s Severity) AtLeast(min Severity) bool { return s.Rank() >= min.Rank() }

// ParseSeverity accepts the canonical lower-case names; surrounding spaces
// and case are ignored.
func ParseSeverity(text string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "info":
		return Info, nil
	case "warning":
		return Warning, nil
	case "critical":
		return Critical, nil
	}
	return Info, fmt.Errorf("unknown severity %q (want info, warning or critical)", text)
}

// Severities lists all levels in ascending order.
func Severities() []Severity { return []Severity{Info, Warning, Critical} }

func (s Severity) MarshalText() ([]byte, error) {
	if int(s) >= len(severityNames) {
		return nil, fmt.Errorf("invalid severity %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	v, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
