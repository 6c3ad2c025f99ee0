package result

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"quantum/internal/pattern"
)

var severityEmoji = map[pattern.Severity]string{
	pattern.Info:     "📝",
	pattern.Warning:  "⚠️",
	pattern.Critical: "🔥",
}

// WriteMarkdown renders the report as Markdown, one section per file.
func (s *Store) WriteMarkdown(w io.Writer, generatedAt time.Time) error {
	bw := bufio.NewWriter(w)
	fmt.Fprint(bw, "# Code Analysis Results\n\n")
	fmt.Fprintf(bw, "_Generated on %s_\n\n", generatedAt.Format(time.DateTime))

	for _, fe := range s.ToSerializable() {
		fmt.Fprintf(bw, "## %s\n\n", fe.Path)
		for _, le := range fe.Lines {
			emoji, ok := severityEmoji[le.Severity]
			if !ok {
				emoji = severityEmoji[pattern.Info]
			}
			fmt.Fprintf(bw, "### %s Line %d\n\n", emoji, le.Number)
			if len(le.Tags) > 0 {
				fmt.Fprintf(bw, "_Severity: %s · Tags: %s_\n\n", le.Severity, strings.Join(le.Tags, ", "))
			}
			fmt.Fprintf(bw, "```python\n%s\n```\n\n", le.Line)
			fmt.Fprint(bw, "#### Improvement Ideas\n\n")
			for _, idea := range le.Ideas {
				fmt.Fprintf(bw, "- %s\n", idea)
			}
			fmt.Fprint(bw, "\n")
		}
	}
	return bw.Flush()
}

func (s *Store) SaveMarkdown(path string, generatedAt time.Time) error {
	return saveWith(path, func(w io.Writer) error { return s.WriteMarkdown(w, generatedAt) })
}
