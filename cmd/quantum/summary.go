package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"quantum/internal/pattern"
	"quantum/internal/result"
)

var severityColors = map[pattern.Severity]*color.Color{
	pattern.Info:     color.New(color.FgCyan),
	pattern.Warning:  color.New(color.FgYellow),
	pattern.Critical: color.New(color.FgRed, color.Bold),
}

func severityLabel(sev pattern.Severity, width int) string {
	label := runewidth.FillRight(sev.String(), width)
	if c, ok := severityColors[sev]; ok {
		return c.Sprint(label)
	}
	return label
}

func printSummary(out io.Writer, sum result.Summary) {
	if sum.Matches == 0 {
		fmt.Fprintln(out, "\nNo suggestions found.")
		return
	}
	fmt.Fprintf(out, "\nFound %d suggestions in %d files\n", sum.Matches, sum.Files)
	sevs := pattern.Severities()
	for i := len(sevs) - 1; i >= 0; i-- {
		n := sum.BySeverity[sevs[i]]
		if n == 0 {
			continue
		}
		fmt.Fprintf(out, "  %s %d\n", severityLabel(sevs[i], 10), n)
	}
}
