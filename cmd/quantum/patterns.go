package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"quantum/internal/match"
	"quantum/internal/pattern"
	"quantum/internal/pattern/builtin"
)

type patternsFlags struct {
	files    []string
	builtin  string
	output   string
	severity string
	tags     []string
}

func newPatternsCmd() *cobra.Command {
	var f patternsFlags
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "Inspect and export pattern tables",
	}
	cmd.PersistentFlags().StringSliceVarP(&f.files, "patterns", "p", nil, "YAML pattern files (default: builtin tables)")
	cmd.PersistentFlags().StringVar(&f.builtin, "builtin", "", "builtin table to use (base|extended)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List loaded patterns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPatternsList(cmd, &f)
		},
	}
	list.Flags().StringVarP(&f.severity, "severity", "s", "info", "minimum severity level to show")
	list.Flags().StringSliceVarP(&f.tags, "tags", "t", nil, "only show patterns with these tags")

	export := &cobra.Command{
		Use:   "export",
		Short: "Write patterns as a structured YAML document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPatternsExport(cmd, &f)
		},
	}
	export.Flags().StringVarP(&f.output, "output", "o", "", "output file (default stdout)")

	cmd.AddCommand(list, export)
	return cmd
}

// selectDocuments resolves --patterns and --builtin into documents.
func selectDocuments(cmd *cobra.Command, f *patternsFlags) ([]pattern.Document, error) {
	if len(f.files) > 0 && f.builtin != "" {
		return nil, fmt.Errorf("--patterns and --builtin are mutually exclusive")
	}
	if len(f.files) > 0 {
		cfg, err := loadConfig("")
		if err != nil {
			return nil, err
		}
		log, err := newLogger(cmd, cfg.Logging)
		if err != nil {
			return nil, err
		}
		ps, _ := pattern.LoadFiles(log, f.files...)
		return []pattern.Document{pattern.DocumentFrom("patterns", ps)}, nil
	}
	if f.builtin != "" {
		doc, err := builtin.Document(f.builtin)
		if err != nil {
			return nil, err
		}
		return []pattern.Document{doc}, nil
	}
	return builtin.Documents()
}

func runPatternsList(cmd *cobra.Command, f *patternsFlags) error {
	docs, err := selectDocuments(cmd, f)
	if err != nil {
		return err
	}
	ps, err := pattern.Load(docs...)
	for _, ve := range pattern.ValidationErrors(err) {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning:", ve)
	}
	minSev, err := pattern.ParseSeverity(f.severity)
	if err != nil {
		return err
	}

	// тот же фильтр, что и в analyze
	m := match.New(ps, match.Options{MinSeverity: minSev, Tags: f.tags})

	out := cmd.OutOrStdout()
	width := terminalWidth(100)
	regexWidth := max(width-34, 20)
	for _, p := range m.Patterns() {
		tags := strings.Join(p.Tags, ",")
		if tags == "" {
			tags = "-"
		}
		fmt.Fprintf(out, "%s %s %s %d ideas\n",
			severityLabel(p.Severity, 9),
			runewidth.FillRight(runewidth.Truncate(tags, 12, "…"), 12),
			runewidth.FillRight(runewidth.Truncate(p.ID, regexWidth, "…"), regexWidth),
			len(p.Ideas))
	}
	if !boolFlag(cmd, "quiet") {
		fmt.Fprintf(out, "%d of %d patterns shown\n", m.Len(), len(ps))
	}
	return nil
}

func runPatternsExport(cmd *cobra.Command, f *patternsFlags) error {
	docs, err := selectDocuments(cmd, f)
	if err != nil {
		return err
	}
	merged := pattern.Document{Name: "export"}
	for _, d := range docs {
		merged.Entries = append(merged.Entries, d.Entries...)
	}
	data, err := pattern.EncodeDocument(merged)
	if err != nil {
		return err
	}
	if f.output == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := ensureDir(f.output); err != nil {
		return err
	}
	if err := os.WriteFile(f.output, data, 0o644); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if !boolFlag(cmd, "quiet") {
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d patterns to %s\n", len(merged.Entries), f.output)
	}
	return nil
}
