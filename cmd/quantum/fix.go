package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"quantum/internal/fix"
)

type fixFlags struct {
	fixers  []string
	strict  bool
	dryRun  bool
	threads int
	exts    []string
	list    bool
}

func newFixCmd() *cobra.Command {
	var f fixFlags
	cmd := &cobra.Command{
		Use:   "fix [flags] <file.py|directory>",
		Short: "Rewrite sources with the registered fixers",
		Long:  "Apply syntax-level rewrites (currently str.format to f-string) to a file or every Python file of a directory.",
		Args: func(cmd *cobra.Command, args []string) error {
			if f.list {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.list {
				return listFixers(cmd.OutOrStdout())
			}
			return runFix(cmd, args[0], &f)
		},
	}
	flags := cmd.Flags()
	flags.StringSliceVar(&f.fixers, "fixer", nil, "fixer ids to apply (default: all)")
	flags.BoolVar(&f.strict, "strict", false, "skip rewrites that would drop format specs or placeholders")
	flags.BoolVar(&f.dryRun, "dry-run", false, "report rewrites without writing files")
	flags.IntVar(&f.threads, "threads", 0, "number of workers (0 = CPU count)")
	flags.StringSliceVar(&f.exts, "ext", nil, "file extensions to rewrite (default .py)")
	flags.BoolVar(&f.list, "list", false, "list available fixers and exit")
	return cmd
}

func listFixers(out io.Writer) error {
	reg := fix.Builtin()
	for _, id := range reg.IDs() {
		f, err := reg.Lookup(id)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s  %s\n", runewidth.FillRight(id, 20), f.Title())
	}
	return nil
}

func runFix(cmd *cobra.Command, target string, f *fixFlags) error {
	cleanup, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg, err := loadConfig("")
	if err != nil {
		return err
	}
	log, err := newLogger(cmd, cfg.Logging)
	if err != nil {
		return err
	}
	if _, err := os.Stat(target); err != nil {
		return fmt.Errorf("fix: %w", err)
	}

	strict := cfg.Strict
	if cmd.Flags().Changed("strict") {
		strict = f.strict
	}
	jobs := cfg.Jobs()
	if cmd.Flags().Changed("threads") {
		jobs = f.threads
	}
	exts := cfg.Extensions
	if cmd.Flags().Changed("ext") {
		exts = f.exts
	}

	reg := fix.Builtin(fix.WithStrict(strict))
	changes, err := fix.ApplyTree(cmd.Context(), target, f.fixers, reg, fix.Options{
		Extensions: exts,
		DryRun:     f.dryRun,
		Jobs:       jobs,
		Logger:     log,
	})
	if err != nil {
		return fmt.Errorf("fix: %w", err)
	}

	base := target
	if info, err := os.Stat(target); err == nil && !info.IsDir() {
		base = filepath.Dir(target)
	}
	return reportFixes(cmd.OutOrStdout(), changes, base, f.dryRun, boolFlag(cmd, "quiet"))
}

func reportFixes(out io.Writer, changes []fix.FileChange, base string, dryRun, quiet bool) error {
	var updated, skipped, unparsable []fix.FileChange
	for _, c := range changes {
		if c.Rewrites > 0 && c.Err == nil {
			updated = append(updated, c)
		}
		if len(c.Skipped) > 0 {
			skipped = append(skipped, c)
		}
		if c.ParseErr != nil {
			unparsable = append(unparsable, c)
		}
	}

	if len(updated) > 0 {
		header := "Updated files:"
		if dryRun {
			header = "Would update:"
		}
		fmt.Fprintln(out, header)
		for _, c := range updated {
			fmt.Fprintf(out, "  %s (%d rewrites)\n", relTo(c.Path, base), c.Rewrites)
		}
	}
	if len(skipped) > 0 && !quiet {
		fmt.Fprintln(out, "Skipped sites:")
		for _, c := range skipped {
			for _, s := range c.Skipped {
				fmt.Fprintf(out, "  %s:%d [%s]: %s\n", relTo(c.Path, base), s.Line, s.Fixer, s.Reason)
			}
		}
	}
	if len(unparsable) > 0 && !quiet {
		fmt.Fprintln(out, "Left untouched (cannot parse):")
		for _, c := range unparsable {
			fmt.Fprintf(out, "  %s: %v\n", relTo(c.Path, base), c.ParseErr)
		}
	}

	err := fix.Outcome(changes)
	if errors.Is(err, fix.ErrNoFixes) {
		fmt.Fprintln(out, "No applicable fixes found.")
		return nil
	}
	if err != nil {
		return err
	}
	rewrites, persisted := fix.Totals(changes)
	if dryRun {
		fmt.Fprintf(out, "Total rewrites: %d (dry run, nothing written)\n", rewrites)
		return nil
	}
	fmt.Fprintf(out, "Total fixes applied: %d\n", persisted)
	return nil
}
