package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"quantum/internal/cache"
	"quantum/internal/config"
	"quantum/internal/fix"
	"quantum/internal/match"
	"quantum/internal/observ"
	"quantum/internal/pattern"
	"quantum/internal/pattern/builtin"
	"quantum/internal/result"
	"quantum/internal/scan"
	"quantum/internal/source"
	"quantum/internal/version"
)

type analyzeFlags struct {
	config      string
	patterns    []string
	output      string
	format      string
	severity    string
	tags        []string
	sequential  bool
	threads     int
	exts        []string
	fix         bool
	fixPatterns []string
	strict      bool
	cache       bool
	cacheDir    string
	ui          string
}

func newAnalyzeCmd() *cobra.Command {
	var f analyzeFlags
	cmd := &cobra.Command{
		Use:   "analyze [flags] <path>",
		Short: "Match project sources against improvement patterns",
		Long: `Scan every Python file under <path>, match each line against the loaded
patterns and write the suggestions as JSON and/or Markdown.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args[0], &f)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&f.config, "config", "c", "", "path to configuration file")
	flags.StringSliceVarP(&f.patterns, "patterns", "p", nil, "YAML files containing regex patterns and improvement ideas")
	flags.StringVarP(&f.output, "output", "o", "", "path where to save the analysis results")
	flags.StringVarP(&f.format, "format", "f", "", "output format (json|md|markdown|both)")
	flags.StringVarP(&f.severity, "severity", "s", "", "minimum severity level to include (info|warning|critical)")
	flags.StringSliceVarP(&f.tags, "tags", "t", nil, "only include patterns with these tags")
	flags.BoolVar(&f.sequential, "sequential", false, "analyze files sequentially")
	flags.IntVar(&f.threads, "threads", 0, "number of workers (0 = CPU count)")
	flags.StringSliceVar(&f.exts, "ext", nil, "file extensions to analyze (default .py)")
	flags.BoolVar(&f.fix, "fix", false, "apply auto-fixes after the analysis")
	flags.StringSliceVar(&f.fixPatterns, "fix-patterns", nil, "fixers to apply with --fix")
	flags.BoolVar(&f.strict, "strict", false, "skip rewrites that would drop format specs or placeholders")
	flags.BoolVar(&f.cache, "cache", false, "reuse results of unchanged files")
	flags.StringVar(&f.cacheDir, "cache-dir", "", "cache directory (default $XDG_CACHE_HOME/quantum)")
	flags.StringVar(&f.ui, "ui", "", "progress UI (auto|on|off; default from config or QA_UI)")
	return cmd
}

// mergeAnalyzeFlags copies explicitly set flags over the config.
func mergeAnalyzeFlags(cmd *cobra.Command, cfg *config.Config, f *analyzeFlags) {
	flags := cmd.Flags()
	if flags.Changed("patterns") {
		cfg.Patterns = f.patterns
	}
	if flags.Changed("output") {
		cfg.Output = f.output
	}
	if flags.Changed("format") {
		cfg.Format = f.format
	}
	if flags.Changed("severity") {
		cfg.Severity = f.severity
	}
	if flags.Changed("tags") {
		cfg.Tags = f.tags
	}
	if flags.Changed("sequential") && f.sequential {
		cfg.Parallel = false
	}
	if flags.Changed("threads") {
		cfg.Threads = f.threads
	}
	if flags.Changed("ext") {
		cfg.Extensions = f.exts
	}
	if flags.Changed("fix") {
		cfg.Fix = f.fix
	}
	if flags.Changed("fix-patterns") {
		cfg.FixPatterns = f.fixPatterns
	}
	if flags.Changed("strict") {
		cfg.Strict = f.strict
	}
	if flags.Changed("cache") {
		cfg.Cache = f.cache
	}
	if flags.Changed("cache-dir") {
		cfg.CacheDir = f.cacheDir
	}
	if flags.Changed("ui") {
		cfg.UI = f.ui
	}
}

func runAnalyze(cmd *cobra.Command, root string, f *analyzeFlags) error {
	start := time.Now()
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	quiet := boolFlag(cmd, "quiet")

	cleanup, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg, err := loadConfig(f.config)
	if err != nil {
		return err
	}
	mergeAnalyzeFlags(cmd, &cfg, f)
	if err := cfg.Validate(); err != nil {
		return err
	}
	mode, err := readUIMode(cfg.UI)
	if err != nil {
		return err
	}
	log, err := newLogger(cmd, cfg.Logging)
	if err != nil {
		return err
	}
	if cfg.Path != "" {
		log.Debug("config loaded", "path", cfg.Path)
	}

	if !quiet {
		fmt.Fprintf(out, "%s v%s\n", version.Tool, version.Colored())
		fmt.Fprintf(out, "Started at: %s\n", start.Format(time.DateTime))
		fmt.Fprintln(out, strings.Repeat("-", 60))
	}

	if err := checkProjectPath(root); err != nil {
		return err
	}

	// фиксеры проверяем до анализа, чтобы не сканировать впустую
	var fixers *fix.Registry
	if cfg.Fix && len(cfg.FixPatterns) > 0 {
		fixers = fix.Builtin(fix.WithStrict(cfg.Strict))
		if _, err := fixers.Resolve(cfg.FixPatterns); err != nil {
			return err
		}
	}

	timer := observ.NewTimer()
	done := timer.Track("load patterns")
	patterns, origin, err := loadPatterns(log, cfg.Patterns)
	if err != nil {
		return err
	}
	done(fmt.Sprintf("%d patterns", len(patterns)))
	if !quiet {
		fmt.Fprintf(out, "Loaded %d patterns from %s\n", len(patterns), origin)
	}
	if len(patterns) == 0 {
		log.Warn("no patterns loaded, nothing will match")
	}

	matcher := match.New(patterns, match.Options{MinSeverity: cfg.MinSeverity(), Tags: cfg.Tags})
	opts := scan.Options{Extensions: cfg.Extensions, Jobs: cfg.Jobs(), Logger: log}
	if cfg.Cache {
		if dc, err := openCache(cfg.CacheDir); err != nil {
			log.Warn("cache disabled", "err", err)
		} else {
			opts.Cache = dc
			defer func() {
				hits, misses := dc.Stats()
				log.Debug("cache stats", "dir", dc.Dir(), "hits", hits, "misses", misses)
			}()
		}
	}
	scanner := scan.New(matcher, opts)

	done = timer.Track("scan")
	plan, err := scanner.Plan(root)
	if err != nil {
		return err
	}
	var store *result.Store
	if shouldUseTUI(mode, quiet, isTerminal(os.Stdout)) {
		store, err = runScanWithUI(ctx, "Analyzing "+root, scanner, plan)
	} else {
		store, err = scanner.Run(ctx, plan)
	}
	done(fmt.Sprintf("%d files", len(plan.Files)))
	if err != nil {
		return err
	}

	done = timer.Track("write reports")
	if err := writeReports(out, store, &cfg, start, quiet); err != nil {
		return err
	}
	done("")
	if !quiet {
		printSummary(out, store.Summary())
	}

	if fixers != nil {
		done = timer.Track("fix")
		err := runAnalyzeFixes(cmd, root, fixers, &cfg, log)
		done("")
		if err != nil {
			return err
		}
	}

	if !quiet {
		fmt.Fprintf(out, "\nAnalysis completed in %.2f seconds\n", time.Since(start).Seconds())
	}
	if boolFlag(cmd, "timings") {
		fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
	}
	return nil
}

// loadPatterns returns the built-in tables when no files are configured.
func loadPatterns(log *slog.Logger, paths []string) ([]*pattern.Pattern, string, error) {
	if len(paths) == 0 {
		ps, err := builtin.Patterns()
		if err != nil {
			return nil, "", fmt.Errorf("builtin patterns: %w", err)
		}
		return ps, fmt.Sprintf("builtin tables (version %s)", builtin.Version), nil
	}
	ps, rep := pattern.LoadFiles(log, paths...)
	origin := fmt.Sprintf("%d files", rep.Files)
	if len(rep.Failed) > 0 || rep.Rejected > 0 {
		origin += fmt.Sprintf(" (%d unreadable, %d rules rejected)", len(rep.Failed), rep.Rejected)
	}
	return ps, origin, nil
}

func openCache(dir string) (*cache.DiskCache, error) {
	if dir == "" {
		return cache.OpenDefault(version.Tool)
	}
	return cache.Open(dir)
}

func writeReports(out io.Writer, store *result.Store, cfg *config.Config, at time.Time, quiet bool) error {
	jsonPath, mdPath := cfg.OutputPaths()
	if jsonPath != "" {
		if err := ensureDir(jsonPath); err != nil {
			return err
		}
		if err := store.SaveJSON(jsonPath); err != nil {
			return err
		}
		if !quiet {
			fmt.Fprintf(out, "Results saved as JSON: %s\n", jsonPath)
		}
	}
	if mdPath != "" {
		if err := ensureDir(mdPath); err != nil {
			return err
		}
		if err := store.SaveMarkdown(mdPath, at); err != nil {
			return err
		}
		if !quiet {
			fmt.Fprintf(out, "Results saved as Markdown: %s\n", mdPath)
		}
	}
	return nil
}

// checkProjectPath keeps the underlying stat error so permission problems
// are not reported as a missing path.
func checkProjectPath(root string) error {
	_, err := os.Stat(root)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("project path %s does not exist: %w", root, err)
	default:
		return fmt.Errorf("project path %s: %w", root, err)
	}
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func runAnalyzeFixes(cmd *cobra.Command, root string, fixers *fix.Registry, cfg *config.Config, log *slog.Logger) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "\nApplying fixes...")
	changes, err := fix.ApplyTree(cmd.Context(), root, cfg.FixPatterns, fixers, fix.Options{
		Extensions: cfg.Extensions,
		Jobs:       cfg.Jobs(),
		Logger:     log,
	})
	if err != nil {
		return err
	}
	base := root
	if info, err := os.Stat(root); err == nil && !info.IsDir() {
		base = filepath.Dir(root)
	}
	for _, c := range changes {
		switch {
		case c.Err != nil:
			fmt.Fprintf(cmd.ErrOrStderr(), "Failed to fix %s: %v\n", relTo(c.Path, base), c.Err)
		case c.Persisted:
			fmt.Fprintf(out, "Applied %d fixes to %s\n", c.Rewrites, relTo(c.Path, base))
		}
	}
	_, persisted := fix.Totals(changes)
	fmt.Fprintf(out, "\nTotal fixes applied: %d\n", persisted)
	return nil
}

func relTo(path, base string) string {
	rel, err := source.RelativePath(path, base)
	if err != nil {
		return path
	}
	return rel
}
