package fix

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"quantum/internal/scan"
	"quantum/internal/workpool"
)

// ErrNoFixes is returned when a run rewrote nothing.
var ErrNoFixes = errors.New("no applicable fixes found")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Fixer is a registered source transformation.
type Fixer interface {
	ID() string
	Title() string
	// Apply must not fail: unparsable input comes back unchanged with
	// Changes == 0.
	Apply(src []byte) Result
}

// Result is the outcome of running fixers over one text.
type Result struct {
	Text     []byte
	Changes  int
	Skipped  []Skip
	ParseErr error
}

// Skip records a site a fixer recognised but left untouched.
type Skip struct {
	Fixer  string
	Line   int
	Reason string
}

// FileChange summarises one file. Rewrites counts changes made in memory;
// they reach the disk only when Persisted is true.
type FileChange struct {
	Path      string
	Rewrites  int
	Persisted bool
	Skipped   []Skip
	ParseErr  error
	Err       error
}

// Options configures file application.
type Options struct {
	// Extensions limits which files are touched; empty means scan.DefaultExtensions.
	Extensions []string
	// DryRun computes changes without writing.
	DryRun bool
	Jobs   int
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// ApplyText runs fixers in sequence, each one over the output of the
// previous. A leading UTF-8 BOM is kept aside and restored.
func ApplyText(src []byte, fixers []Fixer) Result {
	bom := bytes.HasPrefix(src, utf8BOM)
	text := bytes.TrimPrefix(src, utf8BOM)

	total := Result{Text: text}
	for _, f := range fixers {
		r := f.Apply(total.Text)
		total.Text = r.Text
		total.Changes += r.Changes
		total.Skipped = append(total.Skipped, r.Skipped...)
		if r.ParseErr != nil && total.ParseErr == nil {
			total.ParseErr = r.ParseErr
		}
	}
	if total.Changes == 0 {
		total.Text = src
		return total
	}
	if bom {
		total.Text = append(slices.Clone(utf8BOM), total.Text...)
	}
	return total
}

// ApplyFile applies the fixers named by ids to one file. Unknown ids fail
// with *NotFoundError before the file is read. Files whose extension is not
// configured are left alone. I/O failures are reported in FileChange.Err.
func ApplyFile(path string, ids []string, reg *Registry, opts Options) (FileChange, error) {
	fixers, err := reg.Resolve(ids)
	if err != nil {
		return FileChange{Path: path}, err
	}
	return applyFile(path, fixers, opts), nil
}

func applyFile(path string, fixers []Fixer, opts Options) FileChange {
	change := FileChange{Path: path}
	if !scan.HasExtension(path, opts.Extensions) {
		return change
	}

	info, err := os.Stat(path)
	if err != nil {
		change.Err = fmt.Errorf("stat %s: %w", path, err)
		return change
	}
	src, err := os.ReadFile(path)
	if err != nil {
		change.Err = fmt.Errorf("read %s: %w", path, err)
		return change
	}

	res := ApplyText(src, fixers)
	change.Rewrites = res.Changes
	change.Skipped = res.Skipped
	change.ParseErr = res.ParseErr
	if res.Changes == 0 || opts.DryRun {
		return change
	}

	if err := os.WriteFile(path, res.Text, info.Mode().Perm()); err != nil {
		change.Err = fmt.Errorf("write %s: %w", path, err)
		return change
	}
	change.Persisted = true
	return change
}

// ApplyTree applies fixers to every matching file under root (or to root
// itself when it is a file) on a worker pool. Changes come back sorted by
// path. A failing file never stops the others.
func ApplyTree(ctx context.Context, root string, ids []string, reg *Registry, opts Options) ([]FileChange, error) {
	fixers, err := reg.Resolve(ids)
	if err != nil {
		return nil, err
	}
	files, err := scan.Discover(root, opts.Extensions)
	if err != nil {
		return nil, err
	}

	log := opts.logger()
	changes, err := workpool.Map(ctx, opts.Jobs, files, func(_ context.Context, _ int, path string) (FileChange, error) {
		c := applyFile(path, fixers, opts)
		switch {
		case c.Err != nil:
			log.Error("fix failed", "path", path, "err", c.Err)
		case c.ParseErr != nil:
			log.Debug("fix skipped unparsable file", "path", path, "err", c.ParseErr)
		case c.Rewrites > 0:
			log.Debug("fixed", "path", path, "rewrites", c.Rewrites, "persisted", c.Persisted)
		}
		return c, nil
	})
	if err != nil {
		return changes, err
	}
	slices.SortFunc(changes, func(a, b FileChange) int { return strings.Compare(a.Path, b.Path) })
	return changes, nil
}

// Totals sums rewrites across changes; persisted counts only rewrites that
// were written to disk.
func Totals(changes []FileChange) (rewrites, persisted int) {
	for _, c := range changes {
		rewrites += c.Rewrites
		if c.Persisted {
			persisted += c.Rewrites
		}
	}
	return rewrites, persisted
}

// Outcome summarises a run as an error: write failures joined together,
// ErrNoFixes when nothing was rewritten, nil otherwise.
func Outcome(changes []FileChange) error {
	var (
		errs     []error
		rewrites int
	)
	for _, c := range changes {
		rewrites += c.Rewrites
		if c.Err != nil {
			errs = append(errs, c.Err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	if rewrites == 0 {
		return ErrNoFixes
	}
	return nil
}
