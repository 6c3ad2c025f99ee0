package scan

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"fortio.org/safecast"

	"quantum/internal/cache"
	"quantum/internal/match"
	"quantum/internal/result"
	"quantum/internal/source"
	"quantum/internal/workpool"
)

// Cache stores file results across runs. *cache.DiskCache implements it.
type Cache interface {
	Get(key cache.Key) (result.FileResult, bool, error)
	Put(key cache.Key, fr result.FileResult) error
}

type Options struct {
	Extensions []string
	// Jobs bounds the number of files analysed at once; 0 means GOMAXPROCS,
	// 1 analyses files sequentially.
	Jobs     int
	Logger   *slog.Logger
	Progress ProgressSink
	Cache    Cache
}

// Scanner analyses every matching file of a project with one matcher.
type Scanner struct {
	matcher *match.Matcher
	opts    Options
	fp      string
}

func New(m *match.Matcher, opts Options) *Scanner {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	s := &Scanner{matcher: m, opts: opts}
	if opts.Cache != nil {
		s.fp = m.Fingerprint()
	}
	return s
}

// WithProgress returns a copy of s reporting to sink.
func (s *Scanner) WithProgress(sink ProgressSink) *Scanner {
	c := *s
	c.opts.Progress = sink
	return &c
}

// Plan is the list of files a scan will visit.
type Plan struct {
	Base  string
	Files []string
	// Rel holds Files relative to Base in slash form; results are keyed by it.
	Rel []string
}

// NewPlan builds a plan for an explicit file list.
func NewPlan(base string, files []string) Plan {
	p := Plan{Base: base, Files: files, Rel: make([]string, len(files))}
	for i, path := range files {
		rel, err := source.RelativePath(path, base)
		if err != nil {
			rel = filepath.ToSlash(path)
		}
		p.Rel[i] = rel
	}
	return p
}

// Plan discovers files under root. Paths are made relative to root, or to
// root's directory when root is a file.
func (s *Scanner) Plan(root string) (Plan, error) {
	files, err := Discover(root, s.opts.Extensions)
	if err != nil {
		return Plan{}, err
	}
	base := root
	if info, err := os.Stat(root); err == nil && !info.IsDir() {
		base = filepath.Dir(root)
	}
	return NewPlan(base, files), nil
}

// Scan is Plan followed by Run.
func (s *Scanner) Scan(ctx context.Context, root string) (*result.Store, error) {
	plan, err := s.Plan(root)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx, plan)
}

// Run analyses every file of plan. A file that cannot be read or decoded
// is logged and contributes nothing; only cancellation is returned as an
// error, together with the results gathered so far.
func (s *Scanner) Run(ctx context.Context, plan Plan) (*result.Store, error) {
	store := result.NewStore()
	log := s.opts.Logger

	for _, rel := range plan.Rel {
		emit(s.opts.Progress, Event{File: rel, Stage: StageRead, Status: StatusQueued})
	}

	log.Debug("scan started", "root", plan.Base, "files", len(plan.Files), "jobs", workpool.Size(s.opts.Jobs))
	_, err := workpool.Map(ctx, s.opts.Jobs, plan.Files, func(_ context.Context, i int, path string) (struct{}, error) {
		rel := plan.Rel[i]
		start := time.Now()
		emit(s.opts.Progress, Event{File: rel, Stage: StageRead, Status: StatusWorking})

		fr, cached, err := s.analyze(path, rel)
		if err != nil {
			log.Warn("cannot analyse file", "path", rel, "err", err)
			emit(s.opts.Progress, Event{File: rel, Stage: StageRead, Status: StatusError, Err: err, Elapsed: time.Since(start)})
			return struct{}{}, nil
		}
		store.Add(rel, fr)
		emit(s.opts.Progress, Event{
			File:    rel,
			Stage:   StageMatch,
			Status:  StatusDone,
			Elapsed: time.Since(start),
			Matches: len(fr),
			Cached:  cached,
		})
		return struct{}{}, nil
	})
	if err != nil {
		return store, fmt.Errorf("scan %s: %w", plan.Base, err)
	}
	emit(s.opts.Progress, Event{Stage: StageMatch, Status: StatusDone})
	log.Debug("scan finished", "root", plan.Base, "files_with_matches", store.Len())
	return store, nil
}

// analyze reads path on its own so a file's text is released as soon as
// its matches are extracted.
func (s *Scanner) analyze(path, rel string) (result.FileResult, bool, error) {
	file, err := source.ReadText(path)
	if err != nil {
		return nil, false, err
	}

	var key cache.Key
	if s.opts.Cache != nil {
		key = cache.KeyFor(file.Hash, s.fp)
		fr, ok, err := s.opts.Cache.Get(key)
		if err != nil {
			s.opts.Logger.Warn("cache read failed", "path", rel, "err", err)
		} else if ok {
			return fr, true, nil
		}
	}

	fr, err := s.AnalyzeFile(file)
	if err != nil {
		return nil, false, err
	}
	if s.opts.Cache != nil {
		if err := s.opts.Cache.Put(key, fr); err != nil {
			s.opts.Logger.Warn("cache write failed", "path", rel, "err", err)
		}
	}
	return fr, false, nil
}

// AnalyzeFile runs the matcher over every line of file; the first
// qualifying pattern wins a line.
func (s *Scanner) AnalyzeFile(file *source.File) (result.FileResult, error) {
	fr := make(result.FileResult)
	n := file.LineCount()
	for i := 1; i <= n; i++ {
		lineNum, err := safecast.Conv[uint32](i)
		if err != nil {
			return nil, fmt.Errorf("%s: line number overflow: %w", file.Path, err)
		}
		if m, ok := s.matcher.AnalyzeFirst(file.GetLine(lineNum)); ok {
			fr[i] = m
		}
	}
	return fr, nil
}
