// Package result aggregates per-file analysis matches and renders reports.
package result

import (
	"path/filepath"
	"slices"
	"sync"

	"quantum/internal/pattern"
)

// Match is a snapshot of a pattern hit on one line. Slices are owned by the
// Match and never shared with the pattern.
type Match struct {
	Line     string
	Ideas    []string
	Severity pattern.Severity
	Tags     []string
}

// NewMatch copies what is needed from p.
func NewMatch(line string, p *pattern.Pattern) Match {
	return Match{
		Line:     line,
		Ideas:    slices.Clone(p.Ideas),
		Severity: p.Severity,
		Tags:     slices.Clone(p.Tags),
	}
}

func (m Match) clone() Match {
	m.Ideas = slices.Clone(m.Ideas)
	m.Tags = slices.Clone(m.Tags)
	return m
}

// FileResult maps a 1-based line number to its match.
type FileResult map[int]Match

// Lines returns line numbers in ascending order.
func (fr FileResult) Lines() []int {
	out := make([]int, 0, len(fr))
	for n := range fr {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// Store maps slash-separated relative paths to file results. All methods are
// safe for concurrent use.
type Store struct {
	mu    sync.Mutex
	files map[string]FileResult
}

func NewStore() *Store {
	return &Store{files: make(map[string]FileResult)}
}

// Add merges fr into the entry for path. Lines that are already present are
// kept; an empty fr is ignored.
func (s *Store) Add(path string, fr FileResult) {
	if len(fr) == 0 {
		return
	}
	path = filepath.ToSlash(path)
	s.mu.Lock()
	defer s.mu.Unlock()
	dst := s.files[path]
	if dst == nil {
		dst = make(FileResult, len(fr))
		s.files[path] = dst
	}
	for n, m := range fr {
		if _, ok := dst[n]; !ok {
			dst[n] = m
		}
	}
}

// Set records m for (path, line). It reports false, leaving the store
// unchanged, if the line already has a match.
func (s *Store) Set(path string, line int, m Match) bool {
	path = filepath.ToSlash(path)
	s.mu.Lock()
	defer s.mu.Unlock()
	fr := s.files[path]
	if fr == nil {
		fr = make(FileResult)
		s.files[path] = fr
	}
	if _, ok := fr[line]; ok {
		return false
	}
	fr[line] = m
	return true
}

// Get returns a copy of the result for path.
func (s *Store) Get(path string) (FileResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fr, ok := s.files[filepath.ToSlash(path)]
	if !ok {
		return nil, false
	}
	out := make(FileResult, len(fr))
	for n, m := range fr {
		out[n] = m.clone()
	}
	return out, true
}

// Len is the number of files with at least one match.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

// Paths returns the stored paths, sorted.
func (s *Store) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.files))
	for p := range s.files {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// LineEntry is one match with its line number.
type LineEntry struct {
	Number int
	Match
}

// FileEntry is the serializable form of one file.
type FileEntry struct {
	Path  string
	Lines []LineEntry
}

// ToSerializable returns the store contents ordered by path, then line.
func (s *Store) ToSerializable() []FileEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	paths := make([]string, 0, len(s.files))
	for p := range s.files {
		paths = append(paths, p)
	}
	slices.Sort(paths)

	out := make([]FileEntry, 0, len(paths))
	for _, p := range paths {
		fr := s.files[p]
		fe := FileEntry{Path: p, Lines: make([]LineEntry, 0, len(fr))}
		for _, n := range fr.Lines() {
			fe.Lines = append(fe.Lines, LineEntry{Number: n, Match: fr[n].clone()})
		}
		out = append(out, fe)
	}
	return out
}

// Summary counts matches per severity.
type Summary struct {
	Files      int
	Matches    int
	BySeverity map[pattern.Severity]int
}

func (s *Store) Summary() Summary {
	sum := Summary{BySeverity: make(map[pattern.Severity]int)}
	for _, fe := range s.ToSerializable() {
		sum.Files++
		for _, le := range fe.Lines {
			sum.Matches++
			sum.BySeverity[le.Severity]++
		}
	}
	return sum
}
