package scan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// DefaultExtensions is used when no extension filter is configured.
var DefaultExtensions = []string{".py"}

// skipDirs are never descended into.
var skipDirs = map[string]bool{
	".git":        true,
	".hg":         true,
	".svn":        true,
	"__pycache__": true,
}

// Discover returns the sorted list of files under root whose extension is
// in exts (case-sensitive; the leading dot is optional). A root that is a regular
// file is returned as is.
func Discover(root string, exts []string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("discover %s: %w", root, err)
	}
	if !info.IsDir() {
		return []string{root}, nil
	}
	if len(exts) == 0 {
		exts = DefaultExtensions
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if HasExtension(path, exts) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover %s: %w", root, err)
	}

	// сортируем для детерминированного порядка
	slices.Sort(files)
	return files, nil
}

// HasExtension reports whether path ends with one of exts.
func HasExtension(path string, exts []string) bool {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	ext := filepath.Ext(path)
	return slices.ContainsFunc(exts, func(e string) bool {
		return ext == "."+strings.TrimPrefix(e, ".")
	})
}
