// Package cache keeps per-file analysis results on disk between runs.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"quantum/internal/pattern"
	"quantum/internal/result"
)

// Current schema version - increment when Payload format changes
const schemaVersion uint16 = 1

// Key identifies the analysis of one file content under one pattern set.
type Key [32]byte

// KeyFor combines the content digest with the matcher fingerprint.
func KeyFor(content [32]byte, fingerprint string) Key {
	h := sha256.New()
	_, _ = h.Write(content[:])
	_, _ = h.Write([]byte(fingerprint))
	var k Key
	copy(k[:], h.Sum(nil))
	return k
}

func (k Key) String() string { return hex.EncodeToString(k[:]) }

// Payload is what lands on disk.
type Payload struct {
	Schema uint16
	Lines  []Line
}

type Line struct {
	Number   int
	Text     string
	Ideas    []string
	Severity uint8
	Tags     []string
}

// DiskCache хранит результаты анализа по ключу на диске.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string

	hits, misses atomic.Int64
}

// Open uses dir as the cache root, creating it if needed.
func Open(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return &DiskCache{dir: dir}, nil
}

// OpenDefault opens the cache at $XDG_CACHE_HOME/app or ~/.cache/app.
func OpenDefault(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return Open(filepath.Join(base, app))
}

// Dir returns the cache root.
func (c *DiskCache) Dir() string { return c.dir }

func (c *DiskCache) pathFor(key Key) string {
	hexKey := key.String()
	// подкаталог по первым двум символам, чтобы не держать всё в одной папке
	return filepath.Join(c.dir, "files", hexKey[:2], hexKey+".mp")
}

// Put serializes fr and atomically replaces the entry for key.
func (c *DiskCache) Put(key Key, fr result.FileResult) error {
	if c == nil {
		return nil
	}
	payload := toPayload(fr)

	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	renamed := false
	defer func() {
		if !renamed {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	if err := os.Rename(f.Name(), p); err != nil {
		return err
	}
	renamed = true
	return nil
}

// Get returns the cached result for key. Entries written by another schema
// version count as misses.
func (c *DiskCache) Get(key Key) (result.FileResult, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			c.misses.Add(1)
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var payload Payload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return nil, false, fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	if payload.Schema != schemaVersion {
		c.misses.Add(1)
		return nil, false, nil
	}
	c.hits.Add(1)
	return fromPayload(payload), true, nil
}

// Stats returns hit and miss counts since Open.
func (c *DiskCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// DropAll invalidates the cache.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// тривиально: переименуем каталог и удалим
	old := c.dir + ".old-" + time.Now().Format("20060102150405.000000000")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return os.MkdirAll(c.dir, 0o755)
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}

func toPayload(fr result.FileResult) *Payload {
	p := &Payload{Schema: schemaVersion, Lines: make([]Line, 0, len(fr))}
	for _, n := range fr.Lines() {
		m := fr[n]
		p.Lines = append(p.Lines, Line{
			Number:   n,
			Text:     m.Line,
			Ideas:    m.Ideas,
			Severity: uint8(m.Severity),
			Tags:     m.Tags,
		})
	}
	return p
}

func fromPayload(p Payload) result.FileResult {
	fr := make(result.FileResult, len(p.Lines))
	for _, l := range p.Lines {
		fr[l.Number] = result.Match{
			Line:     l.Text,
			Ideas:    l.Ideas,
			Severity: pattern.Severity(l.Severity),
			Tags:     l.Tags,
		}
	}
	return fr
}
