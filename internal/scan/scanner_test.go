package scan

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"quantum/internal/cache"
	"quantum/internal/match"
	"quantum/internal/pattern"
)

const testRules = `
'print\(':
  - use logging
'eval\(':
  severity: critical
  tags: [security]
  ideas: [avoid eval]
'import\s+random':
  - seed the generator
`

func newMatcher(t *testing.T, opts match.Options) *match.Matcher {
	t.Helper()
	doc, err := pattern.ParseDocument("rules.yaml", []byte(testRules))
	if err != nil {
		t.Fatal(err)
	}
	ps, err := pattern.Load(doc)
	if err != nil {
		t.Fatal(err)
	}
	return match.New(ps, opts)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScanFirstMatchPerLine(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "app.py"), "import random\n# print(x)\n\nprint(eval(s))\n")
	writeFile(t, filepath.Join(root, "clean.py"), "x = 1\n")

	store, err := New(newMatcher(t, match.Options{}), Options{}).Scan(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if got := store.Paths(); len(got) != 1 || got[0] != "app.py" {
		t.Fatalf("paths = %v", got)
	}
	fr, _ := store.Get("app.py")
	if len(fr) != 2 {
		t.Fatalf("lines = %v", fr.Lines())
	}
	if fr[1].Ideas[0] != "seed the generator" {
		t.Errorf("line 1 = %+v", fr[1])
	}
	if fr[4].Ideas[0] != "use logging" || fr[4].Line != "print(eval(s))" {
		t.Errorf("line 4 = %+v", fr[4])
	}
}

func TestScanSeverityFloor(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "app.py"), "print(eval(s))\nprint(1)\n")
	store, err := New(newMatcher(t, match.Options{MinSeverity: pattern.Critical}), Options{}).Scan(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	fr, _ := store.Get("app.py")
	if len(fr) != 1 || fr[1].Severity != pattern.Critical {
		t.Fatalf("got %+v", fr)
	}
}

func TestScanNormalisesText(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "crlf.py"), "\xef\xbb\xbfx = 1\r\nprint(x)\r\n")
	store, err := New(newMatcher(t, match.Options{}), Options{}).Scan(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	fr, _ := store.Get("crlf.py")
	if m, ok := fr[2]; !ok || m.Line != "print(x)" {
		t.Fatalf("got %+v", fr)
	}
}

func TestScanIsolatesBadFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.py"), "print(1)\n")
	writeFile(t, filepath.Join(root, "b.py"), "print(\xff\xfe)\n")
	writeFile(t, filepath.Join(root, "c.py"), "eval(x)\n")

	var (
		mu     sync.Mutex
		failed []string
	)
	sink := SinkFunc(func(ev Event) {
		if ev.Status == StatusError {
			mu.Lock()
			failed = append(failed, ev.File)
			mu.Unlock()
		}
	})
	store, err := New(newMatcher(t, match.Options{}), Options{Jobs: 2, Progress: sink}).Scan(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(store.Paths(), ","); got != "a.py,c.py" {
		t.Fatalf("paths = %s", got)
	}
	if len(failed) != 1 || failed[0] != "b.py" {
		t.Fatalf("error events = %v", failed)
	}
}

func TestSequentialAndParallelAgree(t *testing.T) {
	root := t.TempDir()
	for i := range 24 {
		var b strings.Builder
		for j := range i + 3 {
			switch j % 4 {
			case 0:
				fmt.Fprintf(&b, "print(%d)\n", j)
			case 1:
				b.WriteString("import random\n")
			case 2:
				b.WriteString("value = eval(text)\n")
			default:
				b.WriteString("pass\n")
			}
		}
		writeFile(t, filepath.Join(root, fmt.Sprintf("pkg%d", i%3), fmt.Sprintf("m%02d.py", i)), b.String())
	}

	render := func(jobs int) string {
		store, err := New(newMatcher(t, match.Options{}), Options{Jobs: jobs}).Scan(context.Background(), root)
		if err != nil {
			t.Fatal(err)
		}
		var buf bytes.Buffer
		if err := store.WriteJSON(&buf); err != nil {
			t.Fatal(err)
		}
		return buf.String()
	}
	seq := render(1)
	for _, jobs := range []int{0, 4, 16} {
		if got := render(jobs); got != seq {
			t.Fatalf("jobs=%d output differs from sequential", jobs)
		}
	}
	if !strings.Contains(seq, `"pkg0/m00.py"`) {
		t.Errorf("expected slash-separated relative paths:\n%s", seq[:min(len(seq), 200)])
	}
}

func TestScanSingleFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "one.py")
	writeFile(t, path, "print(1)\n")
	store, err := New(newMatcher(t, match.Options{}), Options{}).Scan(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if got := store.Paths(); len(got) != 1 || got[0] != "one.py" {
		t.Fatalf("paths = %v", got)
	}
}

func TestScanCanceled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.py"), "print(1)\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(newMatcher(t, match.Options{}), Options{Jobs: 1}).Scan(ctx, root)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}

func TestScanUsesCache(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.py"), "print(1)\n")
	dc, err := cache.Open(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}

	run := func() (bool, string) {
		var (
			mu     sync.Mutex
			cached bool
		)
		sink := SinkFunc(func(ev Event) {
			if ev.File != "" && ev.Status == StatusDone {
				mu.Lock()
				cached = ev.Cached
				mu.Unlock()
			}
		})
		store, err := New(newMatcher(t, match.Options{}), Options{Cache: dc, Progress: sink}).Scan(context.Background(), root)
		if err != nil {
			t.Fatal(err)
		}
		var buf bytes.Buffer
		if err := store.WriteJSON(&buf); err != nil {
			t.Fatal(err)
		}
		return cached, buf.String()
	}

	first, out1 := run()
	second, out2 := run()
	if first || !second {
		t.Fatalf("cached flags: first=%v second=%v", first, second)
	}
	if out1 != out2 {
		t.Fatalf("cached result differs:\n%s\n%s", out1, out2)
	}

	// другой набор правил не должен попадать в тот же ключ
	var cached bool
	sink := SinkFunc(func(ev Event) {
		if ev.File != "" && ev.Status == StatusDone {
			cached = ev.Cached
		}
	})
	if _, err := New(newMatcher(t, match.Options{MinSeverity: pattern.Warning}), Options{Jobs: 1, Cache: dc, Progress: sink}).Scan(context.Background(), root); err != nil {
		t.Fatal(err)
	}
	if cached {
		t.Fatal("cache hit across different matcher configurations")
	}
}

func TestPlanRelativePaths(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "pkg", "a.py"), "")
	writeFile(t, filepath.Join(root, "b.py"), "")
	plan, err := New(newMatcher(t, match.Options{}), Options{}).Plan(root)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(plan.Rel, ","); got != "b.py,pkg/a.py" {
		t.Fatalf("rel = %s", got)
	}
	if len(plan.Files) != 2 || plan.Base != root {
		t.Fatalf("plan = %+v", plan)
	}
}
