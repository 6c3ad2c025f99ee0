package result

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"quantum/internal/pattern"
)

func match(line string, sev pattern.Severity, tags ...string) Match {
	return Match{Line: line, Ideas: []string{"idea for " + line}, Severity: sev, Tags: tags}
}

func TestSetIsIdempotentPerLine(t *testing.T) {
	s := NewStore()
	if !s.Set("a.py", 3, match("first", pattern.Info)) {
		t.Fatal("first Set should succeed")
	}
	if s.Set("a.py", 3, match("second", pattern.Critical)) {
		t.Fatal("second Set on the same line must be a no-op")
	}
	fr, ok := s.Get("a.py")
	if !ok || fr[3].Line != "first" {
		t.Fatalf("got %+v", fr)
	}
}

func TestAddMergesAndIgnoresEmpty(t *testing.T) {
	s := NewStore()
	s.Add("empty.py", FileResult{})
	if s.Len() != 0 {
		t.Fatalf("empty result should not create an entry")
	}
	s.Add(filepath.Join("pkg", "mod.py"), FileResult{1: match("one", pattern.Info)})
	s.Add("pkg/mod.py", FileResult{1: match("dup", pattern.Info), 2: match("two", pattern.Info)})
	fr, ok := s.Get("pkg/mod.py")
	if !ok || len(fr) != 2 || fr[1].Line != "one" {
		t.Fatalf("merge result: %+v", fr)
	}
	if s.Len() != 1 {
		t.Fatalf("paths = %v", s.Paths())
	}
}

func TestBackslashIsPartOfNameOnPOSIX(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("backslash is a separator on windows")
	}
	s := NewStore()
	s.Add(`pkg\mod.py`, FileResult{1: match("one", pattern.Info)})
	s.Add("pkg/mod.py", FileResult{1: match("two", pattern.Info)})
	if s.Len() != 2 {
		t.Fatalf("paths = %v", s.Paths())
	}
}

func TestGetReturnsDeepCopy(t *testing.T) {
	s := NewStore()
	s.Set("a.py", 1, match("x", pattern.Warning, "sec"))
	fr, _ := s.Get("a.py")
	fr[1].Ideas[0] = "changed"
	fr[1].Tags[0] = "changed"
	again, _ := s.Get("a.py")
	if again[1].Ideas[0] != "idea for x" || again[1].Tags[0] != "sec" {
		t.Fatalf("store mutated through Get: %+v", again[1])
	}
	entries := s.ToSerializable()
	entries[0].Lines[0].Ideas[0] = "changed"
	if again, _ = s.Get("a.py"); again[1].Ideas[0] != "idea for x" {
		t.Fatalf("store mutated through ToSerializable: %+v", again[1])
	}
}

func TestNewMatchCopies(t *testing.T) {
	p := &pattern.Pattern{ID: "x", Ideas: []string{"a"}, Tags: []string{"t"}, Severity: pattern.Warning}
	m := NewMatch("x = 1", p)
	p.Ideas[0] = "changed"
	p.Tags[0] = "changed"
	if m.Ideas[0] != "a" || m.Tags[0] != "t" {
		t.Fatalf("match shares slices with pattern: %+v", m)
	}
}

func TestJSONFormat(t *testing.T) {
	s := NewStore()
	s.Set("b.py", 10, match("x < y", pattern.Warning, "style"))
	s.Set("b.py", 2, match("import random", pattern.Info))
	s.Set("a.py", 1, match("eval(x)", pattern.Critical, "security"))

	var buf bytes.Buffer
	if err := s.WriteJSON(&buf); err != nil {
		t.Fatal(err)
	}
	want := `{
  "a.py": {
    "1": {
      "line": "eval(x)",
      "ideas": [
        "idea for eval(x)"
      ],
      "severity": "critical",
      "tags": [
        "security"
      ]
    }
  },
  "b.py": {
    "2": {
      "line": "import random",
      "ideas": [
        "idea for import random"
      ],
      "severity": "info",
      "tags": []
    },
    "10": {
      "line": "x < y",
      "ideas": [
        "idea for x < y"
      ],
      "severity": "warning",
      "tags": [
        "style"
      ]
    }
  }
}
`
	if got := buf.String(); got != want {
		t.Fatalf("json mismatch:\n%s", got)
	}

	var decoded map[string]map[string]map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("report is not valid json: %v", err)
	}
}

func TestEmptyStoreJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := NewStore().WriteJSON(&buf); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "{}\n" {
		t.Fatalf("got %q", buf.String())
	}
}

func TestConcurrentWritesAreDeterministic(t *testing.T) {
	render := func() string {
		s := NewStore()
		var wg sync.WaitGroup
		for i := range 16 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for line := 1; line <= 20; line++ {
					s.Set(fmt.Sprintf("f%02d.py", i%4), line, match(fmt.Sprint("line ", line), pattern.Info))
				}
			}()
		}
		wg.Wait()
		var buf bytes.Buffer
		if err := s.WriteJSON(&buf); err != nil {
			t.Fatal(err)
		}
		return buf.String()
	}
	if a, b := render(), render(); a != b {
		t.Fatal("json output depends on goroutine scheduling")
	}
}

func TestMarkdown(t *testing.T) {
	s := NewStore()
	s.Set("a.py", 4, match("eval(x)", pattern.Critical, "security", "py"))
	s.Set("a.py", 1, match("import random", pattern.Info))

	var buf bytes.Buffer
	at := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	if err := s.WriteMarkdown(&buf, at); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"# Code Analysis Results\n\n_Generated on 2024-05-06 07:08:09_\n\n",
		"## a.py\n\n### 📝 Line 1\n\n```python\nimport random\n```\n\n#### Improvement Ideas\n\n- idea for import random\n\n",
		"### 🔥 Line 4\n\n_Severity: critical · Tags: security, py_\n\n```python\neval(x)\n```\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q\n--- got ---\n%s", want, out)
		}
	}
	if strings.Index(out, "Line 1") > strings.Index(out, "Line 4") {
		t.Error("lines are not in ascending order")
	}
}

func TestSummary(t *testing.T) {
	s := NewStore()
	s.Set("a.py", 1, match("a", pattern.Info))
	s.Set("a.py", 2, match("b", pattern.Critical))
	s.Set("b.py", 1, match("c", pattern.Critical))
	sum := s.Summary()
	if sum.Files != 2 || sum.Matches != 3 {
		t.Fatalf("summary = %+v", sum)
	}
	if sum.BySeverity[pattern.Critical] != 2 || sum.BySeverity[pattern.Warning] != 0 {
		t.Fatalf("by severity = %v", sum.BySeverity)
	}
}

func TestSaveJSONAndMarkdown(t *testing.T) {
	dir := t.TempDir()
	s := NewStore()
	s.Set("a.py", 1, match("a", pattern.Info))
	if err := s.SaveJSON(dir + "/out.json"); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveMarkdown(dir+"/out.md", time.Now()); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveJSON(dir + "/missing/out.json"); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
