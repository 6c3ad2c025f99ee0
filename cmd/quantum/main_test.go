package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"quantum/internal/pattern"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"QA_CONFIG", "QA_LOG_LEVEL", "QA_LOG_FORMAT", "QA_THREADS", "QA_UI"} {
		t.Setenv(key, "")
	}
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	clearEnv(t)
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
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

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

const testPatterns = `'import\s+random':
  severity: warning
  tags: [rng]
  ideas:
    - "Wrap RNG access."
'print\(':
  - "Use logging."
`

func TestAnalyzeWritesReports(t *testing.T) {
	dir := t.TempDir()
	project := filepath.Join(dir, "project")
	writeFile(t, filepath.Join(project, "app.py"), "import random\n# print(x)\nprint(random.random())\n")
	writeFile(t, filepath.Join(project, "notes.txt"), "print(1)\n")
	patterns := filepath.Join(dir, "patterns.yaml")
	writeFile(t, patterns, testPatterns)
	output := filepath.Join(dir, "out", "results.json")

	stdout, _, err := execute(t, "analyze", "--ui", "off", "--color", "off",
		"-p", patterns, "-o", output, "-f", "both", project)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	for _, want := range []string{
		"Loaded 2 patterns from 1 files",
		"Results saved as JSON: " + output,
		"Results saved as Markdown: " + filepath.Join(dir, "out", "results.md"),
		"Found 2 suggestions in 1 files",
		"Analysis completed in",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, stdout)
		}
	}

	var report map[string]map[string]struct {
		Ideas    []string `json:"ideas"`
		Severity string   `json:"severity"`
		Tags     []string `json:"tags"`
	}
	if err := json.Unmarshal([]byte(readFile(t, output)), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	lines, ok := report["app.py"]
	if !ok || len(report) != 1 {
		t.Fatalf("report files = %v", report)
	}
	if got := lines["1"]; got.Severity != "warning" || len(got.Tags) != 1 || got.Tags[0] != "rng" {
		t.Errorf("line 1 = %+v", got)
	}
	if got := lines["3"]; got.Severity != "info" || len(got.Ideas) != 1 {
		t.Errorf("line 3 = %+v", got)
	}
	if _, ok := lines["2"]; ok {
		t.Errorf("comment line matched")
	}
	if md := readFile(t, filepath.Join(dir, "out", "results.md")); !strings.Contains(md, "## app.py") {
		t.Errorf("markdown report:\n%s", md)
	}
}

func TestAnalyzeSeverityFilter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "app.py"), "import random\nprint(1)\n")
	patterns := filepath.Join(dir, "patterns.yaml")
	writeFile(t, patterns, testPatterns)
	output := filepath.Join(dir, "results.json")

	if _, _, err := execute(t, "analyze", "--ui", "off", "--quiet", "-s", "warning",
		"-p", patterns, "-o", output, dir); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	report := readFile(t, output)
	if !strings.Contains(report, `"1": {`) || strings.Contains(report, `"2": {`) {
		t.Fatalf("report:\n%s", report)
	}
}

func TestAnalyzeMissingPath(t *testing.T) {
	_, _, err := execute(t, "analyze", "--ui", "off", "--quiet", filepath.Join(t.TempDir(), "nope"))
	if err == nil || !strings.Contains(err.Error(), "does not exist") || !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("err = %v", err)
	}
}

func TestCheckProjectPathKeepsCause(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "app.py")
	writeFile(t, file, "x = 1\n")

	if err := checkProjectPath(dir); err != nil {
		t.Fatalf("existing dir: %v", err)
	}
	// app.py/inner: stat fails with ENOTDIR, not "not exist"
	err := checkProjectPath(filepath.Join(file, "inner"))
	if err == nil {
		t.Fatal("expected error")
	}
	if strings.Contains(err.Error(), "does not exist") {
		t.Fatalf("non-missing error reported as missing: %v", err)
	}
	var pathErr *fs.PathError
	if !errors.As(err, &pathErr) {
		t.Fatalf("stat error not wrapped: %v", err)
	}
}

func TestAnalyzeUIModeFromEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "app.py"), "x = 1\n")
	patterns := filepath.Join(dir, "patterns.yaml")
	writeFile(t, patterns, testPatterns)
	clearEnv(t)
	t.Setenv("QA_UI", "sideways")

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"analyze", "--quiet", "-p", patterns, "-o", filepath.Join(dir, "r.json"), dir})
	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "sideways") {
		t.Fatalf("err = %v", err)
	}

	// the flag wins over QA_UI
	cmd = newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"analyze", "--quiet", "--ui", "off", "-p", patterns, "-o", filepath.Join(dir, "r.json"), dir})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("--ui off over QA_UI: %v", err)
	}
}

func TestAnalyzeUnknownFixerFailsBeforeScan(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "app.py"), "print(\"{}\".format(x))\n")
	output := filepath.Join(dir, "results.json")

	_, _, err := execute(t, "analyze", "--ui", "off", "--quiet", "-o", output,
		"--fix", "--fix-patterns", "nope", dir)
	if err == nil {
		t.Fatal("expected unknown fixer error")
	}
	if _, statErr := os.Stat(output); !os.IsNotExist(statErr) {
		t.Fatalf("report written despite error: %v", statErr)
	}
}

func TestAnalyzeWithFix(t *testing.T) {
	dir := t.TempDir()
	project := filepath.Join(dir, "project")
	path := filepath.Join(project, "app.py")
	writeFile(t, path, "print(\"{}\".format(x))\n")

	stdout, _, err := execute(t, "analyze", "--ui", "off", "--color", "off",
		"-o", filepath.Join(dir, "results.json"),
		"--fix", "--fix-patterns", "format_to_fstring", project)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if got := readFile(t, path); got != "print(f\"{x}\")\n" {
		t.Fatalf("file = %q", got)
	}
	for _, want := range []string{"Applying fixes...", "Applied 1 fixes to app.py", "Total fixes applied: 1"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, stdout)
		}
	}
}

func TestFixCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.py")
	writeFile(t, path, "print(\"{}\".format(x))\n")

	stdout, _, err := execute(t, "fix", "--color", "off", "--dry-run", dir)
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if !strings.Contains(stdout, "Would update:") || !strings.Contains(stdout, "dry run") {
		t.Errorf("dry run output:\n%s", stdout)
	}
	if got := readFile(t, path); got != "print(\"{}\".format(x))\n" {
		t.Fatalf("dry run modified file: %q", got)
	}

	stdout, _, err = execute(t, "fix", "--color", "off", dir)
	if err != nil {
		t.Fatalf("fix: %v", err)
	}
	if !strings.Contains(stdout, "app.py (1 rewrites)") || !strings.Contains(stdout, "Total fixes applied: 1") {
		t.Errorf("fix output:\n%s", stdout)
	}

	stdout, _, err = execute(t, "fix", "--color", "off", dir)
	if err != nil {
		t.Fatalf("second fix: %v", err)
	}
	if !strings.Contains(stdout, "No applicable fixes found.") {
		t.Errorf("second run output:\n%s", stdout)
	}
}

func TestFixList(t *testing.T) {
	stdout, _, err := execute(t, "fix", "--list")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, "format_to_fstring") {
		t.Fatalf("list output:\n%s", stdout)
	}
}

func TestPatternsList(t *testing.T) {
	stdout, _, err := execute(t, "patterns", "list", "--color", "off", "--builtin", "base")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, "5 of 5 patterns shown") {
		t.Fatalf("list output:\n%s", stdout)
	}

	stdout, _, err = execute(t, "patterns", "list", "--color", "off", "--builtin", "base", "-s", "critical")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, "0 of 5 patterns shown") {
		t.Fatalf("filtered output:\n%s", stdout)
	}
}

func TestPatternsExportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "extended.yaml")
	if _, _, err := execute(t, "patterns", "export", "--quiet", "--builtin", "extended", "-o", output); err != nil {
		t.Fatal(err)
	}
	doc, err := pattern.ParseDocument(output, []byte(readFile(t, output)))
	if err != nil {
		t.Fatal(err)
	}
	ps, err := pattern.Load(doc)
	if err != nil {
		t.Fatalf("exported document does not load: %v", err)
	}
	if len(ps) != 25 {
		t.Fatalf("got %d patterns, want 25", len(ps))
	}
	for _, p := range ps {
		if p.Severity != pattern.Info || len(p.Ideas) == 0 {
			t.Fatalf("pattern %q = %+v", p.ID, p)
		}
	}
}

func TestPatternsFlagsExclusive(t *testing.T) {
	_, _, err := execute(t, "patterns", "list", "--builtin", "base", "-p", "x.yaml")
	if err == nil || !strings.Contains(err.Error(), "mutually exclusive") {
		t.Fatalf("err = %v", err)
	}
}

func TestVersionJSON(t *testing.T) {
	stdout, _, err := execute(t, "version", "--format", "json", "--hash")
	if err != nil {
		t.Fatal(err)
	}
	var payload versionPayload
	if err := json.Unmarshal([]byte(stdout), &payload); err != nil {
		t.Fatalf("decode %q: %v", stdout, err)
	}
	if payload.Tool != "quantum" || payload.Patterns == "" || payload.GitCommit == "" {
		t.Fatalf("payload = %+v", payload)
	}
	if payload.BuildDate != "" {
		t.Fatalf("build date should be omitted: %+v", payload)
	}
}

func TestVersionRejectsFormat(t *testing.T) {
	if _, _, err := execute(t, "version", "--format", "xml"); err == nil {
		t.Fatal("expected error")
	}
}
