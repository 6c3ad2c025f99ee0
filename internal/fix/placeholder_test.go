package fix

import (
	"testing"
)

func TestScanTemplate(t *testing.T) {
	phs := ScanTemplate("{} {0} {name} {} {x:>4} {{lit}}")
	want := []struct {
		kind  PlaceholderKind
		index int
		name  string
	}{
		{PlaceholderAuto, 0, ""},
		{PlaceholderIndex, 0, ""},
		{PlaceholderName, 0, "name"},
		{PlaceholderAuto, 1, ""},
		{PlaceholderName, 0, "x:>4"},
		{PlaceholderName, 0, "lit"},
	}
	if len(phs) != len(want) {
		t.Fatalf("got %d placeholders, want %d: %+v", len(phs), len(want), phs)
	}
	for i, w := range want {
		p := phs[i]
		if p.Kind != w.kind || p.Index != w.index || p.Name != w.name {
			t.Errorf("placeholder %d = %+v, want %+v", i, p, w)
		}
	}
	if !phs[4].HasSpec() || phs[2].HasSpec() {
		t.Error("HasSpec mismatch")
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		tmpl       string
		pos        []string
		named      map[string]string
		want       string
		unresolved int
	}{
		{"mixed", "{} and {age}", []string{"x"}, map[string]string{"age": "y"}, "[x] and [y]", 0},
		{"indexed reuse", "{0} {1} {0}", []string{"a", "b"}, nil, "[a] [b] [a]", 0},
		{"auto out of range", "{} {}", []string{"a"}, nil, "[a] ", 1},
		{"index out of range", "<{5}>", []string{"a"}, nil, "<>", 1},
		{"missing key", "{x}-{y}", nil, map[string]string{"x": "1"}, "[1]-", 1},
		{"spec is a name", "{v:.2f}", nil, map[string]string{"v": "1"}, "", 1},
		{"no placeholders", "plain", nil, nil, "plain", 0},
		{"huge index", "{99999999999999999999}", []string{"a"}, nil, "", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Resolve(tt.tmpl, tt.pos, tt.named)
			got := ""
			for _, p := range res.Pieces {
				if p.IsArg {
					got += "[" + p.Arg + "]"
				} else {
					got += p.Lit
				}
			}
			if got != tt.want {
				t.Errorf("pieces = %q, want %q", got, tt.want)
			}
			if len(res.Unresolved) != tt.unresolved {
				t.Errorf("unresolved = %d, want %d", len(res.Unresolved), tt.unresolved)
			}
		})
	}
}

func TestLiteralBraces(t *testing.T) {
	if !literalBraces(Resolve("{{}}", []string{"a"}, nil)) {
		t.Error("expected literal braces around {{}}")
	}
	if literalBraces(Resolve("{} {}", []string{"a", "b"}, nil)) {
		t.Error("unexpected literal braces")
	}
}
