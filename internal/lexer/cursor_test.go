package lexer

import (
	"testing"

	"quantum/internal/source"
)

func newTestCursor(content string) (Cursor, *source.FileSet) {
	fs := source.NewFileSet()
	f := fs.Get(fs.AddVirtual("test.py", []byte(content)))
	return NewCursor(f), fs
}

func TestCursorBumpToEOF(t *testing.T) {
	c, _ := newTestCursor("x\ny")
	var got []byte
	for !c.EOF() {
		got = append(got, c.Bump())
	}
	if string(got) != "x\ny" {
		t.Fatalf("read %q", got)
	}
	if c.Peek() != 0 || c.Bump() != 0 || c.Off != 3 {
		t.Fatalf("cursor moved past EOF: off=%d", c.Off)
	}
}

func TestCursorLookahead(t *testing.T) {
	c, _ := newTestCursor("'''")
	if b0, b1, ok := c.Peek2(); !ok || b0 != '\'' || b1 != '\'' {
		t.Fatalf("Peek2 = %q %q %v", b0, b1, ok)
	}
	if c.PeekAt(2) != '\'' || c.PeekAt(3) != 0 {
		t.Fatalf("PeekAt mismatch")
	}
	c.Bump()
	c.Bump()
	if _, _, ok := c.Peek2(); ok {
		t.Fatal("Peek2 succeeded with one byte left")
	}
}

func TestCursorEat(t *testing.T) {
	c, _ := newTestCursor("ab")
	if c.Eat('b') || c.Off != 0 {
		t.Fatal("Eat consumed a mismatching byte")
	}
	if !c.Eat('a') || !c.Eat('b') || c.Eat('b') {
		t.Fatal("Eat sequence failed")
	}
}

func TestCursorEatNewline(t *testing.T) {
	tests := []struct {
		in   string
		want int
		next byte
	}{
		{"\nx", 1, 'x'},
		{"\r\nx", 2, 'x'},
		{"\rx", 1, 'x'},
		{"x", 0, 'x'},
		{"", 0, 0},
	}
	for _, tt := range tests {
		c, _ := newTestCursor(tt.in)
		if got := c.EatNewline(); got != tt.want {
			t.Errorf("EatNewline(%q) = %d, want %d", tt.in, got, tt.want)
		}
		if c.Peek() != tt.next {
			t.Errorf("after EatNewline(%q) peek = %q, want %q", tt.in, c.Peek(), tt.next)
		}
	}
}

func TestCursorMarkSpanText(t *testing.T) {
	// "é" занимает два байта
	c, fs := newTestCursor("é = 1\nx")
	m := c.Mark()
	c.Bump()
	c.Bump()
	sp := c.SpanFrom(m)
	if sp.Start != 0 || sp.End != 2 || c.Text(m) != "é" {
		t.Fatalf("span %v text %q", sp, c.Text(m))
	}
	start, end := fs.Resolve(sp)
	if start != (source.LineCol{Line: 1, Col: 1}) || end != (source.LineCol{Line: 1, Col: 3}) {
		t.Fatalf("resolve = %+v..%+v", start, end)
	}

	for !c.EOF() && c.Peek() != '\n' {
		c.Bump()
	}
	c.EatNewline()
	if start, _ := fs.Resolve(c.SpanFrom(c.Mark())); start != (source.LineCol{Line: 2, Col: 1}) {
		t.Fatalf("second line resolves to %+v", start)
	}

	c.Reset(m)
	if c.Off != 0 || c.Peek() != 0xC3 {
		t.Fatalf("reset: off=%d peek=%x", c.Off, c.Peek())
	}
}

func TestCursorHasPrefix(t *testing.T) {
	c, _ := newTestCursor(`"""doc"""`)
	if !c.HasPrefix(`"""`) || c.HasPrefix(`""""`) {
		t.Fatal("HasPrefix at start")
	}
	for range 3 {
		c.Bump()
	}
	if c.HasPrefix(`"""`) || !c.HasPrefix("doc") {
		t.Fatal("HasPrefix in body")
	}
	if c.HasPrefix(`doc"""x`) {
		t.Fatal("HasPrefix past end")
	}
}
