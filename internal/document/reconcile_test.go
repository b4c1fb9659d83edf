package document

import (
	"strings"
	"testing"

	"github.com/starford/lotsawa/internal/notation"
)

func node(surface, content string) *AnnotationNode {
	return &AnnotationNode{Surface: surface, RawContent: content, Analysis: notation.Decode(content)}
}

func concat(units []Unit) string {
	var b strings.Builder
	for _, u := range units {
		b.WriteString(u.Surface)
	}
	return b.String()
}

func TestReconcile_WholeString(t *testing.T) {
	units, warnings := Reconcile("རྒྱ་མཚོ", []*AnnotationNode{node("རྒྱ་མཚོ", "{n} 海 ocean")})
	if len(warnings) != 0 {
		t.Errorf("warnings = %v", warnings)
	}
	if len(units) != 1 {
		t.Fatalf("len(units) = %d, want 1", len(units))
	}
	if !units[0].IsWord() || units[0].Surface != "རྒྱ་མཚོ" {
		t.Errorf("unit = %+v", units[0])
	}
	if units[0].Analysis.Definition != "海 ocean" {
		t.Errorf("definition = %q", units[0].Analysis.Definition)
	}
}

func TestReconcile_RepeatedWordsUseCursor(t *testing.T) {
	raw := "ཆུ་ཆུ་ཆུ"
	nodes := []*AnnotationNode{node("ཆུ", "{n} a"), node("ཆུ", "{n} b")}
	units, _ := Reconcile(raw, nodes)
	// word, tsheg, word, remainder
	if len(units) != 4 {
		t.Fatalf("len(units) = %d, want 4: %+v", len(units), units)
	}
	if units[2].Analysis.Definition != "b" {
		t.Errorf("second word definition = %q, want b", units[2].Analysis.Definition)
	}
	if units[3].Surface != "་ཆུ" || units[3].IsWord() {
		t.Errorf("remainder = %+v", units[3])
	}
}

func TestReconcile_MissingNodeSkipped(t *testing.T) {
	raw := "ཀ་ཁ་ག"
	nodes := []*AnnotationNode{node("ཀ", "{n} k"), node("ཉ", "{n} missing"), node("ག", "{n} g")}
	units, warnings := Reconcile(raw, nodes)
	if len(warnings) != 1 || warnings[0].Kind != WarnNodeNotFound || warnings[0].Surface != "ཉ" {
		t.Errorf("warnings = %v", warnings)
	}
	if got := concat(units); got != raw {
		t.Errorf("concat = %q, want %q", got, raw)
	}
	words := 0
	for _, u := range units {
		if u.IsWord() {
			words++
		}
	}
	if words != 2 {
		t.Errorf("words = %d, want 2", words)
	}
}

func TestReconcile_OutOfOrderNodeDropped(t *testing.T) {
	raw := "ཀ་ཁ"
	units, warnings := Reconcile(raw, []*AnnotationNode{node("ཁ", "{n} b"), node("ཀ", "{n} a")})
	if len(warnings) != 1 || warnings[0].Surface != "ཀ" {
		t.Errorf("warnings = %v", warnings)
	}
	if got := concat(units); got != raw {
		t.Errorf("concat = %q, want %q", got, raw)
	}
}

func TestReconcile_Completeness(t *testing.T) {
	tests := []struct {
		raw   string
		words []string
	}{
		{"", nil},
		{"plain text only", nil},
		{"aXbXc", []string{"X", "X"}},
		{"abc", []string{"a", "b", "c"}},
		{"སངས་རྒྱས་ཀྱི་ཆོས།", []string{"སངས་རྒྱས", "ཀྱི", "ཆོས"}},
		{"line one\nline two", []string{"one", "line"}},
	}
	for _, tt := range tests {
		var nodes []*AnnotationNode
		for _, w := range tt.words {
			nodes = append(nodes, node(w, "{n} x"))
		}
		units, warnings := Reconcile(tt.raw, nodes)
		if len(warnings) != 0 {
			t.Errorf("Reconcile(%q) warnings = %v", tt.raw, warnings)
		}
		if got := concat(units); got != tt.raw {
			t.Errorf("Reconcile(%q) concat = %q", tt.raw, got)
		}
	}
}
