package document

import (
	"testing"
)

func TestBuildHierarchy_ChildAttachesToParent(t *testing.T) {
	nodes, _ := BuildHierarchy("<A>[{n} x]\n\t<B>[{n} y]")
	if len(nodes) != 1 {
		t.Fatalf("len(roots) = %d, want 1", len(nodes))
	}
	if nodes[0].Surface != "A" {
		t.Errorf("root = %q, want A", nodes[0].Surface)
	}
	if len(nodes[0].Children) != 1 || nodes[0].Children[0].Surface != "B" {
		t.Fatalf("children = %+v, want [B]", nodes[0].Children)
	}
	if nodes[0].Children[0].Analysis.Definition != "y" {
		t.Errorf("child definition = %q", nodes[0].Children[0].Analysis.Definition)
	}
}

func TestBuildHierarchy_DepthJumpAttachesToNearestAncestor(t *testing.T) {
	text := "<A>[{n} a]\n\t\t\t<B>[{n} b]\n\t<C>[{n} c]\n<D>[{n} d]"
	nodes, _ := BuildHierarchy(text)
	if len(nodes) != 2 {
		t.Fatalf("len(roots) = %d, want 2", len(nodes))
	}
	a := nodes[0]
	if len(a.Children) != 2 {
		t.Fatalf("A children = %d, want 2", len(a.Children))
	}
	if a.Children[0].Surface != "B" || a.Children[1].Surface != "C" {
		t.Errorf("A children = %q, %q", a.Children[0].Surface, a.Children[1].Surface)
	}
	if len(a.Children[0].Children) != 0 {
		t.Error("B should have no children")
	}
	if nodes[1].Surface != "D" {
		t.Errorf("second root = %q, want D", nodes[1].Surface)
	}
}

func TestBuildHierarchy_MultilineContent(t *testing.T) {
	text := "<ཆུ>[{n} ཆུ water,\n\n  also: river]\n<མེ>[{n} མེ fire]"
	nodes, warnings := BuildHierarchy(text)
	if len(warnings) != 0 {
		t.Errorf("warnings = %v", warnings)
	}
	if len(nodes) != 2 {
		t.Fatalf("len(roots) = %d, want 2", len(nodes))
	}
	want := "water,\n\n  also: river"
	if got := nodes[0].Analysis.Definition; got != want {
		t.Errorf("definition = %q, want %q", got, want)
	}
	if nodes[0].Analysis.Root != "ཆུ" {
		t.Errorf("root = %q", nodes[0].Analysis.Root)
	}
}

func TestBuildHierarchy_BlankLinesAndCRLF(t *testing.T) {
	nodes, warnings := BuildHierarchy("\r\n<ཀ>[{n} a]\r\n\r\n<ཁ>[{n} b]\r\n")
	if len(warnings) != 0 {
		t.Errorf("warnings = %v", warnings)
	}
	if len(nodes) != 2 {
		t.Errorf("len(roots) = %d, want 2", len(nodes))
	}
}

func TestBuildHierarchy_Warnings(t *testing.T) {
	text := "stray text\n<ཀ>[just a gloss]\n<ཁ>[{n} never closed"
	nodes, warnings := BuildHierarchy(text)
	if len(nodes) != 1 {
		t.Fatalf("len(roots) = %d, want 1", len(nodes))
	}
	if nodes[0].Analysis.PartOfSpeech != "" || nodes[0].Analysis.Definition != "just a gloss" {
		t.Errorf("degraded analysis = %+v", nodes[0].Analysis)
	}
	kinds := map[WarningKind]int{}
	for _, w := range warnings {
		kinds[w.Kind]++
	}
	for _, k := range []WarningKind{WarnUnparsedLine, WarnDegradedAnnotation, WarnUnterminated} {
		if kinds[k] != 1 {
			t.Errorf("warnings of kind %s = %d, want 1", k, kinds[k])
		}
	}
}

func TestBuildHierarchy_PartsFillConnectiveText(t *testing.T) {
	text := "<རྒྱ་མཚོ>[{n} རྒྱ་མཚོ ocean]\n\t<རྒྱ>[{n} རྒྱ vast]\n\t<མཚོ>[{n} མཚོ lake]"
	nodes, warnings := BuildHierarchy(text)
	if len(warnings) != 0 {
		t.Errorf("warnings = %v", warnings)
	}
	parts := nodes[0].Parts
	if len(parts) != 3 {
		t.Fatalf("len(parts) = %d, want 3", len(parts))
	}
	if parts[0].Surface != "རྒྱ" || parts[1].Kind != KindText || parts[1].Surface != "་" || parts[2].Surface != "མཚོ" {
		t.Errorf("parts = %+v", parts)
	}
}
