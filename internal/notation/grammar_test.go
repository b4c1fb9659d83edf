package notation

import (
	"testing"
)

func TestFindBlocks_Multiple(t *testing.T) {
	text := ">>>\nཀ་ཁ\n>>>>\n<ཀ>[{n} a]\n>>>>>\n\n>>>\nག\n>>>>\n<ག>[{n} b]\n>>>>>\n"
	blocks := FindBlocks(text)
	if len(blocks) != 2 {
		t.Fatalf("len(blocks) = %d, want 2", len(blocks))
	}
	if blocks[0].Raw != "ཀ་ཁ" {
		t.Errorf("raw = %q, want %q", blocks[0].Raw, "ཀ་ཁ")
	}
	if blocks[1].Analysis != "<ག>[{n} b]" {
		t.Errorf("analysis = %q", blocks[1].Analysis)
	}
	if blocks[0].End > blocks[1].Start {
		t.Errorf("blocks overlap: %d > %d", blocks[0].End, blocks[1].Start)
	}
}

func TestFindBlocks_MalformedOmitted(t *testing.T) {
	text := ">>>\nཀ\n>>>>\n<ཀ>[{n} a]\n\nplain tail"
	if blocks := FindBlocks(text); len(blocks) != 0 {
		t.Errorf("expected no blocks, got %d", len(blocks))
	}
}

func TestMatchLine(t *testing.T) {
	l, ok := MatchLine("\t\t<མཚོ>[{n} lake]  ")
	if !ok {
		t.Fatal("expected match")
	}
	if l.Depth != 2 || l.Surface != "མཚོ" || l.Content != "{n} lake" {
		t.Errorf("MatchLine = %+v", l)
	}
}

func TestMatchLine_DoubledBrackets(t *testing.T) {
	l, ok := MatchLine("<ཀ>[[{n} a]]")
	if !ok {
		t.Fatal("expected match")
	}
	if l.Content != "{n} a" {
		t.Errorf("content = %q, want %q", l.Content, "{n} a")
	}
}

func TestMatchLine_MultilineContent(t *testing.T) {
	l, ok := MatchLine("<ཀ>[{n} first\nsecond]")
	if !ok {
		t.Fatal("expected match")
	}
	if l.Content != "{n} first\nsecond" {
		t.Errorf("content = %q", l.Content)
	}
}

func TestMatchLine_Rejects(t *testing.T) {
	for _, s := range []string{"plain", "<>[x]", "<ཀ>[open", "  <ཀ>[x]"} {
		if _, ok := MatchLine(s); ok {
			t.Errorf("MatchLine(%q) matched", s)
		}
	}
}

func TestOpensAndClosesAnnotation(t *testing.T) {
	if !OpensAnnotation("\t<ཀ>[{n} start") {
		t.Error("expected opener")
	}
	if OpensAnnotation("continuation]") {
		t.Error("continuation is not an opener")
	}
	if !ClosesAnnotation("end]  ") {
		t.Error("expected closer")
	}
}

func TestHasTags(t *testing.T) {
	if !HasTags("x{n} y") {
		t.Error("expected tags")
	}
	if HasTags("gloss; {n}") {
		t.Error("tags after ';' must be ignored")
	}
}
