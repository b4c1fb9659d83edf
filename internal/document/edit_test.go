package document

import (
	"errors"
	"testing"

	"github.com/starford/lotsawa/internal/notation"
)

var noun = notation.Analysis{PartOfSpeech: "n", Definition: "thing"}

func plainBlock(t *testing.T, text string) Block {
	t.Helper()
	blocks := Segment(text)
	if len(blocks) != 1 {
		t.Fatalf("Segment(%q) = %d blocks", text, len(blocks))
	}
	return blocks[0]
}

func kinds(units []Unit) string {
	s := ""
	for _, u := range units {
		if u.IsWord() {
			s += "W"
		} else {
			s += "T"
		}
	}
	return s
}

func TestAnnotate_SplitsTextUnit(t *testing.T) {
	b := plainBlock(t, "ཀ་ཁ་ག")
	start, end := len("ཀ་"), len("ཀ་ཁ")
	got, err := Annotate(b, Path{Line: 0, Units: []int{0}}, start, end, noun)
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	units := got.Lines[0].Units
	if kinds(units) != "TWT" {
		t.Fatalf("kinds = %s, want TWT", kinds(units))
	}
	if units[1].Surface != "ཁ" {
		t.Errorf("word = %q, want ཁ", units[1].Surface)
	}
	if got.Text() != b.Text() {
		t.Errorf("text changed: %q -> %q", b.Text(), got.Text())
	}
	if len(b.Lines[0].Units) != 1 {
		t.Error("input block was modified")
	}
}

func TestAnnotate_EdgesOmitEmptyPieces(t *testing.T) {
	b := plainBlock(t, "ཀ་ཁ")
	got, err := Annotate(b, Path{Units: []int{0}}, 0, len("ཀ"), noun)
	if err != nil {
		t.Fatal(err)
	}
	if kinds(got.Lines[0].Units) != "WT" {
		t.Errorf("kinds = %s, want WT", kinds(got.Lines[0].Units))
	}
}

func TestAnnotate_CompoundLifecycle(t *testing.T) {
	b := plainBlock(t, "ཀ་ཁ་ག")
	b, err := Annotate(b, Path{Units: []int{0}}, len("ཀ་"), len("ཀ་ཁ་ག"), noun)
	if err != nil {
		t.Fatal(err)
	}
	// Decompose the word ཁ་ག into ཁ + ་ག.
	b, err = Annotate(b, Path{Units: []int{1}}, 0, len("ཁ"), noun)
	if err != nil {
		t.Fatalf("decompose: %v", err)
	}
	if kinds(b.Lines[0].Units[1].Children) != "WT" {
		t.Fatalf("children = %s, want WT", kinds(b.Lines[0].Units[1].Children))
	}

	if _, err := Annotate(b, Path{Units: []int{1, 0}}, 0, len("ཁ"), noun); !errors.Is(err, ErrTooDeep) {
		t.Errorf("third level err = %v, want ErrTooDeep", err)
	}
	if _, err := Annotate(b, Path{Units: []int{1}}, 0, 1, noun); !errors.Is(err, ErrNotText) {
		t.Errorf("decomposed word err = %v, want ErrNotText", err)
	}

	b, err = Annotate(b, Path{Units: []int{1, 1}}, len("་"), len("་ག"), noun)
	if err != nil {
		t.Fatalf("annotate child text: %v", err)
	}
	if kinds(b.Lines[0].Units[1].Children) != "WTW" {
		t.Fatalf("children = %s, want WTW", kinds(b.Lines[0].Units[1].Children))
	}

	b, err = RemoveAnalysis(b, Path{Units: []int{1, 0}})
	if err != nil {
		t.Fatal(err)
	}
	children := b.Lines[0].Units[1].Children
	if kinds(children) != "TW" || children[0].Surface != "ཁ་" {
		t.Errorf("children after remove = %+v", children)
	}

	b, err = RemoveAnalysis(b, Path{Units: []int{1, 1}})
	if err != nil {
		t.Fatal(err)
	}
	if c := b.Lines[0].Units[1].Children; c != nil {
		t.Errorf("children = %+v, want nil once no sub-words remain", c)
	}

	b, err = RemoveAnalysis(b, Path{Units: []int{1}})
	if err != nil {
		t.Fatal(err)
	}
	units := b.Lines[0].Units
	if len(units) != 1 || units[0].IsWord() || units[0].Surface != "ཀ་ཁ་ག" {
		t.Errorf("units = %+v, want single merged text", units)
	}
}

func TestSetAnalysis(t *testing.T) {
	blocks, _ := Parse(">>>\nཀ་ཁ\n>>>>\n<ཀ>[{n} a]\n>>>>>")
	b := blocks[0]
	next, err := SetAnalysis(b, Path{Units: []int{0}}, notation.Analysis{PartOfSpeech: "adj", Definition: "b"})
	if err != nil {
		t.Fatal(err)
	}
	if next.Lines[0].Units[0].Analysis.PartOfSpeech != "adj" {
		t.Errorf("pos = %q", next.Lines[0].Units[0].Analysis.PartOfSpeech)
	}
	if b.Lines[0].Units[0].Analysis.PartOfSpeech != "n" {
		t.Error("input block was modified")
	}
	if _, err := SetAnalysis(b, Path{Units: []int{1}}, noun); !errors.Is(err, ErrNotWord) {
		t.Errorf("err = %v, want ErrNotWord", err)
	}
}

func TestEdit_Errors(t *testing.T) {
	b := plainBlock(t, "ཀ་ཁ")
	tests := []struct {
		name string
		err  error
		run  func() error
	}{
		{"line out of range", ErrBadPath, func() error {
			_, err := Annotate(b, Path{Line: 3, Units: []int{0}}, 0, 1, noun)
			return err
		}},
		{"empty path", ErrBadPath, func() error {
			_, err := RemoveAnalysis(b, Path{})
			return err
		}},
		{"unit out of range", ErrBadPath, func() error {
			_, err := SetAnalysis(b, Path{Units: []int{4}}, noun)
			return err
		}},
		{"mid-rune span", ErrBadSpan, func() error {
			_, err := Annotate(b, Path{Units: []int{0}}, 1, len("ཀ"), noun)
			return err
		}},
		{"empty span", ErrBadSpan, func() error {
			_, err := Annotate(b, Path{Units: []int{0}}, 3, 3, noun)
			return err
		}},
		{"remove text", ErrNotWord, func() error {
			_, err := RemoveAnalysis(b, Path{Units: []int{0}})
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !errors.Is(err, tt.err) {
				t.Errorf("err = %v, want %v", err, tt.err)
			}
		})
	}
}

func TestAnnotate_InvalidAnalysis(t *testing.T) {
	b := plainBlock(t, "ཀ་ཁ")
	if _, err := Annotate(b, Path{Units: []int{0}}, 0, len("ཀ"), notation.Analysis{PartOfSpeech: "n", Root: "latin"}); err == nil {
		t.Error("expected validation error")
	}
}

func TestMergeText(t *testing.T) {
	w := WordUnit("x", noun)
	got := MergeText([]Unit{TextUnit("a"), TextUnit("b"), w, TextUnit("c"), TextUnit("d")})
	if kinds(got) != "TWT" || got[0].Surface != "ab" || got[2].Surface != "cd" {
		t.Errorf("MergeText = %+v", got)
	}
}

func TestUnitAt(t *testing.T) {
	blocks, _ := Parse(sampleDoc)
	u, err := UnitAt(blocks[0], Path{Line: 0, Units: []int{0, 2}})
	if err != nil {
		t.Fatal(err)
	}
	if u.Surface != "མཚོ" {
		t.Errorf("UnitAt = %q, want མཚོ", u.Surface)
	}
}
