package document

import (
	"strings"
	"testing"

	"github.com/starford/lotsawa/internal/notation"
	"github.com/starford/lotsawa/internal/verbindex"
)

const verbDoc = ">>>\nའགྲོ་བྱེད་ཆུ\n>>>>\n" +
	"<འགྲོ>[{v} འགྲོ]\n" +
	"<བྱེད>[{v->n} བྱེད]\n" +
	"<ཆུ>[{n} ཆུ water]\n" +
	">>>>>"

func testIndex() *verbindex.Index {
	return verbindex.New(map[string][]verbindex.Entry{
		"འགྲོ": {{Tense: "Present", Volition: "vnd", Definition: "go", OriginalWord: "འགྲོ", ID: "12"}},
		"བྱེད": {
			{Tense: "present", Volition: "vd", Definition: "do", OriginalWord: "བྱེད", ID: "b1"},
			{Tense: "past", Volition: "vd", Hon: true, Definition: "did", OriginalWord: "བྱས", ID: "b2"},
		},
	})
}

func TestWords_Offsets(t *testing.T) {
	blocks, _ := Parse(sampleDoc)
	words := Words(blocks)
	// compound + 2 parts + ཆེན་པོ + 2×ཆུ + verb in block 1
	if len(words) != 7 {
		t.Fatalf("len(words) = %d, want 7", len(words))
	}
	raw := blocks[0].RawText
	for _, w := range words[:6] {
		if got := raw[w.Offset : w.Offset+len(w.Surface)]; got != w.Surface {
			t.Errorf("raw[%d:] = %q, want %q", w.Offset, got, w.Surface)
		}
	}
	if words[2].Surface != "མཚོ" || len(words[2].Path.Units) != 2 {
		t.Errorf("third word = %+v", words[2])
	}
	if words[6].Block != 1 || words[6].Offset != 0 {
		t.Errorf("last word = %+v", words[6])
	}
}

func TestPolishVerbs(t *testing.T) {
	blocks, _ := Parse(verbDoc)
	polished, candidates, merged := PolishVerbs(blocks, testIndex())
	if merged != 1 {
		t.Errorf("merged = %d, want 1", merged)
	}
	if len(candidates) != 1 {
		t.Fatalf("len(candidates) = %d, want 1", len(candidates))
	}
	c := candidates[0]
	if c.Original != "བྱེད" || c.IndexInText != len("འགྲོ་") || len(c.Options) != 2 || c.ID == "" {
		t.Errorf("candidate = %+v", c)
	}

	a := polished[0].Lines[0].Units[0].Analysis
	if a.PartOfSpeech != "vnd" || a.Tense != "present" || a.VerbID != "12" || !a.IsPolished || a.Definition != "go" {
		t.Errorf("merged analysis = %+v", a)
	}
	if blocks[0].Lines[0].Units[0].Analysis.IsPolished {
		t.Error("input block was modified")
	}

	again, more, n := PolishVerbs(polished, testIndex())
	if n != 0 || len(more) != 1 {
		t.Errorf("second pass merged = %d candidates = %d, want 0 and 1", n, len(more))
	}
	if !Equivalent(again, polished) {
		t.Error("second pass changed polished words")
	}
}

func TestApplySelections(t *testing.T) {
	blocks, _ := Parse(verbDoc)
	blocks, candidates, _ := PolishVerbs(blocks, testIndex())
	id := candidates[0].ID

	out, applied := ApplySelections(blocks, candidates, []Selection{
		{ID: "unknown", SelectedIndex: 0},
		{ID: id, SelectedIndex: 5},
		{ID: id, SelectedIndex: 1},
		{ID: id, SelectedIndex: 0},
	})
	if len(applied) != 1 || applied[0] != id {
		t.Errorf("applied = %v, want [%s]", applied, id)
	}
	a := out[0].Lines[0].Units[2].Analysis
	if a.Root != "བྱས" || a.VerbID != "b2" || !a.Honorific() || a.PartOfSpeech != "vd->n" {
		t.Errorf("selected analysis = %+v", a)
	}
	if !strings.Contains(Serialize(out), "<བྱེད>[{vd->n,hon,past,indexed(id:b2)} བྱས did]") {
		t.Errorf("serialized:\n%s", Serialize(out))
	}
}

func TestApplySelections_StaleTargetDropped(t *testing.T) {
	blocks, _ := Parse(verbDoc)
	blocks, candidates, _ := PolishVerbs(blocks, testIndex())
	// Restructure: remove the word the candidate points at.
	b, err := RemoveAnalysis(blocks[0], Path{Units: []int{2}})
	if err != nil {
		t.Fatal(err)
	}
	out, applied := ApplySelections([]Block{b}, candidates, []Selection{{ID: candidates[0].ID, SelectedIndex: 0}})
	if len(applied) != 0 {
		t.Errorf("applied = %v, want none", applied)
	}
	if !Equivalent(out, []Block{b}) {
		t.Error("blocks changed")
	}
}

func TestMergeVerbEntry_KeepsDefinitionAndSkipsBadID(t *testing.T) {
	a := notation.Analysis{PartOfSpeech: "v", Definition: "mine"}
	got := MergeVerbEntry(a, verbindex.Entry{Tense: "imp", Definition: "theirs", ID: "x-1"})
	if got.Definition != "mine" {
		t.Errorf("definition = %q, want mine", got.Definition)
	}
	if got.VerbID != "" || !got.IsPolished {
		t.Errorf("verbId = %q polished = %v", got.VerbID, got.IsPolished)
	}
	if got.PartOfSpeech != "v" || got.Tense != "imp" {
		t.Errorf("pos = %q tense = %q", got.PartOfSpeech, got.Tense)
	}
}
