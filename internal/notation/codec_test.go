package notation

import (
	"testing"
)

func TestDecode_VerbWithFullForm(t *testing.T) {
	a := Decode("བསྐྱོད་པ{v,past} བསྐྱོད motion")
	want := Analysis{
		FullForm:     "བསྐྱོད་པ",
		PartOfSpeech: "v",
		Tense:        "past",
		Root:         "བསྐྱོད",
		Definition:   "motion",
	}
	if a != want {
		t.Errorf("Decode = %+v, want %+v", a, want)
	}
}

func TestDecode_LatinGlossHasNoRoot(t *testing.T) {
	a := Decode("{n} agraḥ")
	if a.PartOfSpeech != "n" {
		t.Errorf("pos = %q, want %q", a.PartOfSpeech, "n")
	}
	if a.Root != "" {
		t.Errorf("root = %q, want empty", a.Root)
	}
	if a.Definition != "agraḥ" {
		t.Errorf("definition = %q, want %q", a.Definition, "agraḥ")
	}
}

func TestDecode_IndexedVerbID(t *testing.T) {
	a := Decode("{v,indexed(id:42)} འགྲོ go")
	if a.PartOfSpeech != "v" {
		t.Errorf("pos = %q, want %q", a.PartOfSpeech, "v")
	}
	if a.Tense != "" {
		t.Errorf("tense = %q, want empty", a.Tense)
	}
	if a.VerbID != "42" || !a.IsPolished {
		t.Errorf("verbId = %q polished = %v, want 42/true", a.VerbID, a.IsPolished)
	}
}

func TestDecode_IndexedAfterModifiers(t *testing.T) {
	a := Decode("{vd,hon,past,indexed(id:a7)} གསུངས")
	if a.PartOfSpeech != "vd" {
		t.Errorf("pos = %q", a.PartOfSpeech)
	}
	if a.Tense != "hon,past" {
		t.Errorf("tense = %q, want %q", a.Tense, "hon,past")
	}
	if a.VerbID != "a7" {
		t.Errorf("verbId = %q, want a7", a.VerbID)
	}
	if !a.Honorific() {
		t.Error("expected honorific")
	}
}

func TestDecode_LegacyID(t *testing.T) {
	a := Decode("{v,id:17,future} ཟ eat")
	if a.VerbID != "17" || !a.IsPolished {
		t.Errorf("verbId = %q polished = %v", a.VerbID, a.IsPolished)
	}
	if a.Tense != "future" {
		t.Errorf("tense = %q, want future", a.Tense)
	}
}

func TestDecode_BarePolished(t *testing.T) {
	a := Decode("{v,past,polished} བྱས do")
	if !a.IsPolished {
		t.Error("expected polished")
	}
	if a.VerbID != "" {
		t.Errorf("verbId = %q, want empty", a.VerbID)
	}
	if a.Tense != "past" {
		t.Errorf("tense = %q, want past", a.Tense)
	}
}

func TestDecode_CommentIgnored(t *testing.T) {
	a := Decode("{n} ཆུ water; reviewed {v}")
	if a.PartOfSpeech != "n" || a.Definition != "water" {
		t.Errorf("Decode = %+v", a)
	}
}

func TestDecode_DegradedMode(t *testing.T) {
	a := Decode("  just a gloss  ")
	if a.PartOfSpeech != "" {
		t.Errorf("pos = %q, want empty in degraded mode", a.PartOfSpeech)
	}
	if a.Definition != "just a gloss" {
		t.Errorf("definition = %q", a.Definition)
	}
}

func TestDecode_CommaInsideParensIsNotSplit(t *testing.T) {
	a := Decode("{indexed(id:9),v} x")
	if a.VerbID != "9" {
		t.Errorf("verbId = %q, want 9", a.VerbID)
	}
	if a.Tense != "v" || a.PartOfSpeech != "" {
		t.Errorf("pos = %q tense = %q", a.PartOfSpeech, a.Tense)
	}
}

func TestEncode_Canonical(t *testing.T) {
	tests := []struct {
		name string
		in   Analysis
		want string
	}{
		{"empty pos", Analysis{Definition: "thing"}, "{other} thing"},
		{"full form", Analysis{FullForm: "བསྐྱོད་པ", PartOfSpeech: "v", Tense: "Past", Root: "བསྐྱོད", Definition: "motion"}, "བསྐྱོད་པ{v,past} བསྐྱོད motion"},
		{"verb id", Analysis{PartOfSpeech: "v", VerbID: "42", IsPolished: true}, "{v,indexed(id:42)}"},
		{"polished no id", Analysis{PartOfSpeech: "v", IsPolished: true, Root: "བྱ"}, "{v,polished} བྱ"},
		{"whitespace", Analysis{PartOfSpeech: "n", Definition: "  wide \n  sea "}, "{n} wide sea"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Encode(tt.in); got != tt.want {
				t.Errorf("Encode = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEncode_TenseAlreadyInPos(t *testing.T) {
	got := Encode(Analysis{PartOfSpeech: "v,past", Tense: "past"})
	if got != "{v,past}" {
		t.Errorf("Encode = %q, want %q", got, "{v,past}")
	}
}

func TestEncodeLine(t *testing.T) {
	got := EncodeLine(1, "མཚོ", Analysis{PartOfSpeech: "n", Root: "མཚོ", Definition: "lake"})
	want := "\t<མཚོ>[{n} མཚོ lake]"
	if got != want {
		t.Errorf("EncodeLine = %q, want %q", got, want)
	}
}

func TestRoundTrip_Equivalent(t *testing.T) {
	cases := []Analysis{
		{PartOfSpeech: "n", Root: "རྒྱ་མཚོ", Definition: "ocean"},
		{FullForm: "བསྐྱོད་པ", PartOfSpeech: "v", Tense: "past", Root: "བསྐྱོད", Definition: "motion"},
		{PartOfSpeech: "n|adj", Definition: "agraḥ"},
		{PartOfSpeech: "v->n", Tense: "hon|past", Root: "གསུང"},
		{PartOfSpeech: "vd", Tense: "hon,future", Root: "བཞེངས", VerbID: "x12", IsPolished: true},
		{PartOfSpeech: "vnd", IsPolished: true, Definition: "fall asleep"},
		{PartOfSpeech: "part"},
	}
	for _, a := range cases {
		if err := a.Validate(); err != nil {
			t.Fatalf("Validate(%+v): %v", a, err)
		}
		enc := Encode(a)
		got := Decode(enc)
		if !Equivalent(a, got) {
			t.Errorf("round trip of %+v via %q = %+v", a, enc, got)
		}
	}
}

func TestEquivalent_IgnoresOrderAndWhitespace(t *testing.T) {
	a := Analysis{PartOfSpeech: "n|adj", Tense: "past,hon", Definition: "big  sea"}
	b := Analysis{PartOfSpeech: "adj|n", Tense: "HON|past", Definition: " big sea"}
	if !Equivalent(a, b) {
		t.Error("expected equivalent")
	}
	b.VerbID = "1"
	if Equivalent(a, b) {
		t.Error("expected verbId difference to matter")
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name string
		in   Analysis
	}{
		{"bad pos", Analysis{PartOfSpeech: "n|"}},
		{"unknown pos", Analysis{PartOfSpeech: "noun"}},
		{"unknown transform target", Analysis{PartOfSpeech: "v->zz"}},
		{"brace in full form", Analysis{FullForm: "a{b", PartOfSpeech: "n"}},
		{"latin root", Analysis{PartOfSpeech: "n", Root: "abc"}},
		{"semicolon definition", Analysis{PartOfSpeech: "n", Definition: "a;b"}},
		{"tibetan definition without root", Analysis{PartOfSpeech: "n", Definition: "ཆུ water"}},
		{"verb id", Analysis{PartOfSpeech: "v", VerbID: "4-2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.in.Validate(); err == nil {
				t.Errorf("Validate(%+v) = nil, want error", tt.in)
			}
		})
	}
}
