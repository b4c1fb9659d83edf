package main

import (
	"strings"
	"testing"
)

func TestParseNotation(t *testing.T) {
	out := parseNotation(">>>\nཀ་ཁ\n>>>>\n<ཀ>[{n} ཀ ka]\n<ང>[{n} ང nga]\n>>>>>\n")
	if len(out.Blocks) != 1 {
		t.Fatalf("blocks = %d, want 1", len(out.Blocks))
	}
	if got := out.Blocks[0].WordCount(); got != 1 {
		t.Errorf("words = %d, want 1", got)
	}
	if len(out.Warnings) != 1 || out.Warnings[0].Surface != "ང" {
		t.Errorf("warnings = %+v", out.Warnings)
	}

	empty := parseNotation("")
	if empty.Blocks == nil || empty.Warnings == nil {
		t.Error("empty input should produce non-nil slices")
	}
}

func TestFormatNotation(t *testing.T) {
	got, _ := formatNotation("ཀ་ཁ\n\n\nག་ང\n")
	want := ">>>\nཀ་ཁ\n>>>>\n>>>>>\n\n>>>\nག་ང\n>>>>\n>>>>>\n"
	if got != want {
		t.Errorf("plain text = %q, want %q", got, want)
	}

	in := ">>>\nཀ་ཁ\n>>>>\n<ཀ>[{n}  ཀ  ka]\n>>>>>\n"
	got, _ = formatNotation(in)
	if !strings.Contains(got, "<ཀ>[{n} ཀ ka]\n") {
		t.Errorf("annotated = %q", got)
	}
	if again, _ := formatNotation(got); again != got {
		t.Error("format is not idempotent")
	}
}

func TestFormatNotation_KeepsTextOutsideStanzas(t *testing.T) {
	in := ">>>\nཀ་ཁ\n>>>>\n<ཀ>[{n}  ཀ  ka]\n>>>>>\n" +
		"\nTitle line kept by author\n\n" +
		">>>\nམི་ཆུ\n>>>>\n<ཆུ>[{n}  ཆུ  water]\n<མི>[{n} མི man]\n<ཉི>[{n} ཉི sun]\n>>>>>\n" +
		"\n>>>\nག་ང\n>>>>\n<ག>[{n} ག ga]\n"

	got, kept := formatNotation(in)
	if !strings.Contains(got, "<ཀ>[{n} ཀ ka]\n") {
		t.Errorf("first stanza not formatted:\n%s", got)
	}
	if !strings.Contains(got, "\nTitle line kept by author\n") {
		t.Errorf("free text dropped:\n%s", got)
	}
	// The second stanza has an annotation for a word missing from its text.
	if len(kept) != 1 || kept[0] != 1 {
		t.Errorf("kept = %v, want [1]", kept)
	}
	if !strings.Contains(got, "<ཉི>[{n} ཉི sun]") || !strings.Contains(got, "<ཆུ>[{n}  ཆུ  water]") {
		t.Errorf("stanza with unmatched annotation was rewritten:\n%s", got)
	}
	if !strings.HasSuffix(got, ">>>\nག་ང\n>>>>\n<ག>[{n} ག ga]\n") {
		t.Errorf("unterminated stanza lost:\n%s", got)
	}
}
