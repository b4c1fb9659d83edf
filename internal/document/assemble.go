package document

import (
	"strings"

	"github.com/starford/lotsawa/internal/notation"
)

// Parse splits a document into stanza blocks. Text without any stanza
// markers becomes a single block holding the whole input as one text unit;
// blank input yields no blocks. Malformed stanzas are skipped silently.
func Parse(text string) ([]Block, []Warning) {
	matches := notation.FindBlocks(text)
	if len(matches) == 0 {
		if strings.TrimSpace(text) == "" {
			return nil, nil
		}
		return []Block{{
			RawText: text,
			Lines:   []Line{{Units: []Unit{TextUnit(text)}}},
		}}, nil
	}

	blocks := make([]Block, 0, len(matches))
	var warnings []Warning
	for i, m := range matches {
		b, ws := ProcessBlock(m.Raw, m.Analysis)
		blocks = append(blocks, b)
		warnings = append(warnings, withBlock(ws, i)...)
	}
	return blocks, warnings
}

// ProcessBlock builds one stanza from its raw text and annotation section.
func ProcessBlock(raw, analysis string) (Block, []Warning) {
	nodes, warnings := BuildHierarchy(analysis)
	units, ws := Reconcile(raw, nodes)
	return Block{RawText: raw, Lines: groupLines(units)}, append(warnings, ws...)
}

// groupLines breaks a unit stream into lines at the newlines inside text
// units. Word units never contain newlines.
func groupLines(units []Unit) []Line {
	var (
		lines   []Line
		current []Unit
	)
	for _, u := range units {
		if u.IsWord() {
			current = append(current, u)
			continue
		}
		for i, seg := range strings.Split(u.Surface, "\n") {
			if i > 0 {
				lines = append(lines, Line{Units: current})
				current = nil
			}
			if seg != "" {
				current = append(current, TextUnit(seg))
			}
		}
	}
	if len(current) > 0 {
		lines = append(lines, Line{Units: current})
	}
	return lines
}
