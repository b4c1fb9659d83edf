package document

import (
	"regexp"
	"strings"
)

var stanzaBreakRe = regexp.MustCompile(`\n[ \t]*\n`)

// Segment splits plain text into stanza blocks at blank lines. Each block
// holds one text unit per line and no annotations.
func Segment(text string) []Block {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var blocks []Block
	for _, stanza := range stanzaBreakRe.Split(text, -1) {
		stanza = strings.TrimSpace(stanza)
		if stanza == "" {
			continue
		}
		b := Block{RawText: stanza}
		for _, l := range strings.Split(stanza, "\n") {
			var units []Unit
			if l != "" {
				units = []Unit{TextUnit(l)}
			}
			b.Lines = append(b.Lines, Line{Units: units})
		}
		blocks = append(blocks, b)
	}
	return blocks
}
