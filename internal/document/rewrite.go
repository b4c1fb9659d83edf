package document

import (
	"strings"

	"github.com/starford/lotsawa/internal/notation"
)

// Lossy reports whether w means part of a stanza's annotation section was
// dropped while parsing, so serializing the block would lose it.
func (w Warning) Lossy() bool {
	switch w.Kind {
	case WarnNodeNotFound, WarnUnterminated, WarnUnparsedLine:
		return true
	}
	return false
}

// Rewrite splices blocks back into text. blocks must come from Parse(text),
// possibly edited; block i replaces the i-th stanza FindBlocks locates.
// Bytes outside stanzas are copied as-is, including malformed or
// unterminated stanzas. A stanza whose block is equivalent to its parse is
// copied unchanged unless normalize is set. A stanza whose parse dropped
// annotation lines is never rewritten; those block indexes are returned.
// Text without stanzas parses to a single block covering all of it, so a
// change there is written as one whole stanza.
func Rewrite(text string, blocks []Block, normalize bool) (string, []int) {
	matches := notation.FindBlocks(text)
	parsed, warnings := Parse(text)
	if len(matches) == 0 {
		if normalize || !Equivalent(parsed, blocks) {
			return Serialize(blocks), nil
		}
		return text, nil
	}
	lossy := make(map[int]bool)
	for _, w := range warnings {
		if w.Lossy() {
			lossy[w.Block] = true
		}
	}

	var (
		sb   strings.Builder
		kept []int
		last int
	)
	sb.Grow(len(text))
	for i, m := range matches {
		sb.WriteString(text[last:m.Start])
		last = m.End
		if i >= len(blocks) {
			sb.WriteString(text[m.Start:m.End])
			continue
		}
		changed := !Equivalent(parsed[i:i+1], blocks[i:i+1])
		switch {
		case lossy[i]:
			if changed || normalize {
				kept = append(kept, i)
			}
			sb.WriteString(text[m.Start:m.End])
		case changed || normalize:
			sb.WriteString(SerializeBlock(blocks[i]))
		default:
			sb.WriteString(text[m.Start:m.End])
		}
	}
	sb.WriteString(text[last:])
	return sb.String(), kept
}
