package document

import (
	"strings"

	"github.com/starford/lotsawa/internal/notation"
)

// Serialize writes blocks back to stanza notation, separated by blank lines.
// Raw text is rebuilt from the units so edits are reflected.
func Serialize(blocks []Block) string {
	if len(blocks) == 0 {
		return ""
	}
	parts := make([]string, len(blocks))
	for i, b := range blocks {
		parts[i] = SerializeBlock(b)
	}
	return strings.Join(parts, "\n\n") + "\n"
}

// SerializeBlock writes a single stanza without a trailing newline.
func SerializeBlock(b Block) string {
	var sb strings.Builder
	sb.WriteString(notation.BlockOpen + "\n")
	sb.WriteString(b.Text())
	sb.WriteString("\n" + notation.BlockSplit + "\n")
	for _, l := range b.Lines {
		writeWords(&sb, l.Units, 0)
	}
	sb.WriteString(notation.BlockClose)
	return sb.String()
}

func writeWords(sb *strings.Builder, units []Unit, depth int) {
	for _, u := range units {
		if !u.IsWord() {
			continue
		}
		var a notation.Analysis
		if u.Analysis != nil {
			a = *u.Analysis
		}
		sb.WriteString(notation.EncodeLine(depth, u.Surface, a))
		sb.WriteByte('\n')
		writeWords(sb, u.Children, depth+1)
	}
}

// Equivalent reports whether two block lists carry the same text and
// semantically equal analyses.
func Equivalent(a, b []Block) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i].Lines) != len(b[i].Lines) {
			return false
		}
		for j := range a[i].Lines {
			if !unitsEquivalent(a[i].Lines[j].Units, b[i].Lines[j].Units) {
				return false
			}
		}
	}
	return true
}

func unitsEquivalent(a, b []Unit) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		x, y := a[i], b[i]
		if x.Kind != y.Kind || x.Surface != y.Surface {
			return false
		}
		if x.IsWord() {
			var ax, ay notation.Analysis
			if x.Analysis != nil {
				ax = *x.Analysis
			}
			if y.Analysis != nil {
				ay = *y.Analysis
			}
			if !notation.Equivalent(ax, ay) {
				return false
			}
		}
		if !unitsEquivalent(x.Children, y.Children) {
			return false
		}
	}
	return true
}
