// Package document turns annotated stanza notation into a tree of text and
// word units and back again.
package document

import (
	"fmt"
	"strings"

	"github.com/starford/lotsawa/internal/notation"
)

// UnitKind distinguishes plain text gaps from analyzed words.
type UnitKind string

const (
	KindText UnitKind = "text"
	KindWord UnitKind = "word"
)

// MaxWordDepth is the deepest nesting of word units: a word may contain
// sub-words, sub-words may contain only text.
const MaxWordDepth = 2

// Unit is one rendered span of a line.
type Unit struct {
	Kind     UnitKind           `json:"kind"`
	Surface  string             `json:"surfaceText"`
	Analysis *notation.Analysis `json:"analysis,omitempty"`
	Children []Unit             `json:"children,omitempty"`
}

// TextUnit returns a plain text unit.
func TextUnit(s string) Unit {
	return Unit{Kind: KindText, Surface: s}
}

// WordUnit returns an analyzed word unit.
func WordUnit(s string, a notation.Analysis, children ...Unit) Unit {
	return Unit{Kind: KindWord, Surface: s, Analysis: &a, Children: children}
}

// IsWord reports whether u carries an analysis.
func (u Unit) IsWord() bool { return u.Kind == KindWord }

// Line is a run of units between newlines of the raw text.
type Line struct {
	Units []Unit `json:"units"`
}

// Text concatenates the surface text of the line's units.
func (l Line) Text() string {
	var b strings.Builder
	for _, u := range l.Units {
		b.WriteString(u.Surface)
	}
	return b.String()
}

// Block is one stanza.
type Block struct {
	RawText string `json:"rawText"`
	Lines   []Line `json:"lines"`
}

// Text rebuilds the raw stanza text from the lines.
func (b Block) Text() string {
	parts := make([]string, len(b.Lines))
	for i, l := range b.Lines {
		parts[i] = l.Text()
	}
	return strings.Join(parts, "\n")
}

// WordCount returns the number of top-level word units.
func (b Block) WordCount() int {
	n := 0
	for _, l := range b.Lines {
		for _, u := range l.Units {
			if u.IsWord() {
				n++
			}
		}
	}
	return n
}

// AnnotationNode is one parsed annotation line before it is overlaid on the
// raw text. Parts holds the reconciled decomposition of Surface once the
// hierarchy post-pass has run.
type AnnotationNode struct {
	Depth      int
	Surface    string
	RawContent string
	Analysis   notation.Analysis
	Children   []*AnnotationNode
	Parts      []Unit
}

// Unit converts the node into a word unit.
func (n *AnnotationNode) Unit() Unit {
	a := n.Analysis
	return Unit{Kind: KindWord, Surface: n.Surface, Analysis: &a, Children: n.Parts}
}

// WarningKind classifies a non-fatal parse finding.
type WarningKind string

const (
	WarnNodeNotFound       WarningKind = "node_not_found"
	WarnUnterminated       WarningKind = "unterminated_annotation"
	WarnUnparsedLine       WarningKind = "unparsed_line"
	WarnDegradedAnnotation WarningKind = "degraded_annotation"
)

// Warning reports data that was skipped or read in degraded mode. Block is
// the zero-based stanza index, or -1 when not tied to a stanza.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Block   int         `json:"block"`
	Surface string      `json:"surface,omitempty"`
	Message string      `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("block %d: %s: %s", w.Block, w.Kind, w.Message)
}

func withBlock(ws []Warning, block int) []Warning {
	for i := range ws {
		ws[i].Block = block
	}
	return ws
}
