// Package notation implements the bracket annotation grammar used inside
// stanza blocks: block and line patterns, the per-word annotation codec, and
// the part-of-speech tag expression language.
package notation

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	// blockRe captures ">>> raw >>>> analysis >>>>>". Both spans are lazy so a
	// later ">>>>>" is never absorbed into an earlier block.
	blockRe = regexp.MustCompile(`(?s)>>>(.*?)>>>>(.*?)>>>>>`)

	// lineRe matches one logical annotation line. Content may contain
	// newlines when it was assembled from a buffered multi-line bracket.
	lineRe = regexp.MustCompile(`(?s)^(\t*)<([^>]+)>\[(.*)\]$`)

	// openRe recognises the head of an annotation line, used to decide
	// whether an unterminated bracket should start buffering.
	openRe = regexp.MustCompile(`^\t*<[^>]+>\[`)

	// contentRe splits bracket payload into fullForm, tags and trailing text.
	contentRe = regexp.MustCompile(`(?s)^(.*?)\{([^}]*)\}(.*)$`)
)

// Block delimiters as written in the document notation.
const (
	BlockOpen     = ">>>"
	BlockSplit    = ">>>>"
	BlockClose    = ">>>>>"
	tibetanFirst  = '\u0F00'
	tibetanLast   = '\u0FFF'
	Tsheg         = "་"
	commentMarker = ";"
)

// BlockMatch is one stanza located by FindBlocks.
type BlockMatch struct {
	Raw      string // whitespace-trimmed raw stanza text
	Analysis string // whitespace-trimmed annotation section
	Start    int    // byte offset of the opening delimiter
	End      int    // byte offset just past the closing delimiter
}

// FindBlocks returns every non-overlapping stanza in text, in order.
// Malformed blocks are not matched and therefore silently omitted.
func FindBlocks(text string) []BlockMatch {
	locs := blockRe.FindAllStringSubmatchIndex(text, -1)
	out := make([]BlockMatch, 0, len(locs))
	for _, l := range locs {
		out = append(out, BlockMatch{
			Raw:      strings.TrimSpace(text[l[2]:l[3]]),
			Analysis: strings.TrimSpace(text[l[4]:l[5]]),
			Start:    l[0],
			End:      l[1],
		})
	}
	return out
}

// Line is one parsed annotation line.
type Line struct {
	Depth   int    // number of leading tabs
	Surface string // the word between < and >
	Content string // bracket payload, outer brackets removed
}

// MatchLine parses a logical annotation line. Trailing whitespace is ignored;
// leading tabs encode depth and are significant.
func MatchLine(line string) (Line, bool) {
	line = strings.TrimRightFunc(line, unicode.IsSpace)
	m := lineRe.FindStringSubmatch(line)
	if m == nil {
		return Line{}, false
	}
	content := m[3]
	// Some exports double the brackets: <w>[[...]].
	if strings.HasPrefix(content, "[") && strings.HasSuffix(content, "]") {
		content = content[1 : len(content)-1]
	}
	return Line{Depth: len(m[1]), Surface: m[2], Content: content}, true
}

// OpensAnnotation reports whether line starts an annotation line.
func OpensAnnotation(line string) bool {
	return openRe.MatchString(line)
}

// ClosesAnnotation reports whether line terminates bracket content.
func ClosesAnnotation(line string) bool {
	return strings.HasSuffix(strings.TrimSpace(line), "]")
}

// HasTags reports whether content carries a {...} tag segment. Content
// without one decodes in degraded, definition-only mode.
func HasTags(content string) bool {
	if i := strings.Index(content, commentMarker); i >= 0 {
		content = content[:i]
	}
	return contentRe.MatchString(content)
}

// IsTibetan reports whether r lies in the Tibetan Unicode block.
func IsTibetan(r rune) bool {
	return r >= tibetanFirst && r <= tibetanLast
}
