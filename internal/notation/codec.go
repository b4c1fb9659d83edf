package notation

import (
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

var (
	indexedRe   = regexp.MustCompile(`^indexed\(\s*id:\s*([A-Za-z0-9]+)\s*\)$`)
	legacyIDRe  = regexp.MustCompile(`^id:\s*([A-Za-z0-9]+)$`)
	polishedTok = "polished"
)

// Decode parses bracket content (the text between [ and ]) into an Analysis.
//
// Anything from the first ';' onward is ignored. Content without a {...}
// segment decodes in degraded mode: only Definition is set and PartOfSpeech
// stays empty.
func Decode(content string) Analysis {
	if i := strings.Index(content, commentMarker); i >= 0 {
		content = content[:i]
	}
	m := contentRe.FindStringSubmatch(content)
	if m == nil {
		return Analysis{Definition: strings.TrimSpace(content)}
	}

	a := Analysis{FullForm: strings.TrimSpace(m[1])}

	pos, rest := splitTopLevel(m[2])
	posToks := topLevelTokens(pos)
	restToks := topLevelTokens(rest)
	posToks = a.extractMarkers(posToks)
	restToks = a.extractMarkers(restToks)
	a.PartOfSpeech = strings.Join(posToks, ",")
	a.Tense = strings.Join(restToks, ",")

	a.Root, a.Definition = splitRoot(strings.TrimSpace(m[3]))
	return a
}

// extractMarkers removes verb-index references and bare polished tokens,
// recording them on a. The first id seen wins.
func (a *Analysis) extractMarkers(toks []string) []string {
	out := toks[:0]
	for _, t := range toks {
		if sm := indexedRe.FindStringSubmatch(t); sm != nil {
			a.setVerbID(sm[1])
			continue
		}
		if sm := legacyIDRe.FindStringSubmatch(t); sm != nil {
			a.setVerbID(sm[1])
			continue
		}
		if strings.EqualFold(t, polishedTok) {
			a.IsPolished = true
			continue
		}
		out = append(out, t)
	}
	return out
}

func (a *Analysis) setVerbID(id string) {
	if a.VerbID == "" {
		a.VerbID = id
	}
	a.IsPolished = true
}

// splitTopLevel cuts s at its first comma outside parentheses.
func splitTopLevel(s string) (before, after string) {
	depth := 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+1:])
			}
		}
	}
	return strings.TrimSpace(s), ""
}

// topLevelTokens splits s on every comma outside parentheses, dropping empty
// tokens so stripped markers leave no dangling separators.
func topLevelTokens(s string) []string {
	var out []string
	for s != "" {
		var tok string
		tok, s = splitTopLevel(s)
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// splitRoot separates a leading run of Tibetan script from the gloss.
func splitRoot(trailing string) (root, definition string) {
	end := 0
	for end < len(trailing) {
		r, size := utf8.DecodeRuneInString(trailing[end:])
		if !IsTibetan(r) {
			break
		}
		end += size
	}
	return trailing[:end], strings.TrimSpace(trailing[end:])
}

// Encode renders a as canonical bracket content. The result decodes to an
// Analysis Equivalent to a but is not byte-identical to hand-written input:
// whitespace is collapsed and modifiers are appended in a fixed order.
func Encode(a Analysis) string {
	finalPos := strings.TrimSpace(a.PartOfSpeech)
	if finalPos == "" {
		finalPos = TagOther
	}
	if tense := strings.ToLower(strings.TrimSpace(a.Tense)); tense != "" {
		if !slices.Contains(splitTokens(finalPos), tense) {
			finalPos += "," + tense
		}
	}
	switch {
	case a.VerbID != "":
		finalPos += ",indexed(id:" + a.VerbID + ")"
	case a.IsPolished:
		finalPos += "," + polishedTok
	}

	trailing := strings.TrimSpace(a.Root + " " + a.Definition)
	out := strings.TrimSpace(a.FullForm) + "{" + finalPos + "} " + trailing
	return strings.Join(strings.Fields(out), " ")
}

// EncodeLine renders one annotation line: depth tabs, the surface word in
// angle brackets and the encoded analysis in square brackets.
func EncodeLine(depth int, surface string, a Analysis) string {
	return strings.Repeat("\t", depth) + "<" + surface + ">[" + Encode(a) + "]"
}
