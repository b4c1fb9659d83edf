package notation

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Known part-of-speech tags.
const (
	TagNoun              = "n"
	TagVerb              = "v"
	TagVerbVolitional    = "vd"
	TagVerbNonVolitional = "vnd"
	TagAdjective         = "adj"
	TagAdverb            = "adv"
	TagPronoun           = "pron"
	TagParticle          = "part"
	TagOther             = "other"
)

var knownTags = map[string]bool{
	TagNoun: true, TagVerb: true, TagVerbVolitional: true, TagVerbNonVolitional: true,
	TagAdjective: true, TagAdverb: true, TagPronoun: true, TagParticle: true, TagOther: true,
}

// TagExpr is a parsed POS expression: a disjunction of tags, optionally
// transformed into another disjunction ("grammatically From, used as To").
type TagExpr struct {
	From []string `parser:"@Tag ( '|' @Tag )*"`
	To   []string `parser:"( '->' @Tag ( '|' @Tag )* )?"`
}

var tagLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Arrow", Pattern: `->`},
	{Name: "Tag", Pattern: `[A-Za-z][A-Za-z0-9_]*`},
	{Name: "Pipe", Pattern: `\|`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var tagParser = participle.MustBuild[TagExpr](
	participle.Lexer(tagLexer),
	participle.Elide("Whitespace"),
)

// ParseTags parses a POS expression such as "n", "n|adj" or "v->n".
func ParseTags(s string) (*TagExpr, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty tag expression")
	}
	expr, err := tagParser.ParseString("", s)
	if err != nil {
		return nil, fmt.Errorf("invalid tag expression %q: %w", s, err)
	}
	return expr, nil
}

// IsTransform reports whether the expression uses "->".
func (e *TagExpr) IsTransform() bool {
	return len(e.To) > 0
}

// Tags returns every tag named on either side of the expression.
func (e *TagExpr) Tags() []string {
	out := make([]string, 0, len(e.From)+len(e.To))
	out = append(out, e.From...)
	return append(out, e.To...)
}

// Unknown returns tags outside the known vocabulary.
func (e *TagExpr) Unknown() []string {
	var out []string
	for _, t := range e.Tags() {
		if !knownTags[t] {
			out = append(out, t)
		}
	}
	return out
}

// String renders the expression canonically.
func (e *TagExpr) String() string {
	s := strings.Join(e.From, "|")
	if e.IsTransform() {
		s += "->" + strings.Join(e.To, "|")
	}
	return s
}

// TagSet returns the tags of a POS expression. Unparseable input falls back
// to splitting on the operator characters so comparisons still work.
func TagSet(pos string) []string {
	if strings.TrimSpace(pos) == "" {
		return nil
	}
	if expr, err := ParseTags(pos); err == nil {
		return expr.Tags()
	}
	return splitTokens(strings.ReplaceAll(pos, "->", "|"))
}
