package notation

import (
	"regexp"
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Analysis is the linguistic annotation attached to a word.
type Analysis struct {
	FullForm     string `json:"fullForm,omitempty"`
	PartOfSpeech string `json:"partOfSpeech"`
	Tense        string `json:"tense,omitempty"`
	Root         string `json:"root,omitempty"`
	Definition   string `json:"definition,omitempty"`
	VerbID       string `json:"verbId,omitempty"`
	IsPolished   bool   `json:"isPolished,omitempty"`
}

// Modifier tokens that may follow the part of speech.
const (
	ModHonorific = "hon"
	ModPast      = "past"
	ModImp       = "imp"
	ModFuture    = "future"
)

var (
	rootRe     = regexp.MustCompile(`^[\x{0F00}-\x{0FFF}]*$`)
	verbIDRe   = regexp.MustCompile(`^[A-Za-z0-9]*$`)
	reservedRe = regexp.MustCompile(`[{};]`)
)

// Modifiers returns the lower-cased modifier tokens carried in Tense.
func (a Analysis) Modifiers() []string {
	return splitTokens(strings.ToLower(a.Tense))
}

// Honorific reports whether the hon modifier is present.
func (a Analysis) Honorific() bool {
	return slices.Contains(a.Modifiers(), ModHonorific)
}

// Tenses returns the modifiers other than hon.
func (a Analysis) Tenses() []string {
	var out []string
	for _, m := range a.Modifiers() {
		if m != ModHonorific {
			out = append(out, m)
		}
	}
	return out
}

// IsVerb reports whether the grammatical side of the POS expression names a
// verb tag.
func (a Analysis) IsVerb() bool {
	expr, err := ParseTags(a.PartOfSpeech)
	if err != nil {
		return false
	}
	for _, t := range expr.From {
		if t == TagVerb || t == TagVerbVolitional || t == TagVerbNonVolitional {
			return true
		}
	}
	return false
}

// Validate reports whether a survives Encode/Decode unchanged in meaning and
// names only known part-of-speech tags.
func (a Analysis) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.FullForm, validation.By(noReserved)),
		validation.Field(&a.PartOfSpeech, validation.By(validTagExpr)),
		validation.Field(&a.Tense, validation.By(noReserved)),
		validation.Field(&a.Root, validation.Match(rootRe).Error("must contain only Tibetan script")),
		validation.Field(&a.Definition,
			validation.By(noReserved),
			validation.When(a.Root == "", validation.By(noLeadingTibetan)),
		),
		validation.Field(&a.VerbID, validation.Match(verbIDRe).Error("must be alphanumeric")),
	)
}

func noReserved(v any) error {
	s, _ := v.(string)
	if reservedRe.MatchString(s) {
		return validation.NewError("validation_reserved", "must not contain '{', '}' or ';'")
	}
	return nil
}

func noLeadingTibetan(v any) error {
	s, _ := v.(string)
	for _, r := range strings.TrimSpace(s) {
		if IsTibetan(r) {
			return validation.NewError("validation_root_ambiguous", "must not start with Tibetan script when root is empty")
		}
		break
	}
	return nil
}

func validTagExpr(v any) error {
	s, _ := v.(string)
	if strings.TrimSpace(s) == "" {
		return nil
	}
	expr, err := ParseTags(s)
	if err != nil {
		return validation.NewError("validation_pos", err.Error())
	}
	if unknown := expr.Unknown(); len(unknown) > 0 {
		return validation.NewError("validation_pos_unknown", "unknown tags: "+strings.Join(unknown, ", "))
	}
	return nil
}

// Equivalent reports whether a and b carry the same meaning: tag sets are
// compared unordered, text fields with whitespace collapsed, and empty
// strings equal absent values. An empty part of speech equals "other", the
// value Encode writes for it.
func Equivalent(a, b Analysis) bool {
	return sameSet(posTags(a.PartOfSpeech), posTags(b.PartOfSpeech)) &&
		sameSet(a.Modifiers(), b.Modifiers()) &&
		collapse(a.FullForm) == collapse(b.FullForm) &&
		collapse(a.Root) == collapse(b.Root) &&
		collapse(a.Definition) == collapse(b.Definition) &&
		a.VerbID == b.VerbID &&
		a.IsPolished == b.IsPolished
}

func posTags(pos string) []string {
	if strings.TrimSpace(pos) == "" {
		return []string{TagOther}
	}
	return TagSet(pos)
}

func sameSet(a, b []string) bool {
	a = slices.Compact(slices.Sorted(slices.Values(a)))
	b = slices.Compact(slices.Sorted(slices.Values(b)))
	return slices.Equal(a, b)
}

// splitTokens splits on commas and pipes, dropping empty tokens.
func splitTokens(s string) []string {
	var out []string
	for _, f := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '|' }) {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
