package index

import "strings"

// Tibetan punctuation that separates syllables and clauses. FTS5 treats
// both as token separators and queries drop them at the edges.
const (
	tsheg = "་"
	shad  = "།"
)

// normalizeQuery trims whitespace and trailing syllable or clause marks so
// that "མཚོ་" matches "མཚོ".
func normalizeQuery(q string) string {
	q = strings.TrimSpace(q)
	for {
		trimmed := strings.TrimSuffix(strings.TrimSuffix(q, tsheg), shad)
		trimmed = strings.TrimSpace(trimmed)
		if trimmed == q {
			return q
		}
		q = trimmed
	}
}

// ftsPhrase quotes q as a single FTS5 phrase so user input never reaches
// the query syntax.
func ftsPhrase(q string) string {
	return `"` + strings.ReplaceAll(q, `"`, `""`) + `"`
}

var likeReplacer = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likeEscape escapes LIKE wildcards for use with ESCAPE '\'.
func likeEscape(q string) string {
	return likeReplacer.Replace(q)
}
