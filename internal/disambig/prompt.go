package disambig

import (
	"fmt"
	"strings"
)

const instructions = `You are an expert in Classical Tibetan grammar.
For each listed verb occurrence, choose the dictionary reading that fits the
surrounding text. Consider tense (present, past, future, imperative),
volition (vd = volitional, vnd = non-volitional) and honorific register.
Return one result per item with the item id and the zero-based index of the
chosen option. Only use ids and indexes that appear in the input.`

// buildPrompt renders the request as the user message.
func buildPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("Context:\n")
	b.WriteString(req.Context)
	b.WriteString("\n\nItems:\n")
	for _, it := range req.Items {
		fmt.Fprintf(&b, "- id: %s\n  word: %s\n  offset: %d\n  options:\n", it.ID, it.Original, it.IndexInText)
		for i, o := range it.VerbOptions {
			fmt.Fprintf(&b, "    %d. %s", i, o.OriginalWord)
			if o.Tense != "" {
				fmt.Fprintf(&b, " tense=%s", o.Tense)
			}
			if o.Volition != "" {
				fmt.Fprintf(&b, " volition=%s", o.Volition)
			}
			if o.Hon {
				b.WriteString(" honorific")
			}
			if o.Definition != "" {
				fmt.Fprintf(&b, " (%s)", o.Definition)
			}
			b.WriteByte('\n')
		}
	}
	return b.String()
}
