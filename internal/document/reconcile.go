package document

import (
	"fmt"
	"strings"
)

// Reconcile overlays annotated nodes on raw text, producing text units for
// the gaps and word units for the nodes. Each node is matched at the
// leftmost occurrence at or after the end of the previous match. A node
// whose surface cannot be found is skipped with a warning and the cursor
// stays put.
func Reconcile(raw string, nodes []*AnnotationNode) ([]Unit, []Warning) {
	var (
		units    []Unit
		warnings []Warning
		cursor   int
	)
	for _, n := range nodes {
		if n.Surface == "" {
			continue
		}
		k := strings.Index(raw[cursor:], n.Surface)
		if k < 0 {
			warnings = append(warnings, Warning{
				Kind:    WarnNodeNotFound,
				Surface: n.Surface,
				Message: fmt.Sprintf("%q not found in text after offset %d", n.Surface, cursor),
			})
			continue
		}
		if k > 0 {
			units = append(units, TextUnit(raw[cursor:cursor+k]))
		}
		units = append(units, n.Unit())
		cursor += k + len(n.Surface)
	}
	if cursor < len(raw) {
		units = append(units, TextUnit(raw[cursor:]))
	}
	return units, warnings
}
