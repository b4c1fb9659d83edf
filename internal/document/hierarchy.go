package document

import (
	"fmt"
	"strings"

	"github.com/starford/lotsawa/internal/notation"
)

type scanState int

const (
	idle scanState = iota
	buffering
)

// lineScanner assembles logical annotation lines from physical lines. A line
// that opens a bracket without closing it switches to buffering until a line
// ending in ']' arrives.
type lineScanner struct {
	state    scanState
	buf      []string
	logical  []string
	warnings []Warning
}

func (s *lineScanner) feed(line string) {
	line = strings.TrimSuffix(line, "\r")
	switch s.state {
	case idle:
		if strings.TrimSpace(line) == "" {
			return
		}
		if notation.OpensAnnotation(line) && !notation.ClosesAnnotation(line) {
			s.state = buffering
			s.buf = append(s.buf[:0], line)
			return
		}
		s.logical = append(s.logical, line)
	case buffering:
		s.buf = append(s.buf, line)
		if notation.ClosesAnnotation(line) {
			s.logical = append(s.logical, strings.Join(s.buf, "\n"))
			s.buf = s.buf[:0]
			s.state = idle
		}
	}
}

func (s *lineScanner) finish() {
	if s.state == buffering && len(s.buf) > 0 {
		s.warnings = append(s.warnings, Warning{
			Kind:    WarnUnterminated,
			Message: fmt.Sprintf("annotation never closed: %q", firstLine(s.buf[0])),
		})
	}
	s.buf = nil
	s.state = idle
}

// BuildHierarchy parses an annotation section into a forest of nodes.
// Leading tabs set nesting: a deeper line attaches to the nearest preceding
// shallower line, so depth jumps never create empty levels.
func BuildHierarchy(analysisText string) ([]*AnnotationNode, []Warning) {
	var sc lineScanner
	for _, line := range strings.Split(analysisText, "\n") {
		sc.feed(line)
	}
	sc.finish()
	warnings := sc.warnings

	var roots []*AnnotationNode
	var stack []*AnnotationNode
	for _, logical := range sc.logical {
		ln, ok := notation.MatchLine(logical)
		if !ok {
			warnings = append(warnings, Warning{
				Kind:    WarnUnparsedLine,
				Message: fmt.Sprintf("not an annotation line: %q", firstLine(logical)),
			})
			continue
		}
		if !notation.HasTags(ln.Content) {
			warnings = append(warnings, Warning{
				Kind:    WarnDegradedAnnotation,
				Surface: ln.Surface,
				Message: "annotation has no {tags}; read as definition only",
			})
		}
		node := &AnnotationNode{
			Depth:      ln.Depth,
			Surface:    ln.Surface,
			RawContent: ln.Content,
			Analysis:   notation.Decode(ln.Content),
		}
		for len(stack) > 0 && stack[len(stack)-1].Depth >= node.Depth {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			roots = append(roots, node)
		} else {
			top := stack[len(stack)-1]
			top.Children = append(top.Children, node)
		}
		stack = append(stack, node)
	}

	for _, r := range roots {
		warnings = append(warnings, fillParts(r)...)
	}
	return roots, warnings
}

// fillParts reconciles each node's surface against its children, deepest
// nodes first.
func fillParts(n *AnnotationNode) []Warning {
	if len(n.Children) == 0 {
		return nil
	}
	var warnings []Warning
	for _, c := range n.Children {
		warnings = append(warnings, fillParts(c)...)
	}
	parts, ws := Reconcile(n.Surface, n.Children)
	n.Parts = parts
	return append(warnings, ws...)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + "..."
	}
	return s
}
