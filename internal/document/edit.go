package document

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/starford/lotsawa/internal/notation"
)

var (
	ErrBadPath = errors.New("document: path does not address a unit")
	ErrNotText = errors.New("document: unit is not plain text")
	ErrNotWord = errors.New("document: unit is not a word")
	ErrBadSpan = errors.New("document: invalid span")
	ErrTooDeep = errors.New("document: words nest at most two levels")
)

// Path addresses a unit inside a block: a line index, the index of the
// top-level unit, and optionally the index of one of its children.
type Path struct {
	Line  int   `json:"line"`
	Units []int `json:"units"`
}

func (p Path) String() string {
	return fmt.Sprintf("%d:%v", p.Line, p.Units)
}

// editFunc returns a replacement for siblings with the unit at i edited. It
// must not modify siblings in place.
type editFunc func(siblings []Unit, i int) ([]Unit, error)

// editBlock applies fn at p, copying only the slices on the path.
func editBlock(b Block, p Path, fn editFunc) (Block, error) {
	if p.Line < 0 || p.Line >= len(b.Lines) || len(p.Units) == 0 || len(p.Units) > MaxWordDepth {
		return Block{}, fmt.Errorf("%w: %s", ErrBadPath, p)
	}
	units, err := editSiblings(b.Lines[p.Line].Units, p.Units, fn)
	if err != nil {
		return Block{}, err
	}
	lines := slices.Clone(b.Lines)
	lines[p.Line] = Line{Units: units}
	return Block{RawText: b.RawText, Lines: lines}, nil
}

func editSiblings(units []Unit, idx []int, fn editFunc) ([]Unit, error) {
	i := idx[0]
	if i < 0 || i >= len(units) {
		return nil, fmt.Errorf("%w: index %d of %d", ErrBadPath, i, len(units))
	}
	if len(idx) == 1 {
		return fn(units, i)
	}
	u := units[i]
	if !u.IsWord() || len(u.Children) == 0 {
		return nil, fmt.Errorf("%w: unit %d has no children", ErrBadPath, i)
	}
	children, err := editSiblings(u.Children, idx[1:], fn)
	if err != nil {
		return nil, err
	}
	u.Children = compactChildren(children)
	out := slices.Clone(units)
	out[i] = u
	return out, nil
}

// Annotate turns the byte span [start,end) of the unit at p into a word.
// A text unit is split into text, word and text pieces, dropping empty
// pieces. A word without children is decomposed: the span becomes a sub-word
// and the rest of the surface becomes connective text.
func Annotate(b Block, p Path, start, end int, a notation.Analysis) (Block, error) {
	if err := a.Validate(); err != nil {
		return Block{}, fmt.Errorf("document: analysis: %w", err)
	}
	return editBlock(b, p, func(sibs []Unit, i int) ([]Unit, error) {
		u := sibs[i]
		switch {
		case !u.IsWord():
			pieces, err := splitSpan(u.Surface, start, end, a)
			if err != nil {
				return nil, err
			}
			return slices.Concat(sibs[:i], pieces, sibs[i+1:]), nil
		case len(u.Children) > 0:
			return nil, fmt.Errorf("%w: word %q is already decomposed", ErrNotText, u.Surface)
		case len(p.Units)+1 > MaxWordDepth:
			return nil, fmt.Errorf("%w: %q", ErrTooDeep, u.Surface)
		default:
			pieces, err := splitSpan(u.Surface, start, end, a)
			if err != nil {
				return nil, err
			}
			u.Children = pieces
			out := slices.Clone(sibs)
			out[i] = u
			return out, nil
		}
	})
}

func splitSpan(s string, start, end int, a notation.Analysis) ([]Unit, error) {
	if start < 0 || end > len(s) || start >= end {
		return nil, fmt.Errorf("%w: [%d,%d) in %d bytes", ErrBadSpan, start, end, len(s))
	}
	if !utf8.RuneStart(s[start]) || (end < len(s) && !utf8.RuneStart(s[end])) {
		return nil, fmt.Errorf("%w: [%d,%d) splits a character", ErrBadSpan, start, end)
	}
	word := s[start:end]
	if strings.ContainsAny(word, "\n<>[]") {
		return nil, fmt.Errorf("%w: %q contains reserved characters", ErrBadSpan, word)
	}
	var out []Unit
	if start > 0 {
		out = append(out, TextUnit(s[:start]))
	}
	out = append(out, WordUnit(word, a))
	if end < len(s) {
		out = append(out, TextUnit(s[end:]))
	}
	return out, nil
}

// SetAnalysis replaces the analysis of the word at p.
func SetAnalysis(b Block, p Path, a notation.Analysis) (Block, error) {
	return editBlock(b, p, func(sibs []Unit, i int) ([]Unit, error) {
		u := sibs[i]
		if !u.IsWord() {
			return nil, fmt.Errorf("%w: %q", ErrNotWord, u.Surface)
		}
		u.Analysis = &a
		out := slices.Clone(sibs)
		out[i] = u
		return out, nil
	})
}

// RemoveAnalysis turns the word at p back into plain text, discarding any
// sub-words, and merges it with neighbouring text.
func RemoveAnalysis(b Block, p Path) (Block, error) {
	return editBlock(b, p, func(sibs []Unit, i int) ([]Unit, error) {
		u := sibs[i]
		if !u.IsWord() {
			return nil, fmt.Errorf("%w: %q", ErrNotWord, u.Surface)
		}
		out := slices.Clone(sibs)
		out[i] = TextUnit(u.Surface)
		return MergeText(out), nil
	})
}

// MergeText collapses runs of adjacent text units into one.
func MergeText(units []Unit) []Unit {
	out := make([]Unit, 0, len(units))
	for _, u := range units {
		if n := len(out); n > 0 && !u.IsWord() && !out[n-1].IsWord() {
			out[n-1] = TextUnit(out[n-1].Surface + u.Surface)
			continue
		}
		out = append(out, u)
	}
	return out
}

// compactChildren drops a decomposition that no longer contains any word.
func compactChildren(children []Unit) []Unit {
	for _, c := range children {
		if c.IsWord() {
			return children
		}
	}
	return nil
}

// UnitAt returns the unit addressed by p.
func UnitAt(b Block, p Path) (Unit, error) {
	if p.Line < 0 || p.Line >= len(b.Lines) || len(p.Units) == 0 {
		return Unit{}, fmt.Errorf("%w: %s", ErrBadPath, p)
	}
	units := b.Lines[p.Line].Units
	var u Unit
	for depth, i := range p.Units {
		if i < 0 || i >= len(units) {
			return Unit{}, fmt.Errorf("%w: %s", ErrBadPath, p)
		}
		u = units[i]
		if depth < len(p.Units)-1 {
			units = u.Children
		}
	}
	return u, nil
}
