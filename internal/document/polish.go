package document

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/starford/lotsawa/internal/notation"
	"github.com/starford/lotsawa/internal/verbindex"
)

// VerbLookup resolves a surface form or root to dictionary entries.
type VerbLookup interface {
	Lookup(word string) []verbindex.Entry
}

// Locator identifies a word unit inside a document. Offset is the byte
// offset of the word within the block text.
type Locator struct {
	Block    int
	Line     int
	Path     Path
	Offset   int
	Surface  string
	Analysis notation.Analysis
}

// Words lists every word unit, sub-words included, in reading order.
func Words(blocks []Block) []Locator {
	var out []Locator
	for bi, b := range blocks {
		offset := 0
		for li, l := range b.Lines {
			for ui, u := range l.Units {
				out = appendWord(out, bi, li, []int{ui}, offset, u)
				offset += len(u.Surface)
			}
			offset++ // newline
		}
	}
	return out
}

func appendWord(out []Locator, block, line int, idx []int, offset int, u Unit) []Locator {
	if !u.IsWord() {
		return out
	}
	loc := Locator{
		Block:   block,
		Line:    line,
		Path:    Path{Line: line, Units: idx},
		Offset:  offset,
		Surface: u.Surface,
	}
	if u.Analysis != nil {
		loc.Analysis = *u.Analysis
	}
	out = append(out, loc)
	child := offset
	for ci, c := range u.Children {
		out = appendWord(out, block, line, append(idx[:len(idx):len(idx)], ci), child, c)
		child += len(c.Surface)
	}
	return out
}

// Candidate is a verb occurrence with more than one dictionary reading.
type Candidate struct {
	ID          string            `json:"id"`
	Block       int               `json:"block"`
	IndexInText int               `json:"indexInText"`
	Original    string            `json:"original"`
	Options     []verbindex.Entry `json:"verbOptions"`
}

// Selection picks one option of a candidate.
type Selection struct {
	ID            string `json:"id"`
	SelectedIndex int    `json:"selectedIndex"`
}

// PolishVerbs resolves unpolished verbs against the dictionary. A single
// matching entry is merged directly; several produce a Candidate for later
// disambiguation. It returns the updated blocks and the number of merges.
func PolishVerbs(blocks []Block, lookup VerbLookup) ([]Block, []Candidate, int) {
	out := append([]Block(nil), blocks...)
	var (
		candidates []Candidate
		merged     int
	)
	for _, loc := range Words(blocks) {
		a := loc.Analysis
		if a.IsPolished || !a.IsVerb() {
			continue
		}
		var entries []verbindex.Entry
		if a.Root != "" {
			entries = lookup.Lookup(a.Root)
		}
		if len(entries) == 0 {
			entries = lookup.Lookup(loc.Surface)
		}
		switch len(entries) {
		case 0:
		case 1:
			b, err := SetAnalysis(out[loc.Block], loc.Path, MergeVerbEntry(a, entries[0]))
			if err != nil {
				continue
			}
			out[loc.Block] = b
			merged++
		default:
			candidates = append(candidates, Candidate{
				ID:          uuid.NewString(),
				Block:       loc.Block,
				IndexInText: loc.Offset,
				Original:    loc.Surface,
				Options:     entries,
			})
		}
	}
	return out, candidates, merged
}

// ApplySelections merges chosen entries into the words the candidates point
// at and returns the IDs of the candidates it applied. Selections whose
// candidate is unknown or already applied, whose index is out of range, or
// whose word no longer sits at the recorded offset are ignored.
func ApplySelections(blocks []Block, candidates []Candidate, selections []Selection) ([]Block, []string) {
	byID := make(map[string]Candidate, len(candidates))
	for _, c := range candidates {
		byID[c.ID] = c
	}
	out := append([]Block(nil), blocks...)
	var applied []string
	for _, s := range selections {
		c, ok := byID[s.ID]
		if !ok || s.SelectedIndex < 0 || s.SelectedIndex >= len(c.Options) {
			continue
		}
		loc, ok := locate(out, c)
		if !ok {
			continue
		}
		b, err := SetAnalysis(out[loc.Block], loc.Path, MergeVerbEntry(loc.Analysis, c.Options[s.SelectedIndex]))
		if err != nil {
			continue
		}
		out[loc.Block] = b
		applied = append(applied, c.ID)
		delete(byID, c.ID)
	}
	return out, applied
}

func locate(blocks []Block, c Candidate) (Locator, bool) {
	if c.Block < 0 || c.Block >= len(blocks) {
		return Locator{}, false
	}
	for _, loc := range Words(blocks[c.Block : c.Block+1]) {
		if loc.Offset == c.IndexInText && loc.Surface == c.Original {
			loc.Block = c.Block
			return loc, true
		}
	}
	return Locator{}, false
}

var alnumRe = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// MergeVerbEntry folds a dictionary reading into an analysis and marks it
// polished.
func MergeVerbEntry(a notation.Analysis, e verbindex.Entry) notation.Analysis {
	if e.OriginalWord != "" {
		a.Root = e.OriginalWord
	}
	var mods []string
	if e.Hon {
		mods = append(mods, notation.ModHonorific)
	}
	if t := strings.ToLower(strings.TrimSpace(e.Tense)); t != "" {
		mods = append(mods, t)
	}
	a.Tense = strings.Join(mods, ",")
	if v := e.Volition; v == notation.TagVerbVolitional || v == notation.TagVerbNonVolitional {
		a.PartOfSpeech = withVolition(a.PartOfSpeech, v)
	}
	if strings.TrimSpace(a.Definition) == "" {
		a.Definition = e.Definition
	}
	if id := string(e.ID); alnumRe.MatchString(id) {
		a.VerbID = id
	}
	a.IsPolished = true
	return a
}

// withVolition replaces the grammatical side of a POS expression, keeping a
// contextual "->" target.
func withVolition(pos, volition string) string {
	expr, err := notation.ParseTags(pos)
	if err != nil || !expr.IsTransform() {
		return volition
	}
	expr.From = []string{volition}
	return expr.String()
}
