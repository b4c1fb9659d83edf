// Package verbindex is a read-only dictionary of Tibetan verb forms keyed by
// surface or root.
package verbindex

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Entry is one dictionary reading of a verb form.
type Entry struct {
	Tense        string `json:"tense"`
	Volition     string `json:"volition"`
	Hon          bool   `json:"hon"`
	Definition   string `json:"definition"`
	OriginalWord string `json:"original_word"`
	ID           ID     `json:"id"`
}

// ID is an entry identifier. Source files use both numbers and strings.
type ID string

// UnmarshalJSON accepts a JSON string or number.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	if string(data) == "null" {
		*id = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("verbindex: id: %w", err)
	}
	if i, err := n.Int64(); err == nil {
		*id = ID(strconv.FormatInt(i, 10))
		return nil
	}
	*id = ID(n.String())
	return nil
}

// Suffixes stripped when an exact lookup misses.
const (
	suffixPa = "པ"
	suffixBa = "བ"
	tsheg    = "་"
)

// Index maps words to their verb entries.
type Index struct {
	entries map[string][]Entry
}

// New returns an index over entries. The map is not copied.
func New(entries map[string][]Entry) *Index {
	if entries == nil {
		entries = make(map[string][]Entry)
	}
	return &Index{entries: entries}
}

// Load reads a JSON object of word → entries.
func Load(r io.Reader) (*Index, error) {
	var entries map[string][]Entry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("verbindex: decode: %w", err)
	}
	return New(entries), nil
}

// LoadFile reads the index from path.
func LoadFile(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("verbindex: open: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Lookup returns the entries for word. It tries the exact form, the form
// without a trailing tsheg, then the form with a final པ or བ syllable
// removed. Nil means no match.
func (x *Index) Lookup(word string) []Entry {
	if x == nil {
		return nil
	}
	word = strings.TrimSpace(word)
	if word == "" {
		return nil
	}
	if e, ok := x.entries[word]; ok {
		return e
	}
	bare := strings.TrimSuffix(word, tsheg)
	if e, ok := x.entries[bare]; ok {
		return e
	}
	for _, suf := range []string{suffixPa, suffixBa} {
		stem, ok := strings.CutSuffix(bare, suf)
		if !ok || stem == "" {
			continue
		}
		if e, ok := x.entries[stem]; ok {
			return e
		}
		stem = strings.TrimSuffix(stem, tsheg)
		if e, ok := x.entries[stem]; ok && stem != "" {
			return e
		}
	}
	return nil
}

// Size returns the number of indexed words.
func (x *Index) Size() int {
	if x == nil {
		return 0
	}
	return len(x.entries)
}
