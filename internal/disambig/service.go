// Package disambig chooses between verb dictionary readings for words whose
// tense or volition is ambiguous in context.
package disambig

import (
	"context"

	"github.com/starford/lotsawa/internal/verbindex"
)

// Item is one ambiguous word. IndexInText is the byte offset of Original
// within the stanza text sent as context.
type Item struct {
	ID          string            `json:"id"`
	IndexInText int               `json:"indexInText"`
	Original    string            `json:"original"`
	VerbOptions []verbindex.Entry `json:"verbOptions"`
}

// Request carries the stanza text and the words to resolve in it.
type Request struct {
	Context string `json:"contextText"`
	Items   []Item `json:"items"`
}

// Result selects VerbOptions[SelectedIndex] for the item with ID.
type Result struct {
	ID            string `json:"id" jsonschema:"required"`
	SelectedIndex int    `json:"selectedIndex" jsonschema:"required"`
}

// Response lists one result per resolved item.
type Response struct {
	Results []Result `json:"results" jsonschema:"required"`
}

// Service resolves ambiguous verbs.
type Service interface {
	Disambiguate(ctx context.Context, req Request) (*Response, error)
}

// ServiceFunc adapts a function to Service.
type ServiceFunc func(ctx context.Context, req Request) (*Response, error)

func (f ServiceFunc) Disambiguate(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}

// Sanitize drops results for unknown items, out-of-range indexes and
// repeated IDs. It never returns nil.
func Sanitize(req Request, resp *Response) *Response {
	out := &Response{}
	if resp == nil {
		return out
	}
	options := make(map[string]int, len(req.Items))
	for _, it := range req.Items {
		options[it.ID] = len(it.VerbOptions)
	}
	seen := make(map[string]bool, len(resp.Results))
	for _, r := range resp.Results {
		n, ok := options[r.ID]
		if !ok || seen[r.ID] || r.SelectedIndex < 0 || r.SelectedIndex >= n {
			continue
		}
		seen[r.ID] = true
		out.Results = append(out.Results, r)
	}
	return out
}
