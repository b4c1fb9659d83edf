// Package docservice coordinates library storage, the document index and the
// notation parser.
package docservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/starford/lotsawa/internal/apperr"
	"github.com/starford/lotsawa/internal/checksum"
	"github.com/starford/lotsawa/internal/disambig"
	"github.com/starford/lotsawa/internal/document"
	"github.com/starford/lotsawa/internal/index"
	"github.com/starford/lotsawa/internal/models"
	"github.com/starford/lotsawa/internal/notation"
	"github.com/starford/lotsawa/internal/storage"
	"github.com/starford/lotsawa/internal/verbindex"
)

// DocumentDetail is the full representation of a document.
type DocumentDetail struct {
	Path      string             `json:"path"`
	Title     string             `json:"title"`
	Content   string             `json:"content"`
	Checksum  string             `json:"checksum"`
	Blocks    []document.Block   `json:"blocks"`
	Warnings  []document.Warning `json:"warnings"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// DocumentListItem is a lightweight item in a list response.
type DocumentListItem struct {
	Path      string    `json:"path"`
	Title     string    `json:"title"`
	Checksum  string    `json:"checksum"`
	Blocks    int       `json:"blocks"`
	Words     int       `json:"words"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PolishResult reports what a polish pass changed. Skipped lists stanzas
// left untouched because their annotation section could not be read in full.
type PolishResult struct {
	Document   *DocumentDetail      `json:"document"`
	Merged     int                  `json:"merged"`
	Resolved   int                  `json:"resolved"`
	Unresolved []document.Candidate `json:"unresolved"`
	Skipped    []int                `json:"skipped"`
}

// Service coordinates storage and index operations.
type Service struct {
	store  storage.Provider
	db     index.DocumentIndex
	verbs  *verbindex.Index
	llm    disambig.Service
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithVerbIndex sets the dictionary used by LookupVerb and Polish.
func WithVerbIndex(x *verbindex.Index) Option {
	return func(s *Service) { s.verbs = x }
}

// WithDisambiguator enables context-based resolution of ambiguous verbs.
func WithDisambiguator(d disambig.Service) Option {
	return func(s *Service) { s.llm = d }
}

// WithLogger sets the logger for parse warnings.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a new document service.
func NewService(store storage.Provider, db index.DocumentIndex, opts ...Option) *Service {
	s := &Service{store: store, db: db, logger: slog.Default()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// GetDocument reads a document from storage and parses it.
func (s *Service) GetDocument(_ context.Context, p string) (*DocumentDetail, error) {
	data, err := s.read(p)
	if err != nil {
		return nil, err
	}
	return s.buildDetail(p, data), nil
}

// CreateDocument writes a new document and indexes it.
func (s *Service) CreateDocument(_ context.Context, p string, content []byte) (*DocumentDetail, error) {
	if !models.IsDocument(p) {
		return nil, fmt.Errorf("%w: %q is not a .tib or .txt path", apperr.ErrInvalid, p)
	}
	exists, err := s.store.Exists(p)
	if err != nil {
		return nil, mapStorageErr(err)
	}
	if exists {
		return nil, apperr.ErrAlreadyExists
	}
	if err := s.write(p, content); err != nil {
		return nil, err
	}
	return s.buildDetail(p, content), nil
}

// UpdateDocument writes updated content with optimistic concurrency.
func (s *Service) UpdateDocument(_ context.Context, p string, content []byte, ifMatch string) (*DocumentDetail, error) {
	existing, err := s.read(p)
	if err != nil {
		return nil, err
	}
	if !checksum.Matches(existing, ifMatch) {
		return nil, apperr.ErrConflict
	}
	if err := s.write(p, content); err != nil {
		return nil, err
	}
	return s.buildDetail(p, content), nil
}

// DeleteDocument removes a document from storage and index.
func (s *Service) DeleteDocument(_ context.Context, p string) error {
	if err := s.store.Delete(p); err != nil {
		return mapStorageErr(err)
	}
	return s.db.DeleteDocument(p)
}

// MoveDocument renames a document and moves its index entry.
func (s *Service) MoveDocument(_ context.Context, from, to string) (*DocumentDetail, error) {
	if !models.IsDocument(to) {
		return nil, fmt.Errorf("%w: %q is not a .tib or .txt path", apperr.ErrInvalid, to)
	}
	if err := s.store.Move(from, to); err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, apperr.ErrAlreadyExists
		}
		return nil, mapStorageErr(err)
	}
	if err := s.db.DeleteDocument(from); err != nil {
		return nil, err
	}
	data, err := s.read(to)
	if err != nil {
		return nil, err
	}
	if err := index.IndexDocument(s.db, to, data); err != nil {
		return nil, err
	}
	return s.buildDetail(to, data), nil
}

// ListDocuments returns a page of indexed documents.
func (s *Service) ListDocuments(_ context.Context, limit, offset int, sort string) ([]DocumentListItem, int, error) {
	rows, total, err := s.db.ListDocuments(limit, offset, sort)
	if err != nil {
		return nil, 0, err
	}
	items := make([]DocumentListItem, len(rows))
	for i, r := range rows {
		items[i] = DocumentListItem{
			Path:      r.Path,
			Title:     r.Title,
			Checksum:  r.Checksum,
			Blocks:    r.Blocks,
			Words:     r.Words,
			UpdatedAt: r.UpdatedAt,
		}
	}
	return items, total, nil
}

// Upload stores an uploaded file as a notation document. Plain text is split
// into stanzas; notation input is kept as is. An empty name gets a random
// one.
func (s *Service) Upload(ctx context.Context, name string, data []byte) (*DocumentDetail, error) {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	base = strings.TrimSuffix(base, path.Ext(base))
	if base == "" || base == "." || base == "/" || strings.HasPrefix(base, ".") {
		base = uuid.NewString()
	}
	content := data
	if len(notation.FindBlocks(string(data))) == 0 {
		content = []byte(document.Serialize(document.Segment(string(data))))
	}
	return s.CreateDocument(ctx, base+models.ExtNotation, content)
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// SearchWords finds annotated words by surface, root or gloss.
func (s *Service) SearchWords(_ context.Context, query string, limit int) ([]index.WordRow, error) {
	return s.db.SearchWords(query, limit)
}

// Concordance lists every annotated occurrence of word.
func (s *Service) Concordance(_ context.Context, word string, limit int) ([]index.WordRow, error) {
	return s.db.Concordance(word, limit)
}

// Stats summarises the index.
func (s *Service) Stats(_ context.Context) (index.Stats, error) {
	return s.db.Stats()
}

// LookupVerb returns the dictionary entries for word. It returns
// ErrUnavailable when no verb index is loaded.
func (s *Service) LookupVerb(_ context.Context, word string) ([]verbindex.Entry, error) {
	if s.verbs == nil {
		return nil, fmt.Errorf("%w: no verb index loaded", apperr.ErrUnavailable)
	}
	return nonNilSlice(s.verbs.Lookup(word)), nil
}

// Disambiguate forwards req to the configured disambiguator and drops
// results that do not match a requested item.
func (s *Service) Disambiguate(ctx context.Context, req disambig.Request) (*disambig.Response, error) {
	if s.llm == nil {
		return nil, fmt.Errorf("%w: disambiguation is not configured", apperr.ErrUnavailable)
	}
	resp, err := s.llm.Disambiguate(ctx, req)
	if err != nil {
		return nil, err
	}
	return disambig.Sanitize(req, resp), nil
}

// Polish merges dictionary readings into the unpolished verbs of a
// document. Words with several readings are resolved by the disambiguator
// when one is configured; the rest are returned as unresolved. Only the
// stanzas that changed are rewritten; everything else in the file is kept
// byte for byte.
func (s *Service) Polish(ctx context.Context, p, ifMatch string) (*PolishResult, error) {
	if s.verbs == nil {
		return nil, fmt.Errorf("%w: no verb index loaded", apperr.ErrUnavailable)
	}
	data, err := s.read(p)
	if err != nil {
		return nil, err
	}
	if !checksum.Matches(data, ifMatch) {
		return nil, apperr.ErrConflict
	}

	text := string(data)
	blocks, _ := document.Parse(text)
	blocks, candidates, merged := document.PolishVerbs(blocks, s.verbs)

	var selections []document.Selection
	if s.llm != nil && len(candidates) > 0 {
		selections = s.resolve(ctx, blocks, candidates)
	}
	blocks, applied := document.ApplySelections(blocks, candidates, selections)
	res := &PolishResult{Merged: merged, Resolved: len(applied), Unresolved: []document.Candidate{}}

	done := make(map[string]bool, len(applied))
	for _, id := range applied {
		done[id] = true
	}
	for _, c := range candidates {
		if !done[c.ID] {
			res.Unresolved = append(res.Unresolved, c)
		}
	}

	out, skipped := document.Rewrite(text, blocks, false)
	res.Skipped = nonNilSlice(skipped)
	if len(skipped) > 0 {
		s.logger.Warn("polish: stanzas left untouched",
			slog.String("path", p),
			slog.Any("blocks", skipped))
	}
	if out == text {
		res.Document = s.buildDetail(p, data)
		return res, nil
	}
	if err := s.write(p, []byte(out)); err != nil {
		return nil, err
	}
	res.Document = s.buildDetail(p, []byte(out))
	return res, nil
}

// resolve asks the disambiguator about each stanza's candidates in turn.
// A failing stanza is logged and left unresolved.
func (s *Service) resolve(ctx context.Context, blocks []document.Block, candidates []document.Candidate) []document.Selection {
	byBlock := make(map[int][]disambig.Item)
	var order []int
	for _, c := range candidates {
		if _, ok := byBlock[c.Block]; !ok {
			order = append(order, c.Block)
		}
		byBlock[c.Block] = append(byBlock[c.Block], disambig.Item{
			ID:          c.ID,
			IndexInText: c.IndexInText,
			Original:    c.Original,
			VerbOptions: c.Options,
		})
	}

	var out []document.Selection
	for _, b := range order {
		req := disambig.Request{Context: blocks[b].Text(), Items: byBlock[b]}
		resp, err := s.llm.Disambiguate(ctx, req)
		if err != nil {
			s.logger.Warn("polish: disambiguation failed",
				slog.Int("block", b),
				slog.String("error", err.Error()))
			continue
		}
		for _, r := range disambig.Sanitize(req, resp).Results {
			out = append(out, document.Selection{ID: r.ID, SelectedIndex: r.SelectedIndex})
		}
	}
	return out
}

func (s *Service) read(p string) ([]byte, error) {
	data, err := s.store.Read(p)
	if err != nil {
		return nil, mapStorageErr(err)
	}
	return data, nil
}

func mapStorageErr(err error) error {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return apperr.ErrNotFound
	case errors.Is(err, storage.ErrInvalidPath):
		return fmt.Errorf("%w: %v", apperr.ErrInvalid, err)
	}
	return err
}

func (s *Service) write(p string, content []byte) error {
	if err := s.store.Write(p, content); err != nil {
		return mapStorageErr(err)
	}
	return index.IndexDocument(s.db, p, content)
}

// buildDetail constructs a DocumentDetail from raw data without re-reading
// the file. Parse warnings are logged and returned.
func (s *Service) buildDetail(p string, data []byte) *DocumentDetail {
	blocks, warnings := document.Parse(string(data))
	for _, w := range warnings {
		s.logger.Warn("parse: "+string(w.Kind),
			slog.String("path", p),
			slog.Int("block", w.Block),
			slog.String("surface", w.Surface),
			slog.String("message", w.Message))
	}
	return &DocumentDetail{
		Path:      p,
		Title:     models.Title(p),
		Content:   string(data),
		Checksum:  checksum.Sum(data),
		Blocks:    nonNilSlice(blocks),
		Warnings:  nonNilSlice(warnings),
		UpdatedAt: time.Now(),
	}
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
