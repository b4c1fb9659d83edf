package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/lotsawa/internal/apperr"
	"github.com/starford/lotsawa/internal/docservice"
	"github.com/starford/lotsawa/internal/sse"
)

// Handler holds API route handlers.
type Handler struct {
	svc    *docservice.Service
	events *sse.Broker
}

// NewHandler creates a new Handler. events may be nil.
func NewHandler(svc *docservice.Service, events *sse.Broker) *Handler {
	return &Handler{svc: svc, events: events}
}

// documentPath extracts the document path from the URL (everything after
// the route prefix). Supports encoded slashes (e.g. texts%2Fverse.tib).
func documentPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

func queryInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(key))
	return n
}

// ListDocuments handles GET /api/documents.
//
//	@Summary		List documents with optional pagination
//	@Tags			documents
//	@Produce		json
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Param			sort	query		string	false	"Sort field"	Enums(updated, title, path)
//	@Success		200		{object}	DocumentListResponse
//	@Security		BearerAuth
//	@Router			/documents [get]
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	items, total, err := h.svc.ListDocuments(r.Context(), queryInt(r, "limit"), queryInt(r, "offset"), r.URL.Query().Get("sort"))
	if err != nil {
		writeServiceError(w, "list documents", err)
		return
	}
	writeJSON(w, http.StatusOK, DocumentListResponse{Documents: items, Total: total})
}

// GetDocument handles GET /api/documents/*.
//
//	@Summary		Get a parsed document by path
//	@Tags			documents
//	@Produce		json
//	@Param			path	path		string	true	"Document path"
//	@Success		200		{object}	docservice.DocumentDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/{path} [get]
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	path := documentPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	doc, err := h.svc.GetDocument(r.Context(), path)
	if err != nil {
		writeServiceError(w, "get document", err, slog.String("path", path))
		return
	}
	w.Header().Set("ETag", `"`+doc.Checksum+`"`)
	writeJSON(w, http.StatusOK, doc)
}

// CreateDocument handles POST /api/documents.
//
//	@Summary		Create a new document
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateDocumentRequest	true	"Document to create"
//	@Success		201		{object}	docservice.DocumentDetail
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents [post]
func (h *Handler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var req CreateDocumentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	doc, err := h.svc.CreateDocument(r.Context(), req.Path, []byte(req.Content))
	if err != nil {
		writeServiceError(w, "create document", err, slog.String("path", req.Path))
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

// UpdateDocument handles PUT /api/documents/*.
//
//	@Summary		Update a document with optimistic concurrency
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			path		path	string					true	"Document path"
//	@Param			If-Match	header	string					false	"SHA-256 checksum for optimistic concurrency"
//	@Param			body		body	UpdateDocumentRequest	true	"Updated content"
//	@Success		200		{object}	docservice.DocumentDetail
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/{path} [put]
func (h *Handler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	path := documentPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	var req UpdateDocumentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	doc, err := h.svc.UpdateDocument(r.Context(), path, []byte(req.Content), r.Header.Get("If-Match"))
	if err != nil {
		writeServiceError(w, "update document", err, slog.String("path", path))
		return
	}
	w.Header().Set("ETag", `"`+doc.Checksum+`"`)
	writeJSON(w, http.StatusOK, doc)
}

// DeleteDocument handles DELETE /api/documents/*.
//
//	@Summary		Delete a document
//	@Tags			documents
//	@Param			path	path	string	true	"Document path"
//	@Success		204		"Document deleted"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/{path} [delete]
func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	path := documentPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := h.svc.DeleteDocument(r.Context(), path); err != nil {
		writeServiceError(w, "delete document", err, slog.String("path", path))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveDocument handles POST /api/documents/move.
//
//	@Summary		Rename a document
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			body	body		MoveDocumentRequest	true	"Source and target paths"
//	@Success		200		{object}	docservice.DocumentDetail
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/move [post]
func (h *Handler) MoveDocument(w http.ResponseWriter, r *http.Request) {
	var req MoveDocumentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	doc, err := h.svc.MoveDocument(r.Context(), req.From, req.To)
	if err != nil {
		writeServiceError(w, "move document", err, slog.String("from", req.From), slog.String("to", req.To))
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// EditDocument handles POST /api/documents/edit/*.
//
//	@Summary		Annotate, re-annotate or un-annotate one unit of a stanza
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			path		path	string				true	"Document path"
//	@Param			If-Match	header	string				false	"SHA-256 checksum for optimistic concurrency"
//	@Param			body		body	EditDocumentRequest	true	"Edit to apply"
//	@Success		200		{object}	docservice.DocumentDetail
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/edit/{path} [post]
func (h *Handler) EditDocument(w http.ResponseWriter, r *http.Request) {
	path := documentPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	var req EditDocumentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	doc, err := h.svc.EditDocument(r.Context(), path, r.Header.Get("If-Match"), req.Edit())
	if err != nil {
		writeServiceError(w, "edit document", err, slog.String("path", path))
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// PolishDocument handles POST /api/documents/polish/*.
//
//	@Summary		Merge verb dictionary readings into a document
//	@Tags			documents
//	@Produce		json
//	@Param			path		path	string	true	"Document path"
//	@Param			If-Match	header	string	false	"SHA-256 checksum for optimistic concurrency"
//	@Success		200		{object}	docservice.PolishResult
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Failure		503		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/polish/{path} [post]
func (h *Handler) PolishDocument(w http.ResponseWriter, r *http.Request) {
	path := documentPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	res, err := h.svc.Polish(r.Context(), path, r.Header.Get("If-Match"))
	if err != nil {
		writeServiceError(w, "polish document", err, slog.String("path", path))
		return
	}
	if h.events != nil && res.Merged+res.Resolved > 0 {
		h.events.Publish(sse.Event{Type: sse.TypeDocumentPolished, Data: map[string]any{
			"path":     path,
			"merged":   res.Merged,
			"resolved": res.Resolved,
		}})
	}
	writeJSON(w, http.StatusOK, res)
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across documents, or across annotated words with scope=words
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			scope	query		string	false	"Search scope"	Enums(documents, words)
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit := queryInt(r, "limit")
	if r.URL.Query().Get("scope") == "words" {
		words, err := h.svc.SearchWords(r.Context(), q, limit)
		if err != nil {
			writeServiceError(w, "search words", err, slog.String("query", q))
			return
		}
		writeJSON(w, http.StatusOK, WordsResponse{Words: nonNil(words)})
		return
	}
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeServiceError(w, "search", err, slog.String("query", q))
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: nonNil(results)})
}

// Concordance handles GET /api/concordance.
//
//	@Summary		List every annotated occurrence of a word
//	@Tags			search
//	@Produce		json
//	@Param			word	query		string	true	"Root or surface form"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	WordsResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/concordance [get]
func (h *Handler) Concordance(w http.ResponseWriter, r *http.Request) {
	word := r.URL.Query().Get("word")
	if word == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'word' is required"))
		return
	}
	words, err := h.svc.Concordance(r.Context(), word, queryInt(r, "limit"))
	if err != nil {
		writeServiceError(w, "concordance", err, slog.String("word", word))
		return
	}
	writeJSON(w, http.StatusOK, WordsResponse{Words: nonNil(words)})
}

// Stats handles GET /api/stats.
//
//	@Summary		Index statistics
//	@Tags			search
//	@Produce		json
//	@Success		200	{object}	index.Stats
//	@Security		BearerAuth
//	@Router			/stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		writeServiceError(w, "stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// LookupVerb handles GET /api/verbs/{word}.
//
//	@Summary		Look up a verb in the dictionary
//	@Tags			verbs
//	@Produce		json
//	@Param			word	path		string	true	"Verb form"
//	@Success		200		{object}	map[string]any
//	@Failure		503		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/verbs/{word} [get]
func (h *Handler) LookupVerb(w http.ResponseWriter, r *http.Request) {
	word := chi.URLParam(r, "word")
	if decoded, err := url.PathUnescape(word); err == nil {
		word = decoded
	}
	entries, err := h.svc.LookupVerb(r.Context(), word)
	if err != nil {
		writeServiceError(w, "lookup verb", err, slog.String("word", word))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"word":    word,
		"entries": entries,
	})
}

// Disambiguate handles POST /api/disambiguate.
//
//	@Summary		Choose verb readings from context
//	@Tags			verbs
//	@Accept			json
//	@Produce		json
//	@Param			body	body		DisambiguateRequest	true	"Stanza text and ambiguous words"
//	@Success		200		{object}	disambig.Response
//	@Failure		400		{object}	errResponse
//	@Failure		502		{object}	errResponse
//	@Failure		503		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/disambiguate [post]
func (h *Handler) Disambiguate(w http.ResponseWriter, r *http.Request) {
	var req DisambiguateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.svc.Disambiguate(r.Context(), req.Request)
	if err != nil {
		if errors.Is(err, apperr.ErrUnavailable) {
			writeServiceError(w, "disambiguate", err)
			return
		}
		slog.Error("disambiguate failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadGateway, errorBody("disambiguation failed"))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
