package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/starford/lotsawa/internal/docservice"
	"github.com/starford/lotsawa/internal/sse"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// events, if non-nil, is mounted at GET /events inside the auth group and
// receives polish notifications.
func NewRouter(svc *docservice.Service, authEnabled bool, token string, events *sse.Broker) chi.Router {
	h := NewHandler(svc, events)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Documents. Upload, move, edit and polish are registered before the
	// catch-all.
	r.Get("/documents", h.ListDocuments)
	r.Post("/documents", h.CreateDocument)
	r.Post("/documents/upload", h.UploadDocument)
	r.Post("/documents/move", h.MoveDocument)
	r.Post("/documents/edit/*", h.EditDocument)
	r.Post("/documents/polish/*", h.PolishDocument)
	r.Get("/documents/*", h.GetDocument)
	r.Put("/documents/*", h.UpdateDocument)
	r.Delete("/documents/*", h.DeleteDocument)

	// Notation codec.
	r.Post("/notation/decode", h.DecodeAnnotation)
	r.Post("/notation/encode", h.EncodeAnnotation)
	r.Post("/notation/parse", h.ParseNotation)

	// Search.
	r.Get("/search", h.Search)
	r.Get("/concordance", h.Concordance)
	r.Get("/stats", h.Stats)

	// Verbs.
	r.Get("/verbs/{word}", h.LookupVerb)
	r.Post("/disambiguate", h.Disambiguate)

	// SSE endpoint (protected by same auth middleware).
	if events != nil {
		r.Get("/events", events.ServeHTTP)
	}

	return r
}
