package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/starford/lotsawa/internal/document"
	"github.com/starford/lotsawa/internal/notation"
)

func noBrackets(v any) error {
	s, _ := v.(string)
	if strings.ContainsAny(s, "<>[]\n\t") {
		return errors.New("must not contain <, >, [, ], tabs or newlines")
	}
	return nil
}

// DecodeAnnotation handles POST /api/notation/decode.
//
//	@Summary		Decode the bracketed content of an annotation line
//	@Tags			notation
//	@Accept			json
//	@Produce		json
//	@Param			body	body		DecodeRequest	true	"Annotation content"
//	@Success		200		{object}	DecodeResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notation/decode [post]
func (h *Handler) DecodeAnnotation(w http.ResponseWriter, r *http.Request) {
	var req DecodeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, DecodeResponse{Analysis: notation.Decode(req.Content)})
}

// EncodeAnnotation handles POST /api/notation/encode.
//
//	@Summary		Encode an analysis as canonical annotation content
//	@Tags			notation
//	@Accept			json
//	@Produce		json
//	@Param			body	body		EncodeRequest	true	"Analysis to encode"
//	@Success		200		{object}	EncodeResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notation/encode [post]
func (h *Handler) EncodeAnnotation(w http.ResponseWriter, r *http.Request) {
	var req EncodeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp := EncodeResponse{Content: notation.Encode(req.Analysis)}
	if req.Surface != "" {
		resp.Line = notation.EncodeLine(req.Depth, req.Surface, req.Analysis)
	}
	writeJSON(w, http.StatusOK, resp)
}

// ParseNotation handles POST /api/notation/parse.
//
//	@Summary		Parse a notation document without storing it
//	@Tags			notation
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ParseRequest	true	"Notation text"
//	@Success		200		{object}	ParseResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notation/parse [post]
func (h *Handler) ParseNotation(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	blocks, warnings := document.Parse(req.Text)
	writeJSON(w, http.StatusOK, ParseResponse{
		Blocks:     nonNil(blocks),
		Warnings:   nonNil(warnings),
		Normalized: document.Serialize(blocks),
	})
}
