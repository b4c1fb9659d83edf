package api

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/starford/lotsawa/internal/models"
)

const maxUploadBytes = 20 << 20 // 20 MB

// UploadDocument handles POST /api/documents/upload (multipart/form-data,
// field "file"). Plain text is segmented into stanzas and stored as a
// notation document named after the uploaded file.
//
//	@Summary		Upload a text file as a new document
//	@Tags			documents
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"Plain text or notation file"
//	@Success		201		{object}	UploadResponse
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/upload [post]
func (h *Handler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	if header.Filename != "" && !models.IsDocument(header.Filename) {
		writeJSON(w, http.StatusBadRequest, errorBody("only .txt and .tib files are accepted"))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read file"))
		return
	}

	doc, err := h.svc.Upload(r.Context(), header.Filename, data)
	if err != nil {
		writeServiceError(w, "upload document", err, slog.String("filename", header.Filename))
		return
	}

	writeJSON(w, http.StatusCreated, UploadResponse{
		Path:     doc.Path,
		Size:     int64(len(doc.Content)),
		Blocks:   len(doc.Blocks),
		Checksum: doc.Checksum,
	})
}
