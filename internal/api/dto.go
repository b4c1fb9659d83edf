package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/lotsawa/internal/disambig"
	"github.com/starford/lotsawa/internal/docservice"
	"github.com/starford/lotsawa/internal/document"
	"github.com/starford/lotsawa/internal/index"
	"github.com/starford/lotsawa/internal/notation"
)

// CreateDocumentRequest is the request body for creating a document.
type CreateDocumentRequest struct {
	Path    string `json:"path" example:"texts/verse.tib" validate:"required"`
	Content string `json:"content" example:">>>\nཀ\n>>>>\n<ཀ>[{n} ཀ ka]\n>>>>>" validate:"required"`
}

func (r *CreateDocumentRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Path, validation.Required),
		validation.Field(&r.Content, validation.Required),
	)
}

// UpdateDocumentRequest is the request body for updating a document.
type UpdateDocumentRequest struct {
	Content string `json:"content" validate:"required"`
}

func (r *UpdateDocumentRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Content, validation.Required),
	)
}

// MoveDocumentRequest renames a document.
type MoveDocumentRequest struct {
	From string `json:"from" example:"verse.tib" validate:"required"`
	To   string `json:"to" example:"texts/verse.tib" validate:"required"`
}

func (r *MoveDocumentRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.From, validation.Required),
		validation.Field(&r.To, validation.Required, validation.NotIn(r.From).Error("must differ from source")),
	)
}

// EditDocumentRequest changes one unit of one stanza. Start and End are
// byte offsets into the unit's surface, used by the annotate op.
type EditDocumentRequest struct {
	Op       docservice.EditOp `json:"op" example:"annotate" validate:"required"`
	Block    int               `json:"block"`
	Path     document.Path     `json:"path"`
	Start    int               `json:"start"`
	End      int               `json:"end"`
	Analysis notation.Analysis `json:"analysis"`
}

func (r *EditDocumentRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Op, validation.Required,
			validation.In(docservice.EditAnnotate, docservice.EditSet, docservice.EditRemove)),
		validation.Field(&r.Block, validation.Min(0)),
		validation.Field(&r.Path, validation.By(validUnitPath)),
		validation.Field(&r.Start, validation.Min(0)),
		validation.Field(&r.End, validation.When(r.Op == docservice.EditAnnotate, validation.Min(r.Start+1))),
		validation.Field(&r.Analysis),
	)
}

// Edit converts the request into a service edit.
func (r *EditDocumentRequest) Edit() docservice.Edit {
	return docservice.Edit{
		Op:       r.Op,
		Block:    r.Block,
		Path:     r.Path,
		Start:    r.Start,
		End:      r.End,
		Analysis: r.Analysis,
	}
}

func validUnitPath(v any) error {
	p, _ := v.(document.Path)
	if p.Line < 0 || len(p.Units) == 0 || len(p.Units) > document.MaxWordDepth {
		return validation.NewError("validation_unit_path", "must name a line and one or two unit indexes")
	}
	return nil
}

// DecodeRequest carries the bracketed content of one annotation line.
type DecodeRequest struct {
	Content string `json:"content" example:"{v,past} བྱེད to do" validate:"required"`
}

func (r *DecodeRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Content, validation.Required),
	)
}

// DecodeResponse is the analysis decoded from an annotation.
type DecodeResponse struct {
	Analysis notation.Analysis `json:"analysis"`
}

// EncodeRequest asks for the canonical notation of an analysis. Surface is
// optional; when set the full annotation line is returned too.
type EncodeRequest struct {
	Surface  string            `json:"surface,omitempty"`
	Depth    int               `json:"depth,omitempty"`
	Analysis notation.Analysis `json:"analysis"`
}

func (r *EncodeRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Depth, validation.Min(0), validation.Max(document.MaxWordDepth-1)),
		validation.Field(&r.Surface, validation.By(noBrackets)),
		validation.Field(&r.Analysis),
	)
}

// EncodeResponse holds the encoded content and, when a surface was given,
// the annotation line.
type EncodeResponse struct {
	Content string `json:"content"`
	Line    string `json:"line,omitempty"`
}

// ParseRequest carries a whole notation document.
type ParseRequest struct {
	Text string `json:"text" validate:"required"`
}

func (r *ParseRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Text, validation.Required),
	)
}

// ParseResponse is the parsed structure of a notation document.
type ParseResponse struct {
	Blocks     []document.Block   `json:"blocks"`
	Warnings   []document.Warning `json:"warnings"`
	Normalized string             `json:"normalized"`
}

// DisambiguateRequest wraps disambig.Request for validation.
type DisambiguateRequest struct {
	disambig.Request
}

func (r *DisambiguateRequest) Validate() error {
	return validation.ValidateStruct(&r.Request,
		validation.Field(&r.Request.Context, validation.Required),
		validation.Field(&r.Request.Items, validation.Required),
	)
}

// DocumentListResponse wraps paginated document listings.
type DocumentListResponse struct {
	Documents []docservice.DocumentListItem `json:"documents" validate:"required"`
	Total     int                           `json:"total" example:"42" validate:"required"`
}

// SearchResponse wraps document search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results" validate:"required"`
}

// WordsResponse wraps word occurrences.
type WordsResponse struct {
	Words []index.WordRow `json:"words" validate:"required"`
}

// UploadResponse is returned after a successful upload.
type UploadResponse struct {
	Path     string `json:"path" example:"verse.tib" validate:"required"`
	Size     int64  `json:"size" example:"12345" validate:"required"`
	Blocks   int    `json:"blocks" example:"4"`
	Checksum string `json:"checksum"`
}
