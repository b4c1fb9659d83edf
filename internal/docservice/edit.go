package docservice

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/starford/lotsawa/internal/apperr"
	"github.com/starford/lotsawa/internal/checksum"
	"github.com/starford/lotsawa/internal/document"
	"github.com/starford/lotsawa/internal/notation"
)

// EditOp names a single-unit document edit.
type EditOp string

const (
	// EditAnnotate turns a byte span of a text unit, or of an undecomposed
	// word, into a word.
	EditAnnotate EditOp = "annotate"
	// EditSet replaces the analysis of a word.
	EditSet EditOp = "set"
	// EditRemove turns a word back into plain text.
	EditRemove EditOp = "remove"
)

// Edit addresses one unit of one stanza and says what to do with it. Start
// and End are byte offsets into the unit's surface and only matter for
// EditAnnotate.
type Edit struct {
	Op       EditOp            `json:"op"`
	Block    int               `json:"block"`
	Path     document.Path     `json:"path"`
	Start    int               `json:"start,omitempty"`
	End      int               `json:"end,omitempty"`
	Analysis notation.Analysis `json:"analysis"`
}

// EditDocument applies e to the stored document and writes back only the
// stanza it touched. A stanza whose annotation section could not be read in
// full is refused, since rewriting it would drop those lines.
func (s *Service) EditDocument(_ context.Context, p, ifMatch string, e Edit) (*DocumentDetail, error) {
	data, err := s.read(p)
	if err != nil {
		return nil, err
	}
	if !checksum.Matches(data, ifMatch) {
		return nil, apperr.ErrConflict
	}

	text := string(data)
	blocks, _ := document.Parse(text)
	if e.Block < 0 || e.Block >= len(blocks) {
		return nil, fmt.Errorf("%w: block %d of %d", apperr.ErrInvalid, e.Block, len(blocks))
	}
	target, err := document.UnitAt(blocks[e.Block], e.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalid, err)
	}

	edited, err := applyEdit(blocks[e.Block], e)
	if err != nil {
		return nil, err
	}
	blocks[e.Block] = edited

	out, skipped := document.Rewrite(text, blocks, false)
	if len(skipped) > 0 {
		return nil, fmt.Errorf("%w: stanza %d has annotation lines that could not be read; fix them first",
			apperr.ErrInvalid, e.Block)
	}
	if out == text {
		return s.buildDetail(p, data), nil
	}
	if err := s.write(p, []byte(out)); err != nil {
		return nil, err
	}
	s.logger.Info("document edited",
		slog.String("path", p),
		slog.String("op", string(e.Op)),
		slog.Int("block", e.Block),
		slog.String("unit", e.Path.String()),
		slog.String("surface", target.Surface))
	return s.buildDetail(p, []byte(out)), nil
}

func applyEdit(b document.Block, e Edit) (document.Block, error) {
	var (
		out document.Block
		err error
	)
	switch e.Op {
	case EditAnnotate:
		out, err = document.Annotate(b, e.Path, e.Start, e.End, e.Analysis)
	case EditSet:
		if err := e.Analysis.Validate(); err != nil {
			return document.Block{}, fmt.Errorf("%w: analysis: %v", apperr.ErrInvalid, err)
		}
		out, err = document.SetAnalysis(b, e.Path, e.Analysis)
	case EditRemove:
		out, err = document.RemoveAnalysis(b, e.Path)
	default:
		return document.Block{}, fmt.Errorf("%w: unknown edit op %q", apperr.ErrInvalid, e.Op)
	}
	if err != nil {
		// bad path, span or analysis
		return document.Block{}, fmt.Errorf("%w: %v", apperr.ErrInvalid, err)
	}
	return out, nil
}
