package index

import (
	"log/slog"
	"strings"
	"time"

	"github.com/starford/lotsawa/internal/checksum"
	"github.com/starford/lotsawa/internal/document"
	"github.com/starford/lotsawa/internal/models"
	"github.com/starford/lotsawa/internal/storage"
)

// Sync walks the library and brings the index up to date:
//   - new/changed files are parsed and upserted
//   - files removed from disk are deleted from the index
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	return reconcile(db, store, logger, nil)
}

// reconcile compares on-disk checksums with the index and applies the
// difference, calling cb (if non-nil) for each change.
func reconcile(db *DB, store storage.Provider, logger *slog.Logger, cb EventCallback) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		indexed, ok := checksums[m.Path]
		if indexed == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := IndexDocument(db, m.Path, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		logger.Debug("sync: indexed", slog.String("path", m.Path))
		if cb != nil {
			kind := EventUpdated
			if !ok {
				kind = EventCreated
			}
			cb(kind, m.Path)
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; ok {
			continue
		}
		if err := db.DeleteDocument(p); err != nil {
			logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		logger.Debug("sync: removed stale", slog.String("path", p))
		if cb != nil {
			cb(EventDeleted, p)
		}
	}

	return nil
}

// IndexDocument parses data and upserts the document and its words.
// Parse warnings do not prevent indexing.
func IndexDocument(db DocumentIndex, path string, data []byte) error {
	blocks, _ := document.Parse(string(data))
	row, body, words := Extract(path, data, blocks)
	return db.UpsertDocument(row, body, words)
}

// Extract builds the index rows for already parsed blocks. The body holds
// the stanza text followed by every gloss so full-text search covers both.
func Extract(path string, data []byte, blocks []document.Block) (DocumentRow, string, []WordRow) {
	locs := document.Words(blocks)
	words := make([]WordRow, 0, len(locs))
	var body strings.Builder
	for _, b := range blocks {
		body.WriteString(b.Text())
		body.WriteString("\n\n")
	}
	for _, l := range locs {
		a := l.Analysis
		words = append(words, WordRow{
			Path:       path,
			Block:      l.Block,
			Line:       l.Line,
			Offset:     l.Offset,
			Depth:      len(l.Path.Units),
			Surface:    l.Surface,
			Root:       a.Root,
			POS:        a.PartOfSpeech,
			Tense:      strings.Join(a.Tenses(), ","),
			Honorific:  a.Honorific(),
			Definition: a.Definition,
			VerbID:     a.VerbID,
			Polished:   a.IsPolished,
		})
		if a.Definition != "" {
			body.WriteString(a.Definition)
			body.WriteByte('\n')
		}
	}
	top := 0
	for _, b := range blocks {
		top += b.WordCount()
	}
	row := DocumentRow{
		Path:      path,
		Title:     models.Title(path),
		Checksum:  checksum.Sum(data),
		Blocks:    len(blocks),
		Words:     top,
		UpdatedAt: time.Now(),
	}
	return row, strings.TrimSpace(body.String()), words
}
