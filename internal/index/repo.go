package index

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// DocumentRow represents a row in the documents table.
type DocumentRow struct {
	Path      string    `json:"path"`
	Title     string    `json:"title"`
	Checksum  string    `json:"checksum"`
	Blocks    int       `json:"blocks"`
	Words     int       `json:"words"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WordRow is one annotated word occurrence.
type WordRow struct {
	Path       string `json:"path"`
	Block      int    `json:"block"`
	Line       int    `json:"line"`
	Offset     int    `json:"offset"`
	Depth      int    `json:"depth"`
	Surface    string `json:"surface"`
	Root       string `json:"root,omitempty"`
	POS        string `json:"pos,omitempty"`
	Tense      string `json:"tense,omitempty"`
	Honorific  bool   `json:"honorific,omitempty"`
	Definition string `json:"definition,omitempty"`
	VerbID     string `json:"verb_id,omitempty"`
	Polished   bool   `json:"polished"`
}

// SearchResult represents one document search hit.
type SearchResult struct {
	Path    string `json:"path"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// Stats summarises the index.
type Stats struct {
	Documents int `json:"documents"`
	Words     int `json:"words"`
	Polished  int `json:"polished"`
	Honorific int `json:"honorific"`
	Roots     int `json:"roots"`
}

const wordColumns = `path, block, line, byte_offset, depth, surface, root, pos, tense, honorific, definition, verb_id, polished`

// UpsertDocument replaces a document row, its FTS entry and its words within
// one transaction.
func (db *DB) UpsertDocument(d DocumentRow, body string, words []WordRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if d.UpdatedAt.IsZero() {
		d.UpdatedAt = time.Now()
	}
	_, err = tx.Exec(`
		INSERT INTO documents (path, title, checksum, blocks, words, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			title      = excluded.title,
			checksum   = excluded.checksum,
			blocks     = excluded.blocks,
			words      = excluded.words,
			body       = excluded.body,
			updated_at = excluded.updated_at
	`, d.Path, d.Title, d.Checksum, d.Blocks, d.Words, body, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert document: %w", err)
	}

	// FTS upsert (no-op when FTS5 tag is absent).
	if err := ftsUpsert(tx, d.Path, d.Title, body); err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM words WHERE path = ?`, d.Path); err != nil {
		return fmt.Errorf("index: clear words: %w", err)
	}
	if len(words) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO words (` + wordColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare word insert: %w", err)
		}
		defer stmt.Close()
		for _, w := range words {
			if _, err := stmt.Exec(d.Path, w.Block, w.Line, w.Offset, w.Depth, w.Surface,
				w.Root, w.POS, w.Tense, w.Honorific, w.Definition, w.VerbID, w.Polished); err != nil {
				return fmt.Errorf("index: insert word: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteDocument removes a document, its FTS entry and its words.
func (db *DB) DeleteDocument(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	_, _ = tx.Exec(`DELETE FROM words WHERE path = ?`, path)
	_, _ = tx.Exec(`DELETE FROM documents WHERE path = ?`, path)

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a document, or empty string if
// it is not indexed.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM documents WHERE path = ?`, path).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: checksum: %w", err)
	}
	return cs, nil
}

// GetDocument returns the indexed row for path, or nil when absent.
func (db *DB) GetDocument(path string) (*DocumentRow, error) {
	var d DocumentRow
	err := db.conn.QueryRow(`
		SELECT path, title, checksum, blocks, words, updated_at
		FROM documents WHERE path = ?`, path).
		Scan(&d.Path, &d.Title, &d.Checksum, &d.Blocks, &d.Words, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("index: get document: %w", err)
	}
	return &d, nil
}

// ListDocuments returns a page of documents and the total count. sort is
// "title", "updated" (newest first) or anything else for path order.
func (db *DB) ListDocuments(limit, offset int, sort string) ([]DocumentRow, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	order := "path"
	switch sort {
	case "title":
		order = "title, path"
	case "updated":
		order = "updated_at DESC, path"
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM documents`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count documents: %w", err)
	}
	rows, err := db.conn.Query(`
		SELECT path, title, checksum, blocks, words, updated_at
		FROM documents ORDER BY `+order+` LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list documents: %w", err)
	}
	defer rows.Close()

	var out []DocumentRow
	for rows.Next() {
		var d DocumentRow
		if err := rows.Scan(&d.Path, &d.Title, &d.Checksum, &d.Blocks, &d.Words, &d.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	return out, total, rows.Err()
}

// SearchWords finds annotated words whose surface, root or definition
// contains query.
func (db *DB) SearchWords(query string, limit int) ([]WordRow, error) {
	if limit <= 0 {
		limit = 50
	}
	query = normalizeQuery(query)
	if query == "" {
		return nil, nil
	}
	like := "%" + likeEscape(query) + "%"
	return db.queryWords(`
		SELECT `+wordColumns+` FROM words
		WHERE surface LIKE ? ESCAPE '\' OR root LIKE ? ESCAPE '\' OR definition LIKE ? ESCAPE '\'
		ORDER BY path, block, byte_offset
		LIMIT ?`, like, like, like, limit)
}

// Concordance lists every occurrence annotated with root word, or whose
// surface is word.
func (db *DB) Concordance(word string, limit int) ([]WordRow, error) {
	if limit <= 0 {
		limit = 200
	}
	return db.queryWords(`
		SELECT `+wordColumns+` FROM words
		WHERE root = ? OR surface = ?
		ORDER BY path, block, byte_offset
		LIMIT ?`, word, word, limit)
}

func (db *DB) queryWords(q string, args ...any) ([]WordRow, error) {
	rows, err := db.conn.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("index: query words: %w", err)
	}
	defer rows.Close()

	var out []WordRow
	for rows.Next() {
		var w WordRow
		if err := rows.Scan(&w.Path, &w.Block, &w.Line, &w.Offset, &w.Depth, &w.Surface,
			&w.Root, &w.POS, &w.Tense, &w.Honorific, &w.Definition, &w.VerbID, &w.Polished); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// Stats counts documents, words, polished words and distinct roots.
func (db *DB) Stats() (Stats, error) {
	var s Stats
	err := db.conn.QueryRow(`
		SELECT
			(SELECT count(*) FROM documents),
			(SELECT count(*) FROM words),
			(SELECT count(*) FROM words WHERE polished = 1),
			(SELECT count(*) FROM words WHERE honorific = 1),
			(SELECT count(DISTINCT root) FROM words WHERE root != '')
	`).Scan(&s.Documents, &s.Words, &s.Polished, &s.Honorific, &s.Roots)
	if err != nil {
		return Stats{}, fmt.Errorf("index: stats: %w", err)
	}
	return s, nil
}

// AllPaths returns every indexed document path.
func (db *DB) AllPaths() (map[string]struct{}, error) {
	rows, err := db.conn.Query(`SELECT path FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("index: all paths: %w", err)
	}
	defer rows.Close()
	out := make(map[string]struct{})
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out[p] = struct{}{}
	}
	return out, rows.Err()
}

// AllChecksums returns the stored checksum of every indexed document.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}
