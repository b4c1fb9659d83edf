package index

// DocumentIndex defines the document indexing operations. Consumers depend on
// this interface rather than *DB.
type DocumentIndex interface {
	UpsertDocument(d DocumentRow, body string, words []WordRow) error
	DeleteDocument(path string) error
	GetChecksum(path string) (string, error)
	GetDocument(path string) (*DocumentRow, error)
	ListDocuments(limit, offset int, sort string) ([]DocumentRow, int, error)
	Search(query string, limit int) ([]SearchResult, error)
	SearchWords(query string, limit int) ([]WordRow, error)
	Concordance(word string, limit int) ([]WordRow, error)
	Stats() (Stats, error)
	AllPaths() (map[string]struct{}, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies DocumentIndex at compile time.
var _ DocumentIndex = (*DB)(nil)
