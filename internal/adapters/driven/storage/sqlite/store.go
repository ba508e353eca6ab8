package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/Kailash-Sankar/PocketMCP/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/Kailash-Sankar/PocketMCP/internal/core/domain"
	"github.com/Kailash-Sankar/PocketMCP/internal/core/ports/driven"
)

// defaultListLimit applies when a document listing gives no limit.
const defaultListLimit = 50

// maxListLimit bounds a single listing page.
const maxListLimit = 500

// Store is a unified SQLite-based storage that backs the document
// store and chunk search interfaces through wrapper types.
type Store struct {
	db       *sql.DB
	path     string
	index    driven.VectorIndex
	strategy searchStrategy
}

// NewStore creates a new SQLite store at the specified data directory
// and selects the search strategy by probing the vector index once.
// If dataDir is empty, defaults to ~/.pocketmcp/data/index.db.
func NewStore(dataDir string, index driven.VectorIndex) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".pocketmcp", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "index.db")

	// Open database with WAL mode for better concurrency. Foreign keys
	// go in the DSN so every pooled connection enforces them, and write
	// transactions take the write lock at BEGIN rather than at upgrade.
	db, err := sql.Open("sqlite", dbPath+
		"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:    db,
		path:  dbPath,
		index: index,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	s.strategy = probeStrategy(s, index)

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// DocumentStore returns a DocumentStore interface backed by this store.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{store: s}
}

// Searcher returns a ChunkSearcher bound to the strategy selected at
// construction.
func (s *Store) Searcher() driven.ChunkSearcher {
	return &chunkSearcher{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_init.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Document Store ====================

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// upsertDocument writes the document row, preserving created_at on
// conflict. The caller stamps timestamps.
func upsertDocument(ctx context.Context, ex execer, doc *domain.Document) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO documents
			(id, external_id, source, uri, title, content_type, size_bytes,
			 content_hash, mtime, ingest_status, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			external_id = excluded.external_id,
			source = excluded.source,
			uri = excluded.uri,
			title = excluded.title,
			content_type = excluded.content_type,
			size_bytes = excluded.size_bytes,
			content_hash = excluded.content_hash,
			mtime = excluded.mtime,
			ingest_status = excluded.ingest_status,
			notes = excluded.notes,
			updated_at = excluded.updated_at
	`, doc.ID, nullString(doc.ExternalID), string(doc.Source), doc.URI, doc.Title,
		doc.ContentType, doc.SizeBytes, doc.ContentHash, nullTime(doc.MTime),
		string(doc.IngestStatus), doc.Notes, doc.CreatedAt, doc.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// UpsertDocument stores or updates a document row alone, leaving any
// existing segments and chunks in place.
func (s *documentStore) UpsertDocument(ctx context.Context, doc *domain.Document) error {
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	return upsertDocument(ctx, s.store.db, doc)
}

// ReplaceDocument upserts the document row and replaces all of its
// segments and chunks in a single transaction. A reader never observes
// a mix of the old and new version; interruption before commit leaves
// the previous version in place.
func (s *documentStore) ReplaceDocument(
	ctx context.Context,
	doc *domain.Document,
	segments []domain.Segment,
	chunks []domain.Chunk,
) error {
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	// Old chunk IDs feed the vector index sync after commit.
	oldChunkIDs, err := chunkIDsTx(ctx, tx, doc.ID)
	if err != nil {
		return err
	}

	if err := upsertDocument(ctx, tx, doc); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", doc.ID); err != nil {
		return fmt.Errorf("deleting old chunks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM segments WHERE document_id = ?", doc.ID); err != nil {
		return fmt.Errorf("deleting old segments: %w", err)
	}

	segStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO segments (id, document_id, position, kind, page, meta, content)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing segment statement: %w", err)
	}
	defer segStmt.Close()

	for _, seg := range segments {
		if _, err := segStmt.ExecContext(ctx, seg.ID, seg.DocumentID, seg.Position,
			string(seg.Kind), seg.Page, seg.Meta, seg.Text); err != nil {
			return fmt.Errorf("saving segment: %w", err)
		}
	}

	chunkStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, segment_id, document_id, position, start_char, end_char, content, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing chunk statement: %w", err)
	}
	defer chunkStmt.Close()

	for _, chunk := range chunks {
		embeddingBlob := float32SliceToBytes(chunk.Embedding)
		if _, err := chunkStmt.ExecContext(ctx, chunk.ID, chunk.SegmentID, chunk.DocumentID,
			chunk.Position, chunk.StartChar, chunk.EndChar, chunk.Text, embeddingBlob); err != nil {
			return fmt.Errorf("saving chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	s.store.indexDelete(ctx, oldChunkIDs)
	s.store.indexAdd(ctx, chunks)

	return nil
}

// GetDocument retrieves a document by ID.
func (s *documentStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, external_id, source, uri, title, content_type, size_bytes,
		       content_hash, mtime, ingest_status, notes, created_at, updated_at
		FROM documents WHERE id = ?
	`, id)

	return scanDocument(row)
}

// GetDocumentByExternalID retrieves a document by its uniqueness key.
func (s *documentStore) GetDocumentByExternalID(ctx context.Context, externalID string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, external_id, source, uri, title, content_type, size_bytes,
		       content_hash, mtime, ingest_status, notes, created_at, updated_at
		FROM documents WHERE external_id = ?
	`, externalID)

	return scanDocument(row)
}

// GetSegments retrieves a document's segments ordered by position.
func (s *documentStore) GetSegments(ctx context.Context, documentID string) ([]domain.Segment, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, document_id, position, kind, page, meta, content
		FROM segments WHERE document_id = ?
		ORDER BY position
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying segments: %w", err)
	}
	defer rows.Close()

	var segments []domain.Segment //nolint:prealloc // size unknown from query
	for rows.Next() {
		var seg domain.Segment
		var kind string
		if err := rows.Scan(&seg.ID, &seg.DocumentID, &seg.Position,
			&kind, &seg.Page, &seg.Meta, &seg.Text); err != nil {
			return nil, fmt.Errorf("scanning segment: %w", err)
		}
		seg.Kind = domain.SegmentKind(kind)
		segments = append(segments, seg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating segments: %w", err)
	}

	return segments, nil
}

// GetChunk retrieves a specific chunk by ID.
func (s *documentStore) GetChunk(ctx context.Context, id string) (*domain.Chunk, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, segment_id, document_id, position, start_char, end_char, content, embedding
		FROM chunks WHERE id = ?
	`, id)

	return scanChunkRow(row)
}

// GetChunks retrieves all chunks for a document in insertion order.
func (s *documentStore) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, segment_id, document_id, position, start_char, end_char, content, embedding
		FROM chunks WHERE document_id = ?
		ORDER BY rowid
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, *chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return chunks, nil
}

// CountChunks returns the number of chunks stored for a document.
func (s *documentStore) CountChunks(ctx context.Context, documentID string) (int, error) {
	var count int
	err := s.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM chunks WHERE document_id = ?", documentID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return count, nil
}

// DeleteDocuments removes documents and cascades to their segments and
// chunks. Unknown IDs are ignored, not errors.
func (s *documentStore) DeleteDocuments(ctx context.Context, ids []string) (*domain.DeleteResult, error) {
	result := &domain.DeleteResult{}
	if len(ids) == 0 {
		return result, nil
	}

	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	ph := placeholders(len(ids))

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	rows, err := tx.QueryContext(ctx,
		"SELECT id FROM documents WHERE id IN ("+ph+")", args...)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning document id: %w", err)
		}
		result.DeletedDocIDs = append(result.DeletedDocIDs, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterating document ids: %w", err)
	}
	rows.Close()

	if len(result.DeletedDocIDs) == 0 {
		return result, nil
	}

	var chunkIDs []string
	for _, id := range result.DeletedDocIDs {
		cids, err := chunkIDsTx(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		chunkIDs = append(chunkIDs, cids...)
	}
	result.DeletedChunks = len(chunkIDs)

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM chunks WHERE document_id IN ("+ph+")", args...); err != nil {
		return nil, fmt.Errorf("deleting chunks: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM segments WHERE document_id IN ("+ph+")", args...); err != nil {
		return nil, fmt.Errorf("deleting segments: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM documents WHERE id IN ("+ph+")", args...); err != nil {
		return nil, fmt.Errorf("deleting documents: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	s.store.indexDelete(ctx, chunkIDs)

	return result, nil
}

// listCursor is the keyset position encoded into pagination tokens.
type listCursor struct {
	UpdatedAt time.Time `json:"updated_at"`
	ID        string    `json:"id"`
}

// ListDocuments returns one page of documents ordered by updated_at
// descending, ties broken by ID. An empty cursor starts from the newest.
func (s *documentStore) ListDocuments(ctx context.Context, limit int, cursor string) (*domain.DocumentPage, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	query := `
		SELECT id, external_id, source, uri, title, content_type, size_bytes,
		       content_hash, mtime, ingest_status, notes, created_at, updated_at
		FROM documents
	`
	var args []interface{}

	if cursor != "" {
		pos, err := decodeListCursor(cursor)
		if err != nil {
			return nil, err
		}
		query += ` WHERE updated_at < ? OR (updated_at = ? AND id < ?)`
		args = append(args, pos.UpdatedAt, pos.UpdatedAt, pos.ID)
	}

	// Fetch one beyond the page to learn whether a next page exists.
	query += ` ORDER BY updated_at DESC, id DESC LIMIT ?`
	args = append(args, limit+1)

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocumentRows(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	page := &domain.DocumentPage{}
	if len(docs) > limit {
		docs = docs[:limit]
		last := docs[len(docs)-1]
		page.NextCursor = encodeListCursor(listCursor{UpdatedAt: last.UpdatedAt, ID: last.ID})
	}
	page.Documents = docs

	return page, nil
}

// Stats reports index totals for diagnostics.
func (s *documentStore) Stats(ctx context.Context) (*domain.IndexStats, error) {
	stats := &domain.IndexStats{Strategy: s.store.strategy.name()}

	if err := s.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM documents").Scan(&stats.Documents); err != nil {
		return nil, fmt.Errorf("counting documents: %w", err)
	}
	if err := s.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM segments").Scan(&stats.Segments); err != nil {
		return nil, fmt.Errorf("counting segments: %w", err)
	}
	if err := s.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM chunks").Scan(&stats.Chunks); err != nil {
		return nil, fmt.Errorf("counting chunks: %w", err)
	}

	return stats, nil
}

// Close closes the underlying database connection.
func (s *documentStore) Close() error {
	return s.store.Close()
}

// ==================== Helper Functions ====================

// chunkIDsTx returns the IDs of a document's chunks within a transaction.
func chunkIDsTx(ctx context.Context, tx *sql.Tx, documentID string) ([]string, error) {
	rows, err := tx.QueryContext(ctx,
		"SELECT id FROM chunks WHERE document_id = ?", documentID)
	if err != nil {
		return nil, fmt.Errorf("querying chunk ids: %w", err)
	}
	defer rows.Close()

	var ids []string //nolint:prealloc // size unknown from query
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning chunk id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunk ids: %w", err)
	}

	return ids, nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// scanDocument scans a single document row.
func scanDocument(row *sql.Row) (*domain.Document, error) {
	var doc domain.Document
	var externalID sql.NullString
	var source, status string
	var mtime sql.NullTime

	if err := row.Scan(&doc.ID, &externalID, &source, &doc.URI, &doc.Title,
		&doc.ContentType, &doc.SizeBytes, &doc.ContentHash, &mtime,
		&status, &doc.Notes, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	doc.ExternalID = externalID.String
	doc.Source = domain.DocumentSource(source)
	doc.IngestStatus = domain.IngestStatus(status)
	if mtime.Valid {
		doc.MTime = mtime.Time
	}

	return &doc, nil
}

// scanDocumentRows scans a document from *sql.Rows.
func scanDocumentRows(rows *sql.Rows) (*domain.Document, error) {
	var doc domain.Document
	var externalID sql.NullString
	var source, status string
	var mtime sql.NullTime

	if err := rows.Scan(&doc.ID, &externalID, &source, &doc.URI, &doc.Title,
		&doc.ContentType, &doc.SizeBytes, &doc.ContentHash, &mtime,
		&status, &doc.Notes, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	doc.ExternalID = externalID.String
	doc.Source = domain.DocumentSource(source)
	doc.IngestStatus = domain.IngestStatus(status)
	if mtime.Valid {
		doc.MTime = mtime.Time
	}

	return &doc, nil
}

// scanChunk scans a chunk from *sql.Rows.
func scanChunk(rows *sql.Rows) (*domain.Chunk, error) {
	var chunk domain.Chunk
	var embeddingBlob []byte

	if err := rows.Scan(&chunk.ID, &chunk.SegmentID, &chunk.DocumentID,
		&chunk.Position, &chunk.StartChar, &chunk.EndChar,
		&chunk.Text, &embeddingBlob); err != nil {
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}

	chunk.Embedding = bytesToFloat32Slice(embeddingBlob)

	return &chunk, nil
}

// scanChunkRow scans a chunk from *sql.Row.
func scanChunkRow(row *sql.Row) (*domain.Chunk, error) {
	var chunk domain.Chunk
	var embeddingBlob []byte

	if err := row.Scan(&chunk.ID, &chunk.SegmentID, &chunk.DocumentID,
		&chunk.Position, &chunk.StartChar, &chunk.EndChar,
		&chunk.Text, &embeddingBlob); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}

	chunk.Embedding = bytesToFloat32Slice(embeddingBlob)

	return &chunk, nil
}

// encodeListCursor serialises a keyset position into an opaque token.
func encodeListCursor(pos listCursor) string {
	data, err := json.Marshal(pos)
	if err != nil {
		return ""
	}
	return base64.URLEncoding.EncodeToString(data)
}

// decodeListCursor parses an opaque pagination token.
func decodeListCursor(cursor string) (listCursor, error) {
	var pos listCursor
	data, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return pos, fmt.Errorf("%w: malformed cursor", domain.ErrInvalidInput)
	}
	if err := json.Unmarshal(data, &pos); err != nil {
		return pos, fmt.Errorf("%w: malformed cursor", domain.ErrInvalidInput)
	}
	return pos, nil
}

// placeholders returns a comma-joined list of n SQL placeholders.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// nullString returns nil for empty strings, otherwise the string.
func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// nullTime returns nil for zero times, otherwise the time.
func nullTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}
