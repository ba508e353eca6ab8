package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/Kailash-Sankar/PocketMCP/internal/chunker"
	"github.com/Kailash-Sankar/PocketMCP/internal/core/domain"
	"github.com/Kailash-Sankar/PocketMCP/internal/core/ports/driven"
	"github.com/Kailash-Sankar/PocketMCP/internal/core/ports/driving"
	"github.com/Kailash-Sankar/PocketMCP/internal/logger"
)

// Ensure IngestOrchestrator implements the interface.
var _ driving.Ingestor = (*IngestOrchestrator)(nil)

// maxNotesLen bounds diagnostic notes persisted on a document row.
const maxNotesLen = 500

// IngestOrchestrator runs the extract → chunk → embed → persist
// pipeline. Each document lands in the store through one replace
// transaction; a failing entry never blocks the rest of its batch.
type IngestOrchestrator struct {
	docStore   driven.DocumentStore
	extractors driven.ExtractorRegistry
	chunker    *chunker.Chunker
	embedder   driven.EmbeddingService
	settings   domain.Settings
}

// NewIngestOrchestrator creates an ingest orchestrator.
func NewIngestOrchestrator(
	docStore driven.DocumentStore,
	extractors driven.ExtractorRegistry,
	chunker *chunker.Chunker,
	embedder driven.EmbeddingService,
	settings domain.Settings,
) *IngestOrchestrator {
	return &IngestOrchestrator{
		docStore:   docStore,
		extractors: extractors,
		chunker:    chunker,
		embedder:   embedder,
		settings:   settings,
	}
}

// pendingDoc is one batch entry that survived planning: the document
// row, its segments and chunks, waiting only for embeddings.
type pendingDoc struct {
	reqIndex int
	doc      domain.Document
	segments []domain.Segment
	chunks   []domain.Chunk
	status   domain.ResultStatus // inserted or updated
}

// IngestBatch upserts the given documents. Results are positional: one
// per request, in order. Chunk texts are collected across the whole
// batch and embedded in one batched call before any write happens.
func (s *IngestOrchestrator) IngestBatch(ctx context.Context, reqs []domain.IngestRequest) ([]domain.IngestResult, error) {
	logger.Section("Ingest Batch")
	logger.Debug("Batch size: %d", len(reqs))

	if len(reqs) == 0 {
		return nil, fmt.Errorf("%w: empty batch", domain.ErrInvalidInput)
	}

	results := make([]domain.IngestResult, len(reqs))
	pending := make([]*pendingDoc, 0, len(reqs))
	invalid := 0

	// 1. PLAN
	// Validate, hash, resolve identity, and chunk every entry.
	// Nothing is written yet.
	for i := range reqs {
		plan, result := s.plan(ctx, &reqs[i])
		results[i] = result
		if plan != nil {
			plan.reqIndex = i
			pending = append(pending, plan)
		} else if errors.Is(result.Err, domain.ErrInvalidInput) {
			invalid++
		}
	}

	if invalid == len(reqs) {
		return nil, fmt.Errorf("%w: no valid documents in batch", domain.ErrInvalidInput)
	}

	// 2. EMBED
	// One batched call covering every chunk in the batch; vectors map
	// back onto chunks positionally.
	if err := s.embedPending(ctx, pending); err != nil {
		for _, p := range pending {
			results[p.reqIndex] = s.failPending(ctx, p, fmt.Errorf("embed batch: %w", err))
		}
		return results, nil
	}

	// 3. PERSIST
	// One replace transaction per document. A store failure marks that
	// entry and moves on.
	for _, p := range pending {
		results[p.reqIndex] = s.persistPending(ctx, p)
	}

	logger.Info("Batch done: %d entries, %d written", len(reqs), len(pending))
	return results, nil
}

// plan validates one request and prepares its persistence plan.
// A nil plan means the entry is already settled: skipped when
// result.Err is nil, failed otherwise.
func (s *IngestOrchestrator) plan(ctx context.Context, req *domain.IngestRequest) (*pendingDoc, domain.IngestResult) {
	result := domain.IngestResult{ExternalID: req.ExternalID}

	// 1. VALIDATE
	source := req.Source
	if source == "" {
		source = domain.SourceRaw
	}
	if !source.IsValid() {
		result.Status = domain.ResultError
		result.Err = fmt.Errorf("%w: unknown source %q", domain.ErrInvalidInput, req.Source)
		return nil, result
	}

	text := strings.TrimSpace(req.Text)
	if text != "" && len(req.Segments) > 0 {
		result.Status = domain.ResultError
		result.Err = fmt.Errorf("%w: request carries both text and segments", domain.ErrInvalidInput)
		return nil, result
	}
	// A non-nil empty Segments slice is a document with no text
	// (a blank file): legal, and it replaces any previous content.
	if text == "" && req.Segments == nil {
		result.Status = domain.ResultError
		result.Err = fmt.Errorf("%w: request carries no content", domain.ErrInvalidInput)
		return nil, result
	}

	// 2. ASSEMBLE SEGMENT INPUTS
	inputs := req.Segments
	if text != "" {
		inputs = []domain.SegmentInput{{Kind: domain.SegmentKindSection, Text: text}}
	}
	inputs, err := normaliseSegments(inputs)
	if err != nil {
		result.Status = domain.ResultError
		result.Err = err
		return nil, result
	}

	// 3. HASH
	hash := contentHash(inputs)

	// 4. RESOLVE IDENTITY
	var existing *domain.Document
	if req.ExternalID != "" {
		existing, err = s.docStore.GetDocumentByExternalID(ctx, req.ExternalID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			result.Status = domain.ResultError
			result.Err = fmt.Errorf("resolve external id %s: %w", req.ExternalID, err)
			return nil, result
		}
	}

	// 5. HASH SKIP
	// Only an ok document short-circuits: anything else holds a
	// failure status and re-ingestion is its retry path.
	if existing != nil && existing.IngestStatus == domain.IngestStatusOK &&
		existing.ContentHash == hash && req.ShouldSkipUnchanged() {
		count, err := s.docStore.CountChunks(ctx, existing.ID)
		if err != nil {
			logger.Debug("Chunk count for unchanged document %s: %v", existing.ID, err)
		}
		logger.Debug("Document %s unchanged, skipping", existing.ID)
		result.DocID = existing.ID
		result.Status = domain.ResultSkipped
		result.IngestStatus = existing.IngestStatus
		result.ChunkCount = count
		return nil, result
	}

	// 6. BUILD THE PLAN
	plan := &pendingDoc{status: domain.ResultInserted}
	var doc domain.Document
	if existing != nil {
		doc = *existing // keeps ID and CreatedAt
		plan.status = domain.ResultUpdated
	} else {
		doc.ID = newDocID(hash)
	}
	doc.ExternalID = req.ExternalID
	doc.Source = source
	doc.URI = req.URI
	doc.Title = req.Title
	doc.ContentType = req.ContentType
	doc.SizeBytes = req.SizeBytes
	doc.ContentHash = hash
	doc.MTime = req.MTime
	doc.IngestStatus = domain.IngestStatusOK
	doc.Notes = truncateNotes(req.Notes)

	for pos, in := range inputs {
		seg := domain.Segment{
			ID:         segmentID(doc.ID, pos),
			DocumentID: doc.ID,
			Position:   pos,
			Kind:       in.Kind,
			Page:       in.Page,
			Meta:       in.Meta,
			Text:       in.Text,
		}
		plan.segments = append(plan.segments, seg)

		for _, span := range s.chunker.Chunk(in.Text) {
			plan.chunks = append(plan.chunks, domain.Chunk{
				ID:         chunkID(seg.ID, span.Index),
				SegmentID:  seg.ID,
				DocumentID: doc.ID,
				Position:   span.Index,
				StartChar:  span.Start,
				EndChar:    span.End,
				Text:       span.Text,
			})
		}
	}
	plan.doc = doc

	logger.Debug("Planned document %s: %d segments, %d chunks",
		doc.ID, len(plan.segments), len(plan.chunks))
	return plan, result
}

// embedPending embeds every planned chunk in one order-preserving
// batched call and assigns the vectors back positionally.
func (s *IngestOrchestrator) embedPending(ctx context.Context, pending []*pendingDoc) error {
	var texts []string
	for _, p := range pending {
		for i := range p.chunks {
			texts = append(texts, p.chunks[i].Text)
		}
	}
	if len(texts) == 0 {
		return nil
	}

	logger.Debug("Embedding %d chunks", len(texts))
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return err
	}
	if len(vectors) != len(texts) {
		return fmt.Errorf("embedder returned %d vectors for %d texts", len(vectors), len(texts))
	}

	i := 0
	for _, p := range pending {
		for j := range p.chunks {
			p.chunks[j].Embedding = vectors[i]
			i++
		}
	}
	return nil
}

// persistPending writes one planned document through a single replace
// transaction.
func (s *IngestOrchestrator) persistPending(ctx context.Context, p *pendingDoc) domain.IngestResult {
	doc := p.doc
	if err := s.docStore.ReplaceDocument(ctx, &doc, p.segments, p.chunks); err != nil {
		return s.failPending(ctx, p,
			fmt.Errorf("%w: replace document %s: %w", domain.ErrStoreTransaction, doc.ID, err))
	}

	logger.Debug("Document %s: %s with %d chunks", doc.ID, p.status, len(p.chunks))
	return domain.IngestResult{
		DocID:        doc.ID,
		ExternalID:   doc.ExternalID,
		Status:       p.status,
		IngestStatus: domain.IngestStatusOK,
		ChunkCount:   len(p.chunks),
	}
}

// failPending records a failure on the planned document's row. The
// row-only upsert leaves chunks from the last successful ingest in
// place; the status describes the last attempt, the chunks the last
// success.
func (s *IngestOrchestrator) failPending(ctx context.Context, p *pendingDoc, cause error) domain.IngestResult {
	logger.Warn("Ingest failed for document %s: %v", p.doc.ID, cause)

	doc := p.doc
	doc.IngestStatus = domain.StatusForError(cause)
	doc.Notes = failureNotes(cause)
	if err := s.docStore.UpsertDocument(ctx, &doc); err != nil {
		logger.Warn("Could not record %s status for document %s: %v", doc.IngestStatus, doc.ID, err)
	}

	count, err := s.docStore.CountChunks(ctx, doc.ID)
	if err != nil {
		count = 0
	}

	return domain.IngestResult{
		DocID:        doc.ID,
		ExternalID:   doc.ExternalID,
		Status:       domain.ResultError,
		IngestStatus: doc.IngestStatus,
		ChunkCount:   count,
		Err:          cause,
	}
}

// IngestFile extracts the file at path and upserts it with the
// normalised absolute path as the external ID. File-level failures
// (encrypted, too large, no text layer, parse errors) are persisted on
// the document row and reported through the result's Err; the error
// return is for invalid calls and unresolvable paths.
func (s *IngestOrchestrator) IngestFile(ctx context.Context, path string) (*domain.IngestResult, error) {
	logger.Section("Ingest File")
	logger.Debug("Path: %s", path)

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve path %q: %v", domain.ErrInvalidInput, path, err)
	}

	extractor, ok := s.extractors.ForPath(abs)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, abs)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", abs, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", domain.ErrInvalidInput, abs)
	}

	// The size gate runs on metadata alone; an oversized file is
	// never opened.
	if s.settings.MaxFileBytes > 0 && info.Size() > s.settings.MaxFileBytes {
		cause := fmt.Errorf("%w: %d bytes (limit %d)", domain.ErrTooLarge, info.Size(), s.settings.MaxFileBytes)
		return s.failFile(ctx, abs, info, cause), nil
	}

	extraction, err := extractor.Extract(ctx, abs)
	if err != nil {
		return s.failFile(ctx, abs, info, err), nil
	}

	segments := extraction.Segments
	if segments == nil {
		// A readable file with no text is an empty document, not an
		// invalid request.
		segments = []domain.SegmentInput{}
	}

	req := domain.IngestRequest{
		ExternalID:  abs,
		Source:      domain.SourceFile,
		URI:         abs,
		Title:       extraction.Title,
		ContentType: extraction.ContentType,
		SizeBytes:   info.Size(),
		MTime:       info.ModTime(),
		Segments:    segments,
		Notes:       extraction.Notes,
	}

	results, err := s.IngestBatch(ctx, []domain.IngestRequest{req})
	if err != nil {
		return nil, err
	}
	return &results[0], nil
}

// failFile records a file-level failure on the document row keyed by
// the file's path, creating the row if the file was never indexed.
func (s *IngestOrchestrator) failFile(ctx context.Context, path string, info os.FileInfo, cause error) *domain.IngestResult {
	logger.Warn("Ingest failed for %s: %v", path, cause)

	var doc domain.Document
	existing, err := s.docStore.GetDocumentByExternalID(ctx, path)
	switch {
	case err == nil:
		doc = *existing
	case errors.Is(err, domain.ErrNotFound):
		doc.ID = newDocID("")
	default:
		return &domain.IngestResult{
			ExternalID:   path,
			Status:       domain.ResultError,
			IngestStatus: domain.StatusForError(cause),
			Err:          cause,
		}
	}

	doc.ExternalID = path
	doc.Source = domain.SourceFile
	doc.URI = path
	if doc.Title == "" {
		doc.Title = filepath.Base(path)
	}
	doc.SizeBytes = info.Size()
	doc.MTime = info.ModTime()
	doc.IngestStatus = domain.StatusForError(cause)
	doc.Notes = failureNotes(cause)

	if err := s.docStore.UpsertDocument(ctx, &doc); err != nil {
		logger.Warn("Could not record %s status for %s: %v", doc.IngestStatus, path, err)
	}

	count, err := s.docStore.CountChunks(ctx, doc.ID)
	if err != nil {
		count = 0
	}

	return &domain.IngestResult{
		DocID:        doc.ID,
		ExternalID:   path,
		Status:       domain.ResultError,
		IngestStatus: doc.IngestStatus,
		ChunkCount:   count,
		Err:          cause,
	}
}

// DeleteDocuments removes documents by ID and/or external ID. Unknown
// identifiers are no-ops; an empty call deletes nothing.
func (s *IngestOrchestrator) DeleteDocuments(ctx context.Context, docIDs, externalIDs []string) (*domain.DeleteResult, error) {
	logger.Section("Delete Documents")

	if len(docIDs) == 0 && len(externalIDs) == 0 {
		return nil, fmt.Errorf("%w: no identifiers given", domain.ErrInvalidInput)
	}

	ids := make([]string, 0, len(docIDs)+len(externalIDs))
	seen := make(map[string]bool, len(docIDs)+len(externalIDs))
	for _, id := range docIDs {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, externalID := range externalIDs {
		if externalID == "" {
			continue
		}
		doc, err := s.docStore.GetDocumentByExternalID(ctx, externalID)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("resolve external id %s: %w", externalID, err)
		}
		if !seen[doc.ID] {
			seen[doc.ID] = true
			ids = append(ids, doc.ID)
		}
	}

	result, err := s.docStore.DeleteDocuments(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("delete documents: %w", err)
	}

	logger.Info("Deleted %d documents, %d chunks", len(result.DeletedDocIDs), result.DeletedChunks)
	return result, nil
}

// DeleteByPath removes the document ingested from the given file path,
// if any.
func (s *IngestOrchestrator) DeleteByPath(ctx context.Context, path string) (*domain.DeleteResult, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve path %q: %v", domain.ErrInvalidInput, path, err)
	}
	return s.DeleteDocuments(ctx, nil, []string{abs})
}

// ==================== Helpers ====================

// normaliseSegments drops whitespace-only segments and defaults a
// missing kind to section.
func normaliseSegments(inputs []domain.SegmentInput) ([]domain.SegmentInput, error) {
	out := make([]domain.SegmentInput, 0, len(inputs))
	for _, in := range inputs {
		if strings.TrimSpace(in.Text) == "" {
			continue
		}
		if in.Kind == "" {
			in.Kind = domain.SegmentKindSection
		}
		if !in.Kind.IsValid() {
			return nil, fmt.Errorf("%w: unknown segment kind %q", domain.ErrInvalidInput, in.Kind)
		}
		out = append(out, in)
	}
	return out, nil
}

// contentHash digests the segment texts joined with newlines, hex
// encoded. Identical content always produces an identical hash.
func contentHash(inputs []domain.SegmentInput) string {
	h := sha256.New()
	for i, in := range inputs {
		if i > 0 {
			h.Write([]byte{'\n'})
		}
		h.Write([]byte(in.Text))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// newDocID derives a document ID from the content hash plus a random
// nonce. Two documents with identical content still get distinct IDs.
func newDocID(contentHash string) string {
	sum := sha256.Sum256([]byte(contentHash + uuid.NewString()))
	return "d-" + hex.EncodeToString(sum[:])[:12]
}

// segmentID is deterministic from the owning document and position.
func segmentID(docID string, position int) string {
	return fmt.Sprintf("%s:%d", docID, position)
}

// chunkID is deterministic from the owning segment and chunk index.
func chunkID(segID string, index int) string {
	return fmt.Sprintf("%s:%d", segID, index)
}

// failureNotes derives the notes persisted with a failure status.
func failureNotes(cause error) string {
	if errors.Is(cause, domain.ErrEncrypted) {
		return "encrypted"
	}
	return truncateNotes(cause.Error())
}

// truncateNotes bounds notes to maxNotesLen runes.
func truncateNotes(notes string) string {
	runes := []rune(notes)
	if len(runes) <= maxNotesLen {
		return notes
	}
	return string(runes[:maxNotesLen]) + "…"
}
