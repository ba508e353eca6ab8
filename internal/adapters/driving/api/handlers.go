package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Kailash-Sankar/PocketMCP/internal/core/domain"
)

// documentJSON is a document summary in API responses.
type documentJSON struct {
	ID           string `json:"id"`
	ExternalID   string `json:"external_id,omitempty"`
	Source       string `json:"source"`
	URI          string `json:"uri,omitempty"`
	Title        string `json:"title,omitempty"`
	ContentType  string `json:"content_type,omitempty"`
	SizeBytes    int64  `json:"size_bytes,omitempty"`
	IngestStatus string `json:"ingest_status"`
	Notes        string `json:"notes,omitempty"`
	UpdatedAt    string `json:"updated_at"`
}

// matchJSON is a search match in API responses.
type matchJSON struct {
	ChunkID  string  `json:"chunk_id"`
	DocID    string  `json:"doc_id"`
	Title    string  `json:"title,omitempty"`
	Score    float64 `json:"score"`
	Preview  string  `json:"preview"`
	Resource string  `json:"resource"`
}

// watcherJSON is the watcher counter block in the stats response.
type watcherJSON struct {
	Running   bool `json:"running"`
	Pending   int  `json:"pending"`
	Processed int  `json:"processed"`
	Errors    int  `json:"errors"`
}

// handleStats reports index totals, the active search strategy, and
// watcher counters when a watcher is wired.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.docs.Stats(r.Context())
	if err != nil {
		jsonError(w, "reading stats: "+err.Error(), statusFor(err))
		return
	}

	response := map[string]any{
		"documents": stats.Documents,
		"segments":  stats.Segments,
		"chunks":    stats.Chunks,
		"strategy":  stats.Strategy,
	}
	if s.watch != nil {
		status := s.watch.Status()
		response["watcher"] = watcherJSON{
			Running:   status.Running,
			Pending:   status.Pending,
			Processed: status.Processed,
			Errors:    status.Errors,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response) //nolint:errcheck
}

// handleListDocuments returns one page of document summaries.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			jsonError(w, "limit must be an integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	page, err := s.docs.List(r.Context(), limit, r.URL.Query().Get("cursor"))
	if err != nil {
		jsonError(w, "listing documents: "+err.Error(), statusFor(err))
		return
	}

	docs := make([]documentJSON, len(page.Documents))
	for i := range page.Documents {
		doc := &page.Documents[i]
		docs[i] = documentJSON{
			ID:           doc.ID,
			ExternalID:   doc.ExternalID,
			Source:       string(doc.Source),
			URI:          doc.URI,
			Title:        doc.Title,
			ContentType:  doc.ContentType,
			SizeBytes:    doc.SizeBytes,
			IngestStatus: string(doc.IngestStatus),
			Notes:        doc.Notes,
			UpdatedAt:    doc.UpdatedAt.Format(time.RFC3339),
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
		"documents":   docs,
		"next_cursor": page.NextCursor,
	})
}

// handleSearch runs a similarity query. q is required; k is optional.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	k := 0
	if raw := r.URL.Query().Get("k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			jsonError(w, "k must be an integer", http.StatusBadRequest)
			return
		}
		k = parsed
	}

	matches, err := s.search.Search(r.Context(), query, domain.SearchOptions{TopK: k})
	if err != nil {
		jsonError(w, "search: "+err.Error(), statusFor(err))
		return
	}

	shaped := make([]matchJSON, len(matches))
	for i := range matches {
		shaped[i] = matchJSON{
			ChunkID:  matches[i].ChunkID,
			DocID:    matches[i].DocID,
			Title:    matches[i].Title,
			Score:    matches[i].Score,
			Preview:  matches[i].Preview,
			Resource: matches[i].Resource,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
		"matches":  shaped,
		"count":    len(shaped),
		"strategy": s.search.Strategy(),
	})
}

// statusFor maps core errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg}) //nolint:errcheck
}
