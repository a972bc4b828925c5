package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pagescout/pagescout/internal/storage"
)

// StatusSource is what the health endpoint needs from the storage layer:
// liveness plus the size of the active index generation.
type StatusSource interface {
	Health(ctx context.Context) error
	GetCollectionInfo(ctx context.Context) (*storage.CollectionInfo, error)
}

// HealthResponse is the /health payload. Chunks counts the points in the
// active index generation, i.e. how many passages the last search indexed.
type HealthResponse struct {
	Status    string `json:"status"`
	Qdrant    string `json:"qdrant"`
	Chunks    uint64 `json:"chunks"`
	Timestamp string `json:"timestamp"`
}

// NewHealthHandler creates the /health handler. A reachable store reports
// 200 with the current generation size; an unreachable one reports 503.
func NewHealthHandler(store StatusSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		response := HealthResponse{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}
		w.Header().Set("Content-Type", "application/json")

		if err := store.Health(ctx); err != nil {
			response.Status = "unhealthy"
			response.Qdrant = "disconnected"
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(response)
			return
		}

		response.Status = "healthy"
		response.Qdrant = "connected"

		// Generation size is best-effort: the collection may be mid-reset
		// when a search is rebuilding it.
		if info, err := store.GetCollectionInfo(ctx); err == nil {
			response.Chunks = info.PointsCount
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(response)
	}
}
