// Package api exposes the search pipeline over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/pagescout/pagescout/internal/fetch"
	"github.com/pagescout/pagescout/internal/searcher"
)

// PageSearcher runs one search request end to end.
type PageSearcher interface {
	Search(ctx context.Context, url, query string) ([]searcher.Match, error)
}

// SearchResponse is the uniform {results, error} shape returned for every
// request. Pipeline failures populate Error with an empty result set; no
// error surfaces as a hard HTTP failure.
type SearchResponse struct {
	Results []searcher.Match `json:"results"`
	Error   string           `json:"error,omitempty"`
}

// NewSearchHandler creates the GET /search handler. It accepts url and
// query parameters and responds with ranked matches or a descriptive error
// message under the uniform response shape.
func NewSearchHandler(s PageSearcher, logger *slog.Logger) http.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		url := r.URL.Query().Get("url")
		query := r.URL.Query().Get("query")

		matches, err := s.Search(r.Context(), url, query)
		if err != nil {
			logger.Warn("Search failed", "url", url, "error", err)
			writeJSON(w, SearchResponse{
				Results: []searcher.Match{},
				Error:   ErrorMessage(err),
			})
			return
		}

		if matches == nil {
			matches = []searcher.Match{}
		}
		writeJSON(w, SearchResponse{Results: matches})
	}
}

// ErrorMessage converts pipeline errors into the caller-facing message.
// Shared by the HTTP and MCP surfaces so both report identically.
func ErrorMessage(err error) string {
	var fetchErr *fetch.Error
	switch {
	case errors.Is(err, searcher.ErrInvalidURL):
		return "URL must start with http:// or https://"
	case errors.Is(err, searcher.ErrNoContent):
		return "No content extracted."
	case errors.As(err, &fetchErr):
		return fetchErr.Error()
	default:
		return err.Error()
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}
