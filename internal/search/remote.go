package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/starford/lumen/internal/models"
)

// DefaultRemoteLimit is used when callers pass a non-positive limit.
const DefaultRemoteLimit = 5

// Delegate performs retrieval on the backend and returns notes in rank order.
type Delegate interface {
	KnowledgeSearch(ctx context.Context, query string, limit int) ([]models.Note, error)
}

// Remote adapts a Delegate to the SearchResult shape. The backend does not
// return scores, so relevance is a rank proxy and matches are always empty.
type Remote struct {
	delegate Delegate
}

// NewRemote creates a remote search adapter.
func NewRemote(d Delegate) *Remote {
	return &Remote{delegate: d}
}

// Search forwards the query. Delegate failures are returned to the caller,
// never reported as an empty result.
func (r *Remote) Search(ctx context.Context, query string, limit int) ([]models.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return []models.SearchResult{}, nil
	}
	if limit <= 0 {
		limit = DefaultRemoteLimit
	}
	notes, err := r.delegate.KnowledgeSearch(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search: remote: %w", err)
	}

	out := make([]models.SearchResult, len(notes))
	for i := range notes {
		out[i] = models.SearchResult{
			Note:      &notes[i],
			Relevance: float64(len(notes) - i),
			Matches:   []string{},
		}
	}
	return out, nil
}
