// Package noteservice answers read queries over the current note
// collection: lookup, library listing, lexical and delegated search,
// stats and analytics.
package noteservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/starford/lumen/internal/apperr"
	"github.com/starford/lumen/internal/checksum"
	"github.com/starford/lumen/internal/models"
	"github.com/starford/lumen/internal/repository"
	"github.com/starford/lumen/internal/search"
	"github.com/starford/lumen/internal/stats"
)

// NoteDetail is the full representation of a note.
type NoteDetail struct {
	models.Note
	Checksum string `json:"checksum"`
}

// NoteListItem is a lightweight item in a list response.
type NoteListItem struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Path      string    `json:"path"`
	Tags      []string  `json:"tags"`
	WordCount int       `json:"wordCount"`
	Created   time.Time `json:"created"`
	Modified  time.Time `json:"modified"`
}

// ListParams selects a page of the library view.
type ListParams struct {
	Text   string
	Tag    string
	Sort   string
	Limit  int
	Offset int
}

// StatsView is KnowledgeStats plus the guarded average.
type StatsView struct {
	models.KnowledgeStats
	AverageWords *float64 `json:"averageWords"`
}

// Analytics is the dashboard aggregate.
type Analytics struct {
	TopTags []stats.TagCount    `json:"topTags"`
	Monthly []stats.MonthBucket `json:"monthly"`
	Longest *NoteListItem       `json:"longest"`
}

// Service coordinates the repository and the search backends.
type Service struct {
	repo   *repository.Repository
	remote *search.Remote
}

// NewService creates a note service. remote may be nil when no backend
// is configured.
func NewService(repo *repository.Repository, remote *search.Remote) *Service {
	return &Service{repo: repo, remote: remote}
}

// Repository exposes the underlying repository.
func (s *Service) Repository() *repository.Repository {
	return s.repo
}

// GetNote looks a note up by id, then by path.
func (s *Service) GetNote(_ context.Context, key string) (*NoteDetail, error) {
	n, err := s.repo.Get(key)
	if errors.Is(err, apperr.ErrNotFound) {
		n, err = s.repo.ByPath(key)
	}
	if err != nil {
		return nil, err
	}
	return &NoteDetail{Note: n, Checksum: checksum.SumString(n.Content)}, nil
}

// ListNotes filters, sorts and pages the collection. total counts all
// matches before paging.
func (s *Service) ListNotes(_ context.Context, p ListParams) ([]NoteListItem, int, error) {
	filtered := search.Filter(s.repo.All(), search.LibraryQuery{Text: p.Text, Tag: p.Tag, Sort: p.Sort})
	total := len(filtered)

	start := min(max(p.Offset, 0), total)
	end := total
	if p.Limit > 0 {
		end = min(start+p.Limit, total)
	}

	items := make([]NoteListItem, 0, end-start)
	for _, n := range filtered[start:end] {
		items = append(items, listItem(n))
	}
	return items, total, nil
}

// Tags returns every distinct tag, sorted.
func (s *Service) Tags(_ context.Context) []string {
	return search.AllTags(s.repo.All())
}

// Search runs the lexical engine over the current snapshot.
func (s *Service) Search(_ context.Context, query string) []models.SearchResult {
	return search.Search(query, s.repo.All())
}

// SearchRemote delegates to the backend. It fails with apperr.ErrUnavailable
// when no backend is configured.
func (s *Service) SearchRemote(ctx context.Context, query string, limit int) ([]models.SearchResult, error) {
	if s.remote == nil {
		return nil, fmt.Errorf("noteservice: remote search: %w", apperr.ErrUnavailable)
	}
	return s.remote.Search(ctx, query, limit)
}

// Stats returns the aggregate for the current snapshot.
func (s *Service) Stats(_ context.Context) StatsView {
	st := s.repo.Stats()
	v := StatsView{KnowledgeStats: st}
	if avg, ok := stats.AverageWords(st); ok {
		v.AverageWords = &avg
	}
	return v
}

// Analytics computes the dashboard view. Non-positive topN or months use
// the stats defaults.
func (s *Service) Analytics(_ context.Context, topN, months int) Analytics {
	notes := s.repo.All()
	a := Analytics{
		TopTags: stats.TopTags(notes, topN),
		Monthly: stats.Monthly(notes, months),
	}
	if n, ok := stats.Longest(notes); ok {
		item := listItem(n)
		a.Longest = &item
	}
	return a
}

func listItem(n models.Note) NoteListItem {
	return NoteListItem{
		ID:        n.ID,
		Title:     n.Title,
		Path:      n.Path,
		Tags:      nonNilSlice(n.Tags),
		WordCount: n.WordCount,
		Created:   n.Created,
		Modified:  n.Modified,
	}
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
