package noteservice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/lumen/internal/apperr"
	"github.com/starford/lumen/internal/checksum"
	"github.com/starford/lumen/internal/models"
	"github.com/starford/lumen/internal/repository"
	"github.com/starford/lumen/internal/search"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func seeded(t *testing.T, remote *search.Remote) *Service {
	t.Helper()
	repo := repository.New()
	repo.Replace([]models.Note{
		{ID: "a", Title: "Go channels", Content: "channels and goroutines", Tags: []string{"go"}, Path: "go/channels.md", WordCount: 3, Created: day(1), Modified: day(3)},
		{ID: "b", Title: "Sourdough", Content: "flour water salt time", Tags: []string{"bread"}, Path: "food/sourdough.md", WordCount: 4, Created: day(2), Modified: day(2)},
		{ID: "c", Title: "Go testing", Content: "table tests", Tags: []string{"go", "testing"}, Path: "go/testing.md", WordCount: 2, Created: day(3), Modified: day(1)},
	})
	return NewService(repo, remote)
}

func TestGetNote(t *testing.T) {
	s := seeded(t, nil)
	ctx := context.Background()

	d, err := s.GetNote(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "Sourdough", d.Title)
	assert.Equal(t, checksum.SumString("flour water salt time"), d.Checksum)

	d, err = s.GetNote(ctx, "go/testing.md")
	require.NoError(t, err)
	assert.Equal(t, "c", d.ID)

	_, err = s.GetNote(ctx, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestListNotes_Paging(t *testing.T) {
	s := seeded(t, nil)
	ctx := context.Background()

	items, total, err := s.ListNotes(ctx, ListParams{})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, items, 3)
	assert.Equal(t, "a", items[0].ID) // newest modified first

	items, total, err = s.ListNotes(ctx, ListParams{Tag: "go", Sort: search.SortTitle, Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, items, 1)
	assert.Equal(t, "c", items[0].ID)

	items, total, err = s.ListNotes(ctx, ListParams{Offset: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Empty(t, items)
	assert.NotNil(t, items)
}

func TestSearchAndTags(t *testing.T) {
	s := seeded(t, nil)
	ctx := context.Background()

	res := s.Search(ctx, "go")
	require.Len(t, res, 2)
	assert.Equal(t, []string{"go"}, res[0].Matches)

	assert.Equal(t, []string{"bread", "go", "testing"}, s.Tags(ctx))
}

func TestSearchRemote_Unconfigured(t *testing.T) {
	s := seeded(t, nil)
	_, err := s.SearchRemote(context.Background(), "q", 5)
	assert.ErrorIs(t, err, apperr.ErrUnavailable)
}

type failingDelegate struct{}

func (failingDelegate) KnowledgeSearch(context.Context, string, int) ([]models.Note, error) {
	return nil, errors.New("backend down")
}

func TestSearchRemote_ErrorPropagates(t *testing.T) {
	s := seeded(t, search.NewRemote(failingDelegate{}))
	res, err := s.SearchRemote(context.Background(), "q", 5)
	assert.Error(t, err)
	assert.Nil(t, res)
}

func TestStats(t *testing.T) {
	s := seeded(t, nil)
	v := s.Stats(context.Background())
	assert.Equal(t, 3, v.TotalNotes)
	assert.Equal(t, 9, v.TotalWords)
	assert.Equal(t, 3, v.UniqueTags)
	require.NotNil(t, v.AverageWords)
	assert.InDelta(t, 3.0, *v.AverageWords, 1e-9)

	empty := NewService(repository.New(), nil).Stats(context.Background())
	assert.Nil(t, empty.AverageWords)
	assert.Zero(t, empty.TotalNotes)
}

func TestAnalytics(t *testing.T) {
	s := seeded(t, nil)
	a := s.Analytics(context.Background(), 0, 0)

	require.NotEmpty(t, a.TopTags)
	assert.Equal(t, "go", a.TopTags[0].Tag)
	assert.Equal(t, 2, a.TopTags[0].Count)

	require.Len(t, a.Monthly, 1)
	assert.Equal(t, "2024-01", a.Monthly[0].Month)
	assert.Equal(t, 9, a.Monthly[0].Words)

	require.NotNil(t, a.Longest)
	assert.Equal(t, "b", a.Longest.ID)

	none := NewService(repository.New(), nil).Analytics(context.Background(), 5, 3)
	assert.Nil(t, none.Longest)
	assert.Empty(t, none.TopTags)
}
