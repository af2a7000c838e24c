package search

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/lumen/internal/models"
)

func mk(title, content string, tags ...string) models.Note {
	return models.Note{ID: title, Title: title, Content: content, Tags: tags}
}

func TestSearch_EmptyQuery(t *testing.T) {
	notes := []models.Note{mk("a", "a")}
	for _, q := range []string{"", "   ", "\t\n"} {
		res := Search(q, notes)
		require.NotNil(t, res)
		assert.Empty(t, res, "query %q", q)
	}
}

func TestSearch_SingleMatchScenario(t *testing.T) {
	notes := []models.Note{
		mk("Diet Plan", "testosterona boost", "health"),
		mk("Unrelated", "gardening tips", "hobby"),
	}
	res := Search("testosterona", notes)

	require.Len(t, res, 1)
	assert.Same(t, &notes[0], res[0].Note)
	assert.Equal(t, []string{"testosterona"}, res[0].Matches)
	assert.InDelta(t, 0.5, res[0].Relevance, 1e-9)
}

func TestSearch_Weights(t *testing.T) {
	notes := []models.Note{
		mk("Go Tips", "go go GO", "golang"),
	}
	res := Search("GO", notes)
	require.Len(t, res, 1)
	// title 2 + content 3*0.5 + tag 1
	assert.InDelta(t, 4.5, res[0].Relevance, 1e-9)
}

func TestSearch_ContentCountIsNonOverlapping(t *testing.T) {
	res := Search("aa", []models.Note{mk("x", "aaaa")})
	require.Len(t, res, 1)
	assert.InDelta(t, 1.0, res[0].Relevance, 1e-9)
}

func TestSearch_TagCountsOnce(t *testing.T) {
	res := Search("dev", []models.Note{mk("x", "", "devops", "webdev", "Dev")})
	require.Len(t, res, 1)
	assert.InDelta(t, 1.0, res[0].Relevance, 1e-9)
}

func TestSearch_MatchesInQueryOrder(t *testing.T) {
	notes := []models.Note{mk("Alpha", "beta gamma")}
	res := Search("gamma missing alpha beta gamma", notes)
	require.Len(t, res, 1)
	assert.Equal(t, []string{"gamma", "alpha", "beta"}, res[0].Matches)
}

func TestSearch_RepeatedTermScoresEachOccurrence(t *testing.T) {
	once := Search("plan", []models.Note{mk("Plan", "")})
	twice := Search("plan plan", []models.Note{mk("Plan", "")})
	require.Len(t, once, 1)
	require.Len(t, twice, 1)
	assert.InDelta(t, 2*once[0].Relevance, twice[0].Relevance, 1e-9)
	assert.Equal(t, []string{"plan"}, twice[0].Matches)
}

func TestSearch_ZeroScoreExcluded(t *testing.T) {
	notes := []models.Note{
		mk("a", "nothing here", "x"),
		mk("b", "has needle", "y"),
		mk("c", "", "z"),
	}
	res := Search("needle", notes)
	require.Len(t, res, 1)
	assert.Equal(t, "b", res[0].Note.Title)
}

func TestSearch_Truncation(t *testing.T) {
	notes := make([]models.Note, 15)
	for i := range notes {
		notes[i] = mk(fmt.Sprintf("n%d", i), "some notes here")
	}
	res := Search("notes", notes)
	assert.Len(t, res, MaxResults)
}

func TestSearch_StableTieBreak(t *testing.T) {
	notes := []models.Note{
		mk("first", "term"),
		mk("second", "term term"),
		mk("third", "term"),
		mk("fourth", "term"),
	}
	res := Search("term", notes)
	require.Len(t, res, 4)
	got := make([]string, len(res))
	for i, r := range res {
		got[i] = r.Note.Title
	}
	assert.Equal(t, []string{"second", "first", "third", "fourth"}, got)
}

func TestSearch_RankingInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	words := []string{"go", "rust", "plan", "diet", "sleep", "notes", "gym"}
	pick := func(n int) string {
		parts := make([]string, n)
		for i := range parts {
			parts[i] = words[rng.Intn(len(words))]
		}
		return strings.Join(parts, " ")
	}

	for iter := 0; iter < 50; iter++ {
		notes := make([]models.Note, 30)
		for i := range notes {
			notes[i] = mk(pick(2), pick(20), words[rng.Intn(len(words))])
		}
		query := pick(1 + rng.Intn(3))
		res := Search(query, notes)

		assert.LessOrEqual(t, len(res), MaxResults)
		for i := 1; i < len(res); i++ {
			assert.GreaterOrEqual(t, res[i-1].Relevance, res[i].Relevance)
		}
		for _, r := range res {
			assert.Greater(t, r.Relevance, 0.0)
			assert.NotEmpty(t, r.Matches)
		}
	}
}
