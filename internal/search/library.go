package search

import (
	"sort"
	"strings"

	"github.com/starford/lumen/internal/models"
)

// Library sort orders.
const (
	SortModified  = "modified"
	SortCreated   = "created"
	SortTitle     = "title"
	SortWordCount = "wordCount"
)

// LibraryQuery filters and orders the library listing.
type LibraryQuery struct {
	Text string // substring over title, content and tags
	Tag  string // exact tag
	Sort string
}

// Filter returns a new slice of the notes matching q, ordered by q.Sort.
// Unknown sort keys fall back to SortModified. The input is not reordered.
func Filter(notes []models.Note, q LibraryQuery) []models.Note {
	text := strings.ToLower(strings.TrimSpace(q.Text))

	out := make([]models.Note, 0, len(notes))
	for _, n := range notes {
		if text != "" && !containsText(n, text) {
			continue
		}
		if q.Tag != "" && !hasTag(n, q.Tag) {
			continue
		}
		out = append(out, n)
	}

	var less func(a, b *models.Note) bool
	switch q.Sort {
	case SortTitle:
		less = func(a, b *models.Note) bool { return strings.ToLower(a.Title) < strings.ToLower(b.Title) }
	case SortCreated:
		less = func(a, b *models.Note) bool { return a.Created.After(b.Created) }
	case SortWordCount:
		less = func(a, b *models.Note) bool { return a.WordCount > b.WordCount }
	default:
		less = func(a, b *models.Note) bool { return a.Modified.After(b.Modified) }
	}
	sort.SliceStable(out, func(i, j int) bool { return less(&out[i], &out[j]) })
	return out
}

// AllTags returns the sorted set of tags across notes.
func AllTags(notes []models.Note) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, n := range notes {
		for _, t := range n.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

func containsText(n models.Note, text string) bool {
	if strings.Contains(strings.ToLower(n.Title), text) || strings.Contains(strings.ToLower(n.Content), text) {
		return true
	}
	for _, t := range n.Tags {
		if strings.Contains(strings.ToLower(t), text) {
			return true
		}
	}
	return false
}

func hasTag(n models.Note, tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
