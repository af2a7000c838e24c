// Package search ranks notes against free-text queries. The lexical engine
// runs entirely in memory; the remote adapter wraps a delegated searcher.
package search

import (
	"sort"
	"strings"

	"github.com/starford/lumen/internal/models"
)

// Scoring weights and result cap of the lexical engine.
const (
	TitleWeight   = 2.0
	ContentWeight = 0.5
	TagWeight     = 1.0
	MaxResults    = 10
)

// Terms lower-cases query and splits it on whitespace.
func Terms(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// Search scores every note against query and returns at most MaxResults
// hits ordered by descending relevance. Equal scores keep collection order.
// Results point into notes; they do not copy them.
func Search(query string, notes []models.Note) []models.SearchResult {
	terms := Terms(query)
	if len(terms) == 0 {
		return []models.SearchResult{}
	}

	var out []models.SearchResult
	for i := range notes {
		score, matches := scoreNote(&notes[i], terms)
		if score == 0 {
			continue
		}
		out = append(out, models.SearchResult{
			Note:      &notes[i],
			Relevance: score,
			Matches:   matches,
		})
	}

	sort.SliceStable(out, func(a, b int) bool { return out[a].Relevance > out[b].Relevance })
	if len(out) > MaxResults {
		out = out[:MaxResults]
	}
	if out == nil {
		out = []models.SearchResult{}
	}
	return out
}

func scoreNote(n *models.Note, terms []string) (float64, []string) {
	title := strings.ToLower(n.Title)
	content := strings.ToLower(n.Content)
	tags := make([]string, len(n.Tags))
	for i, t := range n.Tags {
		tags[i] = strings.ToLower(t)
	}

	var score float64
	matches := make([]string, 0, len(terms))
	for _, term := range terms {
		hit := false
		if strings.Contains(title, term) {
			score += TitleWeight
			hit = true
		}
		if c := strings.Count(content, term); c > 0 {
			score += ContentWeight * float64(c)
			hit = true
		}
		for _, tag := range tags {
			if strings.Contains(tag, term) {
				score += TagWeight
				hit = true
				break
			}
		}
		if hit && !contains(matches, term) {
			matches = append(matches, term)
		}
	}
	return score, matches
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
