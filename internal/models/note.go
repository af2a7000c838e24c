// Package models defines the domain types for Lumen.
package models

import "time"

// Note is one parsed markdown document. It is never mutated after parsing.
type Note struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Content     string         `json:"content"`
	Tags        []string       `json:"tags"`
	Created     time.Time      `json:"created"`
	Modified    time.Time      `json:"modified"`
	Path        string         `json:"path"`
	WordCount   int            `json:"wordCount"`
	Frontmatter map[string]any `json:"frontmatter,omitempty"`
	SourceURL   string         `json:"sourceUrl,omitempty"`
}

// SearchResult is one ranked hit. Relevance only orders results within a
// single query.
type SearchResult struct {
	Note      *Note    `json:"note"`
	Relevance float64  `json:"relevance"`
	Matches   []string `json:"matches"`
}

// KnowledgeStats summarises the whole note collection.
type KnowledgeStats struct {
	TotalNotes  int        `json:"totalNotes"`
	TotalWords  int        `json:"totalWords"`
	UniqueTags  int        `json:"uniqueTags"`
	LastUpdated *time.Time `json:"lastUpdated"`
}
