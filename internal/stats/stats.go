// Package stats derives summary statistics and analytics from a note
// collection. Every function is a pure pass over its input.
package stats

import (
	"sort"
	"time"

	"github.com/starford/lumen/internal/models"
)

// Defaults used by the analytics view.
const (
	DefaultTopTags = 10
	DefaultMonths  = 6
)

// Aggregate computes KnowledgeStats in a single pass.
func Aggregate(notes []models.Note, now time.Time) models.KnowledgeStats {
	tags := make(map[string]struct{})
	words := 0
	for i := range notes {
		words += notes[i].WordCount
		for _, t := range notes[i].Tags {
			tags[t] = struct{}{}
		}
	}
	updated := now
	return models.KnowledgeStats{
		TotalNotes:  len(notes),
		TotalWords:  words,
		UniqueTags:  len(tags),
		LastUpdated: &updated,
	}
}

// AverageWords returns the mean words per note. ok is false when there are
// no notes.
func AverageWords(s models.KnowledgeStats) (avg float64, ok bool) {
	if s.TotalNotes <= 0 {
		return 0, false
	}
	return float64(s.TotalWords) / float64(s.TotalNotes), true
}

// TagCount is a tag and the number of notes carrying it.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// TopTags ranks tags by note count. Ties keep first-seen order.
func TopTags(notes []models.Note, n int) []TagCount {
	if n <= 0 {
		n = DefaultTopTags
	}
	index := make(map[string]int)
	var out []TagCount
	for i := range notes {
		for _, t := range notes[i].Tags {
			if j, ok := index[t]; ok {
				out[j].Count++
				continue
			}
			index[t] = len(out)
			out = append(out, TagCount{Tag: t, Count: 1})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > n {
		out = out[:n]
	}
	if out == nil {
		out = []TagCount{}
	}
	return out
}

// MonthBucket aggregates notes created in one calendar month.
type MonthBucket struct {
	Month string `json:"month"` // YYYY-MM
	Notes int    `json:"notes"`
	Words int    `json:"words"`
}

// Monthly buckets notes by creation month (UTC), ascending, keeping the last
// months buckets.
func Monthly(notes []models.Note, months int) []MonthBucket {
	if months <= 0 {
		months = DefaultMonths
	}
	buckets := make(map[string]*MonthBucket)
	for i := range notes {
		key := notes[i].Created.UTC().Format("2006-01")
		b, ok := buckets[key]
		if !ok {
			b = &MonthBucket{Month: key}
			buckets[key] = b
		}
		b.Notes++
		b.Words += notes[i].WordCount
	}

	out := make([]MonthBucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	if len(out) > months {
		out = out[len(out)-months:]
	}
	return out
}

// Longest returns the note with the highest word count; the first one wins
// on ties.
func Longest(notes []models.Note) (models.Note, bool) {
	if len(notes) == 0 {
		return models.Note{}, false
	}
	best := 0
	for i := 1; i < len(notes); i++ {
		if notes[i].WordCount > notes[best].WordCount {
			best = i
		}
	}
	return notes[best], true
}
