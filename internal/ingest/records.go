// Package ingest defines the payload shapes delivered by origin systems and
// maps them onto parser documents and notes.
package ingest

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/starford/lumen/internal/models"
	"github.com/starford/lumen/internal/parser"
)

// Timestamp accepts the mixed formats the backend emits (RFC3339, naive ISO,
// "2006-01-02 15:04:05", epoch millis). Unparseable values decode to zero.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == `""` {
		t.Time = time.Time{}
		return nil
	}
	raw = strings.Trim(raw, `"`)
	parsed, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		t.Time = time.Time{}
		return nil
	}
	t.Time = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.UTC().Format(time.RFC3339))
}

// DriveFile is one markdown file from the drive listing.
type DriveFile struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Title        string    `json:"title,omitempty"`
	Content      *string   `json:"content"`
	ModifiedTime Timestamp `json:"modifiedTime"`
	CreatedTime  Timestamp `json:"createdTime"`
	SourceURL    string    `json:"sourceUrl,omitempty"`
}

// Document maps the file onto the parser input. Missing content becomes an
// empty document rather than an error.
func (f DriveFile) Document() parser.Document {
	name := f.Name
	if name == "" && f.Title != "" {
		name = f.Title + ".md"
	}
	var content string
	if f.Content != nil {
		content = *f.Content
	}
	return parser.Document{
		ID:           f.ID,
		Name:         name,
		Content:      content,
		ModifiedTime: f.ModifiedTime.Time,
		CreatedTime:  f.CreatedTime.Time,
		SourceURL:    f.SourceURL,
	}
}

// DriveListing is the envelope returned by the drive sync endpoint.
type DriveListing struct {
	Count int         `json:"count"`
	Notes []DriveFile `json:"notes"`
}

// TagList decodes either ["a","b"] or [{"name":"a"},{"name":"b"}]. A bare
// string is a single tag; null and items of any other shape are skipped.
type TagList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *TagList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*l = TagList{}
		if single != "" {
			*l = TagList{single}
		}
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		*l = TagList{}
		return nil
	}
	out := make(TagList, 0, len(raw))
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			if s != "" {
				out = append(out, s)
			}
			continue
		}
		var named struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(item, &named); err == nil && named.Name != "" {
			out = append(out, named.Name)
		}
	}
	*l = out
	return nil
}

// StoredNote is a note as persisted by the backend database.
type StoredNote struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Content           *string   `json:"content"`
	Tags              TagList   `json:"tags"`
	CreatedAt         Timestamp `json:"created_at"`
	ModifiedAt        Timestamp `json:"modified_at"`
	DriveModifiedTime Timestamp `json:"drive_modified_time"`
	Path              string    `json:"path"`
	SourceURL         string    `json:"source_url,omitempty"`
}

// Note maps a stored record onto a note. The stored title and tags are kept;
// the word count is always recomputed from content.
func (s StoredNote) Note(now time.Time) models.Note {
	var content string
	if s.Content != nil {
		content = *s.Content
	}

	title := strings.TrimSpace(s.Title)
	if title == "" {
		title = parser.TitleFromName(s.Path)
	}
	if title == "" {
		title = "Untitled"
	}

	notePath := s.Path
	if notePath == "" {
		notePath = title + ".md"
	}

	id := s.ID
	if id == "" {
		id = parser.StableID(notePath)
	}

	modified := s.DriveModifiedTime.Time
	if modified.IsZero() {
		modified = s.ModifiedAt.Time
	}
	if modified.IsZero() {
		modified = now
	}
	created := s.CreatedAt.Time
	if created.IsZero() {
		created = modified
	}

	tags := make([]string, 0, len(s.Tags))
	tags = append(tags, s.Tags...)

	return models.Note{
		ID:        id,
		Title:     title,
		Content:   content,
		Tags:      tags,
		Created:   created,
		Modified:  modified,
		Path:      notePath,
		WordCount: parser.WordCount(content),
		SourceURL: s.SourceURL,
	}
}

// ParseAll parses a batch of drive files in order.
func ParseAll(files []DriveFile, now time.Time) []models.Note {
	out := make([]models.Note, 0, len(files))
	for _, f := range files {
		out = append(out, parser.ParseAt(f.Document(), now))
	}
	return out
}

// NotesFromStored maps a batch of stored notes in order.
func NotesFromStored(records []StoredNote, now time.Time) []models.Note {
	out := make([]models.Note, 0, len(records))
	for _, r := range records {
		out = append(out, r.Note(now))
	}
	return out
}
