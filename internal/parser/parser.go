// Package parser turns raw markdown documents into notes: title heuristics,
// inline #tags, word count and optional YAML frontmatter.
package parser

import (
	"bytes"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/starford/lumen/internal/models"
)

const untitled = "Untitled"

var (
	tagRe = regexp.MustCompile(`#(\w+)`)

	// noteNamespace seeds identifiers for documents without a source id.
	noteNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("lumen:note"))
)

// Document is one raw file as delivered by an origin system.
type Document struct {
	ID           string
	Name         string
	Content      string
	ModifiedTime time.Time
	CreatedTime  time.Time
	SourceURL    string
}

// Parse converts doc into a note using the current time for missing
// timestamps.
func Parse(doc Document) models.Note {
	return ParseAt(doc, time.Now())
}

// ParseAt converts doc into a note; now fills in missing timestamps.
func ParseAt(doc Document, now time.Time) models.Note {
	fm, body := splitFrontmatter(doc.Content)

	title := deriveTitle(doc.Name, body)
	notePath := doc.Name
	if notePath == "" {
		notePath = title + ".md"
	}

	id := doc.ID
	if id == "" {
		id = StableID(notePath)
	}

	modified := doc.ModifiedTime
	if modified.IsZero() {
		modified = now
	}
	created := doc.CreatedTime
	if created.IsZero() {
		created = modified
	}

	return models.Note{
		ID:          id,
		Title:       title,
		Content:     doc.Content,
		Tags:        ExtractTags(doc.Content),
		Created:     created,
		Modified:    modified,
		Path:        notePath,
		WordCount:   WordCount(doc.Content),
		Frontmatter: fm,
		SourceURL:   doc.SourceURL,
	}
}

// StableID derives a deterministic identifier from a note path, so repeated
// parses of the same untracked file keep their identity.
func StableID(notePath string) string {
	return uuid.NewSHA1(noteNamespace, []byte(notePath)).String()
}

// WordCount counts whitespace-delimited tokens.
func WordCount(content string) int {
	return len(strings.Fields(content))
}

// ExtractTags returns every #word token with the hash stripped, case kept,
// deduplicated in extraction order.
func ExtractTags(content string) []string {
	matches := tagRe.FindAllStringSubmatch(content, -1)
	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		t := m[1]
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// TitleFromName strips directories and the markdown extension.
func TitleFromName(name string) string {
	base := path.Base(strings.ReplaceAll(name, `\`, "/"))
	if ext := path.Ext(base); strings.EqualFold(ext, ".md") {
		base = base[:len(base)-len(ext)]
	}
	base = strings.TrimSpace(base)
	if base == "" || base == "." || base == "/" {
		return ""
	}
	return base
}

// deriveTitle prefers the first level-1 heading anywhere in body, then the
// file name, then a placeholder.
func deriveTitle(name, body string) string {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimRight(line, "\r")
		if !strings.HasPrefix(line, "# ") {
			continue
		}
		if h := strings.TrimSpace(line[2:]); h != "" {
			return h
		}
	}
	if t := TitleFromName(name); t != "" {
		return t
	}
	return untitled
}

// splitFrontmatter separates a leading YAML block from the body. Content
// without a well-formed block is returned whole with a nil map.
func splitFrontmatter(content string) (map[string]any, string) {
	const delim = "---"
	data := []byte(content)
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, content
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, content
	}

	var fm map[string]any
	if err := yaml.Unmarshal(rest[:idx], &fm); err != nil || len(fm) == 0 {
		return nil, content
	}

	body := strings.TrimLeft(string(rest[idx+1+len(delim):]), "\n\r")
	return stringKeys(fm).(map[string]any), body
}

// stringKeys rewrites nested map[any]any values, which yaml.v3 produces
// for non-string keys, into map[string]any so notes stay JSON-encodable.
func stringKeys(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, inner := range t {
			t[k] = stringKeys(inner)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, inner := range t {
			out[fmt.Sprint(k)] = stringKeys(inner)
		}
		return out
	case []any:
		for i, inner := range t {
			t[i] = stringKeys(inner)
		}
		return t
	default:
		return v
	}
}
