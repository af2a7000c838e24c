package mcpserver

// NoteFormatURI is the resource URI of NoteFormat.
const NoteFormatURI = "lumen://note-format"

// NoteFormat describes how Lumen turns a Markdown file into a note, so
// LLM consumers know what the search and stats tools see.
const NoteFormat = `# Lumen Note Format

Lumen reads plain Markdown files and derives every note field from them.
Notes are read-only here: edit them in the drive or vault they come from.

## Fields

- **id**: the origin's file id; vault files get a stable id derived from
  their path.
- **title**: the text of the first line starting with ` + "`# `" + ` (a level-one
  heading). Without one, the file name minus ` + "`.md`" + `; never empty.
- **tags**: every ` + "`#word`" + ` in the body (letters, digits, underscore). Case is
  kept as written and duplicates are dropped. A heading ` + "`# Title`" + ` is not a
  tag because of the space.
- **wordCount**: whitespace-separated tokens of the whole content.
- **created / modified**: taken from the origin's timestamps.
- **frontmatter**: a leading YAML block is exposed as-is but does not change
  the title, tags or word count.

## Search

` + "`search_notes`" + ` is lexical. The query is lower-cased and split on
whitespace; each term scores per note:

| Field   | Score                                   |
|---------|-----------------------------------------|
| title   | +2 if the title contains the term       |
| content | +0.5 per non-overlapping occurrence     |
| tags    | +1 if any tag contains the term         |

Notes scoring zero are dropped; at most 10 results are returned, best first.

## Example

` + "```" + `markdown
# Sourdough starter

Feed daily with equal parts flour and water. #baking #bread
` + "```" + `

Title "Sourdough starter", tags [baking, bread], 13 words.
`
