package mcpserver

// NoteFormatContract describes the on-disk note format for LLM consumers.
const NoteFormatContract = `# Eleph Note Format Contract

Every note is one UTF-8 file named ` + "`<id>.md`" + ` in the library directory.

## Structure

` + "```" + `markdown
---
id: 0b6f4f8e-1c1d-4a4b-9a57-1f1f6a2b9c3d
title: Human-readable title
lastModified: 2025-01-15T09:30:00Z
tags: ["tag-one", "tag-two"]
---

# Human-readable title

Body text in Markdown.
` + "```" + `

## Rules

1. The front-matter is a block of ` + "`key: value`" + ` lines between two ` + "`---`" + `
   lines. It is not YAML: one line per key, values are taken verbatim.
2. ` + "`id`" + ` never changes once assigned. Notes created through Eleph get a UUID.
3. ` + "`lastModified`" + ` is RFC 3339 in UTC. Eleph rewrites it on every save.
4. ` + "`tags`" + ` is a bracketed, comma separated list of quoted strings. Use ` + "`tags: []`" + `
   for none. Tags must not contain commas, brackets or quotes.
5. Titles are single-line. The first ` + "`#`" + ` heading of the body is the displayed
   title; the ` + "`title`" + ` key is the fallback. A note still titled
   "Untitled Document" takes its first heading as title on save.
6. A blank line separates the front-matter from the body.
7. A file without front-matter is still a note: its id and title are the file name.

## Rendering

The preview is the first paragraph with ` + "`#`" + `, ` + "`*`" + ` and ` + "`_`" + ` removed. HTML export is
line based: headings, ` + "`-`" + `/` + "`*`" + ` list items, ` + "`>`" + ` quotes, ` + "`**bold**`" + `, ` + "`*italic*`" + `,
inline code and ` + "`[links](url)`" + `. One style per line; nested lists and tables are
not rendered.

## Tools

- ` + "`create_note`" + ` takes the Markdown body only; the server writes the front-matter.
- ` + "`read_note`" + ` returns the file as stored.
- ` + "`write_note`" + ` accepts that stored form back, edited; ` + "`lastModified`" + ` is reset on write.
- ` + "`render_note`" + ` returns HTML or the title and preview.
`
