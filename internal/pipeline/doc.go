// Package pipeline turns Markdown region templates into self-contained HTML
// documents that a headless browser can rasterize.
//
// Stages:
//   - Markdown normalization (line endings, blank lines)
//   - Markdown to HTML conversion via Goldmark
//   - HTML sanitization via bluemonday
//   - Wrapping into a document with an identified region element and CSS
package pipeline
