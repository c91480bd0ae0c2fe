// Package markdown parses frontmatter and renders Markdown (and MDX treated as
// Markdown) into HTML with class based syntax highlighting.
package markdown
