// Package content discovers Markdown posts, pages, projects and custom
// collections across the configured content directories and exposes them as
// an in-memory Library.
package content
