package interfaces

import "context"

// MarkdownRenderer converts Markdown source into HTML.
type MarkdownRenderer interface {
	Render(ctx context.Context, source []byte) ([]byte, error)
}

// StylesheetProvider is implemented by renderers that need companion CSS,
// such as syntax highlighting themes.
type StylesheetProvider interface {
	Stylesheet() ([]byte, error)
}
