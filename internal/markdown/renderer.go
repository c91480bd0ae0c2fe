package markdown

import (
	"bytes"
	"context"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"

	"github.com/goliatone/go-zoe/internal/logging"
	"github.com/goliatone/go-zoe/pkg/interfaces"
)

// Options configure a Renderer.
type Options struct {
	// Highlight enables chroma highlighting of code blocks.
	Highlight bool
	// LightStyle and DarkStyle name the chroma styles used by Stylesheet.
	LightStyle string
	DarkStyle  string
	// Safe drops raw HTML from the output.
	Safe      bool
	HardWraps bool
	Logger    interfaces.Logger
}

// Renderer converts Markdown into HTML. A single instance is safe for
// concurrent use.
type Renderer struct {
	engine goldmark.Markdown
	code   *codeBlockRenderer
	logger interfaces.Logger
}

var (
	_ interfaces.MarkdownRenderer   = (*Renderer)(nil)
	_ interfaces.StylesheetProvider = (*Renderer)(nil)
)

// NewRenderer builds a goldmark engine with GFM, footnotes, definition lists
// and automatic heading ids.
func NewRenderer(opts Options) *Renderer {
	logger := logging.Fallback(opts.Logger)
	code := newCodeBlockRenderer(opts.Highlight, opts.LightStyle, opts.DarkStyle, logger)

	rendererOptions := []renderer.Option{
		renderer.WithNodeRenderers(util.Prioritized(code, 100)),
	}
	if !opts.Safe {
		rendererOptions = append(rendererOptions, html.WithUnsafe())
	}
	if opts.HardWraps {
		rendererOptions = append(rendererOptions, html.WithHardWraps())
	}

	engine := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			extension.DefinitionList,
		),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(rendererOptions...),
	)

	return &Renderer{
		engine: engine,
		code:   code,
		logger: logger,
	}
}

// Render converts source into HTML.
func (r *Renderer) Render(ctx context.Context, source []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := r.engine.Convert(source, &buf); err != nil {
		return nil, fmt.Errorf("markdown render: %w", err)
	}
	return buf.Bytes(), nil
}

// Stylesheet returns the CSS for highlighted code blocks.
func (r *Renderer) Stylesheet() ([]byte, error) {
	return r.code.stylesheet()
}
