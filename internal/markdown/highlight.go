package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"

	"github.com/goliatone/go-zoe/pkg/interfaces"
)

const plaintext = "plaintext"

// SupportedLanguages lists the fence languages that are highlighted. Any
// other language is rendered as plaintext.
var SupportedLanguages = []string{
	"javascript", "typescript", "jsx", "tsx", "json", "yaml", "markdown",
	"bash", "shell", "css", "html", "python", "go", "rust", "sql", "diff",
	plaintext,
}

var supportedLanguages = func() map[string]struct{} {
	out := make(map[string]struct{}, len(SupportedLanguages))
	for _, lang := range SupportedLanguages {
		out[lang] = struct{}{}
	}
	return out
}()

// NormalizeLanguage maps a fence info string to a supported language.
func NormalizeLanguage(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if _, ok := supportedLanguages[lang]; ok {
		return lang
	}
	return plaintext
}

type codeBlockRenderer struct {
	highlight  bool
	formatter  *chromahtml.Formatter
	lightStyle *chroma.Style
	darkStyle  *chroma.Style
	logger     interfaces.Logger
}

func newCodeBlockRenderer(highlight bool, light, dark string, logger interfaces.Logger) *codeBlockRenderer {
	return &codeBlockRenderer{
		highlight:  highlight,
		formatter:  chromahtml.New(chromahtml.WithClasses(true)),
		lightStyle: styles.Get(light),
		darkStyle:  styles.Get(dark),
		logger:     logger,
	}
}

func (r *codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFenced)
	reg.Register(ast.KindCodeBlock, r.renderIndented)
}

func (r *codeBlockRenderer) renderFenced(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	block := node.(*ast.FencedCodeBlock)
	lang := ""
	if block.Info != nil {
		lang = string(block.Language(source))
	}
	r.write(w, lang, blockText(source, node))
	return ast.WalkSkipChildren, nil
}

func (r *codeBlockRenderer) renderIndented(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	r.write(w, "", blockText(source, node))
	return ast.WalkSkipChildren, nil
}

func (r *codeBlockRenderer) write(w util.BufWriter, fence string, code string) {
	lang := NormalizeLanguage(fence)
	if !r.highlight {
		writePlain(w, fence, code)
		return
	}

	var buf bytes.Buffer
	if err := r.format(&buf, lang, code); err != nil {
		r.logger.Warn("markdown.highlight.failed", "language", lang, "error", err)
		writePlain(w, "", code)
		return
	}
	fmt.Fprintf(w, `<div class="highlight" data-language="%s">`, lang)
	_, _ = w.Write(buf.Bytes())
	_, _ = w.WriteString("</div>\n")
}

func (r *codeBlockRenderer) format(buf *bytes.Buffer, lang, code string) error {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	iterator, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		return err
	}
	return r.formatter.Format(buf, r.lightStyle, iterator)
}

func (r *codeBlockRenderer) stylesheet() ([]byte, error) {
	var light, dark bytes.Buffer
	if err := r.formatter.WriteCSS(&light, r.lightStyle); err != nil {
		return nil, fmt.Errorf("markdown stylesheet: %w", err)
	}
	if err := r.formatter.WriteCSS(&dark, r.darkStyle); err != nil {
		return nil, fmt.Errorf("markdown stylesheet: %w", err)
	}

	var out bytes.Buffer
	out.Write(light.Bytes())
	out.WriteString("\n@media (prefers-color-scheme: dark) {\n")
	out.WriteString(scopeCSS(dark.String(), ":root:not(.light)"))
	out.WriteString("}\n")
	out.WriteString(scopeCSS(dark.String(), ".dark"))
	return out.Bytes(), nil
}

// scopeCSS prefixes the chroma selectors with scope.
func scopeCSS(css, scope string) string {
	replacer := strings.NewReplacer(
		".chroma", scope+" .chroma",
		".bg ", scope+" .bg ",
	)
	return replacer.Replace(css)
}

func writePlain(w util.BufWriter, lang, code string) {
	_, _ = w.WriteString("<pre><code")
	if lang = strings.TrimSpace(lang); lang != "" {
		_, _ = w.WriteString(` class="language-`)
		_, _ = w.Write(util.EscapeHTML([]byte(lang)))
		_, _ = w.WriteString(`"`)
	}
	_, _ = w.WriteString(">")
	_, _ = w.Write(util.EscapeHTML([]byte(code)))
	_, _ = w.WriteString("</code></pre>\n")
}

func blockText(source []byte, node ast.Node) string {
	var b strings.Builder
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		b.Write(segment.Value(source))
	}
	return b.String()
}
