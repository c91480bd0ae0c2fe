// Package themes holds the built-in color palettes and renders them as CSS
// custom properties.
package themes

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	gotheme "github.com/goliatone/go-theme"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-zoe/internal/logging"
	"github.com/goliatone/go-zoe/pkg/interfaces"
)

// DefaultName is used when a site names no theme or an unknown one.
const DefaultName = "default"

const (
	manifestVersion = "1.0.0"
	defaultRadius   = "0.5rem"
)

//go:embed builtin.yaml
var builtinYAML []byte

// Colors are the palette tokens of one color scheme.
type Colors struct {
	Background          string `yaml:"background"`
	Foreground          string `yaml:"foreground"`
	Card                string `yaml:"card"`
	CardForeground      string `yaml:"cardForeground"`
	Popover             string `yaml:"popover"`
	PopoverForeground   string `yaml:"popoverForeground"`
	Primary             string `yaml:"primary"`
	PrimaryForeground   string `yaml:"primaryForeground"`
	Secondary           string `yaml:"secondary"`
	SecondaryForeground string `yaml:"secondaryForeground"`
	Muted               string `yaml:"muted"`
	MutedForeground     string `yaml:"mutedForeground"`
	Accent              string `yaml:"accent"`
	AccentForeground    string `yaml:"accentForeground"`
	Destructive         string `yaml:"destructive"`
	Border              string `yaml:"border"`
	Input               string `yaml:"input"`
	Ring                string `yaml:"ring"`
}

// Variables lists the palette as CSS custom properties in a stable order.
func (c Colors) Variables() [][2]string {
	return [][2]string{
		{"--background", c.Background},
		{"--foreground", c.Foreground},
		{"--card", c.Card},
		{"--card-foreground", c.CardForeground},
		{"--popover", c.Popover},
		{"--popover-foreground", c.PopoverForeground},
		{"--primary", c.Primary},
		{"--primary-foreground", c.PrimaryForeground},
		{"--secondary", c.Secondary},
		{"--secondary-foreground", c.SecondaryForeground},
		{"--muted", c.Muted},
		{"--muted-foreground", c.MutedForeground},
		{"--accent", c.Accent},
		{"--accent-foreground", c.AccentForeground},
		{"--destructive", c.Destructive},
		{"--border", c.Border},
		{"--input", c.Input},
		{"--ring", c.Ring},
	}
}

// Theme is a named pair of light and dark palettes.
type Theme struct {
	Name        string `yaml:"name"`
	Label       string `yaml:"label"`
	Description string `yaml:"description"`
	Radius      string `yaml:"radius"`
	FontSans    string `yaml:"fontSans"`
	FontMono    string `yaml:"fontMono"`
	Light       Colors `yaml:"light"`
	Dark        Colors `yaml:"dark"`
}

// CSS renders the theme as custom properties. Light values apply to :root,
// dark values apply under .dark and under a prefers-color-scheme query that
// an explicit .light class opts out of. A non-empty primary replaces the
// primary color of both schemes.
func (t *Theme) CSS(primary string) string {
	light, dark := t.Light, t.Dark
	if primary = strings.TrimSpace(primary); primary != "" {
		light.Primary = primary
		dark.Primary = primary
	}

	var b strings.Builder
	b.WriteString(":root {\n")
	writeVars(&b, "  ", light)
	t.writeShared(&b, "  ")
	b.WriteString("}\n\n.dark {\n")
	writeVars(&b, "  ", dark)
	b.WriteString("}\n\n@media (prefers-color-scheme: dark) {\n  :root:not(.light) {\n")
	writeVars(&b, "    ", dark)
	b.WriteString("  }\n}\n")
	return b.String()
}

func (t *Theme) writeShared(b *strings.Builder, indent string) {
	radius := t.Radius
	if radius == "" {
		radius = defaultRadius
	}
	fmt.Fprintf(b, "%s--radius: %s;\n", indent, radius)
	if t.FontSans != "" {
		fmt.Fprintf(b, "%s--font-sans: %s;\n", indent, t.FontSans)
	}
	if t.FontMono != "" {
		fmt.Fprintf(b, "%s--font-mono: %s;\n", indent, t.FontMono)
	}
}

func writeVars(b *strings.Builder, indent string, colors Colors) {
	for _, v := range colors.Variables() {
		fmt.Fprintf(b, "%s%s: %s;\n", indent, v[0], v[1])
	}
}

// Catalog resolves theme names through a go-theme registry.
type Catalog struct {
	themes   map[string]*Theme
	order    []string
	registry *gotheme.MemoryRegistry
	logger   interfaces.Logger
}

// NewCatalog loads the built-in themes and registers a manifest for each.
func NewCatalog(logger interfaces.Logger) (*Catalog, error) {
	var doc struct {
		Themes []*Theme `yaml:"themes"`
	}
	if err := yaml.Unmarshal(builtinYAML, &doc); err != nil {
		return nil, fmt.Errorf("themes: decode built-in themes: %w", err)
	}

	c := &Catalog{
		themes:   make(map[string]*Theme, len(doc.Themes)),
		registry: gotheme.NewRegistry(),
		logger:   logging.Fallback(logger),
	}
	for _, theme := range doc.Themes {
		if err := c.add(theme); err != nil {
			return nil, err
		}
	}
	if _, ok := c.themes[DefaultName]; !ok {
		return nil, fmt.Errorf("themes: built-in %q theme missing", DefaultName)
	}
	return c, nil
}

func (c *Catalog) add(theme *Theme) error {
	name := strings.TrimSpace(theme.Name)
	if name == "" {
		return fmt.Errorf("themes: theme name required")
	}
	if _, exists := c.themes[name]; exists {
		return fmt.Errorf("themes: duplicate theme %q", name)
	}
	if err := c.registry.Register(&gotheme.Manifest{Name: name, Version: manifestVersion}); err != nil {
		return fmt.Errorf("themes: register %s: %w", name, err)
	}
	c.themes[name] = theme
	c.order = append(c.order, name)
	return nil
}

// Resolve returns the named theme, falling back to the default theme when
// the name is empty or unknown.
func (c *Catalog) Resolve(name string) *Theme {
	name = strings.TrimSpace(name)
	selector := gotheme.Selector{
		Registry:     c.registry,
		DefaultTheme: DefaultName,
	}
	selection, err := selector.Select(name, "")
	if err != nil || selection == nil {
		if name != "" {
			c.logger.Warn("themes.resolve.fallback", "theme", name, "error", err)
		}
		return c.themes[DefaultName]
	}
	if theme, ok := c.themes[selection.Theme]; ok {
		return theme
	}
	return c.themes[DefaultName]
}

// Names returns every theme name sorted alphabetically.
func (c *Catalog) Names() []string {
	names := append([]string(nil), c.order...)
	sort.Strings(names)
	return names
}

// Themes returns the themes in declaration order.
func (c *Catalog) Themes() []*Theme {
	out := make([]*Theme, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.themes[name])
	}
	return out
}
