package interfaces

import "io"

// TemplateRenderer renders named page templates.
type TemplateRenderer interface {
	Render(name string, data any, out io.Writer) error
	Has(name string) bool
}
