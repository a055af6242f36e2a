package templates

import (
	"context"
	"html/template"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/csg33k/billed/internal/domain"
)

var funcs = template.FuncMap{
	"amount": formatAmount,
	"status": func(s domain.BillStatus) string { return s.Label() },
	"query":  url.QueryEscape,
}

// formatAmount renders 149 as "149 €" and 12.5 as "12.5 €".
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + " €"
}

// component adapts a named html/template block to templ.Component so views
// share one render path with the handlers.
func component(t *template.Template, name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return t.ExecuteTemplate(w, name, data)
	})
}

// toHTML renders c so it can be nested inside another template. The output
// of our own templates is already escaped.
func toHTML(ctx context.Context, c templ.Component) (template.HTML, error) {
	if c == nil {
		return "", nil
	}
	var b strings.Builder
	if err := c.Render(ctx, &b); err != nil {
		return "", err
	}
	return template.HTML(b.String()), nil
}

// Render writes c to a string. Used by tests and the PDF-free fragments.
func Render(ctx context.Context, c templ.Component) (string, error) {
	h, err := toHTML(ctx, c)
	return string(h), err
}
