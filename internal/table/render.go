package table

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Confirm is the delete confirmation dialog. Inline dialogs are swapped into
// the page by htmx and cancel without a request.
type Confirm struct {
	Title   string
	Message string
	Action  string
	Token   string
	Cancel  string
	Inline  bool
}

// Notice is a short status message shown in place of a dialog
type Notice struct {
	Kind    string
	Message string
}

// Render writes the whole table: filter bar, rows region and dialog slot
func Render[T any](w io.Writer, t Table[T]) error {
	return execute(w, "table", Build(t))
}

// RenderRegion writes only the rows region, the target of table controls
func RenderRegion[T any](w io.Writer, t Table[T]) error {
	return execute(w, "region", Build(t))
}

// RenderHTML renders the whole table into trusted markup for a page layout
func RenderHTML[T any](t Table[T]) (template.HTML, error) {
	var buf bytes.Buffer
	if err := Render(&buf, t); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// RenderConfirm writes a delete confirmation dialog
func RenderConfirm(w io.Writer, c Confirm) error {
	return execute(w, "confirm", c)
}

// RenderNotice writes a status message
func RenderNotice(w io.Writer, n Notice) error {
	return execute(w, "notice", n)
}

func execute(w io.Writer, name string, data any) error {
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return nil
}
