// Package web holds the server-rendered pages. Every page template is
// parsed together with layout.html and rendered through gin's c.HTML.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin/render"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcMap = template.FuncMap{
	"formatTime": FormatTime,
	"nl2br":      Nl2br,
	"titleCase":  TitleCase,
	"deref":      derefTime,
}

// FormatTime renders a timestamp the way every page shows it.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format("Mon, Jan 2 2006 at 3:04 PM")
}

// Nl2br escapes s and turns newlines into <br> tags.
func Nl2br(s string) template.HTML {
	escaped := template.HTMLEscapeString(s)
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
}

// TitleCase turns "not_attending" into "Not Attending".
func TitleCase(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

// Renderer maps page names ("event.html") to their parsed template set.
type Renderer map[string]*template.Template

// LoadTemplates parses every page under templates/ with the shared layout.
func LoadTemplates() (Renderer, error) {
	pages, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	r := make(Renderer)
	for _, page := range pages {
		name := path.Base(page)
		if name == "layout.html" {
			continue
		}
		tmpl, err := template.New(name).Funcs(funcMap).ParseFS(templateFS, "templates/layout.html", page)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r[name] = tmpl
	}
	return r, nil
}

// Instance implements render.HTMLRender.
func (r Renderer) Instance(name string, data any) render.Render {
	return render.HTML{Template: r[name], Name: "layout", Data: data}
}
