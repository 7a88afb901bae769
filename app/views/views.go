package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"
)

//go:embed templates
var embedded embed.FS

// Page names understood by Render
const (
	PageIndex     = "index"
	PageShow      = "show"
	PageNotFound  = "404"
	PageAdminList = "admin/list"
	PageAdminForm = "admin/form"
)

var pageFiles = map[string][]string{
	PageIndex:     {"layout.html", "posts/index.html"},
	PageShow:      {"layout.html", "posts/show.html"},
	PageNotFound:  {"layout.html", "errors/404.html"},
	PageAdminList: {"layout.html", "admin/list.html"},
	PageAdminForm: {"layout.html", "admin/form.html"},
}

var functions = template.FuncMap{
	"formatDate": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("02 Jan 2006, 15:04")
	},
	"excerpt": func(s string, n int) string {
		r := []rune(strings.TrimSpace(s))
		if len(r) <= n {
			return string(r)
		}
		return strings.TrimSpace(string(r[:n])) + "…"
	},
}

// Templates holds one parsed template set per page, each executed through
// the shared "layout" definition.
type Templates struct {
	pages map[string]*template.Template
}

// Load parses the page templates from dir, or from the embedded copies when
// dir is empty.
func Load(dir string) (*Templates, error) {
	var fsys fs.FS
	if dir == "" {
		sub, err := fs.Sub(embedded, "templates")
		if err != nil {
			return nil, err
		}
		fsys = sub
	} else {
		fsys = os.DirFS(dir)
	}
	return LoadFS(fsys)
}

// LoadFS parses the page templates from fsys.
func LoadFS(fsys fs.FS) (*Templates, error) {
	t := &Templates{pages: make(map[string]*template.Template, len(pageFiles))}
	for name, files := range pageFiles {
		tmpl, err := template.New(name).Funcs(functions).ParseFS(fsys, files...)
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		t.pages[name] = tmpl
	}
	return t, nil
}

// Render executes page into a buffer and only writes to w once the whole
// page rendered, so a failed render leaves w untouched.
func (t *Templates) Render(w io.Writer, page string, data any) error {
	tmpl, ok := t.pages[page]
	if !ok {
		return fmt.Errorf("unknown template %q", page)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
