package view

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"strings"

	"github.com/odyssey-erp/companyhub/internal/shared"
	"github.com/odyssey-erp/companyhub/web"
)

// Engine renders HTML templates. Every page gets its own template set cloned
// from the shared layouts and partials so pages can each define "content".
type Engine struct {
	pages map[string]*template.Template
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	CSRFToken   string
	Flash       *shared.FlashMessage
	CurrentPath string
	User        *shared.SessionUser
	Nav         []shared.NavItem
	Data        any
}

// IsAdmin reports whether the signed-in user is an administrator.
func (d TemplateData) IsAdmin() bool {
	return d.User != nil && shared.IsAdmin(d.User.Role)
}

// NewEngine parses every page under templates/pages.
func NewEngine() (*Engine, error) {
	root, err := template.New("root").Funcs(Funcs()).ParseFS(web.Templates, "templates/layouts/*.html", "templates/partials/*.html")
	if err != nil {
		return nil, err
	}
	pages := make(map[string]*template.Template)
	err = fs.WalkDir(web.Templates, "templates/pages", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}
		raw, err := fs.ReadFile(web.Templates, path)
		if err != nil {
			return err
		}
		set, err := root.Clone()
		if err != nil {
			return err
		}
		name := strings.TrimPrefix(path, "templates/")
		if _, err := set.New(name).Parse(string(raw)); err != nil {
			return fmt.Errorf("view: parse %s: %w", name, err)
		}
		pages[name] = set
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Engine{pages: pages}, nil
}

// Render executes a page with status 200.
func (e *Engine) Render(w http.ResponseWriter, name string, data TemplateData) error {
	return e.RenderStatus(w, http.StatusOK, name, data)
}

// RenderStatus executes a page into a buffer and writes it with status.
func (e *Engine) RenderStatus(w http.ResponseWriter, status int, name string, data TemplateData) error {
	var buf bytes.Buffer
	if err := e.Execute(&buf, name, data); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// Execute writes the named page to wr. Used for HTML destined for PDF conversion.
func (e *Engine) Execute(wr io.Writer, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	set, ok := e.pages[name]
	if !ok {
		return fmt.Errorf("view: unknown page %s", name)
	}
	return set.ExecuteTemplate(wr, name, data)
}

// Has reports whether a page exists.
func (e *Engine) Has(name string) bool {
	_, ok := e.pages[name]
	return ok
}
