package view

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/pbrandao/blogo/internal/db"
)

// PageData é o contrato único entre handlers e templates.
type PageData struct {
	Title       string
	Path        string
	CurrentUser *db.User
	Flash       string
	CSRFToken   string
	FormError   string
	FormData    map[string]string
	Message     string
	Post        *db.Post
	Posts       []db.Post
	Author      *db.User
	PostHTML    template.HTML
	CanModify   bool
	Pagination  *Pagination
}

var functions = template.FuncMap{
	"formatDate": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("02 Jan 2006, 15:04")
	},
}

// Renderer mantém o conjunto de templates parseado uma única vez no boot.
// Cada página é combinada com o layout base; a renderização passa por um
// buffer para que erro de template não produza resposta pela metade.
type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer(fsys fs.FS) (*Renderer, error) {
	pageFiles, err := fs.Glob(fsys, "*.page.html")
	if err != nil {
		return nil, fmt.Errorf("failed to glob page templates: %w", err)
	}

	pages := make(map[string]*template.Template, len(pageFiles))
	for _, pageFile := range pageFiles {
		ts, err := template.New(pageFile).Funcs(functions).ParseFS(fsys, "base.layout.html", pageFile)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", pageFile, err)
		}
		pages[strings.TrimSuffix(pageFile, ".page.html")] = ts
	}

	return &Renderer{pages: pages}, nil
}

func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data *PageData) error {
	ts, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown template page: %s", page)
	}

	if data == nil {
		data = &PageData{}
	}

	buf := new(bytes.Buffer)
	if err := ts.ExecuteTemplate(buf, "base", data); err != nil {
		return fmt.Errorf("failed to render %s: %w", page, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
