package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/dmitrijs2005/photoshare/internal/server/blobstore"
	"github.com/dmitrijs2005/photoshare/internal/server/models"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	pageGallery  = "gallery"
	pageLogin    = "login"
	pageRegister = "register"
	pageUpload   = "upload"
)

// pageData is the single view model shared by all pages.
type pageData struct {
	User        *models.User
	Flash       string
	Search      string
	Photos      []*models.PhotoView
	Username    string
	Description string
	Accept      string
	DeleteAny   bool
}

var funcs = template.FuncMap{
	"displayName": blobstore.OriginalFilename,
}

type renderer struct {
	pages map[string]*template.Template
}

func newRenderer() (*renderer, error) {
	pages := make(map[string]*template.Template)
	for _, name := range []string{pageGallery, pageLogin, pageRegister, pageUpload} {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = t
	}
	return &renderer{pages: pages}, nil
}

// render executes page into a buffer first so a template error never
// leaves a half-written response.
func (r *renderer) render(w http.ResponseWriter, status int, page string, data pageData) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
