package server

import (
	"bytes"
	_ "embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/gorewood/bloglog/internal/journal"
)

//go:embed page.html
var pageHTML string

var pageTemplate = template.Must(template.New("page").Parse(pageHTML))

// Page renders the timeline page. Entries are fetched by the browser.
type Page struct {
	store  *journal.Store
	logger *slog.Logger
}

// NewPage returns the page handler for store.
func NewPage(store *journal.Store, logger *slog.Logger) *Page {
	return &Page{store: store, logger: logger}
}

func (p *Page) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	meta, err := p.store.ReadMetadata()
	if err != nil {
		p.logger.Warn("page: reading metadata", slog.String("error", err.Error()))
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, struct {
		ProjectName string
		Root        string
	}{meta.NameOrDefault(), p.store.Root()}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
