package controller

import (
	"log"
	"net/http"

	"github.com/guzmanc1/RikiWiki/internal/markup"
	"github.com/guzmanc1/RikiWiki/internal/wiki"
)

// Misc provides handlers that do not render a full page
type Misc struct {
	Store         *wiki.Store
	DefaultFormat markup.Format
}

// Register registers the misc routes
func (m *Misc) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /preview/{$}", m.preview)
}

// preview renders submitted page source to an HTML fragment for the editor.
func (m *Misc) preview(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error parsing form", http.StatusBadRequest)
		return
	}

	format := markup.Format(r.PostFormValue("format"))
	if format != markup.Markdown && format != markup.Org {
		format = m.DefaultFormat
	}

	html, err := m.Store.Preview(r.PostFormValue("body"), format)
	if err != nil {
		log.Println(err)
		http.Error(w, "Internal Server Error", 500)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write([]byte(html)); err != nil {
		log.Println(err)
	}
}
