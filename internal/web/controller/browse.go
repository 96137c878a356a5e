package controller

import (
	"html/template"
	"log"
	"net/http"

	"github.com/guzmanc1/RikiWiki/internal/auth"
	"github.com/guzmanc1/RikiWiki/internal/index"
	"github.com/guzmanc1/RikiWiki/internal/wiki"
)

// Browse provides listing, tag and search handlers
type Browse struct {
	Store       *wiki.Store
	IndexRepo   *index.Repository
	AuthService *auth.Service
	Templates   map[string]*template.Template
	SiteTitle   string
	IgnoreCase  bool
}

// Register registers the browse routes
func (b *Browse) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /index/{$}", b.index)
	mux.HandleFunc("GET /tags/{$}", b.tags)
	mux.HandleFunc("GET /tag/{name}/{$}", b.tag)
	mux.HandleFunc("GET /search/{$}", b.searchGet)
	mux.HandleFunc("POST /search/{$}", b.searchPost)
}

func (b *Browse) index(w http.ResponseWriter, r *http.Request) {
	data := pageData(w, r, b.AuthService, b.SiteTitle)

	pages, err := b.Store.Index()
	if err != nil {
		log.Println(err)
		http.Error(w, "Internal Server Error", 500)
		return
	}

	data.Pages = wiki.FilterOldVersions(pages)
	if err := b.Templates["index.html"].ExecuteTemplate(w, "layout.html", data); err != nil {
		log.Println(err)
	}
}

func (b *Browse) tags(w http.ResponseWriter, r *http.Request) {
	data := pageData(w, r, b.AuthService, b.SiteTitle)

	tags, err := b.IndexRepo.Tags(r.Context())
	if err != nil {
		log.Println(err)
		http.Error(w, "Internal Server Error", 500)
		return
	}

	data.Tags = tags
	if err := b.Templates["tags.html"].ExecuteTemplate(w, "layout.html", data); err != nil {
		log.Println(err)
	}
}

func (b *Browse) tag(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	data := pageData(w, r, b.AuthService, b.SiteTitle)

	entries, err := b.IndexRepo.PagesForTag(r.Context(), name)
	if err != nil {
		log.Println(err)
		http.Error(w, "Internal Server Error", 500)
		return
	}

	data.Tag = name
	data.Entries = entries
	if err := b.Templates["tag.html"].ExecuteTemplate(w, "layout.html", data); err != nil {
		log.Println(err)
	}
}

func (b *Browse) searchGet(w http.ResponseWriter, r *http.Request) {
	data := pageData(w, r, b.AuthService, b.SiteTitle)
	data.IgnoreCase = b.IgnoreCase
	if err := b.Templates["search.html"].ExecuteTemplate(w, "layout.html", data); err != nil {
		log.Println(err)
	}
}

func (b *Browse) searchPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error parsing form", http.StatusBadRequest)
		return
	}

	data := pageData(w, r, b.AuthService, b.SiteTitle)
	term := r.PostFormValue("term")
	ignoreCase := r.PostFormValue("ignore_case") != ""

	if term == "" {
		data.IgnoreCase = b.IgnoreCase
		data.FormError = "A search term is required."
		if err := b.Templates["search.html"].ExecuteTemplate(w, "layout.html", data); err != nil {
			log.Println(err)
		}
		return
	}

	results, err := b.Store.Search(term, ignoreCase)
	if err != nil {
		log.Println(err)
		http.Error(w, "Internal Server Error", 500)
		return
	}

	data.SearchTerm = term
	data.IgnoreCase = ignoreCase
	data.Searched = true
	data.Results = results
	if err := b.Templates["search.html"].ExecuteTemplate(w, "layout.html", data); err != nil {
		log.Println(err)
	}
}
