package controller

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"html/template"
	"log"
	"net/http"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/guzmanc1/RikiWiki/internal/auth"
	"github.com/guzmanc1/RikiWiki/internal/index"
	"github.com/guzmanc1/RikiWiki/internal/markup"
	"github.com/guzmanc1/RikiWiki/internal/web/viewmodels"
	"github.com/guzmanc1/RikiWiki/internal/wiki"
)

// Page provides page handlers
type Page struct {
	Store         *wiki.Store
	IndexRepo     *index.Repository
	AuthService   *auth.Service
	Templates     map[string]*template.Template
	SiteTitle     string
	DefaultFormat markup.Format
}

// Register registers the page routes
func (p *Page) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", p.home)
	mux.HandleFunc("GET /create/{$}", p.createGet)
	mux.HandleFunc("POST /create/{$}", p.createPost)
	mux.HandleFunc("GET /edit/{url...}", p.edit)
	mux.HandleFunc("POST /edit/{url...}", p.save)
	mux.HandleFunc("GET /move/{url...}", p.moveGet)
	mux.HandleFunc("POST /move/{url...}", p.movePost)
	mux.HandleFunc("POST /delete/{url...}", p.delete)
	mux.HandleFunc("GET /recover/{url...}", p.recover)
	mux.HandleFunc("GET /versions/{url...}", p.versions)
	mux.HandleFunc("GET /diff/{url...}", p.diff)
	mux.HandleFunc("GET /{url...}", p.view)
}

func (p *Page) home(w http.ResponseWriter, r *http.Request) {
	data := pageData(w, r, p.AuthService, p.SiteTitle)

	pages, err := p.Store.Index()
	if err != nil {
		log.Println(err)
		http.Error(w, "Internal Server Error", 500)
		return
	}

	page := wiki.HighestPage(pages, "home")
	if page == nil {
		if err := p.Templates["home.html"].ExecuteTemplate(w, "layout.html", data); err != nil {
			log.Println(err)
		}
		return
	}

	data.Page = page
	data.Content = template.HTML(page.HTML)
	if err := p.Templates["page.html"].ExecuteTemplate(w, "layout.html", data); err != nil {
		log.Println(err)
	}
}

func (p *Page) view(w http.ResponseWriter, r *http.Request) {
	url := strings.Trim(r.PathValue("url"), "/")
	data := pageData(w, r, p.AuthService, p.SiteTitle)

	page, err := p.Store.Get(url)
	if err != nil {
		if errors.Is(err, wiki.ErrNotFound) {
			notFound(w, p.Templates, data)
			return
		}
		log.Println(err)
		http.Error(w, "Internal Server Error", 500)
		return
	}

	data.Page = page
	data.Content = template.HTML(page.HTML)
	if current := wiki.HighestVersionPath(page.Path); current != page.Path {
		data.IsOldVersion = true
		data.CurrentURL = fmt.Sprintf("%s_v%d", wiki.BaseURL(url), wiki.VersionOfPath(current))
	}

	if err := p.Templates["page.html"].ExecuteTemplate(w, "layout.html", data); err != nil {
		log.Println(err)
	}
}

func (p *Page) createGet(w http.ResponseWriter, r *http.Request) {
	data := pageData(w, r, p.AuthService, p.SiteTitle)
	if err := p.Templates["create.html"].ExecuteTemplate(w, "layout.html", data); err != nil {
		log.Println(err)
	}
}

func (p *Page) createPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error parsing form", http.StatusBadRequest)
		return
	}

	url := wiki.CleanURL(r.PostFormValue("url"))
	if url == "" {
		data := pageData(w, r, p.AuthService, p.SiteTitle)
		data.FormError = "A URL is required."
		if err := p.Templates["create.html"].ExecuteTemplate(w, "layout.html", data); err != nil {
			log.Println(err)
		}
		return
	}
	if p.Store.AnyVersionExists(url) {
		data := pageData(w, r, p.AuthService, p.SiteTitle)
		data.FormURL = url
		data.FormError = fmt.Sprintf("The URL %q exists already.", url)
		if err := p.Templates["create.html"].ExecuteTemplate(w, "layout.html", data); err != nil {
			log.Println(err)
		}
		return
	}

	http.Redirect(w, r, "/edit/"+url+"/", http.StatusSeeOther)
}

func (p *Page) edit(w http.ResponseWriter, r *http.Request) {
	url := wiki.CleanURL(r.PathValue("url"))
	data := pageData(w, r, p.AuthService, p.SiteTitle)

	page, err := p.Store.Get(url)
	if err != nil && !errors.Is(err, wiki.ErrNotFound) {
		log.Println(err)
		http.Error(w, "Internal Server Error", 500)
		return
	}

	data.FormURL = url
	data.Formats = markup.Formats()
	data.FormFormat = string(p.DefaultFormat)
	if page != nil {
		data.Page = page
		data.FormTitle = page.Title()
		data.FormTags = page.Tags()
		data.FormBody = page.Body
		if format, ok := markup.FormatForPath(page.Path); ok {
			data.FormFormat = string(format)
		}
	}

	if err := p.Templates["editor.html"].ExecuteTemplate(w, "layout.html", data); err != nil {
		log.Println(err)
	}
}

func (p *Page) save(w http.ResponseWriter, r *http.Request) {
	url := wiki.CleanURL(r.PathValue("url"))
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error parsing form", http.StatusBadRequest)
		return
	}

	title := strings.TrimSpace(r.PostFormValue("title"))
	tags := strings.TrimSpace(r.PostFormValue("tags"))
	body := r.PostFormValue("body")
	if title == "" || strings.TrimSpace(body) == "" {
		p.AuthService.Flash(w, r, "A title and a body are required.")
		http.Redirect(w, r, "/edit/"+url+"/", http.StatusSeeOther)
		return
	}

	page, err := p.Store.Get(url)
	if errors.Is(err, wiki.ErrNotFound) {
		format := markup.Format(r.PostFormValue("format"))
		if format != markup.Org {
			format = markup.Markdown
		}
		page, err = p.Store.NewPage(url, format)
	}
	if err != nil {
		if errors.Is(err, wiki.ErrInvalidPath) {
			http.Error(w, "Invalid page URL", http.StatusBadRequest)
			return
		}
		log.Println(err)
		http.Error(w, "Internal Server Error", 500)
		return
	}

	page.SetTitle(title)
	page.SetTags(tags)
	page.Body = body
	if err := p.Store.Save(page); err != nil {
		log.Printf("Error saving page %s: %v", url, err)
		http.Error(w, "Internal Server Error", 500)
		return
	}
	if err := p.IndexRepo.UpsertPage(r.Context(), page); err != nil {
		log.Printf("Error indexing page %s: %v", page.URL, err)
	}

	p.AuthService.Flash(w, r, fmt.Sprintf("%q was saved.", page.Title()))
	http.Redirect(w, r, "/"+page.URL+"/", http.StatusSeeOther)
}

func (p *Page) moveGet(w http.ResponseWriter, r *http.Request) {
	url := wiki.CleanURL(r.PathValue("url"))
	data := pageData(w, r, p.AuthService, p.SiteTitle)

	page, err := p.Store.Get(url)
	if err != nil {
		if errors.Is(err, wiki.ErrNotFound) {
			notFound(w, p.Templates, data)
			return
		}
		log.Println(err)
		http.Error(w, "Internal Server Error", 500)
		return
	}

	data.Page = page
	data.FormURL = url
	if err := p.Templates["move.html"].ExecuteTemplate(w, "layout.html", data); err != nil {
		log.Println(err)
	}
}

func (p *Page) movePost(w http.ResponseWriter, r *http.Request) {
	url := wiki.CleanURL(r.PathValue("url"))
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error parsing form", http.StatusBadRequest)
		return
	}
	newURL := r.PostFormValue("url")

	moved, err := p.Store.Move(url, newURL)
	if err != nil {
		switch {
		case errors.Is(err, wiki.ErrNotFound):
			notFound(w, p.Templates, pageData(w, r, p.AuthService, p.SiteTitle))
		case errors.Is(err, wiki.ErrExists), errors.Is(err, wiki.ErrInvalidPath):
			data := pageData(w, r, p.AuthService, p.SiteTitle)
			data.FormURL = url
			if errors.Is(err, wiki.ErrExists) {
				data.FormError = fmt.Sprintf("The URL %q exists already.", wiki.CleanURL(newURL))
			} else {
				data.FormError = fmt.Sprintf("The URL %q cannot be used.", wiki.CleanURL(newURL))
			}
			if page, gerr := p.Store.Get(url); gerr == nil {
				data.Page = page
			}
			if terr := p.Templates["move.html"].ExecuteTemplate(w, "layout.html", data); terr != nil {
				log.Println(terr)
			}
		default:
			log.Printf("Error moving page %s: %v", url, err)
			http.Error(w, "Internal Server Error", 500)
		}
		return
	}

	page, err := p.Store.Get(moved)
	if err != nil {
		log.Printf("Error reloading moved page %s: %v", moved, err)
		http.Error(w, "Internal Server Error", 500)
		return
	}
	if err := p.IndexRepo.DeletePage(r.Context(), url); err != nil {
		log.Printf("Error unindexing page %s: %v", url, err)
	}
	if err := p.IndexRepo.UpsertPage(r.Context(), page); err != nil {
		log.Printf("Error indexing page %s: %v", page.URL, err)
	}

	p.AuthService.Flash(w, r, fmt.Sprintf("%q was moved.", page.Title()))
	http.Redirect(w, r, "/"+moved+"/", http.StatusSeeOther)
}

func (p *Page) delete(w http.ResponseWriter, r *http.Request) {
	url := wiki.CleanURL(r.PathValue("url"))

	page, err := p.Store.Get(url)
	if err != nil {
		if errors.Is(err, wiki.ErrNotFound) {
			notFound(w, p.Templates, pageData(w, r, p.AuthService, p.SiteTitle))
			return
		}
		log.Println(err)
		http.Error(w, "Internal Server Error", 500)
		return
	}

	if err := p.Store.Delete(url); err != nil {
		log.Printf("Error deleting page %s: %v", url, err)
		http.Error(w, "Internal Server Error", 500)
		return
	}
	if err := p.IndexRepo.DeletePage(r.Context(), url); err != nil {
		log.Printf("Error unindexing page %s: %v", url, err)
	}

	p.AuthService.Flash(w, r, fmt.Sprintf("Page %q was deleted.", page.Title()))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (p *Page) recover(w http.ResponseWriter, r *http.Request) {
	url := strings.Trim(r.PathValue("url"), "/")

	page, err := p.Store.Get(url)
	if err != nil {
		if errors.Is(err, wiki.ErrNotFound) {
			notFound(w, p.Templates, pageData(w, r, p.AuthService, p.SiteTitle))
			return
		}
		log.Println(err)
		http.Error(w, "Internal Server Error", 500)
		return
	}

	if err := p.Store.Save(page); err != nil {
		log.Printf("Error recovering page %s: %v", url, err)
		http.Error(w, "Internal Server Error", 500)
		return
	}
	if err := p.IndexRepo.UpsertPage(r.Context(), page); err != nil {
		log.Printf("Error indexing page %s: %v", page.URL, err)
	}

	p.AuthService.Flash(w, r, fmt.Sprintf("%q was recovered.", page.Title()))
	http.Redirect(w, r, "/"+page.URL+"/", http.StatusSeeOther)
}

func (p *Page) versions(w http.ResponseWriter, r *http.Request) {
	url := strings.Trim(r.PathValue("url"), "/")
	data := pageData(w, r, p.AuthService, p.SiteTitle)

	page, err := p.Store.Get(url)
	if err != nil {
		if errors.Is(err, wiki.ErrNotFound) {
			notFound(w, p.Templates, data)
			return
		}
		log.Println(err)
		http.Error(w, "Internal Server Error", 500)
		return
	}

	all, err := p.Store.Index()
	if err != nil {
		log.Println(err)
		http.Error(w, "Internal Server Error", 500)
		return
	}

	// Newest first for display.
	history := wiki.Versions(page, all)
	rows := make([]viewmodels.VersionRow, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		v := history[i]
		rows = append(rows, viewmodels.VersionRow{
			URL:     v.URL,
			Title:   v.Title(),
			Version: wiki.VersionOfPath(v.Path),
			Current: i == len(history)-1,
		})
	}

	data.Page = page
	data.Versions = rows
	if err := p.Templates["versions.html"].ExecuteTemplate(w, "layout.html", data); err != nil {
		log.Println(err)
	}
}

func (p *Page) diff(w http.ResponseWriter, r *http.Request) {
	url := strings.Trim(r.PathValue("url"), "/")
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if to == "" {
		to = url
	}
	if from == "" {
		http.Error(w, "Invalid 'from' version", http.StatusBadRequest)
		return
	}

	fromPage, err := p.Store.Get(from)
	if err != nil {
		http.Error(w, "Could not find 'from' version", http.StatusNotFound)
		return
	}
	toPage, err := p.Store.Get(to)
	if err != nil {
		http.Error(w, "Could not find 'to' version", http.StatusNotFound)
		return
	}

	fromContent := markup.Serialize(fromPage.Meta, fromPage.Body)
	toContent := markup.Serialize(toPage.Meta, toPage.Body)

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(fromContent, toContent, true)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var buff bytes.Buffer
	for _, diff := range diffs {
		text := html.EscapeString(diff.Text)
		switch diff.Type {
		case diffmatchpatch.DiffInsert:
			buff.WriteString("<ins>")
			buff.WriteString(text)
			buff.WriteString("</ins>")
		case diffmatchpatch.DiffDelete:
			buff.WriteString("<del>")
			buff.WriteString(text)
			buff.WriteString("</del>")
		case diffmatchpatch.DiffEqual:
			buff.WriteString("<span>")
			buff.WriteString(text)
			buff.WriteString("</span>")
		}
	}

	data := pageData(w, r, p.AuthService, p.SiteTitle)
	data.Page = toPage
	data.Content = template.HTML(buff.String())
	data.DiffFrom = from
	data.DiffTo = to
	if err := p.Templates["diff.html"].ExecuteTemplate(w, "layout.html", data); err != nil {
		log.Println(err)
	}
}
