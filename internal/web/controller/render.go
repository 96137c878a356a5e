package controller

import (
	"html/template"
	"log"
	"net/http"

	"github.com/guzmanc1/RikiWiki/internal/auth"
	"github.com/guzmanc1/RikiWiki/internal/web/viewmodels"
)

// pageData seeds a view model with the fields layout.html always needs.
// Flashes are consumed here, so build it once per request.
func pageData(w http.ResponseWriter, r *http.Request, authService *auth.Service, siteTitle string) viewmodels.PageData {
	currentUser := auth.UserFromContext(r.Context())
	if currentUser == nil {
		currentUser = authService.CurrentUser(r)
	}
	return viewmodels.PageData{
		SiteTitle:   siteTitle,
		Flashes:     authService.TakeFlashes(w, r),
		CurrentUser: currentUser,
		IsLoggedIn:  currentUser != nil,
		Private:     authService.Private,
	}
}

// notFound renders the wiki's own 404 page.
func notFound(w http.ResponseWriter, templates map[string]*template.Template, data viewmodels.PageData) {
	w.WriteHeader(http.StatusNotFound)
	if err := templates["404.html"].ExecuteTemplate(w, "layout.html", data); err != nil {
		log.Println(err)
	}
}
