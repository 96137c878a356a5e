package controller

import (
	"errors"
	"html/template"
	"log"
	"net/http"
	"strings"

	"github.com/guzmanc1/RikiWiki/internal/auth"
	"github.com/guzmanc1/RikiWiki/internal/user"
)

// Auth provides auth handlers
type Auth struct {
	AuthService *auth.Service
	Users       *user.Store
	AuthMethod  string
	Templates   map[string]*template.Template
	SiteTitle   string
}

// Register registers the auth routes
func (a *Auth) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /user/login/{$}", a.loginGet)
	mux.HandleFunc("POST /user/login/{$}", a.loginPost)
	mux.HandleFunc("GET /user/logout/{$}", a.logout)
	mux.HandleFunc("GET /user/create/{$}", a.createGet)
	mux.HandleFunc("POST /user/create/{$}", a.createPost)
}

func (a *Auth) loginGet(w http.ResponseWriter, r *http.Request) {
	data := pageData(w, r, a.AuthService, a.SiteTitle)
	data.Next = auth.SafeNext(r.URL.Query().Get("next"))
	if err := a.Templates["login.html"].ExecuteTemplate(w, "layout.html", data); err != nil {
		log.Println(err)
	}
}

func (a *Auth) loginPost(w http.ResponseWriter, r *http.Request) {
	name := r.FormValue("name")
	password := r.FormValue("password")
	next := auth.SafeNext(r.FormValue("next"))

	_, err := a.AuthService.Login(w, r, name, password)
	if err != nil {
		if !errors.Is(err, user.ErrInvalidCredentials) {
			log.Println(err)
		}
		data := pageData(w, r, a.AuthService, a.SiteTitle)
		data.Next = next
		data.FormError = "Username and password do not match."
		if terr := a.Templates["login.html"].ExecuteTemplate(w, "layout.html", data); terr != nil {
			log.Println(terr)
		}
		return
	}

	a.AuthService.Flash(w, r, "Login successful.")
	if next == "/" {
		next = "/index/"
	}
	http.Redirect(w, r, next, http.StatusFound)
}

func (a *Auth) logout(w http.ResponseWriter, r *http.Request) {
	a.AuthService.Logout(w, r)
	a.AuthService.Flash(w, r, "Logout successful.")
	http.Redirect(w, r, "/index/", http.StatusFound)
}

func (a *Auth) createGet(w http.ResponseWriter, r *http.Request) {
	data := pageData(w, r, a.AuthService, a.SiteTitle)
	if err := a.Templates["create_user.html"].ExecuteTemplate(w, "layout.html", data); err != nil {
		log.Println(err)
	}
}

func (a *Auth) createPost(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.FormValue("name"))
	password := r.FormValue("password")

	fail := func(message string) {
		data := pageData(w, r, a.AuthService, a.SiteTitle)
		data.FormName = name
		data.FormError = message
		if err := a.Templates["create_user.html"].ExecuteTemplate(w, "layout.html", data); err != nil {
			log.Println(err)
		}
	}

	if name == "" || password == "" {
		fail("A name and a password are required.")
		return
	}

	u, err := a.Users.Add(name, password, true, nil, a.AuthMethod)
	if err != nil {
		if errors.Is(err, user.ErrExists) {
			fail("This username is already taken.")
			return
		}
		log.Println(err)
		http.Error(w, "Internal Server Error", 500)
		return
	}

	a.AuthService.StartSession(w, r, u)
	a.AuthService.Flash(w, r, "User successfully created.")
	http.Redirect(w, r, "/index/", http.StatusFound)
}
