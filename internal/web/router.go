package web

import (
	"net/http"

	"github.com/guzmanc1/RikiWiki/internal/web/controller"
	"github.com/guzmanc1/RikiWiki/internal/web/middleware"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/static/", http.StripPrefix("/static/", StaticFileServer()))

	authController := controller.Auth{
		AuthService: s.authService,
		Users:       s.users,
		AuthMethod:  s.cfg.AuthMethod,
		Templates:   s.templates,
		SiteTitle:   s.cfg.Title,
	}
	authController.Register(mux)

	authenticatedMux := http.NewServeMux()
	pageController := controller.Page{
		Store:         s.store,
		IndexRepo:     s.indexRepo,
		AuthService:   s.authService,
		Templates:     s.templates,
		SiteTitle:     s.cfg.Title,
		DefaultFormat: s.cfg.Format(),
	}
	pageController.Register(authenticatedMux)

	browseController := controller.Browse{
		Store:       s.store,
		IndexRepo:   s.indexRepo,
		AuthService: s.authService,
		Templates:   s.templates,
		SiteTitle:   s.cfg.Title,
		IgnoreCase:  s.cfg.SearchIgnoreCase,
	}
	browseController.Register(authenticatedMux)

	miscController := controller.Misc{Store: s.store, DefaultFormat: s.cfg.Format()}
	miscController.Register(authenticatedMux)

	mux.Handle("/", middleware.WithUser(s.authService)(middleware.Auth(s.authService)(authenticatedMux)))

	return mux
}
