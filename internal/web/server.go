package web

import (
	"html/template"
	"net/http"

	"github.com/guzmanc1/RikiWiki/internal/auth"
	"github.com/guzmanc1/RikiWiki/internal/config"
	"github.com/guzmanc1/RikiWiki/internal/index"
	"github.com/guzmanc1/RikiWiki/internal/user"
	"github.com/guzmanc1/RikiWiki/internal/wiki"
)

// Server holds the dependencies for the web server.
type Server struct {
	cfg         *config.Config
	store       *wiki.Store
	users       *user.Store
	indexRepo   *index.Repository
	authService *auth.Service
	templates   map[string]*template.Template
}

// NewServer creates a new server with the given dependencies.
func NewServer(cfg *config.Config, store *wiki.Store, users *user.Store, indexRepo *index.Repository) (*Server, error) {
	templates, err := NewTemplates()
	if err != nil {
		return nil, err
	}
	authService := auth.NewService(users, cfg.Private)

	return &Server{
		cfg:         cfg,
		store:       store,
		users:       users,
		indexRepo:   indexRepo,
		authService: authService,
		templates:   templates,
	}, nil
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.routes().ServeHTTP(w, r)
}
