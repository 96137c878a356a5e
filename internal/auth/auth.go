package auth

import (
	"context"
	"encoding/gob"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"

	"github.com/guzmanc1/RikiWiki/internal/models"
	"github.com/guzmanc1/RikiWiki/internal/user"
)

const sessionName = "riki-session"

// Store will hold the session store.
var Store *sessions.CookieStore

// InitSessionStore sets up the cookie store. An empty key is replaced
// with a random one, which keeps the wiki usable but logs everyone out
// on restart.
func InitSessionStore(sessionKey string) error {
	key := []byte(sessionKey)
	if sessionKey == "" {
		key = securecookie.GenerateRandomKey(32)
		if key == nil {
			return errors.New("could not generate a session key")
		}
		log.Println("no session_key configured, using a random one; sessions will not survive a restart")
	} else if len(key) < 32 {
		return errors.New("session key must be at least 32 characters long")
	}
	Store = sessions.NewCookieStore(key)
	Store.Options.HttpOnly = true
	Store.Options.Path = "/"
	Store.Options.SameSite = http.SameSiteLaxMode // Protect against CSRF
	return nil
}

func init() {
	gob.Register(&models.User{})
}

type contextKey string

const userKey contextKey = "user"

// Service provides authentication-related services.
type Service struct {
	Users   *user.Store
	Private bool
}

// NewService creates a new authentication service. With private unset
// the wiki is world-readable and RequireLogin passes everyone through.
func NewService(users *user.Store, private bool) *Service {
	return &Service{Users: users, Private: private}
}

// Login authenticates a user and creates a session.
func (s *Service) Login(w http.ResponseWriter, r *http.Request, name, password string) (*models.User, error) {
	u, err := s.Users.Authenticate(name, password)
	if err != nil {
		return nil, err
	}
	s.StartSession(w, r, u)
	return u, nil
}

// StartSession stores the user in the session cookie without checking
// credentials. Used right after account creation.
func (s *Service) StartSession(w http.ResponseWriter, r *http.Request, u *models.User) {
	session, _ := Store.Get(r, sessionName)
	session.Values["user"] = u

	// Set Secure flag based on request scheme or X-Forwarded-Proto header
	// This is crucial for correct behavior behind reverse proxies.
	session.Options.Secure = secureRequest(r)

	session.Save(r, w)
}

// Logout destroys a user's session.
func (s *Service) Logout(w http.ResponseWriter, r *http.Request) {
	session, _ := Store.Get(r, sessionName)
	delete(session.Values, "user")

	session.Options.Secure = secureRequest(r)

	session.Save(r, w)
}

// CurrentUser returns the currently logged-in user.
func (s *Service) CurrentUser(r *http.Request) *models.User {
	session, _ := Store.Get(r, sessionName)
	if u, ok := session.Values["user"].(*models.User); ok {
		return u
	}
	return nil
}

// Flash queues a one-time message for the next rendered page.
func (s *Service) Flash(w http.ResponseWriter, r *http.Request, message string) {
	session, _ := Store.Get(r, sessionName)
	session.AddFlash(message)
	session.Options.Secure = secureRequest(r)
	session.Save(r, w)
}

// TakeFlashes returns the queued messages and clears them.
func (s *Service) TakeFlashes(w http.ResponseWriter, r *http.Request) []string {
	session, _ := Store.Get(r, sessionName)
	raw := session.Flashes()
	if len(raw) > 0 {
		session.Options.Secure = secureRequest(r)
		session.Save(r, w)
	}
	var messages []string
	for _, f := range raw {
		if msg, ok := f.(string); ok {
			messages = append(messages, msg)
		}
	}
	return messages
}

// RequireLogin is middleware protecting wiki routes. On a public wiki it
// is a no-op; on a private one anonymous requests are sent to the login
// page with the original URL as the next parameter.
func (s *Service) RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.Private || s.CurrentUser(r) != nil {
			next.ServeHTTP(w, r)
			return
		}
		target := "/user/login/?next=" + url.QueryEscape(r.URL.RequestURI())
		http.Redirect(w, r, target, http.StatusFound)
	})
}

// WithUser adds the current user to the request context.
func (s *Service) WithUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := s.CurrentUser(r)
		ctx := context.WithValue(r.Context(), userKey, u)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserFromContext returns the user WithUser stored, nil for anonymous
// requests.
func UserFromContext(ctx context.Context) *models.User {
	if u, ok := ctx.Value(userKey).(*models.User); ok {
		return u
	}
	return nil
}

// SafeNext keeps post-login redirects on this site. Anything that is
// not a local path falls back to the wiki root.
func SafeNext(next string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") && !strings.ContainsAny(next, "\r\n") {
		return next
	}
	return "/"
}

func secureRequest(r *http.Request) bool {
	return r.URL.Scheme == "https" || r.Header.Get("X-Forwarded-Proto") == "https"
}
