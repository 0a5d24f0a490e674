package nav

import (
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

// CookieName is the session cookie set by Shell.
const CookieName = "webnav_session"

// Shell serves the application: it resolves each request against the
// router, drives the session's Controller, and renders the matched view.
// Only GET requests navigate; other methods, and requests Passive reports,
// are served by the matched view without changing the active route.
type Shell struct {
	// Passive reports GET requests that read a view without navigating
	// to it, e.g. JSON or CSV representations.
	Passive func(r *http.Request) bool

	sessions *Sessions
	notFound http.Handler
}

// NewShell serves notFound, with status 404, for locations no route matches.
// A nil notFound serves http.NotFound.
func NewShell(sessions *Sessions, notFound http.Handler) *Shell {
	if notFound == nil {
		notFound = http.NotFoundHandler()
	}
	return &Shell{sessions: sessions, notFound: notFound}
}

// Sessions returns the session set.
func (s *Shell) Sessions() *Sessions {
	return s.sessions
}

func (s *Shell) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	router := s.sessions.Router()
	c := s.Controller(w, r)
	location := r.URL.RequestURI()
	cur := Current{Router: router, Controller: c, Location: location}

	if !s.navigates(r) {
		m, err := router.Resolve(location)
		if err != nil {
			s.notFound.ServeHTTP(w, r.WithContext(WithCurrent(r.Context(), cur)))
			return
		}
		cur.Match = m
		m.View.ServeHTTP(w, mux.SetURLVars(r.WithContext(WithCurrent(r.Context(), cur)), m.Params))
		return
	}

	p, err := c.Begin(location)
	if err != nil {
		log.Printf("HTTP %s %s: %s", r.Method, location, err)
		s.notFound.ServeHTTP(w, r.WithContext(WithCurrent(r.Context(), cur)))
		return
	}
	p.reset = c.State() == StateIdle
	cur.Match = p.Match()
	view := cur.Match.View
	view.ServeHTTP(w, mux.SetURLVars(r.WithContext(WithCurrent(r.Context(), cur)), cur.Match.Params))
	if !p.Commit() {
		log.Printf("HTTP %s %s: %s", r.Method, location, ErrSuperseded)
	}
}

func (s *Shell) navigates(r *http.Request) bool {
	if r.Method != http.MethodGet {
		return false
	}
	return s.Passive == nil || !s.Passive(r)
}

// Controller returns the controller of the request's session, starting
// a new session, and setting its cookie on w, if there is none.
func (s *Shell) Controller(w http.ResponseWriter, r *http.Request) *Controller {
	if ck, err := r.Cookie(CookieName); err == nil {
		if c, ok := s.sessions.Get(ck.Value); ok {
			return c
		}
	}
	id, c := s.sessions.New()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     s.cookiePath(),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return c
}

// cookiePath matches the base path with and without its trailing slash.
func (s *Shell) cookiePath() string {
	if base := s.sessions.Router().History().Base(); base != "/" {
		return strings.TrimSuffix(base, "/")
	}
	return "/"
}
