// Package navhandler serves the navigation API: the route table, name and
// location resolution, and the active route of the caller's session.
package navhandler

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gofu/webnav/handlers"
	"github.com/gofu/webnav/nav"
	"github.com/gofu/webnav/route"
	"github.com/gorilla/mux"
)

// ErrNoHistory is returned by back and forward at either end of the history.
var ErrNoHistory = errors.New("no history entry")

// RouteInfo describes a route of the table.
type RouteInfo struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	// Location is empty for routes with path variables.
	Location string `json:"location,omitempty"`
}

// Resolved is a location resolved to a route.
type Resolved struct {
	Location string            `json:"location"`
	Name     string            `json:"name"`
	Params   map[string]string `json:"params,omitempty"`
}

// Active is the navigation state of a session.
type Active struct {
	State      string     `json:"state"`
	Entry      *nav.Entry `json:"entry,omitempty"`
	CanBack    bool       `json:"canBack"`
	CanForward bool       `json:"canForward"`
}

// Handler serves the navigation API under its prefix.
type Handler struct {
	shell  *nav.Shell
	router *mux.Router
}

// New returns the API served under prefix, e.g. "/app/api".
func New(shell *nav.Shell, prefix string) *Handler {
	h := &Handler{shell: shell, router: mux.NewRouter()}
	api := h.router.PathPrefix(prefix).Subrouter()
	api.HandleFunc("/routes", h.routes).Methods(http.MethodGet)
	api.HandleFunc("/resolve", h.resolve).Methods(http.MethodGet)
	api.HandleFunc("/navigate/{name}", h.navigate).Methods(http.MethodGet)
	api.HandleFunc("/go/{name}", h.goTo).Methods(http.MethodPost)
	api.HandleFunc("/back", h.back).Methods(http.MethodPost)
	api.HandleFunc("/forward", h.forward).Methods(http.MethodPost)
	api.HandleFunc("/active", h.active).Methods(http.MethodGet)
	h.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlers.ServeJSONStatus(w, r, http.StatusNotFound, handlers.ErrorResponse{Error: "no such endpoint: " + r.URL.Path})
	})
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) routes(w http.ResponseWriter, r *http.Request) {
	router := h.shell.Sessions().Router()
	routes := router.Table().Routes()
	infos := make([]RouteInfo, 0, len(routes))
	for _, rt := range routes {
		loc, _ := router.Navigate(rt.Name, nil)
		infos = append(infos, RouteInfo{
			Name:        rt.Name,
			Path:        rt.Path,
			Title:       rt.Title,
			Description: rt.Description,
			Location:    loc,
		})
	}
	handlers.ServeJSON(w, r, infos)
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request) {
	location := r.URL.Query().Get("location")
	if len(location) == 0 {
		serveError(w, r, fmt.Errorf("%w: location is required", handlers.ErrBadRequest))
		return
	}
	m, err := h.shell.Sessions().Router().Resolve(location)
	if err != nil {
		serveError(w, r, err)
		return
	}
	handlers.ServeJSON(w, r, Resolved{Location: location, Name: m.Name, Params: m.Params})
}

// params returns the query of r as navigation params, except the
// response format.
func params(r *http.Request) map[string]string {
	q := r.URL.Query()
	q.Del(handlers.FormatParam)
	if len(q) == 0 {
		return nil
	}
	p := make(map[string]string, len(q))
	for k := range q {
		p[k] = q.Get(k)
	}
	return p
}

func (h *Handler) navigate(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	location, err := h.shell.Sessions().Router().Navigate(name, params(r))
	if err != nil {
		logInvalidName(r, name, err)
		serveError(w, r, err)
		return
	}
	handlers.ServeJSON(w, r, Resolved{Location: location, Name: name})
}

func (h *Handler) goTo(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	c := h.shell.Controller(w, r)
	e, err := c.Navigate(name, params(r))
	if err != nil {
		logInvalidName(r, name, err)
		serveError(w, r, err)
		return
	}
	h.serveEntry(w, r, e)
}

func (h *Handler) back(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, (*nav.Controller).Back)
}

func (h *Handler) forward(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, (*nav.Controller).Forward)
}

func (h *Handler) move(w http.ResponseWriter, r *http.Request, fn func(*nav.Controller) (nav.Entry, bool)) {
	c := h.shell.Controller(w, r)
	e, ok := fn(c)
	if !ok {
		if !handlers.WantsJSON(r) {
			// Form posts fall back to the active location.
			if active, ok := c.Active(); ok {
				http.Redirect(w, r, active.Location, http.StatusSeeOther)
				return
			}
		}
		handlers.ServeJSONStatus(w, r, http.StatusConflict, handlers.ErrorResponse{Error: ErrNoHistory.Error()})
		return
	}
	h.serveEntry(w, r, e)
}

// serveEntry answers JSON clients with e, and redirects browsers to it.
func (h *Handler) serveEntry(w http.ResponseWriter, r *http.Request, e nav.Entry) {
	if handlers.WantsJSON(r) {
		handlers.ServeJSON(w, r, e)
		return
	}
	http.Redirect(w, r, e.Location, http.StatusSeeOther)
}

func (h *Handler) active(w http.ResponseWriter, r *http.Request) {
	c := h.shell.Controller(w, r)
	a := Active{State: c.State().String(), CanBack: c.CanBack(), CanForward: c.CanForward()}
	if e, ok := c.Active(); ok {
		a.Entry = &e
	}
	handlers.ServeJSON(w, r, a)
}

// serveError always answers JSON.
func serveError(w http.ResponseWriter, r *http.Request, err error) {
	log.Printf("HTTP %s %s error: %s", r.Method, r.URL, err)
	handlers.ServeJSONStatus(w, r, handlers.ErrorStatus(err), handlers.ErrorResponse{Error: err.Error()})
}

// logInvalidName reports navigations to names missing from the table,
// which only a broken link or client can produce.
func logInvalidName(r *http.Request, name string, err error) {
	if errors.Is(err, route.ErrInvalidName) {
		log.Printf("Invalid route name %q requested by %s via %s", name, r.RemoteAddr, r.Referer())
	}
}
