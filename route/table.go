package route

import (
	"fmt"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/gorilla/mux"
	"golang.org/x/exp/slices"
)

// Table is an ordered, immutable set of routes. Matching and reverse routing
// are delegated to a gorilla/mux router built once by NewTable.
type Table struct {
	routes   []Route
	byName   map[string]int
	router   *mux.Router
	notFound http.Handler
}

// Option configures a Table.
type Option func(*Table)

// WithNotFound sets the handler served by ServeHTTP for unknown paths.
func WithNotFound(h http.Handler) Option {
	return func(t *Table) { t.notFound = h }
}

// NewTable validates routes and returns them as a Table, in declaration order.
// Names and paths must be unique, and every route must be bound to a view.
func NewTable(routes []Route, opts ...Option) (*Table, error) {
	t := &Table{
		routes: make([]Route, 0, len(routes)),
		byName: make(map[string]int, len(routes)),
		router: mux.NewRouter(),
	}
	paths := make(map[string]string, len(routes))
	for _, r := range routes {
		if len(r.Name) == 0 {
			return nil, fmt.Errorf("%w: empty name for path %q", ErrInvalidName, r.Path)
		}
		if _, ok := t.byName[r.Name]; ok {
			return nil, fmt.Errorf("%w: name %q", ErrDuplicate, r.Name)
		}
		if r.View == nil {
			return nil, fmt.Errorf("%w: %q", ErrUnbound, r.Name)
		}
		p, err := normalizeTemplate(r.Path)
		if err != nil {
			return nil, fmt.Errorf("route %q: %w", r.Name, err)
		}
		if other, ok := paths[p]; ok {
			return nil, fmt.Errorf("%w: path %q of %q already bound to %q", ErrDuplicate, p, r.Name, other)
		}
		r.Path = p
		mr := t.router.NewRoute().Path(p).Name(r.Name).Handler(r.View)
		if err = mr.GetError(); err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPath, p, err)
		}
		paths[p] = r.Name
		t.byName[r.Name] = len(t.routes)
		t.routes = append(t.routes, r)
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Routes returns a copy of all routes, in declaration order.
func (t *Table) Routes() []Route {
	return slices.Clone(t.routes)
}

// Len returns the number of routes.
func (t *Table) Len() int {
	return len(t.routes)
}

// Lookup returns the route registered under name.
func (t *Table) Lookup(name string) (Route, error) {
	i, ok := t.byName[name]
	if !ok {
		return Route{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return t.routes[i], nil
}

// Resolve returns the route matching p. Query and fragment are ignored,
// the path is cleaned, and a trailing slash is optional.
func (t *Table) Resolve(p string) (Match, error) {
	clean := cleanPath(p)
	req := &http.Request{Method: http.MethodGet, URL: &url.URL{Path: clean}}
	var rm mux.RouteMatch
	if !t.router.Match(req, &rm) || rm.Route == nil {
		return Match{}, fmt.Errorf("%w: %q", ErrNotFound, clean)
	}
	r, err := t.Lookup(rm.Route.GetName())
	if err != nil {
		return Match{}, err
	}
	m := Match{Route: r}
	if len(rm.Vars) != 0 {
		m.Params = rm.Vars
	}
	return m, nil
}

// Path returns the path registered under name, relative to the base path.
// Params fill path variables; the remaining params are encoded as query.
func (t *Table) Path(name string, params map[string]string) (string, error) {
	if _, ok := t.byName[name]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	mr := t.router.Get(name)
	vars, err := mr.GetVarNames()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}
	pairs := make([]string, 0, 2*len(vars))
	query := url.Values{}
	for k, v := range params {
		if slices.Contains(vars, k) {
			continue
		}
		query.Set(k, v)
	}
	for _, k := range vars {
		v, ok := params[k]
		if !ok {
			return "", fmt.Errorf("%w: %q requires %q", ErrInvalidParams, name, k)
		}
		pairs = append(pairs, k, v)
	}
	u, err := mr.URLPath(pairs...)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidParams, name, err)
	}
	if len(query) == 0 {
		return u.Path, nil
	}
	return u.Path + "?" + query.Encode(), nil
}

// Names returns route names sorted alphabetically.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.routes))
	for _, r := range t.routes {
		names = append(names, r.Name)
	}
	sort.Strings(names)
	return names
}

// ServeHTTP serves the view matching r.URL.Path. Path variables are
// available to the view via mux.Vars.
func (t *Table) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m, err := t.Resolve(r.URL.Path)
	if err != nil {
		if t.notFound != nil {
			t.notFound.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
		return
	}
	m.View.ServeHTTP(w, mux.SetURLVars(r, m.Params))
}

// cleanPath strips query and fragment, and returns the cleaned,
// rooted path without trailing slash.
func cleanPath(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if len(p) == 0 || p[0] != '/' {
		p = "/" + p
	}
	return path.Clean(p)
}

// normalizeTemplate requires a rooted template, and trims its trailing slash.
func normalizeTemplate(p string) (string, error) {
	if len(p) == 0 || p[0] != '/' {
		return "", fmt.Errorf("%w: %q must start with /", ErrInvalidPath, p)
	}
	if strings.ContainsAny(p, "?#") {
		return "", fmt.Errorf("%w: %q contains query or fragment", ErrInvalidPath, p)
	}
	if p != "/" {
		p = strings.TrimRight(p, "/")
	}
	if len(p) == 0 {
		p = "/"
	}
	return p, nil
}
