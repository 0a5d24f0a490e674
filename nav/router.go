// Package nav composes the route table with the web history strategy,
// and tracks the active route of each browser session.
package nav

import (
	"fmt"
	"net/url"

	"github.com/gofu/webnav/history"
	"github.com/gofu/webnav/route"
)

// Router is the route table bound to a history strategy. It is immutable,
// and safe for concurrent use.
type Router struct {
	table   *route.Table
	history history.Web
}

// NewRouter requires non-nil table.
func NewRouter(table *route.Table, hist history.Web) *Router {
	return &Router{table: table, history: hist}
}

// Table returns the route table.
func (r *Router) Table() *route.Table {
	return r.table
}

// History returns the history strategy.
func (r *Router) History() history.Web {
	return r.history
}

// Resolve returns the route matching location, an address under the base
// path, optionally with query. Locations outside the base are not found.
func (r *Router) Resolve(location string) (route.Match, error) {
	u, err := url.Parse(location)
	if err != nil {
		return route.Match{}, fmt.Errorf("%w: %v", route.ErrNotFound, err)
	}
	p, ok := r.history.Strip(u.Path)
	if !ok {
		return route.Match{}, fmt.Errorf("%w: %q outside base %q", route.ErrNotFound, u.Path, r.history.Base())
	}
	return r.table.Resolve(p)
}

// Navigate returns the location of the route registered under name.
func (r *Router) Navigate(name string, params map[string]string) (string, error) {
	p, err := r.table.Path(name, params)
	if err != nil {
		return "", err
	}
	return r.history.Location(p), nil
}

// MenuItem is a navigation link to a route.
type MenuItem struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Path        string `json:"path"`
	Href        string `json:"location"`
	Active      bool   `json:"active,omitempty"`
}

// Menu returns links to all routes without path variables, in table order,
// marking the route named active.
func (r *Router) Menu(active string) []MenuItem {
	routes := r.table.Routes()
	items := make([]MenuItem, 0, len(routes))
	for _, rt := range routes {
		href, err := r.Navigate(rt.Name, nil)
		if err != nil {
			continue
		}
		title := rt.Title
		if len(title) == 0 {
			title = rt.Name
		}
		items = append(items, MenuItem{
			Name:        rt.Name,
			Title:       title,
			Description: rt.Description,
			Path:        rt.Path,
			Href:        href,
			Active:      rt.Name == active,
		})
	}
	return items
}
