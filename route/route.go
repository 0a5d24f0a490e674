// Package route declares the static table binding navigable paths to views.
package route

import (
	"errors"
	"net/http"
)

var (
	// ErrNotFound is returned when no route matches a path.
	ErrNotFound = errors.New("route not found")
	// ErrInvalidName is returned when navigating to an unregistered route name.
	ErrInvalidName = errors.New("invalid route name")
	// ErrInvalidParams is returned when route parameters do not fill the path template.
	ErrInvalidParams = errors.New("invalid route params")
	// ErrDuplicate is returned when two routes share a name or a path.
	ErrDuplicate = errors.New("duplicate route")
	// ErrUnbound is returned when a route has no view.
	ErrUnbound = errors.New("unbound route view")
	// ErrInvalidPath is returned for malformed path templates.
	ErrInvalidPath = errors.New("invalid route path")
)

// Route binds a path template and a symbolic name to a view.
type Route struct {
	// Name is the unique symbolic identifier used for programmatic navigation.
	Name string `json:"name"`
	// Path template, relative to the base path. Variables use
	// the {name} or {name:regexp} syntax.
	Path string `json:"path"`
	// Title shown in navigation menus.
	Title string `json:"title,omitempty"`
	// Description of the page the route navigates to.
	Description string `json:"description,omitempty"`
	// View renders the page. The table does not own it.
	View http.Handler `json:"-"`
}

// Match is the result of resolving a path.
type Match struct {
	Route
	// Params holds path variables extracted from the matched path.
	Params map[string]string `json:"params,omitempty"`
}
