package route

import (
	"fmt"
	"net/http"
)

// ID identifies one of the application's pages.
type ID int

// Application pages, in menu order.
const (
	Home ID = iota
	Upload
	Data
	Visualization
)

// IDs lists all application pages in menu order.
var IDs = []ID{Home, Upload, Data, Visualization}

var defaults = [...]Route{
	Home: {
		Name:        "home",
		Path:        "/",
		Title:       "Home",
		Description: "this page",
	},
	Upload: {
		Name:        "upload",
		Path:        "/upload",
		Title:       "Upload",
		Description: "upload a hotel reservations YAML or JSON file",
	},
	Data: {
		Name:        "data",
		Path:        "/data",
		Title:       "Data",
		Description: "browse the uploaded hotels, guests and reservations",
	},
	Visualization: {
		Name:        "visualization",
		Path:        "/visualization",
		Title:       "Visualization",
		Description: "charts of the uploaded reservations",
	},
}

// String returns the route name of id.
func (id ID) String() string {
	if id < 0 || int(id) >= len(defaults) {
		return fmt.Sprintf("route.ID(%d)", int(id))
	}
	return defaults[id].Name
}

// Route returns the default route of id, without a view.
func (id ID) Route() Route {
	if id < 0 || int(id) >= len(defaults) {
		return Route{}
	}
	return defaults[id]
}

// Views binds application pages to their views.
type Views map[ID]http.Handler

// Default returns the application route table, binding every page in IDs
// to its view. A page without a view fails with ErrUnbound.
func Default(views Views, opts ...Option) (*Table, error) {
	routes := make([]Route, 0, len(IDs))
	for _, id := range IDs {
		view, ok := views[id]
		if !ok || view == nil {
			return nil, fmt.Errorf("%w: %q", ErrUnbound, id)
		}
		r := id.Route()
		r.View = view
		routes = append(routes, r)
	}
	return NewTable(routes, opts...)
}
