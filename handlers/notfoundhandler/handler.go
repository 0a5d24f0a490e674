// Package notfoundhandler serves the page shown for locations no route matches.
package notfoundhandler

import (
	_ "embed"
	"net/http"

	"github.com/gofu/webnav/handlers"
	"github.com/gofu/webnav/nav"
)

// Data for the not found page.
type Data struct {
	handlers.Page
	Location string
	HomeHREF string
}

var (
	//go:embed tpl.gohtml
	tplData string
	tpl     = handlers.NewTemplate(tplData, nil)
)

// Handler serves a 404 page linking back to the home route. The active
// route of the session is not changed.
type Handler struct{}

func (Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if handlers.WantsJSON(r) {
		handlers.ServeJSONStatus(w, r, http.StatusNotFound, handlers.ErrorResponse{Error: "route not found: " + r.URL.Path})
		return
	}
	data := Data{Page: handlers.NewPage(r, "Page not found"), Location: r.URL.RequestURI()}
	if cur, ok := nav.FromContext(r.Context()); ok {
		data.Location = cur.Location
	}
	data.HomeHREF, _ = handlers.Location(r, "home", nil)
	if len(data.HomeHREF) == 0 {
		data.HomeHREF = "/"
	}
	handlers.ServeTemplateStatus(w, r, http.StatusNotFound, tpl, data)
}
