package handlers

import (
	_ "embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gofu/webnav/nav"
)

var (
	//go:embed shell.gohtml
	shellData string
	shellTpl  = template.Must(template.New("shell").Funcs(Funcs).Parse(shellData))
)

// ErrNoNavigation is returned for requests not served by the navigation shell.
var ErrNoNavigation = errors.New("request has no navigation")

// Funcs are available to every page template.
var Funcs = template.FuncMap{
	"formatTime": func(t time.Time) string { return t.UTC().Format("2006-01-02 15:04:05 MST") },
}

// NewTemplate parses page with the "header" and "footer" templates of the
// application shell, and funcs in addition to Funcs.
func NewTemplate(page string, funcs template.FuncMap) *template.Template {
	tpl := template.Must(shellTpl.Clone())
	if funcs != nil {
		tpl.Funcs(funcs)
	}
	return template.Must(tpl.New("page").Parse(page))
}

// Page is the application shell around a view.
type Page struct {
	Title  string
	Active string
	Menu   []nav.MenuItem
	// Static is the location of static assets, with a trailing slash.
	Static     string
	CanBack    bool
	CanForward bool
	API        string
}

// NewPage returns the shell of the view served for r, titled by the
// matched route unless title is set.
func NewPage(r *http.Request, title string) Page {
	cur, ok := nav.FromContext(r.Context())
	if !ok {
		return Page{Title: title, Static: "/static/", API: "/api/"}
	}
	if len(title) == 0 {
		title = cur.Match.Title
	}
	p := Page{
		Title:  title,
		Active: cur.Match.Name,
		Menu:   cur.Router.Menu(cur.Match.Name),
		Static: cur.Router.History().Location("/static/"),
		API:    cur.Router.History().Location("/api/"),
	}
	if c := cur.Controller; c != nil {
		p.CanBack = c.CanBack()
		p.CanForward = c.CanForward()
	}
	return p
}

// Location returns the location of route name for the view served for r.
func Location(r *http.Request, name string, params map[string]string) (string, error) {
	cur, ok := nav.FromContext(r.Context())
	if !ok {
		return "", ErrNoNavigation
	}
	return cur.Router.Navigate(name, params)
}
