package server

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gofu/webnav/config"
	"github.com/gofu/webnav/dataset"
	"github.com/gofu/webnav/handlers"
	"github.com/gofu/webnav/handlers/datahandler"
	"github.com/gofu/webnav/handlers/indexhandler"
	"github.com/gofu/webnav/handlers/navhandler"
	"github.com/gofu/webnav/handlers/notfoundhandler"
	"github.com/gofu/webnav/handlers/statichandler"
	"github.com/gofu/webnav/handlers/uploadhandler"
	"github.com/gofu/webnav/handlers/visualhandler"
	"github.com/gofu/webnav/highlight"
	"github.com/gofu/webnav/history"
	"github.com/gofu/webnav/nav"
	"github.com/gofu/webnav/route"
)

// NewServeMux returns an http.Handler that handles the following pages,
// all under conf.BaseURL:
//   - GET / - home page
//   - GET /upload - upload form; POST /upload - upload a dataset
//   - GET /data?section&guest&format - uploaded dataset, as a page, JSON or CSV
//   - GET /visualization?by&format - dataset charts
//   - /api/ - navigation API
//   - GET /static/ - stylesheet and icons
//
// The returned sessions must be pruned by the caller.
func NewServeMux(conf config.Server, store dataset.Store) (*http.ServeMux, *nav.Sessions, error) {
	hist, err := history.New(conf.BaseURL)
	if err != nil {
		return nil, nil, err
	}
	cache := &highlight.Cache{Options: highlight.Options{Style: conf.Style, LineNumbers: true}}
	table, err := route.Default(route.Views{
		route.Home:          indexhandler.New(store),
		route.Upload:        uploadhandler.New(store, conf.MaxUpload),
		route.Data:          datahandler.New(store, cache),
		route.Visualization: visualhandler.New(store),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("route table: %w", err)
	}
	sessions := nav.NewSessions(nav.NewRouter(table, hist))
	sessions.OnChange = logTransition
	shell := nav.NewShell(sessions, notfoundhandler.Handler{})
	shell.Passive = func(r *http.Request) bool { return !handlers.WantsPage(r) }

	base := hist.Base()
	trimmed := strings.TrimSuffix(base, "/")
	mux := http.NewServeMux()
	mux.Handle(statichandler.FaviconURL, statichandler.Handler{})
	mux.Handle(base+"static/", http.StripPrefix(trimmed+"/static", statichandler.Handler{}))
	mux.Handle(base+"api/", navhandler.New(shell, trimmed+"/api"))
	mux.Handle(base, shell)
	if base != "/" {
		mux.Handle(trimmed, shell)
		mux.Handle("/", shell)
	}
	return mux, sessions, nil
}

func logTransition(id string, t nav.Transition) {
	if len(id) > 8 {
		id = id[:8]
	}
	if t.Initial {
		log.Printf("Session %s mounted %s (%s)", id, t.To.Match.Name, t.To.Location)
		return
	}
	log.Printf("Session %s navigated %s -> %s (%s)", id, t.From.Match.Name, t.To.Match.Name, t.To.Location)
}
