// Package indexhandler serves the home page.
package indexhandler

import (
	_ "embed"
	"errors"
	"net/http"
	"time"

	"github.com/gofu/webnav/dataset"
	"github.com/gofu/webnav/handlers"
)

// Link shown on the home page.
type Link struct {
	// Text of the link.
	Text string
	// HREF of the link.
	HREF string
	// Description of the page the link navigates to.
	Description string
}

// Data for the home page.
type Data struct {
	handlers.Page
	// Links to every other page.
	Links []Link
	// Counts of the latest dataset, nil before the first upload.
	Counts     *dataset.Counts
	UploadedAt time.Time
}

var (
	//go:embed tpl.gohtml
	tplData string
	tpl     = handlers.NewTemplate(tplData, nil)
)

// Handler serves the home page.
type Handler struct {
	store dataset.Store
}

// New requires non-nil store.
func New(store dataset.Store) Handler {
	return Handler{store: store}
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	data := Data{Page: handlers.NewPage(r, "")}
	for _, item := range data.Menu {
		if item.Active {
			continue
		}
		data.Links = append(data.Links, Link{Text: item.Title, HREF: item.Href, Description: item.Description})
	}
	d, err := h.store.Latest(r.Context())
	switch {
	case err == nil:
		counts := d.Counts()
		data.Counts = &counts
		data.UploadedAt = d.UploadedAt
	case !errors.Is(err, dataset.ErrNoDataset):
		handlers.ServeError(w, r, err)
		return
	}
	handlers.ServeTemplate(w, r, tpl, data)
}
