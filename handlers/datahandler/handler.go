// Package datahandler serves the uploaded dataset, one section at a time.
package datahandler

import (
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/gofu/webnav/dataset"
	"github.com/gofu/webnav/handlers"
	"github.com/gofu/webnav/highlight"
	"gopkg.in/yaml.v3"
)

// GuestParam filters reservations by guest e-mail, e.g. ?guest=anna@example.com.
const GuestParam = "guest"

// RoomsExport is the CSV export of the rooms of all hotels, one row per room:
// ?section=rooms&format=csv.
const RoomsExport = "rooms"

// guestField holds the guest e-mail of a reservation.
const guestField = "guest_email"

// Tab links to one dataset section.
type Tab struct {
	Section dataset.Section
	HREF    string
	Count   int
	Active  bool
}

// Data for the data page.
type Data struct {
	handlers.Page
	// Empty is true before the first upload.
	Empty      bool
	UploadHREF string
	ID         string
	Checksum   string
	UploadedAt time.Time
	Tabs       []Tab
	Section    dataset.Section
	Source     template.HTML
	// Guest filters the reservations; Guests lists the e-mails to choose from.
	Guest    string
	Guests   []string
	CSVHREF  string
	RoomsCSV string
}

var (
	//go:embed tpl.gohtml
	tplData string
	tpl     = handlers.NewTemplate(tplData, nil)
)

// Handler serves the latest dataset as highlighted YAML, as JSON with
// ?format=json, or as CSV with ?format=csv. The section is chosen with
// ?section=, reservations are filtered with ?guest=.
type Handler struct {
	store dataset.Store
	cache *highlight.Cache
}

// New requires non-nil store and cache.
func New(store dataset.Store, cache *highlight.Cache) Handler {
	return Handler{store: store, cache: cache}
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if handlers.Format(r) == "csv" {
		h.serveCSV(w, r)
		return
	}
	section := dataset.Hotels
	if s := q.Get("section"); len(s) != 0 {
		var ok bool
		if section, ok = dataset.ParseSection(s); !ok {
			handlers.ServeError(w, r, fmt.Errorf("%w: unknown section %q", handlers.ErrBadRequest, s))
			return
		}
	}
	guest := q.Get(GuestParam)
	d, err := h.store.Latest(r.Context())
	if handlers.WantsJSON(r) {
		if err != nil {
			handlers.ServeError(w, r, err)
			return
		}
		handlers.ServeJSON(w, r, forGuest(d, guest))
		return
	}
	data := Data{Page: handlers.NewPage(r, ""), Section: section, Guest: guest}
	data.UploadHREF, _ = handlers.Location(r, "upload", nil)
	if errors.Is(err, dataset.ErrNoDataset) {
		data.Empty = true
		handlers.ServeTemplate(w, r, tpl, data)
		return
	}
	if err != nil {
		handlers.ServeError(w, r, err)
		return
	}
	all := d
	d = forGuest(d, guest)
	data.ID, data.Checksum, data.UploadedAt = d.ID, d.Checksum, d.UploadedAt
	for _, s := range dataset.Sections {
		params := map[string]string{"section": string(s)}
		if s == dataset.Reservations && len(guest) != 0 {
			params[GuestParam] = guest
		}
		href, _ := handlers.Location(r, "data", params)
		data.Tabs = append(data.Tabs, Tab{
			Section: s,
			HREF:    href,
			Count:   len(d.Section(s)),
			Active:  s == section,
		})
	}
	for _, b := range dataset.GroupBy(all.Reservations, guestField) {
		if b.Key != dataset.NoValue {
			data.Guests = append(data.Guests, b.Key)
		}
	}
	csvParams := map[string]string{"section": string(section), handlers.FormatParam: "csv"}
	if len(guest) != 0 && section == dataset.Reservations {
		csvParams[GuestParam] = guest
	}
	data.CSVHREF, _ = handlers.Location(r, "data", csvParams)
	data.RoomsCSV, _ = handlers.Location(r, "data", map[string]string{"section": RoomsExport, handlers.FormatParam: "csv"})

	key := d.Checksum + "/" + string(section)
	if len(guest) != 0 && section == dataset.Reservations {
		key += "/" + guest
	}
	data.Source, err = h.cache.Highlight(key, "yaml", func() (string, error) {
		out, err := yaml.Marshal(map[string][]dataset.Record{string(section): d.Section(section)})
		return string(out), err
	})
	if err != nil {
		handlers.ServeError(w, r, err)
		return
	}
	handlers.ServeTemplate(w, r, tpl, data)
}

// serveCSV writes a section, or RoomsExport, as CSV. Record sections have a
// column per scalar field; nested values such as hotel rooms are left out.
func (h Handler) serveCSV(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("section")
	if len(name) == 0 {
		name = string(dataset.Hotels)
	}
	section, ok := dataset.ParseSection(name)
	if !ok && name != RoomsExport {
		handlers.ServeError(w, r, fmt.Errorf("%w: unknown section %q", handlers.ErrBadRequest, name))
		return
	}
	d, err := h.store.Latest(r.Context())
	if err != nil {
		handlers.ServeError(w, r, err)
		return
	}

	var header []string
	var rows [][]string
	if name == RoomsExport {
		header = dataset.RoomHeader
		for _, room := range dataset.Rooms(d.Hotels) {
			rows = append(rows, room.Row())
		}
	} else {
		// Columns come from the whole section, so a filter matching nothing
		// still yields the header.
		header = dataset.Fields(d.Section(section))
		records := forGuest(d, r.URL.Query().Get(GuestParam)).Section(section)
		for _, rec := range records {
			row := make([]string, len(header))
			for i, f := range header {
				row[i] = rec.Value(f)
			}
			rows = append(rows, row)
		}
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".csv"))
	if r.Method == http.MethodHead {
		return
	}
	cw := csv.NewWriter(w)
	_ = cw.Write(header)
	if err = cw.WriteAll(rows); err != nil {
		log.Printf("HTTP %s %s error: %s", r.Method, r.URL, err)
	}
}

// forGuest returns d with only the reservations of guest, or d itself
// if guest is empty.
func forGuest(d *dataset.Dataset, guest string) *dataset.Dataset {
	if len(guest) == 0 {
		return d
	}
	f := *d
	f.Reservations = dataset.Filter(d.Reservations, guestField, guest)
	if f.Reservations == nil {
		f.Reservations = []dataset.Record{}
	}
	return &f
}
