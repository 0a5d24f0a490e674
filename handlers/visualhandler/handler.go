// Package visualhandler serves charts of the uploaded reservations.
package visualhandler

import (
	_ "embed"
	"errors"
	"net/http"

	"github.com/gofu/webnav/dataset"
	"github.com/gofu/webnav/handlers"
	"golang.org/x/exp/slices"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultField groups reservations when ?by= is not set.
const DefaultField = "status"

// Languages numbers can be formatted in.
var Languages = []language.Tag{language.English, language.Polish, language.German}

var matcher = language.NewMatcher(Languages)

// Bar of a chart.
type Bar struct {
	Label string
	Value string
	// Percent of the largest bar, 0-100.
	Percent int
}

// Chart is a titled set of bars.
type Chart struct {
	Title string
	Bars  []Bar
}

// Option of the group-by selector.
type Option struct {
	Field    string
	Selected bool
}

// RoomRow is an available room, formatted for display.
type RoomRow struct {
	Hotel    string
	Location string
	Number   string
	Type     string
	Price    string
}

// Data for the visualization page.
type Data struct {
	handlers.Page
	Empty      bool
	UploadHREF string
	Charts     []Chart
	Fields     []Option
	By         string
	// Available lists the rooms that can be booked.
	Available []RoomRow
}

// Summary is the JSON form of the charts.
type Summary struct {
	Counts dataset.Counts       `json:"counts"`
	By     string               `json:"by"`
	Groups []dataset.Bucket     `json:"groups"`
	Hotels []dataset.HotelStats `json:"hotels"`
	// Available rooms of all hotels, in document order.
	Available []dataset.Room `json:"available_rooms"`
}

var (
	//go:embed tpl.gohtml
	tplData string
	tpl     = handlers.NewTemplate(tplData, nil)
)

// Handler serves the charts.
type Handler struct {
	store dataset.Store
}

// New requires non-nil store.
func New(store dataset.Store) Handler {
	return Handler{store: store}
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	by := r.URL.Query().Get("by")
	if len(by) == 0 {
		by = DefaultField
	}
	d, err := h.store.Latest(r.Context())
	if handlers.WantsJSON(r) {
		if err != nil {
			handlers.ServeError(w, r, err)
			return
		}
		handlers.ServeJSON(w, r, Summary{
			Counts:    d.Counts(),
			By:        by,
			Groups:    dataset.GroupBy(d.Reservations, by),
			Hotels:    dataset.RoomStats(d.Hotels),
			Available: nonNil(dataset.AvailableRooms(d.Hotels)),
		})
		return
	}
	data := Data{Page: handlers.NewPage(r, ""), By: by}
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
	p := Printer(r)
	counts := d.Counts()
	data.Charts = append(data.Charts,
		countChart(p, "Records per section", []dataset.Bucket{
			{Key: string(dataset.Hotels), Count: counts.Hotels},
			{Key: string(dataset.Guests), Count: counts.Guests},
			{Key: string(dataset.Reservations), Count: counts.Reservations},
		}),
		countChart(p, "Reservations by "+by, dataset.GroupBy(d.Reservations, by)),
	)
	if stats := dataset.RoomStats(d.Hotels); len(stats) != 0 {
		data.Charts = append(data.Charts, priceChart(p, stats))
	}
	for _, room := range dataset.AvailableRooms(d.Hotels) {
		data.Available = append(data.Available, RoomRow{
			Hotel:    room.Hotel,
			Location: room.Location,
			Number:   room.Number,
			Type:     room.Type,
			Price:    p.Sprintf("%.2f", room.Price),
		})
	}
	fields := dataset.Fields(d.Reservations)
	if !slices.Contains(fields, by) {
		fields = append(fields, by)
		slices.Sort(fields)
	}
	for _, f := range fields {
		data.Fields = append(data.Fields, Option{Field: f, Selected: f == by})
	}
	handlers.ServeTemplate(w, r, tpl, data)
}

// Printer formats numbers in the language preferred by r's Accept-Language.
func Printer(r *http.Request) *message.Printer {
	tags, _, _ := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	tag, _, _ := matcher.Match(tags...)
	return message.NewPrinter(tag)
}

func countChart(p *message.Printer, title string, buckets []dataset.Bucket) Chart {
	c := Chart{Title: title}
	var top int
	for _, b := range buckets {
		if b.Count > top {
			top = b.Count
		}
	}
	for _, b := range buckets {
		c.Bars = append(c.Bars, Bar{
			Label:   b.Key,
			Value:   p.Sprintf("%d", b.Count),
			Percent: percent(float64(b.Count), float64(top)),
		})
	}
	return c
}

func priceChart(p *message.Printer, stats []dataset.HotelStats) Chart {
	c := Chart{Title: "Average room price"}
	var top float64
	for _, s := range stats {
		if s.AveragePrice > top {
			top = s.AveragePrice
		}
	}
	for _, s := range stats {
		c.Bars = append(c.Bars, Bar{
			Label:   s.Name,
			Value:   p.Sprintf("%.2f (%d/%d rooms available)", s.AveragePrice, s.Available, s.Rooms),
			Percent: percent(s.AveragePrice, top),
		})
	}
	return c
}

func percent(v, top float64) int {
	if top <= 0 {
		return 0
	}
	return int(v / top * 100)
}

func nonNil(rooms []dataset.Room) []dataset.Room {
	if rooms == nil {
		return []dataset.Room{}
	}
	return rooms
}
