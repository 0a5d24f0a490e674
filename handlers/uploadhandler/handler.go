// Package uploadhandler serves the dataset upload form, and accepts uploads.
package uploadhandler

import (
	_ "embed"
	"fmt"
	"mime"
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/gofu/webnav/dataset"
	"github.com/gofu/webnav/handlers"
)

// DefaultMaxBytes limits uploads when no limit is configured.
const DefaultMaxBytes = 10 << 20

// FormField is the multipart field holding the uploaded file.
const FormField = "file"

// Response to a successful JSON upload.
type Response struct {
	Message string `json:"message"`
	dataset.Counts
	ID       string `json:"id"`
	Checksum string `json:"checksum"`
}

// Data for the upload page.
type Data struct {
	handlers.Page
	Field string
	// Limit is the human readable upload size limit.
	Limit string
	Error string
}

var (
	//go:embed tpl.gohtml
	tplData string
	tpl     = handlers.NewTemplate(tplData, nil)
)

// Handler serves the upload form on GET, and replaces the stored dataset
// with the uploaded document on POST.
type Handler struct {
	store    dataset.Store
	maxBytes int64
}

// New requires non-nil store. Non-positive maxBytes is DefaultMaxBytes.
func New(store dataset.Store, maxBytes int64) Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return Handler{store: store, maxBytes: maxBytes}
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		h.serveForm(w, r, http.StatusOK, nil)
	case http.MethodPost:
		h.upload(w, r)
	default:
		w.Header().Set("Allow", "GET, HEAD, POST")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

func (h Handler) serveForm(w http.ResponseWriter, r *http.Request, status int, err error) {
	data := Data{Page: handlers.NewPage(r, ""), Field: FormField, Limit: humanize.IBytes(uint64(h.maxBytes))}
	if err != nil {
		data.Error = err.Error()
	}
	handlers.ServeTemplateStatus(w, r, status, tpl, data)
}

func (h Handler) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	d, err := h.parse(r)
	if err == nil {
		err = h.store.Replace(r.Context(), d)
	}
	if err != nil {
		if handlers.WantsJSON(r) || handlers.ErrorStatus(err) == http.StatusInternalServerError {
			handlers.ServeError(w, r, err)
			return
		}
		h.serveForm(w, r, handlers.ErrorStatus(err), err)
		return
	}
	if handlers.WantsJSON(r) {
		handlers.ServeJSON(w, r, Response{
			Message:  "Data uploaded successfully",
			Counts:   d.Counts(),
			ID:       d.ID,
			Checksum: d.Checksum,
		})
		return
	}
	location, err := handlers.Location(r, "data", nil)
	if err != nil {
		handlers.ServeError(w, r, err)
		return
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// parse reads the dataset from the multipart file field, or from the
// request body for any other content type.
func (h Handler) parse(r *http.Request) (*dataset.Dataset, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return dataset.Parse(r.Body)
	}
	f, _, err := r.FormFile(FormField)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", handlers.ErrBadRequest, FormField, err)
	}
	defer func() { _ = f.Close() }()
	return dataset.Parse(f)
}
