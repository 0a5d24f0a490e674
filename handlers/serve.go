// Package handlers contains common functions used by HTTP handlers.
package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"log"
	"net/http"
	"strings"

	"github.com/gofu/webnav/dataset"
	"github.com/gofu/webnav/nav"
	"github.com/gofu/webnav/route"
)

func ServeTemplate(w http.ResponseWriter, r *http.Request, tpl *template.Template, data any) {
	ServeTemplateStatus(w, r, http.StatusOK, tpl, data)
}

func ServeTemplateStatus(w http.ResponseWriter, r *http.Request, status int, tpl *template.Template, data any) {
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		ServeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = buf.WriteTo(w)
}

func ServeJSON(w http.ResponseWriter, r *http.Request, data any) {
	ServeJSONStatus(w, r, http.StatusOK, data)
}

func ServeJSONStatus(w http.ResponseWriter, _ *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

// ErrorResponse is the JSON body of errors served by ServeError.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ServeError logs err, and serves it with the status of ErrorStatus,
// as JSON if the client prefers it, otherwise as text.
func ServeError(w http.ResponseWriter, r *http.Request, err error) {
	status := ErrorStatus(err)
	log.Printf("HTTP %s %s error: %s", r.Method, r.URL, err)
	if WantsJSON(r) {
		ServeJSONStatus(w, r, status, ErrorResponse{Error: err.Error()})
		return
	}
	http.Error(w, err.Error(), status)
}

// ErrorStatus maps err to an HTTP status code.
func ErrorStatus(err error) int {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, route.ErrNotFound),
		errors.Is(err, route.ErrInvalidName),
		errors.Is(err, dataset.ErrNoDataset):
		return http.StatusNotFound
	case errors.Is(err, route.ErrInvalidParams),
		errors.Is(err, dataset.ErrInvalidFormat),
		errors.Is(err, dataset.ErrMissingSection),
		errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, nav.ErrSuperseded):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ErrBadRequest wraps malformed request errors.
var ErrBadRequest = errors.New("bad request")

// FormatParam is the query parameter selecting the response format,
// e.g. ?format=json. It is never a navigation parameter.
const FormatParam = "format"

// Format returns the response format requested with FormatParam, or "".
func Format(r *http.Request) string {
	return r.URL.Query().Get(FormatParam)
}

// WantsJSON reports whether r asks for JSON, via ?format=json or Accept.
func WantsJSON(r *http.Request) bool {
	if f := Format(r); len(f) != 0 {
		return f == "json"
	}
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}

// WantsPage reports whether r asks for an HTML page, rather than JSON
// or an export format.
func WantsPage(r *http.Request) bool {
	if f := Format(r); len(f) != 0 {
		return f == "html"
	}
	return !WantsJSON(r)
}
