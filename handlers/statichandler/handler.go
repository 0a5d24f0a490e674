// Package statichandler serves static files.
package statichandler

import (
	_ "embed"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
)

// FaviconURL is the default favicon URL requested by browsers.
const FaviconURL = "/favicon.ico"

var (
	//go:embed style.css
	styleCSS string
	//go:embed favicon.svg
	faviconSVG string
)

type file struct {
	contentType string
	content     string
	etag        string
}

func newFile(contentType, content string) file {
	sum := blake2b.Sum256([]byte(content))
	return file{contentType: contentType, content: content, etag: `"` + hex.EncodeToString(sum[:16]) + `"`}
}

var files = map[string]file{
	"/style.css":   newFile("text/css; charset=utf-8", styleCSS),
	"/favicon.svg": newFile("image/svg+xml", faviconSVG),
	FaviconURL:     newFile("image/svg+xml", faviconSVG),
}

// Handler serves static files by path, relative to its mount point.
type Handler struct{}

func (Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f, ok := files[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", f.contentType)
	w.Header().Set("ETag", f.etag)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	http.ServeContent(w, r, "", time.Time{}, strings.NewReader(f.content))
}
