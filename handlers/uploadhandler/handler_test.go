package uploadhandler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofu/webnav/dataset"
	"github.com/gofu/webnav/handlers/handlerstest"
	"github.com/gofu/webnav/route"
)

const doc = `
hotels: [{name: Hotel Zamek}]
guests: [{name: Anna Nowak}, {name: Jan Kowalski}]
reservations: [{status: confirmed}]
`

func newShell(t *testing.T, store dataset.Store, maxBytes int64) http.Handler {
	t.Helper()
	return handlerstest.Shell(t, "/app/", route.Views{route.Upload: New(store, maxBytes)})
}

func TestForm(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	newShell(t, &dataset.MemStore{}, 0).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app/upload", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{`name="file"`, `enctype="multipart/form-data"`, "10 MiB", `href="/app/data"`, `aria-current="page"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("form lacks %q:\n%s", want, body)
		}
	}
}

func TestUploadMultipartRedirects(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(FormField, "reservations.yaml")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = fw.Write([]byte(doc))
	if err = mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/app/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	store := &dataset.MemStore{}
	rec := httptest.NewRecorder()
	newShell(t, store, 0).ServeHTTP(rec, req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	if loc := rec.Header().Get("Location"); loc != "/app/data" {
		t.Fatalf("location %q", loc)
	}
	d, err := store.Latest(context.Background())
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if d.Counts() != (dataset.Counts{Hotels: 1, Guests: 2, Reservations: 1}) {
		t.Fatalf("counts = %+v", d.Counts())
	}
}

func TestUploadJSONResponse(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/app/upload?format=json", strings.NewReader(doc))
	req.Header.Set("Content-Type", "application/yaml")
	rec := httptest.NewRecorder()
	newShell(t, &dataset.MemStore{}, 0).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["message"] != "Data uploaded successfully" || got["guests_count"] != 2.0 || got["hotels_count"] != 1.0 {
		t.Fatalf("response = %v", got)
	}
}

func TestUploadMissingSection(t *testing.T) {
	t.Parallel()

	store := &dataset.MemStore{}
	req := httptest.NewRequest(http.MethodPost, "/app/upload", strings.NewReader("hotels: []\n"))
	rec := httptest.NewRecorder()
	newShell(t, store, 0).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "missing required section: guests") {
		t.Fatalf("body lacks error:\n%s", rec.Body)
	}
	if _, err := store.Latest(context.Background()); !errors.Is(err, dataset.ErrNoDataset) {
		t.Fatalf("store changed: %v", err)
	}
}

func TestUploadInvalidJSONError(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/app/upload", strings.NewReader("hotels: ["))
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	newShell(t, &dataset.MemStore{}, 0).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"error"`) {
		t.Fatalf("body %s", rec.Body)
	}
}

func TestUploadTooLarge(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/app/upload?format=json", strings.NewReader(doc))
	rec := httptest.NewRecorder()
	newShell(t, &dataset.MemStore{}, 16).ServeHTTP(rec, req)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	newShell(t, &dataset.MemStore{}, 0).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/app/upload", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status %d", rec.Code)
	}
}
