package indexhandler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofu/webnav/dataset"
	"github.com/gofu/webnav/handlers/handlerstest"
	"github.com/gofu/webnav/route"
)

func get(t *testing.T, store dataset.Store) string {
	t.Helper()
	h := handlerstest.Shell(t, "/app/", route.Views{route.Home: New(store)})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	return rec.Body.String()
}

func TestLinks(t *testing.T) {
	t.Parallel()

	body := get(t, &dataset.MemStore{})
	for _, want := range []string{
		`<a href="/app/upload">Upload</a>`,
		`<a href="/app/data">Data</a>`,
		`<a href="/app/visualization">Visualization</a>`,
		"No dataset uploaded yet",
		`href="/app/static/style.css"`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("body lacks %q:\n%s", want, body)
		}
	}
	if strings.Contains(body, `<a href="/app/">Home</a> &ndash;`) {
		t.Fatal("home page links to itself")
	}
}

func TestCounts(t *testing.T) {
	t.Parallel()

	d, err := dataset.Parse(strings.NewReader("hotels: [{name: A}]\nguests: []\nreservations: [{}, {}]\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	store := &dataset.MemStore{}
	_ = store.Replace(context.Background(), d)
	body := get(t, store)
	if !strings.Contains(body, "1 hotels, 0 guests, 2 reservations") {
		t.Fatalf("body lacks counts:\n%s", body)
	}
}
