package nav

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofu/webnav/history"
	"github.com/gofu/webnav/route"
)

func newTestShell(t *testing.T, base string) *Shell {
	t.Helper()
	notFound := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		cur, _ := FromContext(r.Context())
		_, _ = w.Write([]byte("not found " + cur.Location))
	})
	return NewShell(NewSessions(newTestRouter(t, base)), notFound)
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == CookieName {
			return ck
		}
	}
	t.Fatal("no session cookie")
	return nil
}

func TestShellServesViews(t *testing.T) {
	t.Parallel()

	s := newTestShell(t, "/app/")
	tests := map[string]string{
		"/app/":              "home",
		"/app/upload":        "upload",
		"/app/data":          "data",
		"/app/visualization": "visualization",
	}
	for target, want := range tests {
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s: status %d", target, rec.Code)
		}
		if got := rec.Body.String(); got != want {
			t.Fatalf("GET %s: body %q, want %q", target, got, want)
		}
	}
}

func TestShellSessionTracksActiveRoute(t *testing.T) {
	t.Parallel()

	s := newTestShell(t, "/app/")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app/upload", nil))
	ck := sessionCookie(t, rec)
	if ck.Path != "/app" || !ck.HttpOnly {
		t.Fatalf("cookie = %+v", ck)
	}

	req := httptest.NewRequest(http.MethodGet, "/app/data", nil)
	req.AddCookie(ck)
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	c, ok := s.Sessions().Get(ck.Value)
	if !ok {
		t.Fatal("session lost")
	}
	active, _ := c.Active()
	if active.Match.Name != "data" {
		t.Fatalf("active = %q", active.Match.Name)
	}
	if back, _ := c.Back(); back.Match.Name != "upload" {
		t.Fatalf("back = %q", back.Match.Name)
	}
	if s.Sessions().Len() != 1 {
		t.Fatalf("sessions = %d", s.Sessions().Len())
	}
}

func TestShellBareBaseKeepsSession(t *testing.T) {
	t.Parallel()

	s := newTestShell(t, "/app/")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app/data", nil))
	ck := sessionCookie(t, rec)

	req := httptest.NewRequest(http.MethodGet, "/app", nil)
	req.AddCookie(ck)
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Body.String() != "home" {
		t.Fatalf("body %q", rec.Body.String())
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatal("bare base started a new session")
	}
	c, _ := s.Sessions().Get(ck.Value)
	if back, ok := c.Back(); !ok || back.Match.Name != "data" {
		t.Fatalf("back = %+v, %t", back, ok)
	}

	rec = httptest.NewRecorder()
	newTestShell(t, "/").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if ck := sessionCookie(t, rec); ck.Path != "/" {
		t.Fatalf("root cookie path %q", ck.Path)
	}
}

func TestShellPassiveRequestsDoNotNavigate(t *testing.T) {
	t.Parallel()

	s := newTestShell(t, "/")
	s.Passive = func(r *http.Request) bool { return r.URL.Query().Has("format") }
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/upload", nil))
	ck := sessionCookie(t, rec)

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/data?format=json", nil),
		httptest.NewRequest(http.MethodHead, "/visualization", nil),
	} {
		req.AddCookie(ck)
		rec = httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s %s: status %d", req.Method, req.URL, rec.Code)
		}
	}
	c, _ := s.Sessions().Get(ck.Value)
	active, _ := c.Active()
	if active.Match.Name != "upload" || c.CanBack() {
		t.Fatalf("active = %q, back %t", active.Match.Name, c.CanBack())
	}
}

func TestShellNotFound(t *testing.T) {
	t.Parallel()

	s := newTestShell(t, "/")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/visualization", nil))
	ck := sessionCookie(t, rec)

	req := httptest.NewRequest(http.MethodGet, "/nonexistent", nil)
	req.AddCookie(ck)
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "/nonexistent") {
		t.Fatalf("body %q", rec.Body.String())
	}
	c, _ := s.Sessions().Get(ck.Value)
	active, _ := c.Active()
	if active.Match.Name != "visualization" {
		t.Fatalf("active = %q", active.Match.Name)
	}
}

func TestShellPostDoesNotNavigate(t *testing.T) {
	t.Parallel()

	s := newTestShell(t, "/")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	ck := sessionCookie(t, rec)

	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("x"))
	req.AddCookie(ck)
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Body.String() != "upload" {
		t.Fatalf("body %q", rec.Body.String())
	}
	c, _ := s.Sessions().Get(ck.Value)
	active, _ := c.Active()
	if active.Match.Name != "home" {
		t.Fatalf("active = %q", active.Match.Name)
	}
}

func TestShellViewSeesCurrent(t *testing.T) {
	t.Parallel()

	var got Current
	capture := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got, _ = FromContext(r.Context())
	})
	table, err := route.Default(route.Views{
		route.Home:          namedView("home"),
		route.Upload:        namedView("upload"),
		route.Data:          capture,
		route.Visualization: namedView("visualization"),
	})
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	hist, _ := history.New("/app/")
	s := NewShell(NewSessions(NewRouter(table, hist)), nil)
	s.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/app/data?section=guests", nil))
	if got.Match.Name != "data" || got.Location != "/app/data?section=guests" {
		t.Fatalf("current = %+v", got)
	}
	if got.Controller == nil || got.Router == nil {
		t.Fatal("current lacks controller or router")
	}
}

func TestSessionsPrune(t *testing.T) {
	t.Parallel()

	s := NewSessions(newTestRouter(t, "/"))
	id, _ := s.New()
	if _, ok := s.Get(id); !ok {
		t.Fatal("new session missing")
	}
	if n := s.Prune(time.Hour); n != 0 {
		t.Fatalf("pruned %d fresh sessions", n)
	}
	time.Sleep(5 * time.Millisecond)
	if n := s.Prune(time.Millisecond); n != 1 {
		t.Fatalf("pruned %d, want 1", n)
	}
	if _, ok := s.Get(id); ok {
		t.Fatal("pruned session still present")
	}
	if _, ok := s.Get(""); ok {
		t.Fatal("empty id found")
	}
}

func TestSessionsOnChange(t *testing.T) {
	t.Parallel()

	s := NewSessions(newTestRouter(t, "/"))
	var gotID, gotName string
	s.OnChange = func(id string, tr Transition) {
		gotID, gotName = id, tr.To.Match.Name
	}
	id, c := s.New()
	if _, err := c.Mount("/upload"); err != nil {
		t.Fatalf("mount: %v", err)
	}
	if gotID != id || gotName != "upload" {
		t.Fatalf("OnChange got %q %q", gotID, gotName)
	}
}
