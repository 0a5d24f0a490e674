// Package handlerstest serves views through the navigation shell in tests.
package handlerstest

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gofu/webnav/handlers"
	"github.com/gofu/webnav/history"
	"github.com/gofu/webnav/nav"
	"github.com/gofu/webnav/route"
)

// Stub is a view that writes its name.
type Stub string

func (s Stub) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	_, _ = fmt.Fprint(w, string(s))
}

// Shell returns the application shell under base with views bound to their
// pages, and a Stub bound to every other page. Requests for other than an
// HTML page do not navigate, as in the server.
func Shell(t testing.TB, base string, views route.Views) *nav.Shell {
	t.Helper()
	all := route.Views{}
	for _, id := range route.IDs {
		all[id] = Stub(id.String())
	}
	for id, v := range views {
		all[id] = v
	}
	table, err := route.Default(all)
	if err != nil {
		t.Fatalf("route table: %v", err)
	}
	hist, err := history.New(base)
	if err != nil {
		t.Fatalf("history %q: %v", base, err)
	}
	shell := nav.NewShell(nav.NewSessions(nav.NewRouter(table, hist)), nil)
	shell.Passive = func(r *http.Request) bool { return !handlers.WantsPage(r) }
	return shell
}
