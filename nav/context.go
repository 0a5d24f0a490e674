package nav

import (
	"context"

	"github.com/gofu/webnav/route"
)

type currentKey struct{}

// Current is the navigation a view is being served for.
type Current struct {
	Router     *Router
	Controller *Controller
	// Match is zero when no route matched.
	Match    route.Match
	Location string
}

// WithCurrent returns a copy of ctx carrying cur.
func WithCurrent(ctx context.Context, cur Current) context.Context {
	return context.WithValue(ctx, currentKey{}, cur)
}

// FromContext returns the navigation stored by WithCurrent.
func FromContext(ctx context.Context) (Current, bool) {
	cur, ok := ctx.Value(currentKey{}).(Current)
	return cur, ok
}
