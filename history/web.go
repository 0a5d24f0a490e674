// Package history maps route paths to shareable browser addresses,
// using the native path-based history under a base path.
package history

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// ErrInvalidBase is returned for base paths that are not plain URL paths.
var ErrInvalidBase = errors.New("invalid base path")

// Web is the path-based history strategy: every route path is served
// under Base, so navigations are reflected in the address bar and
// support back/forward semantics.
type Web struct {
	base string
}

// New returns a Web strategy for base, normalized by NormalizeBase.
func New(base string) (Web, error) {
	b, err := NormalizeBase(base)
	if err != nil {
		return Web{}, err
	}
	return Web{base: b}, nil
}

// Base returns the normalized base path, with leading and trailing slash.
func (w Web) Base() string {
	if len(w.base) == 0 {
		return "/"
	}
	return w.base
}

// Location returns the address of route path p, prefixed with the base path.
// A query string in p is preserved.
func (w Web) Location(p string) string {
	return w.Base() + strings.TrimLeft(p, "/")
}

// Strip removes the base path from request path p, and returns the route
// path relative to the base. It reports false if p is outside the base.
func (w Web) Strip(p string) (string, bool) {
	base := w.Base()
	if base == "/" {
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		return p, true
	}
	if p == strings.TrimSuffix(base, "/") {
		return "/", true
	}
	rest, ok := cutPrefix(p, base)
	if !ok {
		return p, false
	}
	return "/" + rest, true
}

// NormalizeBase runs path.Clean on base, replaces backslashes with slashes,
// and ensures a leading and trailing slash. Empty base is "/".
func NormalizeBase(base string) (string, error) {
	base = strings.TrimSpace(base)
	if len(base) == 0 {
		return "/", nil
	}
	if strings.Contains(base, "://") || strings.ContainsAny(base, "?#") {
		return "", fmt.Errorf("%w: %q", ErrInvalidBase, base)
	}
	base = path.Clean("/" + strings.ReplaceAll(base, "\\", "/"))
	if base == "/" {
		return base, nil
	}
	return base + "/", nil
}

// cutPrefix trims prefix from s and reports whether prefix was found and removed.
func cutPrefix(s, prefix string) (string, bool) {
	if strings.HasPrefix(s, prefix) {
		return s[len(prefix):], true
	}
	return s, false
}
