package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/gofu/webnav/route"
)

func TestList(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := run(&buf, "/app", []string{"list"}); err != nil {
		t.Fatalf("list: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	for i, name := range []string{"home", "upload", "data", "visualization"} {
		if !strings.HasPrefix(lines[i+1], name) {
			t.Fatalf("line %d = %q, want %s", i+1, lines[i+1], name)
		}
	}
	if !strings.Contains(lines[4], "/app/visualization") {
		t.Fatalf("line 4 = %q", lines[4])
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := run(&buf, "/app/", []string{"resolve", "/app/data?section=guests"}); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got := buf.String(); got != "data\n" {
		t.Fatalf("output %q", got)
	}
	if err := run(&buf, "/app/", []string{"resolve", "/app/nonexistent"}); !errors.Is(err, route.ErrNotFound) {
		t.Fatalf("error = %v", err)
	}
}

func TestURL(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := run(&buf, "/", []string{"url", "data", "section=guests"}); err != nil {
		t.Fatalf("url: %v", err)
	}
	if got := buf.String(); got != "/data?section=guests\n" {
		t.Fatalf("output %q", got)
	}
	if err := run(&buf, "/", []string{"url", "reports"}); !errors.Is(err, route.ErrInvalidName) {
		t.Fatalf("error = %v", err)
	}
	if err := run(&buf, "/", []string{"url", "data", "section"}); !errors.Is(err, errUsage) {
		t.Fatalf("error = %v", err)
	}
}

func TestUsage(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	for _, args := range [][]string{nil, {"resolve"}, {"url"}, {"frobnicate"}} {
		if err := run(&buf, "/", args); !errors.Is(err, errUsage) {
			t.Fatalf("run(%q) error = %v", args, err)
		}
	}
}
