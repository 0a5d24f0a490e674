package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofu/webnav/history"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "webnav.toml")
	if err := os.WriteFile(file, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return file
}

func TestDefaultIsValid(t *testing.T) {
	conf, err := Default().Validate()
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if conf.BaseURL != "/" {
		t.Fatalf("base = %q", conf.BaseURL)
	}
}

func TestLoadPrecedence(t *testing.T) {
	file := writeFile(t, `
addr = "0.0.0.0:8080"
base_url = "/from-file"
session_ttl = "5m"
`)
	t.Setenv("BASE_URL", "/from-env/")
	t.Setenv("WEBNAV_MAX_UPLOAD", "2048")

	conf, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if conf.Addr != "0.0.0.0:8080" {
		t.Fatalf("addr = %q", conf.Addr)
	}
	if conf.BaseURL != "/from-env/" {
		t.Fatalf("base = %q", conf.BaseURL)
	}
	if conf.MaxUpload != 2048 {
		t.Fatalf("max upload = %d", conf.MaxUpload)
	}
	if conf.SessionTTL != 5*time.Minute {
		t.Fatalf("session ttl = %s", conf.SessionTTL)
	}
	if conf.Style != Default().Style {
		t.Fatalf("style = %q", conf.Style)
	}
}

func TestLoadWithoutFile(t *testing.T) {
	t.Setenv("WEBNAV_DATABASE", "/tmp/webnav.db")
	conf, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if conf.Database != "/tmp/webnav.db" || conf.Addr != Default().Addr {
		t.Fatalf("conf = %+v", conf)
	}
}

func TestLoadUnknownKey(t *testing.T) {
	file := writeFile(t, "adr = \"x\"\n")
	if _, err := Load(file); err == nil || !strings.Contains(err.Error(), "adr") {
		t.Fatalf("error = %v", err)
	}
}

func TestLoadBadEnv(t *testing.T) {
	t.Setenv("WEBNAV_SESSION_TTL", "forever")
	_, err := Load("")
	if err == nil || !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("error = %v", err)
	}
}

func TestValidate(t *testing.T) {
	conf := Default()
	conf.Addr = ""
	conf.BaseURL = "http://example.com/app"
	conf.MaxUpload = 0
	conf.SessionTTL = -time.Second
	conf.Style = "no-such-style"
	_, err := conf.Validate()
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("error = %v", err)
	}
	if !errors.Is(err, history.ErrInvalidBase) {
		t.Fatalf("error %v does not wrap ErrInvalidBase", err)
	}
	for _, want := range []string{"addr", "base_url", "max_upload", "session_ttl", "style"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q lacks %s", err, want)
		}
	}
}

func TestValidateNormalizesBase(t *testing.T) {
	conf := Default()
	conf.BaseURL = "app"
	got, err := conf.Validate()
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got.BaseURL != "/app/" {
		t.Fatalf("base = %q", got.BaseURL)
	}
}
