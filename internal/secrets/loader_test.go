package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	if err := os.WriteFile(path, []byte("  from-file\n"), 0o600); err != nil {
		t.Fatalf("writing key file: %v", err)
	}
	t.Setenv("ATS_TEST_KEY", "from-env")

	got, err := Load(Source{Name: "gemini api key", File: path, Env: "ATS_TEST_KEY", Value: "inline"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "from-file" {
		t.Fatalf("expected file secret, got %q", got)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ATS_TEST_KEY", " from-env ")

	got, err := Load(Source{Env: "ATS_TEST_KEY", Value: "inline"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "from-env" {
		t.Fatalf("expected env secret, got %q", got)
	}

	t.Setenv("ATS_TEST_KEY", "")
	got, err = Load(Source{Env: "ATS_TEST_KEY", Value: "inline"})
	if err != nil || got != "inline" {
		t.Fatalf("expected inline fallback, got %q, %v", got, err)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty")
	if err := os.WriteFile(empty, []byte("  \n"), 0o600); err != nil {
		t.Fatalf("writing key file: %v", err)
	}

	tests := []struct {
		name string
		src  Source
		want string
	}{
		{name: "nothing configured", src: Source{Name: "gemini api key"}, want: "gemini api key is not configured"},
		{name: "default name", src: Source{}, want: "secret is not configured"},
		{name: "empty file", src: Source{File: empty}, want: "is empty"},
		{name: "missing file", src: Source{File: filepath.Join(dir, "absent")}, want: "reading secret from file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.src)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
