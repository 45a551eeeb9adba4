package pathutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"":            "",
		"/a/b/":       "/a/b",
		"/a/./b/../c": "/a/c",
		"rel/dir/":    "rel/dir",
	}
	for in, want := range tests {
		if got := Normalize(in); got != filepath.FromSlash(want) {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResolveExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}
	got, err := Resolve("~/projects/")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if want := filepath.Join(home, "projects"); got != want {
		t.Fatalf("Resolve = %q, want %q", got, want)
	}
}

func TestResolveMakesAbsolute(t *testing.T) {
	got, err := Resolve("some/dir")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !filepath.IsAbs(got) {
		t.Fatalf("expected absolute path, got %q", got)
	}
}
