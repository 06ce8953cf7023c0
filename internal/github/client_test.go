package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParseRepoURL(t *testing.T) {
	owner, repo, err := ParseRepoURL("https://github.com/octocat/hello-world")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if owner != "octocat" || repo != "hello-world" {
		t.Fatalf("got %s/%s", owner, repo)
	}

	if _, repo, err = ParseRepoURL("https://github.com/octocat/hello.git"); err != nil || repo != "hello" {
		t.Fatalf(".git suffix not stripped: %q %v", repo, err)
	}

	for _, bad := range []string{"", "https://gitlab.com/a/b", "https://github.com/solo", "not a url ://"} {
		if _, _, err := ParseRepoURL(bad); !errors.Is(err, ErrInvalidRepoURL) {
			t.Fatalf("ParseRepoURL(%q) = %v, want ErrInvalidRepoURL", bad, err)
		}
	}
}

func TestFetchRepoContext(t *testing.T) {
	readme := base64.StdEncoding.EncodeToString([]byte("# Hello\nA demo repo."))
	manifest := base64.StdEncoding.EncodeToString([]byte(`{"name":"demo"}`))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/octocat/demo":
			json.NewEncoder(w).Encode(map[string]any{
				"description": "A demo",
				"language":    "Go",
				"topics":      []string{"cli"},
			})
		case "/repos/octocat/demo/readme":
			json.NewEncoder(w).Encode(map[string]string{"content": readme, "encoding": "base64"})
		case "/repos/octocat/demo/contents":
			json.NewEncoder(w).Encode([]map[string]string{
				{"name": "package.json", "type": "file"},
				{"name": "main.go", "type": "file"},
			})
		case "/repos/octocat/demo/contents/package.json":
			json.NewEncoder(w).Encode(map[string]string{"content": manifest, "encoding": "base64"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	rc, err := c.FetchRepoContext(context.Background(), "https://github.com/octocat/demo")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if rc.Description != "A demo" || rc.Language != "Go" {
		t.Fatalf("metadata = %+v", rc)
	}
	if rc.Readme != "# Hello\nA demo repo." {
		t.Fatalf("readme = %q", rc.Readme)
	}
	if len(rc.RootFiles) != 2 {
		t.Fatalf("root files = %v", rc.RootFiles)
	}
	if rc.Manifests["package.json"] != `{"name":"demo"}` {
		t.Fatalf("manifests = %v", rc.Manifests)
	}
}

func TestFetchRepoContext_MetadataFailureIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	if _, err := c.FetchRepoContext(context.Background(), "https://github.com/octocat/demo"); err == nil {
		t.Fatal("expected error when metadata fetch fails")
	}
}
