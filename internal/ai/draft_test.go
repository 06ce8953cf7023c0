package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"phPortfolio/internal/github"
)

func TestToEntity(t *testing.T) {
	raw := `{
		"title": "Pipeline",
		"subtitle": "Streams at scale",
		"category": "project",
		"tags": ["Go", "Kafka"],
		"urls": [
			{"type": "github", "url": "https://github.com/x/pipeline", "label": "Source Code"},
			{"type": "demo", "url": "null", "label": "Live Demo"}
		],
		"media": {"gif_url": "https://raw.example/demo.gif", "image_url": "https://raw.example/cover.png"},
		"translations": {
			"en": {"summary": "Does things.", "description": "<h3>Why</h3>"},
			"es": {"summary": "Hace cosas.", "description": "<h3>Por qué</h3>"}
		}
	}`
	var draft ProjectDraft
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		t.Fatalf("unmarshal draft: %v", err)
	}

	e := draft.ToEntity()
	if e.ID != nil {
		t.Fatal("draft entity must not carry an id")
	}
	if len(e.Translations) != 2 || e.Translations[0].Lang != "es" {
		t.Fatalf("translations = %+v", e.Translations)
	}
	if e.Translations[0].Title != "Pipeline" || e.Translations[0].Summary != "Hace cosas." {
		t.Fatalf("es translation = %+v", e.Translations[0])
	}
	// "null" 字面量的 demo 链接被丢弃，只剩 github 行。
	if len(e.URLs) != 1 || e.URLs[0].URLType != "github" || e.URLs[0].Order != 0 {
		t.Fatalf("urls = %+v", e.URLs)
	}
	if len(e.Images) != 2 {
		t.Fatalf("images = %+v", e.Images)
	}
	if e.Images[0].Type != "gif" || e.Images[0].IsFeatured {
		t.Fatalf("gif row = %+v", e.Images[0])
	}
	if e.Images[1].Type != "image" || !e.Images[1].IsFeatured {
		t.Fatalf("image row = %+v", e.Images[1])
	}
}

func TestToEntity_DefaultsCategory(t *testing.T) {
	e := (&ProjectDraft{Title: "X"}).ToEntity()
	if e.Category != "project" {
		t.Fatalf("category = %q", e.Category)
	}
}

func TestAnalyzeRepo_StripsCodeFences(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		draft := "```json\n{\"title\": \"Demo\", \"category\": \"project\"}\n```"
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]string{{"text": draft}}}},
			},
		})
	}))
	defer srv.Close()

	g := NewGenerator(NewClient(srv.URL, "test-key", ""))
	draft, err := g.AnalyzeRepo(context.Background(), &github.RepoContext{Owner: "x", Repo: "demo", HTMLURL: "https://github.com/x/demo"}, "")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if draft.Title != "Demo" {
		t.Fatalf("title = %q", draft.Title)
	}
}

func TestAnalyzeRepo_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{"error": map[string]string{"message": "model not found"}})
	}))
	defer srv.Close()

	g := NewGenerator(NewClient(srv.URL, "test-key", ""))
	if _, err := g.AnalyzeRepo(context.Background(), &github.RepoContext{HTMLURL: "https://github.com/x/demo"}, "ghost-model"); err == nil {
		t.Fatal("expected provider error to surface")
	}
}

func TestToEntity_GifOnlyMedia(t *testing.T) {
	draft := &ProjectDraft{Title: "Animado"}
	draft.Media.GifURL = "https://raw.example/only.gif"
	e := draft.ToEntity()
	if len(e.Images) != 1 {
		t.Fatalf("images = %+v", e.Images)
	}
	if e.Images[0].Type != "gif" || e.Images[0].IsFeatured || e.Images[0].Order != 0 {
		t.Fatalf("gif row = %+v", e.Images[0])
	}
}
