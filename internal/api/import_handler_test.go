package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"phPortfolio/internal/ai"
	"phPortfolio/internal/github"
	"phPortfolio/internal/notify"
)

func newImportTestRouter(t *testing.T, ghBaseURL, aiBaseURL string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	notifier := notify.NewPublisher(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}), testLogger())
	h := NewImportHandler(
		github.NewClient(ghBaseURL, ""),
		ai.NewGenerator(ai.NewClient(aiBaseURL, "test-key", "")),
		notifier,
		testLogger(),
	)

	router := gin.New()
	router.POST("/v1/admin/ai/import-github", func(c *gin.Context) {
		c.Set("userID", uint(1))
		h.ImportGithub(c)
	})
	return router
}

func postImport(t *testing.T, router *gin.Engine, payload string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/admin/ai/import-github", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestImportGithub_RequiresURL(t *testing.T) {
	router := newImportTestRouter(t, "http://127.0.0.1:1", "http://127.0.0.1:1")

	w := postImport(t, router, `{"github_url":"  "}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestImportGithub_FetchFailureIsBadGateway(t *testing.T) {
	gh := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer gh.Close()

	router := newImportTestRouter(t, gh.URL, "http://127.0.0.1:1")
	w := postImport(t, router, `{"github_url":"https://github.com/octocat/demo"}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestImportGithub_ReturnsDraftAndEntity(t *testing.T) {
	readme := base64.StdEncoding.EncodeToString([]byte("# Demo"))
	gh := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/octocat/demo":
			json.NewEncoder(w).Encode(map[string]any{"description": "A demo", "language": "Go"})
		case "/repos/octocat/demo/readme":
			json.NewEncoder(w).Encode(map[string]string{"content": readme, "encoding": "base64"})
		case "/repos/octocat/demo/contents":
			json.NewEncoder(w).Encode([]map[string]string{{"name": "go.mod", "type": "file"}})
		default:
			http.NotFound(w, r)
		}
	}))
	defer gh.Close()

	draft := map[string]any{
		"title":    "Demo",
		"category": "project",
		"tags":     []string{"go"},
		"urls":     []map[string]string{{"type": "github", "url": "https://github.com/octocat/demo"}},
		"translations": map[string]map[string]string{
			"es": {"summary": "Una demo"},
			"en": {"summary": "A demo"},
		},
	}
	draftJSON, _ := json.Marshal(draft)

	aiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]string{{"text": string(draftJSON)}}}},
			},
		})
	}))
	defer aiSrv.Close()

	router := newImportTestRouter(t, gh.URL, aiSrv.URL)
	w := postImport(t, router, `{"github_url":"https://github.com/octocat/demo"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Category string   `json:"category,omitempty"`
			Tags     []string `json:"tags,omitempty"`
		} `json:"data"`
		Draft struct {
			Title string `json:"title"`
		} `json:"draft"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.Draft.Title != "Demo" {
		t.Fatalf("unexpected response: %s", w.Body.String())
	}
	if resp.Data.Category != "project" || len(resp.Data.Tags) != 1 {
		t.Fatalf("entity mapping: %+v", resp.Data)
	}
}
