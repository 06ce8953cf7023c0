package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"phPortfolio/internal/cache"
	"phPortfolio/internal/database"
	"phPortfolio/internal/schema"
	"phPortfolio/internal/store"
)

func newAdminTestHandler(t *testing.T) (*AdminHandler, *store.Store) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&database.Tag{},
		&database.Project{}, &database.ProjectTranslation{}, &database.ProjectImage{}, &database.ProjectURL{},
		&database.Experience{}, &database.ExperienceTranslation{},
		&database.Education{}, &database.EducationTranslation{}, &database.Course{},
		&database.SkillCategory{}, &database.SkillCategoryTranslation{},
		&database.Skill{}, &database.SkillTranslation{},
		&database.Certification{}, &database.CertificationTranslation{},
		&database.Profile{}, &database.ProfileTranslation{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	s := store.NewStore(db, nil)
	// 指向不存在的 redis：缓存失效只记日志，不影响接口语义。
	c := cache.New(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}), nil, cache.DefaultTTL)
	return NewAdminHandler(s, c, testLogger()), s
}

func newAdminTestRouter(h *AdminHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/v1/admin/form/:type", h.GetForm)
	router.POST("/v1/admin/save/:type", h.Save)
	router.DELETE("/v1/admin/delete/:type/:id", h.Delete)
	router.GET("/v1/admin/data", h.GetData)
	return router
}

func TestGetForm_CreateMode(t *testing.T) {
	h, _ := newAdminTestHandler(t)
	router := newAdminTestRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/v1/admin/form/project", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var desc schema.FormDescriptor
	if err := json.Unmarshal(w.Body.Bytes(), &desc); err != nil {
		t.Fatalf("decode form: %v", err)
	}
	if desc.Mode != "create" {
		t.Fatalf("mode = %q", desc.Mode)
	}
	if len(desc.TranslationTabs) == 0 {
		t.Fatal("expected translation tabs")
	}
	if desc.TranslationTabs[0].Lang != "es" {
		t.Fatalf("first tab lang = %q", desc.TranslationTabs[0].Lang)
	}
}

func TestGetForm_UnknownType(t *testing.T) {
	h, _ := newAdminTestHandler(t)
	router := newAdminTestRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/v1/admin/form/banana", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestSave_CreateThenEditThenDelete(t *testing.T) {
	h, s := newAdminTestHandler(t)
	router := newAdminTestRouter(h)

	payload := map[string]any{
		"fields": map[string]any{
			"category": "project",
			"tags":     "go, gin",
		},
		"translations": map[string]map[string]string{
			"es": {"title": "Panel de Control"},
			"en": {"title": "Control Panel"},
		},
	}
	body, _ := json.Marshal(payload)

	req := httptest.NewRequest(http.MethodPost, "/v1/admin/save/project", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("save status = %d, body = %s", w.Code, w.Body.String())
	}
	var saved struct {
		Success bool   `json:"success"`
		ID      uint   `json:"id"`
		Slug    string `json:"slug"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &saved); err != nil {
		t.Fatalf("decode save response: %v", err)
	}
	if !saved.Success || saved.ID == 0 {
		t.Fatalf("unexpected save response: %+v", saved)
	}
	if saved.Slug != "panel-de-control" {
		t.Fatalf("slug = %q", saved.Slug)
	}

	// 编辑模式的表单要带回已有值。
	req = httptest.NewRequest(http.MethodGet, "/v1/admin/form/project?id=1", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("form status = %d, body = %s", w.Code, w.Body.String())
	}
	var desc schema.FormDescriptor
	if err := json.Unmarshal(w.Body.Bytes(), &desc); err != nil {
		t.Fatalf("decode form: %v", err)
	}
	if desc.Mode != "edit" {
		t.Fatalf("mode = %q", desc.Mode)
	}

	req = httptest.NewRequest(http.MethodDelete, "/v1/admin/delete/project/1", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d, body = %s", w.Code, w.Body.String())
	}

	if _, err := s.Load(req.Context(), schema.TypeProject, 1); err == nil {
		t.Fatal("expected project gone after delete")
	}
}

func TestSave_InvalidProjectCategory(t *testing.T) {
	h, _ := newAdminTestHandler(t)
	router := newAdminTestRouter(h)

	body, _ := json.Marshal(map[string]any{
		"fields": map[string]any{"category": "videojuego"},
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/admin/save/project", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestSaveProfile_RoundTrip(t *testing.T) {
	h, s := newAdminTestHandler(t)
	router := newAdminTestRouter(h)

	body, _ := json.Marshal(map[string]any{
		"name":       "Rafael Ortiz",
		"email":      "rafa@example.com",
		"avatar_url": "https://cdn.example.test/avatar.png",
		"location":   map[string]string{"city": "Madrid", "country": "ES"},
		"social":     map[string]string{"github": "https://github.com/rafa"},
		"translations": map[string]map[string]string{
			"es": {"role": "Desarrollador Backend", "tagline": "Go y Python", "bio": "bio es"},
			"en": {"role": "Backend Developer"},
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/admin/save/profile", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	view, err := s.LoadProfile(req.Context(), "es")
	if err != nil {
		t.Fatalf("load profile: %v", err)
	}
	if view.Name != "Rafael Ortiz" || view.Role != "Desarrollador Backend" {
		t.Fatalf("profile = %+v", view)
	}
	if view.Location["city"] != "Madrid" {
		t.Fatalf("location = %+v", view.Location)
	}

	// 后台首页数据要把 profile 一起带上。
	req = httptest.NewRequest(http.MethodGet, "/v1/admin/data", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("data status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	raw, ok := resp.Data["profile"]
	if !ok {
		t.Fatal("data missing profile key")
	}
	var exported struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &exported); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if exported.Name != "Rafael Ortiz" {
		t.Fatalf("exported name = %q", exported.Name)
	}
}

func TestDelete_MissingEntity(t *testing.T) {
	h, _ := newAdminTestHandler(t)
	router := newAdminTestRouter(h)

	req := httptest.NewRequest(http.MethodDelete, "/v1/admin/delete/skill/99", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}
