package store

import (
	"context"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"phPortfolio/internal/database"
	"phPortfolio/internal/schema"
)

func newTestStore(t *testing.T) *Store {
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
	return NewStore(db, nil)
}

func TestSaveProject_CreateAndReload(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, slug, err := s.Save(ctx, schema.TypeProject, schema.Entity{
		Category: "project",
		Tags:     []string{"go", "redis"},
		Translations: []schema.Translation{
			{Lang: "es", Title: "Mi Proyecto Genial", Description: "desc"},
			{Lang: "en", Title: "My Cool Project"},
		},
		URLs: []schema.URLRow{
			{URLType: "github", URL: "https://github.com/x/y", Order: 0},
			{URLType: "live", URL: "https://demo.example", Order: 1},
		},
		Images: []schema.ImageRow{
			{URL: "https://img.example/a.png", Type: "image", IsFeatured: true, Order: 0},
		},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if slug != "mi-proyecto-genial" {
		t.Fatalf("slug = %q", slug)
	}

	e, err := s.Load(ctx, schema.TypeProject, id)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(e.Translations) != 2 || len(e.URLs) != 2 || len(e.Images) != 1 {
		t.Fatalf("reloaded entity incomplete: %+v", e)
	}
	if len(e.Tags) != 2 {
		t.Fatalf("tags = %v", e.Tags)
	}
}

func TestSaveProject_SlugUniquenessCounter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tr := []schema.Translation{{Lang: "es", Title: "Duplicado"}}
	_, first, err := s.Save(ctx, schema.TypeProject, schema.Entity{Category: "project", Translations: tr})
	if err != nil {
		t.Fatalf("save first: %v", err)
	}
	_, second, err := s.Save(ctx, schema.TypeProject, schema.Entity{Category: "project", Translations: tr})
	if err != nil {
		t.Fatalf("save second: %v", err)
	}
	if first != "duplicado" || second != "duplicado-1" {
		t.Fatalf("slugs = %q, %q", first, second)
	}
}

func TestSaveProject_InvalidCategory(t *testing.T) {
	s := newTestStore(t)
	_, _, err := s.Save(context.Background(), schema.TypeProject, schema.Entity{Category: "hobby"})
	if !errors.Is(err, ErrInvalidCategory) {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
}

func TestSaveProject_UpdateRecreatesChildren(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, _, err := s.Save(ctx, schema.TypeProject, schema.Entity{
		Category:     "project",
		Translations: []schema.Translation{{Lang: "es", Title: "Original"}, {Lang: "en", Title: "Original"}},
		URLs: []schema.URLRow{
			{URLType: "github", URL: "https://github.com/x/y", Order: 0},
			{URLType: "live", URL: "https://old.example", Order: 1},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, _, err = s.Save(ctx, schema.TypeProject, schema.Entity{
		ID:           &id,
		Category:     "work",
		Translations: []schema.Translation{{Lang: "es", Title: "Renombrado"}},
		URLs:         []schema.URLRow{{URLType: "live", URL: "https://new.example", Order: 0}},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	e, err := s.Load(ctx, schema.TypeProject, id)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	// 子表整体重建：en 翻译与旧外链必须消失。
	if len(e.Translations) != 1 || e.Translations[0].Title != "Renombrado" {
		t.Fatalf("translations = %+v", e.Translations)
	}
	if len(e.URLs) != 1 || e.URLs[0].URL != "https://new.example" {
		t.Fatalf("urls = %+v", e.URLs)
	}
	if e.Category != "work" {
		t.Fatalf("category = %q", e.Category)
	}
}

func TestSaveProject_TagsFindOrCreate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mk := func(title string, tags []string) {
		t.Helper()
		_, _, err := s.Save(ctx, schema.TypeProject, schema.Entity{
			Category:     "project",
			Tags:         tags,
			Translations: []schema.Translation{{Lang: "es", Title: title}},
		})
		if err != nil {
			t.Fatalf("save %s: %v", title, err)
		}
	}
	mk("Uno", []string{"go", "docker"})
	mk("Dos", []string{"go", "postgres"})

	var count int64
	if err := s.db.Model(&database.Tag{}).Where("name = ?", "go").Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("tag %q duplicated %d times", "go", count)
	}
}

func TestSaveSkillCategory_SlugImmutable(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, slug, err := s.Save(ctx, schema.TypeSkillCategory, schema.Entity{
		Slug:         "backend",
		Translations: []schema.Translation{{Lang: "es", Name: "Backend"}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if slug != "backend" {
		t.Fatalf("slug = %q", slug)
	}

	_, slug, err = s.Save(ctx, schema.TypeSkillCategory, schema.Entity{
		ID:           &id,
		Slug:         "cambiado",
		Order:        3,
		Translations: []schema.Translation{{Lang: "es", Name: "Backend renombrado"}},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if slug != "backend" {
		t.Fatalf("slug changed on update: %q", slug)
	}

	e, err := s.Load(ctx, schema.TypeSkillCategory, id)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if e.Order != 3 {
		t.Fatalf("order not updated: %d", e.Order)
	}
}

func TestSaveSkill_OrderPersists(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, _, err := s.Save(ctx, schema.TypeSkill, schema.Entity{
		Order:        7,
		Translations: []schema.Translation{{Lang: "es", Name: "Go"}},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	e, err := s.Load(ctx, schema.TypeSkill, id)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if e.Order != 7 {
		t.Fatalf("order = %d", e.Order)
	}

	e.Order = 2
	if _, _, err := s.Save(ctx, schema.TypeSkill, *e); err != nil {
		t.Fatalf("update: %v", err)
	}
	e, err = s.Load(ctx, schema.TypeSkill, id)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if e.Order != 2 {
		t.Fatalf("order after update = %d", e.Order)
	}
}

func TestSaveSkill_VisibilityFlags(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	off := false
	id, _, err := s.Save(ctx, schema.TypeSkill, schema.Entity{
		Proficiency:  80,
		VisibleCV:    &off,
		Translations: []schema.Translation{{Lang: "es", Name: "Docker"}},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	e, err := s.Load(ctx, schema.TypeSkill, id)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if e.VisibleCV == nil || *e.VisibleCV {
		t.Fatal("is_visible_cv must persist as false")
	}
	if e.Proficiency != 80 {
		t.Fatalf("proficiency = %d", e.Proficiency)
	}
}

func TestSaveEducation_CoursesKeptVerbatim(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, _, err := s.Save(ctx, schema.TypeEducation, schema.Entity{
		Institution:  "UNI",
		Courses:      []string{"Algo I", " Algo II"},
		Translations: []schema.Translation{{Lang: "es", Title: "Grado"}},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	e, err := s.Load(ctx, schema.TypeEducation, id)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(e.Courses) != 2 || e.Courses[1] != " Algo II" {
		t.Fatalf("courses = %q", e.Courses)
	}
}

func TestSaveEducation_CourseResetErrorRollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, _, err := s.Save(ctx, schema.TypeEducation, schema.Entity{
		Institution:  "UNI",
		Courses:      []string{"Algo I"},
		Translations: []schema.Translation{{Lang: "es", Title: "Grado"}},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	// 课程表丢失时重建必须报错回滚，不能静默跳过删除。
	if err := s.db.Migrator().DropTable(&database.Course{}); err != nil {
		t.Fatalf("drop table: %v", err)
	}
	_, _, err = s.Save(ctx, schema.TypeEducation, schema.Entity{
		ID:           &id,
		Institution:  "UNI",
		Courses:      []string{"Algo II"},
		Translations: []schema.Translation{{Lang: "es", Title: "Grado"}},
	})
	if err == nil {
		t.Fatal("expected save to fail when course reset fails")
	}
}

func TestSaveProfile_SingletonUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.SaveProfile(ctx, ProfileInput{
		Name:        "Rafael",
		Email:       "rafa@example.com",
		Location:    map[string]string{"city": "Madrid"},
		SocialLinks: map[string]string{"github": "https://github.com/rafa"},
		Translations: []ProfileTranslationInput{
			{Lang: "es", Role: "Desarrollador", Bio: "bio es"},
			{Lang: "en", Role: "Developer"},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	view, err := s.LoadProfile(ctx, "es")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if view.Name != "Rafael" || view.Role != "Desarrollador" {
		t.Fatalf("view = %+v", view)
	}
	if view.Location["city"] != "Madrid" || view.SocialLinks["github"] == "" {
		t.Fatalf("json fields = %+v", view)
	}

	// 第二次保存必须原地更新，不能长出第二行。
	err = s.SaveProfile(ctx, ProfileInput{
		Name: "Rafael Ortiz",
		Translations: []ProfileTranslationInput{
			{Lang: "es", Role: "Backend"},
			{Lang: "en", Role: "Backend"},
		},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	var count int64
	if err := s.db.Model(&database.Profile{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("profiles = %d", count)
	}
	view, err = s.LoadProfile(ctx, "en")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if view.Name != "Rafael Ortiz" || view.Role != "Backend" {
		t.Fatalf("view after update = %+v", view)
	}
}

func TestBackup_IncludesProfile(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// 资料缺失时备份仍要带 profile 键（值为 nil）。
	data, err := s.Backup(ctx)
	if err != nil {
		t.Fatalf("backup: %v", err)
	}
	profile, ok := data["profile"]
	if !ok {
		t.Fatal("backup missing profile key")
	}
	if p := profile.(*ProfileExport); p != nil {
		t.Fatalf("profile = %+v, want nil", p)
	}

	err = s.SaveProfile(ctx, ProfileInput{
		Name: "Rafael",
		Translations: []ProfileTranslationInput{
			{Lang: "es", Role: "Dev"},
			{Lang: "en", Role: "Dev"},
		},
	})
	if err != nil {
		t.Fatalf("save profile: %v", err)
	}

	data, err = s.Backup(ctx)
	if err != nil {
		t.Fatalf("backup: %v", err)
	}
	p, ok := data["profile"].(*ProfileExport)
	if !ok || p == nil {
		t.Fatalf("profile = %#v", data["profile"])
	}
	if p.Name != "Rafael" || len(p.Translations) != 2 {
		t.Fatalf("profile export = %+v", p)
	}
	if _, ok := data[string(schema.TypeProject)]; !ok {
		t.Fatal("backup missing project key")
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, _, err := s.Save(ctx, schema.TypeCertification, schema.Entity{
		Issuer:       "AWS",
		Translations: []schema.Translation{{Lang: "es", Title: "Cert"}},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Delete(ctx, schema.TypeCertification, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Load(ctx, schema.TypeCertification, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Delete(ctx, schema.TypeCertification, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete unknown id: %v", err)
	}
}

func TestDelete_UnknownType(t *testing.T) {
	s := newTestStore(t)
	if err := s.Delete(context.Background(), schema.EntityType("nope"), 1); !errors.Is(err, schema.ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}
