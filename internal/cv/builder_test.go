package cv

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"phPortfolio/internal/database"
	"phPortfolio/internal/schema"
	"phPortfolio/internal/store"
)

func newTestBuilder(t *testing.T) (*Builder, *store.Store) {
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
	return NewBuilder(s), s
}

func TestBuild_FiltersAndOverrides(t *testing.T) {
	b, s := newTestBuilder(t)
	ctx := context.Background()

	off := false
	if _, _, err := s.Save(ctx, schema.TypeSkill, schema.Entity{
		VisibleCV:    &off,
		Translations: []schema.Translation{{Lang: "es", Name: "Oculta"}},
	}); err != nil {
		t.Fatalf("save hidden skill: %v", err)
	}
	on := true
	if _, _, err := s.Save(ctx, schema.TypeSkill, schema.Entity{
		Proficiency:  90,
		VisibleCV:    &on,
		Translations: []schema.Translation{{Lang: "es", Name: "Go"}},
	}); err != nil {
		t.Fatalf("save visible skill: %v", err)
	}

	if _, _, err := s.Save(ctx, schema.TypeProject, schema.Entity{
		Category:     "project",
		IsFeaturedCV: true,
		Translations: []schema.Translation{{
			Lang: "es", Title: "Destacado", Summary: "resumen", CVDescription: "versión CV",
		}},
	}); err != nil {
		t.Fatalf("save featured project: %v", err)
	}
	if _, _, err := s.Save(ctx, schema.TypeProject, schema.Entity{
		Category:     "project",
		Translations: []schema.Translation{{Lang: "es", Title: "Normal"}},
	}); err != nil {
		t.Fatalf("save plain project: %v", err)
	}

	if _, _, err := s.Save(ctx, schema.TypeExperience, schema.Entity{
		Company: "ACME",
		Current: true,
		EndDate: "2024-01",
		Translations: []schema.Translation{{
			Lang: "es", Title: "Ingeniero", Description: "larga",
		}},
	}); err != nil {
		t.Fatalf("save experience: %v", err)
	}

	doc, err := b.Build(ctx, "es")
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if len(doc.Skills) != 1 || doc.Skills[0].Name != "Go" {
		t.Fatalf("skills = %+v", doc.Skills)
	}
	if len(doc.Projects) != 1 || doc.Projects[0].Name != "Destacado" {
		t.Fatalf("projects = %+v", doc.Projects)
	}
	if doc.Projects[0].Description != "versión CV" {
		t.Fatalf("cv_description override lost: %q", doc.Projects[0].Description)
	}
	if len(doc.Work) != 1 || doc.Work[0].Position != "Ingeniero" {
		t.Fatalf("work = %+v", doc.Work)
	}
	// 在职经历不输出 endDate。
	if doc.Work[0].EndDate != "" {
		t.Fatalf("current position must drop endDate, got %q", doc.Work[0].EndDate)
	}
}

func TestBuild_LanguageFallbackProfileMissing(t *testing.T) {
	b, _ := newTestBuilder(t)
	doc, err := b.Build(context.Background(), "en")
	if err != nil {
		t.Fatalf("build without profile: %v", err)
	}
	if doc.Basics.Name != "" {
		t.Fatalf("basics = %+v", doc.Basics)
	}
}
