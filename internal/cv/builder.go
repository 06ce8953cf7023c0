package cv

import (
	"context"
	"errors"
	"fmt"

	"phPortfolio/internal/schema"
	"phPortfolio/internal/store"
)

// Document 是 JSON-Resume 形状的 CV 数据，前端打印页与 PDF
// 渲染器都吃这个结构。
type Document struct {
	Basics       Basics        `json:"basics"`
	Work         []WorkItem    `json:"work"`
	Education    []EduItem     `json:"education"`
	Skills       []SkillItem   `json:"skills"`
	Projects     []ProjectItem `json:"projects"`
	Certificates []CertItem    `json:"certificates"`
	Lang         string        `json:"lang"`
}

type Basics struct {
	Name     string            `json:"name"`
	Label    string            `json:"label,omitempty"`
	Email    string            `json:"email,omitempty"`
	Summary  string            `json:"summary,omitempty"`
	Location map[string]string `json:"location,omitempty"`
	Profiles map[string]string `json:"profiles,omitempty"`
}

type WorkItem struct {
	Position  string   `json:"position"`
	Company   string   `json:"name,omitempty"`
	Location  string   `json:"location,omitempty"`
	StartDate string   `json:"startDate,omitempty"`
	EndDate   string   `json:"endDate,omitempty"`
	Summary   string   `json:"summary,omitempty"`
	Keywords  []string `json:"keywords,omitempty"`
}

type EduItem struct {
	Institution string   `json:"institution"`
	Area        string   `json:"area,omitempty"`
	StudyType   string   `json:"studyType,omitempty"`
	StartDate   string   `json:"startDate,omitempty"`
	EndDate     string   `json:"endDate,omitempty"`
	Courses     []string `json:"courses,omitempty"`
}

type SkillItem struct {
	Name     string `json:"name"`
	Level    int    `json:"level,omitempty"`
	Category string `json:"category,omitempty"`
}

type ProjectItem struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	URL         string   `json:"url,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
}

type CertItem struct {
	Name   string `json:"name"`
	Issuer string `json:"issuer,omitempty"`
	Date   string `json:"date,omitempty"`
	URL    string `json:"url,omitempty"`
}

// Builder 从存储层聚合出某语言的 CV 文档。
type Builder struct {
	store *store.Store
}

func NewBuilder(s *store.Store) *Builder {
	return &Builder{store: s}
}

// Build 组装 CV：
//   - 技能只收 is_visible_cv 的；
//   - 项目只收 is_featured_cv 的，描述优先取 cv_description；
//   - 经历描述同样吃 cv_description 覆盖。
func (b *Builder) Build(ctx context.Context, lang string) (*Document, error) {
	doc := &Document{Lang: lang}

	profile, err := b.store.LoadProfile(ctx, lang)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if profile != nil {
		doc.Basics = Basics{
			Name:     profile.Name,
			Label:    profile.Role,
			Email:    profile.Email,
			Summary:  profile.Bio,
			Location: profile.Location,
			Profiles: profile.SocialLinks,
		}
	}

	experiences, err := b.store.List(ctx, schema.TypeExperience)
	if err != nil {
		return nil, err
	}
	for _, e := range experiences {
		tr := schema.ResolveTranslation(e.Translations, lang)
		summary := tr.CVDescription
		if summary == "" {
			summary = tr.Description
		}
		doc.Work = append(doc.Work, WorkItem{
			Position:  tr.Title,
			Company:   e.Company,
			Location:  e.Location,
			StartDate: e.StartDate,
			EndDate:   endDate(e),
			Summary:   summary,
			Keywords:  e.Tags,
		})
	}

	educations, err := b.store.List(ctx, schema.TypeEducation)
	if err != nil {
		return nil, err
	}
	for _, e := range educations {
		tr := schema.ResolveTranslation(e.Translations, lang)
		doc.Education = append(doc.Education, EduItem{
			Institution: e.Institution,
			Area:        tr.Subtitle,
			StudyType:   tr.Title,
			StartDate:   e.StartDate,
			EndDate:     e.EndDate,
			Courses:     e.Courses,
		})
	}

	categories, err := b.categoryNames(ctx, lang)
	if err != nil {
		return nil, err
	}
	skills, err := b.store.List(ctx, schema.TypeSkill)
	if err != nil {
		return nil, err
	}
	for _, s := range skills {
		if s.VisibleCV != nil && !*s.VisibleCV {
			continue
		}
		item := SkillItem{
			Name:  schema.ResolveTranslation(s.Translations, lang).Name,
			Level: s.Proficiency,
		}
		if s.CategoryID != nil {
			item.Category = categories[*s.CategoryID]
		}
		doc.Skills = append(doc.Skills, item)
	}

	projects, err := b.store.List(ctx, schema.TypeProject)
	if err != nil {
		return nil, err
	}
	for _, p := range projects {
		if !p.IsFeaturedCV {
			continue
		}
		tr := schema.ResolveTranslation(p.Translations, lang)
		description := tr.CVDescription
		if description == "" {
			description = tr.Summary
		}
		doc.Projects = append(doc.Projects, ProjectItem{
			Name:        tr.DisplayTitle(),
			Description: description,
			URL:         firstURL(p),
			Keywords:    p.Tags,
		})
	}

	certifications, err := b.store.List(ctx, schema.TypeCertification)
	if err != nil {
		return nil, err
	}
	for _, c := range certifications {
		doc.Certificates = append(doc.Certificates, CertItem{
			Name:   schema.ResolveTranslation(c.Translations, lang).Title,
			Issuer: c.Issuer,
			Date:   c.IssueDate,
			URL:    c.Credential,
		})
	}

	return doc, nil
}

func (b *Builder) categoryNames(ctx context.Context, lang string) (map[uint]string, error) {
	categories, err := b.store.List(ctx, schema.TypeSkillCategory)
	if err != nil {
		return nil, err
	}
	names := make(map[uint]string, len(categories))
	for _, c := range categories {
		if c.ID != nil {
			names[*c.ID] = schema.ResolveTranslation(c.Translations, lang).Name
		}
	}
	return names, nil
}

func endDate(e schema.Entity) string {
	if e.Current {
		return ""
	}
	return e.EndDate
}

// firstURL 挑项目的代表外链：live 优先，其次第一条。
func firstURL(p schema.Entity) string {
	rows := p.EffectiveURLRows()
	for _, r := range rows {
		if r.URLType == "live" {
			return r.URL
		}
	}
	if len(rows) > 0 {
		return rows[0].URL
	}
	return ""
}
