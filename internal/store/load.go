package store

import (
	"context"
	"fmt"
	"strconv"

	"gorm.io/gorm"

	"phPortfolio/internal/database"
	"phPortfolio/internal/schema"
)

// Load 读出单个实体并投影成与类型无关的 schema.Entity。
func (s *Store) Load(ctx context.Context, t schema.EntityType, id uint) (*schema.Entity, error) {
	if _, err := schema.SchemaFor(t); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	switch t {
	case schema.TypeProject:
		var p database.Project
		err := db.Preload("Translations").
			Preload("Images", orderByPosition).
			Preload("URLs", orderByPosition).
			Preload("Tags").
			First(&p, id).Error
		if err != nil {
			return nil, translateNotFound(err)
		}
		e := projectEntity(p)
		return &e, nil
	case schema.TypeExperience:
		var exp database.Experience
		if err := db.Preload("Translations").Preload("Tags").First(&exp, id).Error; err != nil {
			return nil, translateNotFound(err)
		}
		e := experienceEntity(exp)
		return &e, nil
	case schema.TypeEducation:
		var edu database.Education
		if err := db.Preload("Translations").Preload("Courses", orderByPosition).First(&edu, id).Error; err != nil {
			return nil, translateNotFound(err)
		}
		e := educationEntity(edu)
		return &e, nil
	case schema.TypeSkill:
		var sk database.Skill
		if err := db.Preload("Translations").First(&sk, id).Error; err != nil {
			return nil, translateNotFound(err)
		}
		e := skillEntity(sk)
		return &e, nil
	case schema.TypeSkillCategory:
		var sc database.SkillCategory
		if err := db.Preload("Translations").First(&sc, id).Error; err != nil {
			return nil, translateNotFound(err)
		}
		e := skillCategoryEntity(sc)
		return &e, nil
	case schema.TypeCertification:
		var c database.Certification
		if err := db.Preload("Translations").First(&c, id).Error; err != nil {
			return nil, translateNotFound(err)
		}
		e := certificationEntity(c)
		return &e, nil
	}
	return nil, schema.ErrUnknownType
}

// List 返回一种类型的全部实体（后台列表与备份导出共用）。
func (s *Store) List(ctx context.Context, t schema.EntityType) ([]schema.Entity, error) {
	if _, err := schema.SchemaFor(t); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var out []schema.Entity
	switch t {
	case schema.TypeProject:
		var rows []database.Project
		err := db.Preload("Translations").
			Preload("Images", orderByPosition).
			Preload("URLs", orderByPosition).
			Preload("Tags").
			Order("id").Find(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("list projects: %w", err)
		}
		for _, r := range rows {
			out = append(out, projectEntity(r))
		}
	case schema.TypeExperience:
		var rows []database.Experience
		if err := db.Preload("Translations").Preload("Tags").Order("start_date DESC").Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("list experiences: %w", err)
		}
		for _, r := range rows {
			out = append(out, experienceEntity(r))
		}
	case schema.TypeEducation:
		var rows []database.Education
		if err := db.Preload("Translations").Preload("Courses", orderByPosition).Order("start_date DESC").Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("list educations: %w", err)
		}
		for _, r := range rows {
			out = append(out, educationEntity(r))
		}
	case schema.TypeSkill:
		var rows []database.Skill
		if err := db.Preload("Translations").Order(`"order", id`).Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("list skills: %w", err)
		}
		for _, r := range rows {
			out = append(out, skillEntity(r))
		}
	case schema.TypeSkillCategory:
		var rows []database.SkillCategory
		if err := db.Preload("Translations").Order(`"order", id`).Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("list skill categories: %w", err)
		}
		for _, r := range rows {
			out = append(out, skillCategoryEntity(r))
		}
	case schema.TypeCertification:
		var rows []database.Certification
		if err := db.Preload("Translations").Order("issue_date DESC").Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("list certifications: %w", err)
		}
		for _, r := range rows {
			out = append(out, certificationEntity(r))
		}
	}
	return out, nil
}

// SkillCategoryOptions 返回技能表单下拉用的分类选项（es 名字）。
func (s *Store) SkillCategoryOptions(ctx context.Context) ([]schema.Option, error) {
	var rows []database.SkillCategory
	if err := s.db.WithContext(ctx).Preload("Translations").Order(`"order", id`).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list skill categories: %w", err)
	}
	opts := make([]schema.Option, 0, len(rows))
	for _, r := range rows {
		label := ""
		for _, lang := range schema.Languages {
			for _, t := range r.Translations {
				if t.Lang == lang && t.Name != "" {
					label = t.Name
					break
				}
			}
			if label != "" {
				break
			}
		}
		if label == "" {
			label = r.Slug
		}
		opts = append(opts, schema.Option{Value: strconv.FormatUint(uint64(r.ID), 10), Label: label})
	}
	return opts, nil
}

func orderByPosition(db *gorm.DB) *gorm.DB {
	return db.Order(`"order"`)
}

func projectEntity(p database.Project) schema.Entity {
	id := p.ID
	e := schema.Entity{
		ID:           &id,
		Slug:         p.Slug,
		Category:     p.Category,
		IsFeaturedCV: p.IsFeaturedCV,
		LegacyURL:    p.URL,
	}
	for _, t := range p.Translations {
		e.Translations = append(e.Translations, schema.Translation{
			Lang:          t.Lang,
			Title:         t.Title,
			Subtitle:      t.Subtitle,
			Summary:       t.Summary,
			Description:   t.Description,
			CVDescription: t.CVDescription,
		})
	}
	for _, u := range p.URLs {
		e.URLs = append(e.URLs, schema.URLRow{URLType: u.URLType, URL: u.URL, Label: u.Label, Order: u.Order})
	}
	for _, img := range p.Images {
		e.Images = append(e.Images, schema.ImageRow{
			URL:        img.URL,
			Type:       img.Type,
			Caption:    img.Caption,
			AltText:    img.AltText,
			Width:      img.Width,
			Height:     img.Height,
			IsFeatured: img.IsFeatured,
			Order:      img.Order,
		})
	}
	for _, tag := range p.Tags {
		e.Tags = append(e.Tags, tag.Name)
	}
	return e
}

func experienceEntity(exp database.Experience) schema.Entity {
	id := exp.ID
	e := schema.Entity{
		ID:        &id,
		Slug:      exp.Slug,
		Company:   exp.Company,
		Location:  exp.Location,
		StartDate: exp.StartDate,
		EndDate:   exp.EndDate,
		Current:   exp.Current,
	}
	for _, t := range exp.Translations {
		e.Translations = append(e.Translations, schema.Translation{
			Lang:        t.Lang,
			Title:       t.Title,
			Subtitle:    t.Subtitle,
			Description: t.Description,
		})
	}
	for _, tag := range exp.Tags {
		e.Tags = append(e.Tags, tag.Name)
	}
	return e
}

func educationEntity(edu database.Education) schema.Entity {
	id := edu.ID
	e := schema.Entity{
		ID:          &id,
		Slug:        edu.Slug,
		Institution: edu.Institution,
		Location:    edu.Location,
		StartDate:   edu.StartDate,
		EndDate:     edu.EndDate,
	}
	for _, t := range edu.Translations {
		e.Translations = append(e.Translations, schema.Translation{
			Lang:        t.Lang,
			Title:       t.Title,
			Subtitle:    t.Subtitle,
			Description: t.Description,
		})
	}
	for _, c := range edu.Courses {
		e.Courses = append(e.Courses, c.Name)
	}
	return e
}

func skillEntity(sk database.Skill) schema.Entity {
	id := sk.ID
	visibleCV := sk.IsVisibleCV
	visibleSite := sk.IsVisiblePortfolio
	e := schema.Entity{
		ID:          &id,
		Slug:        sk.Slug,
		IconURL:     sk.IconURL,
		Proficiency: sk.Proficiency,
		Order:       sk.Order,
		CategoryID:  sk.CategoryID,
		VisibleCV:   &visibleCV,
		VisibleSite: &visibleSite,
	}
	for _, t := range sk.Translations {
		e.Translations = append(e.Translations, schema.Translation{
			Lang:        t.Lang,
			Name:        t.Name,
			Description: t.Description,
		})
	}
	return e
}

func skillCategoryEntity(sc database.SkillCategory) schema.Entity {
	id := sc.ID
	e := schema.Entity{
		ID:    &id,
		Slug:  sc.Slug,
		Order: sc.Order,
	}
	for _, t := range sc.Translations {
		e.Translations = append(e.Translations, schema.Translation{Lang: t.Lang, Name: t.Name})
	}
	return e
}

func certificationEntity(c database.Certification) schema.Entity {
	id := c.ID
	e := schema.Entity{
		ID:         &id,
		Slug:       c.Slug,
		Issuer:     c.Issuer,
		IssueDate:  c.IssueDate,
		ExpiryDate: c.ExpiryDate,
		Credential: c.CredentialURL,
	}
	for _, t := range c.Translations {
		e.Translations = append(e.Translations, schema.Translation{
			Lang:        t.Lang,
			Title:       t.Title,
			Description: t.Description,
		})
	}
	return e
}
