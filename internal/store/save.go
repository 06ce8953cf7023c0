package store

import (
	"fmt"

	"gorm.io/gorm"

	"phPortfolio/internal/database"
	"phPortfolio/internal/schema"
)

func (s *Store) saveProject(tx *gorm.DB, e schema.Entity) (uint, string, error) {
	if !validCategory(e.Category) {
		return 0, "", fmt.Errorf("%w: %q", ErrInvalidCategory, e.Category)
	}

	var p database.Project
	if e.ID != nil {
		if err := tx.First(&p, *e.ID).Error; err != nil {
			return 0, "", translateNotFound(err)
		}
	}

	slug, err := ensureSlug(tx, &database.Project{}, slugTitle(e), e.Slug, p.ID)
	if err != nil {
		return 0, "", err
	}
	p.Slug = slug
	p.Category = e.Category
	p.IsFeaturedCV = e.IsFeaturedCV

	if err := tx.Save(&p).Error; err != nil {
		return 0, "", fmt.Errorf("save project: %w", err)
	}

	// 子表整体重建：翻译/外链/图片全部删掉再按本次提交写入。
	if err := s.deleteProjectChildren(tx, p.ID); err != nil {
		return 0, "", err
	}
	for _, t := range e.Translations {
		row := database.ProjectTranslation{
			ProjectID:     p.ID,
			Lang:          t.Lang,
			Title:         t.Title,
			Subtitle:      t.Subtitle,
			Summary:       t.Summary,
			Description:   t.Description,
			CVDescription: t.CVDescription,
		}
		if err := tx.Create(&row).Error; err != nil {
			return 0, "", fmt.Errorf("save project translation %s: %w", t.Lang, err)
		}
	}
	for _, u := range e.URLs {
		row := database.ProjectURL{ProjectID: p.ID, URLType: u.URLType, URL: u.URL, Label: u.Label, Order: u.Order}
		if err := tx.Create(&row).Error; err != nil {
			return 0, "", fmt.Errorf("save project url: %w", err)
		}
	}
	for _, img := range e.Images {
		row := database.ProjectImage{
			ProjectID:  p.ID,
			URL:        img.URL,
			Type:       img.Type,
			Caption:    img.Caption,
			AltText:    img.AltText,
			Width:      img.Width,
			Height:     img.Height,
			IsFeatured: img.IsFeatured,
			Order:      img.Order,
		}
		if err := tx.Create(&row).Error; err != nil {
			return 0, "", fmt.Errorf("save project image: %w", err)
		}
	}

	tags, err := findOrCreateTags(tx, e.Tags)
	if err != nil {
		return 0, "", err
	}
	if err := tx.Model(&p).Association("Tags").Replace(tags); err != nil {
		return 0, "", fmt.Errorf("replace project tags: %w", err)
	}

	return p.ID, p.Slug, nil
}

func (s *Store) saveExperience(tx *gorm.DB, e schema.Entity) (uint, string, error) {
	var exp database.Experience
	if e.ID != nil {
		if err := tx.First(&exp, *e.ID).Error; err != nil {
			return 0, "", translateNotFound(err)
		}
	}

	slug, err := ensureSlug(tx, &database.Experience{}, slugTitle(e), e.Slug, exp.ID)
	if err != nil {
		return 0, "", err
	}
	exp.Slug = slug
	exp.Company = e.Company
	exp.Location = e.Location
	exp.StartDate = e.StartDate
	exp.EndDate = e.EndDate
	exp.Current = e.Current

	if err := tx.Save(&exp).Error; err != nil {
		return 0, "", fmt.Errorf("save experience: %w", err)
	}

	if err := tx.Where("experience_id = ?", exp.ID).Delete(&database.ExperienceTranslation{}).Error; err != nil {
		return 0, "", fmt.Errorf("reset experience translations: %w", err)
	}
	for _, t := range e.Translations {
		row := database.ExperienceTranslation{
			ExperienceID: exp.ID,
			Lang:         t.Lang,
			Title:        t.Title,
			Subtitle:     t.Subtitle,
			Description:  t.Description,
		}
		if err := tx.Create(&row).Error; err != nil {
			return 0, "", fmt.Errorf("save experience translation %s: %w", t.Lang, err)
		}
	}

	tags, err := findOrCreateTags(tx, e.Tags)
	if err != nil {
		return 0, "", err
	}
	if err := tx.Model(&exp).Association("Tags").Replace(tags); err != nil {
		return 0, "", fmt.Errorf("replace experience tags: %w", err)
	}

	return exp.ID, exp.Slug, nil
}

func (s *Store) saveEducation(tx *gorm.DB, e schema.Entity) (uint, string, error) {
	var edu database.Education
	if e.ID != nil {
		if err := tx.First(&edu, *e.ID).Error; err != nil {
			return 0, "", translateNotFound(err)
		}
	}

	slug, err := ensureSlug(tx, &database.Education{}, slugTitle(e), e.Slug, edu.ID)
	if err != nil {
		return 0, "", err
	}
	edu.Slug = slug
	edu.Institution = e.Institution
	edu.Location = e.Location
	edu.StartDate = e.StartDate
	edu.EndDate = e.EndDate

	if err := tx.Save(&edu).Error; err != nil {
		return 0, "", fmt.Errorf("save education: %w", err)
	}

	if err := tx.Where("education_id = ?", edu.ID).Delete(&database.EducationTranslation{}).Error; err != nil {
		return 0, "", fmt.Errorf("reset education translations: %w", err)
	}
	for _, t := range e.Translations {
		row := database.EducationTranslation{
			EducationID: edu.ID,
			Lang:        t.Lang,
			Title:       t.Title,
			Subtitle:    t.Subtitle,
			Description: t.Description,
		}
		if err := tx.Create(&row).Error; err != nil {
			return 0, "", fmt.Errorf("save education translation %s: %w", t.Lang, err)
		}
	}

	// 课程按提交顺序重建，名字原样写入（不 trim）。
	if err := tx.Where("education_id = ?", edu.ID).Delete(&database.Course{}).Error; err != nil {
		return 0, "", fmt.Errorf("reset courses: %w", err)
	}
	for i, name := range e.Courses {
		row := database.Course{EducationID: edu.ID, Name: name, Order: i}
		if err := tx.Create(&row).Error; err != nil {
			return 0, "", fmt.Errorf("save course %q: %w", name, err)
		}
	}

	return edu.ID, edu.Slug, nil
}

func (s *Store) saveSkill(tx *gorm.DB, e schema.Entity) (uint, string, error) {
	var sk database.Skill
	if e.ID != nil {
		if err := tx.First(&sk, *e.ID).Error; err != nil {
			return 0, "", translateNotFound(err)
		}
	}

	slug, err := ensureSlug(tx, &database.Skill{}, slugTitle(e), e.Slug, sk.ID)
	if err != nil {
		return 0, "", err
	}
	sk.Slug = slug
	sk.IconURL = e.IconURL
	sk.Proficiency = e.Proficiency
	sk.Order = e.Order
	sk.CategoryID = e.CategoryID
	if e.VisibleCV != nil {
		sk.IsVisibleCV = *e.VisibleCV
	}
	if e.VisibleSite != nil {
		sk.IsVisiblePortfolio = *e.VisibleSite
	}

	if err := tx.Save(&sk).Error; err != nil {
		return 0, "", fmt.Errorf("save skill: %w", err)
	}

	if err := tx.Where("skill_id = ?", sk.ID).Delete(&database.SkillTranslation{}).Error; err != nil {
		return 0, "", fmt.Errorf("reset skill translations: %w", err)
	}
	for _, t := range e.Translations {
		row := database.SkillTranslation{
			SkillID:     sk.ID,
			Lang:        t.Lang,
			Name:        t.Name,
			Description: t.Description,
		}
		if err := tx.Create(&row).Error; err != nil {
			return 0, "", fmt.Errorf("save skill translation %s: %w", t.Lang, err)
		}
	}

	return sk.ID, sk.Slug, nil
}

func (s *Store) saveSkillCategory(tx *gorm.DB, e schema.Entity) (uint, string, error) {
	var sc database.SkillCategory
	if e.ID != nil {
		if err := tx.First(&sc, *e.ID).Error; err != nil {
			return 0, "", translateNotFound(err)
		}
	}

	if sc.ID == 0 {
		// slug 只在创建时取一次，之后不再跟随表单变更。
		slug, err := ensureSlug(tx, &database.SkillCategory{}, slugTitle(e), e.Slug, 0)
		if err != nil {
			return 0, "", err
		}
		sc.Slug = slug
	}
	sc.Order = e.Order

	if err := tx.Save(&sc).Error; err != nil {
		return 0, "", fmt.Errorf("save skill category: %w", err)
	}

	if err := tx.Where("skill_category_id = ?", sc.ID).Delete(&database.SkillCategoryTranslation{}).Error; err != nil {
		return 0, "", fmt.Errorf("reset skill category translations: %w", err)
	}
	for _, t := range e.Translations {
		row := database.SkillCategoryTranslation{
			SkillCategoryID: sc.ID,
			Lang:            t.Lang,
			Name:            t.Name,
		}
		if err := tx.Create(&row).Error; err != nil {
			return 0, "", fmt.Errorf("save skill category translation %s: %w", t.Lang, err)
		}
	}

	return sc.ID, sc.Slug, nil
}

func (s *Store) saveCertification(tx *gorm.DB, e schema.Entity) (uint, string, error) {
	var c database.Certification
	if e.ID != nil {
		if err := tx.First(&c, *e.ID).Error; err != nil {
			return 0, "", translateNotFound(err)
		}
	}

	slug, err := ensureSlug(tx, &database.Certification{}, slugTitle(e), e.Slug, c.ID)
	if err != nil {
		return 0, "", err
	}
	c.Slug = slug
	c.Issuer = e.Issuer
	c.IssueDate = e.IssueDate
	c.ExpiryDate = e.ExpiryDate
	c.CredentialURL = e.Credential

	if err := tx.Save(&c).Error; err != nil {
		return 0, "", fmt.Errorf("save certification: %w", err)
	}

	if err := tx.Where("certification_id = ?", c.ID).Delete(&database.CertificationTranslation{}).Error; err != nil {
		return 0, "", fmt.Errorf("reset certification translations: %w", err)
	}
	for _, t := range e.Translations {
		row := database.CertificationTranslation{
			CertificationID: c.ID,
			Lang:            t.Lang,
			Title:           t.Title,
			Description:     t.Description,
		}
		if err := tx.Create(&row).Error; err != nil {
			return 0, "", fmt.Errorf("save certification translation %s: %w", t.Lang, err)
		}
	}

	return c.ID, c.Slug, nil
}

func validCategory(category string) bool {
	for _, c := range schema.ProjectCategories {
		if c == category {
			return true
		}
	}
	return false
}
