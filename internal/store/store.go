package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"gorm.io/gorm"

	"phPortfolio/internal/database"
	"phPortfolio/internal/schema"
)

// 存储层哨兵错误，handler 据此映射 HTTP 状态码。
var (
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidCategory = errors.New("invalid project category")
)

// Store 封装全部内容实体的持久化。写路径统一走
// delete-and-recreate：翻译/外链/图片/课程子表在每次保存时整体重建。
type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewStore(db *gorm.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// Save 持久化一次表单采集结果，返回实体 id 与最终 slug。
// e.ID 为 nil 即创建，否则更新既有记录。
func (s *Store) Save(ctx context.Context, t schema.EntityType, e schema.Entity) (uint, string, error) {
	if _, err := schema.SchemaFor(t); err != nil {
		return 0, "", err
	}

	var (
		id   uint
		slug string
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		switch t {
		case schema.TypeProject:
			id, slug, err = s.saveProject(tx, e)
		case schema.TypeExperience:
			id, slug, err = s.saveExperience(tx, e)
		case schema.TypeEducation:
			id, slug, err = s.saveEducation(tx, e)
		case schema.TypeSkill:
			id, slug, err = s.saveSkill(tx, e)
		case schema.TypeSkillCategory:
			id, slug, err = s.saveSkillCategory(tx, e)
		case schema.TypeCertification:
			id, slug, err = s.saveCertification(tx, e)
		}
		return err
	})
	if err != nil {
		return 0, "", err
	}
	return id, slug, nil
}

// Delete 按类型与 id 删除实体。未知 id 返回 ErrNotFound。
func (s *Store) Delete(ctx context.Context, t schema.EntityType, id uint) error {
	if _, err := schema.SchemaFor(t); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var (
			res *gorm.DB
		)
		switch t {
		case schema.TypeProject:
			var p database.Project
			if err := tx.First(&p, id).Error; err != nil {
				return translateNotFound(err)
			}
			if err := tx.Model(&p).Association("Tags").Clear(); err != nil {
				return fmt.Errorf("clear project tags: %w", err)
			}
			if err := s.deleteProjectChildren(tx, id); err != nil {
				return err
			}
			res = tx.Delete(&database.Project{}, id)
		case schema.TypeExperience:
			var exp database.Experience
			if err := tx.First(&exp, id).Error; err != nil {
				return translateNotFound(err)
			}
			if err := tx.Model(&exp).Association("Tags").Clear(); err != nil {
				return fmt.Errorf("clear experience tags: %w", err)
			}
			if err := deleteChildren(tx, "experience_id", id, &database.ExperienceTranslation{}); err != nil {
				return err
			}
			res = tx.Delete(&database.Experience{}, id)
		case schema.TypeEducation:
			if err := deleteChildren(tx, "education_id", id, &database.EducationTranslation{}, &database.Course{}); err != nil {
				return err
			}
			res = tx.Delete(&database.Education{}, id)
		case schema.TypeSkill:
			if err := deleteChildren(tx, "skill_id", id, &database.SkillTranslation{}); err != nil {
				return err
			}
			res = tx.Delete(&database.Skill{}, id)
		case schema.TypeSkillCategory:
			if err := deleteChildren(tx, "skill_category_id", id, &database.SkillCategoryTranslation{}); err != nil {
				return err
			}
			res = tx.Delete(&database.SkillCategory{}, id)
		case schema.TypeCertification:
			if err := deleteChildren(tx, "certification_id", id, &database.CertificationTranslation{}); err != nil {
				return err
			}
			res = tx.Delete(&database.Certification{}, id)
		}
		if res.Error != nil {
			return fmt.Errorf("delete %s %d: %w", t, id, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *Store) deleteProjectChildren(tx *gorm.DB, projectID uint) error {
	return deleteChildren(tx, "project_id", projectID,
		&database.ProjectTranslation{}, &database.ProjectImage{}, &database.ProjectURL{})
}

// deleteChildren 按外键清空子表。子表没有唯一约束兜底，
// 删除失败必须让事务回滚，否则重建会堆出重复行。
func deleteChildren(tx *gorm.DB, fk string, id uint, models ...any) error {
	for _, m := range models {
		if err := tx.Where(fk+" = ?", id).Delete(m).Error; err != nil {
			return fmt.Errorf("delete children %T: %w", m, err)
		}
	}
	return nil
}

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// ensureSlug 生成唯一 slug：base 冲突时追加 -1、-2… 计数。
// excludeID 用于更新场景，跳过自身占用的 slug。
func ensureSlug(tx *gorm.DB, model any, title, existing string, excludeID uint) (string, error) {
	base := existing
	if base == "" {
		base = schema.Slugify(title)
	}
	slug := base
	for i := 1; ; i++ {
		var count int64
		q := tx.Model(model).Where("slug = ?", slug)
		if excludeID != 0 {
			q = q.Where("id <> ?", excludeID)
		}
		if err := q.Count(&count).Error; err != nil {
			return "", fmt.Errorf("check slug %q: %w", slug, err)
		}
		if count == 0 {
			return slug, nil
		}
		slug = base + "-" + strconv.Itoa(i)
	}
}

// slugTitle 取 es 文案的标题作为 slug 来源，缺失时退到 en。
func slugTitle(e schema.Entity) string {
	for _, lang := range schema.Languages {
		if t := schema.ResolveTranslation(e.Translations, lang).DisplayTitle(); t != "" {
			return t
		}
	}
	return ""
}

// findOrCreateTags 按名字找或建 Tag。空名会生成空 Tag 行，
// 与采集层保留空 token 的行为一致。
func findOrCreateTags(tx *gorm.DB, names []string) ([]database.Tag, error) {
	tags := make([]database.Tag, 0, len(names))
	for _, name := range names {
		var tag database.Tag
		err := tx.Where("name = ?", name).First(&tag).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			tag = database.Tag{Name: name, Slug: schema.Slugify(name)}
			if err := tx.Create(&tag).Error; err != nil {
				return nil, fmt.Errorf("create tag %q: %w", name, err)
			}
		} else if err != nil {
			return nil, fmt.Errorf("find tag %q: %w", name, err)
		}
		tags = append(tags, tag)
	}
	return tags, nil
}
