package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"phPortfolio/internal/database"
	"phPortfolio/internal/schema"
)

// 个人资料是单例：第一行即站点资料，slug 只在首次创建时写死。
const profileSlug = "site-profile"

// ProfileView 是按语言解析后的个人资料（公开 API 与 CV 共用）。
type ProfileView struct {
	Name        string            `json:"name"`
	Email       string            `json:"email,omitempty"`
	AvatarURL   string            `json:"avatar_url,omitempty"`
	Role        string            `json:"role,omitempty"`
	Tagline     string            `json:"tagline,omitempty"`
	Bio         string            `json:"bio,omitempty"`
	Location    map[string]string `json:"location,omitempty"`
	SocialLinks map[string]string `json:"social_links,omitempty"`
}

// ProfileInput 是后台保存个人资料的归一化负载。
type ProfileInput struct {
	Name         string
	Email        string
	AvatarURL    string
	Location     map[string]string
	SocialLinks  map[string]string
	Translations []ProfileTranslationInput
}

// ProfileTranslationInput 是单语言的资料文案。
type ProfileTranslationInput struct {
	Lang    string `json:"lang"`
	Role    string `json:"role"`
	Tagline string `json:"tagline"`
	Bio     string `json:"bio"`
}

// ProfileExport 是备份导出与后台首页用的完整资料（含全部语言文案）。
type ProfileExport struct {
	ID           uint                      `json:"id"`
	Name         string                    `json:"name"`
	Email        string                    `json:"email,omitempty"`
	AvatarURL    string                    `json:"avatar_url,omitempty"`
	Location     map[string]string         `json:"location,omitempty"`
	SocialLinks  map[string]string         `json:"social_links,omitempty"`
	Translations []ProfileTranslationInput `json:"translations"`
}

// LoadProfile 读取站点唯一的个人资料并按语言解析文案。
// 资料不存在时返回 ErrNotFound。
func (s *Store) LoadProfile(ctx context.Context, lang string) (*ProfileView, error) {
	var p database.Profile
	if err := s.db.WithContext(ctx).Preload("Translations").First(&p).Error; err != nil {
		return nil, translateNotFound(err)
	}

	view := &ProfileView{
		Name:      p.Name,
		Email:     p.Email,
		AvatarURL: p.AvatarURL,
	}
resolve:
	for _, candidate := range langFallback(lang) {
		for _, t := range p.Translations {
			if t.Lang == candidate {
				view.Role = t.Role
				view.Tagline = t.Tagline
				view.Bio = t.Bio
				break resolve
			}
		}
	}

	if len(p.Location) > 0 {
		if err := json.Unmarshal(p.Location, &view.Location); err != nil {
			s.logger.Warn("profile location is not a JSON object", slog.Any("error", err))
		}
	}
	if len(p.SocialLinks) > 0 {
		if err := json.Unmarshal(p.SocialLinks, &view.SocialLinks); err != nil {
			s.logger.Warn("profile social_links is not a JSON object", slog.Any("error", err))
		}
	}
	return view, nil
}

// SaveProfile 写入站点资料：首次保存创建单例行，之后原地更新。
// 文案子表与内容实体一样走整体重建。
func (s *Store) SaveProfile(ctx context.Context, in ProfileInput) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p database.Profile
		err := tx.First(&p).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			p = database.Profile{Slug: profileSlug}
		} else if err != nil {
			return fmt.Errorf("load profile: %w", err)
		}

		p.Name = in.Name
		p.Email = in.Email
		p.AvatarURL = in.AvatarURL
		if p.Location, err = marshalProfileJSON("location", in.Location); err != nil {
			return err
		}
		if p.SocialLinks, err = marshalProfileJSON("social_links", in.SocialLinks); err != nil {
			return err
		}

		if err := tx.Save(&p).Error; err != nil {
			return fmt.Errorf("save profile: %w", err)
		}

		if err := deleteChildren(tx, "profile_id", p.ID, &database.ProfileTranslation{}); err != nil {
			return err
		}
		for _, t := range in.Translations {
			row := database.ProfileTranslation{
				ProfileID: p.ID,
				Lang:      t.Lang,
				Role:      t.Role,
				Tagline:   t.Tagline,
				Bio:       t.Bio,
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("save profile translation %s: %w", t.Lang, err)
			}
		}
		return nil
	})
}

func marshalProfileJSON(field string, m map[string]string) (datatypes.JSON, error) {
	if len(m) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal profile %s: %w", field, err)
	}
	return datatypes.JSON(raw), nil
}

// ExportProfile 返回完整资料，资料不存在时返回 (nil, nil)。
func (s *Store) ExportProfile(ctx context.Context) (*ProfileExport, error) {
	var p database.Profile
	err := s.db.WithContext(ctx).Preload("Translations").First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	out := &ProfileExport{
		ID:        p.ID,
		Name:      p.Name,
		Email:     p.Email,
		AvatarURL: p.AvatarURL,
	}
	if len(p.Location) > 0 {
		if err := json.Unmarshal(p.Location, &out.Location); err != nil {
			s.logger.Warn("profile location is not a JSON object", slog.Any("error", err))
		}
	}
	if len(p.SocialLinks) > 0 {
		if err := json.Unmarshal(p.SocialLinks, &out.SocialLinks); err != nil {
			s.logger.Warn("profile social_links is not a JSON object", slog.Any("error", err))
		}
	}
	for _, t := range p.Translations {
		out.Translations = append(out.Translations, ProfileTranslationInput{
			Lang:    t.Lang,
			Role:    t.Role,
			Tagline: t.Tagline,
			Bio:     t.Bio,
		})
	}
	return out, nil
}

// langFallback 返回语言解析顺序：请求语言优先，然后按注册顺序兜底。
func langFallback(lang string) []string {
	out := []string{lang}
	for _, l := range schema.Languages {
		if l != lang {
			out = append(out, l)
		}
	}
	return out
}

// Backup 导出全部内容实体与个人资料（后台首页与备份下载共用）。
// 实体按类型分组，profile 单独一键，缺失时为 null。
func (s *Store) Backup(ctx context.Context) (map[string]any, error) {
	out := make(map[string]any, len(schema.Types())+1)
	for _, t := range schema.Types() {
		entities, err := s.List(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", t, err)
		}
		out[string(t)] = entities
	}
	profile, err := s.ExportProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("export profile: %w", err)
	}
	out["profile"] = profile
	return out, nil
}

// Ping 是后台连通性自检用的轻量探针。
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.WithContext(ctx).DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
