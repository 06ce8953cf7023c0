package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"phPortfolio/internal/cache"
	"phPortfolio/internal/schema"
	"phPortfolio/internal/store"
)

// PublicHandler 暴露站点前端消费的只读 API。响应按 (语言, 过滤条件)
// 进 redis 缓存，后台任何一次成功写操作后整体作废。
type PublicHandler struct {
	store  *store.Store
	cache  *cache.Cache
	logger *slog.Logger
}

func NewPublicHandler(s *store.Store, c *cache.Cache, logger *slog.Logger) *PublicHandler {
	return &PublicHandler{store: s, cache: c, logger: logger}
}

// publicEntity 是公开列表里的一个条目：翻译已按语言解析平铺。
type publicEntity struct {
	ID          uint              `json:"id"`
	Type        string            `json:"type"`
	Slug        string            `json:"slug,omitempty"`
	Title       string            `json:"title,omitempty"`
	Subtitle    string            `json:"subtitle,omitempty"`
	Summary     string            `json:"summary,omitempty"`
	Description string            `json:"description,omitempty"`
	Category    string            `json:"category,omitempty"`
	Company     string            `json:"company,omitempty"`
	Institution string            `json:"institution,omitempty"`
	Location    string            `json:"location,omitempty"`
	StartDate   string            `json:"startDate,omitempty"`
	EndDate     string            `json:"endDate,omitempty"`
	Current     bool              `json:"current,omitempty"`
	Issuer      string            `json:"issuer,omitempty"`
	IssueDate   string            `json:"issueDate,omitempty"`
	URL         string            `json:"url,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	Courses     []string          `json:"courses,omitempty"`
	URLs        []schema.URLRow   `json:"urls,omitempty"`
	Images      []schema.ImageRow `json:"images,omitempty"`
}

// GetEntities 返回公开实体列表，支持 ?lang&type&category 过滤。
func (h *PublicHandler) GetEntities(c *gin.Context) {
	lang := normalizeLang(c.Query("lang"))
	typeFilter := c.Query("type")
	category := c.Query("category")
	ctx := c.Request.Context()

	key := cache.EntityKey(lang, typeFilter, category)
	var cached []publicEntity
	if err := h.cache.Get(ctx, key, &cached); err == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": cached})
		return
	}

	types := schema.Types()
	if typeFilter != "" {
		if _, err := schema.SchemaFor(schema.EntityType(typeFilter)); err != nil {
			BadRequest(c, "unknown type")
			return
		}
		types = []schema.EntityType{schema.EntityType(typeFilter)}
	}

	out := make([]publicEntity, 0, 32)
	for _, t := range types {
		entities, err := h.store.List(ctx, t)
		if err != nil {
			h.logger.Error("list entities", slog.String("type", string(t)), slog.Any("error", err))
			Internal(c, "failed to load entities")
			return
		}
		for _, e := range entities {
			if category != "" && t == schema.TypeProject && e.Category != category {
				continue
			}
			out = append(out, toPublicEntity(t, e, lang))
		}
	}

	h.cache.Set(ctx, key, out)
	c.JSON(http.StatusOK, gin.H{"success": true, "data": out})
}

// GetProfile 返回按语言解析的个人资料。
func (h *PublicHandler) GetProfile(c *gin.Context) {
	lang := normalizeLang(c.Query("lang"))
	ctx := c.Request.Context()

	key := cache.ProfileKey(lang)
	var cached store.ProfileView
	if err := h.cache.Get(ctx, key, &cached); err == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": cached})
		return
	}

	profile, err := h.store.LoadProfile(ctx, lang)
	if err != nil {
		h.replyStoreError(c, err)
		return
	}

	h.cache.Set(ctx, key, profile)
	c.JSON(http.StatusOK, gin.H{"success": true, "data": profile})
}

// skillGroup 是按分类分组后的技能树节点。
type skillGroup struct {
	Slug   string       `json:"slug"`
	Name   string       `json:"name"`
	Order  int          `json:"order"`
	Skills []skillEntry `json:"skills"`
}

type skillEntry struct {
	Name        string `json:"name"`
	IconURL     string `json:"icon_url,omitempty"`
	Proficiency int    `json:"proficiency"`
}

// GetSkills 返回按分类分组的技能树，只含 is_visible_portfolio 的技能。
func (h *PublicHandler) GetSkills(c *gin.Context) {
	lang := normalizeLang(c.Query("lang"))
	ctx := c.Request.Context()

	key := cache.SkillsKey(lang)
	var cached []skillGroup
	if err := h.cache.Get(ctx, key, &cached); err == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": cached})
		return
	}

	categories, err := h.store.List(ctx, schema.TypeSkillCategory)
	if err != nil {
		h.logger.Error("list skill categories", slog.Any("error", err))
		Internal(c, "failed to load skills")
		return
	}
	skills, err := h.store.List(ctx, schema.TypeSkill)
	if err != nil {
		h.logger.Error("list skills", slog.Any("error", err))
		Internal(c, "failed to load skills")
		return
	}

	groups := make([]skillGroup, 0, len(categories)+1)
	index := make(map[uint]int, len(categories))
	for _, cat := range categories {
		if cat.ID == nil {
			continue
		}
		index[*cat.ID] = len(groups)
		groups = append(groups, skillGroup{
			Slug:  cat.Slug,
			Name:  schema.ResolveTranslation(cat.Translations, lang).Name,
			Order: cat.Order,
		})
	}
	// 没有分类的技能落到末尾的 otros 组。
	orphan := skillGroup{Slug: "otros", Name: "Otros", Order: len(groups)}

	for _, s := range skills {
		if s.VisibleSite != nil && !*s.VisibleSite {
			continue
		}
		entry := skillEntry{
			Name:        schema.ResolveTranslation(s.Translations, lang).Name,
			IconURL:     s.IconURL,
			Proficiency: s.Proficiency,
		}
		if s.CategoryID != nil {
			if i, ok := index[*s.CategoryID]; ok {
				groups[i].Skills = append(groups[i].Skills, entry)
				continue
			}
		}
		orphan.Skills = append(orphan.Skills, entry)
	}
	if len(orphan.Skills) > 0 {
		groups = append(groups, orphan)
	}

	h.cache.Set(ctx, key, groups)
	c.JSON(http.StatusOK, gin.H{"success": true, "data": groups})
}

func (h *PublicHandler) replyStoreError(c *gin.Context, err error) {
	switch {
	case err == nil:
		return
	case errors.Is(err, store.ErrNotFound):
		NotFound(c, "not found")
	default:
		h.logger.Error("public read failed", slog.Any("error", err))
		Internal(c, "internal error")
	}
}

func toPublicEntity(t schema.EntityType, e schema.Entity, lang string) publicEntity {
	tr := schema.ResolveTranslation(e.Translations, lang)
	out := publicEntity{
		Type:        string(t),
		Slug:        e.Slug,
		Title:       tr.DisplayTitle(),
		Subtitle:    tr.Subtitle,
		Summary:     tr.Summary,
		Description: tr.Description,
		Category:    e.Category,
		Company:     e.Company,
		Institution: e.Institution,
		Location:    e.Location,
		StartDate:   e.StartDate,
		EndDate:     e.EndDate,
		Current:     e.Current,
		Issuer:      e.Issuer,
		IssueDate:   e.IssueDate,
		URL:         e.Credential,
		Tags:        e.Tags,
		Courses:     e.Courses,
		URLs:        e.EffectiveURLRows(),
		Images:      e.Images,
	}
	if e.ID != nil {
		out.ID = *e.ID
	}
	return out
}

func normalizeLang(lang string) string {
	for _, l := range schema.Languages {
		if l == lang {
			return lang
		}
	}
	return schema.Languages[0]
}
