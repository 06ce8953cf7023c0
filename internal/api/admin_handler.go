package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"phPortfolio/internal/cache"
	"phPortfolio/internal/schema"
	"phPortfolio/internal/store"
)

// AdminHandler 暴露内容管理面：表单描述、保存、删除、全量数据与备份。
type AdminHandler struct {
	store  *store.Store
	cache  *cache.Cache
	logger *slog.Logger
}

func NewAdminHandler(s *store.Store, c *cache.Cache, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{store: s, cache: c, logger: logger}
}

// GetForm 返回某类型的表单描述。带 ?id= 为编辑模式，否则创建模式。
func (h *AdminHandler) GetForm(c *gin.Context) {
	t := schema.EntityType(c.Param("type"))
	ctx := c.Request.Context()

	var entity *schema.Entity
	if raw := c.Query("id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			BadRequest(c, "invalid id")
			return
		}
		entity, err = h.store.Load(ctx, t, uint(id))
		if err != nil {
			h.replyStoreError(c, err)
			return
		}
	}

	var opts schema.RenderOptions
	if t == schema.TypeSkill {
		categories, err := h.store.SkillCategoryOptions(ctx)
		if err != nil {
			h.logger.Error("load skill categories", slog.Any("error", err))
			Internal(c, "failed to load skill categories")
			return
		}
		opts.SkillCategories = categories
	}

	desc, err := schema.RenderForm(t, entity, opts)
	if err != nil {
		h.replyStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, desc)
}

// Save 执行采集算法并持久化，成功后作废公开缓存。
// profile 是单例，不走实体表单引擎，单独分派。
func (h *AdminHandler) Save(c *gin.Context) {
	if c.Param("type") == "profile" {
		h.saveProfile(c)
		return
	}
	t := schema.EntityType(c.Param("type"))

	var raw schema.RawSubmission
	if err := c.ShouldBindJSON(&raw); err != nil {
		BadRequest(c, err.Error())
		return
	}

	entity, err := schema.CollectPayload(t, raw)
	if err != nil {
		h.replyStoreError(c, err)
		return
	}

	ctx := c.Request.Context()
	id, slug, err := h.store.Save(ctx, t, entity)
	if err != nil {
		h.replyStoreError(c, err)
		return
	}

	h.cache.InvalidateAll(ctx)
	c.JSON(http.StatusOK, gin.H{"success": true, "id": id, "slug": slug})
}

// profileSubmission 是个人资料的提交负载：标量字段加每语言一组文案。
type profileSubmission struct {
	Name         string                             `json:"name"`
	Email        string                             `json:"email"`
	AvatarURL    string                             `json:"avatar_url"`
	Location     map[string]string                  `json:"location"`
	Social       map[string]string                  `json:"social"`
	Translations map[string]profileTranslationInput `json:"translations"`
}

type profileTranslationInput struct {
	Role    string `json:"role"`
	Tagline string `json:"tagline"`
	Bio     string `json:"bio"`
}

func (h *AdminHandler) saveProfile(c *gin.Context) {
	var raw profileSubmission
	if err := c.ShouldBindJSON(&raw); err != nil {
		BadRequest(c, err.Error())
		return
	}

	in := store.ProfileInput{
		Name:        raw.Name,
		Email:       raw.Email,
		AvatarURL:   raw.AvatarURL,
		Location:    raw.Location,
		SocialLinks: raw.Social,
	}
	// 每种注册语言都落一行文案，缺失的语言写空值。
	for _, lang := range schema.Languages {
		t := raw.Translations[lang]
		in.Translations = append(in.Translations, store.ProfileTranslationInput{
			Lang:    lang,
			Role:    t.Role,
			Tagline: t.Tagline,
			Bio:     t.Bio,
		})
	}

	ctx := c.Request.Context()
	if err := h.store.SaveProfile(ctx, in); err != nil {
		h.logger.Error("save profile", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	h.cache.InvalidateAll(ctx)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Delete 按类型与 id 删除实体，成功后作废公开缓存。
func (h *AdminHandler) Delete(c *gin.Context) {
	t := schema.EntityType(c.Param("type"))
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		BadRequest(c, "invalid id")
		return
	}

	ctx := c.Request.Context()
	if err := h.store.Delete(ctx, t, uint(id)); err != nil {
		h.replyStoreError(c, err)
		return
	}

	h.cache.InvalidateAll(ctx)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetData 返回后台首页需要的全量内容集。
func (h *AdminHandler) GetData(c *gin.Context) {
	data, err := h.store.Backup(c.Request.Context())
	if err != nil {
		h.logger.Error("load admin data", slog.Any("error", err))
		Internal(c, "failed to load data")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

// Check 是数据库连通性自检，失败时短暂重试。
func (h *AdminHandler) Check(c *gin.Context) {
	ctx := c.Request.Context()

	var err error
	for attempt := 0; attempt < 3; attempt++ {
		if err = h.store.Ping(ctx); err == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
			return
		}
		select {
		case <-ctx.Done():
			Internal(c, "database unreachable")
			return
		case <-time.After(time.Duration(attempt+1) * 200 * time.Millisecond):
		}
	}

	h.logger.Error("database check failed", slog.Any("error", err))
	c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "error": "database unreachable"})
}

// Backup 导出全部内容为 JSON 附件。
func (h *AdminHandler) Backup(c *gin.Context) {
	data, err := h.store.Backup(c.Request.Context())
	if err != nil {
		h.logger.Error("export backup", slog.Any("error", err))
		Internal(c, "failed to export backup")
		return
	}

	filename := "portfolio-backup-" + time.Now().UTC().Format("20060102-150405") + ".json"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.JSON(http.StatusOK, data)
}

// replyStoreError 把存储/类型错误映射到 HTTP 状态码。
func (h *AdminHandler) replyStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, schema.ErrUnknownType):
		BadRequest(c, err.Error())
	case errors.Is(err, store.ErrInvalidCategory):
		BadRequest(c, err.Error())
	case errors.Is(err, store.ErrNotFound):
		NotFound(c, "entity not found")
	default:
		h.logger.Error("store operation failed", slog.Any("error", err))
		Internal(c, "internal error")
	}
}
