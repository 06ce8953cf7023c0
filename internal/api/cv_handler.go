package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"

	"phPortfolio/internal/api/middleware"
	"phPortfolio/internal/cv"
	"phPortfolio/internal/database"
	"phPortfolio/internal/errcode"
	"phPortfolio/internal/storage"
	"phPortfolio/internal/tasks"
)

// CVHandler 暴露 CV 文档与 PDF 生成接口。
// PDF 在 worker 里异步渲染，结果通过通知频道推回后台。
type CVHandler struct {
	db          *gorm.DB
	builder     *cv.Builder
	asynqClient *asynq.Client
	storage     *storage.Client
	logger      *slog.Logger
}

func NewCVHandler(db *gorm.DB, builder *cv.Builder, asynqClient *asynq.Client, storageClient *storage.Client, logger *slog.Logger) *CVHandler {
	return &CVHandler{
		db:          db,
		builder:     builder,
		asynqClient: asynqClient,
		storage:     storageClient,
		logger:      logger,
	}
}

// GetDocument 返回某语言的 CV JSON 文档（公开）。
func (h *CVHandler) GetDocument(c *gin.Context) {
	lang := normalizeLang(c.Query("lang"))
	doc, err := h.builder.Build(c.Request.Context(), lang)
	if err != nil {
		h.logger.Error("build cv document", slog.Any("error", err))
		Internal(c, "failed to build cv")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": doc})
}

// PrintData 供 PDF 渲染器内部调用，返回打印页吃的文档。
// 挂在 InternalSecretMiddleware 之后。
func (h *CVHandler) PrintData(c *gin.Context) {
	lang := normalizeLang(c.Param("lang"))
	doc, err := h.builder.Build(c.Request.Context(), lang)
	if err != nil {
		h.logger.Error("build print data", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"code": errcode.SystemError, "error": "failed to build print data"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": errcode.OK, "data": doc})
}

type generateCVRequest struct {
	Lang string `json:"lang"`
}

// Generate 排一个 CV PDF 生成任务，立即返回 202。
func (h *CVHandler) Generate(c *gin.Context) {
	var req generateCVRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	lang := normalizeLang(req.Lang)

	userID, ok := userIDFromContext(c)
	if !ok {
		Unauthorized(c)
		return
	}

	correlationID := middleware.GetCorrelationID(c)
	task, err := tasks.NewCVGenerateTask(lang, userID, correlationID)
	if err != nil {
		Internal(c, "failed to build task")
		return
	}

	ctx := c.Request.Context()
	if err := h.db.WithContext(ctx).
		Where(database.CVDocument{Lang: lang}).
		Assign(database.CVDocument{Status: "pending"}).
		FirstOrCreate(&database.CVDocument{}).Error; err != nil {
		h.logger.Error("mark cv pending", slog.Any("error", err))
		Internal(c, "failed to schedule generation")
		return
	}

	info, err := h.asynqClient.Enqueue(task, asynq.MaxRetry(3), asynq.Timeout(5*time.Minute))
	if err != nil {
		h.logger.Error("enqueue cv generation", slog.Any("error", err))
		Internal(c, "failed to enqueue cv generation")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "CV generation request accepted",
		"task_id": info.ID,
	})
}

// DownloadLink 返回最近一次生成 PDF 的限时下载链接。
func (h *CVHandler) DownloadLink(c *gin.Context) {
	lang := normalizeLang(c.Query("lang"))
	ctx := c.Request.Context()

	var doc database.CVDocument
	if err := h.db.WithContext(ctx).Where("lang = ?", lang).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "cv not generated yet")
			return
		}
		h.logger.Error("load cv document", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}
	if doc.Status != "ready" || doc.PdfURL == "" {
		c.JSON(http.StatusConflict, gin.H{"error": "cv generation in progress", "status": doc.Status})
		return
	}

	url, err := h.storage.GeneratePresignedURL(ctx, doc.PdfURL, 10*time.Minute)
	if err != nil {
		h.logger.Error("presign cv pdf", slog.Any("error", err))
		Internal(c, "failed to generate download link")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "url": url, "lang": lang})
}
