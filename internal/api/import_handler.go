package api

import (
	"context"
	"log/slog"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"phPortfolio/internal/ai"
	"phPortfolio/internal/api/middleware"
	"phPortfolio/internal/github"
	"phPortfolio/internal/notify"
)

// 导入过程中轮播的状态行。随机挑选，只为让等待显得有生命力，
// 和后端实际进度无关。
var importStatusLines = []string{
	"Leyendo el README...",
	"Analizando la estructura del repositorio...",
	"Identificando el stack tecnológico...",
	"Buscando capturas y GIFs...",
	"Redactando la narrativa del proyecto...",
	"Traduciendo al inglés y español...",
	"Puliendo los últimos detalles...",
}

// ImportHandler 驱动 GitHub → AI → 表单草稿的导入管线。
type ImportHandler struct {
	github    *github.Client
	generator *ai.Generator
	notifier  *notify.Publisher
	logger    *slog.Logger
}

func NewImportHandler(gh *github.Client, generator *ai.Generator, notifier *notify.Publisher, logger *slog.Logger) *ImportHandler {
	return &ImportHandler{github: gh, generator: generator, notifier: notifier, logger: logger}
}

type importRequest struct {
	GithubURL string `json:"github_url"`
	ModelName string `json:"model_name"`
}

// ImportGithub 同步执行导入并返回项目草稿。调用在途期间每隔固定
// 间隔往通知频道发一条随机状态行。
func (h *ImportHandler) ImportGithub(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.GithubURL) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "github_url is required"})
		return
	}

	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	ctx := c.Request.Context()
	correlationID := middleware.GetCorrelationID(c)
	logger := h.logger.With(
		slog.String("correlation_id", correlationID),
		slog.String("github_url", req.GithubURL),
	)

	stop := h.startProgressTicker(ctx, userID, correlationID)
	defer stop()

	repoContext, err := h.github.FetchRepoContext(ctx, req.GithubURL)
	if err != nil {
		logger.Warn("fetch repo context failed", slog.Any("error", err))
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "Import failed: " + err.Error()})
		return
	}

	draft, err := h.generator.AnalyzeRepo(ctx, repoContext, req.ModelName)
	if err != nil {
		logger.Error("ai analysis failed", slog.Any("error", err))
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "Import failed: " + err.Error()})
		return
	}

	logger.Info("ai import completed")
	c.JSON(http.StatusOK, gin.H{"success": true, "data": draft.ToEntity(), "draft": draft})
}

// startProgressTicker 启动状态行轮播，返回停止函数。
func (h *ImportHandler) startProgressTicker(ctx context.Context, userID uint, correlationID string) func() {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2500 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.notifier.Publish(ctx, userID, notify.ImportProgressMessage{
					Type:          "ai_import_progress",
					Status:        importStatusLines[rand.Intn(len(importStatusLines))],
					CorrelationID: correlationID,
				})
			}
		}
	}()
	return func() { close(done) }
}
