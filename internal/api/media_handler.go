package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"phPortfolio/internal/media"
)

// MediaHandler 负责后台的图片上传、删除与媒体浏览。
type MediaHandler struct {
	media    *media.Service
	logger   *slog.Logger
	maxBytes int64
}

func NewMediaHandler(service *media.Service, logger *slog.Logger, maxBytes int64) *MediaHandler {
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &MediaHandler{media: service, logger: logger, maxBytes: maxBytes}
}

// UploadImage 接收 multipart {file, folder}，回传图片描述。
// 响应形状固定为 {success, url, public_id, width, height, format}。
func (h *MediaHandler) UploadImage(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "missing file"})
		return
	}
	if file.Size > h.maxBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"success": false, "error": "file too large"})
		return
	}
	folder := c.PostForm("folder")

	reader, err := file.Open()
	if err != nil {
		h.logger.Error("open upload", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to read file"})
		return
	}
	defer reader.Close()

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	result, err := h.media.Upload(c.Request.Context(), folder, file.Filename, reader, file.Size, contentType)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, media.ErrUnsupportedFormat) || errors.Is(err, media.ErrMaliciousFile) {
			status = http.StatusBadRequest
		} else {
			h.logger.Error("upload image", slog.Any("error", err))
		}
		c.JSON(status, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"url":       result.URL,
		"public_id": result.PublicID,
		"width":     result.Width,
		"height":    result.Height,
		"format":    result.Format,
		"type":      result.Type,
	})
}

type deleteImageRequest struct {
	PublicID string `json:"public_id" binding:"required"`
}

// DeleteImage 尽力删除远端对象。远端失败不拦截本地流程，
// 补偿重试由后台任务接手，响应总是成功。
func (h *MediaHandler) DeleteImage(c *gin.Context) {
	var req deleteImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "missing public_id"})
		return
	}

	h.media.Delete(c.Request.Context(), req.PublicID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Browse 列出媒体库中某前缀下的对象。
func (h *MediaHandler) Browse(c *gin.Context) {
	prefix := c.DefaultQuery("prefix", "portfolio/")
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit <= 0 {
		limit = 100
	}
	if limit > 500 {
		limit = 500
	}

	items, err := h.media.Browse(c.Request.Context(), prefix, limit)
	if err != nil {
		h.logger.Error("browse media", slog.Any("error", err))
		Internal(c, "failed to browse media")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "items": items})
}
