package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/go-rod/rod"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"

	"phPortfolio/internal/database"
	"phPortfolio/internal/notify"
	"phPortfolio/internal/storage"
	"phPortfolio/internal/tasks"
)

// CVTaskHandler 负责消费 CV PDF 生成任务。
type CVTaskHandler struct {
	db                 *gorm.DB
	storage            *storage.Client
	notifier           *notify.Publisher
	logger             *slog.Logger
	internalSecret     string
	internalAPIBaseURL string
	frontendBaseURL    string
}

// NewCVTaskHandler 创建任务处理器。
func NewCVTaskHandler(
	db *gorm.DB,
	storage *storage.Client,
	notifier *notify.Publisher,
	logger *slog.Logger,
	internalSecret string,
	internalAPIBaseURL string,
	frontendBaseURL string,
) *CVTaskHandler {
	return &CVTaskHandler{
		db:                 db,
		storage:            storage,
		notifier:           notifier,
		logger:             logger,
		internalSecret:     internalSecret,
		internalAPIBaseURL: strings.TrimRight(strings.TrimSpace(internalAPIBaseURL), "/"),
		frontendBaseURL:    strings.TrimRight(strings.TrimSpace(frontendBaseURL), "/"),
	}
}

// ProcessTask 实现 asynq.Handler。
func (h *CVTaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) (retErr error) {
	log := h.logger

	var payload tasks.CVGeneratePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		log.Error("unmarshal task payload failed", slog.Any("error", err))
		return err
	}

	log = log.With(
		slog.String("correlation_id", payload.CorrelationID),
		slog.String("lang", payload.Lang),
	)
	log.Info("Starting CV PDF generation task...")

	var doc database.CVDocument
	if err := h.db.WithContext(ctx).Where("lang = ?", payload.Lang).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("cv document record not found, skipping task")
			return nil
		}
		log.Error("query cv document failed", slog.Any("error", err))
		return err
	}

	defer func() {
		if retErr == nil {
			return
		}
		if !isFinalAsynqAttempt(ctx) {
			return
		}

		if err := h.db.WithContext(ctx).Model(&doc).Update("status", "error").Error; err != nil {
			log.Error("mark cv document failed", slog.Any("error", err))
		}
		h.notifier.Publish(ctx, payload.UserID, notify.CVGenerationMessage{
			Type:          "cv_generation",
			Status:        "error",
			Lang:          payload.Lang,
			CorrelationID: payload.CorrelationID,
			ErrorMessage:  strings.TrimSpace(retErr.Error()),
		})
	}()

	pdfBytes, cleanup, err := h.generatePDFFromFrontend(ctx, payload.Lang, payload.CorrelationID)
	if err != nil {
		log.Error("generate pdf via frontend failed", slog.Any("error", err))
		return err
	}
	defer cleanup()

	objectName := fmt.Sprintf("generated-cv/%s/%s.pdf", payload.Lang, uuid.NewString())
	pdfReader := bytes.NewReader(pdfBytes)
	if _, err := h.storage.UploadFile(ctx, objectName, pdfReader, int64(len(pdfBytes)), "application/pdf"); err != nil {
		log.Error("upload pdf to minio failed", slog.Any("error", err))
		return err
	}

	update := map[string]any{
		"pdf_url": objectName,
		"status":  "ready",
	}
	if err := h.db.WithContext(ctx).Model(&doc).Updates(update).Error; err != nil {
		log.Error("update cv document failed", slog.Any("error", err))
		return err
	}

	h.notifier.Publish(ctx, payload.UserID, notify.CVGenerationMessage{
		Type:          "cv_generation",
		Status:        "ready",
		Lang:          payload.Lang,
		PdfURL:        objectName,
		CorrelationID: payload.CorrelationID,
	})

	log.Info("CV PDF generation task completed successfully.")
	return nil
}

func (h *CVTaskHandler) generatePDFFromFrontend(ctx context.Context, lang string, correlationID string) (_ []byte, cleanup func(), err error) {
	cleanup = func() {}
	defer func() {
		if err != nil {
			cleanup()
		}
	}()

	printData, err := fetchCVPrintData(ctx, h.internalAPIBaseURL, lang, h.internalSecret, correlationID)
	if err != nil {
		return nil, cleanup, err
	}

	targetURL := fmt.Sprintf("%s/cv/print?lang=%s", h.frontendBaseURL, url.QueryEscape(lang))

	injectionScript := buildPrintDataInjectionScript(printData)
	var page *rod.Page
	page, cleanup, err = renderPrintPage(h.logger, targetURL, injectionScript)
	if err != nil {
		return nil, cleanup, err
	}

	data, err := exportPDF(page)
	if err != nil {
		return nil, cleanup, err
	}

	return data, cleanup, nil
}

func isFinalAsynqAttempt(ctx context.Context) bool {
	retryCount, ok1 := asynq.GetRetryCount(ctx)
	maxRetry, ok2 := asynq.GetMaxRetry(ctx)
	if !ok1 || !ok2 {
		return false
	}
	return retryCount >= maxRetry
}
