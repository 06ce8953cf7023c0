package worker

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"phPortfolio/internal/storage"
	"phPortfolio/internal/tasks"
)

// MediaCleanupHandler 补偿删除同步路径里删不掉的远端媒体对象。
// asynq 的重试策略负责退避，这里只做一次尽力删除。
type MediaCleanupHandler struct {
	storage *storage.Client
	logger  *slog.Logger
}

func NewMediaCleanupHandler(storageClient *storage.Client, logger *slog.Logger) *MediaCleanupHandler {
	return &MediaCleanupHandler{storage: storageClient, logger: logger}
}

// ProcessTask 实现 asynq.Handler。
func (h *MediaCleanupHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload tasks.MediaCleanupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		h.logger.Error("unmarshal cleanup payload failed", slog.Any("error", err))
		return err
	}

	log := h.logger.With(slog.String("public_id", payload.PublicID))

	if err := h.storage.DeleteObject(ctx, payload.PublicID); err != nil {
		if storage.IsNoSuchKey(err) {
			log.Info("media object already gone")
			return nil
		}
		log.Warn("media cleanup attempt failed", slog.Any("error", err))
		return err
	}

	log.Info("orphaned media object removed")
	return nil
}
