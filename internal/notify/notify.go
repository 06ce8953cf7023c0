package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// Channel 返回某个后台账号的通知频道名。
// WebSocket 网关按同样的规则订阅。
func Channel(userID uint) string {
	return fmt.Sprintf("admin_notify:%d", userID)
}

// ImportProgressMessage 是 AI 导入过程中的状态行。
// 仅用于感知进度，和后端实际进度没有语义关联。
type ImportProgressMessage struct {
	Type          string `json:"type"` // "ai_import_progress"
	Status        string `json:"status"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// CVGenerationMessage 通知某语言 CV PDF 的生成结果。
type CVGenerationMessage struct {
	Type          string `json:"type"` // "cv_generation"
	Status        string `json:"status"`
	Lang          string `json:"lang"`
	PdfURL        string `json:"pdf_url,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
	ErrorMessage  string `json:"error_message,omitempty"`
}

// Publisher 把消息编码后发布到 redis 频道。发布失败只记日志，
// 通知流永远不阻塞业务路径。
type Publisher struct {
	client *redis.Client
	logger *slog.Logger
}

func NewPublisher(client *redis.Client, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{client: client, logger: logger}
}

func (p *Publisher) Publish(ctx context.Context, userID uint, message any) {
	payload, err := json.Marshal(message)
	if err != nil {
		p.logger.Error("marshal notify message", slog.Any("error", err))
		return
	}
	if err := p.client.Publish(ctx, Channel(userID), payload).Err(); err != nil {
		p.logger.Warn("publish notify message", slog.String("channel", Channel(userID)), slog.Any("error", err))
	}
}
