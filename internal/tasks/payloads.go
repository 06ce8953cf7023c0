package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// 任务类型常量，确保队列生产者与消费者一致。
const (
	TypeCVGenerate   = "cv:generate"
	TypeMediaCleanup = "media:cleanup"
)

// CVGeneratePayload 描述生成某语言 CV PDF 所需的最小信息。
// UserID 用于把生成结果推送回发起请求的后台账号。
type CVGeneratePayload struct {
	Lang          string `json:"lang"`
	UserID        uint   `json:"user_id"`
	CorrelationID string `json:"correlation_id"`
}

// NewCVGenerateTask 构造一个新的 CV PDF 生成任务。
func NewCVGenerateTask(lang string, userID uint, correlationID string) (*asynq.Task, error) {
	payload, err := json.Marshal(CVGeneratePayload{
		Lang:          lang,
		UserID:        userID,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeCVGenerate, payload), nil
}

// MediaCleanupPayload 记录一次失败的远端删除，等待后台补偿重试。
type MediaCleanupPayload struct {
	PublicID string `json:"public_id"`
}

// NewMediaCleanupTask 构造一个媒体对象补偿删除任务。
func NewMediaCleanupTask(publicID string) (*asynq.Task, error) {
	payload, err := json.Marshal(MediaCleanupPayload{PublicID: publicID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeMediaCleanup, payload), nil
}
