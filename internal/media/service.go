package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/dutchcoders/go-clamd"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/minio/minio-go/v7"

	"phPortfolio/internal/storage"
	"phPortfolio/internal/tasks"
)

// 允许上传的图片格式，按扩展名判定。
var allowedFormats = map[string]string{
	".jpg":  "jpg",
	".jpeg": "jpg",
	".png":  "png",
	".gif":  "gif",
	".webp": "webp",
}

var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrMaliciousFile     = errors.New("malicious file detected")
)

// ObjectStore 是 Service 依赖的对象存储能力子集，测试中用假实现替换。
type ObjectStore interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (*minio.UploadInfo, error)
	DeleteObject(ctx context.Context, objectKey string) error
	PublicObjectURL(objectKey string) string
	ListObjects(ctx context.Context, prefix string, limit int) ([]storage.ObjectMeta, error)
}

// UploadResult 是上传成功后的图片描述，直接回给后台编辑器。
type UploadResult struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Format   string `json:"format"`
	Type     string `json:"type"` // "gif" 或 "image"
}

// Service 负责作品集媒体的上传、删除与浏览。
// 删除是尽力而为：远端失败只记日志并交给后台任务补偿，本地流程不中断。
type Service struct {
	store     ObjectStore
	logger    *slog.Logger
	clamdAddr string
	queue     CleanupEnqueuer
}

// CleanupEnqueuer 把失败的远端删除排进后台补偿队列。
type CleanupEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

func NewService(store ObjectStore, logger *slog.Logger, clamdAddr string, queue CleanupEnqueuer) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger, clamdAddr: clamdAddr, queue: queue}
}

// Upload 校验、扫描并上传一张图片，返回含尺寸的描述。
// folder 划分存储前缀（portfolio 与 portfolio/projects）。
// 任何一步失败都不留下半成品状态。
func (s *Service) Upload(ctx context.Context, folder, filename string, r io.Reader, size int64, contentType string) (*UploadResult, error) {
	ext := strings.ToLower(path.Ext(filename))
	format, ok := allowedFormats[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	data, err := io.ReadAll(io.LimitReader(r, size+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	if s.clamdAddr != "" {
		if err := s.scan(data); err != nil {
			return nil, err
		}
	}

	width, height := probeDimensions(data, s.logger)

	folder = strings.Trim(folder, "/")
	if folder == "" {
		folder = "portfolio"
	}
	publicID := folder + "/" + uuid.NewString() + ext

	if _, err := s.store.UploadFile(ctx, publicID, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return nil, fmt.Errorf("upload %q: %w", publicID, err)
	}

	imageType := "image"
	if format == "gif" {
		imageType = "gif"
	}
	return &UploadResult{
		URL:      s.store.PublicObjectURL(publicID),
		PublicID: publicID,
		Width:    width,
		Height:   height,
		Format:   format,
		Type:     imageType,
	}, nil
}

// Delete 删除远端对象。失败只记日志并排补偿任务，永远返回 nil 以外
// 的错误只在入参非法时出现：调用方的本地流程不应被远端状态阻塞。
func (s *Service) Delete(ctx context.Context, publicID string) {
	if strings.TrimSpace(publicID) == "" {
		return
	}
	err := s.store.DeleteObject(ctx, publicID)
	if err == nil || storage.IsNoSuchKey(err) {
		return
	}

	s.logger.Error("delete media object",
		slog.String("public_id", publicID),
		slog.String("error", err.Error()),
	)
	if s.queue == nil {
		return
	}
	task, err := tasks.NewMediaCleanupTask(publicID)
	if err != nil {
		s.logger.Error("build cleanup task", slog.String("error", err.Error()))
		return
	}
	if _, err := s.queue.Enqueue(task, asynq.MaxRetry(10), asynq.Timeout(time.Minute)); err != nil {
		s.logger.Error("enqueue cleanup task", slog.String("error", err.Error()))
	}
}

// Browse 列出某前缀下的媒体对象及其公开地址。
func (s *Service) Browse(ctx context.Context, prefix string, limit int) ([]BrowseItem, error) {
	objects, err := s.store.ListObjects(ctx, prefix, limit)
	if err != nil {
		return nil, fmt.Errorf("browse media %q: %w", prefix, err)
	}
	items := make([]BrowseItem, 0, len(objects))
	for _, obj := range objects {
		items = append(items, BrowseItem{
			PublicID:     obj.Key,
			URL:          s.store.PublicObjectURL(obj.Key),
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
	}
	return items, nil
}

// BrowseItem 是媒体浏览器里的一个对象。
type BrowseItem struct {
	PublicID     string    `json:"public_id"`
	URL          string    `json:"url"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

func (s *Service) scan(data []byte) error {
	clamdClient := clamd.NewClamd(s.clamdAddr)
	abortChan := make(chan bool)
	defer close(abortChan)

	scanChan, err := clamdClient.ScanStream(bytes.NewReader(data), abortChan)
	if err != nil {
		return fmt.Errorf("scan upload: %w", err)
	}
	for result := range scanChan {
		if result.Status != clamd.RES_OK {
			return ErrMaliciousFile
		}
	}
	return nil
}

// probeDimensions 解码图片取宽高（带 EXIF 方向矫正）。
// 解码失败不视为致命：尺寸置零，记一条警告。
func probeDimensions(data []byte, logger *slog.Logger) (int, int) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		logger.Warn("probe image dimensions", slog.String("error", err.Error()))
		return 0, 0
	}
	bounds := img.Bounds()
	return bounds.Dx(), bounds.Dy()
}
