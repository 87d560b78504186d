package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"newslive/internal/metrics"
	"newslive/internal/repository"
	"newslive/internal/tasks"
)

// IndexAuditHandler 处理索引巡检任务。
// 只报告悬空的索引项，不修改任何数据。
type IndexAuditHandler struct {
	articleRepo repository.ArticleRepository
}

// NewIndexAuditHandler 创建 IndexAuditHandler 实例
func NewIndexAuditHandler(articleRepo repository.ArticleRepository) *IndexAuditHandler {
	if articleRepo == nil {
		panic("ArticleRepository cannot be nil for IndexAuditHandler")
	}
	return &IndexAuditHandler{articleRepo: articleRepo}
}

// ProcessTask 实现 asynq.Handler 接口
func (h *IndexAuditHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	taskID := ""
	if rw := t.ResultWriter(); rw != nil {
		taskID = rw.TaskID()
	}
	logCtx := logrus.WithFields(logrus.Fields{
		"task_id":   taskID,
		"task_type": t.Type(),
	})

	var payload tasks.IndexAuditPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			logCtx.WithError(err).Error("Failed to unmarshal task payload")
			return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
		}
	}

	report, err := h.articleRepo.AuditIndexes(ctx)
	if err != nil {
		metrics.ObserveIndexAudit(nil, err)
		logCtx.WithError(err).Error("Index audit failed")
		return fmt.Errorf("index audit failed: %w", err)
	}

	dangling := map[string]int{"by_date": len(report.DanglingByDate)}
	for category, ids := range report.DanglingByCategory {
		dangling["category:"+string(category)] = len(ids)
	}
	metrics.ObserveIndexAudit(dangling, nil)

	logCtx = logCtx.WithFields(logrus.Fields{
		"indexed":       report.IndexedByDate,
		"dangling":      report.DanglingCount(),
		"registered_at": payload.RegisteredAt,
	})
	if report.DanglingCount() > 0 {
		logCtx.WithField("dangling_by_date", report.DanglingByDate).Warn("Index audit found dangling entries")
		return nil
	}
	logCtx.Info("Index audit completed, indexes consistent")
	return nil
}
