package worker

import (
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"newslive/internal/tasks"
)

// Scheduler 按 cron 表达式周期性地投递索引巡检任务
type Scheduler struct {
	scheduler *asynq.Scheduler
	log       *logrus.Entry
}

// NewScheduler 创建 Scheduler 并注册巡检任务。
// schedule 使用 asynq 支持的格式，例如 "@every 10m"。
func NewScheduler(redisOpt asynq.RedisClientOpt, schedule string, logger *logrus.Logger) (*Scheduler, error) {
	logEntry := logger.WithField("component", "scheduler")
	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{Location: time.UTC})

	payload, err := tasks.NewIndexAuditTask(time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to create index audit task payload: %w", err)
	}
	entryID, err := scheduler.Register(schedule, asynq.NewTask(tasks.TypeIndexAudit, payload), asynq.Queue("default"))
	if err != nil {
		return nil, fmt.Errorf("could not register index audit task with schedule %q: %w", schedule, err)
	}
	logEntry.WithFields(logrus.Fields{
		"schedule": schedule,
		"entry_id": entryID,
	}).Info("Periodic index audit task registered")

	return &Scheduler{scheduler: scheduler, log: logEntry}, nil
}

// Start 运行 Scheduler，应该在单独的 goroutine 中调用
func (s *Scheduler) Start() {
	s.log.Info("Asynq scheduler starting...")
	if err := s.scheduler.Run(); err != nil {
		if errors.Is(err, asynq.ErrServerClosed) {
			s.log.Info("Asynq scheduler stopped.")
			return
		}
		s.log.WithError(err).Error("Asynq scheduler Run() failed")
	}
}

// Shutdown 停止 Scheduler
func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
	s.log.Info("Asynq scheduler shut down.")
}
