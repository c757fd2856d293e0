package queue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"newsroom-backend/internal/shared"
	"newsroom-backend/pkg/logger"
)

// JobConfig - lịch chạy các periodic task
type JobConfig struct {
	FlushViewsCron string // cron spec hoặc "@every 1m"
}

type Scheduler struct {
	scheduler *asynq.Scheduler
	jobConfig JobConfig
}

func NewScheduler(redisOpt asynq.RedisClientOpt, jobConfig JobConfig) *Scheduler {
	scheduler := asynq.NewScheduler(
		redisOpt,
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler: scheduler,
		jobConfig: jobConfig,
	}
}

// RegisterJobs đăng ký toàn bộ periodic task
func (s *Scheduler) RegisterJobs() error {
	if err := s.registerFlushViewsJob(); err != nil {
		return err
	}
	return nil
}

// ================================================
// JOB: Flush pending view counters -> Postgres
// ================================================
func (s *Scheduler) registerFlushViewsJob() error {
	payload, err := json.Marshal(shared.FlushViewsPayload{})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeFlushViews, payload)

	entryID, err := s.scheduler.Register(
		s.jobConfig.FlushViewsCron,
		task,
		asynq.Queue(shared.QueueViews),
		asynq.MaxRetry(1),
		asynq.Timeout(time.Minute),
		// Không chồng lấn: chỉ một flush trong hàng đợi tại một thời điểm
		asynq.Unique(30*time.Second),
	)
	if err != nil {
		logger.Error("Failed to register FlushViews job", err)
		return err
	}

	log.Info().
		Str("entry_id", entryID).
		Str("cron", s.jobConfig.FlushViewsCron).
		Msg("✓ Registered FlushViews")
	return nil
}

func (s *Scheduler) Run() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Start() error {
	return s.scheduler.Start()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
