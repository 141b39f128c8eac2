package jobs

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Scheduler enqueues maintenance tasks onto the redis stream the in-process
// consumer drains.
type Scheduler struct {
	cron   *cron.Cron
	queue  *redis.Client
	stream string
	log    zerolog.Logger
}

func NewScheduler(queue *redis.Client, stream string, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:   c,
		queue:  queue,
		stream: stream,
		log:    log,
	}
}

func (s *Scheduler) Start() error {
	if s.queue == nil {
		return nil
	}

	if _, err := s.cron.AddFunc("0 10 0 * * *", s.enqueueUsageReset); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("0 0 */1 * * *", s.enqueueSessionSweep); err != nil { // hourly
		return err
	}

	s.cron.Start()
	return nil
}

// Stop waits for running jobs to finish, up to a short grace period.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) enqueueUsageReset() {
	if err := s.enqueueTask(map[string]any{"type": TaskUsageReset}); err != nil {
		s.log.Error().Err(err).Msg("enqueue usage reset failed")
	}
}

func (s *Scheduler) enqueueSessionSweep() {
	if err := s.enqueueTask(map[string]any{"type": TaskSessionSweep}); err != nil {
		s.log.Error().Err(err).Msg("enqueue session sweep failed")
	}
}

func (s *Scheduler) enqueueTask(payload map[string]any) error {
	if s.queue == nil {
		return nil
	}
	_, err := s.queue.XAdd(context.Background(), &redis.XAddArgs{
		Stream: s.stream,
		Values: payload,
	}).Result()
	return err
}
