package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// Enqueuer is the part of *asynq.Client used by Scheduler.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// TaskDeleter is the part of *asynq.Inspector used by Scheduler.
type TaskDeleter interface {
	DeleteTask(queue, id string) error
}

// Scheduler enqueues survey close tasks at the survey end time. It satisfies
// services.CloseScheduler.
type Scheduler struct {
	Client    Enqueuer
	Inspector TaskDeleter
	Queue     string
	Log       zerolog.Logger

	closers []func() error
}

// NewScheduler connects a client and an inspector to the asynq Redis.
func NewScheduler(opt asynq.RedisConnOpt, log zerolog.Logger) *Scheduler {
	client := asynq.NewClient(opt)
	inspector := asynq.NewInspector(opt)
	return &Scheduler{
		Client:    client,
		Inspector: inspector,
		Queue:     DefaultQueue,
		Log:       log,
		closers:   []func() error{client.Close, inspector.Close},
	}
}

func (s *Scheduler) queue() string {
	if s.Queue == "" {
		return DefaultQueue
	}
	return s.Queue
}

// ScheduleClose replaces any pending close task of surveyID with one that
// runs at at.
func (s *Scheduler) ScheduleClose(ctx context.Context, surveyID uint, at time.Time) error {
	task, err := NewCloseSurveyTask(surveyID)
	if err != nil {
		return err
	}
	id := CloseTaskID(surveyID)
	if err := s.deleteTask(id); err != nil {
		s.Log.Warn().Err(err).Str("task_id", id).Msg("failed to delete previous close task")
	}

	_, err = s.Client.EnqueueContext(ctx, task,
		asynq.Queue(s.queue()),
		asynq.ProcessAt(at),
		asynq.TaskID(id),
	)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", id, err)
	}
	s.Log.Info().Str("task_id", id).Time("run_at", at).Msg("survey close scheduled")
	return nil
}

// CancelClose removes the pending close task of surveyID, if any.
func (s *Scheduler) CancelClose(_ context.Context, surveyID uint) error {
	id := CloseTaskID(surveyID)
	if err := s.deleteTask(id); err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	return nil
}

func (s *Scheduler) deleteTask(id string) error {
	err := s.Inspector.DeleteTask(s.queue(), id)
	if err == nil || errors.Is(err, asynq.ErrTaskNotFound) || errors.Is(err, asynq.ErrQueueNotFound) {
		return nil
	}
	return err
}

// Close releases the Redis connections opened by NewScheduler.
func (s *Scheduler) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}
