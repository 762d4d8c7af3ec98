package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// SurveyCloser closes a survey once its end time has passed.
type SurveyCloser interface {
	CloseIfDue(ctx context.Context, surveyID uint) (bool, error)
}

// HandleCloseSurvey returns the handler of TypeCloseSurvey tasks. A survey
// that was deleted, reopened or extended is left alone.
func HandleCloseSurvey(closer SurveyCloser, log zerolog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var p CloseSurveyPayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			log.Error().Err(err).Str("task_type", t.Type()).Msg("bad close payload")
			return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
		}
		closed, err := closer.CloseIfDue(ctx, p.SurveyID)
		if err != nil {
			log.Error().Err(err).Uint("survey_id", p.SurveyID).Msg("close survey failed")
			return err
		}
		if closed {
			log.Info().Uint("survey_id", p.SurveyID).Msg("survey closed at end time")
		} else {
			log.Debug().Uint("survey_id", p.SurveyID).Msg("survey not due, skipping")
		}
		return nil
	}
}

// NewServeMux routes every task type handled by the worker.
func NewServeMux(closer SurveyCloser, log zerolog.Logger) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeCloseSurvey, HandleCloseSurvey(closer, log))
	return mux
}

// NewServer builds the asynq worker server.
func NewServer(opt asynq.RedisConnOpt, concurrency int, log zerolog.Logger) *asynq.Server {
	return asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{DefaultQueue: 1},
		Logger:      asynqLogger{log.With().Str("component", "asynq").Logger()},
	})
}

// asynqLogger routes asynq's own logs through zerolog.
type asynqLogger struct{ l zerolog.Logger }

func (a asynqLogger) Debug(args ...interface{}) { a.l.Debug().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Info(args ...interface{})  { a.l.Info().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Warn(args ...interface{})  { a.l.Warn().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Error(args ...interface{}) { a.l.Error().Msg(fmt.Sprint(args...)) }
func (a asynqLogger) Fatal(args ...interface{}) { a.l.Fatal().Msg(fmt.Sprint(args...)) }
