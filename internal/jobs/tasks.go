// Package jobs runs the background work of the survey backend on asynq:
// closing surveys when their end time passes.
package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// TypeCloseSurvey closes an active survey whose end time has passed.
const TypeCloseSurvey = "survey:close"

// DefaultQueue is the asynq queue close tasks are enqueued on.
const DefaultQueue = "default"

// CloseSurveyPayload identifies the survey to close.
type CloseSurveyPayload struct {
	SurveyID uint `json:"survey_id"`
}

// NewCloseSurveyTask builds the task closing surveyID.
func NewCloseSurveyTask(surveyID uint) (*asynq.Task, error) {
	payload, err := json.Marshal(CloseSurveyPayload{SurveyID: surveyID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeCloseSurvey, payload), nil
}

// CloseTaskID is the task id of the close task of surveyID. One close task
// exists per survey, so rescheduling replaces it.
func CloseTaskID(surveyID uint) string {
	return fmt.Sprintf("survey-close-%d", surveyID)
}
