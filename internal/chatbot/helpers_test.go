package chatbot

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tbourn/go-survey-backend/internal/domain"
)

func dec(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

// scenarioSurvey has one single question (Yes@1, No@2) and one text question.
func scenarioSurvey() *domain.Survey {
	return &domain.Survey{
		ID:     1,
		Title:  "Feedback",
		Status: domain.StatusActive,
		Questions: []domain.Question{
			{ID: 10, OrderIndex: 1, Text: "Happy?", Type: domain.QuestionSingle, IsRequired: true, Choices: []domain.Choice{
				{ID: 100, OrderIndex: 1, Text: "Yes"},
				{ID: 101, OrderIndex: 2, Text: "No"},
			}},
			{ID: 11, OrderIndex: 2, Text: "Why?", Type: domain.QuestionText},
		},
	}
}

func newScenarioSession() *Session {
	return NewSession("conv-1", scenarioSurvey(), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
}

func singleQ() Question {
	return Question{ID: 1, OrderIndex: 1, Type: domain.QuestionSingle, Text: "Pick", Choices: []Choice{
		{ID: 11, OrderIndex: 1, Text: "Red"},
		{ID: 12, OrderIndex: 2, Text: "Green"},
		{ID: 13, OrderIndex: 3, Text: "Blue"},
	}}
}

func multiQ() Question {
	q := singleQ()
	q.Type = domain.QuestionMulti
	return q
}
