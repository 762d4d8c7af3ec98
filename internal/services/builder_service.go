// Package services – BuilderService
//
// This file generates survey drafts from fixed Vietnamese templates and
// saves a reviewed draft as a new survey. Generation is random within the
// template sets; the pick function is injectable for tests.
package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tbourn/go-survey-backend/internal/domain"
	"github.com/tbourn/go-survey-backend/internal/repo"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultDraftTopic    = "sản phẩm/dịch vụ của chúng tôi"
	defaultDraftAudience = "khách hàng"
	defaultDraftGoal     = "Nâng cao chất lượng phục vụ."

	defaultDraftQuestions = 5
	maxDraftQuestions     = 20
)

var defaultDraftTypes = []string{domain.QuestionSingle, domain.QuestionRating, domain.QuestionText}

var (
	draftTitles = []string{
		"{Topic} - Trải nghiệm của {Audience}",
		"Khảo sát {Topic} cho {Audience}",
		"Cải thiện {Topic}: Ý kiến từ {Audience}",
		"{Audience} nghĩ gì về {Topic}?",
	}
	draftDescriptions = []string{
		"Khảo sát này giúp chúng tôi hiểu rõ hơn về nhu cầu và trải nghiệm liên quan đến {Topic} của {Audience}. {Goal}",
		"Hãy dành vài phút chia sẻ cảm nhận của bạn về {Topic}. Mục tiêu của chúng tôi là {Goal}.",
		"Chúng tôi muốn lắng nghe từ {Audience} để nâng cao {Topic}. {Goal}",
		"Ý kiến của bạn về {Topic} sẽ giúp chúng tôi {Goal}. Khảo sát chỉ mất vài phút!",
	}

	singleTemplates = []string{
		"Bạn đánh giá mức độ hài lòng chung với {Topic} như thế nào?",
		"Yếu tố nào khiến bạn cảm thấy {Topic} hữu ích nhất?",
		"Trong số các tiêu chí dưới đây, yếu tố nào quan trọng nhất khi bạn đánh giá {Topic}?",
		"Bạn sẽ mô tả trải nghiệm tổng thể của mình với {Topic} ra sao?",
	}
	singleAnswerSets = [][]string{
		{"Rất hài lòng", "Khá hài lòng", "Bình thường", "Chưa hài lòng"},
		{"Chất lượng", "Tốc độ", "Giá trị nhận được", "Khác"},
		{"Rất quan trọng", "Quan trọng", "Trung lập", "Ít quan trọng"},
		{"Xuất sắc", "Tốt", "Trung bình", "Cần cải thiện"},
	}

	multiTemplates = []string{
		"Những yếu tố nào dưới đây khiến bạn chọn {Topic}? (Chọn tất cả đáp án phù hợp)",
		"Bạn thường sử dụng {Topic} trong những tình huống nào?",
		"Điều gì khiến bạn giới thiệu {Topic} cho người khác?",
		"Bạn mong muốn {Topic} cải thiện thêm những khía cạnh nào?",
	}
	multiAnswerSets = [][]string{
		{"Tính năng phù hợp", "Chi phí hợp lý", "Dễ sử dụng", "Dịch vụ hỗ trợ tốt"},
		{"Công việc hàng ngày", "Học tập/nghiên cứu", "Giải trí", "Khác"},
		{"Mang lại hiệu quả", "Đáng tin cậy", "Thương hiệu uy tín", "Đã được giới thiệu"},
		{"Thêm tính năng mới", "Cải thiện hiệu suất", "Hỗ trợ nhanh hơn", "Tài liệu hướng dẫn chi tiết"},
	}

	ratingTemplates = []string{
		"Bạn chấm điểm mức độ hữu ích của {Topic} như thế nào?",
		"Bạn hài lòng với chất lượng tổng thể của {Topic} ra sao?",
		"Bạn đánh giá mức độ dễ sử dụng của {Topic} ở mức nào?",
		"Bạn cảm thấy {Topic} đáp ứng kỳ vọng của mình đến đâu?",
	}
	textTemplates = []string{
		"Điều bạn thích nhất ở {Topic} là gì?",
		"Nếu có thể thay đổi một điều về {Topic}, bạn sẽ chọn điều gì?",
		"Bạn có góp ý hoặc đề xuất nào để {Topic} tốt hơn không?",
		"Hãy chia sẻ trải nghiệm đáng nhớ nhất của bạn với {Topic}.",
	}
	npsTemplates = []string{
		"Bạn có sẵn sàng giới thiệu {Topic} cho bạn bè hoặc đồng nghiệp không?",
		"Khả năng bạn đề xuất {Topic} cho người thân là bao nhiêu?",
	}
)

// DraftRequest parametrizes Generate. Blank fields take defaults.
type DraftRequest struct {
	Topic          string   `json:"topic"`
	Audience       string   `json:"audience"`
	Goal           string   `json:"goal"`
	QuestionCount  int      `json:"question_count"`
	PreferredTypes []string `json:"preferred_types"`
}

// SurveyDraft is a generated, unsaved survey.
type SurveyDraft struct {
	Title       string          `json:"title"       binding:"required"`
	Description string          `json:"description"`
	Questions   []QuestionDraft `json:"questions"`
}

// QuestionDraft is a generated question.
type QuestionDraft struct {
	Type     string           `json:"type"`
	Text     string           `json:"text"`
	Required bool             `json:"required"`
	Choices  []string         `json:"choices,omitempty"`
	MinValue *decimal.Decimal `json:"min_value,omitempty"`
	MaxValue *decimal.Decimal `json:"max_value,omitempty"`
}

// BuilderService generates and saves survey drafts.
type BuilderService struct {
	DB *gorm.DB

	// Pick returns an index in [0, n). Defaults to math/rand/v2.
	Pick func(n int) int

	Now func() time.Time
}

func (s *BuilderService) pick(n int) int {
	if s.Pick != nil {
		return s.Pick(n)
	}
	return rand.IntN(n)
}

// Generate returns a draft built from the templates.
func (s *BuilderService) Generate(req DraftRequest) SurveyDraft {
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		topic = defaultDraftTopic
	}
	audience := strings.TrimSpace(req.Audience)
	if audience == "" {
		audience = defaultDraftAudience
	}
	goal := strings.TrimSpace(req.Goal)
	if goal == "" {
		goal = defaultDraftGoal
	} else {
		goal = strings.TrimRight(goal, ".") + "."
	}

	fill := strings.NewReplacer("{Topic}", topic, "{Audience}", audience, "{Goal}", goal)
	d := SurveyDraft{
		Title:       fill.Replace(draftTitles[s.pick(len(draftTitles))]),
		Description: fill.Replace(draftDescriptions[s.pick(len(draftDescriptions))]),
	}

	count := req.QuestionCount
	switch {
	case count <= 0:
		count = defaultDraftQuestions
	case count > maxDraftQuestions:
		count = maxDraftQuestions
	}
	pool := draftTypePool(req.PreferredTypes)
	for i := 0; i < count; i++ {
		d.Questions = append(d.Questions, s.draftQuestion(pool[i%len(pool)], fill))
	}
	return d
}

// draftTypePool returns the supported preferred types, lowercased and
// deduplicated in order, or the default pool.
func draftTypePool(preferred []string) []string {
	var pool []string
	seen := map[string]bool{}
	for _, t := range preferred {
		t = strings.ToLower(strings.TrimSpace(t))
		switch t {
		case domain.QuestionSingle, domain.QuestionMulti, domain.QuestionRating, domain.QuestionNPS, domain.QuestionText:
		default:
			continue
		}
		if !seen[t] {
			seen[t] = true
			pool = append(pool, t)
		}
	}
	if len(pool) == 0 {
		return defaultDraftTypes
	}
	return pool
}

func (s *BuilderService) draftQuestion(typ string, fill *strings.Replacer) QuestionDraft {
	from := func(templates []string) string {
		return fill.Replace(templates[s.pick(len(templates))])
	}
	bounds := func(lo, hi int64) (*decimal.Decimal, *decimal.Decimal) {
		a, b := decimal.NewFromInt(lo), decimal.NewFromInt(hi)
		return &a, &b
	}

	q := QuestionDraft{Type: typ, Required: true}
	switch typ {
	case domain.QuestionSingle:
		q.Text = from(singleTemplates)
		q.Choices = append([]string(nil), singleAnswerSets[s.pick(len(singleAnswerSets))]...)
	case domain.QuestionMulti:
		q.Text = from(multiTemplates)
		q.Choices = append([]string(nil), multiAnswerSets[s.pick(len(multiAnswerSets))]...)
	case domain.QuestionRating:
		q.Text = from(ratingTemplates)
		q.MinValue, q.MaxValue = bounds(1, 5)
	case domain.QuestionNPS:
		q.Text = from(npsTemplates)
		q.MinValue, q.MaxValue = bounds(0, 10)
	default:
		q.Type = domain.QuestionText
		q.Text = from(textTemplates)
		q.Required = false
	}
	return q
}

// DraftSave carries the survey settings chosen when saving a draft.
type DraftSave struct {
	TopicID     uint
	Status      string
	IsAnonymous bool
}

// SaveDraft stores d as a new survey owned by actor. Questions are validated
// like hand-written ones.
func (s *BuilderService) SaveDraft(ctx context.Context, actor Actor, d SurveyDraft, opts DraftSave) (*domain.Survey, error) {
	tr := otel.Tracer("services/BuilderService")
	ctx, span := tr.Start(ctx, "SaveDraft",
		trace.WithAttributes(
			attribute.Int("user.id", int(actor.UserID)),
			attribute.Int("questions", len(d.Questions)),
		),
	)
	defer span.End()

	if actor.UserID == 0 {
		return nil, ErrForbidden
	}
	in := SurveyInput{TopicID: opts.TopicID, Title: d.Title, Description: d.Description, Status: opts.Status, IsAnonymous: opts.IsAnonymous}
	in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}
	if len(d.Questions) == 0 {
		return nil, fmt.Errorf("%w: a draft needs at least one question", ErrInvalidSurvey)
	}

	questions := make([]*domain.Question, 0, len(d.Questions))
	for i, qd := range d.Questions {
		q, err := BuildQuestion(QuestionInput{
			Text:        qd.Text,
			Type:        qd.Type,
			IsRequired:  qd.Required,
			MinValue:    qd.MinValue,
			MaxValue:    qd.MaxValue,
			ChoicesText: strings.Join(qd.Choices, "\n"),
		})
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}
		q.OrderIndex = i + 1
		questions = append(questions, q)
	}

	sv := &domain.Survey{
		OwnerUserID: actor.UserID,
		TopicID:     in.TopicID,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		IsAnonymous: in.IsAnonymous,
		CreatedAt:   clock(s.Now),
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.GetTopic(ctx, tx, in.TopicID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrTopicNotFound
			}
			return err
		}
		if err := repo.CreateSurvey(ctx, tx, sv); err != nil {
			return err
		}
		for _, q := range questions {
			q.SurveyID = sv.ID
			if err := repo.CreateQuestion(ctx, tx, q); err != nil {
				return err
			}
			sv.Questions = append(sv.Questions, *q)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return sv, nil
}
