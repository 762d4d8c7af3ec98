// Package domain defines the persistence models for accounts, topics,
// surveys and the responses collected for them. These types are mapped with
// GORM and form the core data layer of the survey application.
package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Survey status codes.
const (
	StatusDraft  = "draft"
	StatusActive = "active"
	StatusClosed = "closed"
)

// Question types.
const (
	QuestionSingle = "single"
	QuestionMulti  = "multi"
	QuestionRating = "rating"
	QuestionNPS    = "nps"
	QuestionText   = "text"
)

// Role names seeded on startup.
const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

// User is a registered account. Passwords are stored as bcrypt hashes only.
//
// Fields:
//   - ID: auto-increment primary key.
//   - Email: login name, unique (stored lowercase).
//   - PasswordHash: bcrypt hash, never serialized.
//   - DisplayName: optional human name used in greetings.
//   - IsActive: disabled accounts cannot log in.
//   - Roles: granted roles (through user_roles).
type User struct {
	ID           uint      `json:"id"           gorm:"primaryKey"`
	Email        string    `json:"email"        gorm:"type:varchar(255);not null;uniqueIndex:ux_users_email"`
	PasswordHash string    `json:"-"            gorm:"type:varchar(255);not null"`
	DisplayName  string    `json:"display_name" gorm:"type:varchar(100)"`
	IsActive     bool      `json:"is_active"    gorm:"not null;default:true"`
	CreatedAt    time.Time `json:"created_at"`

	Roles []Role `json:"roles,omitempty" gorm:"many2many:user_roles;joinForeignKey:UserID;joinReferences:RoleID"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// HasRole reports whether the user was granted the named role.
func (u User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if strings.EqualFold(r.Name, name) {
			return true
		}
	}
	return false
}

// Role is a named permission group (Admin, User).
type Role struct {
	ID          uint      `json:"id"          gorm:"primaryKey"`
	Name        string    `json:"name"        gorm:"type:varchar(50);not null;uniqueIndex:ux_roles_name"`
	Description string    `json:"description" gorm:"type:varchar(255)"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName returns the database table name for Role.
func (Role) TableName() string { return "roles" }

// UserRole is the join row between users and roles.
type UserRole struct {
	UserID    uint      `gorm:"primaryKey"`
	RoleID    uint      `gorm:"primaryKey"`
	GrantedAt time.Time `gorm:"not null;autoCreateTime"`
}

// TableName returns the database table name for UserRole.
func (UserRole) TableName() string { return "user_roles" }

// Topic groups surveys in the public catalog.
type Topic struct {
	ID        uint      `json:"id"         gorm:"primaryKey"`
	Name      string    `json:"name"       gorm:"type:varchar(200);not null"`
	Slug      string    `json:"slug"       gorm:"type:varchar(200);not null;uniqueIndex:ux_topics_slug"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Topic.
func (Topic) TableName() string { return "topics" }

// Survey is an ordered questionnaire owned by a user.
//
// Fields:
//   - OwnerUserID: author; only the owner or an Admin may manage it.
//   - TopicID: catalog topic.
//   - Status: draft | active | closed.
//   - StartAt / EndAt: optional active window bounds.
//   - IsAnonymous: when true, respondents are never linked to accounts.
//   - Questions: ordered by OrderIndex when preloaded through the repo.
type Survey struct {
	ID             uint       `json:"id"               gorm:"primaryKey"`
	OwnerUserID    uint       `json:"owner_user_id"    gorm:"not null;index:idx_surveys_owner"`
	TopicID        uint       `json:"topic_id"         gorm:"not null;index:idx_surveys_topic"`
	Title          string     `json:"title"            gorm:"type:varchar(300);not null"`
	Description    string     `json:"description"      gorm:"type:text"`
	Status         string     `json:"status"           gorm:"type:varchar(20);not null;default:'draft';index:idx_surveys_status"`
	IsAnonymous    bool       `json:"is_anonymous"     gorm:"not null;default:false"`
	CreatedAt      time.Time  `json:"created_at"`
	StartAt        *time.Time `json:"start_at,omitempty"`
	EndAt          *time.Time `json:"end_at,omitempty"`
	CoverImagePath string     `json:"cover_image_path,omitempty" gorm:"type:varchar(512)"`

	Topic     *Topic     `json:"topic,omitempty"     gorm:"foreignKey:TopicID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:SurveyID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Survey.
func (Survey) TableName() string { return "surveys" }

// IsAvailable reports whether the survey accepts responses at now: it must be
// active, inside its optional window, and carry at least one question.
// Questions must be preloaded for the last check.
func (s Survey) IsAvailable(now time.Time) bool {
	if s.Status != StatusActive {
		return false
	}
	if s.StartAt != nil && now.Before(*s.StartAt) {
		return false
	}
	if s.EndAt != nil && now.After(*s.EndAt) {
		return false
	}
	return len(s.Questions) > 0
}

// Question is one item of a survey.
//
// Fields:
//   - OrderIndex: 1-based display position.
//   - Type: single | multi | rating | nps | text.
//   - MinValue / MaxValue: bounds for rating and nps.
//   - MaxLength: optional cap for text answers.
//   - Choices: ordered by OrderIndex when preloaded through the repo.
type Question struct {
	ID         uint             `json:"id"          gorm:"primaryKey"`
	SurveyID   uint             `json:"survey_id"   gorm:"not null;index:idx_questions_survey,priority:1"`
	OrderIndex int              `json:"order_index" gorm:"not null;default:1;index:idx_questions_survey,priority:2"`
	Text       string           `json:"text"        gorm:"type:text;not null"`
	Type       string           `json:"type"        gorm:"type:varchar(20);not null;check:type IN ('single','multi','rating','nps','text')"`
	IsRequired bool             `json:"is_required" gorm:"not null;default:false"`
	MinValue   *decimal.Decimal `json:"min_value,omitempty"  gorm:"type:decimal(18,4)"`
	MaxValue   *decimal.Decimal `json:"max_value,omitempty"  gorm:"type:decimal(18,4)"`
	MaxLength  *int             `json:"max_length,omitempty"`
	ImagePath  string           `json:"image_path,omitempty" gorm:"type:varchar(512)"`

	Choices []Choice `json:"choices,omitempty" gorm:"foreignKey:QuestionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Question.
func (Question) TableName() string { return "questions" }

// HasChoices reports whether the question is answered by selecting choices.
func (q Question) HasChoices() bool {
	return q.Type == QuestionSingle || q.Type == QuestionMulti
}

// IsNumeric reports whether the question is answered with a number.
func (q Question) IsNumeric() bool {
	return q.Type == QuestionRating || q.Type == QuestionNPS
}

// Choice is one selectable option of a single or multi question. OrderIndex
// is 1-based and doubles as the selector respondents type.
type Choice struct {
	ID           uint             `json:"id"          gorm:"primaryKey"`
	QuestionID   uint             `json:"question_id" gorm:"not null;index:idx_choices_question,priority:1"`
	OrderIndex   int              `json:"order_index" gorm:"not null;default:1;index:idx_choices_question,priority:2"`
	Text         string           `json:"text"        gorm:"type:varchar(500);not null"`
	NumericValue *decimal.Decimal `json:"numeric_value,omitempty" gorm:"type:decimal(18,4)"`
}

// TableName returns the database table name for Choice.
func (Choice) TableName() string { return "choices" }

// Respondent is the entity behind one response. Anonymous respondents carry
// neither a user id nor an email.
type Respondent struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	UserID    *uint     `json:"user_id,omitempty" gorm:"index"`
	Email     *string   `json:"email,omitempty"   gorm:"type:varchar(255)"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Respondent.
func (Respondent) TableName() string { return "respondents" }

// Response is one submission of a survey. A nil SubmittedAt marks an
// in-progress response.
type Response struct {
	ID           uint       `json:"id"            gorm:"primaryKey"`
	SurveyID     uint       `json:"survey_id"     gorm:"not null;index:idx_responses_survey"`
	RespondentID string     `json:"respondent_id" gorm:"type:char(36);not null;index"`
	StartedAt    time.Time  `json:"started_at"    gorm:"not null"`
	SubmittedAt  *time.Time `json:"submitted_at,omitempty"`

	Survey     Survey           `json:"-"                 gorm:"foreignKey:SurveyID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Respondent Respondent       `json:"-"                 gorm:"foreignKey:RespondentID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Details    []ResponseDetail `json:"details,omitempty" gorm:"foreignKey:ResponseID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Response.
func (Response) TableName() string { return "responses" }

// IsCompleted reports whether the response was submitted.
func (r Response) IsCompleted() bool { return r.SubmittedAt != nil }

// ResponseDetail is one answer fact: a selected choice, a number or a text.
type ResponseDetail struct {
	ID           uint             `json:"id"          gorm:"primaryKey"`
	ResponseID   uint             `json:"response_id" gorm:"not null;index:idx_details_response"`
	QuestionID   uint             `json:"question_id" gorm:"not null;index:idx_details_question"`
	ChoiceID     *uint            `json:"choice_id,omitempty"`
	AnswerText   *string          `json:"answer_text,omitempty"   gorm:"type:text"`
	AnswerNumber *decimal.Decimal `json:"answer_number,omitempty" gorm:"type:decimal(18,4)"`
}

// TableName returns the database table name for ResponseDetail.
func (ResponseDetail) TableName() string { return "response_details" }
