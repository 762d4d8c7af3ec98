// Chatbot HTTP handlers.
//
// This file exposes the public conversational survey endpoints:
//   - GET  /chatbot/surveys   (surveys a conversation can start)
//   - POST /chatbot/start     (open a conversation)
//   - POST /chatbot/message   (send one message)
package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbourn/go-survey-backend/internal/services"
)

// ChatbotService drives chatbot conversations.
type ChatbotService interface {
	ListSurveys(ctx context.Context) ([]services.ChatSurvey, error)
	Start(ctx context.Context, surveyID uint, participant string) (*services.ChatStart, error)
	Send(ctx context.Context, conversationID, message, participant string) (*services.ChatReply, error)
}

// StartChatRequest opens a conversation.
type StartChatRequest struct {
	SurveyID        uint   `json:"surveyId" example:"1"`
	ParticipantName string `json:"participantName" example:"An"`
}

// SendChatMessageRequest carries one respondent message.
type SendChatMessageRequest struct {
	ConversationID  string `json:"conversationId" example:"5f0c6a3e-8a53-4c1b-9c7e-0c4f6f1d2b9a"`
	Message         string `json:"message" example:"2"`
	ParticipantName string `json:"participantName" example:"An"`
}

// ChatMessage is one bot message.
type ChatMessage struct {
	Sender string `json:"sender" example:"bot"`
	Text   string `json:"text"`
}

// StartChatResponse is the greeting of a new conversation.
type StartChatResponse struct {
	ConversationID string        `json:"conversationId"`
	SurveyTitle    string        `json:"surveyTitle"`
	Messages       []ChatMessage `json:"messages"`
}

// ChatReplyResponse is the bot's answer to one message.
type ChatReplyResponse struct {
	ConversationID string        `json:"conversationId"`
	Messages       []ChatMessage `json:"messages"`
	Completed      bool          `json:"completed"`
	SessionExpired bool          `json:"sessionExpired"`
}

func botMessages(texts []string) []ChatMessage {
	out := make([]ChatMessage, 0, len(texts))
	for _, t := range texts {
		out = append(out, ChatMessage{Sender: "bot", Text: t})
	}
	return out
}

// ListChatSurveys godoc
// @ID          listChatSurveys
// @Summary     List surveys available to the chatbot
// @Tags        Chatbot
// @Produce     json
// @Success     200  {array}   services.ChatSurvey
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /chatbot/surveys [get]
func (h *Handlers) ListChatSurveys(c *gin.Context) {
	items, err := h.svc.Chatbot.ListSurveys(c.Request.Context())
	if err != nil {
		serviceError(c, err)
		return
	}
	ok(c, http.StatusOK, items)
}

// StartChat godoc
// @ID          startChat
// @Summary     Start a chatbot conversation
// @Description Opens a conversation for an available survey and returns the greeting and first question.
// @Tags        Chatbot
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.StartChatRequest  true  "Survey to start"
// @Success     200   {object}  handlers.StartChatResponse
// @Failure     400   {object}  handlers.ErrorResponse  "Invalid survey id"
// @Failure     404   {object}  handlers.ErrorResponse  "Survey not found or unavailable"
// @Failure     500   {object}  handlers.ErrorResponse  "Internal error"
// @Router      /chatbot/start [post]
func (h *Handlers) StartChat(c *gin.Context) {
	var req StartChatRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.SurveyID == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "surveyId không hợp lệ.")
		return
	}

	res, err := h.svc.Chatbot.Start(c.Request.Context(), req.SurveyID, req.ParticipantName)
	if err != nil {
		serviceError(c, err)
		return
	}
	ok(c, http.StatusOK, StartChatResponse{
		ConversationID: res.ConversationID,
		SurveyTitle:    res.SurveyTitle,
		Messages:       botMessages(res.Messages),
	})
}

// SendChatMessage godoc
// @ID          sendChatMessage
// @Summary     Send a message to a conversation
// @Description Answers, skips, repeats, asks for a hint or cancels. An unknown or expired conversation answers 410 with sessionExpired=true.
// @Tags        Chatbot
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.SendChatMessageRequest  true  "Message"
// @Success     200   {object}  handlers.ChatReplyResponse
// @Failure     400   {object}  handlers.ErrorResponse      "Missing fields or message too long"
// @Failure     410   {object}  handlers.ChatReplyResponse  "Session expired"
// @Failure     500   {object}  handlers.ErrorResponse      "Internal error"
// @Router      /chatbot/message [post]
func (h *Handlers) SendChatMessage(c *gin.Context) {
	var req SendChatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "Thiếu dữ liệu bắt buộc.")
		return
	}
	if _, err := uuid.Parse(strings.TrimSpace(req.ConversationID)); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "Thiếu dữ liệu bắt buộc.")
		return
	}

	reply, err := h.svc.Chatbot.Send(c.Request.Context(), req.ConversationID, req.Message, req.ParticipantName)
	if err != nil {
		serviceError(c, err)
		return
	}

	resp := ChatReplyResponse{
		ConversationID: reply.ConversationID,
		Messages:       botMessages(reply.Messages),
		Completed:      reply.Completed,
		SessionExpired: reply.SessionExpired,
	}
	if reply.SessionExpired {
		ok(c, http.StatusGone, resp)
		return
	}
	ok(c, http.StatusOK, resp)
}
