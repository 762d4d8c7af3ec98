// Package discord exposes the survey chatbot in Discord channels. Each
// author and channel pair holds at most one conversation.
//
// Commands, after the configured prefix:
//
//	list         open surveys
//	start <id>   begin a survey
//	<anything>   answer the current question
//
// While a conversation is active only the exact forms above are commands;
// "start earlier on weekends" is an answer.
package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/tbourn/go-survey-backend/internal/services"
	"github.com/tbourn/go-survey-backend/internal/utils"
)

// maxMessageRunes is Discord's message length limit, with some margin.
const maxMessageRunes = 1900

// Chatbot is the conversation API driven by the bot.
type Chatbot interface {
	ListSurveys(ctx context.Context) ([]services.ChatSurvey, error)
	Start(ctx context.Context, surveyID uint, participant string) (*services.ChatStart, error)
	Send(ctx context.Context, conversationID, message, participant string) (*services.ChatReply, error)
}

// Sender posts messages to a channel. *discordgo.Session satisfies it.
type Sender interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Bot routes prefixed channel messages to the chatbot.
type Bot struct {
	Chatbot Chatbot
	Prefix  string
	Log     zerolog.Logger

	// Timeout bounds each chatbot call.
	Timeout time.Duration

	mu            sync.Mutex
	conversations map[string]string

	session *discordgo.Session
}

// New returns a bot that answers messages starting with prefix.
func New(chat Chatbot, prefix string, log zerolog.Logger) *Bot {
	if prefix == "" {
		prefix = "!survey "
	}
	return &Bot{
		Chatbot:       chat,
		Prefix:        prefix,
		Log:           log.With().Str("component", "discord").Logger(),
		Timeout:       10 * time.Second,
		conversations: map[string]string{},
	}
}

// Open connects to the Discord gateway with token.
func (b *Bot) Open(token string) error {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return fmt.Errorf("discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentsMessageContent
	s.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		b.Log.Info().Str("user", r.User.Username).Int("guilds", len(r.Guilds)).Msg("discord bot online")
	})
	s.AddHandler(b.messageCreate)

	if err := s.Open(); err != nil {
		return fmt.Errorf("discord connect: %w", err)
	}
	b.session = s
	b.Log.Info().Str("prefix", b.Prefix).Msg("discord adapter started")
	return nil
}

// Close disconnects from the gateway.
func (b *Bot) Close() error {
	if b.session == nil {
		return nil
	}
	return b.session.Close()
}

func (b *Bot) messageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if !strings.HasPrefix(m.Content, b.Prefix) {
		return
	}
	_ = s.ChannelTyping(m.ChannelID)
	b.Handle(s, m.ChannelID, m.Author.ID, m.Author.Username, strings.TrimPrefix(m.Content, b.Prefix))
}

func conversationKey(channelID, authorID string) string {
	return channelID + ":" + authorID
}

func (b *Bot) conversation(key string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id, ok := b.conversations[key]
	return id, ok
}

func (b *Bot) setConversation(key, id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if id == "" {
		delete(b.conversations, key)
		return
	}
	b.conversations[key] = id
}

// Handle processes the text of one command, already stripped of the prefix.
func (b *Bot) Handle(out Sender, channelID, authorID, username, text string) {
	ctx, cancel := context.WithTimeout(context.Background(), b.Timeout)
	defer cancel()
	log := b.Log.With().Str("channel_id", channelID).Str("author_id", authorID).Logger()
	ctx = log.WithContext(ctx)

	key := conversationKey(channelID, authorID)
	text = strings.TrimSpace(text)
	cmd, arg, _ := strings.Cut(text, " ")

	if _, active := b.conversation(key); active && text != "" && !isCommand(cmd, arg) {
		cmd = "answer"
	}

	var msgs []string
	var err error
	switch strings.ToLower(cmd) {
	case "":
		msgs = []string{b.usage()}
	case "list":
		msgs, err = b.list(ctx)
	case "start":
		msgs, err = b.start(ctx, key, strings.TrimSpace(arg), username)
	default:
		msgs, err = b.answer(ctx, key, text, username)
	}
	if err != nil {
		log.Error().Err(err).Str("command", cmd).Msg("discord command failed")
		msgs = []string{"Đã có lỗi xảy ra, vui lòng thử lại sau."}
	}
	b.send(out, channelID, msgs)
}

// isCommand reports whether the text is exactly a command: "list" alone or
// "start" with a survey id. Inside a conversation anything else is an answer.
func isCommand(cmd, arg string) bool {
	switch strings.ToLower(cmd) {
	case "list":
		return strings.TrimSpace(arg) == ""
	case "start":
		_, ok := utils.ParseID(strings.TrimSpace(arg))
		return ok
	}
	return false
}

func (b *Bot) usage() string {
	p := strings.TrimSpace(b.Prefix)
	return fmt.Sprintf("Dùng `%s list` để xem khảo sát, `%s start <id>` để bắt đầu, sau đó `%s <câu trả lời>`.", p, p, p)
}

func (b *Bot) list(ctx context.Context) ([]string, error) {
	items, err := b.Chatbot.ListSurveys(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []string{"Hiện chưa có khảo sát nào đang mở."}, nil
	}
	var sb strings.Builder
	sb.WriteString("Khảo sát đang mở:")
	for _, it := range items {
		fmt.Fprintf(&sb, "\n%d. %s", it.SurveyID, it.Title)
	}
	return []string{sb.String()}, nil
}

func (b *Bot) start(ctx context.Context, key, arg, username string) ([]string, error) {
	id, ok := utils.ParseID(arg)
	if !ok {
		return []string{b.usage()}, nil
	}
	st, err := b.Chatbot.Start(ctx, id, username)
	switch {
	case errors.Is(err, services.ErrSurveyNotFound), errors.Is(err, services.ErrSurveyUnavailable):
		return []string{"Khảo sát không tồn tại hoặc chưa mở."}, nil
	case err != nil:
		return nil, err
	}
	b.setConversation(key, st.ConversationID)
	return st.Messages, nil
}

func (b *Bot) answer(ctx context.Context, key, text, username string) ([]string, error) {
	convID, ok := b.conversation(key)
	if !ok {
		return []string{b.usage()}, nil
	}
	reply, err := b.Chatbot.Send(ctx, convID, text, username)
	if errors.Is(err, services.ErrMessageTooLong) {
		return []string{"Tin nhắn quá dài."}, nil
	}
	if err != nil {
		return nil, err
	}
	if reply.Completed || reply.SessionExpired {
		b.setConversation(key, "")
	}
	return reply.Messages, nil
}

func (b *Bot) send(out Sender, channelID string, msgs []string) {
	for _, m := range msgs {
		for _, chunk := range splitMessage(m, maxMessageRunes) {
			if _, err := out.ChannelMessageSend(channelID, chunk); err != nil {
				b.Log.Warn().Err(err).Str("channel_id", channelID).Msg("discord send failed")
				return
			}
		}
	}
}

// splitMessage cuts message into chunks of at most limit runes, preferring
// line breaks and spaces in the second half of a chunk.
func splitMessage(message string, limit int) []string {
	if utf8.RuneCountInString(message) <= limit {
		return []string{message}
	}
	var chunks []string
	rs := []rune(message)
	for len(rs) > limit {
		cut := limit
		for i := limit - 1; i > limit/2; i-- {
			if rs[i] == '\n' || rs[i] == ' ' {
				cut = i
				break
			}
		}
		chunks = append(chunks, string(rs[:cut]))
		rs = rs[cut:]
		if len(rs) > 0 && (rs[0] == ' ' || rs[0] == '\n') {
			rs = rs[1:]
		}
	}
	if len(rs) > 0 {
		chunks = append(chunks, string(rs))
	}
	return chunks
}
