package discord

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/tbourn/go-survey-backend/internal/services"
)

type sent struct{ channel, text string }

type fakeSender struct{ msgs []sent }

func (f *fakeSender) ChannelMessageSend(channelID, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.msgs = append(f.msgs, sent{channelID, content})
	return &discordgo.Message{ChannelID: channelID, Content: content}, nil
}

func (f *fakeSender) texts() []string {
	out := make([]string, len(f.msgs))
	for i, m := range f.msgs {
		out[i] = m.text
	}
	return out
}

type fakeChatbot struct {
	surveys  []services.ChatSurvey
	startErr error
	replies  []*services.ChatReply
	sends    []string
	started  []uint
}

func (f *fakeChatbot) ListSurveys(context.Context) ([]services.ChatSurvey, error) {
	return f.surveys, nil
}

func (f *fakeChatbot) Start(_ context.Context, id uint, participant string) (*services.ChatStart, error) {
	if f.startErr != nil {
		return nil, f.startErr
	}
	f.started = append(f.started, id)
	return &services.ChatStart{
		ConversationID: "conv-1",
		SurveyTitle:    "Feedback",
		Messages:       []string{"Xin chào " + participant, "Câu 1"},
	}, nil
}

func (f *fakeChatbot) Send(_ context.Context, convID, msg, _ string) (*services.ChatReply, error) {
	f.sends = append(f.sends, convID+"|"+msg)
	r := f.replies[0]
	f.replies = f.replies[1:]
	return r, nil
}

func TestBot_Conversation(t *testing.T) {
	chat := &fakeChatbot{
		surveys: []services.ChatSurvey{{SurveyID: 4, Title: "Feedback"}},
		replies: []*services.ChatReply{
			{Messages: []string{"Đã chọn: Yes.", "Câu 2"}},
			{Messages: []string{"Cảm ơn!"}, Completed: true},
		},
	}
	b := New(chat, "!survey ", zerolog.Nop())
	out := &fakeSender{}

	b.Handle(out, "ch", "u1", "An", "list")
	if len(out.msgs) != 1 || !strings.Contains(out.msgs[0].text, "4. Feedback") {
		t.Fatalf("list = %+v", out.msgs)
	}

	b.Handle(out, "ch", "u1", "An", "1")
	if len(chat.sends) != 0 || !strings.Contains(out.msgs[1].text, "start <id>") {
		t.Fatalf("answer without conversation should show usage: %+v", out.msgs)
	}

	b.Handle(out, "ch", "u1", "An", "START 4")
	if len(chat.started) != 1 || chat.started[0] != 4 {
		t.Fatalf("started = %v", chat.started)
	}
	if got := out.texts()[2:]; len(got) != 2 || got[0] != "Xin chào An" {
		t.Fatalf("start messages = %q", got)
	}

	b.Handle(out, "ch", "u1", "An", " 1 ")
	b.Handle(out, "ch", "u1", "An", "great service")
	if len(chat.sends) != 2 || chat.sends[0] != "conv-1|1" || chat.sends[1] != "conv-1|great service" {
		t.Fatalf("sends = %v", chat.sends)
	}
	if _, ok := b.conversation(conversationKey("ch", "u1")); ok {
		t.Fatalf("completed conversation should be forgotten")
	}
	for _, m := range out.msgs {
		if m.channel != "ch" {
			t.Fatalf("reply on wrong channel: %+v", m)
		}
	}
}

func TestBot_CommandWordsInsideConversationAreAnswers(t *testing.T) {
	chat := &fakeChatbot{
		surveys: []services.ChatSurvey{{SurveyID: 4, Title: "Feedback"}},
		replies: []*services.ChatReply{
			{Messages: []string{"Câu 2"}},
			{Messages: []string{"Câu 3"}},
		},
	}
	b := New(chat, "", zerolog.Nop())
	out := &fakeSender{}

	b.Handle(out, "ch", "u1", "An", "start 4")
	b.Handle(out, "ch", "u1", "An", "start earlier on weekends")
	b.Handle(out, "ch", "u1", "An", "List of things I liked")
	if len(chat.started) != 1 {
		t.Fatalf("answers restarted the survey: started = %v", chat.started)
	}
	want := []string{"conv-1|start earlier on weekends", "conv-1|List of things I liked"}
	if len(chat.sends) != 2 || chat.sends[0] != want[0] || chat.sends[1] != want[1] {
		t.Fatalf("sends = %q", chat.sends)
	}

	n := len(out.msgs)
	b.Handle(out, "ch", "u1", "An", "list")
	if len(chat.sends) != 2 || !strings.Contains(out.msgs[n].text, "4. Feedback") {
		t.Fatalf("exact list should stay a command: %+v", out.msgs[n:])
	}
	b.Handle(out, "ch", "u1", "An", "start 4")
	if len(chat.started) != 2 || len(chat.sends) != 2 {
		t.Fatalf("exact start should restart: started=%v sends=%q", chat.started, chat.sends)
	}
}

func TestIsCommand(t *testing.T) {
	cases := []struct {
		cmd, arg string
		want     bool
	}{
		{"list", "", true},
		{"LIST", " ", true},
		{"list", "three things", false},
		{"start", "12", true},
		{"Start", "earlier on weekends", false},
		{"start", "", false},
		{"great", "service", false},
	}
	for _, tc := range cases {
		if got := isCommand(tc.cmd, tc.arg); got != tc.want {
			t.Errorf("isCommand(%q, %q) = %v, want %v", tc.cmd, tc.arg, got, tc.want)
		}
	}
}

func TestBot_StartErrors(t *testing.T) {
	chat := &fakeChatbot{startErr: services.ErrSurveyUnavailable}
	b := New(chat, "", zerolog.Nop())
	out := &fakeSender{}

	b.Handle(out, "ch", "u1", "An", "start abc")
	b.Handle(out, "ch", "u1", "An", "start 9")
	chat.startErr = errors.New("db down")
	b.Handle(out, "ch", "u1", "An", "start 9")

	got := out.texts()
	if len(got) != 3 || !strings.Contains(got[0], "start <id>") || !strings.Contains(got[1], "không tồn tại") || !strings.Contains(got[2], "lỗi") {
		t.Fatalf("messages = %q", got)
	}
	if b.Prefix != "!survey " {
		t.Fatalf("default prefix = %q", b.Prefix)
	}
}

func TestSplitMessage(t *testing.T) {
	if got := splitMessage("ngắn", 10); len(got) != 1 {
		t.Fatalf("short = %q", got)
	}
	msg := strings.Repeat("câu hỏi ", 50)
	chunks := splitMessage(msg, 40)
	if len(chunks) < 2 {
		t.Fatalf("chunks = %d", len(chunks))
	}
	for _, c := range chunks {
		if n := utf8.RuneCountInString(c); n > 40 {
			t.Fatalf("chunk too long: %d", n)
		}
		if strings.HasPrefix(c, " ") {
			t.Fatalf("chunk starts with space: %q", c)
		}
	}
	if strings.Join(chunks, " ") != msg {
		t.Fatalf("content lost")
	}

	solid := strings.Repeat("x", 25)
	if got := splitMessage(solid, 10); len(got) != 3 || got[2] != "xxxxx" {
		t.Fatalf("solid = %q", got)
	}
}
