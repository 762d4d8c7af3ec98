package chatbot

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/tbourn/go-survey-backend/internal/domain"
)

func TestParseAnswer_SingleByPosition(t *testing.T) {
	q := singleQ()
	q.Choices[1].Text = "3" // display text must not matter
	a, ack, err := ParseAnswer(q, "2")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(a.ChoiceIDs) != 1 || a.ChoiceIDs[0] != 12 {
		t.Fatalf("selected %v; want [12]", a.ChoiceIDs)
	}
	if ack != "Đã chọn: 3." {
		t.Fatalf("ack = %q", ack)
	}
}

func TestParseAnswer_SingleByText(t *testing.T) {
	a, _, err := ParseAnswer(singleQ(), "  bLuE ")
	if err != nil || a.ChoiceIDs[0] != 13 {
		t.Fatalf("got %v, %v", a.ChoiceIDs, err)
	}
	_, _, err = ParseAnswer(singleQ(), "purple 9")
	var iae *InvalidAnswerError
	if !errors.As(err, &iae) || iae.Msg != MsgSingleInvalid {
		t.Fatalf("expected single invalid, got %v", err)
	}
}

func TestParseAnswer_MultiPositionsDeduplicated(t *testing.T) {
	for _, in := range []string{"1,3", "3, 1", "1 3 1", "1;3;3"} {
		a, _, err := ParseAnswer(multiQ(), in)
		if err != nil {
			t.Fatalf("%q: %v", in, err)
		}
		got := map[uint]bool{}
		for _, id := range a.ChoiceIDs {
			got[id] = true
		}
		if len(a.ChoiceIDs) != 2 || !got[11] || !got[13] {
			t.Fatalf("%q selected %v; want {11,13}", in, a.ChoiceIDs)
		}
	}
}

func TestParseAnswer_MultiByText(t *testing.T) {
	a, ack, err := ParseAnswer(multiQ(), "red / Blue | red")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(a.ChoiceIDs) != 2 || a.ChoiceIDs[0] != 11 || a.ChoiceIDs[1] != 13 {
		t.Fatalf("selected %v", a.ChoiceIDs)
	}
	if ack != "Đã ghi nhận các lựa chọn: Red, Blue." {
		t.Fatalf("ack = %q", ack)
	}
	if _, _, err := ParseAnswer(multiQ(), "purple, 9"); err == nil || err.Error() != MsgMultiInvalid {
		t.Fatalf("expected multi invalid, got %v", err)
	}
}

func TestParseAnswer_Rating(t *testing.T) {
	q := Question{ID: 5, Type: domain.QuestionRating, MinValue: dec(1), MaxValue: dec(5)}

	if _, _, err := ParseAnswer(q, "7"); err == nil || err.Error() != "Giá trị hợp lệ nằm trong khoảng 1 - 5." {
		t.Fatalf("expected out of range, got %v", err)
	}
	a, ack, err := ParseAnswer(q, "4")
	if err != nil || a.Number == nil || !a.Number.Equal(decimal.NewFromInt(4)) {
		t.Fatalf("got %+v, %v", a, err)
	}
	if ack != "Bạn chấm mức 4. Đã ghi nhận!" {
		t.Fatalf("ack = %q", ack)
	}
	a, _, err = ParseAnswer(q, "3,5")
	if err != nil || !a.Number.Equal(decimal.RequireFromString("3.5")) {
		t.Fatalf("comma decimal: %+v, %v", a, err)
	}
	if _, _, err := ParseAnswer(q, "four"); err == nil || err.Error() != MsgNumberInvalid {
		t.Fatalf("expected number invalid, got %v", err)
	}
}

func TestParseAnswer_DefaultBounds(t *testing.T) {
	nps := Question{Type: domain.QuestionNPS}
	if _, _, err := ParseAnswer(nps, "0"); err != nil {
		t.Fatalf("nps 0 should be valid: %v", err)
	}
	if _, _, err := ParseAnswer(nps, "11"); err == nil {
		t.Fatalf("nps 11 should be out of range")
	}
	rating := Question{Type: domain.QuestionRating}
	if _, _, err := ParseAnswer(rating, "0"); err == nil {
		t.Fatalf("rating 0 should be out of range")
	}
}

func TestParseAnswer_TextTruncated(t *testing.T) {
	long := strings.Repeat("ă", MaxTextRunes+50)
	a, _, err := ParseAnswer(Question{Type: domain.QuestionText}, "  "+long+"  ")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if got := len([]rune(*a.Text)); got != MaxTextRunes {
		t.Fatalf("text runes = %d", got)
	}
	if _, err := ParseText("  \t"); err == nil || err.Error() != MsgTextEmpty {
		t.Fatalf("expected empty text error, got %v", err)
	}
}

func TestExtractNumbers(t *testing.T) {
	got := extractNumbers("a 3 b 1, 3 and 12")
	want := []int{3, 1, 12}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v; want %v", got, want)
		}
	}
}
