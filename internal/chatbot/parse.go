package chatbot

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tbourn/go-survey-backend/internal/domain"
)

// MaxTextRunes caps stored free-text answers.
const MaxTextRunes = 1000

// InvalidAnswerError carries the user-facing reason an answer was rejected.
type InvalidAnswerError struct {
	Msg string
}

func (e *InvalidAnswerError) Error() string { return e.Msg }

func invalid(msg string) error { return &InvalidAnswerError{Msg: msg} }

var numberRE = regexp.MustCompile(`\d+`)

// splitRE separates choice labels in a multi answer.
var splitRE = regexp.MustCompile(`[,;/|]`)

// extractNumbers returns the distinct integers found in s, in order of
// first appearance.
func extractNumbers(s string) []int {
	seen := map[int]struct{}{}
	var out []int
	for _, m := range numberRE.FindAllString(s, -1) {
		n, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

func choiceByOrder(q Question, idx int) (Choice, bool) {
	for _, c := range q.Choices {
		if c.OrderIndex == idx {
			return c, true
		}
	}
	return Choice{}, false
}

func choiceByText(q Question, text string) (Choice, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Choice{}, false
	}
	for _, c := range q.Choices {
		if strings.EqualFold(strings.TrimSpace(c.Text), text) {
			return c, true
		}
	}
	return Choice{}, false
}

// ParseAnswer interprets input as an answer to q. On success it returns the
// answer and a short acknowledgement; on failure an *InvalidAnswerError.
//
// Questions with choices resolve by order position first, then by exact
// (case-insensitive) choice text. Rating and nps accept a decimal number
// within Bounds. Anything else is free text.
func ParseAnswer(q Question, input string) (Answer, string, error) {
	trimmed := strings.TrimSpace(input)

	switch {
	case len(q.Choices) > 0 && q.Type == domain.QuestionMulti:
		choices := resolveMulti(q, trimmed)
		if len(choices) == 0 {
			return Answer{}, "", invalid(MsgMultiInvalid)
		}
		ids := make([]uint, len(choices))
		labels := make([]string, len(choices))
		for i, c := range choices {
			ids[i] = c.ID
			labels[i] = c.Text
		}
		ans := Answer{QuestionID: q.ID, Type: q.Type, ChoiceIDs: ids}
		return ans, fmt.Sprintf("Đã ghi nhận các lựa chọn: %s.", strings.Join(labels, ", ")), nil

	case len(q.Choices) > 0:
		c, ok := resolveSingle(q, trimmed)
		if !ok {
			return Answer{}, "", invalid(MsgSingleInvalid)
		}
		ans := Answer{QuestionID: q.ID, Type: q.Type, ChoiceIDs: []uint{c.ID}}
		return ans, fmt.Sprintf("Đã chọn: %s.", c.Text), nil

	case isNumeric(q.Type):
		n, err := ParseNumber(q, trimmed)
		if err != nil {
			return Answer{}, "", err
		}
		ans := Answer{QuestionID: q.ID, Type: q.Type, Number: &n}
		return ans, fmt.Sprintf("Bạn chấm mức %s. Đã ghi nhận!", n.String()), nil

	default:
		text, err := ParseText(trimmed)
		if err != nil {
			return Answer{}, "", err
		}
		ans := Answer{QuestionID: q.ID, Type: q.Type, Text: &text}
		return ans, MsgTextAck, nil
	}
}

func resolveSingle(q Question, trimmed string) (Choice, bool) {
	for _, n := range extractNumbers(trimmed) {
		if c, ok := choiceByOrder(q, n); ok {
			return c, true
		}
	}
	return choiceByText(q, trimmed)
}

func resolveMulti(q Question, trimmed string) []Choice {
	seen := map[uint]struct{}{}
	var out []Choice
	add := func(c Choice) {
		if _, dup := seen[c.ID]; dup {
			return
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}

	for _, n := range extractNumbers(trimmed) {
		if c, ok := choiceByOrder(q, n); ok {
			add(c)
		}
	}
	if len(out) > 0 {
		return out
	}
	for _, tok := range splitRE.Split(trimmed, -1) {
		if c, ok := choiceByText(q, tok); ok {
			add(c)
		}
	}
	return out
}

// ParseNumber parses a rating or nps value. A comma decimal separator is
// accepted. The value must lie within Bounds(q).
func ParseNumber(q Question, input string) (decimal.Decimal, error) {
	s := strings.ReplaceAll(strings.TrimSpace(input), ",", ".")
	n, err := decimal.NewFromString(s)
	if s == "" || err != nil {
		return decimal.Decimal{}, invalid(MsgNumberInvalid)
	}
	min, max := Bounds(q)
	if n.LessThan(min) || n.GreaterThan(max) {
		return decimal.Decimal{}, invalid(fmt.Sprintf("Giá trị hợp lệ nằm trong khoảng %s - %s.", min.String(), max.String()))
	}
	return n, nil
}

// ParseText validates a free-text answer and truncates it to MaxTextRunes.
func ParseText(input string) (string, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", invalid(MsgTextEmpty)
	}
	if r := []rune(s); len(r) > MaxTextRunes {
		s = string(r[:MaxTextRunes])
	}
	return s, nil
}
