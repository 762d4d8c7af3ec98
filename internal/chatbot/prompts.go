package chatbot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tbourn/go-survey-backend/internal/domain"
)

// Fixed bot messages.
const (
	MsgExpired        = "Phiên trò chuyện đã kết thúc hoặc không tồn tại. Vui lòng bắt đầu lại khảo sát."
	MsgEmpty          = "Xin vui lòng nhập câu trả lời hoặc gõ \"gợi ý\" để được hỗ trợ."
	MsgCancelled      = "Đã kết thúc phiên trò chuyện theo yêu cầu. Khi muốn tham gia lại, hãy bắt đầu khảo sát một lần nữa."
	MsgAlreadyDone    = "Chúng ta đã hoàn tất khảo sát trước đó. Cảm ơn đã trò chuyện!"
	MsgAtEnd          = "Cảm ơn bạn, khảo sát này đã được hoàn thành."
	MsgSkipRequired   = "Câu hỏi này là bắt buộc. Bạn hãy cho mình câu trả lời phù hợp nhé."
	MsgSkipped        = "Đã bỏ qua câu hỏi này."
	MsgNotUnderstood  = "Mình chưa hiểu câu trả lời, bạn thử diễn đạt lại nhé."
	MsgSingleInvalid  = "Mình chưa nhận ra lựa chọn của bạn. Hãy nhập số thứ tự hoặc tên đáp án nhé."
	MsgMultiInvalid   = "Mình chưa nhận ra các lựa chọn. Bạn có thể nhập dạng \"1,3\" hoặc tên các đáp án."
	MsgNumberInvalid  = "Vui lòng nhập một con số hợp lệ."
	MsgTextEmpty      = "Bạn có thể chia sẻ thêm vài dòng để mình ghi nhận nhé."
	MsgTextAck        = "Cảm ơn bạn đã chia sẻ!"
	textSuggestion    = "Tôi hài lòng với trải nghiệm hiện tại, nhưng mong muốn cải thiện tốc độ phản hồi và tài liệu hướng dẫn."
	promptFooter      = "Nếu cần trợ giúp, hãy gõ \"gợi ý\". Để nghe lại câu hỏi, gõ \"nhắc lại\"."
	promptChoiceIntro = "Bạn có thể chọn một trong các phương án sau:"
)

// Bounds returns the numeric range accepted by a rating or nps question.
// Unset bounds default to 1..5 for rating and 0..10 for nps.
func Bounds(q Question) (min, max decimal.Decimal) {
	if q.Type == domain.QuestionNPS {
		min, max = decimal.Zero, decimal.NewFromInt(10)
	} else {
		min, max = decimal.NewFromInt(1), decimal.NewFromInt(5)
	}
	if q.MinValue != nil {
		min = *q.MinValue
	}
	if q.MaxValue != nil {
		max = *q.MaxValue
	}
	return min, max
}

func isNumeric(typ string) bool {
	return typ == domain.QuestionRating || typ == domain.QuestionNPS
}

// Greeting opens a conversation.
func Greeting(participant, title string) string {
	if strings.TrimSpace(participant) == "" {
		return fmt.Sprintf("Xin chào! Mình là trợ lý chatbot của khảo sát \"%s\". Chúng ta cùng bắt đầu nhé?", title)
	}
	return fmt.Sprintf("Xin chào %s! Mình là trợ lý chatbot của khảo sát \"%s\". Mình sẽ lần lượt gửi câu hỏi, bạn cứ trả lời thoải mái nhé.", participant, title)
}

// Completion closes a finished conversation.
func Completion(participant string) string {
	if strings.TrimSpace(participant) == "" {
		return "Cảm ơn bạn đã hoàn thành khảo sát. Những chia sẻ của bạn rất quý giá!"
	}
	return fmt.Sprintf("Cảm ơn %s đã hoàn thành khảo sát. Những chia sẻ của bạn rất quý giá!", participant)
}

// Prompt renders a question with its choices or answer format.
func Prompt(q Question) string {
	var b strings.Builder
	b.WriteString("Câu ")
	b.WriteString(strconv.Itoa(q.OrderIndex))
	b.WriteString(": ")
	b.WriteString(q.Text)
	b.WriteString("\n")

	switch {
	case len(q.Choices) > 0:
		b.WriteString(promptChoiceIntro)
		b.WriteString("\n")
		for _, c := range q.Choices {
			fmt.Fprintf(&b, "  %d. %s\n", c.OrderIndex, c.Text)
		}
		if q.Type == domain.QuestionMulti {
			b.WriteString("Bạn có thể chọn nhiều đáp án, ví dụ: 1,3")
		} else {
			b.WriteString("Trả lời bằng số thứ tự hoặc nội dung của phương án.")
		}
	case isNumeric(q.Type):
		min, max := Bounds(q)
		fmt.Fprintf(&b, "Hãy nhập một số từ %s đến %s.", min.String(), max.String())
	default:
		b.WriteString("Bạn có thể trả lời bằng văn bản.")
	}

	b.WriteString("\n")
	b.WriteString(promptFooter)
	return b.String()
}

func choiceList(q Question) string {
	parts := make([]string, len(q.Choices))
	for i, c := range q.Choices {
		parts[i] = fmt.Sprintf("%d. %s", c.OrderIndex, c.Text)
	}
	return strings.Join(parts, ", ")
}

// Help explains how to answer q.
func Help(q Question) string {
	if len(q.Choices) > 0 {
		if q.Type == domain.QuestionMulti {
			return "Câu này cho phép chọn nhiều đáp án. Bạn có thể nhập số thứ tự hoặc tên đáp án, ví dụ: 1,3. Danh sách: " + choiceList(q) + "."
		}
		return "Hãy chọn một đáp án phù hợp. Bạn có thể nhập số thứ tự hoặc tên đáp án. Danh sách: " + choiceList(q) + "."
	}
	if isNumeric(q.Type) {
		min, max := Bounds(q)
		return fmt.Sprintf("Đây là câu thang điểm. Nhập một con số từ %s đến %s để thể hiện mức độ của bạn.", min.String(), max.String())
	}
	return "Bạn có thể trả lời một cách tự do bằng văn bản. Chia sẻ cảm nhận của bạn nhé!"
}

// Suggestion proposes an example answer for q.
func Suggestion(q Question) string {
	title := strings.TrimSpace(q.Text)
	if title == "" {
		title = "câu hỏi"
	}

	switch q.Type {
	case domain.QuestionSingle:
		if len(q.Choices) > 0 {
			top := q.Choices[0]
			return fmt.Sprintf("Gợi ý cho '%s': Chọn phương án số %d - \"%s\".\nBạn có thể gõ: '%d' hoặc gõ đúng nội dung phương án.",
				title, top.OrderIndex, top.Text, top.OrderIndex)
		}
		return fmt.Sprintf("Gợi ý cho '%s': Chọn phương án phù hợp nhất với bạn.", title)
	case domain.QuestionMulti:
		picks := q.Choices
		if len(picks) > 2 {
			picks = picks[:2]
		}
		if len(picks) > 0 {
			nums := make([]string, len(picks))
			labels := make([]string, len(picks))
			for i, p := range picks {
				nums[i] = strconv.Itoa(p.OrderIndex)
				labels[i] = p.Text
			}
			n := strings.Join(nums, ", ")
			return fmt.Sprintf("Gợi ý cho '%s': Chọn %s (%s).\nGõ: '%s' hoặc gõ tên phương án, phân cách bởi dấu phẩy.",
				title, n, strings.Join(labels, ", "), n)
		}
		return fmt.Sprintf("Gợi ý cho '%s': Chọn 1–3 phương án phù hợp.", title)
	case domain.QuestionRating, domain.QuestionNPS:
		min, max := Bounds(q)
		mid := min.Add(max).Div(decimal.NewFromInt(2)).RoundBank(0)
		label := fmt.Sprintf("thang điểm (%s–%s)", min.String(), max.String())
		if q.Type == domain.QuestionNPS {
			label = "mức (0–10)"
		}
		return fmt.Sprintf("Gợi ý cho '%s': %s trên %s.\nGõ: '%s'.", title, mid.String(), label, mid.String())
	default:
		return fmt.Sprintf("Gợi ý cho '%s':\n• Ví dụ: \"%s\"\nBạn có thể sửa lại để phù hợp.", title, textSuggestion)
	}
}
