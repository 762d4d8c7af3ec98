package chatbot

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Intent is the keyword category detected in a message.
type Intent int

const (
	IntentNone Intent = iota
	IntentCancel
	IntentSuggest
	IntentHelp
	IntentRepeat
	IntentSkip
)

// Keyword lists, Vietnamese first then ASCII/English variants.
var (
	cancelKeywords  = []string{"stop", "cancel", "thoát", "thoat", "quit", "kết thúc", "ket thuc"}
	suggestKeywords = []string{"gợi ý", "goi y", "suggest", "goi y tra loi", "goi y cau tra loi"}
	helpKeywords    = []string{"help", "gợi ý", "goi y", "hint", "giải thích", "giai thich", "hướng dẫn", "huong dan"}
	repeatKeywords  = []string{"repeat", "nhắc lại", "nhac lai", "again", "lặp lại", "lap lai"}
	skipKeywords    = []string{"skip", "bỏ qua", "bo qua", "next", "sang câu khác"}
)

// normalize trims and lowercases a message for keyword matching. A Caser is
// stateful, so one is built per call.
func normalize(msg string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(msg))
}

func containsAny(normalized string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(normalized, k) {
			return true
		}
	}
	return false
}

// Has reports whether the already normalized message contains a keyword of
// category in.
func Has(normalized string, in Intent) bool {
	switch in {
	case IntentCancel:
		return containsAny(normalized, cancelKeywords)
	case IntentSuggest:
		return containsAny(normalized, suggestKeywords)
	case IntentHelp:
		return containsAny(normalized, helpKeywords)
	case IntentRepeat:
		return containsAny(normalized, repeatKeywords)
	case IntentSkip:
		return containsAny(normalized, skipKeywords)
	}
	return false
}

// Classify returns the first matching intent in dispatch order: cancel,
// suggest, help, repeat, skip.
func Classify(msg string) Intent {
	n := normalize(msg)
	for _, in := range []Intent{IntentCancel, IntentSuggest, IntentHelp, IntentRepeat, IntentSkip} {
		if Has(n, in) {
			return in
		}
	}
	return IntentNone
}

func (i Intent) String() string {
	switch i {
	case IntentCancel:
		return "cancel"
	case IntentSuggest:
		return "suggest"
	case IntentHelp:
		return "help"
	case IntentRepeat:
		return "repeat"
	case IntentSkip:
		return "skip"
	}
	return "none"
}
